package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// ExamRepository persists exams and their room assignments. Mutating
// methods take an sqlx.ExtContext so a whole schedule run shares one
// transaction.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// DeleteByTypeAndScope removes all exams (and room assignments) of the
// given exam type, restricted to a department when one is given. Each run
// fully replaces its predecessor.
func (r *ExamRepository) DeleteByTypeAndScope(ctx context.Context, exec sqlx.ExtContext, examType, departmentID string) error {
	if departmentID != "" {
		const delRooms = `DELETE FROM exam_rooms WHERE exam_id IN (
            SELECT ex.id FROM exams ex
            JOIN courses c ON c.id = ex.course_id
            WHERE ex.exam_type = $1 AND c.department_id = $2)`
		if _, err := exec.ExecContext(ctx, delRooms, examType, departmentID); err != nil {
			return fmt.Errorf("delete exam rooms: %w", err)
		}
		const delExams = `DELETE FROM exams WHERE exam_type = $1
            AND course_id IN (SELECT id FROM courses WHERE department_id = $2)`
		if _, err := exec.ExecContext(ctx, delExams, examType, departmentID); err != nil {
			return fmt.Errorf("delete exams: %w", err)
		}
		return nil
	}

	const delRooms = `DELETE FROM exam_rooms WHERE exam_id IN (SELECT id FROM exams WHERE exam_type = $1)`
	if _, err := exec.ExecContext(ctx, delRooms, examType); err != nil {
		return fmt.Errorf("delete exam rooms: %w", err)
	}
	const delExams = `DELETE FROM exams WHERE exam_type = $1`
	if _, err := exec.ExecContext(ctx, delExams, examType); err != nil {
		return fmt.Errorf("delete exams: %w", err)
	}
	return nil
}

// Create inserts an exam record, assigning a fresh id when absent.
func (r *ExamRepository) Create(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	const query = `INSERT INTO exams (id, course_id, exam_type, exam_date, start_time, duration_min)
        VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := exec.ExecContext(ctx, query, exam.ID, exam.CourseID, exam.ExamType, exam.ExamDate, exam.StartTime, exam.DurationMin); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// AssignRooms links the exam to each of the given rooms.
func (r *ExamRepository) AssignRooms(ctx context.Context, exec sqlx.ExtContext, examID string, roomIDs []string) error {
	const query = `INSERT INTO exam_rooms (exam_id, room_id) VALUES ($1, $2)`
	for _, roomID := range roomIDs {
		if _, err := exec.ExecContext(ctx, query, examID, roomID); err != nil {
			return fmt.Errorf("assign exam room: %w", err)
		}
	}
	return nil
}

// FindByID returns an exam by its id.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, course_id, exam_type, exam_date, start_time, duration_min FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// RoomsByExam returns the exam's assigned rooms ordered by capacity
// descending then code, the fill order of the seat placement engine.
func (r *ExamRepository) RoomsByExam(ctx context.Context, examID string) ([]models.Room, error) {
	const query = `SELECT r.id, r.code, r.name, r.capacity, r.rows, r.cols, r.group_size, r.department_id
        FROM exam_rooms er
        JOIN rooms r ON r.id = er.room_id
        WHERE er.exam_id = $1
        ORDER BY r.capacity DESC, r.code ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, examID); err != nil {
		return nil, fmt.Errorf("list exam rooms: %w", err)
	}
	return rooms, nil
}

// ListScheduled returns one row per (exam, room) for display and export,
// ordered by date, start time, then course code.
func (r *ExamRepository) ListScheduled(ctx context.Context, examType, departmentID string) ([]models.ScheduledExam, error) {
	base := `SELECT ex.id AS exam_id, c.code AS course_code, c.name AS course_name,
        ex.exam_date, ex.start_time, ex.duration_min, r.code AS room_code
        FROM exams ex
        JOIN courses c ON c.id = ex.course_id
        JOIN exam_rooms er ON er.exam_id = ex.id
        JOIN rooms r ON r.id = er.room_id
        WHERE ex.exam_type = $1`
	args := []interface{}{examType}
	if departmentID != "" {
		base += " AND c.department_id = $2"
		args = append(args, departmentID)
	}
	base += " ORDER BY ex.exam_date, ex.start_time, c.code"

	var rows []models.ScheduledExam
	if err := r.db.SelectContext(ctx, &rows, base, args...); err != nil {
		return nil, fmt.Errorf("list scheduled exams: %w", err)
	}
	return rows, nil
}

// ListWithRooms returns picker rows with the assigned room codes joined
// by '+'.
func (r *ExamRepository) ListWithRooms(ctx context.Context, examType, departmentID string) ([]models.ExamWithRooms, error) {
	base := `SELECT ex.id AS exam_id, ex.exam_date, ex.start_time,
        c.code AS course_code, c.name AS course_name,
        STRING_AGG(r.code, '+' ORDER BY r.code) AS rooms
        FROM exams ex
        JOIN courses c ON c.id = ex.course_id
        JOIN exam_rooms er ON er.exam_id = ex.id
        JOIN rooms r ON r.id = er.room_id`
	var conditions []string
	var args []interface{}
	if examType != "" {
		conditions = append(conditions, fmt.Sprintf("ex.exam_type = $%d", len(args)+1))
		args = append(args, examType)
	}
	if departmentID != "" {
		conditions = append(conditions, fmt.Sprintf("c.department_id = $%d", len(args)+1))
		args = append(args, departmentID)
	}
	query := base
	if len(conditions) > 0 {
		query += " WHERE "
		for i, cond := range conditions {
			if i > 0 {
				query += " AND "
			}
			query += cond
		}
	}
	query += ` GROUP BY ex.id, ex.exam_date, ex.start_time, c.code, c.name
        ORDER BY ex.exam_date, ex.start_time, c.code`

	var rows []models.ExamWithRooms
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list exams with rooms: %w", err)
	}
	return rows, nil
}
