package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// EnrollmentRepository answers conflict and roster questions over the
// student-course relation.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ConflictPairs returns every pair of distinct courses within the given
// set that share at least one enrolled student. Each pair appears once
// with CourseA < CourseB; the graph builder symmetrizes.
func (r *EnrollmentRepository) ConflictPairs(ctx context.Context, courseIDs []string) ([]models.ConflictPair, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(courseIDs))
	args := make([]interface{}, len(courseIDs))
	for i, id := range courseIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	in := strings.Join(placeholders, ",")

	query := fmt.Sprintf(`SELECT DISTINCT e1.course_id AS course_a, e2.course_id AS course_b
        FROM enrollments e1
        JOIN enrollments e2 ON e1.student_id = e2.student_id AND e1.course_id < e2.course_id
        WHERE e1.course_id IN (%s) AND e2.course_id IN (%s)`, in, in)

	var pairs []models.ConflictPair
	if err := r.db.SelectContext(ctx, &pairs, query, append(args, args...)...); err != nil {
		return nil, fmt.Errorf("list conflict pairs: %w", err)
	}
	return pairs, nil
}

// StudentIDsByCourse returns the ids of every student enrolled in the
// course, for the rest-gap bookkeeping.
func (r *EnrollmentRepository) StudentIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT student_id FROM enrollments WHERE course_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, courseID); err != nil {
		return nil, fmt.Errorf("list course students: %w", err)
	}
	return ids, nil
}

// RosterByCourse returns the course's full roster ordered by student
// number, the fill order of the seat placement engine.
func (r *EnrollmentRepository) RosterByCourse(ctx context.Context, courseID string) ([]models.Student, error) {
	const query = `SELECT s.id, s.student_no, s.full_name, s.department_id
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        WHERE e.course_id = $1
        ORDER BY s.student_no ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, courseID); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}
	return students, nil
}
