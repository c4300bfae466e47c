package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type seatingExamReader interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	RoomsByExam(ctx context.Context, examID string) ([]models.Room, error)
}

type rosterReader interface {
	RosterByCourse(ctx context.Context, courseID string) ([]models.Student, error)
}

type seatingObserver interface {
	ObserveSeatingBuilt(seated int)
}

// SeatingService derives a deterministic seat chart for one exam. The
// chart is a pure function of the exam's rooms and the course roster, so
// it is recomputed on demand rather than persisted.
type SeatingService struct {
	exams   seatingExamReader
	roster  rosterReader
	metrics seatingObserver
	logger  *zap.Logger
}

// NewSeatingService wires the seating engine.
func NewSeatingService(exams seatingExamReader, roster rosterReader, metrics seatingObserver, logger *zap.Logger) *SeatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeatingService{exams: exams, roster: roster, metrics: metrics, logger: logger}
}

// PlaceSeating seats the exam's roster across its assigned rooms.
// Rooms fill in capacity-descending order, row-major inside each grid,
// with distancing deciding which sub-seats of a cell are usable.
func (s *SeatingService) PlaceSeating(ctx context.Context, examID string) (*dto.SeatingResult, error) {
	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	result := &dto.SeatingResult{ExamID: examID, Placements: []models.SeatPlacement{}}

	rooms, err := s.exams.RoomsByExam(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam rooms")
	}
	if len(rooms) == 0 {
		result.Warnings = append(result.Warnings, "exam has no rooms assigned")
		return result, nil
	}

	students, err := s.roster.RosterByCourse(ctx, exam.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course roster")
	}
	if len(students) == 0 {
		result.Warnings = append(result.Warnings, "no students enrolled for this exam")
		return result, nil
	}

	next := 0

	for _, room := range rooms {
		if next >= len(students) {
			break
		}
		if room.Rows <= 0 || room.Cols <= 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("room %s has no seat grid and was skipped", room.Code))
			continue
		}
		positions := allowedPositions(room.GroupSize)
		for row := 1; row <= room.Rows && next < len(students); row++ {
			for col := 1; col <= room.Cols && next < len(students); col++ {
				for _, pos := range positions.at(row, col) {
					if next >= len(students) {
						break
					}
					student := students[next]
					result.Placements = append(result.Placements, models.SeatPlacement{
						RoomCode:  room.Code,
						Row:       row,
						Col:       col,
						Position:  pos,
						StudentNo: student.StudentNo,
						FullName:  student.FullName,
					})
					next++
				}
			}
		}
	}

	if next < len(students) {
		total := 0
		for _, room := range rooms {
			total += effectiveCapacity(room)
		}
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d of %d students could not be seated: distancing leaves %d usable seats", len(students)-next, len(students), total))
	}
	if s.metrics != nil {
		s.metrics.ObserveSeatingBuilt(next)
	}
	s.logger.Debug("seating built",
		zap.String("exam_id", examID),
		zap.Int("seated", next),
		zap.Int("roster", len(students)),
	)
	return result, nil
}

// seatPattern yields the usable sub-seat indexes of a cell. Benches of one
// or two seats use a checkerboard, alternating the occupied side so
// neighbours never sit shoulder to shoulder; wider benches seat two
// students at the far ends of every cell.
type seatPattern struct {
	groupSize int
}

func allowedPositions(groupSize int) seatPattern {
	if groupSize < 1 {
		groupSize = 1
	}
	return seatPattern{groupSize: groupSize}
}

func (p seatPattern) at(row, col int) []int {
	switch {
	case p.groupSize <= 2:
		if p.groupSize == 1 || (row+col)%2 == 0 {
			return []int{0}
		}
		return []int{1}
	case p.groupSize == 3:
		return []int{0, 2}
	default:
		return []int{0, p.groupSize - 1}
	}
}

// effectiveCapacity is the number of students a grid can hold under the
// distancing rules: one per cell for short benches, two otherwise.
func effectiveCapacity(room models.Room) int {
	if room.Rows <= 0 || room.Cols <= 0 {
		return 0
	}
	perCell := 1
	if room.GroupSize >= 3 {
		perCell = 2
	}
	return room.Rows * room.Cols * perCell
}
