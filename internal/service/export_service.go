package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/export"
)

var scheduleExportHeaders = []string{"Course Code", "Course Name", "Date", "Time", "Duration (min)", "Room"}

var seatingExportHeaders = []string{"Room", "Row", "Col", "Student No", "Full Name"}

type scheduleLister interface {
	ListScheduled(ctx context.Context, examType, departmentID string) ([]models.ScheduledExam, error)
}

type seatingBuilder interface {
	PlaceSeating(ctx context.Context, examID string) (*dto.SeatingResult, error)
}

type courseFinder interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type examFinder interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
}

type exportArchiver interface {
	Save(filename string, payload []byte)
}

// ExportService renders schedules and seat charts as CSV or PDF files.
// When an archiver is attached, every rendered file is also queued for an
// on-disk copy.
type ExportService struct {
	schedule scheduleLister
	seating  seatingBuilder
	exams    examFinder
	courses  courseFinder
	archive  exportArchiver
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewExportService wires the export pipeline. archive may be nil.
func NewExportService(schedule scheduleLister, seating seatingBuilder, exams examFinder, courses courseFinder, archive exportArchiver, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		schedule: schedule,
		seating:  seating,
		exams:    exams,
		courses:  courses,
		archive:  archive,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

func (s *ExportService) archiveCopy(prefix, ext string, payload []byte) {
	if s.archive == nil {
		return
	}
	filename := fmt.Sprintf("%s-%s.%s", prefix, time.Now().UTC().Format("20060102-150405"), ext)
	s.archive.Save(filename, payload)
}

func (s *ExportService) scheduleDataset(ctx context.Context, examType, departmentID string) (export.Dataset, error) {
	rows, err := s.schedule.ListScheduled(ctx, examType, departmentID)
	if err != nil {
		return export.Dataset{}, err
	}
	data := export.Dataset{Headers: scheduleExportHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Course Code":    row.CourseCode,
			"Course Name":    row.CourseName,
			"Date":           row.ExamDate,
			"Time":           row.StartTime,
			"Duration (min)": strconv.Itoa(row.DurationMin),
			"Room":           row.RoomCode,
		})
	}
	return data, nil
}

// ScheduleCSV renders the scoped timetable as CSV.
func (s *ExportService) ScheduleCSV(ctx context.Context, examType, departmentID string) ([]byte, error) {
	data, err := s.scheduleDataset(ctx, examType, departmentID)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule csv")
	}
	s.archiveCopy("schedule/"+examType, "csv", payload)
	return payload, nil
}

// SchedulePDF renders the scoped timetable as a tabular PDF.
func (s *ExportService) SchedulePDF(ctx context.Context, examType, departmentID string) ([]byte, error) {
	data, err := s.scheduleDataset(ctx, examType, departmentID)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(data, fmt.Sprintf("%s Exam Schedule", examType))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule pdf")
	}
	s.archiveCopy("schedule/"+examType, "pdf", payload)
	return payload, nil
}

func seatingRow(p models.SeatPlacement) map[string]string {
	return map[string]string{
		"Room":       p.RoomCode,
		"Row":        strconv.Itoa(p.Row),
		"Col":        strconv.Itoa(p.Col),
		"Student No": p.StudentNo,
		"Full Name":  p.FullName,
	}
}

// SeatingCSV renders the exam's seat chart as CSV, one row per placement.
func (s *ExportService) SeatingCSV(ctx context.Context, examID string) ([]byte, error) {
	result, err := s.seating.PlaceSeating(ctx, examID)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{Headers: seatingExportHeaders, Rows: make([]map[string]string, 0, len(result.Placements))}
	for _, p := range result.Placements {
		data.Rows = append(data.Rows, seatingRow(p))
	}
	payload, err := s.csv.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render seating csv")
	}
	s.archiveCopy("seating/"+examID, "csv", payload)
	return payload, nil
}

// SeatingPDF renders the exam's seat chart as a PDF with one page per
// room, titled after the course.
func (s *ExportService) SeatingPDF(ctx context.Context, examID string) ([]byte, error) {
	result, err := s.seating.PlaceSeating(ctx, examID)
	if err != nil {
		return nil, err
	}
	title, err := s.seatingTitle(ctx, examID)
	if err != nil {
		return nil, err
	}

	var sections []export.Section
	var current *export.Section
	for _, p := range result.Placements {
		if current == nil || current.Subtitle != "Room "+p.RoomCode {
			sections = append(sections, export.Section{
				Subtitle: "Room " + p.RoomCode,
				Data:     export.Dataset{Headers: seatingExportHeaders},
			})
			current = &sections[len(sections)-1]
		}
		current.Data.Rows = append(current.Data.Rows, seatingRow(p))
	}
	if len(sections) == 0 {
		sections = []export.Section{{Subtitle: "No placements", Data: export.Dataset{Headers: seatingExportHeaders}}}
	}

	payload, err := s.pdf.RenderSections(sections, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render seating pdf")
	}
	s.archiveCopy("seating/"+examID, "pdf", payload)
	return payload, nil
}

func (s *ExportService) seatingTitle(ctx context.Context, examID string) (string, error) {
	exam, err := s.exams.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	course, err := s.courses.FindByID(ctx, exam.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Sprintf("Seating %s %s", exam.ExamDate, exam.StartTime), nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return fmt.Sprintf("%s %s Seating - %s %s", course.Code, exam.ExamType, exam.ExamDate, exam.StartTime), nil
}
