package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/pkg/config"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type roomsStub struct {
	rooms []models.Room
}

func (s roomsStub) ListForScheduling(ctx context.Context, departmentID string, roomIDs []string) ([]models.Room, error) {
	return s.rooms, nil
}

type coursesStub struct {
	demands []models.CourseDemand
}

func (s coursesStub) ListWithDemand(ctx context.Context, departmentID string, courseIDs []string) ([]models.CourseDemand, error) {
	return s.demands, nil
}

type enrollmentsStub struct {
	pairs    []models.ConflictPair
	students map[string][]string
}

func (s enrollmentsStub) ConflictPairs(ctx context.Context, courseIDs []string) ([]models.ConflictPair, error) {
	return s.pairs, nil
}

func (s enrollmentsStub) StudentIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	return s.students[courseID], nil
}

type examWriterStub struct {
	deletes int
	created []models.Exam
	rooms   map[string][]string
}

func (s *examWriterStub) DeleteByTypeAndScope(ctx context.Context, exec sqlx.ExtContext, examType, departmentID string) error {
	s.deletes++
	return nil
}

func (s *examWriterStub) Create(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = fmt.Sprintf("exam-%d", len(s.created)+1)
	}
	s.created = append(s.created, *exam)
	return nil
}

func (s *examWriterStub) AssignRooms(ctx context.Context, exec sqlx.ExtContext, examID string, roomIDs []string) error {
	if s.rooms == nil {
		s.rooms = make(map[string][]string)
	}
	s.rooms[examID] = roomIDs
	return nil
}

type txProviderMock struct {
	db *sqlx.DB
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb}, mock
}

type schedulerFixture struct {
	service *ExamSchedulerService
	exams   *examWriterStub
	mock    sqlmock.Sqlmock
}

func newSchedulerFixture(t *testing.T, rooms []models.Room, courses []models.CourseDemand, enrollments enrollmentsStub) schedulerFixture {
	tx, mock := newTxProviderMock(t)
	exams := &examWriterStub{}
	svc := NewExamSchedulerService(
		roomsStub{rooms: rooms},
		coursesStub{demands: courses},
		enrollments,
		exams,
		tx,
		nil,
		nil,
		nil,
		nil,
		config.SchedulerConfig{},
	)
	return schedulerFixture{service: svc, exams: exams, mock: mock}
}

func baseRunRequest() dto.ScheduleRunRequest {
	return dto.ScheduleRunRequest{
		ExamType:           "final",
		StartDate:          "2026-01-12",
		EndDate:            "2026-01-16",
		DailyStartTime:     "09:00",
		DailyEndTime:       "17:00",
		DefaultDurationMin: 60,
		MinGapMin:          15,
		ExcludedWeekdays:   []int{5, 6},
	}
}

func TestSchedulerSplitsCourseAcrossRooms(t *testing.T) {
	fixture := newSchedulerFixture(t,
		[]models.Room{
			{ID: "r-big", Code: "A-201", Capacity: 30},
			{ID: "r-small", Code: "B-101", Capacity: 20},
		},
		[]models.CourseDemand{
			{ID: "alg", Code: "ALG301", Name: "Algorithms", StudentCount: 40},
			{ID: "intro", Code: "INT101", Name: "Intro", StudentCount: 10},
		},
		enrollmentsStub{students: map[string][]string{
			"alg":   studentIDs("a", 40),
			"intro": studentIDs("b", 10),
		}},
	)
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	result, err := fixture.service.Schedule(context.Background(), baseRunRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, result.PlacedCount)
	assert.Empty(t, result.Warnings)

	require.Len(t, fixture.exams.created, 2)
	first := fixture.exams.created[0]
	assert.Equal(t, "alg", first.CourseID, "higher demand places first")
	assert.Equal(t, "2026-01-12", first.ExamDate)
	assert.Equal(t, "09:00", first.StartTime)
	assert.Equal(t, []string{"r-big", "r-small"}, fixture.exams.rooms[first.ID])

	second := fixture.exams.created[1]
	assert.Equal(t, "intro", second.CourseID)
	assert.Equal(t, "10:15", second.StartTime, "rooms at 09:00 are exhausted")

	assert.Equal(t, 1, fixture.exams.deletes)
	assert.NoError(t, fixture.mock.ExpectationsWereMet())
}

func TestSchedulerCapacityWarning(t *testing.T) {
	fixture := newSchedulerFixture(t,
		[]models.Room{{ID: "r1", Code: "B-101", Capacity: 10}},
		[]models.CourseDemand{{ID: "alg", Code: "ALG301", Name: "Algorithms", StudentCount: 15}},
		enrollmentsStub{students: map[string][]string{"alg": studentIDs("a", 15)}},
	)
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	result, err := fixture.service.Schedule(context.Background(), baseRunRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, result.PlacedCount)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "capacity insufficient")
	assert.Contains(t, result.Warnings[0], "need 15")
	assert.Contains(t, result.Warnings[0], "10")
}

func TestSchedulerConflictWarningNamesBlockingCourse(t *testing.T) {
	fixture := newSchedulerFixture(t,
		[]models.Room{{ID: "r1", Code: "A-201", Capacity: 50}},
		[]models.CourseDemand{
			{ID: "db", Code: "DB301", Name: "Databases", StudentCount: 3},
			{ID: "os", Code: "OS302", Name: "Operating Systems", StudentCount: 2},
		},
		enrollmentsStub{
			pairs: []models.ConflictPair{{CourseA: "db", CourseB: "os"}},
			students: map[string][]string{
				"db": {"s1", "s2", "s3"},
				"os": {"s1", "s4"},
			},
		},
	)
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	req := baseRunRequest()
	req.EndDate = "2026-01-12"
	req.DailyEndTime = "10:00" // exactly one slot

	result, err := fixture.service.Schedule(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PlacedCount)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "OS302")
	assert.Contains(t, result.Warnings[0], "conflicts")
	assert.Contains(t, result.Warnings[0], "DB301")
}

func TestSchedulerRestGapDefersSharedStudents(t *testing.T) {
	fixture := newSchedulerFixture(t,
		[]models.Room{{ID: "r1", Code: "A-201", Capacity: 50}},
		[]models.CourseDemand{
			{ID: "alg", Code: "ALG301", Name: "Algorithms", StudentCount: 2},
			{ID: "net", Code: "NET201", Name: "Networks", StudentCount: 1},
		},
		enrollmentsStub{
			pairs: []models.ConflictPair{{CourseA: "alg", CourseB: "net"}},
			students: map[string][]string{
				"alg": {"s1", "s2"},
				"net": {"s1"},
			},
		},
	)
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	req := baseRunRequest()
	req.DurationOverrides = map[string]int{"alg": 180}

	result, err := fixture.service.Schedule(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PlacedCount)

	require.Len(t, fixture.exams.created, 2)
	assert.Equal(t, 180, fixture.exams.created[0].DurationMin)
	// ALG301 runs 09:00-12:00; 10:15 and 11:30 violate the gap for s1,
	// 12:45 is the first start at least 15 minutes past the end.
	assert.Equal(t, "12:45", fixture.exams.created[1].StartTime)
}

func TestSchedulerSingleExamAtATime(t *testing.T) {
	fixture := newSchedulerFixture(t,
		[]models.Room{{ID: "r1", Code: "A-201", Capacity: 50}},
		[]models.CourseDemand{
			{ID: "alg", Code: "ALG301", Name: "Algorithms", StudentCount: 2},
			{ID: "net", Code: "NET201", Name: "Networks", StudentCount: 1},
		},
		enrollmentsStub{students: map[string][]string{
			"alg": {"s1", "s2"},
			"net": {"s3"},
		}},
	)
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	req := baseRunRequest()
	req.EndDate = "2026-01-12"
	req.DailyEndTime = "10:00" // exactly one slot
	req.SingleExamAtATime = true

	result, err := fixture.service.Schedule(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PlacedCount)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "NET201")
	assert.Contains(t, result.Warnings[0], "one-exam-at-a-time")
}

func TestSchedulerWarnsOnZeroEnrollment(t *testing.T) {
	fixture := newSchedulerFixture(t,
		[]models.Room{{ID: "r1", Code: "A-201", Capacity: 50}},
		[]models.CourseDemand{
			{ID: "alg", Code: "ALG301", Name: "Algorithms", StudentCount: 2},
			{ID: "ghost", Code: "GH000", Name: "Ghost Course", StudentCount: 0},
		},
		enrollmentsStub{students: map[string][]string{"alg": {"s1", "s2"}}},
	)
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	result, err := fixture.service.Schedule(context.Background(), baseRunRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, result.PlacedCount)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "GH000")
	assert.Contains(t, result.Warnings[0], "no enrolled students")
}

func TestSchedulerEmptySlotsSkipsDeletion(t *testing.T) {
	fixture := newSchedulerFixture(t,
		[]models.Room{{ID: "r1", Code: "A-201", Capacity: 50}},
		[]models.CourseDemand{{ID: "alg", Code: "ALG301", Name: "Algorithms", StudentCount: 2}},
		enrollmentsStub{students: map[string][]string{"alg": {"s1", "s2"}}},
	)

	req := baseRunRequest()
	req.ExcludedWeekdays = []int{0, 1, 2, 3, 4, 5, 6}

	result, err := fixture.service.Schedule(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, result.PlacedCount)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no slots")
	assert.Equal(t, 0, fixture.exams.deletes, "prior exams survive an empty run")
	assert.NoError(t, fixture.mock.ExpectationsWereMet())
}

func TestSchedulerRerunReplacesPriorExams(t *testing.T) {
	fixture := newSchedulerFixture(t,
		[]models.Room{
			{ID: "r-big", Code: "A-201", Capacity: 30},
			{ID: "r-small", Code: "B-101", Capacity: 20},
		},
		[]models.CourseDemand{
			{ID: "alg", Code: "ALG301", Name: "Algorithms", StudentCount: 40},
			{ID: "intro", Code: "INT101", Name: "Intro", StudentCount: 10},
		},
		enrollmentsStub{students: map[string][]string{
			"alg":   studentIDs("a", 40),
			"intro": studentIDs("b", 10),
		}},
	)
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	first, err := fixture.service.Schedule(context.Background(), baseRunRequest())
	require.NoError(t, err)
	firstCount := len(fixture.exams.created)
	firstRun := placedExams(fixture.exams, 0)

	second, err := fixture.service.Schedule(context.Background(), baseRunRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, fixture.exams.deletes, "second run replaces the first run's exams")
	assert.Equal(t, first.PlacedCount, second.PlacedCount)
	assert.Equal(t, first.Warnings, second.Warnings)
	assert.Equal(t, firstRun, placedExams(fixture.exams, firstCount))
	assert.NoError(t, fixture.mock.ExpectationsWereMet())
}

// placedExam strips the generated exam id so assignment sets from
// separate runs can be compared directly.
type placedExam struct {
	courseID string
	date     string
	start    string
	duration int
	rooms    []string
}

func placedExams(stub *examWriterStub, from int) []placedExam {
	out := make([]placedExam, 0, len(stub.created)-from)
	for _, exam := range stub.created[from:] {
		out = append(out, placedExam{
			courseID: exam.CourseID,
			date:     exam.ExamDate,
			start:    exam.StartTime,
			duration: exam.DurationMin,
			rooms:    stub.rooms[exam.ID],
		})
	}
	return out
}

func TestSchedulerRejectsInvalidRequests(t *testing.T) {
	fixture := newSchedulerFixture(t,
		[]models.Room{{ID: "r1", Code: "A-201", Capacity: 50}},
		[]models.CourseDemand{{ID: "alg", Code: "ALG301", Name: "Algorithms", StudentCount: 2}},
		enrollmentsStub{},
	)

	req := baseRunRequest()
	req.ExamType = ""
	_, err := fixture.service.Schedule(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = baseRunRequest()
	req.EndDate = "2026-01-05"
	_, err = fixture.service.Schedule(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSchedulerRequiresRoomsAndCourses(t *testing.T) {
	noRooms := newSchedulerFixture(t, nil,
		[]models.CourseDemand{{ID: "alg", Code: "ALG301", StudentCount: 2}},
		enrollmentsStub{})
	_, err := noRooms.service.Schedule(context.Background(), baseRunRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)

	noCourses := newSchedulerFixture(t,
		[]models.Room{{ID: "r1", Code: "A-201", Capacity: 50}}, nil, enrollmentsStub{})
	_, err = noCourses.service.Schedule(context.Background(), baseRunRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func studentIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}
	return ids
}
