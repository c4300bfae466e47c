package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/pkg/config"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

const maxWarningExamples = 3

type schedulerRoomLister interface {
	ListForScheduling(ctx context.Context, departmentID string, roomIDs []string) ([]models.Room, error)
}

type schedulerCourseLister interface {
	ListWithDemand(ctx context.Context, departmentID string, courseIDs []string) ([]models.CourseDemand, error)
}

type schedulerEnrollmentReader interface {
	ConflictPairs(ctx context.Context, courseIDs []string) ([]models.ConflictPair, error)
	StudentIDsByCourse(ctx context.Context, courseID string) ([]string, error)
}

type examWriter interface {
	DeleteByTypeAndScope(ctx context.Context, exec sqlx.ExtContext, examType, departmentID string) error
	Create(ctx context.Context, exec sqlx.ExtContext, exam *models.Exam) error
	AssignRooms(ctx context.Context, exec sqlx.ExtContext, examID string, roomIDs []string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type scheduleInvalidator interface {
	InvalidateSchedule(ctx context.Context, examType, departmentID string)
}

type runObserver interface {
	ObserveScheduleRun(placed, unplaced int)
}

// ExamSchedulerService is the greedy exam-to-slot-and-room placement
// engine. A run deletes all prior exams of its (type, scope) and rebuilds
// them inside a single transaction; ordering is part of the contract:
// courses descend by demand and slots are scanned chronologically, with no
// backtracking.
type ExamSchedulerService struct {
	rooms       schedulerRoomLister
	courses     schedulerCourseLister
	enrollments schedulerEnrollmentReader
	exams       examWriter
	tx          txProvider
	cache       scheduleInvalidator
	metrics     runObserver
	validator   *validator.Validate
	logger      *zap.Logger
	defaults    config.SchedulerConfig
}

// NewExamSchedulerService wires scheduler dependencies.
func NewExamSchedulerService(
	rooms schedulerRoomLister,
	courses schedulerCourseLister,
	enrollments schedulerEnrollmentReader,
	exams examWriter,
	tx txProvider,
	cache scheduleInvalidator,
	metrics runObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	defaults config.SchedulerConfig,
) *ExamSchedulerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.DailyStartTime == "" {
		defaults.DailyStartTime = "09:00"
	}
	if defaults.DailyEndTime == "" {
		defaults.DailyEndTime = "17:00"
	}
	if defaults.DefaultDurationMin <= 0 {
		defaults.DefaultDurationMin = 75
	}
	return &ExamSchedulerService{
		rooms:       rooms,
		courses:     courses,
		enrollments: enrollments,
		exams:       exams,
		tx:          tx,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		defaults:    defaults,
	}
}

// runPlan is the validated, defaulted input of one scheduling run.
type runPlan struct {
	req         dto.ScheduleRunRequest
	startDate   time.Time
	endDate     time.Time
	dayStartMin int
	dayEndMin   int
	durationMin int
	gapMin      int
	excluded    map[int]bool
}

// Schedule runs the placement engine and returns the placed count plus
// per-course warnings for everything it could not place.
func (s *ExamSchedulerService) Schedule(ctx context.Context, req dto.ScheduleRunRequest) (*dto.ScheduleRunResult, error) {
	plan, err := s.buildPlan(req)
	if err != nil {
		return nil, err
	}

	rooms, err := s.rooms.ListForScheduling(ctx, req.DepartmentID, req.RoomIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no rooms available for scheduling")
	}

	courses, err := s.courses.ListWithDemand(ctx, req.DepartmentID, req.CourseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	if len(courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no courses match the given scope")
	}

	// High-demand courses are hardest to place, so they pick first.
	// The sort is stable: ties keep repository order.
	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].StudentCount > courses[j].StudentCount
	})

	courseIDs := make([]string, len(courses))
	for i, course := range courses {
		courseIDs[i] = course.ID
	}
	pairs, err := s.enrollments.ConflictPairs(ctx, courseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflict pairs")
	}
	conflicts := buildConflictGraph(courseIDs, pairs)

	slots := buildSlots(plan.startDate, plan.endDate, plan.dayStartMin, plan.dayEndMin, plan.durationMin, plan.gapMin, plan.excluded)
	if len(slots) == 0 {
		// Nothing is deleted in this case: the run never starts.
		return &dto.ScheduleRunResult{
			PlacedCount: 0,
			Warnings:    []string{"no slots fit the selected date range and daily time window"},
		}, nil
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	result, err := s.run(ctx, tx, plan, courses, conflicts, rooms, slots)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule run")
	}

	if s.cache != nil {
		s.cache.InvalidateSchedule(ctx, req.ExamType, req.DepartmentID)
	}
	if s.metrics != nil {
		s.metrics.ObserveScheduleRun(result.PlacedCount, len(courses)-result.PlacedCount)
	}
	s.logger.Info("schedule run finished",
		zap.String("exam_type", req.ExamType),
		zap.String("department_id", req.DepartmentID),
		zap.Int("placed", result.PlacedCount),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (s *ExamSchedulerService) buildPlan(req dto.ScheduleRunRequest) (*runPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule run payload")
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be formatted as 2006-01-02")
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be formatted as 2006-01-02")
	}
	if endDate.Before(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not precede startDate")
	}

	dailyStart := req.DailyStartTime
	if dailyStart == "" {
		dailyStart = s.defaults.DailyStartTime
	}
	dailyEnd := req.DailyEndTime
	if dailyEnd == "" {
		dailyEnd = s.defaults.DailyEndTime
	}
	dayStartMin, err := parseClock(dailyStart)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dailyStartTime must be formatted as 15:04")
	}
	dayEndMin, err := parseClock(dailyEnd)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dailyEndTime must be formatted as 15:04")
	}
	if dayStartMin >= dayEndMin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dailyStartTime must precede dailyEndTime")
	}

	duration := req.DefaultDurationMin
	if duration <= 0 {
		duration = s.defaults.DefaultDurationMin
	}
	gap := s.defaults.MinGapMin
	if req.MinGapMin > 0 {
		gap = req.MinGapMin
	}
	excluded := req.ExcludedWeekdays
	if excluded == nil {
		excluded = s.defaults.ExcludedWeekdays
	}

	return &runPlan{
		req:         req,
		startDate:   startDate,
		endDate:     endDate,
		dayStartMin: dayStartMin,
		dayEndMin:   dayEndMin,
		durationMin: duration,
		gapMin:      gap,
		excluded:    weekdaySet(excluded),
	}, nil
}

// run performs the greedy placement inside the supplied transaction.
func (s *ExamSchedulerService) run(
	ctx context.Context,
	tx *sqlx.Tx,
	plan *runPlan,
	courses []models.CourseDemand,
	conflicts map[string]map[string]struct{},
	rooms []models.Room,
	slots []Slot,
) (*dto.ScheduleRunResult, error) {
	if err := s.exams.DeleteByTypeAndScope(ctx, tx, plan.req.ExamType, plan.req.DepartmentID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous exams")
	}

	codeByID := make(map[string]string, len(courses))
	for _, course := range courses {
		codeByID[course.ID] = course.Code
	}

	pool := newRoomPool(rooms)
	assignedAtSlot := make(map[string][]string)
	lastEndMin := make(map[string]int64)

	var warnings []string
	placed := 0

	for _, course := range courses {
		if course.StudentCount == 0 {
			warnings = append(warnings, fmt.Sprintf("[%s] has no enrolled students", course.Code))
			continue
		}

		studentIDs, err := s.enrollments.StudentIDsByCourse(ctx, course.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course students")
		}

		duration := plan.durationMin
		if override, ok := plan.req.DurationOverrides[course.ID]; ok && override > 0 {
			duration = override
		}

		attempt := placementAttempt{need: course.StudentCount, bestCapacity: -1}

		placedThis := false
		for _, slot := range slots {
			key := slot.Key()

			if plan.req.SingleExamAtATime && len(assignedAtSlot[key]) > 0 {
				attempt.addGlobalExample(key)
				continue
			}

			if blocking := conflictingCourses(assignedAtSlot[key], conflicts[course.ID]); len(blocking) > 0 {
				attempt.addConflictExample(key, blocking, codeByID)
				continue
			}

			if gapViolated(studentIDs, lastEndMin, slot.StartMin, plan.gapMin) {
				attempt.addGapExample(key, plan.gapMin)
				continue
			}

			freeCap := pool.FreeCapacity(key)
			if freeCap > attempt.bestCapacity {
				attempt.bestCapacity = freeCap
				attempt.bestCapacitySlot = key
			}
			if freeCap < course.StudentCount {
				attempt.capacityRejected = true
				continue
			}
			attempt.capacityReached = true

			selected := pool.SelectRooms(key, course.StudentCount)
			if selected == nil {
				continue
			}

			exam := &models.Exam{
				CourseID:    course.ID,
				ExamType:    plan.req.ExamType,
				ExamDate:    slot.Date,
				StartTime:   slot.Start,
				DurationMin: duration,
			}
			if err := s.exams.Create(ctx, tx, exam); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
			}
			roomIDs := make([]string, len(selected))
			for i, room := range selected {
				roomIDs[i] = room.ID
			}
			if err := s.exams.AssignRooms(ctx, tx, exam.ID, roomIDs); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign exam rooms")
			}

			pool.Occupy(key, selected)
			assignedAtSlot[key] = append(assignedAtSlot[key], course.ID)
			end := slot.StartMin + int64(duration)
			for _, sid := range studentIDs {
				lastEndMin[sid] = end
			}

			placed++
			placedThis = true
			break
		}

		if !placedThis {
			warnings = append(warnings, attempt.warning(course))
		}
	}

	return &dto.ScheduleRunResult{PlacedCount: placed, Warnings: warnings}, nil
}

func conflictingCourses(assigned []string, adjacent map[string]struct{}) []string {
	var blocking []string
	for _, other := range assigned {
		if _, ok := adjacent[other]; ok {
			blocking = append(blocking, other)
		}
	}
	return blocking
}

func gapViolated(studentIDs []string, lastEndMin map[string]int64, slotStart int64, gapMin int) bool {
	for _, sid := range studentIDs {
		end, ok := lastEndMin[sid]
		if !ok {
			// No prior exam: no constraint.
			continue
		}
		if slotStart-end < int64(gapMin) {
			return true
		}
	}
	return false
}

// placementAttempt collects rejection evidence across the slot scan so an
// unplaced course gets exactly one warning, picked by category priority:
// capacity, conflict, gap, global single-exam rule, generic.
type placementAttempt struct {
	need             int
	capacityRejected bool
	capacityReached  bool
	bestCapacity     int
	bestCapacitySlot string
	conflictExamples []string
	gapExamples      []string
	globalExamples   []string
}

func (a *placementAttempt) addConflictExample(slotKey string, blocking []string, codeByID map[string]string) {
	if len(a.conflictExamples) >= maxWarningExamples {
		return
	}
	codes := make([]string, len(blocking))
	for i, id := range blocking {
		if code, ok := codeByID[id]; ok {
			codes[i] = code
		} else {
			codes[i] = id
		}
	}
	a.conflictExamples = append(a.conflictExamples, fmt.Sprintf("%s -> %s", slotKey, strings.Join(codes, ", ")))
}

func (a *placementAttempt) addGapExample(slotKey string, gapMin int) {
	if len(a.gapExamples) >= maxWarningExamples {
		return
	}
	a.gapExamples = append(a.gapExamples, fmt.Sprintf("%s (min %d min)", slotKey, gapMin))
}

func (a *placementAttempt) addGlobalExample(slotKey string) {
	if len(a.globalExamples) >= maxWarningExamples {
		return
	}
	a.globalExamples = append(a.globalExamples, slotKey)
}

func (a *placementAttempt) warning(course models.CourseDemand) string {
	label := fmt.Sprintf("[%s] (%s)", course.Code, course.Name)
	switch {
	case a.capacityRejected && !a.capacityReached:
		best := a.bestCapacity
		if best < 0 {
			best = 0
		}
		if a.bestCapacitySlot != "" {
			return fmt.Sprintf("%s capacity insufficient: need %d, best slot capacity %d at %s", label, a.need, best, a.bestCapacitySlot)
		}
		return fmt.Sprintf("%s capacity insufficient: need %d, best slot capacity %d", label, a.need, best)
	case len(a.conflictExamples) > 0:
		return fmt.Sprintf("%s conflicts with already placed exams: %s", label, strings.Join(a.conflictExamples, "; "))
	case len(a.gapExamples) > 0:
		return fmt.Sprintf("%s rest gap violated: %s", label, strings.Join(a.gapExamples, "; "))
	case len(a.globalExamples) > 0:
		return fmt.Sprintf("%s blocked by the one-exam-at-a-time rule; examples: %s", label, strings.Join(a.globalExamples, ", "))
	default:
		return fmt.Sprintf("%s could not be placed: no suitable slot or room under the given constraints", label)
	}
}
