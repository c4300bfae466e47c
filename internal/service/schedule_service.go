package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type scheduleReader interface {
	ListScheduled(ctx context.Context, examType, departmentID string) ([]models.ScheduledExam, error)
	ListWithRooms(ctx context.Context, examType, departmentID string) ([]models.ExamWithRooms, error)
}

type cacheObserver interface {
	ObserveCacheHit()
	ObserveCacheMiss()
}

// ScheduleService serves timetable listings with a read-through Redis
// cache. A nil Redis client degrades to direct repository reads.
type ScheduleService struct {
	exams    scheduleReader
	redis    *redis.Client
	metrics  cacheObserver
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewScheduleService wires the listing service.
func NewScheduleService(exams scheduleReader, redisClient *redis.Client, metrics cacheObserver, logger *zap.Logger, cacheTTL time.Duration) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ScheduleService{
		exams:    exams,
		redis:    redisClient,
		metrics:  metrics,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

func scheduleCacheKey(examType, departmentID string) string {
	return "schedule:" + examType + ":" + departmentID
}

// ListScheduled returns the timetable rows for the scope, cached per
// (exam type, department) pair.
func (s *ScheduleService) ListScheduled(ctx context.Context, examType, departmentID string) ([]models.ScheduledExam, error) {
	if examType == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "examType is required")
	}

	key := scheduleCacheKey(examType, departmentID)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			var rows []models.ScheduledExam
			if jsonErr := json.Unmarshal([]byte(cached), &rows); jsonErr == nil {
				if s.metrics != nil {
					s.metrics.ObserveCacheHit()
				}
				return rows, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("schedule cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.ObserveCacheMiss()
		}
	}

	rows, err := s.exams.ListScheduled(ctx, examType, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scheduled exams")
	}

	if s.redis != nil {
		if payload, jsonErr := json.Marshal(rows); jsonErr == nil {
			if err := s.redis.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("schedule cache write failed", zap.Error(err))
			}
		}
	}
	return rows, nil
}

// ListExamsWithRooms returns picker rows for the seating UI; not cached
// since callers hit it right after a run.
func (s *ScheduleService) ListExamsWithRooms(ctx context.Context, examType, departmentID string) ([]models.ExamWithRooms, error) {
	rows, err := s.exams.ListWithRooms(ctx, examType, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return rows, nil
}

// InvalidateSchedule drops the cached listings touched by a schedule run.
// A department-scoped run invalidates its own key plus the unscoped
// aggregate; an unscoped run can change any department's rows, so it
// sweeps every key of the exam type.
func (s *ScheduleService) InvalidateSchedule(ctx context.Context, examType, departmentID string) {
	if s.redis == nil {
		return
	}
	var keys []string
	if departmentID != "" {
		keys = []string{scheduleCacheKey(examType, departmentID), scheduleCacheKey(examType, "")}
	} else {
		matched, err := s.redis.Keys(ctx, "schedule:"+examType+":*").Result()
		if err != nil {
			s.logger.Warn("schedule cache key scan failed", zap.Error(err))
			return
		}
		keys = matched
	}
	if len(keys) == 0 {
		return
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.Error(err))
	}
}
