package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/service"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
	"github.com/noah-isme/exam-planner-api/pkg/response"
)

type scheduleRunner interface {
	Schedule(ctx context.Context, req dto.ScheduleRunRequest) (*dto.ScheduleRunResult, error)
}

type scheduleQuerier interface {
	ListScheduled(ctx context.Context, examType, departmentID string) ([]models.ScheduledExam, error)
}

type scheduleExporter interface {
	ScheduleCSV(ctx context.Context, examType, departmentID string) ([]byte, error)
	SchedulePDF(ctx context.Context, examType, departmentID string) ([]byte, error)
}

// ScheduleHandler exposes schedule run, listing and export endpoints.
type ScheduleHandler struct {
	scheduler scheduleRunner
	schedule  scheduleQuerier
	exports   scheduleExporter
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(scheduler *service.ExamSchedulerService, schedule *service.ScheduleService, exports *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{scheduler: scheduler, schedule: schedule, exports: exports}
}

// Run godoc
// @Summary Build the exam timetable for one exam type
// @Description Replaces all prior exams of the exam type (scoped to the department when given) with a freshly computed placement.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleRunRequest true "Schedule run payload"
// @Success 201 {object} response.Envelope
// @Router /schedule/runs [post]
func (h *ScheduleHandler) Run(c *gin.Context) {
	var req dto.ScheduleRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule run payload"))
		return
	}
	result, err := h.scheduler.Schedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List the scheduled exams of one exam type
// @Tags Schedule
// @Produce json
// @Param examType query string true "Exam type"
// @Param departmentId query string false "Department ID"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	rows, err := h.schedule.ListScheduled(c.Request.Context(), c.Query("examType"), c.Query("departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Export godoc
// @Summary Download the timetable as CSV or PDF
// @Tags Schedule
// @Produce octet-stream
// @Param examType query string true "Exam type"
// @Param departmentId query string false "Department ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	examType := c.Query("examType")
	if examType == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "examType is required"))
		return
	}
	departmentID := c.Query("departmentId")

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		payload, err := h.exports.ScheduleCSV(c.Request.Context(), examType, departmentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, "text/csv", "schedule.csv", payload)
	case "pdf":
		payload, err := h.exports.SchedulePDF(c.Request.Context(), examType, departmentID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, "application/pdf", "schedule.pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
