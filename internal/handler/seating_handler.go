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

type examPicker interface {
	ListExamsWithRooms(ctx context.Context, examType, departmentID string) ([]models.ExamWithRooms, error)
}

type seatPlacer interface {
	PlaceSeating(ctx context.Context, examID string) (*dto.SeatingResult, error)
}

type seatingExporter interface {
	SeatingCSV(ctx context.Context, examID string) ([]byte, error)
	SeatingPDF(ctx context.Context, examID string) ([]byte, error)
}

// SeatingHandler exposes the exam picker and seat chart endpoints.
type SeatingHandler struct {
	schedule examPicker
	seating  seatPlacer
	exports  seatingExporter
}

// NewSeatingHandler constructs the handler.
func NewSeatingHandler(schedule *service.ScheduleService, seating *service.SeatingService, exports *service.ExportService) *SeatingHandler {
	return &SeatingHandler{schedule: schedule, seating: seating, exports: exports}
}

// ListExams godoc
// @Summary List scheduled exams with their assigned room codes
// @Tags Seating
// @Produce json
// @Param examType query string false "Exam type"
// @Param departmentId query string false "Department ID"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *SeatingHandler) ListExams(c *gin.Context) {
	rows, err := h.schedule.ListExamsWithRooms(c.Request.Context(), c.Query("examType"), c.Query("departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Seating godoc
// @Summary Generate the seat chart for one exam
// @Tags Seating
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/seating [get]
func (h *SeatingHandler) Seating(c *gin.Context) {
	result, err := h.seating.PlaceSeating(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Download the seat chart as CSV or PDF
// @Tags Seating
// @Produce octet-stream
// @Param id path string true "Exam ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /exams/{id}/seating/export [get]
func (h *SeatingHandler) Export(c *gin.Context) {
	examID := c.Param("id")
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		payload, err := h.exports.SeatingCSV(c.Request.Context(), examID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, "text/csv", "seating.csv", payload)
	case "pdf":
		payload, err := h.exports.SeatingPDF(c.Request.Context(), examID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.File(c, "application/pdf", "seating.pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}
