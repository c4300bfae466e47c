package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/dto"
	"github.com/noah-isme/exam-planner-api/internal/models"
	appErrors "github.com/noah-isme/exam-planner-api/pkg/errors"
)

type examPickerMock struct {
	rows []models.ExamWithRooms
}

func (m *examPickerMock) ListExamsWithRooms(ctx context.Context, examType, departmentID string) ([]models.ExamWithRooms, error) {
	return m.rows, nil
}

type seatPlacerMock struct {
	result *dto.SeatingResult
	err    error
}

func (m *seatPlacerMock) PlaceSeating(ctx context.Context, examID string) (*dto.SeatingResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type seatingExporterMock struct{}

func (m *seatingExporterMock) SeatingCSV(ctx context.Context, examID string) ([]byte, error) {
	return []byte("a,b\n"), nil
}

func (m *seatingExporterMock) SeatingPDF(ctx context.Context, examID string) ([]byte, error) {
	return []byte("%PDF"), nil
}

func TestSeatingHandlerListExams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &SeatingHandler{schedule: &examPickerMock{rows: []models.ExamWithRooms{
		{ExamID: "e1", CourseCode: "ALG301", Rooms: "A-201+B-101"},
	}}}

	req, _ := http.NewRequest(http.MethodGet, "/exams?examType=final", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.ListExams(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A-201+B-101")
}

func TestSeatingHandlerSeating(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &SeatingHandler{seating: &seatPlacerMock{result: &dto.SeatingResult{
		ExamID: "e1",
		Placements: []models.SeatPlacement{
			{RoomCode: "A-201", Row: 1, Col: 1, Position: 0, StudentNo: "2026001"},
		},
	}}}

	req, _ := http.NewRequest(http.MethodGet, "/exams/e1/seating", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "e1"}}

	handler.Seating(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2026001")
}

func TestSeatingHandlerSeatingNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &SeatingHandler{seating: &seatPlacerMock{err: appErrors.Clone(appErrors.ErrNotFound, "exam not found")}}

	req, _ := http.NewRequest(http.MethodGet, "/exams/missing/seating", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Seating(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeatingHandlerExportPDF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &SeatingHandler{exports: &seatingExporterMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/exams/e1/seating/export?format=pdf", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "e1"}}

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "seating.pdf")
}
