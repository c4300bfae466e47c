package handler

import (
	"bytes"
	"context"
	"encoding/json"
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

type schedulerMock struct {
	captured dto.ScheduleRunRequest
	result   *dto.ScheduleRunResult
	err      error
}

func (m *schedulerMock) Schedule(ctx context.Context, req dto.ScheduleRunRequest) (*dto.ScheduleRunResult, error) {
	m.captured = req
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type scheduleQuerierMock struct {
	rows []models.ScheduledExam
}

func (m *scheduleQuerierMock) ListScheduled(ctx context.Context, examType, departmentID string) ([]models.ScheduledExam, error) {
	return m.rows, nil
}

type scheduleExporterMock struct {
	csv []byte
	pdf []byte
}

func (m *scheduleExporterMock) ScheduleCSV(ctx context.Context, examType, departmentID string) ([]byte, error) {
	return m.csv, nil
}

func (m *scheduleExporterMock) SchedulePDF(ctx context.Context, examType, departmentID string) ([]byte, error) {
	return m.pdf, nil
}

func runPayload() []byte {
	payload, _ := json.Marshal(dto.ScheduleRunRequest{
		ExamType:  "final",
		StartDate: "2026-01-12",
		EndDate:   "2026-01-16",
	})
	return payload
}

func TestScheduleHandlerRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &schedulerMock{result: &dto.ScheduleRunResult{PlacedCount: 3, Warnings: []string{"[GH000] has no enrolled students"}}}
	handler := &ScheduleHandler{scheduler: mockSvc}

	req, _ := http.NewRequest(http.MethodPost, "/schedule/runs", bytes.NewReader(runPayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Run(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "final", mockSvc.captured.ExamType)
	assert.Contains(t, w.Body.String(), "\"placedCount\":3")
}

func TestScheduleHandlerRunRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{scheduler: &schedulerMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/schedule/runs", bytes.NewReader([]byte(`{"examType":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Run(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerRunPropagatesServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{scheduler: &schedulerMock{err: appErrors.Clone(appErrors.ErrPreconditionFailed, "no rooms available for scheduling")}}

	req, _ := http.NewRequest(http.MethodPost, "/schedule/runs", bytes.NewReader(runPayload()))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Run(c)

	require.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Contains(t, w.Body.String(), "no rooms available")
}

func TestScheduleHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{schedule: &scheduleQuerierMock{rows: []models.ScheduledExam{
		{ExamID: "e1", CourseCode: "ALG301", RoomCode: "A-201"},
	}}}

	req, _ := http.NewRequest(http.MethodGet, "/schedule?examType=final", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ALG301")
}

func TestScheduleHandlerExportCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{exports: &scheduleExporterMock{csv: []byte("a,b\n")}}

	req, _ := http.NewRequest(http.MethodGet, "/schedule/export?examType=final", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "schedule.csv")
}

func TestScheduleHandlerExportRejectsUnknownFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{exports: &scheduleExporterMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/schedule/export?examType=final&format=xlsx", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Export(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerExportRequiresExamType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &ScheduleHandler{exports: &scheduleExporterMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/schedule/export", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Export(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
