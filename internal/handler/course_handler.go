package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-planner-api/internal/models"
	"github.com/noah-isme/exam-planner-api/internal/repository"
	"github.com/noah-isme/exam-planner-api/pkg/response"
)

type courseLister interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	ListWithDemand(ctx context.Context, departmentID string, courseIDs []string) ([]models.CourseDemand, error)
}

// CourseHandler exposes course listing for the run and picker UIs.
type CourseHandler struct {
	courses courseLister
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(courses *repository.CourseRepository) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Tags Catalog
// @Produce json
// @Param departmentId query string false "Department ID"
// @Param page query int false "Page" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := models.CourseFilter{
		DepartmentID: c.Query("departmentId"),
		Page:         queryInt(c, "page", 1),
		PageSize:     queryInt(c, "pageSize", 20),
	}
	courses, total, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Demand godoc
// @Summary List courses with enrolled-student counts
// @Tags Catalog
// @Produce json
// @Param departmentId query string false "Department ID"
// @Success 200 {object} response.Envelope
// @Router /courses/demand [get]
func (h *CourseHandler) Demand(c *gin.Context) {
	courses, err := h.courses.ListWithDemand(c.Request.Context(), c.Query("departmentId"), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
