package dto

import "github.com/noah-isme/exam-planner-api/internal/models"

// SeatingResult carries the generated placements for one exam together
// with non-fatal warnings (skipped rooms, unseated students).
type SeatingResult struct {
	ExamID     string                 `json:"examId"`
	Placements []models.SeatPlacement `json:"placements"`
	Warnings   []string               `json:"warnings"`
}
