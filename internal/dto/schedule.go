package dto

// ScheduleRunRequest instructs the placement engine to (re)build the exam
// timetable for one exam type. Dates are "2006-01-02", times "15:04".
// Weekday indexes follow 0=Monday .. 6=Sunday.
type ScheduleRunRequest struct {
	ExamType           string         `json:"examType" validate:"required"`
	DepartmentID       string         `json:"departmentId"`
	StartDate          string         `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate            string         `json:"endDate" validate:"required,datetime=2006-01-02"`
	DailyStartTime     string         `json:"dailyStartTime" validate:"omitempty,datetime=15:04"`
	DailyEndTime       string         `json:"dailyEndTime" validate:"omitempty,datetime=15:04"`
	DefaultDurationMin int            `json:"defaultDurationMin" validate:"omitempty,min=1"`
	DurationOverrides  map[string]int `json:"durationOverrides" validate:"omitempty,dive,min=1"`
	ExcludedWeekdays   []int          `json:"excludedWeekdays" validate:"omitempty,dive,min=0,max=6"`
	MinGapMin          int            `json:"minGapMin" validate:"omitempty,min=0"`
	SingleExamAtATime  bool           `json:"singleExamAtATime"`
	RoomIDs            []string       `json:"roomIds"`
	CourseIDs          []string       `json:"courseIds"`
}

// ScheduleRunResult reports how many courses were placed plus
// human-readable warnings for the rest.
type ScheduleRunResult struct {
	PlacedCount int      `json:"placedCount"`
	Warnings    []string `json:"warnings"`
}

// ScheduleQuery scopes schedule listings.
type ScheduleQuery struct {
	ExamType     string `json:"examType"`
	DepartmentID string `json:"departmentId"`
}
