package models

// Course is an exam candidate owned by a department.
type Course struct {
	ID           string `db:"id" json:"id"`
	Code         string `db:"code" json:"code"`
	Name         string `db:"name" json:"name"`
	DepartmentID string `db:"department_id" json:"department_id"`
}

// CourseDemand is a course together with its distinct enrolled-student
// count, the unit the placement engine orders by.
type CourseDemand struct {
	ID           string `db:"id" json:"id"`
	Code         string `db:"code" json:"code"`
	Name         string `db:"name" json:"name"`
	StudentCount int    `db:"student_count" json:"student_count"`
}

// CourseFilter describes query params for listing courses.
type CourseFilter struct {
	DepartmentID string
	CourseIDs    []string
	Page         int
	PageSize     int
}
