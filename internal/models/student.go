package models

// Student belongs to exactly one department and participates in
// enrollments.
type Student struct {
	ID           string `db:"id" json:"id"`
	StudentNo    string `db:"student_no" json:"student_no"`
	FullName     string `db:"full_name" json:"full_name"`
	DepartmentID string `db:"department_id" json:"department_id"`
}
