package models

// Enrollment links a student to a course. It is the sole source of both
// conflict edges and exam rosters.
type Enrollment struct {
	StudentID string `db:"student_id" json:"student_id"`
	CourseID  string `db:"course_id" json:"course_id"`
}

// ConflictPair is a pair of courses sharing at least one enrolled student.
type ConflictPair struct {
	CourseA string `db:"course_a" json:"course_a"`
	CourseB string `db:"course_b" json:"course_b"`
}
