package models

// Exam is a placed exam session for a course. Dates are ISO "2006-01-02"
// strings and start times "15:04" strings, matching the slot grid the
// scheduler works on.
type Exam struct {
	ID          string `db:"id" json:"id"`
	CourseID    string `db:"course_id" json:"course_id"`
	ExamType    string `db:"exam_type" json:"exam_type"`
	ExamDate    string `db:"exam_date" json:"exam_date"`
	StartTime   string `db:"start_time" json:"start_time"`
	DurationMin int    `db:"duration_min" json:"duration_min"`
}

// ExamRoom links an exam to one of its assigned rooms.
type ExamRoom struct {
	ExamID string `db:"exam_id" json:"exam_id"`
	RoomID string `db:"room_id" json:"room_id"`
}

// ScheduledExam is one display/export row of the schedule listing: one row
// per (exam, room) pair, ordered by date, time, course code.
type ScheduledExam struct {
	ExamID      string `db:"exam_id" json:"exam_id"`
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseName  string `db:"course_name" json:"course_name"`
	ExamDate    string `db:"exam_date" json:"exam_date"`
	StartTime   string `db:"start_time" json:"start_time"`
	DurationMin int    `db:"duration_min" json:"duration_min"`
	RoomCode    string `db:"room_code" json:"room_code"`
}

// ExamWithRooms is a picker row with the exam's rooms concatenated, e.g.
// "A-101+A-102".
type ExamWithRooms struct {
	ExamID     string `db:"exam_id" json:"exam_id"`
	ExamDate   string `db:"exam_date" json:"exam_date"`
	StartTime  string `db:"start_time" json:"start_time"`
	CourseCode string `db:"course_code" json:"course_code"`
	CourseName string `db:"course_name" json:"course_name"`
	Rooms      string `db:"rooms" json:"rooms"`
}
