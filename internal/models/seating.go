package models

// SeatPlacement assigns a student to one sub-seat of a room's grid.
// Row and Col count from 1; Position indexes the sub-seat inside the
// (Row, Col) cell.
type SeatPlacement struct {
	RoomCode  string `json:"room_code"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Position  int    `json:"position"`
	StudentNo string `json:"student_no"`
	FullName  string `json:"full_name"`
}
