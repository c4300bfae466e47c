package models

// Room is a physical exam location with a seat grid. GroupSize is the
// number of adjacent sub-seats per grid cell (2, 3 or 4); distancing rules
// decide which of those sub-seats are usable.
type Room struct {
	ID           string `db:"id" json:"id"`
	Code         string `db:"code" json:"code"`
	Name         string `db:"name" json:"name"`
	Capacity     int    `db:"capacity" json:"capacity"`
	Rows         int    `db:"rows" json:"rows"`
	Cols         int    `db:"cols" json:"cols"`
	GroupSize    int    `db:"group_size" json:"group_size"`
	DepartmentID string `db:"department_id" json:"department_id"`
}

// RoomFilter describes query params for listing rooms.
type RoomFilter struct {
	DepartmentID string
	RoomIDs      []string
	Page         int
	PageSize     int
}
