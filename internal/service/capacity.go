package service

import (
	"sort"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

// roomPool tracks per-slot room occupation for one scheduling run. A room
// occupied at a slot is never released within the run, so the pool's state
// depends on the order courses are processed. That ordering is part of
// the scheduler's contract.
type roomPool struct {
	rooms    []models.Room
	occupied map[string]map[string]struct{}
}

// newRoomPool copies and orders the room universe by capacity descending
// then code ascending, the order first-fit selection scans in.
func newRoomPool(rooms []models.Room) *roomPool {
	ordered := make([]models.Room, len(rooms))
	copy(ordered, rooms)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Capacity == ordered[j].Capacity {
			return ordered[i].Code < ordered[j].Code
		}
		return ordered[i].Capacity > ordered[j].Capacity
	})
	return &roomPool{
		rooms:    ordered,
		occupied: make(map[string]map[string]struct{}),
	}
}

// FreeCapacity sums the capacities of rooms not yet occupied at the slot.
func (p *roomPool) FreeCapacity(slotKey string) int {
	taken := p.occupied[slotKey]
	total := 0
	for _, room := range p.rooms {
		if _, busy := taken[room.ID]; busy {
			continue
		}
		total += room.Capacity
	}
	return total
}

// SelectRooms picks a minimal-count subset of unoccupied rooms covering
// need seats, first-fit over the descending-capacity order. Returns nil
// when the free rooms cannot cover the need.
func (p *roomPool) SelectRooms(slotKey string, need int) []models.Room {
	taken := p.occupied[slotKey]
	var selected []models.Room
	remaining := need
	for _, room := range p.rooms {
		if _, busy := taken[room.ID]; busy {
			continue
		}
		selected = append(selected, room)
		remaining -= room.Capacity
		if remaining <= 0 {
			return selected
		}
	}
	return nil
}

// Occupy marks the rooms busy at the slot for the remainder of the run.
func (p *roomPool) Occupy(slotKey string, rooms []models.Room) {
	taken := p.occupied[slotKey]
	if taken == nil {
		taken = make(map[string]struct{}, len(rooms))
		p.occupied[slotKey] = taken
	}
	for _, room := range rooms {
		taken[room.ID] = struct{}{}
	}
}
