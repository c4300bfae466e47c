package service

import (
	"fmt"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Slot is one candidate (date, start time) unit of schedulable time.
// StartMin is the slot start expressed as minutes since the Unix epoch so
// rest-gap arithmetic can span days.
type Slot struct {
	Date     string
	Start    string
	StartMin int64
}

// Key identifies the slot in run-local maps and warning messages.
func (s Slot) Key() string {
	return s.Date + " " + s.Start
}

// buildSlots emits candidate slots day-major then time-ascending. Weekday
// indexes follow 0=Monday .. 6=Sunday. The clock advances by
// durationMin+gapMin and stops once start+duration would pass the daily
// end, so no slot crosses the daily window or midnight. Inverted inputs
// yield an empty sequence.
func buildSlots(startDate, endDate time.Time, dayStartMin, dayEndMin, durationMin, gapMin int, excluded map[int]bool) []Slot {
	var slots []Slot
	if durationMin <= 0 {
		return slots
	}
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		if excluded[mondayIndex(day.Weekday())] {
			continue
		}
		base := day.Unix() / 60
		for t := dayStartMin; t+durationMin <= dayEndMin; t += durationMin + gapMin {
			slots = append(slots, Slot{
				Date:     day.Format(dateLayout),
				Start:    clockString(t),
				StartMin: base + int64(t),
			})
		}
	}
	return slots
}

// mondayIndex converts Go's Sunday-based weekday to the 0=Monday
// convention used throughout the planner.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// parseClock converts "15:04" into minutes from midnight.
func parseClock(raw string) (int, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", raw, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func clockString(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func weekdaySet(days []int) map[int]bool {
	set := make(map[int]bool, len(days))
	for _, day := range days {
		if day >= 0 && day <= 6 {
			set[day] = true
		}
	}
	return set
}
