// Package timeslot holds the interval and calendar math shared by the
// availability projection and the reservation overlap guard. Both sides must
// use the same half-open predicate so a window they disagree about cannot
// exist.
package timeslot

import (
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

// Overlaps reports whether the half-open intervals [start1, end1) and
// [start2, end2) intersect. Adjacent intervals do not overlap.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

// ParseDay resolves a YYYY-MM-DD calendar day to local midnight in the
// facility's civil timezone.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DayLayout, day, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	return t, nil
}

// DayWindow converts a local midnight into the absolute UTC window covering
// that civil day. The end bound is the next local midnight, so the window is
// 23 or 25 hours long on DST transition days rather than a naive +24h.
func DayWindow(dayStartLocal time.Time) (time.Time, time.Time) {
	dayEndLocal := dayStartLocal.AddDate(0, 0, 1)
	return dayStartLocal.UTC(), dayEndLocal.UTC()
}

// Slot is one candidate interval on the daily grid, anchored to local
// wall-clock time.
type Slot struct {
	StartLocal time.Time
	EndLocal   time.Time
}

// Hour returns the local wall-clock hour of the slot start.
func (s Slot) Hour() int {
	return s.StartLocal.Hour()
}

func (s Slot) StartUTC() time.Time {
	return s.StartLocal.UTC()
}

func (s Slot) EndUTC() time.Time {
	return s.EndLocal.UTC()
}

// Grid builds the candidate slots for one civil day: anchors step slotMinutes
// from openHour:00 and a slot is included only while it ends at or before
// closeHour:00 local. Each slot start is constructed from wall-clock
// components, so the grid stays pinned to local opening hours across DST
// transitions.
func Grid(dayStartLocal time.Time, openHour, closeHour, slotMinutes int) []Slot {
	if slotMinutes <= 0 || closeHour <= openHour {
		return nil
	}

	year, month, day := dayStartLocal.Date()
	loc := dayStartLocal.Location()

	var slots []Slot
	for m := openHour * 60; m+slotMinutes <= closeHour*60; m += slotMinutes {
		start := time.Date(year, month, day, m/60, m%60, 0, 0, loc)
		end := time.Date(year, month, day, (m+slotMinutes)/60, (m+slotMinutes)%60, 0, 0, loc)
		slots = append(slots, Slot{StartLocal: start, EndLocal: end})
	}
	return slots
}
