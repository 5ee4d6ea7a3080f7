// Package timeslot derives the bookable sub-slots of an event's time range.
// Slots are never persisted; callers regenerate them from the event's current
// schedule whenever they are needed, so they cannot drift from it.
package timeslot

import "time"

// Slot is a derived [Start, End) interval within an event's range.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Generate returns the ordered hourly slots covering [start, end) expressed in
// the event's time zone. Slot boundaries advance by one wall-clock hour in
// loc, so a daylight-saving transition inside the range shifts the absolute
// instants but not the wall-clock boundaries. The final slot is clamped to
// end and may be shorter than an hour; a range of one hour or less yields a
// single slot equal to the full range. Returns nil if start is not before end.
func Generate(start, end time.Time, loc *time.Location) []Slot {
	if !start.Before(end) {
		return nil
	}

	var slots []Slot
	cursor := start.In(loc)
	endLocal := end.In(loc)

	for cursor.Before(endLocal) {
		next := addWallHour(cursor)
		if next.After(endLocal) {
			next = endLocal
		}
		slots = append(slots, Slot{Start: cursor, End: next})
		cursor = next
	}

	return slots
}

// ContainsStart reports whether t matches the start instant of any slot.
func ContainsStart(slots []Slot, t time.Time) bool {
	for _, s := range slots {
		if s.Start.Equal(t) {
			return true
		}
	}
	return false
}

// addWallHour advances t by one hour of wall-clock time in its location.
func addWallHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
