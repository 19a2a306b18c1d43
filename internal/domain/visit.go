package domain

import "time"

// Visit is a single appointment in a pet's history.
type Visit struct {
	ID          int
	PetID       int
	Date        time.Time // calendar day, UTC midnight
	Description string
}

// NewVisit returns a transient visit dated on the calendar day of now.
func NewVisit(now time.Time) *Visit {
	return &Visit{Date: Day(now)}
}

// IsNew reports whether the visit has not been persisted yet.
func (v *Visit) IsNew() bool {
	return v.ID == 0
}

// Day truncates t to midnight UTC of its calendar day.
// Birth dates and visit dates carry no time-of-day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
