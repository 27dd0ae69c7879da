package entity

import "time"

// Event is a timed block inside a plan. It has no owner of its own:
// whoever owns PlanID owns the event.
type Event struct {
	ID        int64
	PlanID    int64
	Title     string
	StartTs   time.Time
	EndTs     time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
