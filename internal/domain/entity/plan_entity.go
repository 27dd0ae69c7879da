package entity

import "time"

// Plan is a study plan owned by exactly one user.
// StartDate and EndDate are calendar dates at UTC midnight.
type Plan struct {
	ID        int64
	OwnerID   int64
	Title     string
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DateLayout is the wire and storage layout for plan dates.
const DateLayout = "2006-01-02"
