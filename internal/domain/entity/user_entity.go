package entity

import (
	"time"
)

// User is the aggregate root for the user domain and doubles as the credential record.
// PasswordHash holds a bcrypt hash and is never serialized to clients.
//
// Email is unique ignoring case; storage enforces it on write.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OwnerID is the user itself; profile operations are guarded like any other resource.
func (u *User) OwnerID() int64 { return u.ID }
