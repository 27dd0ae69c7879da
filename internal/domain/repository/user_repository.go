package repository

import (
	"context"

	"github.com/oksasatya/studypal/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Email lookups ignore case; id lookups are exact.
type UserRepository interface {
	// Create inserts u and assigns u.ID. The email uniqueness check happens in the
	// same statement as the insert and fails with ErrDuplicateEmail.
	// confirm, when non-nil, runs before the insert is committed; an error from it
	// discards the insert.
	Create(ctx context.Context, u *entity.User, confirm func(*entity.User) error) error
	Update(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id int64) error
}
