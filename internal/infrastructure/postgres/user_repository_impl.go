package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
)

const userColumns = `id, first_name, last_name, email, password_hash, avatar_url, created_at, updated_at`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create relies on the unique index on LOWER(email): two concurrent registrations for
// the same address cannot both commit.
func (r *UserRepository) Create(ctx context.Context, u *entity.User, confirm func(*entity.User) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return oops.In("postgres").With("operation", "begin create user").Wrap(err)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, password_hash, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.AvatarURL)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		_ = tx.Rollback(ctx)
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return oops.In("postgres").With("operation", "insert user").Wrap(err)
	}

	if confirm != nil {
		if err := confirm(u); err != nil {
			_ = tx.Rollback(ctx)
			u.ID = 0
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		u.ID = 0
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return oops.In("postgres").With("operation", "commit create user").Wrap(err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, password_hash = $4, avatar_url = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.AvatarURL, u.ID)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return repository.ErrNotFound
		case isUniqueViolation(err):
			return repository.ErrDuplicateEmail
		}
		return oops.In("postgres").With("operation", "update user").With("user_id", u.ID).Wrap(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, oops.In("postgres").With("operation", "get user by id").With("user_id", id).Wrap(err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, oops.In("postgres").With("operation", "get user by email").Wrap(err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, oops.In("postgres").With("operation", "user exists by email").Wrap(err)
	}
	return exists, nil
}

// Delete removes the user; plans and events go with it through ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return oops.In("postgres").With("operation", "delete user").With("user_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.AvatarURL,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
