package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
)

var userCols = []string{"id", "first_name", "last_name", "email", "password_hash", "avatar_url", "created_at", "updated_at"}

func newUser() *entity.User {
	return &entity.User{FirstName: "Ann", LastName: "Lee", Email: "ann@x.com", PasswordHash: "$2a$hash"}
}

func TestUserRepository_Create(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		confirm   func(*entity.User) error
		setupMock func(mock pgxmock.PgxPoolIface)
		wantID    int64
		wantErr   error
		errMsg    string
	}{
		{
			name:    "commits after confirm",
			confirm: func(u *entity.User) error { return nil },
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("Ann", "Lee", "ann@x.com", "$2a$hash", "").
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))
				mock.ExpectCommit()
			},
			wantID: 5,
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("Ann", "Lee", "ann@x.com", "$2a$hash", "").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
				mock.ExpectRollback()
			},
			wantErr: repository.ErrDuplicateEmail,
		},
		{
			name:    "confirm failure rolls back",
			confirm: func(u *entity.User) error { return errors.New("signing failed") },
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("Ann", "Lee", "ann@x.com", "$2a$hash", "").
					WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))
				mock.ExpectRollback()
			},
			errMsg: "signing failed",
		},
		{
			name: "begin failure",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectBegin().WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			u := newUser()
			err = NewUserRepository(mock).Create(context.Background(), u, tt.confirm)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, u.ID)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Zero(t, u.ID)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, u.ID)
				assert.Equal(t, now, u.CreatedAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE LOWER(email) = LOWER($1)`)).
		WithArgs("ANN@X.COM").
		WillReturnRows(pgxmock.NewRows(userCols).AddRow(int64(3), "Ann", "Lee", "ann@x.com", "h", "", now, now))

	u, err := NewUserRepository(mock).GetByEmail(context.Background(), "ANN@X.COM")
	require.NoError(t, err)
	assert.Equal(t, int64(3), u.ID)
	assert.Equal(t, "ann@x.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM users WHERE id`).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows(userCols))

	_, err = NewUserRepository(mock).GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	t.Run("unique violation maps to duplicate email", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		u := newUser()
		u.ID = 2
		mock.ExpectQuery(`UPDATE users`).
			WithArgs(u.FirstName, u.LastName, u.Email, u.PasswordHash, u.AvatarURL, u.ID).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		err = NewUserRepository(mock).Update(context.Background(), u)
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		u := newUser()
		u.ID = 2
		mock.ExpectQuery(`UPDATE users`).
			WithArgs(u.FirstName, u.LastName, u.Email, u.PasswordHash, u.AvatarURL, u.ID).
			WillReturnRows(pgxmock.NewRows([]string{"updated_at"}))

		err = NewUserRepository(mock).Update(context.Background(), u)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "not found", affected: 0, wantErr: repository.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectExec(`DELETE FROM users`).
				WithArgs(int64(4)).
				WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))

			err = NewUserRepository(mock).Delete(context.Background(), 4)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("ann@x.com").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := NewUserRepository(mock).ExistsByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
