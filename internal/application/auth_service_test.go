package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/studypal/internal/domain/repository"
	"github.com/oksasatya/studypal/pkg/apperror"
	"github.com/oksasatya/studypal/pkg/mailer"
)

func TestAuthService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, RegisterInput{
		Email: "  ann@x.com ", Password: "password123", FirstName: " Ann ", LastName: "Lee",
	})
	require.NoError(t, err)
	assert.Positive(t, res.UserID)
	assert.Equal(t, "ann@x.com", res.Email)
	assert.Equal(t, "Ann", res.FirstName)
	assert.Equal(t, "Lee", res.LastName)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	id, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.UserID, id.UserID)
	assert.Equal(t, "ann@x.com", id.Email)

	stored, err := f.store.Users().GetByID(ctx, res.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.True(t, f.hasher.Verify("password123", stored.PasswordHash))

	require.Equal(t, 1, f.publisher.count())
	job := f.publisher.jobs[0].(mailer.EmailJob)
	assert.Equal(t, mailer.TemplateWelcome, job.Template)
	assert.Equal(t, "ann@x.com", job.To)
}

func TestAuthService_Register_DuplicateEmailAnyCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ann@x.com")

	for _, email := range []string{"ann@x.com", "ANN@X.COM", "Ann@x.Com"} {
		t.Run(email, func(t *testing.T) {
			_, err := f.auth.Register(ctx, RegisterInput{
				Email: email, Password: "password123", FirstName: "A", LastName: "B",
			})
			requireKind(t, apperror.KindConflict, err)
		})
	}
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	f := newFixture(t)

	cases := map[string]RegisterInput{
		"blank email":      {Email: " ", Password: "password123", FirstName: "A", LastName: "B"},
		"blank first name": {Email: "a@x.com", Password: "password123", FirstName: "", LastName: "B"},
		"blank last name":  {Email: "a@x.com", Password: "password123", FirstName: "A", LastName: "  "},
		"blank password":   {Email: "a@x.com", Password: "        ", FirstName: "A", LastName: "B"},
		"short password":   {Email: "a@x.com", Password: "1234567", FirstName: "A", LastName: "B"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.Register(context.Background(), in)
			requireKind(t, apperror.KindInvalidInput, err)
		})
	}

	_, err := f.auth.Register(context.Background(), RegisterInput{
		Email: "a@x.com", Password: "12345678", FirstName: "A", LastName: "B",
	})
	assert.NoError(t, err, "exactly eight characters is enough")
}

type failingIssuer struct{}

func (failingIssuer) Issue(int64, string) (string, time.Time, error) {
	return "", time.Time{}, errBoom
}

func TestAuthService_Register_TokenFailureLeavesNoAccount(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.store.Users(), f.hasher, failingIssuer{}, f.publisher, nil, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email: "ann@x.com", Password: "password123", FirstName: "Ann", LastName: "Lee",
	})
	requireKind(t, apperror.KindInternal, err)

	_, err = f.store.Users().GetByEmail(context.Background(), "ann@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Zero(t, f.publisher.count())

	// the address is still free
	f.register(t, "ann@x.com")
}

func TestAuthService_Register_PublishFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")

	_, err := f.auth.Register(context.Background(), RegisterInput{
		Email: "ann@x.com", Password: "password123", FirstName: "Ann", LastName: "Lee",
	})
	assert.NoError(t, err)
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.register(t, "ann@x.com")

	res, err := f.auth.Login(ctx, "ANN@x.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, ann.UserID, res.UserID)

	id, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, ann.UserID, id.UserID)
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "ann@x.com")

	_, wrongPassword := f.auth.Login(ctx, "ann@x.com", "password124")
	_, unknownEmail := f.auth.Login(ctx, "nobody@x.com", "password123")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Same(t, ErrInvalidCredentials, wrongPassword)
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(unknownEmail))
}

func TestAuthService_Login_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(context.Background(), "", "password123")
	requireKind(t, apperror.KindInvalidInput, err)

	_, err = f.auth.Login(context.Background(), "ann@x.com", "")
	requireKind(t, apperror.KindInvalidInput, err)
}

func TestAuthService_DummyHashIsUsable(t *testing.T) {
	f := newFixture(t)
	require.NotEmpty(t, f.auth.dummyHash)
	assert.True(t, f.hasher.Verify(dummyPassword, f.auth.dummyHash))
}
