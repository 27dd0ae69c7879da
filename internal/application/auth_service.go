package application

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
	"github.com/oksasatya/studypal/pkg/apperror"
	"github.com/oksasatya/studypal/pkg/helpers"
	"github.com/oksasatya/studypal/pkg/mailer"
	"github.com/oksasatya/studypal/pkg/metrics"
)

// ErrInvalidCredentials is the one error Login returns for an unknown email or a
// wrong password, so callers cannot probe which accounts exist.
var ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")

var errPasswordTooShort = apperror.InvalidInput("password must be at least 8 characters")

// dummyPassword is hashed once at construction; unknown-email logins compare against it.
const dummyPassword = "studypal-no-such-user"

type AuthService struct {
	Users     repository.UserRepository
	Hasher    PasswordHasher
	Tokens    TokenIssuer
	Publisher JobPublisher
	Metrics   *metrics.Metrics
	Logger    *logrus.Logger

	dummyHash string
}

// NewAuthService wires the service. publisher may be nil; welcome emails are then skipped.
func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer, publisher JobPublisher, m *metrics.Metrics, logger *logrus.Logger) *AuthService {
	s := &AuthService{
		Users:     users,
		Hasher:    hasher,
		Tokens:    tokens,
		Publisher: publisher,
		Metrics:   m,
		Logger:    logger,
	}
	if h, err := hasher.Hash(dummyPassword); err == nil {
		s.dummyHash = h
	}
	return s
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// AuthResult is what a successful register or login hands back to the client.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    int64
	FirstName string
	LastName  string
	Email     string
}

// Register creates the account and issues its first token. The insert and the token
// issuance commit together: if signing fails, no account is left behind.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if in.Email == "" || in.FirstName == "" || in.LastName == "" || strings.TrimSpace(in.Password) == "" {
		s.Metrics.AuthAttempt("register", "invalid_input")
		return nil, apperror.InvalidInput("email, password, firstName and lastName are required")
	}
	if utf8.RuneCountInString(in.Password) < helpers.MinPasswordLength {
		s.Metrics.AuthAttempt("register", "invalid_input")
		return nil, errPasswordTooShort
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		s.Metrics.AuthAttempt("register", "error")
		return nil, apperror.Internal(err)
	}

	u := &entity.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
	}

	var res *AuthResult
	err = s.Users.Create(ctx, u, func(created *entity.User) error {
		tok, exp, err := s.Tokens.Issue(created.ID, created.Email)
		if err != nil {
			return err
		}
		res = newAuthResult(created, tok, exp)
		return nil
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		s.Metrics.AuthAttempt("register", "conflict")
		return nil, apperror.Conflict("email already registered")
	}
	if err != nil {
		s.Metrics.AuthAttempt("register", "error")
		helpers.LogError(s.Logger, "register failed", err, logrus.Fields{"op": "register"})
		return nil, apperror.Internal(err)
	}

	s.Metrics.AuthAttempt("register", "success")
	s.publish(ctx, mailer.EmailJob{
		To:       u.Email,
		Subject:  "Welcome to StudyPal",
		Template: mailer.TemplateWelcome,
		Data:     map[string]any{"Name": u.FirstName},
	})
	return res, nil
}

// Login verifies the password and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		s.Metrics.AuthAttempt("login", "invalid_input")
		return nil, apperror.InvalidInput("email and password are required")
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// Same bcrypt work as a real account, then the same error.
		s.Hasher.Verify(password, s.dummyHash)
		s.Metrics.AuthAttempt("login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.Metrics.AuthAttempt("login", "error")
		helpers.LogError(s.Logger, "login lookup failed", err, logrus.Fields{"op": "login"})
		return nil, apperror.Internal(err)
	}

	if !s.Hasher.Verify(password, u.PasswordHash) {
		s.Metrics.AuthAttempt("login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	tok, exp, err := s.Tokens.Issue(u.ID, u.Email)
	if err != nil {
		s.Metrics.AuthAttempt("login", "error")
		helpers.LogError(s.Logger, "issue token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, apperror.Internal(err)
	}
	s.Metrics.AuthAttempt("login", "success")
	return newAuthResult(u, tok, exp), nil
}

func (s *AuthService) publish(ctx context.Context, job mailer.EmailJob) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Warn("publish email job failed")
	}
}

func newAuthResult(u *entity.User, tok string, exp time.Time) *AuthResult {
	return &AuthResult{
		Token:     tok,
		ExpiresAt: exp,
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}
