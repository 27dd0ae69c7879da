package helpers

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/studypal/internal/domain/entity"
)

// ErrInvalidToken is the only error Verify returns. Callers cannot tell a bad
// signature from an expired or malformed token.
var ErrInvalidToken = errors.New("invalid token")

// TokenCodec issues and verifies signed, time-limited identity tokens (HS256 JWT).
// The secret is fixed at construction.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the codec that reads time from now.
func (m *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c := *m
	c.now = now
	return &c
}

func (m *TokenCodec) TTL() time.Duration { return m.ttl }

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue signs a token for the user; sub is the decimal user id.
func (m *TokenCodec) Issue(userID int64, email string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// Verify checks algorithm, signature and expiry, then returns the identity the token names.
func (m *TokenCodec) Verify(tokenStr string) (entity.Identity, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	tkn, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !tkn.Valid {
		return entity.Identity{}, ErrInvalidToken
	}
	uid, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || uid <= 0 || claims.Email == "" {
		return entity.Identity{}, ErrInvalidToken
	}
	return entity.Identity{UserID: uid, Email: claims.Email, Role: entity.RoleUser}, nil
}

// ExtractEmail reads the email claim without checking the signature.
// Only call it on a token Verify has already accepted.
func (m *TokenCodec) ExtractEmail(tokenStr string) (string, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return "", ErrInvalidToken
	}
	if claims.Email == "" {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}
