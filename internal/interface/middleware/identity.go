package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
	"github.com/oksasatya/studypal/pkg/response"
)

const identityKey = "identity"

// TokenVerifier is satisfied by *helpers.TokenCodec.
type TokenVerifier interface {
	Verify(token string) (entity.Identity, error)
	ExtractEmail(token string) (string, error)
}

// IdentityResolver turns an Authorization header into the caller's identity.
type IdentityResolver struct {
	Tokens TokenVerifier
	Users  repository.UserRepository
	Logger *logrus.Logger
}

func NewIdentityResolver(tokens TokenVerifier, users repository.UserRepository, logger *logrus.Logger) *IdentityResolver {
	return &IdentityResolver{Tokens: tokens, Users: users, Logger: logger}
}

// Resolve never fails: a missing header, another scheme, a bad token or a token
// naming a deleted user all yield the anonymous identity.
func (r *IdentityResolver) Resolve(ctx context.Context, header string) entity.Identity {
	token, ok := bearerToken(header)
	if !ok {
		return entity.Anonymous()
	}

	claimed, err := r.Tokens.Verify(token)
	if err != nil {
		return entity.Anonymous()
	}

	u, err := r.Users.GetByID(ctx, claimed.UserID)
	if err != nil {
		if r.Logger != nil {
			entry := r.Logger.WithField("user_id", claimed.UserID)
			if errors.Is(err, repository.ErrNotFound) {
				if email, eErr := r.Tokens.ExtractEmail(token); eErr == nil {
					entry = entry.WithField("token_email", email)
				}
				entry.Debug("valid token for unknown user")
			} else {
				entry.WithError(err).Warn("identity lookup failed")
			}
		}
		return entity.Anonymous()
	}

	return entity.Identity{UserID: u.ID, Email: u.Email, Role: entity.RoleUser}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// ResolveIdentity resolves the caller once per request and stores it for the
// handlers. It never aborts; RequireAuth decides what anonymous callers may reach.
func ResolveIdentity(r *IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, r.Resolve(c.Request.Context(), c.GetHeader("Authorization")))
		c.Next()
	}
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IdentityFrom(c).Authenticated() {
			c.Header("WWW-Authenticate", `Bearer realm="studypal"`)
			response.Error[any](c, http.StatusUnauthorized, "authentication required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by ResolveIdentity, anonymous if none.
func IdentityFrom(c *gin.Context) entity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(entity.Identity); ok {
			return id
		}
	}
	return entity.Anonymous()
}
