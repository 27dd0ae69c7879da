package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/studypal/internal/domain/entity"
)

// PasswordHasher is satisfied by *helpers.BcryptHasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenIssuer is satisfied by *helpers.TokenCodec.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, time.Time, error)
}

// JobPublisher queues background jobs such as emails. Publishing is best effort.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ObjectStore stores uploaded files and returns their public URL.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// PlanIndex keeps a searchable copy of plans. Storage stays the source of truth.
type PlanIndex interface {
	Index(ctx context.Context, p *entity.Plan) error
	Remove(ctx context.Context, planID int64) error
	RemoveOwner(ctx context.Context, ownerID int64) error
	// Search returns ids of the owner's plans matching q, best match first.
	Search(ctx context.Context, ownerID int64, q string, size int) ([]int64, error)
}
