package application

import (
	"context"
	"errors"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
	"github.com/oksasatya/studypal/pkg/apperror"
	"github.com/oksasatya/studypal/pkg/metrics"
)

// Guard loads a resource by id and lets it through only when the caller owns it.
// Every operation that touches a user-owned resource goes through a Guard.
type Guard[T any] struct {
	Resource string
	Fetch    func(ctx context.Context, id int64) (T, error)
	// OwnerOf returns the id of the user owning v. Events resolve it through their plan.
	OwnerOf func(ctx context.Context, v T) (int64, error)
	Metrics *metrics.Metrics
}

// Require checks, in order: the caller is authenticated, the resource exists,
// the caller owns it. It returns the loaded resource.
func (g Guard[T]) Require(ctx context.Context, caller entity.Identity, id int64) (T, error) {
	var zero T
	if !caller.Authenticated() {
		return zero, apperror.Unauthorized("authentication required")
	}

	v, err := g.Fetch(ctx, id)
	if err != nil {
		return zero, g.lookupErr(err)
	}

	owner, err := g.OwnerOf(ctx, v)
	if err != nil {
		return zero, g.lookupErr(err)
	}
	if owner != caller.UserID {
		g.Metrics.OwnershipDenied(g.Resource)
		return zero, apperror.Forbidden("you do not have access to this " + g.Resource)
	}
	return v, nil
}

func (g Guard[T]) lookupErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(g.Resource + " not found")
	}
	return apperror.Internal(err)
}
