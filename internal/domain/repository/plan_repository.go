package repository

import (
	"context"

	"github.com/oksasatya/studypal/internal/domain/entity"
)

// PlanRepository persists plans. Deleting a plan deletes its events.
type PlanRepository interface {
	Create(ctx context.Context, p *entity.Plan) error
	Update(ctx context.Context, p *entity.Plan) error
	GetByID(ctx context.Context, id int64) (*entity.Plan, error)
	// ListByOwner returns the owner's plans ordered by start date, then id.
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Plan, error)
	Delete(ctx context.Context, id int64) error
}
