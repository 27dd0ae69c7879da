package repository

import (
	"context"

	"github.com/oksasatya/studypal/internal/domain/entity"
)

// EventRepository persists plan events.
type EventRepository interface {
	Create(ctx context.Context, e *entity.Event) error
	Update(ctx context.Context, e *entity.Event) error
	GetByID(ctx context.Context, id int64) (*entity.Event, error)
	// ListByPlan returns the plan's events ordered by start time, then id.
	ListByPlan(ctx context.Context, planID int64) ([]*entity.Event, error)
	Delete(ctx context.Context, id int64) error
}
