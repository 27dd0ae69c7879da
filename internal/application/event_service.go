package application

import (
	"context"
	"errors"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
	"github.com/oksasatya/studypal/pkg/apperror"
	"github.com/oksasatya/studypal/pkg/metrics"
)

type EventService struct {
	Repo  repository.EventRepository
	Plans repository.PlanRepository

	planGuard  Guard[*entity.Plan]
	eventGuard Guard[*entity.Event]
}

func NewEventService(events repository.EventRepository, plans repository.PlanRepository, m *metrics.Metrics) *EventService {
	return &EventService{
		Repo:      events,
		Plans:     plans,
		planGuard: planGuard(plans, m),
		eventGuard: Guard[*entity.Event]{
			Resource: "event",
			Fetch:    events.GetByID,
			OwnerOf: func(ctx context.Context, e *entity.Event) (int64, error) {
				p, err := plans.GetByID(ctx, e.PlanID)
				if err != nil {
					return 0, err
				}
				return p.OwnerID, nil
			},
			Metrics: m,
		},
	}
}

// EventInput carries event fields as received. On update, nil fields are left unchanged.
type EventInput struct {
	Title   *string
	StartTs *string
	EndTs   *string
}

func (s *EventService) Create(ctx context.Context, caller entity.Identity, planID int64, in EventInput) (*entity.Event, error) {
	plan, err := s.planGuard.Require(ctx, caller, planID)
	if err != nil {
		return nil, err
	}
	if in.Title == nil || in.StartTs == nil || in.EndTs == nil {
		return nil, apperror.InvalidInput("title, startTs and endTs are required")
	}
	title, err := cleanTitle(*in.Title)
	if err != nil {
		return nil, err
	}
	start, err := ParseTimestamp(*in.StartTs)
	if err != nil {
		return nil, err
	}
	end, err := ParseTimestamp(*in.EndTs)
	if err != nil {
		return nil, err
	}
	if err := ValidateEventTimes(start, end); err != nil {
		return nil, err
	}

	e := &entity.Event{PlanID: plan.ID, Title: title, StartTs: start, EndTs: end}
	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, apperror.Internal(err)
	}
	return e, nil
}

// List returns the plan's events ordered by start time.
func (s *EventService) List(ctx context.Context, caller entity.Identity, planID int64) ([]*entity.Event, error) {
	plan, err := s.planGuard.Require(ctx, caller, planID)
	if err != nil {
		return nil, err
	}
	events, err := s.Repo.ListByPlan(ctx, plan.ID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return events, nil
}

func (s *EventService) Get(ctx context.Context, caller entity.Identity, id int64) (*entity.Event, error) {
	return s.eventGuard.Require(ctx, caller, id)
}

// Update applies a partial update and re-validates the merged time range.
func (s *EventService) Update(ctx context.Context, caller entity.Identity, id int64, in EventInput) (*entity.Event, error) {
	e, err := s.eventGuard.Require(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title, err := cleanTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		e.Title = title
	}
	start, end := e.StartTs, e.EndTs
	if in.StartTs != nil {
		if start, err = ParseTimestamp(*in.StartTs); err != nil {
			return nil, err
		}
	}
	if in.EndTs != nil {
		if end, err = ParseTimestamp(*in.EndTs); err != nil {
			return nil, err
		}
	}
	if err := ValidateEventTimes(start, end); err != nil {
		return nil, err
	}
	e.StartTs, e.EndTs = start, end

	if err := s.Repo.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("event not found")
		}
		return nil, apperror.Internal(err)
	}
	return e, nil
}

func (s *EventService) Delete(ctx context.Context, caller entity.Identity, id int64) error {
	e, err := s.eventGuard.Require(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, e.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("event not found")
		}
		return apperror.Internal(err)
	}
	return nil
}
