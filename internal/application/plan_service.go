package application

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
	"github.com/oksasatya/studypal/pkg/apperror"
	"github.com/oksasatya/studypal/pkg/metrics"
)

// MaxTitleLength applies to plan and event titles.
const MaxTitleLength = 120

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

type PlanService struct {
	Repo   repository.PlanRepository
	Index  PlanIndex
	Logger *logrus.Logger

	guard Guard[*entity.Plan]
}

// NewPlanService wires the service. index may be nil; Search then returns an error
// of kind Unavailable.
func NewPlanService(plans repository.PlanRepository, index PlanIndex, m *metrics.Metrics, logger *logrus.Logger) *PlanService {
	return &PlanService{
		Repo:   plans,
		Index:  index,
		Logger: logger,
		guard:  planGuard(plans, m),
	}
}

func planGuard(plans repository.PlanRepository, m *metrics.Metrics) Guard[*entity.Plan] {
	return Guard[*entity.Plan]{
		Resource: "plan",
		Fetch:    plans.GetByID,
		OwnerOf:  func(_ context.Context, p *entity.Plan) (int64, error) { return p.OwnerID, nil },
		Metrics:  m,
	}
}

// PlanInput carries plan fields as received. On update, nil fields are left unchanged.
type PlanInput struct {
	Title     *string
	StartDate *string
	EndDate   *string
}

func (s *PlanService) Create(ctx context.Context, caller entity.Identity, in PlanInput) (*entity.Plan, error) {
	if !caller.Authenticated() {
		return nil, apperror.Unauthorized("authentication required")
	}
	if in.Title == nil || in.StartDate == nil || in.EndDate == nil {
		return nil, apperror.InvalidInput("title, startDate and endDate are required")
	}
	title, err := cleanTitle(*in.Title)
	if err != nil {
		return nil, err
	}
	start, err := ParseDate(*in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(*in.EndDate)
	if err != nil {
		return nil, err
	}
	if err := ValidatePlanDates(start, end); err != nil {
		return nil, err
	}

	p := &entity.Plan{OwnerID: caller.UserID, Title: title, StartDate: start, EndDate: end}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, apperror.Internal(err)
	}
	s.index(ctx, p)
	return p, nil
}

// List returns the caller's plans ordered by start date.
func (s *PlanService) List(ctx context.Context, caller entity.Identity) ([]*entity.Plan, error) {
	if !caller.Authenticated() {
		return nil, apperror.Unauthorized("authentication required")
	}
	plans, err := s.Repo.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return plans, nil
}

func (s *PlanService) Get(ctx context.Context, caller entity.Identity, id int64) (*entity.Plan, error) {
	return s.guard.Require(ctx, caller, id)
}

// Update applies a partial update and re-validates the merged date range.
func (s *PlanService) Update(ctx context.Context, caller entity.Identity, id int64, in PlanInput) (*entity.Plan, error) {
	p, err := s.guard.Require(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title, err := cleanTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		p.Title = title
	}
	start, end := p.StartDate, p.EndDate
	if in.StartDate != nil {
		if start, err = ParseDate(*in.StartDate); err != nil {
			return nil, err
		}
	}
	if in.EndDate != nil {
		if end, err = ParseDate(*in.EndDate); err != nil {
			return nil, err
		}
	}
	if err := ValidatePlanDates(start, end); err != nil {
		return nil, err
	}
	p.StartDate, p.EndDate = start, end

	if err := s.Repo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("plan not found")
		}
		return nil, apperror.Internal(err)
	}
	s.index(ctx, p)
	return p, nil
}

// Delete removes the plan and its events.
func (s *PlanService) Delete(ctx context.Context, caller entity.Identity, id int64) error {
	p, err := s.guard.Require(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("plan not found")
		}
		return apperror.Internal(err)
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, p.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("plan_id", p.ID).Warn("remove plan from search index failed")
		}
	}
	return nil
}

// Search finds the caller's plans by title. Hits are reloaded from storage and
// re-checked for ownership, so a stale index can never leak another user's plan.
func (s *PlanService) Search(ctx context.Context, caller entity.Identity, q string, size int) ([]*entity.Plan, error) {
	if !caller.Authenticated() {
		return nil, apperror.Unauthorized("authentication required")
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.InvalidInput("query is required")
	}
	if s.Index == nil {
		return nil, apperror.New(apperror.KindUnavailable, "search is not configured")
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}

	ids, err := s.Index.Search(ctx, caller.UserID, q, size)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnavailable, "search failed", err)
	}

	out := make([]*entity.Plan, 0, len(ids))
	for _, id := range ids {
		p, err := s.Repo.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if p.OwnerID != caller.UserID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *PlanService) index(ctx context.Context, p *entity.Plan) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("plan_id", p.ID).Warn("index plan failed")
	}
}

func cleanTitle(raw string) (string, error) {
	t := strings.TrimSpace(raw)
	if t == "" {
		return "", apperror.InvalidInput("title cannot be blank")
	}
	if utf8.RuneCountInString(t) > MaxTitleLength {
		return "", apperror.InvalidInput("title must be at most 120 characters")
	}
	return t, nil
}
