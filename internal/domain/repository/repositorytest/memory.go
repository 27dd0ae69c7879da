// Package repositorytest provides in-memory repositories for service and HTTP tests.
//
// A Store behaves like the Postgres schema: ids are assigned on insert, emails are
// unique ignoring case, and deleting a user or plan cascades to what it owns.
package repositorytest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]entity.User
	plans  map[int64]entity.Plan
	events map[int64]entity.Event
}

func NewStore() *Store {
	return &Store{
		users:  map[int64]entity.User{},
		plans:  map[int64]entity.Plan{},
		events: map[int64]entity.Event{},
	}
}

func (s *Store) Users() *Users   { return &Users{s: s} }
func (s *Store) Plans() *Plans   { return &Plans{s: s} }
func (s *Store) Events() *Events { return &Events{s: s} }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) emailTaken(email string, except int64) bool {
	for id, u := range s.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

type Users struct{ s *Store }

var _ repository.UserRepository = (*Users)(nil)

func (r *Users) Create(_ context.Context, u *entity.User, confirm func(*entity.User) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.emailTaken(u.Email, 0) {
		return repository.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	u.ID = r.s.id()
	u.CreatedAt, u.UpdatedAt = now, now
	if confirm != nil {
		if err := confirm(u); err != nil {
			u.ID = 0
			return err
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.s.emailTaken(u.Email, u.ID) {
		return repository.ErrDuplicateEmail
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.emailTaken(email, 0), nil
}

func (r *Users) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	for pid, p := range r.s.plans {
		if p.OwnerID == id {
			r.s.deletePlan(pid)
		}
	}
	return nil
}

type Plans struct{ s *Store }

var _ repository.PlanRepository = (*Plans)(nil)

func (r *Plans) Create(_ context.Context, p *entity.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[p.OwnerID]; !ok {
		return errors.New("plans_owner_id_fkey violation")
	}
	now := time.Now().UTC()
	p.ID = r.s.id()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.plans[p.ID] = *p
	return nil
}

func (r *Plans) Update(_ context.Context, p *entity.Plan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[p.ID]; !ok {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	r.s.plans[p.ID] = *p
	return nil
}

func (r *Plans) GetByID(_ context.Context, id int64) (*entity.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *Plans) ListByOwner(_ context.Context, ownerID int64) ([]*entity.Plan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Plan, 0)
	for _, p := range r.s.plans {
		if p.OwnerID == ownerID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Plans) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deletePlan(id)
	return nil
}

func (s *Store) deletePlan(id int64) {
	delete(s.plans, id)
	for eid, e := range s.events {
		if e.PlanID == id {
			delete(s.events, eid)
		}
	}
}

type Events struct{ s *Store }

var _ repository.EventRepository = (*Events)(nil)

func (r *Events) Create(_ context.Context, e *entity.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.plans[e.PlanID]; !ok {
		return errors.New("events_plan_id_fkey violation")
	}
	now := time.Now().UTC()
	e.ID = r.s.id()
	e.CreatedAt, e.UpdatedAt = now, now
	r.s.events[e.ID] = *e
	return nil
}

func (r *Events) Update(_ context.Context, e *entity.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[e.ID]; !ok {
		return repository.ErrNotFound
	}
	e.UpdatedAt = time.Now().UTC()
	r.s.events[e.ID] = *e
	return nil
}

func (r *Events) GetByID(_ context.Context, id int64) (*entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *Events) ListByPlan(_ context.Context, planID int64) ([]*entity.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.Event, 0)
	for _, e := range r.s.events {
		if e.PlanID == planID {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTs.Equal(out[j].StartTs) {
			return out[i].StartTs.Before(out[j].StartTs)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Events) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.events, id)
	return nil
}
