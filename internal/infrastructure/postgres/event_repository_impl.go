package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
)

const eventColumns = `id, plan_id, title, start_ts, end_ts, created_at, updated_at`

type EventRepository struct {
	db DB
}

func NewEventRepository(db DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e *entity.Event) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO events (plan_id, title, start_ts, end_ts)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, e.PlanID, e.Title, e.StartTs, e.EndTs)
	if err := row.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return oops.In("postgres").With("operation", "insert event").With("plan_id", e.PlanID).Wrap(err)
	}
	return nil
}

func (r *EventRepository) Update(ctx context.Context, e *entity.Event) error {
	row := r.db.QueryRow(ctx, `
		UPDATE events
		SET title = $1, start_ts = $2, end_ts = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`, e.Title, e.StartTs, e.EndTs, e.ID)
	if err := row.Scan(&e.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return oops.In("postgres").With("operation", "update event").With("event_id", e.ID).Wrap(err)
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*entity.Event, error) {
	row := r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	e := &entity.Event{}
	err := row.Scan(&e.ID, &e.PlanID, &e.Title, &e.StartTs, &e.EndTs, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, oops.In("postgres").With("operation", "get event by id").With("event_id", id).Wrap(err)
	}
	return e, nil
}

func (r *EventRepository) ListByPlan(ctx context.Context, planID int64) ([]*entity.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE plan_id = $1 ORDER BY start_ts ASC, id ASC`, planID)
	if err != nil {
		return nil, oops.In("postgres").With("operation", "list events").With("plan_id", planID).Wrap(err)
	}
	defer rows.Close()

	events := make([]*entity.Event, 0)
	for rows.Next() {
		e := &entity.Event{}
		if err := rows.Scan(&e.ID, &e.PlanID, &e.Title, &e.StartTs, &e.EndTs, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, oops.In("postgres").With("operation", "scan event row").Wrap(err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("postgres").With("operation", "iterate events").Wrap(err)
	}
	return events, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return oops.In("postgres").With("operation", "delete event").With("event_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.EventRepository = (*EventRepository)(nil)
