package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
)

const planColumns = `id, owner_id, title, start_date, end_date, created_at, updated_at`

type PlanRepository struct {
	db DB
}

func NewPlanRepository(db DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, p *entity.Plan) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO plans (owner_id, title, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.OwnerID, p.Title, p.StartDate, p.EndDate)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return oops.In("postgres").With("operation", "insert plan").With("owner_id", p.OwnerID).Wrap(err)
	}
	return nil
}

// Update never touches owner_id: plans cannot change hands.
func (r *PlanRepository) Update(ctx context.Context, p *entity.Plan) error {
	row := r.db.QueryRow(ctx, `
		UPDATE plans
		SET title = $1, start_date = $2, end_date = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`, p.Title, p.StartDate, p.EndDate, p.ID)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return oops.In("postgres").With("operation", "update plan").With("plan_id", p.ID).Wrap(err)
	}
	return nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id int64) (*entity.Plan, error) {
	row := r.db.QueryRow(ctx, `SELECT `+planColumns+` FROM plans WHERE id = $1`, id)
	p := &entity.Plan{}
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, oops.In("postgres").With("operation", "get plan by id").With("plan_id", id).Wrap(err)
	}
	return p, nil
}

func (r *PlanRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Plan, error) {
	rows, err := r.db.Query(ctx, `SELECT `+planColumns+` FROM plans WHERE owner_id = $1 ORDER BY start_date ASC, id ASC`, ownerID)
	if err != nil {
		return nil, oops.In("postgres").With("operation", "list plans").With("owner_id", ownerID).Wrap(err)
	}
	defer rows.Close()

	plans := make([]*entity.Plan, 0)
	for rows.Next() {
		p := &entity.Plan{}
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, oops.In("postgres").With("operation", "scan plan row").Wrap(err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("postgres").With("operation", "iterate plans").Wrap(err)
	}
	return plans, nil
}

func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return oops.In("postgres").With("operation", "delete plan").With("plan_id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.PlanRepository = (*PlanRepository)(nil)
