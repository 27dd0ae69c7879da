package main

import (
	"context"
	"errors"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/studypal/config"
	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/domain/repository"
	pginfra "github.com/oksasatya/studypal/internal/infrastructure/postgres"
	"github.com/oksasatya/studypal/pkg/helpers"
)

const (
	demoEmail    = "demo@studypal.local"
	demoPassword = "password123"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, time.Hour, cfg.DBConnectRetries, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	plans := pginfra.NewPlanRepository(pool)
	events := pginfra.NewEventRepository(pool)

	u, err := users.GetByEmail(ctx, demoEmail)
	if errors.Is(err, repository.ErrNotFound) {
		hash, hErr := helpers.NewBcryptHasher(cfg.BcryptCost).Hash(demoPassword)
		if hErr != nil {
			logger.WithError(hErr).Fatal("failed to hash password")
		}
		u = &entity.User{FirstName: "Demo", LastName: "User", Email: demoEmail, PasswordHash: hash}
		err = users.Create(ctx, u, nil)
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed user")
	}
	logger.WithField("user_id", u.ID).Infof("seeded user %s / %s", demoEmail, demoPassword)

	existing, err := plans.ListByOwner(ctx, u.ID)
	if err != nil {
		logger.WithError(err).Fatal("failed to list plans")
	}
	if len(existing) > 0 {
		logger.Info("demo plan already present")
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	p := &entity.Plan{OwnerID: u.ID, Title: "Exam week", StartDate: today, EndDate: today.AddDate(0, 0, 6)}
	if err := plans.Create(ctx, p); err != nil {
		logger.WithError(err).Fatal("failed to seed plan")
	}
	start := today.Add(9 * time.Hour)
	e := &entity.Event{PlanID: p.ID, Title: "Review notes", StartTs: start, EndTs: start.Add(2 * time.Hour)}
	if err := events.Create(ctx, e); err != nil {
		logger.WithError(err).Fatal("failed to seed event")
	}
	logger.WithFields(map[string]any{"plan_id": p.ID, "event_id": e.ID}).Info("seeded demo plan")
}
