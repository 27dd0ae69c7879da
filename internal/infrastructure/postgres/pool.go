package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

// NewPool opens a pgx pool and pings it, retrying with exponential backoff so the API
// can start alongside a database that is still coming up.
func NewPool(ctx context.Context, dsn string, maxConns, minConns int32, maxConnLife time.Duration, retries int, logger *logrus.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = maxConnLife
	if retries < 0 {
		retries = 0
	}

	var pool *pgxpool.Pool
	backoff := retry.WithMaxRetries(uint64(retries), retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := p.Ping(pingCtx); err != nil {
			p.Close()
			if logger != nil {
				logger.WithError(err).Warn("postgres not ready, retrying")
			}
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
