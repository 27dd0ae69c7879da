package container

import (
	"cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/config"
	"github.com/oksasatya/studypal/internal/application"
	"github.com/oksasatya/studypal/internal/infrastructure/search"
	"github.com/oksasatya/studypal/pkg/helpers"
	"github.com/oksasatya/studypal/pkg/metrics"
)

// app-level container to share constructed components across packages.
// Optional clients are stored as interfaces only when configured, so a missing
// client reads back as a nil interface and the feature using it is disabled.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	metricsReg  *metrics.Metrics

	tokenCodec *helpers.TokenCodec
	hasher     *helpers.BcryptHasher

	publisher application.JobPublisher
	avatars   application.ObjectStore
	planIndex application.PlanIndex
)

func SetConfig(c *config.Config)             { cfg = c }
func GetConfig() *config.Config              { return cfg }
func SetLogger(l *logrus.Logger)             { logger = l }
func GetLogger() *logrus.Logger              { return logger }
func SetPGPool(p *pgxpool.Pool)              { pgPool = p }
func GetPGPool() *pgxpool.Pool               { return pgPool }
func SetRedis(r *redis.Client)               { redisClient = r }
func GetRedis() *redis.Client                { return redisClient }
func SetMetrics(m *metrics.Metrics)          { metricsReg = m }
func GetMetrics() *metrics.Metrics           { return metricsReg }
func SetTokens(t *helpers.TokenCodec)        { tokenCodec = t }
func GetTokens() *helpers.TokenCodec         { return tokenCodec }
func SetHasher(h *helpers.BcryptHasher)      { hasher = h }
func GetHasher() *helpers.BcryptHasher       { return hasher }
func GetPublisher() application.JobPublisher { return publisher }
func GetAvatars() application.ObjectStore    { return avatars }
func GetPlanIndex() application.PlanIndex    { return planIndex }

func SetRabbitPub(p *helpers.RabbitPublisher) {
	publisher = nil
	if p != nil {
		publisher = p
	}
}

func SetGCS(c *storage.Client, bucket string) {
	avatars = nil
	if c != nil && bucket != "" {
		avatars = &helpers.GCSStore{Client: c, Bucket: bucket}
	}
}

func SetPlanIndex(ix *search.PlanIndex) {
	planIndex = nil
	if ix != nil {
		planIndex = ix
	}
}
