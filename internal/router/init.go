package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/internal/application"
	"github.com/oksasatya/studypal/internal/container"
	"github.com/oksasatya/studypal/internal/domain/repository"
	pginfra "github.com/oksasatya/studypal/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/studypal/internal/interface/http"
	"github.com/oksasatya/studypal/internal/interface/middleware"
	"github.com/oksasatya/studypal/internal/router/modules"
	"github.com/oksasatya/studypal/pkg/helpers"
	"github.com/oksasatya/studypal/pkg/metrics"
	"github.com/oksasatya/studypal/pkg/validation"
)

// Deps is everything the HTTP modules need. Publisher, Avatars and Index may be nil.
type Deps struct {
	Logger  *logrus.Logger
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Tokens  *helpers.TokenCodec
	Hasher  *helpers.BcryptHasher

	Users  repository.UserRepository
	Plans  repository.PlanRepository
	Events repository.EventRepository

	Publisher application.JobPublisher
	Avatars   application.ObjectStore
	Index     application.PlanIndex

	AuthRateLimitPerMin int
	DebugMetrics        bool
}

// BuildDeps reads the singletons cmd/main.go stored in the container.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	pool := container.GetPGPool()
	return Deps{
		Logger:              container.GetLogger(),
		Redis:               container.GetRedis(),
		Metrics:             container.GetMetrics(),
		Tokens:              container.GetTokens(),
		Hasher:              container.GetHasher(),
		Users:               pginfra.NewUserRepository(pool),
		Plans:               pginfra.NewPlanRepository(pool),
		Events:              pginfra.NewEventRepository(pool),
		Publisher:           container.GetPublisher(),
		Avatars:             container.GetAvatars(),
		Index:               container.GetPlanIndex(),
		AuthRateLimitPerMin: cfg.AuthRateLimitPerMin,
		DebugMetrics:        cfg.DebugMetricsEnabled,
	}
}

// InitModules builds services and handlers from d and registers every module.
// Call once at startup, before RegisterAll.
func InitModules(r *Registry, d Deps) {
	validation.Init()

	resolver := middleware.NewIdentityResolver(d.Tokens, d.Users, d.Logger)
	r.Use(middleware.ResolveIdentity(resolver))

	authSvc := application.NewAuthService(d.Users, d.Hasher, d.Tokens, d.Publisher, d.Metrics, d.Logger)
	userSvc := application.NewUserService(d.Users, d.Hasher, d.Avatars, d.Index, d.Publisher, d.Metrics, d.Logger)
	planSvc := application.NewPlanService(d.Plans, d.Index, d.Metrics, d.Logger)
	eventSvc := application.NewEventService(d.Events, d.Plans, d.Metrics)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, d.Logger), d.Redis, d.AuthRateLimitPerMin))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, d.Logger), d.Redis))
	r.Add(modules.NewPlanModule(
		handlers.NewPlanHandler(planSvc, d.Logger),
		handlers.NewEventHandler(eventSvc, d.Logger),
		d.Redis,
	))
	if d.DebugMetrics {
		r.Add(modules.NewDebugModule(d.Metrics, d.Redis))
	}
}
