package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/studypal/config"
	"github.com/oksasatya/studypal/internal/container"
	pginfra "github.com/oksasatya/studypal/internal/infrastructure/postgres"
	"github.com/oksasatya/studypal/internal/infrastructure/search"
	"github.com/oksasatya/studypal/internal/interface/middleware"
	"github.com/oksasatya/studypal/internal/router"
	"github.com/oksasatya/studypal/pkg/helpers"
	"github.com/oksasatya/studypal/pkg/metrics"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// Postgres, retried while the database comes up
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife, cfg.DBConnectRetries, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	// Optional infrastructure: an empty setting disables the feature.
	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Warn("redis unavailable; rate limiting disabled")
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSBucket, cfg.GCSCredentialsJSONPath)
	if err != nil {
		logger.WithError(err).Warn("gcs unavailable; avatar upload disabled")
	}
	if gcsClient != nil {
		defer func() { _ = gcsClient.Close() }()
	}

	var planIndex *search.PlanIndex
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch client init failed; plan search disabled")
	} else if es != nil {
		planIndex = search.NewPlanIndex(es, cfg.ESPlansIndex)
		if err := planIndex.EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("ensure plans index failed; plan search disabled")
			planIndex = nil
		}
	}

	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		logger.WithError(err).Warn("rabbitmq unavailable; emails will not be queued")
	}
	defer pub.Close()

	m := metrics.New()

	// Provide singletons to the container for router wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetMetrics(m)
	container.SetTokens(helpers.NewTokenCodec(cfg.JWTSecret, cfg.JWTTTL))
	container.SetHasher(helpers.NewBcryptHasher(cfg.BcryptCost))
	container.SetGCS(gcsClient, cfg.GCSBucket)
	container.SetPlanIndex(planIndex)
	container.SetRabbitPub(pub)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP())
	} else if err := r.SetTrustedProxies(nil); err != nil {
		logger.WithError(err).Fatal("set trusted proxies")
	}
	r.Use(middleware.RequestIDMiddleware())
	corsCfg := cors.Config{
		AllowOrigins:  cfg.CORSOrigins(),
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))
	accessLogger := logger
	if !cfg.HTTPLogEnabled {
		accessLogger = nil
	}
	r.Use(middleware.AccessLog(accessLogger, m))

	reg := router.NewRegistry(r)
	router.InitModules(reg, router.BuildDeps())
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited properly")
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
