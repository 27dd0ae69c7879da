package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/studypal/internal/interface/middleware"
	"github.com/oksasatya/studypal/pkg/metrics"
)

type DebugModule struct {
	Metrics *metrics.Metrics
	Redis   *redis.Client
}

func NewDebugModule(m *metrics.Metrics, rdb *redis.Client) *DebugModule {
	return &DebugModule{Metrics: m, Redis: rdb}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Public, rate-limited per IP; scrapers on private networks are not limited.
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	rg.GET("/metrics", rl, gin.WrapH(m.Metrics.Handler()))
}
