package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/studypal/internal/interface/http"
	"github.com/oksasatya/studypal/internal/interface/middleware"
)

// AuthModule serves the public register and login endpoints.
type AuthModule struct {
	Handler   *handlers.AuthHandler
	Redis     *redis.Client
	PerMinute int
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, perMinute int) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb, PerMinute: perMinute}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Per IP and route, so register and login are budgeted separately.
	limiter := middleware.RateLimit(m.Redis, m.PerMinute, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", limiter, m.Handler.Register)
	rg.POST("/auth/login", limiter, m.Handler.Login)
}
