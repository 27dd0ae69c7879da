package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/studypal/internal/interface/http"
	"github.com/oksasatya/studypal/internal/interface/middleware"
)

// UserModule wires the profile endpoints. Every route needs a bearer token;
// the service checks the caller owns the :id it names.
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(
		middleware.RequireAuth(),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		users.GET("/me", m.Handler.Me)
		users.GET("/:id", m.Handler.Get)
		users.PUT("/:id", m.Handler.Update)
		users.DELETE("/:id", m.Handler.Delete)
		users.PUT("/:id/password", m.Handler.ChangePassword)
		users.PUT("/:id/avatar", m.Handler.UploadAvatar)
	}
}
