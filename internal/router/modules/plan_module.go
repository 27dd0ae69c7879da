package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/studypal/internal/interface/http"
	"github.com/oksasatya/studypal/internal/interface/middleware"
)

// PlanModule wires plans and the events nested under them.
type PlanModule struct {
	Plans  *handlers.PlanHandler
	Events *handlers.EventHandler
	Redis  *redis.Client
}

func NewPlanModule(plans *handlers.PlanHandler, events *handlers.EventHandler, rdb *redis.Client) *PlanModule {
	return &PlanModule{Plans: plans, Events: events, Redis: rdb}
}

func (m *PlanModule) Register(rg *gin.RouterGroup) {
	auth := []gin.HandlerFunc{
		middleware.RequireAuth(),
		middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByUserID(), nil),
	}

	plans := rg.Group("/plans", auth...)
	{
		plans.POST("", m.Plans.Create)
		plans.GET("", m.Plans.List)
		plans.GET("/search", m.Plans.Search)
		plans.GET("/:id", m.Plans.Get)
		plans.PUT("/:id", m.Plans.Update)
		plans.DELETE("/:id", m.Plans.Delete)

		plans.POST("/:id/events", m.Events.Create)
		plans.GET("/:id/events", m.Events.List)
	}

	events := rg.Group("/events", auth...)
	{
		events.GET("/:eventId", m.Events.Get)
		events.PUT("/:eventId", m.Events.Update)
		events.DELETE("/:eventId", m.Events.Delete)
	}
}
