package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/studypal/pkg/response"
)

// APIPrefix is the versioned base path every module mounts under.
const APIPrefix = "/api/v1"

// Registry collects API-wide middleware and feature modules and mounts them
// under APIPrefix in a single pass.
type Registry struct {
	engine  *gin.Engine
	api     *gin.RouterGroup
	chain   []gin.HandlerFunc
	mods    []Module
	mounted bool
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{engine: engine, api: engine.Group(APIPrefix)}
}

// Use queues middleware for every module route. It must be called before RegisterAll.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.chain = append(r.chain, mw...)
}

func (r *Registry) Add(mod Module) {
	r.mods = append(r.mods, mod)
}

// RegisterAll mounts the queued middleware ahead of every module route and
// answers unknown paths with the JSON error envelope. A second call panics.
func (r *Registry) RegisterAll() {
	if r.mounted {
		panic("router: RegisterAll called twice")
	}
	r.mounted = true

	r.api.Use(r.chain...)
	for _, m := range r.mods {
		m.Register(r.api)
	}
	r.engine.NoRoute(func(c *gin.Context) {
		response.Error[any](c, http.StatusNotFound, "route not found", nil)
	})
}
