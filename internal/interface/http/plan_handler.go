package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/internal/application"
	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/interface/middleware"
	"github.com/oksasatya/studypal/pkg/response"
	"github.com/oksasatya/studypal/pkg/validation"
)

type PlanHandler struct {
	Svc    *application.PlanService
	Logger *logrus.Logger
}

func NewPlanHandler(svc *application.PlanService, logger *logrus.Logger) *PlanHandler {
	return &PlanHandler{Svc: svc, Logger: logger}
}

// planRequest serves both create and update; the service decides which fields are required.
type planRequest struct {
	Title     *string `json:"title" binding:"omitempty,max=120"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

func (r planRequest) input() application.PlanInput {
	return application.PlanInput{Title: r.Title, StartDate: r.StartDate, EndDate: r.EndDate}
}

type planResponse struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Title     string    `json:"title"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toPlanResponse(p *entity.Plan) planResponse {
	return planResponse{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Title:     p.Title,
		StartDate: p.StartDate.Format(entity.DateLayout),
		EndDate:   p.EndDate.Format(entity.DateLayout),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toPlanResponses(plans []*entity.Plan) []planResponse {
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResponse(p))
	}
	return out
}

func (h *PlanHandler) Create(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), middleware.IdentityFrom(c), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toPlanResponse(p), "plan created", nil)
}

func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.Svc.List(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPlanResponses(plans), "plans", map[string]any{"count": len(plans)})
}

func (h *PlanHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	plans, err := h.Svc.Search(c.Request.Context(), middleware.IdentityFrom(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPlanResponses(plans), "search results", map[string]any{"count": len(plans)})
}

func (h *PlanHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	p, err := h.Svc.Get(c.Request.Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPlanResponse(p), "plan", nil)
}

func (h *PlanHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), middleware.IdentityFrom(c), id, req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPlanResponse(p), "plan updated", nil)
}

func (h *PlanHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), middleware.IdentityFrom(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "plan deleted", nil)
}
