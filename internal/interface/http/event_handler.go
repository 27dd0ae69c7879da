package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/studypal/internal/application"
	"github.com/oksasatya/studypal/internal/domain/entity"
	"github.com/oksasatya/studypal/internal/interface/middleware"
	"github.com/oksasatya/studypal/pkg/response"
	"github.com/oksasatya/studypal/pkg/validation"
)

type EventHandler struct {
	Svc    *application.EventService
	Logger *logrus.Logger
}

func NewEventHandler(svc *application.EventService, logger *logrus.Logger) *EventHandler {
	return &EventHandler{Svc: svc, Logger: logger}
}

type eventRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=120"`
	StartTs *string `json:"startTs"`
	EndTs   *string `json:"endTs"`
}

func (r eventRequest) input() application.EventInput {
	return application.EventInput{Title: r.Title, StartTs: r.StartTs, EndTs: r.EndTs}
}

type eventResponse struct {
	ID        int64     `json:"id"`
	PlanID    int64     `json:"planId"`
	Title     string    `json:"title"`
	StartTs   time.Time `json:"startTs"`
	EndTs     time.Time `json:"endTs"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toEventResponse(e *entity.Event) eventResponse {
	return eventResponse{
		ID:        e.ID,
		PlanID:    e.PlanID,
		Title:     e.Title,
		StartTs:   e.StartTs,
		EndTs:     e.EndTs,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (h *EventHandler) Create(c *gin.Context) {
	planID, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	e, err := h.Svc.Create(c.Request.Context(), middleware.IdentityFrom(c), planID, req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toEventResponse(e), "event created", nil)
}

func (h *EventHandler) List(c *gin.Context) {
	planID, err := pathID(c, "id")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	events, err := h.Svc.List(c.Request.Context(), middleware.IdentityFrom(c), planID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	response.Success(c, http.StatusOK, out, "events", map[string]any{"count": len(out)})
}

func (h *EventHandler) Get(c *gin.Context) {
	id, err := pathID(c, "eventId")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	e, err := h.Svc.Get(c.Request.Context(), middleware.IdentityFrom(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toEventResponse(e), "event", nil)
}

func (h *EventHandler) Update(c *gin.Context) {
	id, err := pathID(c, "eventId")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	e, err := h.Svc.Update(c.Request.Context(), middleware.IdentityFrom(c), id, req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toEventResponse(e), "event updated", nil)
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "eventId")
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), middleware.IdentityFrom(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "event deleted", nil)
}
