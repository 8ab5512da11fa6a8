package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"estate-api/internal/domain"
	"estate-api/internal/events"
	resp "estate-api/internal/transport/http/response"
)

type EventHandler struct {
	d   *events.Dispatcher
	log *zap.Logger
}

func NewEventHandler(d *events.Dispatcher, log *zap.Logger) *EventHandler {
	return &EventHandler{d: d, log: log}
}

// Ingest handles POST /api/inngest. Any non-2xx reply tells the sender the
// event was not applied so its own retry policy takes over.
func (h *EventHandler) Ingest(c *gin.Context) {
	var ev events.Envelope
	if err := c.ShouldBindJSON(&ev); err != nil {
		resp.Error(c, domain.Malformed("event envelope is not valid JSON"))
		return
	}
	if ev.Name == "" {
		resp.Error(c, domain.Malformed("event name is missing"))
		return
	}

	err := h.d.Dispatch(c.Request.Context(), ev)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp.OK(gin.H{"event": ev.Name, "id": ev.ID}))
	case errors.Is(err, domain.ErrDuplicateUser):
		c.AbortWithStatusJSON(http.StatusConflict, resp.Fail(domain.MessageOf(err, "Conflict")))
	default:
		resp.Error(c, err)
	}
}
