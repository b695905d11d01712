package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/backstage/services/catalog/internal/service"
)

// EventHandler exposes aggregate event histories
type EventHandler struct {
	service service.Service
}

// NewEventHandler creates a new EventHandler instance
func NewEventHandler(svc service.Service) *EventHandler {
	return &EventHandler{service: svc}
}

// GetHistory returns the ordered event history of one aggregate
func (h *EventHandler) GetHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.service.AggregateHistory(c.Request.Context(), id)
	respond(c, http.StatusOK, res, err)
}
