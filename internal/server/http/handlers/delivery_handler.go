package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/server/http/dto"
)

// DeliveryHandler manages delivery endpoints.
type DeliveryHandler struct {
	facade DeliveryFacade
}

// NewDeliveryHandler constructs DeliveryHandler.
func NewDeliveryHandler(facade DeliveryFacade) *DeliveryHandler {
	return &DeliveryHandler{facade: facade}
}

// Update handles PATCH /api/deliveries/:id.
func (h *DeliveryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed delivery payload")
		return
	}
	delivery, err := h.facade.UpdateDelivery(c.Request.Context(), model.DeliveryUpdate{
		DeliveryID:     id,
		OrganizationID: CurrentActor(c).ID,
		Status:         model.DeliveryStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
		LiveLat:        req.LiveLat,
		LiveLng:        req.LiveLng,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDeliveryResponse(delivery))
}

// Get handles GET /api/deliveries/:id.
func (h *DeliveryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	delivery, err := h.facade.Delivery(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDeliveryResponse(delivery))
}
