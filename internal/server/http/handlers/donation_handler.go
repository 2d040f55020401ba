package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/server/http/dto"
)

// DonationHandler manages donation endpoints.
type DonationHandler struct {
	facade DonationFacade
}

// NewDonationHandler constructs DonationHandler.
func NewDonationHandler(facade DonationFacade) *DonationHandler {
	return &DonationHandler{facade: facade}
}

// Post handles POST /api/donations.
func (h *DonationHandler) Post(c *gin.Context) {
	var req dto.PostDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed donation payload")
		return
	}
	if req.PickupLat == nil || req.PickupLng == nil {
		badRequest(c, "pickup_lat and pickup_lng are required")
		return
	}

	in := model.NewDonation{
		DonorID:   CurrentActor(c).ID,
		Item:      req.Item,
		Note:      req.Note,
		Quantity:  req.Quantity,
		PickupLat: *req.PickupLat,
		PickupLng: *req.PickupLng,
	}
	if req.PreparedAt != nil {
		in.PreparedAt = req.PreparedAt.UTC()
	}
	if req.ExpiresAt != nil {
		in.ExpiresAt = req.ExpiresAt.UTC()
	}

	donation, err := h.facade.PostDonation(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDonationResponse(donation))
}

// Get handles GET /api/donations/:id.
func (h *DonationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	donation, err := h.facade.Donation(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDonationResponse(donation))
}

// ReviewQueue handles GET /api/donations/review-queue.
func (h *DonationHandler) ReviewQueue(c *gin.Context) {
	queue, err := h.facade.ReviewQueue(c.Request.Context(), CurrentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(queue) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toDonationList(queue))
}

// Accept handles POST /api/donations/:id/accept.
// Repeating an acceptance answers 200 with already_accepted set.
func (h *DonationHandler) Accept(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	donation, already, err := h.facade.AcceptDonation(c.Request.Context(), id, CurrentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := toDonationResponse(donation)
	resp.AlreadyAccepted = already
	c.JSON(http.StatusOK, resp)
}

// Reject handles POST /api/donations/:id/reject.
func (h *DonationHandler) Reject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	donation, err := h.facade.RejectDonation(c.Request.Context(), id, CurrentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDonationResponse(donation))
}
