package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/foodbridge/internal/domain/model"
	"github.com/polkiloo/foodbridge/internal/server/http/dto"
)

// OrganizationHandler serves organization locations, stock and lookups.
type OrganizationHandler struct {
	facade OrganizationFacade
}

// NewOrganizationHandler constructs OrganizationHandler.
func NewOrganizationHandler(facade OrganizationFacade) *OrganizationHandler {
	return &OrganizationHandler{facade: facade}
}

// SetLocation handles PUT /api/organizations/me/location.
func (h *OrganizationHandler) SetLocation(c *gin.Context) {
	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed location payload")
		return
	}
	loc, err := h.facade.SetLocation(c.Request.Context(), model.OrganizationLocation{
		OrganizationID: CurrentActor(c).ID,
		Lat:            req.Lat,
		Lng:            req.Lng,
		Label:          req.Label,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LocationResponse{
		OrganizationID: loc.OrganizationID,
		Lat:            loc.Lat,
		Lng:            loc.Lng,
		Label:          loc.Label,
		UpdatedAt:      loc.UpdatedAt,
	})
}

// Inventory handles GET /api/organizations/me/inventory.
func (h *OrganizationHandler) Inventory(c *gin.Context) {
	held, err := h.facade.Inventory(c.Request.Context(), CurrentActor(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(held) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, toDonationList(held))
}

// Nearby handles GET /api/organizations/nearby?lat=&lng=&limit=.
func (h *OrganizationHandler) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		badRequest(c, "lat and lng query parameters are required")
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			badRequest(c, "invalid limit")
			return
		}
		limit = v
	}

	ranked, err := h.facade.NearbyOrganizations(c.Request.Context(), lat, lng, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(ranked) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	resp := make([]dto.NearbyOrganizationResponse, 0, len(ranked))
	for _, r := range ranked {
		resp = append(resp, dto.NearbyOrganizationResponse{
			OrganizationID: r.OrganizationID,
			Label:          r.Label,
			DistanceKm:     r.DistanceKm,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Supplier handles GET /api/items/:item/supplier.
func (h *OrganizationHandler) Supplier(c *gin.Context) {
	stock, err := h.facade.Supplier(c.Request.Context(), c.Param("item"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SupplierResponse{
		OrganizationID: stock.OrganizationID,
		Item:           stock.Item,
		Remaining:      stock.Remaining,
	})
}
