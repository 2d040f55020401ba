package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/foodbridge/internal/domain/model"
	pkgAuth "github.com/polkiloo/foodbridge/internal/pkg/auth"
	"github.com/polkiloo/foodbridge/internal/server/http/dto"
)

// RatingHandler manages donor rating endpoints.
type RatingHandler struct {
	facade RatingFacade
}

// NewRatingHandler constructs RatingHandler.
func NewRatingHandler(facade RatingFacade) *RatingHandler {
	return &RatingHandler{facade: facade}
}

var raterRoles = map[pkgAuth.Role]model.RaterRole{
	pkgAuth.RoleOrganization: model.RaterRoleOrganization,
	pkgAuth.RoleReceiver:     model.RaterRoleReceiver,
}

// Rate handles POST /api/donations/:id/ratings.
func (h *RatingHandler) Rate(c *gin.Context) {
	donationID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.RateDonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed rating payload")
		return
	}

	actor := CurrentActor(c)
	role, ok := raterRoles[actor.Role]
	if !ok {
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "role cannot rate donors", Code: "forbidden"})
		return
	}

	rating, score, err := h.facade.RateDonor(c.Request.Context(), model.NewRating{
		DonationID: donationID,
		RaterID:    actor.ID,
		RaterRole:  role,
		Stars:      req.Stars,
		Comment:    req.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.RateDonorResponse{
		Rating: toRatingResponse(rating),
		Score:  toScoreResponse(score),
	})
}

// DonorScore handles GET /api/donors/:id/rating.
func (h *RatingHandler) DonorScore(c *gin.Context) {
	donorID, ok := pathID(c, "id")
	if !ok {
		return
	}
	score, err := h.facade.DonorRating(c.Request.Context(), donorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toScoreResponse(score))
}
