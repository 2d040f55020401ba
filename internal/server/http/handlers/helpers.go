package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/foodbridge/internal/domain/errors"
	pkgAuth "github.com/polkiloo/foodbridge/internal/pkg/auth"
	"github.com/polkiloo/foodbridge/internal/server/http/dto"
	"github.com/polkiloo/foodbridge/internal/server/http/middleware"
)

// CurrentActor extracts the authenticated actor from context.
func CurrentActor(c *gin.Context) pkgAuth.Actor {
	actor, _ := middleware.CurrentActor(c)
	return actor
}

type errorKind struct {
	err    error
	status int
	code   string
}

var errorKinds = []errorKind{
	{domainErrors.ErrNotEligible, http.StatusForbidden, "not_eligible"},
	{domainErrors.ErrAlreadyClaimed, http.StatusConflict, "already_claimed"},
	{domainErrors.ErrInvalidStateTransition, http.StatusConflict, "invalid_state_transition"},
	{domainErrors.ErrUnavailable, http.StatusGone, "unavailable"},
	{domainErrors.ErrInsufficientStock, http.StatusUnprocessableEntity, "insufficient_stock"},
	{domainErrors.ErrValidation, http.StatusBadRequest, "validation"},
	{domainErrors.ErrNotFound, http.StatusNotFound, "not_found"},
}

// writeError maps domain errors to statuses. Unknown errors become 500 without detail.
func writeError(c *gin.Context, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			c.JSON(k.status, dto.ErrorResponse{Error: err.Error(), Code: k.code})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error", Code: "internal"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: msg, Code: "validation"})
}

// pathID parses a positive int64 path parameter, answering 400 when it is not one.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
