package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	pkgAuth "github.com/polkiloo/foodbridge/internal/pkg/auth"
	"github.com/polkiloo/foodbridge/internal/server/http/dto"
)

const (
	// ActorContextKey is a gin context key for the authenticated actor.
	ActorContextKey = "actor"
	tokenQueryParam = "token"
)

// ActorParser resolves bearer tokens into actors.
type ActorParser interface {
	ParseToken(token string) (pkgAuth.Actor, error)
}

// ActorRequired ensures the caller presents a valid actor token before accessing handler.
func ActorRequired(parser ActorParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		actor, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				abort(c, http.StatusUnauthorized, "unauthorized", "invalid bearer token")
				return
			}
			_ = c.Error(err)
			abort(c, http.StatusInternalServerError, "internal", "internal error")
			return
		}

		c.Set(ActorContextKey, actor)
		c.Next()
	}
}

// RequireRole lets only actors with one of roles through.
func RequireRole(roles ...pkgAuth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok || !slices.Contains(roles, actor.Role) {
			abort(c, http.StatusForbidden, "forbidden", "role not allowed")
			return
		}
		c.Next()
	}
}

// CurrentActor returns the actor stored by ActorRequired.
func CurrentActor(c *gin.Context) (pkgAuth.Actor, bool) {
	val, ok := c.Get(ActorContextKey)
	if !ok {
		return pkgAuth.Actor{}, false
	}
	actor, ok := val.(pkgAuth.Actor)
	return actor, ok
}

// extractToken reads the Authorization header, falling back to the token query
// parameter browsers use for websocket upgrades.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(c.Query(tokenQueryParam))
}

func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg, Code: code})
}
