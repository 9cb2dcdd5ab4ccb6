package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mr1hm/go-disaster-response/internal/models"
	"github.com/mr1hm/go-disaster-response/internal/repository"
)

const responderKey = "responder"

// IdentityProvider resolves the authenticated caller. Token issuance and
// account management live outside this service.
type IdentityProvider interface {
	GetResponder(ctx context.Context, id string) (*models.Responder, error)
}

// AuthRequired resolves the caller from the X-Responder-ID header set by the
// authenticating edge, and rejects anyone who is not an active officer or
// volunteer.
func AuthRequired(ids IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Responder-ID")
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}

		responder, err := ids.GetResponder(c.Request.Context(), id)
		if errors.Is(err, repository.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
			return
		}
		if err != nil {
			slog.Error("identity lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error."})
			return
		}
		if !responder.CanRespond() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Your account is not permitted to access this resource."})
			return
		}

		c.Set(responderKey, responder)
		c.Next()
	}
}

func callerID(c *gin.Context) string {
	if r, ok := c.Get(responderKey); ok {
		return r.(*models.Responder).ID
	}
	return ""
}
