package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storegate/internal/apperr"
	"storegate/internal/models"
	"storegate/internal/rpcclient"
)

const principalKey = "principal"

// TokenValidator resolves a bearer token against the auth service.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*rpcclient.TokenValidation, error)
}

// Auth extracts the bearer credential, validates it remotely, and attaches
// the resolved principal to the request context. Handlers behind it must take
// identity from the principal, never from client-supplied input.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"kind":  apperr.Unauthenticated.String(),
				"error": "missing authorization",
			})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"kind":  apperr.Unauthenticated.String(),
				"error": "malformed header",
			})
			return
		}

		validation, err := validator.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			kind := apperr.KindOf(err)
			if kind != apperr.Unauthenticated {
				kind = apperr.Unavailable
			}
			c.AbortWithStatusJSON(kind.HTTPStatus(), gin.H{
				"kind":  kind.String(),
				"error": apperr.SafeMessage(err),
			})
			return
		}

		if !validation.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"kind":  apperr.Unauthenticated.String(),
				"error": "invalid token",
			})
			return
		}

		c.Set(principalKey, models.Principal{
			UserID: validation.UserID,
			Email:  validation.Email,
			Role:   models.Role(validation.Role),
		})

		c.Next()
	}
}

// PrincipalFrom returns the principal the auth middleware resolved for this
// request.
func PrincipalFrom(c *gin.Context) (models.Principal, bool) {
	val, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	principal, ok := val.(models.Principal)
	return principal, ok
}
