package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storegate/internal/apperr"
	"storegate/internal/models"
)

func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"kind":  apperr.Unauthenticated.String(),
				"error": "unauthenticated",
			})
			return
		}

		if _, allowed := roleSet[principal.Role]; !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"kind":  apperr.PermissionDenied.String(),
				"error": "insufficient role",
			})
			return
		}

		c.Next()
	}
}
