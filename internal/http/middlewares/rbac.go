package middlewares

import (
	"net/http"

	"github.com/geocoder89/familyauth/internal/domain/user"
	"github.com/gin-gonic/gin"
)

func (m *AuthMiddleware) RequireRole(required user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthenticated", "authentication required")
			return
		}

		if !identity.Role.Satisfies(required) {
			abortJSON(c, http.StatusForbidden, "forbidden", "access denied")
			return
		}

		c.Next()
	}
}
