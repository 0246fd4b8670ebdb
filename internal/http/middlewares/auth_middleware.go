package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/familyauth/internal/actorctx"
	"github.com/geocoder89/familyauth/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (user.Identity, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAuth answers 401 when no bearer token is presented and 403 when
// the presented token does not verify.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthenticated", "authentication required")
			return
		}

		identity, err := m.jwt.Verify(raw)
		if err != nil {
			abortJSON(c, http.StatusForbidden, "invalid_token", "invalid or expired token")
			return
		}

		c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), identity))

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// IdentityFromContext returns the caller stored by RequireAuth.
func IdentityFromContext(c *gin.Context) (user.Identity, bool) {
	return actorctx.IdentityFrom(c.Request.Context())
}
