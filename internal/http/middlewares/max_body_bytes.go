package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies at limit bytes. Oversized bodies surface
// as *http.MaxBytesError during binding and become a 400 there. A limit of
// zero or less disables the cap.
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		return func(ctx *gin.Context) { ctx.Next() }
	}

	return func(ctx *gin.Context) {
		if body := ctx.Request.Body; body != nil && body != http.NoBody {
			ctx.Request.Body = http.MaxBytesReader(ctx.Writer, body, limit)
		}
		ctx.Next()
	}
}
