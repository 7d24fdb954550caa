package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kicon/kiconapi/internal/http/handlers"
)

// MaxBodyBytes rejects declared oversized bodies up front and caps the rest while reading.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.ContentLength > max {
			handlers.RespondError(ctx, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large", nil)
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
