package middlewares

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kicon/kiconapi/internal/http/handlers"
)

// RequireJSON rejects write requests whose body is not JSON. Bodyless writes pass
// through so the handler can report the missing fields itself.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !hasBodyMethod(c.Request.Method) || c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		mediaType, _, err := mime.ParseMediaType(c.GetHeader("Content-Type"))
		if err != nil || mediaType != "application/json" {
			handlers.RespondError(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json", nil)
			return
		}
		c.Next()
	}
}

func hasBodyMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
