package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kicon/kiconapi/internal/http/handlers"
)

func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			handlers.RespondUnAuthorized(c, "unauthorized", "Missing identity context")
			return
		}
		if role != required {
			handlers.RespondError(c, http.StatusForbidden, "forbidden", "Admin role required", nil)
			return
		}
		c.Next()
	}
}
