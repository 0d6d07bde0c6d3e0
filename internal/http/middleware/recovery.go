// README: Recovery middleware (panic to 500 JSON).
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"atlas/internal/logging"
)

func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.FromContext(c.Request.Context(), logger).Error("handler panic",
					"path", c.Request.URL.Path, "panic", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()
		c.Next()
	}
}
