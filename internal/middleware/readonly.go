package middleware

import (
	"net/http"

	"github.com/SolYield/yieldgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// ReadOnlyMiddleware rejects mutating requests while the vault is
// paused for a catalog migration. Reads and the event stream stay up.
func ReadOnlyMiddleware(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		default:
			c.Error(apperrors.NewInvalidRequest("vault is in read-only mode"))
			c.Abort()
			return
		}
	}
}
