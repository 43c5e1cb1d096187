package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/SolYield/yieldgate/internal/config"
	"github.com/SolYield/yieldgate/internal/identity"
	"github.com/gin-gonic/gin"
)

const (
	HeaderIdentity  = "X-Vault-Identity"
	HeaderSignature = "X-Vault-Signature"

	ContextCallerKey = "caller"
)

// AuthMiddleware resolves the caller identity for every /v1 request.
// The identity header is always required; with verify_signatures on,
// the request body must additionally carry a personal-sign signature
// recoverable to the claimed identity.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetHeader(HeaderIdentity)
		if caller == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity header"})
			c.Abort()
			return
		}

		if cfg != nil && cfg.Auth.VerifySignatures {
			sig := c.GetHeader(HeaderSignature)
			if sig == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "missing signature header"})
				c.Abort()
				return
			}

			var body []byte
			if c.Request.Body != nil {
				body, _ = io.ReadAll(c.Request.Body)
				c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
			}

			recovered, err := identity.Recover(body, sig)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unrecoverable signature"})
				c.Abort()
				return
			}
			if !identity.Equal(recovered, caller) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "signature does not match identity"})
				c.Abort()
				return
			}
		}

		c.Set(ContextCallerKey, caller)
		c.Next()
	}
}

// CallerFrom returns the authenticated caller identity, empty if the
// request never passed AuthMiddleware.
func CallerFrom(c *gin.Context) string {
	if v, ok := c.Get(ContextCallerKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
