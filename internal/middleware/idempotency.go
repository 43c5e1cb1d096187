package middleware

import (
	"net/http"

	"github.com/SolYield/yieldgate/internal/repository"
	"github.com/gin-gonic/gin"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"

// IdempotencyMiddleware replays the cached response for a repeated
// (caller, key) pair. Keys are scoped per caller so two owners never
// collide. Requests without the header pass straight through.
func IdempotencyMiddleware(store repository.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		idemKey := c.GetHeader(HeaderIdempotencyKey)
		if idemKey == "" {
			c.Next()
			return
		}

		caller := CallerFrom(c)
		if caller == "" {
			c.Next()
			return
		}

		fullKey := caller + ":" + idemKey

		record, hit := store.GetOrLock(fullKey)
		if hit {
			if record.Processing {
				// A concurrent request holds the lock.
				c.JSON(http.StatusConflict, gin.H{"error": "request in progress"})
				c.Abort()
				return
			}
			c.Data(record.Status, "application/json; charset=utf-8", record.Body)
			c.Abort()
			return
		}

		w := &responseBodyWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		// Pending errors are rendered by the outer error handler after
		// this middleware unwinds, so their responses cannot be cached
		// here. Server errors stay retryable either way: release the
		// lock, cache nothing.
		if len(c.Errors) == 0 && c.Writer.Status() < 500 {
			store.Save(fullKey, c.Writer.Status(), w.body)
		} else {
			store.Unlock(fullKey)
		}
	}
}

type responseBodyWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *responseBodyWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}
