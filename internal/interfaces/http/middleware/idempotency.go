package middleware

import (
	"net/http"
	"time"

	"github.com/gestock/backend/internal/domain/shared"
	"github.com/gestock/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the header clients send to deduplicate writes
const IdempotencyKeyHeader = "X-Idempotency-Key"

// Idempotency rejects replays of a previously seen X-Idempotency-Key within
// the TTL. The key is namespaced by method and path, so the same key may be
// reused against different endpoints. Requests without the header pass
// through untouched.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		scopedKey := c.Request.Method + ":" + c.FullPath() + ":" + key
		fresh, err := store.MarkProcessed(c.Request.Context(), scopedKey, ttl)
		if err != nil {
			// The store being down must not block writes
			logger.Error("idempotency store unavailable",
				zap.String("key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				dto.ErrCodeIdempotentReplay,
				"This request was already processed",
			))
			return
		}

		c.Next()
	}
}
