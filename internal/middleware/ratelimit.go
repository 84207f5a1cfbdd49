package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storegate/internal/apperr"
)

// RateLimit enforces a fixed-window per-client request budget backed by
// Redis. When Redis is unreachable the limiter fails open; availability of
// the gateway must not depend on the limiter's backend.
func RateLimit(rdb *redis.Client, perMinute int, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || perMinute <= 0 {
			c.Next()
			return
		}

		window := time.Now().Unix() / 60
		key := fmt.Sprintf("rl:%s:%d", c.ClientIP(), window)

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter backend unavailable")
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, time.Minute)
		}

		if count > int64(perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"kind":  apperr.ResourceExhausted.String(),
				"error": "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
