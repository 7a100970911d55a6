package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/pkg/response"
)

// RateLimiter ventana deslizante por clave
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit limita las solicitudes por IP y ruta.
// Con limiter nil o si el limitador falla, deja pasar.
func RateLimit(limiter RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		// autenticado: el límite es por usuario
		if uid := c.GetString("user_id"); uid != "" {
			key = fmt.Sprintf("rate_limit:%s:%s", uid, c.FullPath())
		}

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
