package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/pkg/response"
)

// BodyLimit límite de tamaño del cuerpo de la solicitud.
// Las importaciones de planillas pasan por acá también.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "el cuerpo de la solicitud es demasiado grande")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
