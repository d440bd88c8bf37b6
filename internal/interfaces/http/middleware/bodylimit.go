package middleware

import (
	"net/http"

	"github.com/bizdocs/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimitConfig sets the request body limits
type BodyLimitConfig struct {
	MaxBytes int64
	// RouteLimits overrides MaxBytes for route patterns such as
	// "/api/v1/invoices/:id/stamped/scan"
	RouteLimits map[string]int64
}

// BodyLimit rejects requests whose declared body exceeds maxBytes and caps
// streamed bodies at the same size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return BodyLimitWithConfig(BodyLimitConfig{MaxBytes: maxBytes})
}

// BodyLimitWithConfig is BodyLimit with per-route limits
func BodyLimitWithConfig(cfg BodyLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		maxBytes := cfg.MaxBytes
		if limit, ok := cfg.RouteLimits[c.FullPath()]; ok {
			maxBytes = limit
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
