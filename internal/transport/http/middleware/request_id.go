package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Iapetus-11/link-shortener/internal/infra/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a correlation identifier to the request context and the
// response headers. An inbound X-Request-ID is honored only when it parses as
// a UUID; anything else is replaced so clients cannot inject arbitrary values
// into logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, reqID)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), logger.RequestIDKey{}, reqID),
		)

		c.Next()
	}
}

// RequestIDFrom returns the correlation identifier for the request, if any.
func RequestIDFrom(c *gin.Context) string {
	if id, ok := c.Request.Context().Value(logger.RequestIDKey{}).(string); ok {
		return id
	}
	return ""
}
