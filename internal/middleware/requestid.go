package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey for storing the request ID in the Gin context
const RequestIDKey = "request_id"

const requestIDHeader = "X-Request-ID"

// RequestID attaches an identifier to every request, honoring one supplied
// by the caller and minting a fresh one otherwise. The ID is echoed back in
// the response headers and joins the request logger fields.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)

		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID, or "" outside of it.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		return id.(string)
	}
	return ""
}
