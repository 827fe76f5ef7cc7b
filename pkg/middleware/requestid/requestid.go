// Package requestid tags every request with a correlation ID.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request ID on both requests and responses.
const Header = "X-Request-ID"

const contextKey = "request_id"

// Middleware reuses a caller-supplied request ID when it parses as a UUID
// and generates a fresh one otherwise.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(Header, id)
		c.Next()
	}
}

// Value returns the ID assigned to this request, or "" outside the middleware.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}
