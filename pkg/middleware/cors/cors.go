package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders = "Authorization, Content-Type, X-Requested-With, X-Request-ID"
	allowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
)

// New builds a CORS middleware. An empty origin list allows any origin.
func New(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[normalize(o)] = struct{}{}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		origin := c.GetHeader("Origin")

		switch {
		case origin == "" && len(allowed) == 0:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && permitted(allowed, origin):
			h.Set("Access-Control-Allow-Origin", origin)
		}

		h.Set("Vary", "Origin")
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func permitted(allowed map[string]struct{}, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[normalize(origin)]
	return ok
}

func normalize(origin string) string {
	return strings.TrimRight(strings.TrimSpace(origin), "/")
}
