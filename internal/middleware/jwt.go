package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/study-crew/peer-assist-api/internal/service"
	appErrors "github.com/study-crew/peer-assist-api/pkg/errors"
	"github.com/study-crew/peer-assist-api/pkg/response"
)

// ContextUserKey is the gin context key storing JWT claims.
const ContextUserKey = "currentUser"

// JWT protects routes by requiring a valid access token.
func JWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or malformed authorization header"))
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// OptionalJWT attaches claims when a valid token is present but never blocks.
func OptionalJWT(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := authService.ValidateToken(token); err == nil {
				c.Set(ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
