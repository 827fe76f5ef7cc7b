package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/study-crew/peer-assist-api/internal/middleware"
	"github.com/study-crew/peer-assist-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func assistantIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("assistantId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
