package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/study-crew/peer-assist-api/internal/models"
	"github.com/study-crew/peer-assist-api/internal/service"
	appErrors "github.com/study-crew/peer-assist-api/pkg/errors"
	"github.com/study-crew/peer-assist-api/pkg/response"
)

// AuthHandler exposes login and identity endpoints.
type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Authenticate user
// @Description Exchanges email and password for a bearer token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Me godoc
// @Summary Get current user
// @Description Returns the identity carried by the access token
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.JSON(c, http.StatusOK, models.UserInfo{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil)
}
