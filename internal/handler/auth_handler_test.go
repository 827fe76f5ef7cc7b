package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/study-crew/peer-assist-api/internal/middleware"
	"github.com/study-crew/peer-assist-api/internal/models"
	"github.com/study-crew/peer-assist-api/internal/service"
)

type authUserRepoStub struct {
	user *models.User
}

func (s *authUserRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *authUserRepoStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &authUserRepoStub{user: &models.User{
		ID:           7,
		Name:         "Hanna",
		Email:        "hanna@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleAssistant,
	}}
	return service.NewAuthService(repo, nil, nil, service.AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(newAuthService(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := []byte(`{"email":"hanna@example.com","password":"password123"}`)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestAuthHandlerLoginBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(newAuthService(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := []byte(`{"email":"hanna@example.com","password":"wrong"}`)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Login(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLoginMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(newAuthService(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Login(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(newAuthService(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID: 7,
		Email:  "hanna@example.com",
		Role:   models.RoleAssistant,
	})

	h.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hanna@example.com")
}

func TestAuthHandlerMeWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(newAuthService(t))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Request = req

	h.Me(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
