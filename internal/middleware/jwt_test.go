package middleware

import (
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

	"github.com/study-crew/peer-assist-api/internal/models"
	"github.com/study-crew/peer-assist-api/internal/service"
)

type userRepoStub struct {
	user *models.User
}

func (s *userRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *userRepoStub) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func newJWTFixture(t *testing.T) (*service.AuthService, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := service.NewAuthService(&userRepoStub{user: &models.User{
		ID:           7,
		Email:        "hanna@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleAssistant,
	}}, nil, nil, service.AuthConfig{Secret: "test-secret", Expiration: time.Hour})

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "hanna@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return svc, res.AccessToken
}

func performJWT(t *testing.T, svc *service.AuthService, authorization string) (*gin.Context, int) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/assistants/7/roster", nil)
	require.NoError(t, err)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c.Request = req

	JWT(svc)(c)
	if !c.IsAborted() {
		c.Status(http.StatusOK)
	}
	return c, w.Code
}

func TestJWTAcceptsBearerToken(t *testing.T) {
	svc, token := newJWTFixture(t)

	c, code := performJWT(t, svc, "Bearer "+token)
	require.Equal(t, http.StatusOK, code)

	value, exists := c.Get(ContextUserKey)
	require.True(t, exists)
	claims := value.(*models.JWTClaims)
	assert.Equal(t, int64(7), claims.UserID)
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	svc, _ := newJWTFixture(t)

	_, code := performJWT(t, svc, "")
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	svc, token := newJWTFixture(t)

	_, code := performJWT(t, svc, "Token "+token)
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	svc, _ := newJWTFixture(t)

	_, code := performJWT(t, svc, "Bearer not.a.token")
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestOptionalJWTPassesThroughWithoutHeader(t *testing.T) {
	svc, _ := newJWTFixture(t)
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/courses/SWEN131/assistants", nil)
	require.NoError(t, err)
	c.Request = req

	OptionalJWT(svc)(c)

	assert.False(t, c.IsAborted())
	_, exists := c.Get(ContextUserKey)
	assert.False(t, exists)
}
