package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/contractflow/backend/internal/infrastructure/auth"
	"github.com/contractflow/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "middleware-test-secret",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "contractflow-test",
	})
}

func setupJWTTestRouter(svc *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(svc))
	r.GET("/api/v1/contracts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"company_id": GetJWTCompanyID(c),
			"user_id":    GetJWTUserID(c),
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuthMiddleware_MissingHeader(t *testing.T) {
	r := setupJWTTestRouter(newTestAuthService(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWTAuthMiddleware_InvalidToken(t *testing.T) {
	r := setupJWTTestRouter(newTestAuthService(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set(AuthHeaderKey, "Bearer garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestAuthService(t)
	r := setupJWTTestRouter(svc)

	companyID := uuid.New()
	userID := uuid.New()
	token, err := svc.GenerateAccessToken(auth.GenerateTokenInput{
		CompanyID: companyID,
		UserID:    userID,
		Username:  "alice",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+token.Token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), companyID.String())
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestJWTAuthMiddleware_SkipPath(t *testing.T) {
	r := setupJWTTestRouter(newTestAuthService(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("generates an ID when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		r.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("preserves an incoming ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "fixed-id")
		r.ServeHTTP(w, req)

		assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
	})
}

func TestCORSWithConfig_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSWithConfig(CORSConfig{
		AllowOrigins: []string{"https://app.example.com"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))
	r.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
