package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotel-pms/auth"
	"hotel-pms/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	users map[string]string
}

func (f fakeAuthenticator) Authenticate(_ context.Context, username, password string) (*models.User, error) {
	if pw, ok := f.users[username]; ok && pw == password {
		return &models.User{ID: 42, Username: username, Role: models.RoleReceptionist, Active: true}, nil
	}
	return nil, errors.New("invalid credentials")
}

func setupTestRouter(tokens *auth.Service, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(tokens, fakeAuthenticator{users: map[string]string{"desk": "desk-pass"}})}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		user, ok := GetUserContext(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": user.Username, "role": user.Role, "actor": Actor(c)})
	})
	router.GET("/protected", handlers...)
	return router
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware_Bearer(t *testing.T) {
	tokens := auth.NewService("test-secret", time.Hour)
	router := setupTestRouter(tokens)

	token, err := tokens.GenerateToken(1, "admin", models.RoleSystemAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "admin", body["username"])
	assert.Equal(t, "admin", body["actor"])
}

func TestAuthMiddleware_Basic(t *testing.T) {
	router := setupTestRouter(auth.NewService("test-secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.SetBasicAuth("desk", "desk-pass")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.RoleReceptionist, decode(t, w)["role"])

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.SetBasicAuth("desk", "nope")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, w)["code"])
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tokens := auth.NewService("test-secret", time.Hour)
	expired, err := auth.NewService("test-secret", -time.Minute).GenerateToken(1, "admin", models.RoleSystemAdmin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "MISSING_AUTH_HEADER"},
		{"bad scheme", "Token abc", "INVALID_AUTH_FORMAT"},
		{"empty bearer", "Bearer ", "INVALID_AUTH_FORMAT"},
		{"garbage token", "Bearer not.a.jwt", "INVALID_TOKEN"},
		{"expired token", "Bearer " + expired, "TOKEN_EXPIRED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(tokens)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			body := decode(t, w)
			assert.Equal(t, "error", body["status"])
			assert.Equal(t, "unauthorized", body["error"])
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewService("test-secret", time.Hour)
	router := setupTestRouter(tokens, models.RoleSystemAdmin, models.RoleOperationalManager)

	token, err := tokens.GenerateToken(5, "desk", models.RoleReceptionist)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", decode(t, w)["code"])

	token, err = tokens.GenerateToken(6, "ops", models.RoleOperationalManager)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
