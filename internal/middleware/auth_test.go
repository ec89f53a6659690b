package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-chat-api/internal/models"
	"github.com/harentsoaR/clinic-chat-api/internal/utils"
)

func newRouter(t *testing.T) (*gin.Engine, *utils.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := utils.NewTokenService("middleware-secret", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	authed := r.Group("/", AuthMiddleware(tokens))
	authed.GET("/me", func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID, "role": id.Role})
	})
	authed.GET("/admin", AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, tokens
}

func do(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRejectsUniformly(t *testing.T) {
	r, _ := newRouter(t)
	other, err := utils.NewTokenService("someone-else", time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue("64b7f0c2a1b2c3d4e5f60718", models.RolePatient)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":        "",
		"no bearer":      foreign,
		"garbage":        "Bearer garbage",
		"foreign secret": "Bearer " + foreign,
	} {
		t.Run(name, func(t *testing.T) {
			w := do(r, "/me", header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"Invalid or expired token"}`, w.Body.String())
		})
	}
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	r, tokens := newRouter(t)
	token, err := tokens.Issue("64b7f0c2a1b2c3d4e5f60718", models.RoleDoctor)
	require.NoError(t, err)

	w := do(r, "/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"64b7f0c2a1b2c3d4e5f60718","role":"doctor"}`, w.Body.String())
}

func TestAdminOnly(t *testing.T) {
	r, tokens := newRouter(t)
	patient, err := tokens.Issue("64b7f0c2a1b2c3d4e5f60718", models.RolePatient)
	require.NoError(t, err)
	admin, err := tokens.Issue("64b7f0c2a1b2c3d4e5f60719", models.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "Bearer "+patient).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "Bearer "+admin).Code)
}
