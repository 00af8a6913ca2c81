package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/3xSu/FilmComment/pkg/context"
	"github.com/3xSu/FilmComment/pkg/jwt"
	"github.com/3xSu/FilmComment/types"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	whoami := func(c *gin.Context) {
		a := context.GetActor(c)
		c.JSON(http.StatusOK, gin.H{"uid": a.UserID, "role": a.Role})
	}
	r.GET("/api/x", OptionalAuth(secret), whoami)
	r.GET("/user/x", Auth(secret), whoami)
	r.GET("/admin/x", Auth(secret), AdminOnly(), whoami)
	return r
}

func token(t *testing.T, uid int64, role int) string {
	t.Helper()
	s, err := jwt.GenerateToken(secret, uid, role, jwt.TypeAccess, time.Hour)
	require.NoError(t, err)
	return "Bearer " + s
}

func do(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthGates(t *testing.T) {
	r := newRouter()
	user := token(t, 10, types.RoleUser)
	admin := token(t, 1, types.RoleAdmin)

	cases := []struct {
		name   string
		path   string
		auth   string
		status int
		body   string
	}{
		{"public anonymous", "/api/x", "", http.StatusOK, `"uid":0`},
		{"public bad token is anonymous", "/api/x", "Bearer nope", http.StatusOK, `"uid":0`},
		{"public with token", "/api/x", user, http.StatusOK, `"uid":10`},
		{"user missing header", "/user/x", "", http.StatusUnauthorized, ""},
		{"user malformed header", "/user/x", "Token abc", http.StatusUnauthorized, ""},
		{"user invalid token", "/user/x", "Bearer abc", http.StatusUnauthorized, ""},
		{"user ok", "/user/x", user, http.StatusOK, `"role":1`},
		{"admin as user", "/admin/x", user, http.StatusForbidden, ""},
		{"admin ok", "/admin/x", admin, http.StatusOK, `"uid":1`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, tc.path, tc.auth)
			assert.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				assert.Contains(t, w.Body.String(), tc.body)
			}
		})
	}
}

func TestExpiredToken(t *testing.T) {
	r := newRouter()
	s, err := jwt.GenerateToken(secret, 10, types.RoleUser, jwt.TypeAccess, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/user/x", "Bearer "+s).Code)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), GinZap(), PrometheusMiddleware())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "系统异常")
}
