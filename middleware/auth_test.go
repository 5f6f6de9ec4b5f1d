package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SadmanRahman12/GreenZen/utils"
)

func newAuthTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", AuthRequired(), func(ctx *gin.Context) {
		id, _ := ctx.Get(ContextUserIDKey)
		ctx.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	r.GET("/admin", AuthRequired(), AdminRequired(), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-do-not-use")
	r := newAuthTestRouter()

	token, err := utils.GenerateToken(7, "lin", false, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"missing token", "", "", http.StatusUnauthorized},
		{"invalid token", "x-auth-token", "garbage", http.StatusUnauthorized},
		{"x-auth-token header", "x-auth-token", token, http.StatusOK},
		{"bearer header", "Authorization", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAdminRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-do-not-use")
	r := newAuthTestRouter()

	userToken, err := utils.GenerateToken(7, "lin", false, time.Hour)
	require.NoError(t, err)
	adminToken, err := utils.GenerateToken(8, "root", true, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("x-auth-token", userToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("x-auth-token", adminToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
