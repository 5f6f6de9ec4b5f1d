package routes

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-do-not-use")
	t.Setenv("GIN_MODE", "test")
	t.Setenv("GIN_LOG_PATH", filepath.Join(t.TempDir(), "gin.log"))

	r := SetupRouter(nil)

	paths := []string{
		"/api/challenges/all",
		"/api/challenges/daily",
		"/api/habits",
		"/api/leaderboard/global",
		"/api/user/profile",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
