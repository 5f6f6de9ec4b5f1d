package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SadmanRahman12/GreenZen/models"
)

func TestCreateEcoBattleUnknownOpponent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t, &models.User{}, &models.UserProgress{}, &models.EcoBattle{})

	caller := models.User{Name: "mina", Email: "mina@example.com"}
	require.NoError(t, db.Create(&caller).Error)

	r := gin.New()
	r.Use(authAs(caller.ID))
	r.POST("/api/leaderboard/eco-battle/create", NewLeaderboardController(db).CreateEcoBattle)

	body := `{"friend_id": 42, "duration": 7}`
	req := httptest.NewRequest(http.MethodPost, "/api/leaderboard/eco-battle/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "friend not found")

	// No battle rows and, crucially, no progress row planted for the
	// nonexistent opponent.
	var battles int64
	require.NoError(t, db.Model(&models.EcoBattle{}).Count(&battles).Error)
	assert.Zero(t, battles)

	var progressRows int64
	require.NoError(t, db.Model(&models.UserProgress{}).Count(&progressRows).Error)
	assert.Zero(t, progressRows)
}

func TestCreateEcoBattleSelf(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t, &models.User{}, &models.UserProgress{}, &models.EcoBattle{})

	caller := models.User{Name: "mina", Email: "mina@example.com"}
	require.NoError(t, db.Create(&caller).Error)

	r := gin.New()
	r.Use(authAs(caller.ID))
	r.POST("/api/leaderboard/eco-battle/create", NewLeaderboardController(db).CreateEcoBattle)

	body := `{"friend_id": 1, "duration": 7}`
	req := httptest.NewRequest(http.MethodPost, "/api/leaderboard/eco-battle/create", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cannot battle yourself")
}
