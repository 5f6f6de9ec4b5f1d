package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SadmanRahman12/GreenZen/middleware"
	"github.com/SadmanRahman12/GreenZen/models"
)

func newTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}

// authAs stands in for the JWT middleware and marks the request as the
// given user.
func authAs(userID uint) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserIDKey, userID)
	}
}

func TestCompleteRejectsForeignHabit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t, &models.User{}, &models.Habit{})
	require.NoError(t, db.Create(&models.Habit{UserID: 2, Name: "Bike to work", Points: 10}).Error)

	r := gin.New()
	r.Use(authAs(1))
	r.PUT("/api/habits/complete/:id", NewHabitController(db).Complete)

	req := httptest.NewRequest(http.MethodPut, "/api/habits/complete/1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "not authorized")

	// The foreign habit must be untouched.
	var habit models.Habit
	require.NoError(t, db.First(&habit, 1).Error)
	assert.Zero(t, habit.Streak)
	assert.Nil(t, habit.LastCompleted)
}

func TestCompleteUnknownHabit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t, &models.User{}, &models.Habit{})

	r := gin.New()
	r.Use(authAs(1))
	r.PUT("/api/habits/complete/:id", NewHabitController(db).Complete)

	req := httptest.NewRequest(http.MethodPut, "/api/habits/complete/99", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
