package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/utils"
)

const statsCacheKey = "cache:stats:site"

// StatsController provides public aggregate statistics for the landing page.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns site-wide aggregate numbers.
func (s *StatsController) GetStats(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes(statsCacheKey); ok {
		ctx.Data(200, "application/json; charset=utf-8", b)
		return
	}

	var userCount int64
	var postCount int64
	var challengesCompleted int64
	var carbonSaved float64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.ForumPost{}).Count(&postCount).Error; err != nil {
		postCount = 0
	}

	if err := s.db.Model(&models.CompletedChallenge{}).Count(&challengesCompleted).Error; err != nil {
		challengesCompleted = 0
	}

	if err := s.db.Model(&models.User{}).
		Select("COALESCE(SUM(carbon_saved),0)").
		Scan(&carbonSaved).Error; err != nil {
		carbonSaved = 0
	}

	body := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{
		"user_count":           userCount,
		"post_count":           postCount,
		"challenges_completed": challengesCompleted,
		"carbon_saved":         carbonSaved,
	}}
	utils.CacheSetJSON(statsCacheKey, body, time.Minute)
	ctx.JSON(200, body)
}
