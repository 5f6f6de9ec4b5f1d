package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/progression"
	"github.com/SadmanRahman12/GreenZen/utils"
)

const recentActivityKeep = 5

// HabitController manages a user's personal habits and their completion flow.
type HabitController struct {
	db *gorm.DB
}

// NewHabitController creates a new controller instance.
func NewHabitController(db *gorm.DB) *HabitController {
	return &HabitController{db: db}
}

// List returns all habits belonging to the authenticated user.
func (c *HabitController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var habits []models.Habit
	if err := c.db.Where("user_id = ?", userID).Order("created_at desc").Find(&habits).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load habits")
		return
	}
	utils.Success(ctx, gin.H{"habits": habits})
}

type createHabitRequest struct {
	Name        string  `json:"name" binding:"required,max=128"`
	Description string  `json:"description" binding:"max=512"`
	Points      int     `json:"points" binding:"required,gte=1,lte=100"`
	CarbonSaved float64 `json:"carbon_saved" binding:"gte=0"`
}

// Create adds a new habit for the authenticated user.
func (c *HabitController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req createHabitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid habit payload")
		return
	}

	habit := models.Habit{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Points:      req.Points,
		CarbonSaved: req.CarbonSaved,
	}
	if err := c.db.Create(&habit).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to create habit")
		return
	}
	utils.Success(ctx, gin.H{"habit": habit})
}

// Complete marks a habit done for today. It advances the habit's own streak,
// credits the habit's points to both the user record and the progression
// record, refreshes the recent-activity feed, and awards profile achievements.
// Everything runs in one transaction so a failure leaves no partial credit.
func (c *HabitController) Complete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	habitID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "invalid habit id")
		return
	}

	// Ownership never changes after creation, so it can be checked before
	// taking the row lock.
	var habit models.Habit
	if err := c.db.Select("id", "user_id").First(&habit, uint(habitID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "habit not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to complete habit")
		return
	}
	if habit.UserID != userID {
		utils.Error(ctx, http.StatusUnauthorized, 40130, "not authorized to modify this habit")
		return
	}

	var (
		user    models.User
		summary progression.Summary
	)
	err = c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&habit, uint(habitID)).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := progression.CompleteHabit(&habit, now); err != nil {
			return err
		}
		if err := tx.Model(&models.Habit{}).Where("id = ?", habit.ID).Updates(map[string]interface{}{
			"streak":         habit.Streak,
			"last_completed": habit.LastCompleted,
			"next_due":       habit.NextDue,
		}).Error; err != nil {
			return err
		}

		progress, err := loadProgressForUpdate(tx, userID)
		if err != nil {
			return err
		}
		summary, err = progression.ApplyCompletion(progress, progression.Reward{
			Points:    habit.Points,
			Source:    progression.SourceHabit,
			SourceID:  habit.ID,
			EventDate: now,
		})
		if err != nil {
			return err
		}
		if err := persistProgress(tx, progress, summary); err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			return err
		}
		lastPoints := user.Points
		user.Points += habit.Points
		user.HabitsFormed++
		user.CarbonSaved += habit.CarbonSaved
		user.LastPoints = lastPoints
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"points":        user.Points,
			"habits_formed": user.HabitsFormed,
			"carbon_saved":  user.CarbonSaved,
			"last_points":   user.LastPoints,
		}).Error; err != nil {
			return err
		}

		action := fmt.Sprintf("Completed '%s' and earned %d points", habit.Name, habit.Points)
		if err := recordActivity(tx, userID, action); err != nil {
			return err
		}
		return grantHabitAchievements(tx, &user)
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.Error(ctx, http.StatusNotFound, 40430, "habit not found")
		case errors.Is(err, progression.ErrAlreadyCompleted):
			utils.Error(ctx, http.StatusBadRequest, 40032, "habit already completed today")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to complete habit")
		}
		return
	}

	if err := c.db.
		Preload("Achievements").
		Preload("RecentActivity", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc").Limit(recentActivityKeep)
		}).
		First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load profile")
		return
	}

	payload := sanitizeUserResponse(user)
	payload["progression"] = summary
	utils.Success(ctx, payload)
}

// recordActivity prepends one line to the profile feed and trims it to the
// newest few entries.
func recordActivity(tx *gorm.DB, userID uint, action string) error {
	if err := tx.Create(&models.ActivityRecord{UserID: userID, Action: action}).Error; err != nil {
		return err
	}

	var ids []uint
	if err := tx.Model(&models.ActivityRecord{}).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Offset(recentActivityKeep).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return tx.Delete(&models.ActivityRecord{}, ids).Error
}

// grantHabitAchievements awards the profile achievements tied to habit
// completions. Thresholds are exact matches so each can fire only once; the
// points achievement fires on the completion that crosses 100.
func grantHabitAchievements(tx *gorm.DB, user *models.User) error {
	type candidate struct {
		icon, label string
		earned      bool
	}
	candidates := []candidate{
		{"fas fa-seedling", "Habit Starter", user.HabitsFormed == 1},
		{"fas fa-tree", "Habit Hero", user.HabitsFormed == 5},
		{"fas fa-star", "Point Collector", user.Points >= 100 && user.LastPoints < 100},
	}

	var held []models.Achievement
	if err := tx.Where("user_id = ?", user.ID).Find(&held).Error; err != nil {
		return err
	}
	has := func(label string) bool {
		for _, a := range held {
			if a.Label == label {
				return true
			}
		}
		return false
	}

	for _, c := range candidates {
		if !c.earned || has(c.label) {
			continue
		}
		a := models.Achievement{UserID: user.ID, Icon: c.icon, Label: c.label}
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
	}
	return nil
}
