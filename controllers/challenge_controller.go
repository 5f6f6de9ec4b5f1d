package controllers

import (
	"encoding/json"
	"errors"
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

const activeChallengesCacheKey = "cache:challenges:active"

// ChallengeController serves the challenge catalog and the daily challenge flow.
type ChallengeController struct {
	db *gorm.DB
}

// NewChallengeController creates a new controller instance.
func NewChallengeController(db *gorm.DB) *ChallengeController {
	return &ChallengeController{db: db}
}

// activeCatalog returns active challenges, cached briefly in Redis since the
// catalog changes rarely but is read on every daily assignment.
func (c *ChallengeController) activeCatalog() ([]models.Challenge, error) {
	if b, ok := utils.CacheGetBytes(activeChallengesCacheKey); ok {
		var cached []models.Challenge
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
	}

	var challenges []models.Challenge
	if err := c.db.Where("is_active = ?", true).Find(&challenges).Error; err != nil {
		return nil, err
	}
	utils.CacheSetJSON(activeChallengesCacheKey, challenges, 5*time.Minute)
	return challenges, nil
}

// GetDaily returns the user's challenge for today, assigning one first when
// none exists yet.
func (c *ChallengeController) GetDaily(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	catalog, err := c.activeCatalog()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load challenges")
		return
	}

	var entry models.DailyChallenge
	err = c.db.Transaction(func(tx *gorm.DB) error {
		progress, err := loadProgressForUpdate(tx, userID)
		if err != nil {
			return err
		}

		assigned, err := progression.AssignDaily(progress, time.Now(), catalog, nil)
		if err != nil {
			return err
		}
		entry = *assigned

		if assigned.ID == 0 {
			return tx.Create(assigned).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, progression.ErrNoChallenges) {
			utils.Sugar.Error("daily challenge assignment failed: active catalog is empty")
			utils.Error(ctx, http.StatusServiceUnavailable, 50341, "no challenges available")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to assign daily challenge")
		return
	}

	var challenge models.Challenge
	if err := c.db.First(&challenge, entry.ChallengeID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load challenge")
		return
	}

	utils.Success(ctx, gin.H{
		"challenge":    challenge,
		"completed":    entry.Completed,
		"completed_at": entry.CompletedAt,
	})
}

// CompleteDaily marks today's challenge complete and applies the reward to
// the user's progression record.
func (c *ChallengeController) CompleteDaily(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var summary progression.Summary
	err := c.db.Transaction(func(tx *gorm.DB) error {
		progress, err := loadProgressForUpdate(tx, userID)
		if err != nil {
			return err
		}

		today := progression.StartOfDay(time.Now())
		entry := progress.DailyChallengeFor(today)
		if entry == nil {
			return progression.ErrNoDailyChallenge
		}

		var challenge models.Challenge
		if err := tx.First(&challenge, entry.ChallengeID).Error; err != nil {
			return err
		}

		summary, err = progression.ApplyCompletion(progress, progression.Reward{
			Points:    challenge.Points,
			Source:    progression.SourceDaily,
			SourceID:  challenge.ID,
			EventDate: time.Now(),
		})
		if err != nil {
			return err
		}

		return persistProgress(tx, progress, summary)
	})
	if err != nil {
		switch {
		case errors.Is(err, progression.ErrNoDailyChallenge):
			utils.Error(ctx, http.StatusNotFound, 40440, "no challenge found for today")
		case errors.Is(err, progression.ErrAlreadyCompleted):
			utils.Error(ctx, http.StatusBadRequest, 40040, "challenge already completed")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to complete challenge")
		}
		return
	}

	utils.Success(ctx, gin.H{
		"message":       "Challenge completed successfully!",
		"points_earned": summary.PointsEarned,
		"total_points":  summary.TotalPoints,
		"level":         summary.Level,
		"streak":        summary.Streak,
		"new_badges":    summary.NewBadges,
	})
}

// ListAll returns the active challenge catalog.
func (c *ChallengeController) ListAll(ctx *gin.Context) {
	catalog, err := c.activeCatalog()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load challenges")
		return
	}
	utils.Success(ctx, gin.H{"challenges": catalog})
}

type challengeRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Points      int    `json:"points" binding:"required,gte=1,lte=100"`
	Difficulty  string `json:"difficulty"`
	Icon        string `json:"icon"`
}

func validCatalogValue(value string, allowed []string) bool {
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}

// CreateChallenge adds a catalog entry. Admin only.
func (c *ChallengeController) CreateChallenge(ctx *gin.Context) {
	var req challengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid challenge payload")
		return
	}
	if !validCatalogValue(req.Category, models.ChallengeCategories) {
		utils.Error(ctx, http.StatusBadRequest, 40042, "unknown category")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "easy"
	}
	if !validCatalogValue(req.Difficulty, models.ChallengeDifficulties) {
		utils.Error(ctx, http.StatusBadRequest, 40043, "unknown difficulty")
		return
	}

	challenge := models.Challenge{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Points:      req.Points,
		Difficulty:  req.Difficulty,
		Icon:        req.Icon,
		IsActive:    true,
	}
	if err := c.db.Create(&challenge).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to create challenge")
		return
	}
	utils.InvalidateByPrefix(activeChallengesCacheKey)
	utils.Success(ctx, gin.H{"challenge": challenge})
}

// UpdateChallenge edits a catalog entry or toggles its active flag. Admin only.
func (c *ChallengeController) UpdateChallenge(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40044, "invalid challenge id")
		return
	}

	var challenge models.Challenge
	if err := c.db.First(&challenge, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40441, "challenge not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load challenge")
		return
	}

	var req struct {
		Title       string `json:"title" binding:"max=255"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Points      *int   `json:"points"`
		Difficulty  string `json:"difficulty"`
		Icon        string `json:"icon"`
		IsActive    *bool  `json:"is_active"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid challenge payload")
		return
	}

	updates := map[string]interface{}{}
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Category != "" {
		if !validCatalogValue(req.Category, models.ChallengeCategories) {
			utils.Error(ctx, http.StatusBadRequest, 40042, "unknown category")
			return
		}
		updates["category"] = req.Category
	}
	if req.Points != nil {
		if *req.Points < 1 || *req.Points > 100 {
			utils.Error(ctx, http.StatusBadRequest, 40045, "points must be between 1 and 100")
			return
		}
		updates["points"] = *req.Points
	}
	if req.Difficulty != "" {
		if !validCatalogValue(req.Difficulty, models.ChallengeDifficulties) {
			utils.Error(ctx, http.StatusBadRequest, 40043, "unknown difficulty")
			return
		}
		updates["difficulty"] = req.Difficulty
	}
	if req.Icon != "" {
		updates["icon"] = req.Icon
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := c.db.Model(&challenge).Updates(updates).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to update challenge")
			return
		}
		utils.InvalidateByPrefix(activeChallengesCacheKey)
	}
	utils.Success(ctx, gin.H{"challenge": challenge})
}

// DeleteChallenge deactivates a catalog entry rather than removing the row;
// completion history keeps pointing at it.
func (c *ChallengeController) DeleteChallenge(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40044, "invalid challenge id")
		return
	}

	res := c.db.Model(&models.Challenge{}).Where("id = ?", uint(id)).Update("is_active", false)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to deactivate challenge")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40441, "challenge not found")
		return
	}
	utils.InvalidateByPrefix(activeChallengesCacheKey)
	utils.Success(ctx, gin.H{"message": "Challenge deactivated"})
}

// loadProgressForUpdate fetches the user's progression record with a row lock
// so concurrent completions for the same user serialize instead of racing.
// The record is created on first use.
func loadProgressForUpdate(tx *gorm.DB, userID uint) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Badges").
		Preload("DailyChallenges").
		Where("user_id = ?", userID).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.UserProgress{UserID: userID, Level: 1, ExperienceToNextLevel: 100}
		if err := tx.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// persistProgress writes back the fields a completion can change: the scalar
// progression columns, the completed daily entry, the appended history rows,
// and any newly earned badges.
func persistProgress(tx *gorm.DB, progress *models.UserProgress, summary progression.Summary) error {
	updates := map[string]interface{}{
		"total_points":             progress.TotalPoints,
		"level":                    progress.Level,
		"experience":               progress.Experience,
		"experience_to_next_level": progress.ExperienceToNextLevel,
		"streak_current":           progress.StreakCurrent,
		"streak_longest":           progress.StreakLongest,
		"last_activity":            progress.LastActivity,
		"last_updated":             time.Now(),
	}
	if err := tx.Model(&models.UserProgress{}).Where("id = ?", progress.ID).Updates(updates).Error; err != nil {
		return err
	}

	for i := range progress.DailyChallenges {
		dc := &progress.DailyChallenges[i]
		if dc.ID != 0 && dc.Completed && dc.CompletedAt != nil {
			if err := tx.Model(&models.DailyChallenge{}).Where("id = ?", dc.ID).
				Updates(map[string]interface{}{"completed": dc.Completed, "completed_at": dc.CompletedAt}).Error; err != nil {
				return err
			}
		}
	}

	for i := range progress.CompletedChallenges {
		cc := &progress.CompletedChallenges[i]
		if cc.ID == 0 {
			cc.UserProgressID = progress.ID
			if err := tx.Create(cc).Error; err != nil {
				return err
			}
		}
	}

	for _, badge := range summary.NewBadges {
		b := badge
		b.UserProgressID = progress.ID
		if err := tx.Create(&b).Error; err != nil {
			return err
		}
	}
	return nil
}
