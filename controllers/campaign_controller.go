package controllers

import (
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

var (
	errCampaignEnded    = errors.New("campaign has ended")
	errAlreadyJoined    = errors.New("already joined")
	errNotParticipating = errors.New("not participating")
)

// CampaignController serves time-boxed campaigns: joining, completing their
// challenges, and per-campaign leaderboards.
type CampaignController struct {
	db *gorm.DB
}

// NewCampaignController creates a new controller instance.
func NewCampaignController(db *gorm.DB) *CampaignController {
	return &CampaignController{db: db}
}

// Active returns campaigns currently running, annotated with the caller's
// participation status.
func (c *CampaignController) Active(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	now := time.Now()
	var campaigns []models.Campaign
	err := c.db.Preload("Challenges").
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Order("end_date asc").
		Find(&campaigns).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load campaigns")
		return
	}

	ids := make([]uint, 0, len(campaigns))
	for _, cp := range campaigns {
		ids = append(ids, cp.ID)
	}
	mine := map[uint]*models.CampaignParticipant{}
	if len(ids) > 0 {
		var rows []models.CampaignParticipant
		if err := c.db.Preload("Completions").
			Where("campaign_id IN ? AND user_id = ?", ids, userID).
			Find(&rows).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load campaigns")
			return
		}
		for i := range rows {
			mine[rows[i].CampaignID] = &rows[i]
		}
	}

	out := make([]gin.H, 0, len(campaigns))
	for _, cp := range campaigns {
		item := gin.H{
			"campaign":         cp,
			"is_participating": false,
		}
		if p, ok := mine[cp.ID]; ok {
			item["is_participating"] = true
			item["user_progress"] = gin.H{
				"total_points":         p.TotalPoints,
				"challenges_completed": len(p.Completions),
				"joined_at":            p.JoinedAt,
			}
		}
		out = append(out, item)
	}
	utils.Success(ctx, gin.H{"campaigns": out})
}

// Upcoming returns active campaigns that have not started yet.
func (c *CampaignController) Upcoming(ctx *gin.Context) {
	var campaigns []models.Campaign
	err := c.db.Preload("Challenges").
		Where("is_active = ? AND start_date > ?", true, time.Now()).
		Order("start_date asc").
		Find(&campaigns).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load campaigns")
		return
	}
	utils.Success(ctx, gin.H{"campaigns": campaigns})
}

// Join enrolls the caller in a campaign. The unique (campaign, user) index
// backs up the duplicate check under concurrent joins.
func (c *CampaignController) Join(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	campaignID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid campaign id")
		return
	}

	err = c.db.Transaction(func(tx *gorm.DB) error {
		var campaign models.Campaign
		if err := tx.First(&campaign, uint(campaignID)).Error; err != nil {
			return err
		}
		if time.Now().After(campaign.EndDate) {
			return errCampaignEnded
		}

		var count int64
		if err := tx.Model(&models.CampaignParticipant{}).
			Where("campaign_id = ? AND user_id = ?", campaign.ID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyJoined
		}

		return tx.Create(&models.CampaignParticipant{
			CampaignID: campaign.ID,
			UserID:     userID,
			JoinedAt:   time.Now(),
		}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.Error(ctx, http.StatusNotFound, 40450, "campaign not found")
		case errors.Is(err, errCampaignEnded):
			utils.Error(ctx, http.StatusBadRequest, 40051, "campaign has ended")
		case errors.Is(err, errAlreadyJoined), errors.Is(err, gorm.ErrDuplicatedKey):
			utils.Error(ctx, http.StatusBadRequest, 40052, "already joined this campaign")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to join campaign")
		}
		return
	}
	utils.Success(ctx, gin.H{"message": "Successfully joined campaign!"})
}

type completeCampaignChallengeRequest struct {
	ChallengeID uint `json:"challenge_id" binding:"required"`
}

// CompleteChallenge records a campaign challenge completion. The participant's
// campaign score and the user's overall progression are updated in the same
// transaction so neither can land without the other.
func (c *CampaignController) CompleteChallenge(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	campaignID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid campaign id")
		return
	}
	var req completeCampaignChallengeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40053, "challenge_id is required")
		return
	}

	var (
		summary        progression.Summary
		campaignPoints int
	)
	err = c.db.Transaction(func(tx *gorm.DB) error {
		var campaign models.Campaign
		if err := tx.First(&campaign, uint(campaignID)).Error; err != nil {
			return err
		}

		var participant models.CampaignParticipant
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Completions").
			Where("campaign_id = ? AND user_id = ?", campaign.ID, userID).
			First(&participant).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotParticipating
		}
		if err != nil {
			return err
		}
		if participant.HasCompleted(req.ChallengeID) {
			return progression.ErrAlreadyCompleted
		}

		var challenge models.Challenge
		if err := tx.First(&challenge, req.ChallengeID).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Create(&models.CampaignCompletion{
			ParticipantID: participant.ID,
			ChallengeID:   challenge.ID,
			CompletedAt:   now,
		}).Error; err != nil {
			return err
		}
		campaignPoints = participant.TotalPoints + challenge.Points
		if err := tx.Model(&models.CampaignParticipant{}).
			Where("id = ?", participant.ID).
			Update("total_points", campaignPoints).Error; err != nil {
			return err
		}

		progress, err := loadProgressForUpdate(tx, userID)
		if err != nil {
			return err
		}
		summary, err = progression.ApplyCompletion(progress, progression.Reward{
			Points:    challenge.Points,
			Source:    progression.SourceCampaign,
			SourceID:  challenge.ID,
			EventDate: now,
		})
		if err != nil {
			return err
		}
		return persistProgress(tx, progress, summary)
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.Error(ctx, http.StatusNotFound, 40451, "campaign or challenge not found")
		case errors.Is(err, errNotParticipating):
			utils.Error(ctx, http.StatusBadRequest, 40054, "not participating in this campaign")
		case errors.Is(err, progression.ErrAlreadyCompleted):
			utils.Error(ctx, http.StatusBadRequest, 40055, "challenge already completed")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to complete challenge")
		}
		return
	}

	utils.Success(ctx, gin.H{
		"message":               "Challenge completed successfully!",
		"points_earned":         summary.PointsEarned,
		"total_campaign_points": campaignPoints,
		"total_user_points":     summary.TotalPoints,
		"new_badges":            summary.NewBadges,
	})
}

// Leaderboard ranks a campaign's participants by campaign points.
func (c *CampaignController) Leaderboard(ctx *gin.Context) {
	campaignID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid campaign id")
		return
	}

	var campaign models.Campaign
	if err := c.db.First(&campaign, uint(campaignID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40450, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load campaign")
		return
	}

	var participants []models.CampaignParticipant
	if err := c.db.Preload("Completions").
		Where("campaign_id = ?", campaign.ID).
		Order("total_points desc, joined_at asc").
		Find(&participants).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load leaderboard")
		return
	}

	userIDs := make([]uint, 0, len(participants))
	for _, p := range participants {
		userIDs = append(userIDs, p.UserID)
	}
	names := map[uint]models.User{}
	if len(userIDs) > 0 {
		var users []models.User
		if err := c.db.Select("id", "name", "avatar_url").Find(&users, userIDs).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load leaderboard")
			return
		}
		for _, u := range users {
			names[u.ID] = u
		}
	}

	rows := make([]gin.H, 0, len(participants))
	for i, p := range participants {
		u := names[p.UserID]
		rows = append(rows, gin.H{
			"rank":                 i + 1,
			"user_id":              p.UserID,
			"name":                 u.Name,
			"avatar_url":           u.AvatarURL,
			"points":               p.TotalPoints,
			"challenges_completed": len(p.Completions),
			"joined_at":            p.JoinedAt,
		})
	}

	utils.Success(ctx, gin.H{
		"campaign": gin.H{
			"title":       campaign.Title,
			"description": campaign.Description,
			"end_date":    campaign.EndDate,
		},
		"leaderboard": rows,
	})
}
