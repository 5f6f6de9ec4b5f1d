package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SadmanRahman12/GreenZen/config"
	"github.com/SadmanRahman12/GreenZen/models"
	"github.com/SadmanRahman12/GreenZen/utils"
)

var (
	errSelfFriend     = errors.New("cannot befriend yourself")
	errAlreadyFriends = errors.New("already friends")
)

const boardLimitMax = 100

// LeaderboardController serves rankings, the friends graph, and eco-battles.
type LeaderboardController struct {
	db *gorm.DB
}

// NewLeaderboardController creates a new controller instance.
func NewLeaderboardController(db *gorm.DB) *LeaderboardController {
	return &LeaderboardController{db: db}
}

// boardRow is one formatted leaderboard line.
type boardRow struct {
	Rank                int            `json:"rank"`
	UserID              uint           `json:"user_id"`
	Username            string         `json:"username"`
	Avatar              string         `json:"avatar"`
	Points              int            `json:"points"`
	Level               int            `json:"level"`
	Streak              int            `json:"streak"`
	Badges              []models.Badge `json:"badges"`
	ChallengesCompleted int            `json:"challenges_completed"`
	CarbonSaved         int            `json:"carbon_saved"`
	Region              string         `json:"region,omitempty"`
	City                string         `json:"city,omitempty"`
	IsCurrentUser       bool           `json:"is_current_user,omitempty"`
}

// periodStart maps a leaderboard period onto the cutoff applied to
// last_updated. The zero time means no cutoff.
func periodStart(period string, now time.Time) time.Time {
	switch period {
	case models.PeriodDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case models.PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case models.PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}
	}
}

// formatBoard turns ranked progress records into response rows. Carbon saved
// is the historical tenth-of-points estimate.
func (c *LeaderboardController) formatBoard(records []models.UserProgress, currentUserID uint) []boardRow {
	ids := make([]uint, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.UserID)
	}
	users := map[uint]models.User{}
	if len(ids) > 0 {
		var list []models.User
		if err := c.db.Select("id", "name", "avatar_url").Find(&list, utils.UniqueUint(ids)).Error; err == nil {
			for _, u := range list {
				users[u.ID] = u
			}
		}
	}

	rows := make([]boardRow, 0, len(records))
	for i, r := range records {
		u := users[r.UserID]
		badges := r.Badges
		if len(badges) > 3 {
			badges = badges[:3]
		}
		if badges == nil {
			badges = []models.Badge{}
		}
		rows = append(rows, boardRow{
			Rank:                i + 1,
			UserID:              r.UserID,
			Username:            u.Name,
			Avatar:              u.AvatarURL,
			Points:              r.TotalPoints,
			Level:               r.Level,
			Streak:              r.StreakCurrent,
			Badges:              badges,
			ChallengesCompleted: len(r.CompletedChallenges),
			CarbonSaved:         r.TotalPoints / 10,
			Region:              r.Region,
			City:                r.City,
			IsCurrentUser:       r.UserID == currentUserID,
		})
	}
	return rows
}

// Global returns the top users by total points with an optional period filter
// and the caller's own rank.
func (c *LeaderboardController) Global(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	period := ctx.DefaultQuery("period", models.PeriodAllTime)
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > boardLimitMax {
		limit = 50
	}

	if rows, ok := c.fromSnapshot(models.LeaderboardGlobal, period, limit); ok {
		utils.Success(ctx, gin.H{
			"leaderboard":  rows,
			"current_user": c.currentUserRank(userID),
		})
		return
	}

	query := c.db.Preload("Badges").Preload("CompletedChallenges")
	if start := periodStart(period, time.Now()); !start.IsZero() {
		query = query.Where("last_updated >= ?", start)
	}

	var records []models.UserProgress
	if err := query.Order("total_points desc").Limit(limit).Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load leaderboard")
		return
	}

	utils.Success(ctx, gin.H{
		"leaderboard":  c.formatBoard(records, userID),
		"current_user": c.currentUserRank(userID),
	})
}

// currentUserRank computes the caller's all-time position by counting players
// with a strictly higher total.
func (c *LeaderboardController) currentUserRank(userID uint) gin.H {
	var me models.UserProgress
	if err := c.db.Where("user_id = ?", userID).First(&me).Error; err != nil {
		return gin.H{"rank": nil, "points": 0, "level": 1}
	}
	var better int64
	c.db.Model(&models.UserProgress{}).Where("total_points > ?", me.TotalPoints).Count(&better)
	return gin.H{"rank": better + 1, "points": me.TotalPoints, "level": me.Level}
}

// fromSnapshot serves a board from the newest scheduler-built snapshot when
// one exists and is still fresh. Twice the refresh interval is the staleness
// bound; past that the caller falls back to a live query.
func (c *LeaderboardController) fromSnapshot(boardType, period string, limit int) ([]models.LeaderboardEntry, bool) {
	var snapshot models.LeaderboardSnapshot
	err := c.db.Preload("Rankings", func(db *gorm.DB) *gorm.DB {
		return db.Order("rank asc").Limit(limit)
	}).
		Where("type = ? AND period = ?", boardType, period).
		Order("generated_at desc").
		First(&snapshot).Error
	if err != nil {
		return nil, false
	}

	maxAge := 2 * time.Duration(config.Get().LeaderboardRefreshMinutes) * time.Minute
	if time.Since(snapshot.GeneratedAt) > maxAge {
		return nil, false
	}
	return snapshot.Rankings, true
}

// Friends ranks the caller and their friends by total points.
func (c *LeaderboardController) Friends(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var me models.UserProgress
	err := c.db.Preload("Friends").Where("user_id = ?", userID).First(&me).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(me.Friends) == 0) {
		utils.Success(ctx, gin.H{"leaderboard": []boardRow{}, "message": "No friends found"})
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load leaderboard")
		return
	}

	ids := make([]uint, 0, len(me.Friends)+1)
	for _, f := range me.Friends {
		ids = append(ids, f.FriendUserID)
	}
	ids = append(ids, userID)

	var records []models.UserProgress
	if err := c.db.Preload("Badges").Preload("CompletedChallenges").
		Where("user_id IN ?", utils.UniqueUint(ids)).
		Order("total_points desc").
		Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load leaderboard")
		return
	}

	utils.Success(ctx, gin.H{"leaderboard": c.formatBoard(records, userID)})
}

// Regional filters the ranking by city or region query parameters.
func (c *LeaderboardController) Regional(ctx *gin.Context) {
	userID, _ := getUserID(ctx)

	query := c.db.Preload("Badges").Preload("CompletedChallenges")
	if city := ctx.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	} else if region := ctx.Query("region"); region != "" {
		query = query.Where("region = ?", region)
	}

	var records []models.UserProgress
	if err := query.Order("total_points desc").Limit(50).Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load leaderboard")
		return
	}
	utils.Success(ctx, gin.H{"leaderboard": c.formatBoard(records, userID)})
}

type addFriendRequest struct {
	FriendUsername string `json:"friend_username" binding:"required"`
}

// AddFriend links two users. Both direction rows are written in one
// transaction so the friendship cannot persist half-formed.
func (c *LeaderboardController) AddFriend(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req addFriendRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "friend_username is required")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		var friend models.User
		if err := tx.Where("name = ?", req.FriendUsername).First(&friend).Error; err != nil {
			return err
		}
		if friend.ID == userID {
			return errSelfFriend
		}

		mine, theirs, err := lockProgressPair(tx, userID, friend.ID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Friend{}).
			Where("user_progress_id = ? AND friend_user_id = ?", mine.ID, friend.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyFriends
		}

		now := time.Now()
		pair := []models.Friend{
			{UserProgressID: mine.ID, FriendUserID: friend.ID, AddedAt: now},
			{UserProgressID: theirs.ID, FriendUserID: userID, AddedAt: now},
		}
		return tx.Create(&pair).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.Error(ctx, http.StatusNotFound, 40460, "user not found")
		case errors.Is(err, errSelfFriend):
			utils.Error(ctx, http.StatusBadRequest, 40061, "cannot add yourself as friend")
		case errors.Is(err, errAlreadyFriends):
			utils.Error(ctx, http.StatusBadRequest, 40062, "already friends with this user")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to add friend")
		}
		return
	}
	utils.Success(ctx, gin.H{"message": "Friend added successfully!"})
}

// lockProgressPair row-locks both users' progress records in ascending user
// id order so crossed dual-record writes cannot deadlock each other.
func lockProgressPair(tx *gorm.DB, a, b uint) (mine, theirs *models.UserProgress, err error) {
	first, second := a, b
	if b < a {
		first, second = b, a
	}
	p1, err := loadProgressForUpdate(tx, first)
	if err != nil {
		return nil, nil, err
	}
	p2, err := loadProgressForUpdate(tx, second)
	if err != nil {
		return nil, nil, err
	}
	if p1.UserID == a {
		return p1, p2, nil
	}
	return p2, p1, nil
}

type createBattleRequest struct {
	FriendID uint `json:"friend_id" binding:"required"`
	Duration int  `json:"duration" binding:"gte=0,lte=90"`
}

// CreateEcoBattle opens a point contest between the caller and a friend.
// One battle id ties the two per-participant rows, written together in one
// transaction.
func (c *LeaderboardController) CreateEcoBattle(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	var req createBattleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40063, "friend_id is required")
		return
	}
	if req.FriendID == userID {
		utils.Error(ctx, http.StatusBadRequest, 40064, "cannot battle yourself")
		return
	}

	// The opponent must already exist; the locked pair load below creates
	// missing progress rows and must never do that for an unknown user.
	var friend models.User
	if err := c.db.Select("id").First(&friend, req.FriendID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "friend not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to create eco-battle")
		return
	}

	duration := req.Duration
	if duration == 0 {
		duration = config.Get().EcoBattleDefaultDays
	}

	battleID := uuid.NewString()
	err := c.db.Transaction(func(tx *gorm.DB) error {
		mine, theirs, err := lockProgressPair(tx, userID, req.FriendID)
		if err != nil {
			return err
		}

		start := time.Now()
		end := start.AddDate(0, 0, duration)
		pair := []models.EcoBattle{
			{
				BattleID:       battleID,
				UserProgressID: mine.ID,
				OpponentID:     req.FriendID,
				StartDate:      start,
				EndDate:        end,
				Status:         models.BattleActive,
			},
			{
				BattleID:       battleID,
				UserProgressID: theirs.ID,
				OpponentID:     userID,
				StartDate:      start,
				EndDate:        end,
				Status:         models.BattleActive,
			},
		}
		return tx.Create(&pair).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "friend not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to create eco-battle")
		return
	}
	utils.Success(ctx, gin.H{"message": "Eco-battle created successfully!", "battle_id": battleID})
}

// EcoBattles lists the caller's battles with opponent details and the days
// left before each one settles.
func (c *LeaderboardController) EcoBattles(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var me models.UserProgress
	err := c.db.Preload("EcoBattles").Where("user_id = ?", userID).First(&me).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && len(me.EcoBattles) == 0) {
		utils.Success(ctx, gin.H{"battles": []gin.H{}})
		return
	}
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to load eco-battles")
		return
	}

	opponentIDs := make([]uint, 0, len(me.EcoBattles))
	for _, b := range me.EcoBattles {
		opponentIDs = append(opponentIDs, b.OpponentID)
	}
	opponents := map[uint]models.User{}
	var users []models.User
	if err := c.db.Select("id", "name", "avatar_url").Find(&users, utils.UniqueUint(opponentIDs)).Error; err == nil {
		for _, u := range users {
			opponents[u.ID] = u
		}
	}

	now := time.Now()
	battles := make([]gin.H, 0, len(me.EcoBattles))
	for _, b := range me.EcoBattles {
		opp := opponents[b.OpponentID]
		remaining := int(math.Ceil(b.EndDate.Sub(now).Hours() / 24))
		if remaining < 0 {
			remaining = 0
		}
		battles = append(battles, gin.H{
			"id": b.BattleID,
			"opponent": gin.H{
				"id":     b.OpponentID,
				"name":   opp.Name,
				"avatar": opp.AvatarURL,
			},
			"start_date":      b.StartDate,
			"end_date":        b.EndDate,
			"my_points":       b.MyPoints,
			"opponent_points": b.OpponentPoints,
			"status":          b.Status,
			"winner_id":       b.WinnerID,
			"days_remaining":  remaining,
		})
	}
	utils.Success(ctx, gin.H{"battles": battles})
}
