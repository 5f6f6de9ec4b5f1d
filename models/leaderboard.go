package models

import "time"

// Leaderboard snapshot types and periods.
const (
	LeaderboardGlobal   = "global"
	LeaderboardRegional = "regional"
	LeaderboardCity     = "city"

	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodAllTime = "allTime"
)

// LeaderboardSnapshot is a periodically regenerated ranking projection over
// user progress records. Live endpoints read these when fresh enough and fall
// back to direct queries otherwise.
type LeaderboardSnapshot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Type        string    `gorm:"size:16;index:idx_board_scope;not null" json:"type"`
	Period      string    `gorm:"size:16;index:idx_board_scope;not null" json:"period"`
	Region      string    `gorm:"size:64;index:idx_board_scope" json:"region"`
	City        string    `gorm:"size:64;index:idx_board_scope" json:"city"`
	GeneratedAt time.Time `json:"generated_at"`

	Rankings []LeaderboardEntry `gorm:"foreignKey:SnapshotID;constraint:OnDelete:CASCADE" json:"rankings"`
}

// LeaderboardEntry is one ranked row inside a snapshot.
type LeaderboardEntry struct {
	ID                  uint    `gorm:"primaryKey" json:"-"`
	SnapshotID          uint    `gorm:"index;not null" json:"-"`
	Rank                int     `gorm:"not null" json:"rank"`
	UserID              uint    `gorm:"index;not null" json:"user_id"`
	Username            string  `gorm:"size:64" json:"username"`
	Avatar              string  `gorm:"size:512" json:"avatar"`
	Points              int     `gorm:"not null" json:"points"`
	Level               int     `gorm:"default:1" json:"level"`
	CarbonSaved         float64 `gorm:"default:0" json:"carbon_saved"`
	ChallengesCompleted int     `gorm:"default:0" json:"challenges_completed"`
	Streak              int     `gorm:"default:0" json:"streak"`
}
