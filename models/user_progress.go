package models

import (
	"time"

	"gorm.io/gorm"
)

// Eco-battle lifecycle states.
const (
	BattleActive    = "active"
	BattleCompleted = "completed"
	BattleCancelled = "cancelled"
)

// UserProgress is the per-user progression record: points, level, streak,
// badges, and challenge history. Exactly one row exists per user.
type UserProgress struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	UserID                uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalPoints           int        `gorm:"default:0" json:"total_points"`
	Level                 int        `gorm:"default:1" json:"level"`
	Experience            int        `gorm:"default:0" json:"experience"`
	ExperienceToNextLevel int        `gorm:"default:100" json:"experience_to_next_level"`
	StreakCurrent         int        `gorm:"default:0" json:"streak_current"`
	StreakLongest         int        `gorm:"default:0" json:"streak_longest"`
	LastActivity          *time.Time `json:"last_activity"`
	Region                string     `gorm:"size:64;default:'Global'" json:"region"`
	City                  string     `gorm:"size:64" json:"city"`
	LastUpdated           time.Time  `json:"last_updated"`

	Badges              []Badge              `gorm:"constraint:OnDelete:CASCADE" json:"badges"`
	CompletedChallenges []CompletedChallenge `gorm:"constraint:OnDelete:CASCADE" json:"completed_challenges"`
	DailyChallenges     []DailyChallenge     `gorm:"constraint:OnDelete:CASCADE" json:"daily_challenges"`
	Friends             []Friend             `gorm:"constraint:OnDelete:CASCADE" json:"friends"`
	EcoBattles          []EcoBattle          `gorm:"constraint:OnDelete:CASCADE" json:"eco_battles"`
}

// Badge is an idempotently granted achievement marker. A badge identifier
// appears at most once per progress record and is never removed.
type Badge struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	UserProgressID uint      `gorm:"index:idx_badge_owner,unique;not null" json:"-"`
	BadgeID        string    `gorm:"size:64;index:idx_badge_owner,unique;not null" json:"badge_id"`
	Name           string    `gorm:"size:128" json:"name"`
	Description    string    `gorm:"size:255" json:"description"`
	Icon           string    `gorm:"size:64" json:"icon"`
	EarnedAt       time.Time `json:"earned_at"`
}

// CompletedChallenge is one append-only history entry of a challenge completion.
type CompletedChallenge struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	UserProgressID uint      `gorm:"index;not null" json:"-"`
	ChallengeID    uint      `gorm:"index;not null" json:"challenge_id"`
	CompletedAt    time.Time `json:"completed_at"`
	PointsEarned   int       `json:"points_earned"`
}

// DailyChallenge assigns one catalog challenge to a user for one calendar day.
// Date is always normalized to midnight; at most one row exists per day.
type DailyChallenge struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	UserProgressID uint       `gorm:"index;not null" json:"-"`
	Date           time.Time  `gorm:"not null" json:"date"`
	ChallengeID    uint       `gorm:"not null" json:"challenge_id"`
	Completed      bool       `gorm:"default:false" json:"completed"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// Friend links two users' progress records. Rows are written pairwise, one
// per direction, inside a single transaction.
type Friend struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	UserProgressID uint      `gorm:"index;not null" json:"-"`
	FriendUserID   uint      `gorm:"index;not null" json:"user_id"`
	AddedAt        time.Time `json:"added_at"`
}

// EcoBattle is a time-boxed point contest between two users. Each battle is
// stored once per participant; BattleID ties the two rows together.
type EcoBattle struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	BattleID       string     `gorm:"size:36;index;not null" json:"id"`
	UserProgressID uint       `gorm:"index;not null" json:"-"`
	OpponentID     uint       `gorm:"not null" json:"opponent_id"`
	StartDate      time.Time  `gorm:"not null" json:"start_date"`
	EndDate        time.Time  `gorm:"not null" json:"end_date"`
	MyPoints       int        `gorm:"default:0" json:"my_points"`
	OpponentPoints int        `gorm:"default:0" json:"opponent_points"`
	Status         string     `gorm:"size:16;default:'active'" json:"status"`
	WinnerID       *uint      `json:"winner_id"`
	SettledAt      *time.Time `json:"-"`
}

// BeforeSave keeps LastUpdated current on every write.
func (p *UserProgress) BeforeSave(tx *gorm.DB) error {
	p.LastUpdated = time.Now()
	return nil
}

// HasBadge reports whether the progress record already holds the badge.
func (p *UserProgress) HasBadge(badgeID string) bool {
	for _, b := range p.Badges {
		if b.BadgeID == badgeID {
			return true
		}
	}
	return false
}

// DailyChallengeFor returns the daily entry for the given calendar day, if any.
func (p *UserProgress) DailyChallengeFor(day time.Time) *DailyChallenge {
	for i := range p.DailyChallenges {
		dc := &p.DailyChallenges[i]
		if dc.Date.Year() == day.Year() && dc.Date.YearDay() == day.YearDay() {
			return dc
		}
	}
	return nil
}
