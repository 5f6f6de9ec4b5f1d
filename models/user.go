package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a GreenZen member. Passwords are stored as bcrypt hashes only.
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:64;not null" json:"name"`
	Email           string         `gorm:"size:255;uniqueIndex" json:"email"`
	PasswordHash    string         `gorm:"size:255" json:"-"`
	Provider        string         `gorm:"size:32" json:"provider"`
	ProviderID      string         `gorm:"size:255" json:"provider_id"`
	AvatarURL       string         `gorm:"size:512" json:"avatar_url"`
	IsAdmin         bool           `gorm:"default:false" json:"is_admin"`
	CarbonSaved     float64        `gorm:"default:0" json:"carbon_saved"`
	HabitsFormed    int            `gorm:"default:0" json:"habits_formed"`
	CommunityPoints int            `gorm:"default:0" json:"community_points"`
	Points          int            `gorm:"default:0" json:"points"`
	LastPoints      int            `gorm:"default:0" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Achievements   []Achievement    `gorm:"constraint:OnDelete:CASCADE" json:"achievements"`
	RecentActivity []ActivityRecord `gorm:"constraint:OnDelete:CASCADE" json:"recent_activity"`
	Habits         []Habit          `json:"-"`
}

// Achievement is a lightweight marker shown on the user's profile,
// separate from the progression badges earned through challenges.
type Achievement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Icon      string    `gorm:"size:64" json:"icon"`
	Label     string    `gorm:"size:64" json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityRecord is one line of the profile's recent-activity feed.
// Only the newest few entries per user are retained.
type ActivityRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	Action    string    `gorm:"size:255;not null" json:"action"`
	CreatedAt time.Time `json:"date"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
