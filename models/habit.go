package models

import "time"

// Habit is a per-user recurring eco action. Streak bookkeeping is scoped to the
// single habit and is independent of the user's aggregate progression streak.
type Habit struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	Name          string     `gorm:"size:128;not null" json:"name"`
	Description   string     `gorm:"size:512" json:"description"`
	Points        int        `gorm:"not null" json:"points"`
	CarbonSaved   float64    `gorm:"default:0" json:"carbon_saved"`
	Streak        int        `gorm:"default:0" json:"streak"`
	LastCompleted *time.Time `json:"last_completed"`
	NextDue       *time.Time `json:"next_due"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
