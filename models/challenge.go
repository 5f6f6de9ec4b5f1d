package models

import "time"

// Challenge categories and difficulties accepted by the catalog.
var (
	ChallengeCategories   = []string{"energy", "transport", "waste", "water", "food", "general"}
	ChallengeDifficulties = []string{"easy", "medium", "hard"}
)

// Challenge is a catalog entry users can complete for points. The catalog is
// administered separately; completion flows treat challenges as read-only.
type Challenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Category    string    `gorm:"size:32;not null" json:"category"`
	Points      int       `gorm:"not null" json:"points"`
	Difficulty  string    `gorm:"size:16;default:'easy'" json:"difficulty"`
	Icon        string    `gorm:"size:64;default:'fas fa-leaf'" json:"icon"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
