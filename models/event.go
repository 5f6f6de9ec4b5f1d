package models

import "time"

// Event is a community event announcement.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Date        time.Time `gorm:"index" json:"date"`
	Time        string    `gorm:"size:32" json:"time"`
	Location    string    `gorm:"size:255" json:"location"`
	Description string    `gorm:"type:text" json:"description"`
	Image       string    `gorm:"size:512" json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
