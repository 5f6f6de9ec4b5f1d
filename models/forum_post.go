package models

import "time"

// ForumPost represents a community forum thread created by a user.
type ForumPost struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AuthorID   uint      `gorm:"index;not null" json:"author_id"`
	AuthorName string    `gorm:"size:64" json:"author_name"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Comments []ForumComment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments"`
	Likes    []ForumLike    `gorm:"constraint:OnDelete:CASCADE" json:"likes"`
}

// ForumLike marks that a user liked a post. One like per user per post.
type ForumLike struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	ForumPostID uint      `gorm:"index:idx_post_liker,unique;not null" json:"post_id"`
	UserID      uint      `gorm:"index:idx_post_liker,unique;not null" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ForumComment is a reply to a forum post.
type ForumComment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ForumPostID uint      `gorm:"index;not null" json:"post_id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	UserName    string    `gorm:"size:64" json:"user_name"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}
