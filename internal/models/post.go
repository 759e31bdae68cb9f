package models

import (
	"time"
)

// Post is a top-level votable entry
type Post struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Title     string    `gorm:"type:varchar(300);not null;column:title"`
	Text      string    `gorm:"type:text;not null;column:text"`
	Category  string    `gorm:"type:varchar(64);not null;index;column:category"`
	Points    int       `gorm:"not null;default:0;column:points"`
	CreatorID int64     `gorm:"not null;index;column:creator_id"`
	CreatedAt time.Time `gorm:"not null;index;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	// VoteStatus is the viewer's ledger value, filled by feed queries only.
	VoteStatus *int16 `gorm:"->;-:migration;column:vote_status"`

	// Relationships
	Creator *User `gorm:"foreignKey:CreatorID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// Reply is a votable answer threaded under a post
type Reply struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Text      string    `gorm:"type:text;not null;column:text"`
	PostID    int64     `gorm:"not null;index;column:post_id"`
	Points    int       `gorm:"not null;default:0;column:points"`
	CreatorID int64     `gorm:"not null;index;column:creator_id"`
	CreatedAt time.Time `gorm:"not null;index;column:created_at"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at"`

	VoteStatus *int16 `gorm:"->;-:migration;column:vote_status"`

	Creator *User `gorm:"foreignKey:CreatorID;references:ID"`
	Post    *Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Reply
func (Reply) TableName() string {
	return "replies"
}
