package models

import (
	"database/sql"
	"time"
)

// Post represents a text post, optionally filed under a group and carrying an image reference
type Post struct {
	ID        int64         `gorm:"primaryKey;autoIncrement;column:id"`
	Text      string        `gorm:"type:text;not null;column:text"`
	CreatedAt time.Time     `gorm:"not null;index:yatube_posts_ix1;column:created_at"`
	AuthorID  int64         `gorm:"not null;index:yatube_posts_ix2;column:author_id"`
	GroupID   sql.NullInt64 `gorm:"index:yatube_posts_ix3;column:group_id"`
	Image     string        `gorm:"type:varchar(1024);not null;default:'';column:image"`

	// Relationships
	Author *User  `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Group  *Group `gorm:"foreignKey:GroupID;references:ID;constraint:OnDelete:SET NULL"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "yatube_posts"
}

// Comment is a reply left on a post
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	PostID    int64     `gorm:"not null;index:yatube_comments_ix1;column:post_id"`
	AuthorID  int64     `gorm:"not null;index:yatube_comments_ix2;column:author_id"`
	Text      string    `gorm:"type:text;not null;column:text"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Post   *Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE"`
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "yatube_comments"
}
