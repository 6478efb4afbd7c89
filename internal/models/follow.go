package models

import (
	"time"
)

// Follow is a directed edge: Follower receives Followed's posts in the following feed.
// The pair is unique and an identity can never follow itself.
type Follow struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id"`
	FollowerID int64     `gorm:"not null;uniqueIndex:yatube_follows_ux1,priority:1;check:yatube_follows_no_self,follower_id <> followed_id;column:follower_id"`
	FollowedID int64     `gorm:"not null;uniqueIndex:yatube_follows_ux1,priority:2;index:yatube_follows_ix1;column:followed_id"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Follower *User `gorm:"foreignKey:FollowerID;references:ID;constraint:OnDelete:CASCADE"`
	Followed *User `gorm:"foreignKey:FollowedID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Follow
func (Follow) TableName() string {
	return "yatube_follows"
}
