package models

import (
	"time"
)

// User is the local reference to an identity owned by the external identity provider.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false;column:id"`
	Username  string    `gorm:"type:varchar(150);not null;uniqueIndex:yatube_users_ux1;column:username"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "yatube_users"
}
