package models

import (
	"database/sql"
	"regexp"
)

// Column bounds for Group.
const (
	GroupTitleMaxLen = 200
	GroupSlugMaxLen  = 50
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Group is a community posts may be filed under
type Group struct {
	ID          int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Title       string         `gorm:"type:varchar(200);not null;column:title"`
	Slug        string         `gorm:"type:varchar(50);not null;uniqueIndex:yatube_groups_ux1;column:slug"`
	Description sql.NullString `gorm:"type:text;column:description"`
}

// TableName specifies the table name for Group
func (Group) TableName() string {
	return "yatube_groups"
}

// ValidSlug reports whether s is a URL-safe slug that fits the slug column.
func ValidSlug(s string) bool {
	return len(s) <= GroupSlugMaxLen && slugPattern.MatchString(s)
}
