package model

import (
	"time"
)

type Announcement struct {
	ID          int       `db:"id" json:"id"`
	Content     string    `db:"content" json:"content"`
	IsImportant bool      `db:"is_important" json:"isImportant"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type CreateAnnouncementParams struct {
	Content     string
	IsImportant bool
}
