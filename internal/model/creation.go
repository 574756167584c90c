package model

import (
	"time"
)

// Creation is one persisted generated image. A row exists iff its backing
// file exists; the file is always written before the row is inserted.
type Creation struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Prompt    string    `db:"prompt" json:"prompt"`
	ImageURL  string    `db:"image_url" json:"url"`
	Model     *string   `db:"model" json:"model,omitempty"`
	Size      *string   `db:"size" json:"size,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateCreationParams struct {
	ID       string
	UserID   string
	Prompt   string
	ImageURL string
	Model    *string
	Size     *string
}
