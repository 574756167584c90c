package model

import "time"

// Inspiration is a curated image/prompt pair shown in the public gallery.
type Inspiration struct {
	ID        int       `db:"id" json:"id"`
	URL       string    `db:"url" json:"url"`
	Prompt    string    `db:"prompt" json:"prompt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreateInspirationParams struct {
	URL    string
	Prompt string
}
