package model

import (
	"time"
)

// UserAPIConfig is a user-supplied upstream credential. When present, the
// user's requests run against their own key and are not metered.
type UserAPIConfig struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	APIKey     string    `db:"api_key" json:"-"`
	APIBaseURL string    `db:"api_base_url" json:"api_base_url"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type UpsertAPIConfigParams struct {
	ID         string
	UserID     string
	APIKey     string
	APIBaseURL string
}
