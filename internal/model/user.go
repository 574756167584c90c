package model

import (
	"time"
)

type User struct {
	ID              string     `db:"id" json:"id"`
	Username        string     `db:"username" json:"username"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Role            Role       `db:"role" json:"role"`
	DrawingPoints   int        `db:"drawing_points" json:"drawing_points"`
	CreationCount   int        `db:"creation_count" json:"creation_count"`
	TokenCount      int64      `db:"token_count" json:"token_count"`
	CheckinCount    int        `db:"checkin_count" json:"checkin_count"`
	LastCheckinDate *time.Time `db:"last_checkin_date" json:"last_checkin_date,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateUserParams struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	// Starting balance granted on registration.
	DrawingPoints int
}

// CheckInResult is what a successful daily check-in returns.
type CheckInResult struct {
	PointsEarned    int    `json:"points_earned"`
	TotalPoints     int    `json:"total_points"`
	CheckinCount    int    `json:"checkin_count"`
	LastCheckinDate string `json:"last_checkin_date"`
}
