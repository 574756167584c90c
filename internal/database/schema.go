package database

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                TEXT PRIMARY KEY,
		username          TEXT NOT NULL,
		email             TEXT NOT NULL UNIQUE,
		password_hash     TEXT NOT NULL,
		role              TEXT NOT NULL DEFAULT 'user',
		drawing_points    INTEGER NOT NULL DEFAULT 0 CHECK (drawing_points >= 0),
		creation_count    INTEGER NOT NULL DEFAULT 0,
		token_count       BIGINT NOT NULL DEFAULT 0,
		checkin_count     INTEGER NOT NULL DEFAULT 0,
		last_checkin_date DATE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_idx ON users (username)`,

	`CREATE TABLE IF NOT EXISTS creations (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		prompt     TEXT NOT NULL,
		image_url  TEXT NOT NULL,
		model      TEXT,
		size       TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS creations_user_created_idx ON creations (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS creations_image_url_idx ON creations (image_url)`,

	`CREATE TABLE IF NOT EXISTS user_api_configs (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		api_key      TEXT NOT NULL,
		api_base_url TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS announcements (
		id           SERIAL PRIMARY KEY,
		content      TEXT NOT NULL,
		is_important BOOLEAN NOT NULL DEFAULT FALSE,
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS inspirations (
		id         SERIAL PRIMARY KEY,
		url        TEXT NOT NULL,
		prompt     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the tables this server needs if they do not exist yet.
// Statements are idempotent so startup is safe against an already provisioned
// database.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
