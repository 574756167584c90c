package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/openbanana/studio-server-go/internal/model"
)

type APIConfigRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.UserAPIConfig, error)
	Upsert(ctx context.Context, params model.UpsertAPIConfigParams) (*model.UserAPIConfig, error)
	TouchUpdatedAt(ctx context.Context, userID string) error
	DeleteByUserID(ctx context.Context, userID string) (bool, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) APIConfigRepository
}

type apiConfigRepo struct {
	db sqlxDB
}

func NewAPIConfigRepository(db *sqlx.DB) APIConfigRepository {
	return &apiConfigRepo{db: db}
}

func (r *apiConfigRepo) WithTx(tx *sqlx.Tx) APIConfigRepository {
	return &apiConfigRepo{db: tx}
}

func (r *apiConfigRepo) FindByUserID(ctx context.Context, userID string) (*model.UserAPIConfig, error) {
	var cfg model.UserAPIConfig
	err := r.db.GetContext(ctx, &cfg, `
		SELECT * FROM user_api_configs WHERE user_id = $1
	`, userID)
	return HandleNotFound(&cfg, err)
}

func (r *apiConfigRepo) Upsert(ctx context.Context, params model.UpsertAPIConfigParams) (*model.UserAPIConfig, error) {
	var cfg model.UserAPIConfig
	err := r.db.GetContext(ctx, &cfg, `
		INSERT INTO user_api_configs (id, user_id, api_key, api_base_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			api_key = EXCLUDED.api_key,
			api_base_url = EXCLUDED.api_base_url,
			updated_at = now()
		RETURNING *
	`, params.ID, params.UserID, params.APIKey, params.APIBaseURL)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *apiConfigRepo) TouchUpdatedAt(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_api_configs SET updated_at = $2 WHERE user_id = $1
	`, userID, time.Now())
	return err
}

func (r *apiConfigRepo) DeleteByUserID(ctx context.Context, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_api_configs WHERE user_id = $1`, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
