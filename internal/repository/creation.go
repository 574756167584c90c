package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/openbanana/studio-server-go/internal/model"
)

type CreationRepository interface {
	FindByID(ctx context.Context, id string) (*model.Creation, error)
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Creation, error)
	FindByUser(ctx context.Context, userID string, limit, offset int) ([]model.Creation, error)
	Create(ctx context.Context, params model.CreateCreationParams) (*model.Creation, error)
	Delete(ctx context.Context, id string) error
	ExistsByImageURL(ctx context.Context, imageURL string) (bool, error)
	Count(ctx context.Context) (int, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) CreationRepository
}

type creationRepo struct {
	db sqlxDB
}

func NewCreationRepository(db *sqlx.DB) CreationRepository {
	return &creationRepo{db: db}
}

func (r *creationRepo) WithTx(tx *sqlx.Tx) CreationRepository {
	return &creationRepo{db: tx}
}

func (r *creationRepo) FindByID(ctx context.Context, id string) (*model.Creation, error) {
	var creation model.Creation
	err := r.db.GetContext(ctx, &creation, `
		SELECT * FROM creations WHERE id = $1
	`, id)
	return HandleNotFound(&creation, err)
}

func (r *creationRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Creation, error) {
	var creation model.Creation
	err := r.db.GetContext(ctx, &creation, `
		SELECT * FROM creations WHERE id = $1 AND user_id = $2
	`, id, userID)
	return HandleNotFound(&creation, err)
}

func (r *creationRepo) FindByUser(ctx context.Context, userID string, limit, offset int) ([]model.Creation, error) {
	var creations []model.Creation
	err := r.db.SelectContext(ctx, &creations, `
		SELECT * FROM creations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return creations, nil
}

func (r *creationRepo) Create(ctx context.Context, params model.CreateCreationParams) (*model.Creation, error) {
	var creation model.Creation
	err := r.db.GetContext(ctx, &creation, `
		INSERT INTO creations (id, user_id, prompt, image_url, model, size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.ID, params.UserID, params.Prompt, params.ImageURL, params.Model, params.Size)
	if err != nil {
		return nil, err
	}
	return &creation, nil
}

func (r *creationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM creations WHERE id = $1`, id)
	return err
}

func (r *creationRepo) ExistsByImageURL(ctx context.Context, imageURL string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM creations WHERE image_url = $1)
	`, imageURL)
	return exists, err
}

func (r *creationRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM creations`)
	return count, err
}
