package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/openbanana/studio-server-go/internal/model"
)

type InspirationRepository interface {
	FindAll(ctx context.Context) ([]model.Inspiration, error)
	FindLatest(ctx context.Context, limit int) ([]model.Inspiration, error)
	Create(ctx context.Context, params model.CreateInspirationParams) (*model.Inspiration, error)
	Delete(ctx context.Context, id int) error
}

type inspirationRepo struct {
	db sqlxDB
}

func NewInspirationRepository(db *sqlx.DB) InspirationRepository {
	return &inspirationRepo{db: db}
}

func (r *inspirationRepo) FindAll(ctx context.Context) ([]model.Inspiration, error) {
	var items []model.Inspiration
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM inspirations ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inspirationRepo) FindLatest(ctx context.Context, limit int) ([]model.Inspiration, error) {
	var items []model.Inspiration
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM inspirations ORDER BY id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inspirationRepo) Create(ctx context.Context, params model.CreateInspirationParams) (*model.Inspiration, error) {
	var item model.Inspiration
	err := r.db.GetContext(ctx, &item, `
		INSERT INTO inspirations (url, prompt)
		VALUES ($1, $2)
		RETURNING *
	`, params.URL, params.Prompt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inspirationRepo) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM inspirations WHERE id = $1`, id)
	return err
}
