package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/openbanana/studio-server-go/internal/model"
)

type AnnouncementRepository interface {
	FindAll(ctx context.Context) ([]model.Announcement, error)
	FindLatestActive(ctx context.Context) (*model.Announcement, error)
	Create(ctx context.Context, params model.CreateAnnouncementParams) (*model.Announcement, error)
	SetActive(ctx context.Context, id int, active bool) (bool, error)
	Delete(ctx context.Context, id int) error
}

type announcementRepo struct {
	db sqlxDB
}

func NewAnnouncementRepository(db *sqlx.DB) AnnouncementRepository {
	return &announcementRepo{db: db}
}

func (r *announcementRepo) FindAll(ctx context.Context) ([]model.Announcement, error) {
	var items []model.Announcement
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM announcements ORDER BY id DESC
	`)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *announcementRepo) FindLatestActive(ctx context.Context) (*model.Announcement, error) {
	var item model.Announcement
	err := r.db.GetContext(ctx, &item, `
		SELECT * FROM announcements WHERE is_active ORDER BY id DESC LIMIT 1
	`)
	return HandleNotFound(&item, err)
}

func (r *announcementRepo) Create(ctx context.Context, params model.CreateAnnouncementParams) (*model.Announcement, error) {
	var item model.Announcement
	err := r.db.GetContext(ctx, &item, `
		INSERT INTO announcements (content, is_important)
		VALUES ($1, $2)
		RETURNING *
	`, params.Content, params.IsImportant)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *announcementRepo) SetActive(ctx context.Context, id int, active bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE announcements SET is_active = $2 WHERE id = $1
	`, id, active)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *announcementRepo) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	return err
}
