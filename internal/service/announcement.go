package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/openbanana/studio-server-go/internal/errors"
	"github.com/openbanana/studio-server-go/internal/model"
	"github.com/openbanana/studio-server-go/internal/repository"
)

// AnnouncementService manages site announcements. The public surface only
// ever sees the latest active one.
type AnnouncementService struct {
	repo repository.AnnouncementRepository
}

func NewAnnouncementService(repo repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{repo: repo}
}

// Latest returns the newest active announcement, or nil when none is live.
func (s *AnnouncementService) Latest(ctx context.Context) (*model.Announcement, error) {
	ann, err := s.repo.FindLatestActive(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return ann, nil
}

func (s *AnnouncementService) List(ctx context.Context) ([]model.Announcement, error) {
	anns, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return anns, nil
}

func (s *AnnouncementService) Create(ctx context.Context, content string, important bool) (*model.Announcement, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.MissingRequired("content")
	}

	ann, err := s.repo.Create(ctx, model.CreateAnnouncementParams{
		Content:     content,
		IsImportant: important,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	log.Info().Int("announcementId", ann.ID).Msg("announcement published")
	return ann, nil
}

func (s *AnnouncementService) SetActive(ctx context.Context, id int, active bool) error {
	found, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return apperrors.Database(err)
	}
	if !found {
		return apperrors.NotFound("Announcement")
	}
	return nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Database(err)
	}
	return nil
}
