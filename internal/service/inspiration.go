package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/openbanana/studio-server-go/internal/config"
	apperrors "github.com/openbanana/studio-server-go/internal/errors"
	"github.com/openbanana/studio-server-go/internal/model"
	"github.com/openbanana/studio-server-go/internal/repository"
)

// InspirationService manages the curated prompt gallery. The public surface
// sees a bounded feed of the newest entries; admins manage the full set.
type InspirationService struct {
	repo repository.InspirationRepository
}

func NewInspirationService(repo repository.InspirationRepository) *InspirationService {
	return &InspirationService{repo: repo}
}

// Feed returns the newest entries for the public gallery.
func (s *InspirationService) Feed(ctx context.Context) ([]model.Inspiration, error) {
	items, err := s.repo.FindLatest(ctx, config.InspirationFeedLimit)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return items, nil
}

func (s *InspirationService) List(ctx context.Context) ([]model.Inspiration, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return items, nil
}

func (s *InspirationService) Create(ctx context.Context, url, prompt string) (*model.Inspiration, error) {
	url = strings.TrimSpace(url)
	prompt = strings.TrimSpace(prompt)
	if url == "" {
		return nil, apperrors.MissingRequired("url")
	}
	if !strings.HasPrefix(url, "http") {
		return nil, apperrors.InvalidInput("url", "must be an http(s) URL")
	}
	if prompt == "" {
		return nil, apperrors.MissingRequired("prompt")
	}

	item, err := s.repo.Create(ctx, model.CreateInspirationParams{
		URL:    url,
		Prompt: prompt,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	log.Info().Int("inspirationId", item.ID).Msg("inspiration published")
	return item, nil
}

func (s *InspirationService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.Database(err)
	}
	return nil
}
