package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/openbanana/studio-server-go/internal/config"
	apperrors "github.com/openbanana/studio-server-go/internal/errors"
	"github.com/openbanana/studio-server-go/internal/model"
	"github.com/openbanana/studio-server-go/internal/repository"
	"github.com/openbanana/studio-server-go/internal/util"
)

// UserService serves the profile surface: account info with check-in
// eligibility, and the personal upstream API key lifecycle.
type UserService struct {
	userRepo      repository.UserRepository
	apiConfigRepo repository.APIConfigRepository
	checkIn       *CheckInService
}

func NewUserService(userRepo repository.UserRepository, apiConfigRepo repository.APIConfigRepository, checkIn *CheckInService) *UserService {
	return &UserService{
		userRepo:      userRepo,
		apiConfigRepo: apiConfigRepo,
		checkIn:       checkIn,
	}
}

// UserInfo is the profile payload: the account plus derived flags.
type UserInfo struct {
	User           *model.User
	CanCheckIn     bool
	HasPersonalKey bool
}

func (s *UserService) Info(ctx context.Context, userID string) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}

	cfg, err := s.apiConfigRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return &UserInfo{
		User:           user,
		CanCheckIn:     canCheckInToday(user, s.checkIn.today()),
		HasPersonalKey: cfg != nil,
	}, nil
}

// APIKeyInfo is the personal key as shown to its owner: masked, never raw.
type APIKeyInfo struct {
	MaskedKey string
	BaseURL   string
	UpdatedAt string
}

func (s *UserService) GetAPIKey(ctx context.Context, userID string) (*APIKeyInfo, error) {
	cfg, err := s.apiConfigRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if cfg == nil {
		return nil, nil
	}
	return &APIKeyInfo{
		MaskedKey: util.MaskAPIKey(cfg.APIKey),
		BaseURL:   cfg.APIBaseURL,
		UpdatedAt: cfg.UpdatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// SaveAPIKey stores or replaces the user's personal upstream key.
func (s *UserService) SaveAPIKey(ctx context.Context, userID, apiKey, baseURL string) (*APIKeyInfo, error) {
	apiKey = strings.TrimSpace(apiKey)
	baseURL = strings.TrimSpace(baseURL)
	if len(apiKey) < config.MinAPIKeyLength {
		return nil, apperrors.InvalidInput("api_key", "too short to be a valid key")
	}
	if baseURL != "" && !strings.HasPrefix(baseURL, "http") {
		return nil, apperrors.InvalidInput("api_base_url", "must be an http(s) URL")
	}

	cfg, err := s.apiConfigRepo.Upsert(ctx, model.UpsertAPIConfigParams{
		ID:         uuid.NewString(),
		UserID:     userID,
		APIKey:     apiKey,
		APIBaseURL: baseURL,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().Str("userId", userID).Msg("personal API key saved")
	return &APIKeyInfo{
		MaskedKey: util.MaskAPIKey(cfg.APIKey),
		BaseURL:   cfg.APIBaseURL,
		UpdatedAt: cfg.UpdatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

func (s *UserService) DeleteAPIKey(ctx context.Context, userID string) error {
	found, err := s.apiConfigRepo.DeleteByUserID(ctx, userID)
	if err != nil {
		return apperrors.Database(err)
	}
	if !found {
		return apperrors.NotFound("API key")
	}
	log.Info().Str("userId", userID).Msg("personal API key removed")
	return nil
}

// TestAPIKey sanity-checks a candidate key without storing it. The shape
// check is deliberately loose; the real proof is a successful generation.
func (s *UserService) TestAPIKey(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if len(apiKey) < config.MinAPIKeyLength {
		return apperrors.InvalidInput("api_key", "too short to be a valid key")
	}
	if strings.ContainsAny(apiKey, " \t\n") {
		return apperrors.InvalidInput("api_key", "contains whitespace")
	}
	return nil
}
