package service

import (
	"context"

	"github.com/rs/zerolog/log"

	apperrors "github.com/openbanana/studio-server-go/internal/errors"
	"github.com/openbanana/studio-server-go/internal/model"
	"github.com/openbanana/studio-server-go/internal/repository"
)

// AdminService backs the operator console: aggregate stats, the user
// roster and manual point adjustments.
type AdminService struct {
	userRepo     repository.UserRepository
	creationRepo repository.CreationRepository
}

func NewAdminService(userRepo repository.UserRepository, creationRepo repository.CreationRepository) *AdminService {
	return &AdminService{
		userRepo:     userRepo,
		creationRepo: creationRepo,
	}
}

type AdminStats struct {
	UserCount     int   `json:"user_count"`
	CreationCount int   `json:"creation_count"`
	TotalPoints   int64 `json:"total_points"`
}

func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	creations, err := s.creationRepo.Count(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	points, err := s.userRepo.SumPoints(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return &AdminStats{UserCount: users, CreationCount: creations, TotalPoints: points}, nil
}

func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	users, err := s.userRepo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return users, total, nil
}

// AdjustPoints shifts a user's balance by delta. Negative deltas clamp at
// zero rather than failing.
func (s *AdminService) AdjustPoints(ctx context.Context, userID string, delta int) (*model.User, error) {
	if delta == 0 {
		return nil, apperrors.InvalidInput("points", "delta must be non-zero")
	}
	user, err := s.userRepo.AdjustPoints(ctx, userID, delta)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}
	log.Info().
		Str("userId", userID).
		Int("delta", delta).
		Int("newBalance", user.DrawingPoints).
		Msg("admin adjusted points")
	return user, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return apperrors.Database(err)
	}
	if user == nil {
		return apperrors.NotFound("User")
	}
	if user.Role == model.RoleAdmin {
		return apperrors.Forbidden("Cannot delete an admin account")
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return apperrors.Database(err)
	}
	log.Warn().Str("userId", userID).Str("username", user.Username).Msg("admin deleted user")
	return nil
}
