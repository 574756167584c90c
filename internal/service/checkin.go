package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openbanana/studio-server-go/internal/config"
	apperrors "github.com/openbanana/studio-server-go/internal/errors"
	"github.com/openbanana/studio-server-go/internal/model"
	"github.com/openbanana/studio-server-go/internal/repository"
)

// CheckInService awards the daily check-in bonus. Days are UTC calendar
// dates, so eligibility flips at midnight UTC for everyone.
type CheckInService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewCheckInService(userRepo repository.UserRepository) *CheckInService {
	return &CheckInService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

// today returns the current UTC calendar date at midnight.
func (s *CheckInService) today() time.Time {
	t := s.now().UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sameDay compares two timestamps by UTC calendar date.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// CanCheckIn reports whether the user is eligible to check in today.
func (s *CheckInService) CanCheckIn(ctx context.Context, userID string) (bool, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return false, apperrors.Database(err)
	}
	if user == nil {
		return false, apperrors.NotFound("User")
	}
	return canCheckInToday(user, s.today()), nil
}

func canCheckInToday(user *model.User, today time.Time) bool {
	return user.LastCheckinDate == nil || !sameDay(*user.LastCheckinDate, today)
}

// CheckIn awards the daily bonus exactly once per UTC calendar day. The
// update is a single guarded statement, so two concurrent check-ins can
// only ever credit one bonus.
func (s *CheckInService) CheckIn(ctx context.Context, userID string) (*model.CheckInResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}

	today := s.today()
	if !canCheckInToday(user, today) {
		return nil, apperrors.AlreadyCheckedIn(user.LastCheckinDate.Format("2006-01-02"))
	}

	updated, err := s.userRepo.ApplyCheckIn(ctx, userID, config.CheckInBonusPoints, today)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if updated == nil {
		// Lost the race to a concurrent check-in for the same day.
		return nil, apperrors.AlreadyCheckedIn(today.Format("2006-01-02"))
	}

	log.Info().
		Str("userId", userID).
		Int("points", config.CheckInBonusPoints).
		Int("totalPoints", updated.DrawingPoints).
		Int("checkinCount", updated.CheckinCount).
		Msg("daily check-in recorded")

	return &model.CheckInResult{
		PointsEarned:    config.CheckInBonusPoints,
		TotalPoints:     updated.DrawingPoints,
		CheckinCount:    updated.CheckinCount,
		LastCheckinDate: today.Format("2006-01-02"),
	}, nil
}
