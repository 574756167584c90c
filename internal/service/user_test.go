package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/openbanana/studio-server-go/internal/errors"
	"github.com/openbanana/studio-server-go/internal/model"
)

func newUserFixture() (*UserService, *mockUserRepo, *mockAPIConfigRepo) {
	userRepo := new(mockUserRepo)
	apiConfigRepo := new(mockAPIConfigRepo)
	checkIn := NewCheckInService(userRepo)
	checkIn.now = fixedClock(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	return NewUserService(userRepo, apiConfigRepo, checkIn), userRepo, apiConfigRepo
}

func TestUserService_Info(t *testing.T) {
	ctx := context.Background()

	t.Run("reports check-in eligibility and key presence", func(t *testing.T) {
		svc, userRepo, apiConfigRepo := newUserFixture()

		userRepo.On("FindByID", ctx, "user-1").Return(testUser(10), nil)
		apiConfigRepo.On("FindByUserID", ctx, "user-1").
			Return(&model.UserAPIConfig{UserID: "user-1", APIKey: "sk-personal-key-123"}, nil)

		info, err := svc.Info(ctx, "user-1")

		require.NoError(t, err)
		assert.True(t, info.CanCheckIn)
		assert.True(t, info.HasPersonalKey)
		assert.Equal(t, 10, info.User.DrawingPoints)
	})

	t.Run("already checked in today", func(t *testing.T) {
		svc, userRepo, apiConfigRepo := newUserFixture()

		today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
		user := testUser(10)
		user.LastCheckinDate = &today
		userRepo.On("FindByID", ctx, "user-1").Return(user, nil)
		apiConfigRepo.On("FindByUserID", ctx, "user-1").Return(nil, nil)

		info, err := svc.Info(ctx, "user-1")

		require.NoError(t, err)
		assert.False(t, info.CanCheckIn)
		assert.False(t, info.HasPersonalKey)
	})
}

func TestUserService_APIKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("saved key comes back masked", func(t *testing.T) {
		svc, _, apiConfigRepo := newUserFixture()

		apiConfigRepo.On("Upsert", ctx, mock.MatchedBy(func(p model.UpsertAPIConfigParams) bool {
			return p.UserID == "user-1" && p.APIKey == "sk-abcdefghijklmnop"
		})).Return(&model.UserAPIConfig{
			UserID:     "user-1",
			APIKey:     "sk-abcdefghijklmnop",
			APIBaseURL: "https://api.example.com/v1",
		}, nil)

		info, err := svc.SaveAPIKey(ctx, "user-1", "sk-abcdefghijklmnop", "https://api.example.com/v1")

		require.NoError(t, err)
		assert.NotContains(t, info.MaskedKey, "ghijkl")
		assert.Contains(t, info.MaskedKey, "...")
		assert.Equal(t, "https://api.example.com/v1", info.BaseURL)
	})

	t.Run("rejects a too-short key", func(t *testing.T) {
		svc, _, apiConfigRepo := newUserFixture()

		_, err := svc.SaveAPIKey(ctx, "user-1", "short", "")

		appErr, ok := apperrors.AsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)
		apiConfigRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("rejects a non-http base url", func(t *testing.T) {
		svc, _, _ := newUserFixture()

		_, err := svc.SaveAPIKey(ctx, "user-1", "sk-abcdefghijklmnop", "ftp://example.com")

		appErr, ok := apperrors.AsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, appErr.Code)
	})

	t.Run("get without a stored key returns nil", func(t *testing.T) {
		svc, _, apiConfigRepo := newUserFixture()

		apiConfigRepo.On("FindByUserID", ctx, "user-1").Return(nil, nil)

		info, err := svc.GetAPIKey(ctx, "user-1")

		assert.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("delete missing key is not found", func(t *testing.T) {
		svc, _, apiConfigRepo := newUserFixture()

		apiConfigRepo.On("DeleteByUserID", ctx, "user-1").Return(false, nil)

		err := svc.DeleteAPIKey(ctx, "user-1")

		appErr, ok := apperrors.AsAppError(err)
		assert.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
	})
}
