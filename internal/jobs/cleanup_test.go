package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openbanana/studio-server-go/internal/model"
	"github.com/openbanana/studio-server-go/internal/repository"
	"github.com/openbanana/studio-server-go/internal/storage"
)

type mockCreationRepo struct {
	mock.Mock
}

func (m *mockCreationRepo) FindByID(ctx context.Context, id string) (*model.Creation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Creation), args.Error(1)
}

func (m *mockCreationRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Creation, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Creation), args.Error(1)
}

func (m *mockCreationRepo) FindByUser(ctx context.Context, userID string, limit, offset int) ([]model.Creation, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Creation), args.Error(1)
}

func (m *mockCreationRepo) Create(ctx context.Context, params model.CreateCreationParams) (*model.Creation, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Creation), args.Error(1)
}

func (m *mockCreationRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCreationRepo) ExistsByImageURL(ctx context.Context, imageURL string) (bool, error) {
	args := m.Called(ctx, imageURL)
	return args.Bool(0), args.Error(1)
}

func (m *mockCreationRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockCreationRepo) WithTx(tx *sqlx.Tx) repository.CreationRepository {
	return m
}

func writeAgedFile(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("img"), 0o644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(p, old, old))
}

func TestCleanupJob_SweepOrphans(t *testing.T) {
	t.Run("removes old files without a record", func(t *testing.T) {
		dir := t.TempDir()
		store, err := storage.NewLocalStore(dir)
		require.NoError(t, err)

		writeAgedFile(t, dir, "orphan.png", 2*time.Hour)
		writeAgedFile(t, dir, "kept.png", 2*time.Hour)

		repo := new(mockCreationRepo)
		repo.On("ExistsByImageURL", mock.Anything, "/uploads/orphan.png").Return(false, nil)
		repo.On("ExistsByImageURL", mock.Anything, "/uploads/kept.png").Return(true, nil)

		job := NewCleanupJob(repo, store, time.Hour)
		removed, err := job.sweepOrphans(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 1, removed)
		assert.NoFileExists(t, filepath.Join(dir, "orphan.png"))
		assert.FileExists(t, filepath.Join(dir, "kept.png"))
	})

	t.Run("spares fresh files that may still be in flight", func(t *testing.T) {
		dir := t.TempDir()
		store, err := storage.NewLocalStore(dir)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "fresh.png"), []byte("img"), 0o644))

		repo := new(mockCreationRepo)

		job := NewCleanupJob(repo, store, time.Hour)
		removed, err := job.sweepOrphans(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, removed)
		assert.FileExists(t, filepath.Join(dir, "fresh.png"))
		repo.AssertNotCalled(t, "ExistsByImageURL", mock.Anything, mock.Anything)
	})

	t.Run("missing uploads dir is not an error", func(t *testing.T) {
		dir := t.TempDir()
		store, err := storage.NewLocalStore(dir)
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(dir))

		job := NewCleanupJob(new(mockCreationRepo), store, time.Hour)
		removed, err := job.sweepOrphans(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 0, removed)
	})
}
