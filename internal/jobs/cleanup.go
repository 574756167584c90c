package jobs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/openbanana/studio-server-go/internal/repository"
	"github.com/openbanana/studio-server-go/internal/storage"
)

// orphanMinAge protects files from an in-flight generation: the file is
// written before its row, so a very fresh file may not have a record yet.
const orphanMinAge = time.Hour

// CleanupJob sweeps the local uploads directory for files no creation row
// references and deletes them.
type CleanupJob struct {
	creationRepo repository.CreationRepository
	store        *storage.LocalStore
	interval     time.Duration
	done         chan struct{}
}

func NewCleanupJob(creationRepo repository.CreationRepository, store *storage.LocalStore, interval time.Duration) *CleanupJob {
	return &CleanupJob{
		creationRepo: creationRepo,
		store:        store,
		interval:     interval,
		done:         make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := j.sweepOrphans(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to sweep orphaned uploads")
	} else if removed > 0 {
		log.Info().Int("count", removed).Msg("removed orphaned upload files")
	}
}

func (j *CleanupJob) sweepOrphans(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(j.store.Dir())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-orphanMinAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		publicURL := j.store.PublicURL(entry.Name())
		exists, err := j.creationRepo.ExistsByImageURL(ctx, publicURL)
		if err != nil {
			return removed, err
		}
		if exists {
			continue
		}

		if err := os.Remove(filepath.Join(j.store.Dir(), entry.Name())); err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("failed to remove orphaned file")
			continue
		}
		removed++
	}

	return removed, nil
}
