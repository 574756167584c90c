package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const uploadsURLPrefix = "/uploads/"

// LocalStore writes artifacts to a directory served by the HTTP server
// under /uploads/.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("uploads dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory artifacts are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

// PublicURL returns the URL a stored file is served under.
func (s *LocalStore) PublicURL(name string) string {
	return uploadsURLPrefix + path.Base(name)
}

func (s *LocalStore) Save(_ context.Context, name string, data []byte) (string, error) {
	name = path.Base(name)
	filePath := filepath.Join(s.dir, name)

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return uploadsURLPrefix + name, nil
}

func (s *LocalStore) Remove(_ context.Context, publicURL string) error {
	name, ok := strings.CutPrefix(publicURL, uploadsURLPrefix)
	if !ok || name == "" {
		return fmt.Errorf("not a local artifact url: %s", publicURL)
	}
	// Base guards against traversal in stored urls.
	filePath := filepath.Join(s.dir, path.Base(name))

	err := os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}
