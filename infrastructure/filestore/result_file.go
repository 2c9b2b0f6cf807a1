package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lottery/domain/entities"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// ResultFile is a ResultStore backed by a single JSON file. The file's
// presence is the draw lock; commit publishes a fully written temp file with
// a hard link, which fails if the target already exists.
type ResultFile struct {
	path string
}

// NewResultFile creates a result store at path. The parent directory is
// created if needed.
func NewResultFile(path string) (*ResultFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve result file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create result directory: %w", err)
	}
	return &ResultFile{path: abs}, nil
}

// Path returns the absolute path of the result record
func (s *ResultFile) Path() string {
	return s.path
}

// Exists returns true if the result record is present
func (s *ResultFile) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat result file: %w: %w", entities.ErrStoreUnavailable, err)
}

// Load reads and decodes the result record
func (s *ResultFile) Load(ctx context.Context) (*entities.DrawResult, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w: %w", entities.ErrStoreUnavailable, err)
	}

	var result entities.DrawResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("result file %s is corrupt: %w", s.path, err)
	}
	return &result, nil
}

// Commit writes the result durably, or fails with ErrAlreadyLocked
func (s *ResultFile) Commit(ctx context.Context, result *entities.DrawResult) error {
	if err := result.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid result: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode draw result: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp result file: %w: %w", entities.ErrStoreUnavailable, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp result file: %w: %w", entities.ErrStoreUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp result file: %w: %w", entities.ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp result file: %w: %w", entities.ErrStoreUnavailable, err)
	}

	if err := os.Link(tmpPath, s.path); err != nil {
		if errors.Is(err, os.ErrExist) {
			return entities.ErrAlreadyLocked
		}
		return fmt.Errorf("failed to publish result file: %w: %w", entities.ErrStoreUnavailable, err)
	}

	if err := syncDir(dir); err != nil {
		// The record is in place; losing it now would reopen the round, so
		// report the failure instead of claiming durability
		return fmt.Errorf("failed to sync result directory: %w: %w", entities.ErrStoreUnavailable, err)
	}

	log.WithFields(log.Fields{
		"path":     s.path,
		"resultID": result.ID,
	}).Debug("Draw result written")
	return nil
}

// Clear removes the result record. Unlink is atomic, so the record is either
// fully present or fully gone.
func (s *ResultFile) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entities.ErrNotFound
		}
		return fmt.Errorf("failed to remove result file: %w: %w", entities.ErrStoreUnavailable, err)
	}
	if err := syncDir(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("failed to sync result directory: %w: %w", entities.ErrStoreUnavailable, err)
	}
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
