package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for paths that escape the base directory.
var ErrInvalidPath = errors.New("invalid file path")

// Local stores files below a base directory.
type Local struct {
	baseDir string
}

// NewLocal creates the base directory if needed.
func NewLocal(baseDir string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Local{baseDir: baseDir}, nil
}

// Dir returns the base directory, e.g. for serving files statically.
func (s *Local) Dir() string {
	return s.baseDir
}

// Save writes data to dir/<uuid><ext> and returns the slash-separated
// relative path. A partially written file is removed on failure.
func (s *Local) Save(ctx context.Context, dir, ext string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := path.Join(dir, uuid.NewString()+ext)
	full, err := s.safeJoin(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(full, data, 0o644); err != nil {
		if rerr := os.Remove(full); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			slog.Error("failed to remove file after write error", "path", rel, "error", rerr)
		}
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return rel, nil
}

// Delete removes the file at rel. A file that is already gone is not an
// error.
func (s *Local) Delete(ctx context.Context, rel string) error {
	full, err := s.safeJoin(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists reports whether a regular file is stored at rel.
func (s *Local) Exists(rel string) bool {
	full, err := s.safeJoin(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

// safeJoin resolves rel below baseDir and rejects traversal.
func (s *Local) safeJoin(rel string) (string, error) {
	if rel == "" || strings.ContainsRune(rel, 0) {
		return "", ErrInvalidPath
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, rel)
	}
	return absPath, nil
}
