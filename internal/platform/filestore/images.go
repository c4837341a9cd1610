package filestore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/phrazzld/lostfound-api/internal/domain"
)

// Images processes uploads and stores them per item kind.
type Images struct {
	files     *Local
	processor *Processor
	logger    *slog.Logger
}

// NewImages wires a Local store with a Processor.
func NewImages(files *Local, processor *Processor, logger *slog.Logger) *Images {
	if logger == nil {
		logger = slog.Default()
	}
	return &Images{
		files:     files,
		processor: processor,
		logger:    logger.With("component", "images"),
	}
}

// Store normalizes one upload and saves it under img/<kind>/.
func (i *Images) Store(ctx context.Context, kind domain.Kind, r io.Reader) (string, error) {
	data, err := i.processor.Process(r)
	if err != nil {
		return "", err
	}
	rel, err := i.files.Save(ctx, path.Join("img", string(kind)), ".jpg", data)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	i.logger.Debug("image stored", "path", rel, "bytes", len(data))
	return rel, nil
}

// Delete removes a stored image. Missing files are ignored.
func (i *Images) Delete(ctx context.Context, rel string) error {
	return i.files.Delete(ctx, rel)
}

// Discard removes paths immediately, logging failures. It is used to undo
// uploads whose owning record change was rejected.
func (i *Images) Discard(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := i.files.Delete(ctx, p); err != nil {
			i.logger.Warn("failed to discard uploaded image", "path", p, "error", err)
		}
	}
}
