package filesource

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"corpusview/internal/bundle"
	"corpusview/internal/domain"
	"corpusview/internal/ports"
)

// Source reads an uploaded bundle from a JSON file on disk.
type Source struct {
	path   string
	logger *slog.Logger
}

var _ ports.BundleSource = (*Source)(nil)

// NewSource binds the source to a file path.
func NewSource(path string, log *slog.Logger) *Source {
	return &Source{path: path, logger: log}
}

// Name identifies the source inside the registry.
func (s *Source) Name() string {
	return "file"
}

// Fetch decodes and validates the bundle file.
func (s *Source) Fetch(ctx context.Context) (domain.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bundle{}, err
	}
	if s.path == "" {
		return domain.Bundle{}, fmt.Errorf("bundle path is not configured")
	}

	s.debug("read bundle", "path", s.path)
	f, err := os.Open(s.path)
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()

	b, err := bundle.Decode(f)
	if err != nil {
		return domain.Bundle{}, fmt.Errorf("bundle %s: %w", s.path, err)
	}

	s.debug("bundle decoded", "path", s.path, "articles", len(b.Articles), "links", len(b.ArticlesEntities)+len(b.ArticlesTopics))
	return b, nil
}

func (s *Source) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
