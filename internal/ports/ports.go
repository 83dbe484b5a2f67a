package ports

import (
	"context"

	"corpusview/internal/domain"
)

// BundleSource yields one normalized snapshot of the corpus.
type BundleSource interface {
	Name() string
	Fetch(ctx context.Context) (domain.Bundle, error)
}

// BundleCleaner rewrites display text of a bundle before it is joined.
type BundleCleaner interface {
	Clean(b domain.Bundle) domain.Bundle
}

// Joiner turns a bundle into denormalized collections off the caller's goroutine.
type Joiner interface {
	Load(ctx context.Context, b domain.Bundle) (domain.Collections, error)
}

// ViewWriter persists or prints a derived view of the session.
type ViewWriter interface {
	WriteView(ctx context.Context, view domain.View) error
}
