package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"corpusview/internal/domain"
	"corpusview/internal/filter"
	"corpusview/internal/ports"
)

// Session is the part of the session store the browse workflow drives.
type Session interface {
	Load(ctx context.Context, b domain.Bundle) error
	SetCriteria(cr filter.Criteria)
	View(loadID, source string, now time.Time) domain.View
}

// BrowseDeps wires the driven adapters into the browse workflow.
type BrowseDeps struct {
	Source  ports.BundleSource
	Cleaner ports.BundleCleaner
	Session Session
	Writer  ports.ViewWriter
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Browse loads one bundle into a session, applies the initial criteria and
// exports the resulting view.
type Browse struct {
	source  ports.BundleSource
	cleaner ports.BundleCleaner
	session Session
	writer  ports.ViewWriter
	logger  *slog.Logger
	clock   func() time.Time
}

// NewBrowse constructs the workflow.
func NewBrowse(deps BrowseDeps) *Browse {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Browse{
		source:  deps.Source,
		cleaner: deps.Cleaner,
		session: deps.Session,
		writer:  deps.Writer,
		logger:  deps.Logger,
		clock:   clock,
	}
}

// Run executes fetch, clean, load, filter and export once. A failed fetch
// or load leaves the session as it was and nothing is written.
func (b *Browse) Run(ctx context.Context, cr filter.Criteria) (domain.View, error) {
	if b.source == nil {
		return domain.View{}, fmt.Errorf("bundle source is not configured")
	}
	if b.session == nil {
		return domain.View{}, fmt.Errorf("session is not configured")
	}

	loadID := uuid.NewString()
	b.info("fetch bundle", "load_id", loadID, "source", b.source.Name())

	bundle, err := b.source.Fetch(ctx)
	if err != nil {
		return domain.View{}, fmt.Errorf("fetch bundle from %s: %w", b.source.Name(), err)
	}

	if b.cleaner != nil {
		bundle = b.cleaner.Clean(bundle)
	}

	if err := b.session.Load(ctx, bundle); err != nil {
		return domain.View{}, fmt.Errorf("load bundle: %w", err)
	}

	b.session.SetCriteria(cr)
	view := b.session.View(loadID, b.source.Name(), b.clock())

	b.info("view derived", "load_id", loadID,
		"articles", view.Articles.EffectiveCount,
		"events", view.Events.EffectiveCount,
		"topics", view.Topics.EffectiveCount,
		"entities", view.Entities.EffectiveCount)

	if b.writer == nil {
		return view, nil
	}
	if err := b.writer.WriteView(ctx, view); err != nil {
		return view, fmt.Errorf("export view: %w", err)
	}
	return view, nil
}

func (b *Browse) info(msg string, args ...interface{}) {
	if b.logger != nil {
		b.logger.Info(msg, args...)
	}
}
