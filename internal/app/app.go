package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"corpusview/internal/config"
	"corpusview/internal/domain"
	"corpusview/internal/infrastructure/export"
	"corpusview/internal/infrastructure/filesource"
	"corpusview/internal/infrastructure/httpsource"
	"corpusview/internal/infrastructure/markup"
	"corpusview/internal/infrastructure/storage"
	"corpusview/internal/joiner"
	"corpusview/internal/logging"
	"corpusview/internal/ports"
	"corpusview/internal/session"
	"corpusview/internal/source"
	"corpusview/internal/usecase"
)

const stopTimeout = 5 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *sql.DB
	worker  *joiner.Worker
	session *session.Store
	browse  *usecase.Browse
}

// New builds a runnable application and starts its join worker. A database
// connection is only opened when the sql source is selected. Call Close when done.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := source.NewRegistry()
	registry.Register(filesource.NewSource(cfg.Bundle.Path, baseLogger.With("component", "source.file")))
	registry.Register(httpsource.NewClient(cfg.HTTP.URL, cfg.HTTP.Token, cfg.HTTP.Timeout))

	a := &Application{cfg: cfg, logger: baseLogger}

	if cfg.Source.Kind == "sql" {
		db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
		registry.Register(storage.NewSQLSource(db, cfg.Database.Driver, tables(cfg.Database.Tables)))
	}

	src, err := registry.Resolve(cfg.Source.Kind)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var cleaner ports.BundleCleaner
	if cfg.Bundle.StripMarkup {
		cleaner = markup.NewCleaner(baseLogger.With("component", "markup"))
	}

	a.worker = joiner.NewWorker(baseLogger.With("component", "joiner"))
	if err := a.worker.Start(context.Background()); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("start join worker: %w", err)
	}
	a.session = session.New(a.worker, session.Options{
		NoTopicID: cfg.Topics.NoTopicID,
		Logger:    baseLogger.With("component", "session"),
	})
	a.browse = usecase.NewBrowse(usecase.BrowseDeps{
		Source:  src,
		Cleaner: cleaner,
		Session: a.session,
		Writer:  export.NewJSONWriter(cfg.Output.Path, baseLogger.With("component", "export")),
		Logger:  baseLogger.With("component", "browse"),
	})
	return a, nil
}

// Run performs one browse pass. The session keeps accepting uploads afterwards.
func (a *Application) Run(ctx context.Context) (domain.View, error) {
	criteria, err := a.cfg.View.Criteria()
	if err != nil {
		return domain.View{}, fmt.Errorf("view criteria: %w", err)
	}
	return a.browse.Run(ctx, criteria)
}

// Session exposes the store for callers that keep browsing after Run.
func (a *Application) Session() *session.Store {
	return a.session
}

// Close stops the join worker and releases the database connection, if any.
func (a *Application) Close() error {
	if a.worker != nil {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		err := a.worker.Stop(ctx)
		cancel()
		if err != nil {
			a.logger.Warn("join worker did not stop", "error", err)
		}
	}
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func tables(t config.TablesConfig) storage.Tables {
	return storage.Tables{
		Articles:         t.Articles,
		Events:           t.Events,
		Topics:           t.Topics,
		ArticlesTopics:   t.ArticlesTopics,
		Entities:         t.Entities,
		ArticlesEntities: t.ArticlesEntities,
	}
}
