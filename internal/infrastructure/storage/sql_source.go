package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"corpusview/internal/domain"
	"corpusview/internal/ports"
	"corpusview/internal/validation"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Tables names the six normalized tables of a bundle.
type Tables struct {
	Articles         string
	Events           string
	Topics           string
	ArticlesTopics   string
	Entities         string
	ArticlesEntities string
}

// DefaultTables matches the key names of the JSON bundle.
func DefaultTables() Tables {
	return Tables{
		Articles:         "articles",
		Events:           "events",
		Topics:           "topics",
		ArticlesTopics:   "articles_topics",
		Entities:         "entities",
		ArticlesEntities: "articles_entities",
	}
}

// SQLSource reads a bundle straight from the extraction pipeline's database.
type SQLSource struct {
	db      *sql.DB
	tables  Tables
	builder sq.StatementBuilderType
}

var _ ports.BundleSource = (*SQLSource)(nil)

// Open connects to postgres (lib/pq) or sqlite (modernc) and pings the server.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// NewSQLSource wires a sql.DB; empty table names fall back to the defaults.
func NewSQLSource(db *sql.DB, driver string, tables Tables) *SQLSource {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == DriverPostgres {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &SQLSource{db: db, tables: withDefaults(tables), builder: builder}
}

// Name identifies the source inside the registry.
func (s *SQLSource) Name() string {
	return "sql"
}

// Fetch loads the six tables. Only emptiness is validated here; column types
// are enforced by the schema.
func (s *SQLSource) Fetch(ctx context.Context) (domain.Bundle, error) {
	if s.db == nil {
		return domain.Bundle{}, fmt.Errorf("database is not configured")
	}

	var (
		b   domain.Bundle
		err error
	)
	if b.Articles, err = s.articles(ctx); err != nil {
		return domain.Bundle{}, err
	}
	if b.Events, err = s.events(ctx); err != nil {
		return domain.Bundle{}, err
	}
	if b.Topics, err = s.topics(ctx); err != nil {
		return domain.Bundle{}, err
	}
	if b.ArticlesTopics, err = s.articleTopics(ctx); err != nil {
		return domain.Bundle{}, err
	}
	if b.Entities, err = s.entities(ctx); err != nil {
		return domain.Bundle{}, err
	}
	if b.ArticlesEntities, err = s.articleEntities(ctx); err != nil {
		return domain.Bundle{}, err
	}

	if err := validation.ValidateBundle(b); err != nil {
		return domain.Bundle{}, err
	}
	return b, nil
}

func (s *SQLSource) articles(ctx context.Context) ([]domain.Article, error) {
	var out []domain.Article
	err := s.query(ctx, s.builder.Select("id", "title", "event_id", "date", "url").From(s.tables.Articles), func(rows *sql.Rows) error {
		var (
			a            domain.Article
			eventID, url sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Title, &eventID, &a.Date, &url); err != nil {
			return err
		}
		a.EventID = eventID.String
		a.URL = url.String
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	return out, nil
}

func (s *SQLSource) events(ctx context.Context) ([]domain.Event, error) {
	var out []domain.Event
	err := s.query(ctx, s.builder.Select("id", "name", "date").From(s.tables.Events), func(rows *sql.Rows) error {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return out, nil
}

func (s *SQLSource) topics(ctx context.Context) ([]domain.Topic, error) {
	var out []domain.Topic
	err := s.query(ctx, s.builder.Select("id", "name", "color", "topwords").From(s.tables.Topics), func(rows *sql.Rows) error {
		var (
			t               domain.Topic
			color, topwords sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &color, &topwords); err != nil {
			return err
		}
		t.Color = color.String
		if topwords.Valid && topwords.String != "" {
			if err := json.Unmarshal([]byte(topwords.String), &t.TopWords); err != nil {
				return fmt.Errorf("topic %s topwords: %w", t.ID, err)
			}
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	return out, nil
}

func (s *SQLSource) articleTopics(ctx context.Context) ([]domain.ArticleTopic, error) {
	var out []domain.ArticleTopic
	err := s.query(ctx, s.builder.Select("article_id", "topic_id").From(s.tables.ArticlesTopics), func(rows *sql.Rows) error {
		var l domain.ArticleTopic
		if err := rows.Scan(&l.ArticleID, &l.TopicID); err != nil {
			return err
		}
		out = append(out, l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query article topics: %w", err)
	}
	return out, nil
}

func (s *SQLSource) entities(ctx context.Context) ([]domain.Entity, error) {
	var out []domain.Entity
	err := s.query(ctx, s.builder.Select("id", "name").From(s.tables.Entities), func(rows *sql.Rows) error {
		var e domain.Entity
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query entities: %w", err)
	}
	return out, nil
}

func (s *SQLSource) articleEntities(ctx context.Context) ([]domain.ArticleEntity, error) {
	var out []domain.ArticleEntity
	err := s.query(ctx, s.builder.Select("article_id", "entity_id").From(s.tables.ArticlesEntities), func(rows *sql.Rows) error {
		var l domain.ArticleEntity
		if err := rows.Scan(&l.ArticleID, &l.EntityID); err != nil {
			return err
		}
		out = append(out, l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query article entities: %w", err)
	}
	return out, nil
}

func (s *SQLSource) query(ctx context.Context, q sq.SelectBuilder, scan func(*sql.Rows) error) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}

	for rows.Next() {
		if err := scan(rows); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan row: %w", err)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return fmt.Errorf("close rows: %w", closeErr)
	}

	return nil
}

func withDefaults(t Tables) Tables {
	d := DefaultTables()
	if t.Articles != "" {
		d.Articles = t.Articles
	}
	if t.Events != "" {
		d.Events = t.Events
	}
	if t.Topics != "" {
		d.Topics = t.Topics
	}
	if t.ArticlesTopics != "" {
		d.ArticlesTopics = t.ArticlesTopics
	}
	if t.Entities != "" {
		d.Entities = t.Entities
	}
	if t.ArticlesEntities != "" {
		d.ArticlesEntities = t.ArticlesEntities
	}
	return d
}
