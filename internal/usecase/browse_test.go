package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"corpusview/internal/domain"
	"corpusview/internal/filter"
	"corpusview/internal/joiner"
	"corpusview/internal/session"
)

type stubSource struct {
	bundle domain.Bundle
	err    error
}

func (s stubSource) Name() string { return "stub" }

func (s stubSource) Fetch(context.Context) (domain.Bundle, error) {
	return s.bundle, s.err
}

type recordingWriter struct {
	views []domain.View
	err   error
}

func (w *recordingWriter) WriteView(_ context.Context, v domain.View) error {
	w.views = append(w.views, v)
	return w.err
}

type upperCleaner struct{}

func (upperCleaner) Clean(b domain.Bundle) domain.Bundle {
	articles := make([]domain.Article, len(b.Articles))
	for i, a := range b.Articles {
		a.Title = strings.ToUpper(a.Title)
		articles[i] = a
	}
	b.Articles = articles
	return b
}

type syncJoiner struct{}

func (syncJoiner) Load(_ context.Context, b domain.Bundle) (domain.Collections, error) {
	return joiner.Join(b), nil
}

func testBundle() domain.Bundle {
	return domain.Bundle{
		Articles: []domain.Article{
			{ID: "a1", Title: "vote", EventID: "e1", Date: "2022-01-01"},
			{ID: "a2", Title: "match", EventID: "e1", Date: "2022-01-03"},
		},
		Events:           []domain.Event{{ID: "e1", Name: "weekend", Date: "2022-01-01"}},
		Topics:           []domain.Topic{{ID: "t1", Name: "politics"}},
		ArticlesTopics:   []domain.ArticleTopic{{ArticleID: "a1", TopicID: "t1"}},
		Entities:         []domain.Entity{{ID: "n1", Name: "Alice"}},
		ArticlesEntities: []domain.ArticleEntity{{ArticleID: "a1", EntityID: "n1"}},
	}
}

func fixedClock() time.Time {
	return time.Date(2022, 2, 1, 0, 0, 0, 0, time.UTC)
}

func TestBrowseRunExportsView(t *testing.T) {
	t.Parallel()

	store := session.New(syncJoiner{}, session.Options{})
	writer := &recordingWriter{}
	browse := NewBrowse(BrowseDeps{
		Source:  stubSource{bundle: testBundle()},
		Cleaner: upperCleaner{},
		Session: store,
		Writer:  writer,
		Clock:   fixedClock,
	})

	cr := filter.DefaultCriteria()
	cr.Articles.Query = "VOTE"
	view, err := browse.Run(context.Background(), cr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(writer.views) != 1 {
		t.Fatalf("expected one exported view, got %d", len(writer.views))
	}
	if view.LoadID == "" || view.Source != "stub" || !view.GeneratedAt.Equal(fixedClock()) {
		t.Fatalf("unexpected view header: %+v", view)
	}
	if view.Articles.FullCount != 2 || len(view.Articles.Visible) != 1 || view.Articles.Visible[0].Title != "VOTE" {
		t.Fatalf("unexpected articles: %+v", view.Articles)
	}
	if store.Criteria().Articles.Query != "VOTE" {
		t.Fatalf("criteria were not applied to the session")
	}
}

func TestBrowseFetchErrorSkipsExport(t *testing.T) {
	t.Parallel()

	writer := &recordingWriter{}
	browse := NewBrowse(BrowseDeps{
		Source:  stubSource{err: errors.New("boom")},
		Session: session.New(syncJoiner{}, session.Options{}),
		Writer:  writer,
	})

	if _, err := browse.Run(context.Background(), filter.DefaultCriteria()); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if len(writer.views) != 0 {
		t.Fatalf("nothing should be exported after a failed fetch")
	}
}

func TestBrowseInvalidBundleSkipsExport(t *testing.T) {
	t.Parallel()

	bad := testBundle()
	bad.Entities = nil

	writer := &recordingWriter{}
	browse := NewBrowse(BrowseDeps{
		Source:  stubSource{bundle: bad},
		Session: session.New(syncJoiner{}, session.Options{}),
		Writer:  writer,
	})

	if _, err := browse.Run(context.Background(), filter.DefaultCriteria()); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(writer.views) != 0 {
		t.Fatalf("nothing should be exported after a failed load")
	}
}

func TestBrowseRequiresSource(t *testing.T) {
	t.Parallel()

	if _, err := NewBrowse(BrowseDeps{}).Run(context.Background(), filter.DefaultCriteria()); err == nil {
		t.Fatalf("expected missing source error")
	}
}
