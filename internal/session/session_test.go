package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"

	"corpusview/internal/domain"
	"corpusview/internal/filter"
	"corpusview/internal/joiner"
	"corpusview/internal/validation"
)

type joinFunc func(ctx context.Context, b domain.Bundle) (domain.Collections, error)

func (f joinFunc) Load(ctx context.Context, b domain.Bundle) (domain.Collections, error) {
	return f(ctx, b)
}

var syncJoin = joinFunc(func(_ context.Context, b domain.Bundle) (domain.Collections, error) {
	return joiner.Join(b), nil
})

func scenarioBundle() domain.Bundle {
	return domain.Bundle{
		Articles: []domain.Article{
			{ID: "a0", Title: "zero", EventID: "e1", Date: "2022-01-10"},
			{ID: "a1", Title: "two", EventID: "e1", Date: "2022-01-05"},
			{ID: "a2", Title: "one", EventID: "e2", Date: "2022-01-20"},
		},
		Events: []domain.Event{{ID: "e1", Name: "first", Date: "2022-01-01"}, {ID: "e2", Name: "second", Date: "2022-01-02"}},
		Topics: []domain.Topic{
			{ID: "t1", Name: "one"},
			{ID: "t2", Name: "two"},
			{ID: domain.NoTopicID, Name: "outliers"},
		},
		ArticlesTopics: []domain.ArticleTopic{
			{ArticleID: "a0", TopicID: "t1"},
			{ArticleID: "a1", TopicID: "t1"},
			{ArticleID: "a1", TopicID: "t2"},
			{ArticleID: "a2", TopicID: "t2"},
		},
		Entities: []domain.Entity{{ID: "n1", Name: "Alice"}, {ID: "n2", Name: "Bob"}},
		ArticlesEntities: []domain.ArticleEntity{
			{ArticleID: "a1", EntityID: "n1"},
			{ArticleID: "a1", EntityID: "n2"},
			{ArticleID: "a2", EntityID: "n2"},
		},
	}
}

func articleIDs(list []domain.Article) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func loaded(t *testing.T) *Store {
	t.Helper()
	s := New(syncJoin, Options{})
	if err := s.Load(context.Background(), scenarioBundle()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func TestLoadWithoutCriteriaFallsBackToFull(t *testing.T) {
	t.Parallel()

	s := loaded(t)

	articles := s.Articles()
	if got := articleIDs(articles.Full); !reflect.DeepEqual(got, []string{"a1", "a2", "a0"}) {
		t.Fatalf("unexpected joined order: %v", got)
	}
	if len(articles.Visible) != 0 {
		t.Fatalf("expected empty visible articles, got %v", articleIDs(articles.Visible))
	}
	if got := articleIDs(articles.Effective()); !reflect.DeepEqual(got, []string{"a1", "a2", "a0"}) {
		t.Fatalf("effective must fall back to full, got %v", got)
	}
}

func TestLoadThroughWorker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	w := joiner.NewWorker(nil)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("start worker: %v", err)
	}
	defer w.Stop(ctx)

	s := New(w, Options{})
	if err := s.Load(ctx, scenarioBundle()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Entities().Full) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(s.Entities().Full))
	}
}

func TestFailedLoadKeepsPreviousCollections(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	before := s.Collections()

	bad := scenarioBundle()
	bad.ArticlesEntities = nil
	err := s.Load(context.Background(), bad)
	var verr *validation.Error
	if !errors.As(err, &verr) || !errors.Is(err, validation.ErrInvalidBundle) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "articles_entities") {
		t.Fatalf("error should name the collection: %v", err)
	}

	s.joiner = joinFunc(func(context.Context, domain.Bundle) (domain.Collections, error) {
		return domain.Collections{}, context.DeadlineExceeded
	})
	if err := s.Load(context.Background(), scenarioBundle()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected join error, got %v", err)
	}

	if !reflect.DeepEqual(before, s.Collections()) {
		t.Fatalf("collections changed after failed loads")
	}
}

func TestSettersRecomputeVisibleSets(t *testing.T) {
	t.Parallel()

	s := loaded(t)

	s.SetSelectedTopics([]string{"t1"})
	if got := articleIDs(s.Articles().Visible); !reflect.DeepEqual(got, []string{"a1"}) {
		t.Fatalf("expected [a1] (a0 has no entity), got %v", got)
	}

	s.SetArticlesMinLinkedEntities(nil)
	if got := articleIDs(s.Articles().Visible); !reflect.DeepEqual(got, []string{"a1", "a0"}) {
		t.Fatalf("expected [a1 a0], got %v", got)
	}

	s.SetArticlesOrderBy(&filter.OrderBy{Prop: "date", Type: filter.SortDate})
	if got := articleIDs(s.Articles().Visible); !reflect.DeepEqual(got, []string{"a1", "a0"}) {
		t.Fatalf("expected date order [a1 a0], got %v", got)
	}

	s.SetSelectedTopics(nil)
	s.SetArticlesOrderBy(nil)
	s.SetArticlesQuery("")
	if len(s.Articles().Visible) != 0 {
		t.Fatalf("expected visible articles to clear")
	}

	s.SetEntitiesOrderBy(&filter.OrderBy{Prop: "name", Desc: true})
	if got := s.Entities().Visible; len(got) != 2 || got[0].ID != "n2" {
		t.Fatalf("unexpected ordered entities: %+v", got)
	}
	if s.Entities().Full[0].ID != "n1" {
		t.Fatalf("canonical entity order changed")
	}
}

func TestSelectedEntitiesNarrowEvents(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	s.SetSelectedEntities([]string{"n1"})

	events := s.Events().Visible
	if len(events) != 1 || events[0].ID != "e1" {
		t.Fatalf("expected [e1], got %+v", events)
	}
	if got := articleIDs(events[0].LinkedArticles); !reflect.DeepEqual(got, []string{"a1"}) {
		t.Fatalf("expected e1 narrowed to [a1], got %v", got)
	}
	if b := s.Bounds(); b.ArticlesMaxLinkedEntities != 2 || b.EventsMaxLinkedArticles != 1 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestDeleteTopicReassignsToSentinel(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	s.SetSelectedTopics([]string{"t1", "t2"})
	oldArticles := s.Articles().Full

	if err := s.DeleteTopic("t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, tp := range s.Topics().Full {
		if tp.ID == "t1" {
			t.Fatalf("topic t1 still present")
		}
	}
	for _, a := range s.Articles().Full {
		if a.HasTopic("t1") {
			t.Fatalf("article %s still links to t1", a.ID)
		}
	}
	byID := map[string]domain.Article{}
	for _, a := range s.Articles().Full {
		byID[a.ID] = a
	}
	if got := byID["a0"].LinkedTopics; !reflect.DeepEqual(got, []string{domain.NoTopicID}) {
		t.Fatalf("unexpected a0 topics: %v", got)
	}
	if got := byID["a1"].LinkedTopics; !reflect.DeepEqual(got, []string{domain.NoTopicID, "t2"}) {
		t.Fatalf("unexpected a1 topics: %v", got)
	}
	if !oldArticles[0].HasTopic("t1") {
		t.Fatalf("previous article slice was mutated in place")
	}

	var sentinel domain.Topic
	for _, tp := range s.Topics().Full {
		if tp.ID == domain.NoTopicID {
			sentinel = tp
		}
	}
	if got := articleIDs(sentinel.LinkedArticles); !reflect.DeepEqual(got, []string{"a1", "a0"}) {
		t.Fatalf("sentinel topic should collect reassigned articles, got %v", got)
	}
	if got := s.Criteria().SelectedTopics; !reflect.DeepEqual(got, []string{"t2"}) {
		t.Fatalf("deleted topic should leave the selection, got %v", got)
	}
}

func TestDeleteTopicErrors(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	if err := s.DeleteTopic(domain.NoTopicID); !errors.Is(err, ErrSentinelTopic) {
		t.Fatalf("expected ErrSentinelTopic, got %v", err)
	}
	if err := s.DeleteTopic("nope"); !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}
}

func TestTopicEditsAreCopyOnWrite(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	before := s.Topics().Full

	if err := s.SetTopicColor("t2", "#ff0000"); err != nil {
		t.Fatalf("set color: %v", err)
	}
	if err := s.RenameTopic("t2", "Renamed"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	after := s.Topics().Full
	if after[1].Color != "#ff0000" || after[1].Name != "Renamed" {
		t.Fatalf("edit not applied: %+v", after[1])
	}
	if before[1].Color != "" || before[1].Name != "two" {
		t.Fatalf("previous topic slice was mutated: %+v", before[1])
	}
	if err := s.SetTopicColor("missing", "#000000"); !errors.Is(err, ErrTopicNotFound) {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}
}

func TestRandomizeTopicColors(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	s.RandomizeTopicColors(rand.New(rand.NewPCG(1, 2)))

	for _, tp := range s.Topics().Full {
		if tp.ID == domain.NoTopicID {
			if tp.Color != "transparent" {
				t.Fatalf("sentinel colour should be transparent, got %q", tp.Color)
			}
			continue
		}
		if len(tp.Color) != 7 || tp.Color[0] != '#' {
			t.Fatalf("unexpected colour %q for %s", tp.Color, tp.ID)
		}
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	s.SetArticlesQuery("two")

	sum := s.Summary()
	if sum.Articles.Full != 3 || sum.Articles.Effective != 1 {
		t.Fatalf("unexpected article counts: %+v", sum.Articles)
	}
	if sum.FirstArticleAt == nil || sum.FirstArticleAt.Format("2006-01-02") != "2022-01-05" {
		t.Fatalf("unexpected first date: %v", sum.FirstArticleAt)
	}
	if sum.LastArticleAt == nil || sum.LastArticleAt.Format("2006-01-02") != "2022-01-20" {
		t.Fatalf("unexpected last date: %v", sum.LastArticleAt)
	}
}

func TestTopicPreviewUsesDisplayLimit(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	one := 1
	s.SetTopicsMaxDisplayedArticles(&one)

	topic := s.Topics().Full[0]
	if got := s.TopicPreview(topic); len(got) != 1 {
		t.Fatalf("expected 1 previewed article, got %d", len(got))
	}
}

func TestViewIsConsistentUnderConcurrentSetters(t *testing.T) {
	t.Parallel()

	s := loaded(t)
	s.SetArticlesQuery("two")

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		queries := []string{"one", "two"}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				s.SetArticlesQuery(queries[i%2])
			}
		}
	}()

	wantBound := map[string]int{"a1": 2, "a2": 1}
	for i := 0; i < 500; i++ {
		view := s.View("load", "test", time.Time{})
		if len(view.Articles.Visible) != 1 || view.Articles.EffectiveCount != 1 {
			close(stop)
			<-done
			t.Fatalf("unexpected visible articles: %+v", view.Articles)
		}
		id := view.Articles.Visible[0].ID
		if got := view.Bounds.ArticlesMaxLinkedEntities; got != wantBound[id] {
			close(stop)
			<-done
			t.Fatalf("bounds from another state: visible %s with bound %d", id, got)
		}
		if sum := s.Summary(); sum.Articles.Effective != 1 || sum.Articles.Full != 3 {
			close(stop)
			<-done
			t.Fatalf("unexpected summary: %+v", sum.Articles)
		}
	}
	close(stop)
	<-done
}
