package session

import (
	"time"

	"corpusview/internal/domain"
)

// View snapshots the current visible subsets for export.
func (s *Store) View(loadID, source string, now time.Time) domain.View {
	c, derived := s.snapshot()
	bounds := derived.Bounds
	first, last := dateRange(c.Articles)

	return domain.View{
		LoadID:      loadID,
		Source:      source,
		GeneratedAt: now,
		Articles:    viewSet(Pair[domain.Article]{Full: c.Articles, Visible: derived.Visible.Articles}),
		Events:      viewSet(Pair[domain.Event]{Full: c.Events, Visible: derived.Visible.Events}),
		Topics:      viewSet(Pair[domain.Topic]{Full: c.Topics, Visible: derived.Visible.Topics}),
		Entities:    viewSet(Pair[domain.Entity]{Full: c.Entities, Visible: derived.Visible.Entities}),
		Bounds: domain.ViewBounds{
			ArticlesMaxLinkedEntities: bounds.ArticlesMaxLinkedEntities,
			EventsMaxLinkedArticles:   bounds.EventsMaxLinkedArticles,
			TopicsMaxLinkedArticles:   bounds.TopicsMaxLinkedArticles,
		},
		FirstArticleAt: first,
		LastArticleAt:  last,
	}
}

func viewSet[T any](p Pair[T]) domain.ViewSet[T] {
	return domain.ViewSet[T]{
		FullCount:      len(p.Full),
		EffectiveCount: len(p.Effective()),
		Visible:        p.Visible,
	}
}
