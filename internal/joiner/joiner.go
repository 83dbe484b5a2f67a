// Package joiner turns a normalized bundle into denormalized collections.
package joiner

import (
	"slices"

	"corpusview/internal/domain"
)

// Join runs every step sequentially. It is pure and deterministic; dangling
// link rows are dropped silently.
func Join(b domain.Bundle) domain.Collections {
	articles := LinkArticles(b)
	return domain.Collections{
		Articles: articles,
		Events:   EmbedEvents(b.Events, articles),
		Topics:   EmbedTopics(b.Topics, articles),
		Entities: EmbedEntities(b.Entities, articles),
	}
}

// LinkArticles attaches topic ids and entity snapshots to each article and
// orders the result by descending entity count, keeping input order on ties.
func LinkArticles(b domain.Bundle) []domain.Article {
	topicsByArticle := make(map[string]map[string]struct{})
	for _, l := range b.ArticlesTopics {
		addLink(topicsByArticle, l.ArticleID, l.TopicID)
	}
	entitiesByArticle := make(map[string]map[string]struct{})
	for _, l := range b.ArticlesEntities {
		addLink(entitiesByArticle, l.ArticleID, l.EntityID)
	}

	out := make([]domain.Article, 0, len(b.Articles))
	for _, a := range b.Articles {
		linked := a
		linked.LinkedTopics = []string{}
		linked.LinkedEntities = []domain.Entity{}

		if ids := topicsByArticle[a.ID]; len(ids) > 0 {
			for _, t := range b.Topics {
				if _, ok := ids[t.ID]; ok {
					linked.LinkedTopics = append(linked.LinkedTopics, t.ID)
				}
			}
		}
		if ids := entitiesByArticle[a.ID]; len(ids) > 0 {
			for _, e := range b.Entities {
				if _, ok := ids[e.ID]; ok {
					linked.LinkedEntities = append(linked.LinkedEntities, e)
				}
			}
		}
		out = append(out, linked)
	}

	slices.SortStableFunc(out, func(x, y domain.Article) int {
		return len(y.LinkedEntities) - len(x.LinkedEntities)
	})
	return out
}

// EmbedEvents copies each event's articles into it and orders events by
// descending article count, keeping input order on ties.
func EmbedEvents(events []domain.Event, articles []domain.Article) []domain.Event {
	byEvent := make(map[string][]domain.Article)
	for _, a := range articles {
		if a.EventID == "" {
			continue
		}
		byEvent[a.EventID] = append(byEvent[a.EventID], a)
	}

	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		embedded := e
		embedded.LinkedArticles = append([]domain.Article{}, byEvent[e.ID]...)
		out = append(out, embedded)
	}

	slices.SortStableFunc(out, func(x, y domain.Event) int {
		return len(y.LinkedArticles) - len(x.LinkedArticles)
	})
	return out
}

// EmbedTopics copies into each topic the articles that link to it.
func EmbedTopics(topics []domain.Topic, articles []domain.Article) []domain.Topic {
	out := make([]domain.Topic, 0, len(topics))
	for _, t := range topics {
		embedded := t
		embedded.LinkedArticles = []domain.Article{}
		for _, a := range articles {
			if a.HasTopic(t.ID) {
				embedded.LinkedArticles = append(embedded.LinkedArticles, a)
			}
		}
		out = append(out, embedded)
	}
	return out
}

// EmbedEntities records, for each entity, the ids of the articles mentioning it.
func EmbedEntities(entities []domain.Entity, articles []domain.Article) []domain.Entity {
	byEntity := make(map[string][]string)
	for _, a := range articles {
		seen := make(map[string]struct{}, len(a.LinkedEntities))
		for _, e := range a.LinkedEntities {
			if _, dup := seen[e.ID]; dup {
				continue
			}
			seen[e.ID] = struct{}{}
			byEntity[e.ID] = append(byEntity[e.ID], a.ID)
		}
	}

	out := make([]domain.Entity, 0, len(entities))
	for _, e := range entities {
		embedded := e
		embedded.LinkedArticles = append([]string{}, byEntity[e.ID]...)
		out = append(out, embedded)
	}
	return out
}

func addLink(index map[string]map[string]struct{}, from, to string) {
	set, ok := index[from]
	if !ok {
		set = make(map[string]struct{})
		index[from] = set
	}
	set[to] = struct{}{}
}
