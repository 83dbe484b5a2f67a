// Package filter derives the visible subsets of the four corpus collections
// from a snapshot of collections and criteria. Every function is pure.
package filter

import (
	"corpusview/internal/domain"
)

// ArticleCriteria narrows the article list.
type ArticleCriteria struct {
	Query             string
	Date              *DateFilter
	Order             *OrderBy
	MinLinkedEntities *int
}

// EventCriteria narrows the event list.
type EventCriteria struct {
	Query             string
	Date              *DateFilter
	Order             *OrderBy
	MinLinkedArticles *int
}

// TopicCriteria narrows the topic list. MaxDisplayedArticles only caps
// previews and never filters.
type TopicCriteria struct {
	Query                string
	Order                *OrderBy
	MinLinkedArticles    *int
	MaxDisplayedArticles *int
}

// EntityCriteria only carries an ordering; entities have no query or date filter.
type EntityCriteria struct {
	Order *OrderBy
}

// Criteria is the full set of user-controlled inputs of the engine.
type Criteria struct {
	Articles         ArticleCriteria
	Events           EventCriteria
	Topics           TopicCriteria
	Entities         EntityCriteria
	SelectedTopics   []string
	SelectedEntities []string
}

// DefaultCriteria mirrors the initial state of a fresh session.
func DefaultCriteria() Criteria {
	return Criteria{
		Articles: ArticleCriteria{MinLinkedEntities: intPtr(1)},
		Events:   EventCriteria{MinLinkedArticles: intPtr(1)},
		Topics:   TopicCriteria{MinLinkedArticles: intPtr(1), MaxDisplayedArticles: intPtr(10)},
	}
}

// Visible holds the derived subsets. An empty subset means "no filter
// active": consumers fall back to the full collection.
type Visible struct {
	Articles []domain.Article
	Events   []domain.Event
	Topics   []domain.Topic
	Entities []domain.Entity
}

// Bounds drive range-constrained controls such as threshold sliders.
type Bounds struct {
	ArticlesMaxLinkedEntities int
	EventsMaxLinkedArticles   int
	TopicsMaxLinkedArticles   int
}

// Result is one full derivation.
type Result struct {
	Visible Visible
	Bounds  Bounds
}

// Derive recomputes every visible subset and bound from scratch.
func Derive(c domain.Collections, cr Criteria) Result {
	articles := VisibleArticles(c.Articles, c.Entities, cr)
	events := VisibleEvents(c.Events, c.Articles, articles, cr)
	topics := VisibleTopics(c.Topics, articles, cr)
	entities := VisibleEntities(c.Entities, cr.Entities)

	return Result{
		Visible: Visible{
			Articles: articles,
			Events:   events,
			Topics:   topics,
			Entities: entities,
		},
		Bounds: Bounds{
			ArticlesMaxLinkedEntities: maxCount(Effective(articles, c.Articles), func(a domain.Article) int { return len(a.LinkedEntities) }),
			EventsMaxLinkedArticles:   maxCount(Effective(events, c.Events), func(e domain.Event) int { return len(e.LinkedArticles) }),
			TopicsMaxLinkedArticles:   maxCount(Effective(topics, c.Topics), func(t domain.Topic) int { return len(t.LinkedArticles) }),
		},
	}
}

// VisibleArticles applies the article criteria plus the topic and entity selections.
func VisibleArticles(articles []domain.Article, entities []domain.Entity, cr Criteria) []domain.Article {
	ac := cr.Articles
	active := ac.Query != "" || ac.Date != nil || ac.Order != nil ||
		len(cr.SelectedEntities) > 0 || len(cr.SelectedTopics) > 0 ||
		derefOr(ac.MinLinkedEntities, 0) > 1
	if !active {
		return []domain.Article{}
	}

	selectedTopics := toSet(cr.SelectedTopics)
	var reachable map[string]struct{}
	if len(cr.SelectedEntities) > 0 {
		selected := toSet(cr.SelectedEntities)
		reachable = make(map[string]struct{})
		for _, e := range entities {
			if _, ok := selected[e.ID]; !ok {
				continue
			}
			for _, id := range e.LinkedArticles {
				reachable[id] = struct{}{}
			}
		}
	}

	out := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if !Match(ac.Query, a.Title, a.ID) {
			continue
		}
		if ac.Date != nil && !ac.Date.Matches(a.Date) {
			continue
		}
		if len(selectedTopics) > 0 && !intersects(a.LinkedTopics, selectedTopics) {
			continue
		}
		if reachable != nil {
			if _, ok := reachable[a.ID]; !ok {
				continue
			}
		}
		if ac.MinLinkedEntities != nil && len(a.LinkedEntities) < *ac.MinLinkedEntities {
			continue
		}
		out = append(out, a)
	}

	if ac.Order != nil {
		Sort(out, *ac.Order, ArticleValue)
	}
	return out
}

// VisibleEvents applies the event criteria. When articles are visible, each
// event keeps only its visible articles.
func VisibleEvents(events []domain.Event, articles, visibleArticles []domain.Article, cr Criteria) []domain.Event {
	ec := cr.Events
	active := ec.Query != "" || ec.Date != nil || ec.Order != nil ||
		len(visibleArticles) > 0 || len(cr.SelectedTopics) > 0 ||
		derefOr(ec.MinLinkedArticles, 0) > 1
	if !active {
		return []domain.Event{}
	}

	var topicArticles map[string]struct{}
	if len(cr.SelectedTopics) > 0 {
		selected := toSet(cr.SelectedTopics)
		topicArticles = make(map[string]struct{})
		for _, a := range articles {
			if intersects(a.LinkedTopics, selected) {
				topicArticles[a.ID] = struct{}{}
			}
		}
	}
	visibleIDs := articleIDSet(visibleArticles)

	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if !Match(ec.Query, e.Name, e.ID) {
			continue
		}
		if ec.Date != nil && !ec.Date.Matches(e.Date) {
			continue
		}
		if topicArticles != nil && !embedsAny(e.LinkedArticles, topicArticles) {
			continue
		}
		if len(visibleIDs) > 0 {
			e.LinkedArticles = keepArticles(e.LinkedArticles, visibleIDs)
		}
		if ec.MinLinkedArticles != nil && len(e.LinkedArticles) < *ec.MinLinkedArticles {
			continue
		}
		out = append(out, e)
	}

	if ec.Order != nil {
		Sort(out, *ec.Order, EventValue)
	}
	return out
}

// VisibleTopics applies the topic criteria. With an explicit topic selection
// only the text filter runs.
func VisibleTopics(topics []domain.Topic, visibleArticles []domain.Article, cr Criteria) []domain.Topic {
	tc := cr.Topics

	out := make([]domain.Topic, 0, len(topics))
	for _, t := range topics {
		if Match(tc.Query, t.Name, t.ID) {
			out = append(out, t)
		}
	}
	if len(cr.SelectedTopics) > 0 {
		return out
	}

	if visibleIDs := articleIDSet(visibleArticles); len(visibleIDs) > 0 {
		for i := range out {
			out[i].LinkedArticles = keepArticles(out[i].LinkedArticles, visibleIDs)
		}
	}

	if tc.MinLinkedArticles != nil {
		kept := out[:0]
		for _, t := range out {
			if len(t.LinkedArticles) >= *tc.MinLinkedArticles {
				kept = append(kept, t)
			}
		}
		out = kept
	}

	if tc.Order != nil {
		Sort(out, *tc.Order, TopicValue)
	}
	return out
}

// VisibleEntities returns a sorted clone of the entities when an ordering is
// set, and nothing otherwise.
func VisibleEntities(entities []domain.Entity, ec EntityCriteria) []domain.Entity {
	if ec.Order == nil {
		return []domain.Entity{}
	}
	out := make([]domain.Entity, len(entities))
	for i, e := range entities {
		out[i] = e.Clone()
	}
	Sort(out, *ec.Order, EntityValue)
	return out
}

// Effective returns visible when it is non-empty and full otherwise.
func Effective[T any](visible, full []T) []T {
	if len(visible) > 0 {
		return visible
	}
	return full
}

// Preview caps a topic's embedded articles for display.
func Preview(t domain.Topic, limit *int) []domain.Article {
	if limit == nil || *limit >= len(t.LinkedArticles) {
		return t.LinkedArticles
	}
	if *limit <= 0 {
		return []domain.Article{}
	}
	return t.LinkedArticles[:*limit]
}

func maxCount[T any](items []T, count func(T) int) int {
	best := 0
	for _, item := range items {
		if n := count(item); n > best {
			best = n
		}
	}
	return best
}

func keepArticles(list []domain.Article, ids map[string]struct{}) []domain.Article {
	out := make([]domain.Article, 0, len(list))
	for _, a := range list {
		if _, ok := ids[a.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}

func embedsAny(list []domain.Article, ids map[string]struct{}) bool {
	for _, a := range list {
		if _, ok := ids[a.ID]; ok {
			return true
		}
	}
	return false
}

func articleIDSet(list []domain.Article) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, a := range list {
		set[a.ID] = struct{}{}
	}
	return set
}

func intersects(ids []string, set map[string]struct{}) bool {
	for _, id := range ids {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func derefOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func intPtr(v int) *int {
	return &v
}
