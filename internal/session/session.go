// Package session owns the interactive state of one browsing session: the
// joined collections, the user criteria and the derived visible subsets.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"corpusview/internal/domain"
	"corpusview/internal/filter"
	"corpusview/internal/ports"
	"corpusview/internal/validation"
)

var (
	// ErrTopicNotFound is returned when an edit targets an unknown topic id.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrSentinelTopic is returned when deleting the reserved no-topic entry.
	ErrSentinelTopic = errors.New("the no-topic entry cannot be deleted")
)

// Pair exposes a collection together with its derived visible subset.
type Pair[T any] struct {
	Full    []T
	Visible []T
}

// Effective is Visible when something is filtered, Full otherwise.
func (p Pair[T]) Effective() []T {
	return filter.Effective(p.Visible, p.Full)
}

// Options tune a Store.
type Options struct {
	NoTopicID string
	Logger    *slog.Logger
}

// Store is the session-scoped state object. Every setter recomputes the
// visible subsets from a fresh snapshot; nothing is mutated in place.
type Store struct {
	joiner    ports.Joiner
	noTopicID string
	logger    *slog.Logger

	mu          sync.RWMutex
	collections domain.Collections
	criteria    filter.Criteria
	derived     filter.Result
}

// New builds an empty store with default criteria.
func New(joiner ports.Joiner, opts Options) *Store {
	if opts.NoTopicID == "" {
		opts.NoTopicID = domain.NoTopicID
	}
	s := &Store{
		joiner:    joiner,
		noTopicID: opts.NoTopicID,
		logger:    opts.Logger,
		criteria:  filter.DefaultCriteria(),
	}
	s.derived = filter.Derive(s.collections, s.criteria)
	return s
}

// Load validates the bundle, joins it and replaces all four collections.
// On any error the previous collections are left untouched.
func (s *Store) Load(ctx context.Context, b domain.Bundle) error {
	if err := validation.ValidateBundle(b); err != nil {
		return err
	}
	if s.joiner == nil {
		return fmt.Errorf("joiner is not configured")
	}

	joined, err := s.joiner.Load(ctx, b)
	if err != nil {
		return fmt.Errorf("join bundle: %w", err)
	}

	s.mu.Lock()
	s.collections = joined
	s.recompute()
	s.mu.Unlock()

	s.debug("collections replaced",
		"articles", len(joined.Articles),
		"events", len(joined.Events),
		"topics", len(joined.Topics),
		"entities", len(joined.Entities))
	return nil
}

// Replace installs already joined collections.
func (s *Store) Replace(c domain.Collections) {
	s.update(func() { s.collections = c })
}

// Collections returns the current full collections.
func (s *Store) Collections() domain.Collections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collections
}

// Criteria returns a copy of the current criteria.
func (s *Store) Criteria() filter.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// SetCriteria swaps every criterion at once.
func (s *Store) SetCriteria(cr filter.Criteria) {
	s.update(func() { s.criteria = cr })
}

func (s *Store) Articles() Pair[domain.Article] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Pair[domain.Article]{Full: s.collections.Articles, Visible: s.derived.Visible.Articles}
}

func (s *Store) Events() Pair[domain.Event] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Pair[domain.Event]{Full: s.collections.Events, Visible: s.derived.Visible.Events}
}

func (s *Store) Topics() Pair[domain.Topic] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Pair[domain.Topic]{Full: s.collections.Topics, Visible: s.derived.Visible.Topics}
}

func (s *Store) Entities() Pair[domain.Entity] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Pair[domain.Entity]{Full: s.collections.Entities, Visible: s.derived.Visible.Entities}
}

// Bounds returns the current slider limits.
func (s *Store) Bounds() filter.Bounds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.derived.Bounds
}

// snapshot reads collections and derived state under one lock. Both are
// replaced wholesale on every change, so the returned values stay consistent.
func (s *Store) snapshot() (domain.Collections, filter.Result) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collections, s.derived
}

// articles

func (s *Store) SetArticlesQuery(q string) {
	s.update(func() { s.criteria.Articles.Query = q })
}

func (s *Store) SetArticlesDateFilter(f *filter.DateFilter) {
	s.update(func() { s.criteria.Articles.Date = f })
}

func (s *Store) SetArticlesOrderBy(o *filter.OrderBy) {
	s.update(func() { s.criteria.Articles.Order = o })
}

func (s *Store) SetArticlesMinLinkedEntities(n *int) {
	s.update(func() { s.criteria.Articles.MinLinkedEntities = n })
}

// entities

func (s *Store) SetSelectedEntities(ids []string) {
	s.update(func() { s.criteria.SelectedEntities = slices.Clone(ids) })
}

func (s *Store) SetEntitiesOrderBy(o *filter.OrderBy) {
	s.update(func() { s.criteria.Entities.Order = o })
}

// events

func (s *Store) SetEventsQuery(q string) {
	s.update(func() { s.criteria.Events.Query = q })
}

func (s *Store) SetEventsDateFilter(f *filter.DateFilter) {
	s.update(func() { s.criteria.Events.Date = f })
}

func (s *Store) SetEventsOrderBy(o *filter.OrderBy) {
	s.update(func() { s.criteria.Events.Order = o })
}

func (s *Store) SetEventsMinLinkedArticles(n *int) {
	s.update(func() { s.criteria.Events.MinLinkedArticles = n })
}

// topics

func (s *Store) SetSelectedTopics(ids []string) {
	s.update(func() { s.criteria.SelectedTopics = slices.Clone(ids) })
}

func (s *Store) SetTopicsQuery(q string) {
	s.update(func() { s.criteria.Topics.Query = q })
}

func (s *Store) SetTopicsOrderBy(o *filter.OrderBy) {
	s.update(func() { s.criteria.Topics.Order = o })
}

func (s *Store) SetTopicsMinLinkedArticles(n *int) {
	s.update(func() { s.criteria.Topics.MinLinkedArticles = n })
}

func (s *Store) SetTopicsMaxDisplayedArticles(n *int) {
	s.update(func() { s.criteria.Topics.MaxDisplayedArticles = n })
}

// TopicPreview returns the topic's articles capped by the display limit.
func (s *Store) TopicPreview(t domain.Topic) []domain.Article {
	s.mu.RLock()
	limit := s.criteria.Topics.MaxDisplayedArticles
	s.mu.RUnlock()
	return filter.Preview(t, limit)
}

// SetTopicColor replaces the colour of one topic.
func (s *Store) SetTopicColor(id, color string) error {
	return s.editTopic(id, func(t *domain.Topic) { t.Color = color })
}

// RenameTopic replaces the name of one topic.
func (s *Store) RenameTopic(id, name string) error {
	return s.editTopic(id, func(t *domain.Topic) { t.Name = name })
}

// RandomizeTopicColors gives every topic a random colour; the no-topic entry
// becomes transparent.
func (s *Store) RandomizeTopicColors(r *rand.Rand) {
	if r == nil {
		r = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	s.update(func() {
		topics := make([]domain.Topic, len(s.collections.Topics))
		for i, t := range s.collections.Topics {
			topics[i] = t
			if t.ID == s.noTopicID {
				topics[i].Color = "transparent"
				continue
			}
			topics[i].Color = fmt.Sprintf("#%06x", r.IntN(0x1000000))
		}
		s.collections.Topics = topics
	})
}

// DeleteTopic removes a topic and reassigns its articles to the no-topic id.
func (s *Store) DeleteTopic(id string) error {
	if id == s.noTopicID {
		return ErrSentinelTopic
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.collections.Topics, func(t domain.Topic) bool { return t.ID == id })
	if idx < 0 {
		return fmt.Errorf("delete %s: %w", id, ErrTopicNotFound)
	}

	articles := make([]domain.Article, len(s.collections.Articles))
	var moved []domain.Article
	for i, a := range s.collections.Articles {
		articles[i] = a
		if !a.HasTopic(id) {
			continue
		}
		articles[i].LinkedTopics = reassign(a.LinkedTopics, id, s.noTopicID)
		moved = append(moved, articles[i])
	}

	topics := make([]domain.Topic, 0, len(s.collections.Topics)-1)
	for i, t := range s.collections.Topics {
		if i == idx {
			continue
		}
		if t.ID == s.noTopicID && len(moved) > 0 {
			t.LinkedArticles = mergeArticles(t.LinkedArticles, moved)
		}
		topics = append(topics, t)
	}

	s.collections.Articles = articles
	s.collections.Topics = topics
	s.criteria.SelectedTopics = slices.DeleteFunc(slices.Clone(s.criteria.SelectedTopics), func(t string) bool { return t == id })
	s.recompute()

	s.debug("topic deleted", "topic", id, "reassigned", len(moved))
	return nil
}

func (s *Store) editTopic(id string, edit func(*domain.Topic)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.collections.Topics, func(t domain.Topic) bool { return t.ID == id })
	if idx < 0 {
		return fmt.Errorf("edit %s: %w", id, ErrTopicNotFound)
	}

	topics := slices.Clone(s.collections.Topics)
	edited := topics[idx]
	edit(&edited)
	topics[idx] = edited
	s.collections.Topics = topics
	s.recompute()
	return nil
}

func (s *Store) update(mutate func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate()
	s.recompute()
}

// recompute must run with mu held for writing.
func (s *Store) recompute() {
	s.derived = filter.Derive(s.collections, s.criteria)
}

func reassign(ids []string, from, to string) []string {
	out := make([]string, 0, len(ids))
	hasTarget := slices.Contains(ids, to)
	for _, id := range ids {
		if id == from {
			if hasTarget {
				continue
			}
			id = to
			hasTarget = true
		}
		out = append(out, id)
	}
	return out
}

func mergeArticles(existing, added []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(existing)+len(added))
	seen := make(map[string]int, len(existing)+len(added))
	for _, a := range existing {
		seen[a.ID] = len(out)
		out = append(out, a)
	}
	for _, a := range added {
		if i, ok := seen[a.ID]; ok {
			out[i] = a
			continue
		}
		seen[a.ID] = len(out)
		out = append(out, a)
	}
	return out
}

func (s *Store) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
