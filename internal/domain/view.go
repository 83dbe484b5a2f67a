package domain

import "time"

// ViewSet is the exported form of one collection: its visible subset and
// the sizes needed to interpret an empty one.
type ViewSet[T any] struct {
	FullCount      int `json:"full_count"`
	EffectiveCount int `json:"effective_count"`
	Visible        []T `json:"visible"`
}

// ViewBounds mirrors the slider limits of the session.
type ViewBounds struct {
	ArticlesMaxLinkedEntities int `json:"articles_max_linked_entities"`
	EventsMaxLinkedArticles   int `json:"events_max_linked_articles"`
	TopicsMaxLinkedArticles   int `json:"topics_max_linked_articles"`
}

// View is a point-in-time export of a browsing session.
type View struct {
	LoadID         string           `json:"load_id"`
	Source         string           `json:"source"`
	GeneratedAt    time.Time        `json:"generated_at"`
	Articles       ViewSet[Article] `json:"articles"`
	Events         ViewSet[Event]   `json:"events"`
	Topics         ViewSet[Topic]   `json:"topics"`
	Entities       ViewSet[Entity]  `json:"entities"`
	Bounds         ViewBounds       `json:"bounds"`
	FirstArticleAt *time.Time       `json:"first_article_at,omitempty"`
	LastArticleAt  *time.Time       `json:"last_article_at,omitempty"`
}
