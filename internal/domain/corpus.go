package domain

import "strings"

const (
	// NoTopicID is the reserved topic id meaning "unassigned".
	NoTopicID = "title_model_-1"

	topicIDPrefix = "title_model_"
)

// Article is a document extracted by the text-mining pipeline.
// EventID is empty when the article has no parent event.
type Article struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	EventID        string   `json:"event_id"`
	Date           string   `json:"date"`
	URL            string   `json:"url"`
	LinkedTopics   []string `json:"linkedTopics,omitempty"`
	LinkedEntities []Entity `json:"linkedEntities,omitempty"`
}

// Event groups articles covering the same story.
type Event struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Date           string    `json:"date"`
	LinkedArticles []Article `json:"linkedArticles,omitempty"`
}

// Topic is a cluster produced by the topic model.
type Topic struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Color          string    `json:"color,omitempty"`
	TopWords       []string  `json:"topwords,omitempty"`
	LinkedArticles []Article `json:"linkedArticles,omitempty"`
}

// Entity is a named entity; it references articles by id only.
type Entity struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	LinkedArticles []string `json:"linkedArticles,omitempty"`
}

// ArticleTopic links an article to a topic.
type ArticleTopic struct {
	ArticleID string `json:"article_id"`
	TopicID   string `json:"topic_id"`
}

// ArticleEntity links an article to an entity.
type ArticleEntity struct {
	ArticleID string `json:"article_id"`
	EntityID  string `json:"entity_id"`
}

// Bundle is one normalized snapshot of the corpus.
type Bundle struct {
	Articles         []Article       `json:"articles"`
	Events           []Event         `json:"events"`
	Topics           []Topic         `json:"topics"`
	ArticlesTopics   []ArticleTopic  `json:"articles_topics"`
	Entities         []Entity        `json:"entities"`
	ArticlesEntities []ArticleEntity `json:"articles_entities"`
}

// Collections holds the denormalized, cross-referenced corpus.
type Collections struct {
	Articles []Article `json:"articles"`
	Events   []Event   `json:"events"`
	Topics   []Topic   `json:"topics"`
	Entities []Entity  `json:"entities"`
}

// TopicLabel returns the display number of a topic id, e.g. "12" for
// "title_model_12".
func TopicLabel(id string) string {
	return strings.TrimPrefix(id, topicIDPrefix)
}

// Clone copies the record and its id list.
func (e Entity) Clone() Entity {
	out := e
	if e.LinkedArticles != nil {
		out.LinkedArticles = append([]string(nil), e.LinkedArticles...)
	}
	return out
}

// HasTopic reports whether the article links to the topic id.
func (a Article) HasTopic(id string) bool {
	for _, t := range a.LinkedTopics {
		if t == id {
			return true
		}
	}
	return false
}
