package session

import (
	"time"

	"corpusview/internal/domain"
	"corpusview/internal/filter"
)

// Count reports the size of a collection and of what is currently shown.
type Count struct {
	Full      int `json:"full"`
	Effective int `json:"effective"`
}

// Summary is the load panel overview of a session.
type Summary struct {
	Articles       Count      `json:"articles"`
	Events         Count      `json:"events"`
	Topics         Count      `json:"topics"`
	Entities       Count      `json:"entities"`
	FirstArticleAt *time.Time `json:"first_article_at,omitempty"`
	LastArticleAt  *time.Time `json:"last_article_at,omitempty"`
}

// Summary computes collection counts and the article date range.
// Unparseable dates are skipped.
func (s *Store) Summary() Summary {
	c, derived := s.snapshot()

	out := Summary{
		Articles: count(Pair[domain.Article]{Full: c.Articles, Visible: derived.Visible.Articles}),
		Events:   count(Pair[domain.Event]{Full: c.Events, Visible: derived.Visible.Events}),
		Topics:   count(Pair[domain.Topic]{Full: c.Topics, Visible: derived.Visible.Topics}),
		Entities: count(Pair[domain.Entity]{Full: c.Entities, Visible: derived.Visible.Entities}),
	}
	out.FirstArticleAt, out.LastArticleAt = dateRange(c.Articles)
	return out
}

func count[T any](p Pair[T]) Count {
	return Count{Full: len(p.Full), Effective: len(p.Effective())}
}

func dateRange(articles []domain.Article) (*time.Time, *time.Time) {
	var first, last *time.Time
	for _, a := range articles {
		d, ok := filter.ParseDate(a.Date)
		if !ok {
			continue
		}
		if first == nil || d.Before(*first) {
			v := d
			first = &v
		}
		if last == nil || d.After(*last) {
			v := d
			last = &v
		}
	}
	return first, last
}
