package markup

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"corpusview/internal/domain"
	"corpusview/internal/ports"
)

// Cleaner strips HTML markup and entities that scraped titles often carry.
type Cleaner struct {
	logger *slog.Logger
}

var _ ports.BundleCleaner = (*Cleaner)(nil)

// NewCleaner builds a cleaner; the logger may be nil.
func NewCleaner(log *slog.Logger) *Cleaner {
	return &Cleaner{logger: log}
}

// Clean returns a copy of the bundle with plain-text titles and names.
// Ids, dates and links are left untouched.
func (c *Cleaner) Clean(b domain.Bundle) domain.Bundle {
	out := b
	changed := 0

	out.Articles = make([]domain.Article, len(b.Articles))
	for i, a := range b.Articles {
		a.Title = c.text(a.Title, &changed)
		out.Articles[i] = a
	}
	out.Events = make([]domain.Event, len(b.Events))
	for i, e := range b.Events {
		e.Name = c.text(e.Name, &changed)
		out.Events[i] = e
	}
	out.Topics = make([]domain.Topic, len(b.Topics))
	for i, t := range b.Topics {
		t.Name = c.text(t.Name, &changed)
		out.Topics[i] = t
	}
	out.Entities = make([]domain.Entity, len(b.Entities))
	for i, e := range b.Entities {
		e.Name = c.text(e.Name, &changed)
		out.Entities[i] = e
	}

	if changed > 0 && c.logger != nil {
		c.logger.Debug("markup stripped", "fields", changed)
	}
	return out
}

// Text converts an HTML fragment into collapsed plain text.
func Text(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func (c *Cleaner) text(value string, changed *int) string {
	cleaned := Text(value)
	if cleaned != value {
		*changed++
	}
	return cleaned
}
