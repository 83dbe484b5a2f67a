package config

import (
	"fmt"
	"time"

	"corpusview/internal/filter"
)

// ViewConfig seeds the criteria of a fresh session. Unset thresholds keep
// the session defaults.
type ViewConfig struct {
	SelectedTopics   []string          `yaml:"selectedTopics"`
	SelectedEntities []string          `yaml:"selectedEntities"`
	Articles         ArticleViewConfig `yaml:"articles"`
	Events           EventViewConfig   `yaml:"events"`
	Topics           TopicViewConfig   `yaml:"topics"`
	Entities         EntityViewConfig  `yaml:"entities"`
}

type ArticleViewConfig struct {
	Query             string         `yaml:"query"`
	OrderBy           *OrderByConfig `yaml:"orderBy"`
	MinLinkedEntities *int           `yaml:"minLinkedEntities"`
	Date              *DateConfig    `yaml:"date"`
}

type EventViewConfig struct {
	Query             string         `yaml:"query"`
	OrderBy           *OrderByConfig `yaml:"orderBy"`
	MinLinkedArticles *int           `yaml:"minLinkedArticles"`
	Date              *DateConfig    `yaml:"date"`
}

type TopicViewConfig struct {
	Query                string         `yaml:"query"`
	OrderBy              *OrderByConfig `yaml:"orderBy"`
	MinLinkedArticles    *int           `yaml:"minLinkedArticles"`
	MaxDisplayedArticles *int           `yaml:"maxDisplayedArticles"`
}

type EntityViewConfig struct {
	OrderBy *OrderByConfig `yaml:"orderBy"`
}

// OrderByConfig names a record property; type "date" compares parsed dates.
type OrderByConfig struct {
	Prop string `yaml:"prop"`
	Desc bool   `yaml:"desc"`
	Type string `yaml:"type"`
}

// DateConfig is a date filter; before/after use Value, between uses From and To.
type DateConfig struct {
	Mode  string `yaml:"mode"`
	Value string `yaml:"value"`
	From  string `yaml:"from"`
	To    string `yaml:"to"`
}

// Criteria converts the view section into engine criteria.
func (v ViewConfig) Criteria() (filter.Criteria, error) {
	cr := filter.DefaultCriteria()
	cr.SelectedTopics = v.SelectedTopics
	cr.SelectedEntities = v.SelectedEntities

	var err error

	cr.Articles.Query = v.Articles.Query
	cr.Articles.Order = v.Articles.OrderBy.orderBy()
	if v.Articles.MinLinkedEntities != nil {
		cr.Articles.MinLinkedEntities = v.Articles.MinLinkedEntities
	}
	if cr.Articles.Date, err = v.Articles.Date.dateFilter(); err != nil {
		return filter.Criteria{}, fmt.Errorf("view.articles.date: %w", err)
	}

	cr.Events.Query = v.Events.Query
	cr.Events.Order = v.Events.OrderBy.orderBy()
	if v.Events.MinLinkedArticles != nil {
		cr.Events.MinLinkedArticles = v.Events.MinLinkedArticles
	}
	if cr.Events.Date, err = v.Events.Date.dateFilter(); err != nil {
		return filter.Criteria{}, fmt.Errorf("view.events.date: %w", err)
	}

	cr.Topics.Query = v.Topics.Query
	cr.Topics.Order = v.Topics.OrderBy.orderBy()
	if v.Topics.MinLinkedArticles != nil {
		cr.Topics.MinLinkedArticles = v.Topics.MinLinkedArticles
	}
	if v.Topics.MaxDisplayedArticles != nil {
		cr.Topics.MaxDisplayedArticles = v.Topics.MaxDisplayedArticles
	}

	cr.Entities.Order = v.Entities.OrderBy.orderBy()

	return cr, nil
}

func (o *OrderByConfig) orderBy() *filter.OrderBy {
	if o == nil || o.Prop == "" {
		return nil
	}
	return &filter.OrderBy{Prop: o.Prop, Desc: o.Desc, Type: o.Type}
}

func (d *DateConfig) dateFilter() (*filter.DateFilter, error) {
	if d == nil || d.Mode == "" {
		return nil, nil
	}

	f := &filter.DateFilter{Mode: filter.DateMode(d.Mode)}
	switch f.Mode {
	case filter.DateBefore, filter.DateAfter:
		v, err := optionalDate(d.Value)
		if err != nil {
			return nil, err
		}
		f.Value = v
	case filter.DateBetween:
		from, err := optionalDate(d.From)
		if err != nil {
			return nil, err
		}
		to, err := optionalDate(d.To)
		if err != nil {
			return nil, err
		}
		f.Range = [2]*time.Time{from, to}
	default:
		return nil, fmt.Errorf("unknown date mode %q", d.Mode)
	}
	return f, nil
}

func optionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, ok := filter.ParseDate(value)
	if !ok {
		return nil, fmt.Errorf("invalid date %q", value)
	}
	return &t, nil
}
