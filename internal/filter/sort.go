package filter

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"corpusview/internal/domain"
)

// SortDate tags an OrderBy whose property holds a date string.
const SortDate = "date"

// OrderBy names the property to sort on.
type OrderBy struct {
	Prop string
	Desc bool
	Type string
}

type keyKind int

const (
	keyNone keyKind = iota
	keyNumber
	keyString
	keyDate
)

type sortKey struct {
	kind keyKind
	num  int
	str  string
	date time.Time
	ok   bool
}

// ValueFunc extracts a sortable property value: a string, an int, or a
// string slice/list length already reduced to an int.
type ValueFunc[T any] func(item T, prop string) any

// Sort orders items in place, stably, according to order.
func Sort[T any](items []T, order OrderBy, value ValueFunc[T]) {
	type keyed struct {
		item T
		key  sortKey
	}
	pairs := make([]keyed, len(items))
	for i, item := range items {
		pairs[i] = keyed{item: item, key: buildKey(value(item, order.Prop), order.Type)}
	}

	slices.SortStableFunc(pairs, func(a, b keyed) int {
		return compareKeys(a.key, b.key, order.Desc)
	})

	for i := range pairs {
		items[i] = pairs[i].item
	}
}

func buildKey(v any, typ string) sortKey {
	if typ == SortDate {
		s, _ := v.(string)
		d, ok := ParseDate(s)
		return sortKey{kind: keyDate, date: d, ok: ok}
	}
	switch x := v.(type) {
	case int:
		return sortKey{kind: keyNumber, num: x}
	case string:
		return sortKey{kind: keyString, str: Normalize(x)}
	default:
		return sortKey{kind: keyNone}
	}
}

func compareKeys(a, b sortKey, desc bool) int {
	if a.kind != b.kind {
		return 0
	}
	if a.kind == keyDate {
		// invalid dates go last in both directions
		switch {
		case !a.ok && !b.ok:
			return 0
		case !a.ok:
			return 1
		case !b.ok:
			return -1
		}
	}

	var c int
	switch a.kind {
	case keyNumber:
		c = cmp.Compare(a.num, b.num)
	case keyString:
		c = strings.Compare(a.str, b.str)
	case keyDate:
		c = a.date.Compare(b.date)
	}
	if desc {
		return -c
	}
	return c
}

// ArticleValue exposes the sortable properties of an article.
func ArticleValue(a domain.Article, prop string) any {
	switch prop {
	case "id":
		return a.ID
	case "title":
		return a.Title
	case "event_id":
		return a.EventID
	case "date":
		return a.Date
	case "url":
		return a.URL
	case "linkedTopics":
		return len(a.LinkedTopics)
	case "linkedEntities":
		return len(a.LinkedEntities)
	}
	return nil
}

// EventValue exposes the sortable properties of an event.
func EventValue(e domain.Event, prop string) any {
	switch prop {
	case "id":
		return e.ID
	case "name":
		return e.Name
	case "date":
		return e.Date
	case "linkedArticles":
		return len(e.LinkedArticles)
	}
	return nil
}

// TopicValue exposes the sortable properties of a topic.
func TopicValue(t domain.Topic, prop string) any {
	switch prop {
	case "id":
		return t.ID
	case "name":
		return t.Name
	case "color":
		return t.Color
	case "topwords":
		return len(t.TopWords)
	case "linkedArticles":
		return len(t.LinkedArticles)
	}
	return nil
}

// EntityValue exposes the sortable properties of an entity.
func EntityValue(e domain.Entity, prop string) any {
	switch prop {
	case "id":
		return e.ID
	case "name":
		return e.Name
	case "linkedArticles":
		return len(e.LinkedArticles)
	}
	return nil
}
