// Package validation checks the shape of an uploaded bundle before it is joined.
package validation

import (
	"errors"
	"fmt"

	"corpusview/internal/domain"
)

// ErrInvalidBundle is wrapped by every validation failure.
var ErrInvalidBundle = errors.New("invalid bundle")

// Error pinpoints the first malformed part of a bundle.
type Error struct {
	Record string
	Field  string
	Index  int
}

func (e *Error) Error() string {
	if e.Field == "" && e.Index < 0 {
		return fmt.Sprintf("%s: must be a non-empty array", e.Record)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: format error (%d)", e.Record, e.Index)
	}
	return fmt.Sprintf("%s.%s: format error (%d)", e.Record, e.Field, e.Index)
}

func (e *Error) Unwrap() error {
	return ErrInvalidBundle
}

type fieldRule struct {
	name     string
	check    func(v any, present bool) bool
	optional bool
}

type collectionRule struct {
	key    string
	record string
	fields []fieldRule
}

var rules = []collectionRule{
	{key: "articles", record: "article", fields: []fieldRule{
		{name: "id", check: isString},
		{name: "title", check: isString},
		{name: "event_id", check: isStringOrNull},
		{name: "date", check: isString},
		{name: "url", check: isString, optional: true},
	}},
	{key: "events", record: "event", fields: []fieldRule{
		{name: "id", check: isString},
		{name: "name", check: isString},
		{name: "date", check: isString},
	}},
	{key: "topics", record: "topic", fields: []fieldRule{
		{name: "id", check: isString},
		{name: "name", check: isString},
		{name: "color", check: isString, optional: true},
		{name: "topwords", check: isStringList, optional: true},
	}},
	{key: "articles_topics", record: "article_topic", fields: []fieldRule{
		{name: "article_id", check: isString},
		{name: "topic_id", check: isString},
	}},
	{key: "entities", record: "entity", fields: []fieldRule{
		{name: "id", check: isString},
		{name: "name", check: isString},
	}},
	{key: "articles_entities", record: "article_entity", fields: []fieldRule{
		{name: "article_id", check: isString},
		{name: "entity_id", check: isString},
	}},
}

// Validate checks a generically decoded JSON bundle. It stops at the first
// malformed record and reports it by record name, field and index.
func Validate(raw map[string]any) error {
	if raw == nil {
		return &Error{Record: "articles", Index: -1}
	}
	for _, rule := range rules {
		list, ok := raw[rule.key].([]any)
		if !ok || len(list) == 0 {
			return &Error{Record: rule.key, Index: -1}
		}
		for i, item := range list {
			obj, ok := item.(map[string]any)
			if !ok {
				return &Error{Record: rule.record, Index: i}
			}
			for _, f := range rule.fields {
				v, present := obj[f.name]
				if f.optional && (!present || v == nil) {
					continue
				}
				if !f.check(v, present) {
					return &Error{Record: rule.record, Field: f.name, Index: i}
				}
			}
		}
	}
	return nil
}

// ValidateBundle checks an already typed bundle, where only emptiness can be wrong.
func ValidateBundle(b domain.Bundle) error {
	sizes := []struct {
		key string
		n   int
	}{
		{"articles", len(b.Articles)},
		{"events", len(b.Events)},
		{"topics", len(b.Topics)},
		{"articles_topics", len(b.ArticlesTopics)},
		{"entities", len(b.Entities)},
		{"articles_entities", len(b.ArticlesEntities)},
	}
	for _, s := range sizes {
		if s.n == 0 {
			return &Error{Record: s.key, Index: -1}
		}
	}
	return nil
}

func isString(v any, present bool) bool {
	if !present {
		return false
	}
	_, ok := v.(string)
	return ok
}

func isStringOrNull(v any, present bool) bool {
	return present && (v == nil || isString(v, true))
}

func isStringList(v any, present bool) bool {
	list, ok := v.([]any)
	if !present || !ok {
		return false
	}
	for _, item := range list {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}
