package httpsource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"corpusview/internal/validation"
)

const bundleJSON = `{
  "articles": [{"id": "a1", "title": "T", "event_id": null, "date": "2022-01-01"}],
  "events": [{"id": "e1", "name": "E", "date": "2022-01-01"}],
  "topics": [{"id": "t1", "name": "Topic"}],
  "articles_topics": [{"article_id": "a1", "topic_id": "t1"}],
  "entities": [{"id": "n1", "name": "N"}],
  "articles_entities": [{"article_id": "a1", "entity_id": "n1"}]
}`

func TestFetchSendsTokenAndDecodes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(bundleJSON))
	}))
	defer srv.Close()

	b, err := NewClient(srv.URL, "secret", 0).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(b.ArticlesEntities) != 1 {
		t.Fatalf("unexpected bundle: %+v", b)
	}

	if _, err := NewClient(srv.URL, "", 0).Fetch(context.Background()); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestFetchPropagatesValidation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Replace(bundleJSON, `"date": "2022-01-01"}]`, `"date": 1}]`, 1)))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 0).Fetch(context.Background())
	if !errors.Is(err, validation.ErrInvalidBundle) {
		t.Fatalf("expected invalid bundle, got %v", err)
	}
}

func TestFetchRequiresEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("", "", 0).Fetch(context.Background()); err == nil {
		t.Fatalf("expected missing url error")
	}
}
