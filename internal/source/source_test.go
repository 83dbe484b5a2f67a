package source

import (
	"context"
	"reflect"
	"testing"

	"corpusview/internal/domain"
)

type namedSource string

func (n namedSource) Name() string { return string(n) }

func (n namedSource) Fetch(context.Context) (domain.Bundle, error) {
	return domain.Bundle{}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(namedSource("sql"))
	r.Register(namedSource("file"))
	r.Register(nil)

	if got := r.Names(); !reflect.DeepEqual(got, []string{"file", "sql"}) {
		t.Fatalf("unexpected names: %v", got)
	}
	src, err := r.Resolve("file")
	if err != nil || src.Name() != "file" {
		t.Fatalf("unexpected resolve result: %v, %v", src, err)
	}
	if _, err := r.Resolve("ftp"); err == nil {
		t.Fatalf("expected unknown source error")
	}
}

func TestZeroRegistryAcceptsSources(t *testing.T) {
	t.Parallel()

	var r Registry
	r.Register(namedSource("http"))
	if _, err := r.Resolve("http"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}
