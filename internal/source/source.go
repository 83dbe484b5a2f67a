package source

import (
	"fmt"
	"sort"

	"corpusview/internal/ports"
)

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	sources map[string]ports.BundleSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.BundleSource{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src ports.BundleSource) {
	if src == nil {
		return
	}
	if r.sources == nil {
		r.sources = map[string]ports.BundleSource{}
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by name or an error listing the known ones.
func (r *Registry) Resolve(name string) (ports.BundleSource, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("bundle source %q is not registered (known: %v)", name, r.Names())
}

// Names lists registered sources in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
