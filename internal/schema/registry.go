// Package schema resolves the schema section of a document: a name-indexed
// registry, the set of schemas a tag needs, placeholder recovery for dangling
// references, allOf flattening and TypeScript type synthesis.
package schema

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/swagger2hooks/internal/spec"
)

// Kind classifies a registry entry for declaration purposes.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindEnum
	KindAlias
	KindReference
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindEnum:
		return "enum"
	case KindAlias:
		return "alias"
	case KindReference:
		return "reference"
	case KindPlaceholder:
		return "placeholder"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindOf reports how a schema node is declared.
func KindOf(s *spec.SchemaOrRef) Kind {
	if s == nil {
		return KindAlias
	}
	if s.Ref != nil {
		return KindReference
	}
	sc := s.Schema
	switch {
	case sc == nil:
		return KindAlias
	case sc.Placeholder:
		return KindPlaceholder
	case len(sc.Enum) > 0:
		return KindEnum
	case len(sc.AllOf) > 0:
		return KindObject
	case sc.Type == "array" || (sc.Type == "" && sc.Items != nil):
		return KindArray
	case len(sc.Properties) > 0:
		return KindObject
	case sc.Type == "object" && sc.AdditionalProperties == nil && len(sc.AnyOf) == 0 && len(sc.OneOf) == 0:
		return KindObject
	}
	return KindAlias
}

// GapError reports a schema that could not be resolved. Dangling references
// are recovered with a placeholder and only logged; a cycle is returned.
type GapError struct {
	Schema string
	// Path is the resolution path that led to Schema, outermost first.
	Path  []string
	Cycle bool
}

func (e *GapError) Error() string {
	if e.Cycle {
		return fmt.Sprintf("schema %q: cyclic composition %s", e.Schema, strings.Join(e.Path, " -> "))
	}
	return fmt.Sprintf("schema %q: reference resolves to nothing", e.Schema)
}

// Registry is a name-indexed store of schemas. It is append-only; the only
// mutation after construction is idempotent placeholder insertion, which is
// safe to call from several goroutines.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*spec.SchemaOrRef
	log     *slog.Logger
}

// BuildRegistry indexes the schema section of doc.
func BuildRegistry(doc *spec.Document) *Registry {
	r := NewRegistry(doc.Logger())
	for name, s := range doc.Schemas {
		if s != nil && name != "" {
			r.schemas[name] = s
		}
	}
	return r
}

// NewRegistry returns an empty registry. A nil logger discards output.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{schemas: make(map[string]*spec.SchemaOrRef), log: logger}
}

// Lookup returns the schema registered under name.
func (r *Registry) Lookup(name string) (*spec.SchemaOrRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	return s, ok
}

// Insert registers s under name unless the name is taken. It reports whether
// s was stored.
func (r *Registry) Insert(name string, s *spec.SchemaOrRef) bool {
	if name == "" || s == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemas[name]; ok {
		return false
	}
	r.schemas[name] = s
	return true
}

// EnsurePlaceholder inserts an empty object schema for name when nothing is
// registered under it. Inserting the same name twice is a no-op.
func (r *Registry) EnsurePlaceholder(name string) bool {
	inserted := r.Insert(name, &spec.SchemaOrRef{Schema: &spec.Schema{
		Name:        name,
		Type:        "object",
		Placeholder: true,
	}})
	if inserted {
		r.log.Warn("synthesized placeholder schema", "schema", name, "error", &GapError{Schema: name})
	}
	return inserted
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}
