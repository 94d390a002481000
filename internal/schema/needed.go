package schema

import (
	"log/slog"
	"sort"

	"github.com/mark3labs/swagger2hooks/internal/spec"
)

// CollectNeeded returns the sorted names of every schema reachable from ops:
// response bodies, request bodies and parameters, followed through arrays,
// properties, additionalProperties and composition branches. The walk stops
// at each reference and continues with the referenced registry entry, so the
// result is closed under reference.
//
// Names missing from the registry are inserted as placeholders.
func CollectNeeded(ops []spec.Operation, reg *Registry, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &neededWalk{reg: reg, seen: make(map[string]bool)}
	for _, op := range ops {
		for _, resp := range op.Responses {
			for _, m := range resp.Content {
				w.walk(m.Schema)
			}
		}
		if op.RequestBody != nil {
			for _, m := range op.RequestBody.Content {
				w.walk(m.Schema)
			}
		}
		for _, p := range op.Parameters {
			w.walk(p.Schema)
		}
	}
	// Follow references out of registry entries until nothing new appears.
	for len(w.queue) > 0 {
		name := w.queue[0]
		w.queue = w.queue[1:]
		s, ok := reg.Lookup(name)
		if !ok {
			reg.EnsurePlaceholder(name)
			continue
		}
		w.walk(s)
	}
	logger.Debug("collected needed schemas", "count", len(w.seen))
	out := make([]string, 0, len(w.seen))
	for name := range w.seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type neededWalk struct {
	reg   *Registry
	seen  map[string]bool
	queue []string
}

func (w *neededWalk) walk(s *spec.SchemaOrRef) {
	if s == nil {
		return
	}
	if name := s.RefName(); name != "" {
		if !w.seen[name] {
			w.seen[name] = true
			w.queue = append(w.queue, name)
		}
		return
	}
	sc := s.Schema
	if sc == nil {
		return
	}
	w.walk(sc.Items)
	for _, name := range sc.PropertyNames() {
		w.walk(sc.Properties[name])
	}
	w.walk(sc.AdditionalProperties)
	for _, group := range [][]*spec.SchemaOrRef{sc.AllOf, sc.AnyOf, sc.OneOf} {
		for _, b := range group {
			w.walk(b)
		}
	}
}
