package schema

import (
	"slices"

	"github.com/mark3labs/swagger2hooks/internal/spec"
)

// Resolver flattens allOf composition and follows alias references. A
// Resolver keeps the current resolution path, so re-entering it from the
// visit callback still detects cycles. It is not safe for concurrent use.
type Resolver struct {
	reg   *Registry
	visit func(name string) error
	path  []string
	done  map[string]*spec.Schema
}

// NewResolver returns a Resolver over reg. visit, when non-nil, is called
// with the name of every referenced allOf branch before it is merged, so the
// caller can declare the branch ahead of the composite.
func NewResolver(reg *Registry, visit func(name string) error) *Resolver {
	return &Resolver{reg: reg, visit: visit, done: make(map[string]*spec.Schema)}
}

// Flatten resolves the named schema with a fresh Resolver.
func Flatten(name string, reg *Registry, visit func(name string) error) (*spec.Schema, error) {
	return NewResolver(reg, visit).Flatten(name)
}

// Flatten returns the named schema with allOf branches merged into a single
// property set. Later branches override earlier ones, and the schema's own
// properties override every branch. A name missing from the registry yields
// a placeholder. Revisiting a name on the current path is a *GapError.
func (r *Resolver) Flatten(name string) (*spec.Schema, error) {
	if slices.Contains(r.path, name) {
		cycle := append(slices.Clone(r.path), name)
		return nil, &GapError{Schema: name, Path: cycle, Cycle: true}
	}
	if s, ok := r.done[name]; ok {
		return s, nil
	}
	r.path = append(r.path, name)
	defer func() { r.path = r.path[:len(r.path)-1] }()

	sor, ok := r.reg.Lookup(name)
	if !ok {
		r.reg.EnsurePlaceholder(name)
		sor, _ = r.reg.Lookup(name)
	}
	s, err := r.resolve(sor)
	if err != nil {
		return nil, err
	}
	if s.Name != name {
		c := *s
		c.Name = name
		s = &c
	}
	r.done[name] = s
	return s, nil
}

// Resolve flattens an inline schema or follows a reference.
func (r *Resolver) Resolve(s *spec.SchemaOrRef) (*spec.Schema, error) {
	return r.resolve(s)
}

func (r *Resolver) resolve(s *spec.SchemaOrRef) (*spec.Schema, error) {
	if s == nil {
		return &spec.Schema{}, nil
	}
	if name := s.RefName(); name != "" {
		return r.Flatten(name)
	}
	sc := s.Schema
	if sc == nil {
		return &spec.Schema{}, nil
	}
	if len(sc.AllOf) == 0 {
		return sc, nil
	}

	merged := &spec.Schema{
		Name:        sc.Name,
		Type:        "object",
		Description: sc.Description,
		Nullable:    sc.Nullable,
		Properties:  make(map[string]*spec.SchemaOrRef),
	}
	required := make(map[string]bool)
	add := func(part *spec.Schema) {
		for name, p := range part.Properties {
			merged.Properties[name] = p
		}
		for _, req := range part.Required {
			if !required[req] {
				required[req] = true
				merged.Required = append(merged.Required, req)
			}
		}
		if merged.AdditionalProperties == nil {
			merged.AdditionalProperties = part.AdditionalProperties
		}
	}
	for _, branch := range sc.AllOf {
		if name := branch.RefName(); name != "" && r.visit != nil {
			if err := r.visit(name); err != nil {
				return nil, err
			}
		}
		part, err := r.resolve(branch)
		if err != nil {
			return nil, err
		}
		add(part)
	}
	add(&spec.Schema{Properties: sc.Properties, Required: sc.Required, AdditionalProperties: sc.AdditionalProperties})
	return merged, nil
}
