package schema

import (
	"strings"

	"github.com/mark3labs/swagger2hooks/internal/spec"
)

// IsPaginated is the default pagination heuristic. An operation is paginated
// when it declares a page or page_size query parameter, when its success
// schema is an object with both results and count properties, or when its
// success schema is a reference whose name contains "Paginated".
func IsPaginated(op spec.Operation, reg *Registry) bool {
	for _, p := range op.QueryParameters() {
		if p.Name == "page" || p.Name == "page_size" {
			return true
		}
	}
	success := op.SuccessSchema()
	if success == nil {
		return false
	}
	if strings.Contains(success.RefName(), "Paginated") {
		return true
	}
	obj := resolveShallow(success, reg)
	if obj == nil {
		return false
	}
	_, results := obj.Properties["results"]
	_, count := obj.Properties["count"]
	return results && count
}

// PageItem returns the element schema of a paginated response: the items of
// its results property, or the items of an array response. It returns nil
// when the element shape is unknown.
func PageItem(op spec.Operation, reg *Registry) *spec.SchemaOrRef {
	success := op.SuccessSchema()
	obj := resolveShallow(success, reg)
	if obj == nil {
		return nil
	}
	if results := obj.Properties["results"]; results != nil {
		if r := resolveShallow(results, reg); r != nil && r.Items != nil {
			return r.Items
		}
		return nil
	}
	if obj.Items != nil {
		return obj.Items
	}
	return nil
}

// resolveShallow follows references and flattens allOf. Resolution failures
// yield nil.
func resolveShallow(s *spec.SchemaOrRef, reg *Registry) *spec.Schema {
	if s == nil {
		return nil
	}
	if s.Ref == nil && s.Schema != nil && len(s.Schema.AllOf) == 0 {
		return s.Schema
	}
	if reg == nil {
		return nil
	}
	sc, err := NewResolver(reg, nil).Resolve(s)
	if err != nil {
		return nil
	}
	return sc
}
