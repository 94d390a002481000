package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2hooks/internal/spec"
)

// AnyType is the catch-all type expression.
const AnyType = "any"

// TypeOf returns the TypeScript type expression for s. It never fails: shapes
// it does not recognize, including the empty schema, map to AnyType.
// References render as the referenced declaration name; reg is consulted only
// to keep that name consistent with what is declared.
func TypeOf(s *spec.SchemaOrRef, reg *Registry) string {
	return typeOf(s, reg, 0)
}

// maxInlineDepth bounds inline object literals, which may nest arbitrarily.
const maxInlineDepth = 8

func typeOf(s *spec.SchemaOrRef, reg *Registry, depth int) string {
	if s == nil {
		return AnyType
	}
	if s.Ref != nil {
		name := s.RefName()
		if name == "" {
			return AnyType
		}
		return TypeName(name)
	}
	sc := s.Schema
	if sc == nil || depth > maxInlineDepth {
		return AnyType
	}
	t := baseType(sc, reg, depth)
	if sc.Nullable && t != AnyType {
		t += " | null"
	}
	return t
}

func baseType(sc *spec.Schema, reg *Registry, depth int) string {
	if len(sc.Enum) > 0 {
		return enumUnion(sc.Enum)
	}
	switch {
	case len(sc.AllOf) > 0:
		return joinTypes(sc.AllOf, " & ", reg, depth)
	case len(sc.OneOf) > 0:
		return joinTypes(sc.OneOf, " | ", reg, depth)
	case len(sc.AnyOf) > 0:
		return joinTypes(sc.AnyOf, " | ", reg, depth)
	}
	switch sc.Type {
	case "array":
		return arrayOf(typeOf(sc.Items, reg, depth+1))
	case "integer", "number":
		return "number"
	case "string":
		return "string"
	case "boolean":
		return "boolean"
	case "object":
		return objectType(sc, reg, depth)
	case "":
		// Untyped schemas are classified by shape.
		if sc.Items != nil {
			return arrayOf(typeOf(sc.Items, reg, depth+1))
		}
		if len(sc.Properties) > 0 || sc.AdditionalProperties != nil {
			return objectType(sc, reg, depth)
		}
	}
	return AnyType
}

func objectType(sc *spec.Schema, reg *Registry, depth int) string {
	if len(sc.Properties) > 0 {
		return InlineObject(sc, reg, depth+1)
	}
	if sc.AdditionalProperties != nil {
		return "Record<string, " + typeOf(sc.AdditionalProperties, reg, depth+1) + ">"
	}
	return "Record<string, any>"
}

// InlineObject renders an object literal type, e.g. "{ id: number; name?: string }".
func InlineObject(sc *spec.Schema, reg *Registry, depth int) string {
	names := sc.PropertyNames()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		opt := "?"
		if sc.IsRequired(name) {
			opt = ""
		}
		parts = append(parts, fmt.Sprintf("%s%s: %s", PropertyKey(name), opt, typeOf(sc.Properties[name], reg, depth)))
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func arrayOf(elem string) string {
	if hasTopLevelOperator(elem) {
		return "(" + elem + ")[]"
	}
	return elem + "[]"
}

// hasTopLevelOperator reports whether t contains | or & outside braces,
// brackets, parentheses and quotes.
func hasTopLevelOperator(t string) bool {
	depth := 0
	quoted := false
	for i := 0; i < len(t); i++ {
		c := t[i]
		switch {
		case quoted:
			if c == '\\' {
				i++
			} else if c == '\'' {
				quoted = false
			}
		case c == '\'':
			quoted = true
		case c == '{' || c == '<' || c == '(' || c == '[':
			depth++
		case c == '}' || c == '>' || c == ')' || c == ']':
			depth--
		case (c == '|' || c == '&') && depth == 0:
			return true
		}
	}
	return false
}

func joinTypes(branches []*spec.SchemaOrRef, sep string, reg *Registry, depth int) string {
	seen := make(map[string]bool, len(branches))
	var parts []string
	for _, b := range branches {
		t := typeOf(b, reg, depth+1)
		if seen[t] {
			continue
		}
		seen[t] = true
		if sep == " & " && hasTopLevelOperator(t) {
			t = "(" + t + ")"
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return AnyType
	}
	return strings.Join(parts, sep)
}

// enumUnion renders enum values as a union of literals: single-quoted strings,
// raw numbers and booleans. Duplicates are dropped and order is preserved.
func enumUnion(values []any) string {
	seen := make(map[string]bool, len(values))
	parts := make([]string, 0, len(values))
	for _, v := range values {
		lit := literal(v)
		if seen[lit] {
			continue
		}
		seen[lit] = true
		parts = append(parts, lit)
	}
	return strings.Join(parts, " | ")
}

func literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(val) + "'"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	}
	return AnyType
}
