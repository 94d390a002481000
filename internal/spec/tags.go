package spec

import (
	"sort"
	"strings"
)

// ExtractTags returns the distinct tags referenced by at least one operation,
// sorted. A document without paths yields no tags.
func (d *Document) ExtractTags() []string {
	if !d.HasPaths {
		d.Logger().Warn("no paths in document, nothing to generate", "location", d.Location)
		return nil
	}
	set := make(map[string]struct{})
	for _, op := range d.Operations {
		for _, t := range op.Tags {
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// CollectOperations returns every operation tagged with tag, in document order.
func (d *Document) CollectOperations(tag string) []Operation {
	var out []Operation
	for _, op := range d.Operations {
		for _, t := range op.Tags {
			if t == tag {
				out = append(out, op)
				break
			}
		}
	}
	return out
}

// FilterTags applies include/exclude lists. An empty include list keeps all.
func FilterTags(tags, include, exclude []string) []string {
	inc := toSet(include)
	exc := toSet(exclude)
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if len(inc) > 0 {
			if _, ok := inc[t]; !ok {
				continue
			}
		}
		if _, blocked := exc[t]; blocked {
			continue
		}
		out = append(out, t)
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			set[it] = struct{}{}
		}
	}
	return set
}

// PathParams returns the names of the {param} segments of path, left to right.
// A segment counts only when it is exactly one bracketed name.
func PathParams(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if name, ok := pathParamName(seg); ok {
			out = append(out, name)
		}
	}
	return out
}

// IsPathParam reports whether a path segment has the {name} form.
func IsPathParam(seg string) bool {
	_, ok := pathParamName(seg)
	return ok
}

func pathParamName(seg string) (string, bool) {
	if len(seg) < 3 || seg[0] != '{' || seg[len(seg)-1] != '}' {
		return "", false
	}
	name := strings.TrimSpace(seg[1 : len(seg)-1])
	return name, name != ""
}

// defaultOperationID returns id, or method + sanitized path when id is empty,
// e.g. GET /api/widgets/{id} -> "get_api_widgets_id".
func defaultOperationID(m HttpMethod, path, id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return string(m) + sanitizePath(path)
}

func sanitizePath(path string) string {
	var b strings.Builder
	sep := true
	for _, r := range path {
		isWord := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isWord {
			sep = true
			continue
		}
		if sep {
			b.WriteByte('_')
			sep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
