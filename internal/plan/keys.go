package plan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mark3labs/swagger2hooks/internal/schema"
	"github.com/mark3labs/swagger2hooks/internal/spec"
)

// EndpointKeyer derives the endpoint map key of an operation.
type EndpointKeyer interface {
	EndpointKey(m spec.HttpMethod, path string) string
}

// EndpointKeyerFunc adapts a function to EndpointKeyer.
type EndpointKeyerFunc func(m spec.HttpMethod, path string) string

func (f EndpointKeyerFunc) EndpointKey(m spec.HttpMethod, path string) string { return f(m, path) }

// CollapseKeys is the default keyer: literal segments become _SEGMENT and
// every {param} segment becomes _ID, so GET /api/widgets/{id} is
// GET_WIDGETS_ID. Leading "api" and version segments are dropped.
var CollapseKeys EndpointKeyer = EndpointKeyerFunc(func(m spec.HttpMethod, path string) string {
	return endpointKey(m, path, false)
})

// NumberedKeys is CollapseKeys with repeated _ID tokens numbered: _ID, _ID2, _ID3.
var NumberedKeys EndpointKeyer = EndpointKeyerFunc(func(m spec.HttpMethod, path string) string {
	return endpointKey(m, path, true)
})

// KeyerByName returns the keyer registered under name: "collapse" (or empty)
// and "numbered".
func KeyerByName(name string) (EndpointKeyer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "collapse":
		return CollapseKeys, nil
	case "numbered":
		return NumberedKeys, nil
	}
	return nil, fmt.Errorf("unknown endpoint key strategy %q (want collapse or numbered)", name)
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

func endpointKey(m spec.HttpMethod, path string, number bool) string {
	var b strings.Builder
	b.WriteString(m.Upper())
	prefix := true
	ids := 0
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if prefix && (strings.EqualFold(seg, "api") || versionSegment.MatchString(strings.ToLower(seg))) {
			continue
		}
		prefix = false
		if spec.IsPathParam(seg) {
			ids++
			b.WriteString("_ID")
			if number && ids > 1 {
				fmt.Fprintf(&b, "%d", ids)
			}
			continue
		}
		if w := strings.ToUpper(strings.Join(words(seg), "_")); w != "" {
			b.WriteString("_" + w)
		}
	}
	return b.String()
}

// pathShape replaces every {param} segment with {} so that paths that differ
// only in parameter names compare equal.
func pathShape(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if spec.IsPathParam(s) {
			segs[i] = "{}"
		}
	}
	return strings.Join(segs, "/")
}

// URLTemplate renders path as a TypeScript template literal body with each
// {param} replaced by ${ident}.
func URLTemplate(path string, idents map[string]string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if name, ok := paramName(s); ok {
			ident := idents[name]
			if ident == "" {
				ident = schema.Identifier(name)
			}
			segs[i] = "${" + ident + "}"
			continue
		}
		segs[i] = escapeTemplate(s)
	}
	return strings.Join(segs, "/")
}

func paramName(seg string) (string, bool) {
	if !spec.IsPathParam(seg) {
		return "", false
	}
	names := spec.PathParams("/" + seg)
	return names[0], true
}

func escapeTemplate(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "`", "\\`")
	return strings.ReplaceAll(s, "${", "\\${")
}
