package emitter

import (
	"bytes"

	"github.com/mark3labs/swagger2hooks/internal/plan"
)

// Endpoints renders the tag's entry of the ENDPOINTS map. An operation that
// shares its key with an earlier one reuses that entry.
func Endpoints(names plan.TagNames, plans []plan.OperationPlan) *EndpointsSection {
	var buf bytes.Buffer
	buf.WriteString("export const ENDPOINTS = {\n")
	buf.WriteString(indent)
	buf.WriteString(names.Upper)
	buf.WriteString(": {\n")
	for _, p := range plans {
		if !p.OwnsEndpoint {
			continue
		}
		idents := make(map[string]string, len(p.PathArgs))
		params := make([]string, 0, len(p.PathArgs))
		for _, a := range p.PathArgs {
			idents[a.Name] = a.Ident
			params = append(params, a.Ident+": "+a.Type)
		}
		buf.WriteString(indent + indent)
		buf.WriteString(p.EndpointKey)
		buf.WriteString(": (")
		buf.WriteString(joinArgs(params))
		buf.WriteString(") => `")
		buf.WriteString(plan.URLTemplate(p.Op.Path, idents))
		buf.WriteString("`,\n")
	}
	buf.WriteString(indent)
	buf.WriteString("},\n};")
	return &EndpointsSection{Text: buf.String()}
}
