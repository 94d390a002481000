package plan

import (
	"log/slog"
	"strings"

	"github.com/mark3labs/swagger2hooks/internal/schema"
	"github.com/mark3labs/swagger2hooks/internal/spec"
)

// NeededSchemas returns the registry schemas the tag's declarations refer
// to. A paginated operation contributes its page item rather than the page
// container, which is expressed as PaginationList<Item>; the container is
// still declared when something else refers to it.
func NeededSchemas(plans []OperationPlan, reg *schema.Registry, logger *slog.Logger) []string {
	ops := make([]spec.Operation, 0, len(plans))
	for _, p := range plans {
		op := p.Op
		if p.Paginated {
			op.Responses = pageResponses(op, schema.PageItem(op, reg))
		}
		ops = append(ops, op)
	}
	return schema.CollectNeeded(ops, reg, logger)
}

func pageResponses(op spec.Operation, item *spec.SchemaOrRef) []spec.Response {
	out := make([]spec.Response, 0, len(op.Responses))
	for _, r := range op.Responses {
		if strings.HasPrefix(r.Status, "2") {
			r.Content = nil
			if item != nil {
				r.Content = []spec.Media{{Mime: "application/json", Schema: item}}
			}
		}
		out = append(out, r)
	}
	return out
}
