package emitter

import (
	"bytes"
	"strconv"

	"github.com/mark3labs/swagger2hooks/internal/plan"
	"github.com/mark3labs/swagger2hooks/internal/spec"
)

// Presentation renders one hook per operation: useQuery for GET, useMutation
// for everything else. A mutation's input mirrors the service method's
// parameters: the scalar, the params object or the body alone, or an object
// carrying the parameter and the body together.
func Presentation(names plan.TagNames, plans []plan.OperationPlan) *PresentationSection {
	out := &PresentationSection{}
	for i := range plans {
		p := &plans[i]
		var text string
		if p.Op.Method == spec.GET {
			out.UsesQuery = true
			text = queryHook(names, p)
		} else {
			out.UsesMutation = true
			text = mutationHook(names, p)
		}
		out.Hooks = append(out.Hooks, Decl{Name: p.HookName, Text: text})
	}
	return out
}

func queryHook(names plan.TagNames, p *plan.OperationPlan) string {
	key := []string{strconv.Quote(names.Tag + "-" + p.MethodName)}
	var arg string
	switch {
	case p.Direct != nil:
		arg = p.Direct.Ident + ": " + p.Direct.Type
		key = append(key, p.Direct.Ident)
	case p.ParamsInterface != "":
		arg = "params: " + p.ParamsInterface
		if p.ParamsOptional {
			arg += " = {}"
		}
		key = append(key, "...Object.values(params)")
	}

	var buf bytes.Buffer
	writeJSDoc(&buf, "", p.Op.Summary)
	buf.WriteString("export const ")
	buf.WriteString(p.HookName)
	buf.WriteString(" = (")
	buf.WriteString(arg)
	buf.WriteString(") =>\n")
	buf.WriteString(indent)
	buf.WriteString("useQuery({\n")
	buf.WriteString(indent + indent)
	buf.WriteString("queryKey: [")
	buf.WriteString(joinArgs(key))
	buf.WriteString("],\n")
	buf.WriteString(indent + indent)
	buf.WriteString("queryFn: () => ")
	buf.WriteString(names.Instance + "." + p.MethodName)
	buf.WriteString("(")
	buf.WriteString(joinArgs(callArgs(p)))
	buf.WriteString("),\n")
	buf.WriteString(indent)
	buf.WriteString("});")
	return buf.String()
}

func mutationHook(names plan.TagNames, p *plan.OperationPlan) string {
	var input string
	var paramName, paramType string
	switch {
	case p.Direct != nil:
		paramName, paramType = p.Direct.Ident, p.Direct.Type
	case p.ParamsInterface != "":
		paramName, paramType = "params", p.ParamsInterface
	}
	switch {
	case paramName != "" && p.Body != nil:
		input = "{ " + paramName + ", body }: { " + paramName + ": " + paramType + "; body: " + p.Body.Name + " }"
	case paramName != "":
		input = paramName + ": " + paramType
	case p.Body != nil:
		input = "body: " + p.Body.Name
	}

	var buf bytes.Buffer
	writeJSDoc(&buf, "", p.Op.Summary)
	buf.WriteString("export const ")
	buf.WriteString(p.HookName)
	buf.WriteString(" = () =>\n")
	buf.WriteString(indent)
	buf.WriteString("useMutation({\n")
	buf.WriteString(indent + indent)
	buf.WriteString("mutationFn: (")
	buf.WriteString(input)
	buf.WriteString(") => ")
	buf.WriteString(names.Instance + "." + p.MethodName)
	buf.WriteString("(")
	buf.WriteString(joinArgs(callArgs(p)))
	buf.WriteString("),\n")
	buf.WriteString(indent)
	buf.WriteString("});")
	return buf.String()
}
