package emitter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2hooks/internal/plan"
	"github.com/mark3labs/swagger2hooks/internal/spec"
)

// signatureArgs renders the parameter list shared by the contract and the
// class. The class gives an all-optional params object a {} default; the
// contract marks it optional instead, unless a body follows it.
func signatureArgs(p *plan.OperationPlan, contract bool) []string {
	var args []string
	hasBody := p.Body != nil
	switch {
	case p.Direct != nil:
		args = append(args, p.Direct.Ident+": "+p.Direct.Type)
	case p.ParamsInterface != "":
		switch {
		case p.ParamsOptional && contract && !hasBody:
			args = append(args, "params?: "+p.ParamsInterface)
		case p.ParamsOptional && !contract:
			args = append(args, "params: "+p.ParamsInterface+" = {}")
		default:
			args = append(args, "params: "+p.ParamsInterface)
		}
	}
	if hasBody {
		args = append(args, "body: "+p.Body.Name)
	}
	return args
}

// callArgs are the arguments a caller passes to the service method.
func callArgs(p *plan.OperationPlan) []string {
	var args []string
	switch {
	case p.Direct != nil:
		args = append(args, p.Direct.Ident)
	case p.ParamsInterface != "":
		args = append(args, "params")
	}
	if p.Body != nil {
		args = append(args, "body")
	}
	return args
}

func joinArgs(args []string) string { return strings.Join(args, ", ") }

// Service renders the service class implementing the tag contract, and its
// exported singleton.
func Service(names plan.TagNames, plans []plan.OperationPlan) *ServiceSection {
	var buf bytes.Buffer
	buf.WriteString("export class ")
	buf.WriteString(names.Service)
	buf.WriteString(" implements ")
	buf.WriteString(names.Interface)
	buf.WriteString(" {\n")
	for i := range plans {
		if i > 0 {
			buf.WriteString("\n")
		}
		writeMethod(&buf, names, &plans[i])
	}
	buf.WriteString("}\n\nexport const ")
	buf.WriteString(names.Instance)
	buf.WriteString(" = new ")
	buf.WriteString(names.Service)
	buf.WriteString("();")
	return &ServiceSection{Class: names.Service, Instance: names.Instance, Text: buf.String()}
}

func writeMethod(buf *bytes.Buffer, names plan.TagNames, p *plan.OperationPlan) {
	pad := indent + indent
	buf.WriteString(indent)
	buf.WriteString("async ")
	buf.WriteString(p.MethodName)
	buf.WriteString("(")
	buf.WriteString(joinArgs(signatureArgs(p, false)))
	buf.WriteString("): ")
	buf.WriteString(p.ReturnType())
	buf.WriteString(" {\n")

	// Path arguments for the endpoint function, and query options.
	var urlArgs []string
	options := ""
	switch {
	case p.Direct != nil:
		urlArgs = []string{p.Direct.Ident}
	case p.ParamsInterface != "":
		var pathFields []plan.Field
		for _, f := range p.ParamFields {
			if f.In == "path" {
				pathFields = append(pathFields, f)
			}
		}
		for _, a := range p.PathArgs {
			urlArgs = append(urlArgs, a.Ident)
		}
		switch {
		case len(pathFields) == 0:
			options = "{ params }"
		default:
			bindings := make([]string, 0, len(pathFields)+1)
			for _, f := range pathFields {
				bindings = append(bindings, binding(f))
			}
			if p.HasQuery() {
				bindings = append(bindings, "...query")
				options = "{ params: query }"
			}
			buf.WriteString(pad)
			buf.WriteString("const { ")
			buf.WriteString(joinArgs(bindings))
			buf.WriteString(" } = params;\n")
		}
	}

	url := "ENDPOINTS." + names.Upper + "." + p.EndpointKey + "(" + joinArgs(urlArgs) + ")"
	httpArgs := []string{url}
	if p.Op.Method.HasBody() {
		switch {
		case p.Body != nil:
			httpArgs = append(httpArgs, "body")
		case options != "":
			httpArgs = append(httpArgs, "undefined")
		}
	}
	if options != "" {
		httpArgs = append(httpArgs, options)
	}

	result := p.ResultType()
	buf.WriteString(pad)
	if p.Op.Method == spec.DELETE {
		buf.WriteString("await ")
	} else {
		buf.WriteString("return ")
	}
	buf.WriteString("handleRequest<")
	buf.WriteString(result)
	buf.WriteString(">(\n")
	buf.WriteString(pad + indent)
	buf.WriteString("() => httpClient.")
	buf.WriteString(string(p.Op.Method))
	buf.WriteString("(")
	buf.WriteString(joinArgs(httpArgs))
	buf.WriteString("),\n")
	buf.WriteString(pad + indent)
	buf.WriteString(strconv.Quote(p.MethodName))
	buf.WriteString(",\n")
	buf.WriteString(pad)
	buf.WriteString(");\n")
	buf.WriteString(indent)
	buf.WriteString("}\n")
}

// binding destructures one field, renaming it when its name is not a valid
// local identifier.
func binding(f plan.Field) string {
	if f.Ident == f.Name {
		return f.Name
	}
	return strconv.Quote(f.Name) + ": " + f.Ident
}
