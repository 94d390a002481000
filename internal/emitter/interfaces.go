package emitter

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/mark3labs/swagger2hooks/internal/plan"
	"github.com/mark3labs/swagger2hooks/internal/schema"
)

var commonDecls = []Decl{
	{Name: "ResponseObject", Text: `export interface ResponseObject<T> {
  data: T;
  message?: string;
  success: boolean;
}`},
	{Name: "PaginationList", Text: `export interface PaginationList<T> {
  count: number;
  next: string | null;
  previous: string | null;
  results: T[];
}`},
	{Name: "PaginationParams", Text: `export interface PaginationParams {
  page?: number;
  page_size?: number;
}`},
}

// Interfaces renders the type declarations of one tag: the shared wrapper
// types, per-operation response types, every needed registry schema,
// parameters interfaces, request body types and the service contract. Each
// name is declared at most once.
func Interfaces(names plan.TagNames, plans []plan.OperationPlan, reg *schema.Registry, needed []string, logger *slog.Logger) (*InterfacesSection, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g := &interfaceGen{
		reg:       reg,
		log:       logger.With("tag", names.Tag),
		generated: make(map[string]bool),
	}
	g.resolver = schema.NewResolver(reg, g.model)

	out := &InterfacesSection{Common: append([]Decl(nil), commonDecls...)}
	for _, d := range out.Common {
		g.generated[d.Name] = true
	}

	for _, p := range plans {
		if d, ok := g.operationType(p.Response); ok {
			out.Responses = append(out.Responses, d)
		}
		if d, ok := g.operationType(p.Item); ok {
			out.Responses = append(out.Responses, d)
		}
	}

	for _, name := range needed {
		if err := g.model(name); err != nil {
			return nil, err
		}
	}
	out.Models = g.models

	for _, p := range plans {
		if p.ParamsInterface == "" || !g.claim(p.ParamsInterface) {
			continue
		}
		members := make([]member, 0, len(p.ParamFields))
		for _, f := range p.ParamFields {
			members = append(members, member{Name: f.Name, Type: f.Type, Required: f.Required, Doc: f.Description})
		}
		out.Params = append(out.Params, Decl{Name: p.ParamsInterface, Text: interfaceText(p.ParamsInterface, "", members)})
	}

	for _, p := range plans {
		if d, ok := g.operationType(p.Body); ok {
			out.Bodies = append(out.Bodies, d)
		}
	}

	out.Contract = Decl{Name: names.Interface, Text: contractText(names, plans)}
	return out, nil
}

type interfaceGen struct {
	reg       *schema.Registry
	resolver  *schema.Resolver
	log       *slog.Logger
	generated map[string]bool
	models    []Decl
}

// claim marks name as declared. It reports false, and logs, when the name
// was already taken.
func (g *interfaceGen) claim(name string) bool {
	if g.generated[name] {
		g.log.Warn("type name already declared, skipping", "name", name)
		return false
	}
	g.generated[name] = true
	return true
}

func (g *interfaceGen) operationType(t *plan.TypeDecl) (Decl, bool) {
	if !t.Declared() || (t.Kind == plan.TypeAlias && t.Target == t.Name) || !g.claim(t.Name) {
		return Decl{}, false
	}
	if t.Kind == plan.TypeAlias {
		return Decl{Name: t.Name, Text: aliasText(t.Name, "", t.Target)}, true
	}
	doc := ""
	if t.Schema != nil {
		doc = t.Schema.Description
	}
	return Decl{Name: t.Name, Text: interfaceText(t.Name, doc, schemaMembers(t.Schema, g.reg))}, true
}

// model declares the registry schema name unless it already was. It is also
// the resolver's visit callback, so allOf branches are declared before the
// schema composed from them.
func (g *interfaceGen) model(name string) error {
	tn := schema.TypeName(name)
	if g.generated[tn] {
		return nil
	}
	g.generated[tn] = true

	sor, ok := g.reg.Lookup(name)
	if !ok {
		g.reg.EnsurePlaceholder(name)
		sor, _ = g.reg.Lookup(name)
	}
	doc := ""
	if sor.Schema != nil {
		doc = sor.Schema.Description
	}

	var text string
	switch schema.KindOf(sor) {
	case schema.KindObject, schema.KindPlaceholder:
		flat, err := g.resolver.Flatten(name)
		if err != nil {
			return fmt.Errorf("schema %s: %w", name, err)
		}
		text = interfaceText(tn, doc, schemaMembers(flat, g.reg))
	default:
		text = aliasText(tn, doc, schema.TypeOf(sor, g.reg))
	}
	g.models = append(g.models, Decl{Name: tn, Text: text})
	return nil
}

// contractText renders the service interface: one signature per operation.
func contractText(names plan.TagNames, plans []plan.OperationPlan) string {
	var buf bytes.Buffer
	buf.WriteString("export interface ")
	buf.WriteString(names.Interface)
	if len(plans) == 0 {
		buf.WriteString(" {}")
		return buf.String()
	}
	buf.WriteString(" {\n")
	for i := range plans {
		p := &plans[i]
		writeJSDoc(&buf, indent, p.Op.Summary)
		buf.WriteString(indent)
		buf.WriteString(p.MethodName)
		buf.WriteString("(")
		buf.WriteString(joinArgs(signatureArgs(p, true)))
		buf.WriteString("): ")
		buf.WriteString(p.ReturnType())
		buf.WriteString(";\n")
	}
	buf.WriteString("}")
	return buf.String()
}
