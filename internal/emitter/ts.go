package emitter

import (
	"bytes"
	"strings"

	"github.com/mark3labs/swagger2hooks/internal/schema"
	"github.com/mark3labs/swagger2hooks/internal/spec"
)

const indent = "  "

// writeJSDoc writes doc as a single-line JSDoc comment at the given indent.
func writeJSDoc(buf *bytes.Buffer, pad, doc string) {
	doc = strings.Join(strings.Fields(doc), " ")
	if doc == "" {
		return
	}
	buf.WriteString(pad)
	buf.WriteString("/** ")
	buf.WriteString(strings.ReplaceAll(doc, "*/", `*\/`))
	buf.WriteString(" */\n")
}

// member is one property of an emitted interface.
type member struct {
	Name     string
	Type     string
	Required bool
	Doc      string
}

func writeInterface(buf *bytes.Buffer, name, doc string, members []member) {
	writeJSDoc(buf, "", doc)
	buf.WriteString("export interface ")
	buf.WriteString(name)
	if len(members) == 0 {
		buf.WriteString(" {}")
		return
	}
	buf.WriteString(" {\n")
	for _, m := range members {
		writeJSDoc(buf, indent, m.Doc)
		buf.WriteString(indent)
		buf.WriteString(schema.PropertyKey(m.Name))
		if !m.Required {
			buf.WriteString("?")
		}
		buf.WriteString(": ")
		buf.WriteString(m.Type)
		buf.WriteString(";\n")
	}
	buf.WriteString("}")
}

func writeAlias(buf *bytes.Buffer, name, doc, target string) {
	writeJSDoc(buf, "", doc)
	buf.WriteString("export type ")
	buf.WriteString(name)
	buf.WriteString(" = ")
	buf.WriteString(target)
	buf.WriteString(";")
}

// schemaMembers lists an object schema's properties in name order.
func schemaMembers(s *spec.Schema, reg *schema.Registry) []member {
	if s == nil {
		return nil
	}
	names := s.PropertyNames()
	out := make([]member, 0, len(names))
	for _, name := range names {
		prop := s.Properties[name]
		doc := ""
		if prop != nil && prop.Schema != nil {
			doc = prop.Schema.Description
		}
		out = append(out, member{
			Name:     name,
			Type:     schema.TypeOf(prop, reg),
			Required: s.IsRequired(name),
			Doc:      doc,
		})
	}
	return out
}

func interfaceText(name, doc string, members []member) string {
	var buf bytes.Buffer
	writeInterface(&buf, name, doc, members)
	return buf.String()
}

func aliasText(name, doc, target string) string {
	var buf bytes.Buffer
	writeAlias(&buf, name, doc, target)
	return buf.String()
}
