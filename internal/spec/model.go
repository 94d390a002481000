package spec

import (
	"log/slog"
	"sort"
	"strings"
)

// Internal Model (IM) definitions consumed by the resolver, planner and emitters.

type HttpMethod string

const (
	GET    HttpMethod = "get"
	POST   HttpMethod = "post"
	PUT    HttpMethod = "put"
	DELETE HttpMethod = "delete"
	PATCH  HttpMethod = "patch"
)

// Methods lists the HTTP methods that produce operations, in emission order.
// Any other method key on a path item is ignored.
var Methods = []HttpMethod{GET, POST, PUT, DELETE, PATCH}

// HasBody reports whether calls with this method carry a request body.
func (m HttpMethod) HasBody() bool {
	return m == POST || m == PUT || m == PATCH
}

// Upper returns the method name in upper case, e.g. "GET".
func (m HttpMethod) Upper() string { return strings.ToUpper(string(m)) }

// Document is a decoded OpenAPI/Swagger document.
type Document struct {
	Title    string
	Version  string
	Location string

	// HasPaths is false when the document carries no "paths" object at all.
	HasPaths bool
	// Operations holds every path x method pair in path order, then method order.
	Operations []Operation
	// Schemas is the raw schema section: components.schemas, or definitions
	// for legacy documents.
	Schemas map[string]*SchemaOrRef
	// SchemaSource names the section Schemas came from.
	SchemaSource string

	log *slog.Logger
}

// Logger returns the logger the document was loaded with.
func (d *Document) Logger() *slog.Logger {
	if d == nil || d.log == nil {
		return discardLogger()
	}
	return d.log
}

type Operation struct {
	OperationID string
	Method      HttpMethod
	Path        string
	Summary     string
	Description string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response
	// PathParams are the {name} segments of Path, left to right.
	PathParams []string
	// Err is set when the operation could not be decoded. Such an operation
	// still belongs to its tags so the failure surfaces for that tag only.
	Err error
}

// PathParameters returns the declared path parameters in PathParams order.
// Path segments without a matching declaration get a string parameter.
func (o Operation) PathParameters() []Parameter {
	out := make([]Parameter, 0, len(o.PathParams))
	for _, name := range o.PathParams {
		p, ok := o.param("path", name)
		if !ok {
			p = Parameter{Name: name, In: "path", Required: true, Schema: &SchemaOrRef{Schema: &Schema{Type: "string"}}}
		}
		out = append(out, p)
	}
	return out
}

// QueryParameters returns the query parameters in declaration order.
func (o Operation) QueryParameters() []Parameter {
	var out []Parameter
	for _, p := range o.Parameters {
		if p.In == "query" {
			out = append(out, p)
		}
	}
	return out
}

func (o Operation) param(in, name string) (Parameter, bool) {
	for _, p := range o.Parameters {
		if p.In == in && p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// SuccessSchema returns the schema of the lowest 2xx response that has content.
func (o Operation) SuccessSchema() *SchemaOrRef {
	for _, r := range o.Responses {
		if !strings.HasPrefix(r.Status, "2") {
			continue
		}
		if s := pickSchema(r.Content); s != nil {
			return s
		}
	}
	return nil
}

// BodySchema returns the request body schema, if any.
func (o Operation) BodySchema() *SchemaOrRef {
	if o.RequestBody == nil {
		return nil
	}
	return pickSchema(o.RequestBody.Content)
}

// pickSchema prefers a JSON media type and falls back to the first one.
func pickSchema(content []Media) *SchemaOrRef {
	for _, m := range content {
		if strings.Contains(m.Mime, "json") && m.Schema != nil {
			return m.Schema
		}
	}
	for _, m := range content {
		if m.Schema != nil {
			return m.Schema
		}
	}
	return nil
}

type Parameter struct {
	Name        string
	In          string // path|query|header|cookie
	Required    bool
	Description string
	Schema      *SchemaOrRef
}

type RequestBody struct {
	Content  []Media
	Required bool
}

type Response struct {
	Status      string // 200, 4xx, default
	Description string
	Content     []Media
}

type Media struct {
	Mime   string
	Schema *SchemaOrRef
}

type Schema struct {
	Name                 string
	Type                 string
	Format               string
	Description          string
	Properties           map[string]*SchemaOrRef
	Required             []string
	Items                *SchemaOrRef
	AdditionalProperties *SchemaOrRef
	AllOf                []*SchemaOrRef
	AnyOf                []*SchemaOrRef
	OneOf                []*SchemaOrRef
	Enum                 []any
	Nullable             bool
	// Placeholder marks a schema synthesized for a reference that resolved to nothing.
	Placeholder bool
}

// PropertyNames returns the property names in sorted order.
func (s *Schema) PropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRequired reports whether name is listed in Required.
func (s *Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

type SchemaRef struct{ Ref string }

type SchemaOrRef struct {
	Schema *Schema
	Ref    *SchemaRef
}

// RefName returns the component name a reference points at, e.g.
// "#/components/schemas/Pet" and "#/definitions/Pet" both yield "Pet".
// It returns "" when s is not a reference.
func (s *SchemaOrRef) RefName() string {
	if s == nil || s.Ref == nil {
		return ""
	}
	return RefName(s.Ref.Ref)
}

// RefName extracts the last segment of a JSON pointer reference.
func RefName(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		ref = ref[i+1:]
	}
	// JSON pointer escapes
	ref = strings.ReplaceAll(ref, "~1", "/")
	return strings.ReplaceAll(ref, "~0", "~")
}

// Ref builds a reference to a component schema.
func Ref(name string) *SchemaOrRef {
	return &SchemaOrRef{Ref: &SchemaRef{Ref: "#/components/schemas/" + name}}
}
