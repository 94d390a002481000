// Package plan decides, once per operation, every name and shape the
// generators share: method and hook names, the endpoint key, the parameter
// calling convention, and the request, response and item type names.
package plan

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mark3labs/swagger2hooks/internal/schema"
	"github.com/mark3labs/swagger2hooks/internal/spec"
)

// PaginationClassifier decides whether an operation returns a page.
type PaginationClassifier interface {
	IsPaginated(op spec.Operation, reg *schema.Registry) bool
}

// PaginationFunc adapts a function to PaginationClassifier.
type PaginationFunc func(op spec.Operation, reg *schema.Registry) bool

func (f PaginationFunc) IsPaginated(op spec.Operation, reg *schema.Registry) bool { return f(op, reg) }

// DefaultPagination is the results/count, page parameter and "Paginated"
// name heuristic.
var DefaultPagination PaginationClassifier = PaginationFunc(schema.IsPaginated)

// Strategies are the pluggable heuristics used while planning.
type Strategies struct {
	Keys       EndpointKeyer
	Pagination PaginationClassifier
	Logger     *slog.Logger
}

func (s Strategies) withDefaults() Strategies {
	if s.Keys == nil {
		s.Keys = CollapseKeys
	}
	if s.Pagination == nil {
		s.Pagination = DefaultPagination
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Field is one member of a parameters interface.
type Field struct {
	Name        string // as written in the document
	Ident       string // local binding name in generated code
	In          string // path or query
	Type        string
	Required    bool
	Description string
}

// DirectParam is the single positional argument used when an operation has
// exactly one path parameter and no query parameters.
type DirectParam struct {
	Name  string
	Ident string
	Type  string
}

// TypeKind says how a planned type is declared.
type TypeKind int

const (
	// TypeNone declares nothing; Name is a type expression used as-is.
	TypeNone TypeKind = iota
	// TypeAlias declares `export type Name = Target;`.
	TypeAlias
	// TypeInterface declares an interface from Schema's properties.
	TypeInterface
)

// TypeDecl is a named type derived from an operation.
type TypeDecl struct {
	Name   string
	Kind   TypeKind
	Target string       // aliased type expression, for TypeAlias
	Schema *spec.Schema // resolved object, for TypeInterface
}

// Declared reports whether the type produces declaration text.
func (t *TypeDecl) Declared() bool { return t != nil && t.Kind != TypeNone }

// OperationPlan is the read-only view every generator consumes.
type OperationPlan struct {
	Op         spec.Operation
	MethodName string
	HookName   string
	// EndpointKey names this operation's entry in the endpoint map.
	EndpointKey string
	// OwnsEndpoint is false when an earlier operation in the tag produced the
	// same key for an identical path shape; the entry is emitted once.
	OwnsEndpoint bool
	// PathArgs are the positional arguments of the endpoint function, in path order.
	PathArgs []DirectParam

	// At most one of Direct and ParamsInterface is set.
	Direct          *DirectParam
	ParamsInterface string
	ParamFields     []Field
	// ParamsOptional is true when no field of the parameters interface is required.
	ParamsOptional bool

	Body      *TypeDecl
	Response  *TypeDecl
	Item      *TypeDecl
	Paginated bool
}

// HasQuery reports whether any parameter field travels in the query string.
func (p *OperationPlan) HasQuery() bool {
	for _, f := range p.ParamFields {
		if f.In == "query" {
			return true
		}
	}
	return false
}

// ResultType is T in ResponseObject<T> for the operation's service method.
func (p *OperationPlan) ResultType() string {
	switch {
	case p.Op.Method == spec.DELETE:
		return "void"
	case p.Paginated:
		item := schema.AnyType
		if p.Item != nil {
			item = p.Item.Name
		}
		return "PaginationList<" + item + ">"
	case p.Response != nil:
		return p.Response.Name
	}
	return "void"
}

// ReturnType is the promise type of the service method.
func (p *OperationPlan) ReturnType() string {
	if p.Op.Method == spec.DELETE {
		return "Promise<void>"
	}
	return "Promise<ResponseObject<" + p.ResultType() + ">>"
}

// Build plans every operation of one tag. Operations that failed to decode
// fail the whole tag.
func Build(tag string, ops []spec.Operation, reg *schema.Registry, st Strategies) ([]OperationPlan, error) {
	st = st.withDefaults()
	log := st.Logger.With("tag", tag)
	b := &builder{
		reg:     reg,
		st:      st,
		log:     log,
		methods: make(map[string]int),
		keys:    make(map[string]string),
		types:   make(map[string]bool),
	}
	// Operation-level types must not shadow anything the tag file declares.
	for _, w := range schema.WrapperTypes {
		b.types[w] = true
	}
	b.types[NamesFor(tag).Interface] = true
	for _, name := range schema.CollectNeeded(ops, reg, nil) {
		b.types[schema.TypeName(name)] = true
	}
	out := make([]OperationPlan, 0, len(ops))
	for _, op := range ops {
		if op.Err != nil {
			return nil, fmt.Errorf("operation %s %s: %w", op.Method.Upper(), op.Path, op.Err)
		}
		p, err := b.plan(op)
		if err != nil {
			return nil, fmt.Errorf("operation %s %s: %w", op.Method.Upper(), op.Path, err)
		}
		out = append(out, p)
	}
	return out, nil
}

type builder struct {
	reg     *schema.Registry
	st      Strategies
	log     *slog.Logger
	methods map[string]int
	keys    map[string]string // endpoint key -> path shape
	types   map[string]bool   // declared type names
}

func (b *builder) plan(op spec.Operation) (OperationPlan, error) {
	p := OperationPlan{Op: op, OwnsEndpoint: true}
	p.MethodName = b.methodName(op)
	p.HookName = "use" + Pascal(p.MethodName)
	p.EndpointKey, p.OwnsEndpoint = b.endpointKey(op)
	prefix := Pascal(p.MethodName)

	pathParams := op.PathParameters()
	query := op.QueryParameters()
	for _, pp := range pathParams {
		p.PathArgs = append(p.PathArgs, DirectParam{
			Name:  pp.Name,
			Ident: schema.Identifier(pp.Name),
			Type:  paramType(pp, b.reg),
		})
	}

	switch {
	case len(pathParams) == 1 && len(query) == 0:
		d := p.PathArgs[0]
		p.Direct = &d
		b.log.Debug("direct parameter", "method", p.MethodName, "param", d.Name)
	case len(pathParams)+len(query) > 0:
		p.ParamsInterface = b.typeName(prefix + "Params")
		p.ParamsOptional = true
		for _, list := range [][]spec.Parameter{pathParams, query} {
			for _, prm := range list {
				f := Field{
					Name:        prm.Name,
					Ident:       schema.Identifier(prm.Name),
					In:          prm.In,
					Type:        paramType(prm, b.reg),
					Required:    prm.Required,
					Description: prm.Description,
				}
				if f.Required {
					p.ParamsOptional = false
				}
				p.ParamFields = append(p.ParamFields, f)
			}
		}
	}

	if op.Method.HasBody() {
		if body := op.BodySchema(); body != nil {
			decl, err := b.typeDecl(prefix+"Request", body, true)
			if err != nil {
				return p, err
			}
			p.Body = decl
		}
	}

	p.Paginated = b.st.Pagination.IsPaginated(op, b.reg)
	switch {
	case op.Method == spec.DELETE:
	case p.Paginated:
		b.log.Debug("paginated response", "method", p.MethodName)
		item := schema.PageItem(op, b.reg)
		if item == nil {
			p.Item = &TypeDecl{Name: schema.AnyType}
			break
		}
		// Aliases are not declared for items; the target is used directly.
		decl, err := b.typeDecl(prefix+"Item", item, false)
		if err != nil {
			return p, err
		}
		p.Item = decl
	default:
		if success := op.SuccessSchema(); success != nil {
			decl, err := b.typeDecl(prefix+"Response", success, true)
			if err != nil {
				return p, err
			}
			p.Response = decl
		}
	}
	return p, nil
}

// typeDecl chooses how an operation-level type is declared: a pure reference
// or a non-object shape becomes an alias, an object becomes an interface.
// Without alias, or when the alias would name its own target, non-object
// shapes are used as type expressions directly.
func (b *builder) typeDecl(base string, s *spec.SchemaOrRef, alias bool) (*TypeDecl, error) {
	if s.Ref == nil && s.Schema != nil && schema.KindOf(s) == schema.KindObject &&
		(len(s.Schema.Properties) > 0 || len(s.Schema.AllOf) > 0) {
		flat, err := schema.NewResolver(b.reg, nil).Resolve(s)
		if err != nil {
			return nil, err
		}
		return &TypeDecl{Name: b.typeName(base), Kind: TypeInterface, Schema: flat}, nil
	}
	target := schema.TypeOf(s, b.reg)
	if !alias || target == base {
		return &TypeDecl{Name: target}, nil
	}
	return &TypeDecl{Name: b.typeName(base), Kind: TypeAlias, Target: target}, nil
}

// typeName claims base, or base with the first free numeric suffix.
func (b *builder) typeName(base string) string {
	name := base
	for n := 2; b.types[name]; n++ {
		name = base + strconv.Itoa(n)
	}
	if name != base {
		b.log.Warn("type name taken, renamed", "name", base, "renamed", name)
	}
	b.types[name] = true
	return name
}

func (b *builder) methodName(op spec.Operation) string {
	name := Camel(op.OperationID)
	b.methods[name]++
	if n := b.methods[name]; n > 1 {
		dup := name + strconv.Itoa(n)
		b.log.Warn("duplicate method name", "method", name, "renamed", dup, "path", op.Path)
		return dup
	}
	return name
}

func (b *builder) endpointKey(op spec.Operation) (string, bool) {
	key := b.st.Keys.EndpointKey(op.Method, op.Path)
	shape := pathShape(op.Path)
	prev, taken := b.keys[key]
	if !taken {
		b.keys[key] = shape
		return key, true
	}
	if prev == shape {
		b.log.Warn("endpoint key collision, sharing first entry", "key", key, "path", op.Path)
		return key, false
	}
	for n := 2; ; n++ {
		alt := key + "_" + strconv.Itoa(n)
		if _, used := b.keys[alt]; !used {
			b.log.Warn("endpoint key collision, renamed", "key", key, "renamed", alt, "path", op.Path)
			b.keys[alt] = shape
			return alt, true
		}
	}
}

func paramType(p spec.Parameter, reg *schema.Registry) string {
	if p.Schema == nil {
		return "string"
	}
	return schema.TypeOf(p.Schema, reg)
}
