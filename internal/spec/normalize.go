package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// decodeDocument builds the IM from JSON bytes. Every path item, operation and
// component schema is decoded on its own, so one malformed entry never
// prevents the rest of the document from loading.
func decodeDocument(data []byte, logger *slog.Logger) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("document root must be an object: %w", err)
	}
	doc := &Document{log: logger}

	var info struct {
		Title   string `json:"title"`
		Version string `json:"version"`
	}
	if raw, ok := top["info"]; ok {
		_ = json.Unmarshal(raw, &info)
	}
	doc.Title = safeStr(info.Title)
	doc.Version = safeStr(info.Version)

	comps := decodeObject(top["components"], "components", logger)
	c := &components{
		parameters:    decodeObject(comps["parameters"], "components.parameters", logger),
		requestBodies: decodeObject(comps["requestBodies"], "components.requestBodies", logger),
		responses:     decodeObject(comps["responses"], "components.responses", logger),
		log:           logger,
	}
	// Unconverted legacy documents keep reusable parts at the root.
	if c.parameters == nil {
		c.parameters = decodeObject(top["parameters"], "parameters", logger)
	}
	if c.responses == nil {
		c.responses = decodeObject(top["responses"], "responses", logger)
	}

	// Schemas: components.schemas, falling back to legacy definitions.
	section, source := comps["schemas"], "components.schemas"
	if section == nil {
		if defs, ok := top["definitions"]; ok {
			section, source = defs, "definitions"
		}
	}
	if section != nil {
		doc.SchemaSource = source
		doc.Schemas = decodeSchemas(decodeObject(section, source, logger), source, logger)
	}

	rawPaths, ok := top["paths"]
	if !ok || isNull(rawPaths) {
		logger.Warn("document has no paths")
		return doc, nil
	}
	doc.HasPaths = true
	paths := decodeObject(rawPaths, "paths", logger)
	pathKeys := make([]string, 0, len(paths))
	for p := range paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		item := decodeObject(paths[p], "paths."+p, logger)
		if item == nil {
			continue
		}
		shared := c.decodeParameters(item["parameters"], p)
		for _, m := range Methods {
			raw, ok := item[string(m)]
			if !ok || isNull(raw) {
				continue
			}
			doc.Operations = append(doc.Operations, c.operation(p, m, raw, shared))
		}
	}
	return doc, nil
}

// components resolves intra-document references to reusable parameters,
// request bodies and responses.
type components struct {
	parameters    map[string]json.RawMessage
	requestBodies map[string]json.RawMessage
	responses     map[string]json.RawMessage
	log           *slog.Logger
}

func (c *components) operation(path string, m HttpMethod, raw json.RawMessage, shared []Parameter) Operation {
	out := Operation{
		Method:     m,
		Path:       path,
		PathParams: PathParams(path),
	}
	var op openapi3.Operation
	if err := json.Unmarshal(raw, &op); err != nil {
		// Keep what can be salvaged so the failure is attributed to the right tags.
		var head struct {
			Tags        []string `json:"tags"`
			OperationID string   `json:"operationId"`
		}
		_ = json.Unmarshal(raw, &head)
		out.OperationID = defaultOperationID(m, path, head.OperationID)
		out.Tags = cleanTags(head.Tags)
		out.Err = fmt.Errorf("decode %s %s: %w", m.Upper(), path, err)
		c.log.Warn("malformed operation", "method", m.Upper(), "path", path, "error", err)
		return out
	}

	out.OperationID = defaultOperationID(m, path, op.OperationID)
	out.Summary = safeStr(op.Summary)
	out.Description = safeStr(op.Description)
	out.Tags = cleanTags(op.Tags)

	// Merge parameters: path-level first, overridden in place by op-level.
	params := append([]Parameter(nil), shared...)
	for _, pref := range op.Parameters {
		pm := c.toParameter(pref)
		if pm == nil {
			continue
		}
		replaced := false
		for i := range params {
			if params[i].In == pm.In && params[i].Name == pm.Name {
				params[i] = *pm
				replaced = true
				break
			}
		}
		if !replaced {
			params = append(params, *pm)
		}
	}
	// Swagger 2.0 body parameters that survived unconverted become the body.
	for _, p := range params {
		if p.In == "body" {
			if out.RequestBody == nil && p.Schema != nil {
				out.RequestBody = &RequestBody{Required: p.Required, Content: []Media{{Mime: "application/json", Schema: p.Schema}}}
			}
			continue
		}
		out.Parameters = append(out.Parameters, p)
	}

	if op.RequestBody != nil {
		if body := c.requestBody(op.RequestBody); body != nil {
			out.RequestBody = &RequestBody{Required: body.Required, Content: toMediaList(body.Content)}
		}
	}

	if op.Responses != nil {
		// In kin-openapi v0.116, Responses is a map[string]*ResponseRef
		codes := make([]string, 0, len(op.Responses))
		for code := range op.Responses {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			resp := c.response(op.Responses[code])
			if resp == nil {
				continue
			}
			desc := ""
			if resp.Description != nil {
				desc = safeStr(*resp.Description)
			}
			out.Responses = append(out.Responses, Response{
				Status:      code,
				Description: desc,
				Content:     toMediaList(resp.Content),
			})
		}
	}
	return out
}

func (c *components) decodeParameters(raw json.RawMessage, path string) []Parameter {
	if raw == nil || isNull(raw) {
		return nil
	}
	var refs openapi3.Parameters
	if err := json.Unmarshal(raw, &refs); err != nil {
		c.log.Warn("skipping malformed path-level parameters", "path", path, "error", err)
		return nil
	}
	var out []Parameter
	for _, pref := range refs {
		if pm := c.toParameter(pref); pm != nil {
			out = append(out, *pm)
		}
	}
	return out
}

func (c *components) toParameter(pref *openapi3.ParameterRef) *Parameter {
	if pref == nil {
		return nil
	}
	p := pref.Value
	if p == nil && pref.Ref != "" {
		p = new(openapi3.Parameter)
		if !c.lookup(c.parameters, pref.Ref, p) {
			return nil
		}
	}
	if p == nil {
		return nil
	}
	pm := &Parameter{
		Name:        safeStr(p.Name),
		In:          safeStr(p.In),
		Required:    p.Required,
		Description: safeStr(p.Description),
	}
	if pm.In == "path" {
		pm.Required = true
	}
	if p.Schema != nil {
		pm.Schema = toSchemaOrRef(p.Schema)
	}
	return pm
}

func (c *components) requestBody(ref *openapi3.RequestBodyRef) *openapi3.RequestBody {
	if ref.Value != nil || ref.Ref == "" {
		return ref.Value
	}
	body := new(openapi3.RequestBody)
	if !c.lookup(c.requestBodies, ref.Ref, body) {
		return nil
	}
	return body
}

func (c *components) response(ref *openapi3.ResponseRef) *openapi3.Response {
	if ref == nil {
		return nil
	}
	if ref.Value != nil || ref.Ref == "" {
		return ref.Value
	}
	resp := new(openapi3.Response)
	if !c.lookup(c.responses, ref.Ref, resp) {
		return nil
	}
	return resp
}

// lookup decodes the component a reference names into dst.
func (c *components) lookup(section map[string]json.RawMessage, ref string, dst any) bool {
	raw, ok := section[RefName(ref)]
	if !ok {
		c.log.Warn("unresolved component reference", "ref", ref)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("malformed component", "ref", ref, "error", err)
		return false
	}
	return true
}

func decodeSchemas(section map[string]json.RawMessage, source string, logger *slog.Logger) map[string]*SchemaOrRef {
	out := make(map[string]*SchemaOrRef, len(section))
	for name, raw := range section {
		var ref openapi3.SchemaRef
		if err := json.Unmarshal(raw, &ref); err != nil {
			logger.Warn("skipping malformed schema", "schema", name, "section", source, "error", err)
			continue
		}
		sor := toSchemaOrRef(&ref)
		if sor == nil {
			continue
		}
		if sor.Schema != nil {
			sor.Schema.Name = name
		}
		out[name] = sor
	}
	return out
}

// decodeObject decodes a JSON object into its raw members. Anything that is
// not an object is logged and treated as absent.
func decodeObject(raw json.RawMessage, what string, logger *slog.Logger) map[string]json.RawMessage {
	if raw == nil || isNull(raw) {
		return nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Warn("expected an object", "at", what, "error", err)
		return nil
	}
	return out
}

// lowerTypeArrays rewrites OpenAPI 3.1 array-valued "type" members, which
// the v3.0 decoder rejects, to the first non-null entry. A "null" entry sets
// nullable.
func lowerTypeArrays(data []byte) ([]byte, bool) {
	if !bytes.Contains(data, []byte(`"type":[`)) && !bytes.Contains(data, []byte(`"type": [`)) {
		return data, false
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return data, false
	}
	if !lowerTypes(doc) {
		return data, false
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return data, false
	}
	return out, true
}

func lowerTypes(v any) bool {
	changed := false
	switch t := v.(type) {
	case map[string]any:
		if list, ok := t["type"].([]any); ok {
			first := ""
			for _, e := range list {
				s, _ := e.(string)
				switch {
				case s == "null":
					t["nullable"] = true
				case first == "" && s != "":
					first = s
				}
			}
			if first == "" {
				delete(t, "type")
			} else {
				t["type"] = first
			}
			changed = true
		}
		for _, child := range t {
			if lowerTypes(child) {
				changed = true
			}
		}
	case []any:
		for _, child := range t {
			if lowerTypes(child) {
				changed = true
			}
		}
	}
	return changed
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func safeStr(s string) string { return strings.TrimSpace(s) }

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func toMediaList(content openapi3.Content) []Media {
	if content == nil {
		return nil
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Media, 0, len(keys))
	for _, mime := range keys {
		mt := content[mime]
		if mt == nil {
			continue
		}
		out = append(out, Media{Mime: mime, Schema: toSchemaOrRef(mt.Schema)})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toSchemaOrRef(ref *openapi3.SchemaRef) *SchemaOrRef {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		return &SchemaOrRef{Ref: &SchemaRef{Ref: ref.Ref}}
	}
	if ref.Value == nil {
		return &SchemaOrRef{Schema: &Schema{}}
	}
	v := ref.Value
	s := &Schema{
		Type:        safeStr(v.Type),
		Description: safeStr(v.Description),
		Format:      safeStr(v.Format),
		Nullable:    v.Nullable,
		Required:    append([]string(nil), v.Required...),
	}
	if len(v.Enum) > 0 {
		s.Enum = append([]any(nil), v.Enum...)
	}
	if v.Items != nil {
		s.Items = toSchemaOrRef(v.Items)
	}
	if v.AdditionalProperties.Schema != nil {
		s.AdditionalProperties = toSchemaOrRef(v.AdditionalProperties.Schema)
	}
	if len(v.Properties) > 0 {
		s.Properties = make(map[string]*SchemaOrRef, len(v.Properties))
		for name, prop := range v.Properties {
			s.Properties[name] = toSchemaOrRef(prop)
		}
	}
	for _, r := range v.AllOf {
		s.AllOf = append(s.AllOf, toSchemaOrRef(r))
	}
	for _, r := range v.AnyOf {
		s.AnyOf = append(s.AnyOf, toSchemaOrRef(r))
	}
	for _, r := range v.OneOf {
		s.OneOf = append(s.OneOf, toSchemaOrRef(r))
	}
	return &SchemaOrRef{Schema: s}
}
