package spec

import (
	"encoding/json"
	"fmt"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
)

// convertV2ToV3 converts a Swagger 2.0 JSON document into OpenAPI v3 JSON.
// Operations the converter rejects are rewritten first.
func convertV2ToV3(data []byte) (out []byte, err error) {
	if fixed, changed, perr := preprocessV2(data); perr == nil && changed {
		data = fixed
	}
	var v2 openapi2.T
	if err := json.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	// The converter dereferences parts of the document without nil checks.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("openapi2conv: %v", r)
		}
	}()
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v3)
}

// preprocessV2 rewrites operations that openapi2conv refuses:
//   - body and formData parameters mixed in one operation: the body
//     parameters become formData ones and multipart/form-data is consumed.
//   - more than one body parameter: they merge into a single object body
//     with one property per original parameter.
func preprocessV2(data []byte) ([]byte, bool, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return data, false, err
	}
	modified := false
	eachOperation(doc, func(op map[string]any) {
		params, _ := op["parameters"].([]any)
		bodies, hasForm := 0, false
		for _, p := range params {
			pm, _ := p.(map[string]any)
			switch {
			case pm == nil:
			case isIn(pm, "body"):
				bodies++
			case isIn(pm, "formData"):
				hasForm = true
			}
		}
		switch {
		case bodies == 0:
		case hasForm:
			out := make([]any, 0, len(params))
			for _, p := range params {
				if pm, _ := p.(map[string]any); pm != nil && isIn(pm, "body") {
					out = append(out, formDataFromBody(pm))
					continue
				}
				out = append(out, p)
			}
			op["parameters"] = out
			consumes, _ := op["consumes"].([]any)
			if !containsString(consumes, "multipart/form-data") {
				op["consumes"] = append(consumes, "multipart/form-data")
			}
			modified = true
		case bodies > 1:
			op["parameters"] = mergeBodies(params)
			modified = true
		}
	})
	if !modified {
		return data, false, nil
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return data, false, err
	}
	return out, true, nil
}

func mergeBodies(params []any) []any {
	props := map[string]any{}
	var required []any
	rest := make([]any, 0, len(params))
	for _, p := range params {
		pm, _ := p.(map[string]any)
		if pm == nil || !isIn(pm, "body") {
			rest = append(rest, p)
			continue
		}
		name := asString(pm["name"])
		if name == "" {
			name = "field"
		}
		schema := schemaOfParam(pm)
		if schema == nil {
			schema = map[string]any{"type": "string"}
		}
		props[name] = schema
		if req, _ := pm["required"].(bool); req {
			required = append(required, name)
		}
	}
	body := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		body["required"] = required
	}
	return append([]any{map[string]any{"in": "body", "name": "body", "schema": body}}, rest...)
}

// formDataFromBody turns a body parameter into a formData one. Referenced
// objects cannot travel as form fields and degrade to string.
func formDataFromBody(pm map[string]any) map[string]any {
	name := asString(pm["name"])
	if name == "" {
		name = "field"
	}
	out := map[string]any{"in": "formData", "name": name}
	if d := asString(pm["description"]); d != "" {
		out["description"] = d
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	src := pm
	if sch, ok := pm["schema"].(map[string]any); ok {
		src = sch
	}
	typ := asString(src["type"])
	if typ == "" || typ == "object" {
		typ = "string"
	}
	out["type"] = typ
	if items, ok := src["items"].(map[string]any); ok && typ == "array" {
		out["items"] = items
	}
	if f := asString(src["format"]); f != "" {
		out["format"] = f
	}
	return out
}

// liftLegacyShapes moves Swagger 2.0 constructs the v3 decoder ignores into
// their v3 places: parameter type, format, items and enum into a schema, and
// response schemas into application/json content. It is used when
// conversion failed and the document is read as-is.
func liftLegacyShapes(data []byte) []byte {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return data
	}
	lift := func(params []any) {
		for _, p := range params {
			pm, _ := p.(map[string]any)
			if pm == nil || isIn(pm, "body") {
				continue
			}
			if _, ok := pm["schema"]; ok {
				continue
			}
			if s := schemaOfParam(pm); s != nil {
				pm["schema"] = s
			}
		}
	}
	if params, ok := doc["parameters"].(map[string]any); ok {
		for _, p := range params {
			lift([]any{p})
		}
	}
	paths, _ := doc["paths"].(map[string]any)
	for _, pim := range paths {
		if item, ok := pim.(map[string]any); ok {
			shared, _ := item["parameters"].([]any)
			lift(shared)
		}
	}
	liftResponses := func(responses map[string]any) {
		for _, r := range responses {
			rm, _ := r.(map[string]any)
			if rm == nil {
				continue
			}
			schema, ok := rm["schema"]
			if !ok {
				continue
			}
			if _, has := rm["content"]; !has {
				rm["content"] = map[string]any{"application/json": map[string]any{"schema": schema}}
			}
			delete(rm, "schema")
		}
	}
	if responses, ok := doc["responses"].(map[string]any); ok {
		liftResponses(responses)
	}
	eachOperation(doc, func(op map[string]any) {
		params, _ := op["parameters"].([]any)
		lift(params)
		responses, _ := op["responses"].(map[string]any)
		liftResponses(responses)
	})
	out, err := json.Marshal(doc)
	if err != nil {
		return data
	}
	return out
}

// schemaOfParam returns the parameter's schema, or one built from its
// legacy type fields.
func schemaOfParam(pm map[string]any) map[string]any {
	if sch, ok := pm["schema"].(map[string]any); ok {
		return sch
	}
	t := asString(pm["type"])
	if t == "" {
		return nil
	}
	if t == "file" {
		t = "string"
	}
	m := map[string]any{"type": t}
	for _, k := range []string{"items", "format", "enum"} {
		if v, ok := pm[k]; ok {
			m[k] = v
		}
	}
	return m
}

func eachOperation(doc map[string]any, fn func(op map[string]any)) {
	paths, _ := doc["paths"].(map[string]any)
	for _, pim := range paths {
		item, ok := pim.(map[string]any)
		if !ok {
			continue
		}
		for _, m := range Methods {
			if op, ok := item[string(m)].(map[string]any); ok {
				fn(op)
			}
		}
	}
}

func isIn(pm map[string]any, where string) bool {
	return strings.EqualFold(asString(pm["in"]), where)
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
