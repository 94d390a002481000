package spec

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleSpec = `{
  "openapi": "3.0.0",
  "info": {"title": "Sample API", "version": "1.0.0"},
  "paths": {
    "/api/widgets/{widget_id}/parts/{part_id}": {
      "parameters": [
        {"in": "query", "name": "expand", "schema": {"type": "boolean"}},
        {"$ref": "#/components/parameters/Page"}
      ],
      "get": {
        "tags": ["widgets", "parts"],
        "parameters": [
          {"in": "path", "name": "widget_id", "required": true, "schema": {"type": "integer"}},
          {"in": "path", "name": "part_id", "required": true, "schema": {"type": "string"}},
          {"in": "query", "name": "expand", "required": true, "schema": {"type": "boolean"}},
          {"in": "query", "name": "q", "schema": {"type": "string"}}
        ],
        "responses": {
          "200": {"$ref": "#/components/responses/PartOK"},
          "404": {"description": "missing"}
        }
      },
      "options": {"tags": ["ignored"]}
    },
    "/api/widgets": {
      "post": {
        "tags": ["widgets"],
        "operationId": "widgets_create",
        "requestBody": {"$ref": "#/components/requestBodies/WidgetBody"},
        "responses": {"201": {"description": "created", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Ghost"}}}}}
      }
    },
    "/api/broken": {
      "get": {"tags": ["bad"], "operationId": "broken", "parameters": "not-a-list"}
    }
  },
  "components": {
    "parameters": {
      "Page": {"in": "query", "name": "page", "schema": {"type": "integer"}}
    },
    "requestBodies": {
      "WidgetBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/WidgetCreate"}}}}
    },
    "responses": {
      "PartOK": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Part"}}}}
    },
    "schemas": {
      "WidgetCreate": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}, "meta": {"type": "object", "additionalProperties": {"type": "integer"}}}},
      "Part": {"type": "object", "properties": {"id": {"type": "string", "nullable": true}}},
      "Broken": {"type": 42}
    }
  }
}`

func parseSample(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(context.Background(), []byte(sampleSpec), "sample.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func findOp(t *testing.T, doc *Document, m HttpMethod, path string) Operation {
	t.Helper()
	for _, op := range doc.Operations {
		if op.Method == m && op.Path == path {
			return op
		}
	}
	t.Fatalf("operation %s %s not found", m, path)
	return Operation{}
}

func TestParse_OperationsInStableOrder(t *testing.T) {
	t.Parallel()
	doc := parseSample(t)
	var got []string
	for _, op := range doc.Operations {
		got = append(got, op.Method.Upper()+" "+op.Path)
	}
	want := []string{
		"GET /api/broken",
		"POST /api/widgets",
		"GET /api/widgets/{widget_id}/parts/{part_id}",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ParameterMerging(t *testing.T) {
	t.Parallel()
	doc := parseSample(t)
	op := findOp(t, doc, GET, "/api/widgets/{widget_id}/parts/{part_id}")

	type param struct {
		Name, In string
		Required bool
	}
	var got []param
	for _, p := range op.Parameters {
		got = append(got, param{p.Name, p.In, p.Required})
	}
	want := []param{
		{"expand", "query", true}, // overridden in place by the operation
		{"page", "query", false},  // resolved from components.parameters
		{"widget_id", "path", true},
		{"part_id", "path", true},
		{"q", "query", false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("parameters mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"widget_id", "part_id"}, op.PathParams); diff != "" {
		t.Fatalf("path params mismatch (-want +got):\n%s", diff)
	}
	if op.OperationID != "get_api_widgets_widget_id_parts_part_id" {
		t.Fatalf("default operationId: got %q", op.OperationID)
	}
}

func TestParse_ComponentReferences(t *testing.T) {
	t.Parallel()
	doc := parseSample(t)

	get := findOp(t, doc, GET, "/api/widgets/{widget_id}/parts/{part_id}")
	if got := get.SuccessSchema().RefName(); got != "Part" {
		t.Fatalf("success schema: got %q", got)
	}

	post := findOp(t, doc, POST, "/api/widgets")
	if post.RequestBody == nil || !post.RequestBody.Required {
		t.Fatalf("expected required request body from components.requestBodies")
	}
	if got := post.BodySchema().RefName(); got != "WidgetCreate" {
		t.Fatalf("body schema: got %q", got)
	}
	// Dangling references are kept as-is.
	if got := post.SuccessSchema().RefName(); got != "Ghost" {
		t.Fatalf("dangling ref: got %q", got)
	}
}

func TestParse_SchemasDecodedIndividually(t *testing.T) {
	t.Parallel()
	doc := parseSample(t)
	if doc.SchemaSource != "components.schemas" {
		t.Fatalf("schema source: %q", doc.SchemaSource)
	}
	if _, ok := doc.Schemas["Broken"]; ok {
		t.Fatalf("malformed schema should be skipped")
	}
	wc := doc.Schemas["WidgetCreate"]
	if wc == nil || wc.Schema == nil {
		t.Fatalf("missing WidgetCreate")
	}
	if wc.Schema.Name != "WidgetCreate" || !wc.Schema.IsRequired("name") {
		t.Fatalf("unexpected WidgetCreate: %+v", wc.Schema)
	}
	meta := wc.Schema.Properties["meta"]
	if meta == nil || meta.Schema.AdditionalProperties == nil || meta.Schema.AdditionalProperties.Schema.Type != "integer" {
		t.Fatalf("expected additionalProperties on meta, got %+v", meta)
	}
	if !doc.Schemas["Part"].Schema.Properties["id"].Schema.Nullable {
		t.Fatalf("expected nullable id")
	}
}

func TestParse_MalformedOperationIsIsolated(t *testing.T) {
	t.Parallel()
	doc := parseSample(t)
	broken := findOp(t, doc, GET, "/api/broken")
	if broken.Err == nil {
		t.Fatalf("expected decode error on malformed operation")
	}
	if diff := cmp.Diff([]string{"bad"}, broken.Tags); diff != "" {
		t.Fatalf("salvaged tags mismatch (-want +got):\n%s", diff)
	}
	if broken.OperationID != "broken" {
		t.Fatalf("salvaged operationId: got %q", broken.OperationID)
	}
	if findOp(t, doc, POST, "/api/widgets").Err != nil {
		t.Fatalf("well-formed operation should decode")
	}
}

func TestParse_LegacyDefinitionsFallback(t *testing.T) {
	t.Parallel()
	raw := `{
  "info": {"title": "No version key"},
  "paths": {"/pets": {"get": {"tags": ["pets"], "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/definitions/Pet"}}}}}}}},
  "definitions": {"Pet": {"type": "object", "properties": {"name": {"type": "string"}}}}
}`
	doc, err := Parse(context.Background(), []byte(raw), "legacy.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.SchemaSource != "definitions" {
		t.Fatalf("schema source: got %q", doc.SchemaSource)
	}
	if _, ok := doc.Schemas["Pet"]; !ok {
		t.Fatalf("expected Pet from definitions")
	}
	if got := doc.Operations[0].SuccessSchema().RefName(); got != "Pet" {
		t.Fatalf("ref name: got %q", got)
	}
}

func TestParse_TypeArraysLowered(t *testing.T) {
	t.Parallel()
	raw := `{
  "openapi": "3.1.0",
  "info": {"title": "t", "version": "1"},
  "paths": {"/notes/{id}": {"get": {
    "tags": ["notes"],
    "parameters": [{"in": "path", "name": "id", "required": true, "schema": {"type": ["integer", "null"]}}],
    "responses": {"200": {"description": "ok"}}
  }}},
  "components": {"schemas": {"Note": {"type": "object", "properties": {"title": {"type": ["string", "null"]}}}}}
}`
	doc, err := Parse(context.Background(), []byte(raw), "notes.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Operations) != 1 || doc.Operations[0].Err != nil {
		t.Fatalf("expected one decoded operation, got %+v", doc.Operations)
	}
	id := doc.Operations[0].PathParameters()[0].Schema.Schema
	if id.Type != "integer" || !id.Nullable {
		t.Fatalf("id schema: got type %q nullable %v", id.Type, id.Nullable)
	}
	title := doc.Schemas["Note"].Schema.Properties["title"].Schema
	if title.Type != "string" || !title.Nullable {
		t.Fatalf("title schema: got type %q nullable %v", title.Type, title.Nullable)
	}
}
