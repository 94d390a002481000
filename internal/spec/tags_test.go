package spec

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractTags_SortedAndDistinct(t *testing.T) {
	t.Parallel()
	doc := parseSample(t)
	got := doc.ExtractTags()
	if diff := cmp.Diff([]string{"bad", "parts", "widgets"}, got); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractTags_NoPaths(t *testing.T) {
	t.Parallel()
	doc, err := Parse(context.Background(), []byte(`{"openapi": "3.0.0", "info": {"title": "x"}}`), "empty.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.HasPaths {
		t.Fatalf("expected HasPaths=false")
	}
	if tags := doc.ExtractTags(); len(tags) != 0 {
		t.Fatalf("expected no tags, got %v", tags)
	}
}

func TestCollectOperations(t *testing.T) {
	t.Parallel()
	doc := parseSample(t)
	ops := doc.CollectOperations("widgets")
	var got []string
	for _, op := range ops {
		got = append(got, op.OperationID)
	}
	want := []string{"widgets_create", "get_api_widgets_widget_id_parts_part_id"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
	if len(doc.CollectOperations("nobody")) != 0 {
		t.Fatalf("unknown tag should collect nothing")
	}
}

func TestFilterTags(t *testing.T) {
	t.Parallel()
	tags := []string{"a", "b", "c"}
	cases := []struct {
		name             string
		include, exclude []string
		want             []string
	}{
		{"all", nil, nil, []string{"a", "b", "c"}},
		{"include", []string{"b", " c "}, nil, []string{"b", "c"}},
		{"exclude", nil, []string{"a"}, []string{"b", "c"}},
		{"both", []string{"a", "b"}, []string{"b"}, []string{"a"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterTags(tags, tc.include, tc.exclude)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPathParams(t *testing.T) {
	t.Parallel()
	cases := map[string][]string{
		"/a/{x}/b/{y}":     {"x", "y"},
		"/api/widgets":     nil,
		"/files/{name}.js": nil,
		"/{ id }":          {"id"},
		"/{}":              nil,
	}
	for path, want := range cases {
		if diff := cmp.Diff(want, PathParams(path)); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", path, diff)
		}
	}
}

func TestDefaultOperationID(t *testing.T) {
	t.Parallel()
	if got := defaultOperationID(GET, "/api/widgets/{id}", ""); got != "get_api_widgets_id" {
		t.Fatalf("got %q", got)
	}
	if got := defaultOperationID(POST, "/", ""); got != "post" {
		t.Fatalf("root path: got %q", got)
	}
	if got := defaultOperationID(GET, "/x", " keep_me "); got != "keep_me" {
		t.Fatalf("explicit id: got %q", got)
	}
}
