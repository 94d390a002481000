package plan

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mark3labs/swagger2hooks/internal/spec"
)

func TestNaming(t *testing.T) {
	t.Parallel()
	cases := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{Pascal, "widgets_list", "WidgetsList"},
		{Pascal, "listWidgets", "ListWidgets"},
		{Pascal, "pet store", "PetStore"},
		{Camel, "widgets_list", "widgetsList"},
		{Camel, "ListWidgets", "listWidgets"},
		{Camel, "delete", "delete_"},
		{Camel, "get_api_widgets_id", "getApiWidgetsId"},
		{UpperSnake, "pet-store", "PET_STORE"},
		{UpperSnake, "Widgets", "WIDGETS"},
		{FileName, "Pet Store", "Pet-Store"},
		{FileName, "a/b", "a-b"},
		{FileName, "..", "default"},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Errorf("%q: got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNamesFor(t *testing.T) {
	t.Parallel()
	want := TagNames{
		Tag:       "pet-store",
		File:      "pet-store",
		Pascal:    "PetStore",
		Upper:     "PET_STORE",
		Service:   "PetStoreService",
		Interface: "IPetStoreService",
		Instance:  "petStoreService",
	}
	if diff := cmp.Diff(want, NamesFor("pet-store")); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEndpointKeys(t *testing.T) {
	t.Parallel()
	cases := []struct {
		keyer EndpointKeyer
		m     spec.HttpMethod
		path  string
		want  string
	}{
		{CollapseKeys, spec.GET, "/api/widgets", "GET_WIDGETS"},
		{CollapseKeys, spec.GET, "/api/widgets/{id}", "GET_WIDGETS_ID"},
		{CollapseKeys, spec.POST, "/api/widgets/", "POST_WIDGETS"},
		{CollapseKeys, spec.GET, "/api/v1/users/{user_id}/avatar-image", "GET_USERS_ID_AVATAR_IMAGE"},
		{CollapseKeys, spec.GET, "/a/{x}/b/{y}", "GET_A_ID_B_ID"},
		{CollapseKeys, spec.GET, "/widgets/api", "GET_WIDGETS_API"},
		{CollapseKeys, spec.DELETE, "/", "DELETE"},
		{NumberedKeys, spec.GET, "/a/{x}/b/{y}", "GET_A_ID_B_ID2"},
		{NumberedKeys, spec.GET, "/a/{x}/b/{y}/c/{z}", "GET_A_ID_B_ID2_C_ID3"},
		{NumberedKeys, spec.PATCH, "/widgets/{id}", "PATCH_WIDGETS_ID"},
	}
	for _, tc := range cases {
		if got := tc.keyer.EndpointKey(tc.m, tc.path); got != tc.want {
			t.Errorf("%s %s: got %q, want %q", tc.m, tc.path, got, tc.want)
		}
	}
}

func TestKeyerByName(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"", "collapse", "Numbered"} {
		if _, err := KeyerByName(name); err != nil {
			t.Errorf("%q: %v", name, err)
		}
	}
	if _, err := KeyerByName("hash"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestURLTemplate(t *testing.T) {
	t.Parallel()
	got := URLTemplate("/api/widgets/{widget-id}/parts/{part}", map[string]string{"part": "p"})
	if want := "/api/widgets/${widget_id}/parts/${p}"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := URLTemplate("/a`b", nil); got != "/a\\`b" {
		t.Fatalf("backtick: got %q", got)
	}
}
