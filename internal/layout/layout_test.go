package layout

import "testing"

func TestIsKnownPath(t *testing.T) {
	cases := map[string]bool{
		"CanvasManifest.json":                    true,
		"Src/Screen1.pa.yaml":                     true,
		"Src/Components/Gallery1.pa.yaml":         true,
		"Src/Components/Gallery1.json":            true,
		"Src/EditorState/Screen1.editorstate.json": true,
		"Assets/photo.png":                        true,
		"Assets/Resources.json":                   true,
		"Entropy/Entropy.json":                     true,
		"Other/whatever.xml":                       false,
		"Other/nested/deep.json":                   false,
	}
	for p, want := range cases {
		if got := IsKnownPath(p); got != want {
			t.Errorf("IsKnownPath(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestCanonicalizeJSONSortsKeysAndIsStable(t *testing.T) {
	in := []byte(`{"b":1,"a":{"d":2,"c":3}}`)
	want := "{\n  \"a\": {\n    \"c\": 3,\n    \"d\": 2\n  },\n  \"b\": 1\n}\n"
	got := string(CanonicalizeJSON(in))
	if got != want {
		t.Errorf("CanonicalizeJSON = %q, want %q", got, want)
	}
}

func TestCanonicalizeJSONPassesThroughNonJSON(t *testing.T) {
	in := []byte("not json at all")
	if got := string(CanonicalizeJSON(in)); got != "not json at all" {
		t.Errorf("expected non-JSON input returned unchanged, got %q", got)
	}
}

func TestPathBuilders(t *testing.T) {
	if got := ScreenPath("Screen1"); got != "Src/Screen1.pa.yaml" {
		t.Errorf("ScreenPath = %q", got)
	}
	if got := ComponentTemplatePath("Gallery1"); got != "Src/Components/Gallery1.json" {
		t.Errorf("ComponentTemplatePath = %q", got)
	}
	if got := EditorStatePath("Screen1"); got != "Src/EditorState/Screen1.editorstate.json" {
		t.Errorf("EditorStatePath = %q", got)
	}
	if got := AssetPath("photo.png"); got != "Assets/photo.png" {
		t.Errorf("AssetPath = %q", got)
	}
}
