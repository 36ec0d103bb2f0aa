package assets

import (
	"encoding/json"
	"testing"

	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/entropy"
)

func rawManifest(t *testing.T, entries ...map[string]string) json.RawMessage {
	t.Helper()
	resources := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		resources = append(resources, e)
	}
	doc := map[string]any{"Resources": resources}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	return b
}

func TestStabilizeOnUnpackCaseCollisionScenario(t *testing.T) {
	raw := rawManifest(t,
		map[string]string{"Name": "Photo", "ResourceKind": "LocalFile", "FileName": "a1b2.png"},
		map[string]string{"Name": "photo", "ResourceKind": "LocalFile", "FileName": "c3d4.png"},
	)
	table := NewTable()
	table.Put("a1b2.png", []byte("one"), "a1b2.png")
	table.Put("c3d4.png", []byte("two"), "c3d4.png")

	m := NewManifest(raw)
	ent := entropy.New()
	s := NewStabilizer(table, m, ent)
	ec := diagnostics.New()

	if err := s.StabilizeOnUnpack(ec); err != nil {
		t.Fatalf("StabilizeOnUnpack: %v", err)
	}

	if _, ok := table.Get("Photo.png"); !ok {
		t.Error("expected Photo.png in table")
	}
	if _, ok := table.Get("photo_1.png"); !ok {
		t.Error("expected photo_1.png in table")
	}
	if ent.LocalResourceFileNames["Photo"] != "a1b2.png" {
		t.Errorf("entropy original for Photo = %q, want a1b2.png", ent.LocalResourceFileNames["Photo"])
	}
	if ent.LocalResourceFileNames["photo"] != "c3d4.png" {
		t.Errorf("entropy original for photo = %q, want c3d4.png", ent.LocalResourceFileNames["photo"])
	}
}

func TestRestoreOnPackRestoresOriginalNames(t *testing.T) {
	raw := rawManifest(t,
		map[string]string{"Name": "Photo", "ResourceKind": "LocalFile", "FileName": "Photo.png"},
		map[string]string{"Name": "photo", "ResourceKind": "LocalFile", "FileName": "photo_1.png"},
	)
	table := NewTable()
	table.Put("Photo.png", []byte("one"), "Photo.png")
	table.Put("photo_1.png", []byte("two"), "photo_1.png")

	m := NewManifest(raw)
	ent := entropy.New()
	ent.LocalResourceFileNames["Photo"] = "a1b2.png"
	ent.LocalResourceFileNames["photo"] = "c3d4.png"

	s := NewStabilizer(table, m, ent)
	ec := diagnostics.New()
	if err := s.RestoreOnPack(ec); err != nil {
		t.Fatalf("RestoreOnPack: %v", err)
	}

	if _, ok := table.Get("a1b2.png"); !ok {
		t.Error("expected a1b2.png restored in table")
	}
	if _, ok := table.Get("c3d4.png"); !ok {
		t.Error("expected c3d4.png restored in table")
	}
}

func TestRestoreOnPackMintsDeterministicNameWhenEntropyMissing(t *testing.T) {
	raw := rawManifest(t, map[string]string{"Name": "NewPhoto", "ResourceKind": "LocalFile", "FileName": "NewPhoto.png"})
	table := NewTable()
	table.Put("NewPhoto.png", []byte("x"), "NewPhoto.png")

	m := NewManifest(raw)
	ent := entropy.New()
	ent.LocalResourceFileNames["0041"] = "0041.jpg" // unrelated existing entry to establish a max

	s := NewStabilizer(table, m, ent)
	ec := diagnostics.New()
	if err := s.RestoreOnPack(ec); err != nil {
		t.Fatalf("RestoreOnPack: %v", err)
	}
	if _, ok := table.Get("0042.png"); !ok {
		t.Error("expected 0042.png minted for entropy-less resource")
	}
}

func TestLogoRenameScenario(t *testing.T) {
	table := NewTable()
	table.Put("e6c4d3-ab.png", []byte("logo bytes"), "e6c4d3-ab.png")
	publishInfo, err := json.Marshal(map[string]string{"LogoFileName": "e6c4d3-ab.png"})
	if err != nil {
		t.Fatal(err)
	}
	ent := entropy.New()

	newInfo, err := StabilizeLogo(table, publishInfo, ent)
	if err != nil {
		t.Fatalf("StabilizeLogo: %v", err)
	}
	if name, _ := LogoFileName(newInfo); name != "logo.png" {
		t.Errorf("logo file name = %q, want logo.png", name)
	}
	if ent.OldLogoFileName != "e6c4d3-ab.png" {
		t.Errorf("OldLogoFileName = %q, want e6c4d3-ab.png", ent.OldLogoFileName)
	}

	restored, err := RestoreLogo(table, newInfo, ent)
	if err != nil {
		t.Fatalf("RestoreLogo: %v", err)
	}
	if name, _ := LogoFileName(restored); name != "e6c4d3-ab.png" {
		t.Errorf("restored logo name = %q, want e6c4d3-ab.png", name)
	}
}
