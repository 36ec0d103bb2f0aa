package pkgio

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/model"
)

func buildTestArchive(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func minimalScreenControl() string {
	return `{
		"Name": "Screen1",
		"UniqueID": 1,
		"TemplateName": "Screen",
		"PublishOrderIndex": 0,
		"Rules": [{"Name": "Fill", "Expression": "RGBA(1,2,3,1)"}],
		"Children": []
	}`
}

func TestLoadRejectsUnsupportedFormatVersion(t *testing.T) {
	manifest, _ := json.Marshal(canvasManifest{FormatVersionMajor: 0, FormatVersionMinor: 1})
	archive := buildTestArchive(t, map[string]string{
		entryCanvasManifest: string(manifest),
	})
	loader, err := NewLoader(archive)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	ec := diagnostics.New()
	if _, err := loader.Load(ec); err == nil {
		t.Fatal("expected format-version error, got nil")
	}
	if !ec.HasErrors() {
		t.Error("expected a fatal diagnostic to be recorded")
	}
}

func TestLoadThenWriteRoundTripsScreenAndEntropy(t *testing.T) {
	manifest, _ := json.Marshal(canvasManifest{
		FormatVersionMajor: CurrentFormatVersionMajor,
		FormatVersionMinor: CurrentFormatVersionMinor,
		ScreenOrder:        []string{"Screen1"},
	})
	archive := buildTestArchive(t, map[string]string{
		entryCanvasManifest:     string(manifest),
		entryControlTemplates:   `[]`,
		"controls/Screen1.json": minimalScreenControl(),
		entryResources:          `{"Resources":[]}`,
	})

	loader, err := NewLoader(archive)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	ec := diagnostics.New()
	doc, err := loader.Load(ec)
	if err != nil {
		t.Fatalf("Load: %v (diagnostics: %v)", err, ec.Items())
	}

	screen, ok := doc.Screens["Screen1"]
	if !ok {
		t.Fatal("expected Screen1 in doc.Screens")
	}
	if len(screen.Properties) != 1 || screen.Properties[0].Identifier != "Fill" {
		t.Fatalf("unexpected properties: %+v", screen.Properties)
	}
	if doc.Entropy.ControlUniqueIDs["Screen1"] != 1 {
		t.Errorf("ControlUniqueIDs[Screen1] = %d, want 1", doc.Entropy.ControlUniqueIDs["Screen1"])
	}

	doc.State = model.StateWritable
	writer := NewWriter(doc)
	writeEC := diagnostics.New()
	out, err := writer.WritePkg(writeEC)
	if err != nil {
		t.Fatalf("WritePkg: %v (diagnostics: %v)", err, writeEC.Items())
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty archive bytes")
	}

	reloaded, err := NewLoader(out)
	if err != nil {
		t.Fatalf("NewLoader on written archive: %v", err)
	}
	reloadEC := diagnostics.New()
	doc2, err := reloaded.Load(reloadEC)
	if err != nil {
		t.Fatalf("reload Load: %v (diagnostics: %v)", err, reloadEC.Items())
	}
	screen2, ok := doc2.Screens["Screen1"]
	if !ok {
		t.Fatal("expected Screen1 after round trip")
	}
	if len(screen2.Properties) != 1 || screen2.Properties[0].Identifier != "Fill" {
		t.Fatalf("unexpected properties after round trip: %+v", screen2.Properties)
	}
}
