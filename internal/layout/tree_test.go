package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/model"
)

func sampleDocument() *model.Document {
	doc := model.New()
	doc.FormatVersion = "0.18"
	doc.ScreenOrder = []string{"Screen1"}
	doc.Screens["Screen1"] = &model.IRBlock{
		Name: model.TypedName{Identifier: "Screen1", Kind: model.TypeRef{TypeName: "Screen"}},
		Properties: []model.PropNode{
			{Identifier: "Fill", Expression: "RGBA(255, 255, 255, 1)"},
		},
	}
	doc.Templates["Screen"] = &model.TemplateState{Name: "Screen", DisplayName: "Screen"}
	doc.EditorStates["Screen1"] = &model.ControlState{
		Name:              "Screen1",
		TopParentName:     "Screen1",
		PublishOrderIndex: 0,
		ParentIndex:       0,
		StyleName:         "defaultScreenStyle",
	}
	doc.Assets["logo.png"] = &model.AssetBlob{Data: []byte("fake-png")}
	return doc
}

func TestWriteTreeThenReadTreeRoundTrips(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDocument()

	ec := diagnostics.New()
	if err := WriteTree(dir, doc, ec); err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	if ec.HasErrors() {
		t.Fatalf("WriteTree reported errors: %v", ec.Items())
	}

	ec2 := diagnostics.New()
	reloaded, err := ReadTree(dir, nil, ec2)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	if ec2.HasErrors() {
		t.Fatalf("ReadTree reported errors: %v", ec2.Items())
	}

	if reloaded.FormatVersion != doc.FormatVersion {
		t.Errorf("FormatVersion = %q, want %q", reloaded.FormatVersion, doc.FormatVersion)
	}
	screen, ok := reloaded.Screens["Screen1"]
	if !ok {
		t.Fatal("expected Screen1 to round-trip")
	}
	if len(screen.Properties) != 1 || screen.Properties[0].Expression != "RGBA(255, 255, 255, 1)" {
		t.Errorf("unexpected screen properties: %+v", screen.Properties)
	}
	if _, ok := reloaded.Templates["Screen"]; !ok {
		t.Error("expected Screen template to round-trip")
	}
	if _, ok := reloaded.EditorStates["Screen1"]; !ok {
		t.Error("expected Screen1 editor state to round-trip")
	}
	if _, ok := reloaded.Assets["logo.png"]; !ok {
		t.Error("expected logo.png asset to round-trip")
	}
}

func TestReadTreeRejectsMissingManifest(t *testing.T) {
	dir := t.TempDir()
	ec := diagnostics.New()
	if _, err := ReadTree(dir, nil, ec); err == nil {
		t.Error("expected error for missing CanvasManifest.json")
	}
}

func TestReadTreeAppliesEntropyOverrides(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDocument()

	ec := diagnostics.New()
	if err := WriteTree(dir, doc, ec); err != nil {
		t.Fatalf("WriteTree: %v", err)
	}

	overridesPath := filepath.Join(dir, filepath.FromSlash(EntropyOverridesFile))
	if err := os.MkdirAll(filepath.Dir(overridesPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	overridesTOML := "[control_unique_ids]\nScreen1 = 99\nGhostControl = 5\n"
	if err := os.WriteFile(overridesPath, []byte(overridesTOML), 0o644); err != nil {
		t.Fatalf("writing overrides: %v", err)
	}

	ec2 := diagnostics.New()
	reloaded, err := ReadTree(dir, nil, ec2)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}

	if got := reloaded.Entropy.ControlUniqueIDs["Screen1"]; got != 99 {
		t.Errorf("Screen1 controlUniqueId = %d, want 99 (pinned by override)", got)
	}
	if _, ok := reloaded.Entropy.ControlUniqueIDs["GhostControl"]; ok {
		t.Error("override for a control absent from the tree should not be applied")
	}

	var sawWarning bool
	for _, d := range ec2.Items() {
		if d.Code == diagnostics.CodeValidationWarning {
			sawWarning = true
		}
	}
	if !sawWarning {
		t.Error("expected a ValidationWarning diagnostic for the unknown-control override")
	}
}
