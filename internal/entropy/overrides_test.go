package entropy

import (
	"testing"

	"github.com/paconv/paconv/internal/diagnostics"
)

func TestParseOverridesEmpty(t *testing.T) {
	ov, err := ParseOverrides(nil)
	if err != nil {
		t.Fatalf("ParseOverrides(nil) error: %v", err)
	}
	if len(ov.ControlUniqueIDs) != 0 || len(ov.ResourceOrder) != 0 {
		t.Errorf("ParseOverrides(nil) = %+v, want empty maps", ov)
	}
}

func TestParseOverridesDecodesTOML(t *testing.T) {
	raw := []byte(`
[control_unique_ids]
Label1 = 7

[resource_order]
"logo.png" = 2
`)
	ov, err := ParseOverrides(raw)
	if err != nil {
		t.Fatalf("ParseOverrides error: %v", err)
	}
	if ov.ControlUniqueIDs["Label1"] != 7 {
		t.Errorf("ControlUniqueIDs[Label1] = %d, want 7", ov.ControlUniqueIDs["Label1"])
	}
	if ov.ResourceOrder["logo.png"] != 2 {
		t.Errorf("ResourceOrder[logo.png] = %d, want 2", ov.ResourceOrder["logo.png"])
	}
}

func TestApplyPinsKnownControlAndWarnsOnUnknown(t *testing.T) {
	e := New()
	ov := &Overrides{ControlUniqueIDs: map[string]int{
		"Label1":  7,
		"Ghost42": 9,
	}}
	ec := diagnostics.New()
	Apply(e, ov, map[string]bool{"Label1": true}, ec)

	if e.ControlUniqueIDs["Label1"] != 7 {
		t.Errorf("ControlUniqueIDs[Label1] = %d, want 7", e.ControlUniqueIDs["Label1"])
	}
	if _, ok := e.ControlUniqueIDs["Ghost42"]; ok {
		t.Errorf("override for unknown control Ghost42 should not be applied")
	}

	var sawWarning bool
	for _, d := range ec.Items() {
		if d.Code == diagnostics.CodeValidationWarning {
			sawWarning = true
		}
	}
	if !sawWarning {
		t.Errorf("expected a ValidationWarning diagnostic for the unknown control override")
	}
}
