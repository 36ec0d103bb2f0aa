package entropy

import (
	"encoding/json"
	"testing"
)

func TestNextControlUniqueIDScenario(t *testing.T) {
	e := New()
	e.ControlUniqueIDs["ctrlName"] = 42
	if got := e.NextControlUniqueID(); got != 43 {
		t.Errorf("NextControlUniqueID = %d, want 43", got)
	}
}

func TestNextControlUniqueIDEmpty(t *testing.T) {
	e := New()
	if got := e.NextControlUniqueID(); got != 1 {
		t.Errorf("NextControlUniqueID on empty = %d, want 1", got)
	}
}

func TestNextAssetNumericName(t *testing.T) {
	e := New()
	e.LocalResourceFileNames["0041"] = "Photo.png"
	if got := e.NextAssetNumericName(); got != "0042" {
		t.Errorf("NextAssetNumericName = %q, want 0042", got)
	}
}

func TestUnmarshalPreservesUnknownFields(t *testing.T) {
	raw := `{
		"controlUniqueIds": {"Screen1": 1},
		"localResourceFileNames": {},
		"resourceOrder": {},
		"volatileProperties": {},
		"dataSourceOrder": {},
		"futureField": {"x": 1}
	}`
	var e Entropy
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := e.Extra["futureField"]; !ok {
		t.Error("expected futureField to be preserved in Extra")
	}

	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var roundTrip map[string]json.RawMessage
	if err := json.Unmarshal(out, &roundTrip); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if _, ok := roundTrip["futureField"]; !ok {
		t.Error("expected futureField to survive marshal round trip")
	}
}
