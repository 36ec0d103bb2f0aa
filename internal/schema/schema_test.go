package schema

import "testing"

func TestValidateTemplateStateAcceptsWellFormedBlob(t *testing.T) {
	v, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	raw := []byte(`{"Name": "Button", "DisplayName": "Button", "CustomProperties": []}`)
	if err := v.ValidateTemplateState(raw); err != nil {
		t.Errorf("expected valid template to pass, got: %v", err)
	}
}

func TestValidateTemplateStateRejectsMissingName(t *testing.T) {
	v, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	raw := []byte(`{"DisplayName": "Button"}`)
	if err := v.ValidateTemplateState(raw); err == nil {
		t.Error("expected error for missing Name field")
	}
}

func TestValidateControlStateNonStrictSwallowsViolations(t *testing.T) {
	v, err := New(false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	raw := []byte(`{"StyleName": "defaultButtonStyle"}`)
	if err := v.ValidateControlState(raw); err != nil {
		t.Errorf("non-strict validator should not return an error, got: %v", err)
	}
}

func TestValidateControlStateRejectsInvalidJSON(t *testing.T) {
	v, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := v.ValidateControlState([]byte("not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
