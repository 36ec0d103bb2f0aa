// Package schema validates the two JSON shapes that enter a Document
// from outside the IR pipeline itself: a PKG's ControlTemplates.json
// entries and a source tree's Src/EditorState/*.json sidecars. A
// violation here is reported before either blob reaches TemplateStore
// or EditorStateStore, so a hand-edited or truncated file fails with a
// precise message instead of a confusing downstream nil-pointer-style
// failure deep in IRSplitCombine.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

var templateStateSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"Name"},
	Properties: map[string]*jsonschema.Schema{
		"Name":                {Type: "string"},
		"DisplayName":         {Type: "string"},
		"OriginalName":        {Type: "string"},
		"IsComponentTemplate": {Type: "boolean"},
		"CustomProperties":    {Type: "array"},
	},
}

var controlStateSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"Name"},
	Properties: map[string]*jsonschema.Schema{
		"Name":                  {Type: "string"},
		"TopParentName":         {Type: "string"},
		"PublishOrderIndex":     {Type: "integer"},
		"ParentIndex":           {Type: "integer"},
		"StyleName":             {Type: "string"},
		"Properties":            {Type: "array"},
		"IsComponentDefinition": {Type: "boolean"},
	},
}

// Validator validates TemplateState and ControlState JSON blobs. Built
// once and reused across every shard a Loader reads, since both
// resolved schemas are immutable.
type Validator struct {
	templates     *jsonschema.Resolved
	controlStates *jsonschema.Resolved
	strict        bool
}

// New resolves both schemas. strict controls whether a violation is
// returned as an error (fatal for that file, per the ParseError
// diagnostic kind) or silently tolerated, matching the
// Validation.StrictMode config switch.
func New(strict bool) (*Validator, error) {
	templates, err := templateStateSchema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving template-state schema: %w", err)
	}
	controlStates, err := controlStateSchema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving control-state schema: %w", err)
	}
	return &Validator{templates: templates, controlStates: controlStates, strict: strict}, nil
}

// ValidateTemplateState checks one ControlTemplates.json entry.
func (v *Validator) ValidateTemplateState(raw []byte) error {
	return v.validate(v.templates, raw, "template state")
}

// ValidateControlState checks one Src/EditorState/*.json sidecar.
func (v *Validator) ValidateControlState(raw []byte) error {
	return v.validate(v.controlStates, raw, "control state")
}

func (v *Validator) validate(resolved *jsonschema.Resolved, raw []byte, what string) error {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("invalid %s JSON: %w", what, err)
	}
	if err := resolved.Validate(data); err != nil {
		if v.strict {
			return fmt.Errorf("%s schema violation: %w", what, err)
		}
	}
	return nil
}

// Strict reports whether this Validator treats violations as fatal.
func (v *Validator) Strict() bool {
	return v.strict
}
