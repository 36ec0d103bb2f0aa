package model

import "encoding/json"

// ScopeRule is one parameter of a function-typed custom property (the
// property's own result is CustomProperty.OwnDefaultRule). The four fields are represented as
// pointers so "absent" is explicit rather than inferred from a zero
// value: Split clears them and Combine rewrites them from the IR's
// function-node arguments and metadata.
type ScopeRule struct {
	Name                  string
	DefaultRule           *string
	ScopePropertyDataType *string
	ParameterIndex        *int
	ParentPropertyName    *string
}

// CustomProperty describes one custom property on a component
// template. Only function-typed properties carry ScopeRules.
type CustomProperty struct {
	Name               string
	IsFunctionProperty bool
	// OwnDefaultRule is the function property's own default expression
	// (the source of the IR's "ThisProperty" metadata entry), distinct
	// from each scope rule's per-argument default.
	OwnDefaultRule *string
	ScopeRules     []ScopeRule
	Raw            json.RawMessage
}

// ScopeRuleNames returns the names of all of this property's scope
// rules, used to compute the set of rule names a function property
// hides from its owning control's plain property list.
func (cp *CustomProperty) ScopeRuleNames() []string {
	names := make([]string, len(cp.ScopeRules))
	for i, r := range cp.ScopeRules {
		names[i] = r.Name
	}
	return names
}

// TemplateState is a faithful reflection of the PKG's template JSON,
// plus two locally-tracked flags. Fields this tool does not interpret
// live in Raw, an opaque ordered JSON bag that is never re-shaped
// through a typed struct.
type TemplateState struct {
	Name                string
	DisplayName         string
	OriginalName        string
	IsComponentTemplate bool
	CustomProperties    []CustomProperty
	Raw                 json.RawMessage
}

// FunctionCustomProperties returns the subset of CustomProperties that
// are function-typed, in declaration order.
func (t *TemplateState) FunctionCustomProperties() []*CustomProperty {
	var out []*CustomProperty
	for i := range t.CustomProperties {
		if t.CustomProperties[i].IsFunctionProperty {
			out = append(out, &t.CustomProperties[i])
		}
	}
	return out
}

// CustomPropertyByName looks up a custom property by name.
func (t *TemplateState) CustomPropertyByName(name string) (*CustomProperty, bool) {
	for i := range t.CustomProperties {
		if t.CustomProperties[i].Name == name {
			return &t.CustomProperties[i], true
		}
	}
	return nil, false
}

// DisplayOrName returns DisplayName if set, otherwise Name — the value
// a control's TypedName.Kind.TypeName is rendered from.
func (t *TemplateState) DisplayOrName() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Name
}
