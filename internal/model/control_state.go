package model

import "encoding/json"

// PropertyState is the editor-state sidecar for one property.
type PropertyState struct {
	PropertyName     string
	NameMap          map[string]string // optional; nil when absent
	RuleProviderType string
	ExtensionData    json.RawMessage // opaque, never re-shaped
}

// ControlState is the per-control presentation metadata that the IR
// tree itself does not carry: ordering, style, and whatever extension
// fields the PKG format requires for round-trip but that this tool
// does not interpret.
type ControlState struct {
	Name                     string
	TopParentName            string
	PublishOrderIndex        int
	ParentIndex              int
	StyleName                string
	Properties               []PropertyState
	ExtensionData            json.RawMessage
	IsComponentDefinition    bool
	GalleryTemplateChildName string // empty means absent
}

// PropertyOrder returns the property names in the order ControlState
// recorded them at split time, used to restore rule order on combine.
func (cs *ControlState) PropertyOrder() []string {
	order := make([]string, len(cs.Properties))
	for i, p := range cs.Properties {
		order[i] = p.PropertyName
	}
	return order
}

// PropertyStateByName looks up a PropertyState by property name.
func (cs *ControlState) PropertyStateByName(name string) (PropertyState, bool) {
	for _, p := range cs.Properties {
		if p.PropertyName == name {
			return p, true
		}
	}
	return PropertyState{}, false
}
