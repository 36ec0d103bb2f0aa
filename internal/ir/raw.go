// Package ir implements the heart of the converter: the depth-first
// post-order transform between the PKG's control JSON and the
// (IRBlock, ControlState) pair, and its exact inverse.
package ir

import "encoding/json"

// RawRule is one property rule as it appears in a PKG control's JSON,
// before Split separates it into a PropNode (logical) and a
// PropertyState (presentation).
type RawRule struct {
	Name             string
	Expression       string
	NameMap          map[string]string
	RuleProviderType string
	ExtensionData    json.RawMessage
}

// RawControl is one control subtree as loaded from the PKG's JSON,
// before Split has separated structure from presentation.
type RawControl struct {
	Name                     string
	UniqueID                 int
	TemplateName             string
	VariantName              string
	TopParentName            string
	PublishOrderIndex        int
	StyleName                string
	GalleryTemplateChildName string
	ExtensionData            json.RawMessage
	Rules                    []RawRule
	Children                 []*RawControl
}
