package ir

import "github.com/paconv/paconv/internal/model"

const thisPropertyMetadata = "ThisProperty"

// splitFunctionCustomProperty handles one function-typed custom
// property: it builds the FuncNode and returns a cleared copy of the
// property whose scope-rule fields
// (DefaultRule, ScopePropertyDataType, ParameterIndex,
// ParentPropertyName) are nil, so the registered template does not
// carry data that Combine will reconstruct from the FuncNode itself.
func splitFunctionCustomProperty(cp *model.CustomProperty) (model.FuncNode, model.CustomProperty) {
	fn := model.FuncNode{Identifier: cp.Name}
	clearedRules := make([]model.ScopeRule, len(cp.ScopeRules))

	for i, rule := range cp.ScopeRules {
		typeName := "Unknown"
		if rule.ScopePropertyDataType != nil {
			typeName = *rule.ScopePropertyDataType
		}
		fn.Args = append(fn.Args, model.TypedName{
			Identifier: rule.Name,
			Kind:       model.TypeRef{TypeName: typeName},
		})

		def := ""
		if rule.DefaultRule != nil {
			def = NormalizeExpression(*rule.DefaultRule)
		}
		fn.Metadata = append(fn.Metadata, model.ArgMetadataBlockNode{
			Identifier:        rule.Name,
			DefaultExpression: def,
		})

		clearedRules[i] = model.ScopeRule{Name: rule.Name}
	}

	// The property's own result carries a ThisProperty metadata entry
	// ahead of its arguments' entries; Combine requires it present.
	thisDefault := ""
	if cp.OwnDefaultRule != nil {
		thisDefault = NormalizeExpression(*cp.OwnDefaultRule)
	}
	fn.Metadata = append([]model.ArgMetadataBlockNode{{
		Identifier:        thisPropertyMetadata,
		DefaultExpression: thisDefault,
	}}, fn.Metadata...)

	cleared := model.CustomProperty{
		Name:               cp.Name,
		IsFunctionProperty: true,
		OwnDefaultRule:     nil, // reconstructed from the FuncNode's ThisProperty metadata on combine
		ScopeRules:         clearedRules,
		Raw:                cp.Raw,
	}
	return fn, cleared
}

// buildDefinitionFuncNodes runs splitFunctionCustomProperty over every
// function-typed custom property of a component definition's
// template, returning the FuncNodes for the IRBlock and a cleared copy
// of the template's custom properties for the registry.
func buildDefinitionFuncNodes(tmpl *model.TemplateState) ([]model.FuncNode, []model.CustomProperty) {
	var nodes []model.FuncNode
	cleared := make([]model.CustomProperty, len(tmpl.CustomProperties))
	for i, cp := range tmpl.CustomProperties {
		if !cp.IsFunctionProperty {
			cleared[i] = cp
			continue
		}
		fn, clearedCP := splitFunctionCustomProperty(&cp)
		nodes = append(nodes, fn)
		cleared[i] = clearedCP
	}
	return nodes, cleared
}

// customPropsToHide computes the set of property names that must be
// hidden from the IR's Properties list: for a component definition,
// each function-typed custom property's own name plus each of its
// scope-rule parameter names; for an instance, only the union of
// scope-rule names.
func customPropsToHide(tmpl *model.TemplateState, isDefinition bool) map[string]bool {
	hide := make(map[string]bool)
	if tmpl == nil {
		return hide
	}
	for _, cp := range tmpl.FunctionCustomProperties() {
		if isDefinition {
			hide[cp.Name] = true
		}
		for _, name := range cp.ScopeRuleNames() {
			hide[name] = true
		}
	}
	return hide
}
