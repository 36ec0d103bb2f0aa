package ir

import (
	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/editorstate"
	"github.com/paconv/paconv/internal/entropy"
	"github.com/paconv/paconv/internal/model"
	"github.com/paconv/paconv/internal/template"
)

// SplitContext carries everything a Split pass needs beyond the
// control subtree itself: the PKG's loaded templates (source data, not
// yet registered into the store this pass populates), the entropy
// side-channel being written, and whether the subtree is rooted inside
// a test suite (where the control-identifier uniqueness requirement is
// relaxed).
type SplitContext struct {
	PKGTemplates map[string]*model.TemplateState
	Store        *template.Store
	EditorStates *editorstate.Store
	Entropy      *entropy.Entropy
	InTestSuite  bool
}

// Split turns one PKG control subtree into an IRBlock plus ControlState
// entries registered into ctx.EditorStates, depth first, post order.
// parentIndex is this control's position among its original raw
// siblings, recorded into its own ControlState for Combine to restore.
func Split(raw *RawControl, parentIndex int, ctx *SplitContext, ec *diagnostics.ErrorContainer) (*model.IRBlock, error) {
	// Step 1: recurse into children first, collecting (childIR, zIndex).
	childSplits := make([]childSplit, 0, len(raw.Children))
	for i, child := range raw.Children {
		childIR, err := Split(child, i, ctx, ec)
		if err != nil {
			return nil, err
		}
		childSplits = append(childSplits, childSplit{
			ir:     childIR,
			zIndex: zIndexOf(child.Rules),
		})
	}
	sortByZIndexAscending(childSplits)
	children := make([]*model.IRBlock, len(childSplits))
	for i, cs := range childSplits {
		children[i] = cs.ir
	}

	// Step 2: determine whether this control is a component definition.
	tmpl := ctx.PKGTemplates[raw.TemplateName]
	isDefinition := tmpl != nil && tmpl.IsComponentTemplate

	// Step 3: compute customPropsToHide.
	hide := customPropsToHide(tmpl, isDefinition)

	// Step 4: for definitions, produce FuncNodes and a cleared copy of
	// the template's custom properties.
	var funcs []model.FuncNode
	registeredTemplate := tmpl
	if tmpl != nil {
		copyT := *tmpl
		registeredTemplate = &copyT
	}
	if isDefinition && tmpl != nil {
		nodes, cleared := buildDefinitionFuncNodes(tmpl)
		funcs = nodes
		registeredTemplate.CustomProperties = cleared
	}

	// Step 5: PropNodes (filtered) and PropertyStates (unfiltered,
	// original order — this is what Combine's reorder step round-trips
	// against).
	var props []model.PropNode
	propStates := make([]model.PropertyState, len(raw.Rules))
	for i, rule := range raw.Rules {
		expr := NormalizeExpression(rule.Expression)
		if !hide[rule.Name] {
			props = append(props, model.PropNode{Identifier: rule.Name, Expression: expr})
		}
		propStates[i] = model.PropertyState{
			PropertyName:     rule.Name,
			NameMap:          rule.NameMap,
			RuleProviderType: rule.RuleProviderType,
			ExtensionData:    rule.ExtensionData,
		}
	}

	// Step 6: build the IRBlock.
	typeName := raw.TemplateName
	if tmpl != nil {
		typeName = tmpl.DisplayOrName()
	}
	block := &model.IRBlock{
		Name: model.TypedName{
			Identifier: raw.Name,
			Kind:       model.TypeRef{TypeName: typeName, OptionalVariant: raw.VariantName},
		},
		Properties: props,
		Functions:  funcs,
		Children:   children,
	}

	// Step 7: register or update the template.
	if registeredTemplate != nil {
		ctx.Store.RegisterOrUpdate(registeredTemplate, isDefinition)
	}

	// Step 8: record the control's uniqueId into Entropy.
	ctx.Entropy.ControlUniqueIDs[raw.Name] = raw.UniqueID

	// Step 9: emit a ControlState and insert into EditorStateStore;
	// duplicates raise DuplicateSymbol unless inside a test suite.
	cs := &model.ControlState{
		Name:                     raw.Name,
		TopParentName:            raw.TopParentName,
		PublishOrderIndex:        raw.PublishOrderIndex,
		ParentIndex:              parentIndex,
		StyleName:                raw.StyleName,
		Properties:               propStates,
		ExtensionData:            raw.ExtensionData,
		IsComponentDefinition:    isDefinition,
		GalleryTemplateChildName: raw.GalleryTemplateChildName,
	}
	if ctx.EditorStates.Has(cs.Name) {
		if ctx.InTestSuite {
			// Duplicates are permitted inside a test suite subtree; keep
			// the first entry and skip re-inserting.
			return block, nil
		}
		return nil, ec.Error(diagnostics.CodeDuplicateSymbol, "control identifier %q is not unique", cs.Name)
	}
	if err := ctx.EditorStates.Insert(cs, diagnostics.CodeDuplicateSymbol, ec); err != nil {
		return nil, err
	}

	return block, nil
}
