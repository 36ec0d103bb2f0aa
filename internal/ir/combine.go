package ir

import (
	"sort"

	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/editorstate"
	"github.com/paconv/paconv/internal/entropy"
	"github.com/paconv/paconv/internal/model"
	"github.com/paconv/paconv/internal/suggest"
	"github.com/paconv/paconv/internal/template"
)

// suggestionHint formats the closest candidate name for target as a
// quoted did-you-mean hint, or "" when nothing is close enough.
func suggestionHint(target string, candidates []string) string {
	matches := suggest.New(true, 1, 0).Suggest(target, candidates)
	if len(matches) == 0 {
		return ""
	}
	return `"` + matches[0].Name + `"`
}

// combineChild pairs a combined child RawControl with the
// ParentIndex its ControlState recorded (or -1 when no state exists),
// for step 1's restore-order sort.
type combineChild struct {
	raw         *RawControl
	parentIndex int
}

// CombineContext carries everything a Combine pass needs: the
// template registry to resolve kind.typeName against (and to update
// when a component definition's scope rules are rewritten), the
// entropy side-channel to consult and mint ids from, and the editor
// states recorded at split time.
type CombineContext struct {
	Store        *template.Store
	EditorStates *editorstate.Store
	Entropy      *entropy.Entropy
}

// Combine turns one IRBlock plus its ControlState back into a PKG
// control subtree, depth first, post order — the exact inverse of
// Split.
func Combine(block *model.IRBlock, ctx *CombineContext, ec *diagnostics.ErrorContainer) (*RawControl, error) {
	// Step 1: recurse into children, sort ascending by ParentIndex.
	combined := make([]combineChild, 0, len(block.Children))
	for _, childBlock := range block.Children {
		childRaw, err := Combine(childBlock, ctx, ec)
		if err != nil {
			return nil, err
		}
		parentIndex := -1
		if cs, ok := ctx.EditorStates.Get(childBlock.Name.Identifier); ok {
			parentIndex = cs.ParentIndex
		}
		combined = append(combined, combineChild{raw: childRaw, parentIndex: parentIndex})
	}
	sortByParentIndexAscending(combined)
	children := make([]*RawControl, len(combined))
	for i, c := range combined {
		children[i] = c.raw
	}

	// Step 2: look up (or synthesize) the template by kind.typeName.
	if _, found := ctx.Store.Get(block.Name.Kind.TypeName); !found {
		msg := "control %q references unknown template %q"
		if hint := suggestionHint(block.Name.Kind.TypeName, ctx.Store.Names()); hint != "" {
			msg += " (did you mean " + hint + "?)"
		}
		ec.Warn(diagnostics.CodeGenericWarning, msg, block.Name.Identifier, block.Name.Kind.TypeName)
	}
	tmpl := ctx.Store.GetOrSynthesize(block.Name.Kind.TypeName)

	// Step 3: retrieve or mint the uniqueId.
	name := block.Name.Identifier
	uniqueID, ok := ctx.Entropy.ControlUniqueIDs[name]
	if !ok {
		uniqueID = ctx.Entropy.NextControlUniqueID()
		ctx.Entropy.ControlUniqueIDs[name] = uniqueID
	}

	cs, hasState := ctx.EditorStates.Get(name)

	// Adding a new property to a component definition that was absent
	// at unpack is disallowed; checked before building rules.
	if hasState && cs.IsComponentDefinition {
		known := make(map[string]bool, len(cs.Properties))
		for _, p := range cs.Properties {
			known[p.PropertyName] = true
		}
		for _, p := range block.Properties {
			if !known[p.Identifier] {
				knownNames := make([]string, 0, len(known))
				for n := range known {
					knownNames = append(knownNames, n)
				}
				if hint := suggestionHint(p.Identifier, knownNames); hint != "" {
					return nil, ec.Error(diagnostics.CodeUnsupportedChange,
						"component %q gained property %q, which is not a supported change (did you mean %s?)", name, p.Identifier, hint)
				}
				return nil, ec.Error(diagnostics.CodeUnsupportedChange,
					"component %q gained property %q, which is not a supported change", name, p.Identifier)
			}
		}
	}

	// Step 4: build the Rules list.
	rules, err := buildRules(block, tmpl, cs, hasState, ec)
	if err != nil {
		return nil, err
	}

	// Step 5: reorder rules to ControlState.Properties' recorded order.
	if hasState {
		rules = reorderByPropertyOrder(rules, cs.PropertyOrder())
	}

	raw := &RawControl{
		Name:          name,
		UniqueID:      uniqueID,
		TemplateName:  tmpl.Name,
		VariantName:   block.Name.Kind.OptionalVariant,
		ExtensionData: nil,
		Rules:         rules,
		Children:      children,
	}
	if hasState {
		raw.TopParentName = cs.TopParentName
		raw.PublishOrderIndex = cs.PublishOrderIndex
		raw.StyleName = cs.StyleName
		raw.GalleryTemplateChildName = cs.GalleryTemplateChildName
		raw.ExtensionData = cs.ExtensionData
	} else {
		// No recorded state: fall back to a deterministic default style
		// name rather than leaving the field empty.
		raw.StyleName = "default" + tmpl.Name + "Style"
	}

	// Step 6: attach ComponentDefinitionInfo for component definitions.
	if hasState && cs.IsComponentDefinition {
		timestamp, _ := lastModifiedTimestamp(cs.ExtensionData)
		childNames := make([]string, len(children))
		for i, c := range children {
			childNames[i] = c.Name
		}
		extData, err := attachComponentDefinitionInfo(raw.ExtensionData, timestamp, childNames)
		if err != nil {
			return nil, ec.Wrap(diagnostics.CodeInternalError, err, "attaching component definition info for %q", name)
		}
		raw.ExtensionData = extData
		tmpl.IsComponentTemplate = true
	}

	return raw, nil
}

// buildRules implements Combine step 4.
func buildRules(block *model.IRBlock, tmpl *model.TemplateState, cs *model.ControlState, hasState bool, ec *diagnostics.ErrorContainer) ([]RawRule, error) {
	var rules []RawRule

	for _, p := range block.Properties {
		r := RawRule{Name: p.Identifier, Expression: p.Expression, RuleProviderType: "Unknown"}
		if hasState {
			if ps, found := cs.PropertyStateByName(p.Identifier); found {
				r.NameMap = ps.NameMap
				r.RuleProviderType = ps.RuleProviderType
				r.ExtensionData = ps.ExtensionData
			}
		}
		rules = append(rules, r)
	}

	if len(block.Functions) > 0 {
		for _, fn := range block.Functions {
			thisExpr, err := findMetadata(fn.Metadata, thisPropertyMetadata)
			if err != nil {
				return nil, ec.Wrap(diagnostics.CodeInternalError, err, "function %q missing ThisProperty metadata", fn.Identifier)
			}
			rules = append(rules, RawRule{Name: fn.Identifier, Expression: thisExpr})

			for _, meta := range fn.Metadata {
				if meta.Identifier == thisPropertyMetadata {
					continue
				}
				rules = append(rules, RawRule{
					Name:       fn.Identifier + "_" + meta.Identifier,
					Expression: meta.DefaultExpression,
				})
			}

			if err := rewriteScopeRules(tmpl, fn, ec); err != nil {
				return nil, err
			}
		}
	} else if tmpl != nil {
		// Instance case: emit dummy rules for each hidden scope rule
		// using the template's currently recorded default.
		for _, cp := range tmpl.FunctionCustomProperties() {
			for _, sr := range cp.ScopeRules {
				if sr.DefaultRule == nil {
					continue
				}
				rules = append(rules, RawRule{Name: sr.Name, Expression: *sr.DefaultRule})
			}
		}
	}

	return rules, nil
}

func findMetadata(metadata []model.ArgMetadataBlockNode, id string) (string, error) {
	for _, m := range metadata {
		if m.Identifier == id {
			return m.DefaultExpression, nil
		}
	}
	return "", &missingMetadataError{id}
}

type missingMetadataError struct{ id string }

func (e *missingMetadataError) Error() string { return "missing metadata entry " + e.id }

// rewriteScopeRules rewrites a component definition template's
// scope-rule fields for one function from its FuncNode's args and
// metadata. An arg with no matching metadata entry is an internal
// error — the IR is malformed.
func rewriteScopeRules(tmpl *model.TemplateState, fn model.FuncNode, ec *diagnostics.ErrorContainer) error {
	if tmpl == nil {
		return nil
	}
	cp, ok := tmpl.CustomPropertyByName(fn.Identifier)
	if !ok {
		cp = &model.CustomProperty{Name: fn.Identifier, IsFunctionProperty: true}
		tmpl.CustomProperties = append(tmpl.CustomProperties, *cp)
		cp, _ = tmpl.CustomPropertyByName(fn.Identifier)
	}
	cp.IsFunctionProperty = true

	if thisExpr, err := findMetadata(fn.Metadata, thisPropertyMetadata); err == nil {
		v := thisExpr
		cp.OwnDefaultRule = &v
	}

	rules := make([]model.ScopeRule, len(fn.Args))
	for i, arg := range fn.Args {
		def, err := findMetadata(fn.Metadata, arg.Identifier)
		if err != nil {
			return ec.Wrap(diagnostics.CodeInternalError, err, "function %q argument %q has no matching metadata", fn.Identifier, arg.Identifier)
		}
		defCopy := def
		typeCopy := arg.Kind.TypeName
		idx := i
		rules[i] = model.ScopeRule{
			Name:                  arg.Identifier,
			DefaultRule:           &defCopy,
			ScopePropertyDataType: &typeCopy,
			ParameterIndex:        &idx,
			ParentPropertyName:    &fn.Identifier,
		}
	}
	cp.ScopeRules = rules
	return nil
}

// reorderByPropertyOrder reorders rules to the positions recorded in
// order; rules whose name is absent from order sort to the end,
// stable.
func reorderByPropertyOrder(rules []RawRule, order []string) []RawRule {
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	keyOf := func(r RawRule) int {
		if p, ok := pos[r.Name]; ok {
			return p
		}
		return len(order)
	}
	out := make([]RawRule, len(rules))
	copy(out, rules)
	sort.SliceStable(out, func(i, j int) bool {
		return keyOf(out[i]) < keyOf(out[j])
	})
	return out
}
