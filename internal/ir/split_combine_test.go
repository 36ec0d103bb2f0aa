package ir

import (
	"testing"

	"github.com/paconv/paconv/internal/diagnostics"
	"github.com/paconv/paconv/internal/editorstate"
	"github.com/paconv/paconv/internal/entropy"
	"github.com/paconv/paconv/internal/model"
	"github.com/paconv/paconv/internal/template"
)

func newSplitContext() (*SplitContext, *diagnostics.ErrorContainer) {
	return &SplitContext{
		PKGTemplates: map[string]*model.TemplateState{},
		Store:        template.NewStore(),
		EditorStates: editorstate.NewStore(),
		Entropy:      entropy.New(),
	}, diagnostics.New()
}

func TestSplitZOrderScenario(t *testing.T) {
	ctx, ec := newSplitContext()
	root := &RawControl{
		Name:         "Screen1",
		TemplateName: "screen",
		Children: []*RawControl{
			{Name: "A", TemplateName: "label", Rules: []RawRule{{Name: "ZIndex", Expression: "2"}}},
			{Name: "B", TemplateName: "label", Rules: []RawRule{{Name: "ZIndex", Expression: "1"}}},
			{Name: "C", TemplateName: "label", Rules: []RawRule{{Name: "ZIndex", Expression: "foo"}}},
		},
	}
	block, err := Split(root, 0, ctx, ec)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(block.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(block.Children))
	}
	got := []string{block.Children[0].Name.Identifier, block.Children[1].Name.Identifier, block.Children[2].Name.Identifier}
	want := []string{"C", "B", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("children[%d] = %q, want %q (got order %v)", i, got[i], want[i], got)
		}
	}
}

func TestSplitDuplicateControlNameIsFatal(t *testing.T) {
	ctx, ec := newSplitContext()
	root := &RawControl{
		Name:         "Screen1",
		TemplateName: "screen",
		Children: []*RawControl{
			{Name: "Dup", TemplateName: "label"},
			{Name: "Dup", TemplateName: "label"},
		},
	}
	if _, err := Split(root, 0, ctx, ec); err == nil {
		t.Fatal("expected duplicate control name to fail")
	}
	if !ec.HasErrors() {
		t.Error("expected a fatal diagnostic to be recorded")
	}
}

func TestSplitDuplicateAllowedInTestSuite(t *testing.T) {
	ctx, ec := newSplitContext()
	ctx.InTestSuite = true
	root := &RawControl{
		Name:         "TestSuite1",
		TemplateName: "testsuite",
		Children: []*RawControl{
			{Name: "Dup", TemplateName: "label"},
			{Name: "Dup", TemplateName: "label"},
		},
	}
	if _, err := Split(root, 0, ctx, ec); err != nil {
		t.Fatalf("expected duplicate names inside test suite to be allowed, got %v", err)
	}
}

func TestSplitThenCombineRoundTripsRules(t *testing.T) {
	ctx, ec := newSplitContext()
	root := &RawControl{
		Name:         "Button1",
		UniqueID:     7,
		TemplateName: "button",
		Rules: []RawRule{
			{Name: "Text", Expression: "\"Hello\"\r\n", RuleProviderType: "UserProvided"},
			{Name: "X", Expression: "10"},
			{Name: "Y", Expression: "20"},
		},
	}
	block, err := Split(root, 0, ctx, ec)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if block.Properties[0].Expression != "\"Hello\"\n" {
		t.Errorf("expected CRLF normalized to LF, got %q", block.Properties[0].Expression)
	}

	combineCtx := &CombineContext{Store: ctx.Store, EditorStates: ctx.EditorStates, Entropy: ctx.Entropy}
	raw, err := Combine(block, combineCtx, ec)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if raw.UniqueID != 7 {
		t.Errorf("UniqueID = %d, want 7 (preserved via entropy)", raw.UniqueID)
	}
	names := make([]string, len(raw.Rules))
	for i, r := range raw.Rules {
		names[i] = r.Name
	}
	want := []string{"Text", "X", "Y"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("rule order = %v, want %v", names, want)
		}
	}
}

func TestCombineMintsFreshUniqueIDWhenEntropyMissing(t *testing.T) {
	ctx, ec := newSplitContext()
	ctx.Entropy.ControlUniqueIDs["Existing"] = 42

	block := &model.IRBlock{Name: model.TypedName{Identifier: "NewControl", Kind: model.TypeRef{TypeName: "label"}}}
	combineCtx := &CombineContext{Store: ctx.Store, EditorStates: ctx.EditorStates, Entropy: ctx.Entropy}
	raw, err := Combine(block, combineCtx, ec)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if raw.UniqueID != 43 {
		t.Errorf("UniqueID = %d, want 43", raw.UniqueID)
	}
}

func TestCombineRejectsNewPropertyOnComponentDefinition(t *testing.T) {
	ctx, ec := newSplitContext()
	cs := &model.ControlState{
		Name:                  "CompDef",
		IsComponentDefinition: true,
		Properties:            []model.PropertyState{{PropertyName: "Existing"}},
	}
	if err := ctx.EditorStates.Insert(cs, diagnostics.CodeDuplicateSymbol, ec); err != nil {
		t.Fatalf("insert: %v", err)
	}
	block := &model.IRBlock{
		Name: model.TypedName{Identifier: "CompDef", Kind: model.TypeRef{TypeName: "compTemplate"}},
		Properties: []model.PropNode{
			{Identifier: "Existing", Expression: "1"},
			{Identifier: "BrandNew", Expression: "2"},
		},
	}
	combineCtx := &CombineContext{Store: ctx.Store, EditorStates: ctx.EditorStates, Entropy: ctx.Entropy}
	if _, err := Combine(block, combineCtx, ec); err == nil {
		t.Fatal("expected UnsupportedChange error for a new property on a component definition")
	}
}

func TestFunctionCustomPropertyRoundTrip(t *testing.T) {
	def := "false"
	argDef := "Blue"
	argType := "Color"
	tmpl := &model.TemplateState{
		Name:                "Gallery",
		DisplayName:         "Gallery",
		IsComponentTemplate: true,
		CustomProperties: []model.CustomProperty{
			{
				Name:               "OnSelect",
				IsFunctionProperty: true,
				OwnDefaultRule:     &def,
				ScopeRules: []model.ScopeRule{
					{Name: "Color", DefaultRule: &argDef, ScopePropertyDataType: &argType},
				},
			},
		},
	}
	ctx, ec := newSplitContext()
	ctx.PKGTemplates["Gallery"] = tmpl

	root := &RawControl{Name: "MyGallery", TemplateName: "Gallery"}
	block, err := Split(root, 0, ctx, ec)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(block.Functions) != 1 {
		t.Fatalf("expected one FuncNode, got %d", len(block.Functions))
	}
	if block.Functions[0].Identifier != "OnSelect" {
		t.Errorf("FuncNode identifier = %q, want OnSelect", block.Functions[0].Identifier)
	}

	combineCtx := &CombineContext{Store: ctx.Store, EditorStates: ctx.EditorStates, Entropy: ctx.Entropy}
	raw, err := Combine(block, combineCtx, ec)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	foundThis, foundArg := false, false
	for _, r := range raw.Rules {
		if r.Name == "OnSelect" && r.Expression == "false" {
			foundThis = true
		}
		if r.Name == "OnSelect_Color" && r.Expression == "Blue" {
			foundArg = true
		}
	}
	if !foundThis {
		t.Error("expected OnSelect rule with ThisProperty default")
	}
	if !foundArg {
		t.Error("expected OnSelect_Color dummy rule with arg default")
	}
}
