package dsl

import (
	"testing"

	"github.com/paconv/paconv/internal/model"
)

func sampleBlock() *model.IRBlock {
	return &model.IRBlock{
		Name: model.TypedName{
			Identifier: "Screen1",
			Kind:       model.TypeRef{TypeName: "Screen"},
		},
		Properties: []model.PropNode{
			{Identifier: "Fill", Expression: "RGBA(255, 255, 255, 1)"},
			{Identifier: "OnVisible", Expression: "Navigate(Screen2)\nSet(x, 1)"},
		},
		Functions: []model.FuncNode{
			{
				Identifier: "OnSelect",
				Args: []model.TypedName{
					{Identifier: "arg1", Kind: model.TypeRef{TypeName: "Text"}},
				},
				Metadata: []model.ArgMetadataBlockNode{
					{Identifier: "ThisProperty", DefaultExpression: "true"},
				},
			},
		},
		Children: []*model.IRBlock{
			{
				Name: model.TypedName{
					Identifier: "Label1",
					Kind:       model.TypeRef{TypeName: "Label", OptionalVariant: "variant1"},
				},
				Properties: []model.PropNode{
					{Identifier: "Text", Expression: `"hello"`},
				},
			},
		},
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	original := sampleBlock()
	text := Render(original)

	parsed, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if parsed.Name.Identifier != original.Name.Identifier || parsed.Name.Kind.TypeName != original.Name.Kind.TypeName {
		t.Fatalf("header mismatch: got %+v, want %+v", parsed.Name, original.Name)
	}
	if len(parsed.Properties) != len(original.Properties) {
		t.Fatalf("property count mismatch: got %d, want %d", len(parsed.Properties), len(original.Properties))
	}
	for i, p := range original.Properties {
		if parsed.Properties[i].Expression != p.Expression {
			t.Errorf("property %d expression mismatch: got %q, want %q", i, parsed.Properties[i].Expression, p.Expression)
		}
	}
	if len(parsed.Functions) != 1 || parsed.Functions[0].Identifier != "OnSelect" {
		t.Fatalf("expected OnSelect function to survive, got %+v", parsed.Functions)
	}
	if len(parsed.Functions[0].Metadata) != 1 || parsed.Functions[0].Metadata[0].Identifier != "ThisProperty" {
		t.Fatalf("expected ThisProperty metadata to survive, got %+v", parsed.Functions[0].Metadata)
	}
	if len(parsed.Children) != 1 || parsed.Children[0].Name.Kind.OptionalVariant != "variant1" {
		t.Fatalf("expected child with variant to survive, got %+v", parsed.Children)
	}
	if parsed.Children[0].Properties[0].Expression != `"hello"` {
		t.Errorf("child property mismatch: got %q", parsed.Children[0].Properties[0].Expression)
	}
}

func TestParseRejectsMalformedHeader(t *testing.T) {
	if _, err := Parse("NotAHeader\n"); err == nil {
		t.Error("expected error for malformed header")
	}
}

func TestEscapeExprRoundTripsBackslashesAndNewlines(t *testing.T) {
	original := "line one\\nstill line one\nline two"
	escaped := escapeExpr(original)
	if escaped == original {
		t.Fatalf("expected escaping to change the string")
	}
	if got := unescapeExpr(escaped); got != original {
		t.Errorf("unescapeExpr(escapeExpr(s)) = %q, want %q", got, original)
	}
}
