// Package dsl renders and parses the indentation-based control-tree
// text that sits on the other side of IRSplitCombine from the PKG's
// JSON. The real textual DSL's grammar belongs to an external
// pretty-printer/parser pair this tool only exchanges IRBlock tokens
// with; this package is the minimal, self-consistent stand-in used so
// the source tree written to disk is actually readable text rather
// than a second JSON encoding of the IR.
package dsl

import (
	"fmt"
	"strings"

	"github.com/paconv/paconv/internal/model"
)

const indentUnit = "\t"

// Render pretty-prints one control subtree rooted at block.
func Render(block *model.IRBlock) string {
	var b strings.Builder
	renderBlock(&b, block, 0)
	return b.String()
}

func renderBlock(b *strings.Builder, block *model.IRBlock, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	b.WriteString(indent)
	b.WriteString(block.Name.Identifier)
	b.WriteString(" As ")
	b.WriteString(block.Name.Kind.TypeName)
	if block.Name.Kind.OptionalVariant != "" {
		b.WriteByte('.')
		b.WriteString(block.Name.Kind.OptionalVariant)
	}
	b.WriteString(":\n")

	childIndent := strings.Repeat(indentUnit, depth+1)
	for _, p := range block.Properties {
		b.WriteString(childIndent)
		b.WriteString(p.Identifier)
		b.WriteString(" = ")
		b.WriteString(escapeExpr(p.Expression))
		b.WriteByte('\n')
	}
	for _, f := range block.Functions {
		renderFunc(b, &f, depth+1)
	}
	for _, c := range block.Children {
		renderBlock(b, c, depth+1)
	}
}

func renderFunc(b *strings.Builder, f *model.FuncNode, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	b.WriteString(indent)
	b.WriteString("Func ")
	b.WriteString(f.Identifier)
	b.WriteByte('(')
	for i, a := range f.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.Identifier)
		b.WriteString(": ")
		b.WriteString(a.Kind.TypeName)
		if a.Kind.OptionalVariant != "" {
			b.WriteByte('.')
			b.WriteString(a.Kind.OptionalVariant)
		}
	}
	b.WriteString("):\n")

	metaIndent := strings.Repeat(indentUnit, depth+1)
	for _, m := range f.Metadata {
		b.WriteString(metaIndent)
		b.WriteString(m.Identifier)
		b.WriteString(": ")
		b.WriteString(escapeExpr(m.DefaultExpression))
		b.WriteByte('\n')
	}
}

// escapeExpr keeps every rendered line single-line regardless of what
// the expression contains, so depth can always be read off leading
// tabs alone.
func escapeExpr(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func unescapeExpr(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Parse reads back text produced by Render into an IRBlock tree.
func Parse(text string) (*model.IRBlock, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	p := &parser{lines: lines}
	block, _, err := p.parseBlock(0, 0)
	if err != nil {
		return nil, err
	}
	return block, nil
}

type parser struct {
	lines []string
	pos   int
}

func depthOf(line string) int {
	d := 0
	for d < len(line) && line[d] == '\t' {
		d++
	}
	return d
}

// parseBlock parses one "Name As Type:" header at startLine (which
// must be at exactly wantDepth) plus its indented body, returning the
// block and the index of the next unconsumed line.
func (p *parser) parseBlock(startLine, wantDepth int) (*model.IRBlock, int, error) {
	if startLine >= len(p.lines) {
		return nil, startLine, fmt.Errorf("dsl: expected control header, reached end of input")
	}
	header := p.lines[startLine]
	if depthOf(header) != wantDepth {
		return nil, startLine, fmt.Errorf("dsl: line %d: expected indent depth %d", startLine+1, wantDepth)
	}
	trimmed := strings.TrimPrefix(header, strings.Repeat(indentUnit, wantDepth))
	trimmed = strings.TrimSuffix(trimmed, ":")
	idx := strings.Index(trimmed, " As ")
	if idx < 0 {
		return nil, startLine, fmt.Errorf("dsl: line %d: expected %q header, got %q", startLine+1, "Name As Type:", header)
	}
	name := trimmed[:idx]
	typeSpec := trimmed[idx+len(" As "):]
	typeName, variant, _ := strings.Cut(typeSpec, ".")

	block := &model.IRBlock{
		Name: model.TypedName{
			Identifier: name,
			Kind:       model.TypeRef{TypeName: typeName, OptionalVariant: variant},
		},
	}

	line := startLine + 1
	bodyDepth := wantDepth + 1
	for line < len(p.lines) {
		l := p.lines[line]
		if strings.TrimSpace(l) == "" {
			line++
			continue
		}
		d := depthOf(l)
		if d < bodyDepth {
			break
		}
		if d > bodyDepth {
			return nil, line, fmt.Errorf("dsl: line %d: unexpected indent depth %d, want %d", line+1, d, bodyDepth)
		}
		content := strings.TrimPrefix(l, strings.Repeat(indentUnit, bodyDepth))

		switch {
		case strings.HasPrefix(content, "Func "):
			fn, next, err := p.parseFunc(line, bodyDepth)
			if err != nil {
				return nil, line, err
			}
			block.Functions = append(block.Functions, *fn)
			line = next
		case strings.Contains(content, " As ") && strings.HasSuffix(content, ":"):
			child, next, err := p.parseBlock(line, bodyDepth)
			if err != nil {
				return nil, line, err
			}
			block.Children = append(block.Children, child)
			line = next
		default:
			ident, expr, ok := strings.Cut(content, " = ")
			if !ok {
				return nil, line, fmt.Errorf("dsl: line %d: expected property assignment, got %q", line+1, l)
			}
			block.Properties = append(block.Properties, model.PropNode{
				Identifier: ident,
				Expression: unescapeExpr(expr),
			})
			line++
		}
	}
	return block, line, nil
}

func (p *parser) parseFunc(startLine, wantDepth int) (*model.FuncNode, int, error) {
	header := p.lines[startLine]
	content := strings.TrimPrefix(header, strings.Repeat(indentUnit, wantDepth))
	content = strings.TrimSuffix(content, ":")
	content = strings.TrimPrefix(content, "Func ")
	open := strings.Index(content, "(")
	close := strings.LastIndex(content, ")")
	if open < 0 || close < open {
		return nil, startLine, fmt.Errorf("dsl: line %d: malformed function header %q", startLine+1, header)
	}
	fn := &model.FuncNode{Identifier: content[:open]}
	argsRaw := strings.TrimSpace(content[open+1 : close])
	if argsRaw != "" {
		for _, a := range strings.Split(argsRaw, ", ") {
			id, typeSpec, ok := strings.Cut(a, ": ")
			if !ok {
				return nil, startLine, fmt.Errorf("dsl: line %d: malformed function argument %q", startLine+1, a)
			}
			typeName, variant, _ := strings.Cut(typeSpec, ".")
			fn.Args = append(fn.Args, model.TypedName{
				Identifier: id,
				Kind:       model.TypeRef{TypeName: typeName, OptionalVariant: variant},
			})
		}
	}

	line := startLine + 1
	metaDepth := wantDepth + 1
	for line < len(p.lines) {
		l := p.lines[line]
		if strings.TrimSpace(l) == "" {
			line++
			continue
		}
		d := depthOf(l)
		if d < metaDepth {
			break
		}
		mc := strings.TrimPrefix(l, strings.Repeat(indentUnit, metaDepth))
		id, expr, ok := strings.Cut(mc, ": ")
		if !ok {
			return nil, line, fmt.Errorf("dsl: line %d: malformed function metadata %q", line+1, l)
		}
		fn.Metadata = append(fn.Metadata, model.ArgMetadataBlockNode{
			Identifier:        id,
			DefaultExpression: unescapeExpr(expr),
		})
		line++
	}
	return fn, line, nil
}
