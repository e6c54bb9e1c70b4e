// Package parser is a recursive-descent parser for the traditional,
// PCRE-like notation. It consumes the token stream produced by package
// lexer and produces the AST shared with the structured-notation parser
// (package structured).
//
// Precedence, lowest to highest: alternation ('|'), then sequence
// (juxtaposition), then postfix quantifiers, then primary. Alternation
// is parsed right-associative: `a|b|c` becomes `a|(b|c)` — the
// interpreter backtracks less on right-associated or-chains, since
// trying the left branch first never requires descending through the
// whole remaining chain just to fail.
package parser

import (
	"github.com/coregx/anre/ast"
	"github.com/coregx/anre/diag"
	"github.com/coregx/anre/lexer"
	"github.com/coregx/anre/token"
)

// Parse tokenizes and parses a traditional-notation pattern into a
// shared-AST Program.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	exprs, err := p.parseAlternationSeq()
	if err != nil {
		return nil, err
	}
	if p.peek(0).Kind != token.KindEOF {
		return nil, diag.NewSyntax(p.peek(0).Range, "unexpected %s", p.peek(0).Kind)
	}
	return &ast.Program{Expressions: exprs}, nil
}

type parser struct {
	toks []token.Token
	pos  int
}

func (p *parser) peek(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[idx]
}

func (p *parser) next() token.Token {
	t := p.peek(0)
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k token.Kind) (token.Token, error) {
	t := p.peek(0)
	if t.Kind != k {
		if t.Kind == token.KindEOF {
			return t, diag.NewUnexpectedEOF("expected %s", k)
		}
		return t, diag.NewSyntax(t.Range, "expected %s, got %s", k, t.Kind)
	}
	return p.next(), nil
}

// parseAlternationSeq parses the whole pattern and unwraps the outermost
// sequence into a flat expression list, since Program stores its top
// level as []Expression rather than a single group node.
func (p *parser) parseAlternationSeq() ([]ast.Expression, error) {
	expr, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if expr.Kind == ast.ExprGroup {
		return expr.Group, nil
	}
	return []ast.Expression{expr}, nil
}

func (p *parser) parseAlternation() (ast.Expression, error) {
	left, err := p.parseSequence()
	if err != nil {
		return ast.Expression{}, err
	}
	if p.peek(0).Kind != token.KindMetaPipe {
		return left, nil
	}
	p.next()
	right, err := p.parseAlternation()
	if err != nil {
		return ast.Expression{}, err
	}
	return ast.Or(left, right), nil
}

// parseSequence parses a run of concatenated terms, coalescing runs of
// bare characters into a single String literal so the compiler emits
// one transition per run instead of one per character.
func (p *parser) parseSequence() (ast.Expression, error) {
	var exprs []ast.Expression
	var buf []rune

	flush := func() {
		switch len(buf) {
		case 0:
		case 1:
			exprs = append(exprs, ast.Lit(ast.Literal{Kind: ast.LitChar, Char: buf[0]}))
		default:
			exprs = append(exprs, ast.Lit(ast.Literal{Kind: ast.LitString, Str: string(buf)}))
		}
		buf = nil
	}

	for {
		t := p.peek(0)
		switch t.Kind {
		case token.KindEOF, token.KindMetaRParen, token.KindMetaPipe:
			flush()
			return seqToExpr(exprs), nil

		case token.KindChar:
			if isQuantifierStart(p.peek(1)) {
				flush()
				p.next()
				lit := ast.Lit(ast.Literal{Kind: ast.LitChar, Char: t.Char})
				q, err := p.parsePostfix(lit)
				if err != nil {
					return ast.Expression{}, err
				}
				exprs = append(exprs, q)
			} else {
				p.next()
				buf = append(buf, t.Char)
			}

		case token.KindMetaStar, token.KindMetaPlus, token.KindMetaQuestion, token.KindMetaQuantity:
			return ast.Expression{}, diag.NewSyntax(t.Range, "quantifier %s with no preceding expression", t.Kind)

		default:
			flush()
			atom, err := p.parseAtom()
			if err != nil {
				return ast.Expression{}, err
			}
			q, err := p.parsePostfix(atom)
			if err != nil {
				return ast.Expression{}, err
			}
			exprs = append(exprs, q)
		}
	}
}

// seqToExpr collapses a parsed sequence into a single Expression: a
// one-element sequence is its own element (no pointless group wrapper),
// an empty sequence is an explicit empty group (the Empty component),
// and anything longer stays a group.
func seqToExpr(exprs []ast.Expression) ast.Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return ast.GroupOf(exprs)
}

func isQuantifierStart(t token.Token) bool {
	switch t.Kind {
	case token.KindMetaStar, token.KindMetaPlus, token.KindMetaQuestion, token.KindMetaQuantity:
		return true
	default:
		return false
	}
}

// parsePostfix applies at most one postfix quantifier to atom. A second
// quantifier token immediately following is rejected the same way a
// leading quantifier with nothing before it is: the main sequence loop
// will see it as "quantifier with no preceding expression" once control
// returns there, since no primary consumes it.
func (p *parser) parsePostfix(atom ast.Expression) (ast.Expression, error) {
	t := p.peek(0)
	switch t.Kind {
	case token.KindMetaStar:
		p.next()
		name := ast.FuncZeroOrMore
		if t.Lazy {
			name = ast.FuncZeroOrMoreLazy
		}
		return ast.Call(ast.FunctionCall{Name: name, Args: []ast.Expression{atom}}), nil
	case token.KindMetaPlus:
		p.next()
		name := ast.FuncOneOrMore
		if t.Lazy {
			name = ast.FuncOneOrMoreLazy
		}
		return ast.Call(ast.FunctionCall{Name: name, Args: []ast.Expression{atom}}), nil
	case token.KindMetaQuestion:
		p.next()
		name := ast.FuncOptional
		if t.Lazy {
			name = ast.FuncOptionalLazy
		}
		return ast.Call(ast.FunctionCall{Name: name, Args: []ast.Expression{atom}}), nil
	case token.KindMetaQuantity:
		p.next()
		if t.Lazy && t.QuantMin == t.QuantMax {
			return ast.Expression{}, diag.NewSyntax(t.Range, "lazy quantifier is forbidden when min == max (%d)", t.QuantMin)
		}
		if t.QuantMax == t.QuantMin {
			return ast.Call(ast.FunctionCall{Name: ast.FuncRepeat, Args: []ast.Expression{atom}, RepeatN: t.QuantMin}), nil
		}
		if t.QuantMax == -1 {
			name := ast.FuncAtLeast
			if t.Lazy {
				name = ast.FuncAtLeastLazy
			}
			return ast.Call(ast.FunctionCall{Name: name, Args: []ast.Expression{atom}, RepeatMin: t.QuantMin, RepeatMax: -1}), nil
		}
		if t.QuantMin > t.QuantMax {
			return ast.Expression{}, diag.NewSyntax(t.Range, "quantifier range {%d,%d} has min > max", t.QuantMin, t.QuantMax)
		}
		name := ast.FuncRepeatRange
		if t.Lazy {
			name = ast.FuncRepeatRangeLazy
		}
		return ast.Call(ast.FunctionCall{Name: name, Args: []ast.Expression{atom}, RepeatMin: t.QuantMin, RepeatMax: t.QuantMax}), nil
	default:
		return atom, nil
	}
}

// parseAtom parses a single primary term: anchors, boundaries, back
// references, preset classes, literals, character classes, and groups.
func (p *parser) parseAtom() (ast.Expression, error) {
	t := p.next()
	switch t.Kind {
	case token.KindMetaAnyChar:
		return ast.Lit(ast.Literal{Kind: ast.LitAnyChar}), nil
	case token.KindMetaCaret:
		return ast.Anchor(ast.AnchorStart), nil
	case token.KindMetaDollar:
		return ast.Anchor(ast.AnchorEnd), nil
	case token.KindPresetClass:
		return ast.Lit(ast.Literal{Kind: ast.LitPreset, Preset: presetFromChar(t.Char, t.Negated)}), nil
	case token.KindBoundary:
		if t.Negated {
			return ast.Boundary(ast.BoundaryIsNotBound), nil
		}
		return ast.Boundary(ast.BoundaryIsBound), nil
	case token.KindBackRefIndex:
		return ast.BackRef(ast.BackReference{Index: t.Number}), nil
	case token.KindBackRefName:
		return ast.BackRef(ast.BackReference{ByName: true, Name: t.Text}), nil
	case token.KindMetaLBracket:
		return p.parseCharClass()
	case token.KindMetaLParen:
		return p.parseGroup(t)
	default:
		return ast.Expression{}, diag.NewSyntax(t.Range, "unexpected %s", t.Kind)
	}
}

func presetFromChar(c rune, negated bool) ast.PresetClassName {
	switch c {
	case 'w', 'W':
		if negated {
			return ast.CharNotWord
		}
		return ast.CharWord
	case 'd', 'D':
		if negated {
			return ast.CharNotDigit
		}
		return ast.CharDigit
	default: // 's', 'S'
		if negated {
			return ast.CharNotSpace
		}
		return ast.CharSpace
	}
}

func (p *parser) parseGroup(open token.Token) (ast.Expression, error) {
	inner, err := p.parseAlternation()
	if err != nil {
		return ast.Expression{}, err
	}
	if _, err := p.expect(token.KindMetaRParen); err != nil {
		return ast.Expression{}, err
	}
	switch open.Group {
	case token.GroupPlain:
		return ast.Call(ast.FunctionCall{Name: ast.FuncIndex, Args: []ast.Expression{inner}}), nil
	case token.GroupNonCapturing:
		return inner, nil
	case token.GroupNamed:
		return ast.Call(ast.FunctionCall{Name: ast.FuncCaptureName, Args: []ast.Expression{inner}, CaptureName: open.Text}), nil
	case token.GroupLookAhead:
		return ast.Call(ast.FunctionCall{Name: ast.FuncIsBefore, Args: []ast.Expression{ast.GroupOf(nil), inner}}), nil
	case token.GroupLookAheadNeg:
		return ast.Call(ast.FunctionCall{Name: ast.FuncIsNotBefore, Args: []ast.Expression{ast.GroupOf(nil), inner}}), nil
	case token.GroupLookBehind:
		return ast.Call(ast.FunctionCall{Name: ast.FuncIsAfter, Args: []ast.Expression{ast.GroupOf(nil), inner}}), nil
	case token.GroupLookBehindNeg:
		return ast.Call(ast.FunctionCall{Name: ast.FuncIsNotAfter, Args: []ast.Expression{ast.GroupOf(nil), inner}}), nil
	default:
		return ast.Expression{}, diag.NewSyntax(open.Range, "unsupported grouping prefix")
	}
}

func (p *parser) parseCharClass() (ast.Expression, error) {
	set := &ast.CharSet{}
	if p.peek(0).Kind == token.KindClassNegation {
		p.next()
		set.Negative = true
	}
	for {
		t := p.peek(0)
		switch t.Kind {
		case token.KindMetaRBracket:
			p.next()
			return ast.Lit(ast.Literal{Kind: ast.LitCharSet, Set: set}), nil
		case token.KindChar:
			p.next()
			set.Elements = append(set.Elements, ast.CharSetElement{Kind: ast.CSChar, Char: t.Char})
		case token.KindCharRange:
			p.next()
			set.Elements = append(set.Elements, ast.CharSetElement{Kind: ast.CSRange, RangeLo: t.RangeLo, RangeHi: t.RangeHi})
		case token.KindPresetClass:
			p.next()
			set.Elements = append(set.Elements, ast.CharSetElement{Kind: ast.CSPreset, Preset: presetFromChar(t.Char, t.Negated)})
		case token.KindEOF:
			return ast.Expression{}, diag.NewUnexpectedEOF("unterminated character class")
		default:
			return ast.Expression{}, diag.NewSyntax(t.Range, "unexpected %s inside character class", t.Kind)
		}
	}
}
