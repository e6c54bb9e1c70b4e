package structured

import (
	"github.com/coregx/anre/ast"
	"github.com/coregx/anre/diag"
	"github.com/coregx/anre/token"
)

// Parse tokenizes, normalizes, macro-expands, and parses a
// structured-notation pattern into a shared-AST Program.
func Parse(src string) (*ast.Program, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	toks, err = Expand(toks)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	exprs, err := p.parseTopLevel()
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	if p.peek(0).Kind != token.KindEOF {
		return nil, diag.NewSyntax(p.peek(0).Range, "unexpected %s", p.peek(0).Kind)
	}
	return &ast.Program{Expressions: exprs}, nil
}

// parseTopLevel parses the whole program. Unlike a nested sequence
// (a group's body, a function call argument, one branch of an
// alternation), the top level's comma/newline-separated items are
// *not* collapsed into a single group node — Program.Expressions is
// that flat list, so "'a', 'b'" yields two top-level expressions while
// "('a', 'b')" yields one (a group wrapping two). A top-level "||"
// still collapses each of its sides to one node, since "||" binds
// looser than the sequence itself.
func (p *parser) parseTopLevel() ([]ast.Expression, error) {
	left, err := p.parseSequenceItems(token.KindInvalid)
	if err != nil {
		return nil, err
	}
	p.skipSeparators()
	if p.peek(0).Kind != token.KindLogicOr {
		return left, nil
	}
	p.next()
	p.skipSeparators()
	right, err := p.parseAlternation(token.KindInvalid)
	if err != nil {
		return nil, err
	}
	return []ast.Expression{ast.Or(seqToExpr(left), right)}, nil
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

// skipSeparators consumes a run of comma/newline tokens (the two are
// interchangeable as sequence separators) and reports whether it
// consumed at least one.
func (p *parser) skipSeparators() bool {
	consumed := false
	for {
		switch p.peek(0).Kind {
		case token.KindComma, token.KindNewline:
			p.next()
			consumed = true
		default:
			return consumed
		}
	}
}

func seqToExpr(exprs []ast.Expression) ast.Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return ast.GroupOf(exprs)
}

// parseAlternation parses a right-associative '||' chain of sequences.
// end names the token that closes the enclosing context (KindRParen
// inside a group, KindRBracket never reaches here, KindInvalid at the
// top level where nothing but EOF closes it).
func (p *parser) parseAlternation(end token.Kind) (ast.Expression, error) {
	left, err := p.parseSequence(end)
	if err != nil {
		return ast.Expression{}, err
	}
	p.skipSeparators()
	if p.peek(0).Kind != token.KindLogicOr {
		return left, nil
	}
	p.next()
	p.skipSeparators()
	right, err := p.parseAlternation(end)
	if err != nil {
		return ast.Expression{}, err
	}
	return ast.Or(left, right), nil
}

func (p *parser) isStop(end token.Kind) bool {
	k := p.peek(0).Kind
	return k == end || k == token.KindEOF || k == token.KindLogicOr
}

// parseSequence parses a comma/newline-separated list of unary terms,
// collapsed to a single node (bare element if there is only one, an
// ast.GroupOf otherwise).
func (p *parser) parseSequence(end token.Kind) (ast.Expression, error) {
	items, err := p.parseSequenceItems(end)
	if err != nil {
		return ast.Expression{}, err
	}
	return seqToExpr(items), nil
}

// parseSequenceItems parses a comma/newline-separated list of unary
// terms without collapsing it to a single node.
func (p *parser) parseSequenceItems(end token.Kind) ([]ast.Expression, error) {
	var exprs []ast.Expression
	p.skipSeparators()
	if p.isStop(end) {
		return exprs, nil
	}
	for {
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !p.skipSeparators() {
			break
		}
		if p.isStop(end) {
			break
		}
	}
	return exprs, nil
}

func (p *parser) parseUnary() (ast.Expression, error) {
	atom, err := p.parsePrimary()
	if err != nil {
		return ast.Expression{}, err
	}
	return p.parsePostfix(atom)
}

// parsePostfix applies symbolic quantifier suffixes (?, +, *, their lazy
// forms, and {m,n}) and ".name(args)" method-call suffixes, which spec
// section 4.3 treats as equivalent notations for the same function-call
// AST shape — "expr.name(args...)" is "a function call whose first
// argument is expr".
func (p *parser) parsePostfix(atom ast.Expression) (ast.Expression, error) {
	for {
		switch p.peek(0).Kind {
		case token.KindQuestion:
			p.next()
			atom = ast.Call(ast.FunctionCall{Name: ast.FuncOptional, Args: []ast.Expression{atom}})
		case token.KindQuestionLz:
			p.next()
			atom = ast.Call(ast.FunctionCall{Name: ast.FuncOptionalLazy, Args: []ast.Expression{atom}})
		case token.KindPlus:
			p.next()
			atom = ast.Call(ast.FunctionCall{Name: ast.FuncOneOrMore, Args: []ast.Expression{atom}})
		case token.KindPlusLz:
			p.next()
			atom = ast.Call(ast.FunctionCall{Name: ast.FuncOneOrMoreLazy, Args: []ast.Expression{atom}})
		case token.KindStar:
			p.next()
			atom = ast.Call(ast.FunctionCall{Name: ast.FuncZeroOrMore, Args: []ast.Expression{atom}})
		case token.KindStarLz:
			p.next()
			atom = ast.Call(ast.FunctionCall{Name: ast.FuncZeroOrMoreLazy, Args: []ast.Expression{atom}})
		case token.KindLBrace:
			start := p.peek(0).Range
			minN, maxN, lazy, err := p.parseBraceQuantity()
			if err != nil {
				return ast.Expression{}, err
			}
			call, err := quantityCall(atom, minN, maxN, lazy, start)
			if err != nil {
				return ast.Expression{}, err
			}
			atom = call
		case token.KindDot:
			p.next()
			nameTok, err := p.expect(token.KindIdentifier)
			if err != nil {
				return ast.Expression{}, err
			}
			call, err := p.parseCallAfterName(nameTok, &atom)
			if err != nil {
				return ast.Expression{}, err
			}
			atom = call
		default:
			return atom, nil
		}
	}
}

func (p *parser) parseBraceQuantity() (minN, maxN int, lazy bool, err error) {
	p.next() // '{'
	p.skipSeparators()
	minTok, err := p.expect(token.KindNumber)
	if err != nil {
		return 0, 0, false, err
	}
	minN = minTok.Number
	if p.peek(0).Kind == token.KindComma {
		p.next()
		p.skipSeparators()
		if p.peek(0).Kind == token.KindNumber {
			maxN = p.next().Number
		} else {
			maxN = -1
		}
	} else {
		maxN = minN
	}
	p.skipSeparators()
	if _, err := p.expect(token.KindRBrace); err != nil {
		return 0, 0, false, err
	}
	if p.peek(0).Kind == token.KindQuestion {
		p.next()
		lazy = true
	}
	return minN, maxN, lazy, nil
}

func quantityCall(atom ast.Expression, minN, maxN int, lazy bool, r token.Range) (ast.Expression, error) {
	if lazy && minN == maxN {
		return ast.Expression{}, diag.NewSyntax(r, "lazy quantifier is forbidden when min == max (%d)", minN)
	}
	if maxN == minN {
		return ast.Call(ast.FunctionCall{Name: ast.FuncRepeat, Args: []ast.Expression{atom}, RepeatN: minN}), nil
	}
	if maxN == -1 {
		name := ast.FuncAtLeast
		if lazy {
			name = ast.FuncAtLeastLazy
		}
		return ast.Call(ast.FunctionCall{Name: name, Args: []ast.Expression{atom}, RepeatMin: minN, RepeatMax: -1}), nil
	}
	if minN > maxN {
		return ast.Expression{}, diag.NewSyntax(r, "quantifier range {%d,%d} has min > max", minN, maxN)
	}
	name := ast.FuncRepeatRange
	if lazy {
		name = ast.FuncRepeatRangeLazy
	}
	return ast.Call(ast.FunctionCall{Name: name, Args: []ast.Expression{atom}, RepeatMin: minN, RepeatMax: maxN}), nil
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	t := p.peek(0)
	switch t.Kind {
	case token.KindCharLiteral:
		p.next()
		return ast.Lit(ast.Literal{Kind: ast.LitChar, Char: t.Char}), nil
	case token.KindStringLiteral:
		p.next()
		return ast.Lit(ast.Literal{Kind: ast.LitString, Str: t.Text}), nil
	case token.KindNumber:
		return ast.Expression{}, diag.NewSyntax(t.Range, "number literal is only valid as a repetition argument")
	case token.KindLParen:
		p.next()
		inner, err := p.parseAlternation(token.KindRParen)
		if err != nil {
			return ast.Expression{}, err
		}
		p.skipSeparators()
		if _, err := p.expect(token.KindRParen); err != nil {
			return ast.Expression{}, err
		}
		return inner, nil
	case token.KindLBracket:
		return p.parseCharClass()
	case token.KindIdentifier:
		p.next()
		if lit, ok := identifierLiteral(t.Text); ok {
			return lit, nil
		}
		if p.peek(0).Kind == token.KindLParen {
			return p.parseCallAfterName(t, nil)
		}
		return ast.BackRef(ast.BackReference{ByName: true, Name: t.Text}), nil
	default:
		return ast.Expression{}, diag.NewSyntax(t.Range, "unexpected %s", t.Kind)
	}
}

// identifierLiteral maps the reserved bare-identifier names (anchors,
// boundaries, the wildcard, and the preset classes) to their AST shape.
// Any identifier not in this set is either a function name (if followed
// by '(') or a back-reference by name.
func identifierLiteral(name string) (ast.Expression, bool) {
	switch name {
	case "start":
		return ast.Anchor(ast.AnchorStart), true
	case "end":
		return ast.Anchor(ast.AnchorEnd), true
	case "is_bound":
		return ast.Boundary(ast.BoundaryIsBound), true
	case "is_not_bound":
		return ast.Boundary(ast.BoundaryIsNotBound), true
	case "char_any":
		return ast.Lit(ast.Literal{Kind: ast.LitAnyChar}), true
	case "char_word":
		return ast.Lit(ast.Literal{Kind: ast.LitPreset, Preset: ast.CharWord}), true
	case "char_not_word":
		return ast.Lit(ast.Literal{Kind: ast.LitPreset, Preset: ast.CharNotWord}), true
	case "char_digit":
		return ast.Lit(ast.Literal{Kind: ast.LitPreset, Preset: ast.CharDigit}), true
	case "char_not_digit":
		return ast.Lit(ast.Literal{Kind: ast.LitPreset, Preset: ast.CharNotDigit}), true
	case "char_space":
		return ast.Lit(ast.Literal{Kind: ast.LitPreset, Preset: ast.CharSpace}), true
	case "char_not_space":
		return ast.Lit(ast.Literal{Kind: ast.LitPreset, Preset: ast.CharNotSpace}), true
	case "char_hex":
		return ast.Lit(ast.Literal{Kind: ast.LitPreset, Preset: ast.CharHex}), true
	default:
		return ast.Expression{}, false
	}
}

// parseCallAfterName parses a function call's "(args...)" tail. When
// explicitFirst is non-nil this is the desugaring of a
// ".name(args...)" method-call suffix and explicitFirst is the
// receiver; otherwise this is a direct "name(args...)" primary and the
// first argument is parsed from the stream. For a single-argument
// function that argument runs up to the ')'; for a function that takes
// more arguments it is one unary term, ended by the ',' before the next
// argument (a '||' chain there needs its own parentheses).
func (p *parser) parseCallAfterName(nameTok token.Token, explicitFirst *ast.Expression) (ast.Expression, error) {
	name := nameTok.Text
	if _, err := p.expect(token.KindLParen); err != nil {
		return ast.Expression{}, err
	}
	p.skipSeparators()

	receiver := func() (ast.Expression, error) {
		if explicitFirst != nil {
			return *explicitFirst, nil
		}
		if _, single := quantifierFuncByName(name); single || name == "index" {
			return p.parseAlternation(token.KindRParen)
		}
		return p.parseUnary()
	}
	// A method call's receiver stands before the '(', so no ','
	// separates it from the first argument inside the parentheses.
	skipComma := explicitFirst != nil
	wantComma := func() error {
		if skipComma {
			skipComma = false
			return nil
		}
		if p.peek(0).Kind != token.KindComma {
			t := p.peek(0)
			return diag.NewSyntax(t.Range, "expected ',' in %s(...) argument list", name)
		}
		p.next()
		p.skipSeparators()
		return nil
	}
	finish := func() error {
		p.skipSeparators()
		_, err := p.expect(token.KindRParen)
		return err
	}

	switch name {
	case "optional", "one_or_more", "zero_or_more",
		"optional_lazy", "one_or_more_lazy", "zero_or_more_lazy", "index":
		e, err := receiver()
		if err != nil {
			return ast.Expression{}, err
		}
		if err := finish(); err != nil {
			return ast.Expression{}, err
		}
		if name == "index" {
			return ast.Call(ast.FunctionCall{Name: ast.FuncIndex, Args: []ast.Expression{e}}), nil
		}
		fn, _ := quantifierFuncByName(name)
		return ast.Call(ast.FunctionCall{Name: fn, Args: []ast.Expression{e}}), nil

	case "repeat":
		e, err := receiver()
		if err != nil {
			return ast.Expression{}, err
		}
		if err := wantComma(); err != nil {
			return ast.Expression{}, err
		}
		nTok, err := p.expect(token.KindNumber)
		if err != nil {
			return ast.Expression{}, err
		}
		if err := finish(); err != nil {
			return ast.Expression{}, err
		}
		return ast.Call(ast.FunctionCall{Name: ast.FuncRepeat, Args: []ast.Expression{e}, RepeatN: nTok.Number}), nil

	case "repeat_range", "repeat_range_lazy":
		e, err := receiver()
		if err != nil {
			return ast.Expression{}, err
		}
		if err := wantComma(); err != nil {
			return ast.Expression{}, err
		}
		mTok, err := p.expect(token.KindNumber)
		if err != nil {
			return ast.Expression{}, err
		}
		if err := wantComma(); err != nil {
			return ast.Expression{}, err
		}
		nTok, err := p.expect(token.KindNumber)
		if err != nil {
			return ast.Expression{}, err
		}
		if err := finish(); err != nil {
			return ast.Expression{}, err
		}
		if mTok.Number > nTok.Number {
			return ast.Expression{}, diag.NewSyntax(nameTok.Range, "quantifier range {%d,%d} has min > max", mTok.Number, nTok.Number)
		}
		fn := ast.FuncRepeatRange
		if name == "repeat_range_lazy" {
			fn = ast.FuncRepeatRangeLazy
		}
		return ast.Call(ast.FunctionCall{Name: fn, Args: []ast.Expression{e}, RepeatMin: mTok.Number, RepeatMax: nTok.Number}), nil

	case "at_least", "at_least_lazy":
		e, err := receiver()
		if err != nil {
			return ast.Expression{}, err
		}
		if err := wantComma(); err != nil {
			return ast.Expression{}, err
		}
		mTok, err := p.expect(token.KindNumber)
		if err != nil {
			return ast.Expression{}, err
		}
		if err := finish(); err != nil {
			return ast.Expression{}, err
		}
		fn := ast.FuncAtLeast
		if name == "at_least_lazy" {
			fn = ast.FuncAtLeastLazy
		}
		return ast.Call(ast.FunctionCall{Name: fn, Args: []ast.Expression{e}, RepeatMin: mTok.Number, RepeatMax: -1}), nil

	case "is_before", "is_not_before", "is_after", "is_not_after":
		e, err := receiver()
		if err != nil {
			return ast.Expression{}, err
		}
		if err := wantComma(); err != nil {
			return ast.Expression{}, err
		}
		other, err := p.parseAlternation(token.KindRParen)
		if err != nil {
			return ast.Expression{}, err
		}
		if err := finish(); err != nil {
			return ast.Expression{}, err
		}
		var fn ast.FuncName
		switch name {
		case "is_before":
			fn = ast.FuncIsBefore
		case "is_not_before":
			fn = ast.FuncIsNotBefore
		case "is_after":
			fn = ast.FuncIsAfter
		case "is_not_after":
			fn = ast.FuncIsNotAfter
		}
		return ast.Call(ast.FunctionCall{Name: fn, Args: []ast.Expression{e, other}}), nil

	case "name":
		e, err := receiver()
		if err != nil {
			return ast.Expression{}, err
		}
		if err := wantComma(); err != nil {
			return ast.Expression{}, err
		}
		sTok, err := p.expect(token.KindStringLiteral)
		if err != nil {
			return ast.Expression{}, err
		}
		if err := finish(); err != nil {
			return ast.Expression{}, err
		}
		return ast.Call(ast.FunctionCall{Name: ast.FuncCaptureName, Args: []ast.Expression{e}, CaptureName: sTok.Text}), nil

	default:
		return ast.Expression{}, diag.NewSyntax(nameTok.Range, "unknown function %q", name)
	}
}

func quantifierFuncByName(name string) (ast.FuncName, bool) {
	switch name {
	case "optional":
		return ast.FuncOptional, true
	case "one_or_more":
		return ast.FuncOneOrMore, true
	case "zero_or_more":
		return ast.FuncZeroOrMore, true
	case "optional_lazy":
		return ast.FuncOptionalLazy, true
	case "one_or_more_lazy":
		return ast.FuncOneOrMoreLazy, true
	case "zero_or_more_lazy":
		return ast.FuncZeroOrMoreLazy, true
	default:
		return 0, false
	}
}

func (p *parser) parseCharClass() (ast.Expression, error) {
	p.next() // '['
	set := &ast.CharSet{}
	p.skipSeparators()
	if p.peek(0).Kind == token.KindNot {
		p.next()
		set.Negative = true
		p.skipSeparators()
	}
	for {
		if p.peek(0).Kind == token.KindRBracket {
			p.next()
			return ast.Lit(ast.Literal{Kind: ast.LitCharSet, Set: set}), nil
		}
		if p.peek(0).Kind == token.KindEOF {
			return ast.Expression{}, diag.NewUnexpectedEOF("unterminated character class")
		}
		el, err := p.parseCharSetElement()
		if err != nil {
			return ast.Expression{}, err
		}
		set.Elements = append(set.Elements, el)
		p.skipSeparators()
		if p.peek(0).Kind == token.KindComma {
			p.next()
			p.skipSeparators()
		}
	}
}

func (p *parser) parseCharSetElement() (ast.CharSetElement, error) {
	t := p.peek(0)
	switch t.Kind {
	case token.KindCharLiteral:
		p.next()
		if p.peek(0).Kind == token.KindRangeDots {
			p.next()
			hi, err := p.expect(token.KindCharLiteral)
			if err != nil {
				return ast.CharSetElement{}, err
			}
			if hi.Char < t.Char {
				return ast.CharSetElement{}, diag.NewSyntax(t.Range, "character range %q..%q is out of order", t.Char, hi.Char)
			}
			return ast.CharSetElement{Kind: ast.CSRange, RangeLo: t.Char, RangeHi: hi.Char}, nil
		}
		return ast.CharSetElement{Kind: ast.CSChar, Char: t.Char}, nil
	case token.KindLBracket:
		nested, err := p.parseCharClass()
		if err != nil {
			return ast.CharSetElement{}, err
		}
		if nested.Literal.Set.Negative {
			return ast.CharSetElement{}, diag.NewSyntax(t.Range, "nested character set may not be negated")
		}
		return ast.CharSetElement{Kind: ast.CSNested, Nested: nested.Literal.Set}, nil
	case token.KindIdentifier:
		lit, ok := identifierLiteral(t.Text)
		if !ok || lit.Kind != ast.ExprLiteral || lit.Literal.Kind != ast.LitPreset {
			return ast.CharSetElement{}, diag.NewSyntax(t.Range, "unexpected %q inside character class", t.Text)
		}
		p.next()
		return ast.CharSetElement{Kind: ast.CSPreset, Preset: lit.Literal.Preset}, nil
	default:
		return ast.CharSetElement{}, diag.NewSyntax(t.Range, "unexpected %s inside character class", t.Kind)
	}
}
