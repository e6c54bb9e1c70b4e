package parser

import (
	"testing"

	"github.com/coregx/anre/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return p
}

func TestParseLiteralRunCoalesces(t *testing.T) {
	p := mustParse(t, "abc")
	if len(p.Expressions) != 1 {
		t.Fatalf("Expressions = %v, want 1 coalesced string literal", p.Expressions)
	}
	lit := p.Expressions[0].Literal
	if lit == nil || lit.Kind != ast.LitString || lit.Str != "abc" {
		t.Fatalf("got %+v, want LitString \"abc\"", p.Expressions[0])
	}
}

func TestParseSingleCharNotCoalesced(t *testing.T) {
	p := mustParse(t, "a")
	lit := p.Expressions[0].Literal
	if lit == nil || lit.Kind != ast.LitChar || lit.Char != 'a' {
		t.Fatalf("got %+v, want LitChar 'a'", p.Expressions[0])
	}
}

func TestParseQuantifierBreaksRun(t *testing.T) {
	p := mustParse(t, "ab*c")
	if len(p.Expressions) != 3 {
		t.Fatalf("Expressions = %v, want 3 (a, b*, c)", p.Expressions)
	}
	if p.Expressions[0].Literal.Char != 'a' {
		t.Errorf("first = %+v", p.Expressions[0])
	}
	call := p.Expressions[1].Call
	if call == nil || call.Name != ast.FuncZeroOrMore {
		t.Fatalf("second = %+v, want zero_or_more", p.Expressions[1])
	}
	if call.Args[0].Literal.Char != 'b' {
		t.Errorf("zero_or_more arg = %+v", call.Args[0])
	}
	if p.Expressions[2].Literal.Char != 'c' {
		t.Errorf("third = %+v", p.Expressions[2])
	}
}

func TestParseLazyQuantifiers(t *testing.T) {
	p := mustParse(t, "a+?")
	call := p.Expressions[0].Call
	if call == nil || call.Name != ast.FuncOneOrMoreLazy {
		t.Fatalf("got %+v, want one_or_more_lazy", p.Expressions[0])
	}
}

func TestParseQuantityRepeat(t *testing.T) {
	p := mustParse(t, "a{3}")
	call := p.Expressions[0].Call
	if call == nil || call.Name != ast.FuncRepeat || call.RepeatN != 3 {
		t.Fatalf("got %+v, want repeat(3)", p.Expressions[0])
	}
}

func TestParseQuantityRange(t *testing.T) {
	p := mustParse(t, "a{2,5}")
	call := p.Expressions[0].Call
	if call == nil || call.Name != ast.FuncRepeatRange || call.RepeatMin != 2 || call.RepeatMax != 5 {
		t.Fatalf("got %+v, want repeat_range(2,5)", p.Expressions[0])
	}
}

func TestParseQuantityAtLeast(t *testing.T) {
	p := mustParse(t, "a{2,}")
	call := p.Expressions[0].Call
	if call == nil || call.Name != ast.FuncAtLeast || call.RepeatMin != 2 || call.RepeatMax != -1 {
		t.Fatalf("got %+v, want at_least(2)", p.Expressions[0])
	}
}

func TestParseLazyExactRepeatRejected(t *testing.T) {
	if _, err := Parse("a{3}?"); err == nil {
		t.Fatalf("expected error for lazy exact-count repeat")
	}
}

func TestParseLeadingQuantifierRejected(t *testing.T) {
	if _, err := Parse("*a"); err == nil {
		t.Fatalf("expected error for leading quantifier")
	}
}

func TestParseAlternationRightAssociative(t *testing.T) {
	p := mustParse(t, "a|b|c")
	if len(p.Expressions) != 1 || p.Expressions[0].Kind != ast.ExprOr {
		t.Fatalf("got %+v, want single Or expression", p.Expressions)
	}
	top := p.Expressions[0].Or
	if top.Left.Literal == nil || top.Left.Literal.Char != 'a' {
		t.Fatalf("top.Left = %+v, want 'a'", top.Left)
	}
	if top.Right.Kind != ast.ExprOr {
		t.Fatalf("top.Right = %+v, want nested Or (right-associative)", top.Right)
	}
	inner := top.Right.Or
	if inner.Left.Literal.Char != 'b' || inner.Right.Literal.Char != 'c' {
		t.Fatalf("inner = %+v, want b|c", inner)
	}
}

func TestParsePlainGroupIsIndexedCapture(t *testing.T) {
	p := mustParse(t, "(a)")
	call := p.Expressions[0].Call
	if call == nil || call.Name != ast.FuncIndex {
		t.Fatalf("got %+v, want index(...)", p.Expressions[0])
	}
}

func TestParseNonCapturingGroupUnwraps(t *testing.T) {
	p := mustParse(t, "(?:ab)")
	if len(p.Expressions) != 1 || p.Expressions[0].Kind != ast.ExprLiteral {
		t.Fatalf("got %+v, want bare literal (no capture wrapper)", p.Expressions[0])
	}
}

func TestParseNamedGroup(t *testing.T) {
	p := mustParse(t, "(?<tag>a)")
	call := p.Expressions[0].Call
	if call == nil || call.Name != ast.FuncCaptureName || call.CaptureName != "tag" {
		t.Fatalf("got %+v, want name(..., \"tag\")", p.Expressions[0])
	}
}

func TestParsePythonStyleNamedGroup(t *testing.T) {
	p := mustParse(t, "(?P<tag>a)")
	call := p.Expressions[0].Call
	if call == nil || call.Name != ast.FuncCaptureName || call.CaptureName != "tag" {
		t.Fatalf("got %+v, want name(..., \"tag\")", p.Expressions[0])
	}
}

func TestParseLookAhead(t *testing.T) {
	p := mustParse(t, "a(?=b)")
	if len(p.Expressions) != 2 {
		t.Fatalf("Expressions = %v, want 2", p.Expressions)
	}
	call := p.Expressions[1].Call
	if call == nil || call.Name != ast.FuncIsBefore {
		t.Fatalf("got %+v, want is_before", p.Expressions[1])
	}
	if call.Args[0].Kind != ast.ExprGroup || len(call.Args[0].Group) != 0 {
		t.Errorf("is_before receiver = %+v, want empty group", call.Args[0])
	}
	if call.Args[1].Literal == nil || call.Args[1].Literal.Char != 'b' {
		t.Errorf("is_before arg = %+v, want 'b'", call.Args[1])
	}
}

func TestParseNegativeLookAhead(t *testing.T) {
	p := mustParse(t, "a(?!b)")
	call := p.Expressions[1].Call
	if call == nil || call.Name != ast.FuncIsNotBefore {
		t.Fatalf("got %+v, want is_not_before", p.Expressions[1])
	}
}

func TestParseLookBehindIsZeroWidth(t *testing.T) {
	p := mustParse(t, "(?<=foo)bar")
	if len(p.Expressions) != 2 {
		t.Fatalf("Expressions = %v, want 2 (assertion, then \"bar\" as its own term)", p.Expressions)
	}
	call := p.Expressions[0].Call
	if call == nil || call.Name != ast.FuncIsAfter {
		t.Fatalf("got %+v, want is_after", p.Expressions[0])
	}
	if call.Args[0].Kind != ast.ExprGroup || len(call.Args[0].Group) != 0 {
		t.Errorf("is_after e arg = %+v, want empty group", call.Args[0])
	}
	if call.Args[1].Literal == nil || call.Args[1].Literal.Str != "foo" {
		t.Errorf("is_after prev arg = %+v, want \"foo\"", call.Args[1])
	}
	if p.Expressions[1].Literal == nil || p.Expressions[1].Literal.Str != "bar" {
		t.Errorf("second term = %+v, want \"bar\"", p.Expressions[1])
	}
}

func TestParseNegativeLookBehind(t *testing.T) {
	p := mustParse(t, "(?<!foo)bar")
	call := p.Expressions[0].Call
	if call == nil || call.Name != ast.FuncIsNotAfter {
		t.Fatalf("got %+v, want is_not_after", p.Expressions[0])
	}
}

func TestParseCharClass(t *testing.T) {
	p := mustParse(t, "[a-z0-9]")
	lit := p.Expressions[0].Literal
	if lit == nil || lit.Kind != ast.LitCharSet {
		t.Fatalf("got %+v, want LitCharSet", p.Expressions[0])
	}
	if len(lit.Set.Elements) != 2 {
		t.Fatalf("Elements = %v, want 2 ranges", lit.Set.Elements)
	}
	if lit.Set.Elements[0].Kind != ast.CSRange || lit.Set.Elements[0].RangeLo != 'a' || lit.Set.Elements[0].RangeHi != 'z' {
		t.Errorf("Elements[0] = %+v", lit.Set.Elements[0])
	}
}

func TestParseNegatedCharClass(t *testing.T) {
	p := mustParse(t, "[^a]")
	lit := p.Expressions[0].Literal
	if lit == nil || !lit.Set.Negative {
		t.Fatalf("got %+v, want negative char set", p.Expressions[0])
	}
}

func TestParseBackReferences(t *testing.T) {
	p := mustParse(t, `(?<tag>a)\k<tag>\1`)
	if len(p.Expressions) != 3 {
		t.Fatalf("Expressions = %v, want 3", p.Expressions)
	}
	if p.Expressions[1].BackReference == nil || !p.Expressions[1].BackReference.ByName || p.Expressions[1].BackReference.Name != "tag" {
		t.Errorf("got %+v, want by-name backref \"tag\"", p.Expressions[1])
	}
	if p.Expressions[2].BackReference == nil || p.Expressions[2].BackReference.Index != 1 {
		t.Errorf("got %+v, want index backref 1", p.Expressions[2])
	}
}

func TestParseAnchorsAndBoundaries(t *testing.T) {
	p := mustParse(t, `^a\bb$`)
	if p.Expressions[0].Kind != ast.ExprAnchor || p.Expressions[0].Anchor != ast.AnchorStart {
		t.Errorf("got %+v, want start anchor", p.Expressions[0])
	}
	if p.Expressions[len(p.Expressions)-1].Kind != ast.ExprAnchor || p.Expressions[len(p.Expressions)-1].Anchor != ast.AnchorEnd {
		t.Errorf("got %+v, want end anchor", p.Expressions[len(p.Expressions)-1])
	}
}

func TestParsePresetClassAndAnyChar(t *testing.T) {
	p := mustParse(t, `\d.`)
	if p.Expressions[0].Literal == nil || p.Expressions[0].Literal.Kind != ast.LitPreset || p.Expressions[0].Literal.Preset != ast.CharDigit {
		t.Errorf("got %+v, want char_digit preset", p.Expressions[0])
	}
	if p.Expressions[1].Literal == nil || p.Expressions[1].Literal.Kind != ast.LitAnyChar {
		t.Errorf("got %+v, want any-char", p.Expressions[1])
	}
}

func TestParseEmailLikePattern(t *testing.T) {
	mustParse(t, `^[\w.]+@[\w.]+\.\w+$`)
}

func TestParseUnterminatedGroupError(t *testing.T) {
	if _, err := Parse("(a"); err == nil {
		t.Fatalf("expected error for unterminated group")
	}
}

func TestParseUnterminatedClassError(t *testing.T) {
	if _, err := Parse("[a"); err == nil {
		t.Fatalf("expected error for unterminated character class")
	}
}

func TestParseTrailingUnexpectedTokenError(t *testing.T) {
	if _, err := Parse("a)"); err == nil {
		t.Fatalf("expected error for stray closing paren")
	}
}
