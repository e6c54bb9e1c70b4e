package structured

import (
	"testing"

	"github.com/coregx/anre/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return prog
}

func TestParseCharAndStringLiterals(t *testing.T) {
	prog := mustParse(t, `'a', "bc"`)
	if len(prog.Expressions) != 2 {
		t.Fatalf("len(Expressions) = %d, want 2: %v", len(prog.Expressions), prog.Expressions)
	}
	if prog.Expressions[0].Literal.Kind != ast.LitChar || prog.Expressions[0].Literal.Char != 'a' {
		t.Errorf("Expressions[0] = %v, want LitChar 'a'", prog.Expressions[0])
	}
	if prog.Expressions[1].Literal.Kind != ast.LitString || prog.Expressions[1].Literal.Str != "bc" {
		t.Errorf("Expressions[1] = %v, want LitString \"bc\"", prog.Expressions[1])
	}
}

func TestParseNewlineSeparatorEquivalentToComma(t *testing.T) {
	prog := mustParse(t, "'a'\n'b'")
	if len(prog.Expressions) != 2 {
		t.Fatalf("len(Expressions) = %d, want 2: %v", len(prog.Expressions), prog.Expressions)
	}
}

func TestParseNumberOutsideRepetitionRejected(t *testing.T) {
	if _, err := Parse("42"); err == nil {
		t.Fatalf("bare number literal should be rejected")
	}
}

func TestParseAlternation(t *testing.T) {
	prog := mustParse(t, "'a' || 'b'")
	if len(prog.Expressions) != 1 {
		t.Fatalf("len(Expressions) = %d, want 1", len(prog.Expressions))
	}
	top := prog.Expressions[0]
	if top.Kind != ast.ExprOr {
		t.Fatalf("top.Kind = %v, want ExprOr", top.Kind)
	}
	if top.Or.Left.Literal.Char != 'a' || top.Or.Right.Literal.Char != 'b' {
		t.Errorf("top.Or = %+v, want ('a' || 'b')", top.Or)
	}
}

func TestParseAlternationOverSequences(t *testing.T) {
	prog := mustParse(t, "'a', 'b' || 'c', 'd'")
	top := prog.Expressions[0]
	if top.Kind != ast.ExprOr {
		t.Fatalf("top.Kind = %v, want ExprOr", top.Kind)
	}
	if top.Or.Left.Kind != ast.ExprGroup || len(top.Or.Left.Group) != 2 {
		t.Errorf("top.Or.Left = %+v, want 2-element group", top.Or.Left)
	}
	if top.Or.Right.Kind != ast.ExprGroup || len(top.Or.Right.Group) != 2 {
		t.Errorf("top.Or.Right = %+v, want 2-element group", top.Or.Right)
	}
}

func TestParseSymbolicQuantifiers(t *testing.T) {
	cases := map[string]ast.FuncName{
		"'a'?":  ast.FuncOptional,
		"'a'??": ast.FuncOptionalLazy,
		"'a'+":  ast.FuncOneOrMore,
		"'a'+?": ast.FuncOneOrMoreLazy,
		"'a'*":  ast.FuncZeroOrMore,
		"'a'*?": ast.FuncZeroOrMoreLazy,
	}
	for src, want := range cases {
		prog := mustParse(t, src)
		got := prog.Expressions[0]
		if got.Kind != ast.ExprCall || got.Call.Name != want {
			t.Errorf("Parse(%q) = %v, want call %v", src, got, want)
		}
	}
}

func TestParseBraceQuantity(t *testing.T) {
	prog := mustParse(t, "'a'{2,5}")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncRepeatRange || call.RepeatMin != 2 || call.RepeatMax != 5 {
		t.Fatalf("got %+v", call)
	}
}

func TestParseBraceQuantityExact(t *testing.T) {
	prog := mustParse(t, "'a'{3}")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncRepeat || call.RepeatN != 3 {
		t.Fatalf("got %+v", call)
	}
}

func TestParseBraceQuantityAtLeast(t *testing.T) {
	prog := mustParse(t, "'a'{2,}")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncAtLeast || call.RepeatMin != 2 || call.RepeatMax != -1 {
		t.Fatalf("got %+v", call)
	}
}

func TestParseBraceQuantityLazy(t *testing.T) {
	prog := mustParse(t, "'a'{2,5}?")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncRepeatRangeLazy {
		t.Fatalf("got %+v", call)
	}
}

func TestParseLazyExactRepeatRejected(t *testing.T) {
	if _, err := Parse("'a'{3}?"); err == nil {
		t.Fatalf("lazy exact-count repeat should be rejected")
	}
}

func TestParseQuantifierRangeOutOfOrderRejected(t *testing.T) {
	if _, err := Parse("'a'{5,2}"); err == nil {
		t.Fatalf("{5,2} should be rejected")
	}
}

func TestParseMethodCallOptional(t *testing.T) {
	prog := mustParse(t, "'a'.optional()")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncOptional || len(call.Args) != 1 {
		t.Fatalf("got %+v", call)
	}
}

func TestParseMethodCallRepeat(t *testing.T) {
	prog := mustParse(t, "'a'.repeat(4)")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncRepeat || call.RepeatN != 4 {
		t.Fatalf("got %+v", call)
	}
}

func TestParseMethodCallRepeatRange(t *testing.T) {
	prog := mustParse(t, "'a'.repeat_range(2, 4)")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncRepeatRange || call.RepeatMin != 2 || call.RepeatMax != 4 {
		t.Fatalf("got %+v", call)
	}
}

func TestParseMethodCallAtLeastLazy(t *testing.T) {
	prog := mustParse(t, "'a'.at_least_lazy(3)")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncAtLeastLazy || call.RepeatMin != 3 || call.RepeatMax != -1 {
		t.Fatalf("got %+v", call)
	}
}

func TestParseIsBeforeMethodCall(t *testing.T) {
	prog := mustParse(t, "'a'.is_before('b')")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncIsBefore || len(call.Args) != 2 {
		t.Fatalf("got %+v", call)
	}
	if call.Args[0].Literal.Char != 'a' || call.Args[1].Literal.Char != 'b' {
		t.Errorf("args = %+v", call.Args)
	}
}

func TestParseIsAfterDirectCall(t *testing.T) {
	prog := mustParse(t, "is_after('a', 'b')")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncIsAfter || len(call.Args) != 2 {
		t.Fatalf("got %+v", call)
	}
}

func TestParseNameCaptureMethodCall(t *testing.T) {
	prog := mustParse(t, `'a'.name("tag")`)
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncCaptureName || call.CaptureName != "tag" {
		t.Fatalf("got %+v", call)
	}
}

func TestParseIndexMethodCall(t *testing.T) {
	prog := mustParse(t, "'a'.index()")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncIndex {
		t.Fatalf("got %+v", call)
	}
}

func TestParseAnchorsAndBoundaries(t *testing.T) {
	prog := mustParse(t, "start, end, is_bound, is_not_bound")
	want := []ast.AnchorName{ast.AnchorStart, ast.AnchorEnd}
	if prog.Expressions[0].Anchor != want[0] || prog.Expressions[1].Anchor != want[1] {
		t.Errorf("anchors = %v, %v", prog.Expressions[0], prog.Expressions[1])
	}
	if prog.Expressions[2].Boundary != ast.BoundaryIsBound || prog.Expressions[3].Boundary != ast.BoundaryIsNotBound {
		t.Errorf("boundaries = %v, %v", prog.Expressions[2], prog.Expressions[3])
	}
}

func TestParsePresetClassIdentifiers(t *testing.T) {
	prog := mustParse(t, "char_any, char_word, char_not_digit, char_hex")
	if prog.Expressions[0].Literal.Kind != ast.LitAnyChar {
		t.Errorf("char_any = %v", prog.Expressions[0])
	}
	if prog.Expressions[1].Literal.Preset != ast.CharWord {
		t.Errorf("char_word = %v", prog.Expressions[1])
	}
	if prog.Expressions[2].Literal.Preset != ast.CharNotDigit {
		t.Errorf("char_not_digit = %v", prog.Expressions[2])
	}
	if prog.Expressions[3].Literal.Preset != ast.CharHex {
		t.Errorf("char_hex = %v", prog.Expressions[3])
	}
}

func TestParseBackReferenceByName(t *testing.T) {
	prog := mustParse(t, "some_group")
	ref := prog.Expressions[0]
	if ref.Kind != ast.ExprBackReference || !ref.BackReference.ByName || ref.BackReference.Name != "some_group" {
		t.Fatalf("got %+v", ref)
	}
}

func TestParseGroupingIsNonCapturing(t *testing.T) {
	prog := mustParse(t, "('a', 'b')")
	if len(prog.Expressions) != 1 {
		t.Fatalf("len(Expressions) = %d, want 1", len(prog.Expressions))
	}
	top := prog.Expressions[0]
	if top.Kind != ast.ExprGroup || len(top.Group) != 2 {
		t.Fatalf("got %+v, want a 2-element group", top)
	}
}

func TestParseCharClassRangeAndPreset(t *testing.T) {
	prog := mustParse(t, "['a'..'z', char_digit]")
	set := prog.Expressions[0].Literal.Set
	if set.Negative {
		t.Fatalf("class should not be negated")
	}
	if len(set.Elements) != 2 {
		t.Fatalf("got %d elements, want 2: %+v", len(set.Elements), set.Elements)
	}
	if set.Elements[0].Kind != ast.CSRange || set.Elements[0].RangeLo != 'a' || set.Elements[0].RangeHi != 'z' {
		t.Errorf("element 0 = %+v", set.Elements[0])
	}
	if set.Elements[1].Kind != ast.CSPreset || set.Elements[1].Preset != ast.CharDigit {
		t.Errorf("element 1 = %+v", set.Elements[1])
	}
}

func TestParseNegatedCharClass(t *testing.T) {
	prog := mustParse(t, "['a', 'b']")
	posSet := prog.Expressions[0].Literal.Set
	if posSet.Negative {
		t.Fatalf("positive class should not be negated")
	}

	neg := mustParse(t, "[!'a', 'b']")
	negSet := neg.Expressions[0].Literal.Set
	if !negSet.Negative {
		t.Fatalf("negated class should have Negative = true")
	}
}

func TestParseCharClassRangeOutOfOrderRejected(t *testing.T) {
	if _, err := Parse("['z'..'a']"); err == nil {
		t.Fatalf("out-of-order range should be rejected")
	}
}

func TestParseUnterminatedCharClassRejected(t *testing.T) {
	if _, err := Parse("['a'"); err == nil {
		t.Fatalf("unterminated character class should be rejected")
	}
}

func TestParseUnterminatedGroupRejected(t *testing.T) {
	if _, err := Parse("('a'"); err == nil {
		t.Fatalf("unterminated group should be rejected")
	}
}

func TestParseMacroExpansionFeedsParser(t *testing.T) {
	prog := mustParse(t, "define(digit_range, ['0'..'9'])\ndigit_range.one_or_more()")
	call := prog.Expressions[0].Call
	if call.Name != ast.FuncOneOrMore {
		t.Fatalf("got %+v", call)
	}
	set := call.Args[0].Literal.Set
	if set.Elements[0].Kind != ast.CSRange || set.Elements[0].RangeLo != '0' || set.Elements[0].RangeHi != '9' {
		t.Errorf("expanded arg = %+v", call.Args[0])
	}
}

func TestParseEmailLikePattern(t *testing.T) {
	prog := mustParse(t, `[char_word, '.', '-'].one_or_more(), '@', [char_word, '-'].one_or_more(), '.', [char_word].at_least(2)`)
	if len(prog.Expressions) != 5 {
		t.Fatalf("len(Expressions) = %d, want 5: %+v", len(prog.Expressions), prog.Expressions)
	}
}
