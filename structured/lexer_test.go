package structured

import (
	"testing"

	"github.com/coregx/anre/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func mustLex(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q) error: %v", src, err)
	}
	return toks
}

func TestLexIdentifiersAndPunctuation(t *testing.T) {
	toks := mustLex(t, "char_digit, one_or_more")
	want := []token.Kind{token.KindIdentifier, token.KindComma, token.KindIdentifier, token.KindEOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("kinds[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if toks[0].Text != "char_digit" || toks[2].Text != "one_or_more" {
		t.Errorf("identifier text wrong: %v", toks)
	}
}

func TestLexDoublePipeRequired(t *testing.T) {
	if _, err := Lex("a | b"); err == nil {
		t.Fatalf("single '|' should be rejected")
	}
	toks := mustLex(t, "'a' || 'b'")
	want := []token.Kind{token.KindCharLiteral, token.KindLogicOr, token.KindCharLiteral, token.KindEOF}
	if got := kinds(toks); !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestLexDotVsRangeDots(t *testing.T) {
	toks := mustLex(t, "'a'..'z' char_any")
	want := []token.Kind{token.KindCharLiteral, token.KindRangeDots, token.KindCharLiteral, token.KindIdentifier, token.KindEOF}
	if got := kinds(toks); !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestLexQuantifierSymbols(t *testing.T) {
	toks := mustLex(t, "? ?? + +? * *?")
	want := []token.Kind{
		token.KindQuestion, token.KindQuestionLz,
		token.KindPlus, token.KindPlusLz,
		token.KindStar, token.KindStarLz,
		token.KindEOF,
	}
	if got := kinds(toks); !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestLexNumber(t *testing.T) {
	toks := mustLex(t, "12345")
	if toks[0].Kind != token.KindNumber || toks[0].Number != 12345 {
		t.Fatalf("got %v, want Number(12345)", toks[0])
	}
}

func TestLexCharLiteralEscapes(t *testing.T) {
	toks := mustLex(t, `'\n' '\t' '\u{1F600}'`)
	want := []rune{'\n', '\t', 0x1F600}
	for i, r := range want {
		if toks[i].Kind != token.KindCharLiteral || toks[i].Char != r {
			t.Errorf("toks[%d] = %v, want char %q", i, toks[i], r)
		}
	}
}

func TestLexStringLiteral(t *testing.T) {
	toks := mustLex(t, `"hello\nworld"`)
	if toks[0].Kind != token.KindStringLiteral || toks[0].Text != "hello\nworld" {
		t.Fatalf("got %v", toks[0])
	}
}

func TestLexStringLiteralRejectsRawNewline(t *testing.T) {
	if _, err := Lex("\"a\nb\""); err == nil {
		t.Fatalf("raw newline in string literal should be rejected")
	}
}

func TestLexLineComment(t *testing.T) {
	toks := mustLex(t, "'a' // a comment\n'b'")
	want := []token.Kind{token.KindCharLiteral, token.KindNewline, token.KindCharLiteral, token.KindEOF}
	if got := kinds(toks); !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestLexNestedBlockComment(t *testing.T) {
	toks := mustLex(t, "'a' /* outer /* inner */ still outer */ 'b'")
	want := []token.Kind{token.KindCharLiteral, token.KindCharLiteral, token.KindEOF}
	if got := kinds(toks); !equalKinds(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestLexUnterminatedBlockCommentIsError(t *testing.T) {
	if _, err := Lex("'a' /* unterminated"); err == nil {
		t.Fatalf("unterminated block comment should be rejected")
	}
}

func TestLexIdentifierUnicodeRange(t *testing.T) {
	toks := mustLex(t, "café")
	if toks[0].Kind != token.KindIdentifier || toks[0].Text != "café" {
		t.Fatalf("got %v", toks[0])
	}
}

func equalKinds(got, want []token.Kind) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
