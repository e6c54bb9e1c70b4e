// Package structured implements the structured ("ANRE") notation front
// end: lexer, normalizer, macro expander, and parser. Unlike the
// traditional notation's single lexer+parser pair (packages lexer and
// parser), the structured pipeline runs four stages because its
// comma/newline-flexible separators and `define(...)` macros need a
// token-stream-level normalization pass before a recursive-descent
// parser can make sense of them.
package structured

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/anre/diag"
	"github.com/coregx/anre/internal/charpos"
	"github.com/coregx/anre/token"
)

// Lex tokenizes a structured-notation pattern. The returned stream has
// not been normalized or macro-expanded; callers should pass it through
// Expand (which normalizes before and again after macro expansion)
// before parsing.
func Lex(src string) ([]token.Token, error) {
	l := &lexer{it: charpos.New(src)}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.toks, nil
}

type lexer struct {
	it   *charpos.Iter
	toks []token.Token
}

func (l *lexer) emit(t token.Token) { l.toks = append(l.toks, t) }

func (l *lexer) span(start int) token.Range {
	return token.Range{Start: start, End: l.it.BytePos()}
}

func (l *lexer) run() error {
	for {
		p, ok := l.it.Peek(0)
		if !ok {
			l.emit(token.Token{Kind: token.KindEOF, Range: l.span(l.it.BytePos())})
			return nil
		}
		if p.Char == ' ' || p.Char == '\t' || p.Char == '\r' {
			l.it.Next()
			continue
		}
		if err := l.lexToken(); err != nil {
			return err
		}
	}
}

func (l *lexer) lexToken() error {
	p, _ := l.it.Peek(0)
	start := p.Start

	switch p.Char {
	case '\n':
		l.it.Next()
		l.emit(token.Token{Kind: token.KindNewline, Range: l.span(start)})
		return nil
	case '/':
		if n, ok := l.it.Peek(1); ok && n.Char == '/' {
			return l.lexLineComment()
		}
		if n, ok := l.it.Peek(1); ok && n.Char == '*' {
			return l.lexBlockComment(start)
		}
		return diag.NewSyntax(l.span(start), "unexpected character %q", p.Char)
	case ',':
		l.it.Next()
		l.emit(token.Token{Kind: token.KindComma, Range: l.span(start)})
		return nil
	case '!':
		l.it.Next()
		l.emit(token.Token{Kind: token.KindNot, Range: l.span(start)})
		return nil
	case '.':
		l.it.Next()
		if n, ok := l.it.Peek(0); ok && n.Char == '.' {
			l.it.Next()
			l.emit(token.Token{Kind: token.KindRangeDots, Range: l.span(start)})
			return nil
		}
		l.emit(token.Token{Kind: token.KindDot, Range: l.span(start)})
		return nil
	case '|':
		l.it.Next()
		if n, ok := l.it.Peek(0); ok && n.Char == '|' {
			l.it.Next()
			l.emit(token.Token{Kind: token.KindLogicOr, Range: l.span(start)})
			return nil
		}
		return diag.NewSyntax(l.span(start), "a single '|' is not valid in structured notation, use '||'")
	case '[':
		l.it.Next()
		l.emit(token.Token{Kind: token.KindLBracket, Range: l.span(start)})
		return nil
	case ']':
		l.it.Next()
		l.emit(token.Token{Kind: token.KindRBracket, Range: l.span(start)})
		return nil
	case '(':
		l.it.Next()
		l.emit(token.Token{Kind: token.KindLParen, Range: l.span(start)})
		return nil
	case ')':
		l.it.Next()
		l.emit(token.Token{Kind: token.KindRParen, Range: l.span(start)})
		return nil
	case '{':
		l.it.Next()
		l.emit(token.Token{Kind: token.KindLBrace, Range: l.span(start)})
		return nil
	case '}':
		l.it.Next()
		l.emit(token.Token{Kind: token.KindRBrace, Range: l.span(start)})
		return nil
	case '?':
		l.it.Next()
		if n, ok := l.it.Peek(0); ok && n.Char == '?' {
			l.it.Next()
			l.emit(token.Token{Kind: token.KindQuestionLz, Range: l.span(start)})
			return nil
		}
		l.emit(token.Token{Kind: token.KindQuestion, Range: l.span(start)})
		return nil
	case '+':
		l.it.Next()
		if n, ok := l.it.Peek(0); ok && n.Char == '?' {
			l.it.Next()
			l.emit(token.Token{Kind: token.KindPlusLz, Range: l.span(start)})
			return nil
		}
		l.emit(token.Token{Kind: token.KindPlus, Range: l.span(start)})
		return nil
	case '*':
		l.it.Next()
		if n, ok := l.it.Peek(0); ok && n.Char == '?' {
			l.it.Next()
			l.emit(token.Token{Kind: token.KindStarLz, Range: l.span(start)})
			return nil
		}
		l.emit(token.Token{Kind: token.KindStar, Range: l.span(start)})
		return nil
	case '\'':
		return l.lexCharLiteral(start)
	case '"':
		return l.lexStringLiteral(start)
	default:
		if isDigit(p.Char) {
			return l.lexNumber(start)
		}
		if isIdentStart(p.Char) {
			return l.lexIdentifier(start)
		}
		return diag.NewSyntax(l.span(start), "unexpected character %q", p.Char)
	}
}

func (l *lexer) lexLineComment() error {
	l.it.Next() // first '/'
	l.it.Next() // second '/'
	for {
		p, ok := l.it.Peek(0)
		if !ok || p.Char == '\n' {
			return nil
		}
		l.it.Next()
	}
}

// lexBlockComment consumes a "/* ... */" comment, allowing nested
// "/* */" pairs (spec section 4.1: "block comments nest").
func (l *lexer) lexBlockComment(start int) error {
	l.it.Next() // '/'
	l.it.Next() // '*'
	depth := 1
	for depth > 0 {
		p, ok := l.it.Peek(0)
		if !ok {
			return diag.NewUnexpectedEOF("unterminated block comment")
		}
		if p.Char == '/' {
			if n, ok := l.it.Peek(1); ok && n.Char == '*' {
				l.it.Next()
				l.it.Next()
				depth++
				continue
			}
		}
		if p.Char == '*' {
			if n, ok := l.it.Peek(1); ok && n.Char == '/' {
				l.it.Next()
				l.it.Next()
				depth--
				continue
			}
		}
		l.it.Next()
	}
	return nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	if r == '_' || unicode.IsLetter(r) {
		return true
	}
	return (r >= 0x00A0 && r <= 0xD7FF) || (r >= 0xE000 && r <= 0x10FFFF)
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func (l *lexer) lexNumber(start int) error {
	var n int
	for {
		p, ok := l.it.Peek(0)
		if !ok || !isDigit(p.Char) {
			break
		}
		l.it.Next()
		n = n*10 + int(p.Char-'0')
	}
	l.emit(token.Token{Kind: token.KindNumber, Number: n, Range: l.span(start)})
	return nil
}

func (l *lexer) lexIdentifier(start int) error {
	var runes []rune
	for {
		p, ok := l.it.Peek(0)
		if !ok || !isIdentContinue(p.Char) {
			break
		}
		l.it.Next()
		runes = append(runes, p.Char)
	}
	l.emit(token.Token{Kind: token.KindIdentifier, Text: string(runes), Range: l.span(start)})
	return nil
}

// lexEscape decodes one escape sequence (the backslash has already been
// consumed) shared by char and string literals: \\ \' \" \t \r \n \0
// \u{HHHHHH}.
func (l *lexer) lexEscape(start int) (rune, error) {
	p, ok := l.it.Next()
	if !ok {
		return 0, diag.NewUnexpectedEOF("incomplete escape sequence")
	}
	switch p.Char {
	case '\\':
		return '\\', nil
	case '\'':
		return '\'', nil
	case '"':
		return '"', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case 'n':
		return '\n', nil
	case '0':
		return 0, nil
	case 'u':
		return l.lexUnicodeEscape(start)
	default:
		return 0, diag.NewLexical(l.span(start), "unsupported escape sequence %q", p.Char)
	}
}

func (l *lexer) lexUnicodeEscape(start int) (rune, error) {
	if p, ok := l.it.Next(); !ok || p.Char != '{' {
		return 0, diag.NewSyntax(l.span(start), "unicode escape must be of the form \\u{HHHHHH}")
	}
	var hex []rune
	for {
		p, ok := l.it.Peek(0)
		if !ok {
			return 0, diag.NewUnexpectedEOF("unterminated unicode escape")
		}
		if p.Char == '}' {
			l.it.Next()
			break
		}
		l.it.Next()
		hex = append(hex, p.Char)
		if len(hex) > 6 {
			return 0, diag.NewSyntax(l.span(start), "unicode escape has too many hex digits")
		}
	}
	if len(hex) == 0 {
		return 0, diag.NewSyntax(l.span(start), "empty unicode escape")
	}
	v, err := strconv.ParseUint(string(hex), 16, 32)
	if err != nil {
		return 0, diag.NewSyntax(l.span(start), "invalid hex digits in unicode escape: %q", string(hex))
	}
	if v > utf8.MaxRune {
		return 0, diag.NewSyntax(l.span(start), "unicode escape %q is out of range", string(hex))
	}
	return rune(v), nil
}

func (l *lexer) lexCharLiteral(start int) error {
	l.it.Next() // opening '\''
	p, ok := l.it.Next()
	if !ok {
		return diag.NewUnexpectedEOF("unterminated character literal")
	}
	var c rune
	if p.Char == '\\' {
		var err error
		c, err = l.lexEscape(p.Start)
		if err != nil {
			return err
		}
	} else {
		c = p.Char
	}
	if q, ok := l.it.Next(); !ok || q.Char != '\'' {
		return diag.NewSyntax(l.span(start), "character literal must contain exactly one character")
	}
	l.emit(token.Token{Kind: token.KindCharLiteral, Char: c, Range: l.span(start)})
	return nil
}

func (l *lexer) lexStringLiteral(start int) error {
	l.it.Next() // opening '"'
	var runes []rune
	for {
		p, ok := l.it.Next()
		if !ok {
			return diag.NewUnexpectedEOF("unterminated string literal")
		}
		if p.Char == '"' {
			break
		}
		if p.Char == '\n' {
			return diag.NewSyntax(l.span(start), "string literal may not contain a raw newline")
		}
		if p.Char == '\\' {
			c, err := l.lexEscape(p.Start)
			if err != nil {
				return err
			}
			runes = append(runes, c)
			continue
		}
		runes = append(runes, p.Char)
	}
	l.emit(token.Token{Kind: token.KindStringLiteral, Text: string(runes), Range: l.span(start)})
	return nil
}
