// Package lexer tokenizes the traditional, PCRE-like notation: the
// meta-characters `[ ] { } ( ) * + ? | ^ $ .`, quantifier suffixes,
// grouping prefixes, backslash escapes, preset classes, boundary
// assertions, and back-references described in spec section 4.1.
//
// It shares internal/charpos with the structured-notation lexer
// (package structured) but produces a disjoint token alphabet; the two
// are independent recursive passes over the same kind of input, not a
// shared state machine.
package lexer

import (
	"strconv"

	"github.com/coregx/anre/diag"
	"github.com/coregx/anre/internal/charpos"
	"github.com/coregx/anre/token"
)

// Lex tokenizes a traditional-notation pattern. It returns the complete
// token stream (always terminated by a KindEOF token) or the first
// lexical error encountered.
func Lex(src string) ([]token.Token, error) {
	l := &lexer{it: charpos.New(src)}
	return l.run()
}

type lexer struct {
	it      *charpos.Iter
	inClass bool
	toks    []token.Token
}

func (l *lexer) run() ([]token.Token, error) {
	for !l.it.AtEnd() {
		if l.inClass {
			if err := l.lexClassToken(); err != nil {
				return nil, err
			}
			continue
		}
		if err := l.lexToken(); err != nil {
			return nil, err
		}
	}
	l.emit(token.Token{Kind: token.KindEOF, Range: token.Range{Start: l.it.Len(), End: l.it.Len()}})
	return l.toks, nil
}

func (l *lexer) emit(t token.Token) { l.toks = append(l.toks, t) }

func (l *lexer) lexToken() error {
	p, _ := l.it.Next()
	start := p.Start

	switch p.Char {
	case '\\':
		return l.lexEscape(start, false)
	case '[':
		l.emit(token.Token{Kind: token.KindMetaLBracket, Range: l.span(start)})
		l.inClass = true
		if np, ok := l.it.Peek(0); ok && np.Char == '^' {
			l.it.Next()
			l.emit(token.Token{Kind: token.KindClassNegation, Range: l.span(np.Start)})
		}
		return nil
	case ']':
		l.emit(token.Token{Kind: token.KindChar, Char: ']', Range: l.span(start)})
		return nil
	case '{':
		return l.lexBrace(start)
	case '}':
		l.emit(token.Token{Kind: token.KindChar, Char: '}', Range: l.span(start)})
		return nil
	case '(':
		return l.lexGroupOpen(start)
	case ')':
		l.emit(token.Token{Kind: token.KindMetaRParen, Range: l.span(start)})
		return nil
	case '*':
		l.emitQuantToken(token.KindMetaStar, start)
		return nil
	case '+':
		l.emitQuantToken(token.KindMetaPlus, start)
		return nil
	case '?':
		l.emitQuantToken(token.KindMetaQuestion, start)
		return nil
	case '|':
		l.emit(token.Token{Kind: token.KindMetaPipe, Range: l.span(start)})
		return nil
	case '^':
		l.emit(token.Token{Kind: token.KindMetaCaret, Range: l.span(start)})
		return nil
	case '$':
		l.emit(token.Token{Kind: token.KindMetaDollar, Range: l.span(start)})
		return nil
	case '.':
		l.emit(token.Token{Kind: token.KindMetaAnyChar, Range: l.span(start)})
		return nil
	default:
		l.emit(token.Token{Kind: token.KindChar, Char: p.Char, Range: l.span(start)})
		return nil
	}
}

// emitQuantToken consumes an optional trailing '?' to distinguish the
// greedy and lazy forms of *, +, and bare ?.
func (l *lexer) emitQuantToken(kind token.Kind, start int) {
	lazy := false
	if np, ok := l.it.Peek(0); ok && np.Char == '?' {
		l.it.Next()
		lazy = true
	}
	l.emit(token.Token{Kind: kind, Lazy: lazy, Range: l.span(start)})
}

// lexBrace tries to parse a {n}, {n,}, or {n,m} quantity, optionally
// followed by '?' for the lazy form. If what follows '{' isn't a valid
// quantity, '{' is a literal character (the conventional regex
// leniency) and the iterator position is restored accordingly.
func (l *lexer) lexBrace(start int) error {
	mark := l.it.Mark()
	min, minOK := l.lexDecimal()
	max := -1
	haveComma := false
	if np, ok := l.it.Peek(0); ok && np.Char == ',' {
		haveComma = true
		l.it.Next()
		if m, ok := l.lexDecimal(); ok {
			max = m
		}
	}
	closeP, ok := l.it.Peek(0)
	if !minOK || !ok || closeP.Char != '}' {
		l.it.Reset(mark)
		l.emit(token.Token{Kind: token.KindChar, Char: '{', Range: l.span(start)})
		return nil
	}
	l.it.Next() // consume '}'
	if !haveComma {
		max = min
	}
	lazy := false
	if np, ok := l.it.Peek(0); ok && np.Char == '?' {
		l.it.Next()
		lazy = true
	}
	if max != -1 && min > max {
		return diag.NewSyntax(l.span(start), "quantifier range {%d,%d} has min > max", min, max)
	}
	l.emit(token.Token{
		Kind: token.KindMetaQuantity, QuantMin: min, QuantMax: max, Lazy: lazy,
		Range: l.span(start),
	})
	return nil
}

func (l *lexer) lexDecimal() (int, bool) {
	start := l.it.Mark()
	n := 0
	any := false
	for {
		p, ok := l.it.Peek(0)
		if !ok || p.Char < '0' || p.Char > '9' {
			break
		}
		l.it.Next()
		n = n*10 + int(p.Char-'0')
		any = true
	}
	if !any {
		l.it.Reset(start)
		return 0, false
	}
	return n, true
}

// lexGroupOpen recognizes the grouping prefixes: "(", "(?:", "(?<name>",
// "(?P<name>", "(?=", "(?!", "(?<=", "(?<!".
func (l *lexer) lexGroupOpen(start int) error {
	tok := token.Token{Kind: token.KindMetaLParen, Group: token.GroupPlain, Range: l.span(start)}
	np, ok := l.it.Peek(0)
	if !ok || np.Char != '?' {
		l.emit(tok)
		return nil
	}
	l.it.Next() // consume '?'
	p2, ok2 := l.it.Peek(0)
	if !ok2 {
		return diag.NewUnexpectedEOF("incomplete grouping prefix '(?'")
	}
	switch p2.Char {
	case ':':
		l.it.Next()
		tok.Group = token.GroupNonCapturing
	case '=':
		l.it.Next()
		tok.Group = token.GroupLookAhead
	case '!':
		l.it.Next()
		tok.Group = token.GroupLookAheadNeg
	case '<':
		l.it.Next()
		p3, ok3 := l.it.Peek(0)
		if ok3 && p3.Char == '=' {
			l.it.Next()
			tok.Group = token.GroupLookBehind
		} else if ok3 && p3.Char == '!' {
			l.it.Next()
			tok.Group = token.GroupLookBehindNeg
		} else {
			name, err := l.lexGroupName('>')
			if err != nil {
				return err
			}
			tok.Group = token.GroupNamed
			tok.Text = name
		}
	case 'P':
		l.it.Next()
		p3, ok3 := l.it.Peek(0)
		if !ok3 || p3.Char != '<' {
			return diag.NewLexical(l.span(start), "malformed grouping prefix '(?P'")
		}
		l.it.Next()
		name, err := l.lexGroupName('>')
		if err != nil {
			return err
		}
		tok.Group = token.GroupNamed
		tok.Text = name
	default:
		return diag.NewLexical(l.span(start), "malformed grouping prefix '(?%c'", p2.Char)
	}
	tok.Range = l.span(start)
	l.emit(tok)
	return nil
}

func (l *lexer) lexGroupName(closing rune) (string, error) {
	nameStart := l.it.BytePos()
	var name []rune
	for {
		p, ok := l.it.Next()
		if !ok {
			return "", diag.NewUnexpectedEOF("unterminated group name")
		}
		if p.Char == closing {
			break
		}
		name = append(name, p.Char)
	}
	if len(name) == 0 {
		return "", diag.NewLexical(l.span(nameStart), "empty group name")
	}
	return string(name), nil
}

// lexEscape handles a backslash escape. inClass narrows the accepted
// escape set per spec 4.1: negative preset classes, boundary assertions,
// and back-references are rejected inside a character class.
func (l *lexer) lexEscape(start int, inClass bool) error {
	p, ok := l.it.Next()
	if !ok {
		return diag.NewUnexpectedEOF("incomplete escape sequence")
	}
	switch p.Char {
	case 't':
		l.emitChar('\t', start)
	case 'r':
		l.emitChar('\r', start)
	case 'n':
		l.emitChar('\n', start)
	case '0':
		l.emitChar('\x00', start)
	case 'u':
		return l.lexUnicodeEscape(start)
	case 'w', 'W', 'd', 'D', 's', 'S':
		neg := p.Char == 'W' || p.Char == 'D' || p.Char == 'S'
		if inClass && neg {
			return diag.NewSyntax(l.span(start), "negative preset class \\%c is not allowed inside a character class", p.Char)
		}
		l.emit(token.Token{Kind: token.KindPresetClass, Char: p.Char, Negated: neg, Range: l.span(start)})
	case 'b', 'B':
		if inClass {
			return diag.NewSyntax(l.span(start), "boundary assertion \\%c is not allowed inside a character class", p.Char)
		}
		l.emit(token.Token{Kind: token.KindBoundary, Negated: p.Char == 'B', Range: l.span(start)})
	case 'k':
		if inClass {
			return diag.NewSyntax(l.span(start), "back-reference is not allowed inside a character class")
		}
		return l.lexNamedBackref(start)
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if inClass {
			return diag.NewSyntax(l.span(start), "back-reference is not allowed inside a character class")
		}
		l.emit(token.Token{Kind: token.KindBackRefIndex, Number: int(p.Char - '0'), Range: l.span(start)})
	default:
		// Meta-escape of any punctuation: \X is literal X for any X that
		// isn't otherwise a recognized escape letter above.
		l.emitChar(p.Char, start)
	}
	return nil
}

func (l *lexer) emitChar(c rune, start int) {
	l.emit(token.Token{Kind: token.KindChar, Char: c, Range: l.span(start)})
}

func (l *lexer) lexNamedBackref(start int) error {
	p, ok := l.it.Next()
	if !ok || p.Char != '<' {
		return diag.NewLexical(l.span(start), "expected '<' after \\k")
	}
	name, err := l.lexGroupName('>')
	if err != nil {
		return err
	}
	l.emit(token.Token{Kind: token.KindBackRefName, Text: name, Range: l.span(start)})
	return nil
}

// lexUnicodeEscape parses \u{HHHHHH}: 1-6 hex digits, value <= 0x10FFFF.
func (l *lexer) lexUnicodeEscape(start int) error {
	p, ok := l.it.Next()
	if !ok || p.Char != '{' {
		return diag.NewLexical(l.span(start), "expected '{' after \\u")
	}
	var digits []rune
	for {
		dp, ok := l.it.Next()
		if !ok {
			return diag.NewUnexpectedEOF("unterminated unicode escape")
		}
		if dp.Char == '}' {
			break
		}
		digits = append(digits, dp.Char)
		if len(digits) > 6 {
			return diag.NewLexical(l.span(start), "unicode escape has more than 6 hex digits")
		}
	}
	if len(digits) == 0 {
		return diag.NewLexical(l.span(start), "empty unicode escape")
	}
	v, err := strconv.ParseUint(string(digits), 16, 32)
	if err != nil {
		return diag.NewLexical(l.span(start), "invalid hex digit in unicode escape")
	}
	if v > 0x10FFFF {
		return diag.NewLexical(l.span(start), "unicode escape 0x%X exceeds U+10FFFF", v)
	}
	l.emitChar(rune(v), start)
	return nil
}

func (l *lexer) lexClassToken() error {
	p, _ := l.it.Next()
	start := p.Start

	switch p.Char {
	case ']':
		l.emit(token.Token{Kind: token.KindMetaRBracket, Range: l.span(start)})
		l.inClass = false
		return nil
	case '\\':
		if err := l.lexEscape(start, true); err != nil {
			return err
		}
	default:
		l.emit(token.Token{Kind: token.KindChar, Char: p.Char, Range: l.span(start)})
	}

	// Rewrite "char '-' char" into a single CharRange, per spec 4.1: '-'
	// between two character tokens is only a range operator when both
	// neighbors are plain characters (not a preset class, not the
	// closing ']').
	if len(l.toks) >= 1 {
		last := l.toks[len(l.toks)-1]
		if last.Kind == token.KindChar {
			if np, ok := l.it.Peek(0); ok && np.Char == '-' {
				if np2, ok2 := l.it.Peek(1); ok2 && np2.Char != ']' {
					l.it.Next() // consume '-'
					var hi rune
					rangeStart := last.Range.Start
					if np2.Char == '\\' {
						l.it.Next()
						before := len(l.toks)
						if err := l.lexEscape(np2.Start, true); err != nil {
							return err
						}
						hiTok := l.toks[len(l.toks)-1]
						if hiTok.Kind != token.KindChar {
							return diag.NewSyntax(l.span(np2.Start), "invalid character range end")
						}
						hi = hiTok.Char
						l.toks = l.toks[:before]
					} else {
						hp, _ := l.it.Next()
						hi = hp.Char
					}
					l.toks = l.toks[:len(l.toks)-1] // drop the standalone low-char token
					if hi < last.Char {
						return diag.NewSyntax(l.span(rangeStart), "character range %q-%q is out of order", last.Char, hi)
					}
					l.emit(token.Token{
						Kind: token.KindCharRange, RangeLo: last.Char, RangeHi: hi,
						Range: token.Range{Start: rangeStart, End: l.it.BytePos()},
					})
				}
			}
		}
	}
	return nil
}

func (l *lexer) span(start int) token.Range {
	return token.Range{Start: start, End: l.it.BytePos()}
}
