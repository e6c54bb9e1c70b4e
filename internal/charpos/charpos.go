// Package charpos provides a rune-with-byte-position iterator shared by
// the structured and traditional lexers, grounded on the upstream
// engine's CharWithPosition primitive. Go's range-over-string already
// decodes UTF-8 and reports byte offsets, so this package is a thin
// lookahead buffer over that rather than a hand-rolled decoder.
package charpos

import "unicode/utf8"

// Positioned pairs a decoded rune with its byte offset in the source and
// its UTF-8 encoded length.
type Positioned struct {
	Char  rune
	Start int
	Len   int
}

// Iter is a peekable iterator over a string's runes with byte positions.
// It supports up to 4-rune lookahead, the maximum either lexer needs
// (the structured lexer needs 4 for distinguishing "..", "||", "+?" etc;
// the traditional lexer needs only 1).
type Iter struct {
	src   string
	runes []Positioned
	pos   int // index into runes of the "current" position
}

// New creates an Iter over src, eagerly decoding every rune up front.
// Patterns are short (they are source text, not match input), so this
// trades a little memory for simplicity in the lexers.
func New(src string) *Iter {
	runes := make([]Positioned, 0, len(src))
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		if r == utf8.RuneError && size <= 1 {
			runes = append(runes, Positioned{Char: utf8.RuneError, Start: i, Len: 1})
			i++
			continue
		}
		runes = append(runes, Positioned{Char: r, Start: i, Len: size})
		i += size
	}
	return &Iter{src: src, runes: runes}
}

// Len returns the byte length of the whole source.
func (it *Iter) Len() int { return len(it.src) }

// AtEnd reports whether the iterator has consumed every rune.
func (it *Iter) AtEnd() bool { return it.pos >= len(it.runes) }

// BytePos returns the byte offset of the next unconsumed rune, or the
// source's total length at end of input.
func (it *Iter) BytePos() int {
	if it.AtEnd() {
		return len(it.src)
	}
	return it.runes[it.pos].Start
}

// Peek looks ahead n runes (n=0 is the next unconsumed rune) without
// consuming. ok is false past the end of input.
func (it *Iter) Peek(n int) (p Positioned, ok bool) {
	idx := it.pos + n
	if idx < 0 || idx >= len(it.runes) {
		return Positioned{}, false
	}
	return it.runes[idx], true
}

// Next consumes and returns the next rune. ok is false at end of input.
func (it *Iter) Next() (p Positioned, ok bool) {
	p, ok = it.Peek(0)
	if ok {
		it.pos++
	}
	return p, ok
}

// Mark returns an opaque cursor position for later Reset.
func (it *Iter) Mark() int { return it.pos }

// Reset rewinds the iterator to a cursor previously returned by Mark.
func (it *Iter) Reset(mark int) { it.pos = mark }
