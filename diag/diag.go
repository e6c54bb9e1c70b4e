// Package diag carries source locations through the compilation pipeline's
// errors. It implements the three-kind error taxonomy: syntactic errors
// (message plus a token.Range, the zero Range where the compiler has no
// source location), lexical errors (message plus a token.Range), and
// unexpected-end-of-input errors (message only). There is no recovery —
// the first error raised by any lexer, parser, or compiler stage aborts
// the pipeline and is returned to the caller of the constructor.
package diag

import (
	"errors"
	"fmt"

	"github.com/coregx/anre/token"
)

// Sentinel errors for errors.Is classification. Every concrete error type
// below wraps exactly one of these.
var (
	// ErrSyntax is wrapped by SyntaxError: the token stream parsed fine
	// but the resulting structure violates a grammar or semantic rule
	// (e.g. `start` outside the first position, a back-reference to a
	// nonexistent group, m > n in {m,n}).
	ErrSyntax = errors.New("anre: syntax error")

	// ErrLexical is wrapped by LexicalError: the raw character stream
	// could not be tokenized (bad escape, unterminated class, invalid
	// code point).
	ErrLexical = errors.New("anre: lexical error")

	// ErrUnexpectedEOF is wrapped by UnexpectedEOFError: the token stream
	// ended where the grammar required another token.
	ErrUnexpectedEOF = errors.New("anre: unexpected end of input")
)

// SyntaxError reports a structurally invalid pattern.
type SyntaxError struct {
	Message string
	Range   token.Range
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("anre: syntax error at %s: %s", e.Range, e.Message)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// LexicalError reports a malformed raw token with its source range.
type LexicalError struct {
	Message string
	Range   token.Range
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("anre: lexical error at %s: %s", e.Range, e.Message)
}

func (e *LexicalError) Unwrap() error { return ErrLexical }

// UnexpectedEOFError reports a token stream that ended prematurely.
type UnexpectedEOFError struct {
	Message string
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("anre: unexpected end of input: %s", e.Message)
}

func (e *UnexpectedEOFError) Unwrap() error { return ErrUnexpectedEOF }

// NewSyntax constructs a SyntaxError at the given range.
func NewSyntax(r token.Range, format string, args ...any) error {
	return &SyntaxError{Message: fmt.Sprintf(format, args...), Range: r}
}

// NewLexical constructs a LexicalError at the given range.
func NewLexical(r token.Range, format string, args ...any) error {
	return &LexicalError{Message: fmt.Sprintf(format, args...), Range: r}
}

// NewUnexpectedEOF constructs an UnexpectedEOFError.
func NewUnexpectedEOF(format string, args ...any) error {
	return &UnexpectedEOFError{Message: fmt.Sprintf(format, args...)}
}
