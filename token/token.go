// Package token defines the tagged token and source-range types shared by
// both surface-syntax lexers (structured and traditional) and consumed by
// both parsers.
//
// The two front ends tokenize genuinely different alphabets — the
// structured notation has identifiers, `||`, and `define`-style
// punctuation; the traditional notation has PCRE meta-characters — but
// both attach a Range to every token so that diagnostics (package diag)
// can report a byte-accurate source location regardless of which grammar
// produced the error.
package token

import "fmt"

// Range is a half-open byte-offset span [Start, End) into the original
// pattern source.
type Range struct {
	Start int
	End   int
}

// String renders a Range as "start..end" for error messages.
func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Kind tags the variant of a Token. The structured and traditional lexers
// each only ever produce a subset of these; a parser rejects any Kind its
// grammar doesn't expect.
type Kind int

const (
	KindInvalid Kind = iota

	// Structured-notation kinds.
	KindIdentifier
	KindNumber
	KindCharLiteral
	KindStringLiteral
	KindComma
	KindNewline
	KindNot        // '!'
	KindRangeDots  // ".."
	KindDot        // '.'
	KindLogicOr    // "||"
	KindLBracket   // '['
	KindRBracket   // ']'
	KindLParen     // '('
	KindRParen     // ')'
	KindQuestion   // '?'
	KindQuestionLz // "??"
	KindPlus       // '+'
	KindPlusLz     // "+?"
	KindStar       // '*'
	KindStarLz     // "*?"
	KindLBrace     // '{'
	KindRBrace     // '}'

	// Traditional-notation kinds.
	KindChar          // a literal, non-meta character (possibly multi-byte)
	KindMetaLBracket  // '['
	KindMetaRBracket  // ']'
	KindMetaLBrace    // '{'
	KindMetaRBrace    // '}'
	KindMetaLParen    // '(' or one of the "(?...)" grouping prefixes, see GroupKind
	KindMetaRParen    // ')'
	KindMetaStar      // '*' or "*?"
	KindMetaPlus      // '+' or "+?"
	KindMetaQuestion  // '?' or "??"
	KindMetaPipe      // '|'
	KindMetaCaret     // '^'
	KindMetaDollar    // '$'
	KindMetaAnyChar   // '.'
	KindMetaQuantity  // "{n}", "{n,}", "{n,m}" (optionally lazy)
	KindPresetClass   // \w \W \d \D \s \S
	KindBoundary      // \b \B
	KindBackRefIndex  // \1 .. \9
	KindBackRefName   // \k<name>
	KindCharRange     // inside a class: a '-' between two char tokens
	KindClassNegation // leading '^' inside a class

	// Shared.
	KindEOF
)

// Token is a tagged token produced by either lexer. Text holds the
// decoded textual payload (identifier name, unescaped string contents,
// etc); Number holds the parsed numeric value for KindNumber / quantity
// bounds; Char holds the decoded codepoint for single-character tokens.
// Lazy records whether a quantifier token carries a trailing '?'.
type Token struct {
	Kind   Kind
	Range  Range
	Text   string
	Number int
	Char   rune
	Lazy   bool

	// QuantMin / QuantMax describe a KindMetaQuantity token's bounds.
	// QuantMax == -1 means unbounded ("{n,}").
	QuantMin int
	QuantMax int

	// Negated marks a negated preset class (\W, \D, \S) or a negated
	// boundary assertion (\B).
	Negated bool

	// Group describes a KindMetaLParen token's grouping prefix.
	Group GroupKind

	// RangeLo / RangeHi describe a KindCharRange token's inclusive bounds.
	RangeLo rune
	RangeHi rune
}

// String renders a Token for debugging and test failure messages.
func (t Token) String() string {
	switch t.Kind {
	case KindIdentifier, KindStringLiteral:
		return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Range)
	case KindNumber:
		return fmt.Sprintf("%s(%d)@%s", t.Kind, t.Number, t.Range)
	case KindCharLiteral, KindChar:
		return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Char, t.Range)
	default:
		return fmt.Sprintf("%s@%s", t.Kind, t.Range)
	}
}

//go:generate stringer -type=Kind
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var kindNames = map[Kind]string{
	KindInvalid:       "Invalid",
	KindIdentifier:    "Identifier",
	KindNumber:        "Number",
	KindCharLiteral:   "CharLiteral",
	KindStringLiteral: "StringLiteral",
	KindComma:         "Comma",
	KindNewline:       "Newline",
	KindNot:           "Not",
	KindRangeDots:     "RangeDots",
	KindDot:           "Dot",
	KindLogicOr:       "LogicOr",
	KindLBracket:      "LBracket",
	KindRBracket:      "RBracket",
	KindLParen:        "LParen",
	KindRParen:        "RParen",
	KindQuestion:      "Question",
	KindQuestionLz:    "QuestionLazy",
	KindPlus:          "Plus",
	KindPlusLz:        "PlusLazy",
	KindStar:          "Star",
	KindStarLz:        "StarLazy",
	KindLBrace:        "LBrace",
	KindRBrace:        "RBrace",

	KindChar:          "Char",
	KindMetaLBracket:  "MetaLBracket",
	KindMetaRBracket:  "MetaRBracket",
	KindMetaLBrace:    "MetaLBrace",
	KindMetaRBrace:    "MetaRBrace",
	KindMetaLParen:    "MetaLParen",
	KindMetaRParen:    "MetaRParen",
	KindMetaStar:      "MetaStar",
	KindMetaPlus:      "MetaPlus",
	KindMetaQuestion:  "MetaQuestion",
	KindMetaPipe:      "MetaPipe",
	KindMetaCaret:     "MetaCaret",
	KindMetaDollar:    "MetaDollar",
	KindMetaAnyChar:   "MetaAnyChar",
	KindMetaQuantity:  "MetaQuantity",
	KindPresetClass:   "PresetClass",
	KindBoundary:      "Boundary",
	KindBackRefIndex:  "BackRefIndex",
	KindBackRefName:   "BackRefName",
	KindCharRange:     "CharRange",
	KindClassNegation: "ClassNegation",

	KindEOF: "EOF",
}

// GroupKind tags the grouping prefix a KindMetaLParen token introduces in
// the traditional notation.
type GroupKind int

const (
	GroupPlain         GroupKind = iota // (...)
	GroupNonCapturing                   // (?:...)
	GroupNamed                          // (?<name>...) or (?P<name>...)
	GroupLookAhead                      // (?=...)
	GroupLookAheadNeg                   // (?!...)
	GroupLookBehind                     // (?<=...)
	GroupLookBehindNeg                  // (?<!...)
)
