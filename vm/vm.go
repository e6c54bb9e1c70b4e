// Package vm is the backtracking interpreter: it walks an
// objectfile.ObjectFile's node/transition graph against an input byte
// slice, maintaining capture ranges and the counter stack a
// repetition's Save/Inc pair needs. It never sees an AST and knows
// nothing about pattern syntax — Context and ObjectFile are its whole
// vocabulary.
//
// The traversal is plain recursion, one call per node, trying a
// node's outgoing transitions in list order and returning on the
// first one whose continuation succeeds. That order is exactly how
// greedy/lazy and alternation-branch preference are expressed: the
// compiler decides it once, by transition list order, and the
// interpreter just obeys it. This mirrors the teacher's own
// BoundedBacktracker (nfa/backtrack.go), which walks its NFA the same
// way — recursive, Go-stack-backed, no explicit frame slice.
package vm

import (
	"bytes"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/anre/objectfile"
	"github.com/coregx/anre/simd"
)

// ErrStepLimitExceeded is returned by Search and Attempt when
// Context.MaxSteps is nonzero and the transition attempts counted
// since the last Reset exceed that budget (Search keeps counting
// across every start position it slides through). It is never a panic and never a silently wrong answer — the
// caller sees an error instead of an indefinite hang.
var ErrStepLimitExceeded = errors.New("vm: exceeded maximum backtrack steps")

// MatchRange is one capture slot: a half-open [Start, End) byte range
// into Context.Bytes. The zero value (0, 0) is the documented default
// for a capture group that never participated in a successful match —
// including group N in a backreference to it before it is ever set.
type MatchRange struct {
	Start, End int
}

// Context is one match attempt's mutable state: the input, the
// capture table, and the counter stack shared by every nested
// repetition and sub-routine invoked from it. A Context is meant to
// be reused across repeated Search calls against the same input (the
// find-iterator case in package engine) via Reset.
type Context struct {
	Bytes []byte

	// Ranges holds one slot per capture group, indexed exactly as
	// ObjectFile.CaptureNames. Reset to (0, 0) by Reset. Look-around
	// sub-routines write into the same slice as the enclosing match —
	// by design, a successful look-around's captures are visible in
	// the final result, and an abandoned backtracking branch's writes
	// are left as garbage rather than rolled back, matching the
	// reference interpreter this is ported from.
	Ranges []MatchRange

	// MaxSteps bounds the number of transition attempts a single
	// Search call may make before it gives up with
	// ErrStepLimitExceeded. Zero means unbounded.
	MaxSteps int

	counters []int
	steps    int
	isASCII  bool
	asciiSet bool
}

// NewContext builds a Context over bytes with numCaptures capture
// slots (ObjectFile.CaptureNames' length, always >= 1 for the
// whole-match group).
func NewContext(data []byte, numCaptures int, maxSteps int) *Context {
	return &Context{
		Bytes:    data,
		Ranges:   make([]MatchRange, numCaptures),
		MaxSteps: maxSteps,
	}
}

// Reset clears capture ranges and the counter stack so ctx can be
// reused for another top-level attempt against the same Bytes (e.g.
// the next iteration of a find-iterator). It does not touch Bytes or
// MaxSteps.
func (ctx *Context) Reset() {
	for i := range ctx.Ranges {
		ctx.Ranges[i] = MatchRange{}
	}
	ctx.counters = ctx.counters[:0]
	ctx.steps = 0
}

func (ctx *Context) isInputASCII() bool {
	if !ctx.asciiSet {
		ctx.isASCII = simd.IsASCII(ctx.Bytes)
		ctx.asciiSet = true
	}
	return ctx.isASCII
}

// Attempt tries a match against route starting at exactly pos, with no
// sliding. On success ctx.Ranges holds the capture positions for that
// one attempt. This is the unit engine's prefilter-accelerated search
// loop calls directly when it wants to choose candidate offsets
// itself (SPEC_FULL.md §4.5a); Search below is the plain version that
// advances one rune at a time on its own.
func (ctx *Context) Attempt(of *objectfile.ObjectFile, route objectfile.RouteIndex, pos int) (bool, error) {
	r := &of.Routes[route]
	return ctx.run(of, r, r.Start, pos, 0)
}

// Search runs the top-level loop of spec §4.5 against of's main route
// (route 0), starting the sliding window at byte offset start. It is
// also how a look-around sub-route is entered recursively (with a
// different RouteIndex), since a sub-route is just another Route in
// the same ObjectFile sharing this Context.
func (ctx *Context) Search(of *objectfile.ObjectFile, route objectfile.RouteIndex, start int) (bool, error) {
	r := &of.Routes[route]
	p := start
	end := len(ctx.Bytes)
	for {
		ok, err := ctx.Attempt(of, route, p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if r.FixedStartPosition || p >= end {
			return false, nil
		}
		_, n := utf8.DecodeRune(ctx.Bytes[p:])
		if n == 0 {
			return false, nil
		}
		p += n
	}
}

// run is the single-run loop of spec §4.5: try node's outgoing
// transitions in order, recursing into whichever one succeeds, until
// route.End is reached or every alternative is exhausted.
func (ctx *Context) run(of *objectfile.ObjectFile, route *objectfile.Route, node objectfile.NodeID, pos, rep int) (bool, error) {
	if node == route.End {
		return true, nil
	}
	transitions := route.Node(node).Transitions
	for i := range transitions {
		t := &transitions[i]

		if ctx.MaxSteps > 0 {
			ctx.steps++
			if ctx.steps > ctx.MaxSteps {
				return false, ErrStepLimitExceeded
			}
		}

		ok, delta, newRep, err := ctx.execute(of, t, pos, rep)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		matched, err := ctx.run(of, route, t.Target, pos+delta, newRep)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// execute runs one transition's check-and-side-effect per spec
// §4.5.1 and returns whether it succeeded, how many bytes it
// consumed, and the repetition count to carry into its target.
//
// Every transition except CounterInc, CounterCheck and Repetition
// hands its target a repetition count of 0 — the count only means
// anything along the CounterSave -> ... -> CounterInc span of a
// single repetition's body, and CounterReset starts that span fresh
// regardless of whatever an enclosing or preceding repetition left
// behind. This is a direct reading of the reference interpreter's
// ExecuteResult tuples, not a simplification: matching transitions
// there return Success(byte_length, 0) just as epsilon transitions
// return Success(0, 0).
func (ctx *Context) execute(of *objectfile.ObjectFile, t *objectfile.Transition, pos, rep int) (ok bool, delta int, newRep int, err error) {
	switch t.Kind {
	case objectfile.KindJump:
		return true, 0, 0, nil

	case objectfile.KindCaptureStart:
		ctx.Ranges[t.CaptureIndex].Start = pos
		return true, 0, 0, nil

	case objectfile.KindCaptureEnd:
		ctx.Ranges[t.CaptureIndex].End = pos
		return true, 0, 0, nil

	case objectfile.KindCounterReset:
		return true, 0, 0, nil

	case objectfile.KindCounterSave:
		ctx.counters = append(ctx.counters, rep)
		return true, 0, 0, nil

	case objectfile.KindCounterInc:
		n := len(ctx.counters) - 1
		saved := ctx.counters[n]
		ctx.counters = ctx.counters[:n]
		return true, 0, saved + 1, nil

	case objectfile.KindCounterCheck:
		if t.Rep.Satisfied(rep) {
			return true, 0, rep, nil
		}
		return false, 0, 0, nil

	case objectfile.KindRepetition:
		if t.Rep.MayRepeat(rep) {
			return true, 0, rep, nil
		}
		return false, 0, 0, nil

	case objectfile.KindChar:
		r, n := utf8.DecodeRune(ctx.Bytes[pos:])
		if n == 0 || r != t.Char {
			return false, 0, 0, nil
		}
		return true, n, 0, nil

	case objectfile.KindSpecialChar:
		r, n := utf8.DecodeRune(ctx.Bytes[pos:])
		if n == 0 || r == '\n' || r == '\r' {
			return false, 0, 0, nil
		}
		return true, n, 0, nil

	case objectfile.KindString:
		n := len(t.Str)
		if pos+n > len(ctx.Bytes) || string(ctx.Bytes[pos:pos+n]) != t.Str {
			return false, 0, 0, nil
		}
		return true, n, 0, nil

	case objectfile.KindCharSet:
		r, n := utf8.DecodeRune(ctx.Bytes[pos:])
		if n == 0 || !t.Set.Contains(r) {
			return false, 0, 0, nil
		}
		return true, n, 0, nil

	case objectfile.KindBackReference:
		return ctx.executeBackReference(t, pos)

	case objectfile.KindAnchorAssertion:
		var matched bool
		if t.Anchor == objectfile.AnchorStart {
			matched = pos == 0
		} else {
			matched = pos >= len(ctx.Bytes)
		}
		if !matched {
			return false, 0, 0, nil
		}
		return true, 0, 0, nil

	case objectfile.KindBoundaryAssertion:
		wantBound := t.Boundary == objectfile.BoundaryIsBound
		if ctx.isWordBoundary(pos) != wantBound {
			return false, 0, 0, nil
		}
		return true, 0, 0, nil

	case objectfile.KindLookAheadAssertion:
		return ctx.executeLookAhead(of, t, pos)

	case objectfile.KindLookBehindAssertion:
		return ctx.executeLookBehind(of, t, pos)

	default:
		return false, 0, 0, fmt.Errorf("vm: unhandled transition kind %v", t.Kind)
	}
}

func (ctx *Context) executeBackReference(t *objectfile.Transition, pos int) (bool, int, int, error) {
	mr := ctx.Ranges[t.BackRefIndex]
	n := mr.End - mr.Start
	if n < 0 {
		n = 0
	}
	if pos+n > len(ctx.Bytes) || !bytes.Equal(ctx.Bytes[mr.Start:mr.End], ctx.Bytes[pos:pos+n]) {
		return false, 0, 0, nil
	}
	return true, n, 0, nil
}

func (ctx *Context) executeLookAhead(of *objectfile.ObjectFile, t *objectfile.Transition, pos int) (bool, int, int, error) {
	matched, err := ctx.Search(of, t.SubRoute, pos)
	if err != nil {
		return false, 0, 0, err
	}
	if matched == t.Negative {
		return false, 0, 0, nil
	}
	return true, 0, 0, nil
}

func (ctx *Context) executeLookBehind(of *objectfile.ObjectFile, t *objectfile.Transition, pos int) (bool, int, int, error) {
	start, ok := backwardPosition(ctx.Bytes, pos, t.BehindCharLen)
	if !ok {
		if t.Negative {
			return true, 0, 0, nil
		}
		return false, 0, 0, nil
	}
	matched, err := ctx.Search(of, t.SubRoute, start)
	if err != nil {
		return false, 0, 0, err
	}
	if matched == t.Negative {
		return false, 0, 0, nil
	}
	return true, 0, 0, nil
}

// backwardPosition walks n codepoints backward from pos, the way
// look-behind locates where its fixed-length sub-route must start.
// It fails once it would have to walk past the beginning of the
// input.
func backwardPosition(data []byte, pos, n int) (int, bool) {
	for i := 0; i < n; i++ {
		if pos == 0 {
			return 0, false
		}
		_, width := utf8.DecodeLastRune(data[:pos])
		pos -= width
	}
	return pos, true
}

// isWordBoundary reports whether pos sits on a \b-style word
// boundary: exactly one of the codepoint immediately before pos and
// the one at pos is a word character (ASCII [A-Za-z0-9_]), treating
// "off the end of the input" as non-word on either side.
func (ctx *Context) isWordBoundary(pos int) bool {
	if len(ctx.Bytes) == 0 {
		return false
	}
	var before, after bool
	if pos > 0 {
		before = ctx.isWordAt(pos, -1)
	}
	if pos < len(ctx.Bytes) {
		after = ctx.isWordAt(pos, 0)
	}
	return before != after
}

// isWordAt classifies the codepoint at pos+dir*width (dir 0: the
// character starting at pos; dir -1: the character ending at pos).
// The ASCII fast path per SPEC_FULL.md §4.5b avoids a UTF-8 decode
// entirely for the overwhelmingly common case.
func (ctx *Context) isWordAt(pos, dir int) bool {
	if ctx.isInputASCII() {
		if dir < 0 {
			return isWordByte(ctx.Bytes[pos-1])
		}
		return isWordByte(ctx.Bytes[pos])
	}
	var r rune
	if dir < 0 {
		r, _ = utf8.DecodeLastRune(ctx.Bytes[:pos])
	} else {
		r, _ = utf8.DecodeRune(ctx.Bytes[pos:])
	}
	return isWordRune(r)
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '_'
}

// isWordRune is the non-ASCII fallback: the word-class predicate is
// ASCII-only by design (no Unicode property classes beyond ASCII
// word/digit/space), so this only exists to keep boundary assertions
// decodable rather than panicking on malformed-but-decodable UTF-8
// input; it is not reachable through any codepoint a word preset can
// itself match.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
