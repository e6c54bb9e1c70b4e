// Package objectfile defines the compiled, immutable form of a pattern:
// an ordered list of routes (node/transition graphs) plus the
// capture-group name table. It is the hand-off between the compiler
// and the interpreter — the interpreter never sees an AST, only this
// structure. Deliberately independent of package ast: a transition's
// CharSet carries flat codepoint ranges rather than the nested,
// preset-indirected shape ast.CharSet allows, because the compiler
// resolves nesting and preset expansion once at compile time so the
// interpreter's hot path never has to.
package objectfile

import (
	"fmt"

	"github.com/coregx/anre/internal/conv"
)

// NodeID identifies a node within a single Route's arena.
type NodeID uint32

// RouteIndex identifies a Route within an ObjectFile's route list.
// Route 0 is always the main program; every other route is the body of
// a look-around assertion.
type RouteIndex int

// ObjectFile is the compiled artifact the interpreter consumes.
type ObjectFile struct {
	Routes []Route

	// CaptureNames holds one entry per capture group in source order.
	// Entry 0 is the whole-program match (always ""). A later entry's
	// string is the user-supplied name, or "" for an index-only
	// capture.
	CaptureNames []string

	// RequiredPrefixLiterals is prefilter metadata computed from the
	// main route's AST, not its graph: the set of byte strings one of
	// which must prefix any successful match. Nil when no such prefix
	// could be extracted. Purely an optimization hint — removing it
	// changes performance, never correctness.
	RequiredPrefixLiterals [][]byte
}

// NewCaptureGroup appends a capture-group name (possibly "") and
// returns its index.
func (of *ObjectFile) NewCaptureGroup(name string) int {
	of.CaptureNames = append(of.CaptureNames, name)
	return len(of.CaptureNames) - 1
}

// Route is one connected node/transition graph: the main pattern body
// (route 0) or a look-around sub-pattern.
type Route struct {
	Nodes []Node
	Start NodeID
	End   NodeID

	// FixedStartPosition is true iff this route must be attempted at
	// exactly one input position rather than probed across an
	// unanchored sliding window — the main route when the pattern
	// begins with `start`, every look-around sub-route unconditionally
	// (look-around always runs relative to a fixed current position).
	FixedStartPosition bool
}

// NewNode appends an empty node to the route and returns its id.
func (r *Route) NewNode() NodeID {
	r.Nodes = append(r.Nodes, Node{})
	return NodeID(conv.IntToUint32(len(r.Nodes) - 1))
}

// AddTransition appends an outgoing transition to node id. Transitions
// on a node are tried in list order during backtracking, so call order
// is significant: it is how greedy-vs-lazy and alternation-branch-order
// are expressed.
func (r *Route) AddTransition(id NodeID, t Transition) {
	r.Nodes[id].Transitions = append(r.Nodes[id].Transitions, t)
}

func (r *Route) Node(id NodeID) *Node { return &r.Nodes[id] }

// Node is an arena slot holding an ordered list of outgoing
// transitions.
type Node struct {
	Transitions []Transition
}

// Kind tags a Transition's variant.
type Kind int

const (
	KindInvalid Kind = iota

	// Epsilon / structural.
	KindJump

	// Matching.
	KindChar
	KindString
	KindCharSet
	KindSpecialChar
	KindBackReference

	// Zero-width assertions.
	KindAnchorAssertion
	KindBoundaryAssertion

	// Capture side-effects.
	KindCaptureStart
	KindCaptureEnd

	// Counter side-effects.
	KindCounterReset
	KindCounterSave
	KindCounterInc
	KindCounterCheck
	KindRepetition

	// Sub-routine.
	KindLookAheadAssertion
	KindLookBehindAssertion
)

func (k Kind) String() string {
	switch k {
	case KindJump:
		return "Jump"
	case KindChar:
		return "Char"
	case KindString:
		return "String"
	case KindCharSet:
		return "CharSet"
	case KindSpecialChar:
		return "SpecialChar"
	case KindBackReference:
		return "BackReference"
	case KindAnchorAssertion:
		return "AnchorAssertion"
	case KindBoundaryAssertion:
		return "BoundaryAssertion"
	case KindCaptureStart:
		return "CaptureStart"
	case KindCaptureEnd:
		return "CaptureEnd"
	case KindCounterReset:
		return "CounterReset"
	case KindCounterSave:
		return "CounterSave"
	case KindCounterInc:
		return "CounterInc"
	case KindCounterCheck:
		return "CounterCheck"
	case KindRepetition:
		return "Repetition"
	case KindLookAheadAssertion:
		return "LookAheadAssertion"
	case KindLookBehindAssertion:
		return "LookBehindAssertion"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// AnchorKind distinguishes the two anchor assertions.
type AnchorKind int

const (
	AnchorStart AnchorKind = iota
	AnchorEnd
)

// BoundaryKind distinguishes the two word-boundary assertions.
type BoundaryKind int

const (
	BoundaryIsBound BoundaryKind = iota
	BoundaryIsNotBound
)

// RepCountKind distinguishes an exact repetition count from a ranged
// one; "Range" with Max == -1 represents the unbounded n = +∞ case
// (at_least).
type RepCountKind int

const (
	RepSpecified RepCountKind = iota
	RepRange
)

// RepType is a counter transition's repetition-type operand.
type RepType struct {
	Kind RepCountKind
	N    int // valid when Kind == RepSpecified
	Min  int // valid when Kind == RepRange
	Max  int // valid when Kind == RepRange; -1 means unbounded
}

// Satisfied reports whether cnt is an allowed iteration count
// (CounterCheck's predicate).
func (rt RepType) Satisfied(cnt int) bool {
	if rt.Kind == RepSpecified {
		return cnt == rt.N
	}
	return cnt >= rt.Min && (rt.Max == -1 || cnt <= rt.Max)
}

// MayRepeat reports whether another iteration is allowed
// (Repetition's predicate) — the ceiling only; the floor is enforced
// by CounterCheck at loop exit.
func (rt RepType) MayRepeat(cnt int) bool {
	if rt.Kind == RepSpecified {
		return cnt < rt.N
	}
	return rt.Max == -1 || cnt < rt.Max
}

// CharRange is an inclusive codepoint range; a single codepoint is
// represented as CharRange{Lo: c, Hi: c}.
type CharRange struct {
	Lo, Hi rune
}

// CharSet is a transition-level character set: a flat list of
// codepoint ranges (nesting and preset expansion already resolved by
// the compiler) plus a negation flag.
type CharSet struct {
	Negative bool
	Ranges   []CharRange
}

// Contains reports whether r falls in the set, honoring negation.
func (cs *CharSet) Contains(r rune) bool {
	in := false
	for _, rg := range cs.Ranges {
		if r >= rg.Lo && r <= rg.Hi {
			in = true
			break
		}
	}
	if cs.Negative {
		return !in
	}
	return in
}

// Transition is a tagged variant carrying both matching logic and
// side-effects (capture, counter, sub-routine invocation), plus the
// target node its owning Node jumps to on success.
type Transition struct {
	Kind   Kind
	Target NodeID

	// KindChar
	Char rune

	// KindString — byte length is len(Str); it may span multiple
	// codepoints, matched atomically as one transition (coalesced at
	// parse time for traditional-notation literal runs).
	Str string

	// KindCharSet
	Set *CharSet

	// KindBackReference — 0-based capture-group index. A by-name
	// back-reference is compiled with BackRefIndex == -1 and
	// BackRefName set; the compiler resolves it to an index once the
	// whole capture table is known and BackRefName is cleared.
	BackRefIndex int
	BackRefName  string

	// KindAnchorAssertion
	Anchor AnchorKind

	// KindBoundaryAssertion
	Boundary BoundaryKind

	// KindCaptureStart / KindCaptureEnd
	CaptureIndex int

	// KindCounterCheck / KindRepetition
	Rep RepType

	// KindLookAheadAssertion / KindLookBehindAssertion
	SubRoute       RouteIndex
	Negative       bool
	BehindCharLen  int // KindLookBehindAssertion only: fixed length of the "prev" argument, in codepoints
}
