// Package compiler lowers an ast.Program into an objectfile.ObjectFile: a
// graph of nodes and transitions the vm package can execute directly.
// Lowering works component-at-a-time — every AST node becomes a small
// subgraph with exactly one entry node and one exit node ("in"/"out" ports
// in the terminology of the composition rules this mirrors), wired together
// by its parent. Quantifiers and captures wrap an inner component's ports
// rather than rewriting its contents, so the same construction handles
// arbitrarily nested expressions without special-casing depth.
package compiler

import (
	"sort"
	"unicode/utf8"

	"github.com/coregx/anre/ast"
	"github.com/coregx/anre/diag"
	"github.com/coregx/anre/objectfile"
	"github.com/coregx/anre/token"
)

// DefaultMaxRecursionDepth bounds AST descent so a pathologically nested
// pattern fails with a diagnostic instead of exhausting the goroutine stack.
const DefaultMaxRecursionDepth = 1000

// component is a compiled subgraph's entry and exit node. Every lowering
// function returns one; composing expressions is just wiring Out of one
// component to In of the next.
type component struct {
	In, Out objectfile.NodeID
}

type compiler struct {
	of       *objectfile.ObjectFile
	route    *objectfile.Route
	routeIdx objectfile.RouteIndex
	depth    int
	maxDepth int
}

// Compile lowers prog into an ObjectFile using DefaultMaxRecursionDepth.
func Compile(prog *ast.Program) (*objectfile.ObjectFile, error) {
	return CompileWithMaxDepth(prog, DefaultMaxRecursionDepth)
}

// CompileWithMaxDepth lowers prog, erroring out if AST descent ever exceeds
// maxDepth.
func CompileWithMaxDepth(prog *ast.Program, maxDepth int) (*objectfile.ObjectFile, error) {
	of := &objectfile.ObjectFile{Routes: []objectfile.Route{{}}}
	of.NewCaptureGroup("") // group 0: the whole match

	c := &compiler{of: of, route: &of.Routes[0], routeIdx: 0, maxDepth: maxDepth}

	body, err := c.compileSequence(prog.Expressions)
	if err != nil {
		return nil, err
	}

	in := c.newNode()
	out := c.newNode()
	c.addTransition(in, objectfile.Transition{Kind: objectfile.KindCaptureStart, CaptureIndex: 0, Target: body.In})
	c.addTransition(body.Out, objectfile.Transition{Kind: objectfile.KindCaptureEnd, CaptureIndex: 0, Target: out})

	route := &of.Routes[0]
	route.Start = in
	route.End = out
	route.FixedStartPosition = startsWithAnchor(prog.Expressions)

	if err := resolveBackReferences(of); err != nil {
		return nil, err
	}
	of.RequiredPrefixLiterals = extractRequiredPrefixLiterals(prog.Expressions)
	return of, nil
}

func startsWithAnchor(exprs []ast.Expression) bool {
	return len(exprs) > 0 && exprs[0].Kind == ast.ExprAnchor && exprs[0].Anchor == ast.AnchorStart
}

func (c *compiler) newNode() objectfile.NodeID { return c.route.NewNode() }

func (c *compiler) addTransition(id objectfile.NodeID, t objectfile.Transition) {
	c.route.AddTransition(id, t)
}

// empty is the zero-width component: a single Jump from in to out.
func (c *compiler) empty() component {
	in := c.newNode()
	out := c.newNode()
	c.addTransition(in, objectfile.Transition{Kind: objectfile.KindJump, Target: out})
	return component{In: in, Out: out}
}

func (c *compiler) compileExpr(e ast.Expression) (component, error) {
	if c.depth >= c.maxDepth {
		return component{}, diag.NewUnexpectedEOF("pattern nesting exceeds maximum recursion depth (%d)", c.maxDepth)
	}
	c.depth++
	defer func() { c.depth-- }()

	switch e.Kind {
	case ast.ExprLiteral:
		return c.compileLiteral(e.Literal)
	case ast.ExprBackReference:
		return c.compileBackReference(e.BackReference)
	case ast.ExprAnchor:
		return c.compileAnchor(e.Anchor), nil
	case ast.ExprBoundary:
		return c.compileBoundary(e.Boundary), nil
	case ast.ExprGroup:
		return c.compileSequence(e.Group)
	case ast.ExprOr:
		return c.compileOr(e.Or)
	case ast.ExprCall:
		return c.compileCall(e.Call)
	default:
		return component{}, diag.NewSyntax(token.Range{}, "unhandled AST node kind %d", int(e.Kind))
	}
}

// checkAnchorPositions enforces that `start` only appears first and `end`
// only appears last within a single sequence — the one syntax-level
// rejection that can't be caught until the whole sequence is in hand.
func checkAnchorPositions(exprs []ast.Expression) error {
	for i, e := range exprs {
		if e.Kind != ast.ExprAnchor {
			continue
		}
		if e.Anchor == ast.AnchorStart && i != 0 {
			return diag.NewSyntax(token.Range{}, "'start' may only appear as the first expression in its sequence")
		}
		if e.Anchor == ast.AnchorEnd && i != len(exprs)-1 {
			return diag.NewSyntax(token.Range{}, "'end' may only appear as the last expression in its sequence")
		}
	}
	return nil
}

func (c *compiler) compileSequence(exprs []ast.Expression) (component, error) {
	if err := checkAnchorPositions(exprs); err != nil {
		return component{}, err
	}
	if len(exprs) == 0 {
		return c.empty(), nil
	}
	if len(exprs) == 1 {
		return c.compileExpr(exprs[0])
	}
	comps := make([]component, len(exprs))
	for i, e := range exprs {
		comp, err := c.compileExpr(e)
		if err != nil {
			return component{}, err
		}
		comps[i] = comp
	}
	for i := 0; i < len(comps)-1; i++ {
		c.addTransition(comps[i].Out, objectfile.Transition{Kind: objectfile.KindJump, Target: comps[i+1].In})
	}
	return component{In: comps[0].In, Out: comps[len(comps)-1].Out}, nil
}

func (c *compiler) compileOr(or *ast.OrExpr) (component, error) {
	left, err := c.compileExpr(or.Left)
	if err != nil {
		return component{}, err
	}
	right, err := c.compileExpr(or.Right)
	if err != nil {
		return component{}, err
	}
	in := c.newNode()
	out := c.newNode()
	// Left branch tried first: this is where "leftmost alternative wins"
	// ordering comes from.
	c.addTransition(in, objectfile.Transition{Kind: objectfile.KindJump, Target: left.In})
	c.addTransition(in, objectfile.Transition{Kind: objectfile.KindJump, Target: right.In})
	c.addTransition(left.Out, objectfile.Transition{Kind: objectfile.KindJump, Target: out})
	c.addTransition(right.Out, objectfile.Transition{Kind: objectfile.KindJump, Target: out})
	return component{In: in, Out: out}, nil
}

func (c *compiler) compileAnchor(a ast.AnchorName) component {
	in := c.newNode()
	out := c.newNode()
	kind := objectfile.AnchorStart
	if a == ast.AnchorEnd {
		kind = objectfile.AnchorEnd
	}
	c.addTransition(in, objectfile.Transition{Kind: objectfile.KindAnchorAssertion, Anchor: kind, Target: out})
	return component{In: in, Out: out}
}

func (c *compiler) compileBoundary(b ast.BoundaryName) component {
	in := c.newNode()
	out := c.newNode()
	kind := objectfile.BoundaryIsBound
	if b == ast.BoundaryIsNotBound {
		kind = objectfile.BoundaryIsNotBound
	}
	c.addTransition(in, objectfile.Transition{Kind: objectfile.KindBoundaryAssertion, Boundary: kind, Target: out})
	return component{In: in, Out: out}
}

func (c *compiler) compileLiteral(lit *ast.Literal) (component, error) {
	in := c.newNode()
	out := c.newNode()
	switch lit.Kind {
	case ast.LitChar:
		c.addTransition(in, objectfile.Transition{Kind: objectfile.KindChar, Char: lit.Char, Target: out})
	case ast.LitString:
		c.addTransition(in, objectfile.Transition{Kind: objectfile.KindString, Str: lit.Str, Target: out})
	case ast.LitAnyChar:
		c.addTransition(in, objectfile.Transition{Kind: objectfile.KindSpecialChar, Target: out})
	case ast.LitCharSet:
		set, err := compileCharSet(lit.Set)
		if err != nil {
			return component{}, err
		}
		c.addTransition(in, objectfile.Transition{Kind: objectfile.KindCharSet, Set: set, Target: out})
	case ast.LitPreset:
		set := &objectfile.CharSet{Ranges: presetRanges(lit.Preset)}
		c.addTransition(in, objectfile.Transition{Kind: objectfile.KindCharSet, Set: set, Target: out})
	default:
		return component{}, diag.NewSyntax(token.Range{}, "unhandled literal kind %d", int(lit.Kind))
	}
	return component{In: in, Out: out}, nil
}

func (c *compiler) compileBackReference(br *ast.BackReference) (component, error) {
	in := c.newNode()
	out := c.newNode()
	t := objectfile.Transition{Kind: objectfile.KindBackReference, Target: out}
	if br.ByName {
		t.BackRefIndex = -1
		t.BackRefName = br.Name
	} else {
		// Traditional-notation back-references are 1-based group numbers;
		// group 0 (the whole match) is never addressable by \N.
		t.BackRefIndex = br.Index
	}
	c.addTransition(in, t)
	return component{In: in, Out: out}, nil
}

func (c *compiler) compileCapture(inner ast.Expression, name string) (component, error) {
	innerComp, err := c.compileExpr(inner)
	if err != nil {
		return component{}, err
	}
	idx := c.of.NewCaptureGroup(name)
	in := c.newNode()
	out := c.newNode()
	c.addTransition(in, objectfile.Transition{Kind: objectfile.KindCaptureStart, CaptureIndex: idx, Target: innerComp.In})
	c.addTransition(innerComp.Out, objectfile.Transition{Kind: objectfile.KindCaptureEnd, CaptureIndex: idx, Target: out})
	return component{In: in, Out: out}, nil
}

// optional wires "zero or one" around inner: a fresh in/out pair with two
// Jump transitions at in, ordered so the preferred branch (inner first for
// greedy, the skip-ahead branch first for lazy) is tried before the other.
func (c *compiler) optional(inner component, lazy bool) component {
	in := c.newNode()
	out := c.newNode()
	if lazy {
		c.addTransition(in, objectfile.Transition{Kind: objectfile.KindJump, Target: out})
		c.addTransition(in, objectfile.Transition{Kind: objectfile.KindJump, Target: inner.In})
	} else {
		c.addTransition(in, objectfile.Transition{Kind: objectfile.KindJump, Target: inner.In})
		c.addTransition(in, objectfile.Transition{Kind: objectfile.KindJump, Target: out})
	}
	c.addTransition(inner.Out, objectfile.Transition{Kind: objectfile.KindJump, Target: out})
	return component{In: in, Out: out}
}

// repeatGeneric builds the shared counted-repetition graph:
//
//	in -> CounterReset -> left -> CounterSave -> inner -> right -> CounterInc
//	right has two outgoing edges, back to left (Repetition) and ahead to out
//	(CounterCheck); greedy tries Repetition first, lazy tries CounterCheck
//	first.
func (c *compiler) repeatGeneric(inner component, rt objectfile.RepType, lazy bool) component {
	in := c.newNode()
	left := c.newNode()
	right := c.newNode()
	out := c.newNode()

	c.addTransition(in, objectfile.Transition{Kind: objectfile.KindCounterReset, Target: left})
	c.addTransition(left, objectfile.Transition{Kind: objectfile.KindCounterSave, Target: inner.In})
	c.addTransition(inner.Out, objectfile.Transition{Kind: objectfile.KindCounterInc, Target: right})

	repeat := objectfile.Transition{Kind: objectfile.KindRepetition, Rep: rt, Target: left}
	check := objectfile.Transition{Kind: objectfile.KindCounterCheck, Rep: rt, Target: out}
	if lazy {
		c.addTransition(right, check)
		c.addTransition(right, repeat)
	} else {
		c.addTransition(right, repeat)
		c.addTransition(right, check)
	}
	return component{In: in, Out: out}
}

func (c *compiler) compileCall(call *ast.FunctionCall) (component, error) {
	switch call.Name {
	case ast.FuncIndex:
		return c.compileCapture(call.Args[0], "")
	case ast.FuncCaptureName:
		return c.compileCapture(call.Args[0], call.CaptureName)

	case ast.FuncOptional, ast.FuncOptionalLazy:
		inner, err := c.compileExpr(call.Args[0])
		if err != nil {
			return component{}, err
		}
		return c.optional(inner, call.Name == ast.FuncOptionalLazy), nil

	case ast.FuncOneOrMore, ast.FuncOneOrMoreLazy:
		inner, err := c.compileExpr(call.Args[0])
		if err != nil {
			return component{}, err
		}
		lazy := call.Name == ast.FuncOneOrMoreLazy
		return c.repeatGeneric(inner, objectfile.RepType{Kind: objectfile.RepRange, Min: 1, Max: -1}, lazy), nil

	case ast.FuncZeroOrMore, ast.FuncZeroOrMoreLazy:
		inner, err := c.compileExpr(call.Args[0])
		if err != nil {
			return component{}, err
		}
		lazy := call.Name == ast.FuncZeroOrMoreLazy
		// zero_or_more is Optional(one_or_more): at least one rep folded
		// under an optional skip, rather than its own primitive.
		atLeastOne := c.repeatGeneric(inner, objectfile.RepType{Kind: objectfile.RepRange, Min: 1, Max: -1}, lazy)
		return c.optional(atLeastOne, lazy), nil

	case ast.FuncRepeat:
		return c.compileRepeatExact(call)

	case ast.FuncRepeatRange, ast.FuncRepeatRangeLazy:
		inner, err := c.compileExpr(call.Args[0])
		if err != nil {
			return component{}, err
		}
		return c.quantifyRange(inner, call.RepeatMin, call.RepeatMax, call.Name == ast.FuncRepeatRangeLazy)

	case ast.FuncAtLeast, ast.FuncAtLeastLazy:
		inner, err := c.compileExpr(call.Args[0])
		if err != nil {
			return component{}, err
		}
		return c.quantifyRange(inner, call.RepeatMin, -1, call.Name == ast.FuncAtLeastLazy)

	case ast.FuncIsBefore, ast.FuncIsNotBefore:
		return c.compileIsBefore(call.Args, call.Name == ast.FuncIsNotBefore)

	case ast.FuncIsAfter, ast.FuncIsNotAfter:
		return c.compileIsAfter(call.Args, call.Name == ast.FuncIsNotAfter)

	default:
		return component{}, diag.NewSyntax(token.Range{}, "unhandled function %s", call.Name)
	}
}

func (c *compiler) compileRepeatExact(call *ast.FunctionCall) (component, error) {
	if call.RepeatN == 0 {
		return c.empty(), nil
	}
	inner, err := c.compileExpr(call.Args[0])
	if err != nil {
		return component{}, err
	}
	if call.RepeatN == 1 {
		return inner, nil
	}
	return c.repeatGeneric(inner, objectfile.RepType{Kind: objectfile.RepSpecified, N: call.RepeatN}, false), nil
}

// quantifyRange implements {m,n}'s rewrite rules: the degenerate cases
// collapse to Empty or Optional, {0,n} rewrites to Optional({1,n}), and an
// exact bound (m == n) always compiles greedy since a lazy exact-count
// quantifier is rejected earlier in the pipeline.
func (c *compiler) quantifyRange(inner component, min, max int, lazy bool) (component, error) {
	if max != -1 && min > max {
		return component{}, diag.NewSyntax(token.Range{}, "quantifier range {%d,%d} has min > max", min, max)
	}
	switch {
	case min == 0 && max == 0:
		return c.empty(), nil
	case min == 0 && max == 1:
		return c.optional(inner, lazy), nil
	case min == 0 && max == -1:
		atLeastOne := c.repeatGeneric(inner, objectfile.RepType{Kind: objectfile.RepRange, Min: 1, Max: -1}, lazy)
		return c.optional(atLeastOne, lazy), nil
	case min == 0:
		oneToMax := c.repeatGeneric(inner, objectfile.RepType{Kind: objectfile.RepRange, Min: 1, Max: max}, lazy)
		return c.optional(oneToMax, lazy), nil
	case max == min:
		return c.repeatGeneric(inner, objectfile.RepType{Kind: objectfile.RepSpecified, N: min}, false), nil
	default:
		return c.repeatGeneric(inner, objectfile.RepType{Kind: objectfile.RepRange, Min: min, Max: max}, lazy), nil
	}
}

// compileIsBefore lowers a look-ahead: e is emitted on the current route,
// next is emitted into a fresh sub-route the vm only ever probes (never
// advances through), and the assertion transition ties them together.
func (c *compiler) compileIsBefore(args []ast.Expression, negative bool) (component, error) {
	curr, err := c.compileExpr(args[0])
	if err != nil {
		return component{}, err
	}
	subIdx, err := c.compileSubRoute(args[1])
	if err != nil {
		return component{}, err
	}

	in := c.newNode()
	out := c.newNode()
	c.addTransition(in, objectfile.Transition{Kind: objectfile.KindJump, Target: curr.In})
	c.addTransition(curr.Out, objectfile.Transition{
		Kind: objectfile.KindLookAheadAssertion, SubRoute: subIdx, Negative: negative, Target: out,
	})
	return component{In: in, Out: out}, nil
}

// compileIsAfter lowers a look-behind: prev must have a fixed codepoint
// length (checked here, not deferred to the vm) because the interpreter
// has to know how far back to rewind the input cursor before probing it.
func (c *compiler) compileIsAfter(args []ast.Expression, negative bool) (component, error) {
	prevLen, ok := fixedLength(args[1])
	if !ok {
		return component{}, diag.NewSyntax(token.Range{}, "look-behind argument must have a fixed match length")
	}
	subIdx, err := c.compileSubRoute(args[1])
	if err != nil {
		return component{}, err
	}
	curr, err := c.compileExpr(args[0])
	if err != nil {
		return component{}, err
	}

	in := c.newNode()
	out := c.newNode()
	c.addTransition(in, objectfile.Transition{
		Kind: objectfile.KindLookBehindAssertion, SubRoute: subIdx, Negative: negative,
		BehindCharLen: prevLen, Target: curr.In,
	})
	c.addTransition(curr.Out, objectfile.Transition{Kind: objectfile.KindJump, Target: out})
	return component{In: in, Out: out}, nil
}

// compileSubRoute compiles e into a brand new route (look-around bodies
// never share a graph with the route that invokes them) and returns its
// index. Sub-routes are always probed at a single fixed position.
func (c *compiler) compileSubRoute(e ast.Expression) (objectfile.RouteIndex, error) {
	subIdx := objectfile.RouteIndex(len(c.of.Routes))
	c.of.Routes = append(c.of.Routes, objectfile.Route{})

	savedRoute, savedIdx := c.route, c.routeIdx
	c.route = &c.of.Routes[subIdx]
	c.routeIdx = subIdx

	comp, err := c.compileExpr(e)
	if err != nil {
		c.route, c.routeIdx = savedRoute, savedIdx
		return 0, err
	}
	c.route.Start = comp.In
	c.route.End = comp.Out
	c.route.FixedStartPosition = true

	c.route, c.routeIdx = savedRoute, savedIdx
	return subIdx, nil
}

// resolveBackReferences fills in by-name back-references once the whole
// capture table is known; the first capture group matching the name wins.
func resolveBackReferences(of *objectfile.ObjectFile) error {
	for ri := range of.Routes {
		route := &of.Routes[ri]
		for ni := range route.Nodes {
			node := &route.Nodes[ni]
			for ti := range node.Transitions {
				t := &node.Transitions[ti]
				if t.Kind != objectfile.KindBackReference || t.BackRefIndex != -1 {
					continue
				}
				idx := -1
				for ci, name := range of.CaptureNames {
					if name == t.BackRefName {
						idx = ci
						break
					}
				}
				if idx == -1 {
					return diag.NewSyntax(token.Range{}, "back-reference to nonexistent capture group %q", t.BackRefName)
				}
				t.BackRefIndex = idx
				t.BackRefName = ""
			}
		}
	}
	return nil
}

// fixedLength implements the spec's static fixed-length computation
// (used only to validate look-behind arguments): Fixed(n) returns n, true;
// Variable returns _, false.
func fixedLength(e ast.Expression) (int, bool) {
	switch e.Kind {
	case ast.ExprLiteral:
		switch e.Literal.Kind {
		case ast.LitChar, ast.LitAnyChar, ast.LitCharSet, ast.LitPreset:
			return 1, true
		case ast.LitString:
			return utf8.RuneCountInString(e.Literal.Str), true
		}
		return 0, false
	case ast.ExprAnchor, ast.ExprBoundary:
		return 0, true
	case ast.ExprBackReference:
		return 0, false
	case ast.ExprGroup:
		total := 0
		for _, child := range e.Group {
			n, ok := fixedLength(child)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true
	case ast.ExprOr:
		ln, lok := fixedLength(e.Or.Left)
		rn, rok := fixedLength(e.Or.Right)
		if lok && rok && ln == rn {
			return ln, true
		}
		return 0, false
	case ast.ExprCall:
		switch e.Call.Name {
		case ast.FuncIndex, ast.FuncCaptureName:
			return fixedLength(e.Call.Args[0])
		case ast.FuncRepeat:
			n, ok := fixedLength(e.Call.Args[0])
			if !ok {
				return 0, false
			}
			return n * e.Call.RepeatN, true
		case ast.FuncIsBefore, ast.FuncIsNotBefore:
			return fixedLength(e.Call.Args[0])
		case ast.FuncIsAfter, ast.FuncIsNotAfter:
			eLen, ok1 := fixedLength(e.Call.Args[0])
			prevLen, ok2 := fixedLength(e.Call.Args[1])
			if !ok1 || !ok2 {
				return 0, false
			}
			return eLen + prevLen, true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}

// extractRequiredPrefixLiterals walks the leading run of a program's
// top-level sequence collecting fixed literal bytes, stopping at the first
// construct that isn't a fixed literal (or a capture transparently wrapping
// one). If that stopping construct is an alternation whose every branch is
// itself a fixed literal sequence, the walk ends there and returns the
// cross product of the literal prefix collected so far with each branch —
// a required *set* of prefixes rather than one, letting the caller build a
// multi-literal accelerator. Any other non-literal construct (a quantifier,
// a character set, an alternation with a non-literal branch) just ends the
// walk with whatever single prefix was collected; a nil result only costs
// performance, never correctness.
func extractRequiredPrefixLiterals(exprs []ast.Expression) [][]byte {
	var buf []byte
	for _, e := range exprs {
		if branches, ok := alternationLiterals(e); ok {
			lits := make([][]byte, len(branches))
			for i, b := range branches {
				lits[i] = append(append([]byte{}, buf...), b...)
			}
			return lits
		}
		s, stop := literalPrefixOf(e)
		buf = append(buf, s...)
		if stop {
			break
		}
	}
	if len(buf) == 0 {
		return nil
	}
	return [][]byte{buf}
}

// alternationLiterals reports whether e is an alternation (optionally
// wrapped in a transparent capture) all of whose branches reduce to a
// fixed literal string, returning those strings in branch order.
func alternationLiterals(e ast.Expression) ([]string, bool) {
	for e.Kind == ast.ExprCall && (e.Call.Name == ast.FuncIndex || e.Call.Name == ast.FuncCaptureName) {
		e = e.Call.Args[0]
	}
	if e.Kind != ast.ExprOr {
		return nil, false
	}
	branches := collectOrBranches(e)
	lits := make([]string, len(branches))
	for i, b := range branches {
		s, ok := branchLiteral(b)
		if !ok {
			return nil, false
		}
		lits[i] = s
	}
	return lits, true
}

// collectOrBranches flattens a right-associative chain of OrExprs
// (a | (b | c)) into its leaf branches in left-to-right order.
func collectOrBranches(e ast.Expression) []ast.Expression {
	if e.Kind != ast.ExprOr {
		return []ast.Expression{e}
	}
	return append([]ast.Expression{e.Or.Left}, collectOrBranches(e.Or.Right)...)
}

// branchLiteral reduces a single alternation branch to a fixed literal
// string, if it is one: a literal char/string, a transparent capture
// wrapping one, or a non-capturing group whose every element does.
func branchLiteral(e ast.Expression) (string, bool) {
	switch e.Kind {
	case ast.ExprLiteral:
		switch e.Literal.Kind {
		case ast.LitChar:
			return string(e.Literal.Char), true
		case ast.LitString:
			return e.Literal.Str, true
		default:
			return "", false
		}
	case ast.ExprGroup:
		var buf string
		for _, sub := range e.Group {
			s, ok := branchLiteral(sub)
			if !ok {
				return "", false
			}
			buf += s
		}
		return buf, true
	case ast.ExprCall:
		if e.Call.Name == ast.FuncIndex || e.Call.Name == ast.FuncCaptureName {
			return branchLiteral(e.Call.Args[0])
		}
		return "", false
	default:
		return "", false
	}
}

func literalPrefixOf(e ast.Expression) (string, bool) {
	switch e.Kind {
	case ast.ExprLiteral:
		if e.Literal.Kind == ast.LitChar {
			return string(e.Literal.Char), false
		}
		if e.Literal.Kind == ast.LitString {
			return e.Literal.Str, false
		}
		return "", true // char set, preset, or wildcard: not a fixed literal
	case ast.ExprAnchor, ast.ExprBoundary:
		return "", false // zero-width, transparent
	case ast.ExprCall:
		if e.Call.Name == ast.FuncIndex || e.Call.Name == ast.FuncCaptureName {
			return literalPrefixOf(e.Call.Args[0])
		}
		return "", true // quantifiers and look-around break fixedness
	default:
		return "", true // group, alternation, back-reference
	}
}

// Preset character ranges, ASCII only per the no-Unicode-property-classes
// scope: word = [A-Za-z0-9_], digit = [0-9], space = the six C-locale
// whitespace bytes, hex = [0-9a-fA-F].
var (
	wordRanges  = []objectfile.CharRange{{Lo: 'A', Hi: 'Z'}, {Lo: 'a', Hi: 'z'}, {Lo: '0', Hi: '9'}, {Lo: '_', Hi: '_'}}
	digitRanges = []objectfile.CharRange{{Lo: '0', Hi: '9'}}
	spaceRanges = []objectfile.CharRange{
		{Lo: ' ', Hi: ' '}, {Lo: '\t', Hi: '\t'}, {Lo: '\n', Hi: '\n'},
		{Lo: '\r', Hi: '\r'}, {Lo: '\f', Hi: '\f'}, {Lo: '\v', Hi: '\v'},
	}
	hexRanges = []objectfile.CharRange{{Lo: '0', Hi: '9'}, {Lo: 'a', Hi: 'f'}, {Lo: 'A', Hi: 'F'}}
)

// presetRanges returns the final, already-negation-resolved ranges for a
// preset class. A "not" preset is expanded to its literal complement over
// the full codepoint space rather than carried as a negated sub-range,
// because it may appear as one union member inside a larger character
// class (e.g. `[char_not_word, '-']`) where a separate negation flag on
// the whole enclosing set wouldn't apply to it alone.
func presetRanges(name ast.PresetClassName) []objectfile.CharRange {
	switch name {
	case ast.CharWord:
		return wordRanges
	case ast.CharNotWord:
		return complementRanges(wordRanges)
	case ast.CharDigit:
		return digitRanges
	case ast.CharNotDigit:
		return complementRanges(digitRanges)
	case ast.CharSpace:
		return spaceRanges
	case ast.CharNotSpace:
		return complementRanges(spaceRanges)
	case ast.CharHex:
		return hexRanges
	default:
		return nil
	}
}

func complementRanges(pos []objectfile.CharRange) []objectfile.CharRange {
	sorted := append([]objectfile.CharRange(nil), pos...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lo < sorted[j].Lo })

	var out []objectfile.CharRange
	next := rune(0)
	for _, r := range sorted {
		if r.Lo > next {
			out = append(out, objectfile.CharRange{Lo: next, Hi: r.Lo - 1})
		}
		if r.Hi+1 > next {
			next = r.Hi + 1
		}
	}
	if next <= utf8.MaxRune {
		out = append(out, objectfile.CharRange{Lo: next, Hi: utf8.MaxRune})
	}
	return out
}

// compileCharSet flattens an ast.CharSet's elements (chars, ranges, preset
// expansions, and positive nested sets) into a single flat objectfile.CharSet,
// resolving nesting once here so the interpreter never recurses through it.
func compileCharSet(s *ast.CharSet) (*objectfile.CharSet, error) {
	out := &objectfile.CharSet{Negative: s.Negative}
	for _, el := range s.Elements {
		switch el.Kind {
		case ast.CSChar:
			out.Ranges = append(out.Ranges, objectfile.CharRange{Lo: el.Char, Hi: el.Char})
		case ast.CSRange:
			out.Ranges = append(out.Ranges, objectfile.CharRange{Lo: el.RangeLo, Hi: el.RangeHi})
		case ast.CSPreset:
			out.Ranges = append(out.Ranges, presetRanges(el.Preset)...)
		case ast.CSNested:
			if el.Nested.Negative {
				return nil, diag.NewSyntax(token.Range{}, "nested character set may not be negated")
			}
			nested, err := compileCharSet(el.Nested)
			if err != nil {
				return nil, err
			}
			out.Ranges = append(out.Ranges, nested.Ranges...)
		}
	}
	return out, nil
}
