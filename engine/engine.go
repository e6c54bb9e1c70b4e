package engine

import (
	"github.com/coregx/anre/ast"
	"github.com/coregx/anre/compiler"
	"github.com/coregx/anre/objectfile"
	"github.com/coregx/anre/prefilter"
	"github.com/coregx/anre/vm"
)

// Engine is the compiled, reusable form of a pattern: an ObjectFile
// plus whatever prefilter accelerator its required-prefix literals
// support. Both are immutable after Compile; a single Engine can run
// any number of concurrent searches, each with its own vm.Context.
type Engine struct {
	of     *objectfile.ObjectFile
	pf     prefilter.Prefilter
	config Config
}

// Compile lowers an already-parsed AST (either notation — both share
// ast.Program) into an Engine, validating config first.
func Compile(prog *ast.Program, config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	of, err := compiler.CompileWithMaxDepth(prog, config.MaxRecursionDepth)
	if err != nil {
		return nil, err
	}

	var pf prefilter.Prefilter
	mainRoute := &of.Routes[0]
	if config.EnablePrefilter && !mainRoute.FixedStartPosition && of.RequiredPrefixLiterals != nil {
		pf = prefilter.Build(of.RequiredPrefixLiterals, config.MinPrefilterLiteralLen)
	}

	return &Engine{of: of, pf: pf, config: config}, nil
}

// NumCaptures returns the number of capture groups, including group 0
// (the whole match).
func (e *Engine) NumCaptures() int { return len(e.of.CaptureNames) }

// CaptureNames returns the capture-group name table in source order;
// entry 0 is always "".
func (e *Engine) CaptureNames() []string { return e.of.CaptureNames }

// FindAt searches haystack for the first match starting at or after
// byte offset at, returning the capture ranges on success. A nil
// result with a nil error means no match; a non-nil error means the
// interpreter aborted the attempt (currently only vm.ErrStepLimitExceeded).
func (e *Engine) FindAt(haystack []byte, at int) ([]vm.MatchRange, error) {
	if at > len(haystack) {
		return nil, nil
	}

	ctx := vm.NewContext(haystack, e.NumCaptures(), e.config.MaxBacktrackSteps)
	mainRoute := &e.of.Routes[0]

	if mainRoute.FixedStartPosition {
		ok, err := ctx.Attempt(e.of, 0, at)
		if err != nil || !ok {
			return nil, err
		}
		return ctx.Ranges, nil
	}

	if e.pf == nil {
		ok, err := ctx.Search(e.of, 0, at)
		if err != nil || !ok {
			return nil, err
		}
		return ctx.Ranges, nil
	}

	return e.findAtWithPrefilter(ctx, haystack, at)
}

// findAtWithPrefilter implements SPEC_FULL.md §4.5a: rather than vm's
// own one-rune-at-a-time advance, each iteration asks the prefilter for
// the next candidate offset and runs a single vm.Attempt there. A
// failed attempt at a candidate just means that particular occurrence
// of the required literal wasn't the start of a real match (e.g. the
// rest of the pattern didn't follow) — search resumes one byte past
// the candidate, since the next literal occurrence could start there.
func (e *Engine) findAtWithPrefilter(ctx *vm.Context, haystack []byte, at int) ([]vm.MatchRange, error) {
	p := at
	for p <= len(haystack) {
		cand := e.pf.Find(haystack, p)
		if cand == -1 {
			return nil, nil
		}
		ctx.Reset()
		ok, err := ctx.Attempt(e.of, 0, cand)
		if err != nil {
			return nil, err
		}
		if ok {
			return ctx.Ranges, nil
		}
		p = cand + 1
	}
	return nil, nil
}

// IsMatch reports whether haystack contains a match anywhere at or
// after byte offset 0. It runs the same search as FindAt and discards
// the captures — unlike the teacher's multi-strategy IsMatch, there is
// no separate DFA early-exit path here to make a boolean answer any
// cheaper than a full one.
func (e *Engine) IsMatch(haystack []byte) (bool, error) {
	ranges, err := e.FindAt(haystack, 0)
	if err != nil {
		return false, err
	}
	return ranges != nil, nil
}
