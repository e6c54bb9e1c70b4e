// Package anre provides a regular-expression engine that accepts
// patterns in two surface syntaxes — a traditional PCRE-like notation
// and a structured, expression-oriented notation — compiles them to a
// shared object file, and executes matching with a backtracking
// interpreter accelerated by an optional literal prefilter.
//
// Basic usage:
//
//	re, err := anre.Compile(`\d+`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if re.IsMatch("room 42") {
//	    m := re.Find("room 42")
//	    fmt.Println(m.Value) // "42"
//	}
package anre

import (
	"sync"

	"github.com/coregx/anre/ast"
	"github.com/coregx/anre/engine"
	"github.com/coregx/anre/parser"
	structuredsyntax "github.com/coregx/anre/structured"
	"github.com/coregx/anre/vm"
)

// Regex is a compiled pattern, safe for concurrent use: every search
// method builds its own vm.Context, so the only shared mutable state
// is the lastErr field guarded by mu.
type Regex struct {
	eng     *engine.Engine
	pattern string

	mu      sync.Mutex
	lastErr error
}

// Compile parses pattern in the traditional notation and compiles it
// with DefaultConfig.
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, false, engine.DefaultConfig())
}

// CompileStructured parses pattern in the structured notation and
// compiles it with DefaultConfig.
func CompileStructured(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, true, engine.DefaultConfig())
}

// MustCompile is like Compile but panics if pattern fails to parse or
// compile. Intended for patterns known to be valid, such as package
// level vars initialised at startup.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("anre: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// MustCompileStructured is MustCompile for the structured notation.
func MustCompileStructured(pattern string) *Regex {
	re, err := CompileStructured(pattern)
	if err != nil {
		panic("anre: CompileStructured(" + pattern + "): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles pattern with an explicit engine.Config,
// choosing the structured parser when structured is true and the
// traditional one otherwise.
func CompileWithConfig(pattern string, structured bool, cfg engine.Config) (*Regex, error) {
	var prog *ast.Program
	var err error
	if structured {
		prog, err = structuredsyntax.Parse(pattern)
	} else {
		prog, err = parser.Parse(pattern)
	}
	if err != nil {
		return nil, err
	}

	eng, err := engine.Compile(prog, cfg)
	if err != nil {
		return nil, err
	}

	return &Regex{eng: eng, pattern: pattern}, nil
}

// String returns the source pattern text the Regex was compiled from.
func (re *Regex) String() string {
	return re.pattern
}

// NumSubexp returns the number of capture groups in the pattern, not
// counting the whole-match slot 0.
func (re *Regex) NumSubexp() int {
	return re.eng.NumCaptures() - 1
}

// LastError returns the error from the most recent search call, or
// nil if the last search completed without one. A step-limit overrun
// (vm.ErrStepLimitExceeded) surfaces here rather than as a panic or a
// silently wrong answer: the search method it occurred in reports a
// plain non-match, and the caller who cares can check LastError to
// tell "no match" from "gave up".
func (re *Regex) LastError() error {
	re.mu.Lock()
	defer re.mu.Unlock()
	return re.lastErr
}

func (re *Regex) setLastErr(err error) {
	re.mu.Lock()
	re.lastErr = err
	re.mu.Unlock()
}

// IsMatch reports whether text contains any match of the pattern.
func (re *Regex) IsMatch(text string) bool {
	ok, err := re.eng.IsMatch([]byte(text))
	re.setLastErr(err)
	return ok
}

// Find returns the leftmost match in text, or nil if there is none.
func (re *Regex) Find(text string) *Match {
	ranges, err := re.eng.FindAt([]byte(text), 0)
	re.setLastErr(err)
	if ranges == nil {
		return nil
	}
	return &Match{
		Start: ranges[0].Start,
		End:   ranges[0].End,
		Value: text[ranges[0].Start:ranges[0].End],
	}
}

// Captures returns every capture slot of the leftmost match in text,
// or nil if there is none.
func (re *Regex) Captures(text string) *Captures {
	ranges, err := re.eng.FindAt([]byte(text), 0)
	re.setLastErr(err)
	if ranges == nil {
		return nil
	}
	return re.buildCaptures(text, ranges)
}

func (re *Regex) buildCaptures(text string, ranges []vm.MatchRange) *Captures {
	names := re.eng.CaptureNames()
	matches := make([]Match, len(ranges))
	for i, r := range ranges {
		matches[i] = Match{
			Start: r.Start,
			End:   r.End,
			Name:  names[i],
			Value: text[r.Start:r.End],
		}
	}
	return &Captures{matches: matches, names: names}
}

// FindIter returns an iterator over every successive, non-overlapping
// match of the pattern in text.
func (re *Regex) FindIter(text string) *MatchIter {
	return &MatchIter{re: re, text: text}
}

// CapturesIter returns an iterator over every successive,
// non-overlapping match of the pattern in text, yielding all capture
// slots for each one.
func (re *Regex) CapturesIter(text string) *CapturesIter {
	return &CapturesIter{re: re, text: text}
}
