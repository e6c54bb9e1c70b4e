// Package prefilter accelerates the unanchored top-level search loop
// (spec §4.5 step 3) by narrowing which byte offsets it probes, using
// the required-prefix literal set the compiler extracts from a
// pattern's AST (objectfile.ObjectFile.RequiredPrefixLiterals).
//
// A Prefilter only ever changes *which offset* vm is asked to attempt
// next; it never changes whether an attempt at that offset succeeds.
// Removing a Prefilter entirely (falling back to the plain one-rune
// advance spec §4.5 describes) changes performance, never the match
// result — SPEC_FULL.md calls this the prefilter transparency
// property, and engine's test suite checks it by running every case
// with and without a Prefilter and diffing.
package prefilter

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/anre/simd"
)

// Prefilter finds the next byte offset in haystack, at or after start,
// that could plausibly begin a match.
type Prefilter interface {
	// Find returns the index of the next candidate offset at or after
	// start, or -1 if no candidate remains. The caller still runs the
	// full interpreter at the returned offset — a hit here is a
	// necessary condition for a match, never a sufficient one.
	Find(haystack []byte, start int) int
}

// Build selects the cheapest Prefilter that can exercise literals, or
// nil if none of them are worth accelerating — the caller should then
// fall back to spec §4.5 step 3's plain one-rune-at-a-time advance.
// If any literal is shorter than minLen (SPEC_FULL.md's
// Config.MinPrefilterLiteralLen), Build returns nil: searching for
// only the longer literals would skip offsets where a match begins
// with a shorter one. A length-1 literal is cheap to search for but
// also cheap to false-positive on, so a caller searching
// mostly-matching text may prefer to raise the floor.
func Build(literals [][]byte, minLen int) Prefilter {
	kept := literals[:0:0]
	for _, lit := range literals {
		if len(lit) < minLen {
			return nil
		}
		kept = append(kept, lit)
	}

	switch {
	case len(kept) == 0:
		return nil
	case len(kept) == 1:
		return buildSingle(kept[0])
	case len(kept) <= 3 && allSingleByte(kept):
		return buildSmallByteSet(kept)
	default:
		return buildAhoCorasick(kept)
	}
}

func allSingleByte(lits [][]byte) bool {
	for _, l := range lits {
		if len(l) != 1 {
			return false
		}
	}
	return true
}

func buildSingle(lit []byte) Prefilter {
	if len(lit) == 1 {
		return memchrPrefilter{needle: lit[0]}
	}
	needle := make([]byte, len(lit))
	copy(needle, lit)
	return memmemPrefilter{needle: needle}
}

func buildSmallByteSet(lits [][]byte) Prefilter {
	switch len(lits) {
	case 2:
		return memchr2Prefilter{lits[0][0], lits[1][0]}
	default: // 3
		return memchr3Prefilter{lits[0][0], lits[1][0], lits[2][0]}
	}
}

// buildAhoCorasick returns nil rather than propagating an error when
// the automaton fails to build, since a Prefilter is always an optional accelerator —
// degraded performance, never a correctness failure, per package doc.
func buildAhoCorasick(lits [][]byte) Prefilter {
	builder := ahocorasick.NewBuilder()
	for _, lit := range lits {
		builder.AddPattern(lit)
	}
	automaton, err := builder.Build()
	if err != nil {
		return nil
	}
	return ahoCorasickPrefilter{automaton: automaton}
}

type memchrPrefilter struct{ needle byte }

func (p memchrPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	if idx := simd.Memchr(haystack[start:], p.needle); idx != -1 {
		return start + idx
	}
	return -1
}

type memmemPrefilter struct{ needle []byte }

func (p memmemPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	if idx := simd.Memmem(haystack[start:], p.needle); idx != -1 {
		return start + idx
	}
	return -1
}

type memchr2Prefilter struct{ a, b byte }

func (p memchr2Prefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	if idx := simd.Memchr2(haystack[start:], p.a, p.b); idx != -1 {
		return start + idx
	}
	return -1
}

type memchr3Prefilter struct{ a, b, c byte }

func (p memchr3Prefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	if idx := simd.Memchr3(haystack[start:], p.a, p.b, p.c); idx != -1 {
		return start + idx
	}
	return -1
}

// ahoCorasickPrefilter handles the general multi-literal case: four or
// more literals, or any mix including a literal of length >= 2
// alongside others. Built once per compiled pattern and reused across
// every search against it.
type ahoCorasickPrefilter struct {
	automaton *ahocorasick.Automaton
}

func (p ahoCorasickPrefilter) Find(haystack []byte, start int) int {
	if start < 0 || start > len(haystack) {
		return -1
	}
	m := p.automaton.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}
