package anre

// Match is one capture slot's result: the byte range it spanned in the
// searched text, its name (empty for the whole-match slot 0 and for
// unnamed groups), and the substring itself already sliced out so
// callers never have to re-index into the original text.
type Match struct {
	Start, End int
	Name       string
	Value      string
}

// Len returns the number of bytes the match spans.
func (m *Match) Len() int {
	return m.End - m.Start
}

// IsEmpty reports whether the match spans zero bytes, which happens
// for a group that never participated in a successful match (its
// range defaults to (0, 0), see vm.MatchRange) as well as for a
// genuine zero-width match such as an anchor or lookaround.
func (m *Match) IsEmpty() bool {
	return m.Start == m.End
}

// Captures holds every capture slot from one successful match,
// indexed the way the compiler assigned them: slot 0 is always the
// whole match, and slots 1..N follow in the source order their
// capturing constructs appear in the pattern.
type Captures struct {
	matches []Match
	names   []string
}

// Len returns the number of capture slots, including slot 0.
func (c *Captures) Len() int {
	return len(c.matches)
}

// Get returns the capture at index i, or nil if i is out of range.
func (c *Captures) Get(i int) *Match {
	if i < 0 || i >= len(c.matches) {
		return nil
	}
	m := c.matches[i]
	return &m
}

// Name returns the capture whose name equals the given name, or nil
// if no slot has that name. When more than one slot shares a name the
// first one in source order wins, matching the reference lookup rule.
func (c *Captures) Name(name string) *Match {
	for i, n := range c.names {
		if n == name {
			m := c.matches[i]
			return &m
		}
	}
	return nil
}
