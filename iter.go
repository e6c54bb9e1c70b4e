package anre

// MatchIter walks successive, non-overlapping matches of a pattern
// across a text, advancing past each match the way the teacher's own
// hand-rolled FindAll loop does: past the match end, or one byte past
// an empty match so the same empty match is never reported twice.
type MatchIter struct {
	re   *Regex
	text string
	pos  int
	done bool
}

// Next returns the next match, or nil once the text is exhausted.
func (it *MatchIter) Next() *Match {
	if it.done || it.pos > len(it.text) {
		return nil
	}

	ranges, err := it.re.eng.FindAt([]byte(it.text), it.pos)
	it.re.setLastErr(err)
	if ranges == nil {
		it.done = true
		return nil
	}

	m := &Match{
		Start: ranges[0].Start,
		End:   ranges[0].End,
		Value: it.text[ranges[0].Start:ranges[0].End],
	}
	it.advance(ranges[0].Start, ranges[0].End)
	return m
}

// CapturesIter is MatchIter for full capture sets.
type CapturesIter struct {
	re   *Regex
	text string
	pos  int
	done bool
}

// Next returns the next set of captures, or nil once the text is
// exhausted.
func (it *CapturesIter) Next() *Captures {
	if it.done || it.pos > len(it.text) {
		return nil
	}

	ranges, err := it.re.eng.FindAt([]byte(it.text), it.pos)
	it.re.setLastErr(err)
	if ranges == nil {
		it.done = true
		return nil
	}

	c := it.re.buildCaptures(it.text, ranges)
	it.advance(ranges[0].Start, ranges[0].End)
	return c
}

func (it *MatchIter) advance(start, end int) {
	if end > start {
		it.pos = end
	} else {
		it.pos = end + 1
	}
}

func (it *CapturesIter) advance(start, end int) {
	if end > start {
		it.pos = end
	} else {
		it.pos = end + 1
	}
}
