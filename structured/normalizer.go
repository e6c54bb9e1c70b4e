package structured

import "github.com/coregx/anre/token"

// Normalize reduces a raw token stream per spec section 4.2: drop
// comments (already absent — the lexer never emits one), collapse
// consecutive newlines to a single newline, collapse a comma adjacent
// to any number of newlines on either side to a single comma, and trim
// leading/trailing newlines. The structured notation accepts commas and
// newlines interchangeably as argument/sequence separators, so folding
// "newline*, comma, newline*" runs down to a bare comma keeps the
// parser from having to special-case the mix. The trailing EOF sentinel
// is set aside before trimming and reattached at the end.
func Normalize(toks []token.Token) []token.Token {
	body := toks
	var eof token.Token
	hasEOF := false
	if len(toks) > 0 && toks[len(toks)-1].Kind == token.KindEOF {
		eof = toks[len(toks)-1]
		hasEOF = true
		body = toks[:len(toks)-1]
	}

	collapsed := make([]token.Token, 0, len(body))
	for _, t := range body {
		switch t.Kind {
		case token.KindNewline:
			if len(collapsed) > 0 && collapsed[len(collapsed)-1].Kind == token.KindNewline {
				continue
			}
			collapsed = append(collapsed, t)
		case token.KindComma:
			for len(collapsed) > 0 && collapsed[len(collapsed)-1].Kind == token.KindNewline {
				collapsed = collapsed[:len(collapsed)-1]
			}
			collapsed = append(collapsed, t)
		default:
			collapsed = append(collapsed, t)
		}
	}

	// A comma can also be followed by newlines; strip those too.
	deduped := collapsed[:0:0]
	for i, t := range collapsed {
		if t.Kind == token.KindNewline && i > 0 && collapsed[i-1].Kind == token.KindComma {
			continue
		}
		deduped = append(deduped, t)
	}

	for len(deduped) > 0 && deduped[0].Kind == token.KindNewline {
		deduped = deduped[1:]
	}
	for len(deduped) > 0 && deduped[len(deduped)-1].Kind == token.KindNewline {
		deduped = deduped[:len(deduped)-1]
	}

	if hasEOF {
		deduped = append(deduped, eof)
	}
	return deduped
}
