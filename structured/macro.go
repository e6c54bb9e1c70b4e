package structured

import (
	"github.com/coregx/anre/diag"
	"github.com/coregx/anre/token"
)

// macroDef is one `define(name, …body…)` extracted from the top level
// of a structured-notation token stream.
type macroDef struct {
	name string
	body []token.Token
}

// Expand runs the full normalize -> extract -> substitute -> normalize
// pipeline of spec section 4.2 over a raw token stream.
func Expand(toks []token.Token) ([]token.Token, error) {
	toks = Normalize(toks)
	program, defs, err := extractDefines(toks)
	if err != nil {
		return nil, err
	}
	// Right-to-left over extraction order: a later definition may
	// reference an earlier one, so each definition's name is resolved
	// in the program tokens and in any later (already-extracted, not
	// yet resolved) definition's body before moving to the definition
	// that precedes it.
	for i := len(defs) - 1; i >= 0; i-- {
		d := defs[i]
		program = substituteIdentifier(program, d.name, d.body)
		for j := i + 1; j < len(defs); j++ {
			defs[j].body = substituteIdentifier(defs[j].body, d.name, d.body)
		}
	}
	return Normalize(program), nil
}

// extractDefines walks toks tracking parenthesis depth and pulls out
// every top-level (depth 0) `define(name, body)` call together with the
// comma/newline separators that follow it, returning the remaining
// program tokens and the extracted definitions in source order.
func extractDefines(toks []token.Token) ([]token.Token, []macroDef, error) {
	var program []token.Token
	var defs []macroDef
	depth := 0
	i := 0
	for i < len(toks) {
		t := toks[i]
		if depth == 0 && t.Kind == token.KindIdentifier && t.Text == "define" &&
			i+1 < len(toks) && toks[i+1].Kind == token.KindLParen {
			def, next, err := parseDefine(toks, i)
			if err != nil {
				return nil, nil, err
			}
			defs = append(defs, def)
			i = next
			for i < len(toks) && (toks[i].Kind == token.KindComma || toks[i].Kind == token.KindNewline) {
				i++
			}
			continue
		}
		switch t.Kind {
		case token.KindLParen:
			depth++
		case token.KindRParen:
			depth--
		}
		program = append(program, t)
		i++
	}
	return program, defs, nil
}

// parseDefine parses toks[start:], where toks[start] is the "define"
// identifier and toks[start+1] its opening '(', and returns the parsed
// definition plus the index just past the matching ')'.
func parseDefine(toks []token.Token, start int) (macroDef, int, error) {
	i := start + 2 // past "define" and '('
	depth := 1
	var nameToks, bodyToks []token.Token
	sawComma := false
	for {
		if i >= len(toks) || toks[i].Kind == token.KindEOF {
			return macroDef{}, 0, diag.NewUnexpectedEOF("unterminated define(...)")
		}
		t := toks[i]
		if t.Kind == token.KindLParen {
			depth++
		} else if t.Kind == token.KindRParen {
			depth--
			if depth == 0 {
				i++
				break
			}
		}
		if depth == 1 && t.Kind == token.KindComma && !sawComma {
			sawComma = true
			i++
			continue
		}
		if !sawComma {
			if t.Kind != token.KindNewline {
				nameToks = append(nameToks, t)
			}
		} else {
			bodyToks = append(bodyToks, t)
		}
		i++
	}
	if len(nameToks) != 1 || nameToks[0].Kind != token.KindIdentifier {
		return macroDef{}, 0, diag.NewSyntax(toks[start].Range, "define(...) requires a single identifier as its first argument")
	}
	return macroDef{name: nameToks[0].Text, body: bodyToks}, i, nil
}

func substituteIdentifier(toks []token.Token, name string, body []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind == token.KindIdentifier && t.Text == name {
			out = append(out, body...)
			continue
		}
		out = append(out, t)
	}
	return out
}
