package ast

import (
	"strconv"
	"strings"
)

// Print renders a Program back to the structured notation. It is used
// purely for diagnostics (error messages that need to show "the pattern
// as parsed" regardless of which surface syntax produced it) — it is
// never round-tripped back through a parser.
func Print(p *Program) string {
	var b strings.Builder
	printExprList(&b, p.Expressions, ", ")
	return b.String()
}

func printExprList(b *strings.Builder, exprs []Expression, sep string) {
	for i, e := range exprs {
		if i > 0 {
			b.WriteString(sep)
		}
		printExpr(b, e)
	}
}

func printExpr(b *strings.Builder, e Expression) {
	switch e.Kind {
	case ExprLiteral:
		printLiteral(b, *e.Literal)
	case ExprBackReference:
		b.WriteString(e.BackReference.String())
	case ExprAnchor:
		b.WriteString(e.Anchor.String())
	case ExprBoundary:
		b.WriteString(e.Boundary.String())
	case ExprGroup:
		b.WriteByte('(')
		printExprList(b, e.Group, ", ")
		b.WriteByte(')')
	case ExprOr:
		printExpr(b, e.Or.Left)
		b.WriteString(" || ")
		printExpr(b, e.Or.Right)
	case ExprCall:
		printCall(b, *e.Call)
	default:
		b.WriteString("<invalid>")
	}
}

func printLiteral(b *strings.Builder, l Literal) {
	switch l.Kind {
	case LitChar:
		b.WriteByte('\'')
		b.WriteRune(l.Char)
		b.WriteByte('\'')
	case LitString:
		b.WriteByte('"')
		b.WriteString(l.Str)
		b.WriteByte('"')
	case LitPreset:
		b.WriteString(l.Preset.String())
	case LitAnyChar:
		b.WriteString("char_any")
	case LitCharSet:
		printCharSet(b, *l.Set)
	}
}

func printCharSet(b *strings.Builder, s CharSet) {
	if s.Negative {
		b.WriteByte('!')
	}
	b.WriteByte('[')
	for i, el := range s.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		switch el.Kind {
		case CSChar:
			b.WriteRune(el.Char)
		case CSRange:
			b.WriteRune(el.RangeLo)
			b.WriteString("..")
			b.WriteRune(el.RangeHi)
		case CSPreset:
			b.WriteString(el.Preset.String())
		case CSNested:
			printCharSet(b, *el.Nested)
		}
	}
	b.WriteByte(']')
}

func printCall(b *strings.Builder, c FunctionCall) {
	switch c.Name {
	case FuncOptional, FuncOptionalLazy, FuncOneOrMore, FuncOneOrMoreLazy,
		FuncZeroOrMore, FuncZeroOrMoreLazy:
		printExpr(b, c.Args[0])
		b.WriteByte('.')
		b.WriteString(c.Name.String())
		b.WriteString("()")
	case FuncRepeat:
		printExpr(b, c.Args[0])
		b.WriteString(".repeat(")
		writeInt(b, c.RepeatN)
		b.WriteByte(')')
	case FuncRepeatRange, FuncRepeatRangeLazy, FuncAtLeast, FuncAtLeastLazy:
		printExpr(b, c.Args[0])
		b.WriteByte('.')
		b.WriteString(c.Name.String())
		b.WriteByte('(')
		writeInt(b, c.RepeatMin)
		if c.RepeatMax >= 0 {
			b.WriteString(", ")
			writeInt(b, c.RepeatMax)
		}
		b.WriteByte(')')
	case FuncIsBefore, FuncIsAfter, FuncIsNotBefore, FuncIsNotAfter:
		printExpr(b, c.Args[0])
		b.WriteByte('.')
		b.WriteString(c.Name.String())
		b.WriteByte('(')
		printExpr(b, c.Args[1])
		b.WriteByte(')')
	case FuncCaptureName:
		b.WriteString("name(")
		printExpr(b, c.Args[0])
		b.WriteString(", ")
		b.WriteString(c.CaptureName)
		b.WriteByte(')')
	case FuncIndex:
		b.WriteString("index(")
		printExpr(b, c.Args[0])
		b.WriteByte(')')
	}
}

func writeInt(b *strings.Builder, n int) {
	b.WriteString(strconv.Itoa(n))
}
