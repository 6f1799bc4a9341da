package lower

import (
	"strings"
)

// Variant buckets are keyed by boolean conditions over component props. The
// conditions are built structured by the classifier and only rendered to
// strings for bucket keys and generated code; they are never parsed back from
// text.

type CondKind int

const (
	CondIdent CondKind = iota
	CondNot
	CondAnd
	CondOr
	CondEq
)

// Cond is one node of the condition minilanguage: a prop reference, a
// negation, a conjunction/disjunction or an equality test against a literal.
type Cond struct {
	Kind CondKind

	Name string // CondIdent: prop path, `$` prefix preserved

	X, Y *Cond // CondNot uses X; CondAnd/CondOr use both

	// CondEq
	Lhs        string
	Op         string // "===", "!==", "==", "!="
	Rhs        string
	RhsLiteral bool
}

func Ident(name string) *Cond { return &Cond{Kind: CondIdent, Name: name} }

func Not(x *Cond) *Cond {
	if x.Kind == CondNot {
		return x.X
	}
	return &Cond{Kind: CondNot, X: x}
}

func And(x, y *Cond) *Cond { return &Cond{Kind: CondAnd, X: x, Y: y} }
func Or(x, y *Cond) *Cond  { return &Cond{Kind: CondOr, X: x, Y: y} }

func Eq(lhs, op, rhs string, literal bool) *Cond {
	return &Cond{Kind: CondEq, Lhs: lhs, Op: op, Rhs: rhs, RhsLiteral: literal}
}

// String renders the condition as JS source. One-way: nothing re-parses this.
func (c *Cond) String() string {
	if c == nil {
		return ""
	}
	switch c.Kind {
	case CondIdent:
		return c.Name
	case CondNot:
		if c.X.Kind == CondIdent {
			return "!" + c.X.String()
		}
		return "!(" + c.X.String() + ")"
	case CondAnd:
		return c.X.String() + " && " + c.Y.String()
	case CondOr:
		return c.X.String() + " || " + c.Y.String()
	case CondEq:
		return c.Lhs + " " + c.Op + " " + c.Rhs
	}
	return ""
}

// Negate returns the logical negation, simplifying double negation and
// flipping equality operators in place of wrapping.
func (c *Cond) Negate() *Cond {
	if c == nil {
		return nil
	}
	switch c.Kind {
	case CondNot:
		return c.X
	case CondEq:
		return Eq(c.Lhs, flipOp(c.Op), c.Rhs, c.RhsLiteral)
	default:
		return &Cond{Kind: CondNot, X: c}
	}
}

func flipOp(op string) string {
	switch op {
	case "===":
		return "!=="
	case "!==":
		return "==="
	case "==":
		return "!="
	case "!=":
		return "=="
	}
	return op
}

// Complementary reports whether a and b are exact boolean complements.
// Comparison normalizes whitespace and strips one layer of enclosing parens.
func Complementary(a, b *Cond) bool {
	if a == nil || b == nil {
		return false
	}
	return normalizeCond(a.Negate().String()) == normalizeCond(b.String())
}

func normalizeCond(s string) string {
	s = strings.Join(strings.Fields(s), "")
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		inner := s[1 : len(s)-1]
		if balancedParens(inner) {
			s = inner
		}
	}
	if strings.HasPrefix(s, "!((") && strings.HasSuffix(s, "))") {
		inner := s[3 : len(s)-2]
		if balancedParens(inner) {
			s = "!(" + inner + ")"
		}
	}
	return s
}

func balancedParens(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
