// Package jsexpr exposes interpolated JavaScript expressions in a closed,
// pattern-matchable form. Everything the lowering engine knows about JS lives
// behind this package; the actual parsing is delegated to tdewolff/parse.
package jsexpr

import (
	"strings"
)

// Kind discriminates expression shapes the engine recognizes.
type Kind int

const (
	KindRaw      Kind = iota // anything we do not model, source text only
	KindIdent                // bare identifier reference
	KindMember               // member chain: base.a.b or base["a"]
	KindCond                 // ternary conditional
	KindBinary               // logical / equality binary expression
	KindNot                  // logical negation
	KindCall                 // call expression
	KindLiteral              // string / number / bool / null literal
	KindArrow                // arrow function
	KindTemplate             // template literal (tagged or plain)
)

// LitKind further discriminates KindLiteral values.
type LitKind int

const (
	LitString LitKind = iota
	LitNumber
	LitBool
	LitNull
)

// Expr is a single parsed expression node. Only the fields relevant to the
// node's Kind are populated; the zero value is a raw node with no source.
type Expr struct {
	Kind Kind
	Src  string // original source text when known (always set on parse roots)

	// KindIdent
	Name string

	// KindMember
	Base string
	Path []string

	// KindCond
	Cond *Expr
	Then *Expr
	Else *Expr

	// KindBinary ("&&", "||", "??", "==", "===", "!=", "!==") and KindNot (X only)
	Op string
	X  *Expr
	Y  *Expr

	// KindCall and KindTemplate
	Callee    string
	CalleeSrc string
	Args      []*Expr

	// KindLiteral
	Lit   LitKind
	Value string

	// KindArrow. Param is the simple parameter name, Destructured the names
	// bound by a single-level object pattern; exactly one of them is set.
	Param        string
	Destructured []string
	Body         *Expr
}

// Source returns the best available source text for the node: the original
// text when it was captured during parsing, otherwise a rendering of the
// structured form.
func (e *Expr) Source() string {
	if e == nil {
		return ""
	}
	if e.Src != "" {
		return e.Src
	}
	return e.render()
}

func (e *Expr) render() string {
	switch e.Kind {
	case KindIdent:
		return e.Name
	case KindMember:
		return e.Base + "." + strings.Join(e.Path, ".")
	case KindCond:
		return e.Cond.Source() + " ? " + e.Then.Source() + " : " + e.Else.Source()
	case KindBinary:
		return e.X.Source() + " " + e.Op + " " + e.Y.Source()
	case KindNot:
		return "!" + e.X.Source()
	case KindCall:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = a.Source()
		}
		return e.CalleeSrc + "(" + strings.Join(args, ", ") + ")"
	case KindLiteral:
		if e.Lit == LitString {
			return `"` + e.Value + `"`
		}
		return e.Value
	case KindArrow:
		if e.Param != "" {
			return "(" + e.Param + ") => " + e.Body.Source()
		}
		return "({" + strings.Join(e.Destructured, ", ") + "}) => " + e.Body.Source()
	case KindTemplate:
		return e.Callee + "`...`"
	default:
		return e.Src
	}
}

// MemberPath returns the full dotted path of a member chain including its
// base, or nil when the node is not an identifier or member chain.
func (e *Expr) MemberPath() []string {
	switch e.Kind {
	case KindIdent:
		return []string{e.Name}
	case KindMember:
		return append([]string{e.Base}, e.Path...)
	default:
		return nil
	}
}

// IsString reports whether the node is a string literal and returns its value.
func (e *Expr) IsString() (string, bool) {
	if e != nil && e.Kind == KindLiteral && e.Lit == LitString {
		return e.Value, true
	}
	return "", false
}

// IsLiteral reports whether the node is any literal.
func (e *Expr) IsLiteral() bool {
	return e != nil && e.Kind == KindLiteral
}

// LiteralText returns the raw literal text usable inside a CSS value or a
// generated identifier.
func (e *Expr) LiteralText() string {
	if e == nil || e.Kind != KindLiteral {
		return ""
	}
	return e.Value
}

// Unwrap strips an arrow function wrapper, returning the body together with
// the parameter binding. For non-arrow expressions it returns the node itself
// with an empty binding.
func (e *Expr) Unwrap() (body *Expr, binding ParamBinding) {
	if e == nil {
		return nil, ParamBinding{}
	}
	if e.Kind != KindArrow {
		return e, ParamBinding{}
	}
	return e.Body, ParamBinding{Name: e.Param, Destructured: e.Destructured}
}

// ParamBinding describes how an arrow function binds its (single) parameter.
type ParamBinding struct {
	Name         string   // simple binding: props => ...
	Destructured []string // object pattern: ({theme, $active}) => ...
}

// PropAccess checks whether the node reads a property off the bound
// parameter and returns the access path relative to the parameter.
// Both `props.$x` (simple binding) and `$x` (destructured binding) match.
func (b ParamBinding) PropAccess(e *Expr) ([]string, bool) {
	path := e.MemberPath()
	if len(path) == 0 {
		return nil, false
	}
	if b.Name != "" && path[0] == b.Name && len(path) > 1 {
		return path[1:], true
	}
	for _, n := range b.Destructured {
		if path[0] == n {
			return path, true
		}
	}
	return nil, false
}
