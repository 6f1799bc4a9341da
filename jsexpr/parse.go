package jsexpr

import (
	"errors"
	"fmt"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

// Parse parses a single JavaScript expression into the closed view. The
// source is wrapped in parentheses so that arrow functions and object
// literals parse as expressions.
func Parse(src string) (*Expr, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, errors.New("empty expression")
	}

	ast, err := js.Parse(parse.NewInputString("("+src+");"), js.Options{})
	if err != nil {
		return nil, fmt.Errorf("unable to parse expression %q: %w", src, err)
	}
	if len(ast.BlockStmt.List) == 0 {
		return nil, fmt.Errorf("no statements in expression %q", src)
	}
	stmt, ok := ast.BlockStmt.List[0].(*js.ExprStmt)
	if !ok {
		return nil, fmt.Errorf("not an expression: %q", src)
	}

	e := convert(stmt.Value)
	e.Src = src
	return e, nil
}

// convert maps a tdewolff node to our view. Unknown shapes become raw nodes;
// conversion never fails, the classifier decides what to do with raw nodes.
func convert(n js.IExpr) *Expr {
	switch v := n.(type) {
	case *js.GroupExpr:
		return convert(v.X)

	case *js.Var:
		return &Expr{Kind: KindIdent, Name: string(v.Data)}

	case *js.DotExpr:
		return convertMember(v)

	case *js.IndexExpr:
		return convertMember(v)

	case *js.CondExpr:
		return &Expr{
			Kind: KindCond,
			Cond: convert(v.Cond),
			Then: convert(v.X),
			Else: convert(v.Y),
		}

	case *js.BinaryExpr:
		op, ok := binaryOp(v.Op)
		if !ok {
			return &Expr{Kind: KindRaw}
		}
		return &Expr{Kind: KindBinary, Op: op, X: convert(v.X), Y: convert(v.Y)}

	case *js.UnaryExpr:
		if v.Op == js.NotToken {
			return &Expr{Kind: KindNot, X: convert(v.X)}
		}
		return &Expr{Kind: KindRaw}

	case *js.CallExpr:
		callee := convert(v.X)
		e := &Expr{
			Kind:      KindCall,
			Callee:    calleeName(callee),
			CalleeSrc: callee.Source(),
		}
		for _, a := range v.Args.List {
			if a.Rest {
				// spread arguments defeat pattern matching
				return &Expr{Kind: KindRaw}
			}
			e.Args = append(e.Args, convert(a.Value))
		}
		return e

	case *js.LiteralExpr:
		return convertLiteral(v)

	case *js.ArrowFunc:
		return convertArrow(v)

	case *js.TemplateExpr:
		if v.Tag == nil && len(v.List) == 0 {
			// substitution-free template literal, same as a plain string
			return &Expr{Kind: KindLiteral, Lit: LitString, Value: unquote(string(v.Tail))}
		}
		e := &Expr{Kind: KindTemplate}
		if v.Tag != nil {
			tag := convert(v.Tag)
			e.Callee = calleeName(tag)
			e.CalleeSrc = tag.Source()
		}
		return e

	default:
		return &Expr{Kind: KindRaw}
	}
}

// convertMember flattens a dot/index chain into base + path. Computed access
// with anything but a string literal degrades to a raw node.
func convertMember(n js.IExpr) *Expr {
	var path []string
	for {
		switch v := n.(type) {
		case *js.DotExpr:
			// Y is either a value LiteralExpr (property name) or a *Var
			switch y := v.Y.(type) {
			case js.LiteralExpr:
				path = append([]string{string(y.Data)}, path...)
			case *js.Var:
				path = append([]string{string(y.Data)}, path...)
			default:
				return &Expr{Kind: KindRaw}
			}
			n = v.X
		case *js.IndexExpr:
			lit, ok := v.Y.(*js.LiteralExpr)
			if !ok || lit.TokenType != js.StringToken {
				return &Expr{Kind: KindRaw}
			}
			path = append([]string{unquote(string(lit.Data))}, path...)
			n = v.X
		case *js.GroupExpr:
			n = v.X
		case *js.Var:
			return &Expr{Kind: KindMember, Base: string(v.Data), Path: path}
		default:
			return &Expr{Kind: KindRaw}
		}
	}
}

func convertLiteral(v *js.LiteralExpr) *Expr {
	switch v.TokenType {
	case js.StringToken:
		return &Expr{Kind: KindLiteral, Lit: LitString, Value: unquote(string(v.Data))}
	case js.TrueToken:
		return &Expr{Kind: KindLiteral, Lit: LitBool, Value: "true"}
	case js.FalseToken:
		return &Expr{Kind: KindLiteral, Lit: LitBool, Value: "false"}
	case js.NullToken:
		return &Expr{Kind: KindLiteral, Lit: LitNull, Value: "null"}
	default:
		// every remaining literal token is numeric in one base or another
		return &Expr{Kind: KindLiteral, Lit: LitNumber, Value: string(v.Data)}
	}
}

func convertArrow(v *js.ArrowFunc) *Expr {
	e := &Expr{Kind: KindArrow}

	if len(v.Params.List) != 1 || v.Params.Rest != nil {
		return &Expr{Kind: KindRaw}
	}
	switch b := v.Params.List[0].Binding.(type) {
	case *js.Var:
		e.Param = string(b.Data)
	case *js.BindingObject:
		for _, item := range b.List {
			bv, ok := item.Value.Binding.(*js.Var)
			if !ok {
				return &Expr{Kind: KindRaw}
			}
			e.Destructured = append(e.Destructured, string(bv.Data))
		}
	default:
		return &Expr{Kind: KindRaw}
	}

	// expression-bodied arrows parse as a single return statement
	if len(v.Body.List) != 1 {
		return &Expr{Kind: KindRaw}
	}
	ret, ok := v.Body.List[0].(*js.ReturnStmt)
	if !ok || ret.Value == nil {
		return &Expr{Kind: KindRaw}
	}
	e.Body = convert(ret.Value)
	return e
}

func binaryOp(tt js.TokenType) (string, bool) {
	switch tt {
	case js.AndToken:
		return "&&", true
	case js.OrToken:
		return "||", true
	case js.NullishToken:
		return "??", true
	case js.EqEqToken:
		return "==", true
	case js.EqEqEqToken:
		return "===", true
	case js.NotEqToken:
		return "!=", true
	case js.NotEqEqToken:
		return "!==", true
	default:
		return "", false
	}
}

func calleeName(e *Expr) string {
	switch e.Kind {
	case KindIdent:
		return e.Name
	case KindMember:
		if len(e.Path) > 0 {
			return e.Path[len(e.Path)-1]
		}
		return e.Base
	default:
		return ""
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '"', '\'', '`':
			if s[len(s)-1] == s[0] {
				return s[1 : len(s)-1]
			}
		}
	}
	return s
}
