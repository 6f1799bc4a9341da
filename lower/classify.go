package lower

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	tdcss "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"destyle/css"
	"destyle/jsexpr"
	"destyle/shorthand"
)

// Helper describes a recognized ternary-returning helper function: a module
// local like `const align = (v) => v ? "flex-start" : "flex-end"`.
type Helper struct {
	Truthy string
	Falsy  string
}

// Classifier decides the lowering strategy for each interpolation slot. The
// matcher chain is ordered by priority; the first matcher that applies wins.
type Classifier struct {
	log       *zap.Logger
	adapter   Boundary
	keyframes map[string]string
	helpers   map[string]Helper
}

func NewClassifier(adapter Boundary, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{
		log:       log.Named("classifier"),
		adapter:   adapter,
		keyframes: make(map[string]string),
		helpers:   make(map[string]Helper),
	}
}

// RegisterKeyframes maps a keyframes identifier found in the source file to
// the name its lowered animation is emitted under.
func (c *Classifier) RegisterKeyframes(ident, generated string) {
	c.keyframes[ident] = generated
}

// RegisterHelper registers a ternary-returning helper by name.
func (c *Classifier) RegisterHelper(name string, h Helper) {
	c.helpers[name] = h
}

type matchInput struct {
	slot *css.Slot
	ctx  css.DynamicContext
	body *jsexpr.Expr
	bind jsexpr.ParamBinding
}

// Classify returns the lowering decision for one slot in its CSS placement
// context. It never fails: expressions nothing matches produce a Bail.
func (c *Classifier) Classify(slot *css.Slot, ctx css.DynamicContext) Decision {
	if slot.Expr == nil {
		return BailCategory(CategoryUnsupported, "interpolation is not a parseable expression: "+slot.Src)
	}

	body, bind := slot.Expr.Unwrap()
	in := matchInput{slot: slot, ctx: ctx, body: body, bind: bind}

	matchers := []func(matchInput) (Decision, bool){
		c.matchFullValueStatic,
		c.matchKeyframesRef,
		c.matchThemePath,
		c.matchTernary,
		c.matchLogicalAnd,
		c.matchLogicalOr,
		c.matchPropAccess,
		c.matchHelperCall,
		c.matchAnyCall,
		c.matchSelectorComponent,
	}
	for _, m := range matchers {
		if d, ok := m(in); ok {
			return d
		}
	}
	return BailCategory(CategoryUnsupported, "unsupported interpolation: "+slot.Src)
}

// 1. A literal or module-scope variable reference filling an entire value.
func (c *Classifier) matchFullValueStatic(in matchInput) (Decision, bool) {
	if in.ctx.Kind != css.ContextValue || !in.ctx.IsFullValue {
		return Decision{}, false
	}
	if in.body.IsLiteral() {
		return Convert(in.body.LiteralText()), true
	}
	if in.body.Kind == jsexpr.KindIdent {
		if _, isKeyframes := c.keyframes[in.body.Name]; !isKeyframes {
			return Convert(in.body.Name), true
		}
	}
	return Decision{}, false
}

// 2. A reference to a keyframes declaration: converted to the generated
// animation name, as an identifier reference rather than an inlined value.
func (c *Classifier) matchKeyframesRef(in matchInput) (Decision, bool) {
	if in.body.Kind != jsexpr.KindIdent {
		return Decision{}, false
	}
	generated, ok := c.keyframes[in.body.Name]
	if !ok {
		return Decision{}, false
	}
	return Convert(generated), true
}

// 3. Theme-path access resolved through the adapter. Declined resolutions
// fall through so the generic prop-access matcher can still fire.
func (c *Classifier) matchThemePath(in matchInput) (Decision, bool) {
	path, ok := in.bind.PropAccess(in.body)
	if !ok || len(path) < 2 || path[0] != "theme" {
		return Decision{}, false
	}
	res, ok := c.adapter.ResolveValue(Request{Kind: ResolveTheme, Path: path[1:]})
	if !ok {
		return Decision{}, false
	}
	if _, err := jsexpr.Parse(res.Expr); err != nil {
		return BailCategory(CategoryBadResolved, "adapter returned an unparseable expression: "+res.Expr), true
	}
	return Convert(res.Expr, res.Imports...), true
}

// 4. Ternary conditionals: boolean-prop split, equality split, nested
// compound, or deferred capture when the condition has no recognized shape.
func (c *Classifier) matchTernary(in matchInput) (Decision, bool) {
	if in.body.Kind != jsexpr.KindCond || in.ctx.Property == "" {
		return Decision{}, false
	}
	prop := shorthand.CamelProperty(in.ctx.Property)

	// nested ternary in the else arm: compound variant on two props
	if d, ok := c.matchCompound(in, prop); ok {
		return d, true
	}

	cond, condOK := c.condFromExpr(in.body.Cond, in.bind)
	thenVal, thenOK := c.branchValue(in.body.Then, in.bind)
	elseVal, elseOK := c.branchValue(in.body.Else, in.bind)

	if condOK && thenOK && elseOK {
		if mixed := mixedBranchValues(prop, thenVal, elseVal); mixed {
			return BailCategory(CategoryMixedBranch,
				"conditional branches resolve to incompatible values for "+in.ctx.Property), true
		}
		if cond.Kind == CondEq {
			return SplitVariants(
				Branch{NameHint: "default", When: cond.Negate(), Style: map[string]string{prop: elseVal}},
				Branch{NameHint: "match", When: cond, Style: map[string]string{prop: thenVal}},
			), true
		}
		return SplitVariants(
			Branch{NameHint: "truthy", When: cond, Style: map[string]string{prop: thenVal}},
			Branch{NameHint: "falsy", When: cond.Negate(), Style: map[string]string{prop: elseVal}},
		), true
	}

	// unrecognized shape: capture both arms with empty conditions and let
	// the assembler decide naming
	return SplitVariants(
		Branch{NameHint: "truthy", Style: map[string]string{prop: in.body.Then.Source()}},
		Branch{NameHint: "falsy", Style: map[string]string{prop: in.body.Else.Source()}},
	), true
}

func (c *Classifier) matchCompound(in matchInput, prop string) (Decision, bool) {
	inner := in.body.Else
	if inner == nil || inner.Kind != jsexpr.KindCond {
		return Decision{}, false
	}
	outerPath, ok := in.bind.PropAccess(in.body.Cond)
	if !ok {
		return Decision{}, false
	}
	innerPath, ok := in.bind.PropAccess(inner.Cond)
	if !ok {
		return Decision{}, false
	}
	outerVal, ok := in.body.Then.IsString()
	if !ok {
		return Decision{}, false
	}
	innerTrue, ok := inner.Then.IsString()
	if !ok {
		return Decision{}, false
	}
	innerFalse, ok := inner.Else.IsString()
	if !ok {
		return Decision{}, false
	}
	return SplitMultiPropVariants(
		strings.Join(outerPath, "."), strings.Join(innerPath, "."),
		map[string]string{prop: outerVal},
		map[string]string{prop: innerTrue},
		map[string]string{prop: innerFalse},
	), true
}

// 5. `prop && "css text"`: the text must be a flat declaration block. Any
// other content is a hard bail, never a silent drop.
func (c *Classifier) matchLogicalAnd(in matchInput) (Decision, bool) {
	if in.body.Kind != jsexpr.KindBinary || in.body.Op != "&&" {
		return Decision{}, false
	}
	cond, ok := c.condFromExpr(in.body.X, in.bind)
	if !ok {
		return Decision{}, false
	}
	text, ok := in.body.Y.IsString()
	if !ok {
		return Decision{}, false
	}
	block, ok := parseFlatBlock(text)
	if !ok {
		return BailCategory(CategoryDynamicCSS,
			"conditional CSS block is not a flat declaration list: "+truncate(text, 80)), true
	}
	return SplitVariants(Branch{NameHint: "truthy", When: cond, Style: block}), true
}

// 6. `prop || fallback`: a runtime style function with a default.
func (c *Classifier) matchLogicalOr(in matchInput) (Decision, bool) {
	if in.ctx.Kind != css.ContextValue {
		return Decision{}, false
	}
	if in.body.Kind != jsexpr.KindBinary || (in.body.Op != "||" && in.body.Op != "??") {
		return Decision{}, false
	}
	path, ok := in.bind.PropAccess(in.body.X)
	if !ok || !in.body.Y.IsLiteral() {
		return Decision{}, false
	}
	return DynamicStyleFunction(strings.Join(path, "."), in.body.Y.LiteralText(), in.ctx.Property), true
}

// 7. Generic prop access, after the theme matcher is exhausted.
func (c *Classifier) matchPropAccess(in matchInput) (Decision, bool) {
	if in.ctx.Kind != css.ContextValue {
		return Decision{}, false
	}
	path, ok := in.bind.PropAccess(in.body)
	if !ok {
		return Decision{}, false
	}
	return DynamicStyleFunction(strings.Join(path, "."), "", in.ctx.Property), true
}

// 8. A call to a recognized ternary-returning helper with one prop-access
// argument: the helper's own branches become the variants, attributed to the
// prop that was passed in.
func (c *Classifier) matchHelperCall(in matchInput) (Decision, bool) {
	if in.body.Kind != jsexpr.KindCall || len(in.body.Args) != 1 {
		return Decision{}, false
	}
	h, ok := c.helpers[in.body.Callee]
	if !ok {
		return Decision{}, false
	}
	path, ok := in.bind.PropAccess(in.body.Args[0])
	if !ok {
		return Decision{}, false
	}
	prop := strings.Join(path, ".")
	target := shorthand.CamelProperty(in.ctx.Property)
	if target == "" {
		return Decision{}, false
	}
	return SplitVariants(
		Branch{NameHint: "truthy", When: Ident(prop), Style: map[string]string{target: h.Truthy}},
		Branch{NameHint: "falsy", When: Not(Ident(prop)), Style: map[string]string{target: h.Falsy}},
	), true
}

// 9. Any other call, or a css-tagged template: pass the source through. The
// adapter gets first refusal on calls it knows how to rewrite.
func (c *Classifier) matchAnyCall(in matchInput) (Decision, bool) {
	switch in.body.Kind {
	case jsexpr.KindCall:
		args := make([]string, len(in.body.Args))
		for i, a := range in.body.Args {
			args[i] = a.Source()
		}
		res, ok := c.adapter.ResolveCall(CallRequest{
			CalleeName:   in.body.Callee,
			CalleeSource: in.body.CalleeSrc,
			Args:         args,
		})
		if ok {
			if _, err := jsexpr.Parse(res.Expr); err != nil {
				return BailCategory(CategoryBadResolved, "adapter returned an unparseable expression: "+res.Expr), true
			}
			return Convert(res.Expr, res.Imports...), true
		}
		return Convert(in.body.Source()), true
	case jsexpr.KindTemplate:
		return Convert(in.slot.Src), true
	}
	return Decision{}, false
}

// 10. A bare component reference in selector position. Rewriting those needs
// cross-file analysis, which is out of reach here.
func (c *Classifier) matchSelectorComponent(in matchInput) (Decision, bool) {
	if in.ctx.Kind != css.ContextSelector {
		return Decision{}, false
	}
	if in.body.Kind != jsexpr.KindIdent && in.body.Kind != jsexpr.KindMember {
		return Decision{}, false
	}
	return BailCategory(CategorySelectorComp,
		"component used as selector: "+in.body.Source()), true
}

// condFromExpr builds a structured condition from a condition-shaped
// expression. Conditions are built here exactly once and never re-parsed.
func (c *Classifier) condFromExpr(e *jsexpr.Expr, bind jsexpr.ParamBinding) (*Cond, bool) {
	if e == nil {
		return nil, false
	}
	if path, ok := bind.PropAccess(e); ok {
		return Ident(strings.Join(path, ".")), true
	}
	switch e.Kind {
	case jsexpr.KindNot:
		inner, ok := c.condFromExpr(e.X, bind)
		if !ok {
			return nil, false
		}
		return Not(inner), true
	case jsexpr.KindBinary:
		switch e.Op {
		case "==", "===", "!=", "!==":
			path, ok := bind.PropAccess(e.X)
			if !ok {
				return nil, false
			}
			rhs, nameable := comparableRhs(e.Y)
			return Eq(strings.Join(path, "."), e.Op, rhs, nameable), true
		case "&&", "||":
			x, ok := c.condFromExpr(e.X, bind)
			if !ok {
				return nil, false
			}
			y, ok := c.condFromExpr(e.Y, bind)
			if !ok {
				return nil, false
			}
			if e.Op == "&&" {
				return And(x, y), true
			}
			return Or(x, y), true
		}
	}
	return nil, false
}

// comparableRhs renders the right side of an equality. Literals and
// identifier paths (enum constants) are nameable; anything else still
// renders but collapses to a generic suffix.
func comparableRhs(e *jsexpr.Expr) (rhs string, nameable bool) {
	if e.IsLiteral() {
		return e.Source(), true
	}
	if path := e.MemberPath(); path != nil {
		return strings.Join(path, "."), true
	}
	return e.Source(), false
}

// branchValue resolves one ternary arm to static CSS value text: a literal
// directly, a theme path through the adapter.
func (c *Classifier) branchValue(e *jsexpr.Expr, bind jsexpr.ParamBinding) (string, bool) {
	if e == nil {
		return "", false
	}
	if e.IsLiteral() {
		return e.LiteralText(), true
	}
	if path, ok := bind.PropAccess(e); ok && len(path) >= 2 && path[0] == "theme" {
		if res, ok := c.adapter.ResolveValue(Request{Kind: ResolveTheme, Path: path[1:]}); ok {
			return res.Expr, true
		}
	}
	return "", false
}

// mixedBranchValues flags conditional backgrounds whose arms resolve to
// incompatible kinds of value, like a gradient against a solid color.
func mixedBranchValues(prop, a, b string) bool {
	if !strings.HasPrefix(prop, "background") {
		return false
	}
	return isImageValue(a) != isImageValue(b)
}

func isImageValue(v string) bool {
	low := strings.ToLower(v)
	return strings.Contains(low, "gradient") || strings.Contains(low, "url(")
}

// parseFlatBlock parses conditional-block CSS text, accepting only flat
// `prop: value;` pairs. Nested rules or at-rules make it fail.
func parseFlatBlock(text string) (map[string]string, bool) {
	if strings.ContainsAny(text, "{}") {
		return nil, false
	}
	p := tdcss.NewParser(parse.NewInput(strings.NewReader(text)), true)
	out := make(map[string]string)
	for {
		gt, _, data := p.Next()
		switch gt {
		case tdcss.ErrorGrammar:
			if p.Err() == io.EOF {
				return out, true
			}
			return nil, false
		case tdcss.DeclarationGrammar, tdcss.CustomPropertyGrammar:
			var sb strings.Builder
			for _, val := range p.Values() {
				sb.Write(val.Data)
			}
			out[shorthand.CamelProperty(string(data))] = strings.TrimSpace(sb.String())
		case tdcss.CommentGrammar:
		default:
			return nil, false
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
