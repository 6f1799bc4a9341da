package lower

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"destyle/css"
)

type fakeAdapter struct {
	values map[string]string // dotted theme path -> expression
	calls  map[string]string // callee name -> expression
}

func (f *fakeAdapter) ResolveValue(req Request) (*Resolution, bool) {
	if req.Kind != ResolveTheme {
		return nil, false
	}
	if v, ok := f.values[strings.Join(req.Path, ".")]; ok {
		return &Resolution{Expr: v}, true
	}
	return nil, false
}

func (f *fakeAdapter) ResolveCall(req CallRequest) (*Resolution, bool) {
	if v, ok := f.calls[req.CalleeName]; ok {
		return &Resolution{Expr: v}, true
	}
	return nil, false
}

func classifierFor(t *testing.T, adapter Boundary) *Classifier {
	t.Helper()
	if adapter == nil {
		adapter = &fakeAdapter{}
	}
	return NewClassifier(adapter, zap.NewNop())
}

// slotFor parses a one-interpolation template and returns the slot.
func slotFor(t *testing.T, src string) *css.Slot {
	t.Helper()
	tpl := css.ParseTemplate("${"+src+"}", zap.NewNop())
	if len(tpl.Slots) != 1 {
		t.Fatalf("slots = %d, want 1", len(tpl.Slots))
	}
	return tpl.SlotByID(0)
}

func valueCtx(property string) css.DynamicContext {
	return css.DynamicContext{
		Kind:        css.ContextValue,
		Property:    property,
		Selector:    css.RootSelector,
		IsFullValue: true,
	}
}

func TestClassify_FullValueLiteral(t *testing.T) {
	c := classifierFor(t, nil)
	d := c.Classify(slotFor(t, `"blue"`), valueCtx("color"))
	if d.Kind != DecisionConvert || d.Expr != "blue" {
		t.Errorf("decision = %+v", d)
	}
}

func TestClassify_FullValueIdentifier(t *testing.T) {
	c := classifierFor(t, nil)
	d := c.Classify(slotFor(t, "accentColor"), valueCtx("color"))
	if d.Kind != DecisionConvert || d.Expr != "accentColor" {
		t.Errorf("decision = %+v", d)
	}
}

func TestClassify_KeyframesReference(t *testing.T) {
	c := classifierFor(t, nil)
	c.RegisterKeyframes("spin", "spinKeyframes")
	d := c.Classify(slotFor(t, "spin"), valueCtx("animation-name"))
	if d.Kind != DecisionConvert || d.Expr != "spinKeyframes" {
		t.Errorf("keyframes reference not converted: %+v", d)
	}
}

func TestClassify_ThemePathWinsOverPropAccess(t *testing.T) {
	c := classifierFor(t, &fakeAdapter{values: map[string]string{
		"colors.primary": "vars.colors.primary",
	}})
	d := c.Classify(slotFor(t, "props => props.theme.colors.primary"), valueCtx("color"))
	if d.Kind != DecisionConvert || d.Expr != "vars.colors.primary" {
		t.Errorf("theme matcher should win: %+v", d)
	}
}

func TestClassify_ThemePathDeclinedFallsThrough(t *testing.T) {
	c := classifierFor(t, &fakeAdapter{})
	d := c.Classify(slotFor(t, "props => props.theme.colors.primary"), valueCtx("color"))
	if d.Kind != DecisionDynamicStyleFunction {
		t.Fatalf("declined theme path should reach prop access: %+v", d)
	}
	if d.ParamName != "theme.colors.primary" {
		t.Errorf("param = %q", d.ParamName)
	}
}

func TestClassify_ThemePathDestructured(t *testing.T) {
	c := classifierFor(t, &fakeAdapter{values: map[string]string{
		"spacing.md": "vars.spacing.md",
	}})
	d := c.Classify(slotFor(t, "({theme}) => theme.spacing.md"), valueCtx("padding"))
	if d.Kind != DecisionConvert || d.Expr != "vars.spacing.md" {
		t.Errorf("decision = %+v", d)
	}
}

func TestClassify_BooleanTernary(t *testing.T) {
	c := classifierFor(t, nil)
	d := c.Classify(slotFor(t, `props => props.$primary ? "blue" : "gray"`), valueCtx("color"))
	if d.Kind != DecisionSplitVariants || len(d.Branches) != 2 {
		t.Fatalf("decision = %+v", d)
	}
	truthy, falsy := d.Branches[0], d.Branches[1]
	if truthy.When.String() != "$primary" || truthy.Style["color"] != "blue" {
		t.Errorf("truthy branch = %+v", truthy)
	}
	if falsy.When.String() != "!$primary" || falsy.Style["color"] != "gray" {
		t.Errorf("falsy branch = %+v", falsy)
	}
}

func TestClassify_EqualityTernary(t *testing.T) {
	c := classifierFor(t, nil)
	d := c.Classify(slotFor(t, `p => p.$size === "large" ? "16px" : "12px"`), valueCtx("font-size"))
	if d.Kind != DecisionSplitVariants || len(d.Branches) != 2 {
		t.Fatalf("decision = %+v", d)
	}
	// negated condition first, named default; positive second, named match
	def, match := d.Branches[0], d.Branches[1]
	if def.NameHint != "default" || def.When.String() != `$size !== "large"` {
		t.Errorf("default branch = %+v", def)
	}
	if def.Style["fontSize"] != "12px" {
		t.Errorf("default style = %v", def.Style)
	}
	if match.NameHint != "match" || match.When.String() != `$size === "large"` {
		t.Errorf("match branch = %+v", match)
	}
	if match.Style["fontSize"] != "16px" {
		t.Errorf("match style = %v", match.Style)
	}
}

func TestClassify_UnrecognizedTernaryDefersNaming(t *testing.T) {
	c := classifierFor(t, nil)
	d := c.Classify(slotFor(t, `p => check(p) ? "1px" : "2px"`), valueCtx("border-width"))
	if d.Kind != DecisionSplitVariants || len(d.Branches) != 2 {
		t.Fatalf("decision = %+v", d)
	}
	for _, br := range d.Branches {
		if br.When != nil {
			t.Errorf("deferred branch should carry no condition: %+v", br)
		}
	}
}

func TestClassify_NestedTernaryCompound(t *testing.T) {
	c := classifierFor(t, nil)
	d := c.Classify(slotFor(t, `p => p.$large ? "24px" : p.$medium ? "16px" : "12px"`), valueCtx("font-size"))
	if d.Kind != DecisionSplitMultiPropVariants {
		t.Fatalf("decision = %+v", d)
	}
	if d.OuterProp != "$large" || d.InnerProp != "$medium" {
		t.Errorf("props = %q / %q", d.OuterProp, d.InnerProp)
	}
	if d.OuterStyle["fontSize"] != "24px" || d.InnerTrueStyle["fontSize"] != "16px" || d.InnerFalseStyle["fontSize"] != "12px" {
		t.Errorf("styles = %v / %v / %v", d.OuterStyle, d.InnerTrueStyle, d.InnerFalseStyle)
	}
}

func TestClassify_LogicalAndBlock(t *testing.T) {
	c := classifierFor(t, nil)
	slot := slotFor(t, `(props) => props.$upsideDown && "transform: rotate(180deg);"`)
	d := c.Classify(slot, css.DynamicContext{Kind: css.ContextValue, Selector: css.RootSelector})
	if d.Kind != DecisionSplitVariants || len(d.Branches) != 1 {
		t.Fatalf("decision = %+v", d)
	}
	br := d.Branches[0]
	if br.NameHint != "truthy" || br.When.String() != "$upsideDown" {
		t.Errorf("branch = %+v", br)
	}
	if br.Style["transform"] != "rotate(180deg)" {
		t.Errorf("style = %v", br.Style)
	}
}

func TestClassify_LogicalAndTemplateBlock(t *testing.T) {
	c := classifierFor(t, nil)
	slot := slotFor(t, "(props) => props.$upsideDown && `transform: rotate(180deg);`")
	d := c.Classify(slot, css.DynamicContext{Kind: css.ContextValue, Selector: css.RootSelector})
	if d.Kind != DecisionSplitVariants || len(d.Branches) != 1 {
		t.Fatalf("decision = %+v", d)
	}
	if d.Branches[0].Style["transform"] != "rotate(180deg)" {
		t.Errorf("style = %v", d.Branches[0].Style)
	}
}

func TestClassify_LogicalAndNonFlatBails(t *testing.T) {
	c := classifierFor(t, nil)
	slot := slotFor(t, `p => p.$fancy && "&:hover { color: red; }"`)
	d := c.Classify(slot, css.DynamicContext{Kind: css.ContextValue, Selector: css.RootSelector})
	if d.Kind != DecisionBail {
		t.Fatalf("non-flat block must bail, got %+v", d)
	}
	if d.Category != CategoryDynamicCSS {
		t.Errorf("category = %q", d.Category)
	}
}

func TestClassify_LogicalOrFallback(t *testing.T) {
	c := classifierFor(t, nil)
	d := c.Classify(slotFor(t, `p => p.$width || "100%"`), valueCtx("width"))
	if d.Kind != DecisionDynamicStyleFunction {
		t.Fatalf("decision = %+v", d)
	}
	if d.ParamName != "$width" || d.Fallback != "100%" || d.OriginalProp != "width" {
		t.Errorf("spec = %+v", d)
	}
}

func TestClassify_PropAccess(t *testing.T) {
	c := classifierFor(t, nil)
	d := c.Classify(slotFor(t, "p => p.$color"), valueCtx("color"))
	if d.Kind != DecisionDynamicStyleFunction {
		t.Fatalf("decision = %+v", d)
	}
	if d.ParamName != "$color" || d.Fallback != "" {
		t.Errorf("spec = %+v", d)
	}
}

func TestClassify_HelperCall(t *testing.T) {
	c := classifierFor(t, nil)
	c.RegisterHelper("align", Helper{Truthy: "flex-start", Falsy: "flex-end"})
	d := c.Classify(slotFor(t, "p => align(p.$left)"), valueCtx("justify-content"))
	if d.Kind != DecisionSplitVariants || len(d.Branches) != 2 {
		t.Fatalf("decision = %+v", d)
	}
	if d.Branches[0].When.String() != "$left" || d.Branches[0].Style["justifyContent"] != "flex-start" {
		t.Errorf("truthy branch = %+v", d.Branches[0])
	}
	if d.Branches[1].When.String() != "!$left" || d.Branches[1].Style["justifyContent"] != "flex-end" {
		t.Errorf("falsy branch = %+v", d.Branches[1])
	}
}

func TestClassify_UnknownCallPassesThrough(t *testing.T) {
	c := classifierFor(t, nil)
	d := c.Classify(slotFor(t, `p => darken(0.2, p.$base)`), valueCtx("background-color"))
	if d.Kind != DecisionConvert {
		t.Fatalf("decision = %+v", d)
	}
	if !strings.Contains(d.Expr, "darken") {
		t.Errorf("expr = %q", d.Expr)
	}
}

func TestClassify_ResolvedCall(t *testing.T) {
	c := classifierFor(t, &fakeAdapter{calls: map[string]string{
		"rgba": `"rgba(0, 0, 0, 0.5)"`,
	}})
	d := c.Classify(slotFor(t, `rgba(0, 0, 0, 0.5)`), css.DynamicContext{Kind: css.ContextValue, Property: "color"})
	if d.Kind != DecisionConvert || !strings.Contains(d.Expr, "rgba") {
		t.Errorf("decision = %+v", d)
	}
}

func TestClassify_SelectorComponentBails(t *testing.T) {
	c := classifierFor(t, nil)
	d := c.Classify(slotFor(t, "Icon"), css.DynamicContext{Kind: css.ContextSelector, Selector: "__destyle_expr_0__"})
	if d.Kind != DecisionBail || d.Category != CategorySelectorComp {
		t.Errorf("decision = %+v", d)
	}
}

func TestClassify_MixedBackgroundBranchesBail(t *testing.T) {
	c := classifierFor(t, nil)
	slot := slotFor(t, `p => p.$hero ? "linear-gradient(red, blue)" : "white"`)
	d := c.Classify(slot, valueCtx("background"))
	if d.Kind != DecisionBail || d.Category != CategoryMixedBranch {
		t.Errorf("decision = %+v", d)
	}
}

func TestClassify_UnparseableExpressionBails(t *testing.T) {
	c := classifierFor(t, nil)
	slot := &css.Slot{ID: 0, Placeholder: "__destyle_expr_0__", Src: "p => {"}
	d := c.Classify(slot, valueCtx("color"))
	if d.Kind != DecisionBail {
		t.Errorf("decision = %+v", d)
	}
}
