package migrate

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"destyle/css"
	"destyle/lower"
)

// FileResult is the lowering outcome for one source file.
type FileResult struct {
	Path       string
	Components []*lower.StyledDecl
	Keyframes  []Keyframes
	Warnings   []lower.Warning
	// Bailed counts components left unmigrated.
	Bailed int
}

// Keyframes is one lowered keyframes declaration: its binding name and the
// rules of its template, kept verbatim for the emitter.
type Keyframes struct {
	Name  string
	Ident string
	Rules []css.Rule
}

// Pipeline lowers the occurrences of one file. It holds no cross-file state;
// each file gets its own instance.
type Pipeline struct {
	classifier *lower.Classifier
	log        *zap.Logger
}

func NewPipeline(adapter lower.Boundary, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		classifier: lower.NewClassifier(adapter, log),
		log:        log.Named("pipeline"),
	}
}

// Lower processes a scanned file in source order: keyframes and helpers are
// registered first so later components can reference them, then each styled
// component is lowered independently.
func (p *Pipeline) Lower(path string, scan *ScanResult) *FileResult {
	res := &FileResult{Path: path}

	for name, h := range scan.Helpers {
		p.classifier.RegisterHelper(name, h)
	}
	for _, occ := range scan.Occurrences {
		if occ.Kind != OccurrenceKeyframes {
			continue
		}
		tpl := css.ParseTemplate(occ.Body, p.log)
		kf := Keyframes{
			Name:  keyframesName(occ.Name),
			Ident: occ.Name,
			Rules: css.NewBuilder(p.log).Build(tpl),
		}
		res.Keyframes = append(res.Keyframes, kf)
		p.classifier.RegisterKeyframes(occ.Name, kf.Name)
	}

	for _, occ := range scan.Occurrences {
		switch occ.Kind {
		case OccurrenceStyledTag, OccurrenceStyledComponent:
			decl := p.lowerComponent(occ)
			res.Components = append(res.Components, decl)
			res.Warnings = append(res.Warnings, decl.Warnings...)
			if decl.Bailed {
				res.Bailed++
			}
		}
	}
	return res
}

// lowerComponent runs one styled component through the IR builder, the
// classifier and the assembler, strictly in source order.
func (p *Pipeline) lowerComponent(occ Occurrence) *lower.StyledDecl {
	decl := lower.NewStyledDecl(occ.Name, p.log)

	tpl := css.ParseTemplate(occ.Body, p.log)
	rules := css.NewBuilder(p.log).Build(tpl)

	for _, rule := range rules {
		p.applySelectorSlots(decl, tpl, rule)
		for _, d := range rule.Declarations {
			p.applyDeclaration(decl, tpl, rule, d)
		}
	}
	return decl
}

func (p *Pipeline) applySelectorSlots(decl *lower.StyledDecl, tpl *css.Template, rule css.Rule) {
	for _, slot := range tpl.SlotsIn(rule.Selector) {
		ctx := css.DynamicContext{
			Kind:     css.ContextSelector,
			Selector: rule.Selector,
			AtRules:  rule.AtRules,
		}
		decl.Apply(ctx, p.classifier.Classify(slot, ctx))
	}
	for _, at := range rule.AtRules {
		for _, slot := range tpl.SlotsIn(at) {
			ctx := css.DynamicContext{
				Kind:     css.ContextAtRule,
				Selector: rule.Selector,
				AtRules:  rule.AtRules,
			}
			decl.Apply(ctx, p.classifier.Classify(slot, ctx))
		}
	}
}

func (p *Pipeline) applyDeclaration(decl *lower.StyledDecl, tpl *css.Template, rule css.Rule, d css.Declaration) {
	ctx := css.DynamicContext{
		Kind:        css.ContextValue,
		Property:    d.Property,
		Selector:    rule.Selector,
		AtRules:     rule.AtRules,
		IsFullValue: true,
	}

	if d.Value.IsStatic() {
		if d.IsStandaloneBlock() {
			return
		}
		decl.ApplyStatic(ctx, d.Property, d.Value.Static())
		return
	}

	slot, single := d.Value.SingleSlot()
	if single {
		decl.Apply(ctx, p.classifier.Classify(slot, ctx))
		return
	}

	// mixed static/slot value: classify each slot as a partial value
	ctx.IsFullValue = false
	var decisions []lower.Decision
	allConvert := true
	for _, part := range d.Value.Parts {
		if part.Slot == nil {
			continue
		}
		dec := p.classifier.Classify(part.Slot, ctx)
		decisions = append(decisions, dec)
		if dec.Kind != lower.DecisionConvert {
			allConvert = false
		}
	}

	// when every slot resolves inline the expressions are spliced back into
	// their positions, keeping the static text around them
	if allConvert {
		full := ctx
		full.IsFullValue = true
		decl.Apply(full, spliceValue(d.Value, decisions))
		return
	}
	i := 0
	for _, part := range d.Value.Parts {
		if part.Slot == nil {
			continue
		}
		decl.Apply(ctx, decisions[i])
		i++
	}
}

// spliceValue reassembles a mixed value from its static parts and the
// resolved slot expressions. When every expression is a plain string literal
// the parts fold into one quoted string, otherwise the value becomes a
// template literal interpolating the expressions.
func spliceValue(v css.Value, decisions []lower.Decision) lower.Decision {
	var imports []string
	literal := true
	for _, dec := range decisions {
		imports = append(imports, dec.Imports...)
		if _, ok := stringLiteral(dec.Expr); !ok {
			literal = false
		}
	}

	var b strings.Builder
	i := 0
	for _, part := range v.Parts {
		if part.Slot == nil {
			b.WriteString(part.Text)
			continue
		}
		expr := decisions[i].Expr
		i++
		if s, ok := stringLiteral(expr); ok {
			b.WriteString(s)
		} else {
			b.WriteString("${")
			b.WriteString(expr)
			b.WriteString("}")
		}
	}
	if literal {
		return lower.Convert(strconv.Quote(b.String()), imports...)
	}
	return lower.Convert("`"+b.String()+"`", imports...)
}

// stringLiteral unwraps a resolved expression that is a plain quoted string.
func stringLiteral(expr string) (string, bool) {
	if len(expr) < 2 {
		return "", false
	}
	q := expr[0]
	if (q != '"' && q != '\'') || expr[len(expr)-1] != q {
		return "", false
	}
	inner := expr[1 : len(expr)-1]
	if strings.ContainsRune(inner, rune(q)) || strings.ContainsRune(inner, '\\') {
		return "", false
	}
	return inner, true
}

// keyframesName derives the emitted animation name from the binding name.
func keyframesName(ident string) string {
	if ident == "" {
		return "animation"
	}
	return strings.ToLower(ident[:1]) + ident[1:] + "Animation"
}
