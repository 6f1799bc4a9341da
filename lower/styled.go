package lower

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"destyle/common"
	"destyle/css"
	"destyle/shorthand"
)

// CompoundVariant links two props whose combination gates a style fragment.
// The emitter generates a nested ternary lookup across the three keys.
type CompoundVariant struct {
	OuterProp     string
	InnerProp     string
	OuterKey      string
	InnerTrueKey  string
	InnerFalseKey string
}

// StyleFnSpec describes a runtime style function parameterized by one prop.
type StyleFnSpec struct {
	ParamName string
	Fallback  string
	Property  string
}

// Location is a source position for a warning.
type Location struct {
	Line   int
	Column int
}

// Warning is a collected diagnostic. Warnings are data, never control flow.
type Warning struct {
	Severity common.Severity
	Category string
	Location *Location
	Context  map[string]string
}

// StyledDecl accumulates the lowered representation of one styled component.
// It is mutated by Apply calls in source order and read-only afterwards.
type StyledDecl struct {
	Name string

	// StyleObj values are either plain strings or conditional sub-maps
	// keyed by pseudo selector / media query with a "default" entry.
	StyleObj map[string]any

	VariantBuckets   map[string]map[string]string
	BucketOrder      []string
	VariantStyleKeys map[string]string
	CompoundVariants []CompoundVariant
	StyleFnSpecs     []StyleFnSpec
	Imports          []string
	Warnings         []Warning
	Bailed           bool

	log  *zap.Logger
	last *appliedVariant
}

// appliedVariant remembers the previous single-branch, single-property
// variant so an adjacent complementary decision can merge with it.
type appliedVariant struct {
	property string
	cond     *Cond
	bucket   string
}

func NewStyledDecl(name string, log *zap.Logger) *StyledDecl {
	if log == nil {
		log = zap.NewNop()
	}
	return &StyledDecl{
		Name:             name,
		StyleObj:         make(map[string]any),
		VariantBuckets:   make(map[string]map[string]string),
		VariantStyleKeys: make(map[string]string),
		log:              log.Named("assembler").With(zap.String("component", name)),
	}
}

// ApplyStatic folds a fully static declaration into the style object,
// expanding shorthands into their longhands.
func (s *StyledDecl) ApplyStatic(ctx css.DynamicContext, property, value string) {
	scope := scopeKey(ctx)
	if expanded := shorthand.Expand(property, value); expanded != nil {
		for p, v := range expanded {
			s.setStyle(p, v, scope)
		}
		return
	}
	s.setStyle(shorthand.CamelProperty(property), value, scope)
}

// Apply folds one lowering decision into the accumulated state. Calls come
// strictly in source order: later declarations for the same property win,
// and complementary-pair merging depends on this adjacency.
func (s *StyledDecl) Apply(ctx css.DynamicContext, d Decision) {
	switch d.Kind {
	case DecisionConvert:
		s.applyConvert(ctx, d)
	case DecisionVariant:
		s.last = nil
		if s.Bailed {
			return
		}
		s.mergeBucket(d.PropName, Suffix(Ident(d.PropName)), d.Style)
	case DecisionSplitVariants:
		if s.Bailed {
			s.last = nil
			return
		}
		s.applySplit(d)
	case DecisionSplitMultiPropVariants:
		s.last = nil
		if s.Bailed {
			return
		}
		s.applyCompound(d)
	case DecisionDynamicStyleFunction:
		s.last = nil
		if s.Bailed {
			return
		}
		s.StyleFnSpecs = append(s.StyleFnSpecs, StyleFnSpec{
			ParamName: d.ParamName,
			Fallback:  d.Fallback,
			Property:  shorthand.CamelProperty(d.OriginalProp),
		})
	case DecisionBail:
		s.last = nil
		s.bail(ctx, d)
	}
}

func (s *StyledDecl) applyConvert(ctx css.DynamicContext, d Decision) {
	s.last = nil
	if ctx.Property == "" {
		s.log.Debug("Dropping converted expression without a target property", zap.String("expr", d.Expr))
		return
	}
	s.Imports = append(s.Imports, d.Imports...)
	s.setStyle(shorthand.CamelProperty(ctx.Property), d.Expr, scopeKey(ctx))
}

func (s *StyledDecl) applySplit(d Decision) {
	single := len(d.Branches) == 1
	for _, br := range d.Branches {
		key, suffix := s.branchKey(br, len(d.Branches))

		if single && s.tryComplementaryMerge(br) {
			continue
		}

		s.mergeBucket(key, suffix, br.Style)

		if single && len(br.Style) == 1 && br.When != nil {
			for p := range br.Style {
				s.last = &appliedVariant{property: p, cond: br.When, bucket: key}
			}
		} else {
			s.last = nil
		}
	}
}

// branchKey picks the bucket key and style-key suffix for one branch. A
// meaningful name hint overrides derived naming for multi-branch decisions
// only; the generic hints never override.
func (s *StyledDecl) branchKey(br Branch, branchCount int) (key, suffix string) {
	if br.When == nil {
		return br.NameHint, capitalizeFirst(br.NameHint)
	}
	key = br.When.String()
	suffix = Suffix(br.When)
	if branchCount > 2 && meaningfulHint(br.NameHint) {
		suffix = capitalizeFirst(br.NameHint)
	}
	return key, suffix
}

func meaningfulHint(hint string) bool {
	switch hint {
	case "", "truthy", "falsy", "default", "match":
		return false
	}
	return true
}

// tryComplementaryMerge folds a branch whose condition exactly negates the
// immediately preceding single-property variant for the same property into
// that entry as a ternary value. Only adjacent pairs merge: anything in
// between would be reordered otherwise.
func (s *StyledDecl) tryComplementaryMerge(br Branch) bool {
	if s.last == nil || br.When == nil || len(br.Style) != 1 {
		return false
	}
	val, ok := br.Style[s.last.property]
	if !ok {
		return false
	}
	if !Complementary(s.last.cond, br.When) {
		return false
	}

	bucket := s.VariantBuckets[s.last.bucket]
	prev := bucket[s.last.property]
	bucket[s.last.property] = fmt.Sprintf("%s ? %q : %q", s.last.cond.String(), prev, val)
	s.log.Debug("Merged complementary conditions into ternary",
		zap.String("property", s.last.property), zap.String("condition", s.last.cond.String()))
	s.last = nil
	return true
}

func (s *StyledDecl) applyCompound(d Decision) {
	outerKey := s.mergeBucket(d.OuterProp, SuffixFromProp(d.OuterProp), d.OuterStyle)
	innerTrueKey := s.mergeBucket(d.InnerProp+"True", SuffixFromProp(d.InnerProp)+"True", d.InnerTrueStyle)
	innerFalseKey := s.mergeBucket(d.InnerProp+"False", SuffixFromProp(d.InnerProp)+"False", d.InnerFalseStyle)

	s.CompoundVariants = append(s.CompoundVariants, CompoundVariant{
		OuterProp:     d.OuterProp,
		InnerProp:     d.InnerProp,
		OuterKey:      outerKey,
		InnerTrueKey:  innerTrueKey,
		InnerFalseKey: innerFalseKey,
	})
}

// mergeBucket merges a style fragment into the bucket for the condition key,
// creating bucket and style key on first use. Returns the style key.
func (s *StyledDecl) mergeBucket(key, suffix string, style map[string]string) string {
	bucket, ok := s.VariantBuckets[key]
	if !ok {
		bucket = make(map[string]string)
		s.VariantBuckets[key] = bucket
		s.BucketOrder = append(s.BucketOrder, key)
	}
	for p, v := range style {
		bucket[p] = v
	}
	if _, ok := s.VariantStyleKeys[key]; !ok {
		s.VariantStyleKeys[key] = s.styleKey(suffix)
	}
	return s.VariantStyleKeys[key]
}

func (s *StyledDecl) styleKey(suffix string) string {
	base := s.Name
	if base == "" {
		base = "style"
	}
	return lowerFirst(base) + suffix
}

func (s *StyledDecl) bail(ctx css.DynamicContext, d Decision) {
	w := Warning{
		Severity: common.SeverityWarning,
		Category: d.Category,
		Context:  map[string]string{"reason": d.Reason},
	}
	if ctx.Property != "" {
		w.Context["property"] = ctx.Property
	}
	if ctx.Selector != "" && ctx.Selector != css.RootSelector {
		w.Context["selector"] = ctx.Selector
	}
	s.Warnings = append(s.Warnings, w)
	if !s.Bailed {
		s.log.Debug("Component bailed", zap.String("category", d.Category), zap.String("reason", d.Reason))
	}
	s.Bailed = true
}

// setStyle writes one property value, moving into a conditional sub-map when
// the declaration is scoped by a pseudo selector or at-rule. The sub-map is
// seeded with a "default" entry taken from the prior base value; once a
// sub-map exists the base value lives in that entry.
func (s *StyledDecl) setStyle(prop, value, scope string) {
	if scope == "" {
		if existing, ok := s.StyleObj[prop].(map[string]any); ok {
			existing["default"] = value
			return
		}
		s.StyleObj[prop] = value
		return
	}
	switch existing := s.StyleObj[prop].(type) {
	case map[string]any:
		existing[scope] = value
	case string:
		s.StyleObj[prop] = map[string]any{"default": existing, scope: value}
	default:
		s.StyleObj[prop] = map[string]any{"default": nil, scope: value}
	}
}

// scopeKey renders the pseudo/at-rule scope of a declaration, empty for the
// unscoped base.
func scopeKey(ctx css.DynamicContext) string {
	var parts []string
	parts = append(parts, ctx.AtRules...)
	if ctx.Selector != "" && ctx.Selector != css.RootSelector {
		parts = append(parts, strings.TrimPrefix(ctx.Selector, "&"))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
