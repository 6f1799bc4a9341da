package lower

// DecisionKind discriminates the lowering strategies.
type DecisionKind int

const (
	// DecisionConvert replaces the slot with a resolved inline expression.
	DecisionConvert DecisionKind = iota
	// DecisionVariant contributes a single boolean-gated style fragment.
	DecisionVariant
	// DecisionSplitVariants contributes one style fragment per branch of a
	// conditional.
	DecisionSplitVariants
	// DecisionSplitMultiPropVariants contributes a compound variant gated on
	// two independent props.
	DecisionSplitMultiPropVariants
	// DecisionDynamicStyleFunction defers the value to a runtime style
	// function parameterized by one prop.
	DecisionDynamicStyleFunction
	// DecisionBail refuses to lower the slot and produces a warning.
	DecisionBail
)

// Branch is one arm of a SplitVariants decision. When is nil for deferred
// branches whose naming the assembler decides.
type Branch struct {
	NameHint string
	When     *Cond
	Style    map[string]string
}

// Decision is the classifier's verdict for one slot. Exactly one variant is
// populated, selected by Kind.
type Decision struct {
	Kind DecisionKind

	// DecisionConvert
	Expr    string
	Imports []string

	// DecisionVariant
	PropName string
	Style    map[string]string

	// DecisionSplitVariants
	Branches []Branch

	// DecisionSplitMultiPropVariants
	OuterProp       string
	InnerProp       string
	OuterStyle      map[string]string
	InnerTrueStyle  map[string]string
	InnerFalseStyle map[string]string

	// DecisionDynamicStyleFunction
	ParamName    string
	Fallback     string
	OriginalProp string

	// DecisionBail
	Reason   string
	Category string
}

func Convert(expr string, imports ...string) Decision {
	return Decision{Kind: DecisionConvert, Expr: expr, Imports: imports}
}

func Variant(propName string, style map[string]string) Decision {
	return Decision{Kind: DecisionVariant, PropName: propName, Style: style}
}

func SplitVariants(branches ...Branch) Decision {
	return Decision{Kind: DecisionSplitVariants, Branches: branches}
}

func SplitMultiPropVariants(outer, inner string, outerStyle, innerTrue, innerFalse map[string]string) Decision {
	return Decision{
		Kind:            DecisionSplitMultiPropVariants,
		OuterProp:       outer,
		InnerProp:       inner,
		OuterStyle:      outerStyle,
		InnerTrueStyle:  innerTrue,
		InnerFalseStyle: innerFalse,
	}
}

func DynamicStyleFunction(param, fallback, originalProp string) Decision {
	return Decision{Kind: DecisionDynamicStyleFunction, ParamName: param, Fallback: fallback, OriginalProp: originalProp}
}

func Bail(reason string) Decision {
	return Decision{Kind: DecisionBail, Reason: reason, Category: CategoryUnsupported}
}

func BailCategory(category, reason string) Decision {
	return Decision{Kind: DecisionBail, Reason: reason, Category: category}
}

// Warning categories. Stable strings: the CLI summarizes by them and tests
// assert on them.
const (
	CategoryUnsupported  = "unsupported-feature"
	CategoryDynamicCSS   = "dynamic-css"
	CategoryBadResolved  = "unparseable-resolved-expression"
	CategoryMixedBranch  = "heterogeneous-branch-values"
	CategorySelectorComp = "component-selector"
)

// ResolveKind selects what an adapter value request refers to.
type ResolveKind int

const (
	ResolveTheme ResolveKind = iota
	ResolveCSSVariable
)

// Request asks the adapter to resolve a theme path or CSS variable to a
// static expression.
type Request struct {
	Kind     ResolveKind
	Path     []string // ResolveTheme
	Name     string   // ResolveCSSVariable
	Fallback string
}

// CallRequest asks the adapter to resolve an arbitrary helper call.
type CallRequest struct {
	CalleeName   string
	CalleeSource string
	Args         []string
}

// Resolution is a successful adapter answer: the replacement expression and
// any imports it needs.
type Resolution struct {
	Expr    string
	Imports []string
}

// Boundary is the capability interface for external resolution policy. A
// false return means "does not apply" and never an error; the matcher that
// asked simply declines.
type Boundary interface {
	ResolveValue(req Request) (*Resolution, bool)
	ResolveCall(req CallRequest) (*Resolution, bool)
}
