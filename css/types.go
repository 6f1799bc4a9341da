// Package css models styled-component templates: interpolation slots, the
// declaration/rule IR and the builder that normalizes a parsed template tree
// into an ordered, queryable structure.
package css

import (
	"strings"

	"destyle/jsexpr"
)

// Slot identifies one interpolation point in a template. Created once per
// template parse and never mutated afterwards.
type Slot struct {
	ID          int
	Placeholder string
	Src         string       // original JS source of the interpolation
	Expr        *jsexpr.Expr // nil when the source could not be parsed
}

// ValuePart is either a run of static text or a slot reference.
type ValuePart struct {
	Text string
	Slot *Slot
}

// Value is a CSS property value: fully static text or an ordered mix of
// static runs and slot references. Adjacent static parts are coalesced; an
// interpolated value always carries at least one slot part.
type Value struct {
	Parts []ValuePart
}

// StaticValue builds a fully static value.
func StaticValue(text string) Value {
	return Value{Parts: []ValuePart{{Text: text}}}
}

// IsStatic reports whether the value contains no slot references.
func (v Value) IsStatic() bool {
	for _, p := range v.Parts {
		if p.Slot != nil {
			return false
		}
	}
	return true
}

// Static returns the value text; slot parts render as their placeholders.
func (v Value) Static() string {
	var sb strings.Builder
	for _, p := range v.Parts {
		if p.Slot != nil {
			sb.WriteString(p.Slot.Placeholder)
		} else {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Slots returns all slot references in order.
func (v Value) Slots() []*Slot {
	var slots []*Slot
	for _, p := range v.Parts {
		if p.Slot != nil {
			slots = append(slots, p.Slot)
		}
	}
	return slots
}

// SingleSlot reports whether the value is exactly one slot reference with no
// static text around it.
func (v Value) SingleSlot() (*Slot, bool) {
	if len(v.Parts) == 1 && v.Parts[0].Slot != nil {
		return v.Parts[0].Slot, true
	}
	return nil, false
}

// Declaration is one `property: value` pair. Property is empty for
// standalone-block declarations: slots whose resolved value is itself a block
// of CSS declarations rather than a single value.
type Declaration struct {
	Property        string
	Value           Value
	Important       bool
	RawValue        string
	LeadingComment  string
	TrailingComment string
}

// IsStandaloneBlock reports whether this declaration stands in for a slot
// that may expand to zero or more declarations.
func (d Declaration) IsStandaloneBlock() bool {
	return d.Property == ""
}

// Rule is an ordered set of declarations under one selector, optionally
// nested in at-rules (outermost first). Within one build there is at most one
// Rule per distinct (selector, at-rule stack) pair.
type Rule struct {
	Selector     string
	AtRules      []string
	Declarations []Declaration
}

// RootSelector is the implicit selector for declarations placed directly in
// the template body.
const RootSelector = "&"

// IsRoot reports whether the rule is the template's own top-level block.
func (r Rule) IsRoot() bool {
	return r.Selector == RootSelector && len(r.AtRules) == 0
}

func ruleKey(selector string, atRules []string) string {
	return selector + "\x00" + strings.Join(atRules, "\x00")
}

// ContextKind says where in the CSS a slot appeared.
type ContextKind int

const (
	ContextValue    ContextKind = iota // inside a declaration value
	ContextSelector                    // inside a selector
	ContextAtRule                      // inside at-rule parameters
)

// DynamicContext is the classification input derived for one slot.
type DynamicContext struct {
	Kind        ContextKind
	Property    string // set for ContextValue
	Selector    string
	AtRules     []string
	IsFullValue bool // the slot is the entire declaration value
}
