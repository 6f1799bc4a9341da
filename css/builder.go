package css

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Builder normalizes a parsed template into the rule IR.
type Builder struct {
	log *zap.Logger
}

// NewBuilder creates an IR builder.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{log: log.Named("css-ir")}
}

type irBuild struct {
	t   *Template
	log *zap.Logger

	rules []*Rule
	index map[string]*Rule

	// slot ids already represented as standalone-block declarations
	standalone map[int]bool

	pendingComment string
	lastRule       *Rule
	lastDecl       int // index into lastRule.Declarations, -1 when none
	lastDeclLine   int
}

// Build walks the template tree depth-first, producing the ordered rule list,
// then runs the line-based recovery pass over the raw text.
func (b *Builder) Build(t *Template) []Rule {
	ib := &irBuild{
		t:          t,
		log:        b.log,
		index:      make(map[string]*Rule),
		standalone: make(map[int]bool),
		lastDecl:   -1,
	}

	ib.walk(parseNodes(t.Raw), RootSelector, nil)
	ib.recover()

	out := make([]Rule, len(ib.rules))
	for i, r := range ib.rules {
		out[i] = *r
	}
	return out
}

func (ib *irBuild) walk(nodes []*node, selector string, atRules []string) {
	for _, n := range nodes {
		switch n.kind {
		case nodeComment:
			ib.handleComment(n)
		case nodeDecl:
			ib.handleDecl(n.text, n.line, selector, atRules)
		case nodeRule:
			sel := normalizeSelector(n.text)
			// materialize up front so empty rule bodies survive
			ib.ensureRule(sel, atRules)
			ib.walk(n.children, sel, atRules)
		case nodeAtRule:
			if n.children == nil {
				ib.log.Debug("Skipping block-less at-rule", zap.String("rule", n.text))
				continue
			}
			ib.walk(n.children, selector, append(append([]string{}, atRules...), n.text))
		}
	}
}

// handleComment attaches the comment either to the previous declaration
// (converted line comments and same-line trailing comments) or holds it for
// the next one.
func (ib *irBuild) handleComment(n *node) {
	inner := strings.TrimSuffix(strings.TrimPrefix(n.text, "/*"), "*/")

	convertedLine := !strings.HasSuffix(n.text, " */") && len(strings.TrimSpace(inner)) > 0
	sameLine := ib.lastDecl >= 0 && n.line == ib.lastDeclLine

	if (convertedLine || sameLine) && ib.lastDecl >= 0 {
		d := &ib.lastRule.Declarations[ib.lastDecl]
		d.TrailingComment = strings.TrimSpace(inner)
		return
	}
	ib.pendingComment = strings.TrimSpace(inner)
}

var importantPattern = regexp.MustCompile(`(?i)\s*!important\s*$`)

func (ib *irBuild) handleDecl(text string, line int, selector string, atRules []string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	// declaration that is exactly one placeholder: a standalone block
	if slot := ib.t.slotForPlaceholder(text); slot != nil {
		ib.appendDecl(selector, atRules, Declaration{
			Value:    Value{Parts: []ValuePart{{Slot: slot}}},
			RawValue: text,
		}, line)
		ib.standalone[slot.ID] = true
		return
	}

	// `<placeholder> <rest>`: the parser mangled a statement boundary inside
	// the slot expression; split off the block and reparse the rest
	if loc := placeholderPattern.FindStringIndex(text); loc != nil && loc[0] == 0 {
		rest := text[loc[1]:]
		if len(rest) > 0 && (rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n') {
			ib.handleDecl(text[:loc[1]], line, selector, atRules)
			ib.handleDecl(rest, line, selector, atRules)
			return
		}
	}

	prop, rawValue, ok := splitDeclaration(text)
	if !ok {
		if placeholderPattern.MatchString(text) {
			ib.log.Debug("Declaration without property separator", zap.String("text", text))
		}
		return
	}

	important := false
	if importantPattern.MatchString(rawValue) {
		important = true
		rawValue = strings.TrimSpace(importantPattern.ReplaceAllString(rawValue, ""))
	}

	d := Declaration{
		Property:  prop,
		Value:     ib.t.splitValue(rawValue),
		Important: important,
		RawValue:  rawValue,
	}
	if ib.pendingComment != "" {
		d.LeadingComment = ib.pendingComment
		ib.pendingComment = ""
	}
	ib.appendDecl(selector, atRules, d, line)
}

// splitDeclaration splits on the first unescaped colon.
func splitDeclaration(text string) (prop, value string, ok bool) {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case ':':
			return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:]), true
		}
	}
	return "", "", false
}

func (ib *irBuild) appendDecl(selector string, atRules []string, d Declaration, line int) {
	r := ib.ensureRule(selector, atRules)
	r.Declarations = append(r.Declarations, d)
	ib.lastRule = r
	ib.lastDecl = len(r.Declarations) - 1
	ib.lastDeclLine = line
}

// ensureRule merges into an existing rule with the same (selector, at-rule
// stack) rather than duplicating.
func (ib *irBuild) ensureRule(selector string, atRules []string) *Rule {
	key := ruleKey(selector, atRules)
	if r, ok := ib.index[key]; ok {
		return r
	}
	r := &Rule{Selector: selector, AtRules: append([]string{}, atRules...)}
	ib.rules = append(ib.rules, r)
	ib.index[key] = r
	return r
}

// recover re-scans the raw text line by line: interpolations that the tree
// walk lost (parsers drop slots that look empty or false at parse time) are
// recovered as standalone-block declarations on the root rule. Unknown
// placeholders are ignored.
func (ib *irBuild) recover() {
	depth := 0
	for _, line := range strings.Split(ib.t.Raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if depth == 0 {
			if slot := ib.t.slotForPlaceholder(strings.TrimSuffix(trimmed, ";")); slot != nil && !ib.standalone[slot.ID] {
				ib.log.Debug("Recovered dropped interpolation", zap.Int("slot", slot.ID))
				ib.appendDecl(RootSelector, nil, Declaration{
					Value:    Value{Parts: []ValuePart{{Slot: slot}}},
					RawValue: slot.Placeholder,
				}, 0)
				ib.standalone[slot.ID] = true
			}
		}
		depth += strings.Count(line, "{") - strings.Count(line, "}")
	}
}

// normalizeSelector strips parser sentinels and collapses whitespace runs.
func normalizeSelector(s string) string {
	s = strings.ReplaceAll(s, "\f", "")
	return strings.Join(strings.Fields(s), " ")
}

// SlotsIn returns the slots referenced by placeholder anywhere in text, in
// order of appearance. Used for selector and at-rule positions.
func (t *Template) SlotsIn(text string) []*Slot {
	var slots []*Slot
	for _, m := range placeholderPattern.FindAllString(text, -1) {
		if slot := t.slotForPlaceholder(m); slot != nil {
			slots = append(slots, slot)
		}
	}
	return slots
}
