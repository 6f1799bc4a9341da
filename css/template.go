package css

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"destyle/jsexpr"
)

// Template is the parse result for one styled-component template literal:
// placeholder-substituted CSS text plus the interpolation slots in order.
type Template struct {
	Raw      string // CSS text with `${…}` replaced by placeholders
	Original string // template body as found in source
	Slots    []Slot
}

const placeholderFormat = "__destyle_expr_%d__"

var placeholderPattern = regexp.MustCompile(`__destyle_expr_(\d+)__`)

// ParseTemplate extracts interpolations from a template literal body and
// parses each one's JS source. Expression parse failures do not fail the
// template: the slot keeps a nil expression and classification bails later.
func ParseTemplate(body string, log *zap.Logger) *Template {
	if log == nil {
		log = zap.NewNop()
	}

	t := &Template{Original: body}

	var sb strings.Builder
	for i := 0; i < len(body); {
		idx := strings.Index(body[i:], "${")
		if idx < 0 {
			sb.WriteString(body[i:])
			break
		}
		sb.WriteString(body[i : i+idx])
		start := i + idx + 2
		end, ok := matchInterpolation(body, start)
		if !ok {
			// unbalanced template, keep the text as-is
			log.Debug("Unterminated interpolation", zap.Int("offset", start))
			sb.WriteString(body[i+idx:])
			break
		}

		src := strings.TrimSpace(body[start:end])
		slot := Slot{
			ID:          len(t.Slots),
			Placeholder: fmt.Sprintf(placeholderFormat, len(t.Slots)),
			Src:         src,
		}
		if expr, err := jsexpr.Parse(src); err == nil {
			slot.Expr = expr
		} else {
			log.Debug("Interpolation did not parse as expression", zap.String("src", src), zap.Error(err))
		}
		t.Slots = append(t.Slots, slot)
		sb.WriteString(slot.Placeholder)

		i = end + 1
	}

	t.Raw = sb.String()
	return t
}

// matchInterpolation finds the closing brace of an interpolation started at
// `start` (just past "${"), honoring nested braces, strings and templates.
func matchInterpolation(s string, start int) (int, bool) {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		case '\'', '"':
			j, ok := skipString(s, i)
			if !ok {
				return 0, false
			}
			i = j
		case '`':
			j, ok := skipTemplate(s, i)
			if !ok {
				return 0, false
			}
			i = j
		}
	}
	return 0, false
}

// skipString returns the index of the closing quote.
func skipString(s string, start int) (int, bool) {
	q := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case q:
			return i, true
		}
	}
	return 0, false
}

// skipTemplate returns the index of the closing backtick, recursing through
// nested interpolations.
func skipTemplate(s string, start int) (int, bool) {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '`':
			return i, true
		case '$':
			if i+1 < len(s) && s[i+1] == '{' {
				j, ok := matchInterpolation(s, i+2)
				if !ok {
					return 0, false
				}
				i = j
			}
		}
	}
	return 0, false
}

// SlotByID returns the slot with the given id.
func (t *Template) SlotByID(id int) *Slot {
	if id < 0 || id >= len(t.Slots) {
		return nil
	}
	return &t.Slots[id]
}

// slotForPlaceholder resolves an exact placeholder string to its slot.
func (t *Template) slotForPlaceholder(s string) *Slot {
	m := placeholderPattern.FindStringSubmatch(s)
	if m == nil || m[0] != s {
		return nil
	}
	var id int
	fmt.Sscanf(m[1], "%d", &id)
	return t.SlotByID(id)
}

// splitValue turns raw declaration value text into a Value, scanning for
// placeholders and coalescing the static runs between them.
func (t *Template) splitValue(raw string) Value {
	locs := placeholderPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return StaticValue(raw)
	}

	var parts []ValuePart
	pos := 0
	for _, loc := range locs {
		if loc[0] > pos {
			parts = append(parts, ValuePart{Text: raw[pos:loc[0]]})
		}
		var id int
		fmt.Sscanf(raw[loc[2]:loc[3]], "%d", &id)
		if slot := t.SlotByID(id); slot != nil {
			parts = append(parts, ValuePart{Slot: slot})
		} else {
			// foreign placeholder-looking text stays static
			parts = append(parts, ValuePart{Text: raw[loc[0]:loc[1]]})
		}
		pos = loc[1]
	}
	if pos < len(raw) {
		parts = append(parts, ValuePart{Text: raw[pos:]})
	}

	// coalesce adjacent static parts
	out := parts[:0]
	for _, p := range parts {
		if p.Slot == nil && len(out) > 0 && out[len(out)-1].Slot == nil {
			out[len(out)-1].Text += p.Text
			continue
		}
		out = append(out, p)
	}
	return Value{Parts: out}
}
