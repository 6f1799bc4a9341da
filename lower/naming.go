package lower

import (
	"strings"
	"unicode"
)

// Suffix derives the stable PascalCase style-key suffix for a condition.
// Deterministic: the same condition always yields the same suffix.
func Suffix(c *Cond) string {
	if c == nil {
		return ""
	}
	switch c.Kind {
	case CondIdent:
		return propSuffix(c.Name)
	case CondNot:
		return "Not" + Suffix(c.X)
	case CondAnd:
		return dedupeWords(Suffix(c.X) + Suffix(c.Y))
	case CondOr:
		return dedupeWords(Suffix(c.X) + "Or" + Suffix(c.Y))
	case CondEq:
		if !c.RhsLiteral {
			return dedupeWords(propSuffix(c.Lhs) + "CondTruthy")
		}
		sep := ""
		if c.Op == "!==" || c.Op == "!=" {
			sep = "Not"
		}
		return dedupeWords(propSuffix(c.Lhs) + sep + propSuffix(c.Rhs))
	}
	return ""
}

// SuffixFromProp converts a prop path to its suffix form: the `$` marker is
// stripped, dotted paths join PascalCase and a leading `is` drops off.
func SuffixFromProp(prop string) string {
	return propSuffix(prop)
}

func propSuffix(prop string) string {
	prop = strings.TrimPrefix(strings.TrimSpace(prop), "!")
	prop = strings.TrimPrefix(prop, "$")
	prop = strings.Trim(prop, `"'`)

	var sb strings.Builder
	for i, seg := range strings.Split(prop, ".") {
		seg = strings.TrimPrefix(seg, "$")
		if i == 0 && len(seg) > 2 && strings.HasPrefix(seg, "is") && unicode.IsUpper(rune(seg[2])) {
			seg = seg[2:]
		}
		sb.WriteString(capitalizeFirst(seg))
	}
	return dedupeWords(sb.String())
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// dedupeWords removes consecutive duplicate PascalCase words so that
// "UserRole" + "RoleAdmin" yields "UserRoleAdmin".
func dedupeWords(s string) string {
	words := splitPascal(s)
	var out []string
	for _, w := range words {
		if len(out) > 0 && out[len(out)-1] == w {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, "")
}

func splitPascal(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		words = append(words, s[start:])
	}
	return words
}
