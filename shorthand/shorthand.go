// Package shorthand expands CSS shorthand properties into their longhand
// equivalents and normalizes property names for style-object keys. All
// functions are pure; unknown or unexpandable inputs return nothing and the
// caller decides what that means.
package shorthand

import (
	"strings"
	"unicode"
)

// longhands maps each supported shorthand to its longhand set in output order.
var longhands = map[string][]string{
	"margin":        {"marginTop", "marginRight", "marginBottom", "marginLeft"},
	"padding":       {"paddingTop", "paddingRight", "paddingBottom", "paddingLeft"},
	"border":        {"borderWidth", "borderStyle", "borderColor"},
	"border-top":    {"borderTopWidth", "borderTopStyle", "borderTopColor"},
	"border-right":  {"borderRightWidth", "borderRightStyle", "borderRightColor"},
	"border-bottom": {"borderBottomWidth", "borderBottomStyle", "borderBottomColor"},
	"border-left":   {"borderLeftWidth", "borderLeftStyle", "borderLeftColor"},
	"border-radius": {"borderTopLeftRadius", "borderTopRightRadius", "borderBottomRightRadius", "borderBottomLeftRadius"},
	"animation":     {"animationName", "animationDuration", "animationTimingFunction", "animationDelay", "animationIterationCount", "animationDirection", "animationFillMode", "animationPlayState"},
	"flex":          {"flexGrow", "flexShrink", "flexBasis"},
	"gap":           {"rowGap", "columnGap"},
	"overflow":      {"overflowX", "overflowY"},
	"background":    {"backgroundColor"},
}

// IsShorthand reports whether the property has an expansion.
func IsShorthand(property string) bool {
	_, ok := longhands[strings.ToLower(property)]
	return ok
}

// Longhands returns the longhand set for a shorthand property, or nil.
func Longhands(property string) []string {
	lh, ok := longhands[strings.ToLower(property)]
	if !ok {
		return nil
	}
	return append([]string{}, lh...)
}

// Expand expands a shorthand value into longhand property/value pairs. A nil
// result means the property is not a shorthand or the value cannot be
// statically expanded; that is not a failure.
func Expand(property, rawValue string) map[string]string {
	rawValue = strings.TrimSpace(rawValue)
	switch strings.ToLower(property) {
	case "margin":
		return expandBox("margin", rawValue)
	case "padding":
		return expandBox("padding", rawValue)
	case "border", "border-top", "border-right", "border-bottom", "border-left":
		return expandBorder(strings.ToLower(property), rawValue)
	case "border-radius":
		return expandBorderRadius(rawValue)
	case "animation":
		return expandAnimation(rawValue)
	case "flex":
		return expandFlex(rawValue)
	case "gap":
		return expandPair("rowGap", "columnGap", rawValue)
	case "overflow":
		return expandPair("overflowX", "overflowY", rawValue)
	case "background":
		return expandBackground(rawValue)
	default:
		return nil
	}
}

// expandBox handles the 1/2/3/4 value box-model forms. Missing values
// default to "0".
func expandBox(prefix, rawValue string) map[string]string {
	vals := strings.Fields(rawValue)
	top, right, bottom, left := "0", "0", "0", "0"
	switch len(vals) {
	case 1:
		top, right, bottom, left = vals[0], vals[0], vals[0], vals[0]
	case 2:
		top, bottom = vals[0], vals[0]
		right, left = vals[1], vals[1]
	case 3:
		top = vals[0]
		right, left = vals[1], vals[1]
		bottom = vals[2]
	case 4:
		top, right, bottom, left = vals[0], vals[1], vals[2], vals[3]
	default:
		return nil
	}
	side := CamelProperty(prefix)
	return map[string]string{
		side + "Top":    top,
		side + "Right":  right,
		side + "Bottom": bottom,
		side + "Left":   left,
	}
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

var borderWidthKeywords = map[string]bool{
	"thin": true, "medium": true, "thick": true,
}

// expandBorder classifies whitespace tokens into width/style/color.
// Last token wins per category when repeated.
func expandBorder(property, rawValue string) map[string]string {
	tokens := strings.Fields(rawValue)
	if len(tokens) == 0 {
		return nil
	}

	base := CamelProperty(property)
	out := make(map[string]string)
	for _, tok := range tokens {
		low := strings.ToLower(tok)
		switch {
		case isWidthToken(low):
			out[base+"Width"] = tok
		case borderStyles[low]:
			out[base+"Style"] = tok
		default:
			out[base+"Color"] = tok
		}
	}
	return out
}

func isWidthToken(tok string) bool {
	if borderWidthKeywords[tok] {
		return true
	}
	return len(tok) > 0 && (unicode.IsDigit(rune(tok[0])) || tok[0] == '.')
}

// expandBorderRadius expands the horizontal radii only. Vertical radii after
// the slash are a known limitation: no value is emitted for them and no
// error is raised.
func expandBorderRadius(rawValue string) map[string]string {
	horizontal := rawValue
	if idx := strings.IndexByte(rawValue, '/'); idx >= 0 {
		horizontal = strings.TrimSpace(rawValue[:idx])
	}
	vals := strings.Fields(horizontal)
	tl, tr, br, bl := "", "", "", ""
	switch len(vals) {
	case 1:
		tl, tr, br, bl = vals[0], vals[0], vals[0], vals[0]
	case 2:
		tl, br = vals[0], vals[0]
		tr, bl = vals[1], vals[1]
	case 3:
		tl = vals[0]
		tr, bl = vals[1], vals[1]
		br = vals[2]
	case 4:
		tl, tr, br, bl = vals[0], vals[1], vals[2], vals[3]
	default:
		return nil
	}
	return map[string]string{
		"borderTopLeftRadius":     tl,
		"borderTopRightRadius":    tr,
		"borderBottomRightRadius": br,
		"borderBottomLeftRadius":  bl,
	}
}

var animationDirections = map[string]bool{
	"normal": true, "reverse": true, "alternate": true, "alternate-reverse": true,
}

var animationFillModes = map[string]bool{
	"forwards": true, "backwards": true, "both": true,
}

var animationPlayStates = map[string]bool{
	"running": true, "paused": true,
}

var animationTimingFunctions = map[string]bool{
	"linear": true, "ease": true, "ease-in": true, "ease-out": true,
	"ease-in-out": true, "step-start": true, "step-end": true,
}

// expandAnimation classifies tokens positionally and by keyword across the
// eight animation longhands. The first bare identifier that matches no
// keyword set becomes the name; the first two time tokens become duration
// then delay in that order.
func expandAnimation(rawValue string) map[string]string {
	tokens := splitPreservingFunctions(rawValue)
	if len(tokens) == 0 {
		return nil
	}

	out := make(map[string]string)
	timeCount := 0
	iterationSet := false

	for _, tok := range tokens {
		low := strings.ToLower(tok)
		switch {
		case isTimeToken(low):
			if timeCount == 0 {
				out["animationDuration"] = tok
			} else if timeCount == 1 {
				out["animationDelay"] = tok
			}
			timeCount++
		case low == "infinite":
			out["animationIterationCount"] = tok
			iterationSet = true
		case isNumberToken(low):
			if !iterationSet {
				out["animationIterationCount"] = tok
				iterationSet = true
			}
		case animationTimingFunctions[low] || strings.HasPrefix(low, "cubic-bezier(") || strings.HasPrefix(low, "steps("):
			out["animationTimingFunction"] = tok
		case animationDirections[low]:
			out["animationDirection"] = tok
		case animationFillModes[low]:
			out["animationFillMode"] = tok
		case animationPlayStates[low]:
			out["animationPlayState"] = tok
		default:
			if _, exists := out["animationName"]; !exists {
				out["animationName"] = tok
			}
		}
	}
	return out
}

func isTimeToken(tok string) bool {
	if !strings.HasSuffix(tok, "s") {
		return false
	}
	num := strings.TrimSuffix(strings.TrimSuffix(tok, "s"), "m")
	return num != "" && isNumberToken(num)
}

func isNumberToken(tok string) bool {
	if tok == "" {
		return false
	}
	dot := false
	for i, r := range tok {
		switch {
		case unicode.IsDigit(r):
		case r == '.' && !dot:
			dot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			return false
		}
	}
	return true
}

// expandFlex handles keyword and positional flex forms.
func expandFlex(rawValue string) map[string]string {
	switch strings.ToLower(rawValue) {
	case "none":
		return map[string]string{"flexGrow": "0", "flexShrink": "0", "flexBasis": "auto"}
	case "auto":
		return map[string]string{"flexGrow": "1", "flexShrink": "1", "flexBasis": "auto"}
	case "initial":
		return map[string]string{"flexGrow": "0", "flexShrink": "1", "flexBasis": "auto"}
	}

	tokens := strings.Fields(rawValue)
	switch len(tokens) {
	case 1:
		if isNumberToken(tokens[0]) {
			return map[string]string{"flexGrow": tokens[0]}
		}
		return map[string]string{"flexBasis": tokens[0]}
	case 2:
		if isNumberToken(tokens[1]) {
			return map[string]string{"flexGrow": tokens[0], "flexShrink": tokens[1]}
		}
		return map[string]string{"flexGrow": tokens[0], "flexBasis": tokens[1]}
	case 3:
		return map[string]string{"flexGrow": tokens[0], "flexShrink": tokens[1], "flexBasis": tokens[2]}
	default:
		return nil
	}
}

// expandPair handles two-axis shorthands: one token sets both axes, two
// tokens set them in source order.
func expandPair(first, second, rawValue string) map[string]string {
	tokens := strings.Fields(rawValue)
	switch len(tokens) {
	case 1:
		return map[string]string{first: tokens[0], second: tokens[0]}
	case 2:
		return map[string]string{first: tokens[0], second: tokens[1]}
	default:
		return nil
	}
}

// expandBackground only expands to backgroundColor when the value is a plain
// color; images and gradients keep the shorthand.
func expandBackground(rawValue string) map[string]string {
	low := strings.ToLower(rawValue)
	if strings.Contains(low, "url") || strings.Contains(low, "gradient") {
		return nil
	}
	if rawValue == "" {
		return nil
	}
	return map[string]string{"backgroundColor": rawValue}
}

// splitPreservingFunctions splits on whitespace but keeps function calls
// like cubic-bezier(0.1, 0.7, 1, 0.1) as single tokens.
func splitPreservingFunctions(s string) []string {
	var tokens []string
	var sb strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
			sb.WriteRune(r)
		case r == ')':
			depth--
			sb.WriteRune(r)
		case unicode.IsSpace(r) && depth == 0:
			if sb.Len() > 0 {
				tokens = append(tokens, sb.String())
				sb.Reset()
			}
		default:
			sb.WriteRune(r)
		}
	}
	if sb.Len() > 0 {
		tokens = append(tokens, sb.String())
	}
	return tokens
}

var vendorPrefixes = []string{"-webkit-", "-moz-", "-ms-"}

// CamelProperty converts a kebab-case CSS property to the camelCase form
// used in style objects. Vendor prefixes map to a lowercase prefix followed
// by the capitalized remainder.
func CamelProperty(property string) string {
	property = strings.TrimSpace(property)
	for _, vp := range vendorPrefixes {
		if strings.HasPrefix(property, vp) {
			rest := CamelProperty(strings.TrimPrefix(property, vp))
			return strings.Trim(vp, "-") + capitalize(rest)
		}
	}
	parts := strings.Split(property, "-")
	var sb strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			sb.WriteString(p)
			continue
		}
		sb.WriteString(capitalize(p))
	}
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
