package migrate

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"destyle/css"
	"destyle/lower"
	"destyle/shorthand"
)

// fileTemplate renders one migrated source file. Bailed components are
// emitted as a marker comment so the original source is left alone.
const fileTemplate = `// Generated by {{ .Tool }}. Review before committing.
{{- range .Keyframes }}

export const {{ .Name }} = keyframes({
{{ .Body }}
});
{{- end }}
{{- range .Components }}
{{- if .Bailed }}

// {{ .Name }}: not migrated ({{ .Reasons | join "; " }})
{{- else }}

export const {{ .StyleKey }} = style({
{{ .Style }}
});
{{- range .Variants }}
// applies when {{ .Cond }}
export const {{ .Key }} = style({
{{ .Style }}
});
{{- end }}
{{- range .StyleFns }}
export const {{ .Name }} = ({{ .Param }}) => ({ {{ .Property }}: {{ .Value }} });
{{- end }}
{{- end }}
{{- end }}
`

type componentView struct {
	Name     string
	Bailed   bool
	Reasons  []string
	StyleKey string
	Style    string
	Variants []variantView
	StyleFns []styleFnView
}

type variantView struct {
	Key   string
	Cond  string
	Style string
}

type styleFnView struct {
	Name     string
	Param    string
	Property string
	Value    string
}

type keyframesView struct {
	Name string
	Body string
}

type fileView struct {
	Tool       string
	Keyframes  []keyframesView
	Components []componentView
}

// Emitter renders lowered results back to source text.
type Emitter struct {
	tmpl *template.Template
}

func NewEmitter() (*Emitter, error) {
	tmpl, err := template.New("file").Funcs(sprig.FuncMap()).Parse(fileTemplate)
	if err != nil {
		return nil, fmt.Errorf("unable to parse output template: %w", err)
	}
	return &Emitter{tmpl: tmpl}, nil
}

// Emit renders one file result.
func (e *Emitter) Emit(res *FileResult) ([]byte, error) {
	view := fileView{Tool: "destyle"}

	for _, kf := range res.Keyframes {
		view.Keyframes = append(view.Keyframes, keyframesView{
			Name: kf.Name,
			Body: renderKeyframes(kf.Rules),
		})
	}

	for _, c := range res.Components {
		cv := componentView{
			Name:     c.Name,
			Bailed:   c.Bailed,
			StyleKey: lowerFirst(c.Name),
			Style:    renderStyleObj(c.StyleObj, 1),
		}
		for _, w := range c.Warnings {
			if reason := w.Context["reason"]; reason != "" {
				cv.Reasons = append(cv.Reasons, reason)
			}
		}
		for _, key := range c.BucketOrder {
			cv.Variants = append(cv.Variants, variantView{
				Key:   c.VariantStyleKeys[key],
				Cond:  key,
				Style: renderFlat(c.VariantBuckets[key], 1),
			})
		}
		for _, fn := range c.StyleFnSpecs {
			cv.StyleFns = append(cv.StyleFns, styleFnView{
				Name:     lowerFirst(c.Name) + lower.SuffixFromProp(fn.ParamName) + "Style",
				Param:    strings.TrimPrefix(fn.ParamName, "$"),
				Property: fn.Property,
				Value:    styleFnValue(fn),
			})
		}
		view.Components = append(view.Components, cv)
	}

	buf := new(bytes.Buffer)
	if err := e.tmpl.Execute(buf, view); err != nil {
		return nil, fmt.Errorf("unable to render output: %w", err)
	}
	return buf.Bytes(), nil
}

func styleFnValue(fn lower.StyleFnSpec) string {
	param := strings.TrimPrefix(fn.ParamName, "$")
	if fn.Fallback != "" {
		return fmt.Sprintf("%s ?? %q", param, fn.Fallback)
	}
	return param
}

// renderStyleObj renders a style object with nested conditional sub-maps.
// Keys are sorted for stable output, "default" first inside sub-maps.
func renderStyleObj(obj map[string]any, depth int) string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	indent := strings.Repeat("  ", depth)
	var lines []string
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			lines = append(lines, fmt.Sprintf("%s%s: %s,", indent, jsKey(k), jsValue(v)))
		case map[string]any:
			lines = append(lines, fmt.Sprintf("%s%s: {", indent, jsKey(k)))
			lines = append(lines, renderCondValue(v, depth+1))
			lines = append(lines, indent+"},")
		case nil:
			lines = append(lines, fmt.Sprintf("%s%s: null,", indent, jsKey(k)))
		}
	}
	return strings.Join(lines, "\n")
}

// renderCondValue renders a conditional sub-map with the default entry first.
func renderCondValue(sub map[string]any, depth int) string {
	keys := make([]string, 0, len(sub))
	for k := range sub {
		if k != "default" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := sub["default"]; ok {
		keys = append([]string{"default"}, keys...)
	}

	indent := strings.Repeat("  ", depth)
	var lines []string
	for _, k := range keys {
		switch v := sub[k].(type) {
		case string:
			lines = append(lines, fmt.Sprintf("%s%s: %s,", indent, jsKey(k), jsValue(v)))
		case nil:
			lines = append(lines, fmt.Sprintf("%s%s: null,", indent, jsKey(k)))
		}
	}
	return strings.Join(lines, "\n")
}

func renderFlat(style map[string]string, depth int) string {
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	indent := strings.Repeat("  ", depth)
	var lines []string
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s%s: %s,", indent, jsKey(k), jsValue(style[k])))
	}
	return strings.Join(lines, "\n")
}

func renderKeyframes(rules []css.Rule) string {
	var lines []string
	for _, r := range rules {
		if r.IsRoot() && len(r.Declarations) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %q: {", r.Selector))
		for _, d := range r.Declarations {
			if d.IsStandaloneBlock() {
				continue
			}
			lines = append(lines, fmt.Sprintf("    %s: %q,", jsKey(shorthand.CamelProperty(d.Property)), d.RawValue))
		}
		lines = append(lines, "  },")
	}
	return strings.Join(lines, "\n")
}

// jsKey quotes keys that are not plain identifiers.
func jsKey(k string) string {
	for i, r := range k {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return fmt.Sprintf("%q", k)
		}
	}
	if k == "" {
		return `""`
	}
	return k
}

// jsValue renders a bucket or style value: already-expression values (merged
// ternaries, var() references carrying quotes) pass through, plain CSS text
// gets quoted.
func jsValue(v string) string {
	if strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) {
		return v
	}
	if strings.HasPrefix(v, "`") && strings.HasSuffix(v, "`") {
		return v
	}
	if strings.Contains(v, " ? ") && strings.Contains(v, " : ") {
		return v
	}
	return fmt.Sprintf("%q", v)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
