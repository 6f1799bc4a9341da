package migrate

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"destyle/css"
	"destyle/lower"
)

func TestEmit_StyleObject(t *testing.T) {
	decl := lower.NewStyledDecl("Button", zap.NewNop())
	decl.StyleObj["display"] = "flex"
	decl.StyleObj["color"] = `"var(--theme-colors-primary)"`

	em, err := NewEmitter()
	if err != nil {
		t.Fatal(err)
	}
	out, err := em.Emit(&FileResult{Components: []*lower.StyledDecl{decl}})
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	if !strings.Contains(text, "export const button = style({") {
		t.Errorf("missing style export:\n%s", text)
	}
	if !strings.Contains(text, `display: "flex",`) {
		t.Errorf("missing quoted plain value:\n%s", text)
	}
	// adapter resolutions already carry quotes and must not be double quoted
	if !strings.Contains(text, `color: "var(--theme-colors-primary)",`) {
		t.Errorf("missing passthrough value:\n%s", text)
	}
}

func TestEmit_ConditionalSubMap(t *testing.T) {
	decl := lower.NewStyledDecl("Link", zap.NewNop())
	decl.StyleObj["color"] = map[string]any{"default": "blue", ":hover": "red"}

	em, _ := NewEmitter()
	out, err := em.Emit(&FileResult{Components: []*lower.StyledDecl{decl}})
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	defIdx := strings.Index(text, `default: "blue",`)
	hovIdx := strings.Index(text, `":hover": "red",`)
	if defIdx < 0 || hovIdx < 0 {
		t.Fatalf("missing sub-map entries:\n%s", text)
	}
	if defIdx > hovIdx {
		t.Error("default entry must come first in the sub-map")
	}
}

func TestEmit_Variants(t *testing.T) {
	decl := lower.NewStyledDecl("Button", zap.NewNop())
	decl.VariantBuckets = map[string]map[string]string{
		"$primary":  {"background": "blue"},
		"!$primary": {"background": "gray"},
	}
	decl.BucketOrder = []string{"$primary", "!$primary"}
	decl.VariantStyleKeys = map[string]string{
		"$primary":  "buttonPrimary",
		"!$primary": "buttonNotPrimary",
	}

	em, _ := NewEmitter()
	out, err := em.Emit(&FileResult{Components: []*lower.StyledDecl{decl}})
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	pIdx := strings.Index(text, "export const buttonPrimary = style({")
	nIdx := strings.Index(text, "export const buttonNotPrimary = style({")
	if pIdx < 0 || nIdx < 0 {
		t.Fatalf("missing variant exports:\n%s", text)
	}
	if pIdx > nIdx {
		t.Error("variants must be emitted in bucket order")
	}
	cIdx := strings.Index(text, "// applies when $primary")
	if cIdx < 0 {
		t.Fatalf("missing variant condition comment:\n%s", text)
	}
	if cIdx > pIdx {
		t.Error("condition comment must precede its variant export")
	}
}

func TestEmit_MergedTernaryValue(t *testing.T) {
	decl := lower.NewStyledDecl("Box", zap.NewNop())
	decl.VariantBuckets = map[string]map[string]string{
		"$active": {"color": `$active ? "red" : "blue"`},
	}
	decl.BucketOrder = []string{"$active"}
	decl.VariantStyleKeys = map[string]string{"$active": "boxActive"}

	em, _ := NewEmitter()
	out, err := em.Emit(&FileResult{Components: []*lower.StyledDecl{decl}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `color: $active ? "red" : "blue",`) {
		t.Errorf("merged ternary must pass through unquoted:\n%s", out)
	}
}

func TestEmit_StyleFunctions(t *testing.T) {
	decl := lower.NewStyledDecl("Box", zap.NewNop())
	decl.StyleFnSpecs = []lower.StyleFnSpec{
		{ParamName: "$height", Fallback: "100px", Property: "height"},
		{ParamName: "$width", Property: "width"},
	}

	em, _ := NewEmitter()
	out, err := em.Emit(&FileResult{Components: []*lower.StyledDecl{decl}})
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	if !strings.Contains(text, `export const boxHeightStyle = (height) => ({ height: height ?? "100px" });`) {
		t.Errorf("missing fallback style function:\n%s", text)
	}
	if !strings.Contains(text, `export const boxWidthStyle = (width) => ({ width: width });`) {
		t.Errorf("missing plain style function:\n%s", text)
	}
}

func TestEmit_BailedComponent(t *testing.T) {
	decl := lower.NewStyledDecl("Broken", zap.NewNop())
	decl.Bailed = true
	decl.Warnings = []lower.Warning{
		{Category: "unsupported-feature", Context: map[string]string{"reason": "component used as selector: Icon"}},
	}

	em, _ := NewEmitter()
	out, err := em.Emit(&FileResult{Components: []*lower.StyledDecl{decl}})
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	if !strings.Contains(text, "// Broken: not migrated (component used as selector: Icon)") {
		t.Errorf("missing bail marker:\n%s", text)
	}
	if strings.Contains(text, "export const broken") {
		t.Errorf("bailed component must not emit a style object:\n%s", text)
	}
}

func TestEmit_Keyframes(t *testing.T) {
	em, _ := NewEmitter()
	out, err := em.Emit(&FileResult{
		Keyframes: []Keyframes{{
			Name:  "pulseAnimation",
			Ident: "pulse",
			Rules: []css.Rule{
				{Selector: "from", Declarations: []css.Declaration{{Property: "opacity", RawValue: "0"}}},
				{Selector: "to", Declarations: []css.Declaration{{Property: "opacity", RawValue: "1"}}},
			},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	if !strings.Contains(text, "export const pulseAnimation = keyframes({") {
		t.Errorf("missing keyframes export:\n%s", text)
	}
	if !strings.Contains(text, `"from": {`) || !strings.Contains(text, `opacity: "0",`) {
		t.Errorf("missing keyframes body:\n%s", text)
	}
}

func TestJSKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"color", "color"},
		{"$active", "$active"},
		{"font_weight", "font_weight"},
		{":hover", `":hover"`},
		{"@media (max-width: 600px)", `"@media (max-width: 600px)"`},
		{"", `""`},
	}
	for _, tc := range tests {
		if got := jsKey(tc.in); got != tc.want {
			t.Errorf("jsKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestJSValue(t *testing.T) {
	tests := []struct{ in, want string }{
		{"flex", `"flex"`},
		{`"var(--x)"`, `"var(--x)"`},
		{`$a ? "x" : "y"`, `$a ? "x" : "y"`},
		{"`${indent} 0`", "`${indent} 0`"},
	}
	for _, tc := range tests {
		if got := jsValue(tc.in); got != tc.want {
			t.Errorf("jsValue(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
