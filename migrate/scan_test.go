package migrate

import (
	"testing"

	"go.uber.org/zap"
)

func TestScan_StyledTag(t *testing.T) {
	src := "const Button = styled.button`\n  color: red;\n`;"
	res := Scan(src, zap.NewNop())

	if len(res.Occurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1", len(res.Occurrences))
	}
	occ := res.Occurrences[0]
	if occ.Kind != OccurrenceStyledTag {
		t.Errorf("kind = %v, want styled tag", occ.Kind)
	}
	if occ.Name != "Button" {
		t.Errorf("name = %q, want Button", occ.Name)
	}
	if occ.Tag != "button" {
		t.Errorf("tag = %q, want button", occ.Tag)
	}
	if occ.Body != "\n  color: red;\n" {
		t.Errorf("body = %q", occ.Body)
	}
}

func TestScan_StyledComponent(t *testing.T) {
	src := "const Fancy = styled(Base)`\n  color: blue;\n`;"
	res := Scan(src, zap.NewNop())

	if len(res.Occurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1", len(res.Occurrences))
	}
	occ := res.Occurrences[0]
	if occ.Kind != OccurrenceStyledComponent {
		t.Errorf("kind = %v, want styled component", occ.Kind)
	}
	if occ.Name != "Fancy" || occ.Tag != "Base" {
		t.Errorf("name/tag = %q/%q", occ.Name, occ.Tag)
	}
}

func TestScan_KeyframesAndGlobal(t *testing.T) {
	src := "const pulse = keyframes`\n  from { opacity: 0; }\n  to { opacity: 1; }\n`;\n" +
		"const Global = createGlobalStyle`\n  body { margin: 0; }\n`;"
	res := Scan(src, zap.NewNop())

	if len(res.Occurrences) != 2 {
		t.Fatalf("occurrences = %d, want 2", len(res.Occurrences))
	}
	if res.Occurrences[0].Kind != OccurrenceKeyframes || res.Occurrences[0].Name != "pulse" {
		t.Errorf("first = %+v, want keyframes pulse", res.Occurrences[0])
	}
	if res.Occurrences[1].Kind != OccurrenceGlobalStyle || res.Occurrences[1].Name != "Global" {
		t.Errorf("second = %+v, want global style", res.Occurrences[1])
	}
}

func TestScan_CSSHelper(t *testing.T) {
	src := "const mixin = css`\n  padding: 4px;\n`;"
	res := Scan(src, zap.NewNop())

	if len(res.Occurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1", len(res.Occurrences))
	}
	if res.Occurrences[0].Kind != OccurrenceCSSHelper || res.Occurrences[0].Name != "mixin" {
		t.Errorf("occurrence = %+v", res.Occurrences[0])
	}
}

func TestScan_TemplateWithInterpolations(t *testing.T) {
	src := "const Box = styled.div`\n  width: ${(props) => props.$w};\n  height: 10px;\n`;"
	res := Scan(src, zap.NewNop())

	if len(res.Occurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1", len(res.Occurrences))
	}
	body := res.Occurrences[0].Body
	if body != "\n  width: ${(props) => props.$w};\n  height: 10px;\n" {
		t.Errorf("body = %q", body)
	}
}

func TestScan_Helper(t *testing.T) {
	src := `const weight = (v) => v ? "bold" : "normal";`
	res := Scan(src, zap.NewNop())

	h, ok := res.Helpers["weight"]
	if !ok {
		t.Fatalf("helper not recognized: %+v", res.Helpers)
	}
	if h.Truthy != "bold" || h.Falsy != "normal" {
		t.Errorf("helper = %+v", h)
	}
}

func TestScan_HelperRejectsNonTernary(t *testing.T) {
	for _, src := range []string{
		`const f = (v) => v + 1;`,
		`const g = (a, b) => a ? "x" : "y";`,
		`const h = (v) => other ? "x" : "y";`,
	} {
		res := Scan(src, zap.NewNop())
		if len(res.Helpers) != 0 {
			t.Errorf("%s: recognized %+v, want none", src, res.Helpers)
		}
	}
}

func TestScan_MultipleConstructs(t *testing.T) {
	src := "const weight = (v) => v ? \"bold\" : \"normal\";\n" +
		"const A = styled.div`\n  color: red;\n`;\n" +
		"const B = styled.span`\n  color: blue;\n`;"
	res := Scan(src, zap.NewNop())

	if len(res.Occurrences) != 2 {
		t.Fatalf("occurrences = %d, want 2", len(res.Occurrences))
	}
	if res.Occurrences[0].Name != "A" || res.Occurrences[1].Name != "B" {
		t.Errorf("names = %q, %q", res.Occurrences[0].Name, res.Occurrences[1].Name)
	}
	if _, ok := res.Helpers["weight"]; !ok {
		t.Error("helper lost among other constructs")
	}
}

func TestScan_UnrelatedSource(t *testing.T) {
	src := "function add(a, b) { return a + b; }\nexport default add;"
	res := Scan(src, zap.NewNop())
	if len(res.Occurrences) != 0 {
		t.Errorf("occurrences = %+v, want none", res.Occurrences)
	}
}

func TestScan_LineNumbers(t *testing.T) {
	src := "// header\n\nconst Button = styled.button`\n  color: red;\n`;"
	res := Scan(src, zap.NewNop())
	if len(res.Occurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1", len(res.Occurrences))
	}
	if res.Occurrences[0].Line != 3 {
		t.Errorf("line = %d, want 3", res.Occurrences[0].Line)
	}
}
