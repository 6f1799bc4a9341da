// Package adapter implements the resolution policy behind the lowering
// engine's boundary interface: theme token paths become CSS variable
// references, and an allowlist decides which helper calls pass through.
package adapter

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"destyle/lower"
)

// Theme resolves theme paths against a token tree loaded from the project's
// theme definition. When no tree is loaded every path resolves; with a tree,
// unknown paths decline so the classifier can fall back.
type Theme struct {
	prefix  string
	tokens  map[string]any
	helpers map[string]bool
	log     *zap.Logger
}

func NewTheme(prefix string, log *zap.Logger) *Theme {
	if log == nil {
		log = zap.NewNop()
	}
	if prefix == "" {
		prefix = "theme"
	}
	return &Theme{
		prefix:  prefix,
		helpers: make(map[string]bool),
		log:     log.Named("adapter"),
	}
}

// LoadTokens parses a YAML token tree. Nested mappings mirror the theme
// object's shape; leaf values are the token values (unused here, presence is
// what matters).
func (t *Theme) LoadTokens(data []byte) error {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unable to parse theme tokens: %w", err)
	}
	t.tokens = tree
	return nil
}

// AllowHelper adds a callee name to the pass-through allowlist.
func (t *Theme) AllowHelper(name string) {
	t.helpers[name] = true
}

// ResolveValue maps a theme path to a CSS variable reference. Declines when
// a token tree is loaded and the path is not in it.
func (t *Theme) ResolveValue(req lower.Request) (*lower.Resolution, bool) {
	switch req.Kind {
	case lower.ResolveTheme:
		if len(req.Path) == 0 {
			return nil, false
		}
		if t.tokens != nil && !t.hasToken(req.Path) {
			t.log.Debug("Theme path not in token tree", zap.String("path", strings.Join(req.Path, ".")))
			return nil, false
		}
		return &lower.Resolution{Expr: t.variable(req.Path, req.Fallback)}, true
	case lower.ResolveCSSVariable:
		if req.Name == "" {
			return nil, false
		}
		name := strings.TrimPrefix(req.Name, "--")
		if req.Fallback != "" {
			return &lower.Resolution{Expr: fmt.Sprintf(`"var(--%s, %s)"`, name, req.Fallback)}, true
		}
		return &lower.Resolution{Expr: fmt.Sprintf(`"var(--%s)"`, name)}, true
	}
	return nil, false
}

// ResolveCall passes allowlisted helper calls through unchanged and declines
// everything else.
func (t *Theme) ResolveCall(req lower.CallRequest) (*lower.Resolution, bool) {
	if !t.helpers[req.CalleeName] {
		return nil, false
	}
	return &lower.Resolution{
		Expr: req.CalleeSource + "(" + strings.Join(req.Args, ", ") + ")",
	}, true
}

func (t *Theme) hasToken(path []string) bool {
	var cur any = t.tokens
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		cur, ok = m[seg]
		if !ok {
			return false
		}
	}
	return true
}

func (t *Theme) variable(path []string, fallback string) string {
	segs := make([]string, 0, len(path)+1)
	segs = append(segs, t.prefix)
	for _, p := range path {
		segs = append(segs, kebab(p))
	}
	name := "--" + strings.Join(segs, "-")
	if fallback != "" {
		return fmt.Sprintf(`"var(%s, %s)"`, name, fallback)
	}
	return fmt.Sprintf(`"var(%s)"`, name)
}

// kebab converts a camelCase path segment to kebab-case.
func kebab(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
