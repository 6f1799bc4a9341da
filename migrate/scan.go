// Package migrate orchestrates the migration of styled-component source
// files: scanning for templates, lowering them and emitting rewritten
// sources, with dry-run, diff and caching support around it.
package migrate

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
	"go.uber.org/zap"

	"destyle/jsexpr"
	"destyle/lower"
)

// OccurrenceKind classifies a tagged-template construct found in source.
type OccurrenceKind int

const (
	// OccurrenceStyledTag is styled.div`...` and friends.
	OccurrenceStyledTag OccurrenceKind = iota
	// OccurrenceStyledComponent is styled(Component)`...`.
	OccurrenceStyledComponent
	// OccurrenceCSSHelper is a css`...` mixin.
	OccurrenceCSSHelper
	// OccurrenceKeyframes is keyframes`...`.
	OccurrenceKeyframes
	// OccurrenceGlobalStyle is createGlobalStyle`...`.
	OccurrenceGlobalStyle
)

// Occurrence is one tagged-template construct: its binding name, the wrapped
// tag or component, the raw template body and its position in the file.
type Occurrence struct {
	Kind OccurrenceKind
	Name string // name of the const the construct is assigned to
	Tag  string // html tag or wrapped component name
	Body string // template literal body, backticks stripped
	Line int    // 1-based line of the construct
}

// ScanResult is everything the scanner extracted from one source file.
type ScanResult struct {
	Occurrences []Occurrence
	// Helpers are module-local ternary-returning functions usable by the
	// classifier's helper-call matcher.
	Helpers map[string]lower.Helper
}

// scanState drives the token state machine.
type scanState int

const (
	stateNeutral      scanState = iota
	stateAfterStyled            // saw `styled`
	stateStyledDot              // saw `styled.`
	stateStyledParen            // saw `styled(`
	stateWantTemplate           // construct complete, template literal expected
	stateAssignInit             // saw `const name =`, capturing the initializer
)

type scanner struct {
	lex  *js.Lexer
	log  *zap.Logger
	line int

	state     scanState
	pending   Occurrence // construct being recognized
	constName string     // name of the const currently being assigned
	initSrc   strings.Builder
	initDepth int

	res ScanResult
}

// Scan tokenizes a source file and extracts styled-component constructs and
// lowerable helper functions. It never fails: unrecognized source is simply
// not extracted.
func Scan(src string, log *zap.Logger) *ScanResult {
	if log == nil {
		log = zap.NewNop()
	}
	s := &scanner{
		lex:  js.NewLexer(parse.NewInputString(src)),
		log:  log.Named("scan"),
		line: 1,
		res:  ScanResult{Helpers: make(map[string]lower.Helper)},
	}
	s.run()
	return &s.res
}

func (s *scanner) run() {
	var prevName string // last identifier, for `const x =` tracking
	expectName := false

	for {
		tt, data := s.lex.Next()
		if tt == js.ErrorToken {
			s.flushInit()
			return
		}
		text := string(data)
		startLine := s.line
		s.line += strings.Count(text, "\n")

		switch tt {
		case js.WhitespaceToken, js.CommentToken, js.CommentLineTerminatorToken:
			s.captureInit(text)
			continue
		case js.LineTerminatorToken:
			s.captureInit(text)
			continue
		}

		switch s.state {
		case stateAfterStyled:
			switch tt {
			case js.DotToken:
				s.state = stateStyledDot
				continue
			case js.OpenParenToken:
				s.state = stateStyledParen
				continue
			}
			s.state = stateNeutral

		case stateStyledDot:
			if tt == js.IdentifierToken {
				s.pending.Tag = text
				s.state = stateWantTemplate
				continue
			}
			s.state = stateNeutral

		case stateStyledParen:
			switch tt {
			case js.IdentifierToken:
				s.pending.Tag = text
				continue
			case js.CloseParenToken:
				s.pending.Kind = OccurrenceStyledComponent
				s.state = stateWantTemplate
				continue
			}
			s.state = stateNeutral

		case stateWantTemplate:
			switch tt {
			case js.TemplateToken:
				s.pending.Body = stripBackticks(text)
				s.emit()
				continue
			case js.TemplateStartToken:
				body, ok := s.captureTemplate(text)
				if !ok {
					s.state = stateNeutral
					continue
				}
				s.pending.Body = stripBackticks(body)
				s.emit()
				continue
			}
			s.log.Debug("Construct without template literal", zap.String("name", s.pending.Name), zap.Int("line", startLine))
			s.state = stateNeutral
		}

		if s.state == stateAssignInit {
			if s.beginsConstruct(tt, text, startLine) {
				continue
			}
			s.trackInit(tt, text)
			continue
		}

		// neutral
		switch tt {
		case js.ConstToken, js.VarToken, js.LetToken:
			expectName = true
		case js.IdentifierToken:
			if expectName {
				prevName = text
				expectName = false
				continue
			}
			if s.beginsConstruct(tt, text, startLine) {
				continue
			}
		case js.EqToken:
			if prevName != "" {
				s.constName = prevName
				s.initSrc.Reset()
				s.initDepth = 0
				s.state = stateAssignInit
				prevName = ""
				continue
			}
		default:
			expectName = false
			prevName = ""
		}
	}
}

// beginsConstruct starts recognition when the token is one of the tagged
// template callees.
func (s *scanner) beginsConstruct(tt js.TokenType, text string, line int) bool {
	if tt != js.IdentifierToken {
		return false
	}
	switch text {
	case "styled":
		s.pending = Occurrence{Kind: OccurrenceStyledTag, Name: s.constName, Line: line}
		s.state = stateAfterStyled
		return true
	case "css":
		s.pending = Occurrence{Kind: OccurrenceCSSHelper, Name: s.constName, Line: line}
		s.state = stateWantTemplate
		return true
	case "keyframes":
		s.pending = Occurrence{Kind: OccurrenceKeyframes, Name: s.constName, Line: line}
		s.state = stateWantTemplate
		return true
	case "createGlobalStyle":
		s.pending = Occurrence{Kind: OccurrenceGlobalStyle, Name: s.constName, Line: line}
		s.state = stateWantTemplate
		return true
	}
	return false
}

func (s *scanner) emit() {
	s.res.Occurrences = append(s.res.Occurrences, s.pending)
	s.pending = Occurrence{}
	s.constName = ""
	s.initSrc.Reset()
	s.state = stateNeutral
}

// captureTemplate consumes tokens until the template that opened with
// `start` closes, returning the full raw text. Nested templates and
// interpolations are balanced by construction of the token stream.
func (s *scanner) captureTemplate(start string) (string, bool) {
	var sb strings.Builder
	sb.WriteString(start)
	depth := 1
	for depth > 0 {
		tt, data := s.lex.Next()
		if tt == js.ErrorToken {
			return "", false
		}
		text := string(data)
		s.line += strings.Count(text, "\n")
		sb.WriteString(text)
		switch tt {
		case js.TemplateStartToken:
			depth++
		case js.TemplateEndToken:
			depth--
		}
	}
	return sb.String(), true
}

func stripBackticks(s string) string {
	s = strings.TrimPrefix(s, "`")
	return strings.TrimSuffix(s, "`")
}

// captureInit appends trivia to the initializer being captured.
func (s *scanner) captureInit(text string) {
	if s.state == stateAssignInit {
		s.initSrc.WriteString(text)
	}
}

// trackInit accumulates initializer tokens until the statement ends at
// nesting depth zero, then tries to recognize a helper.
func (s *scanner) trackInit(tt js.TokenType, text string) {
	switch tt {
	case js.OpenParenToken, js.OpenBraceToken, js.OpenBracketToken:
		s.initDepth++
	case js.CloseParenToken, js.CloseBraceToken, js.CloseBracketToken:
		s.initDepth--
	case js.SemicolonToken:
		if s.initDepth <= 0 {
			s.flushInit()
			return
		}
	}
	s.initSrc.WriteString(text)
}

// flushInit inspects a completed initializer: a single-parameter arrow whose
// body is a ternary on that parameter with literal arms is a lowerable
// helper.
func (s *scanner) flushInit() {
	defer func() {
		s.initSrc.Reset()
		s.constName = ""
		s.state = stateNeutral
	}()

	src := strings.TrimSpace(s.initSrc.String())
	if s.constName == "" || src == "" {
		return
	}
	expr, err := jsexpr.Parse(src)
	if err != nil {
		return
	}
	body, bind := expr.Unwrap()
	if body == nil || body.Kind != jsexpr.KindCond || bind.Name == "" {
		return
	}
	condPath := body.Cond.MemberPath()
	if len(condPath) != 1 || condPath[0] != bind.Name {
		return
	}
	truthy, ok := body.Then.IsString()
	if !ok {
		return
	}
	falsy, ok := body.Else.IsString()
	if !ok {
		return
	}
	s.res.Helpers[s.constName] = lower.Helper{Truthy: truthy, Falsy: falsy}
	s.log.Debug("Recognized ternary helper", zap.String("name", s.constName))
}
