package css

import (
	"strings"
)

// The styled-template dialect is not standards CSS: rules nest, selectors
// start with `&`, and interpolation placeholders appear in statement and
// selector positions. Standards parsers silently drop or mangle those, so the
// tree is produced by a small recursive scanner and the builder compensates
// for what even this scan cannot represent (see the recovery pass).

type nodeKind int

const (
	nodeRule nodeKind = iota
	nodeAtRule
	nodeDecl
	nodeComment
)

// node is one element of the template parse tree. text holds the selector
// for rules, the full prelude for at-rules, the raw declaration text for
// declarations and the block-comment form for comments.
type node struct {
	kind     nodeKind
	text     string
	line     int // 1-based line in the template text
	children []*node
}

type scanner struct {
	src  string
	pos  int
	line int
}

// parseNodes builds the template parse tree.
func parseNodes(raw string) []*node {
	s := &scanner{src: raw, line: 1}
	return s.parseBlock()
}

func (s *scanner) parseBlock() []*node {
	var nodes []*node
	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return nodes
		}
		if s.src[s.pos] == '}' {
			s.advance(1)
			return nodes
		}

		switch {
		case s.has("/*"):
			nodes = append(nodes, s.scanBlockComment())
		case s.has("//"):
			nodes = append(nodes, s.scanLineComment())
		case s.src[s.pos] == '@':
			nodes = append(nodes, s.scanAtRule())
		default:
			if n := s.scanStatement(); n != nil {
				nodes = append(nodes, n)
			}
		}
	}
}

func (s *scanner) scanBlockComment() *node {
	n := &node{kind: nodeComment, line: s.line}
	end := strings.Index(s.src[s.pos:], "*/")
	if end < 0 {
		n.text = s.src[s.pos:]
		s.advance(len(s.src) - s.pos)
		return n
	}
	n.text = s.src[s.pos : s.pos+end+2]
	s.advance(end + 2)
	return n
}

// scanLineComment rewrites `// x` into block form without a trailing space
// before the closer. The builder keys off exactly that to tell converted line
// comments from authored block comments.
func (s *scanner) scanLineComment() *node {
	n := &node{kind: nodeComment, line: s.line}
	end := strings.IndexByte(s.src[s.pos:], '\n')
	var body string
	if end < 0 {
		body = s.src[s.pos+2:]
		s.advance(len(s.src) - s.pos)
	} else {
		body = s.src[s.pos+2 : s.pos+end]
		s.advance(end) // newline handled by skipSpace
	}
	n.text = "/*" + strings.TrimRight(body, " \t") + "*/"
	return n
}

func (s *scanner) scanAtRule() *node {
	n := &node{kind: nodeAtRule, line: s.line}
	text, term := s.scanUntil("{;}")
	n.text = strings.TrimSpace(text)
	switch term {
	case '{':
		s.advance(1)
		n.children = s.parseBlock()
	case ';':
		s.advance(1)
	}
	return n
}

// scanStatement reads either a nested rule (text up to `{`) or a declaration
// (text up to `;`, `}` or end of input).
func (s *scanner) scanStatement() *node {
	n := &node{line: s.line}
	text, term := s.scanUntil("{;}")
	text = strings.TrimSpace(text)
	switch term {
	case '{':
		s.advance(1)
		n.kind = nodeRule
		n.text = text
		n.children = s.parseBlock()
		return n
	case ';':
		s.advance(1)
	}
	// '}' stays for parseBlock to consume
	if text == "" {
		return nil
	}
	n.kind = nodeDecl
	n.text = text
	return n
}

// scanUntil advances to the first unnested occurrence of any terminator,
// honoring parentheses, quotes and comments, and returns the consumed text.
// The terminator itself is not consumed; 0 means end of input.
func (s *scanner) scanUntil(terms string) (string, byte) {
	start := s.pos
	parens := 0
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if parens == 0 && strings.IndexByte(terms, c) >= 0 {
			return s.src[start:s.pos], c
		}
		switch c {
		case '(':
			parens++
			s.advance(1)
		case ')':
			if parens > 0 {
				parens--
			}
			s.advance(1)
		case '\'', '"':
			s.skipQuoted(c)
		case '/':
			if s.has("/*") {
				s.scanBlockComment()
			} else {
				s.advance(1)
			}
		default:
			s.advance(1)
		}
	}
	return s.src[start:], 0
}

func (s *scanner) skipQuoted(q byte) {
	s.advance(1)
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' {
			s.advance(2)
			continue
		}
		s.advance(1)
		if c == q {
			return
		}
	}
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case ' ', '\t', '\r', '\n':
			s.advance(1)
		default:
			return
		}
	}
}

func (s *scanner) has(prefix string) bool {
	return strings.HasPrefix(s.src[s.pos:], prefix)
}

func (s *scanner) advance(n int) {
	for i := 0; i < n && s.pos < len(s.src); i++ {
		if s.src[s.pos] == '\n' {
			s.line++
		}
		s.pos++
	}
}
