package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Layout identifies the layout manager a node is placed with. It is
// fixed by the node's opening bracket and never changes afterwards.
type Layout string

const (
	LayoutPack  Layout = "pack"
	LayoutGrid  Layout = "grid"
	LayoutPlace Layout = "place"
)

// ValueKind discriminates the variants of Value.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueList
)

// Value is a single attribute value: a string, a number, or a list of
// further values. Exactly one of Str, Num, List is meaningful, selected
// by Kind.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	List []Value
}

// String renders the value the way it would be written in markup.
func (v Value) String() string {
	switch v.Kind {
	case ValueNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case ValueList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return v.Str
	}
}

// Float returns the value as a float64, coercing numeric-looking
// strings. The second return is false when no number can be produced.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case ValueNumber:
		return v.Num, true
	case ValueString:
		n, err := strconv.ParseFloat(v.Str, 64)
		return n, err == nil
	}
	return 0, false
}

// Node is one parsed markup element. A Node tree is complete the
// moment the parser returns it; nothing mutates it afterwards.
type Node struct {
	Name       string
	Attributes map[string]Value
	Children   []*Node
	Layout     Layout
}

// Attr returns the named attribute.
func (n *Node) Attr(key string) (Value, bool) {
	v, ok := n.Attributes[key]
	return v, ok
}

// AttrString returns the named attribute rendered as a string, or ""
// when absent.
func (n *Node) AttrString(key string) string {
	v, ok := n.Attributes[key]
	if !ok {
		return ""
	}
	return v.String()
}

// Document pairs a parsed tree with its source file.
type Document struct {
	Path string
	Root *Node
}

// Sentinel parse failures. Errors returned by this package unwrap to
// exactly one of these.
var (
	ErrInvalidFormat      = errors.New("invalid tkml format")
	ErrMalformedAttribute = errors.New("malformed attribute")
	ErrUnterminatedQuote  = errors.New("unterminated quote")
	ErrUnexpectedEOF      = errors.New("unexpected end of input")
)

// ParseError reports where and how a parse failed.
type ParseError struct {
	Kind   error // one of the sentinel errors
	Offset int   // byte offset into the input
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v at offset %d", e.Kind, e.Offset)
	}
	return fmt.Sprintf("%v at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

func (e *ParseError) Unwrap() error { return e.Kind }

// scanner is a cursor over an immutable input string. Parsing only
// ever advances pos; the input is never re-sliced.
type scanner struct {
	input string
	pos   int
}

func (s *scanner) eof() bool    { return s.pos >= len(s.input) }
func (s *scanner) peek() byte   { return s.input[s.pos] }
func (s *scanner) rest() string { return s.input[s.pos:] }

func (s *scanner) errf(kind error, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Offset: s.pos, Detail: fmt.Sprintf(format, args...)}
}

// snippet returns a short prefix of the unconsumed input for error
// messages.
func (s *scanner) snippet() string {
	r := s.rest()
	if len(r) > 24 {
		r = r[:24] + "..."
	}
	return r
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.peek()) {
		s.pos++
	}
}

// skipComments consumes any run of whitespace and comments before a
// tag. Both comment forms are line comments: a unit starting with //
// or /* is skipped to the end of its line. A /* opener is never
// matched against */.
func (s *scanner) skipComments() {
	for {
		s.skipSpace()
		r := s.rest()
		if !strings.HasPrefix(r, "//") && !strings.HasPrefix(r, "/*") {
			return
		}
		i := strings.IndexByte(r, '\n')
		if i < 0 {
			s.pos = len(s.input)
			return
		}
		s.pos += i + 1
	}
}

// layoutFor maps an opening bracket to its layout manager and the
// character that closes tags in that dialect.
func layoutFor(open byte) (Layout, byte, bool) {
	switch open {
	case '<':
		return LayoutPack, '>', true
	case '{':
		return LayoutGrid, '}', true
	case '[':
		return LayoutPlace, ']', true
	}
	return "", 0, false
}

// tokenChar reports whether c may appear in a tag name or unquoted
// token. The excluded set is dialect-agnostic: all three close markers
// are excluded no matter which dialect is active.
func tokenChar(c byte) bool {
	switch c {
	case '/', '}', ']', '>':
		return false
	}
	return !isSpace(c)
}

// Parse reads one node from input. It returns the node, the input
// remaining after it, and any error. A nil node with a nil error means
// the input began with a closing tag; the remainder then points just
// past that tag. Recursive callers use this to terminate their child
// collection loop.
func Parse(input string) (*Node, string, error) {
	s := &scanner{input: input}
	node, err := s.parseNode()
	if err != nil {
		return nil, "", err
	}
	return node, s.rest(), nil
}

// ParseDocument parses a complete markup buffer holding one top-level
// element. Trailing whitespace and comments are allowed; anything else
// after the element is an error.
func ParseDocument(input string) (*Node, error) {
	s := &scanner{input: input}
	node, err := s.parseNode()
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, s.errf(ErrInvalidFormat, "closing tag at top level")
	}
	s.skipComments()
	if !s.eof() {
		return nil, s.errf(ErrInvalidFormat, "trailing content %q", s.snippet())
	}
	return node, nil
}

// ParseFile reads and parses a single markup file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := ParseDocument(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Document{Path: path, Root: root}, nil
}

// ParseDirectory recursively parses all .tkml files under dir. Files
// that parse are returned; failures are collected and joined into the
// returned error so a single run reports every broken file.
func ParseDirectory(dir string) ([]*Document, error) {
	var docs []*Document
	var errs []error
	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(path), ".tkml") {
			return nil
		}
		doc, err := ParseFile(path)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return docs, errors.Join(errs...)
}

func (s *scanner) parseNode() (*Node, error) {
	s.skipComments()
	if s.eof() {
		return nil, s.errf(ErrUnexpectedEOF, "element expected")
	}

	layout, closeChar, ok := layoutFor(s.peek())
	if !ok {
		return nil, s.errf(ErrInvalidFormat, "unexpected %q", s.snippet())
	}
	s.pos++

	// A '/' right after the open bracket is a closing tag, not a new
	// node. Consume through the close char and report it to the caller.
	if !s.eof() && s.peek() == '/' {
		i := strings.IndexByte(s.rest(), closeChar)
		if i < 0 {
			return nil, s.errf(ErrUnexpectedEOF, "unterminated closing tag")
		}
		s.pos += i + 1
		return nil, nil
	}

	node := &Node{Layout: layout, Attributes: make(map[string]Value)}

	start := s.pos
	for !s.eof() && tokenChar(s.peek()) {
		s.pos++
	}
	node.Name = s.input[start:s.pos]
	if node.Name == "" {
		if s.eof() {
			return nil, s.errf(ErrUnexpectedEOF, "unterminated tag")
		}
		return nil, s.errf(ErrInvalidFormat, "missing tag name at %q", s.snippet())
	}

	s.skipSpace()
	for {
		if s.eof() {
			return nil, s.errf(ErrUnexpectedEOF, "unterminated %s tag", node.Name)
		}
		if c := s.peek(); c == '/' || c == closeChar {
			break
		}
		if err := s.parseAttribute(node); err != nil {
			return nil, err
		}
		s.skipSpace()
	}

	// Self-closing: the '/' must be immediately followed by the
	// dialect's close char. "</ >" is rejected rather than silently
	// skipping a character.
	if s.peek() == '/' {
		s.pos++
		if s.eof() {
			return nil, s.errf(ErrUnexpectedEOF, "unterminated %s tag", node.Name)
		}
		if s.peek() != closeChar {
			return nil, s.errf(ErrInvalidFormat, "expected %q after '/' in %s tag", string(closeChar), node.Name)
		}
		s.pos++
		return node, nil
	}

	s.pos++ // close char of the opening tag
	for {
		child, err := s.parseNode()
		if err != nil {
			return nil, err
		}
		if child == nil {
			return node, nil
		}
		node.Children = append(node.Children, child)
	}
}

func (s *scanner) parseAttribute(node *Node) error {
	start := s.pos
	for {
		if s.eof() {
			return s.errf(ErrMalformedAttribute, "missing '=' after %q", strings.TrimSpace(s.input[start:s.pos]))
		}
		c := s.peek()
		if c == '=' {
			break
		}
		if c == '/' || c == '>' || c == '}' || c == ']' {
			return s.errf(ErrMalformedAttribute, "missing '=' after %q", strings.TrimSpace(s.input[start:s.pos]))
		}
		s.pos++
	}
	key := strings.TrimSpace(s.input[start:s.pos])
	if key == "" {
		return s.errf(ErrMalformedAttribute, "empty attribute name")
	}
	s.pos++ // '='

	value, err := s.parseValue()
	if err != nil {
		return err
	}
	// Last write wins on duplicate keys.
	node.Attributes[key] = value
	return nil
}

func (s *scanner) parseValue() (Value, error) {
	s.skipSpace()
	if s.eof() {
		return Value{}, s.errf(ErrUnexpectedEOF, "attribute value expected")
	}
	switch c := s.peek(); c {
	case '\'', '"':
		return s.parseQuoted(c)
	case '[':
		return s.parseList()
	default:
		return s.parseToken()
	}
}

// parseQuoted scans to the next unescaped occurrence of quote. Escape
// handling is limited to the quote character itself: \' inside a
// single-quoted literal yields ', every other backslash passes through
// verbatim.
func (s *scanner) parseQuoted(quote byte) (Value, error) {
	openAt := s.pos
	s.pos++
	var b strings.Builder
	for !s.eof() {
		c := s.peek()
		switch {
		case c == '\\' && s.pos+1 < len(s.input) && s.input[s.pos+1] == quote:
			b.WriteByte(quote)
			s.pos += 2
		case c == quote:
			s.pos++
			return Value{Kind: ValueString, Str: b.String()}, nil
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
	s.pos = openAt
	return Value{}, s.errf(ErrUnterminatedQuote, "no closing %s", string(quote))
}

func (s *scanner) parseList() (Value, error) {
	s.pos++ // '['
	list := []Value{}
	for {
		s.skipSpace()
		if s.eof() {
			return Value{}, s.errf(ErrUnexpectedEOF, "unterminated list")
		}
		if s.peek() == ']' {
			s.pos++
			return Value{Kind: ValueList, List: list}, nil
		}
		elem, err := s.parseValue()
		if err != nil {
			return Value{}, err
		}
		list = append(list, elem)
	}
}

// parseToken scans a maximal run of token characters and attempts
// numeric coercion before falling back to a plain string.
func (s *scanner) parseToken() (Value, error) {
	start := s.pos
	for !s.eof() && tokenChar(s.peek()) {
		s.pos++
	}
	raw := s.input[start:s.pos]
	if raw == "" {
		return Value{}, s.errf(ErrMalformedAttribute, "empty attribute value at %q", s.snippet())
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return Value{Kind: ValueNumber, Num: n}, nil
	}
	return Value{Kind: ValueString, Str: raw}, nil
}
