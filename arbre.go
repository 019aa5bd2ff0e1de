// Package arbre parses XML-like markup into a keyed tree. It is not an XML
// parser: no namespaces, no DTDs, no CDATA, and only the five predefined
// entities are decoded. Malformed input still yields a tree; strict mode
// additionally surfaces what was wrong.
package arbre

import (
	"fmt"
	"strings"
)

// whitespace is the set of bytes treated as insignificant around tags, names
// and values. isSpace must stay in sync with it.
const whitespace = " \t\n\v\r"

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\v' || c == '\r'
}

// Options configures a Parser.
type Options struct {
	// Strict surfaces the collected diagnostics as an error from Err and
	// ParseWithOptions. The tree is built best-effort either way.
	Strict bool
}

// Parser holds one parsed document. The zero value is not usable; construct
// with NewParser or NewParserWithOptions, which parse eagerly. A Parser is
// read-only after construction, so concurrent lookups are safe.
type Parser struct {
	body   []byte
	length int
	shift  int
	opts   Options
	root   *Node
	errors ParseErrors
	tagMap map[string][]*Node
}

// Parse builds a tree from input, tolerating malformed markup. The returned
// root is never nil; it is a synthetic node with an empty name whose children
// are the document's top-level elements.
func Parse(input string) *Node {
	return NewParser(input).Root()
}

// ParseWithOptions parses input and, in strict mode, returns the collected
// diagnostics as a ParseErrors alongside the best-effort tree.
func ParseWithOptions(input string, opts Options) (*Node, error) {
	p := NewParserWithOptions(input, opts)
	return p.Root(), p.Err()
}

func NewParser(input string) *Parser {
	return NewParserWithOptions(input, Options{})
}

func NewParserWithOptions(input string, opts Options) *Parser {
	start, end := 0, len(input)

	for start < end && isSpace(input[start]) {
		start++
	}
	for end > start && isSpace(input[end-1]) {
		end--
	}

	body := []byte(input[start:end])

	p := &Parser{
		body:   body,
		length: len(body),
		shift:  start,
		opts:   opts,
		root:   NewNode(""),
		tagMap: make(map[string][]*Node),
	}

	p.parse()

	return p
}

// Root returns the synthetic root of the parsed tree.
func (p *Parser) Root() *Node {
	return p.root
}

// Errors returns every diagnostic collected during the parse, in document
// order, regardless of mode.
func (p *Parser) Errors() ParseErrors {
	return p.errors
}

// Success reports whether the document parsed without diagnostics.
func (p *Parser) Success() bool {
	return len(p.errors) == 0
}

// Err returns the diagnostics as an error when the parser is strict and at
// least one was recorded, nil otherwise.
func (p *Parser) Err() error {
	if !p.opts.Strict || len(p.errors) == 0 {
		return nil
	}
	return p.errors
}

// First returns the first node with the given name in document order, or nil.
func (p *Parser) First(name string) *Node {
	if tags := p.tagMap[name]; len(tags) > 0 {
		return tags[0]
	}
	return nil
}

// Filter returns every node with the given name in document order.
func (p *Parser) Filter(name string) []*Node {
	tags := p.tagMap[name]
	result := make([]*Node, len(tags))
	copy(result, tags)

	return result
}

// tagKind is what a scanned tag span turned out to be.
type tagKind int

const (
	tagOpen tagKind = iota
	tagClose
	tagSelfClosing
	tagInstruction
)

type tagToken struct {
	kind  tagKind
	name  string
	attrs *Attributes
	start int
	end   int
}

// frame is one level of the open-element stack. start remembers where the
// element's open tag began, for diagnostics when it is never closed.
type frame struct {
	node  *Node
	start int
}

func (p *Parser) parse() {
	stack := []frame{{node: p.root}}

	index := 0
	lastTagEnd := 0

	for {
		open := p.seek('<', index)

		if open == -1 {
			p.checkTrailing(lastTagEnd)
			break
		}

		end := p.seek('>', open+1)

		if end == -1 {
			p.report(ErrUnterminatedTag, open, "tag is missing its closing '>'")
			break
		}

		tok := p.classifyTag(open, end)

		switch tok.kind {
		case tagOpen:
			if tok.name != "" {
				node := NewNode(tok.name)
				node.Attributes = tok.attrs
				stack = append(stack, frame{node: node, start: open})
			}

		case tagSelfClosing, tagInstruction:
			if tok.name != "" {
				node := NewNode(tok.name)
				node.Attributes = tok.attrs
				stack[len(stack)-1].node.Attach(node)
			}

		case tagClose:
			top := stack[len(stack)-1]

			if len(stack) > 1 && top.node.Name == tok.name {
				if text := p.captureText(lastTagEnd, open); text != "" {
					top.node.Text = text
				}

				stack = stack[:len(stack)-1]
				stack[len(stack)-1].node.Attach(top.node)
			} else {
				// no recovery attempt: the close tag is dropped and the
				// open element stays on the stack
				message := fmt.Sprintf("close tag %q has nothing to close", tok.name)
				if len(stack) > 1 {
					message = fmt.Sprintf("close tag %q does not match open tag %q", tok.name, top.node.Name)
				}
				p.report(ErrTagMismatch, open, message)
			}
		}

		// every scanned span advances the text anchor, matched or not
		lastTagEnd = tok.end
		index = tok.end
	}

	for len(stack) > 1 {
		top := stack[len(stack)-1]
		p.report(ErrUnclosedTag, top.start, fmt.Sprintf("tag %q is never closed", top.node.Name))

		stack = stack[:len(stack)-1]
		stack[len(stack)-1].node.Attach(top.node)
	}

	p.buildIndex()
}

// seek returns the index of the first c at or after index, or -1.
func (p *Parser) seek(c byte, index int) int {
	for index < p.length {
		if p.body[index] == c {
			return index
		}
		index++
	}

	return -1
}

// classifyTag decides what the span between '<' at start and '>' at end is.
// The markers are examined in order: a leading slash means a close tag, a
// leading question mark a processing instruction (with a trailing question
// mark dropped from the attribute span), a trailing slash a self-closing tag.
// The name is the maximal run up to the first whitespace byte; the rest of
// the interior is tokenized into attributes, except for close tags.
func (p *Parser) classifyTag(start, end int) tagToken {
	tok := tagToken{kind: tagOpen, start: start, end: end + 1}

	lo := start + 1
	hi := end

	switch {
	case lo < hi && p.body[lo] == '/':
		tok.kind = tagClose
		lo++
	case lo < hi && p.body[lo] == '?':
		tok.kind = tagInstruction
		lo++
		if lo < hi && p.body[hi-1] == '?' {
			hi--
		}
	case lo < hi && p.body[hi-1] == '/':
		tok.kind = tagSelfClosing
		hi--
	}

	nameEnd := lo
	for nameEnd < hi && !isSpace(p.body[nameEnd]) {
		nameEnd++
	}

	tok.name = string(p.body[lo:nameEnd])

	if tok.kind == tagClose {
		return tok
	}

	tok.attrs = p.parseAttributes(p.body[nameEnd:hi], nameEnd)

	return tok
}

// captureText lifts the text between two document offsets: trimmed, entity
// decoded, empty when only whitespace remains.
func (p *Parser) captureText(start, end int) string {
	if start >= end {
		return ""
	}

	raw := strings.Trim(string(p.body[start:end]), whitespace)

	if raw == "" {
		return ""
	}

	return decodeEntities(raw)
}

// checkTrailing records a diagnostic when non-whitespace content follows the
// last tag. Text is only ever captured by a close tag, so this content would
// otherwise vanish silently.
func (p *Parser) checkTrailing(from int) {
	at := from

	for at < p.length && isSpace(p.body[at]) {
		at++
	}

	if at == p.length {
		return
	}

	p.report(ErrTrailingContent, at, "content after the last tag is not part of any element")
}

func (p *Parser) report(kind ErrorKind, offset int, message string) {
	p.errors = append(p.errors, ParseError{
		Kind:    kind,
		Offset:  p.shift + offset,
		Message: message,
	})
}

// buildIndex walks the finished tree once so First and Filter answer in
// document order without rescanning.
func (p *Parser) buildIndex() {
	var walk func(*Node)
	walk = func(n *Node) {
		for _, key := range n.Children {
			child := n.ChildMap[key]
			p.tagMap[child.Name] = append(p.tagMap[child.Name], child)
			walk(child)
		}
	}
	walk(p.root)
}
