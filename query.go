package arbre

import "strings"

// Query is a selector over the tree. A selector is a sequence of segments
// separated by whitespace (descendant) or '>' (direct child); each segment
// conjoins qualifiers that must all hold on one node: a tag name, #id for id
// attribute equality, .word for a whitespace-separated word of the class
// attribute, or * for any node.
type Query struct {
	query string
	roots []*Node
}

// Query anchors a selector at the document root.
func (p *Parser) Query(query string) *Query {
	return &Query{query: query, roots: []*Node{p.root}}
}

// Query anchors a selector at this node's subtree.
func (n *Node) Query(query string) *Query {
	return &Query{query: query, roots: []*Node{n}}
}

// Query narrows with a further descendant selector.
func (q *Query) Query(query string) *Query {
	return &Query{query: q.query + " " + query, roots: q.roots}
}

// Get evaluates the selector and returns the matches in document order,
// without duplicates. An unmatched selector returns nil.
func (q *Query) Get() []*Node {
	current := q.roots
	child := false

	for _, token := range splitSelector(q.query) {
		if token == ">" {
			child = true
			continue
		}

		qualifiers := splitQualifiers(token)

		if len(qualifiers) == 0 {
			child = false
			continue
		}

		if len(current) == 0 {
			return nil
		}

		seen := make(map[*Node]struct{})
		var matched []*Node
		add := func(n *Node) {
			if _, ok := seen[n]; ok {
				return
			}
			seen[n] = struct{}{}
			matched = append(matched, n)
		}

		if child {
			for _, node := range current {
				for _, c := range node.Nodes() {
					if matchQualifiers(c, qualifiers) {
						add(c)
					}
				}
			}
			child = false
		} else {
			for _, node := range current {
				collectDeep(node, qualifiers, add)
			}
		}

		current = matched
	}

	return current
}

// First returns the first match in document order, or nil.
func (q *Query) First() *Node {
	nodes := q.Get()

	if len(nodes) == 0 {
		return nil
	}

	return nodes[0]
}

// Last returns the last match in document order, or nil.
func (q *Query) Last() *Node {
	nodes := q.Get()

	if len(nodes) == 0 {
		return nil
	}

	return nodes[len(nodes)-1]
}

func collectDeep(n *Node, qualifiers []string, add func(*Node)) {
	for _, key := range n.Children {
		child := n.ChildMap[key]

		if matchQualifiers(child, qualifiers) {
			add(child)
		}

		collectDeep(child, qualifiers, add)
	}
}

func matchQualifiers(n *Node, qualifiers []string) bool {
	for _, qualifier := range qualifiers {
		switch {
		case qualifier == "*":
		case qualifier[0] == '#':
			if n.Attributes.Get("id") != qualifier[1:] {
				return false
			}
		case qualifier[0] == '.':
			if !hasClassWord(n.Attributes.Get("class"), qualifier[1:]) {
				return false
			}
		default:
			if n.Name != qualifier {
				return false
			}
		}
	}

	return true
}

func hasClassWord(classes, word string) bool {
	if word == "" {
		return false
	}

	for _, c := range strings.Fields(classes) {
		if c == word {
			return true
		}
	}

	return false
}

// splitSelector cuts the selector into segment tokens, with '>' as its own
// token.
func splitSelector(query string) []string {
	var tokens []string

	i, length := 0, len(query)

	for i < length {
		if isSpace(query[i]) {
			i++
			continue
		}

		if query[i] == '>' {
			tokens = append(tokens, ">")
			i++
			continue
		}

		start := i
		for i < length && !isSpace(query[i]) && query[i] != '>' {
			i++
		}

		tokens = append(tokens, query[start:i])
	}

	return tokens
}

// splitQualifiers cuts one segment token into its conjoined qualifiers.
// Unrecognized bytes are skipped.
func splitQualifiers(token string) []string {
	var qualifiers []string

	i, length := 0, len(token)

	for i < length {
		if token[i] == '*' {
			qualifiers = append(qualifiers, "*")
			i++
			continue
		}

		start := i

		if token[i] == '.' || token[i] == '#' {
			i++
		}

		for i < length && isQualifierChar(token[i]) {
			i++
		}

		if i == start {
			i++
			continue
		}

		qualifiers = append(qualifiers, token[start:i])
	}

	return qualifiers
}

func isQualifierChar(c byte) bool {
	return ('0' <= c && c <= '9') ||
		('A' <= c && c <= 'Z') ||
		('a' <= c && c <= 'z') ||
		c == '-' || c == '_'
}
