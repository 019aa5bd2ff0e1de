package arbre

import (
	"fmt"

	"github.com/antchfx/xpath"
)

// Select evaluates an XPath expression against the subtree rooted at n and
// returns the matched nodes in document order, without duplicates. Results
// that are not elements, attribute and text matches, resolve to the element
// that owns them.
func (n *Node) Select(expr string) ([]*Node, error) {
	x, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile xpath %q: %w", expr, err)
	}

	iter := x.Select(newNav(n))

	var out []*Node
	seen := make(map[*Node]struct{})

	for iter.MoveNext() {
		node := iter.Current().(*nav).resolve()

		if _, ok := seen[node]; ok {
			continue
		}
		seen[node] = struct{}{}
		out = append(out, node)
	}

	return out, nil
}

// SelectOne returns the first match of Select, or nil without error when
// nothing matches.
func (n *Node) SelectOne(expr string) (*Node, error) {
	nodes, err := n.Select(expr)
	if err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return nil, nil
	}

	return nodes[0], nil
}

// crumb is one level of the navigator's descent. node is the child at index
// within its parent's Children; a nil node marks the parent's trailing text
// pseudo-child, whose index equals len(parent.Children).
type crumb struct {
	node  *Node
	index int
}

// nav implements xpath.NodeNavigator over the keyed tree. Nodes carry no
// parent pointers, so the position is the whole path from the anchor down:
// an empty trail means the anchor itself, which reports as the root. attr is
// an index into the current element's attribute keys, -1 when not on an
// attribute.
type nav struct {
	root  *Node
	trail []crumb
	attr  int
}

func newNav(root *Node) *nav {
	return &nav{root: root, attr: -1}
}

// current returns the element the navigator is on, the anchor for an empty
// trail, or nil when positioned on a text pseudo-child.
func (n *nav) current() *Node {
	if len(n.trail) == 0 {
		return n.root
	}
	return n.trail[len(n.trail)-1].node
}

// parentOf returns the node owning the crumb at the given depth.
func (n *nav) parentOf(depth int) *Node {
	if depth == 0 {
		return n.root
	}
	return n.trail[depth-1].node
}

// resolve maps the position to the element Select should report.
func (n *nav) resolve() *Node {
	if cur := n.current(); cur != nil {
		return cur
	}
	return n.parentOf(len(n.trail) - 1)
}

func (n *nav) NodeType() xpath.NodeType {
	if n.attr >= 0 {
		return xpath.AttributeNode
	}
	if len(n.trail) == 0 {
		return xpath.RootNode
	}
	if n.trail[len(n.trail)-1].node == nil {
		return xpath.TextNode
	}
	return xpath.ElementNode
}

func (n *nav) LocalName() string {
	if n.attr >= 0 {
		return n.current().Attributes.keys[n.attr]
	}

	cur := n.current()
	if cur == nil {
		return ""
	}

	return cur.Name
}

func (n *nav) Prefix() string { return "" }

func (n *nav) Value() string {
	if n.attr >= 0 {
		cur := n.current()
		return cur.Attributes.values[cur.Attributes.keys[n.attr]]
	}

	cur := n.current()
	if cur == nil {
		return n.parentOf(len(n.trail) - 1).Text
	}

	return cur.TextContent()
}

func (n *nav) Copy() xpath.NodeNavigator {
	cp := *n
	cp.trail = make([]crumb, len(n.trail))
	copy(cp.trail, n.trail)
	return &cp
}

func (n *nav) MoveToRoot() {
	n.trail = nil
	n.attr = -1
}

func (n *nav) MoveToParent() bool {
	if n.attr >= 0 {
		n.attr = -1
		return true
	}

	if len(n.trail) == 0 {
		return false
	}

	n.trail = n.trail[:len(n.trail)-1]
	return true
}

func (n *nav) MoveToChild() bool {
	if n.attr >= 0 {
		return false
	}

	cur := n.current()
	if cur == nil {
		return false
	}

	if len(cur.Children) > 0 {
		n.trail = append(n.trail, crumb{node: cur.ChildMap[cur.Children[0]]})
		return true
	}

	if cur.Text != "" {
		n.trail = append(n.trail, crumb{})
		return true
	}

	return false
}

// MoveToFirst moves to the first sibling; false means the position did not
// change.
func (n *nav) MoveToFirst() bool {
	if n.attr >= 0 || len(n.trail) == 0 {
		return false
	}

	last := len(n.trail) - 1
	if n.trail[last].index == 0 {
		return false
	}

	parent := n.parentOf(last)
	n.trail[last] = crumb{node: parent.ChildMap[parent.Children[0]]}

	return true
}

func (n *nav) MoveToNext() bool {
	if n.attr >= 0 || len(n.trail) == 0 {
		return false
	}

	last := len(n.trail) - 1
	parent := n.parentOf(last)
	next := n.trail[last].index + 1

	if next < len(parent.Children) {
		n.trail[last] = crumb{node: parent.ChildMap[parent.Children[next]], index: next}
		return true
	}

	if next == len(parent.Children) && parent.Text != "" {
		n.trail[last] = crumb{index: next}
		return true
	}

	return false
}

func (n *nav) MoveToPrevious() bool {
	if n.attr >= 0 || len(n.trail) == 0 {
		return false
	}

	last := len(n.trail) - 1
	prev := n.trail[last].index - 1

	if prev < 0 {
		return false
	}

	parent := n.parentOf(last)
	n.trail[last] = crumb{node: parent.ChildMap[parent.Children[prev]], index: prev}

	return true
}

func (n *nav) MoveToAttribute(_, name string) bool {
	cur := n.current()
	if cur == nil || cur.Attributes == nil {
		return false
	}

	for i, key := range cur.Attributes.keys {
		if key == name {
			n.attr = i
			return true
		}
	}

	return false
}

func (n *nav) MoveToNextAttribute() bool {
	cur := n.current()
	if cur == nil || n.attr+1 >= cur.Attributes.Len() {
		return false
	}

	n.attr++
	return true
}

func (n *nav) MoveToNamespace(string) bool { return false }

func (n *nav) MoveToNextNamespace() bool { return false }

func (n *nav) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*nav)
	if !ok || o.root != n.root {
		return false
	}

	n.trail = make([]crumb, len(o.trail))
	copy(n.trail, o.trail)
	n.attr = o.attr

	return true
}
