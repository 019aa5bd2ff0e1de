package arbre

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Node is a labelled element of the parsed tree. Attributes, children and text
// live in separate namespaces, so no tag or attribute name is reserved.
//
// Children holds the assigned child keys in document order; ChildMap resolves
// each key to exactly one child. The first sibling with a given name keys under
// the bare name, later ones under name_1, name_2, ... (see Attach). A node's
// Name is always the bare tag name, whatever key it is stored under.
type Node struct {
	Name       string
	Attributes *Attributes
	Children   []string
	ChildMap   map[string]*Node
	Text       string
}

// NewNode returns an empty node with the given tag name.
func NewNode(name string) *Node {
	return &Node{
		Name:       name,
		Attributes: NewAttributes(),
		ChildMap:   make(map[string]*Node),
	}
}

// Attach links child into n under the first free key and returns that key:
// the bare name if unused, otherwise name_N for the smallest positive N.
// Ownership of child passes to n.
func (n *Node) Attach(child *Node) string {
	if n.ChildMap == nil {
		n.ChildMap = make(map[string]*Node)
	}

	key := child.Name
	if _, taken := n.ChildMap[key]; taken {
		for i := 1; ; i++ {
			key = child.Name + "_" + strconv.Itoa(i)
			if _, taken = n.ChildMap[key]; !taken {
				break
			}
		}
	}
	n.ChildMap[key] = child
	n.Children = append(n.Children, key)
	return key
}

// Child returns the child stored under key, or nil.
func (n *Node) Child(key string) *Node {
	return n.ChildMap[key]
}

// Lookup walks a chain of child keys and returns the node at the end, or nil
// as soon as a key is missing.
func (n *Node) Lookup(path ...string) *Node {
	current := n
	for _, key := range path {
		if current = current.ChildMap[key]; current == nil {
			return nil
		}
	}
	return current
}

// Nodes returns the children in document order.
func (n *Node) Nodes() []*Node {
	nodes := make([]*Node, len(n.Children))
	for i, key := range n.Children {
		nodes[i] = n.ChildMap[key]
	}
	return nodes
}

// FindAll collects every descendant whose bare name matches, in document order.
func (n *Node) FindAll(name string) []*Node {
	var found []*Node
	for _, key := range n.Children {
		child := n.ChildMap[key]

		if child.Name == name {
			found = append(found, child)
		}

		found = append(found, child.FindAll(name)...)
	}
	return found
}

// TextContent concatenates the text of the whole subtree in document order;
// each node contributes its children's text first, then its own.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *Node) collectText(b *strings.Builder) {
	for _, key := range n.Children {
		n.ChildMap[key].collectText(b)
	}
	b.WriteString(n.Text)
}

// MarshalJSON emits the node as an object with name, attributes, text and a
// children object keyed like ChildMap, all in document order. Empty fields are
// omitted, so the synthetic root serializes as just its children.
func (n *Node) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	needComma := false
	put := func(key string, raw []byte) {
		if needComma {
			b.WriteByte(',')
		}
		needComma = true
		b.Write(jsonString(key))
		b.WriteByte(':')
		b.Write(raw)
	}

	if n.Name != "" {
		put("name", jsonString(n.Name))
	}
	if n.Attributes != nil && n.Attributes.Len() > 0 {
		attrs, err := json.Marshal(n.Attributes)
		if err != nil {
			return nil, err
		}
		put("attributes", attrs)
	}
	if n.Text != "" {
		put("text", jsonString(n.Text))
	}
	if len(n.Children) > 0 {
		var c bytes.Buffer
		c.WriteByte('{')
		for i, key := range n.Children {
			if i > 0 {
				c.WriteByte(',')
			}
			c.Write(jsonString(key))
			c.WriteByte(':')
			child, err := json.Marshal(n.ChildMap[key])
			if err != nil {
				return nil, err
			}
			c.Write(child)
		}
		c.WriteByte('}')
		put("children", c.Bytes())
	}

	b.WriteByte('}')
	return b.Bytes(), nil
}

func jsonString(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

// Attributes is an insertion-ordered name to value mapping. Names are unique;
// setting an existing name overwrites the value and keeps the original
// position. All read methods tolerate a nil receiver.
type Attributes struct {
	keys   []string
	values map[string]string
}

func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]string)}
}

func (a *Attributes) Set(name, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}

	if _, ok := a.values[name]; !ok {
		a.keys = append(a.keys, name)
	}
	a.values[name] = value
}

// Get returns the value for name, or the empty string.
func (a *Attributes) Get(name string) string {
	if a == nil {
		return ""
	}
	return a.values[name]
}

// Lookup reports the value for name and whether it is present.
func (a *Attributes) Lookup(name string) (string, bool) {
	if a == nil {
		return "", false
	}
	value, ok := a.values[name]
	return value, ok
}

func (a *Attributes) Has(name string) bool {
	_, ok := a.Lookup(name)
	return ok
}

// Keys returns the attribute names in insertion order.
func (a *Attributes) Keys() []string {
	if a == nil {
		return nil
	}
	keys := make([]string, len(a.keys))
	copy(keys, a.keys)
	return keys
}

func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// MarshalJSON emits an object with the keys in insertion order.
func (a *Attributes) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, key := range a.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(jsonString(key))
		b.WriteByte(':')
		b.Write(jsonString(a.values[key]))
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
