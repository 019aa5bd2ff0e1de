package arbre

import "strings"

// Markup serializes the subtree back to tag form. Attributes keep their
// insertion order and are double-quoted and entity-encoded; children keep
// document order and serialize under their bare name, not their key; text is
// emitted immediately before the close tag, mirroring where the parser
// captures it. A node with no children and no text takes the self-closing
// form. The synthetic root serializes as the concatenation of its children.
func (n *Node) Markup() string {
	var b strings.Builder
	n.writeMarkup(&b)
	return b.String()
}

// String aliases Markup for printing and debugging.
func (n *Node) String() string {
	return n.Markup()
}

func (n *Node) writeMarkup(b *strings.Builder) {
	if n.Name == "" {
		for _, key := range n.Children {
			n.ChildMap[key].writeMarkup(b)
		}
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Name)

	if n.Attributes != nil {
		for _, name := range n.Attributes.keys {
			b.WriteByte(' ')
			b.WriteString(name)
			b.WriteString(`="`)
			b.WriteString(encodeEntities(n.Attributes.values[name]))
			b.WriteByte('"')
		}
	}

	if len(n.Children) == 0 && n.Text == "" {
		b.WriteString("/>")
		return
	}

	b.WriteByte('>')

	for _, key := range n.Children {
		n.ChildMap[key].writeMarkup(b)
	}

	if n.Text != "" {
		b.WriteString(encodeEntities(n.Text))
	}

	b.WriteString("</")
	b.WriteString(n.Name)
	b.WriteByte('>')
}
