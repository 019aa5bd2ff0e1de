package arbre

import (
	"bytes"
	"fmt"
)

// attrState enumerates the attribute scanner states. The scanner walks the tag
// interior one byte at a time; every transition is explicit below.
type attrState int

const (
	attrSeekName attrState = iota
	attrInName
	attrSeekEquals
	attrSeekValue
	attrInUnquoted
	attrInDouble
	attrInSingle
)

// parseAttributes tokenizes the span between a tag's name and its closing
// bracket. base is the document offset of inner[0], so diagnostics carry
// absolute positions.
//
// Recognized shapes are name="value", name='value' and name=value, with
// optional whitespace around the equals sign. A word without an equals sign
// binds nothing. Inside a quoted value a backslash escapes the delimiter;
// any other backslash pair is kept verbatim. Values are entity-decoded,
// names are not.
func (p *Parser) parseAttributes(inner []byte, base int) *Attributes {
	attrs := NewAttributes()

	state := attrSeekName
	var name string
	var nameStart int
	var valueStart int
	var value bytes.Buffer

	commit := func() {
		attrs.Set(name, decodeEntities(value.String()))
		value.Reset()
		name = ""
	}

	for i := 0; i < len(inner); i++ {
		c := inner[i]

		switch state {
		case attrSeekName:
			// a stray equals sign with no name ahead of it binds nothing
			if isSpace(c) || c == '=' {
				continue
			}
			nameStart = i
			state = attrInName

		case attrInName:
			if c == '=' {
				name = string(inner[nameStart:i])
				state = attrSeekValue
			} else if isSpace(c) {
				name = string(inner[nameStart:i])
				state = attrSeekEquals
			}

		case attrSeekEquals:
			if c == '=' {
				state = attrSeekValue
			} else if !isSpace(c) {
				// the pending word was bare; it is dropped and a new name starts
				nameStart = i
				state = attrInName
			}

		case attrSeekValue:
			if isSpace(c) {
				continue
			}
			switch c {
			case '"':
				valueStart = i
				state = attrInDouble
			case '\'':
				valueStart = i
				state = attrInSingle
			default:
				value.WriteByte(c)
				state = attrInUnquoted
			}

		case attrInUnquoted:
			if isSpace(c) {
				commit()
				state = attrSeekName
			} else {
				value.WriteByte(c)
			}

		case attrInDouble, attrInSingle:
			delim := byte('"')
			if state == attrInSingle {
				delim = '\''
			}
			switch {
			case c == '\\' && i+1 < len(inner):
				next := inner[i+1]
				if next != delim {
					value.WriteByte('\\')
				}
				value.WriteByte(next)
				i++
			case c == delim:
				commit()
				state = attrSeekName
			default:
				value.WriteByte(c)
			}
		}
	}

	switch state {
	case attrInName, attrSeekEquals:
		// trailing bare word, dropped
	case attrSeekValue, attrInUnquoted:
		commit()
	case attrInDouble, attrInSingle:
		p.report(ErrUnterminatedValue, base+valueStart,
			fmt.Sprintf("value of attribute %q is missing its closing quote", name))
		commit()
	}

	return attrs
}
