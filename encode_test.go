package arbre

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarkupForms(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<a/>", "<a/>"},
		{"<a></a>", "<a/>"},
		{"<a>text</a>", "<a>text</a>"},
		{`<a x="1" y="2"/>`, `<a x="1" y="2"/>`},
		{"<a><b/><b/></a>", "<a><b/><b/></a>"},
		{"<a>x<b/>y</a>", "<a><b/>y</a>"},
	}

	for _, tt := range tests {
		if got := Parse(tt.in).Markup(); got != tt.want {
			t.Errorf("Markup of %q = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarkupUsesBareNamesForSuffixedKeys(t *testing.T) {
	got := Parse("<r><c>1</c><c>2</c></r>").Markup()

	if want := "<r><c>1</c><c>2</c></r>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestMarkupEncodesEntities(t *testing.T) {
	root := NewNode("")
	node := NewNode("a")
	node.Attributes.Set("x", `1 < 2 & "q"`)
	node.Text = "a & b"
	root.Attach(node)

	want := `<a x="1 &lt; 2 &amp; &quot;q&quot;">a &amp; b</a>`
	if got := root.Markup(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRootSerializesAsChildConcatenation(t *testing.T) {
	got := Parse("<a>1</a><b>2</b>").Markup()

	if want := "<a>1</a><b>2</b>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRoundTripIsStructurallyIdentical(t *testing.T) {
	docs := []string{
		`<catalog><book id="b1" lang="en"><title>Go &amp; On</title></book><book id="b2"/></catalog>`,
		"<r><c>1</c><c>2</c><c>3</c></r>",
		`<a x="it&apos;s">text</a>`,
		"<a><b><c>deep</c></b>tail</a>",
	}

	for _, doc := range docs {
		first := Parse(doc)
		second := Parse(first.Markup())

		if diff := cmp.Diff(first, second, cmpAttrs); diff != "" {
			t.Errorf("round trip of %q not stable (-first +second):\n%s", doc, diff)
		}
	}
}

func TestStringAliasesMarkup(t *testing.T) {
	node := Parse("<a>x</a>")

	if node.String() != node.Markup() {
		t.Error("String and Markup disagree")
	}
}
