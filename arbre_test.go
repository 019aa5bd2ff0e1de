package arbre

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// cmpAttrs lets cmp.Diff descend into the ordered attribute type.
var cmpAttrs = cmp.AllowUnexported(Attributes{})

func TestParseSingleElementText(t *testing.T) {
	root := Parse("<a>hello</a>")

	a := root.Child("a")
	if a == nil {
		t.Fatal("missing child a")
	}

	if got, want := a.Text, "hello"; got != want {
		t.Errorf("got text %q, want %q", got, want)
	}

	if len(a.Children) != 0 {
		t.Errorf("got %d children, want 0", len(a.Children))
	}
}

func TestParseSelfClosingEqualsEmptyPair(t *testing.T) {
	short := Parse("<a/>")
	long := Parse("<a></a>")

	if diff := cmp.Diff(long, short, cmpAttrs); diff != "" {
		t.Errorf("trees differ (-long +short):\n%s", diff)
	}
}

func TestRepeatedSiblingKeys(t *testing.T) {
	root := Parse("<r><c>1</c><c>2</c></r>")

	r := root.Child("r")
	if r == nil {
		t.Fatal("missing child r")
	}

	if diff := cmp.Diff([]string{"c", "c_1"}, r.Children); diff != "" {
		t.Errorf("child keys (-want +got):\n%s", diff)
	}

	if got := r.ChildMap["c"].Text; got != "1" {
		t.Errorf("got first text %q, want %q", got, "1")
	}
	if got := r.ChildMap["c_1"].Text; got != "2" {
		t.Errorf("got second text %q, want %q", got, "2")
	}

	// the key is suffixed, the name is not
	if got := r.ChildMap["c_1"].Name; got != "c" {
		t.Errorf("got name %q, want %q", got, "c")
	}
}

func TestSuffixSkipsTakenKeys(t *testing.T) {
	root := Parse("<r><c_1/><c/><c/></r>")

	r := root.Child("r")

	if diff := cmp.Diff([]string{"c_1", "c", "c_2"}, r.Children); diff != "" {
		t.Errorf("child keys (-want +got):\n%s", diff)
	}
}

func TestNestedAddressing(t *testing.T) {
	root := Parse("<a><c><d>z</d></c></a>")

	if got := root.ChildMap["a"].ChildMap["c"].ChildMap["d"].Text; got != "z" {
		t.Errorf("got %q, want %q", got, "z")
	}

	if got := root.Lookup("a", "c", "d").Text; got != "z" {
		t.Errorf("got %q, want %q", got, "z")
	}
}

func TestTextCapturedBeforeClose(t *testing.T) {
	// only the span between the last tag and the close tag is captured
	root := Parse("<a>x<b/>y</a>")

	a := root.Child("a")
	if got, want := a.Text, "y"; got != want {
		t.Errorf("got text %q, want %q", got, want)
	}

	if a.Child("b") == nil {
		t.Error("missing child b")
	}
}

func TestTextTrimmedAndDecoded(t *testing.T) {
	root := Parse("<a>\n\t &lt;x&gt; &amp; more \n</a>")

	if got, want := root.Child("a").Text, "<x> & more"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProcessingInstruction(t *testing.T) {
	root := Parse(`<?xml version="1.0"?><r/>`)

	if diff := cmp.Diff([]string{"xml", "r"}, root.Children); diff != "" {
		t.Errorf("children (-want +got):\n%s", diff)
	}

	if got := root.Child("xml").Attributes.Get("version"); got != "1.0" {
		t.Errorf("got version %q, want %q", got, "1.0")
	}
}

func TestMismatchedCloseIgnored(t *testing.T) {
	p := NewParser("<a><b>inner</c></b></a>")

	root := p.Root()
	b := root.Lookup("a", "b")
	if b == nil {
		t.Fatal("b not attached under a")
	}

	errs := p.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(errs), errs)
	}
	if errs[0].Kind != ErrTagMismatch {
		t.Errorf("got kind %q, want %q", errs[0].Kind, ErrTagMismatch)
	}

	// lenient parsers surface no error
	if err := p.Err(); err != nil {
		t.Errorf("got err %v, want nil", err)
	}
}

func TestMismatchStrict(t *testing.T) {
	_, err := ParseWithOptions("<a><b></c></b></a>", Options{Strict: true})
	if err == nil {
		t.Fatal("expected an error")
	}

	errs, ok := AsParseErrors(err)
	if !ok {
		t.Fatalf("error %T does not unwrap to ParseErrors", err)
	}

	if len(errs) != 1 || errs[0].Kind != ErrTagMismatch {
		t.Errorf("got %v, want one tag-mismatch", errs)
	}
}

func TestCloseWithoutOpen(t *testing.T) {
	p := NewParser("</a>")

	if len(p.Root().Children) != 0 {
		t.Error("expected no children")
	}

	errs := p.Errors()
	if len(errs) != 1 || errs[0].Kind != ErrTagMismatch {
		t.Fatalf("got %v, want one tag-mismatch", errs)
	}
}

func TestUnclosedTagsFoldAtEOF(t *testing.T) {
	p := NewParser("<a><b>")

	if p.Root().Lookup("a", "b") == nil {
		t.Fatal("unclosed elements were not folded into the tree")
	}

	errs := p.Errors()
	if len(errs) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(errs), errs)
	}
	for _, e := range errs {
		if e.Kind != ErrUnclosedTag {
			t.Errorf("got kind %q, want %q", e.Kind, ErrUnclosedTag)
		}
	}

	// deepest frame reported first
	if errs[0].Offset != 3 || errs[1].Offset != 0 {
		t.Errorf("got offsets %d and %d, want 3 and 0", errs[0].Offset, errs[1].Offset)
	}
}

func TestUnterminatedTag(t *testing.T) {
	p := NewParser("<a><b")

	errs := p.Errors()
	if len(errs) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(errs), errs)
	}

	if errs[0].Kind != ErrUnterminatedTag {
		t.Errorf("got kind %q, want %q", errs[0].Kind, ErrUnterminatedTag)
	}
	if errs[1].Kind != ErrUnclosedTag {
		t.Errorf("got kind %q, want %q", errs[1].Kind, ErrUnclosedTag)
	}

	// the broken span produced no node
	if p.Root().Lookup("a", "b") != nil {
		t.Error("broken tag should not become a node")
	}
}

func TestTrailingContent(t *testing.T) {
	p := NewParser("<a/>extra")

	if p.Root().Child("a") == nil {
		t.Fatal("missing child a")
	}

	errs := p.Errors()
	if len(errs) != 1 || errs[0].Kind != ErrTrailingContent {
		t.Fatalf("got %v, want one trailing-content", errs)
	}
	if errs[0].Offset != 4 {
		t.Errorf("got offset %d, want 4", errs[0].Offset)
	}
}

func TestOffsetsCountFromOriginalInput(t *testing.T) {
	// leading whitespace is trimmed but offsets still address the input
	p := NewParser("  \n<a")

	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatal("expected diagnostics")
	}
	if errs[0].Kind != ErrUnterminatedTag || errs[0].Offset != 3 {
		t.Errorf("got %v at %d, want unterminated-tag at 3", errs[0].Kind, errs[0].Offset)
	}
}

func TestEmptyAndBlankInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t\v "} {
		p := NewParser(input)

		if !p.Success() {
			t.Errorf("input %q: got diagnostics %v", input, p.Errors())
		}
		if len(p.Root().Children) != 0 {
			t.Errorf("input %q: expected an empty root", input)
		}
	}
}

func TestFirstAndFilterDocumentOrder(t *testing.T) {
	p := NewParser(`<x><y id="1"/></x><y id="2"/>`)

	first := p.First("y")
	if first == nil || first.Attributes.Get("id") != "1" {
		t.Fatalf("First returned %v, want y#1", first)
	}

	ys := p.Filter("y")
	if len(ys) != 2 {
		t.Fatalf("got %d matches, want 2", len(ys))
	}
	if ys[0].Attributes.Get("id") != "1" || ys[1].Attributes.Get("id") != "2" {
		t.Error("Filter results out of document order")
	}

	if p.First("absent") != nil {
		t.Error("First on an absent name should be nil")
	}
	if got := p.Filter("absent"); got == nil || len(got) != 0 {
		t.Errorf("Filter on an absent name should be empty, got %v", got)
	}
}

func TestParserIsReusableAcrossLookups(t *testing.T) {
	p := NewParser("<a><b/></a>")

	for i := 0; i < 3; i++ {
		if p.First("b") == nil {
			t.Fatal("lookup changed parser state")
		}
	}
}

func BenchmarkParse(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("<catalog>")
	for i := 0; i < 200; i++ {
		sb.WriteString(`<book id="x" lang="en"><title>t &amp; t</title><price>9.99</price></book>`)
	}
	sb.WriteString("</catalog>")
	doc := sb.String()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		Parse(doc)
	}
}
