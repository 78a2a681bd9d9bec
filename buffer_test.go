package epubtai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// element builds a detached element node for tree construction in tests.
func element(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// textNode builds a text leaf and attaches it to parent.
func textNode(parent *html.Node, text string) *html.Node {
	n := &html.Node{Type: html.TextNode, Data: text}
	parent.AppendChild(n)
	return n
}

// identityFunc returns its inputs unchanged and counts calls.
func identityFunc(calls *[][]string) BatchTranslateFunc {
	return func(ctx context.Context, texts []string) ([]string, error) {
		*calls = append(*calls, append([]string(nil), texts...))
		out := make([]string, len(texts))
		copy(out, texts)
		return out, nil
	}
}

// childElements returns the element children of a node.
func childElements(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func innerText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func TestNewTextBuffer_RequiresTranslateFunc(t *testing.T) {
	_, err := NewTextBuffer(nil, BufferConfig{})
	if err == nil {
		t.Fatal("expected error for nil translate function")
	}

	var terr *TranslationError
	if !errors.As(err, &terr) {
		t.Errorf("expected *TranslationError, got %T", err)
	}
}

// Two segments under the same div: the repeated valid context forces a
// boundary on the second add, and with batch size 1 each singleton phrase is
// flushed immediately. The tree ends with two sibling div wrappers replacing
// the original text leaves.
func TestBuffer_RepeatedContextSingletons(t *testing.T) {
	div := element("div")
	leaf1 := textNode(div, "Hello ")
	leaf2 := textNode(div, "world.")

	var calls [][]string
	buf, err := NewTextBuffer(identityFunc(&calls), BufferConfig{BatchSize: 1})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := buf.Add(ctx, leaf1, leaf1.Data); err != nil {
		t.Fatal(err)
	}
	if err := buf.Add(ctx, leaf2, leaf2.Data); err != nil {
		t.Fatal(err)
	}
	if err := buf.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 2 {
		t.Fatalf("expected 2 translation calls, got %d: %v", len(calls), calls)
	}
	if calls[0][0] != "Hello " || calls[1][0] != "world." {
		t.Errorf("unexpected call contents: %v", calls)
	}

	wrappers := childElements(div)
	if len(wrappers) != 2 {
		t.Fatalf("expected 2 wrapper elements, got %d", len(wrappers))
	}
	for i, want := range []string{"Hello ", "world."} {
		if wrappers[i].Data != "div" {
			t.Errorf("wrapper %d: tag = %q, want div", i, wrappers[i].Data)
		}
		if got := innerText(wrappers[i]); got != want {
			t.Errorf("wrapper %d: text = %q, want %q", i, got, want)
		}
	}
	if leaf1.Parent != nil || leaf2.Parent != nil {
		t.Error("original text leaves should be detached")
	}
}

// Three segments under changing contexts with batch size 3: each context
// change forces a boundary, the queue fills to 3, and the translation
// function runs exactly once with all three texts.
func TestBuffer_ChangedContextBatch(t *testing.T) {
	body := element("body")
	p1 := element("p")
	span := element("span")
	p2 := element("p")
	body.AppendChild(p1)
	body.AppendChild(span)
	body.AppendChild(p2)
	leaf1 := textNode(p1, "t1")
	leaf2 := textNode(span, "t2")
	leaf3 := textNode(p2, "t3")

	var calls [][]string
	upper := func(ctx context.Context, texts []string) ([]string, error) {
		calls = append(calls, append([]string(nil), texts...))
		out := make([]string, len(texts))
		for i, s := range texts {
			out[i] = strings.ToUpper(s)
		}
		return out, nil
	}

	buf, err := NewTextBuffer(upper, BufferConfig{BatchSize: 3})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for _, leaf := range []*html.Node{leaf1, leaf2, leaf3} {
		if err := buf.Add(ctx, leaf, leaf.Data); err != nil {
			t.Fatal(err)
		}
	}
	if len(calls) != 0 {
		t.Fatalf("queue should not flush before reaching batch size, got %d calls", len(calls))
	}
	if got := buf.Pending(); got != 2 {
		t.Errorf("pending = %d, want 2", got)
	}
	if err := buf.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 1 {
		t.Fatalf("expected exactly 1 translation call, got %d", len(calls))
	}
	want := []string{"t1", "t2", "t3"}
	for i, w := range want {
		if calls[0][i] != w {
			t.Errorf("call texts = %v, want %v", calls[0], want)
			break
		}
	}

	for i, parent := range []*html.Node{p1, span, p2} {
		kids := childElements(parent)
		if len(kids) != 1 {
			t.Fatalf("parent %d: expected 1 wrapper, got %d", i, len(kids))
		}
		if got := innerText(kids[0]); got != strings.ToUpper(want[i]) {
			t.Errorf("parent %d: text = %q, want %q", i, got, strings.ToUpper(want[i]))
		}
	}
}

// A translation function returning the wrong number of strings is a contract
// violation: the flush fails and the tree is untouched.
func TestBuffer_BatchMismatchAbortsFlush(t *testing.T) {
	div := element("div")
	leaf1 := textNode(div, "One.")
	leaf2 := textNode(div, "Two.")

	short := func(ctx context.Context, texts []string) ([]string, error) {
		return texts[:len(texts)-1], nil
	}

	buf, err := NewTextBuffer(short, BufferConfig{BatchSize: 2})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := buf.Add(ctx, leaf1, leaf1.Data); err != nil {
		t.Fatal(err)
	}
	if err := buf.Add(ctx, leaf2, leaf2.Data); err != nil {
		t.Fatal(err)
	}

	err = buf.Flush(ctx)
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	var mismatch *BatchMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected *BatchMismatchError, got %T: %v", err, err)
	}
	if mismatch.Expected != 2 || mismatch.Got != 1 {
		t.Errorf("mismatch = %+v, want Expected 2 Got 1", mismatch)
	}

	// No mutation: original leaves still in place, no wrappers inserted.
	if leaf1.Parent != div || leaf2.Parent != div {
		t.Error("leaves must stay attached after an aborted flush")
	}
	if len(childElements(div)) != 0 {
		t.Error("no wrapper may be inserted by an aborted flush")
	}
}

// A segment force-fed under a script parent falls back to a generic <p>
// wrapper instead of cloning the invalid parent. The visitor never produces
// this case; the fallback is the reinsertion engine's own safety net.
func TestBuffer_InvalidParentFallsBackToParagraph(t *testing.T) {
	script := element("script")
	leaf := textNode(script, "alert('hi')")

	var calls [][]string
	buf, err := NewTextBuffer(identityFunc(&calls), BufferConfig{})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := buf.Add(ctx, leaf, leaf.Data); err != nil {
		t.Fatal(err)
	}
	if err := buf.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	kids := childElements(script)
	if len(kids) != 1 {
		t.Fatalf("expected 1 wrapper, got %d", len(kids))
	}
	if kids[0].Data != "p" {
		t.Errorf("wrapper tag = %q, want p", kids[0].Data)
	}
	if len(kids[0].Attr) != 0 {
		t.Errorf("synthesized wrapper must carry no attributes, got %v", kids[0].Attr)
	}
	if leaf.Parent != nil {
		t.Error("original leaf should be detached")
	}
}

// When the first segment is itself an element, the phrase collapses in
// place: the element survives, its children are replaced by the translated
// text, and every other segment node is detached.
func TestBuffer_ElementFirstSegmentCollapsesInPlace(t *testing.T) {
	body := element("body")
	p := element("p", html.Attribute{Key: "class", Val: "lead"})
	body.AppendChild(p)
	textNode(p, "old ")
	em := element("em")
	p.AppendChild(em)
	textNode(em, "content")
	stray := textNode(body, "tail text")

	var calls [][]string
	buf, err := NewTextBuffer(identityFunc(&calls), BufferConfig{BatchSize: 2})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := buf.Add(ctx, p, "old content"); err != nil {
		t.Fatal(err)
	}
	if err := buf.Add(ctx, stray, stray.Data); err != nil {
		t.Fatal(err)
	}
	if err := buf.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	if p.Parent != body {
		t.Fatal("element segment must survive in place")
	}
	if got := innerText(p); got != "old content" {
		t.Errorf("collapsed text = %q, want %q", got, "old content")
	}
	if len(childElements(p)) != 0 {
		t.Error("old children must be cleared")
	}
	if p.Attr[0].Val != "lead" {
		t.Error("element attributes must be preserved")
	}
}

// Wrapper clones keep the parent's attributes.
func TestBuffer_WrapperClonesParentAttributes(t *testing.T) {
	div := element("div",
		html.Attribute{Key: "class", Val: "chapter"},
		html.Attribute{Key: "id", Val: "ch1"},
	)
	leaf := textNode(div, "Some text")

	var calls [][]string
	buf, err := NewTextBuffer(identityFunc(&calls), BufferConfig{})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := buf.Add(ctx, leaf, leaf.Data); err != nil {
		t.Fatal(err)
	}
	if err := buf.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	kids := childElements(div)
	if len(kids) != 1 {
		t.Fatalf("expected 1 wrapper, got %d", len(kids))
	}
	wrapper := kids[0]
	if wrapper.Data != "div" {
		t.Errorf("wrapper tag = %q, want div", wrapper.Data)
	}
	if len(wrapper.Attr) != 2 || wrapper.Attr[0].Val != "chapter" || wrapper.Attr[1].Val != "ch1" {
		t.Errorf("wrapper attributes = %v, want clone of parent's", wrapper.Attr)
	}
}

// Order preservation: the concatenation of all flushed phrase texts, in
// flush order, equals the concatenation of the input segment texts.
func TestBuffer_OrderPreservation(t *testing.T) {
	body := element("body")
	texts := []string{"alpha ", "beta. ", "gamma", "delta ", "epsilon."}
	tags := []string{"p", "p", "span", "blockquote", "p"}

	var leaves []*html.Node
	for i, tag := range tags {
		parent := element(tag)
		body.AppendChild(parent)
		leaves = append(leaves, textNode(parent, texts[i]))
	}

	var calls [][]string
	buf, err := NewTextBuffer(identityFunc(&calls), BufferConfig{BatchSize: 2})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for i, leaf := range leaves {
		if err := buf.Add(ctx, leaf, texts[i]); err != nil {
			t.Fatal(err)
		}
	}
	if err := buf.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	var flushed strings.Builder
	for _, call := range calls {
		for _, text := range call {
			flushed.WriteString(text)
		}
	}
	want := strings.Join(texts, "")
	if flushed.String() != want {
		t.Errorf("flushed concatenation = %q, want %q", flushed.String(), want)
	}
}

// Flushing twice in a row translates nothing the second time, and an empty
// buffer never invokes the translation function at all.
func TestBuffer_IdempotentFlush(t *testing.T) {
	div := element("div")
	leaf := textNode(div, "Once.")

	var calls [][]string
	buf, err := NewTextBuffer(identityFunc(&calls), BufferConfig{})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := buf.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 0 {
		t.Fatal("flush of an empty buffer must not call the translation function")
	}

	if err := buf.Add(ctx, leaf, leaf.Data); err != nil {
		t.Fatal(err)
	}
	if err := buf.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if err := buf.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 1 {
		t.Errorf("expected 1 translation call, got %d", len(calls))
	}
}

// Segments in blocking contexts are never merged with neighbors even when
// the surrounding text lacks delimiters.
func TestBuffer_BlockingContextIsolation(t *testing.T) {
	body := element("body")
	p := element("p")
	a := element("a", html.Attribute{Key: "href", Val: "/next"})
	body.AppendChild(p)
	body.AppendChild(a)
	leafP := textNode(p, "see also")
	leafA := textNode(a, "the appendix")

	var calls [][]string
	buf, err := NewTextBuffer(identityFunc(&calls), BufferConfig{BatchSize: 10})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := buf.Add(ctx, leafP, leafP.Data); err != nil {
		t.Fatal(err)
	}
	if err := buf.Add(ctx, leafA, leafA.Data); err != nil {
		t.Fatal(err)
	}
	if err := buf.Flush(ctx); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 1 || len(calls[0]) != 2 {
		t.Fatalf("expected one call with 2 phrases, got %v", calls)
	}

	// The anchor keeps its own wrapper with its href.
	kids := childElements(a)
	if len(kids) != 1 || kids[0].Data != "a" {
		t.Fatalf("expected anchor wrapper inside <a>, got %v", kids)
	}
	if len(kids[0].Attr) != 1 || kids[0].Attr[0].Val != "/next" {
		t.Errorf("anchor wrapper attributes = %v, want href=/next", kids[0].Attr)
	}
}

func TestBuffer_TranslateErrorPropagates(t *testing.T) {
	div := element("div")
	leaf := textNode(div, "text")

	boom := errors.New("backend down")
	failing := func(ctx context.Context, texts []string) ([]string, error) {
		return nil, &ProviderError{Message: "call failed", Cause: boom}
	}

	buf, err := NewTextBuffer(failing, BufferConfig{})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := buf.Add(ctx, leaf, leaf.Data); err != nil {
		t.Fatal(err)
	}
	err = buf.Flush(ctx)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped backend error, got %v", err)
	}
	if leaf.Parent != div {
		t.Error("tree must be untouched after a failed flush")
	}
}
