package epubtai

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// reinsert writes a phrase's translated text back into the document tree so
// that exactly one node survives per phrase, positioned where the phrase's
// first segment stood. Every other segment node is detached.
func reinsert(p phrase, translated string) {
	first := p[0].Node

	if first.Type == html.ElementNode {
		// The first segment is itself an element: collapse in place. The
		// element survives and now holds the full translated phrase.
		for _, s := range p[1:] {
			detach(s.Node)
		}
		clearChildren(first)
		first.AppendChild(&html.Node{Type: html.TextNode, Data: translated})
		return
	}

	// The first segment is a bare text leaf. Wrap the translation in a clone
	// of the leaf's structural parent, or in a generic <p> when the parent is
	// missing or is an invalid context.
	parent := first.Parent
	var wrapper *html.Node
	if parent == nil || parent.Type != html.ElementNode || InvalidTags[parent.Data] {
		wrapper = &html.Node{
			Type:     html.ElementNode,
			Data:     "p",
			DataAtom: atom.P,
		}
	} else {
		wrapper = cloneElement(parent)
	}
	wrapper.AppendChild(&html.Node{Type: html.TextNode, Data: translated})

	if parent != nil {
		parent.InsertBefore(wrapper, first)
	}
	for _, s := range p {
		detach(s.Node)
	}
}

// cloneElement copies an element's identity (tag name and attributes) without
// its children.
func cloneElement(src *html.Node) *html.Node {
	clone := &html.Node{
		Type:      html.ElementNode,
		Data:      src.Data,
		DataAtom:  src.DataAtom,
		Namespace: src.Namespace,
	}
	if len(src.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(src.Attr))
		copy(clone.Attr, src.Attr)
	}
	return clone
}

// detach removes a node from its parent, if it still has one.
func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// clearChildren detaches all children of a node.
func clearChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}
