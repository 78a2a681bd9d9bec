package epubtai

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// stripLeadingDeclarations splits off any XML declaration and DOCTYPE
// declaration ahead of the root element. Each declaration is returned
// verbatim (the tree model would not round-trip them) and reattached after
// serialization. The XML declaration ends at "?>", the DOCTYPE at ">".
func stripLeadingDeclarations(src string) (xmlDecl, doctype, rest string) {
	rest = src

	trimmed := strings.TrimLeft(rest, " \t\n\r")
	if strings.HasPrefix(trimmed, "<?xml") {
		if end := strings.Index(trimmed, "?>"); end >= 0 {
			xmlDecl = trimmed[:end+2]
			rest = trimmed[end+2:]
		}
	}

	trimmed = strings.TrimLeft(rest, " \t\n\r")
	if strings.HasPrefix(trimmed, "<!DOCTYPE") {
		if end := strings.Index(trimmed, ">"); end >= 0 {
			doctype = trimmed[:end+1]
			rest = trimmed[end+1:]
		}
	}

	rest = strings.TrimLeft(rest, " \t\n\r")
	return xmlDecl, doctype, rest
}

// translatableText reports whether a node is a text leaf the buffer should
// see: it must carry non-whitespace text and sit under a visible element.
// Comments and other node kinds are not text and never qualify; text hanging
// directly off the document root has no structural context and is skipped.
func translatableText(n *html.Node) bool {
	if n.Type != html.TextNode {
		return false
	}
	if n.Parent == nil || n.Parent.Type != html.ElementNode {
		return false
	}
	if InvisibleParents[n.Parent.Data] {
		return false
	}
	return strings.TrimSpace(n.Data) != ""
}

// translateVisibleText translates the visible text of one markup document.
// It strips leading declarations, parses the remainder, feeds every eligible
// text leaf to a fresh TextBuffer in document order, forces a final flush,
// and reassembles the serialized tree behind the remembered declarations.
//
// The buffer mutates the tree only while flushing already-visited segments,
// so the traversal never walks over a detached node.
func translateVisibleText(ctx context.Context, content []byte, translate BatchTranslateFunc, cfg BufferConfig) ([]byte, error) {
	xmlDecl, doctype, rest := stripLeadingDeclarations(string(content))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rest))
	if err != nil {
		return nil, &DocumentError{Message: "failed to parse document", Cause: err}
	}

	buf, err := NewTextBuffer(translate, cfg)
	if err != nil {
		return nil, err
	}

	var walkErr error
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if walkErr != nil {
			return
		}
		if translatableText(n) {
			walkErr = buf.Add(ctx, n, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	doc.Each(func(i int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			walk(n)
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if err := buf.Flush(ctx); err != nil {
		return nil, err
	}

	serialized, err := doc.Html()
	if err != nil {
		return nil, &DocumentError{Message: "failed to serialize document", Cause: err}
	}

	var out strings.Builder
	if xmlDecl != "" {
		out.WriteString(xmlDecl)
		out.WriteByte('\n')
	}
	if doctype != "" {
		out.WriteString(doctype)
		out.WriteByte('\n')
	}
	out.WriteString(serialized)

	return []byte(out.String()), nil
}
