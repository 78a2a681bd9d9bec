package epub

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

// ItemTranslator translates the visible text of one document item. The root
// epubtai.Translator satisfies this interface.
type ItemTranslator interface {
	TranslateHTML(ctx context.Context, content []byte) ([]byte, error)
	TargetLang() string
}

// Translate produces a new book whose document items have been translated,
// one item at a time in archive order. Non-document resources (images,
// fonts, stylesheets, navigation files) pass through byte for byte, and the
// package metadata's language element is rewritten to the target language.
//
// Items are processed strictly sequentially: a failed item aborts the whole
// translation rather than return a partially translated book.
func Translate(ctx context.Context, book *Book, tr ItemTranslator) (*Book, error) {
	if tr == nil {
		return nil, fmt.Errorf("no item translator supplied")
	}

	documents := make(map[string]bool)
	for _, name := range book.DocumentNames() {
		documents[name] = true
	}

	out := &Book{
		Resources: make([]Resource, 0, len(book.Resources)),
		OPFPath:   book.OPFPath,
		Package:   book.Package,
	}

	for _, res := range book.Resources {
		switch {
		case documents[res.Name]:
			translated, err := tr.TranslateHTML(ctx, res.Data)
			if err != nil {
				return nil, fmt.Errorf("translating %q: %w", res.Name, err)
			}
			out.Resources = append(out.Resources, Resource{Name: res.Name, Data: translated})
		case res.Name == book.OPFPath:
			rewritten := setPackageLanguage(res.Data, tr.TargetLang())
			out.Resources = append(out.Resources, Resource{Name: res.Name, Data: rewritten})
		default:
			out.Resources = append(out.Resources, res)
		}
	}

	// Keep the parsed package in step with the rewritten OPF bytes.
	if opf := out.Resource(out.OPFPath); opf != nil {
		_ = xml.Unmarshal(opf.Data, &out.Package)
	}

	return out, nil
}

var languageElement = regexp.MustCompile(`(?s)(<dc:language[^>]*>).*?(</dc:language>)`)

// setPackageLanguage rewrites the dc:language element of the raw OPF bytes
// to the base code of the target language. The rest of the package document
// is preserved verbatim; remarshalling it would drop namespaced metadata the
// parser does not model.
func setPackageLanguage(opf []byte, targetLang string) []byte {
	base := strings.ToLower(strings.Split(targetLang, "_")[0])
	if base == "" {
		return opf
	}
	return languageElement.ReplaceAll(opf, []byte("${1}"+base+"${2}"))
}
