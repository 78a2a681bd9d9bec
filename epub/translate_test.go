package epub

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

// upperTranslator uppercases visible text without real parsing; good enough
// to verify which items Translate touches.
type upperTranslator struct {
	targetLang string
	calls      []string
	failOn     string
}

func (u *upperTranslator) TranslateHTML(ctx context.Context, content []byte) ([]byte, error) {
	if u.failOn != "" && bytes.Contains(content, []byte(u.failOn)) {
		return nil, errors.New("simulated item failure")
	}
	u.calls = append(u.calls, string(content[:20]))
	return bytes.ToUpper(content), nil
}

func (u *upperTranslator) TargetLang() string {
	return u.targetLang
}

func TestTranslate(t *testing.T) {
	book, err := ReadBytes(buildTestEPUB(t))
	if err != nil {
		t.Fatal(err)
	}

	tr := &upperTranslator{targetLang: "it_IT"}
	out, err := Translate(context.Background(), book, tr)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	// Both document items translated, one call each
	if len(tr.calls) != 2 {
		t.Errorf("Expected 2 item translations, got %d", len(tr.calls))
	}
	ch1 := out.Resource("OEBPS/ch01.xhtml")
	if ch1 == nil || !bytes.Contains(ch1.Data, []byte("HELLO WORLD.")) {
		t.Error("ch01.xhtml should be translated")
	}

	// Non-document resources pass through verbatim
	css := out.Resource("OEBPS/style.css")
	if css == nil || string(css.Data) != "p { margin: 0; }" {
		t.Error("style.css should pass through unchanged")
	}
	ncx := out.Resource("OEBPS/toc.ncx")
	if ncx == nil || !bytes.Equal(ncx.Data, book.Resource("OEBPS/toc.ncx").Data) {
		t.Error("toc.ncx should pass through unchanged")
	}

	// Package language rewritten to the base target code
	opf := out.Resource("OEBPS/content.opf")
	if opf == nil || !bytes.Contains(opf.Data, []byte("<dc:language>it</dc:language>")) {
		t.Error("dc:language should be rewritten to 'it'")
	}
	if out.Package.Metadata.Language != "it" {
		t.Errorf("Parsed package language = %q, want it", out.Package.Metadata.Language)
	}

	// Other metadata survives the rewrite untouched
	if !bytes.Contains(opf.Data, []byte("<dc:title>A Short Book</dc:title>")) {
		t.Error("dc:title should survive the language rewrite")
	}

	// Original book is not mutated
	if !bytes.Contains(book.Resource("OEBPS/ch01.xhtml").Data, []byte("Hello world.")) {
		t.Error("original book must not be mutated")
	}
	if book.Package.Metadata.Language != "en" {
		t.Error("original package language must not change")
	}
}

func TestTranslate_ItemFailureAborts(t *testing.T) {
	book, err := ReadBytes(buildTestEPUB(t))
	if err != nil {
		t.Fatal(err)
	}

	tr := &upperTranslator{targetLang: "it_IT", failOn: "Chapter Two"}
	_, err = Translate(context.Background(), book, tr)
	if err == nil {
		t.Fatal("Expected error when an item fails")
	}
	if !strings.Contains(err.Error(), "ch02.xhtml") {
		t.Errorf("Error should name the failed item, got: %v", err)
	}
}

func TestTranslate_NilTranslator(t *testing.T) {
	book, err := ReadBytes(buildTestEPUB(t))
	if err != nil {
		t.Fatal(err)
	}

	_, err = Translate(context.Background(), book, nil)
	if err == nil {
		t.Error("Expected error for nil translator")
	}
}

func TestSetPackageLanguage(t *testing.T) {
	opf := []byte(`<metadata><dc:language id="lang">en</dc:language></metadata>`)
	out := setPackageLanguage(opf, "pt_BR")
	if !bytes.Contains(out, []byte(`<dc:language id="lang">pt</dc:language>`)) {
		t.Errorf("Attributes should survive the rewrite, got: %s", out)
	}

	// Empty target leaves the bytes alone
	same := setPackageLanguage(opf, "")
	if !bytes.Equal(same, opf) {
		t.Error("Empty target language should leave the OPF unchanged")
	}
}
