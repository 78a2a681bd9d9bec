package epubtai

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Translator is the main translation engine.
type Translator struct {
	targetLang    string
	sourceLang    string
	provider      AIProvider
	cache         TranslationCache
	excludedTerms []string
	context       string
	glossary      map[string]string
	style         TranslationStyle
	batchSize     int
	logger        *zap.Logger
}

// AIProvider is the interface for AI translation backends.
type AIProvider interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// TranslateRequest contains the parameters for a translation request.
type TranslateRequest struct {
	Texts         []string
	TargetLang    string
	SourceLang    string
	ExcludedTerms []string
	Context       string
	Glossary      map[string]string
	Style         TranslationStyle
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithSourceLang sets the source language.
func WithSourceLang(lang string) TranslatorOption {
	return func(t *Translator) {
		t.sourceLang = lang
	}
}

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithExcludedTerms sets terms that should not be translated.
func WithExcludedTerms(terms []string) TranslatorOption {
	return func(t *Translator) {
		t.excludedTerms = terms
	}
}

// WithContext sets the global translation context.
func WithContext(ctx string) TranslatorOption {
	return func(t *Translator) {
		t.context = ctx
	}
}

// WithGlossary sets preferred translations for specific phrases.
func WithGlossary(glossary map[string]string) TranslatorOption {
	return func(t *Translator) {
		t.glossary = glossary
	}
}

// WithStyle sets the translation style/register.
func WithStyle(style TranslationStyle) TranslatorOption {
	return func(t *Translator) {
		t.style = style
	}
}

// WithBatchSize sets how many phrases accumulate before a translation call.
// Larger batches mean fewer round trips but more memory held in the pending
// queue and a larger blast radius when a call fails. Values below 1 are
// clamped to 1.
func WithBatchSize(n int) TranslatorOption {
	return func(t *Translator) {
		if n < 1 {
			n = 1
		}
		t.batchSize = n
	}
}

// WithLogger sets a logger for per-phrase debug events during flushes.
func WithLogger(logger *zap.Logger) TranslatorOption {
	return func(t *Translator) {
		t.logger = logger
	}
}

// NewTranslator creates a new Translator with the given target language and provider.
func NewTranslator(targetLang string, provider AIProvider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		targetLang: targetLang,
		sourceLang: "en",
		provider:   provider,
		style:      StyleNeutral,
		batchSize:  1,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// NewTranslatorFromConfig creates a Translator from a TranslationConfig.
// Zero-valued fields keep their defaults; extra options are applied last.
func NewTranslatorFromConfig(provider AIProvider, cfg TranslationConfig, opts ...TranslatorOption) *Translator {
	base := []TranslatorOption{}
	if cfg.SourceLang != "" {
		base = append(base, WithSourceLang(cfg.SourceLang))
	}
	if len(cfg.ExcludedTerms) > 0 {
		base = append(base, WithExcludedTerms(cfg.ExcludedTerms))
	}
	if cfg.Context != "" {
		base = append(base, WithContext(cfg.Context))
	}
	if len(cfg.Glossary) > 0 {
		base = append(base, WithGlossary(cfg.Glossary))
	}
	if cfg.Style != "" {
		base = append(base, WithStyle(cfg.Style))
	}
	if cfg.BatchSize > 0 {
		base = append(base, WithBatchSize(cfg.BatchSize))
	}
	return NewTranslator(cfg.TargetLang, provider, append(base, opts...)...)
}

// TranslateHTML translates the visible text of one markup document item and
// returns the re-serialized document, declarations intact. Each call uses a
// fresh segmentation buffer; buffers are never shared across items.
//
// A missing provider is a configuration error and fails before any parsing.
// A batch length mismatch from the provider aborts the whole item rather
// than emit a partially translated tree.
func (t *Translator) TranslateHTML(ctx context.Context, content []byte) ([]byte, error) {
	if t.provider == nil {
		return nil, &TranslationError{Message: "no translation provider configured"}
	}

	// Skip if source == target
	if t.IsSourceLang() {
		return content, nil
	}

	result, err := translateVisibleText(ctx, content, t.translatePhrases, BufferConfig{
		BatchSize: t.batchSize,
		Logger:    t.logger,
	})
	if err != nil {
		return nil, err
	}

	return t.setHTMLAttributes(result), nil
}

// translatePhrases is the batch function handed to the segmentation buffer.
// It answers from the cache where possible, sends the deduplicated misses to
// the provider in a single call, and re-expands the results so the output
// has exactly one translation per input phrase.
func (t *Translator) translatePhrases(ctx context.Context, texts []string) ([]string, error) {
	results := make([]string, len(texts))
	resolved := make([]bool, len(texts))

	var missTexts []string
	missIndexes := make(map[string][]int)

	for i, text := range texts {
		key := CacheKey(HashText(text), t.targetLang)
		if t.cache != nil {
			if cached, ok := t.cache.Get(key); ok {
				results[i] = cached
				resolved[i] = true
				continue
			}
		}

		// Deduplicate cache misses
		hash := HashText(text)
		if _, seen := missIndexes[hash]; !seen {
			missTexts = append(missTexts, text)
		}
		missIndexes[hash] = append(missIndexes[hash], i)
	}

	if len(missTexts) > 0 {
		translated, err := t.provider.Translate(ctx, TranslateRequest{
			Texts:         missTexts,
			TargetLang:    t.targetLang,
			SourceLang:    t.sourceLang,
			ExcludedTerms: t.excludedTerms,
			Context:       t.context,
			Glossary:      t.glossary,
			Style:         t.style,
		})
		if err != nil {
			return nil, err
		}
		if len(translated) != len(missTexts) {
			return nil, &BatchMismatchError{Expected: len(missTexts), Got: len(translated)}
		}

		for j, text := range missTexts {
			hash := HashText(text)
			for _, i := range missIndexes[hash] {
				results[i] = translated[j]
				resolved[i] = true
			}
			if t.cache != nil {
				_ = t.cache.Set(CacheKey(hash, t.targetLang), translated[j]) // Ignore cache set errors
			}
		}
	}

	for i := range results {
		if !resolved[i] {
			return nil, &TranslationError{Message: "unresolved phrase in batch"}
		}
	}

	return results, nil
}

// setHTMLAttributes sets lang and dir attributes on the <html> tag.
func (t *Translator) setHTMLAttributes(content []byte) []byte {
	xmlDecl, doctype, rest := stripLeadingDeclarations(string(content))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rest))
	if err != nil {
		return content
	}

	htmlTag := doc.Find("html")
	if htmlTag.Length() == 0 {
		return content
	}
	htmlTag.SetAttr("lang", ToHTMLLang(t.targetLang))
	htmlTag.SetAttr("dir", GetDirection(t.targetLang))

	serialized, err := doc.Html()
	if err != nil {
		return content
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
	return []byte(out.String())
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// IsSourceLang checks if the target language matches the source language.
// When true, translation can be bypassed.
func (t *Translator) IsSourceLang() bool {
	return normalizeBaseLang(t.targetLang) == normalizeBaseLang(t.sourceLang)
}

// IsRTL returns true if the target language uses right-to-left text direction.
func (t *Translator) IsRTL() bool {
	return IsRTL(t.targetLang)
}

// Glossary returns the glossary of preferred translations.
func (t *Translator) Glossary() map[string]string {
	return t.glossary
}

// Style returns the translation style.
func (t *Translator) Style() TranslationStyle {
	return t.style
}

// Context returns the global translation context.
func (t *Translator) Context() string {
	return t.context
}

// ExcludedTerms returns the list of excluded terms.
func (t *Translator) ExcludedTerms() []string {
	return t.excludedTerms
}

// BatchSize returns the configured phrase batch size.
func (t *Translator) BatchSize() int {
	return t.batchSize
}

// normalizeBaseLang extracts the base language code (e.g., "en" from "en_US").
func normalizeBaseLang(lang string) string {
	parts := strings.Split(lang, "_")
	return strings.ToLower(parts[0])
}
