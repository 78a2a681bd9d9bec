package epubtai

// TranslationStyle controls the tone and formality of translations.
type TranslationStyle string

const (
	// StyleFormal uses formal, professional language suitable for official documents.
	StyleFormal TranslationStyle = "formal"
	// StyleNeutral uses a neutral, professional tone suitable for general content.
	StyleNeutral TranslationStyle = "neutral"
	// StyleCasual uses casual, conversational language suitable for light reading.
	StyleCasual TranslationStyle = "casual"
	// StyleLiterary uses rich, expressive language suitable for fiction and prose.
	StyleLiterary TranslationStyle = "literary"
	// StyleTechnical uses precise, technical language for documentation.
	StyleTechnical TranslationStyle = "technical"
)

// TranslationConfig holds configuration for the translator.
type TranslationConfig struct {
	TargetLang    string            // Target language code (e.g., "it_IT", "ja_JP")
	SourceLang    string            // Source language code (default: "en")
	ExcludedTerms []string          // Terms to never translate (e.g., proper names)
	Context       string            // Global context for all translations
	Glossary      map[string]string // Preferred translations for specific phrases
	Style         TranslationStyle  // Translation style/register (default: neutral)
	BatchSize     int               // Phrases per translation call (default: 1)
}

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// BlockingTags contains tags whose text must never be merged with neighboring
// text into a single phrase (anchors, headings, titles).
var BlockingTags = map[string]bool{
	"a":     true,
	"h1":    true,
	"h2":    true,
	"title": true,
}

// InvalidTags contains tags that can never serve as the structural context of
// a translated phrase. A bare text leaf under one of these gets a generic <p>
// wrapper instead of a clone of its parent.
var InvalidTags = map[string]bool{
	"script": true,
	"style":  true,
	"meta":   true,
}

// InvisibleParents contains tags whose text content is never eligible for
// translation and is skipped entirely during document traversal.
var InvisibleParents = map[string]bool{
	"style":  true,
	"script": true,
	"head":   true,
	"meta":   true,
}
