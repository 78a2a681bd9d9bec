// Package cache provides phrase translation caching implementations.
//
// Cache keys pair a phrase text hash with the target language, so a phrase
// translated once in one chapter is answered from cache in every later
// chapter of the book.
package cache

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation in the cache.
	Set(key string, value string) error
}
