package epubtai

import "fmt"

// TranslationError is the base error type for translation failures.
type TranslationError struct {
	Message string
	Cause   error
}

func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates an AI provider failure (API error, rate limit, etc.).
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("cache error: %s", e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// DocumentError indicates a document processing failure (parse error, etc.).
type DocumentError struct {
	Message string
	Cause   error
	Item    string // The document item that failed, when known
}

func (e *DocumentError) Error() string {
	if e.Item != "" {
		if e.Cause != nil {
			return fmt.Sprintf("document error (%s): %s: %v", e.Item, e.Message, e.Cause)
		}
		return fmt.Sprintf("document error (%s): %s", e.Item, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("document error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("document error: %s", e.Message)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// BatchMismatchError indicates the translation backend returned a different
// number of strings than the number of phrases submitted. This is a contract
// violation and is fatal: a misaligned mapping would corrupt the document, so
// the flush is aborted rather than truncated or padded.
type BatchMismatchError struct {
	Expected int
	Got      int
}

func (e *BatchMismatchError) Error() string {
	return fmt.Sprintf("translation batch mismatch: sent %d phrases, got %d translations", e.Expected, e.Got)
}
