package provider

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider is a mock AI provider for testing and dry runs.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	CallCount    int               // Number of times Translate was called
	LastRequest  *TranslateRequest // Last request received
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":          "Ciao",
			"World":          "Mondo",
			"Hello world.":   "Ciao mondo.",
			"Chapter One":    "Capitolo Uno",
			"The beginning.": "L'inizio.",
		},
	}
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	m.CallCount++
	m.LastRequest = &req

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = translation
		} else {
			// Return bracketed text for unknown translations
			results[i] = fmt.Sprintf("[%s]", text)
		}
	}

	return results, nil
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.CallCount = 0
	m.LastRequest = nil
}

// Verify MockProvider implements AIProvider
var _ AIProvider = (*MockProvider)(nil)

// EchoProvider returns every text unchanged and records what it saw. Used by
// the CLI's dry-run mode to list the phrases a real run would translate.
type EchoProvider struct {
	CallCount int
	Seen      []string
}

// Translate echoes the input texts and records them.
func (e *EchoProvider) Translate(ctx context.Context, req TranslateRequest) ([]string, error) {
	e.CallCount++
	e.Seen = append(e.Seen, req.Texts...)

	results := make([]string, len(req.Texts))
	copy(results, req.Texts)
	return results, nil
}

// Phrases returns the recorded phrases joined for display.
func (e *EchoProvider) Phrases() string {
	return strings.Join(e.Seen, "\n")
}

// Verify EchoProvider implements AIProvider
var _ AIProvider = (*EchoProvider)(nil)
