// Package provider defines the AI provider interface and implementations.
package provider

import "github.com/ZaguanLabs/epubtai"

// AIProvider is the interface for AI translation backends.
// This is an alias to the main package interface for convenience.
type AIProvider = epubtai.AIProvider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = epubtai.TranslateRequest
