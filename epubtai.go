// Package epubtai provides an AI-powered EPUB translation engine.
//
// Epubtai translates the visible text of EPUB documents using AI providers
// (OpenAI, etc.) while preserving the markup structure of every chapter.
// Adjacent text fragments are grouped into phrases by a segmentation buffer,
// translated in batches, and reinserted at their original positions in the
// document tree.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/epubtai"
//	    "github.com/ZaguanLabs/epubtai/cache"
//	    "github.com/ZaguanLabs/epubtai/epub"
//	    "github.com/ZaguanLabs/epubtai/provider"
//	)
//
//	func main() {
//	    // Create provider
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    // Create translator
//	    t := epubtai.NewTranslator("it_IT", p,
//	        epubtai.WithCache(cache.NewInMemoryCache(3600)),
//	    )
//
//	    // Translate a book
//	    book, err := epub.ReadFile("book.epub")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    translated, err := epub.Translate(context.Background(), book, t)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := epub.WriteFile("book.it.epub", translated); err != nil {
//	        log.Fatal(err)
//	    }
//	}
package epubtai
