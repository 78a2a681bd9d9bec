// Command epubtai translates EPUB books using AI.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ZaguanLabs/epubtai"
	"github.com/ZaguanLabs/epubtai/cache"
	"github.com/ZaguanLabs/epubtai/epub"
	"github.com/ZaguanLabs/epubtai/provider"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = epubtai.Version
	commit    = epubtai.GitCommit
	buildDate = epubtai.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("epubtai", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Flags
	targetLang := fs.String("lang", "", "Target language code (e.g., it_IT, ja_JP)")
	sourceLang := fs.String("source", "en", "Source language code")
	output := fs.String("output", "", "Output EPUB file (default: <input>.<lang>.epub)")
	outputShort := fs.String("o", "", "Output EPUB file (short for --output)")
	apiKey := fs.String("api-key", "", "OpenAI API key (default: OPENAI_API_KEY env)")
	model := fs.String("model", "gpt-4o-mini", "OpenAI model to use")
	contextStr := fs.String("context", "", "Translation context (e.g., 'A 19th-century adventure novel')")
	exclude := fs.String("exclude", "", "Comma-separated terms to never translate")
	style := fs.String("style", "", "Translation style (formal, neutral, casual, literary, technical)")
	batchSize := fs.Int("batch-size", 1, "Phrases per translation call")
	cacheTTL := fs.Int("cache-ttl", 3600, "Cache TTL in seconds (0 to disable)")
	cacheFile := fs.String("cache-file", "", "Load/save the phrase cache as JSON at this path")
	showVersion := fs.Bool("version", false, "Show version")
	quiet := fs.Bool("quiet", false, "Suppress progress output")
	debug := fs.Bool("debug", false, "Log each flushed phrase")
	dryRun := fs.Bool("dry-run", false, "List the phrases that would be translated without calling the API")
	check := fs.Bool("check", false, "Validate the translated book against the original")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", epubtai.Name, version)
		if commit != "unknown" && commit != "" {
			fmt.Fprintf(stdout, "  commit:  %s\n", commit)
		}
		if buildDate != "unknown" && buildDate != "" {
			fmt.Fprintf(stdout, "  built:   %s\n", buildDate)
		}
		return nil
	}

	// Handle -o alias for --output
	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	// Validate required flags
	if *targetLang == "" {
		fs.Usage()
		return fmt.Errorf("--lang is required")
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("input EPUB file is required")
	}

	inputPath := fs.Arg(0)
	book, err := epub.ReadFile(inputPath)
	if err != nil {
		return err
	}

	// Build options
	opts := []epubtai.TranslatorOption{
		epubtai.WithSourceLang(*sourceLang),
		epubtai.WithBatchSize(*batchSize),
	}

	var memCache *cache.InMemoryCache
	if *cacheTTL > 0 {
		memCache = cache.NewInMemoryCache(*cacheTTL)
		if *cacheFile != "" {
			if result, err := cache.NewImporter(memCache).ImportFromFile(*cacheFile); err == nil && !*quiet {
				fmt.Fprintf(stderr, "Loaded %d cached phrases from %s\n", result.Imported, *cacheFile)
			}
		}
		opts = append(opts, epubtai.WithCache(memCache))
	}

	if *contextStr != "" {
		opts = append(opts, epubtai.WithContext(*contextStr))
	}
	if *style != "" {
		opts = append(opts, epubtai.WithStyle(epubtai.TranslationStyle(*style)))
	}
	if *exclude != "" {
		terms := strings.Split(*exclude, ",")
		for i := range terms {
			terms[i] = strings.TrimSpace(terms[i])
		}
		opts = append(opts, epubtai.WithExcludedTerms(terms))
	}
	if *debug {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating debug logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
		opts = append(opts, epubtai.WithLogger(logger))
	}

	// Handle dry-run mode
	if *dryRun {
		return runDryRun(book, *targetLang, opts, stdout)
	}

	// Get API key
	key := *apiKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return fmt.Errorf("OpenAI API key required (--api-key or OPENAI_API_KEY env)")
	}

	// Create provider, wrapped with retry
	p := provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey: key,
		Model:  *model,
	})
	retryable := epubtai.NewRetryableProvider(p, epubtai.DefaultRetryConfig())

	translator := epubtai.NewTranslator(*targetLang, retryable, opts...)

	if !*quiet {
		fmt.Fprintf(stderr, "Translating %s to %s (%d document items)...\n",
			filepath.Base(inputPath), *targetLang, len(book.DocumentNames()))
	}

	start := time.Now()
	translated, err := epub.Translate(context.Background(), book, translator)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	outPath := *output
	if outPath == "" {
		outPath = defaultOutputPath(inputPath, *targetLang)
	}
	if err := epub.WriteFile(outPath, translated); err != nil {
		return err
	}

	if memCache != nil && *cacheFile != "" {
		if err := cache.NewExporter(memCache).ExportToFile(*cacheFile, map[string]string{
			"target_lang": *targetLang,
			"source":      filepath.Base(inputPath),
		}); err != nil && !*quiet {
			fmt.Fprintf(stderr, "warning: saving cache: %v\n", err)
		}
	}

	if !*quiet {
		fmt.Fprintf(stderr, "Done in %v -> %s\n", elapsed.Round(time.Millisecond), outPath)
	}

	if *check {
		report := epub.Check(book, translated)
		report.Print(stdout)
		if !report.OK() {
			return fmt.Errorf("translated book failed validation")
		}
	}

	return nil
}

// runDryRun walks every document item with an echo provider and lists the
// phrases a real run would send to the API. No API key needed.
func runDryRun(book *epub.Book, targetLang string, opts []epubtai.TranslatorOption, stdout io.Writer) error {
	echo := &provider.EchoProvider{}
	translator := epubtai.NewTranslator(targetLang, echo, opts...)

	if _, err := epub.Translate(context.Background(), book, translator); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Dry run: %d phrases in %d translation calls\n\n", len(echo.Seen), echo.CallCount)
	for i, text := range echo.Seen {
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Fprintf(stdout, "%4d. %q\n", i+1, text)
	}
	return nil
}

// defaultOutputPath derives "book.it_IT.epub" from "book.epub".
func defaultOutputPath(inputPath, targetLang string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(inputPath, ext)
	if ext == "" {
		ext = ".epub"
	}
	return base + "." + targetLang + ext
}
