package epubtai

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// segment is one observed text-bearing leaf: a borrowed reference to its node
// in the document tree, the raw text it carried, and the tag name of its
// structural parent at the time it was observed. The node stays attached to
// the tree until reinsertion; after reinsertion the reference is dead.
type segment struct {
	Node      *html.Node
	Text      string
	ParentTag string
}

// phrase is an ordered, non-empty group of segments translated as a single
// unit and collapsed into a single output node. Once committed to the pending
// queue a phrase is never modified.
type phrase []segment

// text concatenates the segment texts in document order, with no separator.
func (p phrase) text() string {
	if len(p) == 1 {
		return p[0].Text
	}
	var b []byte
	for _, s := range p {
		b = append(b, s.Text...)
	}
	return string(b)
}

// parentTags lists the parent tag name of each segment, for diagnostics.
func (p phrase) parentTags() []string {
	tags := make([]string, len(p))
	for i, s := range p {
		tags[i] = s.ParentTag
	}
	return tags
}

// BatchTranslateFunc translates an ordered list of source strings and returns
// the translations in the same order. The output must have exactly the same
// length as the input; any mismatch is treated as a fatal contract violation.
type BatchTranslateFunc func(ctx context.Context, texts []string) ([]string, error)

// BufferConfig configures a TextBuffer.
type BufferConfig struct {
	// BatchSize is the number of committed phrases that triggers a flush.
	// Values below 1 are clamped to 1.
	BatchSize int

	// Logger, when set, receives one debug event per phrase on every flush
	// (original text, translated text, parent tags). Diagnostics only.
	Logger *zap.Logger
}

// TextBuffer groups adjacent text leaves into phrases, batches phrases for
// translation, and writes the results back into the document tree.
//
// A buffer serves exactly one document: segments are fed in document order
// via Add, and a final Flush drains whatever remains. The document tree is
// mutated only while a flush is reinserting translated phrases, never during
// accumulation.
type TextBuffer struct {
	translate BatchTranslateFunc
	batchSize int
	logger    *zap.Logger

	current phrase
	pending []phrase
}

// NewTextBuffer creates a buffer around the given batch translation function.
// The function is required; a nil function is a configuration error.
func NewTextBuffer(translate BatchTranslateFunc, cfg BufferConfig) (*TextBuffer, error) {
	if translate == nil {
		return nil, &TranslationError{Message: "no translation function supplied"}
	}
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	return &TextBuffer{
		translate: translate,
		batchSize: batchSize,
		logger:    cfg.Logger,
	}, nil
}

// Add feeds one text-bearing node to the buffer. The boundary classifier
// decides whether the segment extends the current phrase or starts a new one;
// committing the current phrase may fill the pending queue to the batch size,
// in which case the queue is flushed before Add returns.
func (b *TextBuffer) Add(ctx context.Context, node *html.Node, text string) error {
	seg := segment{
		Node:      node,
		Text:      text,
		ParentTag: parentTagName(node),
	}

	if len(b.current) > 0 && forceBoundary(b.current[len(b.current)-1], seg) {
		b.commit()
	}
	b.current = append(b.current, seg)

	if len(b.pending) >= b.batchSize {
		return b.flushPending(ctx)
	}
	return nil
}

// Flush commits the in-progress phrase and drains the pending queue. It is
// called at the end of traversal and guarantees no segment is left
// unprocessed. Flushing an empty buffer is a no-op, so calling Flush twice in
// a row translates nothing twice.
func (b *TextBuffer) Flush(ctx context.Context) error {
	b.commit()
	return b.flushPending(ctx)
}

// Pending returns the number of committed phrases awaiting translation.
func (b *TextBuffer) Pending() int {
	return len(b.pending)
}

// commit moves the current phrase to the pending queue. Committed phrases are
// non-empty by construction.
func (b *TextBuffer) commit() {
	if len(b.current) == 0 {
		return
	}
	b.pending = append(b.pending, b.current)
	b.current = nil
}

// flushPending translates every pending phrase in one call and reinserts the
// results. On a length mismatch the flush aborts with no tree mutation.
func (b *TextBuffer) flushPending(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}

	texts := make([]string, len(b.pending))
	for i, p := range b.pending {
		texts[i] = p.text()
	}

	translated, err := b.translate(ctx, texts)
	if err != nil {
		return err
	}
	if len(translated) != len(texts) {
		return &BatchMismatchError{Expected: len(texts), Got: len(translated)}
	}

	for i, p := range b.pending {
		if b.logger != nil {
			b.logger.Debug("phrase flushed",
				zap.String("original", texts[i]),
				zap.String("translated", translated[i]),
				zap.Strings("parent_tags", p.parentTags()),
			)
		}
		reinsert(p, translated[i])
	}

	b.pending = nil
	return nil
}

// parentTagName returns the tag name of a node's structural parent, or ""
// when the node has no element parent.
func parentTagName(n *html.Node) string {
	if n == nil || n.Parent == nil || n.Parent.Type != html.ElementNode {
		return ""
	}
	return n.Parent.Data
}
