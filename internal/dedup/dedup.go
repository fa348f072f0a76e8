// Package dedup decides whether a candidate document is semantically
// novel relative to the corpus of previously accepted documents, using
// embedding cosine similarity against an append-only index.
package dedup

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"geogate/internal/article"
)

// DefaultThreshold is the similarity above which a candidate is
// considered a duplicate.
const DefaultThreshold = 0.85

// embedTextLimit bounds the text sent to the embedding model; the
// opening of an article carries its semantic identity.
const embedTextLimit = 2000

// Embedder is the embedding capability the deduplicator consumes.
// llm.Provider satisfies it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// CheckResult is the outcome of a novelty check.
type CheckResult struct {
	Embedding         []float32
	NearestSimilarity float64
	Duplicate         bool
}

// Deduplicator reads the corpus index and renders duplicate decisions.
// It never writes: appending accepted entries is the orchestrator's
// job, inside its accept critical section.
type Deduplicator struct {
	embedder  Embedder
	index     Index
	threshold float64
}

// New creates a Deduplicator. A non-positive threshold falls back to
// DefaultThreshold.
func New(embedder Embedder, index Index, threshold float64) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Deduplicator{embedder: embedder, index: index, threshold: threshold}
}

// Threshold returns the configured similarity threshold.
func (d *Deduplicator) Threshold() float64 { return d.threshold }

// EmbedDocument computes the embedding for a document. Remote and
// slow; callers run it outside the accept critical section.
func (d *Deduplicator) EmbedDocument(ctx context.Context, doc *article.Document) ([]float32, error) {
	vectors, err := d.embedder.Embed(ctx, []string{EmbeddingText(doc)})
	if err != nil {
		return nil, fmt.Errorf("dedup: embedding: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("dedup: embedder returned %d vectors, want 1", len(vectors))
	}
	return vectors[0], nil
}

// Evaluate reads the corpus and renders the duplicate decision for an
// embedding. A similarity strictly greater than the threshold marks a
// duplicate; a value exactly at the threshold passes.
func (d *Deduplicator) Evaluate(ctx context.Context, vec []float32) (nearest float64, duplicate bool, err error) {
	sim, err := d.index.Nearest(ctx, vec)
	if err != nil {
		return 0, false, fmt.Errorf("dedup: corpus lookup: %w", err)
	}
	return sim, sim > d.threshold, nil
}

// Check embeds the document and evaluates it in one step.
func (d *Deduplicator) Check(ctx context.Context, doc *article.Document) (*CheckResult, error) {
	vec, err := d.EmbedDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	sim, dup, err := d.Evaluate(ctx, vec)
	if err != nil {
		return nil, err
	}
	return &CheckResult{
		Embedding:         vec,
		NearestSimilarity: sim,
		Duplicate:         dup,
	}, nil
}

// EmbeddingText builds the normalized text a document is embedded
// from: title, introduction and free-form body sections. Templated
// blocks (FAQ, takeaways, author) are excluded so that shared
// boilerplate does not inflate similarity.
func EmbeddingText(doc *article.Document) string {
	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteString("\n")
	if intro := doc.Introduction(); intro != "" {
		b.WriteString(intro)
		b.WriteString("\n")
	}
	for _, s := range doc.BodySections() {
		b.WriteString(s.Heading)
		b.WriteString("\n")
		b.WriteString(s.Body)
		b.WriteString("\n")
	}

	text := b.String()
	if len(text) > embedTextLimit {
		cut := embedTextLimit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
