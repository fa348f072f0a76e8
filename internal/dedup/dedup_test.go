package dedup

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geogate/internal/article"
)

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineSimilarity(tc.a, tc.b)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestEvaluateEmptyCorpus(t *testing.T) {
	d := New(nil, NewMemoryIndex(), 0.85)

	sim, dup, err := d.Evaluate(context.Background(), []float32{1, 0, 0})
	require.NoError(t, err)
	assert.Zero(t, sim)
	assert.False(t, dup)
}

// fixedIndex reports a preset nearest similarity, for exercising the
// threshold comparison without having to construct exact-angle vectors.
type fixedIndex struct {
	sim float64
	err error
}

func (f *fixedIndex) Nearest(context.Context, []float32) (float64, error) { return f.sim, f.err }
func (f *fixedIndex) Append(context.Context, Entry) error                 { return nil }
func (f *fixedIndex) Len(context.Context) (int, error)                    { return 1, nil }
func (f *fixedIndex) Close() error                                        { return nil }

func TestEvaluateThresholdIsStrict(t *testing.T) {
	cases := []struct {
		sim  float64
		want bool
	}{
		{0.84, false},
		{0.85, false}, // exactly at the threshold passes
		{math.Nextafter(0.85, 1), true},
		{0.99, true},
	}
	for _, tc := range cases {
		d := New(nil, &fixedIndex{sim: tc.sim}, 0.85)
		sim, dup, err := d.Evaluate(context.Background(), []float32{1})
		require.NoError(t, err)
		assert.Equal(t, tc.sim, sim)
		assert.Equal(t, tc.want, dup, "similarity %v", tc.sim)
	}
}

func TestEvaluateCorpusError(t *testing.T) {
	indexErr := errors.New("connection refused")
	d := New(nil, &fixedIndex{err: indexErr}, 0.85)

	_, _, err := d.Evaluate(context.Background(), []float32{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, indexErr)
}

func TestNewDefaultThreshold(t *testing.T) {
	d := New(nil, NewMemoryIndex(), 0)
	assert.Equal(t, DefaultThreshold, d.Threshold())

	d = New(nil, NewMemoryIndex(), 0.7)
	assert.Equal(t, 0.7, d.Threshold())
}

func TestMemoryIndexNearest(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Append(ctx, Entry{ID: "a", Embedding: []float32{1, 0, 0}}))
	require.NoError(t, idx.Append(ctx, Entry{ID: "b", Embedding: []float32{0, 1, 0}}))

	sim, err := idx.Nearest(ctx, []float32{1, 0, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-9)

	sim, err = idx.Nearest(ctx, []float32{0, 0, 1})
	require.NoError(t, err)
	assert.Zero(t, sim)

	n, err := idx.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryIndexDimensionMismatch(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	require.NoError(t, idx.Append(ctx, Entry{ID: "a", Embedding: []float32{1, 0, 0}}))

	err := idx.Append(ctx, Entry{ID: "b", Embedding: []float32{1, 0}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")

	_, err = idx.Nearest(ctx, []float32{1, 0, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestEmbeddingTextExcludesTemplatedBlocks(t *testing.T) {
	raw := `# Solar Panels Guide

**Meta description:** A long enough meta description about solar panels covering costs, installation choices, maintenance schedules and the questions homeowners ask before buying.

## Introduction

Solar pays for itself within a decade in most regions.

## Panel Types

Monocrystalline panels lead on efficiency.

## FAQ

**Q: Do panels work in winter?**
A: Yes, at reduced output.

## Key Takeaways

- Payback runs eight to twelve years

## Sources

1. [Energy Data](https://energy.example.gov/solar)
`
	doc, err := article.Validate(raw)
	require.NoError(t, err)

	text := EmbeddingText(doc)
	assert.Contains(t, text, "Solar Panels Guide")
	assert.Contains(t, text, "Solar pays for itself")
	assert.Contains(t, text, "Monocrystalline")
	assert.NotContains(t, text, "Do panels work in winter")
	assert.NotContains(t, text, "Payback runs eight")
	assert.NotContains(t, text, "energy.example.gov")
}

func TestEmbeddingTextTruncated(t *testing.T) {
	long := "# Title\n\n## Introduction\n\n" + strings.Repeat("word ", 2000)
	doc, err := article.Validate(long)
	require.NoError(t, err)

	text := EmbeddingText(doc)
	assert.LessOrEqual(t, len(text), 2000)
}

func TestEmbeddingTextTruncatesOnRuneBoundary(t *testing.T) {
	// Accented intro text positions a two-byte rune across the byte
	// limit; the cut must back up rather than split it.
	long := "# Référencement\n\n## Introduction\n\nx" + strings.Repeat("é", 1500)
	doc, err := article.Validate(long)
	require.NoError(t, err)

	text := EmbeddingText(doc)
	assert.LessOrEqual(t, len(text), 2000)
	assert.True(t, utf8.ValidString(text), "truncation must not split a rune")
}

// scriptedEmbedder returns preset vectors, or an error.
type scriptedEmbedder struct {
	vectors [][]float32
	err     error
}

func (s *scriptedEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return s.vectors, s.err
}

func TestCheckRoundTrip(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()
	require.NoError(t, idx.Append(ctx, Entry{ID: "a", Embedding: []float32{1, 0}}))

	d := New(&scriptedEmbedder{vectors: [][]float32{{1, 0}}}, idx, 0.85)
	doc := &article.Document{Title: "Anything"}

	res, err := d.Check(ctx, doc)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.InDelta(t, 1.0, res.NearestSimilarity, 1e-9)
	assert.Equal(t, []float32{1, 0}, res.Embedding)
}

func TestEmbedDocumentRejectsBadVectorCount(t *testing.T) {
	d := New(&scriptedEmbedder{vectors: nil}, NewMemoryIndex(), 0.85)

	_, err := d.EmbedDocument(context.Background(), &article.Document{Title: "X"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0 vectors")
}
