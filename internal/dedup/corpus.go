package dedup

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// Entry is one accepted document in the corpus: the unit of the
// deduplication reference set. Entries are appended on acceptance and
// never removed or mutated.
type Entry struct {
	ID         string
	TopicID    string
	Embedding  []float32
	AcceptedAt time.Time
}

// Index is the append-only corpus of accepted embeddings.
//
// Nearest returns the maximum cosine similarity between vec and the
// stored entries, 0 for an empty corpus. Implementations must be safe
// for concurrent use; the caller serializes the check-then-append
// sequence itself.
type Index interface {
	Nearest(ctx context.Context, vec []float32) (float64, error)
	Append(ctx context.Context, e Entry) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Returns 0 when either vector is zero.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// MemoryIndex is an in-process Index backed by a slice. It is the
// default backend for single-run pipelines and tests.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries []Entry
	dims    int
}

// NewMemoryIndex creates an empty in-memory corpus.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

func (m *MemoryIndex) Nearest(_ context.Context, vec []float32) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.dims != 0 && len(vec) != m.dims {
		return 0, fmt.Errorf("corpus: embedding dimension mismatch: got %d, index holds %d", len(vec), m.dims)
	}

	best := 0.0
	for _, e := range m.entries {
		if sim := CosineSimilarity(vec, e.Embedding); sim > best {
			best = sim
		}
	}
	return best, nil
}

func (m *MemoryIndex) Append(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dims == 0 {
		m.dims = len(e.Embedding)
	} else if len(e.Embedding) != m.dims {
		return fmt.Errorf("corpus: embedding dimension mismatch: got %d, index holds %d", len(e.Embedding), m.dims)
	}

	m.entries = append(m.entries, e)
	return nil
}

func (m *MemoryIndex) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

func (m *MemoryIndex) Close() error { return nil }
