package vectorindex

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryIndex keeps vectors in process. It backs local runs without
// Postgres and the service tests.
type MemoryIndex struct {
	mu      sync.RWMutex
	vectors map[string]Vector
}

var _ Index = (*MemoryIndex)(nil)

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{vectors: make(map[string]Vector)}
}

func (m *MemoryIndex) Upsert(ctx context.Context, vectors ...Vector) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range vectors {
		if v.ID == "" {
			return fmt.Errorf("vector id is required")
		}
		values := make([]float32, len(v.Values))
		copy(values, v.Values)
		metadata := make(map[string]interface{}, len(v.Metadata))
		for k, val := range v.Metadata {
			metadata[k] = val
		}
		m.vectors[v.ID] = Vector{ID: v.ID, Values: values, Metadata: metadata}
	}
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, req QueryRequest) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0)
	for _, v := range m.vectors {
		if !matchesFilter(v.Metadata, req.Filter) {
			continue
		}
		matches = append(matches, Match{
			ID:       v.ID,
			Score:    cosineSimilarity(req.Vector, v.Values),
			Metadata: v.Metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})

	if req.TopK > 0 && len(matches) > req.TopK {
		matches = matches[:req.TopK]
	}
	return matches, nil
}

func (m *MemoryIndex) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vectors, id)
	return nil
}

// Get returns a copy of the stored vector.
func (m *MemoryIndex) Get(id string) (Vector, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vectors[id]
	return v, ok
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}

func matchesFilter(metadata map[string]interface{}, filter map[string]string) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
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
