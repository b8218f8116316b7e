// Package vector provides in-memory similarity search over embedded documents.
package vector

import (
	"sort"
	"sync"

	"github.com/rcliao/context-memory/internal/embedding"
	"github.com/rcliao/context-memory/internal/model"
)

// Hit is one search result.
type Hit struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Text     string            `json:"text,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Searcher is implemented by every index backend.
type Searcher interface {
	// Upsert stores documents that carry a vector and returns how many were stored.
	Upsert(docs []model.VectorDocument) int
	// Query returns the top k documents by similarity, best first.
	Query(vec []float32, k int) []Hit
	Delete(id string)
	Clear()
	Len() int
}

// Index is an exact, linear-scan cosine index.
type Index struct {
	mu   sync.RWMutex
	docs map[string]model.VectorDocument
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{docs: make(map[string]model.VectorDocument)}
}

// Upsert skips documents without a vector. The last write for an id wins.
func (x *Index) Upsert(docs []model.VectorDocument) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	n := 0
	for _, d := range docs {
		if len(d.Vector) == 0 {
			continue
		}
		d.Vector = append([]float32(nil), d.Vector...)
		x.docs[d.ID] = d
		n++
	}
	return n
}

// Query scores every stored document. An empty query vector returns nothing.
func (x *Index) Query(vec []float32, k int) []Hit {
	if len(vec) == 0 || k <= 0 {
		return []Hit{}
	}
	x.mu.RLock()
	hits := make([]Hit, 0, len(x.docs))
	for _, d := range x.docs {
		if len(d.Vector) != len(vec) {
			continue
		}
		hits = append(hits, Hit{
			ID:       d.ID,
			Score:    embedding.CosineSimilarity(vec, d.Vector),
			Text:     d.Text,
			Metadata: d.Metadata,
		})
	}
	x.mu.RUnlock()
	return topK(hits, k)
}

// Get returns the stored document for id.
func (x *Index) Get(id string) (model.VectorDocument, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	d, ok := x.docs[id]
	return d, ok
}

func (x *Index) Delete(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, id)
}

func (x *Index) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.docs = make(map[string]model.VectorDocument)
}

func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

// topK sorts by score descending, ties by id, and truncates to k.
func topK(hits []Hit, k int) []Hit {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
