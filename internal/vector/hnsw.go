package vector

import (
	"maps"
	"slices"
	"sync"

	"github.com/coder/hnsw"

	"github.com/rcliao/context-memory/internal/embedding"
	"github.com/rcliao/context-memory/internal/model"
)

// HNSWIndex is an approximate index over a coder/hnsw graph. Results are
// rescored with exact cosine similarity so scores match Index.
//
// The graph is append-only. Replacing or deleting a stored vector marks it
// stale and the next Query rebuilds it from docs.
type HNSWIndex struct {
	mu    sync.Mutex
	graph *hnsw.Graph[string]
	docs  map[string]model.VectorDocument
	dim   int // fixed by the first stored vector
	stale bool
}

// NewHNSWIndex creates an empty HNSW-backed index.
func NewHNSWIndex() *HNSWIndex {
	return &HNSWIndex{
		graph: hnsw.NewGraph[string](),
		docs:  make(map[string]model.VectorDocument),
	}
}

// Upsert skips documents without a vector or whose dimension differs from
// the index.
func (x *HNSWIndex) Upsert(docs []model.VectorDocument) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	n := 0
	for _, d := range docs {
		if len(d.Vector) == 0 {
			continue
		}
		if x.dim == 0 {
			x.dim = len(d.Vector)
		}
		if len(d.Vector) != x.dim {
			continue
		}
		d.Vector = append([]float32(nil), d.Vector...)
		prev, ok := x.docs[d.ID]
		switch {
		case !ok && !x.stale:
			x.graph.Add(hnsw.MakeNode(d.ID, d.Vector))
		case ok && !slices.Equal(prev.Vector, d.Vector):
			x.stale = true
		}
		x.docs[d.ID] = d
		n++
	}
	return n
}

func (x *HNSWIndex) Query(vec []float32, k int) []Hit {
	x.mu.Lock()
	defer x.mu.Unlock()
	if len(vec) == 0 || k <= 0 || len(x.docs) == 0 || len(vec) != x.dim {
		return []Hit{}
	}
	if x.stale {
		x.rebuild()
	}
	nodes := x.graph.Search(vec, k)
	hits := make([]Hit, 0, len(nodes))
	for _, n := range nodes {
		d, ok := x.docs[n.Key]
		if !ok {
			continue
		}
		hits = append(hits, Hit{
			ID:       d.ID,
			Score:    embedding.CosineSimilarity(vec, d.Vector),
			Text:     d.Text,
			Metadata: d.Metadata,
		})
	}
	return topK(hits, k)
}

func (x *HNSWIndex) Delete(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.docs[id]; !ok {
		return
	}
	delete(x.docs, id)
	x.stale = true
}

// rebuild replaces the graph with one holding exactly the current docs.
func (x *HNSWIndex) rebuild() {
	g := hnsw.NewGraph[string]()
	for _, id := range slices.Sorted(maps.Keys(x.docs)) {
		g.Add(hnsw.MakeNode(id, x.docs[id].Vector))
	}
	x.graph = g
	x.stale = false
}

func (x *HNSWIndex) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.graph = hnsw.NewGraph[string]()
	x.docs = make(map[string]model.VectorDocument)
	x.dim = 0
	x.stale = false
}

func (x *HNSWIndex) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.docs)
}

// NewSearcher returns the backend named by kind: "hnsw" or the default
// linear index.
func NewSearcher(kind string) Searcher {
	if kind == "hnsw" {
		return NewHNSWIndex()
	}
	return NewIndex()
}
