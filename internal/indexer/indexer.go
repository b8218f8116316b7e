// Package indexer embeds domain records and keeps the vector index in sync
// with the vectors persisted on those records.
package indexer

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rcliao/context-memory/internal/embedding"
	"github.com/rcliao/context-memory/internal/logging"
	"github.com/rcliao/context-memory/internal/model"
	"github.com/rcliao/context-memory/internal/vector"
)

// VectorSink persists vectors back onto their owning records, keyed by
// document id ("kind:id").
type VectorSink interface {
	SaveVectors(ctx context.Context, vectors map[string][]float32) error
}

// Result summarizes one indexing pass.
type Result struct {
	Documents int  `json:"documents"`
	Indexed   int  `json:"indexed"`
	Degraded  bool `json:"degraded"`
}

// Indexer turns records into vector documents.
type Indexer struct {
	bridge *embedding.Bridge
	index  vector.Searcher
	sink   VectorSink
	log    logrus.FieldLogger
}

// New creates an Indexer. sink may be nil, in which case vectors live only in
// the index.
func New(bridge *embedding.Bridge, index vector.Searcher, sink VectorSink, log logrus.FieldLogger) *Indexer {
	return &Indexer{
		bridge: bridge,
		index:  index,
		sink:   sink,
		log:    logging.OrDiscard(log).WithField("component", "indexer"),
	}
}

// Index returns the underlying searcher.
func (ix *Indexer) Index() vector.Searcher { return ix.index }

// IndexRecords embeds all records in one batch. When the provider returns no
// usable vector the pass is abandoned: nothing is persisted or upserted and
// the result is marked degraded. Only a persistence failure is an error.
func (ix *Indexer) IndexRecords(ctx context.Context, records []model.Record, opts embedding.Options) (Result, error) {
	docs := documents(records)
	res := Result{Documents: len(docs)}
	if len(docs) == 0 {
		return res, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vecs := ix.bridge.Embed(ctx, texts, opts)

	usable := 0
	for i := range docs {
		docs[i].Vector = vecs[i]
		if len(vecs[i]) > 0 {
			usable++
		}
	}
	if usable == 0 {
		ix.log.WithField("documents", len(docs)).Warn("no embeddings returned, index not updated")
		res.Degraded = true
		return res, nil
	}

	if ix.sink != nil {
		byRecord := make(map[string][]float32, usable)
		for i, r := range records {
			if len(vecs[i]) > 0 {
				byRecord[r.DocumentID()] = vecs[i]
			}
		}
		if err := ix.sink.SaveVectors(ctx, byRecord); err != nil {
			return res, fmt.Errorf("persist vectors: %w", err)
		}
	}

	res.Indexed = ix.index.Upsert(docs)
	ix.log.WithFields(logrus.Fields{"documents": len(docs), "indexed": res.Indexed}).Debug("indexed records")
	return res, nil
}

// QueryRecords embeds text and returns the k nearest documents. An empty
// query vector yields no hits.
func (ix *Indexer) QueryRecords(ctx context.Context, text string, k int, opts embedding.Options) []vector.Hit {
	vec := ix.bridge.EmbedOne(ctx, text, opts)
	if len(vec) == 0 {
		return []vector.Hit{}
	}
	return ix.index.Query(vec, k)
}

// Warm loads records that already carry a persisted embedding, so queries
// work without re-embedding.
func (ix *Indexer) Warm(records []model.Record) int {
	docs := documents(records)
	for i, r := range records {
		docs[i].Vector = r.Embedding
	}
	n := ix.index.Upsert(docs)
	ix.log.WithField("documents", n).Debug("warmed index from stored vectors")
	return n
}

func documents(records []model.Record) []model.VectorDocument {
	docs := make([]model.VectorDocument, len(records))
	for i, r := range records {
		kind := r.Kind
		if kind == "" {
			kind = model.DefaultRecordKind
		}
		docs[i] = model.VectorDocument{
			ID:   r.DocumentID(),
			Text: r.Text(),
			Metadata: map[string]string{
				"record_id": r.ID,
				"kind":      kind,
				"title":     r.Title,
			},
		}
	}
	return docs
}
