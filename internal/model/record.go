package model

import "time"

// DefaultRecordKind prefixes document ids for records without a kind.
const DefaultRecordKind = "record"

// Record is a domain record (task, client, quote) that can be embedded.
type Record struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Embedding   []float32 `json:"embedding,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentID ties a vector document back to this record, e.g. "task:42".
func (r Record) DocumentID() string {
	kind := r.Kind
	if kind == "" {
		kind = DefaultRecordKind
	}
	return kind + ":" + r.ID
}

// Text is the string sent to the embedding provider.
func (r Record) Text() string {
	return r.Title + "\n" + r.Description
}

// VectorDocument is an indexable document. It is searchable only once
// Vector is non-empty.
type VectorDocument struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Vector   []float32         `json:"vector,omitempty"`
}
