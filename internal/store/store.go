// Package store provides durable storage for engine state and domain records,
// with a SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/context-memory/internal/model"
)

// Document names written by the recall service.
const (
	DocMemoryLog       = "memory_log"
	DocMemoryLogBackup = "memory_log_backup"
	DocPatterns        = "context_patterns"
)

// ErrNotFound is returned when a document or record does not exist.
var ErrNotFound = errors.New("not found")

// PutRecordParams holds parameters for storing a domain record.
type PutRecordParams struct {
	ID          string // generated when empty
	Kind        string
	Title       string
	Description string
}

// ListRecordsParams holds parameters for listing records.
type ListRecordsParams struct {
	Kind          string
	Limit         int // 0 means no limit
	EmbeddedOnly  bool
	WithEmbedding bool
}

// SearchRecordsParams holds parameters for lexical record search.
type SearchRecordsParams struct {
	Query string
	Kind  string
	Limit int
}

// Store defines the storage interface.
type Store interface {
	// Load returns the body of a named document, or ErrNotFound.
	Load(ctx context.Context, name string) ([]byte, error)

	// Save writes a named document, replacing any previous body.
	Save(ctx context.Context, name string, body []byte) error

	// PutRecord stores or updates a record. Changing the title or
	// description drops any stored embedding.
	PutRecord(ctx context.Context, p PutRecordParams) (*model.Record, error)

	// GetRecord returns one record by kind and id.
	GetRecord(ctx context.Context, kind, id string) (*model.Record, error)

	// ListRecords lists records, most recently updated first.
	ListRecords(ctx context.Context, p ListRecordsParams) ([]model.Record, error)

	// RmRecord deletes a record.
	RmRecord(ctx context.Context, kind, id string) error

	// SaveVectors attaches embeddings to records keyed by document id.
	SaveVectors(ctx context.Context, vectors map[string][]float32) error

	// SearchRecords matches records by substring.
	SearchRecords(ctx context.Context, p SearchRecordsParams) ([]model.Record, error)

	// DomainContext snapshots every record for specific-entity matching.
	DomainContext(ctx context.Context) (*model.DomainContext, error)

	// Close closes the store.
	Close() error
}
