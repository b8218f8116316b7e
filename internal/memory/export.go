package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/context-memory/internal/model"
)

// SnapshotVersion is written into every export.
const SnapshotVersion = 1

// ErrInvalidSnapshot is returned when an import payload lacks the expected arrays.
var ErrInvalidSnapshot = errors.New("invalid memory snapshot")

// Snapshot is the exported form of a store.
type Snapshot struct {
	Version    int                    `json:"version"`
	ExportedAt time.Time              `json:"exported_at"`
	Entries    []model.MemoryEntry    `json:"entries"`
	Patterns   []model.ContextPattern `json:"patterns"`
}

// importSnapshot uses pointers so missing arrays can be told apart from empty ones.
type importSnapshot struct {
	Version  int                     `json:"version"`
	Entries  *[]model.MemoryEntry    `json:"entries"`
	Patterns *[]model.ContextPattern `json:"patterns"`
}

// Export serializes all entries and patterns.
func (s *Store) Export() ([]byte, error) {
	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Entries:    s.Entries(),
		Patterns:   s.Patterns(),
	}
	if snap.Entries == nil {
		snap.Entries = []model.MemoryEntry{}
	}
	if snap.Patterns == nil {
		snap.Patterns = []model.ContextPattern{}
	}
	return json.MarshalIndent(snap, "", "  ")
}

// Import replaces the store contents with an exported snapshot. A payload
// that does not parse or lacks either array leaves the store untouched.
func (s *Store) Import(data []byte) error {
	var snap importSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if snap.Entries == nil || snap.Patterns == nil {
		return fmt.Errorf("%w: entries and patterns are required", ErrInvalidSnapshot)
	}
	for i, e := range *snap.Entries {
		if e.ID == "" || e.Timestamp.IsZero() {
			return fmt.Errorf("%w: entry %d missing id or timestamp", ErrInvalidSnapshot, i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.restore(*snap.Entries, *snap.Patterns)
	return nil
}

// MarshalEntries encodes the log as a standalone JSON document.
func MarshalEntries(entries []model.MemoryEntry) ([]byte, error) {
	if entries == nil {
		entries = []model.MemoryEntry{}
	}
	return json.Marshal(entries)
}

// UnmarshalEntries decodes a log document written by MarshalEntries.
func UnmarshalEntries(data []byte) ([]model.MemoryEntry, error) {
	var entries []model.MemoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return entries, nil
}

// MarshalPatterns encodes the pattern table.
func MarshalPatterns(patterns []model.ContextPattern) ([]byte, error) {
	if patterns == nil {
		patterns = []model.ContextPattern{}
	}
	return json.Marshal(patterns)
}

// UnmarshalPatterns decodes a pattern table document.
func UnmarshalPatterns(data []byte) ([]model.ContextPattern, error) {
	var patterns []model.ContextPattern
	if err := json.Unmarshal(data, &patterns); err != nil {
		return nil, fmt.Errorf("decode patterns: %w", err)
	}
	return patterns, nil
}
