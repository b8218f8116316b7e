package recall

import (
	"context"
	"fmt"
	"sync"

	"github.com/rcliao/context-memory/internal/store"
)

// MemPersister keeps documents in a map. It is used in tests and when no
// database is configured.
type MemPersister struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// NewMemPersister creates an empty MemPersister.
func NewMemPersister() *MemPersister {
	return &MemPersister{docs: make(map[string][]byte)}
}

func (m *MemPersister) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.docs[name]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", name, store.ErrNotFound)
	}
	return append([]byte(nil), body...), nil
}

func (m *MemPersister) Save(_ context.Context, name string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = append([]byte(nil), body...)
	return nil
}
