// Package recall wires the extractor, memory store and priority engine
// together and keeps the memory log durable.
//
// Every mutation is followed by a flush of three documents: the entry log,
// a backup copy of the log, and the pattern table. On open the log is read
// from the primary document, falling back to the backup when the primary
// does not parse.
package recall

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rcliao/context-memory/internal/extract"
	"github.com/rcliao/context-memory/internal/logging"
	"github.com/rcliao/context-memory/internal/memory"
	"github.com/rcliao/context-memory/internal/model"
	"github.com/rcliao/context-memory/internal/priority"
	"github.com/rcliao/context-memory/internal/store"
)

// Persister stores named documents.
type Persister interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, body []byte) error
}

// DomainSource supplies the record snapshot used for specific-entity matching.
type DomainSource interface {
	DomainContext(ctx context.Context) (*model.DomainContext, error)
}

// Options configures a Service.
type Options struct {
	Memory    memory.Options
	Priority  priority.Config
	Domain    DomainSource // optional
	SessionID string       // generated when empty
	Clock     func() time.Time
	Log       logrus.FieldLogger
}

// Turn is one conversational exchange to remember.
type Turn struct {
	Query     string   `json:"query"`
	Response  string   `json:"response"`
	Actions   []string `json:"actions,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
}

// Service is the engine facade used by the CLI.
type Service struct {
	mem     *memory.Store
	engine  *priority.Engine
	persist Persister
	domain  DomainSource
	session string
	log     logrus.FieldLogger

	mu    sync.Mutex
	dirty bool
}

// Open rehydrates a Service from p. Unreadable documents are logged and
// replaced by empty state; only an invalid priority config is an error.
func Open(ctx context.Context, p Persister, opts Options) (*Service, error) {
	if opts.Priority == (priority.Config{}) {
		opts.Priority = priority.DefaultConfig()
	}
	if err := opts.Priority.Validate(); err != nil {
		return nil, err
	}
	if opts.Clock != nil && opts.Memory.Clock == nil {
		opts.Memory.Clock = opts.Clock
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}

	s := &Service{
		mem:     memory.New(opts.Memory),
		engine:  priority.New(opts.Priority, opts.Clock),
		persist: p,
		domain:  opts.Domain,
		session: opts.SessionID,
		log:     logging.OrDiscard(opts.Log).WithField("component", "recall"),
	}

	entries := s.loadEntries(ctx)
	patterns := s.loadPatterns(ctx)
	s.mem.Restore(entries, patterns)
	s.log.WithFields(logrus.Fields{
		"entries":  len(entries),
		"patterns": len(patterns),
	}).Debug("memory loaded")
	return s, nil
}

func (s *Service) loadEntries(ctx context.Context) []model.MemoryEntry {
	for _, name := range []string{store.DocMemoryLog, store.DocMemoryLogBackup} {
		body, err := s.persist.Load(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			s.log.WithError(err).WithField("document", name).Warn("load failed")
			continue
		}
		entries, err := memory.UnmarshalEntries(body)
		if err != nil {
			s.log.WithError(err).WithField("document", name).Warn("memory log corrupt")
			continue
		}
		return entries
	}
	return nil
}

func (s *Service) loadPatterns(ctx context.Context) []model.ContextPattern {
	body, err := s.persist.Load(ctx, store.DocPatterns)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.WithError(err).Warn("load patterns failed")
		}
		return nil
	}
	patterns, err := memory.UnmarshalPatterns(body)
	if err != nil {
		s.log.WithError(err).Warn("pattern table corrupt")
		return nil
	}
	return patterns
}

// SessionID is the session assigned to turns that do not name one.
func (s *Service) SessionID() string { return s.session }

// Record extracts signals from t, stores the entry and flushes. A failed
// flush is logged and the entry stays in memory; see Sync.
func (s *Service) Record(ctx context.Context, t Turn) model.MemoryEntry {
	var domain *model.DomainContext
	if s.domain != nil {
		dc, err := s.domain.DomainContext(ctx)
		if err != nil {
			s.log.WithError(err).Warn("domain snapshot unavailable")
		} else {
			domain = dc
		}
	}

	sig := extract.Turn(t.Query, t.Response, t.Actions, domain)
	session := t.SessionID
	if session == "" {
		session = s.session
	}
	entry := s.mem.AddEntry(memory.Partial{
		SessionID:      session,
		UserQuery:      t.Query,
		AIResponse:     t.Response,
		EntityMentions: sig.MentionNames(),
		Topics:         sig.Topics,
		Sentiment:      sig.Sentiment,
		Importance:     sig.Importance,
		ActionsTaken:   t.Actions,
	})
	s.log.WithFields(logrus.Fields{
		"id":         entry.ID,
		"topics":     entry.Topics,
		"importance": entry.Importance,
	}).Debug("recorded turn")

	s.flush(ctx)
	return entry
}

// Context ranks remembered entries for query within the configured budget.
func (s *Service) Context(query string, topics []string) []priority.Score {
	return s.engine.Prioritize(s.mem.Entries(), query, topics)
}

// Search runs a lexical search over the log.
func (s *Service) Search(query string, limit int) []memory.SearchResult {
	return s.mem.Search(query, limit)
}

// TopPatterns returns the most frequent query patterns.
func (s *Service) TopPatterns(limit int) []model.ContextPattern {
	return s.mem.TopPatterns(limit)
}

// Entries returns the log, newest first.
func (s *Service) Entries() []model.MemoryEntry {
	return s.mem.Entries()
}

// Config returns the active priority configuration.
func (s *Service) Config() priority.Config {
	return s.engine.Config()
}

// Export serializes the log and pattern table.
func (s *Service) Export() ([]byte, error) {
	return s.mem.Export()
}

// Import replaces all state with an exported snapshot and flushes. An
// invalid payload leaves state and storage untouched.
func (s *Service) Import(ctx context.Context, data []byte) error {
	if err := s.mem.Import(data); err != nil {
		return err
	}
	s.flush(ctx)
	return nil
}

// Clear drops every entry and pattern and flushes.
func (s *Service) Clear(ctx context.Context) {
	s.mem.Clear()
	s.flush(ctx)
}

// Sync retries a flush that previously failed. It returns nil when nothing
// is pending.
func (s *Service) Sync(ctx context.Context) error {
	s.mu.Lock()
	dirty := s.dirty
	s.mu.Unlock()
	if !dirty {
		return nil
	}
	return s.flush(ctx)
}

func (s *Service) flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.write(ctx)
	if err != nil {
		s.dirty = true
		s.log.WithError(err).Warn("flush failed, state kept in memory")
		return err
	}
	s.dirty = false
	return nil
}

func (s *Service) write(ctx context.Context) error {
	log, err := memory.MarshalEntries(s.mem.Entries())
	if err != nil {
		return err
	}
	patterns, err := memory.MarshalPatterns(s.mem.Patterns())
	if err != nil {
		return err
	}
	docs := []struct {
		name string
		body []byte
	}{
		{store.DocMemoryLog, log},
		{store.DocMemoryLogBackup, log},
		{store.DocPatterns, patterns},
	}
	for _, d := range docs {
		if err := s.persist.Save(ctx, d.name, d.body); err != nil {
			return fmt.Errorf("flush %s: %w", d.name, err)
		}
	}
	return nil
}
