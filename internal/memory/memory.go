// Package memory holds the append-only conversation log and the table of
// recurring query patterns. It performs no I/O; persistence is driven by the
// caller through Export/Import and Restore.
package memory

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/context-memory/internal/extract"
	"github.com/rcliao/context-memory/internal/model"
)

const (
	// DefaultCapacity is the number of entries kept before the oldest is evicted.
	DefaultCapacity = 500
	// DefaultPatternLimit caps the pattern table.
	DefaultPatternLimit = 2000

	patternMinLen = 4
)

// Options configures a Store.
type Options struct {
	Capacity     int
	PatternLimit int
	Clock        func() time.Time
}

// Partial is an entry before the store assigns its id and timestamp.
// Signals are extracted upstream.
type Partial struct {
	SessionID      string
	UserQuery      string
	AIResponse     string
	EntityMentions []string
	Topics         []string
	Sentiment      model.Sentiment
	Importance     float64
	ActionsTaken   []string
}

// Store is the in-memory entry log plus pattern table. Entries are kept
// newest first.
type Store struct {
	mu       sync.RWMutex
	entries  []model.MemoryEntry
	patterns map[string]*model.ContextPattern

	capacity     int
	patternLimit int
	clock        func() time.Time
	entropy      *rand.Rand
}

// New creates an empty store.
func New(opts Options) *Store {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.PatternLimit <= 0 {
		opts.PatternLimit = DefaultPatternLimit
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Store{
		patterns:     make(map[string]*model.ContextPattern),
		capacity:     opts.Capacity,
		patternLimit: opts.PatternLimit,
		clock:        opts.Clock,
		entropy:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *Store) newID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// AddEntry stores a new entry at the head of the log and updates the
// pattern table from its query tokens.
func (s *Store) AddEntry(p Partial) model.MemoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock().UTC()
	sentiment := p.Sentiment
	if sentiment == "" {
		sentiment = model.SentimentNeutral
	}
	topics := p.Topics
	if len(topics) == 0 {
		topics = []string{model.DefaultTopic}
	}
	importance := p.Importance
	if importance == 0 {
		importance = 5
	}

	entry := model.MemoryEntry{
		ID:             s.newID(now),
		Timestamp:      now,
		SessionID:      p.SessionID,
		UserQuery:      p.UserQuery,
		AIResponse:     p.AIResponse,
		EntityMentions: append([]string{}, p.EntityMentions...),
		Topics:         append([]string{}, topics...),
		Sentiment:      sentiment,
		Importance:     clamp(importance, 1, 10),
		ActionsTaken:   append([]string(nil), p.ActionsTaken...),
	}

	s.entries = append([]model.MemoryEntry{entry}, s.entries...)
	if len(s.entries) > s.capacity {
		s.entries = s.entries[:s.capacity]
	}

	s.trackPatterns(entry, now)
	return entry
}

func (s *Store) trackPatterns(e model.MemoryEntry, now time.Time) {
	acted := len(e.ActionsTaken) > 0
	for _, tok := range extract.Tokens(e.UserQuery, patternMinLen) {
		p, ok := s.patterns[tok]
		if !ok {
			p = &model.ContextPattern{Pattern: tok, SuccessRate: 0.5}
			s.patterns[tok] = p
		}
		p.Frequency++
		p.LastSeen = now
		p.Contexts = union(p.Contexts, e.Topics)
		if acted {
			p.SuccessRate = 1
		}
	}
	s.evictPatterns()
}

// evictPatterns drops the least recently seen patterns above the limit.
func (s *Store) evictPatterns() {
	over := len(s.patterns) - s.patternLimit
	if over <= 0 {
		return
	}
	all := make([]*model.ContextPattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].LastSeen.Equal(all[j].LastSeen) {
			if all[i].Frequency != all[j].Frequency {
				return all[i].Frequency < all[j].Frequency
			}
			return all[i].Pattern < all[j].Pattern
		}
		return all[i].LastSeen.Before(all[j].LastSeen)
	})
	for _, p := range all[:over] {
		delete(s.patterns, p.Pattern)
	}
}

// Entries returns a copy of the log, newest first.
func (s *Store) Entries() []model.MemoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.MemoryEntry(nil), s.entries...)
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Patterns returns a copy of the pattern table sorted by pattern.
func (s *Store) Patterns() []model.ContextPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedPatterns(func(a, b *model.ContextPattern) bool {
		return a.Pattern < b.Pattern
	})
}

// TopPatterns returns up to limit patterns by descending frequency.
func (s *Store) TopPatterns(limit int) []model.ContextPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sortedPatterns(func(a, b *model.ContextPattern) bool {
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		return a.Pattern < b.Pattern
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) sortedPatterns(less func(a, b *model.ContextPattern) bool) []model.ContextPattern {
	ptrs := make([]*model.ContextPattern, 0, len(s.patterns))
	for _, p := range s.patterns {
		ptrs = append(ptrs, p)
	}
	sort.Slice(ptrs, func(i, j int) bool { return less(ptrs[i], ptrs[j]) })
	out := make([]model.ContextPattern, len(ptrs))
	for i, p := range ptrs {
		out[i] = *p
		out[i].Contexts = append([]string(nil), p.Contexts...)
	}
	return out
}

// Clear empties the log and the pattern table.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.patterns = make(map[string]*model.ContextPattern)
}

// Restore replaces the store contents, e.g. after loading from disk.
// Entries are re-sorted newest first and truncated to capacity.
func (s *Store) Restore(entries []model.MemoryEntry, patterns []model.ContextPattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restore(entries, patterns)
}

func (s *Store) restore(entries []model.MemoryEntry, patterns []model.ContextPattern) {
	s.entries = append([]model.MemoryEntry(nil), entries...)
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].Timestamp.After(s.entries[j].Timestamp)
	})
	if len(s.entries) > s.capacity {
		s.entries = s.entries[:s.capacity]
	}
	s.patterns = make(map[string]*model.ContextPattern, len(patterns))
	for i := range patterns {
		p := patterns[i]
		p.Contexts = append([]string(nil), p.Contexts...)
		s.patterns[p.Pattern] = &p
	}
	s.evictPatterns()
}

func union(have, add []string) []string {
	for _, a := range add {
		found := false
		for _, h := range have {
			if h == a {
				found = true
				break
			}
		}
		if !found {
			have = append(have, a)
		}
	}
	return have
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
