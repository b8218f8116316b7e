package memory

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rcliao/context-memory/internal/model"
)

// fakeClock advances one minute per call.
func fakeClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	if opts.Clock == nil {
		opts.Clock = fakeClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC))
	}
	return New(opts)
}

func TestAddEntry(t *testing.T) {
	s := newTestStore(t, Options{})

	e := s.AddEntry(Partial{
		SessionID:  "s1",
		UserQuery:  "invoice for Acme",
		AIResponse: "Drafted the invoice",
		Topics:     []string{"financial"},
		Sentiment:  model.SentimentPositive,
		Importance: 7,
	})
	if e.ID == "" {
		t.Error("expected non-empty ID")
	}
	if e.Timestamp.IsZero() {
		t.Error("expected timestamp")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
	if got := s.Entries()[0]; got.ID != e.ID || got.Importance != 7 {
		t.Errorf("unexpected stored entry %+v", got)
	}
}

func TestAddEntry_Defaults(t *testing.T) {
	s := newTestStore(t, Options{})
	e := s.AddEntry(Partial{UserQuery: "hi"})
	if e.Sentiment != model.SentimentNeutral {
		t.Errorf("expected neutral, got %s", e.Sentiment)
	}
	if len(e.Topics) != 1 || e.Topics[0] != model.DefaultTopic {
		t.Errorf("expected [general], got %v", e.Topics)
	}
	if e.Importance != 5 {
		t.Errorf("expected importance 5, got %.1f", e.Importance)
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	const capacity = 10
	s := newTestStore(t, Options{Capacity: capacity})

	var first model.MemoryEntry
	for i := 0; i < capacity+1; i++ {
		e := s.AddEntry(Partial{UserQuery: fmt.Sprintf("query %d", i)})
		if i == 0 {
			first = e
		}
	}

	entries := s.Entries()
	if len(entries) != capacity {
		t.Fatalf("expected %d entries, got %d", capacity, len(entries))
	}
	for _, e := range entries {
		if e.ID == first.ID {
			t.Error("oldest entry should have been evicted")
		}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Errorf("entries not newest-first at %d", i)
		}
	}
}

func TestPatternTracking(t *testing.T) {
	s := newTestStore(t, Options{})

	s.AddEntry(Partial{UserQuery: "Show the invoice list", Topics: []string{"financial"}})
	s.AddEntry(Partial{UserQuery: "send invoice now", Topics: []string{"communication"}, ActionsTaken: []string{"send_invoice"}})

	top := s.TopPatterns(1)
	if len(top) != 1 || top[0].Pattern != "invoice" {
		t.Fatalf("expected invoice as top pattern, got %+v", top)
	}
	p := top[0]
	if p.Frequency != 2 {
		t.Errorf("expected frequency 2, got %d", p.Frequency)
	}
	if p.SuccessRate != 1 {
		t.Errorf("expected success rate 1 after action, got %.2f", p.SuccessRate)
	}
	if len(p.Contexts) != 2 {
		t.Errorf("expected 2 contexts, got %v", p.Contexts)
	}

	for _, p := range s.Patterns() {
		if p.Pattern == "the" || p.Pattern == "now" {
			t.Errorf("short or filler token tracked: %q", p.Pattern)
		}
		if p.Pattern == "show" && p.SuccessRate != 0.5 {
			t.Errorf("expected first-sighting rate 0.5, got %.2f", p.SuccessRate)
		}
	}
}

func TestPatternLimitEvictsLeastRecent(t *testing.T) {
	s := newTestStore(t, Options{PatternLimit: 2})

	s.AddEntry(Partial{UserQuery: "alpha"})
	s.AddEntry(Partial{UserQuery: "bravo"})
	s.AddEntry(Partial{UserQuery: "charlie"})

	got := s.Patterns()
	if len(got) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(got))
	}
	for _, p := range got {
		if p.Pattern == "alpha" {
			t.Error("least recently seen pattern should be evicted")
		}
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t, Options{})
	s.AddEntry(Partial{UserQuery: "invoice reminder"})
	s.Clear()
	if s.Len() != 0 || len(s.Patterns()) != 0 {
		t.Error("expected empty store after clear")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newTestStore(t, Options{})
	s.AddEntry(Partial{UserQuery: "invoice for Acme", AIResponse: "done", Topics: []string{"financial"}, Importance: 6})
	s.AddEntry(Partial{UserQuery: "schedule meeting", AIResponse: "booked", ActionsTaken: []string{"create_event"}})

	data, err := s.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	other := newTestStore(t, Options{})
	if err := other.Import(data); err != nil {
		t.Fatalf("import: %v", err)
	}

	want, got := s.Entries(), other.Entries()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].UserQuery != want[i].UserQuery {
			t.Errorf("entry %d mismatch: %+v vs %+v", i, got[i], want[i])
		}
		if !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("entry %d timestamp %v, want %v", i, got[i].Timestamp, want[i].Timestamp)
		}
	}

	wantP, gotP := s.Patterns(), other.Patterns()
	if len(gotP) != len(wantP) {
		t.Fatalf("expected %d patterns, got %d", len(wantP), len(gotP))
	}
	for i := range wantP {
		if gotP[i].Pattern != wantP[i].Pattern || gotP[i].Frequency != wantP[i].Frequency {
			t.Errorf("pattern %d mismatch", i)
		}
		if !gotP[i].LastSeen.Equal(wantP[i].LastSeen) {
			t.Errorf("pattern %d last_seen not restored", i)
		}
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	s := newTestStore(t, Options{})
	s.AddEntry(Partial{UserQuery: "keep me"})

	payloads := []string{
		`not json`,
		`{"entries": []}`,
		`{"patterns": []}`,
		`{"entries": [{"user_query": "no id"}], "patterns": []}`,
	}
	for _, p := range payloads {
		err := s.Import([]byte(p))
		if !errors.Is(err, ErrInvalidSnapshot) {
			t.Errorf("Import(%s) = %v, want ErrInvalidSnapshot", p, err)
		}
	}
	if s.Len() != 1 {
		t.Errorf("existing log must be untouched, got %d entries", s.Len())
	}
}
