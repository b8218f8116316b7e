package memory

import (
	"testing"
	"time"
)

func TestSearch_Basic(t *testing.T) {
	s := newTestStore(t, Options{})

	s.AddEntry(Partial{UserQuery: "invoice for Acme", AIResponse: "Invoice drafted"})
	s.AddEntry(Partial{UserQuery: "schedule a call", AIResponse: "Booked for Friday"})
	s.AddEntry(Partial{UserQuery: "what about the logo", AIResponse: "Sent to client", EntityMentions: []string{"client"}})

	results := s.Search("invoice", 10)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].UserQuery != "invoice for Acme" {
		t.Errorf("unexpected result %q", results[0].UserQuery)
	}

	// matches entity mentions and topics too
	if got := s.Search("client", 10); len(got) != 1 {
		t.Errorf("expected 1 result for client, got %d", len(got))
	}
	if got := s.Search("general", 10); len(got) != 3 {
		t.Errorf("expected topic match on all entries, got %d", len(got))
	}

	// tokens of two chars or fewer are ignored
	if got := s.Search("a of", 10); len(got) != 0 {
		t.Errorf("expected no results for short tokens, got %d", len(got))
	}

	if got := s.Search("javascript", 10); len(got) != 0 {
		t.Errorf("expected 0 results, got %d", len(got))
	}
}

func TestSearch_RanksByOccurrencesAndImportance(t *testing.T) {
	s := newTestStore(t, Options{})

	s.AddEntry(Partial{UserQuery: "invoice", AIResponse: "ok", Importance: 5})
	s.AddEntry(Partial{UserQuery: "invoice invoice", AIResponse: "invoice", Importance: 5})
	s.AddEntry(Partial{UserQuery: "invoice", AIResponse: "ok", Importance: 10})

	results := s.Search("invoice", 10)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].UserQuery != "invoice invoice" {
		t.Errorf("expected most occurrences first, got %q", results[0].UserQuery)
	}
	if results[1].Importance != 10 {
		t.Errorf("expected important entry second, got importance %.1f", results[1].Importance)
	}
}

func TestSearch_RecencyFloor(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	s := New(Options{Clock: func() time.Time { return clock }})

	clock = now.Add(-90 * 24 * time.Hour)
	s.AddEntry(Partial{UserQuery: "old invoice"})
	clock = now
	s.AddEntry(Partial{UserQuery: "new invoice"})

	results := s.Search("invoice", 10)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].UserQuery != "new invoice" {
		t.Errorf("expected recent entry first, got %q", results[0].UserQuery)
	}
	if results[1].Score <= 0 {
		t.Error("old entries keep a non-zero recency floor")
	}
}

func TestSearch_Limit(t *testing.T) {
	s := newTestStore(t, Options{})
	for i := 0; i < 5; i++ {
		s.AddEntry(Partial{UserQuery: "invoice"})
	}
	if got := s.Search("invoice", 2); len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}
