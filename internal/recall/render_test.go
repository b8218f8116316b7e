package recall

import (
	"strings"
	"testing"
	"time"

	"github.com/rcliao/context-memory/internal/model"
	"github.com/rcliao/context-memory/internal/priority"
)

func TestRender(t *testing.T) {
	if got := Render(nil); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}

	scores := []priority.Score{{
		Entry: model.MemoryEntry{
			Timestamp:    time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
			UserQuery:    "send invoice to ACME",
			AIResponse:   "invoice drafted",
			ActionsTaken: []string{"create_invoice"},
		},
		Total:   0.8123,
		Reasons: []string{"Recent conversation", "Actions were taken"},
	}}

	got := Render(scores)
	for _, want := range []string{
		"[1] 2026-03-01 09:30 (score 0.81; Recent conversation, Actions were taken)",
		"User: send invoice to ACME",
		"Assistant: invoice drafted",
		"Actions: create_invoice",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}
