package recall

import (
	"fmt"
	"strings"

	"github.com/rcliao/context-memory/internal/priority"
)

// Render formats ranked entries as a plain-text block for an outbound prompt.
func Render(scores []priority.Score) string {
	if len(scores) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Relevant conversation history:\n")
	for i, s := range scores {
		e := s.Entry
		fmt.Fprintf(&b, "\n[%d] %s (score %.2f", i+1, e.Timestamp.Format("2006-01-02 15:04"), s.Total)
		if len(s.Reasons) > 0 {
			fmt.Fprintf(&b, "; %s", strings.Join(s.Reasons, ", "))
		}
		b.WriteString(")\n")
		fmt.Fprintf(&b, "User: %s\n", e.UserQuery)
		fmt.Fprintf(&b, "Assistant: %s\n", e.AIResponse)
		if len(e.ActionsTaken) > 0 {
			fmt.Fprintf(&b, "Actions: %s\n", strings.Join(e.ActionsTaken, ", "))
		}
	}
	return b.String()
}
