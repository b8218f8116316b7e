package memory

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rcliao/context-memory/internal/model"
)

// SearchResult wraps an entry with its lexical relevance score.
type SearchResult struct {
	model.MemoryEntry
	Score float64 `json:"score"`
}

// Search finds entries whose text, mentions or topics contain any query
// token longer than two characters. Results are ranked by occurrence count
// weighted by recency and importance; ties keep log order.
func (s *Store) Search(query string, limit int) []SearchResult {
	if limit <= 0 {
		limit = 20
	}
	var tokens []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		if len([]rune(f)) > 2 {
			tokens = append(tokens, f)
		}
	}
	if len(tokens) == 0 {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.clock()
	var results []SearchResult
	for _, e := range s.entries {
		hay := haystack(e)
		hits := 0
		for _, tok := range tokens {
			hits += strings.Count(hay, tok)
		}
		if hits == 0 {
			continue
		}
		score := float64(hits) * math.Max(0.1, 1-daysSince(now, e.Timestamp)/30) * (1 + e.Importance/10)
		results = append(results, SearchResult{MemoryEntry: e, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func haystack(e model.MemoryEntry) string {
	parts := []string{e.UserQuery, e.AIResponse, strings.Join(e.EntityMentions, " "), strings.Join(e.Topics, " ")}
	return strings.ToLower(strings.Join(parts, " "))
}

func daysSince(now, t time.Time) float64 {
	d := now.Sub(t).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}
