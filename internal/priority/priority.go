// Package priority ranks stored conversation entries against a live query
// and trims the ranking to a count and character budget.
package priority

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rcliao/context-memory/internal/extract"
	"github.com/rcliao/context-memory/internal/model"
)

// Config holds scoring weights and selection limits.
type Config struct {
	RecencyWeight    float64 `yaml:"recency_weight" json:"recency_weight"`
	RelevanceWeight  float64 `yaml:"relevance_weight" json:"relevance_weight"`
	ImportanceWeight float64 `yaml:"importance_weight" json:"importance_weight"`
	SentimentWeight  float64 `yaml:"sentiment_weight" json:"sentiment_weight"`
	ActionWeight     float64 `yaml:"action_weight" json:"action_weight"`
	MaxEntries       int     `yaml:"max_entries" json:"max_entries"`
	MaxContextLength int     `yaml:"max_context_length" json:"max_context_length"`
}

// DefaultConfig returns the default weights and limits.
func DefaultConfig() Config {
	return Config{
		RecencyWeight:    0.30,
		RelevanceWeight:  0.40,
		ImportanceWeight: 0.20,
		SentimentWeight:  0.05,
		ActionWeight:     0.05,
		MaxEntries:       5,
		MaxContextLength: 2000,
	}
}

// Validate rejects negative weights and non-positive limits.
func (c Config) Validate() error {
	for name, w := range map[string]float64{
		"recency_weight":    c.RecencyWeight,
		"relevance_weight":  c.RelevanceWeight,
		"importance_weight": c.ImportanceWeight,
		"sentiment_weight":  c.SentimentWeight,
		"action_weight":     c.ActionWeight,
	} {
		if w < 0 {
			return fmt.Errorf("%s must be >= 0, got %v", name, w)
		}
	}
	if c.MaxEntries <= 0 {
		return errors.New("max_entries must be > 0")
	}
	if c.MaxContextLength <= 0 {
		return errors.New("max_context_length must be > 0")
	}
	return nil
}

// Score is the per-entry evaluation against one query.
type Score struct {
	Entry      model.MemoryEntry `json:"entry"`
	Recency    float64           `json:"recency"`
	Relevance  float64           `json:"relevance"`
	Importance float64           `json:"importance"`
	Sentiment  float64           `json:"sentiment"`
	Action     float64           `json:"action_taken"`
	Total      float64           `json:"total"`
	Reasons    []string          `json:"reasons"`

	matchedTopics   []string
	matchedKeywords []string
}

// Engine scores entries. It holds no state beyond its config.
type Engine struct {
	cfg   Config
	clock func() time.Time
}

// New creates an engine. A nil clock means time.Now.
func New(cfg Config, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{cfg: cfg, clock: clock}
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Prioritize scores every entry against query and returns the best-first
// selection that fits both MaxEntries and MaxContextLength. When topics is
// empty it is derived from the query.
//
// Selection is greedy and stops at the first entry that would break either
// limit; smaller entries further down are not considered.
func (e *Engine) Prioritize(entries []model.MemoryEntry, query string, topics []string) []Score {
	if len(entries) == 0 {
		return []Score{}
	}
	if len(topics) == 0 {
		topics = extract.TopicsOf(query)
	}
	keywords := extract.Keywords(query)
	now := e.clock()

	scores := make([]Score, len(entries))
	for i, entry := range entries {
		scores[i] = e.score(entry, keywords, topics, now)
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Total > scores[j].Total
	})

	selected := []Score{}
	used := 0
	for _, s := range scores {
		n := s.Entry.Length()
		if len(selected) >= e.cfg.MaxEntries || used+n > e.cfg.MaxContextLength {
			break
		}
		s.Reasons = reasons(s)
		selected = append(selected, s)
		used += n
	}
	return selected
}

// Select is Prioritize returning only the entries.
func (e *Engine) Select(entries []model.MemoryEntry, query string, topics []string) []model.MemoryEntry {
	scores := e.Prioritize(entries, query, topics)
	out := make([]model.MemoryEntry, len(scores))
	for i, s := range scores {
		out[i] = s.Entry
	}
	return out
}

func (e *Engine) score(entry model.MemoryEntry, keywords, topics []string, now time.Time) Score {
	s := Score{Entry: entry}

	days := now.Sub(entry.Timestamp).Hours() / 24
	if days < 0 {
		days = 0
	}
	s.Recency = math.Max(0, 1-days/30)

	text := strings.ToLower(entry.UserQuery + " " + entry.AIResponse)
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			s.matchedKeywords = append(s.matchedKeywords, kw)
		}
	}
	for _, t := range entry.Topics {
		if contains(topics, t) {
			s.matchedTopics = append(s.matchedTopics, t)
		}
	}
	entityMatches := 0
	for _, m := range entry.EntityMentions {
		lm := strings.ToLower(m)
		for _, kw := range keywords {
			if strings.Contains(lm, kw) {
				entityMatches++
				break
			}
		}
	}
	s.Relevance = 0.5*overlap(len(s.matchedKeywords), len(keywords)) +
		0.3*overlap(len(s.matchedTopics), len(topics)) +
		0.2*overlap(entityMatches, len(entry.EntityMentions))

	s.Importance = entry.Importance / 10
	s.Sentiment = sentimentScore(entry.Sentiment)
	if len(entry.ActionsTaken) > 0 {
		s.Action = 1
	}

	total := s.Recency*e.cfg.RecencyWeight +
		s.Relevance*e.cfg.RelevanceWeight +
		s.Importance*e.cfg.ImportanceWeight +
		s.Sentiment*e.cfg.SentimentWeight +
		s.Action*e.cfg.ActionWeight
	s.Total = math.Min(1, total)
	return s
}

func overlap(matches, denom int) float64 {
	if denom == 0 {
		return 0
	}
	return math.Min(1, float64(matches)/float64(denom))
}

func sentimentScore(s model.Sentiment) float64 {
	switch s {
	case model.SentimentPositive:
		return 0.8
	case model.SentimentNegative:
		return 0.3
	default:
		return 0.5
	}
}

func reasons(s Score) []string {
	var out []string
	if s.Recency > 0.7 {
		out = append(out, "Recent conversation")
	}
	if s.Relevance > 0.6 {
		out = append(out, "High topic relevance")
	}
	if s.Importance > 0.7 {
		out = append(out, "High importance")
	}
	if s.Action > 0 {
		out = append(out, "Actions were taken")
	}
	if len(s.matchedTopics) > 0 {
		out = append(out, "Topics: "+strings.Join(firstN(s.matchedTopics, 3), ", "))
	}
	if len(s.matchedKeywords) > 0 {
		out = append(out, "Keywords: "+strings.Join(firstN(s.matchedKeywords, 3), ", "))
	}
	return out
}

func firstN(xs []string, n int) []string {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
