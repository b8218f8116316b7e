// Package insight derives behavioral insights from the memory log. Learners
// only read entries; they never mutate the store.
package insight

import (
	"fmt"
	"sort"

	"github.com/rcliao/context-memory/internal/model"
)

// Insight kinds.
const (
	KindRecurringTopic = "recurring_topic"
	KindFrequentAction = "frequent_action"
	KindSentimentTrend = "sentiment_trend"
)

// DefaultMinOccurs is the default recurrence threshold.
const DefaultMinOccurs = 3

const trendDeltaThreshold = 0.2

// Insight is one learned observation.
type Insight struct {
	Kind        string  `json:"kind"`
	Subject     string  `json:"subject"`
	Description string  `json:"description"`
	Count       int     `json:"count"`
	Confidence  float64 `json:"confidence"`
}

// Learner turns a log (newest first) into insights.
type Learner interface {
	Learn(entries []model.MemoryEntry) []Insight
}

// FrequencyLearner reports topics and actions that recur at least
// MinOccurrences times, and whether sentiment is improving or declining
// between the older and newer half of the log.
type FrequencyLearner struct {
	MinOccurrences int
}

// NewFrequencyLearner creates a learner. minOccurs <= 0 uses the default.
func NewFrequencyLearner(minOccurs int) *FrequencyLearner {
	if minOccurs <= 0 {
		minOccurs = DefaultMinOccurs
	}
	return &FrequencyLearner{MinOccurrences: minOccurs}
}

func (l *FrequencyLearner) Learn(entries []model.MemoryEntry) []Insight {
	out := []Insight{}
	if len(entries) == 0 {
		return out
	}

	topics := map[string]int{}
	actions := map[string]int{}
	for _, e := range entries {
		for _, t := range e.Topics {
			if t != model.DefaultTopic {
				topics[t]++
			}
		}
		for _, a := range e.ActionsTaken {
			actions[a]++
		}
	}

	for _, c := range l.frequent(topics) {
		out = append(out, Insight{
			Kind:        KindRecurringTopic,
			Subject:     c.key,
			Description: fmt.Sprintf("%s came up in %d of %d conversations", c.key, c.n, len(entries)),
			Count:       c.n,
			Confidence:  float64(c.n) / float64(len(entries)),
		})
	}
	for _, c := range l.frequent(actions) {
		out = append(out, Insight{
			Kind:        KindFrequentAction,
			Subject:     c.key,
			Description: fmt.Sprintf("%s was taken %d times", c.key, c.n),
			Count:       c.n,
			Confidence:  float64(c.n) / float64(len(entries)),
		})
	}
	if trend, ok := l.trend(entries); ok {
		out = append(out, trend)
	}
	return out
}

type counted struct {
	key string
	n   int
}

// frequent returns keys at or above the threshold, most frequent first.
func (l *FrequencyLearner) frequent(m map[string]int) []counted {
	var out []counted
	for k, n := range m {
		if n >= l.MinOccurrences {
			out = append(out, counted{k, n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].key < out[j].key
	})
	return out
}

// trend compares the mean sentiment of the newer half against the older half.
func (l *FrequencyLearner) trend(entries []model.MemoryEntry) (Insight, bool) {
	if len(entries) < 2*l.MinOccurrences {
		return Insight{}, false
	}
	half := len(entries) / 2
	newer := meanSentiment(entries[:half])
	older := meanSentiment(entries[len(entries)-half:])
	delta := newer - older

	direction := "stable"
	switch {
	case delta >= trendDeltaThreshold:
		direction = "improving"
	case delta <= -trendDeltaThreshold:
		direction = "declining"
	}
	conf := delta
	if conf < 0 {
		conf = -conf
	}
	if conf > 1 {
		conf = 1
	}
	return Insight{
		Kind:        KindSentimentTrend,
		Subject:     direction,
		Description: fmt.Sprintf("sentiment is %s over the last %d conversations", direction, len(entries)),
		Count:       len(entries),
		Confidence:  conf,
	}, true
}

// meanSentiment maps positive to 1, negative to -1 and neutral to 0.
func meanSentiment(entries []model.MemoryEntry) float64 {
	sum := 0.0
	for _, e := range entries {
		switch e.Sentiment {
		case model.SentimentPositive:
			sum++
		case model.SentimentNegative:
			sum--
		}
	}
	return sum / float64(len(entries))
}
