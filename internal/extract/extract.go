// Package extract turns raw conversation text into structured signals:
// entity mentions, topics, sentiment and an importance score.
//
// Everything here is keyword based and deterministic. Callers depend only on
// Signals and Turn, so the keyword engine can be swapped for a classifier
// without touching the memory store or the priority engine.
package extract

import (
	"math"
	"strings"
	"unicode"

	"github.com/rcliao/context-memory/internal/model"
)

const (
	genericConfidence  = 0.8
	specificConfidence = 0.95
	baseImportance     = 5.0
)

// Signals extracts signals from a single block of text.
func Signals(text string, domain *model.DomainContext) model.Signals {
	return Turn(text, "", nil, domain)
}

// Turn extracts signals from a query/response pair. Actions feed the
// importance score only.
func Turn(query, response string, actions []string, domain *model.DomainContext) model.Signals {
	text := strings.TrimSpace(query + " " + response)
	lower := strings.ToLower(text)

	entities := Entities(lower, domain)
	topics, primary, conf := topicsOf(lower)
	sentiment, sentConf := Sentiment(lower)

	return model.Signals{
		Entities:            entities,
		Topics:              topics,
		PrimaryTopic:        primary,
		TopicConfidence:     conf,
		Sentiment:           sentiment,
		SentimentConfidence: sentConf,
		Importance:          Importance(lower, entities, len(actions)),
	}
}

// Entities returns generic keyword mentions followed by specific mentions of
// records from the domain snapshot. Mentions are not deduplicated.
func Entities(text string, domain *model.DomainContext) []model.EntityMention {
	lower := strings.ToLower(text)
	var out []model.EntityMention
	for _, group := range entityKeywords {
		for _, kw := range group.Keywords {
			if strings.Contains(lower, kw) {
				out = append(out, model.EntityMention{
					Type:       group.Type,
					Name:       kw,
					Confidence: genericConfidence,
				})
			}
		}
	}
	if domain == nil {
		return out
	}
	for _, ref := range domain.Refs {
		name := strings.ToLower(strings.TrimSpace(ref.Name))
		if name == "" {
			continue
		}
		if strings.Contains(lower, name) {
			out = append(out, model.EntityMention{
				Type:       ref.Type,
				Name:       ref.Name,
				ID:         ref.ID,
				Confidence: specificConfidence,
			})
		}
	}
	return out
}

// TopicsOf returns every topic present in text, in table order, or
// ["general"] when nothing matches.
func TopicsOf(text string) []string {
	topics, _, _ := topicsOf(strings.ToLower(text))
	return topics
}

// PrimaryTopic returns the topic with the most keyword hits.
func PrimaryTopic(text string) string {
	_, primary, _ := topicsOf(strings.ToLower(text))
	return primary
}

func topicsOf(lower string) (topics []string, primary string, confidence float64) {
	best := 0
	for _, row := range topicTable {
		hits := countHits(lower, row.Keywords)
		if hits == 0 {
			continue
		}
		topics = append(topics, row.Topic)
		if hits > best {
			best = hits
			primary = row.Topic
		}
	}
	if len(topics) == 0 {
		return []string{model.DefaultTopic}, model.DefaultTopic, 0
	}
	return topics, primary, math.Min(0.9, float64(len(topics))*0.3)
}

// Sentiment classifies text. The class with a strict majority of keyword
// hits wins; anything else falls back to neutral.
func Sentiment(text string) (model.Sentiment, float64) {
	lower := strings.ToLower(text)
	pos := countHits(lower, positiveWords)
	neg := countHits(lower, negativeWords)
	neu := countHits(lower, neutralWords)

	switch {
	case pos > neg && pos > neu:
		return model.SentimentPositive, math.Min(0.9, 0.5+0.2*float64(pos))
	case neg > pos && neg > neu:
		return model.SentimentNegative, math.Min(0.9, 0.5+0.2*float64(neg))
	case neu > pos && neu > neg:
		return model.SentimentNeutral, math.Min(0.9, 0.5+0.2*float64(neu))
	}
	diff := math.Abs(float64(pos - neg))
	return model.SentimentNeutral, math.Max(0.3, 0.7-0.1*diff)
}

// Importance scores a turn on [1, 10].
func Importance(text string, entities []model.EntityMention, actions int) float64 {
	score := baseImportance
	for _, e := range entities {
		score += 0.5
		if e.Confidence > 0.9 {
			score++
		}
	}
	score += 2 * float64(actions)

	n := len([]rune(text))
	if n > 200 {
		score++
	}
	if n > 500 {
		score++
	}

	score += 1.5 * float64(countHits(strings.ToLower(text), urgencyWords))
	return math.Max(1, math.Min(10, score))
}

// Keywords returns the distinct non-filler tokens of text longer than two
// characters, in order of first appearance.
func Keywords(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, tok := range Tokens(text, 3) {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Tokens splits lowercased text into word tokens of at least minLen
// characters, dropping stopwords. Repeated tokens are kept.
func Tokens(text string, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < minLen || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// IsStopword reports whether tok is a filler word.
func IsStopword(tok string) bool {
	return stopwords[strings.ToLower(tok)]
}

func countHits(lower string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}
