// Package model defines the core memory data types.
package model

import "time"

// Sentiment is the coarse tone of a conversational turn.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// DefaultTopic is used when no topic keyword matches.
const DefaultTopic = "general"

// MemoryEntry is one stored conversational turn with its derived signals.
type MemoryEntry struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	SessionID      string    `json:"session_id"`
	UserQuery      string    `json:"user_query"`
	AIResponse     string    `json:"ai_response"`
	EntityMentions []string  `json:"entity_mentions"`
	Topics         []string  `json:"topics"`
	Sentiment      Sentiment `json:"sentiment"`
	Importance     float64   `json:"importance"`
	ActionsTaken   []string  `json:"actions_taken,omitempty"`
}

// Length is the character length counted against context budgets.
func (e MemoryEntry) Length() int {
	return len([]rune(e.UserQuery)) + len([]rune(e.AIResponse))
}

// ContextPattern tracks how often a query token recurs.
type ContextPattern struct {
	Pattern     string    `json:"pattern"`
	Frequency   int       `json:"frequency"`
	LastSeen    time.Time `json:"last_seen"`
	Contexts    []string  `json:"contexts"`
	SuccessRate float64   `json:"success_rate"`
}

// EntityMention is a single entity hit found by the extractor.
type EntityMention struct {
	Type       string  `json:"type"`
	Name       string  `json:"name"`
	ID         string  `json:"id,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Signals is the structured output of signal extraction.
type Signals struct {
	Entities            []EntityMention `json:"entities"`
	Topics              []string        `json:"topics"`
	PrimaryTopic        string          `json:"primary_topic"`
	TopicConfidence     float64         `json:"topic_confidence"`
	Sentiment           Sentiment       `json:"sentiment"`
	SentimentConfidence float64         `json:"sentiment_confidence"`
	Importance          float64         `json:"importance"`
}

// MentionNames returns the entity names in extraction order.
func (s Signals) MentionNames() []string {
	names := make([]string, 0, len(s.Entities))
	for _, e := range s.Entities {
		names = append(names, e.Name)
	}
	return names
}

// DomainRef is a named domain record used for specific-entity matching.
type DomainRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// DomainContext is a snapshot of real records (tasks, clients, ...).
type DomainContext struct {
	Refs []DomainRef `json:"refs"`
}
