package extract

import (
	"math"
	"strings"
	"testing"

	"github.com/rcliao/context-memory/internal/model"
)

func TestTurn_UrgentDeadline(t *testing.T) {
	sig := Turn("urgent deadline for client ABC", "I'll prioritize it", nil, nil)

	if sig.Importance < 8.0 {
		t.Errorf("expected importance >= 8.0, got %.2f", sig.Importance)
	}
	if sig.Sentiment != model.SentimentNeutral {
		t.Errorf("expected neutral sentiment, got %s", sig.Sentiment)
	}
	found := false
	for _, topic := range sig.Topics {
		if topic == sig.PrimaryTopic {
			found = true
		}
	}
	if !found {
		t.Errorf("primary topic %q not in matched set %v", sig.PrimaryTopic, sig.Topics)
	}
	if sig.PrimaryTopic == model.DefaultTopic {
		t.Error("expected a matched topic, got general")
	}
}

func TestEntities_GenericAndSpecific(t *testing.T) {
	domain := &model.DomainContext{Refs: []model.DomainRef{
		{ID: "c1", Type: "client", Name: "Acme Corp"},
		{ID: "t9", Type: "task", Name: "Logo redesign"},
	}}

	got := Entities("Send the invoice to acme corp today", domain)
	if len(got) != 2 {
		t.Fatalf("expected 2 mentions, got %d: %+v", len(got), got)
	}
	if got[0].Name != "invoice" || got[0].Confidence != genericConfidence {
		t.Errorf("unexpected generic mention %+v", got[0])
	}
	if got[1].ID != "c1" || got[1].Confidence != specificConfidence {
		t.Errorf("unexpected specific mention %+v", got[1])
	}
}

func TestEntities_Accumulate(t *testing.T) {
	got := Entities("client client cliente", nil)
	// "client" and "cliente" both hit; repeated text does not dedupe keywords
	if len(got) != 2 {
		t.Errorf("expected 2 mentions, got %d", len(got))
	}
}

func TestTopicsOf_Default(t *testing.T) {
	topics := TopicsOf("hello there")
	if len(topics) != 1 || topics[0] != model.DefaultTopic {
		t.Errorf("expected [general], got %v", topics)
	}
}

func TestPrimaryTopic_MostHits(t *testing.T) {
	got := PrimaryTopic("send the invoice and the payment budget")
	if got != "financial" {
		t.Errorf("expected financial, got %s", got)
	}
}

func TestSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.Sentiment
		conf float64
	}{
		{"positive", "thanks, great work", model.SentimentPositive, 0.9},
		{"negative", "this is a terrible problem", model.SentimentNegative, 0.9},
		{"tie", "good but bad", model.SentimentNeutral, 0.7},
		{"none", "list my things", model.SentimentNeutral, 0.7},
		{"neutral words", "it is okay", model.SentimentNeutral, 0.7},
		{"spanish", "gracias, perfecto", model.SentimentPositive, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conf := Sentiment(tt.text)
			if got != tt.want {
				t.Errorf("Sentiment(%q) = %s, want %s", tt.text, got, tt.want)
			}
			if math.Abs(conf-tt.conf) > 0.001 {
				t.Errorf("confidence = %.2f, want %.2f", conf, tt.conf)
			}
		})
	}
}

func TestImportance_Clamped(t *testing.T) {
	long := strings.Repeat("urgent deadline help asap critical ", 30)
	got := Importance(long, nil, 3)
	if got != 10 {
		t.Errorf("expected clamp to 10, got %.2f", got)
	}

	if got := Importance("hi", nil, 0); got != baseImportance {
		t.Errorf("expected base importance, got %.2f", got)
	}
}

func TestImportance_Components(t *testing.T) {
	mentions := []model.EntityMention{
		{Name: "task", Confidence: 0.8},
		{Name: "Acme", Confidence: 0.95},
	}
	// 5 + 0.5 + 0.5 + 1 + 2 = 9
	got := Importance("short", mentions, 1)
	if math.Abs(got-9) > 0.001 {
		t.Errorf("expected 9, got %.2f", got)
	}
}

func TestTokensAndKeywords(t *testing.T) {
	toks := Tokens("What about the Logo, logo and the invoice?", 4)
	want := []string{"logo", "logo", "invoice"}
	if strings.Join(toks, ",") != strings.Join(want, ",") {
		t.Errorf("Tokens = %v, want %v", toks, want)
	}

	kws := Keywords("Logo logo invoice for ABC")
	if strings.Join(kws, ",") != "logo,invoice,abc" {
		t.Errorf("Keywords = %v", kws)
	}
}
