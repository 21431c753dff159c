package jobs

import (
	"context"
	"log"
	"strings"
)

// Mailer delivers outbound mail. Template rendering and delivery belong
// to the email subsystem; handlers only invoke it.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer is the dev/test delivery path.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("[MAIL] to=%s subject=%q", to, subject)
	return nil
}

// Sentiment scores free-text feedback. The production model is an
// external service; KeywordSentiment is the fallback scorer.
type Sentiment interface {
	Analyze(ctx context.Context, text string) (label string, score float64, err error)
}

type KeywordSentiment struct{}

var positiveWords = []string{"good", "great", "excellent", "helpful", "happy", "thanks"}
var negativeWords = []string{"bad", "poor", "terrible", "unhappy", "slow", "rude"}

func (KeywordSentiment) Analyze(_ context.Context, text string) (string, float64, error) {
	score := 0.0
	for _, w := range positiveWords {
		if containsWord(text, w) {
			score++
		}
	}
	for _, w := range negativeWords {
		if containsWord(text, w) {
			score--
		}
	}
	switch {
	case score > 0:
		return "positive", score, nil
	case score < 0:
		return "negative", score, nil
	default:
		return "neutral", 0, nil
	}
}

func containsWord(text, word string) bool {
	return strings.Contains(strings.ToLower(text), word)
}
