// Package dictionary loads the word list the anagram engine is built from,
// either from a plain word file or from a PostgreSQL table, and rebuilds the
// engine when a dictionary update is announced on Kafka.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/resilience"
)

// ErrEmpty is returned when a source yields no words.
var ErrEmpty = errors.New("dictionary is empty")

// Provider yields the dictionary words in their canonical order.
type Provider interface {
	Load(ctx context.Context) ([]string, error)
	// Name identifies the source in logs and notices.
	Name() string
}

// Queryable reports whether a parsed query can produce word. Queries are
// split at every non-letter rune, so a word like "o'clock" would sit in the
// index without ever matching.
func Queryable(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// LoadWithRetry loads from p, retrying transient failures up to attempts
// times. An empty dictionary is not retried.
func LoadWithRetry(ctx context.Context, p Provider, attempts int) ([]string, error) {
	var words []string
	err := resilience.Retry(ctx, "dictionary load "+p.Name(), resilience.RetryConfig{
		MaxAttempts:    attempts,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       15 * time.Second,
		JitterFraction: 0.2,
	}, func(ctx context.Context) error {
		loaded, err := p.Load(ctx)
		if err != nil {
			return err
		}
		if len(loaded) == 0 {
			return resilience.Permanent(fmt.Errorf("%s: %w", p.Name(), ErrEmpty))
		}
		words = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return words, nil
}

// Notice announces that the dictionary behind a source changed.
type Notice struct {
	Source    string    `json:"source"`
	Words     int       `json:"words"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
