// Package anagram answers anagram queries against a fixed dictionary. An
// Engine owns one immutable dictionary index; it finds the anagrams of
// single words and every sentence whose letters are a permutation of an
// input sentence's letters.
package anagram

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/index"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/profile"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/search"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/tracing"
)

// Options bounds sentence queries. The zero value applies no bound.
type Options struct {
	Limits search.Limits
	// MaxSentences caps the number of sentences returned by one query.
	MaxSentences int
}

// Answer is the result of a sentence query.
type Answer struct {
	Sentences  [][]string `json:"sentences"`
	Partitions int        `json:"partitions"`
	Truncated  bool       `json:"truncated"`
}

type Engine struct {
	idx     *index.Index
	opts    Options
	version string
	logger  *slog.Logger
}

// New indexes words and returns an Engine that serves queries from that
// snapshot. words is not retained.
func New(words []string, opts Options) *Engine {
	start := time.Now()
	e := &Engine{
		idx:     index.Build(words),
		opts:    opts,
		version: dictionaryVersion(words),
		logger:  slog.Default().With("component", "anagram-engine"),
	}
	stats := e.idx.Stats()
	e.logger.Info("dictionary indexed",
		"words", stats.Words,
		"profiles", stats.Profiles,
		"largest_bucket", stats.LargestBucket,
		"version", e.version,
		"took", time.Since(start),
	)
	return e
}

// Version identifies the dictionary content the engine was built from.
func (e *Engine) Version() string {
	return e.version
}

func (e *Engine) Options() Options {
	return e.opts
}

func (e *Engine) Stats() index.Stats {
	return e.idx.Stats()
}

// WordAnagramsOf returns the dictionary words made of exactly the letters
// of word, ignoring case.
func (e *Engine) WordAnagramsOf(word string) []string {
	return e.idx.WordAnagramsOf(word)
}

// SentenceAnagrams returns every sentence of dictionary words whose letters,
// ignoring case, are exactly those of sentence. An empty sentence has one
// anagram, the empty sentence.
func (e *Engine) SentenceAnagrams(ctx context.Context, sentence []string) (*Answer, error) {
	return e.SentenceAnagramsWith(ctx, sentence, e.opts)
}

// SentenceAnagramsWith is SentenceAnagrams with per-query options.
func (e *Engine) SentenceAnagramsWith(ctx context.Context, sentence []string, opts Options) (*Answer, error) {
	target := profile.FromSentence(sentence)
	if target.IsEmpty() {
		return &Answer{Sentences: [][]string{{}}, Partitions: 1}, nil
	}

	start := time.Now()
	_, span := tracing.Start(ctx, "universe")
	universe := e.idx.Universe(target)
	span.SetAttr("profiles", len(universe))
	span.End()

	searchCtx, span := tracing.Start(ctx, "search")
	res, err := search.Find(searchCtx, universe, target, opts.Limits)
	if err != nil {
		span.SetAttr("error", err.Error())
		span.End()
		return nil, fmt.Errorf("finding partitions of %s: %w", target, err)
	}
	span.SetAttr("visited", res.Visited)
	span.SetAttr("partitions", len(res.Partitions))
	span.End()
	if res.Rejected > 0 {
		e.logger.Warn("partitions failed consistency check",
			"target", target.String(),
			"rejected", res.Rejected,
		)
	}

	answer := &Answer{
		Sentences:  make([][]string, 0, len(res.Partitions)),
		Partitions: len(res.Partitions),
		Truncated:  res.Truncated,
	}
	_, span = tracing.Start(ctx, "expand")
	seen := make(map[string]struct{}, len(res.Partitions))
expand:
	for _, p := range res.Partitions {
		for s := range Expand(e.idx, p) {
			key := strings.Join(s, "\x00")
			if _, dup := seen[key]; dup {
				continue
			}
			if opts.MaxSentences > 0 && len(answer.Sentences) >= opts.MaxSentences {
				answer.Truncated = true
				break expand
			}
			seen[key] = struct{}{}
			answer.Sentences = append(answer.Sentences, s)
		}
	}
	span.SetAttr("sentences", len(answer.Sentences))
	span.End()

	e.logger.Debug("sentence anagrams computed",
		"letters", target.Total(),
		"universe", len(universe),
		"visited", res.Visited,
		"partitions", answer.Partitions,
		"sentences", len(answer.Sentences),
		"truncated", answer.Truncated,
		"took", time.Since(start),
	)
	return answer, nil
}

func dictionaryVersion(words []string) string {
	h := sha256.New()
	for _, w := range words {
		h.Write([]byte(w))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}
