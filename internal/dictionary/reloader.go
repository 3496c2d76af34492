package dictionary

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/kafka"
)

// SwapHook runs after a new engine has been published.
type SwapHook func(ctx context.Context, previous, current *anagram.Engine)

// Reloader rebuilds the engine from its provider and publishes it through
// the holder. Reloads are serialised; queries never wait on them.
type Reloader struct {
	provider Provider
	holder   *anagram.Holder
	attempts int
	logger   *slog.Logger

	mu    sync.Mutex
	hooks []SwapHook
}

func NewReloader(provider Provider, holder *anagram.Holder, attempts int) *Reloader {
	return &Reloader{
		provider: provider,
		holder:   holder,
		attempts: attempts,
		logger:   slog.Default().With("component", "dictionary-reloader", "source", provider.Name()),
	}
}

// OnSwap registers a hook to run after each successful swap.
func (r *Reloader) OnSwap(hook SwapHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Reload loads the words again and swaps in a new engine when the
// dictionary content changed. It reports whether a swap happened.
func (r *Reloader) Reload(ctx context.Context, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	words, err := LoadWithRetry(ctx, r.provider, r.attempts)
	if err != nil {
		return false, fmt.Errorf("reloading dictionary: %w", err)
	}
	previous := r.holder.Load()
	var opts anagram.Options
	if previous != nil {
		opts = previous.Options()
	}
	next := anagram.New(words, opts)
	if previous != nil && previous.Version() == next.Version() {
		r.logger.Info("dictionary unchanged", "reason", reason, "version", next.Version())
		return false, nil
	}
	r.holder.Swap(next)
	r.logger.Info("dictionary swapped",
		"reason", reason,
		"words", next.Stats().Words,
		"version", next.Version(),
	)
	for _, hook := range r.hooks {
		hook(ctx, previous, next)
	}
	return true, nil
}

// HandleMessage adapts Reload to a Kafka consumer. The message value is a
// JSON Notice.
func (r *Reloader) HandleMessage(ctx context.Context, key, value []byte) error {
	notice, err := kafka.DecodeJSON[Notice](value)
	if err != nil {
		r.logger.Warn("ignoring malformed notice", "key", string(key), "error", err)
		return nil
	}
	reason := notice.Reason
	if reason == "" {
		reason = "notice from " + notice.Source
	}
	_, err = r.Reload(ctx, reason)
	return err
}
