// Package cache stores sentence anagram answers in Redis as JSON and
// coalesces concurrent computations of the same answer.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/resilience"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "anagram:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
}

// Request identifies one cacheable sentence query. Sentences with the same
// letters share an answer, so the profile key stands in for the text.
type Request struct {
	ProfileKey string
	Version    string
	Options    anagram.Options
}

func (r Request) key() string {
	raw := fmt.Sprintf("%s|v=%s|p=%d|w=%d|s=%d",
		r.ProfileKey, r.Version,
		r.Options.Limits.MaxPartitions, r.Options.Limits.MaxWords, r.Options.MaxSentences)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

type AnswerCache struct {
	store   Store
	ttl     time.Duration
	metrics *metrics.Metrics
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache over store. m may be nil.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *AnswerCache {
	return &AnswerCache{
		store:   store,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "answer-cache"),
	}
}

// WithBreaker guards store reads and writes with cb. While the circuit is
// open every lookup is a miss and writes are skipped.
func (c *AnswerCache) WithBreaker(cb *resilience.CircuitBreaker) *AnswerCache {
	c.breaker = cb
	return c
}

func (c *AnswerCache) Get(ctx context.Context, req Request) (*anagram.Answer, bool) {
	key := req.key()
	var data []byte
	err := c.guard(func() error {
		var err error
		data, err = c.store.Get(ctx, key)
		if errors.Is(err, pkgredis.ErrMiss) {
			data = nil
			return nil
		}
		return err
	})
	if err != nil || data == nil {
		if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.recordMiss()
		return nil, false
	}
	var answer anagram.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.recordMiss()
		return nil, false
	}
	c.recordHit()
	return &answer, true
}

func (c *AnswerCache) Set(ctx context.Context, req Request, answer *anagram.Answer) {
	key := req.key()
	data, err := json.Marshal(answer)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.guard(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached answer for req or computes and stores it.
// Concurrent callers with the same request share one computation. The
// boolean reports a cache hit.
func (c *AnswerCache) GetOrCompute(
	ctx context.Context,
	req Request,
	compute func(ctx context.Context) (*anagram.Answer, error),
) (*anagram.Answer, bool, error) {
	if answer, ok := c.Get(ctx, req); ok {
		return answer, true, nil
	}
	val, err, _ := c.group.Do(req.key(), func() (any, error) {
		answer, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(ctx, req, answer)
		return answer, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*anagram.Answer), false, nil
}

// Invalidate drops every cached answer.
func (c *AnswerCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.DeleteByPrefix(ctx, keyPrefix)
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *AnswerCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *AnswerCache) guard(fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Do(fn)
}

func (c *AnswerCache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *AnswerCache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
