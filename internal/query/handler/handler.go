// Package handler serves the anagram HTTP API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/anagram/profile"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/query/cache"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/internal/query/parser"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/tracing"
)

// Tracker receives one event per answered query.
type Tracker interface {
	Track(event analytics.QueryEvent)
}

// Reloader rebuilds the dictionary on demand.
type Reloader interface {
	Reload(ctx context.Context, reason string) (bool, error)
}

// Deps holds the optional collaborators. Nil fields disable the matching
// feature.
type Deps struct {
	Cache    *cache.AnswerCache
	Tracker  Tracker
	Metrics  *metrics.Metrics
	Reloader Reloader
}

type Handler struct {
	holder *anagram.Holder
	search config.SearchConfig
	deps   Deps
	logger *slog.Logger
}

func New(holder *anagram.Holder, search config.SearchConfig, deps Deps) *Handler {
	return &Handler{
		holder: holder,
		search: search,
		deps:   deps,
		logger: slog.Default().With("component", "anagram-handler"),
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/anagrams/word", h.Word)
	mux.HandleFunc("GET /api/v1/anagrams/sentence", h.Sentence)
	mux.HandleFunc("GET /api/v1/dictionary/stats", h.DictionaryStats)
	mux.HandleFunc("POST /api/v1/dictionary/reload", h.DictionaryReload)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

type WordResponse struct {
	Word     string   `json:"word"`
	Anagrams []string `json:"anagrams"`
	Version  string   `json:"version"`
}

type SentenceResponse struct {
	Query      string     `json:"query"`
	Words      []string   `json:"words"`
	Letters    int        `json:"letters"`
	Sentences  [][]string `json:"sentences"`
	Partitions int        `json:"partitions"`
	Truncated  bool       `json:"truncated"`
	CacheHit   bool       `json:"cache_hit"`
	Version    string     `json:"version"`
	TookMs     int64      `json:"took_ms"`
}

// Word serves GET /api/v1/anagrams/word?w=.
func (h *Handler) Word(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	engine := h.holder.Load()
	if engine == nil {
		h.fail(w, "word", apperrors.New(apperrors.ErrDictionaryUnavailable, http.StatusServiceUnavailable, "dictionary not loaded"))
		return
	}

	q := parser.Parse(r.URL.Query().Get("w"))
	if len(q.Words) != 1 {
		h.fail(w, "word", apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'w' must hold exactly one word"))
		return
	}
	word := q.Words[0]
	anagrams := engine.WordAnagramsOf(word)

	took := time.Since(start)
	outcome := "ok"
	if len(anagrams) == 0 {
		outcome = "zero_result"
	}
	h.observe("word", outcome, "none", took)
	h.track(r.Context(), analytics.QueryEvent{
		Kind:      analytics.EventWord,
		Query:     q.Normalized(),
		Letters:   q.Letters,
		Results:   len(anagrams),
		LatencyMs: took.Milliseconds(),
	})
	h.writeJSON(w, http.StatusOK, WordResponse{Word: word, Anagrams: anagrams, Version: engine.Version()})
}

// Sentence serves GET /api/v1/anagrams/sentence?q=&limit=.
func (h *Handler) Sentence(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracing.Start(r.Context(), "sentence")
	log := logger.FromContext(ctx)
	defer func() {
		span.End()
		span.Log(ctx, log, slog.LevelDebug)
	}()

	engine := h.holder.Load()
	if engine == nil {
		h.fail(w, "sentence", apperrors.New(apperrors.ErrDictionaryUnavailable, http.StatusServiceUnavailable, "dictionary not loaded"))
		return
	}

	q := parser.Parse(r.URL.Query().Get("q"))
	if q.IsEmpty() {
		h.fail(w, "sentence", apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' must contain letters"))
		return
	}
	if h.search.MaxQueryLetters > 0 && q.Letters > h.search.MaxQueryLetters {
		h.fail(w, "sentence", apperrors.Newf(apperrors.ErrQueryTooLarge, http.StatusRequestEntityTooLarge,
			"query has %d letters, the limit is %d", q.Letters, h.search.MaxQueryLetters))
		return
	}
	limit, err := h.limit(r)
	if err != nil {
		h.fail(w, "sentence", err)
		return
	}

	opts := engine.Options()
	opts.MaxSentences = limit
	compute := func(ctx context.Context) (*anagram.Answer, error) {
		return engine.SentenceAnagramsWith(ctx, q.Words, opts)
	}

	var (
		answer   *anagram.Answer
		cacheHit bool
	)
	if h.deps.Cache != nil {
		req := cache.Request{
			ProfileKey: profile.FromSentence(q.Words).Key(),
			Version:    engine.Version(),
			Options:    opts,
		}
		answer, cacheHit, err = h.deps.Cache.GetOrCompute(ctx, req, compute)
		span.SetAttr("cache_hit", cacheHit)
	} else {
		answer, err = compute(ctx)
	}
	if err != nil {
		log.Error("sentence anagrams failed", "query", q.Raw, "error", err)
		h.fail(w, "sentence", err)
		return
	}

	took := time.Since(start)
	outcome := "ok"
	switch {
	case len(answer.Sentences) == 0:
		outcome = "zero_result"
	case answer.Truncated:
		outcome = "truncated"
	}
	cacheStatus := "disabled"
	if h.deps.Cache != nil {
		cacheStatus = "miss"
		if cacheHit {
			cacheStatus = "hit"
		}
	}
	h.observe("sentence", outcome, cacheStatus, took)
	if h.deps.Metrics != nil {
		h.deps.Metrics.SentencesReturned.Observe(float64(len(answer.Sentences)))
		h.deps.Metrics.PartitionsFound.Observe(float64(answer.Partitions))
	}

	log.Info("sentence anagrams computed",
		"letters", q.Letters,
		"sentences", len(answer.Sentences),
		"partitions", answer.Partitions,
		"truncated", answer.Truncated,
		"cache_hit", cacheHit,
		"took", took,
	)
	h.track(ctx, analytics.QueryEvent{
		Kind:       analytics.EventSentence,
		Query:      q.Normalized(),
		Letters:    q.Letters,
		Results:    len(answer.Sentences),
		Partitions: answer.Partitions,
		LatencyMs:  took.Milliseconds(),
		CacheHit:   cacheHit,
		Truncated:  answer.Truncated,
	})

	h.writeJSON(w, http.StatusOK, SentenceResponse{
		Query:      q.Raw,
		Words:      q.Words,
		Letters:    q.Letters,
		Sentences:  answer.Sentences,
		Partitions: answer.Partitions,
		Truncated:  answer.Truncated,
		CacheHit:   cacheHit,
		Version:    engine.Version(),
		TookMs:     took.Milliseconds(),
	})
}

// limit reads the limit parameter, defaulting to DefaultLimit and clamping
// to MaxSentences.
func (h *Handler) limit(r *http.Request) (int, error) {
	limit := h.search.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return 0, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}
	if h.search.MaxSentences > 0 && (limit <= 0 || limit > h.search.MaxSentences) {
		limit = h.search.MaxSentences
	}
	return limit, nil
}

// DictionaryStats serves GET /api/v1/dictionary/stats.
func (h *Handler) DictionaryStats(w http.ResponseWriter, r *http.Request) {
	engine := h.holder.Load()
	if engine == nil {
		h.writeError(w, http.StatusServiceUnavailable, "dictionary not loaded")
		return
	}
	stats := engine.Stats()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"version":        engine.Version(),
		"words":          stats.Words,
		"profiles":       stats.Profiles,
		"largest_bucket": stats.LargestBucket,
	})
}

// DictionaryReload serves POST /api/v1/dictionary/reload.
func (h *Handler) DictionaryReload(w http.ResponseWriter, r *http.Request) {
	if h.deps.Reloader == nil {
		h.writeError(w, http.StatusServiceUnavailable, "reloading is disabled")
		return
	}
	swapped, err := h.deps.Reloader.Reload(r.Context(), "http request")
	if err != nil {
		logger.FromContext(r.Context()).Error("dictionary reload failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "dictionary reload failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"swapped": swapped,
		"version": h.holder.Load().Version(),
	})
}

// CacheStats serves GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.deps.Cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.deps.Cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate serves POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.deps.Cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.deps.Cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) observe(kind, outcome, cacheStatus string, took time.Duration) {
	if h.deps.Metrics == nil {
		return
	}
	h.deps.Metrics.QueriesTotal.WithLabelValues(kind, outcome).Inc()
	h.deps.Metrics.QueryLatency.WithLabelValues(kind, cacheStatus).Observe(took.Seconds())
}

func (h *Handler) track(ctx context.Context, event analytics.QueryEvent) {
	if h.deps.Tracker == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	event.RequestID = logger.RequestID(ctx)
	h.deps.Tracker.Track(event)
}

func (h *Handler) fail(w http.ResponseWriter, kind string, err error) {
	status := apperrors.HTTPStatusCode(err)
	if h.deps.Metrics != nil {
		h.deps.Metrics.QueriesTotal.WithLabelValues(kind, "error").Inc()
	}
	message := http.StatusText(status)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else if status == http.StatusServiceUnavailable {
		message = "query did not finish in time"
	}
	h.writeError(w, status, message)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
