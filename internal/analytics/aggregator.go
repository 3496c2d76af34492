package analytics

import (
	"context"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/kafka"
)

// latencyWindow bounds the latency samples kept for percentiles.
const latencyWindow = 10000

type AggregatedStats struct {
	TotalQueries      int64               `json:"total_queries"`
	ByType            map[EventType]int64 `json:"by_type"`
	AvgLatencyMs      float64             `json:"avg_latency_ms"`
	P50LatencyMs      int64               `json:"p50_latency_ms"`
	P95LatencyMs      int64               `json:"p95_latency_ms"`
	P99LatencyMs      int64               `json:"p99_latency_ms"`
	TopQueries        []QueryCount        `json:"top_queries"`
	ZeroResultQueries []QueryCount        `json:"zero_result_queries"`
	QueriesPerMinute  float64             `json:"queries_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator folds query events into in-memory statistics.
type Aggregator struct {
	mu                sync.RWMutex
	total             int64
	byType            map[EventType]int64
	latencies         []int64
	next              int
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time
	logger            *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		byType:            make(map[EventType]int64),
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleMessage is the Kafka handler for the query event topic. Undecodable
// messages are logged and skipped.
func (a *Aggregator) HandleMessage(ctx context.Context, key, value []byte) error {
	event, err := kafka.DecodeJSON[QueryEvent](value)
	if err != nil {
		a.logger.Warn("failed to decode query event", "key", string(key), "error", err)
		return nil
	}
	a.Track(event)
	return nil
}

// Track folds one event into the statistics. It lets the aggregator stand in
// for the Kafka collector when no broker is configured.
func (a *Aggregator) Track(event QueryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.total++
	for _, t := range event.Types() {
		a.byType[t]++
	}
	if len(a.latencies) < latencyWindow {
		a.latencies = append(a.latencies, event.LatencyMs)
	} else {
		a.latencies[a.next] = event.LatencyMs
		a.next = (a.next + 1) % latencyWindow
	}
	if event.Query != "" {
		a.queryCounts[event.Query]++
		if event.Results == 0 {
			a.zeroResultQueries[event.Query]++
		}
	}
}

// DefaultTop is how many entries the query rankings hold by default.
const DefaultTop = 10

func (a *Aggregator) Stats() AggregatedStats {
	return a.StatsTop(DefaultTop)
}

// StatsTop is Stats with the query rankings cut to top entries.
func (a *Aggregator) StatsTop(top int) AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalQueries: a.total,
		ByType:       make(map[EventType]int64, len(a.byType)),
	}
	for t, n := range a.byType {
		stats.ByType[t] = n
	}
	if len(a.latencies) > 0 {
		sorted := slices.Clone(a.latencies)
		slices.Sort(sorted)
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, top)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, top)
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(a.total) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count, then query, so ties are stable.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
