// Package analytics publishes one event per anagram query to Kafka and
// aggregates the event stream into totals, latency percentiles and top
// queries.
package analytics

import "time"

type EventType string

const (
	EventWord       EventType = "word"
	EventSentence   EventType = "sentence"
	EventCacheHit   EventType = "cache_hit"
	EventZeroResult EventType = "zero_result"
	EventTruncated  EventType = "truncated"
)

// QueryEvent describes one answered query. Kind is EventWord or
// EventSentence.
type QueryEvent struct {
	Kind       EventType `json:"kind"`
	Query      string    `json:"query"`
	Letters    int       `json:"letters"`
	Results    int       `json:"results"`
	Partitions int       `json:"partitions,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Truncated  bool      `json:"truncated"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
}

// Types lists every event type the query counts toward.
func (e QueryEvent) Types() []EventType {
	types := []EventType{e.Kind}
	if e.CacheHit {
		types = append(types, EventCacheHit)
	}
	if e.Results == 0 {
		types = append(types, EventZeroResult)
	}
	if e.Truncated {
		types = append(types, EventTruncated)
	}
	return types
}
