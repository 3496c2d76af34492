// Package tracing times the steps of a query as a tree of spans carried in
// the context. A finished tree is written to slog.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/logger"
)

type contextKey struct{}

// Span is one timed step. Spans started from a context that already holds a
// span become its children and share its trace ID.
type Span struct {
	Name    string
	TraceID string
	Start   time.Time

	mu       sync.Mutex
	duration time.Duration
	ended    bool
	attrs    []any
	children []*Span
}

// Start opens a span named name. A root span takes the request ID in ctx as
// its trace ID.
func Start(ctx context.Context, name string) (context.Context, *Span) {
	span := &Span{Name: name, Start: time.Now()}
	if parent := FromContext(ctx); parent != nil {
		span.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.children = append(parent.children, span)
		parent.mu.Unlock()
	} else {
		span.TraceID = logger.RequestID(ctx)
	}
	return context.WithValue(ctx, contextKey{}, span), span
}

// FromContext returns the innermost span in ctx, or nil.
func FromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(contextKey{}).(*Span)
	return span
}

// End fixes the span's duration. Only the first call counts.
func (s *Span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ended {
		s.duration = time.Since(s.Start)
		s.ended = true
	}
}

// SetAttr records a key/value pair on the span. A span that has ended is
// frozen and ignores further attributes.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	if !s.ended {
		s.attrs = append(s.attrs, key, value)
	}
	s.mu.Unlock()
}

func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

func (s *Span) Children() []*Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Span(nil), s.children...)
}

// Log writes the span and its descendants depth-first, one record per span.
func (s *Span) Log(ctx context.Context, log *slog.Logger, level slog.Level) {
	if !log.Enabled(ctx, level) {
		return
	}
	s.log(ctx, log, level, 0)
}

func (s *Span) log(ctx context.Context, log *slog.Logger, level slog.Level, depth int) {
	s.mu.Lock()
	args := make([]any, 0, 8+len(s.attrs))
	args = append(args,
		"trace_id", s.TraceID,
		"span", s.Name,
		"depth", depth,
		"duration", s.duration,
	)
	args = append(args, s.attrs...)
	children := append([]*Span(nil), s.children...)
	s.mu.Unlock()

	log.Log(ctx, level, "span", args...)
	for _, child := range children {
		child.log(ctx, log, level, depth+1)
	}
}
