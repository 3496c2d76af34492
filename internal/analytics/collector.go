package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/sentence-anagrams/pkg/kafka"
)

// Publisher is the Kafka producer side the collector writes to.
type Publisher interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

// Collector buffers query events and publishes them in batches, when a
// batch fills up or when the flush interval elapses. Track never blocks;
// events are dropped when the buffer is full or the collector is closed.
type Collector struct {
	publisher     Publisher
	mu            sync.RWMutex
	closed        bool
	eventCh       chan QueryEvent
	batchSize     int
	flushInterval time.Duration
	dropped       atomic.Int64
	logger        *slog.Logger
	done          chan struct{}
}

func NewCollector(publisher Publisher, bufferSize, batchSize int, flushInterval time.Duration) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 2 * time.Second
	}
	return &Collector{
		publisher:     publisher,
		eventCh:       make(chan QueryEvent, bufferSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Start runs the publish loop in the background until ctx is cancelled or
// Close is called. Buffered events are flushed on the way out.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		batch := make([]kafka.Event, 0, c.batchSize)
		flush := func(ctx context.Context) {
			if len(batch) == 0 {
				return
			}
			if err := c.publisher.Publish(ctx, batch...); err != nil {
				c.logger.Error("failed to publish analytics events", "count", len(batch), "error", err)
			}
			batch = batch[:0]
		}

		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					c.finalFlush(flush)
					return
				}
				batch = append(batch, kafka.Event{Key: string(event.Kind), Value: event})
				if len(batch) >= c.batchSize {
					flush(ctx)
				}
			case <-ticker.C:
				flush(ctx)
			case <-ctx.Done():
				c.drain(&batch)
				c.finalFlush(flush)
				return
			}
		}
	}()
	c.logger.Info("analytics collector started",
		"buffer_size", cap(c.eventCh),
		"batch_size", c.batchSize,
		"flush_interval", c.flushInterval,
	)
}

// Track enqueues an event without blocking. It is safe to call after Close.
func (c *Collector) Track(event QueryEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		c.dropped.Add(1)
		return
	}
	select {
	case c.eventCh <- event:
	default:
		if c.dropped.Add(1)%1000 == 1 {
			c.logger.Warn("analytics events dropped (buffer full)", "dropped_total", c.dropped.Load())
		}
	}
}

// Dropped returns how many events were discarded.
func (c *Collector) Dropped() int64 {
	return c.dropped.Load()
}

// Close stops accepting events and waits for the final flush. Later calls
// only wait.
func (c *Collector) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.eventCh)
	}
	c.mu.Unlock()
	<-c.done
}

func (c *Collector) drain(batch *[]kafka.Event) {
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			*batch = append(*batch, kafka.Event{Key: string(event.Kind), Value: event})
		default:
			return
		}
	}
}

func (c *Collector) finalFlush(flush func(context.Context)) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	flush(ctx)
}
