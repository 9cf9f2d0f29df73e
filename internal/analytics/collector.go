package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
)

const (
	defaultBufferSize = 10000
	maxBatch          = 100
)

// Publisher sends events to the analytics topic. *kafka.Producer
// implements it.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Collector publishes events asynchronously. Track never blocks: when the
// buffer is full the event is dropped.
type Collector struct {
	publisher Publisher
	eventCh   chan kafka.Event
	logger    *slog.Logger
	done      chan struct{}
	started   atomic.Bool
	closeOnce sync.Once
}

func NewCollector(publisher Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Collector{
		publisher: publisher,
		eventCh:   make(chan kafka.Event, bufferSize),
		logger:    slog.Default().With("component", "analytics-collector"),
		done:      make(chan struct{}),
	}
}

// Start launches the publishing loop. Buffered events are flushed when ctx
// is cancelled or Close is called.
func (c *Collector) Start(ctx context.Context) {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, c.collectBatch(event))
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

// TrackSearch queues a search event.
func (c *Collector) TrackSearch(event SearchEvent) {
	c.track(kafka.Event{Key: event.Fingerprint, Type: string(EventSearch), Value: event})
}

// TrackCorpus queues a corpus build event.
func (c *Collector) TrackCorpus(event CorpusEvent) {
	c.track(kafka.Event{Key: event.Fingerprint, Type: string(EventCorpusBuilt), Value: event})
}

func (c *Collector) track(event kafka.Event) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)", "type", event.Type)
	}
}

// Close stops accepting events and waits for the buffer to be flushed.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		close(c.eventCh)
	})
	if c.started.Load() {
		<-c.done
	}
}

func (c *Collector) collectBatch(first kafka.Event) []kafka.Event {
	batch := []kafka.Event{first}
	for len(batch) < maxBatch {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return batch
			}
			batch = append(batch, event)
		default:
			return batch
		}
	}
	return batch
}

func (c *Collector) publish(ctx context.Context, batch []kafka.Event) {
	if err := c.publisher.PublishBatch(ctx, batch); err != nil {
		c.logger.Error("failed to publish analytics events",
			"count", len(batch),
			"error", err,
		)
	}
}

func (c *Collector) drainRemaining() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(ctx, c.collectBatch(event))
		default:
			return
		}
	}
}
