package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/stinkypony1968-a11y/physician-dossier/pkg/requestcontext"
)

const (
	flushBatchSize   = 64
	flushInterval    = 250 * time.Millisecond
	sinkWriteTimeout = 5 * time.Second
)

// Publisher fans audit events out to sinks through a bounded buffer and a
// single worker goroutine. Emit never blocks the caller and never returns an
// error: a broken audit pipeline degrades to error logs and drop counters,
// not failed dossier requests. Compliance losses are still loud.
type Publisher struct {
	buffer  *RingBuffer
	sampler *Sampler
	breaker *CircuitBreaker
	sinks   []Sink
	logger  *slog.Logger

	wake    chan struct{}
	done    chan struct{}
	drained chan struct{}
	closing sync.Once

	droppedCompliance atomic.Int64
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithBufferSize sets the intake buffer capacity.
func WithBufferSize(n int) Option {
	return func(p *Publisher) { p.buffer = NewRingBuffer(n) }
}

// WithSampler replaces the default record-everything sampler.
func WithSampler(s *Sampler) Option {
	return func(p *Publisher) { p.sampler = s }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(cb *CircuitBreaker) Option {
	return func(p *Publisher) { p.breaker = cb }
}

// NewPublisher starts the delivery worker and returns a ready publisher.
// Callers must Close it to flush buffered events before shutdown.
func NewPublisher(sinks []Sink, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{
		buffer:  NewRingBuffer(0),
		sampler: NewSampler(1.0),
		breaker: NewCircuitBreaker(0, 0),
		sinks:   sinks,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		drained: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	go p.run()
	return p
}

// Emit queues an event for delivery. Missing ID, category, timestamp, and
// request ID are stamped here; the timestamp comes from the request clock in
// ctx when one is present. Operations events are subject to sampling.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	select {
	case <-p.done:
		return
	default:
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if caller := requestcontext.Subject(ctx); caller != "" {
		if event.Attrs == nil {
			event.Attrs = make(map[string]string, 1)
		}
		if _, ok := event.Attrs["caller"]; !ok {
			event.Attrs["caller"] = caller
		}
	}

	if event.Category == CategoryOperations && !p.sampler.ShouldSample(event.Action) {
		return
	}

	p.buffer.Enqueue(event)

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Close stops intake and blocks until buffered events are flushed or ctx
// expires. Safe to call more than once.
func (p *Publisher) Close(ctx context.Context) error {
	p.closing.Do(func() { close(p.done) })

	select {
	case <-p.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DroppedCompliance returns how many compliance events were lost to a full
// buffer, an open breaker, or failed sinks since startup.
func (p *Publisher) DroppedCompliance() int64 {
	return p.droppedCompliance.Load()
}

func (p *Publisher) run() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			p.flush()
			close(p.drained)
			return
		case <-p.wake:
			p.flush()
		case <-ticker.C:
			p.flush()
		}
	}
}

func (p *Publisher) flush() {
	for {
		batch := p.buffer.DequeueBatch(flushBatchSize)
		if len(batch) == 0 {
			return
		}
		p.deliver(batch)
	}
}

func (p *Publisher) deliver(batch []Event) {
	if !p.breaker.Allow() {
		p.drop(batch, "breaker open")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sinkWriteTimeout)
	defer cancel()

	delivered := 0
	for _, sink := range p.sinks {
		if err := sink.Write(ctx, batch); err != nil {
			p.logger.ErrorContext(ctx, "audit sink write failed",
				"sink", sink.Name(),
				"events", len(batch),
				"error", err,
			)
			continue
		}
		delivered++
	}

	if delivered == 0 && len(p.sinks) > 0 {
		p.breaker.RecordFailure()
		p.drop(batch, "all sinks failed")
		return
	}
	p.breaker.RecordSuccess()
}

// drop accounts for undeliverable events. Losing compliance events is an
// error condition even though the request itself already succeeded.
func (p *Publisher) drop(batch []Event, reason string) {
	compliance := 0
	for _, e := range batch {
		if e.Category == CategoryCompliance {
			compliance++
		}
	}

	if compliance > 0 {
		p.droppedCompliance.Add(int64(compliance))
		p.logger.Error("CRITICAL: compliance audit events dropped",
			"count", compliance,
			"batch", len(batch),
			"reason", reason,
		)
		return
	}

	p.logger.Warn("audit events dropped",
		"count", len(batch),
		"reason", reason,
	)
}
