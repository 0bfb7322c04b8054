// Package dispatch runs the single event loop that delivers host events to
// subscribers, one at a time and in queue order.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/avatarpaint/internal/adapters/mq/queue"
	"github.com/okian/avatarpaint/pkg/logger"
	"github.com/okian/avatarpaint/pkg/metrics"
)

const defaultShutdownTimeout = 5 * time.Second

// Deliverer hands one event to every interested subscriber.
type Deliverer interface {
	Deliver(ctx context.Context, ev queue.Event)
}

// Source is where the dispatcher reads events from.
type Source interface {
	Dequeue(ctx context.Context) <-chan queue.Event
}

// Dispatcher drains a queue into a Deliverer on a single goroutine.
type Dispatcher struct {
	source    Source
	deliverer Deliverer
	name      string

	delivered atomic.Int64
	panics    atomic.Int64

	shutdownTimeout time.Duration
	shutdown        chan struct{}
	stopOnce        sync.Once
	done            chan struct{}
	started         atomic.Bool

	logger logger.Logger
}

// New creates a dispatcher. Call Run to start it.
func New(src Source, d Deliverer, opts ...Option) *Dispatcher {
	disp := &Dispatcher{
		source:          src,
		deliverer:       d,
		name:            "dispatcher",
		shutdownTimeout: defaultShutdownTimeout,
		shutdown:        make(chan struct{}),
		done:            make(chan struct{}),
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(disp)
	}
	disp.logger = disp.logger.Named(disp.name)
	return disp
}

// Start runs the loop on its own goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	d.started.Store(true)
	go d.loop(ctx)
}

// Run delivers events until the queue is closed and drained, ctx is
// cancelled, or Shutdown gives up waiting. It blocks.
func (d *Dispatcher) Run(ctx context.Context) {
	d.started.Store(true)
	d.loop(ctx)
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer close(d.done)

	events := d.source.Dequeue(ctx)
	for {
		// A timed-out Shutdown wins over events still in the queue.
		select {
		case <-d.shutdown:
			return
		default:
		}
		select {
		case <-ctx.Done():
			return
		case <-d.shutdown:
			return
		case ev, ok := <-events:
			if !ok {
				d.logger.Debug(ctx, "queue drained")
				return
			}
			d.deliver(ctx, ev)
		}
	}
}

// Shutdown waits for Run to drain the queue. The queue must already be
// closed; if draining outlasts the timeout, Run is told to stop. It is safe
// to call more than once.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	if !d.started.Load() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, d.shutdownTimeout)
	defer cancel()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		d.stopOnce.Do(func() { close(d.shutdown) })
		d.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("dispatcher shutdown: %w", ctx.Err())
	}
}

// Delivered returns the number of events handed to the deliverer.
func (d *Dispatcher) Delivered() int64 { return d.delivered.Load() }

// Panics returns the number of deliveries that panicked.
func (d *Dispatcher) Panics() int64 { return d.panics.Load() }

func (d *Dispatcher) deliver(ctx context.Context, ev queue.Event) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			d.panics.Add(1)
			metrics.RecordHandlerPanic(d.name)
			d.logger.Error(ctx, "delivery panicked",
				logger.Stringer("kind", ev.Kind),
				logger.String("handle", ev.Handle),
				logger.Any("panic", p))
		}
		d.delivered.Add(1)
		metrics.RecordEventDelivered(ev.Kind.String())
		metrics.RecordDispatchLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()
	d.deliverer.Deliver(ctx, ev)
}
