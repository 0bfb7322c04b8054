package dispatch_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/avatarpaint/internal/adapters/mq/dispatch"
	"github.com/okian/avatarpaint/internal/adapters/mq/queue"
	"github.com/okian/avatarpaint/internal/domain/host"
	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	mu      sync.Mutex
	kinds   []host.EventKind
	panicOn host.EventKind
}

func (r *recorder) Deliver(_ context.Context, ev queue.Event) {
	if ev.Kind == r.panicOn {
		panic("subscriber blew up")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, ev.Kind)
}

func (r *recorder) seen() []host.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]host.EventKind(nil), r.kinds...)
}

// gate blocks every delivery until it is opened.
type gate struct {
	entered chan struct{}
	open    chan struct{}
}

func (g *gate) Deliver(context.Context, queue.Event) {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.open
}

func TestDispatcherShutdownTimeout(t *testing.T) {
	Convey("Given a dispatcher stuck in a delivery", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		g := &gate{entered: make(chan struct{}, 1), open: make(chan struct{})}
		d := dispatch.New(q, g, dispatch.WithShutdownTimeout(20*time.Millisecond))
		d.Start(ctx)

		So(q.Enqueue(ctx, queue.Event{Kind: host.EventJoin}), ShouldBeTrue)
		So(q.Enqueue(ctx, queue.Event{Kind: host.EventLeave}), ShouldBeTrue)
		So(q.Close(), ShouldBeNil)
		<-g.entered

		Convey("When shutdown times out twice", func() {
			first := d.Shutdown(ctx)
			var second error
			So(func() { second = d.Shutdown(ctx) }, ShouldNotPanic)

			Convey("Then both calls report the deadline", func() {
				So(errors.Is(first, context.DeadlineExceeded), ShouldBeTrue)
				So(errors.Is(second, context.DeadlineExceeded), ShouldBeTrue)
			})

			Convey("Then the loop stops after the stuck delivery", func() {
				close(g.open)
				So(d.Shutdown(ctx), ShouldBeNil)
				So(d.Delivered(), ShouldEqual, 1)
			})
		})
	})
}

func TestDispatcher(t *testing.T) {
	Convey("Given a queue and a running dispatcher", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		rec := &recorder{panicOn: host.EventVisibility}
		d := dispatch.New(q, rec, dispatch.WithName("test"))
		d.Start(ctx)

		Convey("When events are enqueued and the queue is closed", func() {
			So(q.Enqueue(ctx, queue.Event{Kind: host.EventJoin}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Event{Kind: host.EventCollision}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Event{Kind: host.EventLeave}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then shutdown waits for every event in order", func() {
				So(d.Shutdown(ctx), ShouldBeNil)
				So(rec.seen(), ShouldResemble, []host.EventKind{host.EventJoin, host.EventCollision, host.EventLeave})
				So(d.Delivered(), ShouldEqual, 3)
			})
		})

		Convey("When a delivery panics", func() {
			So(q.Enqueue(ctx, queue.Event{Kind: host.EventVisibility}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Event{Kind: host.EventJoin}), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then the loop survives and keeps delivering", func() {
				So(d.Shutdown(ctx), ShouldBeNil)
				So(d.Panics(), ShouldEqual, 1)
				So(rec.seen(), ShouldResemble, []host.EventKind{host.EventJoin})
			})
		})
	})

	Convey("Given a dispatcher whose context is cancelled", t, func() {
		q := queue.NewInMemoryQueue()
		d := dispatch.New(q, &recorder{panicOn: -1}, dispatch.WithShutdownTimeout(time.Second))
		ctx, cancel := context.WithCancel(context.Background())
		d.Start(ctx)
		cancel()

		Convey("Then shutdown returns once the loop exits", func() {
			So(d.Shutdown(context.Background()), ShouldBeNil)
		})
	})
}
