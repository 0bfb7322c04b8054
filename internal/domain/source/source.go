// Package source adapts host input modalities into paint signals.
//
// Trigger volumes and clickable buttons both boil down to "this object asked
// for this effect"; a Source turns one of them into Signals for the router.
package source

import (
	"context"
	"fmt"

	"github.com/okian/avatarpaint/internal/domain/effect"
	"github.com/okian/avatarpaint/internal/domain/host"
	"github.com/okian/avatarpaint/internal/domain/model"
)

// Selector names the effect a source requests. Index picks the configured
// paint color and is only meaningful for colorize.
type Selector struct {
	Kind  effect.Kind
	Index int
}

// Signal is one request to apply an effect to whoever ObjectID resolves to.
type Signal struct {
	Selector Selector
	ObjectID model.ObjectID
	// Origin is the handle that produced the signal, for logs.
	Origin string
}

// Emit receives signals from a bound source.
type Emit func(ctx context.Context, sig Signal)

// Source binds an input to the host.
type Source interface {
	Bind(ctx context.Context, sub host.Subscriber, emit Emit) error
	Name() string
}

// Volume is a trigger volume. Only entry emits; exit is ignored.
type Volume struct {
	Handle   string
	Selector Selector
}

// Name returns the volume handle.
func (v Volume) Name() string { return v.Handle }

// Bind subscribes to the volume's collision events.
func (v Volume) Bind(_ context.Context, sub host.Subscriber, emit Emit) error {
	err := sub.SubscribeCollision(v.Handle, func(ctx context.Context, ev host.Event) {
		if ev.Phase != host.PhaseEnter {
			return
		}
		emit(ctx, Signal{Selector: v.Selector, ObjectID: ev.ObjectID, Origin: v.Handle})
	})
	if err != nil {
		return fmt.Errorf("subscribe volume %q: %w", v.Handle, err)
	}
	return nil
}

// Button is a clickable object with a prompt.
type Button struct {
	Handle   string
	Prompt   string
	Selector Selector
}

// Name returns the button handle.
func (b Button) Name() string { return b.Handle }

// Bind registers the interaction prompt.
func (b Button) Bind(_ context.Context, sub host.Subscriber, emit Emit) error {
	err := sub.AddInteraction(b.Handle, b.Prompt, func(ctx context.Context, ev host.Event) {
		emit(ctx, Signal{Selector: b.Selector, ObjectID: ev.ObjectID, Origin: b.Handle})
	})
	if err != nil {
		return fmt.Errorf("add interaction %q: %w", b.Handle, err)
	}
	return nil
}
