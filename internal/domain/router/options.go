package router

import (
	"context"

	"github.com/okian/avatarpaint/internal/domain/effect"
	"github.com/okian/avatarpaint/pkg/logger"
)

// Option applies a configuration option to the Router.
type Option func(*Router)

// WithLogger sets the router logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDebug enables chat notifications to agents and verbose miss logging.
func WithDebug(enabled bool) Option {
	return func(r *Router) {
		r.debug = enabled
	}
}

// WithSampler replaces the random source used by randomize.
func WithSampler(s effect.Sampler) Option {
	return func(r *Router) {
		if s != nil {
			r.sampler = s
		}
	}
}

// WithObserver registers a callback invoked after every handled event.
func WithObserver(fn func(ctx context.Context, res Result)) Option {
	return func(r *Router) {
		if fn != nil {
			r.observers = append(r.observers, fn)
		}
	}
}
