package service

import (
	"time"

	"github.com/okian/avatarpaint/internal/config"
	"github.com/okian/avatarpaint/internal/domain/effect"
	"github.com/okian/avatarpaint/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the maximum number of pending host events.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCacheSize bounds the original-material cache. Zero means unbounded.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}

// WithPaint sets the paint component configuration.
func WithPaint(p config.Paint) Option {
	return func(s *Service) {
		s.paint = p
	}
}

// WithShutdownTimeout bounds how long Stop waits for pending events.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSampler fixes the random source used by randomize.
func WithSampler(sampler effect.Sampler) Option {
	return func(s *Service) {
		s.sampler = sampler
	}
}
