// Package service wires the paint core to the in-memory scene host and
// exposes the operations the HTTP API and scene scripts need.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/avatarpaint/internal/adapters/mq/dispatch"
	eventqueue "github.com/okian/avatarpaint/internal/adapters/mq/queue"
	"github.com/okian/avatarpaint/internal/adapters/scene"
	"github.com/okian/avatarpaint/internal/config"
	"github.com/okian/avatarpaint/internal/domain/avatarcache"
	"github.com/okian/avatarpaint/internal/domain/effect"
	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/internal/domain/router"
	"github.com/okian/avatarpaint/pkg/logger"
	"github.com/okian/avatarpaint/pkg/metrics"
)

const flushPollInterval = 2 * time.Millisecond

// ErrNotStarted is returned by operations that need a running service.
var ErrNotStarted = errors.New("service not started")

// Service owns the scene, its event loop and the paint router.
type Service struct {
	mu sync.RWMutex

	cache      avatarcache.Cache
	queue      *eventqueue.InMemoryQueue
	scene      *scene.Scene
	router     *router.Router
	dispatcher *dispatch.Dispatcher

	queueSize       int
	cacheSize       int
	paint           config.Paint
	shutdownTimeout time.Duration
	sampler         effect.Sampler

	submitted atomic.Int64
	outcomeMu sync.Mutex
	outcomes  map[string]int64

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:       1024,
		shutdownTimeout: 5 * time.Second,
		paint:           config.New(context.Background()).Paint,
		outcomes:        make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the components, arms the configured paint rigs and starts
// the dispatch loop. A misconfigured rig is reported and left disabled; it
// does not fail Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting avatar paint service...")

	s.submitted.Store(0)
	s.cache = avatarcache.New(avatarcache.WithMaxSize(s.cacheSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.scene = scene.New(s.queue, scene.WithLogger(s.logger.Named("scene")))

	ropts := []router.Option{
		router.WithLogger(s.logger.Named("router")),
		router.WithDebug(s.paint.Debug),
		router.WithObserver(s.observe),
	}
	if s.sampler != nil {
		ropts = append(ropts, router.WithSampler(s.sampler))
	}
	s.router = router.New(s.scene, s.cache, ropts...)

	for _, spec := range s.componentSpecs(ctx) {
		// Arm logs its own diagnostic.
		_ = s.router.Arm(ctx, spec)
	}

	s.dispatcher = dispatch.New(s.queue, s.scene,
		dispatch.WithLogger(s.logger),
		dispatch.WithShutdownTimeout(s.shutdownTimeout))
	s.dispatcher.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "avatar paint service started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("cacheSize", s.cacheSize),
		logger.Int("components", len(s.router.Components())),
	)
	return nil
}

// Stop closes the queue and waits for pending events to be delivered.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping avatar paint service...")

	_ = s.queue.Close()
	err := s.dispatcher.Shutdown(ctx)

	s.started = false
	s.logger.Info(ctx, "avatar paint service stopped",
		logger.Any("delivered", s.dispatcher.Delivered()))
	if err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

// Join spawns an avatar into the scene.
func (s *Service) Join(ctx context.Context, spec scene.AvatarSpec) (model.AvatarID, error) {
	sc, err := s.running()
	if err != nil {
		return model.NilAvatar, err
	}
	id, err := sc.Spawn(ctx, spec)
	if err != nil {
		return model.NilAvatar, err
	}
	s.submitted.Add(1)
	return id, nil
}

// Leave removes an avatar from the scene.
func (s *Service) Leave(ctx context.Context, id model.AvatarID) error {
	return s.submit(func(sc *scene.Scene) error { return sc.Despawn(ctx, id) })
}

// Enter moves an avatar into a trigger volume.
func (s *Service) Enter(ctx context.Context, id model.AvatarID, handle string) error {
	return s.submit(func(sc *scene.Scene) error { return sc.Enter(ctx, id, handle) })
}

// Exit moves an avatar out of a trigger volume.
func (s *Service) Exit(ctx context.Context, id model.AvatarID, handle string) error {
	return s.submit(func(sc *scene.Scene) error { return sc.Exit(ctx, id, handle) })
}

// Click has an avatar click a button.
func (s *Service) Click(ctx context.Context, id model.AvatarID, handle string) error {
	return s.submit(func(sc *scene.Scene) error { return sc.Click(ctx, id, handle) })
}

// SetVisibility shows or hides an avatar.
func (s *Service) SetVisibility(ctx context.Context, id model.AvatarID, visible bool) error {
	return s.submit(func(sc *scene.Scene) error { return sc.SetVisibility(ctx, id, visible) })
}

func (s *Service) submit(fn func(sc *scene.Scene) error) error {
	sc, err := s.running()
	if err != nil {
		return err
	}
	if err := fn(sc); err != nil {
		return err
	}
	s.submitted.Add(1)
	return nil
}

func (s *Service) running() (*scene.Scene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.scene, nil
}

// Flush blocks until every event submitted so far has been delivered.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.RLock()
	d := s.dispatcher
	s.mu.RUnlock()
	if d == nil {
		return ErrNotStarted
	}

	ticker := time.NewTicker(flushPollInterval)
	defer ticker.Stop()
	for d.Delivered() < s.submitted.Load() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("flush: %w", ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}

// Snapshot returns the cached original materials of an avatar.
func (s *Service) Snapshot(ctx context.Context, id model.AvatarID) (model.Snapshot, bool) {
	s.mu.RLock()
	cache := s.cache
	s.mu.RUnlock()
	if cache == nil {
		return model.Snapshot{}, false
	}
	return cache.Lookup(ctx, id)
}

// Avatar returns the current scene state of an avatar.
func (s *Service) Avatar(id model.AvatarID) (scene.AvatarView, bool) {
	sc, err := s.running()
	if err != nil {
		return scene.AvatarView{}, false
	}
	return sc.Avatar(id)
}

// Avatars lists every avatar in the scene.
func (s *Service) Avatars() []scene.AvatarView {
	sc, err := s.running()
	if err != nil {
		return nil
	}
	return sc.Avatars()
}

// Components reports the armed and disabled paint components.
func (s *Service) Components() []router.ComponentStatus {
	s.mu.RLock()
	r := s.router
	s.mu.RUnlock()
	if r == nil {
		return nil
	}
	return r.Components()
}

// Outcomes returns how many events resolved to each outcome.
func (s *Service) Outcomes() map[string]int64 {
	s.outcomeMu.Lock()
	defer s.outcomeMu.Unlock()
	out := make(map[string]int64, len(s.outcomes))
	for k, v := range s.outcomes {
		out[k] = v
	}
	return out
}

func (s *Service) observe(_ context.Context, res router.Result) {
	s.outcomeMu.Lock()
	s.outcomes[res.Outcome.String()]++
	s.outcomeMu.Unlock()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":   s.started,
		"queueSize": s.queueSize,
		"cacheSize": s.cacheSize,
		"debug":     s.paint.Debug,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["cachedAvatars"] = s.cache.Size()
		stats["population"] = s.scene.Population()
		stats["materialWrites"] = s.scene.Writes()
		stats["delivered"] = s.dispatcher.Delivered()
		stats["submitted"] = s.submitted.Load()
		stats["outcomes"] = s.Outcomes()

		metrics.UpdateCacheEntries(s.cache.Size())
	}
	return stats
}
