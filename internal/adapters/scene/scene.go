// Package scene is an in-memory host: it keeps avatars and their materials,
// accepts subscriptions, and delivers events pulled off the queue.
//
// Mutations from the outside world (spawn, trigger entry, clicks) are only
// submitted here; they take effect when the dispatcher calls Deliver, which
// keeps every handler on one goroutine.
package scene

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/okian/avatarpaint/internal/adapters/mq/queue"
	"github.com/okian/avatarpaint/internal/domain/host"
	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/pkg/logger"
)

const defaultChatHistory = 32

// MaterialSpec describes one material of a spawned avatar.
type MaterialSpec struct {
	Name  string
	Props model.MaterialProps
}

// AvatarSpec describes an avatar to spawn. A nil ID gets a fresh one.
type AvatarSpec struct {
	ID        model.AvatarID
	Handle    string
	Materials []MaterialSpec
}

type interaction struct {
	prompt string
	fn     host.InteractionHandler
}

type avatar struct {
	id        model.AvatarID
	handle    string
	visible   bool
	materials []*material
	chat      []string
}

// Scene implements host.Host over in-memory state.
type Scene struct {
	queue       queue.Queue
	logger      logger.Logger
	chatHistory int

	mu           sync.RWMutex
	avatars      map[model.AvatarID]*avatar
	collisions   map[string][]host.CollisionHandler
	interactions map[string]interaction
	joins        []host.UserHandler
	leaves       []host.UserHandler

	writes atomic.Int64
}

var _ host.Host = (*Scene)(nil)

// New creates an empty scene that submits events to q.
func New(q queue.Queue, opts ...Option) *Scene {
	s := &Scene{
		queue:        q,
		logger:       logger.Nop(),
		chatHistory:  defaultChatHistory,
		avatars:      make(map[model.AvatarID]*avatar),
		collisions:   make(map[string][]host.CollisionHandler),
		interactions: make(map[string]interaction),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spawn places an avatar in the scene and submits its join event.
func (s *Scene) Spawn(ctx context.Context, spec AvatarSpec) (model.AvatarID, error) {
	if strings.TrimSpace(spec.Handle) == "" {
		return model.NilAvatar, fmt.Errorf("%w: avatar handle is empty", ErrInvalidHandle)
	}
	id := spec.ID
	if id.IsNil() {
		id = model.NewAvatarID()
	}

	a := &avatar{id: id, handle: spec.Handle, visible: true}
	for _, m := range spec.Materials {
		a.materials = append(a.materials, &material{scene: s, name: m.Name, props: m.Props})
	}

	s.mu.Lock()
	if _, ok := s.avatars[id]; ok {
		s.mu.Unlock()
		return model.NilAvatar, fmt.Errorf("%w: %s", ErrDuplicateAvatar, id)
	}
	s.avatars[id] = a
	s.mu.Unlock()

	if err := s.queue.TryEnqueue(ctx, host.Event{Kind: host.EventJoin, ObjectID: id.Object()}); err != nil {
		s.mu.Lock()
		delete(s.avatars, id)
		s.mu.Unlock()
		return model.NilAvatar, fmt.Errorf("submit join: %w", err)
	}
	return id, nil
}

// Despawn submits the avatar's leave event. The avatar is removed once the
// leave has been delivered.
func (s *Scene) Despawn(ctx context.Context, id model.AvatarID) error {
	return s.submitFor(ctx, id, host.Event{Kind: host.EventLeave})
}

// Enter submits a trigger-volume entry for the avatar.
func (s *Scene) Enter(ctx context.Context, id model.AvatarID, handle string) error {
	return s.submitFor(ctx, id, host.Event{Kind: host.EventCollision, Handle: handle, Phase: host.PhaseEnter})
}

// Exit submits a trigger-volume exit for the avatar.
func (s *Scene) Exit(ctx context.Context, id model.AvatarID, handle string) error {
	return s.submitFor(ctx, id, host.Event{Kind: host.EventCollision, Handle: handle, Phase: host.PhaseExit})
}

// Click submits a button click by the avatar.
func (s *Scene) Click(ctx context.Context, id model.AvatarID, handle string) error {
	return s.submitFor(ctx, id, host.Event{Kind: host.EventInteraction, Handle: handle})
}

// SetVisibility submits a visibility change for the avatar.
func (s *Scene) SetVisibility(ctx context.Context, id model.AvatarID, visible bool) error {
	return s.submitFor(ctx, id, host.Event{Kind: host.EventVisibility, Visible: visible})
}

// Submit enqueues a raw event, for colliders that are not avatars.
func (s *Scene) Submit(ctx context.Context, ev host.Event) error {
	if err := s.queue.TryEnqueue(ctx, ev); err != nil {
		return fmt.Errorf("submit %s: %w", ev.Kind, err)
	}
	return nil
}

func (s *Scene) submitFor(ctx context.Context, id model.AvatarID, ev host.Event) error {
	if ev.Kind == host.EventCollision || ev.Kind == host.EventInteraction {
		if strings.TrimSpace(ev.Handle) == "" {
			return fmt.Errorf("%w: %s needs a handle", ErrInvalidHandle, ev.Kind)
		}
	}
	s.mu.RLock()
	_, ok := s.avatars[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAvatar, id)
	}
	ev.ObjectID = id.Object()
	return s.Submit(ctx, ev)
}

// Deliver hands ev to its subscribers. It is called by the dispatcher.
func (s *Scene) Deliver(ctx context.Context, ev host.Event) {
	switch ev.Kind {
	case host.EventJoin:
		for _, fn := range s.userHandlers(false) {
			fn(ctx, ev)
		}
	case host.EventLeave:
		for _, fn := range s.userHandlers(true) {
			fn(ctx, ev)
		}
		s.mu.Lock()
		delete(s.avatars, model.AvatarID(ev.ObjectID))
		s.mu.Unlock()
	case host.EventCollision:
		s.mu.RLock()
		handlers := append([]host.CollisionHandler(nil), s.collisions[ev.Handle]...)
		s.mu.RUnlock()
		for _, fn := range handlers {
			fn(ctx, ev)
		}
	case host.EventInteraction:
		s.mu.RLock()
		in, ok := s.interactions[ev.Handle]
		s.mu.RUnlock()
		if ok {
			in.fn(ctx, ev)
		}
	case host.EventVisibility:
		s.mu.Lock()
		if a, ok := s.avatars[model.AvatarID(ev.ObjectID)]; ok {
			a.visible = ev.Visible
		}
		s.mu.Unlock()
	default:
		s.logger.Warn(ctx, "unknown event kind", logger.Stringer("kind", ev.Kind))
	}
}

func (s *Scene) userHandlers(leave bool) []host.UserHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if leave {
		return append([]host.UserHandler(nil), s.leaves...)
	}
	return append([]host.UserHandler(nil), s.joins...)
}

// FindAgent resolves an object to the agent controlling it.
func (s *Scene) FindAgent(_ context.Context, id model.ObjectID) (host.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.avatars[model.AvatarID(id)]
	if !ok {
		return nil, false
	}
	return &agent{scene: s, avatar: a}, true
}

// FindMesh returns the avatar's renderable mesh.
func (s *Scene) FindMesh(_ context.Context, id model.AvatarID) (host.Mesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.avatars[id]
	if !ok {
		return nil, false
	}
	return &mesh{scene: s, avatar: a}, true
}

// SubscribeCollision registers fn for entries into and exits from handle.
func (s *Scene) SubscribeCollision(handle string, fn host.CollisionHandler) error {
	if strings.TrimSpace(handle) == "" {
		return fmt.Errorf("%w: empty volume handle", ErrInvalidHandle)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collisions[handle] = append(s.collisions[handle], fn)
	return nil
}

// AddInteraction makes handle clickable. A handle carries one prompt.
func (s *Scene) AddInteraction(handle, prompt string, fn host.InteractionHandler) error {
	if strings.TrimSpace(handle) == "" {
		return fmt.Errorf("%w: empty button handle", ErrInvalidHandle)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.interactions[handle]; ok {
		return fmt.Errorf("%w: %q", ErrHandleTaken, handle)
	}
	s.interactions[handle] = interaction{prompt: prompt, fn: fn}
	return nil
}

// SubscribeUserJoin registers fn for avatar joins.
func (s *Scene) SubscribeUserJoin(fn host.UserHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joins = append(s.joins, fn)
	return nil
}

// SubscribeUserLeave registers fn for avatar leaves.
func (s *Scene) SubscribeUserLeave(fn host.UserHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaves = append(s.leaves, fn)
	return nil
}
