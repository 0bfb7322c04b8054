// Package host declares the scene-simulation collaborators the paint core
// depends on. The platform owns event dispatch, collision and rendering;
// this package only names the capabilities the core needs from it.
package host

import (
	"context"

	"github.com/okian/avatarpaint/internal/domain/model"
)

// Phase distinguishes trigger entry from exit.
type Phase int

// Collision phases.
const (
	PhaseEnter Phase = iota
	PhaseExit
)

func (p Phase) String() string {
	if p == PhaseExit {
		return "exit"
	}
	return "enter"
}

// EventKind enumerates the host events the core subscribes to.
type EventKind int

// Host event kinds.
const (
	EventJoin EventKind = iota
	EventLeave
	EventCollision
	EventInteraction
	EventVisibility
)

func (k EventKind) String() string {
	switch k {
	case EventJoin:
		return "join"
	case EventLeave:
		return "leave"
	case EventCollision:
		return "collision"
	case EventInteraction:
		return "interaction"
	case EventVisibility:
		return "visibility"
	default:
		return "unknown"
	}
}

// Event is the opaque payload the host hands to subscribers.
type Event struct {
	Kind EventKind
	// Handle names the trigger volume or button that fired.
	Handle string
	// ObjectID is the collider that hit a volume, or the agent that joined,
	// left or clicked.
	ObjectID model.ObjectID
	Phase    Phase
	// Visible is the new visibility for EventVisibility.
	Visible bool
}

// Agent is a live user-controlled avatar.
type Agent interface {
	AvatarID() model.AvatarID
	Handle() string
	SendChat(ctx context.Context, msg string) error
}

// Material is one render material on an avatar mesh.
type Material interface {
	Name() string
	Properties() model.MaterialProps
	// SetProperties asks the host to blend to props over the transition.
	SetProperties(props model.MaterialProps, t model.TransitionSpec)
}

// Mesh is the avatar's renderable component.
type Mesh interface {
	Visible() bool
	SetVisible(visible bool)
	Materials() []Material
}

// Scene resolves identifiers to live objects.
type Scene interface {
	FindAgent(ctx context.Context, id model.ObjectID) (Agent, bool)
	FindMesh(ctx context.Context, id model.AvatarID) (Mesh, bool)
}

// Handler functions receive events on the host's dispatch goroutine.
type (
	CollisionHandler   func(ctx context.Context, ev Event)
	InteractionHandler func(ctx context.Context, ev Event)
	UserHandler        func(ctx context.Context, ev Event)
)

// Subscriber registers handlers with the host.
type Subscriber interface {
	SubscribeCollision(handle string, fn CollisionHandler) error
	// AddInteraction makes handle clickable with the given prompt.
	AddInteraction(handle, prompt string, fn InteractionHandler) error
	SubscribeUserJoin(fn UserHandler) error
	SubscribeUserLeave(fn UserHandler) error
}

// Host is everything the router needs from the platform.
type Host interface {
	Scene
	Subscriber
}
