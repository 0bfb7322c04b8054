package model

import (
	"fmt"

	"github.com/google/uuid"
)

// AvatarID identifies an avatar instance. It is the avatar cache key.
type AvatarID uuid.UUID

// ObjectID identifies a scene object, such as the collider that entered a
// trigger or the agent that clicked a button. The host resolves it to an agent.
type ObjectID uuid.UUID

// NilAvatar is the zero AvatarID.
var NilAvatar AvatarID

// NewAvatarID returns a fresh time-sortable avatar id.
func NewAvatarID() AvatarID {
	return AvatarID(uuid.Must(uuid.NewV7()))
}

// ParseAvatarID parses the canonical UUID text form.
func ParseAvatarID(s string) (AvatarID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return NilAvatar, fmt.Errorf("%w: %q: %v", ErrInvalidID, s, err)
	}
	return AvatarID(u), nil
}

func (id AvatarID) String() string { return uuid.UUID(id).String() }

// IsNil reports whether id is the zero value.
func (id AvatarID) IsNil() bool { return id == NilAvatar }

// Object returns the ObjectID sharing the same identifier.
func (id AvatarID) Object() ObjectID { return ObjectID(id) }

// ParseObjectID parses the canonical UUID text form.
func ParseObjectID(s string) (ObjectID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ObjectID{}, fmt.Errorf("%w: %q: %v", ErrInvalidID, s, err)
	}
	return ObjectID(u), nil
}

func (id ObjectID) String() string { return uuid.UUID(id).String() }
