package scene

import "errors"

// Sentinel kinds for scene errors.
var (
	ErrUnknownAvatar   = errors.New("unknown avatar")
	ErrDuplicateAvatar = errors.New("avatar already in scene")
	ErrInvalidHandle   = errors.New("invalid object handle")
	ErrHandleTaken     = errors.New("handle already interactive")
)
