package scenescript

import "errors"

var (
	// ErrInvalidScript is returned when a script fails to parse or validate.
	ErrInvalidScript = errors.New("invalid scene script")
	// ErrStep is returned when the player rejects a step during replay.
	ErrStep = errors.New("scene script step failed")
)
