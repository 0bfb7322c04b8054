package router

import "errors"

// Sentinel error kinds for the router.
var (
	// ErrMisconfigured disables a component at arm time.
	ErrMisconfigured = errors.New("paint component misconfigured")
	// ErrUnknownComponent is returned when routing to a name never armed.
	ErrUnknownComponent = errors.New("unknown paint component")
)
