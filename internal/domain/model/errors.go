package model

import "errors"

// Sentinel error kinds for model parsing.
var (
	ErrInvalidColor = errors.New("invalid color")
	ErrInvalidID    = errors.New("invalid id")
)
