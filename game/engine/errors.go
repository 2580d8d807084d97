package engine

import "errors"

var (
	// ErrInvalidDirection is returned when a direction name cannot be parsed.
	ErrInvalidDirection = errors.New("invalid direction")
	// ErrInvalidMode is returned when a mode name cannot be parsed.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidLevel is returned for level ids outside the authored table.
	ErrInvalidLevel = errors.New("invalid level")
	// ErrInvalidConfig wraps every semantic config validation failure.
	ErrInvalidConfig = errors.New("invalid game config")
	// ErrInvalidLayout is returned when a text level layout cannot be expanded.
	ErrInvalidLayout = errors.New("invalid level layout")
)
