package scene

import "errors"

// Domain errors for scene construction.
var (
	// ErrNoBodies indicates an empty body list.
	ErrNoBodies = errors.New("scene: at least one body required")

	// ErrBadBody indicates a body with a non-positive mass or radius, or a
	// non-finite position.
	ErrBadBody = errors.New("scene: invalid body")

	// ErrBadField indicates invalid field constants.
	ErrBadField = errors.New("scene: invalid field constants")

	// ErrUnknownPreset indicates a preset name with no registered scene.
	ErrUnknownPreset = errors.New("scene: unknown preset")
)
