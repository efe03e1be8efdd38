package world

import (
	"errors"

	"github.com/tilevox/dungeon/internal/data"
)

var (
	// ErrOutOfBounds marks a coordinate outside the grid extent. Always a caller bug.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrUnknownMaterial marks a spawn that references an unregistered material.
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrInvariantViolated marks a grid that no longer maps one-to-one onto live tiles.
	ErrInvariantViolated = errors.New("grid invariant violated")
)

// IsFatal reports whether err means the build is structurally broken and the
// process must stop rather than keep mutating an inconsistent world.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnknownMaterial) ||
		errors.Is(err, ErrInvariantViolated) ||
		errors.Is(err, data.ErrDuplicateRegistration)
}
