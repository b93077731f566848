package chunkgrid

import "errors"

var (
	// ErrBadConfig is wrapped by every configuration check that fails before a run starts,
	// e.g., a hash space that is not a power of two.
	ErrBadConfig = errors.New("bad configuration")

	// ErrUnsatisfiable is returned when the requested cluster size cannot be reached within
	// the maximum scan area.
	ErrUnsatisfiable = errors.New("unsatisfiable cluster size")
)
