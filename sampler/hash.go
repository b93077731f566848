package sampler

import (
	"fmt"
	"math/bits"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
)

// golden is the 64-bit golden ratio multiplier used by the avalanche mix.
const golden uint64 = 0x9E3779B97F4A7C15

// Hasher maps a grid coordinate to a hash value within a bounded space.
type Hasher interface {
	Hash(p chunkgrid.Point2d) uint64
}

// Mix returns the unmasked avalanche hash of a grid coordinate.  The coordinate is
// packed into one 64-bit key with z in the high 32 bits and x in the low 32 bits.
func Mix(x, z int32) uint64 {
	key := uint64(uint32(z))<<32 | uint64(uint32(x))
	h := key * golden
	h ^= h >> 32
	h ^= h >> 16
	return h
}

// Oracle is the live Hasher: Mix masked to a power-of-two hash space.
type Oracle struct {
	mask uint64
}

// NewOracle returns an Oracle for a hash space of the given size, which must be a
// non-zero power of two.
func NewOracle(space uint64) (Oracle, error) {
	if err := checkSpace(space); err != nil {
		return Oracle{}, err
	}
	return Oracle{mask: space - 1}, nil
}

// Hash implements Hasher.
func (o Oracle) Hash(p chunkgrid.Point2d) uint64 {
	return Mix(p[0], p[1]) & o.mask
}

// Space returns the size of the hash space.
func (o Oracle) Space() uint64 {
	return o.mask + 1
}

// Table is a Hasher backed by a fixed lookup table.  Coordinates missing from the
// table hash to zero.
type Table map[chunkgrid.Point2d]uint64

// Hash implements Hasher.
func (t Table) Hash(p chunkgrid.Point2d) uint64 {
	return t[p]
}

func checkSpace(space uint64) error {
	if space == 0 || bits.OnesCount64(space) != 1 {
		return fmt.Errorf("hash space %d is not a power of two: %w", space, chunkgrid.ErrBadConfig)
	}
	return nil
}
