package sampler

import (
	"fmt"
	"sort"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
)

// DefaultMaxColumns caps the number of columns scanned when a Config does not set one.
const DefaultMaxColumns = 1 << 16

// Config sets the scan geometry and the size of the cluster to find.
type Config struct {
	// Offset is the first scanned coordinate.  Columns grow along +x from Offset.X().
	Offset chunkgrid.Point2d

	// Width is the number of cells in each column, i.e., z runs over
	// [Offset.Z(), Offset.Z()+Width).
	Width int32

	// Size is the number of cells (K) the cluster must hold.
	Size int

	// HashSpace is the power-of-two size of the hash space.
	HashSpace uint64

	// MaxColumns bounds the scan area to MaxColumns * Width cells.
	MaxColumns int32
}

// Floor returns the admission floor: only cells with hash >= Floor become candidates.
func (c Config) Floor() uint64 {
	return c.HashSpace - uint64(c.Size)
}

// Validate checks the configuration and returns an error wrapping ErrBadConfig or
// ErrUnsatisfiable if a run could never succeed.
func (c Config) Validate() error {
	if err := checkSpace(c.HashSpace); err != nil {
		return err
	}
	if c.Width <= 0 {
		return fmt.Errorf("scan width must be positive, got %d: %w", c.Width, chunkgrid.ErrBadConfig)
	}
	if c.Size <= 0 {
		return fmt.Errorf("cluster size must be positive, got %d: %w", c.Size, chunkgrid.ErrBadConfig)
	}
	if uint64(c.Size) > c.HashSpace {
		return fmt.Errorf("cluster size %d exceeds hash space %d: %w", c.Size, c.HashSpace, chunkgrid.ErrBadConfig)
	}
	if c.MaxColumns <= 0 {
		return fmt.Errorf("max columns must be positive, got %d: %w", c.MaxColumns, chunkgrid.ErrBadConfig)
	}
	if area := int64(c.MaxColumns) * int64(c.Width); area < int64(c.Size) {
		return fmt.Errorf("cluster size %d larger than scan area %d: %w", c.Size, area, chunkgrid.ErrUnsatisfiable)
	}
	return nil
}

// Cluster is the result of a completed scan.
type Cluster struct {
	// Cells holds exactly Size cells in acceptance order.
	Cells []Cell

	// Pending holds the candidates that were scanned but never accepted, sorted by
	// ascending hash.
	Pending []Cell

	// Columns is the number of columns scanned.
	Columns int32

	Offset chunkgrid.Point2d
	Width  int32
	Floor  uint64
}

// Points returns the coordinates of the accepted cells in acceptance order.
func (c *Cluster) Points() []chunkgrid.Point2d {
	pts := make([]chunkgrid.Point2d, len(c.Cells))
	for i, cell := range c.Cells {
		pts[i] = cell.Pos
	}
	return pts
}

// Extent returns the scanned rectangle: Columns cells along x by Width cells along z.
func (c *Cluster) Extent() chunkgrid.Rect2d {
	return chunkgrid.Rect2d{Origin: c.Offset, Width: c.Columns, Height: c.Width}
}

// Sampler holds the state of an incremental scan.  The admission threshold rises by one
// with every accepted cell, starting from the floor.
type Sampler struct {
	cfg    Config
	hasher Hasher
	floor  uint64

	accepted []Cell
	pending  cellQueue
	column   int32
}

// New returns a Sampler for a validated configuration.
func New(cfg Config, hasher Hasher) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hasher == nil {
		return nil, fmt.Errorf("no hasher given to sampler: %w", chunkgrid.ErrBadConfig)
	}
	return &Sampler{
		cfg:      cfg,
		hasher:   hasher,
		floor:    cfg.Floor(),
		accepted: make([]Cell, 0, cfg.Size),
	}, nil
}

// Sample runs a scan using the live Oracle for the configured hash space.
func Sample(cfg Config) (*Cluster, error) {
	oracle, err := NewOracle(cfg.HashSpace)
	if err != nil {
		return nil, err
	}
	s, err := New(cfg, oracle)
	if err != nil {
		return nil, err
	}
	return s.Run()
}

// Done returns true once the cluster is complete.
func (s *Sampler) Done() bool {
	return len(s.accepted) >= s.cfg.Size
}

// threshold is the largest hash that can currently be admitted.
func (s *Sampler) threshold() uint64 {
	return s.floor + uint64(len(s.accepted))
}

// admit moves qualifying candidates from the pending heap to the accepted list and
// returns the number admitted.
func (s *Sampler) admit() int {
	var n int
	for !s.Done() {
		top, ok := s.pending.top()
		if !ok || top.Hash > s.threshold() {
			break
		}
		s.pending.pop()
		s.accepted = append(s.accepted, top)
		n++
	}
	return n
}

// advance scans the next column and pushes every cell at or above the floor onto the
// pending heap.  Returns the number of candidates found.
func (s *Sampler) advance() int {
	x := s.cfg.Offset[0] + s.column
	z0 := s.cfg.Offset[1]
	var n int
	for z := z0; z < z0+s.cfg.Width; z++ {
		pos := chunkgrid.Point2d{x, z}
		if h := s.hasher.Hash(pos); h >= s.floor {
			s.pending.push(Cell{Pos: pos, Hash: h})
			n++
		}
	}
	s.column++
	return n
}

// Run scans columns until exactly Size cells are accepted.  If the scan would exceed
// MaxColumns, an error wrapping ErrUnsatisfiable is returned.
func (s *Sampler) Run() (*Cluster, error) {
	for {
		s.admit()
		if s.Done() {
			break
		}
		if s.column >= s.cfg.MaxColumns {
			return nil, fmt.Errorf("found %d of %d cells after scanning %d columns: %w",
				len(s.accepted), s.cfg.Size, s.column, chunkgrid.ErrUnsatisfiable)
		}
		found := s.advance()
		if s.column%64 == 0 {
			chunkgrid.Debugf("scanned %d columns, %d candidates in last column, %d accepted, %d pending\n",
				s.column, found, len(s.accepted), s.pending.Len())
		}
	}
	pending := make([]Cell, len(s.pending.items))
	copy(pending, s.pending.items)
	sort.Slice(pending, func(i, j int) bool { return pending[i].Less(pending[j]) })

	cells := make([]Cell, len(s.accepted))
	copy(cells, s.accepted)
	return &Cluster{
		Cells:   cells,
		Pending: pending,
		Columns: s.column,
		Offset:  s.cfg.Offset,
		Width:   s.cfg.Width,
		Floor:   s.floor,
	}, nil
}
