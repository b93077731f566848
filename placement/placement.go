// Package placement walks a classified chunk map and lays out pathway and marker blocks
// in a schematic region.
package placement

import (
	"fmt"
	"sort"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
	"github.com/janelia-flyem/chunkgrid/schematic"
	"github.com/janelia-flyem/chunkgrid/topology"
)

const (
	DefaultChunkSize = 16
	DefaultPathway   = "minecraft:concrete"
	DefaultMarker    = "minecraft:chest"
	DefaultRegion    = "chests"
)

// Options control the layout.
type Options struct {
	// Dimensions is 2 for one voxel per chunk in a single plane, or 3 for chunk-scale
	// pathways with markers raised one block above them.
	Dimensions int

	// ChunkSize is the number of blocks along each horizontal axis of a chunk.  Only
	// used in 3 dimensions.
	ChunkSize int32

	// Origin picks the starting anchor: the one closest to Origin.
	Origin chunkgrid.Point2d

	Region  string
	Pathway string
	Marker  string
}

// DefaultOptions returns 3-d chunk-scale options.
func DefaultOptions() Options {
	return Options{
		Dimensions: 3,
		ChunkSize:  DefaultChunkSize,
		Region:     DefaultRegion,
		Pathway:    DefaultPathway,
		Marker:     DefaultMarker,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Dimensions != 2 && o.Dimensions != 3 {
		return fmt.Errorf("placement dimensions must be 2 or 3, got %d: %w", o.Dimensions, chunkgrid.ErrBadConfig)
	}
	if o.Dimensions == 3 && o.ChunkSize < 2 {
		return fmt.Errorf("chunk size must be at least 2, got %d: %w", o.ChunkSize, chunkgrid.ErrBadConfig)
	}
	if o.Region == "" || o.Pathway == "" || o.Marker == "" {
		return fmt.Errorf("region, pathway and marker names must be set: %w", chunkgrid.ErrBadConfig)
	}
	return nil
}

// Result is the placed region plus the cells the walk reached.
type Result struct {
	Region  *schematic.Region
	Start   chunkgrid.Point2d
	Reached int
}

// Place walks the classified cells breadth-first from the anchor nearest opts.Origin,
// crossing only between 4-connected classified cells.  Each frontier is processed in
// lexicographic order and neighbours in +x, -x, +z, -z order, so the layout is
// deterministic.
func Place(cells topology.Map, anchors []chunkgrid.Point2d, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(anchors) == 0 {
		return nil, fmt.Errorf("no anchors to start placement from")
	}
	start := anchors[0]
	best := start.ManhattanDistance(opts.Origin)
	for _, a := range anchors[1:] {
		if d := a.ManhattanDistance(opts.Origin); d < best {
			start, best = a, d
		}
	}
	if _, found := cells[start]; !found {
		return nil, fmt.Errorf("start anchor %s is not a classified cell", start)
	}

	region := schematic.NewRegion(opts.Region)
	p := placer{opts: opts, cells: cells, region: region}
	connected := map[chunkgrid.Point2d]struct{}{start: {}}
	if opts.Dimensions == 2 {
		p.placeCell(start)
	}

	frontier := []chunkgrid.Point2d{start}
	for len(frontier) > 0 {
		sort.Slice(frontier, func(i, j int) bool { return frontier[i].Less(frontier[j]) })
		var next []chunkgrid.Point2d
		for _, cur := range frontier {
			for dir, nb := range cur.Neighbors() {
				if _, found := cells[nb]; !found {
					continue
				}
				if _, done := connected[nb]; done {
					continue
				}
				connected[nb] = struct{}{}
				next = append(next, nb)
				if opts.Dimensions == 2 {
					p.placeCell(nb)
				} else {
					p.placeLink(cur, nb, dir)
				}
			}
		}
		frontier = next
	}
	if missed := len(cells) - len(connected); missed > 0 {
		chunkgrid.Warningf("placement reached %d of %d classified cells\n", len(connected), len(cells))
	}
	return &Result{Region: region, Start: start, Reached: len(connected)}, nil
}

type placer struct {
	opts   Options
	cells  topology.Map
	region *schematic.Region
}

// placeCell puts one voxel for the cell in the y = 0 plane.
func (p *placer) placeCell(c chunkgrid.Point2d) {
	state := p.opts.Pathway
	if p.cells[c] == topology.Anchor {
		state = p.opts.Marker
	}
	p.region.SetBlock(chunkgrid.Point3d{c[0], 0, c[1]}, state)
}

// placeLink lays a pathway between the centres of two adjacent chunks at y = 0 and a
// marker at y = 1 on the edge of the current chunk facing its neighbour.
func (p *placer) placeLink(cur, nb chunkgrid.Point2d, dir int) {
	size := p.opts.ChunkSize
	half := size / 2
	from := chunkgrid.Point3d{cur[0]*size + half, 0, cur[1]*size + half}
	to := chunkgrid.Point3d{nb[0]*size + half, 0, nb[1]*size + half}
	p.region.Fill(from, to, p.opts.Pathway)

	marker := chunkgrid.Point3d{cur[0]*size + half, 1, cur[1]*size + half}
	switch dir {
	case 0: // +x
		marker[0] = cur[0]*size + size - 1
	case 1: // -x
		marker[0] = cur[0] * size
	case 2: // +z
		marker[2] = cur[1]*size + size - 1
	case 3: // -z
		marker[2] = cur[1] * size
	}
	p.region.SetBlock(marker, p.opts.Marker)
}
