package schematic

import (
	"fmt"
	"sort"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
)

// Region is a named, sparse set of block placements.
type Region struct {
	Name   string
	blocks map[chunkgrid.Point3d]string
}

// NewRegion returns an empty region.
func NewRegion(name string) *Region {
	return &Region{
		Name:   name,
		blocks: make(map[chunkgrid.Point3d]string),
	}
}

// SetBlock places a block state at the position, replacing any previous one.
func (r *Region) SetBlock(pos chunkgrid.Point3d, state string) {
	r.blocks[pos] = state
}

// Fill places a block state at every position of the inclusive box spanned by the two
// corners, which may be given in any order.
func (r *Region) Fill(start, end chunkgrid.Point3d, state string) {
	min, max := start, end
	min.SetMinimum(end)
	max.SetMaximum(start)
	for z := min[2]; z <= max[2]; z++ {
		for y := min[1]; y <= max[1]; y++ {
			for x := min[0]; x <= max[0]; x++ {
				r.blocks[chunkgrid.Point3d{x, y, z}] = state
			}
		}
	}
}

// Block returns the block state at the position, if any.
func (r *Region) Block(pos chunkgrid.Point3d) (string, bool) {
	state, found := r.blocks[pos]
	return state, found
}

// NumBlocks returns the number of placed blocks.
func (r *Region) NumBlocks() int {
	return len(r.blocks)
}

// Extents returns the tight bounding box of the placed blocks.
func (r *Region) Extents() chunkgrid.Extents3d {
	var ext chunkgrid.Extents3d
	for pos := range r.blocks {
		ext.Extend(pos)
	}
	return ext
}

// EncodedRegion is a region reduced to its bounding box, palette and packed states.
type EncodedRegion struct {
	Name     string
	Position chunkgrid.Point3d
	Size     chunkgrid.Point3d
	Palette  *Palette
	States   *BitArray
}

// LinearIndex returns the field index of a position relative to the region origin.
// Fields are ordered by y, then z, then x.
func LinearIndex(rel, size chunkgrid.Point3d) int {
	return int(rel[1])*int(size[2])*int(size[0]) + int(rel[2])*int(size[0]) + int(rel[0])
}

// State returns the block state at a position relative to the region origin.
func (e *EncodedRegion) State(rel chunkgrid.Point3d) string {
	if e.States.Len == 0 {
		return Air
	}
	idx := e.States.Get(LinearIndex(rel, e.Size))
	if idx >= uint64(e.Palette.Len()) {
		return Air
	}
	return e.Palette.Name(idx)
}

type placed struct {
	linear int
	state  string
}

// Encode builds the palette and packs one index per voxel of the bounding box.  Voxels
// without a block are Air.  Palette entries after Air are numbered in the order first
// met when walking voxels by linear index, so the encoding is deterministic.
func (r *Region) Encode(mode PackingMode) (*EncodedRegion, error) {
	ext := r.Extents()
	size := ext.Size()
	volume := size.Prod()
	if volume > int64(^uint(0)>>1) {
		return nil, fmt.Errorf("region %q with size %s is too large to encode", r.Name, size)
	}

	blocks := make([]placed, 0, len(r.blocks))
	for pos, state := range r.blocks {
		blocks = append(blocks, placed{LinearIndex(pos.Sub(ext.MinPoint), size), state})
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].linear < blocks[j].linear })

	palette := NewPalette()
	indices := make([]uint64, len(blocks))
	for i, b := range blocks {
		indices[i] = palette.Index(b.state)
	}

	bits := BitsFor(palette.Len(), mode)
	if max := uint64(palette.Len() - 1); bits < 64 && max > fieldMask(bits) {
		chunkgrid.Warningf("region %q: %s packing stores %d palette entries in %d-bit fields, indices above %d are truncated\n",
			r.Name, mode, palette.Len(), bits, fieldMask(bits))
	}
	states, err := NewBitArray(bits, int(volume))
	if err != nil {
		return nil, err
	}
	for i, b := range blocks {
		states.Set(b.linear, indices[i])
	}

	var pos chunkgrid.Point3d
	if !ext.Empty() {
		pos = ext.MinPoint
	}
	return &EncodedRegion{
		Name:     r.Name,
		Position: pos,
		Size:     size,
		Palette:  palette,
		States:   states,
	}, nil
}
