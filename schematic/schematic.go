/*
	Package schematic encodes block placements as a Litematica schematic: a gzip-compressed
	NBT document holding one or more regions, each with a block state palette and a
	bit-packed array of palette indices.
*/
package schematic

import (
	"fmt"
	"io"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
)

// Version is the schematic format version written in every document.
const Version = 4

// Schematic is a document of encoded regions with optional metadata.
type Schematic struct {
	Name        string
	Author      string
	Description string

	regions []*EncodedRegion
}

// New returns an empty schematic with the given name.
func New(name string) *Schematic {
	return &Schematic{Name: name}
}

// AddRegion adds an encoded region.  Region names must be unique.
func (s *Schematic) AddRegion(r *EncodedRegion) error {
	for _, existing := range s.regions {
		if existing.Name == r.Name {
			return fmt.Errorf("schematic %q already holds region %q", s.Name, r.Name)
		}
	}
	s.regions = append(s.regions, r)
	return nil
}

// Regions returns the encoded regions in the order they were added.
func (s *Schematic) Regions() []*EncodedRegion {
	return s.regions
}

type posTag struct {
	X int32 `nbt:"x"`
	Y int32 `nbt:"y"`
	Z int32 `nbt:"z"`
}

func newPosTag(p chunkgrid.Point3d) posTag {
	return posTag{X: p[0], Y: p[1], Z: p[2]}
}

type blockStateTag struct {
	Name string `nbt:"Name"`
}

type emptyTag struct{}

type regionTag struct {
	Position          posTag          `nbt:"Position"`
	Size              posTag          `nbt:"Size"`
	BlockStatePalette []blockStateTag `nbt:"BlockStatePalette"`
	BlockStates       []int64         `nbt:"BlockStates"`
	Entities          []emptyTag      `nbt:"Entities"`
	TileEntities      []emptyTag      `nbt:"TileEntities"`
	PendingBlockTicks []emptyTag      `nbt:"PendingBlockTicks"`
}

type metadataTag struct {
	Name        string `nbt:"Name,omitempty"`
	Author      string `nbt:"Author,omitempty"`
	Description string `nbt:"Description,omitempty"`
	RegionCount int32  `nbt:"RegionCount"`
}

type documentTag struct {
	Version  int32                `nbt:"Version"`
	Metadata metadataTag          `nbt:"Metadata"`
	Regions  map[string]regionTag `nbt:"Regions"`
}

func (e *EncodedRegion) tag() regionTag {
	names := e.Palette.Names()
	palette := make([]blockStateTag, len(names))
	for i, name := range names {
		palette[i] = blockStateTag{Name: name}
	}
	return regionTag{
		Position:          newPosTag(e.Position),
		Size:              newPosTag(e.Size),
		BlockStatePalette: palette,
		BlockStates:       e.States.Int64s(),
		Entities:          []emptyTag{},
		TileEntities:      []emptyTag{},
		PendingBlockTicks: []emptyTag{},
	}
}

func (s *Schematic) tag() documentTag {
	doc := documentTag{
		Version: Version,
		Metadata: metadataTag{
			Name:        s.Name,
			Author:      s.Author,
			Description: s.Description,
			RegionCount: int32(len(s.regions)),
		},
		Regions: make(map[string]regionTag, len(s.regions)),
	}
	for _, r := range s.regions {
		doc.Regions[r.Name] = r.tag()
	}
	return doc
}

// WriteNBT writes the uncompressed NBT document with an unnamed root compound.
func (s *Schematic) WriteNBT(w io.Writer) error {
	if err := nbt.NewEncoder(w).Encode(s.tag(), ""); err != nil {
		return fmt.Errorf("unable to encode schematic %q as NBT: %w", s.Name, err)
	}
	return nil
}

// WriteTo writes the gzip-compressed document and returns the number of compressed
// bytes written.  The gzip header carries no timestamp, so identical schematics produce
// identical bytes.
func (s *Schematic) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := gzip.NewWriter(cw)
	if err := s.WriteNBT(zw); err != nil {
		zw.Close()
		return cw.n, err
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("unable to gzip schematic %q: %w", s.Name, err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
