package schematic

import (
	"bytes"
	"testing"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
)

func TestPalette(t *testing.T) {
	p := NewPalette()
	if p.Len() != 1 || p.Name(0) != Air {
		t.Fatalf("new palette should hold only air, got %v", p.Names())
	}
	if i := p.Index("minecraft:chest"); i != 1 {
		t.Errorf("expected index 1, got %d", i)
	}
	if i := p.Index("minecraft:concrete"); i != 2 {
		t.Errorf("expected index 2, got %d", i)
	}
	if i := p.Index("minecraft:chest"); i != 1 {
		t.Errorf("expected existing index 1, got %d", i)
	}
	if i := p.Index(Air); i != 0 {
		t.Errorf("expected air at 0, got %d", i)
	}
	if _, found := p.Lookup("minecraft:stone"); found {
		t.Errorf("lookup should not add entries")
	}
	if p.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", p.Len())
	}
}

func TestBitsFor(t *testing.T) {
	tests := []struct {
		n      int
		exact  uint
		legacy uint
	}{
		{1, 1, 0},
		{2, 1, 1},
		{3, 2, 2},
		{4, 2, 2},
		{5, 3, 2},
		{8, 3, 2},
		{9, 4, 2},
		{300, 9, 2},
	}
	for _, tc := range tests {
		if got := BitsFor(tc.n, ExactPacking); got != tc.exact {
			t.Errorf("exact BitsFor(%d) = %d, expected %d", tc.n, got, tc.exact)
		}
		if got := BitsFor(tc.n, LegacyPacking); got != tc.legacy {
			t.Errorf("legacy BitsFor(%d) = %d, expected %d", tc.n, got, tc.legacy)
		}
	}
}

func TestParsePackingMode(t *testing.T) {
	for s, want := range map[string]PackingMode{"": ExactPacking, "exact": ExactPacking, "Legacy": LegacyPacking} {
		got, err := ParsePackingMode(s)
		if err != nil || got != want {
			t.Errorf("ParsePackingMode(%q) = %s, %v; expected %s", s, got, err, want)
		}
	}
	if _, err := ParsePackingMode("clamped"); err == nil {
		t.Errorf("expected error for unknown mode")
	}
	var m PackingMode
	if err := m.UnmarshalText([]byte("legacy")); err != nil || m != LegacyPacking {
		t.Errorf("UnmarshalText gave %s, %v", m, err)
	}
}

func TestEncodeRegion(t *testing.T) {
	r := NewRegion("chests")
	r.Fill(chunkgrid.Point3d{2, 0, 5}, chunkgrid.Point3d{0, 0, 5}, "minecraft:concrete")
	r.SetBlock(chunkgrid.Point3d{1, 1, 6}, "minecraft:chest")
	if r.NumBlocks() != 4 {
		t.Fatalf("expected 4 blocks, got %d", r.NumBlocks())
	}
	enc, err := r.Encode(ExactPacking)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc.Position != (chunkgrid.Point3d{0, 0, 5}) {
		t.Errorf("expected position (0,0,5), got %s", enc.Position)
	}
	if enc.Size != (chunkgrid.Point3d{3, 2, 2}) {
		t.Errorf("expected size (3,2,2), got %s", enc.Size)
	}
	names := enc.Palette.Names()
	if len(names) != 3 || names[0] != Air || names[1] != "minecraft:concrete" || names[2] != "minecraft:chest" {
		t.Errorf("unexpected palette %v", names)
	}
	if enc.States.Bits != 2 || enc.States.Len != 12 || len(enc.States.Words) != 1 {
		t.Errorf("unexpected packing %d bits, %d fields, %d words", enc.States.Bits, enc.States.Len, len(enc.States.Words))
	}
	// Linear order is y, z, x.  Concrete fills fields 0-2, the chest is at y=1,z=1,x=1:
	// 1*2*3 + 1*3 + 1 = 10.
	expected := []uint64{1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 2, 0}
	for i, v := range expected {
		if got := enc.States.Get(i); got != v {
			t.Errorf("field %d: expected %d, got %d", i, v, got)
		}
	}
	if s := enc.State(chunkgrid.Point3d{1, 1, 1}); s != "minecraft:chest" {
		t.Errorf("expected chest, got %s", s)
	}
	if s := enc.State(chunkgrid.Point3d{0, 1, 0}); s != Air {
		t.Errorf("expected air, got %s", s)
	}
}

func TestEncodeUnusedAir(t *testing.T) {
	// Every voxel is populated, but air still owns index 0.
	r := NewRegion("solid")
	r.Fill(chunkgrid.Point3d{0, 0, 0}, chunkgrid.Point3d{1, 1, 1}, "minecraft:stone")
	enc, err := r.Encode(ExactPacking)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc.Palette.Name(0) != Air || enc.Palette.Len() != 2 {
		t.Errorf("expected [air stone], got %v", enc.Palette.Names())
	}
	for i := 0; i < enc.States.Len; i++ {
		if enc.States.Get(i) != 1 {
			t.Errorf("field %d should index stone", i)
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	enc, err := NewRegion("empty").Encode(ExactPacking)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc.Size != (chunkgrid.Point3d{}) || enc.Position != (chunkgrid.Point3d{}) {
		t.Errorf("expected zero size and position, got %s %s", enc.Size, enc.Position)
	}
	if len(enc.States.Words) != 0 || enc.Palette.Len() != 1 {
		t.Errorf("empty region should have no words and only air")
	}
}

func TestLegacyPackingTruncates(t *testing.T) {
	r := NewRegion("many")
	states := []string{"a", "b", "c", "d", "e"} // palette of 6 with air
	for i, s := range states {
		r.SetBlock(chunkgrid.Point3d{int32(i), 0, 0}, s)
	}
	exact, err := r.Encode(ExactPacking)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	legacy, err := r.Encode(LegacyPacking)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exact.States.Bits != 3 || legacy.States.Bits != 2 {
		t.Fatalf("expected widths 3 and 2, got %d and %d", exact.States.Bits, legacy.States.Bits)
	}
	for i, s := range states {
		if got := exact.State(chunkgrid.Point3d{int32(i), 0, 0}); got != s {
			t.Errorf("exact packing: voxel %d is %s, expected %s", i, got, s)
		}
	}
	// "e" has index 5 (0b101) which legacy packing stores as 0b01 -> "a".
	if got := legacy.State(chunkgrid.Point3d{4, 0, 0}); got != "a" {
		t.Errorf("legacy packing: expected truncated index to read back as a, got %s", got)
	}
}

type decodedRegion struct {
	Position struct {
		X int32 `nbt:"x"`
		Y int32 `nbt:"y"`
		Z int32 `nbt:"z"`
	} `nbt:"Position"`
	Size struct {
		X int32 `nbt:"x"`
		Y int32 `nbt:"y"`
		Z int32 `nbt:"z"`
	} `nbt:"Size"`
	BlockStatePalette []struct {
		Name string `nbt:"Name"`
	} `nbt:"BlockStatePalette"`
	BlockStates []int64 `nbt:"BlockStates"`
}

type decodedDocument struct {
	Version  int32 `nbt:"Version"`
	Metadata struct {
		Name        string `nbt:"Name"`
		Author      string `nbt:"Author"`
		RegionCount int32  `nbt:"RegionCount"`
	} `nbt:"Metadata"`
	Regions map[string]decodedRegion `nbt:"Regions"`
}

func TestWriteSchematic(t *testing.T) {
	r := NewRegion("chests")
	r.Fill(chunkgrid.Point3d{-3, 0, 8}, chunkgrid.Point3d{5, 0, 8}, "minecraft:concrete")
	r.SetBlock(chunkgrid.Point3d{5, 1, 8}, "minecraft:chest")
	enc, err := r.Encode(ExactPacking)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := New("ChunkGrid")
	s.Author = "janelia"
	if err := s.AddRegion(enc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddRegion(enc); err == nil {
		t.Errorf("expected error adding a duplicate region name")
	}

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}
	first := append([]byte(nil), buf.Bytes()...)

	var again bytes.Buffer
	if _, err := s.WriteTo(&again); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first, again.Bytes()) {
		t.Errorf("schematic bytes differ between writes")
	}

	zr, err := gzip.NewReader(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	var doc decodedDocument
	if _, err := nbt.NewDecoder(zr).Decode(&doc); err != nil {
		t.Fatalf("unable to decode NBT: %v", err)
	}
	if doc.Version != Version || doc.Metadata.Name != "ChunkGrid" || doc.Metadata.Author != "janelia" || doc.Metadata.RegionCount != 1 {
		t.Errorf("unexpected document header %+v", doc)
	}
	region, found := doc.Regions["chests"]
	if !found {
		t.Fatalf("region missing from document: %v", doc.Regions)
	}
	if region.Position.X != -3 || region.Position.Y != 0 || region.Position.Z != 8 {
		t.Errorf("unexpected position %+v", region.Position)
	}
	if region.Size.X != 9 || region.Size.Y != 2 || region.Size.Z != 1 {
		t.Errorf("unexpected size %+v", region.Size)
	}
	if len(region.BlockStatePalette) != 3 || region.BlockStatePalette[0].Name != Air {
		t.Errorf("unexpected palette %+v", region.BlockStatePalette)
	}
	if len(region.BlockStates) != len(enc.States.Words) {
		t.Fatalf("expected %d words, got %d", len(enc.States.Words), len(region.BlockStates))
	}
	for i, w := range enc.States.Words {
		if uint64(region.BlockStates[i]) != w {
			t.Errorf("word %d: expected %#x, got %#x", i, w, uint64(region.BlockStates[i]))
		}
	}
}
