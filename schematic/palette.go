package schematic

import (
	"fmt"
	"math/bits"
	"strings"
)

// Air is the block state at palette index 0.
const Air = "minecraft:air"

// Palette is an insertion-ordered set of block state names.  Index 0 is always Air.
type Palette struct {
	names []string
	index map[string]uint64
}

// NewPalette returns a palette holding only Air.
func NewPalette() *Palette {
	return &Palette{
		names: []string{Air},
		index: map[string]uint64{Air: 0},
	}
}

// Index returns the index of the name, adding it if it is not yet in the palette.
func (p *Palette) Index(name string) uint64 {
	if i, found := p.index[name]; found {
		return i
	}
	i := uint64(len(p.names))
	p.names = append(p.names, name)
	p.index[name] = i
	return i
}

// Lookup returns the index of the name without modifying the palette.
func (p *Palette) Lookup(name string) (uint64, bool) {
	i, found := p.index[name]
	return i, found
}

// Name returns the block state at the given index.
func (p *Palette) Name(i uint64) string {
	return p.names[i]
}

// Len returns the number of entries including Air.
func (p *Palette) Len() int {
	return len(p.names)
}

// Names returns a copy of the entries in index order.
func (p *Palette) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// PackingMode selects how the field width is derived from the palette size.
type PackingMode uint8

const (
	// ExactPacking uses the smallest width that can hold every palette index, at least 1.
	ExactPacking PackingMode = iota

	// LegacyPacking reproduces the historical encoder, which clamps the width to 2 bits.
	// Palettes with more than 4 entries lose the high bits of their indices.
	LegacyPacking
)

func (m PackingMode) String() string {
	switch m {
	case ExactPacking:
		return "exact"
	case LegacyPacking:
		return "legacy"
	default:
		return fmt.Sprintf("PackingMode(%d)", uint8(m))
	}
}

// ParsePackingMode converts "exact" or "legacy" into a PackingMode.
func ParsePackingMode(s string) (PackingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return ExactPacking, nil
	case "legacy":
		return LegacyPacking, nil
	default:
		return ExactPacking, fmt.Errorf("unknown packing mode %q, expected \"exact\" or \"legacy\"", s)
	}
}

// UnmarshalText lets a PackingMode be decoded from configuration text.
func (m *PackingMode) UnmarshalText(text []byte) error {
	mode, err := ParsePackingMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m PackingMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// BitsFor returns the field width for a palette of n entries.
func BitsFor(n int, mode PackingMode) uint {
	var needed uint
	if n > 1 {
		needed = uint(bits.Len64(uint64(n - 1)))
	}
	if mode == LegacyPacking {
		if needed > 2 {
			return 2
		}
		return needed
	}
	if needed < 1 {
		return 1
	}
	return needed
}
