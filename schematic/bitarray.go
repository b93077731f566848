package schematic

import "fmt"

// BitArray packs fixed-width unsigned fields into 64-bit words with no padding.  Field i
// starts at bit i*Bits; a field that straddles a word boundary keeps its low bits in
// the first word and the remainder in the low bits of the next word.
type BitArray struct {
	Bits  uint
	Len   int
	Words []uint64
}

// NewBitArray returns a zeroed array of n fields of the given width.
func NewBitArray(bits uint, n int) (*BitArray, error) {
	if bits > 64 {
		return nil, fmt.Errorf("bit width %d exceeds 64", bits)
	}
	if n < 0 {
		return nil, fmt.Errorf("negative field count %d", n)
	}
	return &BitArray{
		Bits:  bits,
		Len:   n,
		Words: make([]uint64, WordsFor(bits, n)),
	}, nil
}

// WordsFor returns the number of 64-bit words needed to hold n fields of the given width.
func WordsFor(bits uint, n int) int {
	total := uint64(bits) * uint64(n)
	return int((total + 63) / 64)
}

// Set stores the value in field i, truncated to the field width.
func (a *BitArray) Set(i int, value uint64) {
	if i < 0 || i >= a.Len {
		panic(fmt.Sprintf("bit array index %d out of range [0,%d)", i, a.Len))
	}
	WriteField(a.Words, a.Bits, i, value)
}

// Get returns the value of field i.
func (a *BitArray) Get(i int) uint64 {
	if i < 0 || i >= a.Len {
		panic(fmt.Sprintf("bit array index %d out of range [0,%d)", i, a.Len))
	}
	return ReadField(a.Words, a.Bits, i)
}

// Int64s returns the words reinterpreted as signed integers, the form used by NBT long
// arrays.
func (a *BitArray) Int64s() []int64 {
	out := make([]int64, len(a.Words))
	for i, w := range a.Words {
		out[i] = int64(w)
	}
	return out
}

func fieldMask(bits uint) uint64 {
	return uint64(1)<<bits - 1
}

// WriteField overwrites the bits-wide field at the given index with value.  Bits of
// value above the field width are dropped.
func WriteField(words []uint64, bits uint, index int, value uint64) {
	if bits == 0 {
		return
	}
	mask := fieldMask(bits)
	value &= mask
	offset := uint64(index) * uint64(bits)
	w, b := offset/64, uint(offset%64)
	words[w] = words[w]&^(mask<<b) | value<<b
	if b+bits > 64 {
		spill := 64 - b
		words[w+1] = words[w+1]&^(mask>>spill) | value>>spill
	}
}

// ReadField returns the bits-wide field at the given index.
func ReadField(words []uint64, bits uint, index int) uint64 {
	if bits == 0 {
		return 0
	}
	mask := fieldMask(bits)
	offset := uint64(index) * uint64(bits)
	w, b := offset/64, uint(offset%64)
	v := words[w] >> b
	if b+bits > 64 {
		v |= words[w+1] << (64 - b)
	}
	return v & mask
}
