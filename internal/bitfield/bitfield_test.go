package bitfield

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldGetSet(t *testing.T) {
	f := NewField(4, 8) // bits [11:4]
	var raw uint64
	raw = f.Set(raw, 0xAB)
	assert.Equal(t, uint64(0xAB), f.Get(raw))
	assert.Equal(t, uint64(0xAB0), raw)
}

func TestFieldBool(t *testing.T) {
	f := NewField(3, 1)
	raw := f.SetBool(0, true)
	assert.True(t, f.GetBool(raw))
	raw = f.SetBool(raw, false)
	assert.False(t, f.GetBool(raw))
}

// TestByteRoundTrip checks the merge-byte/retrieve-byte round-trip
// property: writing the four bytes of a 32-bit MMIO word in any
// interleaving yields the same final value as a single aligned write.
func TestByteRoundTrip(t *testing.T) {
	want := uint32(0xDEADBEEF)
	orders := [][4]uint32{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
	}
	for _, order := range orders {
		var word uint32
		for _, i := range order {
			b := RetrieveByte(want, i)
			word = MergeByte(word, i, b)
		}
		require.Equal(t, want, word)
	}
}

func TestIsLastByte(t *testing.T) {
	assert.False(t, IsLastByte(0))
	assert.False(t, IsLastByte(1))
	assert.False(t, IsLastByte(2))
	assert.True(t, IsLastByte(3))
	assert.True(t, IsLastByte(7))
}

func TestSignExtend(t *testing.T) {
	assert.Equal(t, uint16(0xFFF3), SignExtend(uint16(0b10011), 5))
	assert.Equal(t, uint16(0b01101), SignExtend(uint16(0b01101), 5))
	assert.Equal(t, uint64(0xFFFFFFFF80000000), SignExtend32To64(0x80000000))
}

func TestOverflow(t *testing.T) {
	assert.True(t, AddOverflowS32(0x7FFFFFFF, 1, int32(-0x80000000)))
	assert.False(t, AddOverflowS32(1, 1, 2))
}
