package cpu

import "iquecore/internal/bitfield"

// addOverflows32/addOverflows64 and subOverflows32/subOverflows64 wrap
// bitfield's overflow primitives for the four trapping arithmetic
// instructions (ADD/ADDI share the 32-bit check, DADD/DADDI the 64-bit
// one), narrowed to the two widths the ISA actually traps on.

func addOverflows32(a, b uint32) (sum uint32, overflow bool) {
	sum = a + b
	return sum, bitfield.AddOverflowS32(int32(a), int32(b), int32(sum))
}

func subOverflows32(a, b uint32) (diff uint32, overflow bool) {
	diff = a - b
	return diff, bitfield.SubOverflowS32(int32(a), int32(b), int32(diff))
}

func addOverflows64(a, b uint64) (sum uint64, overflow bool) {
	sum = a + b
	return sum, bitfield.AddOverflowS64(int64(a), int64(b), int64(sum))
}

func subOverflows64(a, b uint64) (diff uint64, overflow bool) {
	diff = a - b
	return diff, bitfield.SubOverflowS64(int64(a), int64(b), int64(diff))
}
