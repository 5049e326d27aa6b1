package bitfield

// AddOverflowS32 reports whether a+b overflows a signed 32-bit addition,
// given the already-computed sum.
func AddOverflowS32(a, b, sum int32) bool {
	return (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum > 0)
}

// SubOverflowS32 reports whether a-b overflows a signed 32-bit subtraction.
func SubOverflowS32(a, b, diff int32) bool {
	return (a < 0 && b > 0 && diff > 0) || (a > 0 && b < 0 && diff < 0)
}

// AddOverflowS64 is the 64-bit (DADD/DADDI) analogue of AddOverflowS32.
func AddOverflowS64(a, b, sum int64) bool {
	return (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum > 0)
}

// SubOverflowS64 is the 64-bit analogue of SubOverflowS32.
func SubOverflowS64(a, b, diff int64) bool {
	return (a < 0 && b > 0 && diff > 0) || (a > 0 && b < 0 && diff < 0)
}
