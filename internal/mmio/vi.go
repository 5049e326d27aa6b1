package mmio

// VI holds the full N64-style video interface register set.
type VI struct {
	Ctrl     uint32
	Origin   uint32
	Width    uint32
	Intr     uint32
	Current  uint32
	Burst    uint32
	VSync    uint32
	HSync    uint32
	Leap     uint32
	HStart   uint32
	VStart   uint32
	VBurst   uint32
	XScale   uint32
	YScale   uint32
	SpanAddr uint32
	SpanData uint32

	// halfLine is Current's low bits, advanced by Tick.
	halfLine uint32
	// quarterPixelAccum approximates the fractional "ticks / 13.6"
	// quarter-pixel counter.
	quarterPixelAccum uint32

	raiseInterrupt bool
}

func NewVI() *VI { return &VI{} }

// hSyncLineDuration extracts h_sync.line_duration, the low 12 bits of HSync
// in this register's layout.
func (v *VI) hSyncLineDuration() uint32 { return v.HSync & 0xFFF }

// Tick advances the scan counter by one step: approximate "quarter-pixels
// displayed" as floor(ticks / 13.6) using a fixed-point accumulator (136
// ticks per 10 quarter-pixels) to avoid floating point, matching the
// integer-only register model used throughout the bus.
func (v *VI) Tick() {
	if v.Current == v.Intr {
		v.raiseInterrupt = true
	}
	v.quarterPixelAccum += 10
	for v.quarterPixelAccum >= 136 {
		v.quarterPixelAccum -= 136
		if v.halfLine+1 >= v.hSyncLineDuration() {
			v.halfLine = 0
		} else {
			v.halfLine++
		}
		v.Current = v.halfLine & 0x3FF
	}
}

// RaiseInterrupt reports the pending interrupt flag, cleared by WriteCurrent.
func (v *VI) RaiseInterrupt() bool { return v.raiseInterrupt }

// WriteCurrent models the hardware-ack convention: any write to Current
// clears the pending interrupt, regardless of the value written.
func (v *VI) WriteCurrent(value uint32) {
	v.Current = value
	v.raiseInterrupt = false
}
