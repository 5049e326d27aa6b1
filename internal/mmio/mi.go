// Package mmio implements the MMIO register blocks living in the bus's
// 0x04000000-0x04B00000 window: the interrupt controller (MI), the video
// interface (VI), the SI/AI/SP status skeletons, and the two Kinetis-style
// USB controllers.
package mmio

import "iquecore/internal/bitfield"

// SecTrapKind enumerates the secure-trap sources SetSecureTrap accepts.
type SecTrapKind uint8

const (
	SecTrapButton SecTrapKind = iota
	SecTrapEmulation
	SecTrapFatal
	SecTrapTimer
	SecTrapApp
)

var (
	fModeSetInit          = bitfield.NewField(0, 1)
	fModeClearInit        = bitfield.NewField(1, 1)
	fModeSetEbusTest      = bitfield.NewField(2, 1)
	fModeClearEbusTest    = bitfield.NewField(3, 1)
	fModeClearDPInterrupt = bitfield.NewField(11, 1)

	fSecSecureExit   = bitfield.NewField(0, 1)
	fSecMap          = bitfield.NewField(1, 1)
	fSecApp          = bitfield.NewField(2, 1)
	fSecTimer        = bitfield.NewField(3, 1)
	fSecFatal        = bitfield.NewField(4, 1)
	fSecEmulation    = bitfield.NewField(5, 1)
	fSecButton       = bitfield.NewField(6, 1)
	fSecEnableButton = bitfield.NewField(7, 1)
	fSecEnableIRAM   = bitfield.NewField(8, 1)
)

// MI is the MIPS interface interrupt controller.
type MI struct {
	Mode        uint32
	IntrMask    uint32
	IntrPending uint32
	Ctrl        uint32
	SecMode     uint32
	SecTimer    uint32
	SecVTimer   uint32
	AVCtrl      uint32
	EIntr       uint32
	EIntrMask   uint32

	// MappingChanged is set for one bus observation whenever a write flips
	// SecMode.map; the bus consults and clears it, routing the new value
	// to the virage aggregator's SetMapping.
	MappingChanged bool
	newMapping     bool

	sources    []intrSource
	extSources []intrSource
}

// InterruptSource is the "pending() -> bits" capability: MI holds a
// reference to each sibling device it samples, never the other way
// around.
type InterruptSource interface {
	RaiseInterrupt() bool
}

type intrSource struct {
	bit uint
	src InterruptSource
}

// Interrupt source bit positions within IntrPending/EIntr, following the
// conventional SP/SI/AI/VI/PI/DP ordering this family of chips uses.
const (
	IntrBitSP = 0
	IntrBitSI = 1
	IntrBitAI = 2
	IntrBitVI = 3
	IntrBitPI = 4
	IntrBitDP = 5
)

// AddSource wires src's RaiseInterrupt capability into IntrPending at bit
// `bit`, resampled every Tick.
func (m *MI) AddSource(bit uint, src InterruptSource) {
	m.sources = append(m.sources, intrSource{bit: bit, src: src})
}

// AddExtendedSource is AddSource's EIntr counterpart — PI's DMA-done/flash
// completion signals feed here.
func (m *MI) AddExtendedSource(bit uint, src InterruptSource) {
	m.extSources = append(m.extSources, intrSource{bit: bit, src: src})
}

// Tick resamples every wired source into IntrPending/EIntr, pulling a
// fresh snapshot from each sibling device.
func (m *MI) Tick() {
	for _, s := range m.sources {
		setBit(&m.IntrPending, s.bit, s.src.RaiseInterrupt())
	}
	for _, s := range m.extSources {
		setBit(&m.EIntr, s.bit, s.src.RaiseInterrupt())
	}
}

func setBit(word *uint32, bit uint, v bool) {
	if v {
		*word |= 1 << bit
	} else {
		*word &^= 1 << bit
	}
}

// EnableButton / EnableIRAM report SecMode's gating bits. SetSecureTrap
// consults EnableButton before honouring a Button trap; nothing in this
// module reads EnableIRAM.
func (m *MI) EnableButton() bool { return fSecEnableButton.GetBool(uint64(m.SecMode)) }
func (m *MI) EnableIRAM() bool   { return fSecEnableIRAM.GetBool(uint64(m.SecMode)) }

func NewMI() *MI { return &MI{} }

// WriteIntrMask implements the paired set/clear write for IntrMask: bit
// layout is {clear_0, set_0, clear_1, set_1, ...} across the word.
func (m *MI) WriteIntrMask(raw uint32) {
	r := uint64(raw)
	for n := uint(0); n < 16; n++ {
		clearBit := bitfield.NewField(2*n, 1)
		setBit := bitfield.NewField(2*n+1, 1)
		if setBit.GetBool(r) {
			m.IntrMask |= 1 << n
		}
		if clearBit.GetBool(r) {
			m.IntrMask &^= 1 << n
		}
	}
}

func (m *MI) WriteEIntrMask(raw uint32) {
	r := uint64(raw)
	for n := uint(0); n < 16; n++ {
		clearBit := bitfield.NewField(2*n, 1)
		setBit := bitfield.NewField(2*n+1, 1)
		if setBit.GetBool(r) {
			m.EIntrMask |= 1 << n
		}
		if clearBit.GetBool(r) {
			m.EIntrMask &^= 1 << n
		}
	}
}

// WriteMode implements Mode's self-clearing init/ebus-test/dp-interrupt
// bits: the writer bits are consumed immediately and never latched.
func (m *MI) WriteMode(raw uint32) {
	r := uint64(raw)
	if fModeSetInit.GetBool(r) {
		m.Mode |= 1 << 4 // init_mode (model-specific bit position)
	}
	if fModeClearInit.GetBool(r) {
		m.Mode &^= 1 << 4
	}
	if fModeSetEbusTest.GetBool(r) {
		m.Mode |= 1 << 5
	}
	if fModeClearEbusTest.GetBool(r) {
		m.Mode &^= 1 << 5
	}
	if fModeClearDPInterrupt.GetBool(r) {
		m.IntrPending &^= 1 << 5 // DP source bit (model-specific)
	}
}

// WriteSecMode implements SecMode's write path. Flipping `map` arms
// MappingChanged for the bus to observe on this same access.
func (m *MI) WriteSecMode(raw uint32) {
	r := uint64(raw)
	newMap := fSecMap.GetBool(r)
	oldMap := fSecMap.GetBool(uint64(m.SecMode))
	m.SecMode = raw
	if newMap != oldMap {
		m.MappingChanged = true
		m.newMapping = newMap
	}
}

// SecureExitPending reports SecMode.secure_exit without consuming it.
func (m *MI) SecureExitPending() bool { return fSecSecureExit.GetBool(uint64(m.SecMode)) }

// ConsumeSecureExit clears secure_exit once the driver has dispatched the
// Trap exception it signals, so one secure-trap event fires exactly once.
func (m *MI) ConsumeSecureExit() {
	m.SecMode = uint32(fSecSecureExit.SetBool(uint64(m.SecMode), false))
}

// ConsumeMapping reports and clears a pending mapping change.
func (m *MI) ConsumeMapping() (newMapping bool, changed bool) {
	if !m.MappingChanged {
		return false, false
	}
	m.MappingChanged = false
	return m.newMapping, true
}

// SetSecureTrap sets the trap-kind's SecMode bit and secure_exit.
func (m *MI) SetSecureTrap(kind SecTrapKind) {
	if kind == SecTrapButton && !m.EnableButton() {
		return
	}
	r := uint64(m.SecMode)
	r = fSecSecureExit.SetBool(r, true)
	switch kind {
	case SecTrapButton:
		r = fSecButton.SetBool(r, true)
	case SecTrapEmulation:
		r = fSecEmulation.SetBool(r, true)
	case SecTrapFatal:
		r = fSecFatal.SetBool(r, true)
	case SecTrapTimer:
		r = fSecTimer.SetBool(r, true)
	case SecTrapApp:
		r = fSecApp.SetBool(r, true)
	}
	m.SecMode = uint32(r)
}

// RaiseInterrupt reports whether any pending interrupt source survives
// the mask.
func (m *MI) RaiseInterrupt() bool { return m.IntrPending&m.IntrMask != 0 }

// RaiseExtendedInterrupt reports the equivalent for the extended source set.
func (m *MI) RaiseExtendedInterrupt() bool { return m.EIntr&m.EIntrMask != 0 }
