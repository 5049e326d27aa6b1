package cpu

import (
	"testing"

	"iquecore/internal/bus"
	"iquecore/internal/cop0"
	"iquecore/internal/pi"
	"iquecore/internal/virage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	regAT = 1
	regT0 = 8
	regS0 = 16
	regS1 = 17
	regRA = 31
)

// newMachine wires a COP0/bus/Engine/Driver triple the way cmd/iquecore's
// setup code does, with an empty NAND image (the ATB decrypt path and the
// overlay toggle are exercised by internal/pi and internal/virage's own
// tests) and cold-reset already dispatched once so PC starts at the boot
// vector.
func newMachine(t *testing.T, bootWord0 uint32) (*Driver, *bus.Bus, *cop0.COP0) {
	t.Helper()
	c := cop0.New(32)
	p := pi.New(make([]byte, 1024), make([]byte, 16))
	v := virage.New()

	rom := make([]byte, virage.BootROMSize)
	rom[0] = byte(bootWord0 >> 24)
	rom[1] = byte(bootWord0 >> 16)
	rom[2] = byte(bootWord0 >> 8)
	rom[3] = byte(bootWord0)
	require.NoError(t, v.LoadBootROM(rom))

	b := bus.New(c, p, v)
	eng := &Engine{State: New(), COP0: c, Mem: b}
	d := NewDriver(eng, c, b, nil)
	d.RaiseColdReset()
	d.Step() // dispatches ColdReset, landing PC at the boot vector
	return d, b, c
}

// putWord writes a 32-bit instruction word into the boot ROM image backing
// physical 0x1FC00000, keyed by its offset from that base.
func putWord(t *testing.T, v *virage.Aggregator, offset uint32, word uint32) {
	t.Helper()
	img := make([]byte, virage.BootROMSize)
	// Re-derive the existing image so earlier words already placed survive.
	for i := range img {
		img[i] = v.Read(0x1FC00000 + uint32(i))
	}
	img[offset] = byte(word >> 24)
	img[offset+1] = byte(word >> 16)
	img[offset+2] = byte(word >> 8)
	img[offset+3] = byte(word)
	require.NoError(t, v.LoadBootROM(img))
}

// TestResetVectorFetch checks that LUI AT, 0xBFC0 at the reset vector
// loads AT with the zero-extended 64-bit address and advances PC by 4.
func TestResetVectorFetch(t *testing.T) {
	d, _, _ := newMachine(t, 0x3C01BFC0)

	d.Step()

	s := d.Engine.State
	assert.Equal(t, uint64(0x00000000BFC00000), s.GetGPR(regAT))
	assert.Equal(t, uint64(0xBFC00004), s.PC)
}

// TestDelaySlotJAL checks a JAL at the reset vector with an ADDIU in its
// delay slot. Both instructions take effect, JAL links RA to the
// instruction two words past the jump, and PC lands on the jump target
// only after the delay slot has executed.
func TestDelaySlotJAL(t *testing.T) {
	d, b, _ := newMachine(t, 0x0FF00010) // JAL 0xBFC00040
	putWord(t, b.Virage, 4, 0x24081234)  // ADDIU T0, ZERO, 0x1234

	d.Step() // executes JAL, queues the delay-slot jump
	s := d.Engine.State
	assert.Equal(t, uint64(0xBFC00004), s.PC, "PC should advance into the delay slot first")

	d.Step() // executes the delay slot, then drains the queued jump
	assert.Equal(t, uint64(0x1234), s.GetGPR(regT0))
	assert.Equal(t, uint64(0x00000000BFC00008), s.GetGPR(regRA))
	assert.Equal(t, uint64(0xBFC00040), s.PC)
}

// TestTLBWriteIndexedRoundTrip programs TLB entry 0 via TLBWI, then reads
// through it with a virtual access.
func TestTLBWriteIndexedRoundTrip(t *testing.T) {
	_, b, c := newMachine(t, 0x00000000) // NOP at the reset vector, unused here

	c.SetReg(0, 0, cop0.Index{Value: 0}.Pack())
	c.SetReg(10, 0, cop0.EntryHi{VPN2: 0x100}.Pack())
	c.SetReg(2, 0, cop0.EntryLo{V: true, D: true, G: true, PFN: 0x1000}.Pack())
	c.SetReg(3, 0, cop0.EntryLo{G: true}.Pack())
	c.SetReg(5, 0, cop0.PageMask{Mask: 0}.Pack())

	c.TLBWI()

	_, af := b.ReadU32(0x0000000000200000, nil)
	require.Nil(t, af)

	paddr, fault := c.Translate(0x0000000000200000, false)
	require.Equal(t, cop0.FaultNone, fault)
	assert.Equal(t, uint32(0x01000000), paddr)
}

// TestOverflowSuppressesWriteback checks that ADDI with S0 == 0x7FFFFFFF
// overflows, leaves S1 unchanged, and raises ArithmeticOverflow; dispatch
// then lands EPC on the ADDI's own PC and sets Status.EXL.
func TestOverflowSuppressesWriteback(t *testing.T) {
	d, _, c := newMachine(t, 0x22110001) // ADDI S1, S0, 1
	s := d.Engine.State
	s.SetGPR(regS0, 0x7FFFFFFF)
	s.SetGPR(regS1, 0xDEADBEEF)

	addiPC := s.PC
	d.Step()

	assert.Equal(t, uint64(0xDEADBEEF), s.GetGPR(regS1), "overflow must suppress the writeback")
	assert.Equal(t, addiPC, c.EPC())
	assert.True(t, c.Status().EXL)
}

// TestBranchLikelyNotTakenSuppressesDelaySlot checks the branch-likely
// rule: when the condition is false, the delay slot's instruction is
// skipped entirely rather than merely not retired.
func TestBranchLikelyNotTakenSuppressesDelaySlot(t *testing.T) {
	// BEQL ZERO, AT, 4 (AT is nonzero, so the branch is not taken).
	word := (uint32(0x14) << 26) | (0 << 21) | (regAT << 16) | 0x0004
	d, b, _ := newMachine(t, word)
	putWord(t, b.Virage, 4, 0x24081234) // ADDIU T0, ZERO, 0x1234 (delay slot, must be skipped)

	s := d.Engine.State
	s.SetGPR(regAT, 1)

	d.Step() // BEQL evaluates false, queues a suppressed delay slot
	d.Step() // delay slot instruction is fetched but its effects are dropped

	assert.Equal(t, uint64(0), s.GetGPR(regT0), "suppressed branch-likely delay slot must not execute")
	assert.Equal(t, uint64(0xBFC00008), s.PC)
}

func TestDecodeRType(t *testing.T) {
	// ADD T0, S0, S1 -> opcode 0, funct 0x20.
	word := uint32((16 << 21) | (17 << 16) | (8 << 11) | 0x20)
	in := Decode(word)
	assert.Equal(t, FormatR, in.Format)
	assert.Equal(t, uint8(16), in.Rs)
	assert.Equal(t, uint8(17), in.Rt)
	assert.Equal(t, uint8(8), in.Rd)
	assert.Equal(t, uint8(0x20), in.Funct)
}
