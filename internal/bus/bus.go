// Package bus implements the physical address decode table and typed
// memory access that ties the CPU to RAM and every MMIO device, with
// virtual addresses first passing through cop0's TLB/watch logic.
package bus

import (
	"fmt"

	"iquecore/internal/cop0"
	"iquecore/internal/mmio"
	"iquecore/internal/pi"
	"iquecore/internal/virage"
)

// Bus owns RAM and every MMIO device and decodes physical addresses into
// the owning component via a first-match range table.
type Bus struct {
	RAM []byte

	SP  *mmio.SP
	MI  *mmio.MI
	VI  *mmio.VI
	AI  *mmio.AI
	PI  *pi.PI
	SI  *mmio.SI
	USB [2]*mmio.USB

	Virage *virage.Aggregator

	COP0 *cop0.COP0
}

const ramSize = 8 * 1024 * 1024

func New(c *cop0.COP0, p *pi.PI, v *virage.Aggregator) *Bus {
	return &Bus{
		RAM:    make([]byte, ramSize),
		SP:     &mmio.SP{},
		MI:     mmio.NewMI(),
		VI:     mmio.NewVI(),
		AI:     &mmio.AI{},
		PI:     p,
		SI:     &mmio.SI{},
		USB:    [2]*mmio.USB{mmio.NewUSB(), mmio.NewUSB()},
		Virage: v,
		COP0:   c,
	}
}

// region identifies a physical address range owner.
type region int

const (
	regionUnmapped region = iota
	regionRAM
	regionSP
	regionMI
	regionVI
	regionAI
	regionPI
	regionRI
	regionSI
	regionUSB0
	regionUSB1
	regionVirage
)

func decode(paddr uint32) region {
	switch {
	case paddr < 0x03F00000:
		return regionRAM
	case paddr >= 0x04000000 && paddr < 0x04100000:
		return regionSP
	case paddr >= 0x04300000 && paddr < 0x04400000:
		return regionMI
	case paddr >= 0x04400000 && paddr < 0x04500000:
		return regionVI
	case paddr >= 0x04500000 && paddr < 0x04600000:
		return regionAI
	case paddr >= 0x04600000 && paddr < 0x04700000:
		return regionPI
	case paddr >= 0x04700000 && paddr < 0x04800000:
		return regionRI
	case paddr >= 0x04800000 && paddr < 0x04900000:
		return regionSI
	case paddr >= 0x04900000 && paddr < 0x04A00000:
		return regionUSB0
	case paddr >= 0x04A00000 && paddr < 0x04B00000:
		return regionUSB1
	case virage.Contains(paddr):
		return regionVirage
	default:
		return regionUnmapped
	}
}

// Logger receives a message whenever a decode gap (an unmapped physical
// address) is hit; the CLI wires this to zap at warn level. Nil is a valid
// no-op.
type Logger interface {
	Warnf(format string, args ...any)
}

var _ Logger = noopLogger{}

type noopLogger struct{}

func (noopLogger) Warnf(string, ...any) {}

// ReadByte / WriteByte implement the physical decode for a single byte;
// everything else (typed, multi-byte, virtual) is built on top of these in
// access.go.
func (b *Bus) ReadByte(paddr uint32, log Logger) byte {
	if log == nil {
		log = noopLogger{}
	}
	switch decode(paddr) {
	case regionRAM:
		if int(paddr) < len(b.RAM) {
			return b.RAM[paddr]
		}
		return 0
	case regionSP:
		return byte(b.SP.ReadStatus() >> ((3 - (paddr & 3)) * 8))
	case regionMI:
		return b.readMI(paddr)
	case regionVI:
		return b.readVI(paddr)
	case regionAI:
		return b.readAI(paddr)
	case regionPI:
		return b.readPI(paddr)
	case regionRI:
		return 0
	case regionSI:
		return byte(b.SI.Status >> ((3 - (paddr & 3)) * 8))
	case regionUSB0:
		return b.readUSB(0, paddr)
	case regionUSB1:
		return b.readUSB(1, paddr)
	case regionVirage:
		return b.Virage.Read(paddr)
	default:
		log.Warnf("bus: read from unmapped physical address %#08x", paddr)
		return 0
	}
}

func (b *Bus) WriteByte(paddr uint32, v byte, log Logger) {
	if log == nil {
		log = noopLogger{}
	}
	switch decode(paddr) {
	case regionRAM:
		if int(paddr) < len(b.RAM) {
			b.RAM[paddr] = v
		}
	case regionSP:
		b.SP.WriteStatus(uint32(v))
	case regionMI:
		b.writeMI(paddr, v)
	case regionVI:
		b.writeVI(paddr, v)
	case regionAI:
		b.writeAI(paddr, v)
	case regionPI:
		b.writePI(paddr, v)
	case regionRI:
		// cart domain not yet modelled; writes dropped.
	case regionSI:
		b.SI.WriteStatus(uint32(v))
	case regionUSB0:
		b.writeUSB(0, paddr, v)
	case regionUSB1:
		b.writeUSB(1, paddr, v)
	case regionVirage:
		b.Virage.Write(paddr, v)
	default:
		log.Warnf("bus: write to unmapped physical address %#08x (dropped)", paddr)
	}
}

// ErrMisaligned is a sentinel error for misaligned accesses. The typed
// Read/Write helpers do not return it; they report misalignment as an
// AccessFault with Misaligned set.
var ErrMisaligned = fmt.Errorf("bus: misaligned access")
