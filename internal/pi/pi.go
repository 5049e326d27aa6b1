// Package pi implements the peripheral interface: the NAND-backed flash
// controller, its AES-CBC decrypt engine and Address Translation Buffer,
// and the four DMA channels that move bytes between RAM and the PI's
// staging buffer / cart domain.
package pi

import "iquecore/internal/bitfield"

const (
	bufSize            = 1280
	atbSize            = 192
	spareBytesPerBlock = 16
	nandBlockSize      = 0x4000 // 16 KiB
	flashPageSize      = 512
)

// PI is the peripheral interface controller.
type PI struct {
	nand  []byte
	spare []byte

	buf [bufSize]byte
	atb [atbSize]ATBEntry

	DMA   DMAState
	Flash FlashState
	AES   AESState

	AccessEnable uint32
	GPIO         uint32
	IDETiming    uint32
	FlashAddr    uint32
	ATBU         [4]uint32

	IDECommand [4]uint32

	DomainTiming0 uint32
	DomainTiming1 uint32

	Status uint32

	// DMADoneInterrupt / FlashInterrupt feed MI.EIntr, resampled every tick.
	DMADoneInterrupt bool
	FlashInterrupt   bool
}

// New creates a PI with NAND/spare images sized to match the supplied NAND
// image: 64 MiB unless it is >= 96 MiB, in which case 128 MiB; spare is
// nand_size / 1024 bytes.
func New(nandImage, spareImage []byte) *PI {
	nandSize := 64 * 1024 * 1024
	if len(nandImage) >= 96*1024*1024 {
		nandSize = 128 * 1024 * 1024
	}
	p := &PI{
		nand:  make([]byte, nandSize),
		spare: make([]byte, nandSize/1024),
	}
	copy(p.nand, nandImage)
	copy(p.spare, spareImage)
	p.AES.state = &p.buf
	return p
}

// BUF byte access (merge/retrieve, no register side effects of its own;
// the 1280-byte staging RAM is plain memory other than the regions the
// flash/AES engines read and write as a side effect of their own commands).
func (p *PI) ReadBUF(off int) byte {
	if off < 0 || off >= bufSize {
		return 0
	}
	return p.buf[off]
}

func (p *PI) WriteBUF(off int, v byte) {
	if off < 0 || off >= bufSize {
		return
	}
	p.buf[off] = v
}

// WriteFlashAddr merges a byte into FlashAddr via the standard last-byte
// convention; FlashAddr has no write side effect of its own.
func (p *PI) WriteFlashAddr(addr uint32, v byte) {
	p.FlashAddr = bitfield.MergeByte(p.FlashAddr, addr, v)
}

// RaiseInterrupt reports whether either of PI's own sources is pending,
// satisfying mmio.InterruptSource so MI can sample it into EIntr each tick.
func (p *PI) RaiseInterrupt() bool { return p.DMADoneInterrupt || p.FlashInterrupt }
