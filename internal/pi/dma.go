package pi

import "iquecore/internal/bitfield"

// TransferKind selects which of the four DMA descriptor pairs armed the
// transfer.
type TransferKind uint8

const (
	TransferNone TransferKind = iota
	TransferRead
	TransferWrite
	TransferBufRead
	TransferBufWrite
)

const bufTransferCap = 0x400

// DMAState holds the four descriptor-register pairs and the arm/busy flags.
type DMAState struct {
	DRAMAddr uint32
	CartAddr uint32

	ReadLen  uint32
	WriteLen uint32

	BufferReadLen  uint32
	BufferWriteLen uint32

	Busy bool
	kind TransferKind
}

func (d *DMAState) WriteReadLen(addr uint32, v byte) {
	d.ReadLen = bitfield.MergeByte(d.ReadLen, addr, v)
	if bitfield.IsLastByte(addr) {
		d.arm(TransferRead)
	}
}

func (d *DMAState) WriteWriteLen(addr uint32, v byte) {
	d.WriteLen = bitfield.MergeByte(d.WriteLen, addr, v)
	if bitfield.IsLastByte(addr) {
		d.arm(TransferWrite)
	}
}

func (d *DMAState) WriteBufferReadLen(addr uint32, v byte) {
	d.BufferReadLen = bitfield.MergeByte(d.BufferReadLen, addr, v)
	if bitfield.IsLastByte(addr) {
		d.arm(TransferBufRead)
	}
}

func (d *DMAState) WriteBufferWriteLen(addr uint32, v byte) {
	d.BufferWriteLen = bitfield.MergeByte(d.BufferWriteLen, addr, v)
	if bitfield.IsLastByte(addr) {
		d.arm(TransferBufWrite)
	}
}

func (d *DMAState) arm(kind TransferKind) {
	d.kind = kind
	d.Busy = true
}

// lengthBytes decodes the "(len & 0x00FFFFFF) + 1" length encoding, capped
// at bufTransferCap for the two buffer transfer kinds.
func (d *DMAState) lengthBytes() uint32 {
	var raw uint32
	switch d.kind {
	case TransferRead:
		raw = d.ReadLen
	case TransferWrite:
		raw = d.WriteLen
	case TransferBufRead:
		raw = d.BufferReadLen
	case TransferBufWrite:
		raw = d.BufferWriteLen
	default:
		return 0
	}
	n := (raw & 0x00FFFFFF) + 1
	if (d.kind == TransferBufRead || d.kind == TransferBufWrite) && n > bufTransferCap {
		n = bufTransferCap
	}
	return n
}

// clear resets all four length registers and the busy/kind state once a
// transfer completes.
func (d *DMAState) clear() {
	d.ReadLen = 0
	d.WriteLen = 0
	d.BufferReadLen = 0
	d.BufferWriteLen = 0
	d.Busy = false
	d.kind = TransferNone
}

// StepDMA runs one DMA step against ram: if a transfer is armed,
// perform it and clear the descriptor state, returning true if a transfer
// completed this step (so the caller can assert dma_done_interrupt).
func (p *PI) StepDMA(ram []byte) bool {
	if !p.DMA.Busy {
		return false
	}

	n := p.DMA.lengthBytes()
	switch p.DMA.kind {
	case TransferRead:
		copyBytes(ram, int(p.DMA.DRAMAddr), p.nand, int(p.DMA.CartAddr), int(n))
	case TransferWrite:
		copyBytes(p.nand, int(p.DMA.CartAddr), ram, int(p.DMA.DRAMAddr), int(n))
	case TransferBufRead:
		copyBytes(ram, int(p.DMA.DRAMAddr), p.buf[:], int(p.DMA.CartAddr)%bufSize, int(n))
	case TransferBufWrite:
		copyBytes(p.buf[:], int(p.DMA.CartAddr)%bufSize, ram, int(p.DMA.DRAMAddr), int(n))
	}

	p.DMA.clear()
	p.DMADoneInterrupt = true
	return true
}

func copyBytes(dst []byte, dstOff int, src []byte, srcOff int, n int) {
	if dstOff < 0 || srcOff < 0 || n <= 0 {
		return
	}
	if dstOff+n > len(dst) {
		n = len(dst) - dstOff
	}
	if srcOff+n > len(src) {
		n = len(src) - srcOff
	}
	if n <= 0 {
		return
	}
	copy(dst[dstOff:dstOff+n], src[srcOff:srcOff+n])
}
