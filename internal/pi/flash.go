package pi

import (
	"errors"

	"iquecore/internal/bitfield"
)

const (
	flashCmdRead   = 0x00
	flashCmdReadID = 0x90

	flashOpTicks = 60
)

// FlashState models the flash command engine's FlashCtrl register and its
// countdown timer.
type FlashState struct {
	Ctrl uint32

	running bool
	ticks   int
	raiseOk bool

	Err error
}

func (f *FlashState) run() bool       { return f.Ctrl&(1<<0) != 0 }
func (f *FlashState) command() uint8  { return uint8((f.Ctrl >> 8) & 0xFF) }
func (f *FlashState) interrupt() bool { return f.Ctrl&(1<<1) != 0 }

// WriteFlashCtrl dispatches the armed command once the run bit is set by
// the last byte of the FlashCtrl write.
func (p *PI) WriteFlashCtrl(addr uint32, v byte) {
	p.Flash.Ctrl = bitfield.MergeByte(p.Flash.Ctrl, addr, v)
	if bitfield.IsLastByte(addr) && p.Flash.run() {
		p.dispatchFlashCommand()
	}
}

func (p *PI) dispatchFlashCommand() {
	p.Flash.Err = nil
	buf := (p.FlashAddr >> 9) & 0x3 // 512-byte staging slot within BUF, model-specific

	switch p.Flash.command() {
	case flashCmdRead:
		p.flashRead(buf)
	case flashCmdReadID:
		p.flashReadID(buf)
	default:
		p.Flash.Err = errUnknownFlashCommand
	}

	p.Flash.running = true
	p.Flash.ticks = flashOpTicks
	p.Flash.raiseOk = p.Flash.interrupt()
}

func (p *PI) flashRead(buf uint32) {
	addr := int(p.FlashAddr)
	dst := int(buf) * flashPageSize
	copyBytes(p.buf[:], dst, p.nand, addr, flashPageSize)

	spareOff := (addr / nandBlockSize) * spareBytesPerBlock
	spareDst := 0x400 + int(buf)*spareBytesPerBlock
	copyBytes(p.buf[:], spareDst, p.spare, spareOff, spareBytesPerBlock)
}

func (p *PI) flashReadID(buf uint32) {
	id := []byte{0xEC, 0x76, 0x00, 0x00}
	dst := int(buf) * flashPageSize
	copyBytes(p.buf[:], dst, id, 0, len(id))
}

// TickFlash advances the per-operation timer; at zero, clears run and
// sets FlashInterrupt if the command asked for one.
func (p *PI) TickFlash() {
	if !p.Flash.running {
		return
	}
	p.Flash.ticks--
	if p.Flash.ticks <= 0 {
		p.Flash.running = false
		p.Flash.Ctrl &^= 1 << 0
		if p.Flash.raiseOk {
			p.FlashInterrupt = true
		}
	}
}

var errUnknownFlashCommand = errors.New("pi: unknown flash command")
