package virage

import "fmt"

// Layout sizes for the boot ROM/RAM overlay, scratch SRAM, and the three
// fuse banks.
const (
	BootROMSize = 8 * 1024
	BootRAMSize = 64 * 1024
	ScratchSize = 32 * 1024
	bankV0Size  = 64
	bankV1Size  = 64
	bankV2Size  = 256

	base  = 0x1FC00000
	limit = 0x1FD00000
)

// Aggregator owns boot ROM, boot RAM, scratch SRAM, and the three bank
// instances, and routes the 0x1FC00000-0x1FD00000 bus window across them.
//
// Within the window, 0x1FC00000 is ROM-or-RAM and 0x1FC20000 is whichever
// one the other isn't, toggled by SetMapping. Scratch SRAM sits at
// 0x1FC40000 and the bank registers start at 0x1FC60000.
type Aggregator struct {
	bootROM []byte
	bootRAM []byte
	scratch []byte

	V0 *Bank
	V1 *Bank
	V2 *Bank

	// romAtLow selects the overlay direction written via SetMapping.
	// true: ROM at 0x1FC00000, RAM at 0x1FC20000 ("map" asserted).
	// false: swapped.
	romAtLow bool
}

func New() *Aggregator {
	return &Aggregator{
		bootROM:  make([]byte, BootROMSize),
		bootRAM:  make([]byte, BootRAMSize),
		scratch:  make([]byte, ScratchSize),
		V0:       NewBank(0, bankV0Size),
		V1:       NewBank(1, bankV1Size),
		V2:       NewBank(2, bankV2Size),
		romAtLow: true,
	}
}

// LoadBootROM seeds the read-only mask ROM image from the CLI's -b flag.
func (a *Aggregator) LoadBootROM(img []byte) error {
	if len(img) == 0 {
		return fmt.Errorf("virage: empty boot rom image")
	}
	n := copy(a.bootROM, img)
	for i := n; i < len(a.bootROM); i++ {
		a.bootROM[i] = 0
	}
	return nil
}

// SetMapping is the overlay's only mutable control, wired from MI
// secure-mode writes. true routes ROM to 0x1FC00000/RAM to 0x1FC20000;
// false swaps them.
func (a *Aggregator) SetMapping(romAtLow bool) { a.romAtLow = romAtLow }

// BootRAM returns a snapshot of the boot RAM contents, independent of
// whether it is currently windowed at 0x1FC00000 or 0x1FC20000 — a
// kernel.bin dump is of the RAM itself, not of whichever physical window
// currently backs it.
func (a *Aggregator) BootRAM() []byte {
	out := make([]byte, len(a.bootRAM))
	copy(out, a.bootRAM)
	return out
}

const (
	romWindowOffset = 0x00000
	ramWindowOffset = 0x20000
	windowSize      = 0x20000

	scratchWindowOffset = 0x40000
	bankRegionOffset    = 0x60000
)

// Read returns the byte at physical address addr, which must already be
// known to fall in [0x1FC00000, 0x1FD00000).
func (a *Aggregator) Read(addr uint32) byte {
	off := addr - base
	switch {
	case a.inWindow(off, romWindowOffset) && a.romAtLow:
		return a.readAt(a.bootROM, off-romWindowOffset)
	case a.inWindow(off, romWindowOffset) && !a.romAtLow:
		return a.readAt(a.bootRAM, off-romWindowOffset)
	case a.inWindow(off, ramWindowOffset) && a.romAtLow:
		return a.readAt(a.bootRAM, off-ramWindowOffset)
	case a.inWindow(off, ramWindowOffset) && !a.romAtLow:
		return a.readAt(a.bootROM, off-ramWindowOffset)
	case a.inWindow(off, scratchWindowOffset):
		return a.readAt(a.scratch, off-scratchWindowOffset)
	case off >= bankRegionOffset:
		return a.readBankRegion(off - bankRegionOffset)
	default:
		return 0
	}
}

func (a *Aggregator) Write(addr uint32, v byte) {
	off := addr - base
	switch {
	case a.inWindow(off, romWindowOffset) && a.romAtLow:
		// boot ROM is read-only; drop.
	case a.inWindow(off, romWindowOffset) && !a.romAtLow:
		a.writeAt(a.bootRAM, off-romWindowOffset, v)
	case a.inWindow(off, ramWindowOffset) && a.romAtLow:
		a.writeAt(a.bootRAM, off-ramWindowOffset, v)
	case a.inWindow(off, ramWindowOffset) && !a.romAtLow:
		// boot ROM is read-only; drop.
	case a.inWindow(off, scratchWindowOffset):
		a.writeAt(a.scratch, off-scratchWindowOffset, v)
	case off >= bankRegionOffset:
		a.writeBankRegion(off-bankRegionOffset, v)
	}
}

func (a *Aggregator) inWindow(off uint32, start uint32) bool {
	return off >= start && off < start+windowSize
}

func (a *Aggregator) readAt(mem []byte, off uint32) byte {
	if int(off) >= len(mem) {
		return 0
	}
	return mem[off]
}

func (a *Aggregator) writeAt(mem []byte, off uint32, v byte) {
	if int(off) >= len(mem) {
		return
	}
	mem[off] = v
}

// Bank register region layout: each bank's slot holds Ctrl/NMS/CP (4 bytes
// each) followed by its 24-byte config region and its own SRAM shadow, so
// the slot size varies with each bank's SRAM size (V0/V1 are 64 bytes, V2
// is 256) rather than sharing one fixed stride.
const (
	regCtrl       = 0x00
	regNMS        = 0x04
	regCP         = 0x08
	regConfig     = 0x0C
	regSRAMOffset = 0x24

	bankV0SlotSize = regSRAMOffset + bankV0Size
	bankV1SlotSize = regSRAMOffset + bankV1Size
	bankV2SlotSize = regSRAMOffset + bankV2Size

	bankV0Offset = 0
	bankV1Offset = bankV0Offset + bankV0SlotSize
	bankV2Offset = bankV1Offset + bankV1SlotSize
)

func (a *Aggregator) bankAt(off uint32) (*Bank, uint32) {
	switch {
	case off < bankV1Offset:
		return a.V0, off - bankV0Offset
	case off < bankV2Offset:
		return a.V1, off - bankV1Offset
	default:
		return a.V2, off - bankV2Offset
	}
}

func (a *Aggregator) readBankRegion(off uint32) byte {
	b, rem := a.bankAt(off)
	switch {
	case rem >= regCtrl && rem < regCtrl+4:
		v := b.ReadCtrl(rem - regCtrl)
		b.OnCtrlRead()
		b.OnLastByteRead(rem - regCtrl)
		return v
	case rem >= regNMS && rem < regNMS+4:
		return b.ReadNMS(rem - regNMS)
	case rem >= regCP && rem < regCP+4:
		return b.ReadCP(rem - regCP)
	case rem >= regConfig && rem < regConfig+24:
		return b.ReadConfig(int(rem - regConfig))
	case rem >= regSRAMOffset:
		return b.ReadSRAM(int(rem - regSRAMOffset))
	default:
		return 0
	}
}

func (a *Aggregator) writeBankRegion(off uint32, v byte) {
	b, rem := a.bankAt(off)
	switch {
	case rem >= regCtrl && rem < regCtrl+4:
		b.WriteCtrl(rem-regCtrl, v)
	case rem >= regNMS && rem < regNMS+4:
		b.WriteNMS(rem-regNMS, v)
	case rem >= regCP && rem < regCP+4:
		b.WriteCP(rem-regCP, v)
	case rem >= regConfig && rem < regConfig+24:
		b.WriteConfig(int(rem-regConfig), v)
	case rem >= regSRAMOffset:
		b.WriteSRAM(int(rem-regSRAMOffset), v)
	}
}

// Contains reports whether addr falls in this aggregator's bus window.
func Contains(addr uint32) bool { return addr >= base && addr < limit }
