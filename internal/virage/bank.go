// Package virage implements the fused non-volatile memory controller: three
// banks (V0/V1/V2) holding per-unit secrets behind a store/recall micro-
// command state machine, plus the aggregator that routes the
// 0x1FC00000-0x1FD00000 window across boot ROM, boot RAM, scratch SRAM, and
// the three banks.
//
// The register layout style (byte-addressed struct with merge/retrieve-byte
// side effects on the last byte of a word) follows internal/bitfield's
// codec contract.
package virage

import "iquecore/internal/bitfield"

// Command values decoded from Ctrl.Cmd.
const (
	CmdNone   = 0
	CmdRecall = 2
	CmdStore  = 3
)

// Bank is one of the three virage banks. N is 64 for V0/V1, 256 for V2.
type Bank struct {
	id   int // 0, 1, or 2
	data []byte
	sram []byte

	ctrl uint32
	nms  uint32
	cp   uint32

	command   uint8
	recalling bool
	storing   bool
	pending   bool // "one observation" not-ready flag for recall

	// cfg is the 24-byte (crsto[2]+crm[4]) config region: a plain
	// byte-addressed memory with no side effects.
	cfg [24]byte
}

func NewBank(id, size int) *Bank {
	return &Bank{id: id, data: make([]byte, size), sram: make([]byte, size)}
}

// LoadFuses seeds the persistent fuse image from a host-provided file
// (the CLI's -0/-1/-2 flags).
func (b *Bank) LoadFuses(img []byte) {
	n := copy(b.data, img)
	for i := n; i < len(b.data); i++ {
		b.data[i] = 0
	}
}

func (b *Bank) Size() int { return len(b.data) }

// ReadSRAM reads a byte of the shadow SRAM surfaced to the bus.
func (b *Bank) ReadSRAM(off int) byte {
	if off < 0 || off >= len(b.sram) {
		return 0
	}
	return b.sram[off]
}

func (b *Bank) WriteSRAM(off int, v byte) {
	if off < 0 || off >= len(b.sram) {
		return
	}
	b.sram[off] = v
}

// Ctrl / NMS / CP register access, in terms of the merge-byte/retrieve-byte
// convention: writes are applied a byte at a time and the command decode
// side-effect fires on the last byte of the word.
func (b *Bank) ReadCtrl(addr uint32) byte { return bitfield.RetrieveByte(b.ctrl, addr) }
func (b *Bank) WriteCtrl(addr uint32, v byte) {
	b.ctrl = bitfield.MergeByte(b.ctrl, addr, v)
	if bitfield.IsLastByte(addr) {
		b.decodeCommand()
	}
}

func (b *Bank) ReadNMS(addr uint32) byte     { return bitfield.RetrieveByte(b.nms, addr) }
func (b *Bank) WriteNMS(addr uint32, v byte) { b.nms = bitfield.MergeByte(b.nms, addr, v) }
func (b *Bank) ReadCP(addr uint32) byte      { return bitfield.RetrieveByte(b.cp, addr) }
func (b *Bank) WriteCP(addr uint32, v byte)  { b.cp = bitfield.MergeByte(b.cp, addr, v) }

func (b *Bank) cmd() uint8 { return uint8(b.ctrl & 0x7) }

// ReadConfig / WriteConfig access the 24-byte crsto/crm region directly,
// with no side effects.
func (b *Bank) ReadConfig(off int) byte {
	if off < 0 || off >= len(b.cfg) {
		return 0
	}
	return b.cfg[off]
}

func (b *Bank) WriteConfig(off int, v byte) {
	if off < 0 || off >= len(b.cfg) {
		return
	}
	b.cfg[off] = v
}

// decodeCommand runs the micro-op implied by the last Ctrl write: recall
// copies data->sram (reporting not-ready for one observation, then ready);
// store copies sram->data (reports ready immediately); any other value is
// a no-op that reports ready/pass unconditionally.
func (b *Bank) decodeCommand() {
	b.command = b.cmd()
	switch b.command {
	case CmdRecall:
		copy(b.sram, b.data)
		b.recalling = true
		b.pending = true
		b.storing = false
	case CmdStore:
		copy(b.data, b.sram)
		b.storing = true
		b.recalling = false
		b.pending = false
	default:
		b.recalling = false
		b.storing = false
		b.pending = false
	}
}

// Ready reports the current command's completion state. A recall reports
// false on the first observation after being issued, then true from then on;
// a store (or any other command) reports true immediately.
func (b *Bank) Ready() bool {
	if b.recalling && b.pending {
		b.pending = false
		return false
	}
	return true
}

// Pass always reports success: this controller has no modelled failure
// mode (no checksum mismatch, no fuse-blown-twice detection).
func (b *Bank) Pass() bool { return true }

// transient reports whether the bank is mid recall/store, used by V2's
// cross-coupled command-clear behaviour.
func (b *Bank) transient() bool { return b.recalling || b.storing }

// OnCtrlRead implements V0/V1's "clear cmd on the ctrl read alone" rule.
func (b *Bank) OnCtrlRead() {
	if b.id != 2 {
		b.ctrl &^= 0x7
		b.recalling = false
		b.storing = false
	}
}

// OnLastByteRead implements V2's "clear cmd on the last byte of a read when
// in the recall/store transient state" rule, clearing the cmd field of all
// three command registers. NMS and CP do not mirror a command written to
// Ctrl; only Ctrl writes decode commands.
func (b *Bank) OnLastByteRead(addr uint32) {
	if b.id != 2 {
		return
	}
	if bitfield.IsLastByte(addr) && b.transient() {
		b.ctrl &^= 0x7
		b.nms &^= 0x7
		b.cp &^= 0x7
		b.recalling = false
		b.storing = false
	}
}
