package bus

import (
	"iquecore/internal/cop0"
)

// AccessFault reports why a typed virtual access could not complete. At
// most one of Misaligned/Watch/Fault is meaningful; TLBFault is FaultNone
// when Misaligned or Watch is set.
type AccessFault struct {
	Misaligned bool
	Watch      bool
	TLBFault   cop0.Fault
	BadAddr    uint64
	Write      bool
}

// ToRequest turns an AccessFault into the cop0.Request its owning exception
// priority dispatcher expects: the failing byte raises the corresponding
// exception and aborts the access.
func (f *AccessFault) ToRequest() cop0.Request {
	switch {
	case f.Misaligned && f.Write:
		return cop0.Request{Kind: cop0.AddressErrorWrite, BadAddr: f.BadAddr}
	case f.Misaligned:
		return cop0.Request{Kind: cop0.AddressErrorRead, BadAddr: f.BadAddr}
	case f.Watch:
		return cop0.Request{Kind: cop0.Watch, BadAddr: f.BadAddr}
	}
	switch f.TLBFault {
	case cop0.FaultTLBMissWrite:
		return cop0.Request{Kind: cop0.TLBMissWrite, BadAddr: f.BadAddr}
	case cop0.FaultTLBMissRead:
		return cop0.Request{Kind: cop0.TLBMissRead, BadAddr: f.BadAddr}
	case cop0.FaultTLBInvalid:
		if f.Write {
			return cop0.Request{Kind: cop0.TLBMissWrite, BadAddr: f.BadAddr}
		}
		return cop0.Request{Kind: cop0.TLBMissRead, BadAddr: f.BadAddr}
	case cop0.FaultTLBModification:
		return cop0.Request{Kind: cop0.TLBModification, BadAddr: f.BadAddr}
	case cop0.FaultTLBShutdown:
		return cop0.Request{Kind: cop0.BusErrorLoadStore, BadAddr: f.BadAddr}
	}
	if f.Write {
		return cop0.Request{Kind: cop0.BusErrorLoadStore, BadAddr: f.BadAddr}
	}
	return cop0.Request{Kind: cop0.BusErrorLoadStore, BadAddr: f.BadAddr}
}

// translateByte runs one byte of a multi-byte access through COP0's TLB and
// watch logic; each byte of a multi-byte access is translated and checked
// independently.
func (b *Bus) translateByte(vaddr uint64, write bool) (paddr uint32, af *AccessFault) {
	paddr, fault := b.COP0.Translate(vaddr, write)
	if fault != cop0.FaultNone {
		return 0, &AccessFault{TLBFault: fault, BadAddr: vaddr, Write: write}
	}
	if b.COP0.CheckWatch(paddr, write) {
		return 0, &AccessFault{Watch: true, BadAddr: vaddr, Write: write}
	}
	return paddr, nil
}

func (b *Bus) readVirtualBytes(vaddr uint64, n int, log Logger) ([]byte, *AccessFault) {
	if vaddr%uint64(n) != 0 {
		return nil, &AccessFault{Misaligned: true, BadAddr: vaddr}
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		paddr, af := b.translateByte(vaddr+uint64(i), false)
		if af != nil {
			return nil, af
		}
		out[i] = b.ReadByte(paddr, log)
	}
	return out, nil
}

func (b *Bus) writeVirtualBytes(vaddr uint64, data []byte, log Logger) *AccessFault {
	n := len(data)
	if vaddr%uint64(n) != 0 {
		return &AccessFault{Misaligned: true, Write: true, BadAddr: vaddr}
	}
	for i := 0; i < n; i++ {
		paddr, af := b.translateByte(vaddr+uint64(i), true)
		if af != nil {
			return af
		}
		b.WriteByte(paddr, data[i], log)
	}
	return nil
}

// ReadU8/16/32/64 and WriteU8/16/32/64 implement typed access:
// alignment-checked, big-endian multi-byte composition, each constituent
// byte independently translated and watch-checked.

func (b *Bus) ReadU8(vaddr uint64, log Logger) (uint8, *AccessFault) {
	data, af := b.readVirtualBytes(vaddr, 1, log)
	if af != nil {
		return 0, af
	}
	return data[0], nil
}

func (b *Bus) WriteU8(vaddr uint64, v uint8, log Logger) *AccessFault {
	return b.writeVirtualBytes(vaddr, []byte{v}, log)
}

func (b *Bus) ReadU16(vaddr uint64, log Logger) (uint16, *AccessFault) {
	data, af := b.readVirtualBytes(vaddr, 2, log)
	if af != nil {
		return 0, af
	}
	return uint16(data[0])<<8 | uint16(data[1]), nil
}

func (b *Bus) WriteU16(vaddr uint64, v uint16, log Logger) *AccessFault {
	return b.writeVirtualBytes(vaddr, []byte{byte(v >> 8), byte(v)}, log)
}

func (b *Bus) ReadU32(vaddr uint64, log Logger) (uint32, *AccessFault) {
	data, af := b.readVirtualBytes(vaddr, 4, log)
	if af != nil {
		return 0, af
	}
	return uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3]), nil
}

func (b *Bus) WriteU32(vaddr uint64, v uint32, log Logger) *AccessFault {
	return b.writeVirtualBytes(vaddr, []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}, log)
}

func (b *Bus) ReadU64(vaddr uint64, log Logger) (uint64, *AccessFault) {
	data, af := b.readVirtualBytes(vaddr, 8, log)
	if af != nil {
		return 0, af
	}
	var v uint64
	for _, bt := range data {
		v = v<<8 | uint64(bt)
	}
	return v, nil
}

func (b *Bus) WriteU64(vaddr uint64, v uint64, log Logger) *AccessFault {
	data := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		data[i] = byte(v)
		v >>= 8
	}
	return b.writeVirtualBytes(vaddr, data, log)
}
