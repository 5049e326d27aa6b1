package cop0

import "math/bits"

// Fault enumerates the outcomes of Translate that the caller (internal/bus)
// must turn into an exception via internal/cpu's dispatcher.
type Fault uint8

const (
	FaultNone Fault = iota
	FaultTLBMissRead
	FaultTLBMissWrite
	FaultTLBInvalid // entry matched but its selected EntryLo.V is clear
	FaultTLBModification
	FaultTLBShutdown
	FaultWatch
)

// kseg0/1: unmapped, direct 29-bit physical addressing.
const (
	ksegBase  = 0x80000000
	ksegLimit = 0xC0000000
	ksegMask  = 0x1FFFFFFF
)

// Translate implements the virtual->physical path: kseg0/1 direct
// mapping, else a TLB walk keyed by (addr>>24)&0xFF as the ASID and the
// low 24 bits of addr as the translated address (this chip folds ASID into
// the top byte of the virtual address rather than carrying it in a
// separate context register at translation time).
func (c *COP0) Translate(addr uint64, write bool) (paddr uint32, fault Fault) {
	if addr >= ksegBase && addr < ksegLimit {
		return uint32(addr) & ksegMask, FaultNone
	}

	asid := uint8((addr >> 24) & 0xFF)
	addr24 := uint32(addr) & 0xFFFFFF

	type hit struct {
		idx int
		e   TLBEntry
	}
	var hits []hit
	for i, e := range c.tlb {
		dontCare := bits.Len32(e.PageMask.Mask)
		if (addr24>>13)>>dontCare != uint32(e.EntryHi.VPN2)>>dontCare {
			continue
		}
		if !(e.EntryLo0.G && e.EntryLo1.G) && e.EntryHi.ASID != asid {
			continue
		}
		hits = append(hits, hit{i, e})
	}

	if len(hits) > 1 {
		c.status.TS = true
		return 0, FaultTLBShutdown
	}
	if len(hits) == 0 {
		c.badVAddr = addr
		c.context.BadVPN2 = addr24 >> 13
		if write {
			return 0, FaultTLBMissWrite
		}
		return 0, FaultTLBMissRead
	}

	e := hits[0].e
	offsetBits := 12 + bits.Len32(e.PageMask.Mask)
	odd := (addr24>>offsetBits)&1 != 0
	lo := e.EntryLo0
	if odd {
		lo = e.EntryLo1
	}

	if !lo.V {
		c.badVAddr = addr
		return 0, FaultTLBInvalid
	}
	if write && !lo.D {
		c.badVAddr = addr
		return 0, FaultTLBModification
	}

	pageSize := e.PageMask.PageSize()
	paddr = (lo.PFN << offsetBits) | (addr24 & (pageSize - 1))
	return paddr, FaultNone
}

// CheckWatch implements the watch-register trap: raised whenever a
// translated access's (paddr &^ 7) matches WatchLo.PAddr<<3 and the
// corresponding R/W bit is armed.
func (c *COP0) CheckWatch(paddr uint32, write bool) bool {
	armed := c.watchLo.R
	if write {
		armed = c.watchLo.W
	}
	if !armed {
		return false
	}
	return (paddr &^ 7) == (c.watchLo.PAddr << 3)
}
