package cop0

// TLBEntry is one of the 32 fully-associative R4300i TLB entries. It stores
// the decoded EntryHi/EntryLo0/EntryLo1/PageMask register values, which
// TLBR copies back into the COP0 registers.
type TLBEntry struct {
	EntryHi  EntryHi
	EntryLo0 EntryLo
	EntryLo1 EntryLo
	PageMask PageMask
}

const TLBSize = 32

// lookup walks the TLB for a hit on (addr, asid). Returns the matching
// entry, its index, and whether it hit; multiple simultaneous hits are
// reported via multi.
func (c *COP0) lookup(addr uint64, asid uint8) (entry TLBEntry, index int, hit bool, multi bool) {
	found := -1
	for i := 0; i < c.tlbSize(); i++ {
		e := c.tlb[i]
		mask := uint64(e.PageMask.Mask) << 13
		vpn := addr &^ mask &^ 0x1FFF
		entryVPN2 := uint64(e.EntryHi.VPN2) << 13
		if vpn != (entryVPN2 &^ mask) {
			continue
		}
		if !(e.EntryLo0.G && e.EntryLo1.G) && e.EntryHi.ASID != asid {
			continue
		}
		if found >= 0 {
			return TLBEntry{}, 0, false, true
		}
		found = i
		entry = e
	}
	if found < 0 {
		return TLBEntry{}, 0, false, false
	}
	return entry, found, true, false
}

func (c *COP0) tlbSize() int {
	if c.tlb == nil {
		return 0
	}
	return len(c.tlb)
}

// TLBP implements the TLB Probe instruction: search for an entry matching
// EntryHi and set Index accordingly (P=1 on no match).
func (c *COP0) TLBP() {
	asid := c.entryHi.ASID
	addr := uint64(c.entryHi.VPN2) << 13
	_, idx, hit, _ := c.lookup(addr, asid)
	if hit {
		c.index = Index{Value: uint32(idx), P: false}
	} else {
		c.index = Index{Value: 0, P: true}
	}
}

// TLBR implements TLB Read: load EntryHi/EntryLo0/EntryLo1/PageMask from the
// entry selected by Index, mirroring the fused G bit back into both
// EntryLo views.
func (c *COP0) TLBR() {
	i := int(c.index.Value) % TLBSize
	e := c.tlb[i]
	g := e.EntryLo0.G && e.EntryLo1.G
	e.EntryLo0.G = g
	e.EntryLo1.G = g
	c.entryHi = e.EntryHi
	c.entryLo0 = e.EntryLo0
	c.entryLo1 = e.EntryLo1
	c.pageMask = e.PageMask
}

// writeEntry fuses G as lo0.g && lo1.g into both stored EntryLo values and
// stores the current register image at index.
func (c *COP0) writeEntry(i int) {
	g := c.entryLo0.G && c.entryLo1.G
	hi := c.entryHi
	hi.VPN2 = hi.VPN2 // no-op, kept for clarity
	lo0, lo1 := c.entryLo0, c.entryLo1
	lo0.G, lo1.G = g, g
	c.tlb[i%TLBSize] = TLBEntry{
		EntryHi:  hi,
		EntryLo0: lo0,
		EntryLo1: lo1,
		PageMask: c.pageMask,
	}
}

// TLBWI implements TLB Write Indexed.
func (c *COP0) TLBWI() {
	c.writeEntry(int(c.index.Value))
}

// TLBWR implements TLB Write Random.
func (c *COP0) TLBWR() {
	c.writeEntry(int(c.random.Value))
}
