package cop0

// COP0 is the R4300i system control coprocessor: the 32-register file, the
// TLB, and (via exceptions.go) the exception dispatcher. Reset values
// (PRId imp=0xE7 rev=0xA5; Config EC=7 EP=0 BE=1; Random=31; Status ERL=1
// BEV=1 SR=cold/warm) follow the documented cold-reset state.
type COP0 struct {
	tlb []TLBEntry

	index    Index
	random   Random
	entryLo0 EntryLo
	entryLo1 EntryLo
	context  Context
	pageMask PageMask
	wired    uint32

	badVAddr uint64
	count    uint32
	entryHi  EntryHi
	compare  uint32

	status Status
	cause  Cause
	epc    uint64

	prid   uint32
	config Config

	llAddr   uint32
	watchLo  WatchLo
	watchHi  uint32
	xcontext uint32
	cacheErr uint32
	tagLo    uint32
	tagHi    uint32
	errorEPC uint64

	// DelayedWrites selects the MFC0/MTC0 I+1-cycle-delayed model as the
	// architecturally documented (but source-disabled) alternative.
	// Default false: writes take effect in the same step.
	DelayedWrites bool
}

// PRId reset fields.
const (
	pridImp = 0xE7
	pridRev = 0xA5
)

// New creates a COP0 with the given TLB size (32 entries if tlbSize <= 0)
// in its cold-reset state.
func New(tlbSize int) *COP0 {
	if tlbSize <= 0 {
		tlbSize = TLBSize
	}
	c := &COP0{tlb: make([]TLBEntry, tlbSize)}
	c.ResetCold()
	return c
}

// ResetCold re-initialises register state for a ColdReset exception,
// reusing the backing TLB slice rather than reallocating it.
func (c *COP0) ResetCold() {
	for i := range c.tlb {
		c.tlb[i] = TLBEntry{}
	}
	c.index = Index{}
	c.random = Random{Value: 31}
	c.entryLo0 = EntryLo{}
	c.entryLo1 = EntryLo{}
	c.context = Context{}
	c.pageMask = PageMask{}
	c.wired = 0
	c.badVAddr = 0
	c.count = 0
	c.entryHi = EntryHi{}
	c.compare = 0
	c.status = Status{ERL: true, BEV: true}
	c.cause = Cause{}
	c.epc = 0
	c.prid = (pridImp << 8) | pridRev
	c.config = Config{EC: 7, EP: 0, BE: true}
	c.llAddr = 0
	c.watchLo = WatchLo{}
	c.watchHi = 0
	c.xcontext = 0
	c.cacheErr = 0
	c.tagLo = 0
	c.tagHi = 0
	c.errorEPC = 0
}

// ResetWarm models a warm reset's Status.SR=1, used by SoftReset/NMI paths
// that preserve general register content but still reassert Status bits.
func (c *COP0) ResetWarm() {
	c.status.SR = true
}

// Status / Cause / EPC / ErrorEPC accessors used by the CPU driver and
// exception dispatcher.
func (c *COP0) Status() Status       { return c.status }
func (c *COP0) SetStatus(s Status)   { c.status = s }
func (c *COP0) Cause() Cause         { return c.cause }
func (c *COP0) SetCause(cs Cause)    { c.cause = cs }
func (c *COP0) EPC() uint64          { return c.epc }
func (c *COP0) SetEPC(v uint64)      { c.epc = v }
func (c *COP0) ErrorEPC() uint64     { return c.errorEPC }
func (c *COP0) SetErrorEPC(v uint64) { c.errorEPC = v }
func (c *COP0) BadVAddr() uint64     { return c.badVAddr }
func (c *COP0) SetBadVAddr(v uint64) { c.badVAddr = v }
func (c *COP0) Wired() uint32        { return c.wired }
func (c *COP0) Count() uint32        { return c.count }
func (c *COP0) Compare() uint32      { return c.compare }
func (c *COP0) EntryHi() EntryHi     { return c.entryHi }
func (c *COP0) WatchLo() WatchLo     { return c.watchLo }

// Tick advances the free-running Count register and raises a timer
// interrupt (Cause.IP7/TI) when it reaches Compare, matching standard
// MIPS Count/Compare semantics used to drive the CPU driver's periodic tick.
func (c *COP0) Tick() {
	c.count++
	if c.count == c.compare {
		c.cause.IP |= 1 << 7
	}
}

// GetReg reads CP0 register (rd, sel) as MFC0 would. Unimplemented
// sel-addressed registers read back as the sel0 value (R4300i has no
// Config1/2/3 unlike MIPS32r2 — see DESIGN.md).
func (c *COP0) GetReg(rd, sel int) uint32 {
	switch rd {
	case 0:
		return c.index.Pack()
	case 1:
		return c.random.Pack()
	case 2:
		return c.entryLo0.Pack()
	case 3:
		return c.entryLo1.Pack()
	case 4:
		return c.context.Pack()
	case 5:
		return c.pageMask.Pack()
	case 6:
		return c.wired
	case 8:
		return uint32(c.badVAddr)
	case 9:
		return c.count
	case 10:
		return c.entryHi.Pack()
	case 11:
		return c.compare
	case 12:
		return c.status.Pack()
	case 13:
		return c.cause.Pack()
	case 14:
		return uint32(c.epc)
	case 15:
		return c.prid
	case 16:
		return c.config.Pack()
	case 17:
		return c.llAddr
	case 18:
		return c.watchLo.Pack()
	case 19:
		return c.watchHi
	case 20:
		return c.xcontext
	case 27:
		return c.cacheErr
	case 28:
		return c.tagLo
	case 29:
		return c.tagHi
	case 30:
		return uint32(c.errorEPC)
	default:
		return 0
	}
}

// SetReg writes CP0 register (rd, sel) as MTC0 would.
//
// Spec §3 invariant: "Random is reset to 31 whenever Wired is written".
func (c *COP0) SetReg(rd, sel int, value uint32) {
	switch rd {
	case 0:
		c.index = UnpackIndex(value)
	case 1:
		c.random = UnpackRandom(value)
	case 2:
		c.entryLo0 = UnpackEntryLo(value)
	case 3:
		c.entryLo1 = UnpackEntryLo(value)
	case 4:
		c.context = UnpackContext(value)
	case 5:
		c.pageMask = UnpackPageMask(value)
	case 6:
		c.wired = value & 0x3F
		c.random = Random{Value: 31}
	case 8:
		c.badVAddr = uint64(value)
	case 9:
		c.count = value
	case 10:
		c.entryHi = UnpackEntryHi(value)
	case 11:
		c.compare = value
		c.cause.IP &^= 1 << 7
	case 12:
		c.status = UnpackStatus(value)
	case 13:
		// Only the software-settable IP[1:0] and IV bits are writable by MTC0.
		in := UnpackCause(value)
		c.cause.IP = (c.cause.IP &^ 0x3) | (in.IP & 0x3)
		c.cause.IV = in.IV
	case 14:
		c.epc = uint64(value)
	case 16:
		c.config = UnpackConfig(value)
	case 17:
		c.llAddr = value
	case 18:
		c.watchLo = UnpackWatchLo(value)
	case 19:
		c.watchHi = value
	case 20:
		c.xcontext = value
	case 27:
		c.cacheErr = value
	case 28:
		c.tagLo = value
	case 29:
		c.tagHi = value
	case 30:
		c.errorEPC = uint64(value)
	}
}

// ERET implements the Exception Return instruction's PC computation and
// Status-bit clearing: if Status.ERL, PC<-ErrorEPC and clear ERL; else
// PC<-EPC and clear EXL.
func (c *COP0) ERET() uint64 {
	if c.status.ERL {
		c.status.ERL = false
		return c.errorEPC
	}
	c.status.EXL = false
	return c.epc
}
