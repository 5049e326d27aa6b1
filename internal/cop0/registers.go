// Package cop0 implements the R4300i system coprocessor: the 32-register
// system control file, the fully-associative TLB, virtual-to-physical
// translation, and the prioritised exception dispatcher.
package cop0

import "iquecore/internal/bitfield"

// Index: bits [5:0] index, [31] P (probe failure).
type Index struct {
	Value uint32
	P     bool
}

var (
	fIndexValue = bitfield.NewField(0, 6)
	fIndexP     = bitfield.NewField(31, 1)
)

func UnpackIndex(raw uint32) Index {
	r := uint64(raw)
	return Index{Value: uint32(fIndexValue.Get(r)), P: fIndexP.GetBool(r)}
}

func (i Index) Pack() uint32 {
	var r uint64
	r = fIndexValue.Set(r, uint64(i.Value))
	r = fIndexP.SetBool(r, i.P)
	return uint32(r)
}

// Random: bits [5:0].
type Random struct{ Value uint32 }

var fRandomValue = bitfield.NewField(0, 6)

func UnpackRandom(raw uint32) Random { return Random{Value: uint32(fRandomValue.Get(uint64(raw)))} }
func (r Random) Pack() uint32        { return uint32(fRandomValue.Set(0, uint64(r.Value))) }

// EntryLo0 / EntryLo1: G[0] V[1] D[2] C[5:3] PFN[25:6].
type EntryLo struct {
	G   bool
	V   bool
	D   bool
	C   uint8
	PFN uint32
}

var (
	fLoG   = bitfield.NewField(0, 1)
	fLoV   = bitfield.NewField(1, 1)
	fLoD   = bitfield.NewField(2, 1)
	fLoC   = bitfield.NewField(3, 3)
	fLoPFN = bitfield.NewField(6, 20)
)

func UnpackEntryLo(raw uint32) EntryLo {
	r := uint64(raw)
	return EntryLo{
		G:   fLoG.GetBool(r),
		V:   fLoV.GetBool(r),
		D:   fLoD.GetBool(r),
		C:   uint8(fLoC.Get(r)),
		PFN: uint32(fLoPFN.Get(r)),
	}
}

func (e EntryLo) Pack() uint32 {
	var r uint64
	r = fLoG.SetBool(r, e.G)
	r = fLoV.SetBool(r, e.V)
	r = fLoD.SetBool(r, e.D)
	r = fLoC.Set(r, uint64(e.C))
	r = fLoPFN.Set(r, uint64(e.PFN))
	return uint32(r)
}

// EntryHi: ASID[7:0] VPN2[31:13].
type EntryHi struct {
	ASID uint8
	VPN2 uint32
}

var (
	fHiASID = bitfield.NewField(0, 8)
	fHiVPN2 = bitfield.NewField(13, 19)
)

func UnpackEntryHi(raw uint32) EntryHi {
	r := uint64(raw)
	return EntryHi{ASID: uint8(fHiASID.Get(r)), VPN2: uint32(fHiVPN2.Get(r))}
}

func (h EntryHi) Pack() uint32 {
	var r uint64
	r = fHiASID.Set(r, uint64(h.ASID))
	r = fHiVPN2.Set(r, uint64(h.VPN2))
	return uint32(r)
}

// PageMask: Mask[24:13].
type PageMask struct{ Mask uint32 }

var fPageMaskMask = bitfield.NewField(13, 12)

func UnpackPageMask(raw uint32) PageMask {
	return PageMask{Mask: uint32(fPageMaskMask.Get(uint64(raw)))}
}
func (p PageMask) Pack() uint32 { return uint32(fPageMaskMask.Set(0, uint64(p.Mask))) }

// PageSize returns the page size in bytes for this mask: (mask+1)<<12.
func (p PageMask) PageSize() uint32 { return (p.Mask + 1) << 12 }

// Context: PTEBase[31:23] BadVPN2[22:4].
type Context struct {
	PTEBase uint32
	BadVPN2 uint32
}

var (
	fCtxBadVPN2 = bitfield.NewField(4, 19)
	fCtxPTEBase = bitfield.NewField(23, 9)
)

func UnpackContext(raw uint32) Context {
	r := uint64(raw)
	return Context{PTEBase: uint32(fCtxPTEBase.Get(r)), BadVPN2: uint32(fCtxBadVPN2.Get(r))}
}

func (c Context) Pack() uint32 {
	var r uint64
	r = fCtxPTEBase.Set(r, uint64(c.PTEBase))
	r = fCtxBadVPN2.Set(r, uint64(c.BadVPN2))
	return uint32(r)
}

// Status register.
type Status struct {
	IE  bool
	EXL bool
	ERL bool
	KSU uint8
	IM  uint8 // interrupt mask, bits [15:8]
	DS  uint8
	RE  bool
	FR  bool
	RP  bool
	CU  uint8 // coprocessor usable bits [31:28]
	SR  bool  // soft reset indicator bit (model-specific, bit 20)
	TS  bool  // TLB shutdown
	BEV bool
}

var (
	fStIE  = bitfield.NewField(0, 1)
	fStEXL = bitfield.NewField(1, 1)
	fStERL = bitfield.NewField(2, 1)
	fStKSU = bitfield.NewField(3, 2)
	fStIM  = bitfield.NewField(8, 8)
	fStDS  = bitfield.NewField(16, 9)
	fStRE  = bitfield.NewField(25, 1)
	fStFR  = bitfield.NewField(26, 1)
	fStRP  = bitfield.NewField(27, 1)
	fStCU  = bitfield.NewField(28, 4)
	fStSR  = bitfield.NewField(20, 1)
	fStTS  = bitfield.NewField(21, 1)
	fStBEV = bitfield.NewField(22, 1)
)

func UnpackStatus(raw uint32) Status {
	r := uint64(raw)
	return Status{
		IE:  fStIE.GetBool(r),
		EXL: fStEXL.GetBool(r),
		ERL: fStERL.GetBool(r),
		KSU: uint8(fStKSU.Get(r)),
		IM:  uint8(fStIM.Get(r)),
		DS:  uint8(fStDS.Get(r)),
		RE:  fStRE.GetBool(r),
		FR:  fStFR.GetBool(r),
		RP:  fStRP.GetBool(r),
		CU:  uint8(fStCU.Get(r)),
		SR:  fStSR.GetBool(r),
		TS:  fStTS.GetBool(r),
		BEV: fStBEV.GetBool(r),
	}
}

func (s Status) Pack() uint32 {
	var r uint64
	r = fStIE.SetBool(r, s.IE)
	r = fStEXL.SetBool(r, s.EXL)
	r = fStERL.SetBool(r, s.ERL)
	r = fStKSU.Set(r, uint64(s.KSU))
	r = fStIM.Set(r, uint64(s.IM))
	r = fStDS.Set(r, uint64(s.DS))
	r = fStRE.SetBool(r, s.RE)
	r = fStFR.SetBool(r, s.FR)
	r = fStRP.SetBool(r, s.RP)
	r = fStCU.Set(r, uint64(s.CU))
	r = fStSR.SetBool(r, s.SR)
	r = fStTS.SetBool(r, s.TS)
	r = fStBEV.SetBool(r, s.BEV)
	return uint32(r)
}

// Cause register.
type Cause struct {
	ExcCode uint8 // [6:2]
	IP      uint8 // [15:8] pending interrupt bits
	CE      uint8 // [29:28] coprocessor error unit
	BD      bool  // [31] branch delay
	IV      bool  // [23]
}

var (
	fCaExcCode = bitfield.NewField(2, 5)
	fCaIP      = bitfield.NewField(8, 8)
	fCaIV      = bitfield.NewField(23, 1)
	fCaCE      = bitfield.NewField(28, 2)
	fCaBD      = bitfield.NewField(31, 1)
)

func UnpackCause(raw uint32) Cause {
	r := uint64(raw)
	return Cause{
		ExcCode: uint8(fCaExcCode.Get(r)),
		IP:      uint8(fCaIP.Get(r)),
		CE:      uint8(fCaCE.Get(r)),
		BD:      fCaBD.GetBool(r),
		IV:      fCaIV.GetBool(r),
	}
}

func (c Cause) Pack() uint32 {
	var r uint64
	r = fCaExcCode.Set(r, uint64(c.ExcCode))
	r = fCaIP.Set(r, uint64(c.IP))
	r = fCaCE.Set(r, uint64(c.CE))
	r = fCaBD.SetBool(r, c.BD)
	r = fCaIV.SetBool(r, c.IV)
	return uint32(r)
}

// Config register.
type Config struct {
	K0 uint8 // [2:0]
	BE bool  // [15]
	EP uint8 // [27:24]
	EC uint8 // [30:28]
}

var (
	fCfgK0 = bitfield.NewField(0, 3)
	fCfgBE = bitfield.NewField(15, 1)
	fCfgEP = bitfield.NewField(24, 4)
	fCfgEC = bitfield.NewField(28, 3)
)

func UnpackConfig(raw uint32) Config {
	r := uint64(raw)
	return Config{
		K0: uint8(fCfgK0.Get(r)),
		BE: fCfgBE.GetBool(r),
		EP: uint8(fCfgEP.Get(r)),
		EC: uint8(fCfgEC.Get(r)),
	}
}

func (c Config) Pack() uint32 {
	var r uint64
	r = fCfgK0.Set(r, uint64(c.K0))
	r = fCfgBE.SetBool(r, c.BE)
	r = fCfgEP.Set(r, uint64(c.EP))
	r = fCfgEC.Set(r, uint64(c.EC))
	return uint32(r)
}

// WatchLo: W[1] R[0] PAddr0[31:3].
type WatchLo struct {
	R     bool
	W     bool
	PAddr uint32 // physical address bits [31:3]
}

var (
	fWloR     = bitfield.NewField(0, 1)
	fWloW     = bitfield.NewField(1, 1)
	fWloPAddr = bitfield.NewField(3, 29)
)

func UnpackWatchLo(raw uint32) WatchLo {
	r := uint64(raw)
	return WatchLo{R: fWloR.GetBool(r), W: fWloW.GetBool(r), PAddr: uint32(fWloPAddr.Get(r))}
}

func (w WatchLo) Pack() uint32 {
	var r uint64
	r = fWloR.SetBool(r, w.R)
	r = fWloW.SetBool(r, w.W)
	r = fWloPAddr.Set(r, uint64(w.PAddr))
	return uint32(r)
}
