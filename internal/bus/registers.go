package bus

import "iquecore/internal/bitfield"

// Byte offsets within each device's 1 MiB window. Register spacing follows
// the conventional N64-family layout the source hardware descends from:
// four-byte-aligned uint32 registers at 0x00, 0x04, 0x08, ...

const (
	offMIMode        = 0x00
	offMIIntrMask    = 0x04 // read: IntrMask; write: paired set/clear
	offMIIntrPending = 0x08
	offMICtrl        = 0x0C
	offMISecMode     = 0x10
	offMISecTimer    = 0x14
	offMISecVTimer   = 0x18
	offMIAVCtrl      = 0x1C
	offMIEIntr       = 0x20
	offMIEIntrMask   = 0x24
)

func (b *Bus) readMI(paddr uint32) byte {
	off := paddr & 0xFFFFF
	switch off &^ 3 {
	case offMIMode:
		return bitfield.RetrieveByte(b.MI.Mode, off)
	case offMIIntrMask:
		return bitfield.RetrieveByte(b.MI.IntrMask, off)
	case offMIIntrPending:
		return bitfield.RetrieveByte(b.MI.IntrPending, off)
	case offMICtrl:
		return bitfield.RetrieveByte(b.MI.Ctrl, off)
	case offMISecMode:
		return bitfield.RetrieveByte(b.MI.SecMode, off)
	case offMISecTimer:
		return bitfield.RetrieveByte(b.MI.SecTimer, off)
	case offMISecVTimer:
		return bitfield.RetrieveByte(b.MI.SecVTimer, off)
	case offMIAVCtrl:
		return bitfield.RetrieveByte(b.MI.AVCtrl, off)
	case offMIEIntr:
		return bitfield.RetrieveByte(b.MI.EIntr, off)
	case offMIEIntrMask:
		return bitfield.RetrieveByte(b.MI.EIntrMask, off)
	default:
		return 0
	}
}

func (b *Bus) writeMI(paddr uint32, v byte) {
	off := paddr & 0xFFFFF
	switch off &^ 3 {
	case offMIMode:
		b.MI.Mode = bitfield.MergeByte(b.MI.Mode, off, v)
		if bitfield.IsLastByte(off) {
			b.MI.WriteMode(b.MI.Mode)
		}
	case offMIIntrMask:
		word := bitfield.MergeByte(0, off, v)
		if bitfield.IsLastByte(off) {
			b.MI.WriteIntrMask(word)
		}
	case offMIIntrPending:
		b.MI.IntrPending = bitfield.MergeByte(b.MI.IntrPending, off, v)
	case offMICtrl:
		b.MI.Ctrl = bitfield.MergeByte(b.MI.Ctrl, off, v)
	case offMISecMode:
		word := bitfield.MergeByte(b.MI.SecMode, off, v)
		if bitfield.IsLastByte(off) {
			b.MI.WriteSecMode(word)
			if newMapping, changed := b.MI.ConsumeMapping(); changed {
				b.Virage.SetMapping(newMapping)
			}
		} else {
			b.MI.SecMode = word
		}
	case offMISecTimer:
		b.MI.SecTimer = bitfield.MergeByte(b.MI.SecTimer, off, v)
	case offMISecVTimer:
		b.MI.SecVTimer = bitfield.MergeByte(b.MI.SecVTimer, off, v)
	case offMIAVCtrl:
		b.MI.AVCtrl = bitfield.MergeByte(b.MI.AVCtrl, off, v)
	case offMIEIntr:
		b.MI.EIntr = bitfield.MergeByte(b.MI.EIntr, off, v)
	case offMIEIntrMask:
		word := bitfield.MergeByte(0, off, v)
		if bitfield.IsLastByte(off) {
			b.MI.WriteEIntrMask(word)
		}
	}
}

const (
	offVICtrl     = 0x00
	offVIOrigin   = 0x04
	offVIWidth    = 0x08
	offVIIntr     = 0x0C
	offVICurrent  = 0x10
	offVIBurst    = 0x14
	offVIVSync    = 0x18
	offVIHSync    = 0x1C
	offVILeap     = 0x20
	offVIHStart   = 0x24
	offVIVStart   = 0x28
	offVIVBurst   = 0x2C
	offVIXScale   = 0x30
	offVIYScale   = 0x34
	offVISpanAddr = 0x38
	offVISpanData = 0x3C
)

func (b *Bus) readVI(paddr uint32) byte {
	off := paddr & 0xFFFFF
	switch off &^ 3 {
	case offVICtrl:
		return bitfield.RetrieveByte(b.VI.Ctrl, off)
	case offVIOrigin:
		return bitfield.RetrieveByte(b.VI.Origin, off)
	case offVIWidth:
		return bitfield.RetrieveByte(b.VI.Width, off)
	case offVIIntr:
		return bitfield.RetrieveByte(b.VI.Intr, off)
	case offVICurrent:
		return bitfield.RetrieveByte(b.VI.Current, off)
	case offVIBurst:
		return bitfield.RetrieveByte(b.VI.Burst, off)
	case offVIVSync:
		return bitfield.RetrieveByte(b.VI.VSync, off)
	case offVIHSync:
		return bitfield.RetrieveByte(b.VI.HSync, off)
	case offVILeap:
		return bitfield.RetrieveByte(b.VI.Leap, off)
	case offVIHStart:
		return bitfield.RetrieveByte(b.VI.HStart, off)
	case offVIVStart:
		return bitfield.RetrieveByte(b.VI.VStart, off)
	case offVIVBurst:
		return bitfield.RetrieveByte(b.VI.VBurst, off)
	case offVIXScale:
		return bitfield.RetrieveByte(b.VI.XScale, off)
	case offVIYScale:
		return bitfield.RetrieveByte(b.VI.YScale, off)
	case offVISpanAddr:
		return bitfield.RetrieveByte(b.VI.SpanAddr, off)
	case offVISpanData:
		return bitfield.RetrieveByte(b.VI.SpanData, off)
	default:
		return 0
	}
}

func (b *Bus) writeVI(paddr uint32, v byte) {
	off := paddr & 0xFFFFF
	switch off &^ 3 {
	case offVICtrl:
		b.VI.Ctrl = bitfield.MergeByte(b.VI.Ctrl, off, v)
	case offVIOrigin:
		b.VI.Origin = bitfield.MergeByte(b.VI.Origin, off, v)
	case offVIWidth:
		b.VI.Width = bitfield.MergeByte(b.VI.Width, off, v)
	case offVIIntr:
		b.VI.Intr = bitfield.MergeByte(b.VI.Intr, off, v)
	case offVICurrent:
		word := bitfield.MergeByte(b.VI.Current, off, v)
		if bitfield.IsLastByte(off) {
			b.VI.WriteCurrent(word)
		} else {
			b.VI.Current = word
		}
	case offVIBurst:
		b.VI.Burst = bitfield.MergeByte(b.VI.Burst, off, v)
	case offVIVSync:
		b.VI.VSync = bitfield.MergeByte(b.VI.VSync, off, v)
	case offVIHSync:
		b.VI.HSync = bitfield.MergeByte(b.VI.HSync, off, v)
	case offVILeap:
		b.VI.Leap = bitfield.MergeByte(b.VI.Leap, off, v)
	case offVIHStart:
		b.VI.HStart = bitfield.MergeByte(b.VI.HStart, off, v)
	case offVIVStart:
		b.VI.VStart = bitfield.MergeByte(b.VI.VStart, off, v)
	case offVIVBurst:
		b.VI.VBurst = bitfield.MergeByte(b.VI.VBurst, off, v)
	case offVIXScale:
		b.VI.XScale = bitfield.MergeByte(b.VI.XScale, off, v)
	case offVIYScale:
		b.VI.YScale = bitfield.MergeByte(b.VI.YScale, off, v)
	case offVISpanAddr:
		b.VI.SpanAddr = bitfield.MergeByte(b.VI.SpanAddr, off, v)
	case offVISpanData:
		b.VI.SpanData = bitfield.MergeByte(b.VI.SpanData, off, v)
	}
}

const (
	offAIControl = 0x00
	offAIStatus  = 0x04
	offAIDacRate = 0x08
	offAIBitRate = 0x0C
)

func (b *Bus) readAI(paddr uint32) byte {
	off := paddr & 0xFFFFF
	switch off &^ 3 {
	case offAIControl:
		return bitfield.RetrieveByte(b.AI.Control, off)
	case offAIStatus:
		return bitfield.RetrieveByte(b.AI.ReadStatus(), off)
	case offAIDacRate:
		return bitfield.RetrieveByte(b.AI.DacRate, off)
	case offAIBitRate:
		return bitfield.RetrieveByte(b.AI.BitRate, off)
	default:
		return 0
	}
}

func (b *Bus) writeAI(paddr uint32, v byte) {
	off := paddr & 0xFFFFF
	switch off &^ 3 {
	case offAIControl:
		b.AI.Control = bitfield.MergeByte(b.AI.Control, off, v)
	case offAIStatus:
		b.AI.WriteStatus(0)
	case offAIDacRate:
		b.AI.DacRate = bitfield.MergeByte(b.AI.DacRate, off, v)
	case offAIBitRate:
		b.AI.BitRate = bitfield.MergeByte(b.AI.BitRate, off, v)
	}
}

// USB register offsets (Kinetis-style layout).
const (
	offUSBPerID         = 0x000
	offUSBAddInfo       = 0x004
	offUSBOTGIntrStatus = 0x008
	offUSBOTGIntrCtrl   = 0x00C
	offUSBOTGState      = 0x010
	offUSBOTGCtl        = 0x014
	offUSBIntrStatus    = 0x018
	offUSBIntrEnable    = 0x01C
	offUSBErrStatus     = 0x020
	offUSBErrEnable     = 0x024
	offUSBCtrl          = 0x028
	offUSBAddr          = 0x02C
	offUSBBDTPage1      = 0x030
	offUSBBDTPage2      = 0x034
	offUSBBDTPage3      = 0x038
	offUSBFrameNumH     = 0x03C
	offUSBFrameNumL     = 0x040
	offUSBToken         = 0x044
	offUSBSOFThreshold  = 0x048
	offUSBEndpointsBase = 0x100 // 16 * 4 bytes
	offUSBAccessEnable  = 0x140
	offUSBSRAMBase      = 0x80000 // 512 bytes
)

func (b *Bus) readUSB(idx int, paddr uint32) byte {
	u := b.USB[idx]
	off := paddr & 0xFFFFF
	switch {
	case off >= offUSBSRAMBase && off < offUSBSRAMBase+512:
		return u.SRAM[off-offUSBSRAMBase]
	case off >= offUSBEndpointsBase && off < offUSBEndpointsBase+16*4:
		i := (off - offUSBEndpointsBase) / 4
		return bitfield.RetrieveByte(u.Endpoints[i], off)
	}
	switch off &^ 3 {
	case offUSBPerID:
		return bitfield.RetrieveByte(u.PerID, off)
	case offUSBAddInfo:
		return bitfield.RetrieveByte(u.AddInfo, off)
	case offUSBOTGIntrStatus:
		return bitfield.RetrieveByte(u.OTGIntrStatus, off)
	case offUSBOTGIntrCtrl:
		return bitfield.RetrieveByte(u.OTGIntrCtrl, off)
	case offUSBOTGState:
		return bitfield.RetrieveByte(u.OTGState, off)
	case offUSBOTGCtl:
		return bitfield.RetrieveByte(u.OTGCtl, off)
	case offUSBIntrStatus:
		return bitfield.RetrieveByte(u.IntrStatus, off)
	case offUSBIntrEnable:
		return bitfield.RetrieveByte(u.IntrEnable, off)
	case offUSBErrStatus:
		return bitfield.RetrieveByte(u.ErrStatus, off)
	case offUSBErrEnable:
		return bitfield.RetrieveByte(u.ErrEnable, off)
	case offUSBCtrl:
		return bitfield.RetrieveByte(u.Ctrl, off)
	case offUSBAddr:
		return bitfield.RetrieveByte(u.Addr, off)
	case offUSBBDTPage1:
		return bitfield.RetrieveByte(u.BDTPage1, off)
	case offUSBBDTPage2:
		return bitfield.RetrieveByte(u.BDTPage2, off)
	case offUSBBDTPage3:
		return bitfield.RetrieveByte(u.BDTPage3, off)
	case offUSBFrameNumH:
		return bitfield.RetrieveByte(u.FrameNumH, off)
	case offUSBFrameNumL:
		return bitfield.RetrieveByte(u.FrameNumL, off)
	case offUSBToken:
		return bitfield.RetrieveByte(u.Token, off)
	case offUSBSOFThreshold:
		return bitfield.RetrieveByte(u.SOFThreshold, off)
	case offUSBAccessEnable:
		return bitfield.RetrieveByte(u.AccessEnable, off)
	default:
		return 0
	}
}

func (b *Bus) writeUSB(idx int, paddr uint32, v byte) {
	u := b.USB[idx]
	off := paddr & 0xFFFFF
	switch {
	case off >= offUSBSRAMBase && off < offUSBSRAMBase+512:
		u.SRAM[off-offUSBSRAMBase] = v
		return
	case off >= offUSBEndpointsBase && off < offUSBEndpointsBase+16*4:
		i := (off - offUSBEndpointsBase) / 4
		u.Endpoints[i] = bitfield.MergeByte(u.Endpoints[i], off, v)
		return
	}
	switch off &^ 3 {
	case offUSBPerID:
		u.PerID = bitfield.MergeByte(u.PerID, off, v)
	case offUSBAddInfo:
		u.AddInfo = bitfield.MergeByte(u.AddInfo, off, v)
	case offUSBOTGIntrStatus:
		u.OTGIntrStatus = bitfield.MergeByte(u.OTGIntrStatus, off, v)
	case offUSBOTGIntrCtrl:
		u.OTGIntrCtrl = bitfield.MergeByte(u.OTGIntrCtrl, off, v)
	case offUSBOTGState:
		u.OTGState = bitfield.MergeByte(u.OTGState, off, v)
	case offUSBOTGCtl:
		u.OTGCtl = bitfield.MergeByte(u.OTGCtl, off, v)
	case offUSBIntrStatus:
		u.IntrStatus = bitfield.MergeByte(u.IntrStatus, off, v)
	case offUSBIntrEnable:
		u.IntrEnable = bitfield.MergeByte(u.IntrEnable, off, v)
	case offUSBErrStatus:
		u.ErrStatus = bitfield.MergeByte(u.ErrStatus, off, v)
	case offUSBErrEnable:
		u.ErrEnable = bitfield.MergeByte(u.ErrEnable, off, v)
	case offUSBCtrl:
		u.Ctrl = bitfield.MergeByte(u.Ctrl, off, v)
	case offUSBAddr:
		u.Addr = bitfield.MergeByte(u.Addr, off, v)
	case offUSBBDTPage1:
		u.BDTPage1 = bitfield.MergeByte(u.BDTPage1, off, v)
	case offUSBBDTPage2:
		u.BDTPage2 = bitfield.MergeByte(u.BDTPage2, off, v)
	case offUSBBDTPage3:
		u.BDTPage3 = bitfield.MergeByte(u.BDTPage3, off, v)
	case offUSBFrameNumH:
		u.FrameNumH = bitfield.MergeByte(u.FrameNumH, off, v)
	case offUSBFrameNumL:
		u.FrameNumL = bitfield.MergeByte(u.FrameNumL, off, v)
	case offUSBToken:
		u.Token = bitfield.MergeByte(u.Token, off, v)
	case offUSBSOFThreshold:
		u.SOFThreshold = bitfield.MergeByte(u.SOFThreshold, off, v)
	case offUSBAccessEnable:
		u.AccessEnable = bitfield.MergeByte(u.AccessEnable, off, v)
	}
}

// PI register offsets.
const (
	offPIDRAMAddr       = 0x00
	offPICartAddr       = 0x04
	offPIReadLen        = 0x08
	offPIWriteLen       = 0x0C
	offPIStatus         = 0x10
	offPIDomainTiming0  = 0x14
	offPIDomainTiming1  = 0x18
	offPIBufferReadLen  = 0x1C
	offPIBufferWriteLen = 0x20
	offPIFlashAddr      = 0x24
	offPIFlashCtrl      = 0x28
	offPIAesCtrl        = 0x2C
	offPIAccessEnable   = 0x30
	offPIGPIO           = 0x34
	offPIIDETiming      = 0x38
	offPIIDECommandBase = 0x40 // 4 * 4 bytes
	offPIATBUBase       = 0x50 // 4 * 4 bytes
	offPIBUFBase        = 0x1000 // 1280 bytes
	offPIATBBase        = 0x2000 // 192 * 8 bytes (vaddr:u16 paddr:u16 size/perm/dev/iv packed:u32)
)

func (b *Bus) readPI(paddr uint32) byte {
	off := paddr & 0xFFFFF
	p := b.PI
	switch {
	case off >= offPIBUFBase && off < offPIBUFBase+1280:
		return p.ReadBUF(int(off - offPIBUFBase))
	case off >= offPIIDECommandBase && off < offPIIDECommandBase+16:
		i := (off - offPIIDECommandBase) / 4
		return bitfield.RetrieveByte(p.IDECommand[i], off)
	case off >= offPIATBUBase && off < offPIATBUBase+16:
		i := (off - offPIATBUBase) / 4
		return bitfield.RetrieveByte(p.ATBU[i], off)
	}
	switch off &^ 3 {
	case offPIDRAMAddr:
		return bitfield.RetrieveByte(p.DMA.DRAMAddr, off)
	case offPICartAddr:
		return bitfield.RetrieveByte(p.DMA.CartAddr, off)
	case offPIReadLen:
		return bitfield.RetrieveByte(p.DMA.ReadLen, off)
	case offPIWriteLen:
		return bitfield.RetrieveByte(p.DMA.WriteLen, off)
	case offPIStatus:
		return bitfield.RetrieveByte(p.Status, off)
	case offPIDomainTiming0:
		return bitfield.RetrieveByte(p.DomainTiming0, off)
	case offPIDomainTiming1:
		return bitfield.RetrieveByte(p.DomainTiming1, off)
	case offPIBufferReadLen:
		return bitfield.RetrieveByte(p.DMA.BufferReadLen, off)
	case offPIBufferWriteLen:
		return bitfield.RetrieveByte(p.DMA.BufferWriteLen, off)
	case offPIFlashAddr:
		return bitfield.RetrieveByte(p.FlashAddr, off)
	case offPIFlashCtrl:
		return bitfield.RetrieveByte(p.Flash.Ctrl, off)
	case offPIAesCtrl:
		return bitfield.RetrieveByte(p.AES.Ctrl, off)
	case offPIAccessEnable:
		return bitfield.RetrieveByte(p.AccessEnable, off)
	case offPIGPIO:
		return bitfield.RetrieveByte(p.GPIO, off)
	case offPIIDETiming:
		return bitfield.RetrieveByte(p.IDETiming, off)
	default:
		return 0
	}
}

func (b *Bus) writePI(paddr uint32, v byte) {
	off := paddr & 0xFFFFF
	p := b.PI
	switch {
	case off >= offPIBUFBase && off < offPIBUFBase+1280:
		p.WriteBUF(int(off-offPIBUFBase), v)
		return
	case off >= offPIIDECommandBase && off < offPIIDECommandBase+16:
		i := (off - offPIIDECommandBase) / 4
		p.IDECommand[i] = bitfield.MergeByte(p.IDECommand[i], off, v)
		return
	case off >= offPIATBUBase && off < offPIATBUBase+16:
		i := (off - offPIATBUBase) / 4
		p.ATBU[i] = bitfield.MergeByte(p.ATBU[i], off, v)
		return
	}
	switch off &^ 3 {
	case offPIDRAMAddr:
		p.DMA.DRAMAddr = bitfield.MergeByte(p.DMA.DRAMAddr, off, v)
	case offPICartAddr:
		p.DMA.CartAddr = bitfield.MergeByte(p.DMA.CartAddr, off, v)
	case offPIReadLen:
		p.DMA.WriteReadLen(off, v)
	case offPIWriteLen:
		p.DMA.WriteWriteLen(off, v)
	case offPIStatus:
		p.Status = bitfield.MergeByte(p.Status, off, v)
	case offPIDomainTiming0:
		p.DomainTiming0 = bitfield.MergeByte(p.DomainTiming0, off, v)
	case offPIDomainTiming1:
		p.DomainTiming1 = bitfield.MergeByte(p.DomainTiming1, off, v)
	case offPIBufferReadLen:
		p.DMA.WriteBufferReadLen(off, v)
	case offPIBufferWriteLen:
		p.DMA.WriteBufferWriteLen(off, v)
	case offPIFlashAddr:
		p.WriteFlashAddr(off, v)
	case offPIFlashCtrl:
		p.WriteFlashCtrl(off, v)
	case offPIAesCtrl:
		p.WriteAesCtrl(off, v)
	case offPIAccessEnable:
		p.AccessEnable = bitfield.MergeByte(p.AccessEnable, off, v)
	case offPIGPIO:
		p.GPIO = bitfield.MergeByte(p.GPIO, off, v)
	case offPIIDETiming:
		p.IDETiming = bitfield.MergeByte(p.IDETiming, off, v)
	}
}
