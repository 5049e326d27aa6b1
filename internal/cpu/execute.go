package cpu

import (
	"iquecore/internal/bitfield"
	"iquecore/internal/bus"
	"iquecore/internal/cop0"
)

// Primary opcodes used outside SPECIAL/REGIMM/J/JAL/COP0/COP1 (see decode.go).
const (
	opADDI   = 0x08
	opADDIU  = 0x09
	opSLTI   = 0x0A
	opSLTIU  = 0x0B
	opANDI   = 0x0C
	opORI    = 0x0D
	opXORI   = 0x0E
	opLUI    = 0x0F
	opDADDI  = 0x18
	opDADDIU = 0x19

	opBEQ  = 0x04
	opBNE  = 0x05
	opBLEZ = 0x06
	opBGTZ = 0x07

	opBEQL  = 0x14
	opBNEL  = 0x15
	opBLEZL = 0x16
	opBGTZL = 0x17

	opLB    = 0x20
	opLH    = 0x21
	opLWL   = 0x22
	opLW    = 0x23
	opLBU   = 0x24
	opLHU   = 0x25
	opLWR   = 0x26
	opLWU   = 0x27
	opSB    = 0x28
	opSH    = 0x29
	opSWL   = 0x2A
	opSW    = 0x2B
	opSDL   = 0x2C
	opSDR   = 0x2D
	opSWR   = 0x2E
	opCACHE = 0x2F
	opLL    = 0x30
	opLWC1  = 0x31
	opLLD   = 0x34
	opLDC1  = 0x35
	opLD    = 0x37
	opSC    = 0x38
	opSWC1  = 0x39
	opSCD   = 0x3C
	opSDC1  = 0x3D
	opSD    = 0x3F
	opLDL   = 0x1A
	opLDR   = 0x1B
)

// SPECIAL (opcode 0) funct codes.
const (
	fnSLL     = 0x00
	fnSRL     = 0x02
	fnSRA     = 0x03
	fnSLLV    = 0x04
	fnSRLV    = 0x06
	fnSRAV    = 0x07
	fnJR      = 0x08
	fnJALR    = 0x09
	fnSYSCALL = 0x0C
	fnBREAK   = 0x0D
	fnMFHI    = 0x10
	fnMTHI    = 0x11
	fnMFLO    = 0x12
	fnMTLO    = 0x13
	fnDSLLV   = 0x14
	fnDSRLV   = 0x16
	fnDSRAV   = 0x17
	fnMULT    = 0x18
	fnMULTU   = 0x19
	fnDIV     = 0x1A
	fnDIVU    = 0x1B
	fnADD     = 0x20
	fnADDU    = 0x21
	fnSUB     = 0x22
	fnSUBU    = 0x23
	fnAND     = 0x24
	fnOR      = 0x25
	fnXOR     = 0x26
	fnNOR     = 0x27
	fnSLT     = 0x2A
	fnSLTU    = 0x2B
	fnDADD    = 0x2C
	fnDADDU   = 0x2D
	fnDSUB    = 0x2E
	fnDSUBU   = 0x2F
	fnTGE     = 0x30
	fnTGEU    = 0x31
	fnTLT     = 0x32
	fnTLTU    = 0x33
	fnTEQ     = 0x34
	fnTNE     = 0x36
	fnDSLL    = 0x38
	fnDSRL    = 0x3A
	fnDSRA    = 0x3B
	fnDSLL32  = 0x3C
	fnDSRL32  = 0x3E
	fnDSRA32  = 0x3F
)

// REGIMM (opcode 1) rt codes.
const (
	rtBLTZ   = 0x00
	rtBGEZ   = 0x01
	rtBLTZL  = 0x02
	rtBGEZL  = 0x03
	rtTGEI   = 0x08
	rtTGEIU  = 0x09
	rtTLTI   = 0x0A
	rtTLTIU  = 0x0B
	rtTEQI   = 0x0C
	rtTNEI   = 0x0E
	rtBLTZAL = 0x10
	rtBGEZAL = 0x11
)

// COP0 "format" (rs field) codes.
const (
	cop0MF  = 0x00
	cop0MT  = 0x04
	cop0BC  = 0x08
	cop0CO  = 0x10
)

const (
	cop0FnTLBR  = 0x01
	cop0FnTLBWI = 0x02
	cop0FnTLBWR = 0x06
	cop0FnTLBP  = 0x08
	cop0FnERET  = 0x18
)

// ExecResult carries the exception, if any, that Execute wants the driver
// to raise this step (ReservedInstruction, ArithmeticOverflow, Syscall, ...).
type ExecResult struct {
	Exc cop0.Request
}

var noExc = ExecResult{Exc: cop0.Request{Kind: cop0.None}}

// Engine ties a register file to COP0 and the bus so instructions can read
// and write both.
type Engine struct {
	State *State
	COP0  *cop0.COP0
	Mem   Memory
	Log   bus.Logger
}

// Execute applies one decoded instruction's effect: operand fetch,
// operation, write-back, and (for control-transfer instructions) queuing a
// PendingDelay rather than touching PC directly.
func (e *Engine) Execute(in Instruction) ExecResult {
	s := e.State
	switch in.Format {
	case FormatR:
		return e.execSpecial(in)
	case FormatJ:
		target := (s.PC &^ 0x0FFFFFFF) | (uint64(in.Target) << 2)
		s.Delay = PendingDelay{Kind: DelayAbsolute, Target: target}
		if in.Opcode == opJAL {
			s.SetGPR(31, s.PC+8)
		}
		return noExc
	case FormatCOP0:
		return e.execCOP0(in)
	case FormatCOP1Move, FormatFPBranch, FormatFPReg, FormatFPCompare:
		// Floating-point arithmetic is out of scope; move/branch/compare
		// forms are reached but are no-ops against an always-false
		// condition code.
		if in.Format == FormatFPBranch {
			cond := in.Rt&1 != 0 // bit0 of the ndtf slot: true-branch vs false-branch
			taken := s.COC1 == cond
			e.queueBranch(taken, false, in.Imm16)
		}
		return noExc
	default:
		return e.execI(in)
	}
}

func (e *Engine) execSpecial(in Instruction) ExecResult {
	s := e.State
	rs, rt := s.GetGPR(in.Rs), s.GetGPR(in.Rt)
	switch in.Funct {
	case fnSLL:
		s.SetGPR(in.Rd, bitfield.SignExtend32To64(uint32(rt)<<in.Shamt))
	case fnSRL:
		s.SetGPR(in.Rd, bitfield.SignExtend32To64(uint32(rt)>>in.Shamt))
	case fnSRA:
		s.SetGPR(in.Rd, uint64(int64(int32(rt)>>in.Shamt)))
	case fnSLLV:
		s.SetGPR(in.Rd, bitfield.SignExtend32To64(uint32(rt)<<(rs&0x1F)))
	case fnSRLV:
		s.SetGPR(in.Rd, bitfield.SignExtend32To64(uint32(rt)>>(rs&0x1F)))
	case fnSRAV:
		s.SetGPR(in.Rd, uint64(int64(int32(rt)>>(rs&0x1F))))
	case fnDSLLV:
		s.SetGPR(in.Rd, rt<<(rs&0x3F))
	case fnDSRLV:
		s.SetGPR(in.Rd, rt>>(rs&0x3F))
	case fnDSRAV:
		s.SetGPR(in.Rd, uint64(int64(rt)>>(rs&0x3F)))
	case fnDSLL:
		s.SetGPR(in.Rd, rt<<in.Shamt)
	case fnDSRL:
		s.SetGPR(in.Rd, rt>>in.Shamt)
	case fnDSRA:
		s.SetGPR(in.Rd, uint64(int64(rt)>>in.Shamt))
	case fnDSLL32:
		s.SetGPR(in.Rd, rt<<(32+in.Shamt))
	case fnDSRL32:
		s.SetGPR(in.Rd, rt>>(32+in.Shamt))
	case fnDSRA32:
		s.SetGPR(in.Rd, uint64(int64(rt)>>(32+in.Shamt)))
	case fnJR:
		s.Delay = PendingDelay{Kind: DelayRegister, Target: rs}
	case fnJALR:
		link := s.PC + 8
		s.Delay = PendingDelay{Kind: DelayRegister, Target: rs}
		rd := in.Rd
		if rd == 0 {
			rd = 31
		}
		s.SetGPR(rd, link)
	case fnMFHI:
		s.SetGPR(in.Rd, s.HI)
	case fnMTHI:
		s.HI = rs
	case fnMFLO:
		s.SetGPR(in.Rd, s.LO)
	case fnMTLO:
		s.LO = rs
	case fnMULT:
		prod := int64(int32(rs)) * int64(int32(rt))
		s.LO = bitfield.SignExtend32To64(uint32(prod))
		s.HI = bitfield.SignExtend32To64(uint32(prod >> 32))
	case fnMULTU:
		prod := uint64(uint32(rs)) * uint64(uint32(rt))
		s.LO = bitfield.SignExtend32To64(uint32(prod))
		s.HI = bitfield.SignExtend32To64(uint32(prod >> 32))
	case fnDIV:
		a, b := int32(rs), int32(rt)
		if b != 0 {
			s.LO = bitfield.SignExtend32To64(uint32(a / b))
			s.HI = bitfield.SignExtend32To64(uint32(a % b))
		}
	case fnDIVU:
		a, b := uint32(rs), uint32(rt)
		if b != 0 {
			s.LO = bitfield.SignExtend32To64(a / b)
			s.HI = bitfield.SignExtend32To64(a % b)
		}
	case fnADD:
		sum, overflow := addOverflows32(uint32(rs), uint32(rt))
		if overflow {
			return ExecResult{Exc: cop0.Request{Kind: cop0.ArithmeticOverflow}}
		}
		s.SetGPR(in.Rd, bitfield.SignExtend32To64(sum))
	case fnADDU:
		s.SetGPR(in.Rd, bitfield.SignExtend32To64(uint32(rs)+uint32(rt)))
	case fnSUB:
		diff, overflow := subOverflows32(uint32(rs), uint32(rt))
		if overflow {
			return ExecResult{Exc: cop0.Request{Kind: cop0.ArithmeticOverflow}}
		}
		s.SetGPR(in.Rd, bitfield.SignExtend32To64(diff))
	case fnSUBU:
		s.SetGPR(in.Rd, bitfield.SignExtend32To64(uint32(rs)-uint32(rt)))
	case fnDADD:
		sum, overflow := addOverflows64(rs, rt)
		if overflow {
			return ExecResult{Exc: cop0.Request{Kind: cop0.ArithmeticOverflow}}
		}
		s.SetGPR(in.Rd, sum)
	case fnDADDU:
		s.SetGPR(in.Rd, rs+rt)
	case fnDSUB:
		diff, overflow := subOverflows64(rs, rt)
		if overflow {
			return ExecResult{Exc: cop0.Request{Kind: cop0.ArithmeticOverflow}}
		}
		s.SetGPR(in.Rd, diff)
	case fnDSUBU:
		s.SetGPR(in.Rd, rs-rt)
	case fnAND:
		s.SetGPR(in.Rd, rs&rt)
	case fnOR:
		s.SetGPR(in.Rd, rs|rt)
	case fnXOR:
		s.SetGPR(in.Rd, rs^rt)
	case fnNOR:
		s.SetGPR(in.Rd, ^(rs | rt))
	case fnSLT:
		s.SetGPR(in.Rd, boolToWord(int64(rs) < int64(rt)))
	case fnSLTU:
		s.SetGPR(in.Rd, boolToWord(rs < rt))
	case fnTGE:
		if int64(rs) >= int64(rt) {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	case fnTGEU:
		if rs >= rt {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	case fnTLT:
		if int64(rs) < int64(rt) {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	case fnTLTU:
		if rs < rt {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	case fnTEQ:
		if rs == rt {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	case fnTNE:
		if rs != rt {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	case fnSYSCALL:
		return ExecResult{Exc: cop0.Request{Kind: cop0.Syscall}}
	case fnBREAK:
		return ExecResult{Exc: cop0.Request{Kind: cop0.Breakpoint}}
	default:
		return ExecResult{Exc: cop0.Request{Kind: cop0.ReservedInstruction}}
	}
	return noExc
}

func boolToWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// queueBranch applies branch/branch-likely semantics: taken queues a
// PC-relative delay action, not-taken-and-likely suppresses the following
// step's effects instead of falling through normally.
func (e *Engine) queueBranch(taken, likely bool, imm16 uint16) {
	s := e.State
	if taken {
		offset := bitfield.SignExtend16To64(imm16) << 2
		s.Delay = PendingDelay{Kind: DelayPCBase, Target: s.PC + 4 + offset}
		return
	}
	if likely {
		s.Delay = PendingDelay{Kind: DelayPCBase, Target: s.PC + 8, Suppressed: true}
	}
}

func (e *Engine) execI(in Instruction) ExecResult {
	s := e.State
	rs, rt := s.GetGPR(in.Rs), s.GetGPR(in.Rt)
	imm64 := bitfield.SignExtend16To64(in.Imm16)

	switch in.Opcode {
	case opREGIMM:
		return e.execRegimm(in)
	case opBEQ:
		e.queueBranch(rs == rt, false, in.Imm16)
	case opBNE:
		e.queueBranch(rs != rt, false, in.Imm16)
	case opBLEZ:
		e.queueBranch(int64(rs) <= 0, false, in.Imm16)
	case opBGTZ:
		e.queueBranch(int64(rs) > 0, false, in.Imm16)
	case opBEQL:
		e.queueBranch(rs == rt, true, in.Imm16)
	case opBNEL:
		e.queueBranch(rs != rt, true, in.Imm16)
	case opBLEZL:
		e.queueBranch(int64(rs) <= 0, true, in.Imm16)
	case opBGTZL:
		e.queueBranch(int64(rs) > 0, true, in.Imm16)
	case opADDI:
		sum, overflow := addOverflows32(uint32(rs), uint32(imm64))
		if overflow {
			return ExecResult{Exc: cop0.Request{Kind: cop0.ArithmeticOverflow}}
		}
		s.SetGPR(in.Rt, bitfield.SignExtend32To64(sum))
	case opADDIU:
		s.SetGPR(in.Rt, bitfield.SignExtend32To64(uint32(rs)+uint32(imm64)))
	case opDADDI:
		sum, overflow := addOverflows64(rs, imm64)
		if overflow {
			return ExecResult{Exc: cop0.Request{Kind: cop0.ArithmeticOverflow}}
		}
		s.SetGPR(in.Rt, sum)
	case opDADDIU:
		s.SetGPR(in.Rt, rs+imm64)
	case opSLTI:
		s.SetGPR(in.Rt, boolToWord(int64(rs) < int64(imm64)))
	case opSLTIU:
		s.SetGPR(in.Rt, boolToWord(rs < imm64))
	case opANDI:
		s.SetGPR(in.Rt, rs&uint64(in.Imm16))
	case opORI:
		s.SetGPR(in.Rt, rs|uint64(in.Imm16))
	case opXORI:
		s.SetGPR(in.Rt, rs^uint64(in.Imm16))
	case opLUI:
		s.SetGPR(in.Rt, uint64(uint32(in.Imm16)<<16))
	case opCACHE:
		// no-op: no cache model to keep coherent.
	case opLB, opLBU, opLH, opLHU, opLW, opLWU, opLD, opLL, opLLD:
		return e.execLoad(in, rs, imm64)
	case opSB, opSH, opSW, opSD, opSC, opSCD:
		return e.execStore(in, rs, imm64)
	case opLWL, opLWR, opLDL, opLDR:
		return e.execLoadLeftRight(in, rs, imm64)
	case opSWL, opSWR, opSDL, opSDR:
		return e.execStoreLeftRight(in, rs, imm64)
	case opLWC1, opLDC1, opSWC1, opSDC1:
		// FP register loads/stores: data movement only, no arithmetic
		// consumes it, so just address-fault-check and discard/zero-fill.
		return e.execFPTransfer(in, rs, imm64)
	default:
		return ExecResult{Exc: cop0.Request{Kind: cop0.ReservedInstruction}}
	}
	return noExc
}

func (e *Engine) execRegimm(in Instruction) ExecResult {
	s := e.State
	rs := s.GetGPR(in.Rs)
	switch in.Rt {
	case rtBLTZ:
		e.queueBranch(int64(rs) < 0, false, in.Imm16)
	case rtBGEZ:
		e.queueBranch(int64(rs) >= 0, false, in.Imm16)
	case rtBLTZL:
		e.queueBranch(int64(rs) < 0, true, in.Imm16)
	case rtBGEZL:
		e.queueBranch(int64(rs) >= 0, true, in.Imm16)
	case rtBLTZAL:
		s.SetGPR(31, s.PC+8)
		e.queueBranch(int64(rs) < 0, false, in.Imm16)
	case rtBGEZAL:
		s.SetGPR(31, s.PC+8)
		e.queueBranch(int64(rs) >= 0, false, in.Imm16)
	case rtTGEI:
		if int64(rs) >= int64(bitfield.SignExtend16To64(in.Imm16)) {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	case rtTGEIU:
		if rs >= bitfield.SignExtend16To64(in.Imm16) {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	case rtTLTI:
		if int64(rs) < int64(bitfield.SignExtend16To64(in.Imm16)) {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	case rtTLTIU:
		if rs < bitfield.SignExtend16To64(in.Imm16) {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	case rtTEQI:
		if rs == bitfield.SignExtend16To64(in.Imm16) {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	case rtTNEI:
		if rs != bitfield.SignExtend16To64(in.Imm16) {
			return ExecResult{Exc: cop0.Request{Kind: cop0.Trap}}
		}
	default:
		return ExecResult{Exc: cop0.Request{Kind: cop0.ReservedInstruction}}
	}
	return noExc
}

func (e *Engine) addrFault(af *bus.AccessFault) ExecResult {
	return ExecResult{Exc: af.ToRequest()}
}

func (e *Engine) execLoad(in Instruction, rs, imm64 uint64) ExecResult {
	s := e.State
	addr := rs + imm64
	switch in.Opcode {
	case opLB:
		v, af := e.Mem.ReadU8(addr, e.Log)
		if af != nil {
			return e.addrFault(af)
		}
		s.SetGPR(in.Rt, bitfield.SignExtend8To64(v))
	case opLBU:
		v, af := e.Mem.ReadU8(addr, e.Log)
		if af != nil {
			return e.addrFault(af)
		}
		s.SetGPR(in.Rt, uint64(v))
	case opLH:
		v, af := e.Mem.ReadU16(addr, e.Log)
		if af != nil {
			return e.addrFault(af)
		}
		s.SetGPR(in.Rt, bitfield.SignExtend16To64(v))
	case opLHU:
		v, af := e.Mem.ReadU16(addr, e.Log)
		if af != nil {
			return e.addrFault(af)
		}
		s.SetGPR(in.Rt, uint64(v))
	case opLW, opLL:
		v, af := e.Mem.ReadU32(addr, e.Log)
		if af != nil {
			return e.addrFault(af)
		}
		s.SetGPR(in.Rt, bitfield.SignExtend32To64(v))
		if in.Opcode == opLL {
			s.LLBit = true
		}
	case opLWU:
		v, af := e.Mem.ReadU32(addr, e.Log)
		if af != nil {
			return e.addrFault(af)
		}
		s.SetGPR(in.Rt, uint64(v))
	case opLD, opLLD:
		v, af := e.Mem.ReadU64(addr, e.Log)
		if af != nil {
			return e.addrFault(af)
		}
		s.SetGPR(in.Rt, v)
		if in.Opcode == opLLD {
			s.LLBit = true
		}
	}
	return noExc
}

func (e *Engine) execStore(in Instruction, rs, imm64 uint64) ExecResult {
	s := e.State
	addr := rs + imm64
	rt := s.GetGPR(in.Rt)
	switch in.Opcode {
	case opSB:
		if af := e.Mem.WriteU8(addr, uint8(rt), e.Log); af != nil {
			return e.addrFault(af)
		}
	case opSH:
		if af := e.Mem.WriteU16(addr, uint16(rt), e.Log); af != nil {
			return e.addrFault(af)
		}
	case opSW:
		if af := e.Mem.WriteU32(addr, uint32(rt), e.Log); af != nil {
			return e.addrFault(af)
		}
	case opSD:
		if af := e.Mem.WriteU64(addr, rt, e.Log); af != nil {
			return e.addrFault(af)
		}
	case opSC, opSCD:
		if !s.LLBit {
			s.SetGPR(in.Rt, 0)
			return noExc
		}
		var af *bus.AccessFault
		if in.Opcode == opSC {
			af = e.Mem.WriteU32(addr, uint32(rt), e.Log)
		} else {
			af = e.Mem.WriteU64(addr, rt, e.Log)
		}
		if af != nil {
			return e.addrFault(af)
		}
		s.LLBit = false
		s.SetGPR(in.Rt, 1)
	}
	return noExc
}

// execLoadLeftRight implements the LWL/LWR/LDL/LDR byte-splice rule: align
// the address down to the native width, read that aligned word
// byte-by-byte, and merge only the bytes the misalignment selects.
func (e *Engine) execLoadLeftRight(in Instruction, rs, imm64 uint64) ExecResult {
	s := e.State
	addr := rs + imm64
	width := uint64(4)
	if in.Opcode == opLDL || in.Opcode == opLDR {
		width = 8
	}
	base := addr &^ (width - 1)
	misalign := addr & (width - 1)

	word := s.GetGPR(in.Rt)
	for i := uint64(0); i < width; i++ {
		b, af := e.Mem.ReadU8(base+i, e.Log)
		if af != nil {
			return e.addrFault(af)
		}
		shift := (width - 1 - i) * 8
		word = (word &^ (0xFF << shift)) | (uint64(b) << shift)
	}

	switch in.Opcode {
	case opLWL:
		if misalign == 0 {
			s.SetGPR(in.Rt, bitfield.SignExtend32To64(uint32(word)))
		} else {
			// the word's bytes from the addressed byte onward (its low
			// width-misalign bytes) fill the top of the register; the
			// register's low misalign bytes are kept.
			shift := misalign * 8
			keep := uint32(0xFFFFFFFF) >> (32 - shift)
			merged := (uint32(word) << shift) | (uint32(s.GetGPR(in.Rt)) & keep)
			s.SetGPR(in.Rt, bitfield.SignExtend32To64(merged))
		}
	case opLWR:
		if misalign == width-1 {
			s.SetGPR(in.Rt, bitfield.SignExtend32To64(uint32(word)))
		} else {
			shift := (width - 1 - misalign) * 8
			keep := uint32(0xFFFFFFFF) << (32 - shift)
			s.SetGPR(in.Rt, bitfield.SignExtend32To64((uint32(word)>>shift)|(uint32(s.GetGPR(in.Rt))&keep)))
		}
	case opLDL:
		if misalign == 0 {
			s.SetGPR(in.Rt, word)
		} else {
			shift := misalign * 8
			mask := ^uint64(0) >> shift
			s.SetGPR(in.Rt, (word<<shift)|(s.GetGPR(in.Rt)&^(mask<<shift)))
		}
	case opLDR:
		if misalign == width-1 {
			s.SetGPR(in.Rt, word)
		} else {
			shift := (width - 1 - misalign) * 8
			keep := ^uint64(0) << (64 - shift)
			s.SetGPR(in.Rt, (word>>shift)|(s.GetGPR(in.Rt)&keep))
		}
	}
	return noExc
}

// execStoreLeftRight implements SWL/SWR/SDL/SDR: store the high or low
// bytes of the register one at a time into ascending/descending addresses
// from the (possibly misaligned) target.
func (e *Engine) execStoreLeftRight(in Instruction, rs, imm64 uint64) ExecResult {
	s := e.State
	addr := rs + imm64
	rt := s.GetGPR(in.Rt)
	width := uint64(4)
	if in.Opcode == opSDL || in.Opcode == opSDR {
		width = 8
	}
	misalign := addr & (width - 1)

	switch in.Opcode {
	case opSWL, opSDL:
		n := width - misalign
		for i := uint64(0); i < n; i++ {
			shift := (width - 1 - i) * 8
			b := byte(rt >> shift)
			if af := e.Mem.WriteU8(addr+i, b, e.Log); af != nil {
				return e.addrFault(af)
			}
		}
	case opSWR, opSDR:
		n := misalign + 1
		for i := uint64(0); i < n; i++ {
			shift := i * 8
			b := byte(rt >> shift)
			if af := e.Mem.WriteU8(addr-i, b, e.Log); af != nil {
				return e.addrFault(af)
			}
		}
	}
	return noExc
}

func (e *Engine) execFPTransfer(in Instruction, rs, imm64 uint64) ExecResult {
	addr := rs + imm64
	switch in.Opcode {
	case opLWC1:
		_, af := e.Mem.ReadU32(addr, e.Log)
		if af != nil {
			return e.addrFault(af)
		}
	case opLDC1:
		_, af := e.Mem.ReadU64(addr, e.Log)
		if af != nil {
			return e.addrFault(af)
		}
	case opSWC1:
		if af := e.Mem.WriteU32(addr, 0, e.Log); af != nil {
			return e.addrFault(af)
		}
	case opSDC1:
		if af := e.Mem.WriteU64(addr, 0, e.Log); af != nil {
			return e.addrFault(af)
		}
	}
	return noExc
}

func (e *Engine) execCOP0(in Instruction) ExecResult {
	s := e.State
	switch in.FmtField {
	case cop0MF:
		s.SetGPR(in.Rt, bitfield.SignExtend32To64(e.COP0.GetReg(int(in.Rd), int(in.Funct)&0x7)))
	case cop0MT:
		e.COP0.SetReg(int(in.Rd), int(in.Funct)&0x7, uint32(s.GetGPR(in.Rt)))
	case cop0BC:
		taken := s.COC0
		if in.Rt&1 == 0 {
			taken = !taken
		}
		e.queueBranch(taken, in.Rt >= 2, in.Imm16)
	case cop0CO:
		switch in.Funct {
		case cop0FnTLBR:
			e.COP0.TLBR()
		case cop0FnTLBWI:
			// The write takes effect immediately here and is visible to
			// every fetch/translate from the next instruction onward —
			// the natural "deferred by one instruction" boundary for a
			// non-pipelined engine.
			e.COP0.TLBWI()
		case cop0FnTLBWR:
			e.COP0.TLBWR()
		case cop0FnTLBP:
			e.COP0.TLBP()
		case cop0FnERET:
			s.PC = e.COP0.ERET()
			s.PCJumped = true
			return ExecResult{Exc: cop0.Request{Kind: cop0.None}}
		default:
			return ExecResult{Exc: cop0.Request{Kind: cop0.ReservedInstruction}}
		}
	default:
		return ExecResult{Exc: cop0.Request{Kind: cop0.ReservedInstruction}}
	}
	return noExc
}
