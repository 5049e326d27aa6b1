// Package cpu implements the R4300i-class pipeline: instruction decode,
// the execution engine, and the fetch/decode/execute/delay-slot/exception
// step loop.
package cpu

// Format tags the decoded shape of a 32-bit instruction word.
type Format uint8

const (
	FormatNone Format = iota
	FormatR
	FormatI
	FormatJ
	FormatCOP0
	FormatCOP1Move
	FormatFPBranch
	FormatFPReg
	FormatFPCompare
)

// Instruction is the decoded, directly-dispatchable form of one 32-bit
// word. Only the fields relevant to its Format are populated.
type Instruction struct {
	Format Format
	Raw    uint32

	Opcode uint8 // primary 6-bit opcode
	Rs     uint8
	Rt     uint8
	Rd     uint8
	Shamt  uint8
	Funct  uint8
	Imm16  uint16
	Target uint32 // 26-bit jump target

	// COP1 sub-fields.
	FmtField uint8 // the "format" slot (S/D/W/L or BC ndtf)
	Fd       uint8
}

const (
	opSPECIAL = 0x00
	opREGIMM  = 0x01
	opJ       = 0x02
	opJAL     = 0x03
	opCOP0    = 0x10
	opCOP1    = 0x11
)

// Decode dispatches on the primary 6-bit opcode. Unknown/unhandled
// encodings decode to FormatNone, which the execution engine turns into a
// ReservedInstruction exception.
func Decode(word uint32) Instruction {
	in := Instruction{
		Raw:    word,
		Opcode: uint8((word >> 26) & 0x3F),
		Rs:     uint8((word >> 21) & 0x1F),
		Rt:     uint8((word >> 16) & 0x1F),
		Rd:     uint8((word >> 11) & 0x1F),
		Shamt:  uint8((word >> 6) & 0x1F),
		Funct:  uint8(word & 0x3F),
		Imm16:  uint16(word & 0xFFFF),
		Target: word & 0x3FFFFFF,
	}

	switch in.Opcode {
	case opSPECIAL:
		in.Format = FormatR
	case opREGIMM:
		in.Format = FormatI
	case opJ, opJAL:
		in.Format = FormatJ
	case opCOP0:
		in.Format = FormatCOP0
		in.FmtField = in.Rs // "format" slot for COP0 is the rs field (MF/MT/BC/CO)
	case opCOP1:
		in.FmtField = in.Rs
		switch {
		case in.FmtField == 0x08: // BC1
			in.Format = FormatFPBranch
		case in.FmtField == 0x00 || in.FmtField == 0x02 || in.FmtField == 0x04 || in.FmtField == 0x06:
			// MFC1/CFC1/MTC1/CTC1
			in.Format = FormatCOP1Move
		case in.FmtField == 0x10 || in.FmtField == 0x11 || in.FmtField == 0x14 || in.FmtField == 0x15:
			// S/D/W/L FP-R operations; legality filter lives in execute.go.
			if in.Funct&0x30 == 0x30 {
				in.Format = FormatFPCompare
			} else {
				in.Format = FormatFPReg
			}
			in.Fd = uint8((word >> 6) & 0x1F)
		default:
			in.Format = FormatNone
		}
	default:
		in.Format = FormatI
	}
	return in
}
