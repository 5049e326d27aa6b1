package cpu

// DelayKind tags how a pending delay-slot action resolves its target.
type DelayKind uint8

const (
	DelayNone DelayKind = iota
	DelayAbsolute        // J/JAL: target is an absolute word address
	DelayPCBase          // branches: target is PC-relative, already resolved
	DelayRegister        // JR/JALR: target was read from a GPR at decode time
)

// PendingDelay is queued by a branch/jump at decode-execute time
// and drained exactly one step later.
type PendingDelay struct {
	Kind       DelayKind
	Target     uint64
	Suppressed bool // branch-likely: condition was false, slot's effects are dropped
}

// State is the R4300i-class register file: 32 64-bit GPRs, HI/LO, a
// 64-bit PC, the load-linked bit, and 32 FP registers (moved to and from
// but never computed on).
type State struct {
	GPR [32]uint64
	HI  uint64
	LO  uint64
	PC  uint64

	LLBit bool

	FP [32]uint64

	// COC0/COC1 are the COP0/COP1 branch condition codes BC0F/BC0T/BC1F/
	// BC1T test; the step loop snapshots them before the instruction
	// executes and restores that snapshot afterward, so a branch always
	// observes the pre-instruction condition.
	COC0 bool
	COC1 bool

	Delay PendingDelay

	// PCJumped is set by instructions that assign PC directly instead of
	// queuing a PendingDelay (currently only ERET); driver.go checks and
	// clears it to skip the normal PC+4/delay-drain advance for that step.
	PCJumped bool

	Running bool
	Halted  bool
}

// New returns a State with GPR[0] permanently wired to zero (enforced by
// SetGPR, never mutated here) and Running set, matching a machine that
// starts executing at the next Step call.
func New() *State {
	return &State{Running: true}
}

// GetGPR reads general register i; register 0 is hardwired to zero and,
// per this variant's reset/boot behaviour, register 28 (GP) reads zero
// too even though writes to it are retained — a documented silicon quirk
// reproduced rather than "corrected".
func (s *State) GetGPR(i uint8) uint64 {
	if i == 0 || i == 28 {
		return 0
	}
	return s.GPR[i]
}

// SetGPR writes general register i; writes to register 0 are discarded.
func (s *State) SetGPR(i uint8, v uint64) {
	if i == 0 {
		return
	}
	s.GPR[i] = v
}
