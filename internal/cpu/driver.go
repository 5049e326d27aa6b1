package cpu

import (
	"iquecore/internal/bus"
	"iquecore/internal/cop0"
)

// Ticker is implemented by any sub-device the driver advances once per
// step, after the instruction has executed.
type Ticker interface {
	Tick()
}

// InterruptSource reports whether the bus currently has an interrupt
// pending, gating the driver's Interrupt check.
type InterruptSource interface {
	RaiseInterrupt() bool
}

// Driver ties an Engine to the bus and COP0's exception dispatcher and
// implements the fetch-decode-execute step loop, generalized with the
// delay-slot drain, branch-likely suppression, and exception-priority
// dispatch the R4300i needs.
type Driver struct {
	Engine    *Engine
	COP0      *cop0.COP0
	Bus       *bus.Bus
	Interrupt InterruptSource
	Tickers   []Ticker

	// Hooks is an address-keyed breakpoint table the CLI uses to snapshot
	// state (kernel.bin/ram.bin/sysapp.bin dumps) without the core knowing
	// anything about files; a hook fires once per step that PC equals its
	// key, before that instruction executes.
	Hooks map[uint64]func(*Driver)

	// OnSecureTrap, if set, runs after a Trap exception (secure exit) has
	// been dispatched — the CLI's dump-<k0>.bin hook lives here.
	OnSecureTrap func(*Driver)

	pending        cop0.Request
	pendingPC      uint64
	pendingInDelay bool
}

// NewDriver wires an Engine (sharing its State/COP0/Mem) to the devices the
// step loop ticks every cycle.
func NewDriver(eng *Engine, c *cop0.COP0, b *bus.Bus, irq InterruptSource, tickers ...Ticker) *Driver {
	return &Driver{Engine: eng, COP0: c, Bus: b, Interrupt: irq, Tickers: tickers}
}

// AddHook registers fn to run once whenever PC equals addr, before that
// step's instruction executes.
func (d *Driver) AddHook(addr uint64, fn func(*Driver)) {
	if d.Hooks == nil {
		d.Hooks = make(map[uint64]func(*Driver))
	}
	d.Hooks[addr] = fn
}

// RaiseColdReset arms a ColdReset exception for the next Step call — the
// only way to start (or restart) the machine.
func (d *Driver) RaiseColdReset() {
	d.pending = cop0.Request{Kind: cop0.ColdReset}
}

// Step executes exactly one pass of the loop: run one instruction (if not
// halted), tick every sub-device, then dispatch the single
// highest-priority pending exception.
func (d *Driver) Step() {
	s := d.Engine.State

	if s.Running && !s.Halted {
		if fn, ok := d.Hooks[s.PC]; ok {
			fn(d)
		}

		savedCOC0, savedCOC1 := s.COC0, s.COC1
		faultPC, faultInDelay := s.PC, s.Delay.Kind != DelayNone

		d.stepInstruction()

		s.COC0, s.COC1 = savedCOC0, savedCOC1

		if d.Interrupt != nil && d.Interrupt.RaiseInterrupt() &&
			d.COP0.Status().IE && !d.COP0.Status().EXL && !d.COP0.Status().ERL {
			d.raiseAt(cop0.Request{Kind: cop0.Interrupt}, faultPC, faultInDelay)
		}

		if d.Bus.MI != nil && d.Bus.MI.SecureExitPending() {
			d.Bus.MI.ConsumeSecureExit()
			d.raiseAt(cop0.Request{Kind: cop0.Trap}, faultPC, faultInDelay)
		}
	}

	for _, t := range d.Tickers {
		t.Tick()
	}

	d.dispatchPending()

	// TLB shutdown (multiple simultaneous matches) is a clean stop, not a
	// crash.
	if d.COP0.Status().TS {
		s.Halted = true
	}
}

// stepInstruction implements items 2.b/2.c: fetch (draining a queued delay
// action instead of the normal PC+4 advance when one is pending), decode,
// execute.
func (d *Driver) stepInstruction() {
	s := d.Engine.State

	pc := s.PC
	inDelaySlot := s.Delay.Kind != DelayNone

	word, af := d.Bus.ReadU32(pc, d.Engine.Log)
	if af != nil {
		d.raiseFetchFault(af, pc, inDelaySlot)
		drain := s.Delay
		s.Delay = PendingDelay{}
		d.advanceFrom(pc, drain, inDelaySlot)
		return
	}

	suppressed := inDelaySlot && s.Delay.Suppressed
	drain := s.Delay
	s.Delay = PendingDelay{}

	if !suppressed {
		in := Decode(word)
		result := d.Engine.Execute(in)
		if result.Exc.Kind != cop0.None {
			d.raiseAt(result.Exc, pc, inDelaySlot)
		}
	}

	if s.PCJumped {
		s.PCJumped = false
		return
	}
	d.advanceFrom(pc, drain, inDelaySlot)
}

// advanceFrom sets the next PC: drains a queued delay action if one was
// present at the top of this step, otherwise falls through to PC+4. A
// queued action is only consumed once.
func (d *Driver) advanceFrom(pc uint64, drain PendingDelay, hadDelay bool) {
	s := d.Engine.State
	if !hadDelay {
		s.PC = pc + 4
		return
	}
	switch drain.Kind {
	case DelayAbsolute, DelayPCBase, DelayRegister:
		s.PC = drain.Target
	default:
		s.PC = pc + 4
	}
}

func (d *Driver) raiseFetchFault(af *bus.AccessFault, pc uint64, inDelaySlot bool) {
	req := af.ToRequest()
	if req.Kind == cop0.AddressErrorRead {
		// fetch-path address errors are reported as BusErrorFetch, not the
		// load/store AddressErrorRead path.
		req.Kind = cop0.BusErrorFetch
	}
	d.raiseAt(req, pc, inDelaySlot)
}

// raiseAt keeps only the highest-priority request queued for this step —
// only one exception is serviced per step — recording the faulting
// instruction's own PC and delay-slot status for Dispatch's EPC/BD
// adjustment — never the post-advance PC the step loop computes later.
func (d *Driver) raiseAt(req cop0.Request, pc uint64, inDelaySlot bool) {
	if cop0.Highest(d.pending, req) == req || d.pending.Kind == cop0.None {
		d.pendingPC = pc
		d.pendingInDelay = inDelaySlot
	}
	d.pending = cop0.Highest(d.pending, req)
}

func (d *Driver) dispatchPending() {
	req := d.pending
	pc, inDelaySlot := d.pendingPC, d.pendingInDelay
	d.pending = cop0.Request{Kind: cop0.None}
	if req.Kind == cop0.None {
		return
	}
	s := d.Engine.State
	newPC, handled := d.COP0.Dispatch(req, pc, inDelaySlot)
	if handled {
		if req.Kind == cop0.ColdReset {
			*s = State{Running: true}
		}
		s.PC = newPC
		s.Delay = PendingDelay{}
		if req.Kind == cop0.Trap && d.OnSecureTrap != nil {
			d.OnSecureTrap(d)
		}
	}
}
