package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"iquecore/internal/bus"
	"iquecore/internal/cop0"
	"iquecore/internal/cpu"
	"iquecore/internal/mmio"
	"iquecore/internal/pi"
	"iquecore/internal/virage"
)

// Artifact trigger addresses: PC values at which a debug artifact is
// dumped to the working directory.
const (
	kernelDumpPC = 0x9FC00000
	ramDumpPC    = 0x80002000
	sysappDumpPC = 0x9FC02458

	sysappDumpSize = 0x1C000
	k0DumpSize     = 256
)

// miInterrupt folds MI's two independent pending/mask pairs (IntrPending and
// the extended EIntr set PI's DMA/flash completions feed) into the single
// gating signal Driver.Step consults before raising an Interrupt exception.
type miInterrupt struct{ mi *mmio.MI }

func (m miInterrupt) RaiseInterrupt() bool {
	return m.mi.RaiseInterrupt() || m.mi.RaiseExtendedInterrupt()
}

func run(paths imagePaths) error {
	logger, err := newLogger(paths.logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	bootrom, err := loadImage("bootrom", paths.bootrom)
	if err != nil {
		return err
	}
	v0img, err := loadImage("virage0", paths.virage0)
	if err != nil {
		return err
	}
	v1img, err := loadImage("virage1", paths.virage1)
	if err != nil {
		return err
	}
	v2img, err := loadImage("virage2", paths.virage2)
	if err != nil {
		return err
	}
	nandImg, err := loadImage("nand", paths.nand)
	if err != nil {
		return err
	}
	spareImg, err := loadImage("spare", paths.spare)
	if err != nil {
		return err
	}

	c := cop0.New(0)
	p := pi.New(nandImg, spareImg)
	v := virage.New()
	if err := v.LoadBootROM(bootrom); err != nil {
		return fmt.Errorf("iquecore: %w", err)
	}
	v.V0.LoadFuses(v0img)
	v.V1.LoadFuses(v1img)
	v.V2.LoadFuses(v2img)

	b := bus.New(c, p, v)
	b.MI.AddSource(mmio.IntrBitVI, b.VI)
	b.MI.AddExtendedSource(0, b.PI)

	eng := &cpu.Engine{State: cpu.New(), COP0: c, Mem: b, Log: logger}
	d := cpu.NewDriver(eng, c, b, miInterrupt{b.MI}, c, b.MI, b.VI, b.USB[0], b.USB[1])

	registerArtifactHooks(d, b)

	d.RaiseColdReset()
	d.Step()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	start := time.Now()
	s := eng.State
	logger.Infow("running", "bootVector", fmt.Sprintf("%#x", s.PC))

stepLoop:
	for s.Running && !s.Halted {
		select {
		case <-sigCh:
			logger.Info("signal received, stopping")
			break stepLoop
		default:
		}

		if paths.trace {
			traceStep(logger, eng, b)
		}
		d.Step()
	}

	logger.Infow("halted", "elapsed", time.Since(start).String())
	return nil
}

// traceStep logs each instruction's PC and decoded form when --trace is set.
func traceStep(logger *zap.SugaredLogger, eng *cpu.Engine, b *bus.Bus) {
	s := eng.State
	word, af := b.ReadU32(s.PC, logger)
	if af != nil {
		return
	}
	in := cpu.Decode(word)
	logger.Debugw("step", "pc", fmt.Sprintf("%#x", s.PC), "raw", fmt.Sprintf("%#08x", in.Raw),
		"opcode", in.Opcode, "rs", in.Rs, "rt", in.Rt, "rd", in.Rd, "funct", in.Funct)
}

// registerArtifactHooks wires the four debug-dump file artifacts onto
// Driver's address-keyed hook table and its secure-trap callback.
func registerArtifactHooks(d *cpu.Driver, b *bus.Bus) {
	kernelDumped := false
	d.AddHook(kernelDumpPC, func(d *cpu.Driver) {
		if kernelDumped {
			return
		}
		kernelDumped = true
		dumpFile("kernel.bin", b.Virage.BootRAM())
	})

	d.AddHook(ramDumpPC, func(d *cpu.Driver) {
		dumpFile("ram.bin", b.RAM)
	})

	d.AddHook(sysappDumpPC, func(d *cpu.Driver) {
		s := d.Engine.State
		sp := s.GetGPR(29)
		ptr, af := b.ReadU32(sp+0x10, nil)
		if af != nil {
			return
		}
		data := dumpVirtualRange(b, uint64(ptr), sysappDumpSize)
		dumpFile("sysapp.bin", data)
	})

	d.OnSecureTrap = func(d *cpu.Driver) {
		s := d.Engine.State
		k0 := s.GetGPR(26)
		if k0 == 0 {
			return
		}
		data := dumpVirtualRange(b, k0, k0DumpSize)
		dumpFile(fmt.Sprintf("dump-%x.bin", k0), data)
	}
}

// dumpVirtualRange reads n bytes starting at vaddr through the bus's typed
// access path, one byte at a time; a faulting byte truncates the dump
// rather than aborting it, since these are best-effort debug artifacts.
func dumpVirtualRange(b *bus.Bus, vaddr uint64, n int) []byte {
	out := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		v, af := b.ReadU8(vaddr+uint64(i), nil)
		if af != nil {
			break
		}
		out = append(out, v)
	}
	return out
}

func dumpFile(name string, data []byte) {
	_ = os.WriteFile(name, data, 0o644)
}
