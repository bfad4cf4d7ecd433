// Package emulator is the single owner of the CPU, PPU, APU, input state,
// cartridge, and shared interrupt lines. It replaces the teacher's
// callback-wired bus.Bus (PPU held an nmiCallback/frameCompleteCallback
// into the Bus, which in turn owned the CPU) with direct ownership: the
// emulator ticks the PPU three times per CPU cycle and lets the CPU and
// PPU talk to interrupt.Lines and the cartridge Mapper directly, matching
// the design note in the CORE's addressing of cross-component wiring.
package emulator

import (
	"gones/internal/apu"
	"gones/internal/bus"
	"gones/internal/cartridge"
	"gones/internal/cpu"
	"gones/internal/input"
	"gones/internal/interrupt"
	"gones/internal/ppu"

	"github.com/golang/glog"
)

// CyclesPerFrameNTSC is the nominal CPU-cycle length of one NTSC frame
// (89342 PPU cycles / 3). PAL's frame is a different length; callers
// stepping frame-at-a-time should drive StepFrame, which tracks actual
// PPU frame-ready edges rather than a fixed cycle count.
const CyclesPerFrameNTSC = 29780

type Emulator struct {
	CPU   *cpu.CPU
	PPU   *ppu.PPU
	APU   *apu.APU
	Input *input.InputState
	Cart  *cartridge.Cartridge
	Bus   *bus.Bus
	Lines *interrupt.Lines

	cycles     uint64
	haltLogged bool
}

// New builds an emulator around an already-loaded cartridge.
func New(cart *cartridge.Cartridge, region ppu.Region) *Emulator {
	lines := &interrupt.Lines{}
	p := ppu.New(lines)
	p.Region = region
	p.AttachMapper(cart.Mapper())
	a := apu.New()
	in := input.NewInputState()

	c := cpu.New(lines)
	b := bus.New(p, a, in, cart, c)

	e := &Emulator{CPU: c, PPU: p, APU: a, Input: in, Cart: cart, Bus: b, Lines: lines}
	e.Reset()
	return e
}

func (e *Emulator) Reset() {
	e.CPU.Reset(e.Bus)
	e.PPU.Reset()
	e.APU.Reset()
	e.Input.Reset()
	e.cycles = 0
	e.haltLogged = false
}

// Tick advances the system by one CPU cycle, ticking the PPU three times
// first (matching the NES's 3:1 PPU:CPU clock ratio) so that a PPU
// register side effect from this cycle's CPU access is visible to the CPU
// on the same cycle it occurs, as on real hardware.
func (e *Emulator) Tick() {
	e.PPU.Tick()
	e.PPU.Tick()
	e.PPU.Tick()
	e.CPU.Tick(e.Bus)
	e.cycles++

	// Halt is an observable CPU state, not an error condition (a KIL/JAM
	// opcode trap is a valid program outcome); log the transition once so
	// callers driving Tick in a loop don't flood the log for the rest of
	// the run.
	if e.CPU.Halt && !e.haltLogged {
		e.haltLogged = true
		glog.Infof("cpu: halted (illegal opcode trap) at cycle %d", e.cycles)
	}
}

// StepFrame runs CPU cycles until the PPU has completed one full frame.
func (e *Emulator) StepFrame() {
	e.PPU.FrameReady = false
	for !e.PPU.FrameReady {
		e.Tick()
	}
}

// Cycles returns the total number of CPU cycles ticked since the last Reset.
func (e *Emulator) Cycles() uint64 { return e.cycles }
