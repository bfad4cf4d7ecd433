// Package cpu implements a cycle-accurate MOS 6502 (2A03) core as a
// micro-state interpreter: each Tick call executes exactly one CPU cycle's
// worth of bus activity, driven by a per-opcode chain of closures built
// once at process start. The chain-builder shapes (by addressing-mode
// family) are ported from the state-table generator at
// original_source/nes/src/cpu/cpu_generator.rs; the ALU semantics they
// invoke live in alu.go, ported from original_source/src/nes/cpu/mod.rs.
package cpu

import (
	"gones/internal/interrupt"

	"github.com/golang/glog"
)

// Bus is the memory-mapped interface the CPU drives; internal/bus.Bus
// satisfies it, decoding CPU-space reads/writes to RAM, PPU registers,
// APU/input registers, and the cartridge mapper.
type Bus interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, v uint8)
}

type intKind int

const (
	intNone intKind = iota
	intIRQ
	intNMI
	intReset
)

type dmaPhase int

const (
	dmaIdle dmaPhase = iota
	dmaAlign
	dmaWait
	dmaGet
	dmaPut
)

// microStep performs one CPU cycle's worth of bus activity for the
// instruction currently executing.
type microStep func(c *CPU, bus Bus)

// CPU holds all per-cycle state: the architectural registers, the scratch
// latches a real 6502 exposes as internal bus/address-hold registers
// (AB/T/pageCrossed), and the micro-state cursor into the current
// instruction's chain.
type CPU struct {
	A, X, Y, SP uint8
	PC          uint16
	N, V, D, I, Z, C bool

	AB          uint16 // address bus / effective-address latch
	T           uint8  // low-byte / pointer scratch
	pageCrossed bool
	skipHold    uint16 // corrected effective address, held across a page-cross fixup cycle

	Halt bool

	opcode uint8
	chain  []microStep
	idx    int
	skip   int

	lines     *interrupt.Lines
	cachedIRQ bool
	cachedNMI bool
	takeIRQ   bool
	pendKind  intKind

	dmaActive bool
	dmaPhase  dmaPhase
	dmaPage   uint8
	dmaAddr   uint8
	dmaLatch  uint8

	totalCycles uint64
}

// New creates a CPU wired to the shared interrupt lines. Call Reset before
// the first Tick to establish the power-on state.
func New(lines *interrupt.Lines) *CPU {
	return &CPU{lines: lines}
}

// Reset performs a power-on/reset register load, reading the reset vector
// directly rather than going through the cycle-stepped interrupt sequence.
// Use this to establish initial state before the first Tick; a mid-run
// reset request (interrupt.Lines.RequestReset) instead goes through the
// cycle-accurate dummy-push sequence in beginInterrupt.
func (c *CPU) Reset(bus Bus) {
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.N, c.V, c.D, c.Z, c.C = false, false, false, false, false
	c.I = true
	lo := bus.CPURead(0xFFFC)
	hi := bus.CPURead(0xFFFD)
	c.PC = uint16(hi)<<8 | uint16(lo)
	c.chain = nil
	c.idx = 0
	c.Halt = false
}

// TotalCycles returns the number of cycles ticked since the CPU was
// created; Reset does not clear it.
func (c *CPU) TotalCycles() uint64 { return c.totalCycles }

// TriggerOAMDMA begins a 513/514-cycle OAM DMA transfer from the given CPU
// page, stealing cycles from instruction execution exactly as on hardware:
// the source byte is read from CPU space and written through $2004
// (OAMDATA), so OAMADDR auto-increment does the rest.
func (c *CPU) TriggerOAMDMA(page uint8) {
	c.dmaActive = true
	c.dmaPhase = dmaAlign
	c.dmaPage = page
	c.dmaAddr = 0
}

// Tick executes one CPU cycle against bus.
func (c *CPU) Tick(bus Bus) {
	defer func() { c.totalCycles++ }()

	if c.Halt {
		return
	}
	if c.dmaActive {
		c.tickDMA(bus)
		return
	}
	if c.chain == nil {
		c.fetch(bus)
		return
	}

	step := c.chain[c.idx]
	step(c, bus)

	c.idx += 1 + c.skip
	c.skip = 0
	if c.idx >= len(c.chain) {
		c.chain = nil
	}
}

func (c *CPU) tickDMA(bus Bus) {
	switch c.dmaPhase {
	case dmaAlign:
		if c.totalCycles%2 == 1 {
			c.dmaPhase = dmaWait
			return
		}
		c.dmaPhase = dmaGet
	case dmaWait:
		c.dmaPhase = dmaGet
	case dmaGet:
		c.dmaLatch = bus.CPURead(uint16(c.dmaPage)<<8 | uint16(c.dmaAddr))
		c.dmaPhase = dmaPut
	case dmaPut:
		bus.CPUWrite(0x2004, c.dmaLatch)
		c.dmaAddr++
		if c.dmaAddr == 0 {
			c.dmaActive = false
		} else {
			c.dmaPhase = dmaGet
		}
	}
}

// fetch runs the cycle that would otherwise be the opcode-fetch cycle:
// it caches and polls the interrupt lines first (the cache point every
// instruction boundary samples), then either begins a hardware interrupt
// sequence or fetches and dispatches the next opcode.
func (c *CPU) fetch(bus Bus) {
	c.cacheInterrupts()

	if c.lines.Reset {
		c.lines.Reset = false
		c.beginInterrupt(bus, intReset)
		return
	}

	c.pollInterrupts()
	if c.takeIRQ {
		c.takeIRQ = false
		c.beginInterrupt(bus, c.pendKind)
		return
	}

	opcode := bus.CPURead(c.PC)
	c.PC++
	c.opcode = opcode
	def := opcodeTable[opcode]
	if def.timing == TimBRK {
		c.beginBRK(bus)
		return
	}
	c.chain = buildChain(def)
	c.idx = 0
	if len(c.chain) == 0 {
		// implied/accumulator single-byte ops still need their one
		// extra internal cycle; buildChain always supplies it, so an
		// empty chain here means an opcode table gap.
		glog.Fatalf("cpu: opcode %#02x produced an empty micro-state chain at PC=%#04x", opcode, c.PC-1)
	}
}

// cacheInterrupts samples the shared IRQ/NMI lines once per instruction
// boundary, so the cached values never change mid-instruction. fetch also
// reads lines.Reset directly, and beginBRK checks and clears lines.NMI for
// the BRK hijack.
func (c *CPU) cacheInterrupts() {
	irq, nmi := c.lines.Sample()
	c.cachedIRQ = irq
	c.cachedNMI = nmi
}

func (c *CPU) pollInterrupts() {
	c.takeIRQ = c.cachedNMI || (c.cachedIRQ && !c.I)
	if c.cachedNMI {
		c.pendKind = intNMI
	} else {
		c.pendKind = intIRQ
	}
}

func vectorFor(kind intKind) uint16 {
	switch kind {
	case intNMI:
		return 0xFFFA
	case intReset:
		return 0xFFFC
	default:
		return 0xFFFE
	}
}

// beginInterrupt lays out the 7-cycle hardware interrupt sequence (IRQ,
// NMI, or RESET), the same 7-cycle shape beginBRK uses for the software
// case: the first of the 7 cycles is this call itself (a dummy PC read,
// standing in for the opcode fetch a real interrupt sequence discards);
// the remaining 6 are queued as a chain, the first of which is a second
// dummy read (the padding byte BRK gets from its own operand byte, which
// a hardware interrupt has no operand to supply). During RESET the three
// stack "pushes" are reads instead of writes, per real 6502 behavior: the
// stack pointer still walks down by 3 but memory is untouched.
func (c *CPU) beginInterrupt(bus Bus, kind intKind) {
	bus.CPURead(c.PC) // dummy

	isReset := kind == intReset
	vector := vectorFor(kind)

	pushOrRead := func(val uint8) microStep {
		return func(c *CPU, bus Bus) {
			addr := 0x0100 + uint16(c.SP)
			if isReset {
				bus.CPURead(addr)
			} else {
				bus.CPUWrite(addr, val)
			}
			c.SP--
		}
	}

	c.chain = []microStep{
		func(c *CPU, bus Bus) { bus.CPURead(c.PC) }, // second dummy/padding read
		func(c *CPU, bus Bus) { pushOrRead(uint8(c.PC >> 8))(c, bus) },
		func(c *CPU, bus Bus) { pushOrRead(uint8(c.PC))(c, bus) },
		func(c *CPU, bus Bus) { pushOrRead(c.pushStatus(false))(c, bus); c.I = true },
		func(c *CPU, bus Bus) { c.T = bus.CPURead(vector) },
		func(c *CPU, bus Bus) {
			hi := bus.CPURead(vector + 1)
			c.PC = uint16(hi)<<8 | uint16(c.T)
		},
	}
	c.idx = 0
}

// beginBRK lays out the software BRK sequence: a padding byte is consumed
// (BRK is formally a 2-byte instruction, though the second byte is
// ignored), the pushed status has the B flag set, and - matching the
// documented "BRK hijacking" quirk - an NMI edge pending at the moment the
// vector is fetched redirects BRK into the NMI vector while still pushing
// B=1.
func (c *CPU) beginBRK(bus Bus) {
	c.chain = []microStep{
		func(c *CPU, bus Bus) { bus.CPURead(c.PC); c.PC++ },
		func(c *CPU, bus Bus) { bus.CPUWrite(0x0100+uint16(c.SP), uint8(c.PC>>8)); c.SP-- },
		func(c *CPU, bus Bus) { bus.CPUWrite(0x0100+uint16(c.SP), uint8(c.PC)); c.SP-- },
		func(c *CPU, bus Bus) {
			bus.CPUWrite(0x0100+uint16(c.SP), c.pushStatus(true))
			c.SP--
			c.I = true
		},
		func(c *CPU, bus Bus) {
			vector := uint16(0xFFFE)
			if c.lines.NMI {
				c.lines.NMI = false
				vector = 0xFFFA
			}
			c.AB = vector
			c.T = bus.CPURead(vector)
		},
		func(c *CPU, bus Bus) {
			hi := bus.CPURead(c.AB + 1)
			c.PC = uint16(hi)<<8 | uint16(c.T)
		},
	}
	c.idx = 0
}
