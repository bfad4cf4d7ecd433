package cpu

// Timing names the micro-state chain shape an opcode uses, one per
// addressing-mode family the state table generator knows how to build.
// Names follow the chain-builder methods of the generator this table is
// grounded on (plp/pla/php/pha/jsr/brk/rti/rts plus the addressing-mode
// families), not the instruction mnemonic.
type Timing int

const (
	TimImplied Timing = iota
	TimAccumulator
	TimImmediate
	TimZeroPage
	TimZeroPageX
	TimZeroPageY
	TimZeroPageRMW
	TimZeroPageXRMW
	TimZeroPageSt
	TimZeroPageXSt
	TimZeroPageYSt
	TimAbsolute
	TimAbsoluteX
	TimAbsoluteY
	TimAbsoluteRMW
	TimAbsoluteXRMW
	TimAbsoluteSt
	TimAbsoluteXSt
	TimAbsoluteYSt
	TimAbsoluteJMP
	TimIndirect
	TimIndirectX
	TimIndirectY
	TimIndirectXSt
	TimIndirectYSt
	TimIndirectXRMW
	TimIndirectYRMW
	TimAbsoluteYRMW
	TimRelative
	TimPHA
	TimPHP
	TimPLA
	TimPLP
	TimJSR
	TimRTS
	TimRTI
	TimBRK
)

// readOp consumes the fetched operand byte (the final bus cycle of a Read
// or Immediate chain) and updates CPU state; it performs no bus activity
// itself.
type readOp func(c *CPU, v uint8)

// rmwOp computes the new value for a Read-Modify-Write chain; the chain
// itself performs the dummy write of the unmodified value before the real
// write of the returned byte.
type rmwOp func(c *CPU, v uint8) uint8

// storeOp computes the byte a Store-family chain writes to memory.
type storeOp func(c *CPU) uint8

// impliedOp runs entirely on internal registers, consuming no operand.
type impliedOp func(c *CPU)

// branchOp reports whether a relative branch is taken.
type branchOp func(c *CPU) bool

type opcodeDef struct {
	mnemonic string
	timing   Timing
	read     readOp
	rmw      rmwOp
	store    storeOp
	implied  impliedOp
	branch   branchOp
	illegal  bool
}

var opcodeTable [256]opcodeDef

func rd(name string, t Timing, f readOp) opcodeDef { return opcodeDef{mnemonic: name, timing: t, read: f} }
func wr(name string, t Timing, f storeOp) opcodeDef {
	return opcodeDef{mnemonic: name, timing: t, store: f}
}
func rw(name string, t Timing, f rmwOp) opcodeDef { return opcodeDef{mnemonic: name, timing: t, rmw: f} }
func im(name string, t Timing, f impliedOp) opcodeDef {
	return opcodeDef{mnemonic: name, timing: t, implied: f}
}
func br(name string, f branchOp) opcodeDef { return opcodeDef{mnemonic: name, timing: TimRelative, branch: f} }

func illegal(d opcodeDef) opcodeDef { d.illegal = true; return d }

func init() {
	t := &opcodeTable

	// --- load/store family ---
	lda := func(c *CPU, v uint8) { c.lda(v) }
	ldx := func(c *CPU, v uint8) { c.ldx(v) }
	ldy := func(c *CPU, v uint8) { c.ldy(v) }
	sta := func(c *CPU) uint8 { return c.A }
	stx := func(c *CPU) uint8 { return c.X }
	sty := func(c *CPU) uint8 { return c.Y }
	sax := func(c *CPU) uint8 { return c.A & c.X }

	t[0xA9] = rd("LDA", TimImmediate, lda)
	t[0xA5] = rd("LDA", TimZeroPage, lda)
	t[0xB5] = rd("LDA", TimZeroPageX, lda)
	t[0xAD] = rd("LDA", TimAbsolute, lda)
	t[0xBD] = rd("LDA", TimAbsoluteX, lda)
	t[0xB9] = rd("LDA", TimAbsoluteY, lda)
	t[0xA1] = rd("LDA", TimIndirectX, lda)
	t[0xB1] = rd("LDA", TimIndirectY, lda)

	t[0xA2] = rd("LDX", TimImmediate, ldx)
	t[0xA6] = rd("LDX", TimZeroPage, ldx)
	t[0xB6] = rd("LDX", TimZeroPageY, ldx)
	t[0xAE] = rd("LDX", TimAbsolute, ldx)
	t[0xBE] = rd("LDX", TimAbsoluteY, ldx)

	t[0xA0] = rd("LDY", TimImmediate, ldy)
	t[0xA4] = rd("LDY", TimZeroPage, ldy)
	t[0xB4] = rd("LDY", TimZeroPageX, ldy)
	t[0xAC] = rd("LDY", TimAbsolute, ldy)
	t[0xBC] = rd("LDY", TimAbsoluteX, ldy)

	t[0x85] = wr("STA", TimZeroPageSt, sta)
	t[0x95] = wr("STA", TimZeroPageXSt, sta)
	t[0x8D] = wr("STA", TimAbsoluteSt, sta)
	t[0x9D] = wr("STA", TimAbsoluteXSt, sta)
	t[0x99] = wr("STA", TimAbsoluteYSt, sta)
	t[0x81] = wr("STA", TimIndirectXSt, sta)
	t[0x91] = wr("STA", TimIndirectYSt, sta)

	t[0x86] = wr("STX", TimZeroPageSt, stx)
	t[0x96] = wr("STX", TimZeroPageYSt, stx)
	t[0x8E] = wr("STX", TimAbsoluteSt, stx)

	t[0x84] = wr("STY", TimZeroPageSt, sty)
	t[0x94] = wr("STY", TimZeroPageXSt, sty)
	t[0x8C] = wr("STY", TimAbsoluteSt, sty)

	t[0x87] = illegal(wr("SAX", TimZeroPageSt, sax))
	t[0x97] = illegal(wr("SAX", TimZeroPageYSt, sax))
	t[0x8F] = illegal(wr("SAX", TimAbsoluteSt, sax))
	t[0x83] = illegal(wr("SAX", TimIndirectXSt, sax))

	t[0xAB] = illegal(rd("LAX", TimImmediate, func(c *CPU, v uint8) { c.lax(v) }))
	t[0xA7] = illegal(rd("LAX", TimZeroPage, func(c *CPU, v uint8) { c.lax(v) }))
	t[0xB7] = illegal(rd("LAX", TimZeroPageY, func(c *CPU, v uint8) { c.lax(v) }))
	t[0xAF] = illegal(rd("LAX", TimAbsolute, func(c *CPU, v uint8) { c.lax(v) }))
	t[0xBF] = illegal(rd("LAX", TimAbsoluteY, func(c *CPU, v uint8) { c.lax(v) }))
	t[0xA3] = illegal(rd("LAX", TimIndirectX, func(c *CPU, v uint8) { c.lax(v) }))
	t[0xB3] = illegal(rd("LAX", TimIndirectY, func(c *CPU, v uint8) { c.lax(v) }))

	// --- transfer/implied family ---
	t[0xAA] = im("TAX", TimImplied, func(c *CPU) { c.X = c.A; c.setZN(c.X) })
	t[0xA8] = im("TAY", TimImplied, func(c *CPU) { c.Y = c.A; c.setZN(c.Y) })
	t[0xBA] = im("TSX", TimImplied, func(c *CPU) { c.X = c.SP; c.setZN(c.X) })
	t[0x8A] = im("TXA", TimImplied, func(c *CPU) { c.A = c.X; c.setZN(c.A) })
	t[0x9A] = im("TXS", TimImplied, func(c *CPU) { c.SP = c.X })
	t[0x98] = im("TYA", TimImplied, func(c *CPU) { c.A = c.Y; c.setZN(c.A) })
	t[0xE8] = im("INX", TimImplied, func(c *CPU) { c.X++; c.setZN(c.X) })
	t[0xC8] = im("INY", TimImplied, func(c *CPU) { c.Y++; c.setZN(c.Y) })
	t[0xCA] = im("DEX", TimImplied, func(c *CPU) { c.X--; c.setZN(c.X) })
	t[0x88] = im("DEY", TimImplied, func(c *CPU) { c.Y--; c.setZN(c.Y) })
	t[0x18] = im("CLC", TimImplied, func(c *CPU) { c.C = false })
	t[0x38] = im("SEC", TimImplied, func(c *CPU) { c.C = true })
	t[0x58] = im("CLI", TimImplied, func(c *CPU) { c.I = false })
	t[0x78] = im("SEI", TimImplied, func(c *CPU) { c.I = true })
	t[0xB8] = im("CLV", TimImplied, func(c *CPU) { c.V = false })
	t[0xD8] = im("CLD", TimImplied, func(c *CPU) { c.D = false })
	t[0xF8] = im("SED", TimImplied, func(c *CPU) { c.D = true })
	t[0xEA] = im("NOP", TimImplied, func(c *CPU) {})

	// illegal NOPs, various widths
	for _, op := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		t[op] = illegal(im("NOP", TimImplied, func(c *CPU) {}))
	}
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		t[op] = illegal(rd("NOP", TimImmediate, func(c *CPU, v uint8) {}))
	}
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		t[op] = illegal(rd("NOP", TimZeroPage, func(c *CPU, v uint8) {}))
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		t[op] = illegal(rd("NOP", TimZeroPageX, func(c *CPU, v uint8) {}))
	}
	t[0x0C] = illegal(rd("NOP", TimAbsolute, func(c *CPU, v uint8) {}))
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		t[op] = illegal(rd("NOP", TimAbsoluteX, func(c *CPU, v uint8) {}))
	}

	// --- ALU read family ---
	adc := func(c *CPU, v uint8) { c.adc(v) }
	sbc := func(c *CPU, v uint8) { c.sbc(v) }
	and := func(c *CPU, v uint8) { c.and(v) }
	eor := func(c *CPU, v uint8) { c.eor(v) }
	ora := func(c *CPU, v uint8) { c.ora(v) }
	cmp := func(c *CPU, v uint8) { c.cmp(v) }
	cpx := func(c *CPU, v uint8) { c.cpx(v) }
	cpy := func(c *CPU, v uint8) { c.cpy(v) }
	bit := func(c *CPU, v uint8) { c.bit(v) }

	alu := func(mnem string, opFn readOp, imm, zp, zpx, abs, absx, absy, indx, indy uint8) {
		t[imm] = rd(mnem, TimImmediate, opFn)
		t[zp] = rd(mnem, TimZeroPage, opFn)
		t[zpx] = rd(mnem, TimZeroPageX, opFn)
		t[abs] = rd(mnem, TimAbsolute, opFn)
		t[absx] = rd(mnem, TimAbsoluteX, opFn)
		t[absy] = rd(mnem, TimAbsoluteY, opFn)
		t[indx] = rd(mnem, TimIndirectX, opFn)
		t[indy] = rd(mnem, TimIndirectY, opFn)
	}
	alu("ADC", adc, 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71)
	alu("SBC", sbc, 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1)
	alu("AND", and, 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31)
	alu("EOR", eor, 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51)
	alu("ORA", ora, 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11)
	alu("CMP", cmp, 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1)
	t[0xEB] = illegal(rd("SBC", TimImmediate, sbc)) // duplicate of 0xE9

	t[0xE0] = rd("CPX", TimImmediate, cpx)
	t[0xE4] = rd("CPX", TimZeroPage, cpx)
	t[0xEC] = rd("CPX", TimAbsolute, cpx)
	t[0xC0] = rd("CPY", TimImmediate, cpy)
	t[0xC4] = rd("CPY", TimZeroPage, cpy)
	t[0xCC] = rd("CPY", TimAbsolute, cpy)

	t[0x24] = rd("BIT", TimZeroPage, bit)
	t[0x2C] = rd("BIT", TimAbsolute, bit)

	// --- RMW family ---
	asl := func(c *CPU, v uint8) uint8 { return c.asl(v) }
	lsr := func(c *CPU, v uint8) uint8 { return c.lsr(v) }
	rol := func(c *CPU, v uint8) uint8 { return c.rol(v) }
	ror := func(c *CPU, v uint8) uint8 { return c.ror(v) }
	inc := func(c *CPU, v uint8) uint8 { r := v + 1; c.setZN(r); return r }
	dec := func(c *CPU, v uint8) uint8 { r := v - 1; c.setZN(r); return r }

	rmwFamily := func(mnem string, opFn rmwOp, acc, zp, zpx, abs, absx uint8, hasAcc bool) {
		if hasAcc {
			t[acc] = rw(mnem, TimAccumulator, opFn)
		}
		t[zp] = rw(mnem, TimZeroPageRMW, opFn)
		t[zpx] = rw(mnem, TimZeroPageXRMW, opFn)
		t[abs] = rw(mnem, TimAbsoluteRMW, opFn)
		t[absx] = rw(mnem, TimAbsoluteXRMW, opFn)
	}
	rmwFamily("ASL", asl, 0x0A, 0x06, 0x16, 0x0E, 0x1E, true)
	rmwFamily("LSR", lsr, 0x4A, 0x46, 0x56, 0x4E, 0x5E, true)
	rmwFamily("ROL", rol, 0x2A, 0x26, 0x36, 0x2E, 0x3E, true)
	rmwFamily("ROR", ror, 0x6A, 0x66, 0x76, 0x6E, 0x7E, true)
	rmwFamily("INC", inc, 0, 0xE6, 0xF6, 0xEE, 0xFE, false)
	rmwFamily("DEC", dec, 0, 0xC6, 0xD6, 0xCE, 0xDE, false)

	// illegal RMW combos (SLO/RLA/SRE/RRA/DCP/ISC) over zp/zpx/abs/absx/absy/(zp,x)/(zp),y
	slo := func(c *CPU, v uint8) uint8 { r := c.asl(v); c.ora(r); return r }
	rla := func(c *CPU, v uint8) uint8 { r := c.rol(v); c.and(r); return r }
	sre := func(c *CPU, v uint8) uint8 { r := c.lsr(v); c.eor(r); return r }
	rra := func(c *CPU, v uint8) uint8 { r := c.ror(v); c.adc(r); return r }
	dcp := func(c *CPU, v uint8) uint8 { r := v - 1; c.cmp(r); return r }
	isc := func(c *CPU, v uint8) uint8 { r := v + 1; c.sbc(r); return r }

	illegalRMW := func(mnem string, opFn rmwOp, zp, zpx, abs, absx, absy, indx, indy uint8) {
		t[zp] = illegal(rw(mnem, TimZeroPageRMW, opFn))
		t[zpx] = illegal(rw(mnem, TimZeroPageXRMW, opFn))
		t[abs] = illegal(rw(mnem, TimAbsoluteRMW, opFn))
		t[absx] = illegal(rw(mnem, TimAbsoluteXRMW, opFn))
		t[absy] = illegal(rw(mnem, TimAbsoluteYRMW, opFn))
		t[indx] = illegal(rw(mnem, TimIndirectXRMW, opFn))
		t[indy] = illegal(rw(mnem, TimIndirectYRMW, opFn))
	}
	illegalRMW("SLO", slo, 0x07, 0x17, 0x0F, 0x1F, 0x1B, 0x03, 0x13)
	illegalRMW("RLA", rla, 0x27, 0x37, 0x2F, 0x3F, 0x3B, 0x23, 0x33)
	illegalRMW("SRE", sre, 0x47, 0x57, 0x4F, 0x5F, 0x5B, 0x43, 0x53)
	illegalRMW("RRA", rra, 0x67, 0x77, 0x6F, 0x7F, 0x7B, 0x63, 0x73)
	illegalRMW("DCP", dcp, 0xC7, 0xD7, 0xCF, 0xDF, 0xDB, 0xC3, 0xD3)
	illegalRMW("ISC", isc, 0xE7, 0xF7, 0xEF, 0xFF, 0xFB, 0xE3, 0xF3)

	// illegal immediate combos
	t[0x0B] = illegal(rd("ANC", TimImmediate, func(c *CPU, v uint8) { c.anc(v) }))
	t[0x2B] = illegal(rd("ANC", TimImmediate, func(c *CPU, v uint8) { c.anc(v) }))
	t[0x4B] = illegal(rd("ALR", TimImmediate, func(c *CPU, v uint8) { c.alr(v) }))
	t[0x6B] = illegal(rd("ARR", TimImmediate, func(c *CPU, v uint8) { c.arr(v) }))
	t[0xCB] = illegal(rd("AXS", TimImmediate, func(c *CPU, v uint8) { c.axs(v) }))
	t[0x8B] = illegal(rd("XAA", TimImmediate, func(c *CPU, v uint8) { c.xaa(v) }))

	// unstable high-byte-AND illegal stores, left as documented stubs
	t[0x9F] = illegal(wr("AHX", TimAbsoluteYSt, func(c *CPU) uint8 { return c.ahx() }))
	t[0x93] = illegal(wr("AHX", TimIndirectYSt, func(c *CPU) uint8 { return c.ahx() }))
	t[0x9E] = illegal(wr("SHX", TimAbsoluteYSt, func(c *CPU) uint8 { return c.shx() }))
	t[0x9C] = illegal(wr("SHY", TimAbsoluteXSt, func(c *CPU) uint8 { return c.shy() }))
	t[0x9B] = illegal(wr("TAS", TimAbsoluteYSt, func(c *CPU) uint8 { return c.tas() }))
	t[0xBB] = illegal(rd("LAS", TimAbsoluteY, func(c *CPU, v uint8) { c.las(v) }))

	// --- branches ---
	t[0x10] = br("BPL", func(c *CPU) bool { return !c.N })
	t[0x30] = br("BMI", func(c *CPU) bool { return c.N })
	t[0x50] = br("BVC", func(c *CPU) bool { return !c.V })
	t[0x70] = br("BVS", func(c *CPU) bool { return c.V })
	t[0x90] = br("BCC", func(c *CPU) bool { return !c.C })
	t[0xB0] = br("BCS", func(c *CPU) bool { return c.C })
	t[0xD0] = br("BNE", func(c *CPU) bool { return !c.Z })
	t[0xF0] = br("BEQ", func(c *CPU) bool { return c.Z })

	// --- stack / control-flow family ---
	t[0x48] = opcodeDef{mnemonic: "PHA", timing: TimPHA, store: func(c *CPU) uint8 { return c.A }}
	t[0x08] = opcodeDef{mnemonic: "PHP", timing: TimPHP, store: func(c *CPU) uint8 { return c.pushStatus(true) }}
	t[0x68] = opcodeDef{mnemonic: "PLA", timing: TimPLA, read: func(c *CPU, v uint8) { c.A = v; c.setZN(c.A) }}
	t[0x28] = opcodeDef{mnemonic: "PLP", timing: TimPLP, read: func(c *CPU, v uint8) { c.pullStatus(v) }}
	t[0x20] = opcodeDef{mnemonic: "JSR", timing: TimJSR}
	t[0x4C] = opcodeDef{mnemonic: "JMP", timing: TimAbsoluteJMP}
	t[0x6C] = opcodeDef{mnemonic: "JMP", timing: TimIndirect}
	t[0x60] = opcodeDef{mnemonic: "RTS", timing: TimRTS}
	t[0x40] = opcodeDef{mnemonic: "RTI", timing: TimRTI}
	t[0x00] = opcodeDef{mnemonic: "BRK", timing: TimBRK}

	// fill any remaining untouched slots (e.g. 0x02 family JAM/KIL opcodes)
	// as implied-family traps that halt the CPU, matching real silicon.
	for i := range t {
		if t[i].mnemonic == "" {
			t[i] = illegal(im("JAM", TimImplied, func(c *CPU) { c.Halt = true }))
		}
	}
}
