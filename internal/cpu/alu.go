package cpu

// ALU and register-transfer helpers. Semantics are ported from the 6502
// core of original_source/src/nes/cpu/mod.rs, generalized off the Rc/RefCell
// single-struct shape into plain methods on *CPU.

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&0x80 != 0
}

func (c *CPU) adc(v uint8) {
	carry := uint16(0)
	if c.C {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	result := uint8(sum)
	c.V = (c.A^v)&0x80 == 0 && (c.A^result)&0x80 != 0
	c.C = sum > 0xFF
	c.A = result
	c.setZN(c.A)
}

func (c *CPU) sbc(v uint8) {
	c.adc(v ^ 0xFF)
}

func (c *CPU) and(v uint8) {
	c.A &= v
	c.setZN(c.A)
}

func (c *CPU) eor(v uint8) {
	c.A ^= v
	c.setZN(c.A)
}

func (c *CPU) ora(v uint8) {
	c.A |= v
	c.setZN(c.A)
}

func (c *CPU) asl(v uint8) uint8 {
	c.C = v&0x80 != 0
	r := v << 1
	c.setZN(r)
	return r
}

func (c *CPU) lsr(v uint8) uint8 {
	c.C = v&0x01 != 0
	r := v >> 1
	c.setZN(r)
	return r
}

func (c *CPU) rol(v uint8) uint8 {
	oldC := uint8(0)
	if c.C {
		oldC = 1
	}
	c.C = v&0x80 != 0
	r := (v << 1) | oldC
	c.setZN(r)
	return r
}

func (c *CPU) ror(v uint8) uint8 {
	oldC := uint8(0)
	if c.C {
		oldC = 0x80
	}
	c.C = v&0x01 != 0
	r := (v >> 1) | oldC
	c.setZN(r)
	return r
}

func (c *CPU) compare(reg, v uint8) {
	c.C = reg >= v
	r := reg - v
	c.setZN(r)
}

func (c *CPU) cmp(v uint8) { c.compare(c.A, v) }
func (c *CPU) cpx(v uint8) { c.compare(c.X, v) }
func (c *CPU) cpy(v uint8) { c.compare(c.Y, v) }

func (c *CPU) bit(v uint8) {
	c.Z = c.A&v == 0
	c.N = v&0x80 != 0
	c.V = v&0x40 != 0
}

func (c *CPU) lda(v uint8) { c.A = v; c.setZN(c.A) }
func (c *CPU) ldx(v uint8) { c.X = v; c.setZN(c.X) }
func (c *CPU) ldy(v uint8) { c.Y = v; c.setZN(c.Y) }

// status byte layout: N V 1 B D I Z C
func (c *CPU) pushStatus(brk bool) uint8 {
	var s uint8 = 0x20 // unused bit always reads 1
	if c.N {
		s |= 0x80
	}
	if c.V {
		s |= 0x40
	}
	if brk {
		s |= 0x10
	}
	if c.D {
		s |= 0x08
	}
	if c.I {
		s |= 0x04
	}
	if c.Z {
		s |= 0x02
	}
	if c.C {
		s |= 0x01
	}
	return s
}

func (c *CPU) pullStatus(s uint8) {
	c.N = s&0x80 != 0
	c.V = s&0x40 != 0
	c.D = s&0x08 != 0
	c.I = s&0x04 != 0
	c.Z = s&0x02 != 0
	c.C = s&0x01 != 0
}

// --- illegal/unofficial opcodes ---

func (c *CPU) lax(v uint8) {
	c.A = v
	c.X = v
	c.setZN(v)
}

func (c *CPU) anc(v uint8) {
	c.and(v)
	c.C = c.N
}

func (c *CPU) alr(v uint8) {
	c.and(v)
	c.A = c.lsr(c.A)
}

func (c *CPU) arr(v uint8) {
	c.and(v)
	c.A = c.ror(c.A)
	c.C = c.A&0x40 != 0
	c.V = (c.A&0x40 != 0) != (c.A&0x20 != 0)
}

func (c *CPU) axs(v uint8) {
	r := uint16(c.A&c.X) - uint16(v)
	c.C = r < 0x100
	c.X = uint8(r)
	c.setZN(c.X)
}

// xaa is documented hardware-unstable (depends on analog bus capacitance
// behavior); this fixed-constant approximation matches what emulators
// commonly substitute and is never relied on by real software.
func (c *CPU) xaa(v uint8) {
	c.A = (c.A | 0xFF) & c.X & v
	c.setZN(c.A)
}

func (c *CPU) ahx() uint8 { return c.A & c.X & uint8(c.AB>>8+1) }
func (c *CPU) shx() uint8 { return c.X & uint8(c.AB>>8+1) }
func (c *CPU) shy() uint8 { return c.Y & uint8(c.AB>>8+1) }

func (c *CPU) tas() uint8 {
	c.SP = c.A & c.X
	return c.SP & uint8(c.AB>>8+1)
}

func (c *CPU) las(v uint8) {
	r := v & c.SP
	c.A = r
	c.X = r
	c.SP = r
	c.setZN(r)
}
