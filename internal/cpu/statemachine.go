package cpu

// buildChain constructs the micro-state chain for an opcode's addressing
// family. It runs once per executed instruction (the chain itself is
// cheap to allocate; a future optimization could memoize per-opcode
// chains, since none of them close over anything but the immutable
// opcodeDef). The shapes mirror the addressing-mode chain builders of
// original_source/nes/src/cpu/cpu_generator.rs (zero_page, zero_page_x,
// absolute, absolute_x_or_y, indirect_x, indirect_y, the _rmw and _st
// variants, relative, and the stack-instruction special cases), adapted
// from that generator's match-expression-emitting style into a builder
// that runs at call time rather than at code-generation time.
func buildChain(op opcodeDef) []microStep {
	switch op.timing {
	case TimImplied, TimAccumulator:
		return []microStep{
			func(c *CPU, bus Bus) {
				bus.CPURead(c.PC)
				if op.implied != nil {
					op.implied(c)
				}
				if op.rmw != nil {
					c.A = op.rmw(c, c.A)
				}
			},
		}

	case TimImmediate:
		return []microStep{
			func(c *CPU, bus Bus) {
				v := bus.CPURead(c.PC)
				c.PC++
				op.read(c, v)
			},
		}

	case TimZeroPage:
		return []microStep{
			fetchZP(),
			func(c *CPU, bus Bus) { op.read(c, bus.CPURead(uint16(c.T))) },
		}
	case TimZeroPageSt:
		return []microStep{
			fetchZP(),
			func(c *CPU, bus Bus) { bus.CPUWrite(uint16(c.T), op.store(c)) },
		}
	case TimZeroPageRMW:
		return append([]microStep{fetchZP()}, rmwSteps(op, addrT)...)

	case TimZeroPageX:
		return []microStep{
			fetchZP(),
			indexZPDummy(func(c *CPU) uint8 { return c.X }),
			func(c *CPU, bus Bus) { op.read(c, bus.CPURead(uint16(c.T))) },
		}
	case TimZeroPageXSt:
		return []microStep{
			fetchZP(),
			indexZPDummy(func(c *CPU) uint8 { return c.X }),
			func(c *CPU, bus Bus) { bus.CPUWrite(uint16(c.T), op.store(c)) },
		}
	case TimZeroPageYSt:
		return []microStep{
			fetchZP(),
			indexZPDummy(func(c *CPU) uint8 { return c.Y }),
			func(c *CPU, bus Bus) { bus.CPUWrite(uint16(c.T), op.store(c)) },
		}
	case TimZeroPageXRMW:
		return append([]microStep{fetchZP(), indexZPDummy(func(c *CPU) uint8 { return c.X })}, rmwSteps(op, addrT)...)

	case TimAbsolute:
		return []microStep{
			fetchLo(), fetchHiAB(),
			func(c *CPU, bus Bus) { op.read(c, bus.CPURead(c.AB)) },
		}
	case TimAbsoluteSt:
		return []microStep{
			fetchLo(), fetchHiAB(),
			func(c *CPU, bus Bus) { bus.CPUWrite(c.AB, op.store(c)) },
		}
	case TimAbsoluteRMW:
		return append([]microStep{fetchLo(), fetchHiAB()}, rmwSteps(op, addrAB)...)

	case TimAbsoluteJMP:
		return []microStep{
			fetchLo(),
			func(c *CPU, bus Bus) {
				hi := bus.CPURead(c.PC)
				c.PC = uint16(hi)<<8 | uint16(c.T)
			},
		}

	case TimIndirect:
		return []microStep{
			fetchLo(), fetchHiAB(),
			func(c *CPU, bus Bus) { c.T = bus.CPURead(c.AB) },
			func(c *CPU, bus Bus) {
				// page-wrap bug: the high byte is fetched from
				// (AB & 0xFF00) | ((AB+1) & 0xFF), not AB+1.
				hiAddr := (c.AB & 0xFF00) | ((c.AB + 1) & 0xFF)
				hi := bus.CPURead(hiAddr)
				c.PC = uint16(hi)<<8 | uint16(c.T)
			},
		}

	case TimAbsoluteX:
		return absIndexedRead(op, func(c *CPU) uint8 { return c.X })
	case TimAbsoluteY:
		return absIndexedRead(op, func(c *CPU) uint8 { return c.Y })
	case TimAbsoluteXSt:
		return absIndexedStore(op, func(c *CPU) uint8 { return c.X })
	case TimAbsoluteYSt:
		return absIndexedStore(op, func(c *CPU) uint8 { return c.Y })
	case TimAbsoluteXRMW:
		return absIndexedRMW(op, func(c *CPU) uint8 { return c.X })
	case TimAbsoluteYRMW:
		return absIndexedRMW(op, func(c *CPU) uint8 { return c.Y })

	case TimIndirectX:
		return []microStep{
			fetchZP(),
			indexZPDummy(func(c *CPU) uint8 { return c.X }),
			func(c *CPU, bus Bus) { lo := bus.CPURead(uint16(c.T)); c.AB = uint16(lo) },
			func(c *CPU, bus Bus) {
				hi := bus.CPURead(uint16(c.T + 1))
				c.AB |= uint16(hi) << 8
			},
			func(c *CPU, bus Bus) { op.read(c, bus.CPURead(c.AB)) },
		}
	case TimIndirectXSt:
		return []microStep{
			fetchZP(),
			indexZPDummy(func(c *CPU) uint8 { return c.X }),
			func(c *CPU, bus Bus) { lo := bus.CPURead(uint16(c.T)); c.AB = uint16(lo) },
			func(c *CPU, bus Bus) {
				hi := bus.CPURead(uint16(c.T + 1))
				c.AB |= uint16(hi) << 8
			},
			func(c *CPU, bus Bus) { bus.CPUWrite(c.AB, op.store(c)) },
		}
	case TimIndirectXRMW:
		chain := []microStep{
			fetchZP(),
			indexZPDummy(func(c *CPU) uint8 { return c.X }),
			func(c *CPU, bus Bus) { lo := bus.CPURead(uint16(c.T)); c.AB = uint16(lo) },
			func(c *CPU, bus Bus) {
				hi := bus.CPURead(uint16(c.T + 1))
				c.AB |= uint16(hi) << 8
			},
		}
		return append(chain, rmwSteps(op, addrAB)...)

	case TimIndirectY:
		return []microStep{
			fetchZP(),
			func(c *CPU, bus Bus) { c.AB = uint16(bus.CPURead(uint16(c.T))) },
			func(c *CPU, bus Bus) {
				hi := bus.CPURead(uint16(c.T + 1))
				base := uint16(hi)<<8 | c.AB
				low8 := uint8(c.AB) + c.Y
				c.pageCrossed = uint16(low8) < c.AB
				c.AB = uint16(hi)<<8 | uint16(low8)
				c.T = uint8(base >> 8) // stash correct hi for fixup
				if !c.pageCrossed {
					c.skipHold = base // unused: with no page cross the next step completes the read
				} else {
					c.skipHold = base + uint16(c.Y)
				}
			},
			func(c *CPU, bus Bus) {
				v := bus.CPURead(c.AB)
				if !c.pageCrossed {
					op.read(c, v)
					c.skip = 1
				} else {
					c.AB = c.skipHold
				}
			},
			func(c *CPU, bus Bus) { op.read(c, bus.CPURead(c.AB)) },
		}
	case TimIndirectYSt:
		return []microStep{
			fetchZP(),
			func(c *CPU, bus Bus) { c.AB = uint16(bus.CPURead(uint16(c.T))) },
			func(c *CPU, bus Bus) {
				hi := bus.CPURead(uint16(c.T + 1))
				base := uint16(hi)<<8 | c.AB
				low8 := uint8(c.AB) + c.Y
				c.AB = uint16(hi)<<8 | uint16(low8)
				c.skipHold = base + uint16(c.Y)
			},
			func(c *CPU, bus Bus) { bus.CPURead(c.AB); c.AB = c.skipHold },
			func(c *CPU, bus Bus) { bus.CPUWrite(c.AB, op.store(c)) },
		}
	case TimIndirectYRMW:
		chain := []microStep{
			fetchZP(),
			func(c *CPU, bus Bus) { c.AB = uint16(bus.CPURead(uint16(c.T))) },
			func(c *CPU, bus Bus) {
				hi := bus.CPURead(uint16(c.T + 1))
				base := uint16(hi)<<8 | c.AB
				low8 := uint8(c.AB) + c.Y
				c.AB = uint16(hi)<<8 | uint16(low8)
				c.skipHold = base + uint16(c.Y)
			},
			func(c *CPU, bus Bus) { bus.CPURead(c.AB); c.AB = c.skipHold },
		}
		return append(chain, rmwSteps(op, addrAB)...)

	case TimRelative:
		return []microStep{
			func(c *CPU, bus Bus) {
				offset := bus.CPURead(c.PC)
				c.PC++
				taken := op.branch(c)
				if !taken {
					c.skip = 2
					return
				}
				target := c.PC + uint16(int8(offset))
				c.pageCrossed = target&0xFF00 != c.PC&0xFF00
				c.AB = target
			},
			func(c *CPU, bus Bus) {
				bus.CPURead(c.PC)
				if !c.pageCrossed {
					c.PC = c.AB
					c.skip = 1
				} else {
					c.PC = (c.PC & 0xFF00) | (c.AB & 0x00FF)
				}
			},
			func(c *CPU, bus Bus) {
				bus.CPURead(c.PC)
				c.PC = c.AB
			},
		}

	case TimPHA, TimPHP:
		return []microStep{
			func(c *CPU, bus Bus) { bus.CPURead(c.PC) }, // internal cycle before the push
			func(c *CPU, bus Bus) {
				bus.CPUWrite(0x0100+uint16(c.SP), op.store(c))
				c.SP--
			},
		}
	case TimPLA, TimPLP:
		return []microStep{
			func(c *CPU, bus Bus) { bus.CPURead(c.PC) },
			func(c *CPU, bus Bus) { c.SP++ },
			func(c *CPU, bus Bus) { op.read(c, bus.CPURead(0x0100+uint16(c.SP))) },
		}

	case TimJSR:
		return []microStep{
			func(c *CPU, bus Bus) { c.T = bus.CPURead(c.PC); c.PC++ },
			func(c *CPU, bus Bus) { bus.CPURead(0x0100 + uint16(c.SP)) }, // internal stall
			func(c *CPU, bus Bus) { bus.CPUWrite(0x0100+uint16(c.SP), uint8(c.PC>>8)); c.SP-- },
			func(c *CPU, bus Bus) { bus.CPUWrite(0x0100+uint16(c.SP), uint8(c.PC)); c.SP-- },
			func(c *CPU, bus Bus) {
				hi := bus.CPURead(c.PC)
				c.PC = uint16(hi)<<8 | uint16(c.T)
			},
		}
	case TimRTS:
		return []microStep{
			func(c *CPU, bus Bus) { bus.CPURead(c.PC) },
			func(c *CPU, bus Bus) { c.SP++ },
			func(c *CPU, bus Bus) { c.T = bus.CPURead(0x0100 + uint16(c.SP)) },
			func(c *CPU, bus Bus) {
				c.SP++
				hi := bus.CPURead(0x0100 + uint16(c.SP))
				c.PC = uint16(hi)<<8 | uint16(c.T)
			},
			func(c *CPU, bus Bus) { bus.CPURead(c.PC); c.PC++ },
		}
	case TimRTI:
		return []microStep{
			func(c *CPU, bus Bus) { bus.CPURead(c.PC) },
			func(c *CPU, bus Bus) { c.SP++ },
			func(c *CPU, bus Bus) { c.pullStatus(bus.CPURead(0x0100 + uint16(c.SP))); c.SP++ },
			func(c *CPU, bus Bus) { c.T = bus.CPURead(0x0100 + uint16(c.SP)); c.SP++ },
			func(c *CPU, bus Bus) {
				hi := bus.CPURead(0x0100 + uint16(c.SP))
				c.PC = uint16(hi)<<8 | uint16(c.T)
			},
		}
	}
	return nil
}

func fetchZP() microStep {
	return func(c *CPU, bus Bus) { c.T = bus.CPURead(c.PC); c.PC++ }
}
func fetchLo() microStep {
	return func(c *CPU, bus Bus) { c.T = bus.CPURead(c.PC); c.PC++ }
}
func fetchHiAB() microStep {
	return func(c *CPU, bus Bus) {
		hi := bus.CPURead(c.PC)
		c.PC++
		c.AB = uint16(hi)<<8 | uint16(c.T)
	}
}
func indexZPDummy(idx func(c *CPU) uint8) microStep {
	return func(c *CPU, bus Bus) {
		bus.CPURead(uint16(c.T))
		c.T += idx(c)
	}
}

// addrT and addrAB are the two effective-address sources an RMW tail reads
// from: zero-page families leave their address in T, everything else
// (absolute, indexed, indirect) leaves it in AB.
func addrT(c *CPU) uint16  { return uint16(c.T) }
func addrAB(c *CPU) uint16 { return c.AB }

// rmwSteps returns the fixed 3-cycle read/dummy-write/real-write tail every
// Read-Modify-Write chain ends with: read the original value, write it back
// unmodified (the dummy write real 6502 RMW instructions perform), then
// write the modified value.
func rmwSteps(op opcodeDef, addr func(c *CPU) uint16) []microStep {
	return []microStep{
		func(c *CPU, bus Bus) { c.T = bus.CPURead(addr(c)) },
		func(c *CPU, bus Bus) { bus.CPUWrite(addr(c), c.T) },
		func(c *CPU, bus Bus) { bus.CPUWrite(addr(c), op.rmw(c, c.T)) },
	}
}

func absIndexedRead(op opcodeDef, idx func(c *CPU) uint8) []microStep {
	return []microStep{
		fetchLo(),
		func(c *CPU, bus Bus) {
			hi := bus.CPURead(c.PC)
			c.PC++
			base := uint16(hi)<<8 | uint16(c.T)
			low8 := c.T + idx(c)
			c.pageCrossed = uint16(low8) < uint16(c.T)
			c.AB = uint16(hi)<<8 | uint16(low8)
			c.skipHold = base + uint16(idx(c))
		},
		func(c *CPU, bus Bus) {
			v := bus.CPURead(c.AB)
			if !c.pageCrossed {
				op.read(c, v)
				c.skip = 1
			} else {
				c.AB = c.skipHold
			}
		},
		func(c *CPU, bus Bus) { op.read(c, bus.CPURead(c.AB)) },
	}
}

func absIndexedStore(op opcodeDef, idx func(c *CPU) uint8) []microStep {
	return []microStep{
		fetchLo(),
		func(c *CPU, bus Bus) {
			hi := bus.CPURead(c.PC)
			c.PC++
			base := uint16(hi)<<8 | uint16(c.T)
			low8 := c.T + idx(c)
			c.AB = uint16(hi)<<8 | uint16(low8)
			c.skipHold = base + uint16(idx(c))
		},
		func(c *CPU, bus Bus) { bus.CPURead(c.AB); c.AB = c.skipHold },
		func(c *CPU, bus Bus) { bus.CPUWrite(c.AB, op.store(c)) },
	}
}

func absIndexedRMW(op opcodeDef, idx func(c *CPU) uint8) []microStep {
	return []microStep{
		fetchLo(),
		func(c *CPU, bus Bus) {
			hi := bus.CPURead(c.PC)
			c.PC++
			base := uint16(hi)<<8 | uint16(c.T)
			low8 := c.T + idx(c)
			c.AB = uint16(hi)<<8 | uint16(low8)
			c.skipHold = base + uint16(idx(c))
		},
		func(c *CPU, bus Bus) { bus.CPURead(c.AB); c.AB = c.skipHold },
		func(c *CPU, bus Bus) { c.T = bus.CPURead(c.AB) },
		func(c *CPU, bus Bus) { bus.CPUWrite(c.AB, c.T) },
		func(c *CPU, bus Bus) { bus.CPUWrite(c.AB, op.rmw(c, c.T)) },
	}
}
