package cartridge

import "gones/internal/interrupt"

// NROM (mapper 0): no bank switching. PRG-ROM is 16KB (mirrored at
// $C000-$FFFF) or 32KB; CHR is a single fixed 8KB bank, ROM or RAM.
// Ported from andrewthecodertx-go-nes-emulator's Mapper0.
type NROM struct {
	cart     *Cartridge
	prgBanks int
}

func NewNROM(cart *Cartridge) *NROM {
	return &NROM{cart: cart, prgBanks: len(cart.PRGROM) / 0x4000}
}

func (m *NROM) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.cart.SRAM[addr-0x6000]
	case addr >= 0x8000:
		off := addr - 0x8000
		if m.prgBanks <= 1 {
			off %= 0x4000
		}
		if int(off) < len(m.cart.PRGROM) {
			return m.cart.PRGROM[off]
		}
	}
	return 0
}

func (m *NROM) WritePRG(addr uint16, v uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.cart.SRAM[addr-0x6000] = v
	}
}

func (m *NROM) ReadCHR(addr uint16) uint8 {
	if int(addr) < len(m.cart.CHRROM) {
		return m.cart.CHRROM[addr]
	}
	return 0
}

func (m *NROM) WriteCHR(addr uint16, v uint8) {
	if m.cart.hasCHRRAM && int(addr) < len(m.cart.CHRROM) {
		m.cart.CHRROM[addr] = v
	}
}

func (m *NROM) ReadNametable(addr uint16) uint8 {
	return m.cart.VRAM[mirrorNametable(addr, m.cart.mirror)]
}

func (m *NROM) WriteNametable(addr uint16, v uint8) {
	m.cart.VRAM[mirrorNametable(addr, m.cart.mirror)] = v
}

func (m *NROM) Mirroring() Mirroring { return m.cart.mirror }

func (m *NROM) NotifyA12(addr uint16, cycle uint64, lines *interrupt.Lines) {}
