package cartridge

import "gones/internal/interrupt"

// CNROM (mapper 3): fixed PRG-ROM (16KB mirrored or 32KB), with a single
// write-register selecting one of up to four 8KB CHR-ROM banks. Ported
// from andrewthecodertx-go-nes-emulator's Mapper3.
type CNROM struct {
	cart     *Cartridge
	prgBanks uint8
	chrBanks uint8
	chrBank  uint8
}

func NewCNROM(cart *Cartridge) *CNROM {
	return &CNROM{
		cart:     cart,
		prgBanks: uint8(len(cart.PRGROM) / 0x4000),
		chrBanks: uint8(len(cart.CHRROM) / 0x2000),
	}
}

func (m *CNROM) ReadPRG(addr uint16) uint8 {
	if addr < 0x8000 {
		if addr >= 0x6000 {
			return m.cart.SRAM[addr-0x6000]
		}
		return 0
	}
	off := addr - 0x8000
	if m.prgBanks <= 1 {
		off %= 0x4000
	}
	if int(off) < len(m.cart.PRGROM) {
		return m.cart.PRGROM[off]
	}
	return 0
}

func (m *CNROM) WritePRG(addr uint16, v uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.cart.SRAM[addr-0x6000] = v
	case addr >= 0x8000:
		if m.chrBanks > 0 {
			m.chrBank = v & (m.chrBanks - 1)
		}
	}
}

func (m *CNROM) ReadCHR(addr uint16) uint8 {
	off := uint32(m.chrBank)*0x2000 + uint32(addr)
	if int(off) < len(m.cart.CHRROM) {
		return m.cart.CHRROM[off]
	}
	return 0
}

func (m *CNROM) WriteCHR(addr uint16, v uint8) {
	if !m.cart.hasCHRRAM {
		return
	}
	off := uint32(m.chrBank)*0x2000 + uint32(addr)
	if int(off) < len(m.cart.CHRROM) {
		m.cart.CHRROM[off] = v
	}
}

func (m *CNROM) ReadNametable(addr uint16) uint8 {
	return m.cart.VRAM[mirrorNametable(addr, m.cart.mirror)]
}

func (m *CNROM) WriteNametable(addr uint16, v uint8) {
	m.cart.VRAM[mirrorNametable(addr, m.cart.mirror)] = v
}

func (m *CNROM) Mirroring() Mirroring { return m.cart.mirror }

func (m *CNROM) NotifyA12(addr uint16, cycle uint64, lines *interrupt.Lines) {}
