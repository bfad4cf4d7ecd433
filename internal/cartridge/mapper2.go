package cartridge

import "gones/internal/interrupt"

// UxROM (mapper 2): a single PRG bank-select register switches the 16KB
// window at $8000-$BFFF; $C000-$FFFF is fixed to the last bank. CHR is
// always 8KB RAM. Ported from andrewthecodertx-go-nes-emulator's Mapper2.
type UxROM struct {
	cart     *Cartridge
	prgBanks uint8
	prgBank  uint8
	chrRAM   [0x2000]uint8
}

func NewUxROM(cart *Cartridge) *UxROM {
	return &UxROM{cart: cart, prgBanks: uint8(len(cart.PRGROM) / 0x4000)}
}

func (m *UxROM) ReadPRG(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.cart.SRAM[addr-0x6000]
	case addr >= 0x8000 && addr < 0xC000:
		off := uint32(m.prgBank)*0x4000 + uint32(addr-0x8000)
		if int(off) < len(m.cart.PRGROM) {
			return m.cart.PRGROM[off]
		}
	case addr >= 0xC000:
		last := m.prgBanks - 1
		off := uint32(last)*0x4000 + uint32(addr-0xC000)
		if int(off) < len(m.cart.PRGROM) {
			return m.cart.PRGROM[off]
		}
	}
	return 0
}

func (m *UxROM) WritePRG(addr uint16, v uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.cart.SRAM[addr-0x6000] = v
	case addr >= 0x8000:
		if m.prgBanks > 0 {
			m.prgBank = v & (m.prgBanks - 1)
		}
	}
}

func (m *UxROM) ReadCHR(addr uint16) uint8  { return m.chrRAM[addr&0x1FFF] }
func (m *UxROM) WriteCHR(addr uint16, v uint8) { m.chrRAM[addr&0x1FFF] = v }

func (m *UxROM) ReadNametable(addr uint16) uint8 {
	return m.cart.VRAM[mirrorNametable(addr, m.cart.mirror)]
}

func (m *UxROM) WriteNametable(addr uint16, v uint8) {
	m.cart.VRAM[mirrorNametable(addr, m.cart.mirror)] = v
}

func (m *UxROM) Mirroring() Mirroring { return m.cart.mirror }

func (m *UxROM) NotifyA12(addr uint16, cycle uint64, lines *interrupt.Lines) {}
