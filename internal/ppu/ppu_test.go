package ppu

import (
	"testing"

	"gones/internal/interrupt"
)

type stubMapper struct {
	chr       [0x2000]uint8
	nametable [0x1000]uint8
}

func (m *stubMapper) ReadCHR(addr uint16) uint8     { return m.chr[addr&0x1FFF] }
func (m *stubMapper) WriteCHR(addr uint16, v uint8) { m.chr[addr&0x1FFF] = v }
func (m *stubMapper) ReadNametable(addr uint16) uint8 {
	return m.nametable[addr&0x0FFF]
}
func (m *stubMapper) WriteNametable(addr uint16, v uint8) {
	m.nametable[addr&0x0FFF] = v
}
func (m *stubMapper) NotifyA12(addr uint16, cycle uint64, lines *interrupt.Lines) {}

func newTestPPU() (*PPU, *stubMapper) {
	lines := &interrupt.Lines{}
	p := New(lines)
	m := &stubMapper{}
	p.AttachMapper(m)
	return p, m
}

func TestPPUCTRLSetsAddressIncrement(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2000, 0x04) // addr increment 32
	if p.addrIncrement != 32 {
		t.Errorf("addrIncrement = %d, want 32", p.addrIncrement)
	}
	p.WriteRegister(0x2000, 0x00)
	if p.addrIncrement != 1 {
		t.Errorf("addrIncrement = %d, want 1", p.addrIncrement)
	}
}

func TestPPUADDRLoopyToggle(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2006, 0x3D) // high byte
	p.WriteRegister(0x2006, 0xF0) // low byte
	if p.v != 0x3DF0 {
		t.Errorf("v = %#04x, want 0x3DF0", p.v)
	}
	if p.w {
		t.Error("write toggle should be clear after the second write")
	}
}

func TestPPUDATAReadIsBuffered(t *testing.T) {
	p, m := newTestPPU()
	m.nametable[0] = 0x42
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00) // v = 0x2000
	first := p.ReadRegister(0x2007)
	if first == 0x42 {
		t.Error("first PPUDATA read from non-palette space should return the stale buffer, not the fresh byte")
	}
	second := p.ReadRegister(0x2007)
	if second != 0x42 {
		t.Errorf("second PPUDATA read = %#02x, want 0x42", second)
	}
}

func TestPPUDATAPaletteReadIsUnbuffered(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2006, 0x3F)
	p.WriteRegister(0x2006, 0x00)
	p.paletteRAM[0] = 0x15
	val := p.ReadRegister(0x2007)
	if val != 0x15 {
		t.Errorf("palette read = %#02x, want 0x15", val)
	}
}

func TestPPUSTATUSReadClearsVBlankAndToggle(t *testing.T) {
	p, _ := newTestPPU()
	p.ppuStatus = 0x80
	p.w = true
	val := p.ReadRegister(0x2002)
	if val&0x80 == 0 {
		t.Error("PPUSTATUS read should report the vblank flag before clearing it")
	}
	if p.ppuStatus&0x80 != 0 {
		t.Error("reading PPUSTATUS should clear the vblank flag")
	}
	if p.w {
		t.Error("reading PPUSTATUS should clear the write toggle")
	}
}

func TestOAMDATAAutoIncrementsOAMADDR(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2003, 0x10)
	p.WriteRegister(0x2004, 0xAB)
	if p.oam[0x10] != 0xAB {
		t.Errorf("oam[0x10] = %#02x, want 0xAB", p.oam[0x10])
	}
	if p.oamAddr != 0x11 {
		t.Errorf("oamAddr = %#02x, want 0x11", p.oamAddr)
	}
}

func TestVBlankSetsStatusAndAssertsNMI(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2000, 0x80) // enable NMI on vblank
	p.scanline, p.dot = 241, 1
	p.Tick() // processes scanline 241 dot 1
	if p.ppuStatus&0x80 == 0 {
		t.Fatal("expected PPUSTATUS vblank flag to be set entering scanline 241 dot 1")
	}
	if !p.lines.NMI {
		t.Error("expected NMI to be asserted on entering vblank with NMI-on-vblank enabled")
	}
}

func TestPaletteMirroring(t *testing.T) {
	p, _ := newTestPPU()
	p.paletteWriteInternal(0x3F00, 0x20)
	if p.paletteReadInternal(0x3F10) != 0x20 {
		t.Error("palette index $10 should mirror $00")
	}
}

func TestSpriteOverflowFlagSetsUnderOvercrowdedScanline(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2001, 0x18) // show bg + sprites
	for i := 0; i < 64; i++ {
		base := i * 4
		p.oam[base] = 10 // all on scanline 10
		p.oam[base+1] = uint8(i)
		p.oam[base+2] = 0
		p.oam[base+3] = uint8(i * 4 % 256)
	}
	p.scanline = 10
	for dot := 65; dot <= 256; dot++ {
		p.dot = dot
		p.spriteEvaluation(p.scanline, dot)
	}
	if p.ppuStatus&0x20 == 0 {
		t.Error("expected sprite overflow flag to be set with 64 sprites all in range on one scanline")
	}
}
