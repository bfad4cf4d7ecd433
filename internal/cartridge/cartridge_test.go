package cartridge

import (
	"bytes"
	"encoding/binary"
	"testing"

	"gones/internal/interrupt"
)

// buildINES assembles a minimal iNES image for the given mapper id with
// prgBanks*16KB of PRG-ROM and chrBanks*8KB of CHR-ROM, each bank filled
// with its own index so tests can assert on bank-selection.
func buildINES(mapperID uint8, prgBanks, chrBanks int, flags6 uint8) []byte {
	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(uint8(prgBanks))
	buf.WriteByte(uint8(chrBanks))
	buf.WriteByte(flags6 | (mapperID << 4))
	buf.WriteByte(mapperID & 0xF0)
	binary.Write(&buf, binary.LittleEndian, make([]byte, 8)) // rest of header

	for b := 0; b < prgBanks; b++ {
		bank := make([]byte, 0x4000)
		for i := range bank {
			bank[i] = uint8(b)
		}
		buf.Write(bank)
	}
	for b := 0; b < chrBanks; b++ {
		bank := make([]byte, 0x2000)
		for i := range bank {
			bank[i] = uint8(0x80 + b)
		}
		buf.Write(bank)
	}
	return buf.Bytes()
}

func TestLoadFromReaderRejectsBadMagic(t *testing.T) {
	_, err := LoadFromReader(bytes.NewReader([]byte("BAD\x00\x01\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")))
	if err == nil {
		t.Fatal("expected an error for a bad iNES magic")
	}
}

func TestLoadFromReaderNROM(t *testing.T) {
	data := buildINES(0, 2, 1, 0)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if _, ok := cart.Mapper().(*NROM); !ok {
		t.Fatalf("expected NROM mapper, got %T", cart.Mapper())
	}
	if got := cart.Mapper().ReadPRG(0x8000); got != 0 {
		t.Errorf("bank 0 byte = %d, want 0", got)
	}
	if got := cart.Mapper().ReadPRG(0xC000); got != 1 {
		t.Errorf("bank 1 byte = %d, want 1", got)
	}
}

func TestLoadFromReaderUnsupportedMapperFallsBackToNROM(t *testing.T) {
	data := buildINES(99, 1, 1, 0)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if _, ok := cart.Mapper().(*NROM); !ok {
		t.Fatalf("expected fallback to NROM, got %T", cart.Mapper())
	}
}

func TestMirrorNametableVertical(t *testing.T) {
	// Vertical mirroring: nametables 0 and 2 alias, 1 and 3 alias.
	if mirrorNametable(0x000, MirrorVertical) != mirrorNametable(0x800, MirrorVertical) {
		t.Error("vertical mirroring should alias nametable 0 and 2")
	}
	if mirrorNametable(0x400, MirrorVertical) != mirrorNametable(0xC00, MirrorVertical) {
		t.Error("vertical mirroring should alias nametable 1 and 3")
	}
}

func TestMirrorNametableHorizontal(t *testing.T) {
	if mirrorNametable(0x000, MirrorHorizontal) != mirrorNametable(0x400, MirrorHorizontal) {
		t.Error("horizontal mirroring should alias nametable 0 and 1")
	}
	if mirrorNametable(0x800, MirrorHorizontal) != mirrorNametable(0xC00, MirrorHorizontal) {
		t.Error("horizontal mirroring should alias nametable 2 and 3")
	}
}

func TestUxROMBankSwitch(t *testing.T) {
	data := buildINES(2, 4, 0, 0)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	m := cart.Mapper()
	if got := m.ReadPRG(0xC000); got != 3 {
		t.Errorf("fixed bank byte = %d, want 3 (last bank)", got)
	}
	m.WritePRG(0x8000, 2)
	if got := m.ReadPRG(0x8000); got != 2 {
		t.Errorf("after bank switch, byte = %d, want 2", got)
	}
}

func TestCNROMCHRBankSwitch(t *testing.T) {
	data := buildINES(3, 1, 4, 0)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	m := cart.Mapper()
	m.WritePRG(0x8000, 2)
	if got := m.ReadCHR(0x0000); got != 0x82 {
		t.Errorf("CHR bank 2 byte = %#02x, want 0x82", got)
	}
}

func TestMMC1PRGModeFixLast(t *testing.T) {
	data := buildINES(1, 4, 0, 0)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	m, ok := cart.Mapper().(*MMC1)
	if !ok {
		t.Fatalf("expected MMC1, got %T", cart.Mapper())
	}
	// Power-on defaults to prgMode 3: $C000 fixed to the last bank.
	if got := m.ReadPRG(0xC000); got != 3 {
		t.Errorf("fixed-last byte = %d, want 3", got)
	}
}

func TestMMC3IRQCounterReloadsAndFires(t *testing.T) {
	data := buildINES(4, 4, 2, 0)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	m, ok := cart.Mapper().(*MMC3)
	if !ok {
		t.Fatalf("expected MMC3, got %T", cart.Mapper())
	}

	m.WritePRG(0xC000, 1) // irq latch = 1
	m.WritePRG(0xC001, 0) // force reload on next clock
	m.WritePRG(0xE001, 0) // enable IRQ

	lines := &interrupt.Lines{}
	m.clockIRQCounter(lines) // reload to latch value 1
	if m.irqCounter != 1 {
		t.Fatalf("after reload, counter = %d, want 1", m.irqCounter)
	}
	m.clockIRQCounter(lines) // decrement to 0, fires
	if m.irqCounter != 0 {
		t.Fatalf("after decrement, counter = %d, want 0", m.irqCounter)
	}
	if !lines.IRQ {
		t.Error("expected IRQ to be asserted when the counter reaches 0 while enabled")
	}
}
