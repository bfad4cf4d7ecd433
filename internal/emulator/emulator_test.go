package emulator

import (
	"bytes"
	"encoding/binary"
	"testing"

	"gones/internal/cartridge"
	"gones/internal/ppu"
)

func buildNROM(resetLo, resetHi uint8, code []uint8) []byte {
	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(2) // 32KB PRG
	buf.WriteByte(1) // 8KB CHR
	buf.WriteByte(0)
	buf.WriteByte(0)
	binary.Write(&buf, binary.LittleEndian, make([]byte, 8))

	prg := make([]byte, 0x8000)
	copy(prg, code)
	prg[0x7FFC] = resetLo
	prg[0x7FFD] = resetHi
	buf.Write(prg)
	buf.Write(make([]byte, 0x2000))
	return buf.Bytes()
}

func TestEmulatorRunsNOPsAndAdvancesCycles(t *testing.T) {
	code := []uint8{0xEA, 0xEA, 0x4C, 0x02, 0x80} // NOP NOP JMP $8002
	data := buildNROM(0x00, 0x80, code)
	cart, err := cartridge.LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	e := New(cart, ppu.RegionNTSC)
	for i := 0; i < 20; i++ {
		e.Tick()
	}
	if e.Cycles() != 20 {
		t.Errorf("cycles = %d, want 20", e.Cycles())
	}
	if e.CPU.Halt {
		t.Error("CPU should not halt running NOPs")
	}
}

func TestEmulatorStepFrameCompletes(t *testing.T) {
	code := []uint8{0x4C, 0x00, 0x80} // JMP $8000 (infinite loop)
	data := buildNROM(0x00, 0x80, code)
	cart, err := cartridge.LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	e := New(cart, ppu.RegionNTSC)
	e.StepFrame()
	if e.Cycles() == 0 {
		t.Error("expected StepFrame to advance cycles")
	}
}
