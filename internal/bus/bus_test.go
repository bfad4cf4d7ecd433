package bus

import (
	"bytes"
	"encoding/binary"
	"testing"

	"gones/internal/apu"
	"gones/internal/cartridge"
	"gones/internal/input"
	"gones/internal/ppu"

	"gones/internal/interrupt"
)

type dmaStub struct{ lastPage uint8 }

func (d *dmaStub) TriggerOAMDMA(page uint8) { d.lastPage = page }

func newTestBus(t *testing.T) (*Bus, *dmaStub) {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(2) // 32KB PRG
	buf.WriteByte(1) // 8KB CHR
	buf.WriteByte(0)
	buf.WriteByte(0)
	binary.Write(&buf, binary.LittleEndian, make([]byte, 8))
	buf.Write(make([]byte, 0x8000))
	buf.Write(make([]byte, 0x2000))

	cart, err := cartridge.LoadFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	lines := &interrupt.Lines{}
	p := ppu.New(lines)
	p.AttachMapper(cart.Mapper())
	dma := &dmaStub{}
	b := New(p, apu.New(), input.NewInputState(), cart, dma)
	return b, dma
}

func TestRAMIsMirroredEvery0x800(t *testing.T) {
	b, _ := newTestBus(t)
	b.CPUWrite(0x0000, 0x42)
	if got := b.CPURead(0x0800); got != 0x42 {
		t.Errorf("mirrored RAM read = %#02x, want 0x42", got)
	}
	if got := b.CPURead(0x1800); got != 0x42 {
		t.Errorf("second mirror read = %#02x, want 0x42", got)
	}
}

func TestPPURegistersAreMirroredEvery8Bytes(t *testing.T) {
	b, _ := newTestBus(t)
	b.CPUWrite(0x2000, 0x80)
	b.CPUWrite(0x2008, 0x00) // aliases $2000
	if b.PPU.ReadRegister(0x2000)&0x80 != 0 {
		t.Error("write through the mirror at $2008 should have cleared PPUCTRL bit 7")
	}
}

func TestOAMDMATriggerRoutesThroughBus(t *testing.T) {
	b, dma := newTestBus(t)
	b.CPUWrite(0x4014, 0x07)
	if dma.lastPage != 0x07 {
		t.Errorf("dma page = %#02x, want 0x07", dma.lastPage)
	}
}

func TestCartridgeSpaceReadsThroughMapper(t *testing.T) {
	b, _ := newTestBus(t)
	b.Cart.PRGROM[0] = 0x55
	if got := b.CPURead(0x8000); got != 0x55 {
		t.Errorf("cartridge read = %#02x, want 0x55", got)
	}
}
