// Package bus implements the CPU's memory-mapped address decoder: 2KB of
// internal RAM mirrored through $1FFF, PPU registers mirrored every 8
// bytes through $3FFF, the APU/controller port block at $4000-$4017
// (including the $4014 OAM DMA trigger), and cartridge-mapper space from
// $4020 up. Unlike the teacher's Bus (which owned the CPU/PPU/APU/Input
// components directly and drove the whole system from its own Step loop),
// this Bus is a pure decoder: internal/emulator owns the components and
// drives CPU.Tick/PPU.Tick itself, handing this Bus to the CPU as its
// cpu.Bus implementation.
package bus

import (
	"gones/internal/apu"
	"gones/internal/cartridge"
	"gones/internal/input"
	"gones/internal/ppu"
)

// OAMDMATrigger is satisfied by the CPU; a CPUWrite to $4014 hands control to
// it so the transfer steals cycles exactly as on hardware.
type OAMDMATrigger interface {
	TriggerOAMDMA(page uint8)
}

type Bus struct {
	RAM   [0x800]uint8
	PPU   *ppu.PPU
	APU   *apu.APU
	Input *input.InputState
	Cart  *cartridge.Cartridge
	DMA   OAMDMATrigger
}

func New(p *ppu.PPU, a *apu.APU, in *input.InputState, cart *cartridge.Cartridge, dma OAMDMATrigger) *Bus {
	return &Bus{PPU: p, APU: a, Input: in, Cart: cart, DMA: dma}
}

func (b *Bus) CPURead(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.RAM[addr&0x07FF]
	case addr < 0x4000:
		return b.PPU.ReadRegister(addr)
	case addr == 0x4015:
		return b.APU.ReadStatus()
	case addr == 0x4016 || addr == 0x4017:
		return b.Input.Read(addr)
	case addr < 0x4018:
		return 0 // remaining APU registers are write-only
	case addr < 0x4020:
		return 0 // APU/IO test space, unused
	default:
		return b.Cart.Mapper().ReadPRG(addr)
	}
}

func (b *Bus) CPUWrite(addr uint16, v uint8) {
	switch {
	case addr < 0x2000:
		b.RAM[addr&0x07FF] = v
	case addr < 0x4000:
		b.PPU.WriteRegister(addr, v)
	case addr == 0x4014:
		b.DMA.TriggerOAMDMA(v)
	case addr == 0x4016:
		b.Input.Write(addr, v)
	case addr < 0x4018:
		b.APU.WriteRegister(addr, v)
	case addr < 0x4020:
		// APU/IO test space, unused
	default:
		b.Cart.Mapper().WritePRG(addr, v)
	}
}
