// Package ppu implements the Picture Processing Unit (2C02/2C07) as a
// dot-level state machine: Tick advances exactly one PPU cycle, mirroring
// the per-dot dispatch of original_source/nes/src/ppu.rs's ppu_scanline_tick.
// Unlike that Rust version (which reached back into its owning Nes struct
// for CPU/mapper access), this PPU owns its cartridge Mapper reference and
// the shared interrupt lines directly, per the single-owner emulator design.
package ppu

import "gones/internal/interrupt"

// Region selects NTSC or PAL timing: PAL runs 312 scanlines per frame (vs.
// NTSC's 262), has no odd-frame dot skip, and supplies five extra idle
// scanlines after vblank (not modeled as distinct behavior here beyond the
// scanline count, since nothing the CORE renders depends on them).
type Region uint8

const (
	RegionNTSC Region = iota
	RegionPAL
)

// Mapper is the subset of cartridge.Mapper the PPU drives directly. A
// *cartridge.Cartridge's Mapper() satisfies this structurally.
type Mapper interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, v uint8)
	ReadNametable(addr uint16) uint8
	WriteNametable(addr uint16, v uint8)
	NotifyA12(addr uint16, cycle uint64, lines *interrupt.Lines)
}

type spritePixel struct {
	patternLow, patternHigh uint8
	x                       uint8
	palette                 uint8
	priority                bool
	isSpriteZero            bool
}

// PPU represents the NES Picture Processing Unit (2C02).
type PPU struct {
	Region Region

	mapper Mapper
	lines  *interrupt.Lines

	// CPU-visible registers
	ppuCtrl   uint8 // $2000
	ppuMask   uint8 // $2001
	ppuStatus uint8 // $2002
	oamAddr   uint8 // $2003
	openBus   uint8 // last byte driven onto the PPU bus, for write-only reads

	// Loopy scroll registers
	v, t uint16
	x    uint8 // fine X scroll, 3 bits
	w    bool  // write toggle

	readBuffer uint8 // buffered PPUDATA read

	paletteRAM [32]uint8
	oam        [256]uint8
	secondaryOAM [32]uint8

	// Rendering control, latched from ppuCtrl/ppuMask on write
	ntBase           uint16
	addrIncrement    uint16
	spPatternTable   uint16
	bgPatternTable   uint16
	spriteSize16     bool
	nmiOnVBlank      bool
	grayscale        bool
	bgLeftClip       bool
	spLeftClip       bool
	showBG           bool
	showSP           bool
	renderingEnabled bool

	scanline int
	dot      int
	oddFrame bool

	FrameReady  bool
	Framebuffer [256 * 240]uint8

	// Background tile-fetch pipeline
	ntByte, atByte, bgLowByte, bgHighByte uint8
	shiftLow, shiftHigh                   uint16
	attrLow, attrHigh                     uint8
	attrLatchLow, attrLatchHigh           uint8

	// Sprite evaluation/fetch state. spriteCount/sprites are the render-side
	// buffer drawPixel reads, populated by loadSprite during dots 257-320;
	// evalFound is the live count kept while spriteEvaluation scans OAM for
	// the next scanline, distinct so draw-side reads of
	// spriteCount are never clobbered mid-scanline by evaluation running
	// for the next one.
	spriteCount      int
	evalFound        int
	sprites          [8]spritePixel
	spriteZeroOnLine bool
	oamDataBuffer    uint8
	evalN            int
	evalM            int
	evalOAMDone      bool
	spriteFetchIndex int

	// vblank/NMI edge tracking, per the original's prevNmi/currentNmi
	prevNMI     bool
	suppressNMI bool

	cycleCount uint64
}

func New(lines *interrupt.Lines) *PPU {
	p := &PPU{lines: lines}
	p.Reset()
	return p
}

func (p *PPU) AttachMapper(m Mapper) { p.mapper = m }

// Scanline, Dot, Status, RenderingEnabled, and NMIEnabled expose a reduced
// snapshot of PPU timing/register state for save-state and debug use; they
// don't expose the full dot-level pipeline (shift registers, sprite
// evaluation latches). They are read-only: there are no matching setters,
// so a loaded save state does not write PPU state back.
func (p *PPU) Scanline() int            { return p.scanline }
func (p *PPU) Dot() int                 { return p.dot }
func (p *PPU) Status() uint8            { return p.ppuStatus }
func (p *PPU) RenderingEnabled() bool   { return p.renderingEnabled }
func (p *PPU) NMIEnabled() bool         { return p.nmiOnVBlank }
func (p *PPU) OAMBytes() [256]uint8     { return p.oam }
func (p *PPU) PaletteBytes() [32]uint8  { return p.paletteRAM }

// Reset establishes power-on state: scanline/dot at the pre-render line,
// registers clear (PPUSTATUS power-on content is left as 0 rather than the
// teacher's 0xA0, matching real 2C02 cold-boot with vblank/sprite-overflow
// flags clear until the first frame sets them).
func (p *PPU) Reset() {
	p.ppuCtrl, p.ppuMask, p.ppuStatus, p.oamAddr = 0, 0, 0, 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.readBuffer = 0
	p.scanline, p.dot = 261, 0
	p.oddFrame = false
	p.prevNMI, p.suppressNMI = false, false
	copy(p.paletteRAM[:], []uint8{
		0x09, 0x01, 0x00, 0x01, 0x00, 0x02, 0x02, 0x0D,
		0x08, 0x10, 0x08, 0x24, 0x00, 0x00, 0x04, 0x2C,
		0x09, 0x01, 0x34, 0x03, 0x00, 0x04, 0x00, 0x14,
		0x08, 0x3A, 0x00, 0x02, 0x00, 0x20, 0x2C, 0x08,
	})
}

// ---- CPU-facing register interface ($2000-$2007, mirrored every 8 bytes
// through $3FFF by the bus) ----

func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr & 7 {
	case 2:
		val := (p.ppuStatus & 0xE0) | (p.openBus & 0x1F)
		p.ppuStatus &^= 0x80
		p.w = false
		if p.scanline == 241 {
			if p.dot == 2 || p.dot == 3 {
				p.suppressNMI = true
				p.lines.NMI = false
			} else if p.dot == 1 {
				p.ppuStatus |= 0x80
				p.suppressNMI = false
			}
		}
		p.openBus = val
		return val
	case 4:
		if p.scanline <= 239 && p.renderingEnabled {
			p.openBus = p.oamDataBuffer
		} else {
			p.openBus = p.oam[p.oamAddr]
		}
		return p.openBus
	case 7:
		val := p.readBuffer
		addr14 := p.v & 0x3FFF
		if addr14 >= 0x3F00 {
			val = p.paletteReadInternal(addr14)
			p.readBuffer = p.readBusByte((addr14 & 0x2FFF))
		} else {
			p.readBuffer = p.readBusByte(addr14)
		}
		p.incrementVRAMAddr()
		p.mapper.NotifyA12(p.v, p.cycleCount, p.lines)
		p.openBus = val
		return val
	default:
		return p.openBus
	}
}

func (p *PPU) WriteRegister(addr uint16, val uint8) {
	p.openBus = val
	switch addr & 7 {
	case 0:
		p.ppuCtrl = val
		p.t = (p.t &^ 0x0C00) | (uint16(val&0x03) << 10)
		if val&0x03 == 0 {
			p.ntBase = 0x2000
		}
		if val&0x04 != 0 {
			p.addrIncrement = 32
		} else {
			p.addrIncrement = 1
		}
		if val&0x08 != 0 {
			p.spPatternTable = 0x1000
		} else {
			p.spPatternTable = 0
		}
		if val&0x10 != 0 {
			p.bgPatternTable = 0x1000
		} else {
			p.bgPatternTable = 0
		}
		p.spriteSize16 = val&0x20 != 0
		p.nmiOnVBlank = val&0x80 != 0
	case 1:
		p.ppuMask = val
		p.grayscale = val&0x01 != 0
		p.bgLeftClip = val&0x02 == 0
		p.spLeftClip = val&0x04 == 0
		p.showBG = val&0x08 != 0
		p.showSP = val&0x10 != 0
		p.renderingEnabled = p.showBG || p.showSP
	case 3:
		p.oamAddr = val
	case 4:
		if p.renderingEnabled && p.scanline <= 239 {
			p.oamAddr += 4
		} else {
			if p.oamAddr&0x03 == 0x02 {
				val &= 0xE3
			}
			p.oam[p.oamAddr] = val
			p.oamAddr++
		}
	case 5:
		if !p.w {
			p.t = (p.t &^ 0x001F) | uint16(val>>3)
			p.x = val & 0x07
		} else {
			p.t = (p.t &^ 0x73E0) | (uint16(val&0x07) << 12) | (uint16(val&0xF8) << 2)
		}
		p.w = !p.w
	case 6:
		if !p.w {
			p.t = (p.t &^ 0x7F00) | (uint16(val&0x3F) << 8)
		} else {
			p.t = (p.t &^ 0x00FF) | uint16(val)
			p.v = p.t
			p.mapper.NotifyA12(p.v, p.cycleCount, p.lines)
		}
		p.w = !p.w
	case 7:
		addr14 := p.v & 0x3FFF
		if addr14 >= 0x3F00 {
			p.paletteWriteInternal(addr14, val)
		} else {
			p.writeBusByte(addr14, val)
		}
		p.incrementVRAMAddr()
		p.mapper.NotifyA12(p.v, p.cycleCount, p.lines)
	}
}

func (p *PPU) incrementVRAMAddr() {
	if p.renderingEnabled && (p.scanline <= 239 || p.scanline == 261) {
		p.coarseXIncrement()
		p.yIncrement()
		return
	}
	p.v = (p.v + p.addrIncrement) & 0x7FFF
}

// ---- internal bus: $0000-$1FFF CHR, $2000-$3EFF nametables, $3F00-$3FFF
// palette ----

func (p *PPU) readBusByte(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.mapper.ReadCHR(addr)
	case addr < 0x3F00:
		return p.mapper.ReadNametable(addr & 0x0FFF)
	default:
		return p.paletteReadInternal(addr)
	}
}

func (p *PPU) writeBusByte(addr uint16, v uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.mapper.WriteCHR(addr, v)
	case addr < 0x3F00:
		p.mapper.WriteNametable(addr&0x0FFF, v)
	default:
		p.paletteWriteInternal(addr, v)
	}
}

func paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	if idx&0x13 == 0x10 {
		idx &^= 0x10
	}
	return idx
}

func (p *PPU) paletteReadInternal(addr uint16) uint8 {
	v := p.paletteRAM[paletteIndex(addr)]
	if p.grayscale {
		v &= 0x30
	}
	return v
}

func (p *PPU) paletteWriteInternal(addr uint16, v uint8) {
	p.paletteRAM[paletteIndex(addr)] = v & 0x3F
}

// ---- dot-level state machine ----

func (p *PPU) scanlinesPerFrame() int {
	if p.Region == RegionPAL {
		return 312
	}
	return 262
}

// Tick advances the PPU by exactly one dot.
func (p *PPU) Tick() {
	p.scanlineTick()

	p.dot++
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline >= p.scanlinesPerFrame()-1 {
			p.scanline = -1 // becomes 261-equivalent pre-render handled below
		}
	}
	p.cycleCount++
}

// scanline -1 is used transiently by Tick's wraparound; scanlineTick treats
// it identically to 261 (the pre-render line) so the rest of the state
// machine only ever sees 0..260 plus the pre-render line at (scanlinesPerFrame-1).
func (p *PPU) preRenderLine() int { return p.scanlinesPerFrame() - 1 }

func (p *PPU) scanlineTick() {
	sl := p.scanline
	if sl < 0 {
		sl = p.preRenderLine()
	}
	dot := p.dot

	visible := sl >= 0 && sl <= 239
	pre := sl == p.preRenderLine()

	if visible || pre {
		switch {
		case dot == 0:
			if pre {
				// nothing
			}
		case dot == 1:
			if pre {
				p.ppuStatus &^= 0xE0
				p.lines.NMI = false
				p.suppressNMI = false
				p.prevNMI = false
			}
			p.fetchNT()
			p.clearSecondaryOAM()
			p.drawPixel(sl, dot)
		case dot >= 2 && dot <= 256:
			p.shiftRegisters()
			p.fetchBG(dot)
			if p.renderingEnabled {
				p.spriteEvaluation(sl, dot)
			}
			if dot == 256 {
				p.yIncrement()
			}
			p.drawPixel(sl, dot)
		case dot == 257:
			p.shiftRegisters()
			p.copyHorizontal()
			p.fetchSprites(sl, dot)
		case dot >= 258 && dot <= 320:
			p.fetchSprites(sl, dot)
			if pre && dot >= 280 && dot <= 304 {
				p.copyVertical()
			}
		case dot >= 321 && dot <= 336:
			p.shiftRegisters()
			p.fetchBG(dot)
		case dot == 337 || dot == 339:
			p.fetchNT()
			if dot == 339 && pre {
				p.FrameReady = true
				if p.oddFrame && p.renderingEnabled {
					p.dot = 340 // skip the idle dot on odd frames
				}
				p.oddFrame = !p.oddFrame
			}
		}
		if dot >= 1 && dot <= 256 || (dot >= 321 && dot <= 340) {
			p.mapper.NotifyA12(p.bgFetchAddr(), p.cycleCount, p.lines)
		}
	} else if sl >= 241 && sl <= p.preRenderLine()-1 {
		p.vblank(sl, dot)
	}
}

func (p *PPU) bgFetchAddr() uint16 {
	if p.renderingEnabled {
		return p.spPatternTable // approximates the PPU address bus resting on the sprite pattern table outside active bg fetch windows, which is what clocks MMC3's A12 counter
	}
	return p.v
}

// vblank implements the three documented (scanline,dot) NMI race-condition
// cases plus the steady-state edge re-arm that lets a program that never
// reads PPUSTATUS still see repeated NMIs across a long vblank.
func (p *PPU) vblank(sl, dot int) {
	if sl != 241 {
		currentNMI := p.nmiOnVBlank && p.ppuStatus&0x80 != 0 && !p.suppressNMI
		if !p.prevNMI && currentNMI {
			p.lines.AssertNMI()
		}
		p.prevNMI = currentNMI
		return
	}
	switch dot {
	case 1:
		if !p.suppressNMI {
			p.ppuStatus |= 0x80
		}
		if p.nmiOnVBlank && p.ppuStatus&0x80 != 0 {
			p.prevNMI = true
			p.lines.AssertNMI()
		}
	case 0:
		// no-op
	default:
		currentNMI := p.nmiOnVBlank && p.ppuStatus&0x80 != 0 && !p.suppressNMI
		if !p.prevNMI && currentNMI {
			p.lines.AssertNMI()
		}
		p.prevNMI = currentNMI
	}
}

// ---- background pipeline ----

func (p *PPU) fetchBG(dot int) {
	if !p.renderingEnabled {
		return
	}
	switch dot & 7 {
	case 1:
		p.fetchNT()
	case 3:
		p.fetchAT()
	case 5:
		p.fetchBGLow()
	case 7:
		p.fetchBGHigh()
	case 0:
		p.coarseXIncrement()
	}
}

func (p *PPU) fetchNT() {
	p.attrLatchLow = p.attrLow & 1
	p.attrLatchHigh = p.attrHigh & 1
	p.shiftLow = (p.shiftLow &^ 0xFF00) | uint16(p.bgLowByte)<<8
	p.shiftHigh = (p.shiftHigh &^ 0xFF00) | uint16(p.bgHighByte)<<8
	p.ntByte = p.mapper.ReadNametable((0x2000 | (p.v & 0x0FFF)) & 0x0FFF)
}

func (p *PPU) fetchAT() {
	shift := ((p.v >> 4) & 4) | (p.v & 2)
	attrAddr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	attr := p.mapper.ReadNametable(attrAddr & 0x0FFF)
	p.atByte = (attr >> shift) & 0x03
}

func (p *PPU) fetchBGLow() {
	fineY := (p.v >> 12) & 0x07
	tileAddr := p.bgPatternTable + uint16(p.ntByte)*16 + fineY
	p.bgLowByte = p.mapper.ReadCHR(tileAddr)
}

func (p *PPU) fetchBGHigh() {
	fineY := (p.v >> 12) & 0x07
	tileAddr := p.bgPatternTable + uint16(p.ntByte)*16 + fineY + 8
	p.bgHighByte = p.mapper.ReadCHR(tileAddr)
	// latch the attribute bits that will apply to the tile now queued in
	// the low byte of the shift registers
	if p.atByte&1 != 0 {
		p.attrLow = 0xFF
	} else {
		p.attrLow = 0x00
	}
	if p.atByte&2 != 0 {
		p.attrHigh = 0xFF
	} else {
		p.attrHigh = 0x00
	}
}

func (p *PPU) shiftRegisters() {
	if !p.renderingEnabled {
		return
	}
	p.shiftLow <<= 1
	p.shiftHigh <<= 1
	p.attrLow <<= 1
	p.attrLow |= p.attrLatchLow
	p.attrHigh <<= 1
	p.attrHigh |= p.attrLatchHigh
}

func (p *PPU) coarseXIncrement() {
	if !p.renderingEnabled {
		return
	}
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) yIncrement() {
	if !p.renderingEnabled {
		return
	}
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyHorizontal() {
	if !p.renderingEnabled {
		return
	}
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

func (p *PPU) copyVertical() {
	if !p.renderingEnabled {
		return
	}
	p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0)
}

// ---- sprite evaluation (hardware overflow-bug faithful) and fetch ----

func (p *PPU) clearSecondaryOAM() {
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = 0xFF
	}
	p.evalN, p.evalM, p.evalOAMDone = 0, 0, false
}

func (p *PPU) spriteHeight() int {
	if p.spriteSize16 {
		return 16
	}
	return 8
}

func (p *PPU) spriteEvaluation(sl, dot int) {
	if dot < 65 || dot > 256 {
		return
	}
	if dot == 65 {
		p.evalN, p.evalM, p.evalOAMDone = 0, 0, false
		p.evalFound = 0
	}
	if dot&1 == 1 {
		oamAddr := p.evalN*4 + p.evalM
		if oamAddr < 256 {
			p.oamDataBuffer = p.oam[oamAddr]
		}
		return
	}

	secAddr := p.evalN*4 + p.evalM
	if p.evalOAMDone {
		if secAddr < 32 {
			p.evalN++
			if p.evalN > 63 {
				p.evalN = 0
			}
		}
		return
	}

	inRange := int(sl)-int(p.oamDataBuffer) >= 0 && int(sl)-int(p.oamDataBuffer) < p.spriteHeight()

	if p.evalN*4 < 32 || secAddr < 32 {
		if secAddr < 32 {
			p.secondaryOAM[secAddr] = p.oamDataBuffer
			if p.evalM == 0 && inRange {
				p.evalFound++
			}
		}
		if inRange {
			p.evalM++
			if p.evalM >= 4 {
				p.evalM = 0
				p.evalN++
				if p.evalN*4 == 0 && p.evalN == 64 {
					p.evalN = 0
					p.evalOAMDone = true
				}
			}
		} else {
			p.evalM = 0
			p.evalN++
		}
	} else {
		// overflow-detection branch: once secondary OAM has filled, the
		// hardware keeps scanning primary OAM but - due to a bug in the
		// comparator - advances both n and m together, which both causes
		// the false-positive overflow flag on certain sprite layouts and
		// corrupts sprite evaluation for the rest of the scanline.
		if inRange {
			p.ppuStatus |= 0x20
		}
		p.evalM++
		if p.evalM >= 4 {
			p.evalM = 0
		}
		p.evalN++
	}
	if p.evalN > 63 {
		p.evalN = 0
		p.evalOAMDone = true
	}
	if sl == 0 && p.evalN == 0 {
		p.spriteZeroOnLine = true
	}
}

func (p *PPU) fetchSprites(sl, dot int) {
	if dot == 257 {
		p.spriteFetchIndex = 0
		p.spriteCount = 0
		p.spriteZeroOnLine = p.secondaryOAMHasSpriteZero(sl)
	}
	if !p.renderingEnabled {
		return
	}
	switch (dot - 1) & 7 {
	case 0:
		p.mapper.ReadNametable((0x2000 | (p.v & 0x0FFF)) & 0x0FFF)
	case 2:
		p.mapper.ReadNametable((0x23C0 | (p.v & 0x0C00)) & 0x0FFF)
	case 3:
		p.loadSprite(sl)
	}
}

func (p *PPU) secondaryOAMHasSpriteZero(sl int) bool {
	// approximated via evaluation-time latch; real hardware tracks this as
	// evaluation runs rather than re-deriving it from secondary OAM content.
	return p.spriteZeroOnLine
}

func (p *PPU) loadSprite(sl int) {
	idx := p.spriteFetchIndex
	if idx >= 8 {
		return
	}
	base := idx * 4
	y := p.secondaryOAM[base]
	tileIndex := p.secondaryOAM[base+1]
	attr := p.secondaryOAM[base+2]
	xPos := p.secondaryOAM[base+3]

	if y == 0xFF && tileIndex == 0xFF {
		// unused secondary OAM slot past the active sprite count
		p.spriteFetchIndex++
		return
	}

	vFlip := attr&0x80 != 0
	hFlip := attr&0x40 != 0
	priority := attr&0x20 == 0
	palette := attr & 0x03

	rowInSprite := sl - int(y)
	if vFlip {
		rowInSprite = p.spriteHeight() - 1 - rowInSprite
	}

	var tileAddr uint16
	if p.spriteSize16 {
		table := uint16(tileIndex&0x01) * 0x1000
		tile := uint16(tileIndex &^ 0x01)
		row := rowInSprite
		if row >= 8 {
			tile++
			row -= 8
		}
		tileAddr = table + tile*16 + uint16(row)
	} else {
		tileAddr = p.spPatternTable + uint16(tileIndex)*16 + uint16(rowInSprite)
	}

	low := p.mapper.ReadCHR(tileAddr)
	high := p.mapper.ReadCHR(tileAddr + 8)
	if hFlip {
		low = reverseBits(low)
		high = reverseBits(high)
	}

	p.sprites[idx] = spritePixel{
		patternLow:   low,
		patternHigh:  high,
		x:            xPos,
		palette:      palette,
		priority:     priority,
		isSpriteZero: idx == 0 && p.spriteZeroOnLine,
	}
	if idx >= p.spriteCount {
		p.spriteCount = idx + 1
	}
	p.spriteFetchIndex++
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// ---- compositing ----

func (p *PPU) drawPixel(sl, dot int) {
	x := dot - 1
	if sl < 0 || sl > 239 || x < 0 || x > 255 {
		return
	}

	if p.v&0x3F00 == 0x3F00 && !p.renderingEnabled {
		idx := p.paletteReadInternal(p.v)
		p.Framebuffer[sl*256+x] = idx
		return
	}

	var bgPixel uint8
	if p.showBG && !(x < 8 && p.bgLeftClip) {
		shift := 15 - p.x
		b0 := uint8((p.shiftLow >> shift) & 1)
		b1 := uint8((p.shiftHigh >> shift) & 1)
		a0 := uint8((uint16(p.attrLow) >> shift) & 1)
		a1 := uint8((uint16(p.attrHigh) >> shift) & 1)
		bgIndex := b0 | b1<<1
		if bgIndex != 0 {
			bgPixel = 0x10*0 + (a0|a1<<1)<<2 | bgIndex
		}
	}

	var spPixel uint8
	var spPriority bool
	spriteZeroHit := false
	if p.showSP && !(x < 8 && p.spLeftClip) {
		for i := 0; i < p.spriteCount; i++ {
			s := p.sprites[i]
			off := int(x) - int(s.x)
			if off < 0 || off > 7 {
				continue
			}
			bit := uint(7 - off)
			lo := (s.patternLow >> bit) & 1
			hi := (s.patternHigh >> bit) & 1
			idx := lo | hi<<1
			if idx == 0 {
				continue
			}
			if s.isSpriteZero && bgPixel != 0 && x != 255 {
				spriteZeroHit = true
			}
			if spPixel == 0 {
				spPixel = 0x10 | s.palette<<2 | idx
				spPriority = s.priority
			}
		}
	}
	if spriteZeroHit {
		p.ppuStatus |= 0x40
	}

	var final uint8
	switch {
	case spPixel != 0 && (bgPixel == 0 || spPriority):
		final = spPixel
	case bgPixel != 0:
		final = bgPixel
	default:
		final = 0
	}
	p.Framebuffer[sl*256+x] = p.paletteReadInternal(0x3F00 + uint16(final))
}
