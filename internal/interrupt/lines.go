// Package interrupt holds the three-line interrupt bus shared between the
// CPU, the PPU, and cartridge mappers, grounded on the InterruptBus struct
// of original_source/src/nes/mod.rs, generalized from an Rc<Cell<...>>
// shared-ownership handle into a plain struct passed by pointer between the
// single emulator owner's components.
package interrupt

// Lines is the shared interrupt state. IRQ is level-sensitive and may be
// asserted by more than one source (APU frame counter, mapper IRQ such as
// MMC3's scanline counter); callers OR their condition into it and clear
// their own contribution, never the whole line. NMI is edge-latched: the
// PPU sets it on a vblank-NMI edge, and the CPU consumes (clears) it the
// moment it samples a true value, so a level condition that never
// re-edges will not re-trigger.
type Lines struct {
	IRQ   bool
	NMI   bool
	Reset bool
}

func (l *Lines) AssertIRQ()  { l.IRQ = true }
func (l *Lines) ClearIRQ()   { l.IRQ = false }
func (l *Lines) AssertNMI()  { l.NMI = true }
func (l *Lines) RequestReset() { l.Reset = true }

// Sample copies the current NMI edge out and consumes it, and returns the
// level IRQ state unconsumed.
func (l *Lines) Sample() (irq, nmi bool) {
	irq = l.IRQ
	nmi = l.NMI
	if nmi {
		l.NMI = false
	}
	return
}
