// Package apu is a register-level stand-in for the NES Audio Processing
// Unit. The CORE (CPU/PPU/Bus/cartridge) only needs something that answers
// the $4000-$4017 bus window the way real hardware's open-bus and
// length-counter-status behavior does; cycle-counted channel synthesis is
// out of scope, so no channel state is modeled.
package apu

// APU is a minimal $4000-$4017 register stand-in: writes are accepted and
// discarded except for the bits the status register reflects back, and
// status reads never report activity since no channel is ever clocked.
type APU struct {
	frameIRQEnable bool
	dmcIRQ         bool
	channelEnable  [5]bool // pulse1, pulse2, triangle, noise, dmc
	sampleRate     int
}

// New creates a stand-in APU.
func New() *APU {
	return &APU{sampleRate: 44100}
}

// Reset clears all register state.
func (a *APU) Reset() {
	a.frameIRQEnable = false
	a.dmcIRQ = false
	a.channelEnable = [5]bool{}
}

// WriteRegister accepts a write to $4000-$4013 or $4015/$4017. Only the
// bits that affect future status reads ($4015's channel-enable mask and
// $4017's frame-IRQ-inhibit bit) are retained; everything else (duty
// cycle, envelope, sweep, timers) is accepted and dropped since no channel
// is synthesized.
func (a *APU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x4015:
		for i := range a.channelEnable {
			a.channelEnable[i] = value&(1<<uint(i)) != 0
		}
		a.dmcIRQ = false
	case 0x4017:
		a.frameIRQEnable = value&0x40 == 0
	}
}

// ReadStatus handles a $4015 read: bits 0-4 report each channel's length
// counter as always empty (no channel is ever clocked), and the frame/DMC
// IRQ flags stay clear since this stand-in never raises them.
func (a *APU) ReadStatus() uint8 {
	return 0
}

// GetFrameIRQ reports whether the frame counter would currently assert IRQ.
// Always false: without channel clocking there is no frame sequencer to
// reach a quarter/half-frame IRQ step.
func (a *APU) GetFrameIRQ() bool { return false }

// GetDMCIRQ reports the DMC channel's IRQ flag. Always false, matching
// GetFrameIRQ, since the DMC channel is never clocked.
func (a *APU) GetDMCIRQ() bool { return a.dmcIRQ }

// SetSampleRate and GetSampleRate keep the config surface a real audio
// backend would bind to, even though nothing currently generates samples.
func (a *APU) SetSampleRate(rate int) { a.sampleRate = rate }
func (a *APU) GetSampleRate() int     { return a.sampleRate }

// IsChannelEnabled reports whether $4015 last asked for this channel
// (0=pulse1 .. 4=dmc); useful for tooling/tests, not consulted by output.
func (a *APU) IsChannelEnabled(channel int) bool {
	if channel < 0 || channel >= len(a.channelEnable) {
		return false
	}
	return a.channelEnable[channel]
}
