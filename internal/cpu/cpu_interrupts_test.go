package cpu

import "testing"

// Interrupt entry, masking, and the BRK/NMI hijack quirk. The 7-cycle shape
// these tests check against is the documented hardware interrupt sequence
// shared between IRQ/NMI/RESET and BRK (beginInterrupt/beginBRK).

func TestNMIEntryTakes7CyclesAndVectorsTo0xFFFA(t *testing.T) {
	h := newCPUTestHelper()
	h.resetAt(0x1234)
	h.CPU.SP = 0xFD
	h.Bus.SetBytes(0xFFFA, 0x00, 0x90) // NMI vector -> $9000
	h.Lines.AssertNMI()

	cycles := h.runInstruction()
	if cycles != 7 {
		t.Errorf("NMI entry took %d cycles, want 7", cycles)
	}
	if h.CPU.PC != 0x9000 {
		t.Errorf("PC = %#04x, want 0x9000 after NMI", h.CPU.PC)
	}
	if !h.CPU.I {
		t.Error("I flag should be set on interrupt entry")
	}
	if h.CPU.SP != 0xFA {
		t.Errorf("SP = %#02x, want 0xFA (3 bytes pushed)", h.CPU.SP)
	}
	if h.Lines.NMI {
		t.Error("NMI edge should be consumed once serviced")
	}
	pcl := h.Bus.data[0x0100+0xFC]
	pch := h.Bus.data[0x0100+0xFD]
	if pch != 0x12 || pcl != 0x34 {
		t.Errorf("pushed return address = %02x%02x, want 1234", pch, pcl)
	}
}

func TestIRQIgnoredWhileIFlagSet(t *testing.T) {
	h := newCPUTestHelper()
	h.resetAt(0x8000) // Reset leaves I=true
	h.Bus.SetByte(0x8000, 0xEA)        // NOP
	h.Lines.AssertIRQ()

	cycles := h.runInstruction()
	if cycles != 2 {
		t.Errorf("masked IRQ should let NOP run normally (2 cycles), got %d", cycles)
	}
	if h.CPU.PC != 0x8001 {
		t.Errorf("PC = %#04x, want 0x8001 (NOP executed, IRQ deferred)", h.CPU.PC)
	}
}

func TestIRQTakenOnceUnmasked(t *testing.T) {
	h := newCPUTestHelper()
	h.resetAt(0x8000)
	h.CPU.I = false
	h.Bus.SetBytes(0xFFFE, 0x00, 0xA0) // IRQ/BRK vector -> $A000
	h.Lines.AssertIRQ()

	cycles := h.runInstruction()
	if cycles != 7 {
		t.Errorf("IRQ entry took %d cycles, want 7", cycles)
	}
	if h.CPU.PC != 0xA000 {
		t.Errorf("PC = %#04x, want 0xA000 after IRQ", h.CPU.PC)
	}
}

func TestBRKPushesStatusWithBSet(t *testing.T) {
	h := newCPUTestHelper()
	h.resetAt(0x8000)
	h.CPU.SP = 0xFD
	h.Bus.SetBytes(0x8000, 0x00, 0x00) // BRK
	h.Bus.SetBytes(0xFFFE, 0x00, 0xB0) // BRK/IRQ vector -> $B000

	cycles := h.runInstruction()
	if cycles != 7 {
		t.Errorf("BRK took %d cycles, want 7", cycles)
	}
	status := h.Bus.data[0x0100+0xFB]
	if status&0x10 == 0 {
		t.Error("BRK should push status with B flag set")
	}
	if h.CPU.PC != 0xB000 {
		t.Errorf("PC = %#04x, want 0xB000", h.CPU.PC)
	}
}

func TestBRKHijackedByPendingNMI(t *testing.T) {
	h := newCPUTestHelper()
	h.resetAt(0x8000)
	h.CPU.SP = 0xFD
	h.Bus.SetBytes(0x8000, 0x00, 0x00) // BRK
	h.Bus.SetBytes(0xFFFE, 0x00, 0xB0) // ordinary BRK vector, should NOT be used
	h.Bus.SetBytes(0xFFFA, 0x00, 0x90) // NMI vector, should be used instead

	// Tick through: opcode fetch (1), padding read (2), push PCH (3),
	// push PCL (4), push status (5) - five ticks put us right before the
	// vector-fetch step, which is where beginBRK samples lines.NMI.
	for i := 0; i < 5; i++ {
		h.CPU.Tick(h.Bus)
	}
	h.Lines.AssertNMI()
	h.CPU.Tick(h.Bus) // vector-fetch step: hijacked to the NMI vector
	h.CPU.Tick(h.Bus) // PC = fetched vector

	if h.CPU.PC != 0x9000 {
		t.Errorf("hijacked BRK PC = %#04x, want 0x9000 (NMI vector)", h.CPU.PC)
	}
	if h.Lines.NMI {
		t.Error("the hijacking NMI edge should be consumed")
	}
	status := h.Bus.data[0x0100+0xFB]
	if status&0x10 == 0 {
		t.Error("a hijacked BRK should still push status with B set")
	}
}

func TestResetRequestGoesThroughDummyPushSequence(t *testing.T) {
	h := newCPUTestHelper()
	h.resetAt(0x8000)
	h.CPU.SP = 0xFD
	h.Bus.SetByte(0x8000, 0xEA) // NOP, should be abandoned in favor of the reset
	h.Bus.SetBytes(0xFFFC, 0x00, 0xC0)
	h.Lines.RequestReset()

	cycles := h.runInstruction()
	if cycles != 7 {
		t.Errorf("RESET entry took %d cycles, want 7", cycles)
	}
	if h.CPU.PC != 0xC000 {
		t.Errorf("PC = %#04x, want 0xC000 after RESET", h.CPU.PC)
	}
	if h.CPU.SP != 0xFA {
		t.Errorf("SP = %#02x, want 0xFA (3 dummy decrements, no writes)", h.CPU.SP)
	}
	if h.Bus.writeCount[0x01FD] != 0 || h.Bus.writeCount[0x01FC] != 0 || h.Bus.writeCount[0x01FB] != 0 {
		t.Error("RESET's stack 'pushes' must be reads, not writes")
	}
}
