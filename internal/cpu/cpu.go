// Package cpu implements the 6502-family CPU used by the NES: the
// documented instruction set plus the undocumented opcodes real
// cartridges rely on (LAX, SAX, SBC's duplicate, DCP, ISB, SLO, RLA,
// SRE, RRA, and the multi-byte read-NOPs).
package cpu

import "github.com/claude-student/nescore/internal/clock"

// Bus is the host memory interface the CPU reads and writes through.
// A nil Bus is tolerated: reads return 0 and writes are
// discarded, so the CPU can run in isolation for testing.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

const (
	stackBase   = 0x0100
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
	nmiVector   = 0xFFFA
)

// CPU holds the 6502 register file, status flags, and interrupt
// latches. Addressing-mode computation lives in
// addressing.go, the decoded opcode table lives in opcodes.go, and the
// per-operation execution logic lives in execute.go.
type CPU struct {
	A, X, Y uint8
	S       uint8
	PC      uint16

	// Status flags. Bit 5 is always 1 and is synthesized only when the
	// status byte is assembled for a push; it has no persistent field.
	N, V, D, I, Z, C bool

	bus Bus

	nmiPending bool
	irqLevel   bool

	// Delayed I-flag latch: CLI/SEI/PLP write here instead of directly
	// to I. armDelay tracks whether one full instruction has elapsed
	// since the write; the new value lands one instruction late.
	hasPendingI bool
	pendingIVal bool
	armDelay    bool

	faulted    bool
	poweredOff bool

	totalCycles uint64

	// apuAcc tracks CPU cycles since the last 7457-cycle boundary; once
	// it rolls past the frame-sequencer period, apuCallback is told how
	// many boundaries were crossed.
	apuAcc      uint64
	apuCallback func(steps uint64)
}

// SetAPUStepCallback installs the hook invoked whenever execution
// crosses a 7457-cycle (240 Hz frame-sequencer) boundary. A nil
// callback (the default) is a silent no-op.
func (c *CPU) SetAPUStepCallback(fn func(steps uint64)) {
	c.apuCallback = fn
}

// New constructs a CPU wired to bus. Callers should follow with
// PowerOn and Reset before stepping, mirroring real hardware's
// power-up sequence.
func New(bus Bus) *CPU {
	return &CPU{bus: bus}
}

// SetBus rebinds the memory interface, e.g. when a test wants to swap
// in a different mock mid-test.
func (c *CPU) SetBus(bus Bus) { c.bus = bus }

// PowerOn zeroes all CPU state to the documented 6502 power-up values.
func (c *CPU) PowerOn() {
	c.A, c.X, c.Y = 0, 0, 0
	c.S = 0x00
	c.N, c.V, c.D, c.Z, c.C = false, false, false, false, false
	c.I = true
	c.PC = 0
	c.nmiPending = false
	c.irqLevel = false
	c.hasPendingI = false
	c.armDelay = false
	c.faulted = false
	c.poweredOff = false
	c.totalCycles = 0
	c.apuAcc = 0
}

// Reset re-reads the reset vector and drops any pending interrupt
// requests, without otherwise disturbing cartridge-visible memory. The
// stack pointer is decremented by 3, matching the three dummy stack
// pushes real hardware performs during its reset sequence.
func (c *CPU) Reset() {
	c.S -= 3
	c.I = true
	c.nmiPending = false
	c.irqLevel = false
	c.hasPendingI = false
	c.armDelay = false
	c.faulted = false
	c.poweredOff = false
	lo := uint16(c.read(resetVector))
	hi := uint16(c.read(resetVector + 1))
	c.PC = lo | hi<<8
}

// PowerOff marks the CPU inert: subsequent Step calls return their
// budget without executing, same as after an unknown-opcode fault.
func (c *CPU) PowerOff() {
	c.poweredOff = true
}

// Faulted reports whether an unknown opcode has latched the fault
// flag.
func (c *CPU) Faulted() bool { return c.faulted }

// NMI latches a non-maskable interrupt request. It is serviced at the
// next instruction boundary regardless of the I flag.
func (c *CPU) NMI() {
	c.nmiPending = true
}

// IRQ sets the level of the maskable interrupt line. APU frame/DMC
// IRQs and any other source OR onto this single level; passing false
// drops the request once its source deasserts.
func (c *CPU) IRQ(level bool) {
	c.irqLevel = level
}

// Skip accounts for n CPU cycles being stolen by something outside
// normal instruction execution, such as OAM DMA, without touching
// memory or registers.
func (c *CPU) Skip(n uint64) {
	c.totalCycles += n
}

// TotalCycles returns the number of cycles consumed since the last
// PowerOn, for introspection and tests.
func (c *CPU) TotalCycles() uint64 { return c.totalCycles }

// Step runs whole instructions until budget cycles have been consumed
// and returns the actual number of cycles consumed, which may exceed
// budget by at most one instruction's worth since instructions never
// execute partially.
func (c *CPU) Step(budget uint64) uint64 {
	if c.faulted || c.poweredOff {
		return budget
	}
	var consumed uint64
	for consumed < budget {
		if c.faulted || c.poweredOff {
			break
		}
		n := c.stepOne()
		consumed += n
		c.apuAcc += n
		if c.apuAcc >= clock.APUFrameSequencerPeriod {
			steps := c.apuAcc / clock.APUFrameSequencerPeriod
			c.apuAcc %= clock.APUFrameSequencerPeriod
			if c.apuCallback != nil {
				c.apuCallback(steps)
			}
		}
	}
	c.totalCycles += consumed
	return consumed
}

// stepOne services a pending interrupt or executes exactly one
// instruction, returning the cycles charged.
func (c *CPU) stepOne() uint64 {
	if c.nmiPending {
		c.nmiPending = false
		c.serviceInterrupt(nmiVector)
		return 7
	}
	if c.irqLevel && !c.I {
		c.serviceInterrupt(irqVector)
		return 7
	}

	opcode := c.read(c.PC)
	c.PC++
	dec := opcodeTable[opcode]
	if dec.op == opUnknown {
		c.faulted = true
		return 0
	}

	addr, crossed := c.operand(dec.mode)
	cycles := dec.cycles
	if dec.variableCross && crossed {
		cycles++
	}
	cycles += c.execute(dec.op, dec.mode, addr, crossed)

	c.tickDelayedIFlag()
	return uint64(cycles)
}

// tickDelayedIFlag advances the CLI/SEI/PLP delay latch by one
// instruction, applying the pending I value once a full instruction
// has elapsed since it was queued.
func (c *CPU) tickDelayedIFlag() {
	if !c.hasPendingI {
		return
	}
	if c.armDelay {
		c.I = c.pendingIVal
		c.hasPendingI = false
		c.armDelay = false
		return
	}
	c.armDelay = true
}

// queueIFlag schedules a delayed I-flag update, used by CLI/SEI/PLP.
func (c *CPU) queueIFlag(v bool) {
	c.hasPendingI = true
	c.pendingIVal = v
	c.armDelay = false
}

// serviceInterrupt pushes PC and status (with B clear) and loads PC
// from the given vector, clearing any delayed I-flag update in
// flight so a CLI just before the interrupt cannot resurrect itself
// inside the handler.
func (c *CPU) serviceInterrupt(vector uint16) {
	c.pushWord(c.PC)
	c.push(c.statusByte(false))
	c.I = true
	c.hasPendingI = false
	c.armDelay = false
	lo := uint16(c.read(vector))
	hi := uint16(c.read(vector + 1))
	c.PC = lo | hi<<8
}

func (c *CPU) read(addr uint16) uint8 {
	if c.bus == nil {
		return 0
	}
	return c.bus.Read(addr)
}

func (c *CPU) write(addr uint16, val uint8) {
	if c.bus == nil {
		return
	}
	c.bus.Write(addr, val)
}

func (c *CPU) push(v uint8) {
	c.write(stackBase+uint16(c.S), v)
	c.S--
}

func (c *CPU) pop() uint8 {
	c.S++
	return c.read(stackBase + uint16(c.S))
}

func (c *CPU) pushWord(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *CPU) popWord() uint16 {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	return lo | hi<<8
}

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&0x80 != 0
}

// statusByte assembles the P register for a stack push. software is
// true for PHP/BRK (B pushed as 1) and false for hardware NMI/IRQ
// service (B pushed as 0). Bit 5 is always pushed as 1.
func (c *CPU) statusByte(software bool) uint8 {
	var s uint8
	if c.N {
		s |= 0x80
	}
	if c.V {
		s |= 0x40
	}
	s |= 0x20
	if software {
		s |= 0x10
	}
	if c.D {
		s |= 0x08
	}
	if c.I {
		s |= 0x04
	}
	if c.Z {
		s |= 0x02
	}
	if c.C {
		s |= 0x01
	}
	return s
}

// restoreStatus applies all flags except I from a pulled status byte;
// I is handled by each caller's own delayed-or-immediate rule. Bits 4
// and 5 (B and the unused bit) are not persistent state and are
// simply ignored on pull.
func (c *CPU) restoreStatus(s uint8) {
	c.N = s&0x80 != 0
	c.V = s&0x40 != 0
	c.D = s&0x08 != 0
	c.Z = s&0x02 != 0
	c.C = s&0x01 != 0
}
