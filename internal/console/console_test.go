package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// flatCartridge is a trivial CartridgeBus backed by flat byte slices,
// standing in for a real mapper for core-level testing.
type flatCartridge struct {
	prg [0x10000]uint8
	chr [0x2000]uint8
}

func (f *flatCartridge) ReadPRG(addr uint16) uint8       { return f.prg[addr] }
func (f *flatCartridge) WritePRG(addr uint16, val uint8) { f.prg[addr] = val }
func (f *flatCartridge) ReadCHR(addr uint16) uint8       { return f.chr[addr] }
func (f *flatCartridge) WriteCHR(addr uint16, val uint8) { f.chr[addr] = val }

func newTestConsole() (*Console, *flatCartridge) {
	cart := &flatCartridge{}
	c := New(DefaultOptions(), cart)
	return c, cart
}

// TestResetFromVector: the reset vector at 0xFFFC/0xFFFD loads PC, S
// lands at 0xFD, and I is set.
func TestResetFromVector(t *testing.T) {
	c, cart := newTestConsole()
	cart.prg[0xFFFC] = 0x34
	cart.prg[0xFFFD] = 0x12

	c.PowerOn()

	assert.Equal(t, uint16(0x1234), c.CPU.PC)
	assert.Equal(t, uint8(0xFD), c.CPU.S)
	assert.True(t, c.CPU.I)
}

func TestOAMDMACopiesPageIntoOAM(t *testing.T) {
	c, cart := newTestConsole()
	cart.prg[0xFFFC], cart.prg[0xFFFD] = 0x00, 0x80
	c.PowerOn()

	for i := 0; i < 256; i++ {
		c.ram[i] = uint8(i)
	}
	c.Write(0x4014, 0x00) // DMA from page 0x00 (internal RAM)

	c.PPU.WriteRegister(0x2003, 0x05)
	assert.Equal(t, uint8(0x05), c.PPU.ReadRegister(0x2004))
}

func TestRunFrameProducesFramebufferAndSamples(t *testing.T) {
	c, cart := newTestConsole()
	// A minimal program: an infinite NOP/JMP-to-self loop so the CPU
	// never faults on an unassigned opcode while the PPU drives the
	// frame to completion.
	cart.prg[0xFFFC], cart.prg[0xFFFD] = 0x00, 0x80
	cart.prg[0x8000] = 0x4C // JMP absolute
	cart.prg[0x8001] = 0x00
	cart.prg[0x8002] = 0x80
	c.PowerOn()

	frame, samples := c.RunFrame()

	assert.Equal(t, 256*240, len(frame))
	assert.NotEmpty(t, samples)
	assert.False(t, c.CPU.Faulted())
}
