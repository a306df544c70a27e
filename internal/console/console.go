// Package console wires the CPU, PPU, and APU engines together and
// owns the shared internal/clock.Clock. Control flow is PPU-driven:
// the PPU renders a frame and calls back into the CPU for cycle
// catch-up, rather than a CPU-driven instruction loop polling the
// PPU.
package console

import (
	"github.com/golang/glog"

	"github.com/claude-student/nescore/internal/apu"
	"github.com/claude-student/nescore/internal/clock"
	"github.com/claude-student/nescore/internal/cpu"
	"github.com/claude-student/nescore/internal/ppu"
)

// CartridgeBus is the host-supplied collaborator for the cartridge:
// PRG memory at $4020-$FFFF and CHR memory
// (pattern tables) at $0000-$1FFF in PPU address space. The core never
// interprets mapper/header semantics; it only calls through this
// interface. A nil CartridgeBus reads as zero and discards writes.
type CartridgeBus interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, val uint8)
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, val uint8)
}

// ControllerPort is the optional, off-by-default collaborator for the
// joypad strobe/shift registers that alias $4016/$4017 on the CPU bus.
// Controller input decoding itself lives host-side; this
// is only the plumbing that forwards reads of both addresses and
// writes to $4016 here, while writes to $4017 go both here and to the
// APU's frame-counter register.
type ControllerPort interface {
	Write(addr uint16, val uint8)
	Read(addr uint16) uint8
}

// Options configures a Console at construction, scoped to what the
// core itself needs: there is no config file here, since the core has
// no outer event loop to read one for.
type Options struct {
	Mirror     ppu.Mirror
	Volume     uint8 // APU master volume, see apu.SetVolume
	SampleRate int   // host audio sample rate, used to size per-step sample windows
}

// DefaultOptions returns the options a freshly powered-on NTSC console
// would use absent any host configuration.
func DefaultOptions() Options {
	return Options{
		Mirror:     ppu.MirrorHorizontal,
		Volume:     200,
		SampleRate: 44100,
	}
}

// Console is the topmost driver: the only thing that calls
// clock.Clock.Advance-shaped methods, and the only thing that invokes
// the external collaborator callbacks.
type Console struct {
	CPU *cpu.CPU
	PPU *ppu.PPU
	APU *apu.APU

	clock *clock.Clock

	ram [0x800]uint8

	cart       CartridgeBus
	controller ControllerPort

	samplesPerStep int
	audioBuf       []uint8
}

// New constructs a fully wired Console. cart may be nil for core-only
// testing; SetControllerPort installs the optional extra collaborator
// later.
func New(opts Options, cart CartridgeBus) *Console {
	c := &Console{clock: clock.New(), cart: cart}
	c.samplesPerStep = opts.SampleRate / 240
	if c.samplesPerStep < 1 {
		c.samplesPerStep = 1
	}

	c.CPU = cpu.New(c)
	c.PPU = ppu.New(c.chrRead, c.chrWrite)
	c.PPU.SetMirrorMode(opts.Mirror)
	c.APU = apu.New(c.onAPUIRQ, c.dmcFetch)
	c.APU.SetVolume(opts.Volume)

	c.PPU.CPUTick = c.onPPUCPUTick
	c.PPU.HBlank = c.onHBlank
	c.PPU.VBlank = c.onVBlank
	c.PPU.RaiseNMI = c.CPU.NMI
	c.CPU.SetAPUStepCallback(c.onAPUStep)

	glog.V(1).Infof("console: constructed (mirror=%d sampleRate=%d)", opts.Mirror, opts.SampleRate)
	return c
}

// SetControllerPort installs the optional $4016/$4017 write-side
// collaborator. Passing nil restores the "return 0, discard writes"
// default.
func (c *Console) SetControllerPort(p ControllerPort) {
	c.controller = p
}

// PowerOn resets every engine to its documented power-up state.
func (c *Console) PowerOn() {
	glog.V(1).Info("console: power on")
	for i := range c.ram {
		c.ram[i] = 0
	}
	c.clock.Reset()
	c.CPU.PowerOn()
	c.PPU.PowerOn()
	c.APU.PowerOn()
	c.CPU.Reset()
}

// Reset re-reads the CPU reset vector and re-arms both PPU and APU
// without clearing cartridge-visible RAM, matching a console reset
// button press rather than a cold power cycle.
func (c *Console) Reset() {
	glog.V(1).Info("console: reset")
	c.PPU.Reset()
	c.APU.Reset()
	c.CPU.Reset()
}

// RunFrame drives exactly one video frame: the PPU renders scanline by
// scanline, calling back into the CPU for cycle catch-up and into the
// APU (via the CPU's 7457-cycle boundary callback) for audio
// synthesis. It returns the
// 256x240 RGBA framebuffer and the PCM samples generated during the
// frame; both are valid only until the next RunFrame call.
func (c *Console) RunFrame() (frame *[256 * 240]uint32, samples []uint8) {
	c.audioBuf = c.audioBuf[:0]
	fb := c.PPU.RenderFrame()
	c.clock.MarkFrame()
	return fb, c.audioBuf
}

// onPPUCPUTick is the PPU's "you owe me N CPU cycles" callback: it
// converts a PPU-cycle quantum to the CPU-cycle budget owed and runs
// the CPU for exactly that budget.
func (c *Console) onPPUCPUTick(ppuCycles uint64) {
	budget := clock.PPUCyclesToCPUCycles(ppuCycles)
	c.clock.AdvanceCPU(c.CPU.Step(budget))
}

func (c *Console) onHBlank(line uint8) {
	_ = line // external collaborator hook; no core-internal behavior depends on it
}

func (c *Console) onVBlank() {
	// VBlank entry and NMI raising both happen inside PPU.RenderFrame
	// itself (see render.go), so the read-cancels-NMI ordering is
	// already satisfied by the time this hook fires; it exists purely
	// as an external notification point.
}

// onAPUStep is the CPU's "N completed 7457-cycle quanta" callback. It
// clocks the frame sequencer and synthesizes that many 240 Hz steps'
// worth of PCM samples, appending them to the frame's audio buffer.
func (c *Console) onAPUStep(steps uint64) {
	for i := uint64(0); i < steps; i++ {
		c.clock.MarkAPUStep()
		step := c.APU.Step(c.samplesPerStep)
		c.audioBuf = append(c.audioBuf, step...)
	}
}

// onAPUIRQ is the APU's single OR-reduced IRQ callback: frame and DMC
// IRQ sources OR onto the CPU's IRQ line.
func (c *Console) onAPUIRQ(level bool) {
	c.CPU.IRQ(level)
}

func (c *Console) dmcFetch(addr uint16) uint8 {
	return c.Read(addr)
}

func (c *Console) chrRead(addr uint16) uint8 {
	if c.cart == nil {
		return 0
	}
	return c.cart.ReadCHR(addr)
}

func (c *Console) chrWrite(addr uint16, val uint8) {
	if c.cart == nil {
		return
	}
	c.cart.WriteCHR(addr, val)
}

// Read implements cpu.Bus, routing $0000-$FFFF to RAM, PPU registers,
// APU/IO registers, or the cartridge.
func (c *Console) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return c.ram[addr&0x07FF]
	case addr < 0x4000:
		return c.PPU.ReadRegister(0x2000 + addr&0x0007)
	case addr == 0x4015:
		return c.APU.ReadStatus()
	case addr == 0x4016 || addr == 0x4017:
		if c.controller == nil {
			return 0
		}
		return c.controller.Read(addr)
	case addr < 0x4018:
		return 0 // APU write-only registers: open-bus, not modeled
	default:
		if c.cart == nil {
			return 0
		}
		return c.cart.ReadPRG(addr)
	}
}

// Write implements cpu.Bus.
func (c *Console) Write(addr uint16, val uint8) {
	switch {
	case addr < 0x2000:
		c.ram[addr&0x07FF] = val
	case addr < 0x4000:
		c.PPU.WriteRegister(0x2000+addr&0x0007, val)
	case addr == 0x4014:
		c.triggerOAMDMA(val)
	case addr == 0x4016:
		if c.controller != nil {
			c.controller.Write(addr, val)
		}
	case addr == 0x4017:
		c.APU.WriteRegister(addr, val)
		if c.controller != nil {
			c.controller.Write(addr, val)
		}
	case addr < 0x4018:
		c.APU.WriteRegister(addr, val)
	default:
		if c.cart != nil {
			c.cart.WritePRG(addr, val)
		}
	}
}

// triggerOAMDMA implements the $4014 OAM DMA register: it copies 256
// bytes from page val*0x100 into OAM and charges the documented 513
// (or 514 on an odd CPU cycle) stolen cycles.
func (c *Console) triggerOAMDMA(page uint8) {
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		c.PPU.WriteOAMByte(uint8(i), c.Read(base+uint16(i)))
	}
	cycles := uint64(513)
	if c.clock.CPUCycles()%2 == 1 {
		cycles = 514
	}
	c.CPU.Skip(cycles)
	c.clock.AdvanceCPU(cycles)
}
