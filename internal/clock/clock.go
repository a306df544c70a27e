// Package clock holds the shared timing counters that the CPU, PPU and
// APU engines advance in lockstep.
//
// The three engines never poke each other's counters directly. Each
// returns the number of cycles it consumed from a quantum of work; the
// topmost driver (internal/console.Console) is the only thing that calls
// AdvanceCPU: a single owned value instead of three engines racing to
// update each other's bookkeeping.
package clock

// PPUCyclesPerCPUCycle is the NTSC PPU:CPU clock ratio. One CPU cycle is
// three PPU cycles.
const PPUCyclesPerCPUCycle = 3

// CyclesPerScanline is the number of PPU cycles in one scanline.
const CyclesPerScanline = 341

// ScanlinesPerFrame is the number of scanlines, including the pre-render
// line, in one NTSC frame.
const ScanlinesPerFrame = 262

// APUFrameSequencerPeriod is the number of CPU cycles between frame
// sequencer steps (240 Hz relative to the ~1.789773 MHz NTSC CPU clock).
const APUFrameSequencerPeriod = 7457

// Clock is the single owner of the system's cycle accounting. It is not
// thread-safe; the core is single-threaded and cooperative by design.
type Clock struct {
	cpuCycles  uint64
	ppuCycles  uint64
	frameCount uint64
	apuSteps   uint64
}

// New returns a zeroed Clock, as at power-on.
func New() *Clock {
	return &Clock{}
}

// Reset zeros all counters without affecting frame parity semantics owned
// by the PPU itself.
func (c *Clock) Reset() {
	*c = Clock{}
}

// AdvanceCPU records that the CPU consumed n cycles and returns the
// equivalent number of PPU cycles (the fixed 1:3 ratio).
func (c *Clock) AdvanceCPU(n uint64) uint64 {
	c.cpuCycles += n
	ppu := n * PPUCyclesPerCPUCycle
	c.ppuCycles += ppu
	return ppu
}

// PPUCyclesToCPUCycles converts a quantum of PPU cycles into the CPU
// cycle budget that quantum owes the CPU, rounding up so the CPU never
// falls behind the PPU.
func PPUCyclesToCPUCycles(ppuCycles uint64) uint64 {
	return (ppuCycles + PPUCyclesPerCPUCycle - 1) / PPUCyclesPerCPUCycle
}

// MarkFrame increments the frame counter. Called once per completed PPU
// frame.
func (c *Clock) MarkFrame() {
	c.frameCount++
}

// MarkAPUStep increments the count of completed 7457-cycle APU quanta.
func (c *Clock) MarkAPUStep() {
	c.apuSteps++
}

// CPUCycles returns the total number of CPU cycles consumed since reset.
func (c *Clock) CPUCycles() uint64 { return c.cpuCycles }

// PPUCycles returns the total number of PPU cycles consumed since reset.
func (c *Clock) PPUCycles() uint64 { return c.ppuCycles }

// FrameCount returns the number of frames completed since reset.
func (c *Clock) FrameCount() uint64 { return c.frameCount }

// APUSteps returns the number of 7457-cycle APU quanta completed since
// reset.
func (c *Clock) APUSteps() uint64 { return c.apuSteps }
