// Package apu implements the NES Audio Processing Unit: two pulse
// channels, a triangle channel, a noise channel, a DMC channel, and the
// 240 Hz frame sequencer that drives their envelopes, sweeps, length
// counters, and IRQ line.
package apu

// lengthTable maps a 5-bit length-counter load value (register bits
// 3-7 of $4003/$4007/$400B/$400F) to the number of frame-sequencer
// half-frame clocks the channel stays audible for.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 8, 48, 6, 96, 4,
	192, 2, 72, 16, 28, 32, 52, 2,
}

// dutyTable holds the four pulse duty-cycle waveforms, 8 steps each.
var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0}, // 12.5%
	{0, 1, 1, 0, 0, 0, 0, 0}, // 25%
	{0, 1, 1, 1, 1, 0, 0, 0}, // 50%
	{1, 0, 0, 1, 1, 1, 1, 1}, // 75%
}

// triangleTable is the 32-step triangle waveform sequence.
var triangleTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// noisePeriodTable is the NTSC noise-channel timer period lookup, in
// CPU cycles.
var noisePeriodTable = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160,
	202, 254, 380, 508, 762, 1016, 2034, 4068,
}

// dmcRateTable is the NTSC DMC timer period lookup, in CPU cycles.
var dmcRateTable = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214,
	190, 160, 142, 128, 106, 84, 72, 54,
}

// maxDirectWrites bounds the per-step $4011 direct-load buffer.
const maxDirectWrites = 100

// APU holds all five channels, the frame sequencer, and the host
// callbacks it drives.
type APU struct {
	pulse1, pulse2 pulseChannel
	triangle       triangleChannel
	noise          noiseChannel
	dmc            dmcChannel

	enabled [5]bool // pulse1, pulse2, triangle, noise, dmc

	stepMode     uint8 // 4 or 5
	stepIndex    uint8
	irqDisable   bool
	frameIRQFlag bool

	volume   uint8
	pulseMix [31]uint8
	tndMix   [203]uint8

	sampleBuf []uint8

	// IRQ is invoked with the OR of the frame and DMC IRQ sources
	// every time either one changes level. DMCFetch supplies one
	// sample byte at 0xC000|addr. A nil callback is a no-op.
	IRQ      func(level bool)
	DMCFetch func(addr uint16) uint8
}

// New constructs an APU already in its power-on state.
func New(irq func(level bool), dmcFetch func(addr uint16) uint8) *APU {
	a := &APU{IRQ: irq, DMCFetch: dmcFetch}
	a.PowerOn()
	return a
}

// PowerOn zeroes all channel and sequencer state and seeds the noise
// LFSR to 1.
func (a *APU) PowerOn() {
	a.pulse1 = pulseChannel{isPulse2: false}
	a.pulse2 = pulseChannel{isPulse2: true}
	a.triangle = triangleChannel{}
	a.noise = noiseChannel{lfsr: 1}
	a.dmc = dmcChannel{bufEmpty: true}
	a.enabled = [5]bool{}
	a.stepMode = 4
	a.stepIndex = 0
	a.irqDisable = false
	a.frameIRQFlag = false
	a.sampleBuf = a.sampleBuf[:0]
	a.SetVolume(128)
}

// Reset performs a full PowerOn: all channel and frame-sequencer
// state, including the IRQ-disable latch, returns to its power-up
// value.
func (a *APU) Reset() {
	a.PowerOn()
}

// SetVolume recomputes the pulse and triangle/noise/DMC mixer lookup
// tables from the canonical NES mixer formulas, scaled by
// an 8-bit master volume so the final mixed sample fits a byte.
func (a *APU) SetVolume(v uint8) {
	a.volume = v
	scale := float64(v) / 255.0
	for n := 1; n < len(a.pulseMix); n++ {
		val := 95.88 / (8128.8/float64(n) + 100.0)
		a.pulseMix[n] = uint8(clampF(val*255.0*scale, 0, 255))
	}
	for n := 1; n < len(a.tndMix); n++ {
		val := 163.67 / (24329.8/float64(n) + 100.0)
		a.tndMix[n] = uint8(clampF(val*255.0*scale, 0, 255))
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WriteRegister dispatches a CPU write to one of $4000-$4013, $4015,
// or $4017. Addresses outside that range, or $4014/$4016 (OAM DMA and
// controller strobe, owned by the console coordinator), are ignored
// here.
func (a *APU) WriteRegister(addr uint16, val uint8) {
	switch addr {
	case 0x4000:
		a.writePulseControl(&a.pulse1, val)
	case 0x4001:
		a.writePulseSweep(&a.pulse1, val)
	case 0x4002:
		a.writePulseTimerLow(&a.pulse1, val)
	case 0x4003:
		a.writePulseTimerHigh(&a.pulse1, val)
	case 0x4004:
		a.writePulseControl(&a.pulse2, val)
	case 0x4005:
		a.writePulseSweep(&a.pulse2, val)
	case 0x4006:
		a.writePulseTimerLow(&a.pulse2, val)
	case 0x4007:
		a.writePulseTimerHigh(&a.pulse2, val)
	case 0x4008:
		a.writeTriangleControl(val)
	case 0x400A:
		a.writeTriangleTimerLow(val)
	case 0x400B:
		a.writeTriangleTimerHigh(val)
	case 0x400C:
		a.writeNoiseControl(val)
	case 0x400E:
		a.writeNoisePeriod(val)
	case 0x400F:
		a.writeNoiseLength(val)
	case 0x4010:
		a.writeDMCControl(val)
	case 0x4011:
		a.writeDMCDirectLoad(val)
	case 0x4012:
		a.writeDMCSampleAddress(val)
	case 0x4013:
		a.writeDMCSampleLength(val)
	case 0x4015:
		a.writeChannelEnable(val)
	case 0x4017:
		a.writeFrameCounter(val)
	}
}

// writeChannelEnable handles $4015 writes: enabling/disabling each of
// the five channels, which forces disabled
// channels' length/size counters to zero and, for DMC, restarts sample
// playback when freshly enabled with nothing queued.
func (a *APU) writeChannelEnable(val uint8) {
	a.enabled[0] = val&0x01 != 0
	a.enabled[1] = val&0x02 != 0
	a.enabled[2] = val&0x04 != 0
	a.enabled[3] = val&0x08 != 0
	a.enabled[4] = val&0x10 != 0

	if !a.enabled[0] {
		a.pulse1.lengthCounter = 0
	}
	if !a.enabled[1] {
		a.pulse2.lengthCounter = 0
	}
	if !a.enabled[2] {
		a.triangle.lengthCounter = 0
	}
	if !a.enabled[3] {
		a.noise.lengthCounter = 0
	}
	if !a.enabled[4] {
		a.dmc.sampleSize = 0
	} else if a.dmc.sampleSize == 0 {
		a.dmc.currentAddr = a.dmc.sampleAddr
		a.dmc.sampleSize = a.dmc.sampleLen
		a.dmc.bufEmpty = true
	}
	a.dmc.irqFlag = false
	a.updateIRQLine()
}

// writeFrameCounter handles $4017: selects 4-step or 5-step sequencer
// mode, the frame-IRQ inhibit bit, and (5-step mode only) immediately
// clocks every unit once, matching documented hardware behavior.
func (a *APU) writeFrameCounter(val uint8) {
	if val&0x80 != 0 {
		a.stepMode = 5
	} else {
		a.stepMode = 4
	}
	a.irqDisable = val&0x40 != 0
	if a.irqDisable {
		a.frameIRQFlag = false
	}
	a.stepIndex = 0
	if a.stepMode == 5 {
		a.clockEnvelopesAndLinear()
		a.clockLengthAndSweep()
	}
	a.updateIRQLine()
}

// ReadStatus returns the $4015 status byte and clears the frame-IRQ
// flag as a side effect (DMC-IRQ is unaffected).
func (a *APU) ReadStatus() uint8 {
	var s uint8
	if a.pulse1.lengthCounter > 0 {
		s |= 0x01
	}
	if a.pulse2.lengthCounter > 0 {
		s |= 0x02
	}
	if a.triangle.lengthCounter > 0 {
		s |= 0x04
	}
	if a.noise.lengthCounter > 0 {
		s |= 0x08
	}
	if a.dmc.sampleSize > 0 {
		s |= 0x10
	}
	if a.frameIRQFlag {
		s |= 0x40
	}
	if a.dmc.irqFlag {
		s |= 0x80
	}
	a.frameIRQFlag = false
	a.updateIRQLine()
	return s
}

// updateIRQLine OR-reduces the frame and DMC IRQ sources onto the
// single callback the CPU consumes.
func (a *APU) updateIRQLine() {
	if a.IRQ != nil {
		a.IRQ(a.frameIRQFlag || a.dmc.irqFlag)
	}
}

// Step advances the frame sequencer by one step (one 7457-CPU-cycle
// quantum, signalled by the CPU's boundary callback) and synthesizes
// sampleCount PCM samples spanning that quantum, returning a buffer
// valid until the next Step call.
func (a *APU) Step(sampleCount int) []uint8 {
	a.clockFrameSequencer()

	if cap(a.sampleBuf) < sampleCount {
		a.sampleBuf = make([]uint8, sampleCount)
	} else {
		a.sampleBuf = a.sampleBuf[:sampleCount]
	}

	cyclesPerSample := quantumCycles
	if sampleCount > 0 {
		cyclesPerSample = quantumCycles / float64(sampleCount)
	}

	dmcWrites := a.dmc.drainDirectWrites(sampleCount)

	for i := 0; i < sampleCount; i++ {
		var p1, p2, tri, noi, dmcOut uint8
		if a.enabled[0] {
			p1 = a.stepPulse(&a.pulse1, cyclesPerSample)
		}
		if a.enabled[1] {
			p2 = a.stepPulse(&a.pulse2, cyclesPerSample)
		}
		if a.enabled[2] {
			tri = a.stepTriangle(cyclesPerSample)
		}
		if a.enabled[3] {
			noi = a.stepNoise(cyclesPerSample)
		}
		if a.enabled[4] {
			if dmcWrites != nil {
				a.dmc.output = dmcWrites[i]
			} else {
				a.stepDMC(cyclesPerSample)
			}
			dmcOut = a.dmc.output
		}

		pulseSum := uint16(p1) + uint16(p2)
		tndSum := 3*uint16(tri) + 2*uint16(noi) + uint16(dmcOut)
		mixed := uint16(a.pulseMix[pulseSum]) + uint16(a.tndMix[tndSum])
		if mixed > 255 {
			mixed = 255
		}
		a.sampleBuf[i] = uint8(mixed)
	}

	a.updateIRQLine()
	return a.sampleBuf
}

// quantumCycles is the CPU-cycle span of one frame-sequencer step,
// matching clock.APUFrameSequencerPeriod without importing the clock
// package (apu has no business depending on the coordinator's clock
// type, only its numeric period).
const quantumCycles = 7457.0

// clockFrameSequencer advances the 4-step or 5-step sequence by one
// step and clocks whichever units that step owns.
func (a *APU) clockFrameSequencer() {
	if a.stepMode == 4 {
		a.clockEnvelopesAndLinear()
		if a.stepIndex == 0 || a.stepIndex == 2 {
			a.clockLengthAndSweep()
		}
		if a.stepIndex == 3 {
			if !a.irqDisable {
				a.frameIRQFlag = true
			}
		}
		a.stepIndex = (a.stepIndex + 1) % 4
	} else {
		if a.stepIndex != 1 {
			a.clockEnvelopesAndLinear()
		}
		if a.stepIndex == 0 || a.stepIndex == 3 {
			a.clockLengthAndSweep()
		}
		a.stepIndex = (a.stepIndex + 1) % 5
	}
}

func (a *APU) clockEnvelopesAndLinear() {
	a.pulse1.clockEnvelope()
	a.pulse2.clockEnvelope()
	a.noise.clockEnvelope()
	a.triangle.clockLinear()
}

func (a *APU) clockLengthAndSweep() {
	a.pulse1.clockLength()
	a.pulse1.clockSweep()
	a.pulse2.clockLength()
	a.pulse2.clockSweep()
	a.triangle.clockLength()
	a.noise.clockLength()
}
