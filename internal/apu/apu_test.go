package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestAPU() *APU {
	return New(nil, func(addr uint16) uint8 { return 0xAA })
}

func TestNoiseLFSRNeverZeroAfterPowerOn(t *testing.T) {
	a := newTestAPU()
	assert.NotZero(t, a.noise.lfsr, "LFSR must be seeded to 1 at power-on")
}

func TestChannelStatusBitsMatchLengthCounters(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4015, 0x1F) // enable all five channels
	a.WriteRegister(0x4003, 0x08) // pulse1 length load
	a.WriteRegister(0x4007, 0x08) // pulse2 length load
	a.WriteRegister(0x400B, 0x08) // triangle length load
	a.WriteRegister(0x400F, 0x08) // noise length load
	a.WriteRegister(0x4013, 0x00) // DMC sample length -> 1 byte
	a.WriteRegister(0x4015, 0x1F) // re-enable to latch DMC sample size

	status := a.ReadStatus()
	assert.Equal(t, uint8(0x1F), status&0x1F, "all five channel bits should be set while their counters are non-zero")
}

func TestChannelEnableZeroesLengthCounters(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4003, 0x08)
	assert.NotZero(t, a.pulse1.lengthCounter)

	a.WriteRegister(0x4015, 0x00)
	assert.Zero(t, a.pulse1.lengthCounter, "disabling a channel must zero its length counter")
	assert.Zero(t, a.ReadStatus()&0x01)
}

// TestPulseSweepSilence: a sweep unit configured with a shift of 7
// and period 0 computes an out-of-range target period and silences
// the channel on the next length/sweep clock.
func TestPulseSweepSilence(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4015, 0x01)
	a.WriteRegister(0x4000, 0xBF) // duty 2, constant volume 15, loop
	a.WriteRegister(0x4001, 0x8F) // sweep enabled, period 0, negate, shift 7
	a.WriteRegister(0x4002, 0x00)
	a.WriteRegister(0x4003, 0x00) // length index 0, timer hi 0

	a.clockLengthAndSweep() // one length/sweep clock

	assert.True(t, a.pulse1.sweepSilences(), "sweep target period should be out of range")
	assert.Zero(t, a.pulse1.lengthCounter, "sweep silencing zeroes the length counter")
	assert.Zero(t, a.ReadStatus()&0x01, "status bit 0 reads 0 once the sweep silences the channel")
	out := a.stepPulse(&a.pulse1, 1)
	assert.Zero(t, out, "channel should be silenced once the sweep target underflows")
}

// TestDMCLoopReloadsWithoutIRQ: a 1-byte sample with loop=1 reloads
// from the start address instead of raising IRQ once fully consumed,
// and the DMC status bit stays set.
func TestDMCLoopReloadsWithoutIRQ(t *testing.T) {
	irqLevel := false
	a := New(func(level bool) { irqLevel = level }, func(addr uint16) uint8 { return 0x55 })
	a.WriteRegister(0x4017, 0x40) // inhibit the frame IRQ so the line reflects only the DMC
	a.WriteRegister(0x4010, 0xC0) // IRQ enable=1, loop=1: looping takes precedence over the IRQ
	a.WriteRegister(0x4012, 0x00)
	a.WriteRegister(0x4013, 0x00) // sample size -> 1 byte
	a.WriteRegister(0x4015, 0x10) // enable DMC

	for i := 0; i < 4; i++ {
		a.Step(8)
	}

	assert.False(t, irqLevel, "loop=1 must not raise IRQ once the sample ends")
	assert.NotZero(t, a.dmc.sampleSize, "a looping sample reloads its size instead of staying at zero")
	assert.NotZero(t, a.ReadStatus()&0x10, "DMC status bit mirrors sample_size > 0")
}

// TestNoiseShortModeMaskIsHardwareAccurate: some emulators compare
// against the decimal value 80 instead of the hardware bit 0x80 when
// decoding $400E's mode bit. This module intentionally keeps the
// hardware-accurate 0x80 mask rather than reproducing that bug.
func TestNoiseShortModeMaskIsHardwareAccurate(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x400E, 0x80) // mode bit set, period index 0
	assert.True(t, a.noise.shortMode)

	a2 := newTestAPU()
	a2.WriteRegister(0x400E, 0x50) // 0x50 = 80 decimal, hardware bit 0x80 clear
	assert.False(t, a2.noise.shortMode, "0x50 sets no hardware mode bit even though it equals decimal 80")
}

func TestFrameSequencer4StepRaisesIRQOnStepThree(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4017, 0x00) // 4-step mode, IRQ enabled

	for i := 0; i < 4; i++ {
		a.Step(1)
	}
	assert.NotZero(t, a.ReadStatus()&0x40, "frame IRQ should be pending after the fourth step")
}

func TestFrameSequencer5StepNeverRaisesIRQ(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4017, 0x80) // 5-step mode

	for i := 0; i < 10; i++ {
		a.Step(1)
	}
	assert.Zero(t, a.ReadStatus()&0x40, "5-step mode never raises the frame IRQ")
}

func TestReadStatusClearsFrameIRQButNotDMCIRQ(t *testing.T) {
	a := newTestAPU()
	a.frameIRQFlag = true
	a.dmc.irqFlag = true

	s := a.ReadStatus()
	assert.NotZero(t, s&0x40)
	assert.NotZero(t, s&0x80)
	assert.Zero(t, a.frameIRQFlag)
	assert.True(t, a.dmc.irqFlag, "reading $4015 must not clear the DMC IRQ flag")
}

func TestMixerNeverExceedsByteRange(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4015, 0x0F)
	a.WriteRegister(0x4000, 0xBF)
	a.WriteRegister(0x4002, 0xFF)
	a.WriteRegister(0x4003, 0xF8)
	a.WriteRegister(0x4004, 0xBF)
	a.WriteRegister(0x4006, 0xFF)
	a.WriteRegister(0x4007, 0xF8)
	a.WriteRegister(0x4008, 0x7F)
	a.WriteRegister(0x400A, 0xFF)
	a.WriteRegister(0x400B, 0xF8)
	a.WriteRegister(0x400C, 0xBF)
	a.WriteRegister(0x400E, 0x00)
	a.WriteRegister(0x400F, 0xF8)

	samples := a.Step(64)
	for _, s := range samples {
		assert.LessOrEqual(t, int(s), 255)
	}
}
