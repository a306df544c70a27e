// Package ppu implements the NES Picture Processing Unit (2C02): a
// 256x240 background/sprite renderer driven one whole frame at a time,
// calling back into the CPU for cycle catch-up as it goes.
package ppu

// Mirror selects how the four logical 1 KiB nametables alias onto the
// PPU's four 1 KiB banks of nametable RAM; only four-screen mode uses
// more than the first two.
type Mirror uint8

const (
	MirrorSingleLow Mirror = iota
	MirrorSingleHigh
	MirrorVertical
	MirrorHorizontal
	MirrorFourScreen
)

var mirrorTables = map[Mirror][4]uint8{
	MirrorSingleLow:  {0, 0, 0, 0},
	MirrorSingleHigh: {1, 1, 1, 1},
	MirrorVertical:   {0, 1, 0, 1},
	MirrorHorizontal: {0, 0, 1, 1},
	MirrorFourScreen: {0, 1, 2, 3},
}

const (
	frameWidth  = 256
	frameHeight = 240
)

// Line-buffer pixel tags, packed into the low bits above the 6-bit
// palette index.
const (
	tagBackgroundPresent = 0x100
	tagSpriteInFront     = 0x200
	tagSprite0Origin     = 0x400
	tagSpriteBehind      = 0x800
)

// Status byte bits.
const (
	statusVBlank   = 0x80
	statusSprite0  = 0x40
	statusOverflow = 0x20
)

// PPU holds all hardware-visible and internal state of the picture
// processing unit, plus the host callbacks it drives during rendering.
type PPU struct {
	// CPU-visible register latches and cached decodes of $2000/$2001.
	ctrl, mask, status uint8
	oamAddr            uint8

	incrementAmt      uint16
	spriteHeight      uint8
	bgPatternBase     uint16
	spritePatternBase uint16
	nmiEnable         bool
	grayscale         bool
	emphasis          uint8
	bgClip            bool
	spriteClip        bool
	bgEnable          bool
	spriteEnable      bool

	// Loopy scroll registers.
	v, t uint16
	x    uint8
	w    bool
	odd  bool

	// Background shift registers: 16 bits each hold the current tile in
	// the high byte and the prefetched next tile in the low byte;
	// fineX selects the bit within the current byte being emitted.
	bgPatternLo, bgPatternHi uint16
	attrLo, attrHi           uint8
	attrLatchLo, attrLatchHi uint8

	readBuffer uint8

	vram    [0x1000]uint8 // four 1 KiB nametable banks (four-screen uses all of them)
	palette [32]uint8
	oam     [256]uint8
	mirror  [4]uint8

	lineBuffer  [frameWidth]uint16
	framebuffer [frameWidth * frameHeight]uint32

	chrRead  func(addr uint16) uint8
	chrWrite func(addr uint16, val uint8)

	// External collaborators.
	CPUTick  func(cpuCycles uint64)
	HBlank   func(line uint8)
	VBlank   func()
	RaiseNMI func()
}

// New constructs a PPU. chrRead/chrWrite give the PPU access to the
// cartridge's pattern-table memory (0x0000-0x1FFF); a nil pair reads
// as all zero and discards writes.
func New(chrRead func(uint16) uint8, chrWrite func(uint16, uint8)) *PPU {
	p := &PPU{chrRead: chrRead, chrWrite: chrWrite}
	p.SetMirrorMode(MirrorHorizontal)
	p.PowerOn()
	return p
}

// SetMirrorMode installs one of the five documented nametable mirror
// layouts.
func (p *PPU) SetMirrorMode(m Mirror) {
	p.mirror = mirrorTables[m]
}

// PowerOn zeroes all PPU state, as at console power-up.
func (p *PPU) PowerOn() {
	p.ctrl, p.mask, p.status = 0, 0, 0
	p.oamAddr = 0
	p.incrementAmt = 1
	p.spriteHeight = 8
	p.bgPatternBase = 0
	p.spritePatternBase = 0
	p.nmiEnable = false
	p.grayscale = false
	p.emphasis = 0
	p.bgClip, p.spriteClip = false, false
	p.bgEnable, p.spriteEnable = false, false
	p.v, p.t, p.x, p.w, p.odd = 0, 0, 0, false, false
	p.bgPatternLo, p.bgPatternHi = 0, 0
	p.attrLo, p.attrHi = 0, 0
	p.attrLatchLo, p.attrLatchHi = 0, 0
	p.readBuffer = 0
	for i := range p.vram {
		p.vram[i] = 0
	}
	for i := range p.palette {
		p.palette[i] = 0
	}
	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := range p.framebuffer {
		p.framebuffer[i] = 0xFF000000
	}
}

// Reset preserves VRAM/OAM but clears the register-derived rendering
// state, matching the console reset line.
func (p *PPU) Reset() {
	p.ctrl, p.mask = 0, 0
	p.w = false
	p.odd = false
	p.incrementAmt = 1
	p.spriteHeight = 8
	p.bgPatternBase = 0
	p.spritePatternBase = 0
	p.nmiEnable = false
	p.grayscale = false
	p.emphasis = 0
	p.bgClip, p.spriteClip = false, false
	p.bgEnable, p.spriteEnable = false, false
	p.readBuffer = 0
}

// renderingEnabled reports whether either layer is turned on, which
// gates the v<-t copies and the odd-frame cycle skip.
func (p *PPU) renderingEnabled() bool {
	return p.bgEnable || p.spriteEnable
}
