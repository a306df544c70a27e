package ppu

// RenderFrame runs one full frame: it advances the background/sprite
// pipeline scanline by scanline, calling CPUTick throughout so the CPU
// can catch up, and returns a pointer to the 256x240 RGBA
// framebuffer. The returned pointer is valid until the next call.
func (p *PPU) RenderFrame() *[frameWidth * frameHeight]uint32 {
	p.odd = !p.odd

	preRenderCycles := uint64(341)
	if p.renderingEnabled() && p.odd {
		preRenderCycles = 340
	}

	p.status &^= statusVBlank | statusSprite0 | statusOverflow

	if p.renderingEnabled() {
		p.v = p.t
	}

	p.tickCPU(preRenderCycles)
	if p.renderingEnabled() {
		p.warmUpShiftRegisters()
	}

	for y := 1; y <= frameHeight; y++ {
		row := y - 1

		for i := range p.lineBuffer {
			p.lineBuffer[i] = 0
		}
		if p.renderingEnabled() {
			// The background fetch pipeline runs (and advances v) when
			// either layer is on; with rendering fully off, v must stay
			// untouched so $2007 access through it keeps working.
			p.renderSpritesForRow(row)
			p.renderBackgroundRow(row)
		}
		p.writeRowToFramebuffer(row)

		if p.renderingEnabled() {
			p.incrementVerticalV()
			p.reloadHorizontalV()
			// Prefetch the next row's first two tiles now that v holds
			// the new fine-Y; the fetches done at the tail of the pixel
			// loop above used the old one.
			p.warmUpShiftRegisters()
		}

		if p.HBlank != nil {
			p.HBlank(uint8(row))
		}
		p.tickCPU(341)
	}

	p.status |= statusVBlank
	if p.VBlank != nil {
		p.VBlank()
	}
	if p.nmiEnable && p.status&statusVBlank != 0 {
		if p.RaiseNMI != nil {
			p.RaiseNMI()
		}
	}

	// The remaining scanlines of the 262-line frame (post-render plus
	// the vblank interval) carry no pixel work but still owe the CPU
	// its catch-up cycles; this is where games run their NMI handlers.
	for line := frameHeight + 1; line < 262; line++ {
		p.tickCPU(341)
	}

	return &p.framebuffer
}

// tickCPU converts a quantum of PPU cycles into the CPU's rounded-up
// cycle budget and invokes the catch-up callback.
func (p *PPU) tickCPU(ppuCycles uint64) {
	if p.CPUTick == nil {
		return
	}
	p.CPUTick((ppuCycles + 2) / 3)
}

func b2u8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func fillByte(bit uint8) uint8 {
	if bit != 0 {
		return 0xFF
	}
	return 0x00
}

// warmUpShiftRegisters loads the upcoming scanline's first two tiles
// into the shift registers, replacing whatever the previous row's
// tail fetches left behind.
func (p *PPU) warmUpShiftRegisters() {
	lo, hi, a0, a1 := p.fetchTileData()
	p.bgPatternLo = uint16(lo)
	p.bgPatternHi = uint16(hi)
	p.attrLo = fillByte(a0)
	p.attrHi = fillByte(a1)
	p.attrLatchLo, p.attrLatchHi = a0, a1

	lo, hi, a0, a1 = p.fetchTileData()
	p.bgPatternLo = (p.bgPatternLo << 8) | uint16(lo)
	p.bgPatternHi = (p.bgPatternHi << 8) | uint16(hi)
	p.attrLatchLo, p.attrLatchHi = a0, a1
}

// fetchNextTile loads the tile two columns ahead into the low byte of
// the pattern registers; the per-pixel shifting already performed
// during the column just rendered has zeroed those bits out, so this
// is a plain OR.
func (p *PPU) fetchNextTile() {
	lo, hi, a0, a1 := p.fetchTileData()
	p.bgPatternLo |= uint16(lo)
	p.bgPatternHi |= uint16(hi)
	p.attrLatchLo, p.attrLatchHi = a0, a1
}

// fetchTileData reads one tile's nametable byte, pattern planes, and
// attribute bits at the current v, then advances v's coarse-X with
// the documented wraparound.
func (p *PPU) fetchTileData() (lo, hi, attrBit0, attrBit1 uint8) {
	tile := p.readVRAM(0x2000 | (p.v & 0x0FFF))
	patternAddr := p.bgPatternBase | (uint16(tile) << 4) | (p.v >> 12)
	lo = p.readVRAM(patternAddr)
	hi = p.readVRAM(patternAddr | 8)

	attrAddr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	attr := p.readVRAM(attrAddr)
	if p.v&0x02 != 0 {
		attr >>= 2
	}
	if p.v&0x40 != 0 {
		attr >>= 4
	}
	attrBit0 = attr & 0x01
	attrBit1 = (attr >> 1) & 0x01

	p.advanceCoarseX()
	return lo, hi, attrBit0, attrBit1
}

func (p *PPU) advanceCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementVerticalV performs the documented end-of-scanline vertical
// increment of v.
func (p *PPU) incrementVerticalV() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	coarseY := (p.v & 0x03E0) >> 5
	switch coarseY {
	case 29:
		coarseY = 0
		p.v ^= 0x0800
	case 31:
		coarseY = 0
	default:
		coarseY++
	}
	p.v = (p.v &^ 0x03E0) | (coarseY << 5)
}

// reloadHorizontalV copies t's horizontal bits (coarse-X and the
// horizontal nametable select) back into v at scanline end.
func (p *PPU) reloadHorizontalV() {
	p.v = (p.v &^ 0x041F) | (p.t & 0x041F)
}

// renderBackgroundRow renders the 256 background pixels of row into
// the line buffer, 32 tile columns of 8 pixels each.
func (p *PPU) renderBackgroundRow(row int) {
	for col := 0; col < 32; col++ {
		for i := 0; i < 8; i++ {
			px := col*8 + i
			p.renderBackgroundPixel(px)
			p.bgPatternLo <<= 1
			p.bgPatternHi <<= 1
			p.attrLo = (p.attrLo << 1) | p.attrLatchLo
			p.attrHi = (p.attrHi << 1) | p.attrLatchHi
		}
		p.fetchNextTile()
	}
}

func (p *PPU) renderBackgroundPixel(px int) {
	if !p.bgEnable {
		return
	}
	if p.bgClip && px < 8 {
		return
	}

	selBit := uint16(0x8000) >> p.x
	bit0 := p.bgPatternLo & selBit
	bit1 := p.bgPatternHi & selBit
	pix := b2u8(bit0 != 0) | (b2u8(bit1 != 0) << 1)

	abit := uint8(0x80) >> p.x
	a0 := p.attrLo & abit
	a1 := p.attrHi & abit
	attr := b2u8(a0 != 0) | (b2u8(a1 != 0) << 1)

	existing := p.lineBuffer[px]

	if pix != 0 && existing&tagSprite0Origin != 0 {
		p.status |= statusSprite0
	}

	if existing&tagSpriteInFront != 0 {
		return
	}
	if existing&tagSpriteBehind != 0 && pix == 0 {
		return
	}
	p.lineBuffer[px] = uint16((attr<<2)&0x0C) | uint16(pix) | tagBackgroundPresent
}

// writeRowToFramebuffer converts the 256-entry tagged line buffer for
// row into RGBA and stores it in the framebuffer.
func (p *PPU) writeRowToFramebuffer(row int) {
	table := p.colorTable()
	base := row * frameWidth
	for x := 0; x < frameWidth; x++ {
		idx := p.paletteIndex(0x3F00 + uint16(p.lineBuffer[x]&0x3F))
		p.framebuffer[base+x] = table[p.palette[idx]&0x3F]
	}
}
