package ppu

// ReadRegister implements the CPU-visible $2000-$2007 read side.
// Write-only registers return the last-written status byte's
// low 5 bits, approximating open-bus behavior without modeling it
// precisely.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr & 7 {
	case 2:
		v := p.status
		p.status &^= statusVBlank
		p.w = false
		return v
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		return p.readData()
	default:
		return p.status & 0x1F
	}
}

// WriteRegister implements the CPU-visible $2000-$2007 write side.
func (p *PPU) WriteRegister(addr uint16, val uint8) {
	switch addr & 7 {
	case 0:
		p.ctrl = val
		p.t = (p.t & 0xF3FF) | (uint16(val&0x03) << 10)
		if val&0x04 != 0 {
			p.incrementAmt = 32
		} else {
			p.incrementAmt = 1
		}
		if val&0x20 != 0 {
			p.spriteHeight = 16
		} else {
			p.spriteHeight = 8
		}
		if val&0x10 != 0 {
			p.bgPatternBase = 0x1000
		} else {
			p.bgPatternBase = 0
		}
		if val&0x08 != 0 {
			p.spritePatternBase = 0x1000
		} else {
			p.spritePatternBase = 0
		}
		p.nmiEnable = val&0x80 != 0
	case 1:
		p.mask = val
		p.grayscale = val&0x01 != 0
		p.bgClip = val&0x02 == 0
		p.spriteClip = val&0x04 == 0
		p.bgEnable = val&0x08 != 0
		p.spriteEnable = val&0x10 != 0
		p.emphasis = (val >> 5) & 0x07
	case 3:
		p.oamAddr = val
	case 4:
		p.oam[p.oamAddr] = val
		p.oamAddr++
	case 5:
		p.writeScroll(val)
	case 6:
		p.writeAddr(val)
	case 7:
		p.writeData(val)
	}
}

// WriteOAMByte is the raw OAM write path used by OAM DMA ($4014),
// which bypasses the $2004 auto-increment semantics entirely.
func (p *PPU) WriteOAMByte(addr uint8, val uint8) {
	p.oam[addr] = val
}

func (p *PPU) writeScroll(val uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | uint16(val>>3)
		p.x = val & 0x07
	} else {
		p.t = (p.t & 0x8FFF) | (uint16(val&0x07) << 12)
		p.t = (p.t & 0xFC1F) | (uint16(val&0xF8) << 2)
	}
	p.w = !p.w
}

func (p *PPU) writeAddr(val uint8) {
	if !p.w {
		p.t = (p.t & 0x00FF) | (uint16(val&0x3F) << 8)
	} else {
		p.t = (p.t & 0xFF00) | uint16(val)
		p.v = p.t
	}
	p.w = !p.w
}

func (p *PPU) readData() uint8 {
	addr := p.v & 0x3FFF
	var out uint8
	if addr >= 0x3F00 {
		out = p.readPalette(addr)
		p.readBuffer = p.readVRAM(addr - 0x1000)
	} else {
		out = p.readBuffer
		p.readBuffer = p.readVRAM(addr)
	}
	p.v += p.incrementAmt
	return out
}

func (p *PPU) writeData(val uint8) {
	addr := p.v & 0x3FFF
	if addr >= 0x3F00 {
		p.writePalette(addr, val)
	} else {
		p.writeVRAM(addr, val)
	}
	p.v += p.incrementAmt
}

// readVRAM/writeVRAM address the pattern (CHR), nametable, and
// palette regions uniformly for $2007 and the rendering fetches.
func (p *PPU) readVRAM(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.chrRead != nil {
			return p.chrRead(addr)
		}
		return 0
	case addr < 0x3F00:
		return p.vram[p.mirrorAddr(addr)]
	default:
		return p.readPalette(addr)
	}
}

func (p *PPU) writeVRAM(addr uint16, val uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		if p.chrWrite != nil {
			p.chrWrite(addr, val)
		}
	case addr < 0x3F00:
		p.vram[p.mirrorAddr(addr)] = val
	default:
		p.writePalette(addr, val)
	}
}

func (p *PPU) mirrorAddr(addr uint16) uint16 {
	addr &= 0x0FFF
	table := (addr >> 10) & 3
	offset := addr & 0x3FF
	return uint16(p.mirror[table])*0x400 + offset
}

func (p *PPU) paletteIndex(addr uint16) uint8 {
	idx := addr & 0x1F
	if idx&0x03 == 0 {
		idx = 0 // every backdrop slot (0/4/8/C in either half) reads entry 0
	}
	return uint8(idx)
}

func (p *PPU) readPalette(addr uint16) uint8 {
	return p.palette[p.paletteIndex(addr)]
}

// writePalette stores the value and mirrors backdrop entries, keeping
// palette[addr&0x0F] and palette[0x10|(addr&0x0F)] equal whenever the
// low nibble of the written address is zero.
func (p *PPU) writePalette(addr uint16, val uint8) {
	idx := addr & 0x1F
	p.palette[idx] = val
	if idx&0x03 == 0 {
		p.palette[idx&0x0F] = val
		p.palette[idx|0x10] = val
	}
}
