package ppu

// basePalette is the canonical 64-entry NES PPU palette (2C02), each
// entry an 0xAARRGGBB value with a fully opaque alpha channel.
var basePalette = [64]uint32{
	0xFF666666, 0xFF002A88, 0xFF1412A7, 0xFF3B00A4, 0xFF5C007E, 0xFF6E0040, 0xFF6C0600, 0xFF561D00,
	0xFF333500, 0xFF0B4800, 0xFF005200, 0xFF004F08, 0xFF00404D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFADADAD, 0xFF155FD9, 0xFF4240FF, 0xFF7527FE, 0xFFA01ACC, 0xFFB71E7B, 0xFFB53120, 0xFF994E00,
	0xFF6B6D00, 0xFF388700, 0xFF0C9300, 0xFF008F32, 0xFF007C8D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFF64B0FF, 0xFF9290FF, 0xFFC676FF, 0xFFF36AFF, 0xFFFE6ECC, 0xFFFE8170, 0xFFEA9E22,
	0xFFBCBE00, 0xFF88D800, 0xFF5CE430, 0xFF45E082, 0xFF48CDDE, 0xFF4F4F4F, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFFC0DFFF, 0xFFD3D2FF, 0xFFE8C8FF, 0xFFFBC2FF, 0xFFFEC4EA, 0xFFFECCC5, 0xFFF7D8A5,
	0xFFE4E594, 0xFFCFEF96, 0xFFBDF4AB, 0xFFB3F3CC, 0xFFB5EBF2, 0xFFB8B8B8, 0xFF000000, 0xFF000000,
}

var grayscalePalette = buildGrayscalePalette()

// emphasisPalettes precomputes the tint applied by PPUMASK's red/
// green/blue emphasis bits (8 combinations, index 0 = no emphasis).
var emphasisPalettes = buildEmphasisPalettes()

func buildGrayscalePalette() [64]uint32 {
	var out [64]uint32
	for i, c := range basePalette {
		r := uint8(c >> 16)
		g := uint8(c >> 8)
		b := uint8(c)
		lum := uint8((uint32(r) + uint32(g) + uint32(b)) / 3)
		out[i] = 0xFF000000 | uint32(lum)<<16 | uint32(lum)<<8 | uint32(lum)
	}
	return out
}

// buildEmphasisPalettes builds the eight emphasis-tinted variants of
// the base palette by attenuating the non-emphasized channels, the
// approximation most software renderers use for the analog NTSC
// emphasis behavior. The emphasis bits select channels on a swapped
// axis: PPUMASK's red-emphasis bit preserves the blue channel and its
// blue-emphasis bit preserves the red channel; green maps to green.
func buildEmphasisPalettes() [8][64]uint32 {
	var out [8][64]uint32
	for mask := 0; mask < 8; mask++ {
		redEmphasis := mask&0x01 != 0
		greenEmphasis := mask&0x02 != 0
		blueEmphasis := mask&0x04 != 0
		for i, c := range basePalette {
			r := float64(uint8(c >> 16))
			g := float64(uint8(c >> 8))
			b := float64(uint8(c))
			const dim = 0.816
			if !blueEmphasis {
				r *= dim
			}
			if !greenEmphasis {
				g *= dim
			}
			if !redEmphasis {
				b *= dim
			}
			out[mask][i] = 0xFF000000 | uint32(clampByte(r))<<16 | uint32(clampByte(g))<<8 | uint32(clampByte(b))
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// colorTable selects which of the base/grayscale/emphasis palette
// variants the current PPUMASK state calls for.
func (p *PPU) colorTable() *[64]uint32 {
	if p.grayscale {
		return &grayscalePalette
	}
	if p.emphasis != 0 {
		return &emphasisPalettes[p.emphasis]
	}
	return &basePalette
}
