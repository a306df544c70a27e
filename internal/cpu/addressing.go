package cpu

// AddressingMode identifies how an instruction's operand address is
// computed. The set includes the two
// "store variant" absolute-indexed/indirect-indexed modes that always
// charge the page-cross cycle instead of charging it conditionally.
type AddressingMode uint8

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteXStore // store/RMW variant: always +1 cycle, no cross check
	AbsoluteY
	AbsoluteYStore
	Indirect // JMP only, with the page-wrap bug
	IndexedIndirect
	IndirectIndexed
	IndirectIndexedStore
)

// accumulatorAddr is the sentinel effective address meaning "operate on
// the accumulator".
const accumulatorAddr = 0xFFFF

// operand computes the effective address for mode, advances PC past the
// instruction's operand bytes, and reports whether a page boundary was
// crossed (only ever true for the indexed/indirect-indexed modes and
// for Relative, whose branch target can cross). Implied and Accumulator report the sentinel address and
// never cross a page.
func (c *CPU) operand(mode AddressingMode) (addr uint16, pageCrossed bool) {
	switch mode {
	case Implied:
		return 0, false

	case Accumulator:
		return accumulatorAddr, false

	case Immediate:
		addr = c.PC
		c.PC++
		return addr, false

	case ZeroPage:
		addr = uint16(c.read(c.PC))
		c.PC++
		return addr, false

	case ZeroPageX:
		base := c.read(c.PC)
		c.PC++
		return uint16(base + c.X), false

	case ZeroPageY:
		base := c.read(c.PC)
		c.PC++
		return uint16(base + c.Y), false

	case Relative:
		offset := int8(c.read(c.PC))
		c.PC++
		base := c.PC
		target := uint16(int32(base) + int32(offset))
		return target, (base & 0xFF00) != (target & 0xFF00)

	case Absolute:
		addr = c.readWord(c.PC)
		c.PC += 2
		return addr, false

	case AbsoluteX, AbsoluteXStore:
		base := c.readWord(c.PC)
		c.PC += 2
		addr = base + uint16(c.X)
		return addr, (base & 0xFF00) != (addr & 0xFF00)

	case AbsoluteY, AbsoluteYStore:
		base := c.readWord(c.PC)
		c.PC += 2
		addr = base + uint16(c.Y)
		return addr, (base & 0xFF00) != (addr & 0xFF00)

	case Indirect:
		ptr := c.readWord(c.PC)
		c.PC += 2
		return c.readWordBugged(ptr), false

	case IndexedIndirect:
		base := c.read(c.PC)
		c.PC++
		ptr := uint16(base + c.X)
		return c.readWordZP(ptr), false

	case IndirectIndexed, IndirectIndexedStore:
		zp := c.read(c.PC)
		c.PC++
		base := c.readWordZP(uint16(zp))
		addr = base + uint16(c.Y)
		return addr, (base & 0xFF00) != (addr & 0xFF00)

	default:
		return 0, false
	}
}

// readWord reads a little-endian 16-bit value with no wraparound bug.
func (c *CPU) readWord(addr uint16) uint16 {
	lo := uint16(c.read(addr))
	hi := uint16(c.read(addr + 1))
	return lo | hi<<8
}

// readWordZP reads a little-endian 16-bit value whose high byte wraps
// within the zero page, as required by (zp,X) and (zp),Y addressing.
func (c *CPU) readWordZP(zp uint16) uint16 {
	lo := uint16(c.read(zp & 0xFF))
	hi := uint16(c.read((zp + 1) & 0xFF))
	return lo | hi<<8
}

// readWordBugged reproduces the indirect-JMP page-wrap bug: if the
// pointer's low byte is 0xFF, the high byte is fetched from the start
// of the same page instead of the next page.
func (c *CPU) readWordBugged(ptr uint16) uint16 {
	lo := uint16(c.read(ptr))
	hi := uint16(c.read((ptr & 0xFF00) | ((ptr + 1) & 0x00FF)))
	return lo | hi<<8
}
