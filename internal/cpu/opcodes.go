package cpu

// Op identifies an instruction's operation, independent of its
// addressing mode. Decode (opcode -> mode/op/cycles) and execute
// (op, address -> register/memory effects) are kept as separate pure
// steps: no captured-lambda dispatch
// table, just a static array of tags and a switch that executes them.
type Op uint8

const (
	opUnknown Op = iota

	opADC
	opAND
	opASL
	opBCC
	opBCS
	opBEQ
	opBIT
	opBMI
	opBNE
	opBPL
	opBRK
	opBVC
	opBVS
	opCLC
	opCLD
	opCLI
	opCLV
	opCMP
	opCPX
	opCPY
	opDEC
	opDEX
	opDEY
	opEOR
	opINC
	opINX
	opINY
	opJMP
	opJSR
	opLDA
	opLDX
	opLDY
	opLSR
	opNOP
	opORA
	opPHA
	opPHP
	opPLA
	opPLP
	opROL
	opROR
	opRTI
	opRTS
	opSBC
	opSEC
	opSED
	opSEI
	opSTA
	opSTX
	opSTY
	opTAX
	opTAY
	opTSX
	opTXA
	opTXS
	opTYA

	// Undocumented opcodes real cartridges rely on.
	opLAX
	opSAX
	opDCP
	opISB
	opSLO
	opRLA
	opSRE
	opRRA
)

// entry is one row of the 256-entry decoded opcode table: an
// (addressing-mode, operation) pair plus the documented base cycle
// count and whether a page-crossing adds a cycle.
type entry struct {
	mode          AddressingMode
	op            Op
	cycles        uint8
	variableCross bool // +1 cycle if operand() reported a page cross
}

// opcodeTable is the static 256-entry decode table. Entries left at the
// zero value decode to {Implied, opUnknown, 0, false}, which Step
// treats as an unassigned opcode and latches the fault flag.
var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]entry {
	var t [256]entry

	set := func(code uint8, mode AddressingMode, op Op, cycles uint8, variableCross bool) {
		t[code] = entry{mode: mode, op: op, cycles: cycles, variableCross: variableCross}
	}

	// ADC
	set(0x69, Immediate, opADC, 2, false)
	set(0x65, ZeroPage, opADC, 3, false)
	set(0x75, ZeroPageX, opADC, 4, false)
	set(0x6D, Absolute, opADC, 4, false)
	set(0x7D, AbsoluteX, opADC, 4, true)
	set(0x79, AbsoluteY, opADC, 4, true)
	set(0x61, IndexedIndirect, opADC, 6, false)
	set(0x71, IndirectIndexed, opADC, 5, true)

	// AND
	set(0x29, Immediate, opAND, 2, false)
	set(0x25, ZeroPage, opAND, 3, false)
	set(0x35, ZeroPageX, opAND, 4, false)
	set(0x2D, Absolute, opAND, 4, false)
	set(0x3D, AbsoluteX, opAND, 4, true)
	set(0x39, AbsoluteY, opAND, 4, true)
	set(0x21, IndexedIndirect, opAND, 6, false)
	set(0x31, IndirectIndexed, opAND, 5, true)

	// ASL
	set(0x0A, Accumulator, opASL, 2, false)
	set(0x06, ZeroPage, opASL, 5, false)
	set(0x16, ZeroPageX, opASL, 6, false)
	set(0x0E, Absolute, opASL, 6, false)
	set(0x1E, AbsoluteXStore, opASL, 7, false)

	// Branches: base 2 cycles; Step adds +1 taken / +1 further page cross.
	set(0x90, Relative, opBCC, 2, false)
	set(0xB0, Relative, opBCS, 2, false)
	set(0xF0, Relative, opBEQ, 2, false)
	set(0x30, Relative, opBMI, 2, false)
	set(0xD0, Relative, opBNE, 2, false)
	set(0x10, Relative, opBPL, 2, false)
	set(0x50, Relative, opBVC, 2, false)
	set(0x70, Relative, opBVS, 2, false)

	// BIT
	set(0x24, ZeroPage, opBIT, 3, false)
	set(0x2C, Absolute, opBIT, 4, false)

	// BRK
	set(0x00, Implied, opBRK, 7, false)

	// Flag ops
	set(0x18, Implied, opCLC, 2, false)
	set(0xD8, Implied, opCLD, 2, false)
	set(0x58, Implied, opCLI, 2, false)
	set(0xB8, Implied, opCLV, 2, false)
	set(0x38, Implied, opSEC, 2, false)
	set(0xF8, Implied, opSED, 2, false)
	set(0x78, Implied, opSEI, 2, false)

	// CMP
	set(0xC9, Immediate, opCMP, 2, false)
	set(0xC5, ZeroPage, opCMP, 3, false)
	set(0xD5, ZeroPageX, opCMP, 4, false)
	set(0xCD, Absolute, opCMP, 4, false)
	set(0xDD, AbsoluteX, opCMP, 4, true)
	set(0xD9, AbsoluteY, opCMP, 4, true)
	set(0xC1, IndexedIndirect, opCMP, 6, false)
	set(0xD1, IndirectIndexed, opCMP, 5, true)

	// CPX / CPY
	set(0xE0, Immediate, opCPX, 2, false)
	set(0xE4, ZeroPage, opCPX, 3, false)
	set(0xEC, Absolute, opCPX, 4, false)
	set(0xC0, Immediate, opCPY, 2, false)
	set(0xC4, ZeroPage, opCPY, 3, false)
	set(0xCC, Absolute, opCPY, 4, false)

	// DEC / INC
	set(0xC6, ZeroPage, opDEC, 5, false)
	set(0xD6, ZeroPageX, opDEC, 6, false)
	set(0xCE, Absolute, opDEC, 6, false)
	set(0xDE, AbsoluteXStore, opDEC, 7, false)
	set(0xE6, ZeroPage, opINC, 5, false)
	set(0xF6, ZeroPageX, opINC, 6, false)
	set(0xEE, Absolute, opINC, 6, false)
	set(0xFE, AbsoluteXStore, opINC, 7, false)

	set(0xCA, Implied, opDEX, 2, false)
	set(0x88, Implied, opDEY, 2, false)
	set(0xE8, Implied, opINX, 2, false)
	set(0xC8, Implied, opINY, 2, false)

	// EOR
	set(0x49, Immediate, opEOR, 2, false)
	set(0x45, ZeroPage, opEOR, 3, false)
	set(0x55, ZeroPageX, opEOR, 4, false)
	set(0x4D, Absolute, opEOR, 4, false)
	set(0x5D, AbsoluteX, opEOR, 4, true)
	set(0x59, AbsoluteY, opEOR, 4, true)
	set(0x41, IndexedIndirect, opEOR, 6, false)
	set(0x51, IndirectIndexed, opEOR, 5, true)

	// JMP / JSR / RTS / RTI
	set(0x4C, Absolute, opJMP, 3, false)
	set(0x6C, Indirect, opJMP, 5, false)
	set(0x20, Absolute, opJSR, 6, false)
	set(0x60, Implied, opRTS, 6, false)
	set(0x40, Implied, opRTI, 6, false)

	// Loads
	set(0xA9, Immediate, opLDA, 2, false)
	set(0xA5, ZeroPage, opLDA, 3, false)
	set(0xB5, ZeroPageX, opLDA, 4, false)
	set(0xAD, Absolute, opLDA, 4, false)
	set(0xBD, AbsoluteX, opLDA, 4, true)
	set(0xB9, AbsoluteY, opLDA, 4, true)
	set(0xA1, IndexedIndirect, opLDA, 6, false)
	set(0xB1, IndirectIndexed, opLDA, 5, true)

	set(0xA2, Immediate, opLDX, 2, false)
	set(0xA6, ZeroPage, opLDX, 3, false)
	set(0xB6, ZeroPageY, opLDX, 4, false)
	set(0xAE, Absolute, opLDX, 4, false)
	set(0xBE, AbsoluteY, opLDX, 4, true)

	set(0xA0, Immediate, opLDY, 2, false)
	set(0xA4, ZeroPage, opLDY, 3, false)
	set(0xB4, ZeroPageX, opLDY, 4, false)
	set(0xAC, Absolute, opLDY, 4, false)
	set(0xBC, AbsoluteX, opLDY, 4, true)

	// LSR
	set(0x4A, Accumulator, opLSR, 2, false)
	set(0x46, ZeroPage, opLSR, 5, false)
	set(0x56, ZeroPageX, opLSR, 6, false)
	set(0x4E, Absolute, opLSR, 6, false)
	set(0x5E, AbsoluteXStore, opLSR, 7, false)

	// NOP (official + the undocumented read-NOPs)
	set(0xEA, Implied, opNOP, 2, false)
	for _, c := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		set(c, Implied, opNOP, 2, false)
	}
	for _, c := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		set(c, Immediate, opNOP, 2, false)
	}
	for _, c := range []uint8{0x04, 0x44, 0x64} {
		set(c, ZeroPage, opNOP, 3, false)
	}
	for _, c := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		set(c, ZeroPageX, opNOP, 4, false)
	}
	set(0x0C, Absolute, opNOP, 4, false)
	for _, c := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		set(c, AbsoluteX, opNOP, 4, true)
	}

	// ORA
	set(0x09, Immediate, opORA, 2, false)
	set(0x05, ZeroPage, opORA, 3, false)
	set(0x15, ZeroPageX, opORA, 4, false)
	set(0x0D, Absolute, opORA, 4, false)
	set(0x1D, AbsoluteX, opORA, 4, true)
	set(0x19, AbsoluteY, opORA, 4, true)
	set(0x01, IndexedIndirect, opORA, 6, false)
	set(0x11, IndirectIndexed, opORA, 5, true)

	// Stack ops
	set(0x48, Implied, opPHA, 3, false)
	set(0x08, Implied, opPHP, 3, false)
	set(0x68, Implied, opPLA, 4, false)
	set(0x28, Implied, opPLP, 4, false)

	// ROL / ROR
	set(0x2A, Accumulator, opROL, 2, false)
	set(0x26, ZeroPage, opROL, 5, false)
	set(0x36, ZeroPageX, opROL, 6, false)
	set(0x2E, Absolute, opROL, 6, false)
	set(0x3E, AbsoluteXStore, opROL, 7, false)
	set(0x6A, Accumulator, opROR, 2, false)
	set(0x66, ZeroPage, opROR, 5, false)
	set(0x76, ZeroPageX, opROR, 6, false)
	set(0x6E, Absolute, opROR, 6, false)
	set(0x7E, AbsoluteXStore, opROR, 7, false)

	// SBC
	set(0xE9, Immediate, opSBC, 2, false)
	set(0xEB, Immediate, opSBC, 2, false) // undocumented duplicate
	set(0xE5, ZeroPage, opSBC, 3, false)
	set(0xF5, ZeroPageX, opSBC, 4, false)
	set(0xED, Absolute, opSBC, 4, false)
	set(0xFD, AbsoluteX, opSBC, 4, true)
	set(0xF9, AbsoluteY, opSBC, 4, true)
	set(0xE1, IndexedIndirect, opSBC, 6, false)
	set(0xF1, IndirectIndexed, opSBC, 5, true)

	// Stores
	set(0x85, ZeroPage, opSTA, 3, false)
	set(0x95, ZeroPageX, opSTA, 4, false)
	set(0x8D, Absolute, opSTA, 4, false)
	set(0x9D, AbsoluteXStore, opSTA, 5, false)
	set(0x99, AbsoluteYStore, opSTA, 5, false)
	set(0x81, IndexedIndirect, opSTA, 6, false)
	set(0x91, IndirectIndexedStore, opSTA, 6, false)
	set(0x86, ZeroPage, opSTX, 3, false)
	set(0x96, ZeroPageY, opSTX, 4, false)
	set(0x8E, Absolute, opSTX, 4, false)
	set(0x84, ZeroPage, opSTY, 3, false)
	set(0x94, ZeroPageX, opSTY, 4, false)
	set(0x8C, Absolute, opSTY, 4, false)

	// Transfers
	set(0xAA, Implied, opTAX, 2, false)
	set(0xA8, Implied, opTAY, 2, false)
	set(0xBA, Implied, opTSX, 2, false)
	set(0x8A, Implied, opTXA, 2, false)
	set(0x9A, Implied, opTXS, 2, false)
	set(0x98, Implied, opTYA, 2, false)

	// LAX (LDA+LDX combined)
	set(0xA3, IndexedIndirect, opLAX, 6, false)
	set(0xA7, ZeroPage, opLAX, 3, false)
	set(0xAF, Absolute, opLAX, 4, false)
	set(0xB3, IndirectIndexed, opLAX, 5, true)
	set(0xB7, ZeroPageY, opLAX, 4, false)
	set(0xBF, AbsoluteY, opLAX, 4, true)

	// SAX (store A&X)
	set(0x83, IndexedIndirect, opSAX, 6, false)
	set(0x87, ZeroPage, opSAX, 3, false)
	set(0x8F, Absolute, opSAX, 4, false)
	set(0x97, ZeroPageY, opSAX, 4, false)

	// DCP (DEC + CMP)
	set(0xC3, IndexedIndirect, opDCP, 8, false)
	set(0xC7, ZeroPage, opDCP, 5, false)
	set(0xCF, Absolute, opDCP, 6, false)
	set(0xD3, IndirectIndexed, opDCP, 8, false)
	set(0xD7, ZeroPageX, opDCP, 6, false)
	set(0xDB, AbsoluteYStore, opDCP, 7, false)
	set(0xDF, AbsoluteXStore, opDCP, 7, false)

	// ISB/ISC (INC + SBC)
	set(0xE3, IndexedIndirect, opISB, 8, false)
	set(0xE7, ZeroPage, opISB, 5, false)
	set(0xEF, Absolute, opISB, 6, false)
	set(0xF3, IndirectIndexed, opISB, 8, false)
	set(0xF7, ZeroPageX, opISB, 6, false)
	set(0xFB, AbsoluteYStore, opISB, 7, false)
	set(0xFF, AbsoluteXStore, opISB, 7, false)

	// SLO (ASL + ORA)
	set(0x03, IndexedIndirect, opSLO, 8, false)
	set(0x07, ZeroPage, opSLO, 5, false)
	set(0x0F, Absolute, opSLO, 6, false)
	set(0x13, IndirectIndexed, opSLO, 8, false)
	set(0x17, ZeroPageX, opSLO, 6, false)
	set(0x1B, AbsoluteYStore, opSLO, 7, false)
	set(0x1F, AbsoluteXStore, opSLO, 7, false)

	// RLA (ROL + AND)
	set(0x23, IndexedIndirect, opRLA, 8, false)
	set(0x27, ZeroPage, opRLA, 5, false)
	set(0x2F, Absolute, opRLA, 6, false)
	set(0x33, IndirectIndexed, opRLA, 8, false)
	set(0x37, ZeroPageX, opRLA, 6, false)
	set(0x3B, AbsoluteYStore, opRLA, 7, false)
	set(0x3F, AbsoluteXStore, opRLA, 7, false)

	// SRE (LSR + EOR)
	set(0x43, IndexedIndirect, opSRE, 8, false)
	set(0x47, ZeroPage, opSRE, 5, false)
	set(0x4F, Absolute, opSRE, 6, false)
	set(0x53, IndirectIndexed, opSRE, 8, false)
	set(0x57, ZeroPageX, opSRE, 6, false)
	set(0x5B, AbsoluteYStore, opSRE, 7, false)
	set(0x5F, AbsoluteXStore, opSRE, 7, false)

	// RRA (ROR + ADC)
	set(0x63, IndexedIndirect, opRRA, 8, false)
	set(0x67, ZeroPage, opRRA, 5, false)
	set(0x6F, Absolute, opRRA, 6, false)
	set(0x73, IndirectIndexed, opRRA, 8, false)
	set(0x77, ZeroPageX, opRRA, 6, false)
	set(0x7B, AbsoluteYStore, opRRA, 7, false)
	set(0x7F, AbsoluteXStore, opRRA, 7, false)

	return t
}
