package emu

// execFunc runs one decoded instruction and returns any cycles beyond the
// table cost, such as a taken-branch penalty.
type execFunc func(c *CPU, op uint8) int

type instruction struct {
	name string
	exec execFunc
}

// opPattern matches every opcode where op&mask == value.
type opPattern struct {
	mask  uint8
	value uint8
	name  string
	exec  execFunc
}

var (
	opcodes   [256]instruction
	cbOpcodes [256]instruction
)

var illegalOpcodes = []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

func init() {
	buildTable(&opcodes, mainPatterns)
	buildTable(&cbOpcodes, cbPatterns)
	for _, op := range illegalOpcodes {
		opcodes[op] = instruction{}
	}
}

// buildTable expands patterns into a jump table. The first matching
// pattern wins, so exact opcodes are listed before the classes that
// would otherwise swallow them.
func buildTable(table *[256]instruction, patterns []opPattern) {
	for op := 0; op < 256; op++ {
		for _, p := range patterns {
			if uint8(op)&p.mask == p.value {
				table[op] = instruction{name: p.name, exec: p.exec}
				break
			}
		}
	}
}

// Mnemonic returns the instruction class name for an opcode.
func Mnemonic(op uint8) string {
	if opcodes[op].exec == nil {
		return "ILLEGAL"
	}
	return opcodes[op].name
}

var mainPatterns = []opPattern{
	{0xFF, 0x00, "NOP", func(c *CPU, op uint8) int { return 0 }},
	{0xFF, 0x08, "LD (a16),SP", opStoreSP},
	{0xFF, 0x10, "STOP", opStop},
	{0xFF, 0x18, "JR e", opJR},
	{0xFF, 0x07, "RLCA", opRLCA},
	{0xFF, 0x0F, "RRCA", opRRCA},
	{0xFF, 0x17, "RLA", opRLA},
	{0xFF, 0x1F, "RRA", opRRA},
	{0xFF, 0x27, "DAA", opDAA},
	{0xFF, 0x2F, "CPL", opCPL},
	{0xFF, 0x37, "SCF", opSCF},
	{0xFF, 0x3F, "CCF", opCCF},
	{0xFF, 0x76, "HALT", opHalt},
	{0xFF, 0xC3, "JP a16", opJP},
	{0xFF, 0xC9, "RET", opRET},
	{0xFF, 0xCB, "PREFIX CB", opPrefixCB},
	{0xFF, 0xCD, "CALL a16", opCALL},
	{0xFF, 0xD9, "RETI", opRETI},
	{0xFF, 0xE0, "LDH (a8),A", opStoreHigh},
	{0xFF, 0xE2, "LD (C),A", opStoreHighC},
	{0xFF, 0xE8, "ADD SP,e", opAddSP},
	{0xFF, 0xE9, "JP HL", opJPHL},
	{0xFF, 0xEA, "LD (a16),A", opStoreAbs},
	{0xFF, 0xF0, "LDH A,(a8)", opLoadHigh},
	{0xFF, 0xF2, "LD A,(C)", opLoadHighC},
	{0xFF, 0xF3, "DI", opDI},
	{0xFF, 0xF8, "LD HL,SP+e", opLoadHLSP},
	{0xFF, 0xF9, "LD SP,HL", opLoadSPHL},
	{0xFF, 0xFA, "LD A,(a16)", opLoadAbs},
	{0xFF, 0xFB, "EI", opEI},

	{0xE7, 0x20, "JR cc,e", opJRcc},
	{0xCF, 0x01, "LD rr,d16", opLoad16},
	{0xCF, 0x02, "LD (rr),A", opStoreIndirect},
	{0xCF, 0x03, "INC rr", opInc16},
	{0xCF, 0x09, "ADD HL,rr", opAddHL},
	{0xCF, 0x0A, "LD A,(rr)", opLoadIndirect},
	{0xCF, 0x0B, "DEC rr", opDec16},
	{0xC7, 0x04, "INC r", opInc8},
	{0xC7, 0x05, "DEC r", opDec8},
	{0xC7, 0x06, "LD r,d8", opLoadImm},
	{0xC0, 0x40, "LD r,r", opLoadReg},
	{0xC0, 0x80, "ALU A,r", opALUReg},
	{0xE7, 0xC0, "RET cc", opRETcc},
	{0xE7, 0xC2, "JP cc,a16", opJPcc},
	{0xE7, 0xC4, "CALL cc,a16", opCALLcc},
	{0xCF, 0xC1, "POP rr", opPop},
	{0xCF, 0xC5, "PUSH rr", opPush},
	{0xC7, 0xC6, "ALU A,d8", opALUImm},
	{0xC7, 0xC7, "RST", opRST},
}

// ----------------------------------------------------------------------------
// Operands
// ----------------------------------------------------------------------------

type operandKind uint8

const (
	operandRegister operandKind = iota
	operandMemHL                // selector 110: the byte at (HL)
)

// operand is a decoded 3-bit register selector.
type operand struct {
	kind operandKind
	reg  uint8
}

func decodeOperand(sel uint8) operand {
	sel &= 0x07
	if sel == 6 {
		return operand{kind: operandMemHL}
	}
	return operand{kind: operandRegister, reg: sel}
}

func (c *CPU) reg8(id uint8) *uint8 {
	switch id {
	case 0:
		return &c.B
	case 1:
		return &c.C
	case 2:
		return &c.D
	case 3:
		return &c.E
	case 4:
		return &c.H
	case 5:
		return &c.L
	default:
		return &c.A
	}
}

func (c *CPU) load(o operand) uint8 {
	if o.kind == operandMemHL {
		return c.bus.Read(c.HL())
	}
	return *c.reg8(o.reg)
}

func (c *CPU) store(o operand, v uint8) {
	if o.kind == operandMemHL {
		c.bus.Write(c.HL(), v)
		return
	}
	*c.reg8(o.reg) = v
}

// rr selects BC, DE, HL, SP from bits 4-5.
func (c *CPU) rr(op uint8) uint16 {
	switch (op >> 4) & 0x03 {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.SP
	}
}

func (c *CPU) setRR(op uint8, v uint16) {
	switch (op >> 4) & 0x03 {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

// condition evaluates NZ, Z, NC, C from bits 3-4.
func (c *CPU) condition(op uint8) bool {
	switch (op >> 3) & 0x03 {
	case 0:
		return !c.Flag(FlagZ)
	case 1:
		return c.Flag(FlagZ)
	case 2:
		return !c.Flag(FlagC)
	default:
		return c.Flag(FlagC)
	}
}

// ----------------------------------------------------------------------------
// Loads
// ----------------------------------------------------------------------------

func opLoadReg(c *CPU, op uint8) int {
	c.store(decodeOperand(op>>3), c.load(decodeOperand(op)))
	return 0
}

func opLoadImm(c *CPU, op uint8) int {
	c.store(decodeOperand(op>>3), c.fetch())
	return 0
}

func opLoad16(c *CPU, op uint8) int {
	c.setRR(op, c.fetch16())
	return 0
}

// indirectAddr resolves (BC), (DE), (HL+), (HL-).
func (c *CPU) indirectAddr(op uint8) uint16 {
	switch (op >> 4) & 0x03 {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		hl := c.HL()
		c.SetHL(hl + 1)
		return hl
	default:
		hl := c.HL()
		c.SetHL(hl - 1)
		return hl
	}
}

func opStoreIndirect(c *CPU, op uint8) int {
	c.bus.Write(c.indirectAddr(op), c.A)
	return 0
}

func opLoadIndirect(c *CPU, op uint8) int {
	c.A = c.bus.Read(c.indirectAddr(op))
	return 0
}

func opStoreSP(c *CPU, op uint8) int {
	c.bus.Write16(c.fetch16(), c.SP)
	return 0
}

func opStoreHigh(c *CPU, op uint8) int {
	c.bus.Write(0xFF00|uint16(c.fetch()), c.A)
	return 0
}

func opLoadHigh(c *CPU, op uint8) int {
	c.A = c.bus.Read(0xFF00 | uint16(c.fetch()))
	return 0
}

func opStoreHighC(c *CPU, op uint8) int {
	c.bus.Write(0xFF00|uint16(c.C), c.A)
	return 0
}

func opLoadHighC(c *CPU, op uint8) int {
	c.A = c.bus.Read(0xFF00 | uint16(c.C))
	return 0
}

func opStoreAbs(c *CPU, op uint8) int {
	c.bus.Write(c.fetch16(), c.A)
	return 0
}

func opLoadAbs(c *CPU, op uint8) int {
	c.A = c.bus.Read(c.fetch16())
	return 0
}

func opLoadSPHL(c *CPU, op uint8) int {
	c.SP = c.HL()
	return 0
}

func opLoadHLSP(c *CPU, op uint8) int {
	c.SetHL(c.addSPOffset(c.fetch()))
	return 0
}

func opPush(c *CPU, op uint8) int {
	if op == 0xF5 {
		c.push(c.AF())
	} else {
		c.push(c.rr(op))
	}
	return 0
}

func opPop(c *CPU, op uint8) int {
	v := c.pop()
	if op == 0xF1 {
		c.SetAF(v)
	} else {
		c.setRR(op, v)
	}
	return 0
}

// ----------------------------------------------------------------------------
// Arithmetic
// ----------------------------------------------------------------------------

func opALUReg(c *CPU, op uint8) int {
	c.alu(op>>3, c.load(decodeOperand(op)))
	return 0
}

func opALUImm(c *CPU, op uint8) int {
	c.alu(op>>3, c.fetch())
	return 0
}

// alu runs ADD, ADC, SUB, SBC, AND, XOR, OR or CP against A.
func (c *CPU) alu(sel uint8, v uint8) {
	switch sel & 0x07 {
	case 0:
		c.A = c.add8(v, 0)
	case 1:
		c.A = c.add8(v, c.carry())
	case 2:
		c.A = c.sub8(v, 0)
	case 3:
		c.A = c.sub8(v, c.carry())
	case 4:
		c.A &= v
		c.setFlags(c.A == 0, false, true, false)
	case 5:
		c.A ^= v
		c.setFlags(c.A == 0, false, false, false)
	case 6:
		c.A |= v
		c.setFlags(c.A == 0, false, false, false)
	case 7:
		c.sub8(v, 0)
	}
}

func (c *CPU) add8(v, carry uint8) uint8 {
	a := c.A
	r := uint16(a) + uint16(v) + uint16(carry)
	c.setFlags(uint8(r) == 0, false, a&0x0F+v&0x0F+carry > 0x0F, r > 0xFF)
	return uint8(r)
}

func (c *CPU) sub8(v, carry uint8) uint8 {
	a := c.A
	r := int(a) - int(v) - int(carry)
	c.setFlags(uint8(r) == 0, true, int(a&0x0F)-int(v&0x0F)-int(carry) < 0, r < 0)
	return uint8(r)
}

func opInc8(c *CPU, op uint8) int {
	o := decodeOperand(op >> 3)
	v := c.load(o) + 1
	c.store(o, v)
	c.setFlag(FlagZ, v == 0)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, v&0x0F == 0)
	return 0
}

func opDec8(c *CPU, op uint8) int {
	o := decodeOperand(op >> 3)
	v := c.load(o) - 1
	c.store(o, v)
	c.setFlag(FlagZ, v == 0)
	c.setFlag(FlagN, true)
	c.setFlag(FlagH, v&0x0F == 0x0F)
	return 0
}

func opInc16(c *CPU, op uint8) int {
	c.setRR(op, c.rr(op)+1)
	return 0
}

func opDec16(c *CPU, op uint8) int {
	c.setRR(op, c.rr(op)-1)
	return 0
}

func opAddHL(c *CPU, op uint8) int {
	hl := c.HL()
	v := c.rr(op)
	r := uint32(hl) + uint32(v)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, hl&0x0FFF+v&0x0FFF > 0x0FFF)
	c.setFlag(FlagC, r > 0xFFFF)
	c.SetHL(uint16(r))
	return 0
}

// addSPOffset adds a signed byte to SP. H and C come from the unsigned
// add of the low byte.
func (c *CPU) addSPOffset(e uint8) uint16 {
	sp := c.SP
	c.setFlags(false, false, sp&0x0F+uint16(e)&0x0F > 0x0F, sp&0xFF+uint16(e) > 0xFF)
	return sp + uint16(int8(e))
}

func opAddSP(c *CPU, op uint8) int {
	c.SP = c.addSPOffset(c.fetch())
	return 0
}

func opDAA(c *CPU, op uint8) int {
	a := c.A
	carry := c.Flag(FlagC)
	if !c.Flag(FlagN) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.Flag(FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if c.Flag(FlagH) {
			a -= 0x06
		}
	}
	c.A = a
	c.setFlag(FlagZ, a == 0)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, carry)
	return 0
}

func opCPL(c *CPU, op uint8) int {
	c.A = ^c.A
	c.setFlag(FlagN, true)
	c.setFlag(FlagH, true)
	return 0
}

func opSCF(c *CPU, op uint8) int {
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, true)
	return 0
}

func opCCF(c *CPU, op uint8) int {
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, false)
	c.setFlag(FlagC, !c.Flag(FlagC))
	return 0
}

// Accumulator rotates always clear Z.
func opRLCA(c *CPU, op uint8) int {
	c.A = c.rlc(c.A)
	c.setFlag(FlagZ, false)
	return 0
}

func opRRCA(c *CPU, op uint8) int {
	c.A = c.rrc(c.A)
	c.setFlag(FlagZ, false)
	return 0
}

func opRLA(c *CPU, op uint8) int {
	c.A = c.rl(c.A)
	c.setFlag(FlagZ, false)
	return 0
}

func opRRA(c *CPU, op uint8) int {
	c.A = c.rr8(c.A)
	c.setFlag(FlagZ, false)
	return 0
}

// ----------------------------------------------------------------------------
// Control flow
// ----------------------------------------------------------------------------

func opJR(c *CPU, op uint8) int {
	e := int8(c.fetch())
	c.PC += uint16(e)
	return 0
}

func opJRcc(c *CPU, op uint8) int {
	e := int8(c.fetch())
	if !c.condition(op) {
		return 0
	}
	c.PC += uint16(e)
	return jrTaken
}

func opJP(c *CPU, op uint8) int {
	c.PC = c.fetch16()
	return 0
}

func opJPcc(c *CPU, op uint8) int {
	addr := c.fetch16()
	if !c.condition(op) {
		return 0
	}
	c.PC = addr
	return jpTaken
}

func opJPHL(c *CPU, op uint8) int {
	c.PC = c.HL()
	return 0
}

func opCALL(c *CPU, op uint8) int {
	addr := c.fetch16()
	c.push(c.PC)
	c.PC = addr
	return 0
}

func opCALLcc(c *CPU, op uint8) int {
	addr := c.fetch16()
	if !c.condition(op) {
		return 0
	}
	c.push(c.PC)
	c.PC = addr
	return callTaken
}

func opRET(c *CPU, op uint8) int {
	c.PC = c.pop()
	return 0
}

func opRETcc(c *CPU, op uint8) int {
	if !c.condition(op) {
		return 0
	}
	c.PC = c.pop()
	return retTaken
}

func opRETI(c *CPU, op uint8) int {
	c.PC = c.pop()
	c.irq.IME = true
	return 0
}

func opRST(c *CPU, op uint8) int {
	c.push(c.PC)
	c.PC = uint16(op & 0x38)
	return 0
}

// ----------------------------------------------------------------------------
// CPU control
// ----------------------------------------------------------------------------

func opHalt(c *CPU, op uint8) int {
	c.irq.Halted = true
	return 0
}

// opStop consumes its padding byte. On CGB an armed KEY1 turns STOP into
// a speed switch; otherwise the CPU sleeps until a button is pressed.
func opStop(c *CPU, op uint8) int {
	c.fetch()
	if c.bus.cgb && c.bus.io.speedSwitch() {
		c.bus.timer.Write(0xFF04, 0)
		return 0
	}
	c.stopped = true
	return 0
}

func opDI(c *CPU, op uint8) int {
	c.irq.IME = false
	c.imeDelay = 0
	return 0
}

func opEI(c *CPU, op uint8) int {
	if !c.irq.IME && c.imeDelay == 0 {
		c.imeDelay = 2
	}
	return 0
}

func opPrefixCB(c *CPU, op uint8) int {
	cb := c.fetch()
	cbOpcodes[cb].exec(c, cb)
	return cbCycles[cb]
}
