package emu

var cbPatterns = []opPattern{
	{0xF8, 0x00, "RLC r", cbShift},
	{0xF8, 0x08, "RRC r", cbShift},
	{0xF8, 0x10, "RL r", cbShift},
	{0xF8, 0x18, "RR r", cbShift},
	{0xF8, 0x20, "SLA r", cbShift},
	{0xF8, 0x28, "SRA r", cbShift},
	{0xF8, 0x30, "SWAP r", cbShift},
	{0xF8, 0x38, "SRL r", cbShift},
	{0xC0, 0x40, "BIT n,r", cbBit},
	{0xC0, 0x80, "RES n,r", cbRes},
	{0xC0, 0xC0, "SET n,r", cbSet},
}

// cbShift runs the rotate/shift selected by bits 3-5.
func cbShift(c *CPU, op uint8) int {
	o := decodeOperand(op)
	v := c.load(o)
	switch (op >> 3) & 0x07 {
	case 0:
		v = c.rlc(v)
	case 1:
		v = c.rrc(v)
	case 2:
		v = c.rl(v)
	case 3:
		v = c.rr8(v)
	case 4:
		v = c.shift(v<<1, v&0x80 != 0)
	case 5:
		v = c.shift(v>>1|v&0x80, v&0x01 != 0)
	case 6:
		v = v<<4 | v>>4
		c.setFlags(v == 0, false, false, false)
	case 7:
		v = c.shift(v>>1, v&0x01 != 0)
	}
	c.store(o, v)
	return 0
}

func cbBit(c *CPU, op uint8) int {
	v := c.load(decodeOperand(op))
	bit := (op >> 3) & 0x07
	c.setFlag(FlagZ, v&(1<<bit) == 0)
	c.setFlag(FlagN, false)
	c.setFlag(FlagH, true)
	return 0
}

func cbRes(c *CPU, op uint8) int {
	o := decodeOperand(op)
	c.store(o, c.load(o)&^(1<<((op>>3)&0x07)))
	return 0
}

func cbSet(c *CPU, op uint8) int {
	o := decodeOperand(op)
	c.store(o, c.load(o)|1<<((op>>3)&0x07))
	return 0
}

func (c *CPU) shift(v uint8, carry bool) uint8 {
	c.setFlags(v == 0, false, false, carry)
	return v
}

func (c *CPU) rlc(v uint8) uint8 {
	return c.shift(v<<1|v>>7, v&0x80 != 0)
}

func (c *CPU) rrc(v uint8) uint8 {
	return c.shift(v>>1|v<<7, v&0x01 != 0)
}

func (c *CPU) rl(v uint8) uint8 {
	return c.shift(v<<1|c.carry(), v&0x80 != 0)
}

func (c *CPU) rr8(v uint8) uint8 {
	return c.shift(v>>1|c.carry()<<7, v&0x01 != 0)
}
