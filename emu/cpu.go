package emu

// Flag bits in F. The low nibble of F is always zero.
const (
	FlagZ uint8 = 0x80
	FlagN uint8 = 0x40
	FlagH uint8 = 0x20
	FlagC uint8 = 0x10
)

// Fixed cost of an interrupt dispatch.
const interruptCycles = 20

// Registers is the programmer visible register file.
type Registers struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16
}

func (r *Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F) }
func (r *Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

func (r *Registers) SetAF(v uint16) { r.A, r.F = uint8(v>>8), uint8(v)&0xF0 }
func (r *Registers) SetBC(v uint16) { r.B, r.C = uint8(v>>8), uint8(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = uint8(v>>8), uint8(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = uint8(v>>8), uint8(v) }

// Flag reports whether a flag bit is set.
func (r *Registers) Flag(f uint8) bool {
	return r.F&f != 0
}

func (r *Registers) setFlags(z, n, h, c bool) {
	var f uint8
	if z {
		f |= FlagZ
	}
	if n {
		f |= FlagN
	}
	if h {
		f |= FlagH
	}
	if c {
		f |= FlagC
	}
	r.F = f
}

func (r *Registers) setFlag(f uint8, on bool) {
	if on {
		r.F |= f
	} else {
		r.F &^= f
	}
}

func (r *Registers) carry() uint8 {
	return (r.F & FlagC) >> 4
}

// CPU is the SM83 execution engine.
type CPU struct {
	Registers
	Cycles uint64

	bus *Bus
	irq *Interrupts

	imeDelay int // Instructions left before a pending EI takes effect
	stopped  bool
	fault    error
}

// NewCPU creates a CPU attached to bus.
func NewCPU(bus *Bus, irq *Interrupts) *CPU {
	return &CPU{bus: bus, irq: irq}
}

// Reset loads the register values the boot ROM leaves behind.
func (c *CPU) Reset(cgb bool) {
	c.Registers = Registers{SP: 0xFFFE, PC: 0x0100}
	if cgb {
		c.SetAF(0x1180)
		c.SetBC(0x0000)
		c.SetDE(0xFF56)
		c.SetHL(0x000D)
	} else {
		c.SetAF(0x01B0)
		c.SetBC(0x0013)
		c.SetDE(0x00D8)
		c.SetHL(0x014D)
	}
	c.Cycles = 0
	c.imeDelay = 0
	c.stopped = false
	c.fault = nil
	*c.irq = Interrupts{IME: true}
}

// Fault returns the fatal error that stopped the CPU, if any.
func (c *CPU) Fault() error {
	return c.fault
}

// Step dispatches a pending interrupt or executes one instruction and
// returns its cost in cycles. After a fatal error every later call returns
// the same error without executing.
func (c *CPU) Step() (int, error) {
	if c.fault != nil {
		return 0, c.fault
	}

	if c.irq.IME {
		if n, ok := c.irq.Next(); ok {
			c.irq.Request &^= 1 << n
			c.irq.IME = false
			c.irq.Halted = false
			c.stopped = false
			c.push(c.PC)
			c.PC = uint16(n)*8 + 0x40
			return c.finish(interruptCycles)
		}
	}

	if c.irq.Halted {
		if c.irq.Enable&intMask == 0 || !c.irq.IME {
			c.fault = &DeadlockError{PC: c.PC, IE: c.irq.Enable, IME: c.irq.IME}
			return 0, c.fault
		}
		return c.finish(4)
	}

	if c.stopped {
		if c.irq.Request&(1<<IntJoypad) == 0 && c.irq.Pending() == 0 {
			return c.finish(4)
		}
		c.stopped = false
	}

	pc := c.PC
	op := c.fetch()
	inst := &opcodes[op]
	if inst.exec == nil {
		c.PC = pc
		c.fault = &DecodeFault{PC: pc, Opcode: op}
		return 0, c.fault
	}

	cycles := opCycles[op] + inst.exec(c, op)

	// EI takes effect after the instruction that follows it.
	if c.imeDelay > 0 {
		c.imeDelay--
		if c.imeDelay == 0 {
			c.irq.IME = true
		}
	}

	return c.finish(cycles)
}

func (c *CPU) finish(cycles int) (int, error) {
	c.Cycles += uint64(cycles)
	if err := c.bus.Fault(); err != nil {
		c.fault = err
		return cycles, err
	}
	return cycles, nil
}

func (c *CPU) fetch() uint8 {
	v := c.bus.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) push(v uint16) {
	c.SP--
	c.bus.Write(c.SP, uint8(v>>8))
	c.SP--
	c.bus.Write(c.SP, uint8(v))
}

func (c *CPU) pop() uint16 {
	lo := c.bus.Read(c.SP)
	c.SP++
	hi := c.bus.Read(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}
