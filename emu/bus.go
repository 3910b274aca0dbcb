package emu

// Bus decodes the 16-bit address space onto memory banks and registers.
// Every address has exactly one meaning. A decode that cannot be satisfied
// latches a BusFault which the CPU reports after the current instruction.
type Bus struct {
	mem   *Memory
	io    *IO
	irq   *Interrupts
	lcd   *LCD
	timer *Timer
	cgb   bool

	fault error
}

// NewBus wires the address decoder to its components.
func NewBus(mem *Memory, io *IO, irq *Interrupts, lcd *LCD, timer *Timer, cgb bool) *Bus {
	return &Bus{mem: mem, io: io, irq: irq, lcd: lcd, timer: timer, cgb: cgb}
}

// Fault returns the first fault latched by the bus.
func (b *Bus) Fault() error {
	return b.fault
}

func (b *Bus) latch(f *BusFault) {
	if f != nil && b.fault == nil {
		b.fault = f
	}
}

// Read returns the byte at addr.
func (b *Bus) Read(addr uint16) uint8 {
	switch addr >> 12 {
	case 0x0, 0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7:
		return b.mem.readROM(addr)
	case 0x8, 0x9:
		return b.mem.readVRAM(addr)
	case 0xA, 0xB:
		return b.mem.readExt(addr)
	case 0xC, 0xD:
		return b.mem.wram[b.mem.wramOffset(addr)]
	case 0xE:
		return b.Read(addr - 0x2000)
	}

	switch {
	case addr < 0xFE00:
		return b.Read(addr - 0x2000)
	case addr < 0xFEA0:
		return b.mem.oam[addr-0xFE00]
	case addr < 0xFF00:
		return 0xFF
	case addr < 0xFF80:
		return b.readIO(addr)
	case addr < 0xFFFF:
		return b.mem.hram[addr-0xFF80]
	default:
		return b.irq.Enable
	}
}

// Write stores v at addr.
func (b *Bus) Write(addr uint16, v uint8) {
	switch addr >> 12 {
	case 0x0, 0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7:
		b.latch(b.mem.writeControl(addr, v))
		return
	case 0x8, 0x9:
		b.mem.writeVRAM(addr, v)
		return
	case 0xA, 0xB:
		b.mem.writeExt(addr, v)
		return
	case 0xC, 0xD:
		b.mem.wram[b.mem.wramOffset(addr)] = v
		return
	case 0xE:
		b.Write(addr-0x2000, v)
		return
	}

	switch {
	case addr < 0xFE00:
		b.Write(addr-0x2000, v)
	case addr < 0xFEA0:
		b.mem.oam[addr-0xFE00] = v
	case addr < 0xFF00:
	case addr < 0xFF80:
		b.writeIO(addr, v)
	case addr < 0xFFFF:
		b.mem.hram[addr-0xFF80] = v
	default:
		b.irq.Enable = v
	}
}

// Read16 reads a little endian word.
func (b *Bus) Read16(addr uint16) uint16 {
	return uint16(b.Read(addr)) | uint16(b.Read(addr+1))<<8
}

// Write16 writes a little endian word.
func (b *Bus) Write16(addr uint16, v uint16) {
	b.Write(addr, uint8(v))
	b.Write(addr+1, uint8(v>>8))
}

func (b *Bus) readIO(addr uint16) uint8 {
	switch {
	case addr == 0xFF00:
		return b.io.Input.Read()
	case addr == 0xFF01:
		return b.io.SB
	case addr == 0xFF02:
		return 0x7E | b.io.SC
	case addr >= 0xFF04 && addr <= 0xFF07:
		return b.timer.Read(addr)
	case addr == 0xFF0F:
		return b.irq.readIF()
	case addr >= soundBase && addr <= soundEnd, addr >= waveBase && addr <= waveEnd:
		return b.io.readSound(addr)
	case addr == 0xFF46:
		return b.io.DMA
	case addr >= 0xFF40 && addr <= 0xFF4B:
		return b.lcd.Read(addr)
	}

	if !b.cgb {
		return 0xFF
	}

	switch addr {
	case 0xFF4D:
		return b.io.readKEY1()
	case 0xFF4F:
		return 0xFE | uint8(b.mem.vramBank)
	case 0xFF55:
		if b.io.hdmaActive {
			return b.io.hdmaLen & 0x7F
		}
		return 0xFF
	case 0xFF56:
		return b.io.RP | 0x3C
	case 0xFF68:
		return readPaletteIndex(b.lcd.BGPI)
	case 0xFF69:
		return readPaletteData(&b.lcd.BGPalette, b.lcd.BGPI)
	case 0xFF6A:
		return readPaletteIndex(b.lcd.OBPI)
	case 0xFF6B:
		return readPaletteData(&b.lcd.OBJPalette, b.lcd.OBPI)
	case 0xFF70:
		return 0xF8 | uint8(b.mem.wramBank)
	}
	return 0xFF
}

func (b *Bus) writeIO(addr uint16, v uint8) {
	switch {
	case addr == 0xFF00:
		b.io.Input.Select = v & 0x30
		return
	case addr == 0xFF01:
		b.io.SB = v
		return
	case addr == 0xFF02:
		b.io.writeSC(v)
		return
	case addr >= 0xFF04 && addr <= 0xFF07:
		b.timer.Write(addr, v)
		return
	case addr == 0xFF0F:
		b.irq.writeIF(v)
		return
	case addr >= soundBase && addr <= soundEnd, addr >= waveBase && addr <= waveEnd:
		b.io.writeSound(addr, v)
		return
	case addr == 0xFF46:
		b.io.DMA = v
		b.oamDMA(v)
		return
	case addr >= 0xFF40 && addr <= 0xFF4B:
		b.lcd.Write(addr, v)
		return
	case addr == 0xFF50:
		if v != 0 {
			b.mem.bootActive = false
		}
		return
	}

	if !b.cgb {
		return
	}

	switch addr {
	case 0xFF4D:
		b.io.KEY1 = b.io.KEY1&0x80 | v&0x01
	case 0xFF4F:
		b.mem.selectVRAMBank(v)
	case 0xFF51:
		b.io.hdmaSrc = b.io.hdmaSrc&0x00FF | uint16(v)<<8
	case 0xFF52:
		b.io.hdmaSrc = b.io.hdmaSrc&0xFF00 | uint16(v&0xF0)
	case 0xFF53:
		b.io.hdmaDst = b.io.hdmaDst&0x00FF | uint16(v&0x1F)<<8
	case 0xFF54:
		b.io.hdmaDst = b.io.hdmaDst&0xFF00 | uint16(v&0xF0)
	case 0xFF55:
		b.startHDMA(v)
	case 0xFF56:
		b.io.RP = v & 0xC1
	case 0xFF68:
		b.lcd.BGPI = v & 0xBF
	case 0xFF69:
		writePaletteData(&b.lcd.BGPalette, &b.lcd.BGPI, v)
	case 0xFF6A:
		b.lcd.OBPI = v & 0xBF
	case 0xFF6B:
		writePaletteData(&b.lcd.OBJPalette, &b.lcd.OBPI, v)
	case 0xFF70:
		b.mem.selectWRAMBank(v)
	}
}
