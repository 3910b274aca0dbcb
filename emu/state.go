package emu

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

// Save state layout, little endian:
//
//	sizeTag u32 | nameLen u32 | name | romCRC u32 | dataCRC u32 |
//	CPU | Interrupts | LCD | Timer | IO | Memory registers |
//	ROM | WRAM | external RAM | VRAM
//
// The size tag is the length of the fixed section and changes whenever
// the layout does. The data CRC covers everything after the header.

const (
	cpuStateSize   = 8 + 2 + 2 + 8 + 1 + 1
	irqStateSize   = 4
	lcdStateSize   = 11 + 64 + 64 + 2 + 4 + 4
	timerStateSize = 4 + 4 + 4
	ioStateSize    = 3 + 2 + soundCount + 16 + 3 + 4 + 3
	memStateSize   = 2 + 6 + 2 + 3 + 0xA0 + 0x7F + 2*rtcRegisters + 4 + 1

	stateFixedSize = cpuStateSize + irqStateSize + lcdStateSize +
		timerStateSize + ioStateSize + memStateSize
)

var (
	errStateShort     = errors.New("save state too short")
	errStateSizeTag   = errors.New("save state layout does not match this version")
	errStateROM       = errors.New("save state is for a different ROM")
	errStateCorrupted = errors.New("save state data is corrupted")
	errStateBanks     = errors.New("save state bank counts do not match cartridge")
)

// SerializeSize returns an upper bound on the size of any save state:
// the largest ROM, external RAM and CGB memory with a full title.
func SerializeSize() int {
	return 8 + 16 + 8 + stateFixedSize +
		512*romBankSize + 16*extRAMBankSize + 8*wramBankSize + 2*vramBankSize
}

func (e *Emulator) stateHeaderSize() int {
	return 4 + 4 + len(e.cart.Title) + 4 + 4
}

// StateSize returns the exact size of this session's save states.
func (e *Emulator) StateSize() int {
	return e.stateHeaderSize() + stateFixedSize +
		len(e.mem.rom) + len(e.mem.wram) + len(e.mem.extRAM) + len(e.mem.vram)
}

// Serialize creates a save state and returns it as a byte slice.
func (e *Emulator) Serialize() ([]byte, error) {
	data := make([]byte, e.StateSize())

	binary.LittleEndian.PutUint32(data[0:], stateFixedSize)
	binary.LittleEndian.PutUint32(data[4:], uint32(len(e.cart.Title)))
	offset := 8 + copy(data[8:], e.cart.Title)
	binary.LittleEndian.PutUint32(data[offset:], e.mem.GetROMCRC32())
	crcOffset := offset + 4

	offset = e.stateHeaderSize()
	offset = e.serializeCPU(data, offset)
	offset = e.serializeInterrupts(data, offset)
	offset = e.serializeLCD(data, offset)
	offset = e.serializeTimer(data, offset)
	offset = e.serializeIO(data, offset)
	offset = e.serializeMemory(data, offset)

	offset += copy(data[offset:], e.mem.rom)
	offset += copy(data[offset:], e.mem.wram)
	offset += copy(data[offset:], e.mem.extRAM)
	copy(data[offset:], e.mem.vram)

	binary.LittleEndian.PutUint32(data[crcOffset:], crc32.ChecksumIEEE(data[e.stateHeaderSize():]))
	return data, nil
}

// Deserialize restores emulator state from a save state byte slice. The
// session is left untouched when the state is rejected.
func (e *Emulator) Deserialize(data []byte) error {
	if err := e.VerifyState(data); err != nil {
		return err
	}

	offset := e.stateHeaderSize()
	offset = e.deserializeCPU(data, offset)
	offset = e.deserializeInterrupts(data, offset)
	offset = e.deserializeLCD(data, offset)
	offset = e.deserializeTimer(data, offset)
	offset = e.deserializeIO(data, offset)
	offset = e.deserializeMemory(data, offset)

	offset += copy(e.mem.rom, data[offset:])
	offset += copy(e.mem.wram, data[offset:])
	offset += copy(e.mem.extRAM, data[offset:])
	copy(e.mem.vram, data[offset:])

	e.bus.fault = nil
	e.faultLogged = false
	return nil
}

// VerifyState checks if a save state is valid without loading it.
func (e *Emulator) VerifyState(data []byte) error {
	if len(data) < 8 {
		return errStateShort
	}
	if binary.LittleEndian.Uint32(data[0:]) != stateFixedSize {
		return errStateSizeTag
	}
	nameLen := int(binary.LittleEndian.Uint32(data[4:]))
	if nameLen != len(e.cart.Title) {
		return errStateROM
	}
	header := e.stateHeaderSize()
	if len(data) < header+stateFixedSize {
		return errStateShort
	}
	if binary.LittleEndian.Uint32(data[8+nameLen:]) != e.mem.GetROMCRC32() {
		return errStateROM
	}

	// Bank counts sit at a fixed place in the memory section.
	banks := header + stateFixedSize - memStateSize + 8
	if int(binary.LittleEndian.Uint16(data[banks:])) != e.mem.romBanks ||
		int(data[banks+2]) != e.mem.extRAMBanks ||
		int(data[banks+3]) != e.mem.wramBanks ||
		int(data[banks+4]) != e.mem.vramBanks {
		return errStateBanks
	}

	if len(data) < e.StateSize() {
		return errStateShort
	}
	if binary.LittleEndian.Uint32(data[12+nameLen:]) != crc32.ChecksumIEEE(data[header:e.StateSize()]) {
		return errStateCorrupted
	}
	return nil
}

func putBool(data []byte, offset int, v bool) int {
	if v {
		data[offset] = 1
	} else {
		data[offset] = 0
	}
	return offset + 1
}

// serializeCPU writes CPU state to the data buffer
func (e *Emulator) serializeCPU(data []byte, offset int) int {
	c := e.cpu
	offset += copy(data[offset:], []byte{c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L})
	binary.LittleEndian.PutUint16(data[offset:], c.SP)
	binary.LittleEndian.PutUint16(data[offset+2:], c.PC)
	binary.LittleEndian.PutUint64(data[offset+4:], c.Cycles)
	offset += 12
	data[offset] = uint8(c.imeDelay)
	offset++
	return putBool(data, offset, c.stopped)
}

// deserializeCPU reads CPU state from the data buffer
func (e *Emulator) deserializeCPU(data []byte, offset int) int {
	c := e.cpu
	c.A, c.F, c.B, c.C = data[offset], data[offset+1]&0xF0, data[offset+2], data[offset+3]
	c.D, c.E, c.H, c.L = data[offset+4], data[offset+5], data[offset+6], data[offset+7]
	offset += 8
	c.SP = binary.LittleEndian.Uint16(data[offset:])
	c.PC = binary.LittleEndian.Uint16(data[offset+2:])
	c.Cycles = binary.LittleEndian.Uint64(data[offset+4:])
	offset += 12
	c.imeDelay = int(data[offset])
	c.stopped = data[offset+1] != 0
	c.fault = nil
	return offset + 2
}

func (e *Emulator) serializeInterrupts(data []byte, offset int) int {
	data[offset] = e.irq.Enable
	data[offset+1] = e.irq.Request
	offset = putBool(data, offset+2, e.irq.IME)
	return putBool(data, offset, e.irq.Halted)
}

func (e *Emulator) deserializeInterrupts(data []byte, offset int) int {
	e.irq.Enable = data[offset]
	e.irq.Request = data[offset+1] & intMask
	e.irq.IME = data[offset+2] != 0
	e.irq.Halted = data[offset+3] != 0
	return offset + irqStateSize
}

// serializeLCD writes display controller state to the data buffer
func (e *Emulator) serializeLCD(data []byte, offset int) int {
	l := e.lcd
	offset += copy(data[offset:], []byte{
		l.LCDC, l.STAT, l.SCY, l.SCX, l.LY, l.LYC, l.BGP, l.OBP0, l.OBP1, l.WY, l.WX,
	})
	offset += copy(data[offset:], l.BGPalette[:])
	offset += copy(data[offset:], l.OBJPalette[:])
	data[offset] = l.BGPI
	data[offset+1] = l.OBPI
	offset += 2
	binary.LittleEndian.PutUint32(data[offset:], uint32(int32(l.clocks)))
	offset += 4
	offset = putBool(data, offset, l.lineReady)
	data[offset] = l.readyLine
	offset++
	offset = putBool(data, offset, l.frameReady)
	return putBool(data, offset, l.hblankEntry)
}

// deserializeLCD reads display controller state from the data buffer
func (e *Emulator) deserializeLCD(data []byte, offset int) int {
	l := e.lcd
	regs := data[offset : offset+11]
	l.LCDC, l.STAT, l.SCY, l.SCX = regs[0], regs[1], regs[2], regs[3]
	l.LY, l.LYC, l.BGP, l.OBP0 = regs[4], regs[5], regs[6], regs[7]
	l.OBP1, l.WY, l.WX = regs[8], regs[9], regs[10]
	offset += 11
	offset += copy(l.BGPalette[:], data[offset:])
	offset += copy(l.OBJPalette[:], data[offset:])
	l.BGPI = data[offset]
	l.OBPI = data[offset+1]
	offset += 2
	l.clocks = int(int32(binary.LittleEndian.Uint32(data[offset:])))
	offset += 4
	l.lineReady = data[offset] != 0
	l.readyLine = data[offset+1]
	l.frameReady = data[offset+2] != 0
	l.hblankEntry = data[offset+3] != 0
	return offset + 4
}

func (e *Emulator) serializeTimer(data []byte, offset int) int {
	t := e.timer
	offset += copy(data[offset:], []byte{t.DIV, t.TIMA, t.TMA, t.TAC})
	binary.LittleEndian.PutUint32(data[offset:], uint32(t.divClocks))
	binary.LittleEndian.PutUint32(data[offset+4:], uint32(t.timaClocks))
	return offset + 8
}

func (e *Emulator) deserializeTimer(data []byte, offset int) int {
	t := e.timer
	t.DIV, t.TIMA, t.TMA, t.TAC = data[offset], data[offset+1], data[offset+2], data[offset+3]
	offset += 4
	t.divClocks = int(binary.LittleEndian.Uint32(data[offset:]))
	t.timaClocks = int(binary.LittleEndian.Uint32(data[offset+4:]))
	return offset + 8
}

// serializeIO writes joypad, serial, sound and CGB register state
func (e *Emulator) serializeIO(data []byte, offset int) int {
	o := e.io
	offset += copy(data[offset:], []byte{
		o.Input.Select, o.Input.Directions, o.Input.Actions, o.SB, o.SC,
	})
	offset += copy(data[offset:], o.sound[:])
	offset += copy(data[offset:], o.wave[:])
	offset += copy(data[offset:], []byte{o.KEY1, o.RP, o.DMA})
	binary.LittleEndian.PutUint16(data[offset:], o.hdmaSrc)
	binary.LittleEndian.PutUint16(data[offset+2:], o.hdmaDst)
	offset += 4
	data[offset] = o.hdmaLen
	offset = putBool(data, offset+1, o.hdmaActive)
	return putBool(data, offset, o.doubleSpeed)
}

func (e *Emulator) deserializeIO(data []byte, offset int) int {
	o := e.io
	o.Input.Select = data[offset] & 0x30
	o.Input.Directions = data[offset+1] & 0x0F
	o.Input.Actions = data[offset+2] & 0x0F
	o.SB = data[offset+3]
	o.SC = data[offset+4]
	offset += 5
	offset += copy(o.sound[:], data[offset:])
	offset += copy(o.wave[:], data[offset:])
	o.KEY1, o.RP, o.DMA = data[offset], data[offset+1], data[offset+2]
	offset += 3
	o.hdmaSrc = binary.LittleEndian.Uint16(data[offset:])
	o.hdmaDst = binary.LittleEndian.Uint16(data[offset+2:])
	offset += 4
	o.hdmaLen = data[offset]
	o.hdmaActive = data[offset+1] != 0
	o.doubleSpeed = data[offset+2] != 0
	return offset + 3
}

// serializeMemory writes bank selects, bank counts, OAM, HRAM and the clock
func (e *Emulator) serializeMemory(data []byte, offset int) int {
	m := e.mem
	binary.LittleEndian.PutUint16(data[offset:], uint16(m.romSelect))
	offset += 2
	data[offset] = m.ramSelect
	offset = putBool(data, offset+1, m.ramEnabled)
	offset = putBool(data, offset, m.bankMode)
	data[offset] = uint8(m.wramBank)
	data[offset+1] = uint8(m.vramBank)
	offset = putBool(data, offset+2, m.bootActive)

	binary.LittleEndian.PutUint16(data[offset:], uint16(m.romBanks))
	data[offset+2] = uint8(m.extRAMBanks)
	data[offset+3] = uint8(m.wramBanks)
	data[offset+4] = uint8(m.vramBanks)
	offset += 5

	offset += copy(data[offset:], m.oam[:])
	offset += copy(data[offset:], m.hram[:])
	offset += copy(data[offset:], m.rtc.Live[:])
	offset += copy(data[offset:], m.rtc.Latched[:])
	binary.LittleEndian.PutUint32(data[offset:], uint32(m.rtc.clocks))
	data[offset+4] = m.rtc.latchArm
	return offset + 5
}

// deserializeMemory reads bank selects, OAM, HRAM and the clock. Bank
// counts were already checked by VerifyState.
func (e *Emulator) deserializeMemory(data []byte, offset int) int {
	m := e.mem
	m.romSelect = int(binary.LittleEndian.Uint16(data[offset:]))
	offset += 2
	m.ramSelect = data[offset]
	m.ramEnabled = data[offset+1] != 0
	m.bankMode = data[offset+2] != 0
	m.wramBank = int(data[offset+3])
	m.vramBank = int(data[offset+4])
	m.bootActive = data[offset+5] != 0 && len(m.boot) > 0
	offset += 6 + 5
	m.mapROM()

	offset += copy(m.oam[:], data[offset:])
	offset += copy(m.hram[:], data[offset:])
	offset += copy(m.rtc.Live[:], data[offset:])
	offset += copy(m.rtc.Latched[:], data[offset:])
	m.rtc.clocks = int(binary.LittleEndian.Uint32(data[offset:]))
	m.rtc.latchArm = data[offset+4]
	return offset + 5
}
