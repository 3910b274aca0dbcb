package emu

import "io"

// Button bits as passed to SetButtons. The low nibble matches the
// direction half of JOYP, the high nibble the action half.
const (
	ButtonRight = 1 << iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// Input holds joypad state as JOYP reads it (active low).
type Input struct {
	Directions uint8 // Bits 0-3: Right, Left, Up, Down
	Actions    uint8 // Bits 0-3: A, B, Select, Start
	Select     uint8 // Bits 4-5 of the last JOYP write
}

func newInput() *Input {
	return &Input{Directions: 0x0F, Actions: 0x0F, Select: 0x30}
}

// Set stores the pressed buttons and reports whether any button went from
// released to pressed.
func (i *Input) Set(buttons uint8) bool {
	dirs := ^buttons & 0x0F
	acts := ^(buttons >> 4) & 0x0F
	pressed := (i.Directions&^dirs)|(i.Actions&^acts) != 0
	i.Directions = dirs
	i.Actions = acts
	return pressed
}

// Read multiplexes the two button groups. A low bit 4 selects directions,
// a low bit 5 selects actions; with both low the groups are ANDed.
func (i *Input) Read() uint8 {
	v := 0xC0 | i.Select | 0x0F
	if i.Select&0x10 == 0 {
		v &= 0xF0 | i.Directions
	}
	if i.Select&0x20 == 0 {
		v &= 0xF0 | i.Actions
	}
	return v
}

// Sound register block: NR10 (0xFF10) through NR52 (0xFF26).
const (
	soundBase  = 0xFF10
	soundEnd   = 0xFF26
	waveBase   = 0xFF30
	waveEnd    = 0xFF3F
	soundCount = soundEnd - soundBase + 1
)

// SoundRegisters is a read-only view of the sound hardware registers as
// last written, grouped per channel.
type SoundRegisters struct {
	Channel1 [5]uint8 // NR10-NR14
	Channel2 [4]uint8 // NR21-NR24
	Channel3 [5]uint8 // NR30-NR34
	Channel4 [4]uint8 // NR41-NR44
	Control  [3]uint8 // NR50-NR52
	Wave     [16]uint8
}

// IO holds the I/O registers that are not owned by the LCD, timer or
// interrupt controller.
type IO struct {
	irq   *Interrupts
	Input *Input

	SB uint8
	SC uint8

	sound [soundCount]uint8
	wave  [16]uint8

	KEY1 uint8
	RP   uint8
	DMA  uint8

	hdmaSrc    uint16
	hdmaDst    uint16
	hdmaLen    uint8 // Remaining 16-byte blocks minus one
	hdmaActive bool  // HBlank transfer in progress

	doubleSpeed bool
	serialOut   io.Writer
}

func newIO(irq *Interrupts) *IO {
	o := &IO{irq: irq, Input: newInput()}
	o.Reset()
	return o
}

// Reset sets the power-on register values.
func (o *IO) Reset() {
	o.Input = newInput()
	o.SB, o.SC = 0, 0
	o.RP = 0
	o.KEY1 = 0
	o.hdmaActive = false
	o.hdmaLen = 0xFF
	o.doubleSpeed = false

	for i := range o.sound {
		o.sound[i] = 0
	}
	for addr, v := range soundPowerOn {
		o.sound[addr-soundBase] = v
	}
	clear(o.wave[:])
}

var soundPowerOn = map[uint16]uint8{
	0xFF10: 0x80, 0xFF11: 0xBF, 0xFF12: 0xF3, 0xFF14: 0xBF,
	0xFF16: 0x3F, 0xFF19: 0xBF,
	0xFF1A: 0x7F, 0xFF1B: 0xFF, 0xFF1C: 0x9F, 0xFF1E: 0xBF,
	0xFF20: 0xFF, 0xFF23: 0xBF,
	0xFF24: 0x77, 0xFF25: 0xF3, 0xFF26: 0xF1,
}

func (o *IO) readSound(addr uint16) uint8 {
	if addr >= waveBase {
		return o.wave[addr-waveBase]
	}
	return o.sound[addr-soundBase]
}

func (o *IO) writeSound(addr uint16, v uint8) {
	if addr >= waveBase {
		o.wave[addr-waveBase] = v
		return
	}
	o.sound[addr-soundBase] = v
}

// Sound returns the sound registers grouped per channel.
func (o *IO) Sound() SoundRegisters {
	var s SoundRegisters
	copy(s.Channel1[:], o.sound[0x00:0x05])
	copy(s.Channel2[:], o.sound[0x06:0x0A])
	copy(s.Channel3[:], o.sound[0x0A:0x0F])
	copy(s.Channel4[:], o.sound[0x10:0x14])
	copy(s.Control[:], o.sound[0x14:0x17])
	s.Wave = o.wave
	return s
}

// writeSC starts a serial transfer. With no link partner an internally
// clocked transfer finishes at once and shifts in 0xFF.
func (o *IO) writeSC(v uint8) {
	o.SC = v
	if v&0x81 != 0x81 {
		return
	}
	if o.serialOut != nil {
		o.serialOut.Write([]byte{o.SB})
	}
	o.SB = 0xFF
	o.SC &^= 0x80
	o.irq.Raise(IntSerial)
}

// readKEY1 reports the current speed in bit 7 and the armed switch in bit 0.
func (o *IO) readKEY1() uint8 {
	v := 0x7E | o.KEY1&0x01
	if o.doubleSpeed {
		v |= 0x80
	}
	return v
}

// speedSwitch performs an armed CGB speed change. It returns false when
// no switch was armed.
func (o *IO) speedSwitch() bool {
	if o.KEY1&0x01 == 0 {
		return false
	}
	o.KEY1 &^= 0x01
	o.doubleSpeed = !o.doubleSpeed
	return true
}
