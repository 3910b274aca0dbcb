package emu

import (
	"fmt"
	"image"
	"io"
	"log"

	emucore "github.com/user-none/eblitui/api"
)

// Compile-time interface checks.
var _ emucore.Emulator = (*Emulator)(nil)
var _ emucore.SaveStater = (*Emulator)(nil)
var _ emucore.BatterySaver = (*Emulator)(nil)
var _ emucore.MemoryInspector = (*Emulator)(nil)
var _ emucore.MemoryMapper = (*Emulator)(nil)

const sampleRate = 48000

// Emulator is one emulation session. It owns every hardware component;
// nothing is shared between sessions.
type Emulator struct {
	cart     *Cartridge
	model    Model
	irq      *Interrupts
	mem      *Memory
	io       *IO
	lcd      *LCD
	timer    *Timer
	bus      *Bus
	cpu      *CPU
	renderer *Renderer

	region      Region
	faultLogged bool

	// Silence is produced at the rate emulated time passes so that
	// audio-paced frontends keep their clock.
	audioRemainder int
	audioBuffer    []int16
}

// NewEmulator parses the cartridge header, allocates memory banks and
// resets every component to its power-on state. ModelAuto picks CGB for
// CGB-flagged cartridges.
func NewEmulator(rom []byte, model Model) (Emulator, error) {
	cart, err := ParseCartridge(rom)
	if err != nil {
		return Emulator{}, fmt.Errorf("load cartridge: %w", err)
	}
	if model == ModelAuto {
		model = DetectModelFromROM(rom)
	}
	cgb := model == ModelCGB

	irq := &Interrupts{}
	mem := NewMemory(rom, cart, cgb)
	regs := newIO(irq)
	lcd := NewLCD(irq)
	timer := NewTimer(irq)
	bus := NewBus(mem, regs, irq, lcd, timer, cgb)
	cpu := NewCPU(bus, irq)

	e := Emulator{
		cart:        cart,
		model:       model,
		irq:         irq,
		mem:         mem,
		io:          regs,
		lcd:         lcd,
		timer:       timer,
		bus:         bus,
		cpu:         cpu,
		renderer:    NewRenderer(mem, lcd, cgb),
		region:      RegionNTSC,
		audioBuffer: make([]int16, 0, 2048),
	}
	e.Reset()
	return e, nil
}

// Reset returns every component to its power-on state. Battery RAM and
// the cartridge clock survive.
func (e *Emulator) Reset() {
	cgb := e.model == ModelCGB
	e.mem.Reset()
	e.io.Reset()
	e.lcd.Reset()
	*e.timer = Timer{irq: e.irq}
	e.cpu.Reset(cgb)
	e.bus.fault = nil
	e.faultLogged = false
	e.audioRemainder = 0
	if e.mem.bootActive {
		e.cpu.Registers = Registers{}
	}
	e.renderer.Clear()
}

// SetBootROM maps a boot image over the start of ROM and restarts at
// 0x0000. A 256-byte image is a DMG boot ROM; a 2304-byte image is a CGB
// boot ROM. Writing a non-zero value to 0xFF50 unmaps it.
func (e *Emulator) SetBootROM(data []byte) error {
	if len(data) != 0x100 && len(data) != 0x900 {
		return fmt.Errorf("boot rom: unexpected size %d", len(data))
	}
	e.mem.boot = append([]uint8(nil), data...)
	e.Reset()
	return nil
}

// SetSerialOutput sends every byte shifted out of the serial port to w.
func (e *Emulator) SetSerialOutput(w io.Writer) {
	e.io.serialOut = w
}

// Step executes one instruction or interrupt dispatch and advances the
// display, timer and clock by its cost. Finished scanlines are drawn.
func (e *Emulator) Step() (int, error) {
	cycles, err := e.cpu.Step()
	if err != nil {
		return cycles, err
	}

	displayCycles := cycles
	if e.io.doubleSpeed {
		displayCycles = cycles / 2
	}
	e.lcd.Advance(displayCycles)
	e.timer.Advance(cycles)
	if e.cart.Features.RTC {
		e.mem.rtc.Advance(displayCycles)
	}
	if e.lcd.takeHBlank() {
		e.bus.hdmaStep()
	}
	if line, ok := e.lcd.TakeScanline(); ok {
		e.renderer.RenderLine(line)
	}
	return cycles, nil
}

// RunFrame runs until the display signals a finished frame, or for one
// frame's worth of cycles when the display is off. A fatal fault is logged
// once and freezes the session; see Fault.
func (e *Emulator) RunFrame() {
	e.audioBuffer = e.audioBuffer[:0]

	spent := 0
	for spent < FrameCycles {
		cycles, err := e.Step()
		if err != nil {
			if !e.faultLogged {
				log.Printf("emu: %v", err)
				e.faultLogged = true
			}
			spent = FrameCycles
			break
		}
		if e.io.doubleSpeed {
			cycles /= 2
		}
		spent += cycles
		if e.lcd.TakeFrame() {
			break
		}
	}

	if !e.lcd.Enabled() {
		e.renderer.Clear()
	}
	e.emitSilence(spent)
}

// emitSilence appends stereo zero samples for the emulated time.
func (e *Emulator) emitSilence(cycles int) {
	e.audioRemainder += cycles * sampleRate
	n := e.audioRemainder / DefaultTiming.CPUClockHz
	e.audioRemainder %= DefaultTiming.CPUClockHz
	for i := 0; i < n; i++ {
		e.audioBuffer = append(e.audioBuffer, 0, 0)
	}
}

// Fault returns the fatal error that stopped the session, if any.
func (e *Emulator) Fault() error {
	return e.cpu.Fault()
}

// Bus returns the address decoder for memory inspection and tests.
func (e *Emulator) Bus() *Bus { return e.bus }

// Registers returns a copy of the CPU register file.
func (e *Emulator) Registers() Registers { return e.cpu.Registers }

// CPU returns the execution engine.
func (e *Emulator) CPU() *CPU { return e.cpu }

// LCD returns the display controller.
func (e *Emulator) LCD() *LCD { return e.lcd }

// Interrupts returns the interrupt controller.
func (e *Emulator) Interrupts() *Interrupts { return e.irq }

// Memory returns the banked storage.
func (e *Emulator) Memory() *Memory { return e.mem }

// Cartridge returns the parsed header.
func (e *Emulator) Cartridge() *Cartridge { return e.cart }

// Model returns the emulated hardware generation.
func (e *Emulator) Model() Model { return e.model }

// SoundRegisters returns the sound registers for an external synthesizer.
func (e *Emulator) SoundRegisters() SoundRegisters {
	return e.io.Sound()
}

// SetButtons sets the pressed buttons (Button* bits). A newly pressed
// button requests the joypad interrupt.
func (e *Emulator) SetButtons(buttons uint8) {
	if e.io.Input.Set(buttons) {
		e.irq.Raise(IntJoypad)
	}
}

// SetInput unpacks a frontend button bitmask. Only player 0 exists.
func (e *Emulator) SetInput(player int, buttons uint32) {
	if player != 0 {
		return
	}
	var b uint8
	if buttons&(1<<emucore.ButtonUp) != 0 {
		b |= ButtonUp
	}
	if buttons&(1<<emucore.ButtonDown) != 0 {
		b |= ButtonDown
	}
	if buttons&(1<<emucore.ButtonLeft) != 0 {
		b |= ButtonLeft
	}
	if buttons&(1<<emucore.ButtonRight) != 0 {
		b |= ButtonRight
	}
	if buttons&(1<<4) != 0 {
		b |= ButtonA
	}
	if buttons&(1<<5) != 0 {
		b |= ButtonB
	}
	if buttons&(1<<6) != 0 {
		b |= ButtonSelect
	}
	if buttons&(1<<7) != 0 {
		b |= ButtonStart
	}
	e.SetButtons(b)
}

// GetFramebuffer returns raw RGBA pixel data for the current frame.
func (e *Emulator) GetFramebuffer() []byte {
	return e.renderer.framebuffer.Pix
}

// Framebuffer returns the current frame as an image.
func (e *Emulator) Framebuffer() *image.RGBA {
	return e.renderer.Framebuffer()
}

// GetFramebufferStride returns the stride (bytes per row) of the framebuffer.
func (e *Emulator) GetFramebufferStride() int {
	return e.renderer.framebuffer.Stride
}

// GetActiveHeight returns the display height, which never changes.
func (e *Emulator) GetActiveHeight() int {
	return ScreenHeight
}

// GetRegion returns the region reported to the frontend.
func (e *Emulator) GetRegion() Region {
	return e.region
}

// SetRegion records the frontend's region. Video timing is unaffected.
func (e *Emulator) SetRegion(region Region) {
	e.region = region
}

// GetTiming returns FPS and scanline count.
func (e *Emulator) GetTiming() emucore.Timing {
	return emucore.Timing{
		FPS:       DefaultTiming.FPS,
		Scanlines: DefaultTiming.Scanlines,
	}
}

// SetOption applies a core option change identified by key.
func (e *Emulator) SetOption(key string, value string) {
	switch key {
	case "green_palette":
		e.renderer.SetGreenPalette(value == "true")
	}
}

// Close releases any resources held by the emulator.
func (e *Emulator) Close() {}

// GetAudioSamples returns the frame's audio as 16-bit stereo PCM.
func (e *Emulator) GetAudioSamples() []int16 {
	return e.audioBuffer
}

// =============================================================================
// Battery RAM
// =============================================================================

// rtcSaveSize is the clock block appended to battery RAM on timer carts.
const rtcSaveSize = 2 * rtcRegisters

// HasSRAM reports whether the cartridge keeps RAM or a clock on battery.
func (e *Emulator) HasSRAM() bool {
	return e.cart.Features.Battery && (len(e.mem.extRAM) > 0 || e.cart.Features.RTC)
}

// GetSRAM returns a copy of battery RAM followed by the clock registers
// on timer carts.
func (e *Emulator) GetSRAM() []byte {
	sram := make([]byte, len(e.mem.extRAM), len(e.mem.extRAM)+rtcSaveSize)
	copy(sram, e.mem.extRAM)
	if e.cart.Features.RTC {
		sram = append(sram, e.mem.rtc.Live[:]...)
		sram = append(sram, e.mem.rtc.Latched[:]...)
	}
	return sram
}

// SetSRAM loads battery RAM contents.
func (e *Emulator) SetSRAM(data []byte) {
	n := copy(e.mem.extRAM, data)
	if e.cart.Features.RTC && len(data) >= n+rtcSaveSize {
		copy(e.mem.rtc.Live[:], data[n:])
		copy(e.mem.rtc.Latched[:], data[n+rtcRegisters:])
	}
}

// =============================================================================
// MemoryInspector interface
// =============================================================================

// Flat address layout for ReadMemory: the CPU address space first, then
// CGB WRAM banks 2-7.
const (
	flatBusEnd        = 0xFFFF
	flatExtraWRAM     = 0x10000
	flatExtraWRAMBank = 2
)

// ReadMemory reads from a flat address into buf and returns the number
// of bytes read. Reads through the bus have no side effects.
func (e *Emulator) ReadMemory(addr uint32, buf []byte) uint32 {
	var count uint32
	for i := range buf {
		cur := addr + uint32(i)
		switch {
		case cur <= flatBusEnd:
			buf[i] = e.bus.Read(uint16(cur))
		case int(cur-flatExtraWRAM) < len(e.mem.wram)-flatExtraWRAMBank*wramBankSize:
			buf[i] = e.mem.wram[flatExtraWRAMBank*wramBankSize+int(cur-flatExtraWRAM)]
		default:
			return count
		}
		count++
	}
	return count
}

// =============================================================================
// MemoryMapper interface
// =============================================================================

// MemoryMap returns a list of available memory regions with sizes.
func (e *Emulator) MemoryMap() []emucore.MemoryRegion {
	regions := []emucore.MemoryRegion{
		{Type: emucore.MemorySystemRAM, Size: len(e.mem.wram)},
	}
	if len(e.mem.extRAM) > 0 {
		regions = append(regions, emucore.MemoryRegion{Type: emucore.MemorySaveRAM, Size: len(e.mem.extRAM)})
	}
	return regions
}

// ReadRegion returns a copy of the specified memory region.
func (e *Emulator) ReadRegion(regionType int) []byte {
	switch regionType {
	case emucore.MemorySystemRAM:
		out := make([]byte, len(e.mem.wram))
		copy(out, e.mem.wram)
		return out
	case emucore.MemorySaveRAM:
		out := make([]byte, len(e.mem.extRAM))
		copy(out, e.mem.extRAM)
		return out
	default:
		return nil
	}
}

// WriteRegion writes data to the specified memory region.
func (e *Emulator) WriteRegion(regionType int, data []byte) {
	switch regionType {
	case emucore.MemorySystemRAM:
		copy(e.mem.wram, data)
	case emucore.MemorySaveRAM:
		copy(e.mem.extRAM, data)
	}
}
