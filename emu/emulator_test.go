package emu

import (
	"bytes"
	"testing"

	emucore "github.com/user-none/eblitui/api"
)

// TestEmulator_Constants tests the values frontends depend on
func TestEmulator_Constants(t *testing.T) {
	e := newTestEmulator(t, ModelDMG)

	if FrameCycles != 70224 {
		t.Errorf("FrameCycles: expected 70224, got %d", FrameCycles)
	}
	if e.GetActiveHeight() != 144 {
		t.Errorf("Active height: expected 144, got %d", e.GetActiveHeight())
	}
	if e.GetFramebufferStride() != ScreenWidth*4 {
		t.Errorf("Stride: expected %d, got %d", ScreenWidth*4, e.GetFramebufferStride())
	}
	if len(e.GetFramebuffer()) != ScreenWidth*ScreenHeight*4 {
		t.Errorf("Framebuffer size: got %d", len(e.GetFramebuffer()))
	}
	timing := e.GetTiming()
	if timing.FPS != 60 || timing.Scanlines != 154 {
		t.Errorf("Timing: got %+v", timing)
	}
}

// TestEmulator_RunFrameLength tests that a frame runs one LCD frame of cycles
func TestEmulator_RunFrameLength(t *testing.T) {
	e := newTestEmulator(t, ModelDMG, loopProgram...)

	e.RunFrame()
	for i := 0; i < 3; i++ {
		start := e.cpu.Cycles
		e.RunFrame()
		spent := int(e.cpu.Cycles - start)
		if spent < FrameCycles-12 || spent > FrameCycles+12 {
			t.Errorf("Frame %d: expected about %d cycles, got %d", i, FrameCycles, spent)
		}
		if e.lcd.LY != ScreenHeight {
			t.Errorf("Frame %d should end at VBlank entry, LY=%d", i, e.lcd.LY)
		}
	}
}

// TestEmulator_AudioSampleCount tests that silence matches emulated time
func TestEmulator_AudioSampleCount(t *testing.T) {
	e := newTestEmulator(t, ModelDMG, loopProgram...)

	total := 0
	for i := 0; i < 60; i++ {
		e.RunFrame()
		samples := e.GetAudioSamples()
		if len(samples)%2 != 0 {
			t.Fatalf("Frame %d: odd sample count %d", i, len(samples))
		}
		for _, s := range samples {
			if s != 0 {
				t.Fatalf("Frame %d: expected silence", i)
			}
		}
		total += len(samples) / 2
	}

	// 59 full frames plus the shorter first one.
	expected := (59*FrameCycles + ScreenHeight*lineCycles) * sampleRate / DefaultTiming.CPUClockHz
	if total < expected-2 || total > expected+2 {
		t.Errorf("Sample pairs over 60 frames: expected about %d, got %d", expected, total)
	}
}

// TestEmulator_FaultFreezesSession tests that a fault stops execution
func TestEmulator_FaultFreezesSession(t *testing.T) {
	e := newTestEmulator(t, ModelDMG, 0x00, 0x00, 0xDD)

	e.RunFrame()
	if e.Fault() == nil {
		t.Fatal("Expected a fault")
	}
	if len(e.GetAudioSamples()) == 0 {
		t.Error("Faulted frame should still produce audio")
	}

	cycles := e.cpu.Cycles
	pc := e.cpu.PC
	e.RunFrame()
	if e.cpu.Cycles != cycles || e.cpu.PC != pc {
		t.Error("Faulted session kept running")
	}

	e.Reset()
	if e.Fault() != nil {
		t.Error("Reset should clear the fault")
	}
}

// TestEmulator_LCDOffFrame tests frame pacing with the display disabled
func TestEmulator_LCDOffFrame(t *testing.T) {
	e := newTestEmulator(t, ModelDMG,
		0x3E, 0x11, // LD A,0x11
		0xE0, 0x40, // LDH (LCDC),A
		0x18, 0xFE, // JR -2
	)
	e.bus.Write(0x8000, 0xFF)
	e.bus.Write(0x8001, 0xFF)

	e.RunFrame()
	if e.lcd.Enabled() {
		t.Fatal("Display should be off")
	}
	if e.cpu.Cycles < FrameCycles {
		t.Errorf("LCD-off frame: expected at least %d cycles, got %d", FrameCycles, e.cpu.Cycles)
	}
	if got := pixelAt(e, 0, 0); got != greyShades[0] {
		t.Errorf("LCD-off frame should be blank, got %v", got)
	}
}

// TestEmulator_SerialProgram tests a program printing through the link port
func TestEmulator_SerialProgram(t *testing.T) {
	e := newTestEmulator(t, ModelDMG,
		0x3E, 'O', 0xE0, 0x01, 0x3E, 0x81, 0xE0, 0x02,
		0x3E, 'K', 0xE0, 0x01, 0x3E, 0x81, 0xE0, 0x02,
		0x18, 0xFE,
	)
	var out bytes.Buffer
	e.SetSerialOutput(&out)

	e.RunFrame()
	if out.String() != "OK" {
		t.Errorf("Serial output: expected %q, got %q", "OK", out.String())
	}
}

// TestEmulator_SetInput tests the frontend button mapping
func TestEmulator_SetInput(t *testing.T) {
	e := newTestEmulator(t, ModelDMG)

	e.SetInput(0, 1<<emucore.ButtonUp|1<<emucore.ButtonLeft|1<<4|1<<7)
	if e.io.Input.Directions != 0x0F&^(ButtonUp|ButtonLeft) {
		t.Errorf("Directions: got 0x%X", e.io.Input.Directions)
	}
	if e.io.Input.Actions != 0x0F&^((ButtonA|ButtonStart)>>4) {
		t.Errorf("Actions: got 0x%X", e.io.Input.Actions)
	}

	e.SetInput(1, 0xFF)
	if e.io.Input.Directions != 0x0F&^(ButtonUp|ButtonLeft) {
		t.Error("Player 2 input should be ignored")
	}
}

// TestEmulator_SRAM tests battery RAM save and load
func TestEmulator_SRAM(t *testing.T) {
	e := newTestCartEmulator(t, 4, 0x03, 0x02)
	if !e.HasSRAM() {
		t.Fatal("MBC1+RAM+BATTERY should have SRAM")
	}

	e.bus.Write(0x0000, 0x0A)
	e.bus.Write(0xA000, 0x12)
	e.bus.Write(0xBFFF, 0x34)

	sram := e.GetSRAM()
	if len(sram) != 0x2000 {
		t.Fatalf("SRAM size: expected 0x2000, got 0x%X", len(sram))
	}
	if sram[0] != 0x12 || sram[0x1FFF] != 0x34 {
		t.Errorf("SRAM contents: got 0x%02X 0x%02X", sram[0], sram[0x1FFF])
	}

	other := newTestCartEmulator(t, 4, 0x03, 0x02)
	other.SetSRAM(sram)
	other.bus.Write(0x0000, 0x0A)
	if got := other.bus.Read(0xBFFF); got != 0x34 {
		t.Errorf("Loaded SRAM: expected 0x34, got 0x%02X", got)
	}

	if newTestCartEmulator(t, 4, 0x02, 0x02).HasSRAM() {
		t.Error("RAM without battery should not report SRAM")
	}
}

// TestEmulator_SRAMClock tests that timer carts save their clock
func TestEmulator_SRAMClock(t *testing.T) {
	e := newTestCartEmulator(t, 4, 0x10, 0x02)
	e.mem.rtc.Live = [rtcRegisters]uint8{1, 2, 3, 4, 0}
	e.mem.rtc.Latched = [rtcRegisters]uint8{5, 6, 7, 8, 1}

	sram := e.GetSRAM()
	if len(sram) != 0x2000+rtcSaveSize {
		t.Fatalf("SRAM size: expected 0x%X, got 0x%X", 0x2000+rtcSaveSize, len(sram))
	}

	other := newTestCartEmulator(t, 4, 0x10, 0x02)
	other.SetSRAM(sram)
	if other.mem.rtc.Live != e.mem.rtc.Live || other.mem.rtc.Latched != e.mem.rtc.Latched {
		t.Errorf("Clock not restored: live %v latched %v", other.mem.rtc.Live, other.mem.rtc.Latched)
	}
}

// TestEmulator_ReadMemory tests the flat inspection address space
func TestEmulator_ReadMemory(t *testing.T) {
	e := newTestEmulator(t, ModelCGB)
	e.bus.Write(0xC010, 0x42)
	e.bus.Write(0xFF70, 2)
	e.bus.Write(0xD000, 0x99)
	e.bus.Write(0xFF70, 7)
	e.bus.Write(0xDFFF, 0x77)
	e.bus.Write(0xFF70, 1)

	buf := make([]byte, 1)
	if n := e.ReadMemory(0xC010, buf); n != 1 || buf[0] != 0x42 {
		t.Errorf("Bus read: n=%d value=0x%02X", n, buf[0])
	}
	if e.ReadMemory(0x10000, buf); buf[0] != 0x99 {
		t.Errorf("WRAM bank 2: expected 0x99, got 0x%02X", buf[0])
	}
	if e.ReadMemory(0x10000+6*wramBankSize-1, buf); buf[0] != 0x77 {
		t.Errorf("WRAM bank 7 end: expected 0x77, got 0x%02X", buf[0])
	}

	big := make([]byte, 8)
	if n := e.ReadMemory(0x10000+6*wramBankSize-4, big); n != 4 {
		t.Errorf("Read past the end: expected 4 bytes, got %d", n)
	}

	dmg := newTestEmulator(t, ModelDMG)
	if n := dmg.ReadMemory(0xFFFE, big); n != 2 {
		t.Errorf("DMG flat space ends at 0xFFFF: got %d bytes", n)
	}
}

// TestEmulator_MemoryRegions tests the region mapper
func TestEmulator_MemoryRegions(t *testing.T) {
	e := newTestCartEmulator(t, 4, 0x03, 0x02)

	regions := e.MemoryMap()
	if len(regions) != 2 {
		t.Fatalf("Expected 2 regions, got %d", len(regions))
	}

	e.WriteRegion(emucore.MemorySystemRAM, []byte{0xDE, 0xAD})
	if got := e.bus.Read(0xC001); got != 0xAD {
		t.Errorf("WriteRegion WRAM: expected 0xAD, got 0x%02X", got)
	}
	wram := e.ReadRegion(emucore.MemorySystemRAM)
	if len(wram) != 0x2000 || wram[0] != 0xDE {
		t.Errorf("ReadRegion WRAM: len %d first 0x%02X", len(wram), wram[0])
	}

	e.WriteRegion(emucore.MemorySaveRAM, []byte{0x5A})
	if got := e.ReadRegion(emucore.MemorySaveRAM)[0]; got != 0x5A {
		t.Errorf("Save RAM region: expected 0x5A, got 0x%02X", got)
	}
	if e.ReadRegion(-1) != nil {
		t.Error("Unknown region should return nil")
	}
}

// TestEmulator_ResetKeepsBatteryRAM tests that Reset clears only volatile state
func TestEmulator_ResetKeepsBatteryRAM(t *testing.T) {
	e := newTestCartEmulator(t, 4, 0x03, 0x02)
	e.bus.Write(0x0000, 0x0A)
	e.bus.Write(0xA000, 0x66)
	e.bus.Write(0xC000, 0x66)
	e.bus.Write(0x2000, 0x03)

	e.Reset()
	e.bus.Write(0x0000, 0x0A)
	if got := e.bus.Read(0xA000); got != 0x66 {
		t.Errorf("Battery RAM: expected 0x66, got 0x%02X", got)
	}
	if got := e.bus.Read(0xC000); got != 0x00 {
		t.Errorf("WRAM should be cleared, got 0x%02X", got)
	}
	if e.mem.ROMBank() != 1 {
		t.Errorf("ROM bank should reset to 1, got %d", e.mem.ROMBank())
	}
	if e.cpu.PC != 0x0100 {
		t.Errorf("PC: expected 0x0100, got 0x%04X", e.cpu.PC)
	}
}
