package emu

import (
	"errors"
	"testing"
)

// TestMemory_ROMBankSwitch tests that the switchable window follows the
// bank select register
func TestMemory_ROMBankSwitch(t *testing.T) {
	e := newTestCartEmulator(t, 8, 0x01, 0x00)

	if got := e.bus.Read(0x4000); got != 0x01 {
		t.Errorf("Initial bank: expected 0x01, got 0x%02X", got)
	}

	for bank := uint8(1); bank < 8; bank++ {
		e.bus.Write(0x2000, bank)
		if got := e.bus.Read(0x4000); got != bank {
			t.Errorf("Bank %d: expected 0x%02X at 0x4000, got 0x%02X", bank, bank, got)
		}
		if got := e.bus.Read(0x7FFF); got != bank {
			t.Errorf("Bank %d: expected 0x%02X at 0x7FFF, got 0x%02X", bank, bank, got)
		}
		if got := e.bus.Read(0x0000); got != 0x00 {
			t.Errorf("Bank 0 window changed with select %d: got 0x%02X", bank, got)
		}
	}

	if e.Fault() != nil {
		t.Errorf("Unexpected fault: %v", e.Fault())
	}
}

// TestMemory_ROMBankZeroAndWrap tests the 0 -> 1 rule and modulo wrap
func TestMemory_ROMBankZeroAndWrap(t *testing.T) {
	e := newTestCartEmulator(t, 4, 0x01, 0x00)

	testCases := []struct {
		select_  uint8
		expected uint8
	}{
		{0, 1},
		{2, 2},
		{4, 0}, // 4 % 4, the zero rule only sees the register
		{6, 2},
		{7, 3},
		{0x21, 1}, // upper bits masked off
	}
	for _, tc := range testCases {
		e.bus.Write(0x2000, tc.select_)
		if got := e.bus.Read(0x4000); got != tc.expected {
			t.Errorf("Select %d: expected bank %d, got %d", tc.select_, tc.expected, got)
		}
		if e.mem.ROMBank() != int(tc.expected) {
			t.Errorf("Select %d: ROMBank() = %d", tc.select_, e.mem.ROMBank())
		}
	}
}

// TestMemory_MBC1UpperBits tests the shared 2-bit register and the mode bit
func TestMemory_MBC1UpperBits(t *testing.T) {
	e := newTestCartEmulator(t, 128, 0x01, 0x00)

	e.bus.Write(0x2000, 0x03)
	e.bus.Write(0x4000, 0x02)
	if got := e.bus.Read(0x4000); got != 0x43 {
		t.Errorf("Upper bits: expected bank 0x43, got 0x%02X", got)
	}
	if got := e.bus.Read(0x0000); got != 0x00 {
		t.Errorf("Mode 0 bank 0 window: expected 0x00, got 0x%02X", got)
	}

	e.bus.Write(0x6000, 0x01)
	if got := e.bus.Read(0x0000); got != 0x40 {
		t.Errorf("Mode 1 bank 0 window: expected 0x40, got 0x%02X", got)
	}

	e.bus.Write(0x2000, 0x00)
	if got := e.bus.Read(0x4000); got != 0x41 {
		t.Errorf("Zero select with upper bits: expected bank 0x41, got 0x%02X", got)
	}
	if e.Fault() != nil {
		t.Errorf("Unexpected fault: %v", e.Fault())
	}
}

// TestMemory_MBC5ROMSelect tests the split 9-bit register and bank 0
func TestMemory_MBC5ROMSelect(t *testing.T) {
	e := newTestCartEmulator(t, 8, 0x19, 0x00)

	e.bus.Write(0x2000, 0x05)
	e.bus.Write(0x3000, 0x00)
	if got := e.bus.Read(0x4000); got != 0x05 {
		t.Errorf("Bank 5: expected 0x05, got 0x%02X", got)
	}

	e.bus.Write(0x2000, 0x00)
	if got := e.bus.Read(0x4000); got != 0x00 {
		t.Errorf("Bank 0 is selectable: expected 0x00, got 0x%02X", got)
	}
	if e.mem.ROMBank() != 0 {
		t.Errorf("ROMBank(): expected 0, got %d", e.mem.ROMBank())
	}

	rom := createTestROM(512, 0x19, 0x00)
	rom[0x105*0x4000+1] = 0xA5
	big, err := NewEmulator(rom, ModelDMG)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	big.bus.Write(0x2000, 0x05)
	big.bus.Write(0x3000, 0x01)
	if big.mem.ROMBank() != 0x105 {
		t.Errorf("High bit: expected bank 0x105, got 0x%X", big.mem.ROMBank())
	}
	if got := big.bus.Read(0x4001); got != 0xA5 {
		t.Errorf("High bit read: expected 0xA5, got 0x%02X", got)
	}
	big.bus.Write(0x3000, 0x00)
	if got := big.bus.Read(0x4001); got != 0x05 {
		t.Errorf("High bit cleared: expected 0x05, got 0x%02X", got)
	}
}

// TestMemory_MBC5RAMBanks tests the 4-bit RAM select and the rumble motor bit
func TestMemory_MBC5RAMBanks(t *testing.T) {
	e := newTestCartEmulator(t, 8, 0x1B, 0x04)
	e.bus.Write(0x0000, 0x0A)

	for _, bank := range []uint8{0x00, 0x07, 0x0F} {
		e.bus.Write(0x4000, bank)
		e.bus.Write(0xA000, 0x30+bank)
	}
	for _, bank := range []uint8{0x00, 0x07, 0x0F} {
		e.bus.Write(0x4000, bank)
		if got := e.bus.Read(0xA000); got != 0x30+bank {
			t.Errorf("RAM bank %d: expected 0x%02X, got 0x%02X", bank, 0x30+bank, got)
		}
	}
	if e.Fault() != nil {
		t.Errorf("Unexpected fault: %v", e.Fault())
	}

	r := newTestCartEmulator(t, 8, 0x1E, 0x03)
	r.bus.Write(0x4000, 0x0B)
	if !r.mem.Rumble() {
		t.Errorf("Rumble: expected motor on after select 0x0B")
	}
	r.bus.Write(0x4000, 0x03)
	if r.mem.Rumble() {
		t.Errorf("Rumble: expected motor off after select 0x03")
	}
	if r.Fault() != nil {
		t.Errorf("Rumble select should not fault: %v", r.Fault())
	}
}

// TestMemory_NoMBCIgnoresControlWrites tests ROM-only carts
func TestMemory_NoMBCIgnoresControlWrites(t *testing.T) {
	e := newTestCartEmulator(t, 2, 0x00, 0x00)

	for _, addr := range []uint16{0x0000, 0x2000, 0x4000, 0x6000, 0x7FFF} {
		e.bus.Write(addr, 0x05)
	}
	if got := e.bus.Read(0x4000); got != 0x01 {
		t.Errorf("ROM-only bank 1: expected 0x01, got 0x%02X", got)
	}
	if got := e.bus.Read(0x2000); got != 0x00 {
		t.Errorf("ROM should be unchanged by writes, got 0x%02X", got)
	}
	if e.bus.Fault() != nil {
		t.Errorf("ROM-only writes should not fault: %v", e.bus.Fault())
	}
}

// TestMemory_ExtRAMEnableAndBanks tests RAM enable gating and bank selection
func TestMemory_ExtRAMEnableAndBanks(t *testing.T) {
	e := newTestCartEmulator(t, 4, 0x03, 0x03)

	if got := e.bus.Read(0xA000); got != 0xFF {
		t.Errorf("Disabled RAM read: expected 0xFF, got 0x%02X", got)
	}
	e.bus.Write(0xA000, 0x11)

	e.bus.Write(0x0000, 0x0A)
	if got := e.bus.Read(0xA000); got != 0x00 {
		t.Errorf("Write while disabled should be dropped, got 0x%02X", got)
	}

	// RAM banking needs mode 1.
	e.bus.Write(0x6000, 0x01)
	for bank := uint8(0); bank < 4; bank++ {
		e.bus.Write(0x4000, bank)
		e.bus.Write(0xA000, 0x40+bank)
		e.bus.Write(0xBFFF, 0x80+bank)
	}
	for bank := uint8(0); bank < 4; bank++ {
		e.bus.Write(0x4000, bank)
		if got := e.bus.Read(0xA000); got != 0x40+bank {
			t.Errorf("RAM bank %d start: expected 0x%02X, got 0x%02X", bank, 0x40+bank, got)
		}
		if got := e.bus.Read(0xBFFF); got != 0x80+bank {
			t.Errorf("RAM bank %d end: expected 0x%02X, got 0x%02X", bank, 0x80+bank, got)
		}
	}

	e.bus.Write(0x0000, 0x00)
	if got := e.bus.Read(0xA000); got != 0xFF {
		t.Errorf("RAM read after disable: expected 0xFF, got 0x%02X", got)
	}
}

// TestMemory_RAMSelectFault tests that an impossible RAM select is fatal
func TestMemory_RAMSelectFault(t *testing.T) {
	testCases := []struct {
		name     string
		cartType uint8
		ramSize  uint8
		value    uint8
		fault    bool
	}{
		{"MBC1 masks to two bits", 0x03, 0x03, 0x07, false},
		{"MBC3 bank 3", 0x13, 0x03, 0x03, false},
		{"MBC3 bank 4", 0x13, 0x03, 0x04, true},
		{"MBC3 clock select without timer", 0x13, 0x03, 0x08, true},
		{"MBC3 timer clock select", 0x10, 0x03, 0x0C, false},
		{"MBC3 timer past clock", 0x10, 0x03, 0x0D, true},
		{"MBC3 no RAM bank 0", 0x11, 0x00, 0x00, false},
		{"MBC5 bank 4 of 4", 0x1B, 0x03, 0x04, true},
		{"MBC5 bank 15 of 16", 0x1B, 0x04, 0x0F, false},
		{"MBC5 rumble bit", 0x1E, 0x03, 0x0B, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestCartEmulator(t, 4, tc.cartType, tc.ramSize)
			e.bus.Write(0x4000, tc.value)

			var fault *BusFault
			got := errors.As(e.bus.Fault(), &fault)
			if got != tc.fault {
				t.Fatalf("fault: expected %t, got %v", tc.fault, e.bus.Fault())
			}
			if !tc.fault {
				return
			}
			if fault.Addr != 0x4000 || fault.Value != tc.value {
				t.Errorf("fault: expected addr 0x4000 value 0x%02X, got 0x%04X 0x%02X", tc.value, fault.Addr, fault.Value)
			}

			// The CPU reports it after the current instruction.
			_, err := e.Step()
			if !errors.Is(err, ErrBusFault) {
				t.Errorf("Step: expected bus fault, got %v", err)
			}
		})
	}
}

// TestMemory_RTCLatch tests that clock reads see the latched copy
func TestMemory_RTCLatch(t *testing.T) {
	e := newTestCartEmulator(t, 4, 0x10, 0x03)
	e.bus.Write(0x0000, 0x0A)
	e.bus.Write(0x4000, 0x08) // seconds

	e.mem.rtc.Live[rtcSeconds] = 42
	if got := e.bus.Read(0xA000); got != 0 {
		t.Errorf("Before latch: expected 0, got %d", got)
	}

	e.bus.Write(0x6000, 0x00)
	e.bus.Write(0x6000, 0x01)
	if got := e.bus.Read(0xA000); got != 42 {
		t.Errorf("After latch: expected 42, got %d", got)
	}

	e.mem.rtc.Live[rtcSeconds] = 50
	e.bus.Write(0x6000, 0x01)
	if got := e.bus.Read(0xA000); got != 42 {
		t.Errorf("Repeated 0x01 should not latch: got %d", got)
	}

	e.bus.Write(0x4000, 0x0A) // hours
	e.bus.Write(0xA000, 0xFF)
	if got := e.mem.rtc.Live[rtcHours]; got != 0x1F {
		t.Errorf("Hours write should be masked to 0x1F, got 0x%02X", got)
	}
}

// TestRTC_Rollover tests the carry chain from seconds to the day counter
func TestRTC_Rollover(t *testing.T) {
	var r RTC
	r.Live = [rtcRegisters]uint8{59, 59, 23, 0xFF, 0x01}
	r.Advance(DefaultTiming.CPUClockHz)

	expected := [rtcRegisters]uint8{0, 0, 0, 0, rtcDayCarry}
	if r.Live != expected {
		t.Errorf("Rollover: expected %v, got %v", expected, r.Live)
	}

	r.Advance(DefaultTiming.CPUClockHz - 1)
	if r.Live[rtcSeconds] != 0 {
		t.Errorf("Partial second should not tick, seconds=%d", r.Live[rtcSeconds])
	}
	r.Advance(1)
	if r.Live[rtcSeconds] != 1 {
		t.Errorf("Seconds: expected 1, got %d", r.Live[rtcSeconds])
	}
}

// TestRTC_Halt tests that the halt bit stops the clock
func TestRTC_Halt(t *testing.T) {
	var r RTC
	r.Live[rtcDayHigh] = rtcHalt
	r.Advance(DefaultTiming.CPUClockHz * 3)
	if r.Live[rtcSeconds] != 0 {
		t.Errorf("Halted clock advanced to %d seconds", r.Live[rtcSeconds])
	}
}

// TestBus_EchoRAM tests that 0xE000-0xFDFF aliases WRAM
func TestBus_EchoRAM(t *testing.T) {
	e := newTestEmulator(t, ModelDMG)

	e.bus.Write(0xC123, 0x55)
	if got := e.bus.Read(0xE123); got != 0x55 {
		t.Errorf("Echo read: expected 0x55, got 0x%02X", got)
	}

	e.bus.Write(0xFDFF, 0xAA)
	if got := e.bus.Read(0xDDFF); got != 0xAA {
		t.Errorf("Echo write: expected 0xAA at 0xDDFF, got 0x%02X", got)
	}
}

// TestBus_FixedRegions tests OAM, the unusable gap, HRAM and IE
func TestBus_FixedRegions(t *testing.T) {
	e := newTestEmulator(t, ModelDMG)

	e.bus.Write(0xFE00, 0x12)
	if got := e.mem.OAM()[0]; got != 0x12 {
		t.Errorf("OAM: expected 0x12, got 0x%02X", got)
	}

	e.bus.Write(0xFEA0, 0x34)
	if got := e.bus.Read(0xFEA0); got != 0xFF {
		t.Errorf("Unusable region: expected 0xFF, got 0x%02X", got)
	}

	e.bus.Write(0xFF80, 0x56)
	e.bus.Write(0xFFFE, 0x78)
	if e.bus.Read(0xFF80) != 0x56 || e.bus.Read(0xFFFE) != 0x78 {
		t.Error("HRAM readback failed")
	}

	e.bus.Write(0xFFFF, 0x1F)
	if e.irq.Enable != 0x1F {
		t.Errorf("IE: expected 0x1F, got 0x%02X", e.irq.Enable)
	}

	e.bus.Write(0xFF0F, 0xFF)
	if got := e.bus.Read(0xFF0F); got != 0xFF {
		t.Errorf("IF: expected 0xFF, got 0x%02X", got)
	}
	if e.irq.Request != 0x1F {
		t.Errorf("IF storage: expected 0x1F, got 0x%02X", e.irq.Request)
	}
}

// TestBus_WRAMBanking tests the CGB 0xD000 window
func TestBus_WRAMBanking(t *testing.T) {
	e := newTestEmulator(t, ModelCGB)

	for bank := uint8(1); bank < 8; bank++ {
		e.bus.Write(0xFF70, bank)
		e.bus.Write(0xD000, 0x10+bank)
	}
	for bank := uint8(1); bank < 8; bank++ {
		e.bus.Write(0xFF70, bank)
		if got := e.bus.Read(0xD000); got != 0x10+bank {
			t.Errorf("WRAM bank %d: expected 0x%02X, got 0x%02X", bank, 0x10+bank, got)
		}
	}

	e.bus.Write(0xFF70, 0)
	if e.mem.WRAMBank() != 1 {
		t.Errorf("Select 0 should map bank 1, got %d", e.mem.WRAMBank())
	}
	if got := e.bus.Read(0xFF70); got != 0xF9 {
		t.Errorf("SVBK read: expected 0xF9, got 0x%02X", got)
	}
}

// TestBus_VRAMBanking tests the CGB VRAM bank select
func TestBus_VRAMBanking(t *testing.T) {
	e := newTestEmulator(t, ModelCGB)

	e.bus.Write(0x8000, 0x11)
	e.bus.Write(0xFF4F, 0x01)
	if got := e.bus.Read(0x8000); got != 0x00 {
		t.Errorf("VRAM bank 1 should start clear, got 0x%02X", got)
	}
	e.bus.Write(0x8000, 0x22)
	if got := e.bus.Read(0xFF4F); got != 0xFF {
		t.Errorf("VBK read: expected 0xFF, got 0x%02X", got)
	}

	e.bus.Write(0xFF4F, 0x00)
	if got := e.bus.Read(0x8000); got != 0x11 {
		t.Errorf("VRAM bank 0: expected 0x11, got 0x%02X", got)
	}
	if got := e.mem.VRAMBank(1)[0]; got != 0x22 {
		t.Errorf("VRAM bank 1 contents: expected 0x22, got 0x%02X", got)
	}
}

// TestBus_DMGIgnoresCGBRegisters tests that CGB-only registers are inert
func TestBus_DMGIgnoresCGBRegisters(t *testing.T) {
	e := newTestEmulator(t, ModelDMG)

	for _, addr := range []uint16{0xFF4D, 0xFF4F, 0xFF55, 0xFF68, 0xFF69, 0xFF70} {
		e.bus.Write(addr, 0x01)
		if got := e.bus.Read(addr); got != 0xFF {
			t.Errorf("0x%04X on DMG: expected 0xFF, got 0x%02X", addr, got)
		}
	}
	if e.mem.WRAMBank() != 1 {
		t.Errorf("SVBK write on DMG changed bank to %d", e.mem.WRAMBank())
	}
	if e.mem.VRAMBank(1) != nil {
		t.Error("DMG should have a single VRAM bank")
	}
}

// TestBus_BootROMOverlay tests the boot image mapping and its unmap register
func TestBus_BootROMOverlay(t *testing.T) {
	e := newTestEmulator(t, ModelDMG)

	boot := make([]byte, 0x100)
	for i := range boot {
		boot[i] = 0xAA
	}
	if err := e.SetBootROM(boot); err != nil {
		t.Fatalf("SetBootROM failed: %v", err)
	}

	if e.cpu.PC != 0x0000 {
		t.Errorf("Boot should start at 0x0000, PC=0x%04X", e.cpu.PC)
	}
	if got := e.bus.Read(0x0000); got != 0xAA {
		t.Errorf("Boot overlay: expected 0xAA, got 0x%02X", got)
	}
	if got := e.bus.Read(0x0134); got != 'P' {
		t.Errorf("Header should stay visible, got 0x%02X", got)
	}

	e.bus.Write(0xFF50, 0x01)
	if got := e.bus.Read(0x0000); got != 0x00 {
		t.Errorf("After unmap: expected cartridge 0x00, got 0x%02X", got)
	}

	if err := e.SetBootROM(make([]byte, 0x200)); err == nil {
		t.Error("SetBootROM should reject a 512-byte image")
	}
}
