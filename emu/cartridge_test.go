package emu

import (
	"errors"
	"testing"
)

// TestCartridge_Parse tests header decoding for common cartridge types
func TestCartridge_Parse(t *testing.T) {
	testCases := []struct {
		name      string
		banks     int
		cartType  uint8
		ramSize   uint8
		mbc       int
		ramBanks  int
		battery   bool
		rtc       bool
		rumble    bool
	}{
		{"ROM only", 2, 0x00, 0x00, 0, 0, false, false, false},
		{"MBC1+RAM+BATTERY", 16, 0x03, 0x03, 1, 4, true, false, false},
		{"MBC3 timer", 64, 0x10, 0x03, 3, 4, true, true, false},
		{"MBC5 large RAM", 128, 0x1B, 0x04, 5, 16, true, false, false},
		{"MBC5 8MB", 512, 0x19, 0x00, 5, 0, false, false, false},
		{"MBC5 rumble", 8, 0x1C, 0x00, 5, 0, false, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cart, err := ParseCartridge(createTestROM(tc.banks, tc.cartType, tc.ramSize))
			if err != nil {
				t.Fatalf("ParseCartridge failed: %v", err)
			}
			if cart.Title != "TESTROM" {
				t.Errorf("Title: expected TESTROM, got %q", cart.Title)
			}
			if cart.ROMBanks != tc.banks {
				t.Errorf("ROM banks: expected %d, got %d", tc.banks, cart.ROMBanks)
			}
			if cart.ExtRAMBanks != tc.ramBanks {
				t.Errorf("RAM banks: expected %d, got %d", tc.ramBanks, cart.ExtRAMBanks)
			}
			if cart.Features.MBC != tc.mbc || cart.Features.Battery != tc.battery || cart.Features.RTC != tc.rtc || cart.Features.Rumble != tc.rumble {
				t.Errorf("Features: got %+v", cart.Features)
			}
		})
	}
}

// TestCartridge_Rejects tests that bad headers fail before allocation
func TestCartridge_Rejects(t *testing.T) {
	badType := createTestROM(2, 0xFC, 0x00)
	badROMSize := createTestROM(2, 0x00, 0x00)
	badROMSize[headerROMSize] = 0x0A
	badRAMSize := createTestROM(2, 0x02, 0x07)

	testCases := []struct {
		name     string
		rom      []byte
		expected error
	}{
		{"empty", nil, ErrROMTooSmall},
		{"header cut short", make([]byte, headerSize-1), ErrROMTooSmall},
		{"unknown type", badType, ErrUnsupportedCartridge},
		{"unknown ROM size", badROMSize, ErrUnsupportedCartridge},
		{"unknown RAM size", badRAMSize, ErrUnsupportedCartridge},
		{"MBC2", createTestROM(4, 0x06, 0x00), ErrUnsupportedCartridge},
		{"MBC4", createTestROM(4, 0x16, 0x03), ErrUnsupportedCartridge},
		{"MBC6", createTestROM(4, 0x20, 0x00), ErrUnsupportedCartridge},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCartridge(tc.rom)
			if !errors.Is(err, tc.expected) {
				t.Errorf("expected %v, got %v", tc.expected, err)
			}
			if _, err := NewEmulator(tc.rom, ModelAuto); !errors.Is(err, tc.expected) {
				t.Errorf("NewEmulator: expected %v, got %v", tc.expected, err)
			}
		})
	}
}

// TestCartridge_CGBTitle tests that the CGB flag byte is not part of the title
func TestCartridge_CGBTitle(t *testing.T) {
	rom := createTestROM(2, 0x00, 0x00)
	copy(rom[headerTitle:], "ABCDEFGHIJKLMNO")
	rom[headerCGBFlag] = 0xC0

	cart, err := ParseCartridge(rom)
	if err != nil {
		t.Fatalf("ParseCartridge failed: %v", err)
	}
	if !cart.CGB {
		t.Error("CGB flag not detected")
	}
	if cart.Title != "ABCDEFGHIJKLMNO" {
		t.Errorf("Title: expected ABCDEFGHIJKLMNO, got %q", cart.Title)
	}
	if DetectModelFromROM(rom) != ModelCGB {
		t.Error("DetectModelFromROM should pick CGB")
	}
}

// TestCartridge_HeaderChecksum tests the 0x14D checksum
func TestCartridge_HeaderChecksum(t *testing.T) {
	rom := createTestROM(2, 0x00, 0x00)
	var x uint8
	for _, b := range rom[headerTitle:headerChecksum] {
		x = x - b - 1
	}
	rom[headerChecksum] = x
	if !HeaderChecksumOK(rom) {
		t.Error("Valid checksum rejected")
	}
	rom[headerChecksum]++
	if HeaderChecksumOK(rom) {
		t.Error("Invalid checksum accepted")
	}
}

// TestModel_Parse tests flag value parsing
func TestModel_Parse(t *testing.T) {
	testCases := []struct {
		in       string
		expected Model
		ok       bool
	}{
		{"", ModelAuto, true},
		{"auto", ModelAuto, true},
		{"dmg", ModelDMG, true},
		{"gbc", ModelCGB, true},
		{"sgb", ModelAuto, false},
	}
	for _, tc := range testCases {
		m, ok := ParseModel(tc.in)
		if m != tc.expected || ok != tc.ok {
			t.Errorf("ParseModel(%q): expected (%s, %t), got (%s, %t)", tc.in, tc.expected, tc.ok, m, ok)
		}
	}
}

// TestModel_AutoSelection tests that ModelAuto follows the header
func TestModel_AutoSelection(t *testing.T) {
	testCases := []struct {
		cgbFlag  bool
		expected Model
	}{
		{false, ModelDMG},
		{true, ModelCGB},
	}
	for _, tc := range testCases {
		e, err := NewEmulator(createProgramROM(tc.cgbFlag), ModelAuto)
		if err != nil {
			t.Fatalf("NewEmulator failed: %v", err)
		}
		if e.Model() != tc.expected {
			t.Errorf("CGB flag %t: expected %s, got %s", tc.cgbFlag, tc.expected, e.Model())
		}
	}

	// An explicit model overrides the header.
	e, err := NewEmulator(createProgramROM(true), ModelDMG)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	if e.Model() != ModelDMG || e.cpu.A != 0x01 {
		t.Errorf("Forced DMG: model %s A=0x%02X", e.Model(), e.cpu.A)
	}
}
