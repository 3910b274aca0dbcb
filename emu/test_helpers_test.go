package emu

import "testing"

// createTestROM creates a cartridge image with the given number of 16KB
// banks and a valid header. Each bank is filled with its bank number
// (0, 1, 2, etc.) to allow easy verification of which bank is mapped.
func createTestROM(banks int, cartType, ramSize uint8) []byte {
	rom := make([]byte, banks*0x4000)
	for b := 0; b < banks; b++ {
		for i := 0; i < 0x4000; i++ {
			rom[b*0x4000+i] = byte(b)
		}
	}

	copy(rom[headerTitle:], "TESTROM")
	rom[headerCartType] = cartType
	for code, n := range romBankCounts {
		if n == banks {
			rom[headerROMSize] = code
		}
	}
	rom[headerRAMSize] = ramSize
	return rom
}

// createProgramROM creates a two-bank ROM-only image with program placed
// at 0x0150, past the header.
func createProgramROM(cgb bool, program ...byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[headerTitle:], "PROGRAM")
	if cgb {
		rom[headerCGBFlag] = 0x80
	}
	copy(rom[0x150:], program)
	return rom
}

// newTestEmulator builds a session around program with PC at its first
// byte.
func newTestEmulator(t *testing.T, model Model, program ...byte) *Emulator {
	t.Helper()
	e, err := NewEmulator(createProgramROM(model == ModelCGB, program...), model)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	e.cpu.PC = 0x150
	return &e
}

// newTestCartEmulator builds a DMG session around a banked cartridge.
func newTestCartEmulator(t *testing.T, banks int, cartType, ramSize uint8) *Emulator {
	t.Helper()
	e, err := NewEmulator(createTestROM(banks, cartType, ramSize), ModelDMG)
	if err != nil {
		t.Fatalf("NewEmulator failed: %v", err)
	}
	return &e
}

// mustStep runs one step and fails the test on any error.
func mustStep(t *testing.T, e *Emulator) int {
	t.Helper()
	cycles, err := e.Step()
	if err != nil {
		t.Fatalf("Step failed at PC=0x%04X: %v", e.cpu.PC, err)
	}
	return cycles
}
