package emu

import (
	"fmt"
	"hash/crc32"
	"strings"
)

// Header offsets
const (
	headerTitle     = 0x134
	headerTitleEnd  = 0x144
	headerCGBFlag   = 0x143
	headerCartType  = 0x147
	headerROMSize   = 0x148
	headerRAMSize   = 0x149
	headerChecksum  = 0x14D
	headerSize      = 0x150
	romBankSize     = 0x4000
	extRAMBankSize  = 0x2000
	wramBankSize    = 0x1000
	vramBankSize    = 0x2000
)

// CartFeatures describes what hardware a cartridge type carries.
type CartFeatures struct {
	Name    string
	MBC     int // Controller generation, 0 for none
	ExtRAM  bool
	Battery bool
	RTC     bool
	Rumble  bool
}

var cartTypes = map[uint8]CartFeatures{
	0x00: {Name: "ROM ONLY"},
	0x01: {Name: "MBC1", MBC: 1},
	0x02: {Name: "MBC1+RAM", MBC: 1, ExtRAM: true},
	0x03: {Name: "MBC1+RAM+BATTERY", MBC: 1, ExtRAM: true, Battery: true},
	0x08: {Name: "ROM+RAM", ExtRAM: true},
	0x09: {Name: "ROM+RAM+BATTERY", ExtRAM: true, Battery: true},
	0x0F: {Name: "MBC3+TIMER+BATTERY", MBC: 3, Battery: true, RTC: true},
	0x10: {Name: "MBC3+TIMER+RAM+BATTERY", MBC: 3, ExtRAM: true, Battery: true, RTC: true},
	0x11: {Name: "MBC3", MBC: 3},
	0x12: {Name: "MBC3+RAM", MBC: 3, ExtRAM: true},
	0x13: {Name: "MBC3+RAM+BATTERY", MBC: 3, ExtRAM: true, Battery: true},
	0x19: {Name: "MBC5", MBC: 5},
	0x1A: {Name: "MBC5+RAM", MBC: 5, ExtRAM: true},
	0x1B: {Name: "MBC5+RAM+BATTERY", MBC: 5, ExtRAM: true, Battery: true},
	0x1C: {Name: "MBC5+RUMBLE", MBC: 5, Rumble: true},
	0x1D: {Name: "MBC5+RUMBLE+RAM", MBC: 5, ExtRAM: true, Rumble: true},
	0x1E: {Name: "MBC5+RUMBLE+RAM+BATTERY", MBC: 5, ExtRAM: true, Battery: true, Rumble: true},
}

var romBankCounts = map[uint8]int{
	0x00: 2, 0x01: 4, 0x02: 8, 0x03: 16, 0x04: 32, 0x05: 64, 0x06: 128, 0x07: 256, 0x08: 512,
	0x52: 72, 0x53: 80, 0x54: 96,
}

var extRAMBankCounts = map[uint8]int{
	0x00: 0, 0x01: 1, 0x02: 1, 0x03: 4, 0x04: 16, 0x05: 8,
}

// Cartridge is the parsed header of a ROM image.
type Cartridge struct {
	Title       string
	CGB         bool
	Type        uint8
	Features    CartFeatures
	ROMBanks    int
	ExtRAMBanks int
	CRC32       uint32
}

// ParseCartridge reads the header fields that decide the memory layout.
// Unknown type or size codes are rejected before any allocation happens.
func ParseCartridge(rom []byte) (*Cartridge, error) {
	if len(rom) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrROMTooSmall, len(rom))
	}

	c := &Cartridge{
		Title: strings.TrimRight(string(rom[headerTitle:headerTitleEnd]), "\x00 "),
		CGB:   rom[headerCGBFlag]&0x80 != 0,
		Type:  rom[headerCartType],
		CRC32: crc32.ChecksumIEEE(rom),
	}
	if c.CGB {
		// The last title byte doubles as the CGB flag.
		c.Title = strings.TrimRight(string(rom[headerTitle:headerCGBFlag]), "\x00 ")
	}

	features, ok := cartTypes[c.Type]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedCartridge, c.Type)
	}
	c.Features = features

	c.ROMBanks, ok = romBankCounts[rom[headerROMSize]]
	if !ok {
		return nil, fmt.Errorf("%w: rom size code 0x%02X", ErrUnsupportedCartridge, rom[headerROMSize])
	}

	c.ExtRAMBanks, ok = extRAMBankCounts[rom[headerRAMSize]]
	if !ok {
		return nil, fmt.Errorf("%w: ram size code 0x%02X", ErrUnsupportedCartridge, rom[headerRAMSize])
	}
	return c, nil
}

// HeaderChecksumOK verifies the 0x14D checksum over 0x134-0x14C.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) < headerSize {
		return false
	}
	var x uint8
	for _, b := range rom[headerTitle:headerChecksum] {
		x = x - b - 1
	}
	return x == rom[headerChecksum]
}

func (c *Cartridge) String() string {
	return fmt.Sprintf("%q %s, %d ROM banks, %d RAM banks", c.Title, c.Features.Name, c.ROMBanks, c.ExtRAMBanks)
}
