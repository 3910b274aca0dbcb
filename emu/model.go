package emu

import emucore "github.com/user-none/eblitui/api"

// Region is an alias for emucore.Region. Handhelds have a single video
// timing, so the region only matters to frontends that ask for it.
type Region = emucore.Region

const (
	RegionNTSC = emucore.RegionNTSC
	RegionPAL  = emucore.RegionPAL
)

// Model selects which hardware generation is emulated.
type Model int

const (
	ModelAuto Model = iota
	ModelDMG
	ModelCGB
)

func (m Model) String() string {
	switch m {
	case ModelDMG:
		return "DMG"
	case ModelCGB:
		return "CGB"
	default:
		return "Auto"
	}
}

// ParseModel converts a flag or option value into a Model.
func ParseModel(s string) (Model, bool) {
	switch s {
	case "", "auto":
		return ModelAuto, true
	case "dmg", "DMG", "gb":
		return ModelDMG, true
	case "cgb", "CGB", "gbc":
		return ModelCGB, true
	}
	return ModelAuto, false
}

// Timing holds the fixed video timing of the handheld.
type Timing struct {
	CPUClockHz     int // Single-speed clock
	Scanlines      int // Including the ten VBlank lines
	CyclesPerFrame int
	FPS            int
}

// DefaultTiming is the only timing the hardware has: 4.194304 MHz,
// 154 lines of 456 cycles, roughly 59.7 Hz.
var DefaultTiming = Timing{
	CPUClockHz:     4194304,
	Scanlines:      154,
	CyclesPerFrame: FrameCycles,
	FPS:            60,
}

// DetectModelFromROM returns the model a cartridge asks for. CGB-aware
// and CGB-only carts both run as CGB.
func DetectModelFromROM(rom []byte) Model {
	if len(rom) > headerCGBFlag && rom[headerCGBFlag]&0x80 != 0 {
		return ModelCGB
	}
	return ModelDMG
}

// DetectRegionFromROM always reports NTSC timing. The bool is true when the
// ROM carries a readable header.
func DetectRegionFromROM(rom []byte) (Region, bool) {
	return RegionNTSC, len(rom) >= headerSize
}
