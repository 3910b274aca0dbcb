package adapter

import (
	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/edmg/emu"
)

// Compile-time interface check.
var _ emucore.CoreFactory = (*Factory)(nil)

// Factory implements emucore.CoreFactory for the Game Boy emulator.
type Factory struct {
	// Model forces DMG or CGB hardware. ModelAuto follows the cartridge
	// header.
	Model emu.Model
}

// SystemInfo returns system metadata for UI configuration.
func (f *Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SystemInfo{
		Name:            "edmg",
		ConsoleName:     "Nintendo Game Boy",
		Extensions:      []string{".gb", ".gbc"},
		ScreenWidth:     emu.ScreenWidth,
		MaxScreenHeight: emu.ScreenHeight,
		AspectRatio:     160.0 / 144.0,
		SampleRate:      48000,
		Buttons: []emucore.Button{
			{Name: "A", ID: 4, DefaultKey: "J", DefaultPad: "A"},
			{Name: "B", ID: 5, DefaultKey: "K", DefaultPad: "B"},
			{Name: "Select", ID: 6, DefaultKey: "RightShift", DefaultPad: "Back"},
			{Name: "Start", ID: 7, DefaultKey: "Enter", DefaultPad: "Start"},
		},
		Players: 1,
		CoreOptions: []emucore.CoreOption{
			{
				Key:         "green_palette",
				Label:       "Green Palette",
				Description: "Draw DMG games in the original green LCD shades",
				Type:        emucore.CoreOptionBool,
				Default:     "false",
				Category:    emucore.CoreOptionCategoryVideo,
			},
		},
		RDBName:       "Nintendo - Game Boy",
		ThumbnailRepo: "Nintendo_-_Game_Boy",
		DataDirName:   "edmg",
		ConsoleID:     4,
		CoreName:      emu.Name,
		CoreVersion:   emu.Version,
		SerializeSize: emu.SerializeSize(),
	}
}

// CreateEmulator creates a new emulator instance with the given ROM. The
// region is recorded for the frontend; it does not change timing.
func (f *Factory) CreateEmulator(rom []byte, region emucore.Region) (emucore.Emulator, error) {
	e, err := emu.NewEmulator(rom, f.Model)
	if err != nil {
		return nil, err
	}
	e.SetRegion(region)
	return &e, nil
}

// DetectRegion reports the single handheld timing.
// The bool return indicates whether the ROM carried a readable header.
func (f *Factory) DetectRegion(rom []byte) (emucore.Region, bool) {
	return emu.DetectRegionFromROM(rom)
}
