package main

import (
	libretro "github.com/user-none/eblitui/libretro"
	"github.com/user-none/edmg/adapter"
)

// RETRO_DEVICE_ID_JOYPAD_SELECT
const joypadSelect = 2

func init() {
	libretro.RegisterFactory(&adapter.Factory{}, []libretro.RetropadMapping{
		{RetroID: libretro.JoypadA, BitID: 4},
		{RetroID: libretro.JoypadB, BitID: 5},
		{RetroID: joypadSelect, BitID: 6},
		{RetroID: libretro.JoypadStart, BitID: 7},
	})
}

func main() {}
