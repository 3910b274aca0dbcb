//go:build !libretro && !ios

package main

import (
	"flag"
	"log"

	"github.com/user-none/eblitui/standalone"
	"github.com/user-none/edmg/adapter"
	"github.com/user-none/edmg/emu"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file (opens UI if not provided)")
	modelFlag := flag.String("model", "auto", "hardware model: auto, dmg, or cgb")
	greenPalette := flag.Bool("green-palette", false, "draw DMG games in green LCD shades")
	flag.Parse()

	model, ok := emu.ParseModel(*modelFlag)
	if !ok {
		log.Fatalf("unknown model %q", *modelFlag)
	}
	factory := &adapter.Factory{Model: model}

	if *romPath != "" {
		options := map[string]string{}
		if *greenPalette {
			options["green_palette"] = "true"
		}
		if err := standalone.RunDirect(factory, *romPath, "auto", options); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := standalone.Run(factory); err != nil {
		log.Fatal(err)
	}
}
