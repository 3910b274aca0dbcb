//go:build !libretro && !ios

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	ebitenbridge "github.com/user-none/edmg/bridge/ebiten"
	"github.com/user-none/edmg/cli"
	"github.com/user-none/edmg/emu"
	"github.com/user-none/edmg/romloader"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file")
	modelFlag := flag.String("model", "auto", "hardware model: auto, dmg, or cgb")
	bootPath := flag.String("boot", "", "optional boot ROM image")
	greenPalette := flag.Bool("green-palette", false, "draw DMG games in green LCD shades")
	flag.Parse()

	if *romPath == "" {
		fmt.Println("Usage: go run main.go -rom <romfile> [-model auto|dmg|cgb] [-boot <bootrom>] [-green-palette]")
		os.Exit(1)
	}

	model, ok := emu.ParseModel(*modelFlag)
	if !ok {
		log.Fatalf("Invalid model: %s (use auto, dmg, or cgb)", *modelFlag)
	}

	romData, name, err := romloader.LoadROM(*romPath)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	e, err := ebitenbridge.NewEmulator(romData, model)
	if err != nil {
		log.Fatalf("Failed to start %s: %v", name, err)
	}
	if *bootPath != "" {
		boot, err := os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("Failed to read boot ROM: %v", err)
		}
		if err := e.SetBootROM(boot); err != nil {
			log.Fatalf("Failed to install boot ROM: %v", err)
		}
	}
	if *greenPalette {
		e.SetOption("green_palette", "true")
	}

	ebiten.SetWindowSize(emu.ScreenWidth*3, emu.ScreenHeight*3)
	ebiten.SetWindowTitle(emu.Name + " - " + e.Cartridge().Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(emu.ScreenWidth, emu.ScreenHeight, -1, -1)
	ebiten.SetTPS(emu.DefaultTiming.FPS)

	if err := ebiten.RunGame(cli.NewRunner(e)); err != nil {
		log.Fatal(err)
	}
}
