// Command headless runs a cartridge without a window. Serial output is
// copied to stdout, which is how most CPU test ROMs report results.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"

	"github.com/user-none/edmg/emu"
	"github.com/user-none/edmg/romloader"
)

func main() {
	romPath := flag.String("rom", "", "path to ROM file")
	modelFlag := flag.String("model", "auto", "hardware model: auto, dmg, or cgb")
	bootPath := flag.String("boot", "", "optional boot ROM image")
	frames := flag.Int("frames", 600, "number of frames to run")
	screenshot := flag.String("screenshot", "", "write the last frame as PNG")
	loadState := flag.String("load-state", "", "restore a save state before running")
	saveState := flag.String("state", "", "write a save state after running")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: headless -rom <romfile> [-model auto|dmg|cgb] [-frames n] [-screenshot out.png] [-state out.state]")
		os.Exit(2)
	}

	model, ok := emu.ParseModel(*modelFlag)
	if !ok {
		log.Fatalf("Invalid model: %s (use auto, dmg, or cgb)", *modelFlag)
	}

	romData, name, err := romloader.LoadROM(*romPath)
	if err != nil {
		log.Fatalf("Failed to load ROM: %v", err)
	}

	e, err := emu.NewEmulator(romData, model)
	if err != nil {
		log.Fatalf("Failed to start %s: %v", name, err)
	}
	log.Printf("%s: %s on %s", name, e.Cartridge(), e.Model())

	if *bootPath != "" {
		boot, err := os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("Failed to read boot ROM: %v", err)
		}
		if err := e.SetBootROM(boot); err != nil {
			log.Fatalf("Failed to install boot ROM: %v", err)
		}
	}

	if *loadState != "" {
		data, err := os.ReadFile(*loadState)
		if err != nil {
			log.Fatalf("Failed to read state: %v", err)
		}
		if err := e.Deserialize(data); err != nil {
			log.Fatalf("Failed to restore state: %v", err)
		}
	}

	e.SetSerialOutput(os.Stdout)

	exit := 0
	for i := 0; i < *frames; i++ {
		e.RunFrame()
		if err := e.Fault(); err != nil {
			fmt.Println()
			log.Printf("frame %d: %v", i, err)
			dumpRegisters(&e)
			exit = faultExitCode(err)
			break
		}
	}
	fmt.Println()

	if *screenshot != "" {
		if err := writeScreenshot(&e, *screenshot); err != nil {
			log.Fatalf("Failed to write screenshot: %v", err)
		}
	}
	if *saveState != "" {
		data, err := e.Serialize()
		if err != nil {
			log.Fatalf("Failed to save state: %v", err)
		}
		if err := os.WriteFile(*saveState, data, 0o644); err != nil {
			log.Fatalf("Failed to write state: %v", err)
		}
	}

	os.Exit(exit)
}

// faultExitCode separates a deadlock, which test ROMs often use to end,
// from faults that mean the program went wrong.
func faultExitCode(err error) int {
	switch {
	case errors.Is(err, emu.ErrDeadlock):
		return 3
	case errors.Is(err, emu.ErrDecodeFault):
		return 4
	case errors.Is(err, emu.ErrBusFault):
		return 5
	}
	return 1
}

func dumpRegisters(e *emu.Emulator) {
	c := e.CPU()
	irq := e.Interrupts()
	lcd := e.LCD()
	log.Printf("AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X",
		c.AF(), c.BC(), c.DE(), c.HL(), c.SP, c.PC)
	log.Printf("IME=%t IE=%02X IF=%02X LY=%d cycles=%d",
		irq.IME, irq.Enable, irq.Request, lcd.LY, c.Cycles)
}

func writeScreenshot(e *emu.Emulator, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, e.Framebuffer()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
