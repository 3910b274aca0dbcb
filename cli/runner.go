//go:build !libretro && !ios

// Package cli provides a command-line runner for the emulator.
// It handles input polling and runs the emulator in a window without the full UI.
package cli

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	ebitenbridge "github.com/user-none/edmg/bridge/ebiten"
	"github.com/user-none/edmg/emu"
)

// Runner wraps an emulator for command-line mode.
// It handles input polling (emulator doesn't poll input itself).
// This follows the libretro pattern where the frontend is responsible
// for polling input and passing it to the emulator via SetButtons().
type Runner struct {
	emulator *ebitenbridge.Emulator
	paused   bool
}

// NewRunner creates a new Runner wrapping the given emulator.
func NewRunner(e *ebitenbridge.Emulator) *Runner {
	return &Runner{emulator: e}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	if !ebiten.IsFocused() {
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		r.paused = !r.paused
	}
	if r.paused {
		return nil
	}

	r.pollInput()
	r.emulator.RunFrame()

	// No sound hardware is emulated; drop the silence.
	r.emulator.GetAudioSamples()
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	r.emulator.DrawToScreen(screen)
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.emulator.Layout(outsideWidth, outsideHeight)
}

// pollInput reads keyboard and gamepad input and passes it to the emulator.
func (r *Runner) pollInput() {
	// Keyboard (WASD + arrows for movement, J/Z and K/X for A and B)
	var buttons uint8
	press := func(bit uint8, pressed bool) {
		if pressed {
			buttons |= bit
		}
	}
	press(emu.ButtonUp, ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp))
	press(emu.ButtonDown, ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown))
	press(emu.ButtonLeft, ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft))
	press(emu.ButtonRight, ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight))
	press(emu.ButtonA, ebiten.IsKeyPressed(ebiten.KeyJ) || ebiten.IsKeyPressed(ebiten.KeyZ))
	press(emu.ButtonB, ebiten.IsKeyPressed(ebiten.KeyK) || ebiten.IsKeyPressed(ebiten.KeyX))
	press(emu.ButtonStart, ebiten.IsKeyPressed(ebiten.KeyEnter))
	press(emu.ButtonSelect, ebiten.IsKeyPressed(ebiten.KeyShiftRight) || ebiten.IsKeyPressed(ebiten.KeyBackspace))

	// Gamepad support (all connected gamepads)
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}

		press(emu.ButtonUp, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftTop))
		press(emu.ButtonDown, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftBottom))
		press(emu.ButtonLeft, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftLeft))
		press(emu.ButtonRight, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftRight))

		// Face buttons: Cross = A, Circle = B
		press(emu.ButtonA, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom))
		press(emu.ButtonB, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightRight))
		press(emu.ButtonSelect, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonCenterLeft))
		press(emu.ButtonStart, ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonCenterRight))

		// Left analog stick (with deadzone)
		const deadzone = 0.5
		axisX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		axisY := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		press(emu.ButtonLeft, axisX < -deadzone)
		press(emu.ButtonRight, axisX > deadzone)
		press(emu.ButtonUp, axisY < -deadzone)
		press(emu.ButtonDown, axisY > deadzone)
	}

	r.emulator.SetButtons(buttons)
}
