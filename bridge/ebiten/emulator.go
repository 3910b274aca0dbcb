//go:build !libretro && !ios

// Package ebiten provides an Ebiten-specific wrapper for the emulator.
package ebiten

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/user-none/edmg/emu"
)

// Emulator wraps emu.Emulator with Ebiten-specific functionality
type Emulator struct {
	*emu.Emulator

	offscreen *ebiten.Image           // Offscreen buffer for native resolution rendering
	drawOpts  ebiten.DrawImageOptions // Pre-allocated draw options to avoid per-frame allocation
}

// NewEmulator creates a new emulator instance with Ebiten rendering.
func NewEmulator(rom []byte, model emu.Model) (*Emulator, error) {
	e, err := emu.NewEmulator(rom, model)
	if err != nil {
		return nil, err
	}
	return &Emulator{Emulator: &e}, nil
}

// DrawToScreen renders the emulator framebuffer to the given screen,
// scaled to fit and centered.
func (e *Emulator) DrawToScreen(screen *ebiten.Image) {
	img := e.GetFramebufferImage()
	if img == nil {
		return
	}

	// Calculate scaling to fit window while preserving aspect ratio
	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW := float64(emu.ScreenWidth)
	nativeH := float64(emu.ScreenHeight)

	scale := float64(screenW) / nativeW
	if scaleY := float64(screenH) / nativeH; scaleY < scale {
		scale = scaleY
	}

	offsetX := (float64(screenW) - nativeW*scale) / 2
	offsetY := (float64(screenH) - nativeH*scale) / 2

	e.drawOpts = ebiten.DrawImageOptions{}
	e.drawOpts.GeoM.Scale(scale, scale)
	e.drawOpts.GeoM.Translate(offsetX, offsetY)
	e.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(img, &e.drawOpts)
}

func (e *Emulator) Layout(outsideWidth, outsideHeight int) (int, int) {
	// Return window size so we control scaling in Draw()
	return outsideWidth, outsideHeight
}

// GetFramebufferImage returns the LCD framebuffer as an ebiten.Image at
// native resolution.
func (e *Emulator) GetFramebufferImage() *ebiten.Image {
	if e.offscreen == nil {
		e.offscreen = ebiten.NewImage(emu.ScreenWidth, emu.ScreenHeight)
	}

	fb := e.GetFramebuffer()
	requiredLen := e.GetFramebufferStride() * emu.ScreenHeight
	if len(fb) < requiredLen {
		return nil
	}
	e.offscreen.WritePixels(fb[:requiredLen])
	return e.offscreen
}
