package emu

import (
	"image"
	"image/color"
	"sort"
)

// DMG shade sets, lightest first.
var (
	greyShades = [4]color.RGBA{
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0xAA, 0xAA, 0xAA, 0xFF},
		{0x55, 0x55, 0x55, 0xFF},
		{0x00, 0x00, 0x00, 0xFF},
	}
	greenShades = [4]color.RGBA{
		{0x9B, 0xBC, 0x0F, 0xFF},
		{0x8B, 0xAC, 0x0F, 0xFF},
		{0x30, 0x62, 0x30, 0xFF},
		{0x0F, 0x38, 0x0F, 0xFF},
	}
)

const (
	maxSpritesPerLine = 10

	attrPriority = 0x80
	attrYFlip    = 0x40
	attrXFlip    = 0x20
	attrDMGPal   = 0x10
	attrBank     = 0x08
)

type sprite struct {
	y, x  int
	tile  uint8
	attr  uint8
	index int
}

// Renderer rasterizes finished scanlines from VRAM, OAM and the LCD
// registers into a 160x144 RGBA frame.
type Renderer struct {
	mem *Memory
	lcd *LCD
	cgb bool

	framebuffer *image.RGBA
	shades      [4]color.RGBA

	// Per-pixel background color index and CGB priority bit for the
	// line being drawn, used for sprite-to-background priority.
	bgColor    [ScreenWidth]uint8
	bgPriority [ScreenWidth]bool
	sprites    []sprite
}

// NewRenderer creates a renderer drawing into its own framebuffer.
func NewRenderer(mem *Memory, lcd *LCD, cgb bool) *Renderer {
	r := &Renderer{
		mem:         mem,
		lcd:         lcd,
		cgb:         cgb,
		framebuffer: image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight)),
		shades:      greyShades,
		sprites:     make([]sprite, 0, maxSpritesPerLine),
	}
	r.Clear()
	return r
}

// SetGreenPalette switches DMG output between grey and green shades.
func (r *Renderer) SetGreenPalette(on bool) {
	if on {
		r.shades = greenShades
	} else {
		r.shades = greyShades
	}
}

// Framebuffer returns the frame being drawn.
func (r *Renderer) Framebuffer() *image.RGBA {
	return r.framebuffer
}

// Clear fills the frame with the blank LCD color.
func (r *Renderer) Clear() {
	c := r.shades[0]
	if r.cgb {
		c = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	}
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			r.framebuffer.SetRGBA(x, y, c)
		}
	}
}

// RenderLine draws scanline ly.
func (r *Renderer) RenderLine(ly uint8) {
	if int(ly) >= ScreenHeight {
		return
	}
	r.renderBackground(ly)
	if r.lcd.LCDC&0x02 != 0 {
		r.renderSprites(ly)
	}
}

func (r *Renderer) renderBackground(ly uint8) {
	lcdc := r.lcd.LCDC
	bank0 := r.mem.VRAMBank(0)
	bank1 := r.mem.VRAMBank(1)

	// On DMG bit 0 blanks background and window.
	if !r.cgb && lcdc&0x01 == 0 {
		for x := 0; x < ScreenWidth; x++ {
			r.bgColor[x] = 0
			r.bgPriority[x] = false
			r.framebuffer.SetRGBA(x, int(ly), r.dmgShade(r.lcd.BGP, 0))
		}
		return
	}

	windowOn := lcdc&0x20 != 0 && ly >= r.lcd.WY && r.lcd.WX <= 166
	windowX := int(r.lcd.WX) - 7

	for x := 0; x < ScreenWidth; x++ {
		var mapBase int
		var px, py uint8
		if windowOn && x >= windowX {
			mapBase = 0x1800
			if lcdc&0x40 != 0 {
				mapBase = 0x1C00
			}
			px = uint8(x - windowX)
			py = ly - r.lcd.WY
		} else {
			mapBase = 0x1800
			if lcdc&0x08 != 0 {
				mapBase = 0x1C00
			}
			px = uint8(x) + r.lcd.SCX
			py = ly + r.lcd.SCY
		}

		mapAddr := mapBase + int(py/8)*32 + int(px/8)
		tile := bank0[mapAddr]
		var attr uint8
		if r.cgb && bank1 != nil {
			attr = bank1[mapAddr]
		}

		row := py % 8
		if attr&attrYFlip != 0 {
			row = 7 - row
		}
		col := px % 8
		if attr&attrXFlip != 0 {
			col = 7 - col
		}

		data := bank0
		if attr&attrBank != 0 && bank1 != nil {
			data = bank1
		}
		idx := tileColor(data, r.tileAddr(tile, lcdc), row, col)

		r.bgColor[x] = idx
		r.bgPriority[x] = attr&attrPriority != 0

		if r.cgb {
			r.framebuffer.SetRGBA(x, int(ly), cgbColor(&r.lcd.BGPalette, attr&0x07, idx))
		} else {
			r.framebuffer.SetRGBA(x, int(ly), r.dmgShade(r.lcd.BGP, idx))
		}
	}
}

// tileAddr returns the VRAM offset of a background tile. LCDC bit 4 picks
// unsigned indexing from 0x8000 or signed indexing around 0x9000.
func (r *Renderer) tileAddr(tile uint8, lcdc uint8) int {
	if lcdc&0x10 != 0 {
		return int(tile) * 16
	}
	return 0x1000 + int(int8(tile))*16
}

func tileColor(data []uint8, addr int, row, col uint8) uint8 {
	lo := data[addr+int(row)*2]
	hi := data[addr+int(row)*2+1]
	bit := 7 - col
	return (hi>>bit&1)<<1 | lo>>bit&1
}

func (r *Renderer) renderSprites(ly uint8) {
	height := 8
	if r.lcd.LCDC&0x04 != 0 {
		height = 16
	}

	oam := r.mem.OAM()
	r.sprites = r.sprites[:0]
	for i := 0; i < 40 && len(r.sprites) < maxSpritesPerLine; i++ {
		y := int(oam[i*4]) - 16
		if int(ly) < y || int(ly) >= y+height {
			continue
		}
		r.sprites = append(r.sprites, sprite{
			y:     y,
			x:     int(oam[i*4+1]) - 8,
			tile:  oam[i*4+2],
			attr:  oam[i*4+3],
			index: i,
		})
	}

	// DMG gives the lowest X priority; CGB keeps OAM order.
	if !r.cgb {
		sort.SliceStable(r.sprites, func(a, b int) bool {
			return r.sprites[a].x < r.sprites[b].x
		})
	}

	bank0 := r.mem.VRAMBank(0)
	bank1 := r.mem.VRAMBank(1)
	masterPriority := r.lcd.LCDC&0x01 != 0

	for x := 0; x < ScreenWidth; x++ {
		for _, s := range r.sprites {
			if x < s.x || x >= s.x+8 {
				continue
			}
			row := uint8(int(ly) - s.y)
			if s.attr&attrYFlip != 0 {
				row = uint8(height-1) - row
			}
			col := uint8(x - s.x)
			if s.attr&attrXFlip != 0 {
				col = 7 - col
			}
			tile := s.tile
			if height == 16 {
				tile &^= 0x01
			}
			data := bank0
			if r.cgb && s.attr&attrBank != 0 && bank1 != nil {
				data = bank1
			}
			idx := tileColor(data, int(tile)*16, row, col)
			if idx == 0 {
				continue
			}

			if r.bgColor[x] != 0 {
				if r.cgb {
					if masterPriority && (s.attr&attrPriority != 0 || r.bgPriority[x]) {
						break
					}
				} else if s.attr&attrPriority != 0 {
					break
				}
			}

			if r.cgb {
				r.framebuffer.SetRGBA(x, int(ly), cgbColor(&r.lcd.OBJPalette, s.attr&0x07, idx))
			} else {
				pal := r.lcd.OBP0
				if s.attr&attrDMGPal != 0 {
					pal = r.lcd.OBP1
				}
				r.framebuffer.SetRGBA(x, int(ly), r.dmgShade(pal, idx))
			}
			break
		}
	}
}

func (r *Renderer) dmgShade(pal uint8, idx uint8) color.RGBA {
	return r.shades[(pal>>(idx*2))&0x03]
}

// cgbColor converts a BGR555 palette RAM entry to RGBA.
func cgbColor(ram *[64]uint8, pal, idx uint8) color.RGBA {
	off := int(pal)*8 + int(idx)*2
	v := uint16(ram[off]) | uint16(ram[off+1])<<8
	scale := func(c uint16) uint8 {
		c &= 0x1F
		return uint8(c<<3 | c>>2)
	}
	return color.RGBA{scale(v), scale(v >> 5), scale(v >> 10), 0xFF}
}
