package emu

// LCDMode is the value held in STAT bits 0-1.
type LCDMode uint8

const (
	ModeHBlank LCDMode = iota
	ModeVBlank
	ModeOAM
	ModeVRAM
)

// Mode budgets in CPU cycles (single speed).
const (
	hblankCycles = 204
	vblankCycles = 4560
	oamCycles    = 80
	vramCycles   = 172
	lineCycles   = oamCycles + vramCycles + hblankCycles
	FrameCycles  = lineCycles * 154

	ScreenWidth  = 160
	ScreenHeight = 144
	lastLine     = 153
)

// STAT bits
const (
	statCoincidence = 0x04
	statHBlankInt   = 0x08
	statVBlankInt   = 0x10
	statOAMInt      = 0x20
	statLYCInt      = 0x40
	statWritable    = 0x78
)

// LCD is the display controller mode machine and its registers.
type LCD struct {
	irq *Interrupts

	LCDC uint8
	STAT uint8
	SCY  uint8
	SCX  uint8
	LY   uint8
	LYC  uint8
	BGP  uint8
	OBP0 uint8
	OBP1 uint8
	WY   uint8
	WX   uint8

	// CGB palette RAM, 8 palettes of 4 BGR555 colors each.
	BGPalette  [64]uint8
	OBJPalette [64]uint8
	BGPI       uint8
	OBPI       uint8

	clocks int

	lineReady   bool
	readyLine   uint8
	frameReady  bool
	hblankEntry bool
}

// NewLCD creates the display controller in its power-on state.
func NewLCD(irq *Interrupts) *LCD {
	l := &LCD{irq: irq}
	l.Reset()
	return l
}

// Reset restores power-on registers and starts line 0 in OAM scan.
func (l *LCD) Reset() {
	*l = LCD{irq: l.irq}
	l.LCDC = 0x91
	l.BGP = 0xFC
	l.OBP0 = 0xFF
	l.OBP1 = 0xFF
	l.setMode(ModeOAM)
	l.clocks = oamCycles
	l.compareLY()
}

// Mode returns the current mode.
func (l *LCD) Mode() LCDMode {
	return LCDMode(l.STAT & 0x03)
}

// Enabled reports whether LCDC bit 7 is set.
func (l *LCD) Enabled() bool {
	return l.LCDC&0x80 != 0
}

func (l *LCD) setMode(m LCDMode) {
	l.STAT = l.STAT&^0x03 | uint8(m)
}

func (l *LCD) setLY(v uint8) {
	l.LY = v
	l.compareLY()
}

func (l *LCD) compareLY() {
	if l.LY == l.LYC {
		l.STAT |= statCoincidence
	} else {
		l.STAT &^= statCoincidence
	}
}

// Advance runs the mode machine for cycles. Several transitions may happen
// in one call; the surplus of each budget carries into the next mode.
func (l *LCD) Advance(cycles int) {
	if !l.Enabled() {
		return
	}
	l.clocks -= cycles
	for l.clocks <= 0 {
		l.transition()
	}
}

func (l *LCD) transition() {
	switch l.Mode() {
	case ModeOAM:
		l.setMode(ModeVRAM)
		l.clocks += vramCycles
	case ModeVRAM:
		l.setMode(ModeHBlank)
		l.clocks += hblankCycles
		l.hblankEntry = true
	case ModeHBlank:
		l.lineReady = true
		l.readyLine = l.LY
		if l.LY == ScreenHeight-1 {
			l.setMode(ModeVBlank)
			l.clocks += lineCycles
			l.setLY(l.LY + 1)
			l.irq.Raise(IntVBlank)
			l.frameReady = true
		} else {
			l.setMode(ModeOAM)
			l.clocks += oamCycles
			l.setLY(l.LY + 1)
		}
	case ModeVBlank:
		// VBlank is ten 456-cycle lines; LY keeps counting through them.
		if l.LY == lastLine {
			l.setMode(ModeOAM)
			l.clocks += oamCycles
			l.setLY(0)
		} else {
			// Same mode, next line: only the LYC source can fire.
			l.clocks += lineCycles
			l.setLY(l.LY + 1)
			l.checkStat(false)
			return
		}
	}
	l.checkStat(true)
}

// checkStat ORs the STAT sources into one LCDStat request. The three mode
// sources are tested only when the mode has just changed.
func (l *LCD) checkStat(modeChanged bool) {
	req := l.STAT&statLYCInt != 0 && l.STAT&statCoincidence != 0
	if modeChanged {
		mode := l.Mode()
		req = req ||
			(l.STAT&statHBlankInt != 0 && mode == ModeHBlank) ||
			(l.STAT&statVBlankInt != 0 && mode == ModeVBlank) ||
			(l.STAT&statOAMInt != 0 && mode == ModeOAM)
	}
	if req {
		l.irq.Raise(IntLCDStat)
	}
}

// TakeScanline consumes the scanline-ready edge.
func (l *LCD) TakeScanline() (uint8, bool) {
	if !l.lineReady {
		return 0, false
	}
	l.lineReady = false
	return l.readyLine, true
}

// TakeFrame consumes the frame-ready edge.
func (l *LCD) TakeFrame() bool {
	ok := l.frameReady
	l.frameReady = false
	return ok
}

// takeHBlank consumes the HBlank entry edge used by HBlank DMA.
func (l *LCD) takeHBlank() bool {
	ok := l.hblankEntry
	l.hblankEntry = false
	return ok
}

// Read returns the register at 0xFF40-0xFF4B.
func (l *LCD) Read(addr uint16) uint8 {
	switch addr {
	case 0xFF40:
		return l.LCDC
	case 0xFF41:
		return 0x80 | l.STAT
	case 0xFF42:
		return l.SCY
	case 0xFF43:
		return l.SCX
	case 0xFF44:
		return l.LY
	case 0xFF45:
		return l.LYC
	case 0xFF47:
		return l.BGP
	case 0xFF48:
		return l.OBP0
	case 0xFF49:
		return l.OBP1
	case 0xFF4A:
		return l.WY
	case 0xFF4B:
		return l.WX
	}
	return 0xFF
}

// Write stores the register at 0xFF40-0xFF4B. 0xFF46 (DMA) is handled by
// the bus.
func (l *LCD) Write(addr uint16, v uint8) {
	switch addr {
	case 0xFF40:
		l.writeLCDC(v)
	case 0xFF41:
		l.STAT = l.STAT&^statWritable | v&statWritable
	case 0xFF42:
		l.SCY = v
	case 0xFF43:
		l.SCX = v
	case 0xFF44:
		l.setLY(0)
	case 0xFF45:
		l.LYC = v
		l.compareLY()
	case 0xFF47:
		l.BGP = v
	case 0xFF48:
		l.OBP0 = v
	case 0xFF49:
		l.OBP1 = v
	case 0xFF4A:
		l.WY = v
	case 0xFF4B:
		l.WX = v
	}
}

func (l *LCD) writeLCDC(v uint8) {
	wasOn := l.Enabled()
	l.LCDC = v
	switch {
	case wasOn && !l.Enabled():
		l.setMode(ModeHBlank)
		l.clocks = 0
		l.setLY(0)
	case !wasOn && l.Enabled():
		l.setMode(ModeOAM)
		l.clocks = oamCycles
		l.setLY(0)
	}
}

// readPaletteIndex and friends implement BCPS/BCPD and OCPS/OCPD.
func readPaletteIndex(idx uint8) uint8 {
	return 0x40 | idx
}

func readPaletteData(ram *[64]uint8, idx uint8) uint8 {
	return ram[idx&0x3F]
}

func writePaletteData(ram *[64]uint8, idx *uint8, v uint8) {
	ram[*idx&0x3F] = v
	if *idx&0x80 != 0 {
		*idx = 0x80 | (*idx+1)&0x3F
	}
}
