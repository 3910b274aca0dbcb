package emu

// Interrupt sources in priority order. The index doubles as the bit in
// IE/IF and selects the vector at 0x40 + index*8.
const (
	IntVBlank = iota
	IntLCDStat
	IntTimer
	IntSerial
	IntJoypad
	intSources
)

const intMask = 1<<intSources - 1

// Interrupts holds the interrupt controller registers.
type Interrupts struct {
	Enable  uint8 // IE (0xFFFF)
	Request uint8 // IF (0xFF0F)
	IME     bool
	Halted  bool
}

// Raise sets the request bit for a source.
func (i *Interrupts) Raise(source int) {
	i.Request |= 1 << source
}

// Pending returns the sources that are both requested and enabled.
func (i *Interrupts) Pending() uint8 {
	return i.Enable & i.Request & intMask
}

// Next returns the lowest numbered pending source.
func (i *Interrupts) Next() (int, bool) {
	p := i.Pending()
	if p == 0 {
		return 0, false
	}
	for n := 0; n < intSources; n++ {
		if p&(1<<n) != 0 {
			return n, true
		}
	}
	return 0, false
}

// readIF returns IF with the unused upper bits set.
func (i *Interrupts) readIF() uint8 {
	return 0xE0 | i.Request
}

func (i *Interrupts) writeIF(v uint8) {
	i.Request = v & intMask
}
