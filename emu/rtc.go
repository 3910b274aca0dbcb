package emu

// RTC register indexes, selected by writing 0x08-0x0C to 0x4000-0x5FFF.
const (
	rtcSeconds = iota
	rtcMinutes
	rtcHours
	rtcDayLow
	rtcDayHigh
	rtcRegisters
)

const (
	rtcHalt     = 0x40
	rtcDayCarry = 0x80
)

var rtcMasks = [rtcRegisters]uint8{0x3F, 0x3F, 0x1F, 0xFF, 0xC1}

// RTC is the cartridge clock found on MBC3 timer carts. The live registers
// count emulated time; reads see the copy taken by the last latch.
type RTC struct {
	Live    [rtcRegisters]uint8
	Latched [rtcRegisters]uint8

	clocks   int
	latchArm uint8
}

// Advance adds emulated CPU cycles to the live clock.
func (r *RTC) Advance(cycles int) {
	if r.Live[rtcDayHigh]&rtcHalt != 0 {
		return
	}
	r.clocks += cycles
	for r.clocks >= DefaultTiming.CPUClockHz {
		r.clocks -= DefaultTiming.CPUClockHz
		r.tick()
	}
}

func (r *RTC) tick() {
	r.Live[rtcSeconds] = (r.Live[rtcSeconds] + 1) & rtcMasks[rtcSeconds]
	if r.Live[rtcSeconds] != 60 {
		return
	}
	r.Live[rtcSeconds] = 0

	r.Live[rtcMinutes] = (r.Live[rtcMinutes] + 1) & rtcMasks[rtcMinutes]
	if r.Live[rtcMinutes] != 60 {
		return
	}
	r.Live[rtcMinutes] = 0

	r.Live[rtcHours] = (r.Live[rtcHours] + 1) & rtcMasks[rtcHours]
	if r.Live[rtcHours] != 24 {
		return
	}
	r.Live[rtcHours] = 0

	day := r.day() + 1
	if day > 0x1FF {
		day = 0
		r.Live[rtcDayHigh] |= rtcDayCarry
	}
	r.Live[rtcDayLow] = uint8(day)
	r.Live[rtcDayHigh] = r.Live[rtcDayHigh]&^0x01 | uint8(day>>8)&0x01
}

func (r *RTC) day() int {
	return int(r.Live[rtcDayHigh]&0x01)<<8 | int(r.Live[rtcDayLow])
}

// WriteLatch handles writes to 0x6000-0x7FFF. Writing 0x00 then 0x01
// copies the live registers into the latched set.
func (r *RTC) WriteLatch(v uint8) {
	if r.latchArm == 0x00 && v == 0x01 {
		r.Latched = r.Live
	}
	r.latchArm = v
}

// Read returns a latched register.
func (r *RTC) Read(reg int) uint8 {
	return r.Latched[reg]
}

// Write sets a register. Writing the seconds register restarts the
// sub-second count.
func (r *RTC) Write(reg int, v uint8) {
	v &= rtcMasks[reg]
	r.Live[reg] = v
	r.Latched[reg] = v
	if reg == rtcSeconds {
		r.clocks = 0
	}
}
