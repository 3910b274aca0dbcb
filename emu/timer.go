package emu

// Timer rates indexed by TAC bits 0-1, in CPU cycles per TIMA tick.
var timerPeriods = [4]int{1024, 16, 64, 256}

const divPeriod = 256

// Timer implements DIV and the programmable TIMA counter.
type Timer struct {
	irq *Interrupts

	DIV  uint8
	TIMA uint8
	TMA  uint8
	TAC  uint8

	divClocks  int
	timaClocks int
}

// NewTimer creates a timer that raises requests on irq.
func NewTimer(irq *Interrupts) *Timer {
	return &Timer{irq: irq}
}

// Advance runs the timer forward by cycles.
func (t *Timer) Advance(cycles int) {
	t.divClocks += cycles
	for t.divClocks >= divPeriod {
		t.divClocks -= divPeriod
		t.DIV++
	}

	if t.TAC&0x04 == 0 {
		return
	}

	period := timerPeriods[t.TAC&0x03]
	t.timaClocks += cycles
	for t.timaClocks >= period {
		t.timaClocks -= period
		t.TIMA++
		if t.TIMA == 0 {
			t.TIMA = t.TMA
			t.irq.Raise(IntTimer)
		}
	}
}

// Read returns a timer register for addresses 0xFF04-0xFF07.
func (t *Timer) Read(addr uint16) uint8 {
	switch addr {
	case 0xFF04:
		return t.DIV
	case 0xFF05:
		return t.TIMA
	case 0xFF06:
		return t.TMA
	case 0xFF07:
		return 0xF8 | t.TAC
	}
	return 0xFF
}

// Write stores a timer register. Any DIV write clears the divider.
func (t *Timer) Write(addr uint16, v uint8) {
	switch addr {
	case 0xFF04:
		t.DIV = 0
		t.divClocks = 0
	case 0xFF05:
		t.TIMA = v
	case 0xFF06:
		t.TMA = v
	case 0xFF07:
		if v&0x03 != t.TAC&0x03 {
			t.timaClocks = 0
		}
		t.TAC = v & 0x07
	}
}
