package emu

// opCycles is the base cost of each opcode. Conditional branches list the
// not-taken cost; the handler adds the taken penalty. 0xCB costs nothing
// here because the prefixed table supplies the whole cost.
var opCycles = [256]int{
	//  0   1   2   3   4   5   6   7   8   9   a   b   c   d   e   f
	4, 12, 8, 8, 4, 4, 8, 4, 20, 8, 8, 8, 4, 4, 8, 4, // 0
	4, 12, 8, 8, 4, 4, 8, 4, 12, 8, 8, 8, 4, 4, 8, 4, // 1
	8, 12, 8, 8, 4, 4, 8, 4, 8, 8, 8, 8, 4, 4, 8, 4, // 2
	8, 12, 8, 8, 12, 12, 12, 4, 8, 8, 8, 8, 4, 4, 8, 4, // 3
	4, 4, 4, 4, 4, 4, 8, 4, 4, 4, 4, 4, 4, 4, 8, 4, // 4
	4, 4, 4, 4, 4, 4, 8, 4, 4, 4, 4, 4, 4, 4, 8, 4, // 5
	4, 4, 4, 4, 4, 4, 8, 4, 4, 4, 4, 4, 4, 4, 8, 4, // 6
	8, 8, 8, 8, 8, 8, 4, 8, 4, 4, 4, 4, 4, 4, 8, 4, // 7
	4, 4, 4, 4, 4, 4, 8, 4, 4, 4, 4, 4, 4, 4, 8, 4, // 8
	4, 4, 4, 4, 4, 4, 8, 4, 4, 4, 4, 4, 4, 4, 8, 4, // 9
	4, 4, 4, 4, 4, 4, 8, 4, 4, 4, 4, 4, 4, 4, 8, 4, // a
	4, 4, 4, 4, 4, 4, 8, 4, 4, 4, 4, 4, 8, 4, 8, 4, // b
	8, 12, 12, 16, 12, 16, 8, 16, 8, 16, 12, 0, 12, 24, 8, 16, // c
	8, 12, 12, 4, 12, 16, 8, 16, 8, 16, 12, 4, 12, 4, 8, 16, // d
	12, 12, 8, 4, 4, 16, 8, 16, 16, 4, 16, 4, 4, 4, 8, 16, // e
	12, 12, 8, 4, 4, 16, 8, 16, 12, 8, 16, 4, 0, 4, 8, 16, // f
}

// cbCycles is the full cost of each 0xCB-prefixed opcode.
var cbCycles = func() [256]int {
	var t [256]int
	for op := range t {
		switch {
		case op&0x07 != 6:
			t[op] = 8
		case op >= 0x40 && op < 0x80:
			t[op] = 12 // BIT n,(HL)
		default:
			t[op] = 16
		}
	}
	return t
}()

// Taken-branch penalties.
const (
	jrTaken   = 4
	jpTaken   = 4
	callTaken = 12
	retTaken  = 12
)
