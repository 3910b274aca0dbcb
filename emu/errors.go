package emu

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed faults unwrap to these so callers can use errors.Is.
var (
	ErrDecodeFault          = errors.New("illegal opcode")
	ErrDeadlock             = errors.New("halt with interrupts disabled")
	ErrBusFault             = errors.New("bus fault")
	ErrUnsupportedCartridge = errors.New("unsupported cartridge type")
	ErrROMTooSmall          = errors.New("rom image smaller than header")
)

// DecodeFault reports an opcode with no instruction behind it.
// PC points at the faulting byte.
type DecodeFault struct {
	PC     uint16
	Opcode uint8
}

func (f *DecodeFault) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02X at 0x%04X", f.Opcode, f.PC)
}

func (f *DecodeFault) Unwrap() error { return ErrDecodeFault }

// DeadlockError reports a HALT that no interrupt can ever wake.
type DeadlockError struct {
	PC  uint16
	IE  uint8
	IME bool
}

func (d *DeadlockError) Error() string {
	return fmt.Sprintf("cpu halted at 0x%04X with IE=0x%02X IME=%t", d.PC, d.IE, d.IME)
}

func (d *DeadlockError) Unwrap() error { return ErrDeadlock }

// BusFault reports an access the address decoder cannot satisfy, such as
// a bank select value that names no RAM bank or clock register.
type BusFault struct {
	Addr   uint16
	Value  uint8
	Reason string
}

func (b *BusFault) Error() string {
	return fmt.Sprintf("bus fault at 0x%04X (value 0x%02X): %s", b.Addr, b.Value, b.Reason)
}

func (b *BusFault) Unwrap() error { return ErrBusFault }
