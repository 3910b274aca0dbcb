package emu

import "fmt"

// Memory holds every banked storage array and the bank select registers.
// Bank selects never touch the arrays themselves.
type Memory struct {
	cart *Cartridge

	rom    []uint8 // romBanks * 16KB
	extRAM []uint8 // extRAMBanks * 8KB
	wram   []uint8 // wramBanks * 4KB
	vram   []uint8 // vramBanks * 8KB
	oam    [0xA0]uint8
	hram   [0x7F]uint8
	rtc    RTC

	boot       []uint8
	bootActive bool

	romBanks    int
	extRAMBanks int
	wramBanks   int
	vramBanks   int

	romSelect  int   // ROM bank register(s) as written, zero rule applied
	ramSelect  uint8 // Last value written to 0x4000-0x5FFF
	ramEnabled bool
	bankMode   bool // MBC1 mode register: upper bits also bank 0x0000 and RAM
	rumble     bool // Motor bit of rumble carts

	// Banks currently mapped, derived from the registers by mapROM.
	romBank  int // 0x4000-0x7FFF
	romBank0 int // 0x0000-0x3FFF
	wramBank   int // Bank mapped at 0xD000-0xDFFF, never 0
	vramBank   int
}

// NewMemory allocates banks for the cartridge. CGB mode gets eight WRAM
// banks and two VRAM banks.
func NewMemory(rom []byte, cart *Cartridge, cgb bool) *Memory {
	m := &Memory{cart: cart}

	m.romBanks = cart.ROMBanks
	if have := (len(rom) + romBankSize - 1) / romBankSize; have > m.romBanks {
		m.romBanks = have
	}
	m.rom = make([]uint8, m.romBanks*romBankSize)
	for i := copy(m.rom, rom); i < len(m.rom); i++ {
		m.rom[i] = 0xFF
	}

	m.extRAMBanks = cart.ExtRAMBanks
	m.extRAM = make([]uint8, m.extRAMBanks*extRAMBankSize)

	m.wramBanks, m.vramBanks = 2, 1
	if cgb {
		m.wramBanks, m.vramBanks = 8, 2
	}
	m.wram = make([]uint8, m.wramBanks*wramBankSize)
	m.vram = make([]uint8, m.vramBanks*vramBankSize)

	m.Reset()
	return m
}

// Reset restores bank selects and clears volatile memory. Battery RAM and
// the clock are kept.
func (m *Memory) Reset() {
	m.romSelect = 1
	m.ramSelect = 0
	m.bankMode = false
	m.rumble = false
	m.mapROM()
	m.wramBank = 1
	m.vramBank = 0
	m.ramEnabled = m.cart.Features.MBC == 0
	m.rtc.latchArm = 0x01
	clear(m.wram)
	clear(m.vram)
	clear(m.oam[:])
	clear(m.hram[:])
	m.bootActive = len(m.boot) > 0
}

// ----------------------------------------------------------------------------
// Cartridge space: 0x0000-0x7FFF and 0xA000-0xBFFF
// ----------------------------------------------------------------------------

func (m *Memory) readROM(addr uint16) uint8 {
	if m.bootActive && m.inBoot(addr) {
		return m.boot[addr]
	}
	if addr < 0x4000 {
		return m.rom[m.romBank0*romBankSize+int(addr)]
	}
	return m.rom[m.romBank*romBankSize+int(addr-0x4000)]
}

// inBoot reports whether addr is covered by the boot ROM overlay. A CGB
// boot image also overlays 0x0200-0x08FF, leaving the header visible.
func (m *Memory) inBoot(addr uint16) bool {
	if addr < 0x100 {
		return int(addr) < len(m.boot)
	}
	return addr >= 0x200 && int(addr) < len(m.boot)
}

// writeControl handles writes into ROM space. Carts without a controller
// ignore them.
func (m *Memory) writeControl(addr uint16, v uint8) *BusFault {
	var fault *BusFault
	switch m.cart.Features.MBC {
	case 1:
		m.writeMBC1(addr, v)
	case 3:
		fault = m.writeMBC3(addr, v)
	case 5:
		fault = m.writeMBC5(addr, v)
	default:
		return nil
	}
	m.mapROM()
	return fault
}

// writeMBC1 drives a 5-bit ROM register, a 2-bit register shared by the
// upper ROM bits and the RAM bank, and the mode bit.
func (m *Memory) writeMBC1(addr uint16, v uint8) {
	switch addr >> 13 {
	case 0:
		m.ramEnabled = v&0x0F == 0x0A
	case 1:
		m.romSelect = int(v & 0x1F)
		if m.romSelect == 0 {
			m.romSelect = 1
		}
	case 2:
		m.ramSelect = v & 0x03
	case 3:
		m.bankMode = v&0x01 != 0
	}
}

// writeMBC3 drives a 7-bit ROM register, the RAM bank or clock register
// select and the clock latch.
func (m *Memory) writeMBC3(addr uint16, v uint8) *BusFault {
	switch addr >> 13 {
	case 0:
		m.ramEnabled = v&0x0F == 0x0A
	case 1:
		m.romSelect = int(v & 0x7F)
		if m.romSelect == 0 {
			m.romSelect = 1
		}
	case 2:
		return m.selectRAM(addr, v)
	case 3:
		if m.cart.Features.RTC {
			m.rtc.WriteLatch(v)
		}
	}
	return nil
}

// writeMBC5 drives a 9-bit ROM register split over 2000-2FFF (low eight
// bits) and 3000-3FFF (bit 8), and a 4-bit RAM select. Bank 0 is a valid
// ROM selection. Rumble carts use RAM select bit 3 for the motor.
func (m *Memory) writeMBC5(addr uint16, v uint8) *BusFault {
	switch {
	case addr < 0x2000:
		m.ramEnabled = v&0x0F == 0x0A
	case addr < 0x3000:
		m.romSelect = m.romSelect&0x100 | int(v)
	case addr < 0x4000:
		m.romSelect = m.romSelect&0xFF | int(v&0x01)<<8
	case addr < 0x6000:
		v &= 0x0F
		if m.cart.Features.Rumble {
			m.rumble = v&0x08 != 0
			v &= 0x07
		}
		return m.selectRAM(addr, v)
	}
	return nil
}

// mapROM derives the mapped ROM banks from the registers. Bank numbers
// wrap at the cartridge size since unused address lines are not wired.
func (m *Memory) mapROM() {
	n := m.romSelect
	m.romBank0 = 0
	if m.cart.Features.MBC == 1 {
		n |= int(m.ramSelect) << 5
		if m.bankMode {
			m.romBank0 = (int(m.ramSelect) << 5) % m.romBanks
		}
	}
	m.romBank = n % m.romBanks
}

// selectRAM checks a RAM select on controllers where every value names a
// distinct bank or clock register. Naming one the cartridge lacks is a
// bus fault; bank 0 is always accepted.
func (m *Memory) selectRAM(addr uint16, v uint8) *BusFault {
	switch {
	case m.cart.Features.RTC && v >= 0x08:
		if v > 0x0C {
			return &BusFault{Addr: addr, Value: v, Reason: "no clock register for select value"}
		}
	case v != 0 && int(v) >= m.extRAMBanks:
		return &BusFault{Addr: addr, Value: v, Reason: "no RAM bank or clock register for select value"}
	}
	m.ramSelect = v
	return nil
}

// ramBank returns the external RAM bank mapped at 0xA000. MBC1 only
// banks RAM in mode 1.
func (m *Memory) ramBank() int {
	if m.cart.Features.MBC == 1 && !m.bankMode {
		return 0
	}
	return int(m.ramSelect) % m.extRAMBanks
}

// Rumble reports whether a rumble cart has its motor switched on.
func (m *Memory) Rumble() bool { return m.rumble }

func (m *Memory) readExt(addr uint16) uint8 {
	if !m.ramEnabled {
		return 0xFF
	}
	if m.cart.Features.RTC && m.ramSelect >= 0x08 {
		return m.rtc.Read(int(m.ramSelect - 0x08))
	}
	if m.extRAMBanks == 0 {
		return 0xFF
	}
	return m.extRAM[m.extOffset(addr)]
}

func (m *Memory) writeExt(addr uint16, v uint8) {
	if !m.ramEnabled {
		return
	}
	if m.cart.Features.RTC && m.ramSelect >= 0x08 {
		m.rtc.Write(int(m.ramSelect-0x08), v)
		return
	}
	if m.extRAMBanks == 0 {
		return
	}
	m.extRAM[m.extOffset(addr)] = v
}

func (m *Memory) extOffset(addr uint16) int {
	return m.ramBank()*extRAMBankSize + int(addr-0xA000)
}

// ----------------------------------------------------------------------------
// Console RAM
// ----------------------------------------------------------------------------

func (m *Memory) readVRAM(addr uint16) uint8 {
	return m.vram[m.vramBank*vramBankSize+int(addr-0x8000)]
}

func (m *Memory) writeVRAM(addr uint16, v uint8) {
	m.vram[m.vramBank*vramBankSize+int(addr-0x8000)] = v
}

// wramOffset maps 0xC000-0xDFFF onto the WRAM array.
func (m *Memory) wramOffset(addr uint16) int {
	if addr < 0xD000 {
		return int(addr - 0xC000)
	}
	return m.wramBank*wramBankSize + int(addr-0xD000)
}

func (m *Memory) selectVRAMBank(v uint8) {
	m.vramBank = int(v&0x01) % m.vramBanks
}

func (m *Memory) selectWRAMBank(v uint8) {
	n := int(v & 0x07)
	if n == 0 {
		n = 1
	}
	m.wramBank = n % m.wramBanks
	if m.wramBank == 0 {
		m.wramBank = 1
	}
}

// VRAMBank returns the raw contents of a VRAM bank for the renderer.
func (m *Memory) VRAMBank(n int) []uint8 {
	if n >= m.vramBanks {
		return nil
	}
	return m.vram[n*vramBankSize : (n+1)*vramBankSize]
}

// OAM returns the sprite attribute table.
func (m *Memory) OAM() []uint8 {
	return m.oam[:]
}

// ROMBank returns the bank mapped at 0x4000-0x7FFF.
func (m *Memory) ROMBank() int { return m.romBank }

// WRAMBank returns the bank mapped at 0xD000-0xDFFF.
func (m *Memory) WRAMBank() int { return m.wramBank }

// GetROMCRC32 returns the CRC32 of the loaded ROM image.
func (m *Memory) GetROMCRC32() uint32 {
	return m.cart.CRC32
}

func (m *Memory) String() string {
	return fmt.Sprintf("ROM %d/%d WRAM %d/%d VRAM %d/%d RAM sel 0x%02X",
		m.romBank, m.romBanks, m.wramBank, m.wramBanks, m.vramBank, m.vramBanks, m.ramSelect)
}
