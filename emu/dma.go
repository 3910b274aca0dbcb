package emu

// oamDMA copies 160 bytes from page v into OAM. The transfer completes
// immediately.
func (b *Bus) oamDMA(v uint8) {
	src := uint16(v) << 8
	for i := uint16(0); i < uint16(len(b.mem.oam)); i++ {
		b.mem.oam[i] = b.Read(src + i)
	}
}

// startHDMA handles HDMA5 writes. Bit 7 clear runs a general purpose
// transfer at once; bit 7 set arms an HBlank transfer of one 16-byte block
// per HBlank. Writing bit 7 clear during an HBlank transfer cancels it.
func (b *Bus) startHDMA(v uint8) {
	if b.io.hdmaActive && v&0x80 == 0 {
		b.io.hdmaActive = false
		b.io.hdmaLen |= 0x80
		return
	}

	b.io.hdmaLen = v & 0x7F
	if v&0x80 != 0 {
		b.io.hdmaActive = true
		return
	}

	for {
		b.hdmaBlock()
		if b.io.hdmaLen == 0xFF {
			break
		}
	}
}

// hdmaStep runs one HBlank block if a transfer is armed.
func (b *Bus) hdmaStep() {
	if !b.io.hdmaActive {
		return
	}
	b.hdmaBlock()
	if b.io.hdmaLen == 0xFF {
		b.io.hdmaActive = false
	}
}

func (b *Bus) hdmaBlock() {
	for i := 0; i < 0x10; i++ {
		v := b.Read(b.io.hdmaSrc)
		b.mem.writeVRAM(0x8000|b.io.hdmaDst&0x1FFF, v)
		b.io.hdmaSrc++
		b.io.hdmaDst++
	}
	b.io.hdmaLen--
}
