// Copyright 2026 The LiquidCrystal-I2C Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package emulator is a software stand-in for a PCF8574 backpack wired
// to an HD44780 character LCD. It implements i2c.Bus, decodes the
// nibble traffic a driver puts on the expander pins and keeps the full
// controller state: DDRAM, CGRAM, address counter, display shift,
// entry mode, display control and backlight.
//
// It exists so display code can be developed and tested on a host
// machine with no hardware attached. Snapshots of the screen can be
// rendered to a terminal or into an image, see render.go.
package emulator

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Expander bit assignment, matching the common PCF8574 backpacks.
const (
	pinRS        byte = 0x01
	pinEnable    byte = 0x04
	pinBacklight byte = 0x08
)

// Entry mode bits.
const (
	entryIncrement byte = 0x02
	entryShift     byte = 0x01
)

// Each DDRAM line is 40 bytes; the display is a window into it.
const lineLen = 40

// LCD is the emulated backpack+display pair.
type LCD struct {
	addr uint16
	rows int
	cols int

	mu sync.Mutex
	// Wire decode state.
	prev     byte
	mode4    bool
	haveHigh bool
	high     byte
	highRS   bool
	// Controller state.
	ddram     [2][lineLen]byte
	cgram     [8][8]byte
	ac        byte
	inCGRAM   bool
	shift     int
	entryMode byte
	control   byte
	backlight bool
}

// New returns an emulated display at the given address. rows is 1, 2 or
// 4 and cols at most 40, like the real modules.
func New(addr uint16, rows, cols int) *LCD {
	e := &LCD{
		addr:      addr,
		rows:      rows,
		cols:      cols,
		entryMode: entryIncrement,
	}
	e.blank()
	return e
}

func (e *LCD) blank() {
	for l := range e.ddram {
		for i := range e.ddram[l] {
			e.ddram[l][i] = ' '
		}
	}
}

func (e *LCD) String() string {
	return fmt.Sprintf("emulator: %dx%d@%#02x", e.cols, e.rows, e.addr)
}

// SetSpeed implements i2c.Bus. The emulated bus has no speed limit.
func (e *LCD) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx implements i2c.Bus. Writes feed the expander decode; reads fail
// like they would on a write-only backpack.
func (e *LCD) Tx(addr uint16, w, r []byte) error {
	if addr != e.addr {
		return fmt.Errorf("emulator: no device at %#02x", addr)
	}
	if len(r) != 0 {
		return fmt.Errorf("emulator: %s is write-only", e)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, b := range w {
		e.observe(b)
	}
	return nil
}

// observe processes one byte appearing on the expander pins. Data is
// latched on the falling edge of EN, using the levels that were stable
// while EN was high.
func (e *LCD) observe(b byte) {
	e.backlight = b&pinBacklight != 0
	if e.prev&pinEnable != 0 && b&pinEnable == 0 {
		e.latch(e.prev>>4, e.prev&pinRS != 0)
	}
	e.prev = b
}

func (e *LCD) latch(nib byte, rs bool) {
	if !e.mode4 {
		// Fresh out of reset the controller runs its 8-bit interface, so
		// a single latch carries a command's high nibble. The driver
		// clocks 0x3 three times, then 0x2 to switch to 4-bit transfers.
		if !rs && nib == 0x2 {
			e.mode4 = true
			e.haveHigh = false
		}
		return
	}
	if !e.haveHigh {
		e.high, e.highRS, e.haveHigh = nib, rs, true
		return
	}
	e.haveHigh = false
	value := e.high<<4 | nib
	if e.highRS && rs {
		e.writeData(value)
	} else {
		e.execute(value)
	}
}

func (e *LCD) execute(cmd byte) {
	switch {
	case cmd&0x80 != 0: // set DDRAM address
		e.ac = cmd & 0x7f
		e.inCGRAM = false
	case cmd&0x40 != 0: // set CGRAM address
		e.ac = cmd & 0x3f
		e.inCGRAM = true
	case cmd&0x20 != 0: // function set, interface width fixed by the handshake
	case cmd&0x10 != 0: // cursor or display shift
		right := cmd&0x04 != 0
		if cmd&0x08 != 0 {
			if right {
				e.shift = (e.shift + lineLen - 1) % lineLen
			} else {
				e.shift = (e.shift + 1) % lineLen
			}
		} else {
			e.moveAC(right)
		}
	case cmd&0x08 != 0: // display control
		e.control = cmd & 0x07
	case cmd&0x04 != 0: // entry mode set
		e.entryMode = cmd & 0x03
	case cmd&0x02 != 0: // return home
		e.ac = 0
		e.inCGRAM = false
		e.shift = 0
	case cmd&0x01 != 0: // clear display
		e.blank()
		e.ac = 0
		e.inCGRAM = false
		e.shift = 0
		e.entryMode |= entryIncrement
	}
}

func (e *LCD) writeData(value byte) {
	if e.inCGRAM {
		e.cgram[(e.ac>>3)&0x07][e.ac&0x07] = value & 0x1f
		e.ac = (e.ac + 1) & 0x3f
		return
	}
	if line, idx, ok := addrToCell(e.ac); ok {
		e.ddram[line][idx] = value
	}
	inc := e.entryMode&entryIncrement != 0
	e.moveAC(inc)
	if e.entryMode&entryShift != 0 {
		// Autoscroll: the display shifts instead of the cursor moving
		// on screen.
		if inc {
			e.shift = (e.shift + 1) % lineLen
		} else {
			e.shift = (e.shift + lineLen - 1) % lineLen
		}
	}
}

// moveAC advances the DDRAM address counter with the documented
// line-to-line wrap.
func (e *LCD) moveAC(forward bool) {
	if e.inCGRAM {
		if forward {
			e.ac = (e.ac + 1) & 0x3f
		} else {
			e.ac = (e.ac - 1) & 0x3f
		}
		return
	}
	if forward {
		switch e.ac {
		case 0x27:
			e.ac = 0x40
		case 0x67:
			e.ac = 0x00
		default:
			e.ac++
		}
	} else {
		switch e.ac {
		case 0x40:
			e.ac = 0x27
		case 0x00:
			e.ac = 0x67
		default:
			e.ac--
		}
	}
}

func addrToCell(ac byte) (line, idx int, ok bool) {
	switch {
	case ac <= 0x27:
		return 0, int(ac), true
	case ac >= 0x40 && ac <= 0x67:
		return 1, int(ac - 0x40), true
	}
	return 0, 0, false
}

// lineBase maps a visible row to its DDRAM line and base offset. Rows 2
// and 3 of 4-row modules continue lines 0 and 1 after cols characters,
// which is why their DDRAM offsets are 0x00+cols and 0x40+cols.
func (e *LCD) lineBase(row int) (line, base int) {
	return row % 2, (row / 2) * e.cols
}

// Cell returns the byte shown at a 0-based position, accounting for the
// display shift. Values 0-7 refer to CGRAM glyphs.
func (e *LCD) Cell(row, col int) byte {
	if row < 0 || row >= e.rows || col < 0 || col >= e.cols {
		return ' '
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cell(row, col)
}

func (e *LCD) cell(row, col int) byte {
	line, base := e.lineBase(row)
	return e.ddram[line][(base+col+e.shift)%lineLen]
}

// Line returns the visible content of a 0-based row, padded with spaces.
func (e *LCD) Line(row int) string {
	if row < 0 || row >= e.rows {
		return ""
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	b := make([]byte, e.cols)
	for col := range b {
		b[col] = e.cell(row, col)
	}
	return string(b)
}

// CursorPos returns the 0-based position of the cursor, or (-1, -1)
// when the address counter points off screen or into CGRAM.
func (e *LCD) CursorPos() (row, col int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inCGRAM {
		return -1, -1
	}
	line, idx, ok := addrToCell(e.ac)
	if !ok {
		return -1, -1
	}
	k := (idx - e.shift + lineLen) % lineLen
	if k < e.cols {
		return line, k
	}
	if e.rows > 2 && k < 2*e.cols {
		return line + 2, k - e.cols
	}
	return -1, -1
}

// Glyph returns a CGRAM glyph as uploaded by CreateChar.
func (e *LCD) Glyph(slot int) [8]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cgram[slot&0x07]
}

// Backlight reports the state of the backlight line.
func (e *LCD) Backlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backlight
}

// DisplayOn reports the D bit of the display control register.
func (e *LCD) DisplayOn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.control&0x04 != 0
}

// CursorVisible reports the C bit of the display control register.
func (e *LCD) CursorVisible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.control&0x02 != 0
}

// CursorBlink reports the B bit of the display control register.
func (e *LCD) CursorBlink() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.control&0x01 != 0
}

// Rows returns the number of visible rows.
func (e *LCD) Rows() int {
	return e.rows
}

// Cols returns the number of visible columns.
func (e *LCD) Cols() int {
	return e.cols
}

var _ i2c.Bus = &LCD{}
