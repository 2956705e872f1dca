// Copyright 2026 The LiquidCrystal-I2C Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package liquidcrystal drives HD44780 compatible character LCD displays
// connected through a PCF8574 style I²C I/O expander backpack.
//
// The backpack multiplexes the LCD's 4-bit data bus plus the RS, R/W, EN
// and backlight lines onto the expander's 8 output pins. Every command or
// data byte goes out as two nibbles, each latched by strobing EN. The
// controller is write-only through these backpacks, so the driver keeps a
// mirror of the entry mode, display control and backlight registers and
// performs all option changes as read-modify-write against the mirror.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
//
// Backpack usage is described in
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
package liquidcrystal

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
)

const packageName = "liquidcrystal"

// HD44780 instruction set.
const (
	cmdClearDisplay   byte = 0x01
	cmdReturnHome     byte = 0x02
	cmdEntryModeSet   byte = 0x04
	cmdDisplayControl byte = 0x08
	cmdCursorShift    byte = 0x10
	cmdFunctionSet    byte = 0x20
	cmdSetCGRAMAddr   byte = 0x40
	cmdSetDDRAMAddr   byte = 0x80
)

// Flags for cmdEntryModeSet.
const (
	entryLeft           byte = 0x02
	entryShiftIncrement byte = 0x01
)

// Flags for cmdDisplayControl.
const (
	displayOn byte = 0x04
	cursorOn  byte = 0x02
	blinkOn   byte = 0x01
)

// Flags for cmdCursorShift.
const (
	displayMove byte = 0x08
	moveRight   byte = 0x04
)

// Flags for cmdFunctionSet.
const (
	twoLine  byte = 0x08
	dots5x10 byte = 0x04
)

// Expander bit assignment on the common PCF8574 backpacks. D4-D7 occupy
// the high nibble.
const (
	pinRS        byte = 0x01
	pinRW        byte = 0x02
	pinEnable    byte = 0x04
	pinBacklight byte = 0x08
)

// Raw nibbles used during the power-on handshake, presented on D4-D7.
const (
	functionReset byte = 0x30
	function4Bit  byte = 0x20
)

// ErrNotImplemented is returned for operations the hardware cannot
// perform through this backpack.
var ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// Dev is a handle to an LCD behind a PCF8574 backpack.
//
// Implements display.TextDisplay and display.DisplayBacklight.
type Dev struct {
	rows    int
	cols    int
	offsets [4]byte

	mu sync.Mutex
	d  *i2c.Dev
	// Mirrors of the controller's write-only registers. They always hold
	// the last value latched into the corresponding register.
	displayFunction byte
	displayControl  byte
	displayMode     byte
	backlight       byte
	// Cursor position mirror, used for line wrapping.
	wrapLines bool
	row, col  int
	charDelay time.Duration
}

// NewI2C initializes the display behind the given bus and returns a
// handle ready for use. Use nil opts for a 16x2 at address 0x27.
//
// Initialization runs the documented power-on reset: three timed
// function-reset nibbles, the switch to the 4-bit interface, then
// function set, display control, clear and entry mode.
func NewI2C(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr, err := opts.i2cAddr()
	if err != nil {
		return nil, wrap(err)
	}
	rows, cols := opts.geometry()
	dev := &Dev{
		d:         &i2c.Dev{Bus: bus, Addr: addr},
		rows:      rows,
		cols:      cols,
		offsets:   [4]byte{0x00, 0x40, byte(cols), byte(0x40 + cols)},
		wrapLines: opts.LineWrap,
		charDelay: opts.CharDelay,
	}
	if rows > 1 {
		dev.displayFunction |= twoLine
	} else if opts.Dots5x10 {
		// The 5x10 font only exists on one-line modules.
		dev.displayFunction |= dots5x10
	}
	if opts.Backlight {
		dev.backlight = pinBacklight
	}
	if err := dev.init(); err != nil {
		return nil, wrap(err)
	}
	return dev, nil
}

func (dev *Dev) init() error {
	// Present the backlight mirror and let the controller finish its own
	// power-on reset.
	if err := dev.expanderWrite(0); err != nil {
		return err
	}
	time.Sleep(20 * time.Millisecond)

	// Three timed function resets, then the drop to the 4-bit interface.
	// Delays are the datasheet values rounded up to whole milliseconds.
	for range 2 {
		if err := dev.write4(functionReset); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := dev.write4(functionReset); err != nil {
		return err
	}
	time.Sleep(time.Millisecond)
	if err := dev.write4(function4Bit); err != nil {
		return err
	}
	time.Sleep(time.Millisecond)

	if err := dev.command(cmdFunctionSet | dev.displayFunction); err != nil {
		return err
	}
	dev.displayControl = displayOn
	if err := dev.command(cmdDisplayControl | dev.displayControl); err != nil {
		return err
	}
	if err := dev.Clear(); err != nil {
		return err
	}
	dev.displayMode = entryLeft
	if err := dev.command(cmdEntryModeSet | dev.displayMode); err != nil {
		return err
	}
	return dev.Home()
}

// Clear blanks the display and moves the cursor to the first position.
// The backlight mirror is not touched.
func (dev *Dev) Clear() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.row, dev.col = 0, 0
	if err := dev.command(cmdClearDisplay); err != nil {
		return wrap(err)
	}
	time.Sleep(2 * time.Millisecond)
	return nil
}

// Home moves the cursor to (MinRow(), MinCol()) and undoes any display
// shift.
func (dev *Dev) Home() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.row, dev.col = 0, 0
	if err := dev.command(cmdReturnHome); err != nil {
		return wrap(err)
	}
	time.Sleep(2 * time.Millisecond)
	return nil
}

// MoveTo moves the cursor to an arbitrary position. row and col are
// 1-based.
func (dev *Dev) MoveTo(row, col int) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if row < 1 || row > dev.rows || col < 1 || col > dev.cols {
		return fmt.Errorf("%s: MoveTo(%d,%d) out of range", packageName, row, col)
	}
	return wrap(dev.setCursor(row-1, col-1))
}

// setCursor issues the DDRAM address for a 0-based position and updates
// the position mirror.
func (dev *Dev) setCursor(row, col int) error {
	dev.row, dev.col = row, col
	return dev.command(cmdSetDDRAMAddr | (dev.offsets[row] + byte(col)))
}

// Move shifts the cursor one position forward or backward without
// writing to DDRAM.
func (dev *Dev) Move(dir display.CursorDirection) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	val := cmdCursorShift
	switch dir {
	case display.Backward:
	case display.Forward:
		val |= moveRight
	default:
		return ErrNotImplemented
	}
	return wrap(dev.command(val))
}

// ScrollLeft shifts the whole display contents one column to the left
// without changing DDRAM.
func (dev *Dev) ScrollLeft() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return wrap(dev.command(cmdCursorShift | displayMove))
}

// ScrollRight shifts the whole display contents one column to the right
// without changing DDRAM.
func (dev *Dev) ScrollRight() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return wrap(dev.command(cmdCursorShift | displayMove | moveRight))
}

// AutoScroll makes every written character shift the display so that the
// cursor keeps its on-screen position.
func (dev *Dev) AutoScroll(enabled bool) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if enabled {
		dev.displayMode |= entryShiftIncrement
	} else {
		dev.displayMode &^= entryShiftIncrement
	}
	return wrap(dev.command(cmdEntryModeSet | dev.displayMode))
}

// LeftToRight sets the text flow direction to left-to-right.
func (dev *Dev) LeftToRight() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.displayMode |= entryLeft
	return wrap(dev.command(cmdEntryModeSet | dev.displayMode))
}

// RightToLeft sets the text flow direction to right-to-left.
func (dev *Dev) RightToLeft() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.displayMode &^= entryLeft
	return wrap(dev.command(cmdEntryModeSet | dev.displayMode))
}

// Cursor sets the cursor mode. Multiple modes can be combined:
// Cursor(CursorUnderline, CursorBlink)
func (dev *Dev) Cursor(modes ...display.CursorMode) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			dev.displayControl &^= cursorOn | blinkOn
		case display.CursorUnderline:
			dev.displayControl |= cursorOn
		case display.CursorBlink, display.CursorBlock:
			dev.displayControl |= blinkOn
		default:
			return fmt.Errorf("%s: unexpected cursor mode: %d", packageName, mode)
		}
	}
	return wrap(dev.command(cmdDisplayControl | dev.displayControl))
}

// ShowCursor turns the underline cursor on or off without touching the
// blink setting.
func (dev *Dev) ShowCursor(on bool) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if on {
		dev.displayControl |= cursorOn
	} else {
		dev.displayControl &^= cursorOn
	}
	return wrap(dev.command(cmdDisplayControl | dev.displayControl))
}

// Blink turns cursor blinking on or off.
func (dev *Dev) Blink(on bool) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if on {
		dev.displayControl |= blinkOn
	} else {
		dev.displayControl &^= blinkOn
	}
	return wrap(dev.command(cmdDisplayControl | dev.displayControl))
}

// Display turns the display on or off. Contents and backlight are
// preserved while off.
func (dev *Dev) Display(on bool) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if on {
		dev.displayControl |= displayOn
	} else {
		dev.displayControl &^= displayOn
	}
	return wrap(dev.command(cmdDisplayControl | dev.displayControl))
}

// Backlight turns the backlight on (any non-zero intensity) or off. The
// backpack has a single switched LED line, so intensities are not
// graduated.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if intensity > 0 {
		dev.backlight = pinBacklight
	} else {
		dev.backlight = 0
	}
	return wrap(dev.expanderWrite(0))
}

// CreateChar stores a custom 5x8 glyph in one of the eight CGRAM slots.
// The glyph shows up wherever byte values 0-7 are written. The cursor is
// repositioned to where it was, so text writes can continue directly.
func (dev *Dev) CreateChar(slot byte, glyph [8]byte) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	slot &= 0x07
	if err := dev.command(cmdSetCGRAMAddr | slot<<3); err != nil {
		return wrap(err)
	}
	for _, b := range glyph {
		if err := dev.send(b, pinRS); err != nil {
			return wrap(err)
		}
	}
	// The address counter is left pointing at CGRAM; bring it back.
	return wrap(dev.setCursor(dev.row, dev.col))
}

// SetLineWrap enables or disables the tracked cursor. With it enabled,
// writes wrap to the next row at the display edge and '\n' advances a
// row, instead of vanishing into off-screen DDRAM.
func (dev *Dev) SetLineWrap(on bool) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.wrapLines = on
}

// Write sends data bytes to the display at the current cursor position.
func (dev *Dev) Write(p []byte) (int, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	n := 0
	for _, c := range p {
		if c == '\n' && dev.wrapLines {
			if err := dev.nextLine(); err != nil {
				return n, wrap(err)
			}
			n++
			continue
		}
		if err := dev.send(c, pinRS); err != nil {
			return n, wrap(err)
		}
		n++
		dev.col++
		if dev.wrapLines && dev.col >= dev.cols {
			if err := dev.nextLine(); err != nil {
				return n, wrap(err)
			}
		}
		if dev.charDelay > 0 {
			time.Sleep(dev.charDelay)
		}
	}
	return n, nil
}

// WriteString writes a string to the display.
func (dev *Dev) WriteString(text string) (int, error) {
	return dev.Write([]byte(text))
}

func (dev *Dev) nextLine() error {
	return dev.setCursor((dev.row+1)%dev.rows, 0)
}

// Rows returns the number of rows the display supports.
func (dev *Dev) Rows() int {
	return dev.rows
}

// Cols returns the number of columns the display supports.
func (dev *Dev) Cols() int {
	return dev.cols
}

// MinRow returns the min row position.
func (dev *Dev) MinRow() int {
	return 1
}

// MinCol returns the min column position.
func (dev *Dev) MinCol() int {
	return 1
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s{%s} Rows: %d, Cols: %d", packageName, dev.d, dev.rows, dev.cols)
}

// Halt clears the display and turns the display and backlight off.
func (dev *Dev) Halt() error {
	_ = dev.Clear()
	_ = dev.Display(false)
	return dev.Backlight(0)
}

// send latches a full byte as two nibbles. mode is 0 for instructions or
// pinRS for data.
func (dev *Dev) send(value, mode byte) error {
	if err := dev.write4(value&0xf0 | mode); err != nil {
		return err
	}
	return dev.write4(value<<4&0xf0 | mode)
}

func (dev *Dev) command(value byte) error {
	return dev.send(value, 0)
}

// write4 presents one nibble on D4-D7 and clocks it into the controller.
func (dev *Dev) write4(value byte) error {
	if err := dev.expanderWrite(value); err != nil {
		return err
	}
	return dev.pulseEnable(value)
}

// pulseEnable strobes EN with the data lines held stable. EN must stay
// high for at least 450ns and the controller needs 37us to settle after
// the falling edge.
func (dev *Dev) pulseEnable(value byte) error {
	if err := dev.expanderWrite(value | pinEnable); err != nil {
		return err
	}
	time.Sleep(time.Microsecond)
	if err := dev.expanderWrite(value &^ pinEnable); err != nil {
		return err
	}
	time.Sleep(50 * time.Microsecond)
	return nil
}

// expanderWrite puts one byte on the expander pins with the backlight
// mirror OR'd in.
func (dev *Dev) expanderWrite(value byte) error {
	return dev.d.Tx([]byte{value | dev.backlight}, nil)
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ conn.Resource = &Dev{}
