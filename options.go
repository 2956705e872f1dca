// Copyright 2026 The LiquidCrystal-I2C Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package liquidcrystal

import (
	"fmt"
	"time"
)

// Opts holds the display configuration.
type Opts struct {
	// Addr is the 7-bit I²C address of the backpack. Zero selects the
	// common default of 0x27. PCF8574 parts answer on 0x20-0x27,
	// PCF8574A parts on 0x38-0x3f.
	Addr uint16
	// Rows and Cols describe the display geometry. Character modules
	// come in 1 to 4 rows of up to 40 columns.
	Rows int
	Cols int
	// Dots5x10 selects the taller 5x10 font. Only one-line modules
	// support it.
	Dots5x10 bool
	// Backlight is the initial backlight state.
	Backlight bool
	// LineWrap enables the tracked cursor, see Dev.SetLineWrap.
	LineWrap bool
	// CharDelay adds an extra pause after every data character for
	// modules that drop characters at full bus speed.
	CharDelay time.Duration
}

// DefaultOpts is for the ubiquitous 16x2 module with a backpack at 0x27.
var DefaultOpts = Opts{
	Addr:      0x27,
	Rows:      2,
	Cols:      16,
	Backlight: true,
}

func (o *Opts) i2cAddr() (uint16, error) {
	switch {
	case o.Addr == 0:
		return DefaultOpts.Addr, nil
	case o.Addr >= 0x20 && o.Addr <= 0x27: // PCF8574
		return o.Addr, nil
	case o.Addr >= 0x38 && o.Addr <= 0x3f: // PCF8574A
		return o.Addr, nil
	default:
		return 0, fmt.Errorf("address 0x%02x is not reachable by a PCF8574 backpack", o.Addr)
	}
}

func (o *Opts) geometry() (rows, cols int) {
	rows, cols = o.Rows, o.Cols
	if rows == 0 {
		rows = DefaultOpts.Rows
	}
	if cols == 0 {
		cols = DefaultOpts.Cols
	}
	if rows < 1 {
		rows = 1
	} else if rows > 4 {
		rows = 4
	}
	if cols < 1 {
		cols = 1
	} else if cols > 40 {
		cols = 40
	}
	return rows, cols
}
