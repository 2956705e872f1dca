// Copyright 2026 The LiquidCrystal-I2C Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcddemo exercises an HD44780 display behind a PCF8574 backpack. With
// -emulate it runs against the built-in emulator and renders the screen
// to the terminal, so no hardware is needed.
package main

import (
	"flag"
	"image/png"
	"os"
	"time"

	liquidcrystal "github.com/TeraWattHour/LiquidCrystal-I2C"
	"github.com/TeraWattHour/LiquidCrystal-I2C/emulator"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var (
	busName = flag.String("bus", "", "I²C bus name (see i2creg), empty selects the first available")
	addr    = flag.Uint("addr", 0x27, "backpack I²C address")
	rows    = flag.Int("rows", 2, "display rows")
	cols    = flag.Int("cols", 16, "display columns")
	text    = flag.String("text", "Hello from Go!", "text to display")
	emulate = flag.Bool("emulate", false, "run against the built-in emulator instead of hardware")
	pngPath = flag.String("png", "", "with -emulate, write a PNG snapshot to this file")
	wrap    = flag.Bool("wrap", true, "wrap text at the display edge")
	verbose = flag.Bool("v", false, "verbose logging")
)

// degree is a 5x8 ° glyph for the demo readout.
var degree = [8]byte{0x06, 0x09, 0x09, 0x06, 0x00, 0x00, 0x00, 0x00}

func mainImpl() error {
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	var bus i2c.Bus
	var emu *emulator.LCD
	if *emulate {
		emu = emulator.New(uint16(*addr), *rows, *cols)
		bus = emu
		log.WithField("display", emu.String()).Debug("using emulated bus")
	} else {
		if _, err := host.Init(); err != nil {
			return err
		}
		b, err := i2creg.Open(*busName)
		if err != nil {
			return err
		}
		defer b.Close()
		bus = b
		log.WithField("bus", b.String()).Debug("opened I²C bus")
	}

	lcd, err := liquidcrystal.NewI2C(bus, &liquidcrystal.Opts{
		Addr:      uint16(*addr),
		Rows:      *rows,
		Cols:      *cols,
		Backlight: true,
		LineWrap:  *wrap,
	})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"display": lcd.String(),
		"addr":    *addr,
	}).Info("display initialized")

	if _, err := lcd.WriteString(*text); err != nil {
		return err
	}
	if *rows > 1 {
		if err := lcd.CreateChar(0, degree); err != nil {
			return err
		}
		if err := lcd.MoveTo(2, 1); err != nil {
			return err
		}
		if _, err := lcd.Write([]byte{'2', '3', 0x00, 'C'}); err != nil {
			return err
		}
	}
	if err := lcd.Cursor(display.CursorUnderline); err != nil {
		return err
	}
	log.Debug("demo content written")

	if emu != nil {
		if err := emulator.NewTerminalRenderer(nil).Render(emu); err != nil {
			return err
		}
		if *pngPath != "" {
			img, err := emu.Image(nil)
			if err != nil {
				return err
			}
			f, err := os.Create(*pngPath)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := png.Encode(f, img); err != nil {
				return err
			}
			log.WithField("path", *pngPath).Info("wrote snapshot")
		}
		return nil
	}

	time.Sleep(5 * time.Second)
	return lcd.Halt()
}

func main() {
	if err := mainImpl(); err != nil {
		log.Fatal(err)
	}
}
