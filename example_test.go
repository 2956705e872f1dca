// Copyright 2026 The LiquidCrystal-I2C Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package liquidcrystal_test

import (
	"log"
	"time"

	liquidcrystal "github.com/TeraWattHour/LiquidCrystal-I2C"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Drive a 20x4 display on the first available I²C bus.
func ExampleNewI2C() {
	// Make sure periph is initialized.
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}

	// Use i2creg I²C bus registry to find the first available I²C bus.
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatalf("failed to open I²C: %v", err)
	}
	defer bus.Close()

	lcd, err := liquidcrystal.NewI2C(bus, &liquidcrystal.Opts{
		Addr:      0x27,
		Rows:      4,
		Cols:      20,
		Backlight: true,
		LineWrap:  true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer lcd.Halt()

	_, _ = lcd.WriteString("lorem ipsum dolor sit amet")
	time.Sleep(5 * time.Second)

	_ = lcd.MoveTo(4, 1)
	_ = lcd.Cursor(display.CursorUnderline, display.CursorBlink)
	_, _ = lcd.WriteString("> ")
	time.Sleep(5 * time.Second)
}

// Upload a custom glyph and print it.
func ExampleDev_CreateChar() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	lcd, err := liquidcrystal.NewI2C(bus, nil)
	if err != nil {
		log.Fatal(err)
	}

	// A 5x8 heart.
	heart := [8]byte{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}
	if err := lcd.CreateChar(0, heart); err != nil {
		log.Fatal(err)
	}
	_, _ = lcd.Write([]byte{0x00})
	_, _ = lcd.WriteString(" Go")
	time.Sleep(5 * time.Second)
	_ = lcd.Halt()
}
