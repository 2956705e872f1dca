// Copyright 2026 The LiquidCrystal-I2C Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package emulator_test

import (
	"bytes"
	"strings"
	"testing"

	liquidcrystal "github.com/TeraWattHour/LiquidCrystal-I2C"
	"github.com/TeraWattHour/LiquidCrystal-I2C/emulator"
	"periph.io/x/conn/v3/display"
)

func getDev(t *testing.T, rows, cols int, opts *liquidcrystal.Opts) (*liquidcrystal.Dev, *emulator.LCD) {
	t.Helper()
	if opts == nil {
		opts = &liquidcrystal.Opts{Rows: rows, Cols: cols, Backlight: true}
	}
	e := emulator.New(0x27, rows, cols)
	dev, err := liquidcrystal.NewI2C(e, opts)
	if err != nil {
		t.Fatal(err)
	}
	return dev, e
}

func TestInit(t *testing.T) {
	_, e := getDev(t, 2, 16, nil)
	if !e.DisplayOn() {
		t.Error("display off after init")
	}
	if !e.Backlight() {
		t.Error("backlight off after init")
	}
	if e.CursorVisible() || e.CursorBlink() {
		t.Error("cursor visible after init")
	}
	for row := range 2 {
		if e.Line(row) != strings.Repeat(" ", 16) {
			t.Errorf("row %d not blank: %q", row, e.Line(row))
		}
	}
	if row, col := e.CursorPos(); row != 0 || col != 0 {
		t.Errorf("cursor at (%d,%d), want (0,0)", row, col)
	}
}

func TestWriteText(t *testing.T) {
	dev, e := getDev(t, 2, 16, nil)
	if _, err := dev.WriteString("Hello"); err != nil {
		t.Fatal(err)
	}
	if got := e.Line(0); got != "Hello"+strings.Repeat(" ", 11) {
		t.Errorf("Line(0) = %q", got)
	}
	if row, col := e.CursorPos(); row != 0 || col != 5 {
		t.Errorf("cursor at (%d,%d), want (0,5)", row, col)
	}
	if err := dev.MoveTo(2, 4); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.WriteString("there"); err != nil {
		t.Fatal(err)
	}
	if got := e.Line(1); got != "   there"+strings.Repeat(" ", 8) {
		t.Errorf("Line(1) = %q", got)
	}
}

func TestFourRowAddressing(t *testing.T) {
	dev, e := getDev(t, 4, 20, &liquidcrystal.Opts{Rows: 4, Cols: 20})
	for row := 1; row <= 4; row++ {
		if err := dev.MoveTo(row, row); err != nil {
			t.Fatal(err)
		}
		if _, err := dev.WriteString("x"); err != nil {
			t.Fatal(err)
		}
	}
	for row := range 4 {
		if got := e.Cell(row, row); got != 'x' {
			t.Errorf("Cell(%d,%d) = %q, want 'x'", row, row, got)
		}
	}
}

func TestLineWrap(t *testing.T) {
	dev, e := getDev(t, 2, 16, &liquidcrystal.Opts{Rows: 2, Cols: 16, LineWrap: true})
	if _, err := dev.WriteString("0123456789abcdefgh"); err != nil {
		t.Fatal(err)
	}
	if got := e.Line(0); got != "0123456789abcdef" {
		t.Errorf("Line(0) = %q", got)
	}
	if got := e.Line(1); got != "gh"+strings.Repeat(" ", 14) {
		t.Errorf("Line(1) = %q", got)
	}

	if err := dev.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.WriteString("a\nb"); err != nil {
		t.Fatal(err)
	}
	if got := e.Cell(1, 0); got != 'b' {
		t.Errorf("Cell(1,0) = %q, want 'b'", got)
	}
}

func TestClear(t *testing.T) {
	dev, e := getDev(t, 2, 16, nil)
	_, _ = dev.WriteString("junk")
	if err := dev.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := e.Line(0); got != strings.Repeat(" ", 16) {
		t.Errorf("Line(0) = %q after Clear", got)
	}
	if !e.Backlight() {
		t.Error("Clear turned the backlight off")
	}
}

func TestBacklightAndDisplay(t *testing.T) {
	dev, e := getDev(t, 2, 16, nil)
	if err := dev.Backlight(0); err != nil {
		t.Fatal(err)
	}
	if e.Backlight() {
		t.Error("backlight still on")
	}
	if err := dev.Backlight(0xff); err != nil {
		t.Fatal(err)
	}
	if !e.Backlight() {
		t.Error("backlight still off")
	}
	if err := dev.Display(false); err != nil {
		t.Fatal(err)
	}
	if e.DisplayOn() {
		t.Error("display still on")
	}
}

func TestCursorModes(t *testing.T) {
	dev, e := getDev(t, 2, 16, nil)
	if err := dev.Cursor(display.CursorUnderline, display.CursorBlink); err != nil {
		t.Fatal(err)
	}
	if !e.CursorVisible() || !e.CursorBlink() {
		t.Error("cursor flags not set")
	}
	if err := dev.Cursor(display.CursorOff); err != nil {
		t.Fatal(err)
	}
	if e.CursorVisible() || e.CursorBlink() {
		t.Error("cursor flags not cleared")
	}
}

func TestCreateChar(t *testing.T) {
	dev, e := getDev(t, 2, 16, nil)
	glyph := [8]byte{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0x00}
	if err := dev.CreateChar(3, glyph); err != nil {
		t.Fatal(err)
	}
	if got := e.Glyph(3); got != glyph {
		t.Errorf("Glyph(3) = %v, want %v", got, glyph)
	}
	if _, err := dev.Write([]byte{3}); err != nil {
		t.Fatal(err)
	}
	if got := e.Cell(0, 0); got != 3 {
		t.Errorf("Cell(0,0) = %d, want 3", got)
	}
}

func TestScroll(t *testing.T) {
	dev, e := getDev(t, 2, 16, nil)
	_, _ = dev.WriteString("Hello")
	if err := dev.ScrollLeft(); err != nil {
		t.Fatal(err)
	}
	if got := e.Line(0); !strings.HasPrefix(got, "ello") {
		t.Errorf("Line(0) = %q after ScrollLeft", got)
	}
	_ = dev.ScrollRight()
	_ = dev.ScrollRight()
	if got := e.Line(0); !strings.HasPrefix(got, " Hell") {
		t.Errorf("Line(0) = %q after ScrollRight", got)
	}
	if err := dev.Home(); err != nil {
		t.Fatal(err)
	}
	if got := e.Line(0); !strings.HasPrefix(got, "Hello") {
		t.Errorf("Line(0) = %q after Home", got)
	}
}

func TestAutoScroll(t *testing.T) {
	dev, e := getDev(t, 2, 16, nil)
	if err := dev.MoveTo(1, 16); err != nil {
		t.Fatal(err)
	}
	if err := dev.AutoScroll(true); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.WriteString("AB"); err != nil {
		t.Fatal(err)
	}
	if got := e.Line(0); !strings.Contains(got, "AB") {
		t.Errorf("Line(0) = %q, want it to contain \"AB\"", got)
	}
}

func TestWrongAddress(t *testing.T) {
	e := emulator.New(0x26, 2, 16)
	if _, err := liquidcrystal.NewI2C(e, nil); err == nil {
		t.Fatal("expected an address mismatch error")
	}
	if err := e.Tx(0x26, nil, make([]byte, 1)); err == nil {
		t.Fatal("expected an error reading from a write-only device")
	}
}

func TestTerminalRender(t *testing.T) {
	dev, e := getDev(t, 2, 16, nil)
	_, _ = dev.WriteString("Hello")
	var buf bytes.Buffer
	r := emulator.NewTerminalRenderer(&buf)
	if err := r.Render(e); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "|Hello           |") {
		t.Errorf("render output missing text:\n%s", out)
	}
	if !strings.Contains(out, "+----------------+") {
		t.Errorf("render output missing frame:\n%s", out)
	}
}

func TestImage(t *testing.T) {
	dev, e := getDev(t, 2, 16, nil)
	_, _ = dev.WriteString("Hi")
	glyph := [8]byte{0x04, 0x0e, 0x1f, 0x04, 0x04, 0x04, 0x04, 0x00}
	_ = dev.CreateChar(0, glyph)
	_, _ = dev.Write([]byte{0})
	_ = dev.Cursor(display.CursorUnderline)

	img, err := e.Image(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := 16*12 + 16
	if img.Bounds().Dx() != want {
		t.Errorf("width = %d, want %d", img.Bounds().Dx(), want)
	}
	img, err = e.Image(&emulator.ImageOptions{CellWidth: 8, CellHeight: 12})
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 8*16+16 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}
