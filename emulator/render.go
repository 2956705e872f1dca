// Copyright 2026 The LiquidCrystal-I2C Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package emulator

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// TerminalRenderer prints snapshots of an emulated LCD to a terminal
// using ANSI color codes.
type TerminalRenderer struct {
	w       io.Writer
	palette ansi256.Palette

	buf bytes.Buffer
}

// NewTerminalRenderer returns a renderer writing to w. A nil w selects
// a colorable stdout.
func NewTerminalRenderer(w io.Writer) *TerminalRenderer {
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &TerminalRenderer{w: w, palette: *ansi256.Default}
}

// Render writes one framed snapshot of the screen, with a bar above it
// showing the backlight state.
func (r *TerminalRenderer) Render(e *LCD) error {
	bl := color.NRGBA{0x10, 0x10, 0x20, 0xff}
	if e.Backlight() {
		bl = color.NRGBA{0x40, 0x80, 0xff, 0xff}
	}
	r.buf.Reset()
	_, _ = r.buf.WriteString("\033[0m")
	for range e.cols + 2 {
		_, _ = io.WriteString(&r.buf, r.palette.Block(bl))
	}
	_, _ = r.buf.WriteString("\033[0m\n")
	edge := "+" + strings.Repeat("-", e.cols) + "+\n"
	_, _ = r.buf.WriteString(edge)
	for row := 0; row < e.rows; row++ {
		_, _ = r.buf.WriteString("|")
		_, _ = r.buf.WriteString(printable(e.Line(row)))
		_, _ = r.buf.WriteString("|\n")
	}
	_, _ = r.buf.WriteString(edge)
	_, err := r.buf.WriteTo(r.w)
	return err
}

// printable substitutes bytes the terminal can't show: CGRAM glyph
// references become '*', everything else non-ASCII a space.
func printable(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c < 0x08:
			b[i] = '*'
		case c < 0x20 || c > 0x7e:
			b[i] = ' '
		}
	}
	return string(b)
}

// ImageOptions adjusts Image rendering.
type ImageOptions struct {
	// CellWidth and CellHeight are the pixel size of one character
	// cell. The defaults fit the built-in 7x13 bitmap face.
	CellWidth  int
	CellHeight int
	// TTF, when set, is a TrueType font to render with instead of the
	// bitmap face.
	TTF []byte
	// FontSize is the TrueType point size. Ignored without TTF.
	FontSize float64
}

const imageMargin = 8

// Image draws the screen into an image, suitable for snapshots in
// development tooling. CGRAM glyphs are drawn from their uploaded dot
// patterns.
func (e *LCD) Image(opts *ImageOptions) (image.Image, error) {
	if opts == nil {
		opts = &ImageOptions{}
	}
	cw, ch := opts.CellWidth, opts.CellHeight
	if cw == 0 {
		cw = 12
	}
	if ch == 0 {
		ch = 18
	}
	var face font.Face = basicfont.Face7x13
	if opts.TTF != nil {
		f, err := truetype.Parse(opts.TTF)
		if err != nil {
			return nil, fmt.Errorf("emulator: %w", err)
		}
		size := opts.FontSize
		if size == 0 {
			size = float64(ch) - 4
		}
		face = truetype.NewFace(f, &truetype.Options{Size: size})
	}

	dc := gg.NewContext(e.cols*cw+2*imageMargin, e.rows*ch+2*imageMargin)
	if e.Backlight() {
		dc.SetRGB(0.05, 0.25, 0.85)
	} else {
		dc.SetRGB(0.04, 0.05, 0.10)
	}
	dc.Clear()
	if !e.DisplayOn() {
		return dc.Image(), nil
	}
	dc.SetRGB(0.95, 0.97, 1.0)
	dc.SetFontFace(face)
	for row := 0; row < e.rows; row++ {
		for col := 0; col < e.cols; col++ {
			x := float64(imageMargin + col*cw)
			y := float64(imageMargin + row*ch)
			b := e.Cell(row, col)
			switch {
			case b < 8:
				e.drawGlyph(dc, int(b), x, y, cw, ch)
			case b >= 0x20 && b <= 0x7e:
				dc.DrawStringAnchored(string(rune(b)), x+float64(cw)/2, y+float64(ch)/2, 0.5, 0.5)
			}
		}
	}
	if e.CursorVisible() {
		if row, col := e.CursorPos(); row >= 0 {
			x := float64(imageMargin + col*cw)
			y := float64(imageMargin + (row+1)*ch)
			dc.DrawRectangle(x, y-2, float64(cw)-1, 2)
			dc.Fill()
		}
	}
	return dc.Image(), nil
}

// drawGlyph renders one CGRAM glyph as its 5x8 dot matrix.
func (e *LCD) drawGlyph(dc *gg.Context, slot int, x, y float64, cw, ch int) {
	g := e.Glyph(slot)
	pw := float64(cw) / 6
	ph := float64(ch) / 9
	for r, bits := range g {
		for c := 0; c < 5; c++ {
			if bits&(1<<(4-c)) != 0 {
				dc.DrawRectangle(x+float64(c)*pw, y+float64(r)*ph, pw, ph)
			}
		}
	}
	dc.Fill()
}
