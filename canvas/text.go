// seehuhn.de/go/figures - illustrative figures for the linear solver notes
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package canvas

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// HAlign selects which point of a text line is placed at the anchor, along
// the direction of writing.
type HAlign int

const (
	Left HAlign = iota
	Center
	Right
)

// VAlign selects which point of a text line is placed at the anchor,
// across the direction of writing.
type VAlign int

const (
	Baseline VAlign = iota
	Top             // top of the ascender
	Middle          // half the cap height above the baseline
	Bottom          // bottom of the descender
)

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// face returns the Go Regular face at the given size in points.
func (c *Canvas) face(size float64) (font.Face, error) {
	if f, ok := c.faces[size]; ok {
		return f, nil
	}
	fnt, err := goRegular()
	if err != nil {
		return nil, fmt.Errorf("parse Go Regular font: %w", err)
	}
	f, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     c.dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face at %gpt: %w", size, err)
	}
	c.faces[size] = f
	return f, nil
}

// TextExtent describes the size of a text line, in points.
type TextExtent struct {
	Width     float64
	Ascent    float64
	Descent   float64
	CapHeight float64
}

// Height returns the distance between ascender and descender.
func (e TextExtent) Height() float64 {
	return e.Ascent + e.Descent
}

// MeasureText returns the extent of s at the given font size.
func (c *Canvas) MeasureText(s string, size float64) (TextExtent, error) {
	f, err := c.face(size)
	if err != nil {
		return TextExtent{}, err
	}
	return c.extent(f, s), nil
}

func (c *Canvas) extent(f font.Face, s string) TextExtent {
	m := f.Metrics()
	toPt := func(v fixed.Int26_6) float64 { return float64(v) / 64 / c.scale }
	return TextExtent{
		Width:     toPt(font.MeasureString(f, s)),
		Ascent:    toPt(m.Ascent),
		Descent:   toPt(m.Descent),
		CapHeight: toPt(m.CapHeight),
	}
}

// offsets returns the distance from the anchor to the start of the
// baseline, along and across the writing direction.
func offsets(e TextExtent, h HAlign, v VAlign) (along, across float64) {
	switch h {
	case Center:
		along = -e.Width / 2
	case Right:
		along = -e.Width
	}
	switch v {
	case Top:
		across = e.Ascent
	case Middle:
		across = e.CapHeight / 2
	case Bottom:
		across = -e.Descent
	}
	return along, across
}

// Text draws a horizontal line of text anchored at (x, y).
func (c *Canvas) Text(x, y float64, s string, size float64, col color.Color, h HAlign, v VAlign) error {
	f, err := c.face(size)
	if err != nil {
		return err
	}
	along, across := offsets(c.extent(f, s), h, v)

	d := font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: f,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(math.Round((x + along) * c.scale * 64)),
			Y: fixed.Int26_6(math.Round((y + across) * c.scale * 64)),
		},
	}
	d.DrawString(s)
	return nil
}

// TextVertical draws a line of text rotated by 90 degrees, so that it
// reads from bottom to top. The alignment is relative to the rotated text:
// Left places the start of the text at the anchor, Bottom places the
// descender line on the anchor, to the right of the glyphs.
func (c *Canvas) TextVertical(x, y float64, s string, size float64, col color.Color, h HAlign, v VAlign) error {
	f, err := c.face(size)
	if err != nil {
		return err
	}
	e := c.extent(f, s)
	along, across := offsets(e, h, v)

	// render horizontally into a mask first
	m := f.Metrics()
	w := int(math.Ceil(float64(font.MeasureString(f, s))/64)) + 2
	asc := int(math.Ceil(float64(m.Ascent) / 64))
	hgt := asc + int(math.Ceil(float64(m.Descent)/64)) + 2
	if w <= 2 {
		return nil
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, hgt))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: f,
		Dot:  fixed.P(1, asc+1),
	}
	d.DrawString(s)

	// rotate counter-clockwise: (x, y) -> (y, w-1-x)
	rot := image.NewAlpha(image.Rect(0, 0, hgt, w))
	for my := range hgt {
		for mx := range w {
			rot.SetAlpha(my, w-1-mx, mask.AlphaAt(mx, my))
		}
	}

	// the baseline start maps to (asc+1, w-2) in rot
	bx := (x+across)*c.scale - float64(asc+1)
	by := y*c.scale - along*c.scale - float64(w-2)
	origin := image.Pt(int(math.Round(bx)), int(math.Round(by)))
	dst := rot.Bounds().Add(origin)
	draw.DrawMask(c.img, dst, image.NewUniform(col), image.Point{}, rot, image.Point{}, draw.Over)
	return nil
}
