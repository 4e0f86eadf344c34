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

// Package canvas paints filled and stroked paths and text onto an RGBA
// image.
//
// All coordinates are given in PDF points (1/72 inch), with the origin in
// the top-left corner and y increasing downwards. The device resolution is
// fixed when the canvas is created.
package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/figures/raster"
)

// PointsPerInch is the number of user-space units per inch.
const PointsPerInch = 72

// Canvas is a white page of fixed size, backed by an *image.RGBA.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	img    *image.RGBA
	r      *raster.Rasterizer
	dpi    float64
	scale  float64 // device pixels per point
	width  float64
	height float64

	faces map[float64]font.Face
}

// New allocates a canvas of the given size in points, rendered at dpi
// pixels per inch.
func New(width, height, dpi float64) *Canvas {
	scale := dpi / PointsPerInch
	w := int(math.Ceil(width * dpi / PointsPerInch))
	h := int(math.Ceil(height * dpi / PointsPerInch))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	r := raster.NewRasterizer(rect.Rect{URx: float64(w), URy: float64(h)})
	return &Canvas{
		img:    img,
		r:      r,
		dpi:    dpi,
		scale:  scale,
		width:  width,
		height: height,
		faces:  make(map[float64]font.Face),
	}
}

// Image returns the image the canvas paints on.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Size returns the page size in points.
func (c *Canvas) Size() (width, height float64) {
	return c.width, c.height
}

// DPI returns the device resolution.
func (c *Canvas) DPI() float64 {
	return c.dpi
}

// Close releases the font faces used by the canvas.
func (c *Canvas) Close() error {
	var firstErr error
	for size, face := range c.faces {
		if err := face.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.faces, size)
	}
	return firstErr
}

// Style describes how a path is stroked.
// The zero value of Cap and Join selects butt caps and miter joins.
type Style struct {
	Width float64 // line width in points
	Color color.Color
	Cap   graphics.LineCapStyle
	Join  graphics.LineJoinStyle
	Dash  []float64 // dash pattern in points, nil for solid lines
}

// Fill paints the interior of p, using the nonzero winding rule.
func (c *Canvas) Fill(p *path.Data, col color.Color) {
	c.setup()
	c.r.FillNonZero(p, c.painter(col))
}

// FillRect paints the rectangle with corners (x0, y0) and (x1, y1).
func (c *Canvas) FillRect(x0, y0, x1, y1 float64, col color.Color) {
	c.Fill(Rect(x0, y0, x1, y1), col)
}

// Stroke paints the outline of p.
func (c *Canvas) Stroke(p *path.Data, s Style) {
	c.setup()
	c.r.Width = s.Width
	c.r.Cap = s.Cap
	c.r.Join = s.Join
	c.r.Dash = s.Dash
	c.r.Stroke(p, c.painter(s.Color))
}

// Line strokes a single straight segment.
func (c *Canvas) Line(x0, y0, x1, y1 float64, s Style) {
	c.Stroke(Polyline(vec.Vec2{X: x0, Y: y0}, vec.Vec2{X: x1, Y: y1}), s)
}

// setup restores the rasterizer defaults for the page.
func (c *Canvas) setup() {
	c.r.Reset(c.r.Clip)
	c.r.CTM = matrix.Matrix{c.scale, 0, 0, c.scale, 0, 0}
}

// painter returns an emit callback which composites col onto the image,
// scaled by the coverage values.
func (c *Canvas) painter(col color.Color) raster.EmitFunc {
	r16, g16, b16, a16 := col.RGBA()
	cr := float64(r16) / 0xffff
	cg := float64(g16) / 0xffff
	cb := float64(b16) / 0xffff
	ca := float64(a16) / 0xffff

	return func(y, xMin int, coverage []float32) {
		off := c.img.PixOffset(xMin, y)
		pix := c.img.Pix[off : off+4*len(coverage)]
		for i, v := range coverage {
			if v <= 0 {
				continue
			}
			a := float64(v)
			k := 1 - ca*a
			p := pix[4*i : 4*i+4 : 4*i+4]
			p[0] = blend(cr*a, p[0], k)
			p[1] = blend(cg*a, p[1], k)
			p[2] = blend(cb*a, p[2], k)
			p[3] = blend(ca*a, p[3], k)
		}
	}
}

// blend computes src + k·dst for premultiplied components.
func blend(src float64, dst uint8, k float64) uint8 {
	v := src + k*float64(dst)/0xff
	return uint8(min(max(v, 0), 1)*0xff + 0.5)
}

// Rect returns a closed rectangular path.
func Rect(x0, y0, x1, y1 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: x0, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y1}).
		LineTo(vec.Vec2{X: x0, Y: y1}).
		Close()
}

// Polyline returns an open path through the given points.
func Polyline(pts ...vec.Vec2) *path.Data {
	p := &path.Data{}
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt)
		} else {
			p.LineTo(pt)
		}
	}
	return p
}
