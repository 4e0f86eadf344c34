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

// Package raster converts vector paths into anti-aliased pixel coverage.
//
// Coverage is computed exactly from the signed area of the path inside each
// pixel, so no supersampling is involved. Results are delivered one scanline
// at a time through a callback; compositing is left to the caller.
package raster

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// EmitFunc receives the coverage of scanline y, starting at pixel xMin.
// Coverage values lie in [0, 1]. The slice is only valid during the call.
type EmitFunc func(y, xMin int, coverage []float32)

// edge is a line segment in device coordinates.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64 // (x1-x0)/(y1-y0)
}

func (e *edge) yMin() float64 { return min(e.y0, e.y1) }
func (e *edge) yMax() float64 { return max(e.y0, e.y1) }

// Rasterizer turns paths into coverage values. One instance can be reused
// for any number of paths; internal buffers only ever grow.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	// CTM maps user space to device space. It must be non-singular.
	CTM matrix.Matrix

	// Clip restricts output to this device-space rectangle.
	// The coordinates must be integers.
	Clip rect.Rect

	// Flatness is the maximum distance, in device pixels, between a curve
	// and the polygon used to approximate it.
	Flatness float64

	// Width is the stroke width in user-space units.
	Width float64

	// Cap is the shape used at the open ends of stroked subpaths.
	Cap graphics.LineCapStyle

	// Join is the shape used where two stroked segments meet.
	Join graphics.LineJoinStyle

	// MiterLimit limits the length of miter joins. Must be at least 1.
	MiterLimit float64

	// Dash lists alternating on/off lengths in user-space units.
	// Nil draws solid lines.
	Dash []float64

	// DashPhase is the distance into the dash pattern at which each
	// subpath starts.
	DashPhase float64

	smallPathThreshold int

	cover     []float32
	area      []float32
	edges     []edge
	activeIdx []int
	rowUsed   []bool

	edgeBBoxFirst    bool
	devXMin, devXMax float64
	devYMin, devYMax float64

	// stroke state, see stroke.go
	lines       []vec.Vec2
	lineOffsets []int
	lineClosed  []bool
	dots        []dot
	dashed      []vec.Vec2
	dashOffsets []int
	polys       []vec.Vec2
	polyOffsets []int
}

// NewRasterizer returns a Rasterizer for the given clip rectangle, with the
// PDF default values for all graphics parameters.
func NewRasterizer(clip rect.Rect) *Rasterizer {
	r := &Rasterizer{}
	r.Reset(clip)
	return r
}

// Reset restores the default graphics parameters and sets a new clip
// rectangle. Buffer capacity is kept.
func (r *Rasterizer) Reset(clip rect.Rect) {
	r.CTM = matrix.Identity
	r.Clip = clip
	r.Flatness = defaultFlatness
	r.Width = 1
	r.Cap = graphics.LineCapButt
	r.Join = graphics.LineJoinMiter
	r.MiterLimit = defaultMiterLimit
	r.Dash = nil
	r.DashPhase = 0
	r.smallPathThreshold = smallPathThreshold
}

// toDevice applies the full CTM.
func (r *Rasterizer) toDevice(p vec.Vec2) (x, y float64) {
	m := r.CTM
	return m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]
}

// transformLinear applies the CTM without its translation part.
func (r *Rasterizer) transformLinear(v vec.Vec2) vec.Vec2 {
	m := r.CTM
	return vec.Vec2{X: m[0]*v.X + m[2]*v.Y, Y: m[1]*v.X + m[3]*v.Y}
}

// flattenQuadratic splits the quadratic Bézier curve p0, p1, p2 into line
// segments whose deviation in device space is at most r.Flatness.
func (r *Rasterizer) flattenQuadratic(p0, p1, p2 vec.Vec2, emit func(from, to vec.Vec2)) {
	dev := r.transformLinear(p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)).Length()
	n := 1
	if dev > r.Flatness {
		n = int(math.Ceil(math.Sqrt(dev / r.Flatness)))
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s).Add(p1.Mul(2 * s * t)).Add(p2.Mul(t * t))
		emit(prev, pt)
		prev = pt
	}
}

// flattenCubic splits a cubic Bézier curve into line segments, using
// Wang's formula for the segment count.
func (r *Rasterizer) flattenCubic(p0, p1, p2, p3 vec.Vec2, emit func(from, to vec.Vec2)) {
	d1 := r.transformLinear(p0.Sub(p1.Mul(2)).Add(p2)).Length()
	d2 := r.transformLinear(p1.Sub(p2.Mul(2)).Add(p3)).Length()
	n := 1
	if m := max(d1, d2); m > 0 {
		if nf := math.Sqrt(3 * m / (4 * r.Flatness)); nf > 1 {
			n = int(math.Ceil(nf))
		}
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s := 1 - t
		pt := p0.Mul(s * s * s).
			Add(p1.Mul(3 * s * s * t)).
			Add(p2.Mul(3 * s * t * t)).
			Add(p3.Mul(t * t * t))
		emit(prev, pt)
		prev = pt
	}
}

// FillNonZero fills p using the nonzero winding rule.
func (r *Rasterizer) FillNonZero(p *path.Data, emit EmitFunc) {
	r.fill(p, fillNonZero, emit)
}

// FillEvenOdd fills p using the even-odd rule.
func (r *Rasterizer) FillEvenOdd(p *path.Data, emit EmitFunc) {
	r.fill(p, fillEvenOdd, emit)
}

type fillRule int

const (
	fillNonZero fillRule = iota
	fillEvenOdd
)

func (r *Rasterizer) fill(p *path.Data, rule fillRule, emit EmitFunc) {
	r.beginEdges()
	r.collectPathEdges(p)
	r.rasterizeEdges(rule, emit)
}

// collectPathEdges walks p and adds one edge per (flattened) line segment.
// Open subpaths are closed implicitly, as required for filling.
func (r *Rasterizer) collectPathEdges(p *path.Data) {
	var current, start vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			if current != start {
				r.addEdge(current, start)
			}
			current = p.Coords[k]
			start = current
			k++
		case path.CmdLineTo:
			r.addEdge(current, p.Coords[k])
			current = p.Coords[k]
			k++
		case path.CmdQuadTo:
			r.flattenQuadratic(current, p.Coords[k], p.Coords[k+1], r.addEdge)
			current = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			r.flattenCubic(current, p.Coords[k], p.Coords[k+1], p.Coords[k+2], r.addEdge)
			current = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			if current != start {
				r.addEdge(current, start)
			}
			current = start
		}
	}
	if current != start {
		r.addEdge(current, start)
	}
}

func (r *Rasterizer) beginEdges() {
	r.edges = r.edges[:0]
	r.edgeBBoxFirst = true
}

// addEdge transforms a user-space segment to device space and records it.
func (r *Rasterizer) addEdge(p0, p1 vec.Vec2) {
	x0, y0 := r.toDevice(p0)
	x1, y1 := r.toDevice(p1)
	if !finite(x0, y0, x1, y1) {
		return
	}

	dy := y1 - y0
	if math.Abs(dy) < horizontalEdgeThreshold {
		return
	}
	r.edges = append(r.edges, edge{x0: x0, y0: y0, x1: x1, y1: y1, dxdy: (x1 - x0) / dy})

	if r.edgeBBoxFirst {
		r.devXMin, r.devXMax = min(x0, x1), max(x0, x1)
		r.devYMin, r.devYMax = min(y0, y1), max(y0, y1)
		r.edgeBBoxFirst = false
		return
	}
	r.devXMin = min(r.devXMin, x0, x1)
	r.devXMax = max(r.devXMax, x0, x1)
	r.devYMin = min(r.devYMin, y0, y1)
	r.devYMax = max(r.devYMax, y0, y1)
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// rasterizeEdges computes coverage for the collected edges. Small shapes
// use a 2D accumulation buffer, large shapes an active edge list.
func (r *Rasterizer) rasterizeEdges(rule fillRule, emit EmitFunc) {
	if len(r.edges) == 0 {
		return
	}

	xMin := max(int(math.Floor(r.devXMin)), int(r.Clip.LLx))
	xMax := min(int(math.Floor(r.devXMax))+1, int(r.Clip.URx))
	yMin := max(int(math.Floor(r.devYMin)), int(r.Clip.LLy))
	yMax := min(int(math.Floor(r.devYMax))+1, int(r.Clip.URy))
	if xMin >= xMax || yMin >= yMax {
		return
	}

	if (xMax-xMin)*(yMax-yMin) < r.smallPathThreshold {
		r.fillSmall(xMin, xMax, yMin, yMax, rule, emit)
	} else {
		r.fillLarge(xMin, xMax, yMin, yMax, rule, emit)
	}
}

// Each edge crossing a pixel contributes
//
//	cover = ±dy               (+ for downward edges)
//	area  = cover·(1 - xFrac) (xFrac: mean horizontal position in the pixel)
//
// Summing cover from the left and adding the pixel's own area gives the
// signed area of the path inside that pixel.

// accumulateEdge adds the part of e inside scanline y to cover and area,
// which are indexed by x - bxMin. Contributions left of the buffer are
// folded into its first cell.
func accumulateEdge(e *edge, y int, cover, area []float32, bxMin, bxMax int) {
	yTop := max(float64(y), e.yMin())
	yBot := min(float64(y+1), e.yMax())
	if yBot <= yTop {
		return
	}

	sign := float32(1)
	if e.y1 < e.y0 {
		sign = -1
	}

	xa := e.x0 + e.dxdy*(yTop-e.y0)
	xb := e.x0 + e.dxdy*(yBot-e.y0)
	pixLeft := int(math.Floor(min(xa, xb)))
	pixRight := int(math.Floor(max(xa, xb)))

	if pixRight < bxMin {
		c := sign * float32(yBot-yTop)
		cover[0] += c
		area[0] += c
		return
	}
	if pixLeft >= bxMax {
		return
	}

	if pixLeft == pixRight {
		addCell(e, yTop, yBot, sign, pixLeft, cover, area, bxMin, bxMax)
		return
	}

	// split the edge at pixel column boundaries
	dydx := 1 / e.dxdy
	for pix := pixLeft; pix <= pixRight; pix++ {
		ya := e.y0 + dydx*(float64(pix)-e.x0)
		yb := e.y0 + dydx*(float64(pix+1)-e.x0)
		lo := max(min(ya, yb), yTop)
		hi := min(max(ya, yb), yBot)
		if hi <= lo {
			continue
		}
		addCell(e, lo, hi, sign, pix, cover, area, bxMin, bxMax)
	}
}

// addCell adds the part of e between yTop and yBot, which lies inside a
// single pixel column.
func addCell(e *edge, yTop, yBot float64, sign float32, pix int, cover, area []float32, bxMin, bxMax int) {
	c := sign * float32(yBot-yTop)
	switch {
	case pix < bxMin:
		cover[0] += c
		area[0] += c
	case pix < bxMax:
		xMid := e.x0 + e.dxdy*((yTop+yBot)/2-e.y0)
		xFrac := xMid - float64(pix)
		i := pix - bxMin
		cover[i] += c
		area[i] += c * float32(1-xFrac)
	}
}

// integrateNonZero replaces cover by the final coverage values.
func integrateNonZero(cover, area []float32) {
	var acc float32
	for i := range cover {
		v := acc + area[i]
		acc += cover[i]
		cover[i] = min(abs32(v), 1)
	}
}

// integrateEvenOdd replaces cover by the final coverage values, folding
// the winding number with period 2.
func integrateEvenOdd(cover, area []float32) {
	var acc float32
	for i := range cover {
		v := abs32(acc + area[i])
		acc += cover[i]
		m := v - 2*float32(int(v/2))
		cover[i] = 1 - abs32(1-m)
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// trimZeros drops zero coverage at both ends of a scanline.
func trimZeros(coverage []float32) ([]float32, int) {
	lo, hi := 0, len(coverage)
	for lo < hi && coverage[lo] == 0 {
		lo++
	}
	for hi > lo && coverage[hi-1] == 0 {
		hi--
	}
	if lo == hi {
		return nil, 0
	}
	return coverage[lo:hi], lo
}

func (r *Rasterizer) integrate(rule fillRule, cover, area []float32) {
	if rule == fillNonZero {
		integrateNonZero(cover, area)
	} else {
		integrateEvenOdd(cover, area)
	}
}

// fillSmall accumulates all edges into a (width × height) buffer first and
// integrates the rows afterwards.
func (r *Rasterizer) fillSmall(xMin, xMax, yMin, yMax int, rule fillRule, emit EmitFunc) {
	width := xMax - xMin
	height := yMax - yMin
	size := width * height

	r.cover = slices.Grow(r.cover[:0], size)[:size]
	r.area = slices.Grow(r.area[:0], size)[:size]
	r.rowUsed = slices.Grow(r.rowUsed[:0], height)[:height]
	clear(r.cover)
	clear(r.area)
	clear(r.rowUsed)

	for i := range r.edges {
		e := &r.edges[i]
		y0 := max(int(math.Floor(e.yMin())), yMin)
		y1 := min(int(math.Floor(e.yMax()))+1, yMax)
		for y := y0; y < y1; y++ {
			row := y - yMin
			off := row * width
			accumulateEdge(e, y, r.cover[off:off+width], r.area[off:off+width], xMin, xMax)
			r.rowUsed[row] = true
		}
	}

	for row := range height {
		if !r.rowUsed[row] {
			continue
		}
		off := row * width
		cov := r.cover[off : off+width]
		r.integrate(rule, cov, r.area[off:off+width])
		if trimmed, dx := trimZeros(cov); trimmed != nil {
			emit(yMin+row, xMin+dx, trimmed)
		}
	}
}

// fillLarge processes one scanline at a time, keeping only the edges which
// intersect the current scanline.
func (r *Rasterizer) fillLarge(xMin, xMax, yMin, yMax int, rule fillRule, emit EmitFunc) {
	width := xMax - xMin
	r.cover = slices.Grow(r.cover[:0], width)[:width]
	r.area = slices.Grow(r.area[:0], width)[:width]

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(a.yMin(), b.yMin())
	})

	r.activeIdx = r.activeIdx[:0]
	next := 0
	for y := yMin; y < yMax; y++ {
		yf := float64(y)
		for next < len(r.edges) && r.edges[next].yMin() < yf+1 {
			r.activeIdx = append(r.activeIdx, next)
			next++
		}
		if len(r.activeIdx) == 0 {
			continue
		}

		clear(r.cover)
		clear(r.area)
		touched := false
		for i := 0; i < len(r.activeIdx); {
			e := &r.edges[r.activeIdx[i]]
			if e.yMax() <= yf {
				last := len(r.activeIdx) - 1
				r.activeIdx[i] = r.activeIdx[last]
				r.activeIdx = r.activeIdx[:last]
				continue
			}
			if e.yMax() > yf && e.yMin() < yf+1 {
				accumulateEdge(e, y, r.cover, r.area, xMin, xMax)
				touched = true
			}
			i++
		}
		if !touched {
			continue
		}

		r.integrate(rule, r.cover, r.area)
		if trimmed, dx := trimZeros(r.cover); trimmed != nil {
			emit(y, xMin+dx, trimmed)
		}
	}
}

const (
	// defaultFlatness is below the threshold of visual perception.
	defaultFlatness = 0.25

	// defaultMiterLimit matches PDF. Joins sharper than about 11.5 degrees
	// are bevelled.
	defaultMiterLimit = 10.0

	// horizontalEdgeThreshold is the smallest vertical extent, in device
	// pixels, of an edge which contributes coverage.
	horizontalEdgeThreshold = 1e-10

	// smallPathThreshold is the largest bounding box area, in pixels, for
	// which the 2D buffer is used.
	smallPathThreshold = 65536

	// zeroLengthThreshold is the shortest stroke segment which is kept.
	zeroLengthThreshold = 1e-10

	// collinearityThreshold bounds |sin θ| for corners which need no join.
	collinearityThreshold = 1e-6
)
