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

package raster

import (
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// dot is a zero-length subpath or dash. T is the direction of the
// underlying path, used to orient square caps.
type dot struct {
	P, T vec.Vec2
}

// Stroke paints the outline of p, using Width, Cap, Join, MiterLimit,
// Dash and DashPhase.
//
// The stroke is assembled from one polygon per segment, cap and join.
// All polygons are oriented the same way and filled together with the
// nonzero rule, so overlapping parts are painted exactly once.
func (r *Rasterizer) Stroke(p *path.Data, emit EmitFunc) {
	r.flattenPath(p)

	lines, offsets := r.lines, r.lineOffsets
	closed := r.lineClosed
	if len(r.Dash) > 0 && r.applyDashPattern() {
		lines, offsets, closed = r.dashed, r.dashOffsets, nil
	}

	r.polys = r.polys[:0]
	r.polyOffsets = r.polyOffsets[:0]
	d := r.Width / 2

	for _, pt := range r.dots {
		r.addDot(pt, d)
	}
	for i, start := range offsets {
		end := len(lines)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		isClosed := closed != nil && closed[i]
		r.outline(lines[start:end], isClosed, d)
	}

	r.beginEdges()
	for i, start := range r.polyOffsets {
		end := len(r.polys)
		if i+1 < len(r.polyOffsets) {
			end = r.polyOffsets[i+1]
		}
		poly := r.polys[start:end]
		for j := range poly {
			r.addEdge(poly[j], poly[(j+1)%len(poly)])
		}
	}
	r.rasterizeEdges(fillNonZero, emit)
}

// flattenPath converts p into polylines in user space. Subpaths without
// any extent are recorded in r.dots.
func (r *Rasterizer) flattenPath(p *path.Data) {
	r.lines = r.lines[:0]
	r.lineOffsets = r.lineOffsets[:0]
	r.lineClosed = r.lineClosed[:0]
	r.dots = r.dots[:0]

	start := -1 // index of the current subpath in r.lines, -1 if none
	var first vec.Vec2
	finish := func(isClosed bool) {
		if start < 0 {
			return
		}
		if len(r.lines)-start < 2 {
			r.dots = append(r.dots, dot{P: first, T: vec.Vec2{X: 1}})
			r.lines = r.lines[:start]
		} else {
			r.lineOffsets = append(r.lineOffsets, start)
			r.lineClosed = append(r.lineClosed, isClosed)
		}
		start = -1
	}
	lineTo := func(_, to vec.Vec2) {
		if last := r.lines[len(r.lines)-1]; to.Sub(last).Length() < zeroLengthThreshold {
			return
		}
		r.lines = append(r.lines, to)
	}

	k := 0
	current := vec.Vec2{}
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			finish(false)
			current = p.Coords[k]
			first = current
			start = len(r.lines)
			r.lines = append(r.lines, current)
			k++
		case path.CmdLineTo:
			if start >= 0 {
				lineTo(current, p.Coords[k])
			}
			current = p.Coords[k]
			k++
		case path.CmdQuadTo:
			if start >= 0 {
				r.flattenQuadratic(current, p.Coords[k], p.Coords[k+1], lineTo)
			}
			current = p.Coords[k+1]
			k += 2
		case path.CmdCubeTo:
			if start >= 0 {
				r.flattenCubic(current, p.Coords[k], p.Coords[k+1], p.Coords[k+2], lineTo)
			}
			current = p.Coords[k+2]
			k += 3
		case path.CmdClose:
			if start >= 0 {
				// the closing segment is implied by the closed flag
				if n := len(r.lines); n-start > 1 && r.lines[n-1].Sub(first).Length() < zeroLengthThreshold {
					r.lines = r.lines[:n-1]
				}
				finish(len(r.lines)-start > 1)
			}
			current = first
		}
	}
	finish(false)
}

// applyDashPattern splits the polylines into dashes, stored in r.dashed.
// Zero-length dashes are added to r.dots. It reports false if the pattern
// has no positive length, in which case lines are drawn solid.
func (r *Rasterizer) applyDashPattern() bool {
	r.dashed = r.dashed[:0]
	r.dashOffsets = r.dashOffsets[:0]

	pattern := r.Dash
	n := len(pattern)
	total := 0.0
	for _, v := range pattern {
		if v < 0 {
			return false
		}
		total += v
	}
	if n%2 == 1 {
		total *= 2
	}
	if total <= 0 {
		return false
	}

	phase := math.Mod(r.DashPhase, total)
	if phase < 0 {
		phase += total
	}

	for i, start := range r.lineOffsets {
		end := len(r.lines)
		if i+1 < len(r.lineOffsets) {
			end = r.lineOffsets[i+1]
		}
		pts := r.lines[start:end]
		if r.lineClosed[i] {
			pts = append(pts[:len(pts):len(pts)], pts[0])
		}

		idx := 0
		remaining := phase
		for remaining > 0 && remaining >= pattern[idx%n] {
			remaining -= pattern[idx%n]
			idx++
		}
		remaining = pattern[idx%n] - remaining
		on := idx%2 == 0

		dashStart := -1
		if on {
			dashStart = len(r.dashed)
			r.dashed = append(r.dashed, pts[0])
		}
		for j := 1; j < len(pts); j++ {
			a, b := pts[j-1], pts[j]
			ab := b.Sub(a)
			segLen := ab.Length()
			tangent := ab.Mul(1 / segLen)
			pos := 0.0
			for segLen-pos > remaining {
				pos += remaining
				q := a.Add(tangent.Mul(pos))
				if on {
					// a dash ending on a vertex already holds q
					if last := r.dashed[len(r.dashed)-1]; q.Sub(last).Length() >= zeroLengthThreshold {
						r.dashed = append(r.dashed, q)
					}
					r.endDash(dashStart, tangent)
					dashStart = -1
				} else {
					dashStart = len(r.dashed)
					r.dashed = append(r.dashed, q)
				}
				idx++
				remaining = pattern[idx%n]
				on = idx%2 == 0
			}
			remaining -= segLen - pos
			if on {
				r.dashed = append(r.dashed, b)
			}
		}
		if on && dashStart >= 0 {
			last := pts[len(pts)-1].Sub(pts[len(pts)-2])
			r.endDash(dashStart, last.Mul(1/last.Length()))
		}
	}
	return true
}

// endDash finishes the dash which starts at r.dashed[start].
func (r *Rasterizer) endDash(start int, tangent vec.Vec2) {
	pts := r.dashed[start:]
	length := 0.0
	for i := 1; i < len(pts); i++ {
		length += pts[i].Sub(pts[i-1]).Length()
	}
	if length < zeroLengthThreshold {
		r.dots = append(r.dots, dot{P: pts[0], T: tangent})
		r.dashed = r.dashed[:start]
		return
	}
	r.dashOffsets = append(r.dashOffsets, start)
}

// outline adds the polygons for one polyline.
func (r *Rasterizer) outline(pts []vec.Vec2, closed bool, d float64) {
	if len(pts) == 0 {
		return
	}

	// repeated points have no direction
	k := 1
	for i := 1; i < len(pts); i++ {
		if pts[i].Sub(pts[k-1]).Length() >= zeroLengthThreshold {
			pts[k] = pts[i]
			k++
		}
	}
	if closed && k > 2 && pts[k-1].Sub(pts[0]).Length() < zeroLengthThreshold {
		k--
	}
	pts = pts[:k]
	n := len(pts)
	if n < 2 {
		if !closed {
			r.addDot(dot{P: pts[0], T: vec.Vec2{X: 1}}, d)
		}
		return
	}

	numSegs := n - 1
	if closed {
		numSegs = n
	}
	tangent := func(i int) vec.Vec2 {
		t := pts[(i+1)%n].Sub(pts[i])
		return t.Mul(1 / t.Length())
	}

	for i := range numSegs {
		a, b := pts[i], pts[(i+1)%n]
		nv := normal(tangent(i)).Mul(d)
		r.addPolygon(a.Add(nv), b.Add(nv), b.Sub(nv), a.Sub(nv))
	}

	for i := 1; i < numSegs; i++ {
		r.addJoin(pts[i], tangent(i-1), tangent(i), d)
	}
	if closed {
		r.addJoin(pts[0], tangent(n-1), tangent(0), d)
		return
	}

	r.addCap(pts[0], tangent(0).Mul(-1), d)
	r.addCap(pts[n-1], tangent(n-2), d)
}

// normal returns t rotated by 90 degrees.
func normal(t vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: -t.Y, Y: t.X}
}

// addJoin adds the join at corner p, where the path direction changes
// from t1 to t2.
func (r *Rasterizer) addJoin(p, t1, t2 vec.Vec2, d float64) {
	sinTheta := t1.X*t2.Y - t1.Y*t2.X
	cosTheta := t1.Dot(t2)
	if math.Abs(sinTheta) < collinearityThreshold && cosTheta > 0 {
		return
	}

	if r.Join == graphics.LineJoinRound {
		r.addCircle(p, d)
		return
	}

	// the outer side of the corner is opposite to the turn direction
	side := -1.0
	if sinTheta < 0 {
		side = 1
	}
	n1 := normal(t1).Mul(side * d)
	n2 := normal(t2).Mul(side * d)

	if r.Join == graphics.LineJoinMiter {
		// the miter length ratio is 1/sin(φ/2), where φ is the angle
		// between the two segments
		sinHalf := math.Sqrt((1 + cosTheta) / 2)
		bisector := n1.Add(n2)
		if bl := bisector.Length(); sinHalf > 0 && 1/sinHalf <= r.MiterLimit+1e-10 && bl > zeroLengthThreshold {
			tip := p.Add(bisector.Mul(d / (sinHalf * bl)))
			r.addPolygon(p, p.Add(n1), tip, p.Add(n2))
			return
		}
	}
	r.addPolygon(p, p.Add(n1), p.Add(n2))
}

// addCap adds a line cap at p. The vector t points away from the line.
func (r *Rasterizer) addCap(p, t vec.Vec2, d float64) {
	switch r.Cap {
	case graphics.LineCapRound:
		r.addCircle(p, d)
	case graphics.LineCapSquare:
		nv := normal(t).Mul(d)
		ext := p.Add(t.Mul(d))
		r.addPolygon(p.Add(nv), ext.Add(nv), ext.Sub(nv), p.Sub(nv))
	}
}

// addDot paints a zero-length subpath. Butt caps paint nothing.
func (r *Rasterizer) addDot(pt dot, d float64) {
	switch r.Cap {
	case graphics.LineCapRound:
		r.addCircle(pt.P, d)
	case graphics.LineCapSquare:
		t := pt.T.Mul(d)
		nv := normal(pt.T).Mul(d)
		r.addPolygon(
			pt.P.Add(t).Add(nv),
			pt.P.Add(t).Sub(nv),
			pt.P.Sub(t).Sub(nv),
			pt.P.Sub(t).Add(nv),
		)
	}
}

// addCircle adds a polygon approximating a circle of the given radius.
// The number of vertices keeps the sagitta below the flatness in device
// space.
func (r *Rasterizer) addCircle(center vec.Vec2, radius float64) {
	devRadius := max(
		r.transformLinear(vec.Vec2{X: radius}).Length(),
		r.transformLinear(vec.Vec2{Y: radius}).Length(),
	)
	n := 8
	if devRadius > r.Flatness {
		step := 2 * math.Acos(1-r.Flatness/devRadius)
		if step > 0 && !math.IsNaN(step) {
			n = max(n, int(math.Ceil(2*math.Pi/step)))
		}
	}

	start := len(r.polys)
	for i := range n {
		phi := 2 * math.Pi * float64(i) / float64(n)
		r.polys = append(r.polys, vec.Vec2{
			X: center.X + radius*math.Cos(phi),
			Y: center.Y + radius*math.Sin(phi),
		})
	}
	r.commitPolygon(start)
}

// addPolygon adds a closed polygon to the stroke outline.
func (r *Rasterizer) addPolygon(pts ...vec.Vec2) {
	start := len(r.polys)
	r.polys = append(r.polys, pts...)
	r.commitPolygon(start)
}

// commitPolygon normalises the orientation of the polygon starting at
// r.polys[start] so that all stroke polygons have positive signed area.
func (r *Rasterizer) commitPolygon(start int) {
	poly := r.polys[start:]
	if len(poly) < 3 {
		r.polys = r.polys[:start]
		return
	}
	a := 0.0
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		a += p.X*q.Y - q.X*p.Y
	}
	if math.IsNaN(a) || math.Abs(a) < zeroLengthThreshold {
		r.polys = r.polys[:start]
		return
	}
	if a < 0 {
		for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
	}
	r.polyOffsets = append(r.polyOffsets, start)
}
