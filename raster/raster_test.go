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
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// approaches lists thresholds which force the 2D buffer ("A") and the
// active edge list ("B") respectively.
var approaches = []struct {
	name      string
	threshold int
}{
	{"A", 1 << 30},
	{"B", 0},
}

// grid collects the coverage emitted by a Rasterizer.
type grid struct {
	w, h int
	pix  []float32
}

func newGrid(w, h int) *grid {
	return &grid{w: w, h: h, pix: make([]float32, w*h)}
}

func (g *grid) emit(y, xMin int, coverage []float32) {
	copy(g.pix[y*g.w+xMin:], coverage)
}

func (g *grid) at(x, y int) float32 {
	return g.pix[y*g.w+x]
}

func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

func box(x0, y0, x1, y1 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(pt(x0, y0)).
		LineTo(pt(x1, y0)).
		LineTo(pt(x1, y1)).
		LineTo(pt(x0, y1)).
		Close()
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

// TestTriangleCoverage checks exact coverage values for a triangle with a
// shallow diagonal edge y = x/10. Pixel X must have coverage (2X+1)/20.
func TestTriangleCoverage(t *testing.T) {
	triangle := (&path.Data{}).
		MoveTo(pt(0, 0)).
		LineTo(pt(10, 0)).
		LineTo(pt(10, 1)).
		Close()

	for _, approach := range approaches {
		t.Run(approach.name, func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 10, URy: 1})
			r.smallPathThreshold = approach.threshold
			g := newGrid(10, 1)
			r.FillNonZero(triangle, g.emit)

			for x := range 10 {
				want := float32(2*x+1) / 20
				if got := g.at(x, 0); !near(got, want) {
					t.Errorf("pixel %d: got %.4f, want %.4f", x, got, want)
				}
			}
		})
	}
}

func TestRectangleCoverage(t *testing.T) {
	for _, approach := range approaches {
		t.Run(approach.name, func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 10, URy: 8})
			r.smallPathThreshold = approach.threshold
			g := newGrid(10, 8)
			r.FillNonZero(box(2.5, 2, 7.5, 6), g.emit)

			want := []float32{0, 0, 0.5, 1, 1, 1, 1, 0.5, 0, 0}
			for y := range 8 {
				for x := range 10 {
					w := want[x]
					if y < 2 || y >= 6 {
						w = 0
					}
					if got := g.at(x, y); !near(got, w) {
						t.Errorf("pixel (%d,%d): got %.4f, want %.4f", x, y, got, w)
					}
				}
			}
		})
	}
}

func TestFillRules(t *testing.T) {
	p := box(0, 0, 10, 10)
	inner := box(3, 3, 7, 7)
	p.Cmds = append(p.Cmds, inner.Cmds...)
	p.Coords = append(p.Coords, inner.Coords...)

	r := NewRasterizer(rect.Rect{URx: 10, URy: 10})

	nonZero := newGrid(10, 10)
	r.FillNonZero(p, nonZero.emit)
	evenOdd := newGrid(10, 10)
	r.FillEvenOdd(p, evenOdd.emit)

	if got := nonZero.at(5, 5); !near(got, 1) {
		t.Errorf("nonzero centre: got %.4f, want 1", got)
	}
	if got := evenOdd.at(5, 5); !near(got, 0) {
		t.Errorf("even-odd centre: got %.4f, want 0", got)
	}
	if got := evenOdd.at(1, 1); !near(got, 1) {
		t.Errorf("even-odd ring: got %.4f, want 1", got)
	}
}

func TestClip(t *testing.T) {
	r := NewRasterizer(rect.Rect{LLx: 2, LLy: 2, URx: 6, URy: 6})
	called := false
	r.FillNonZero(box(0, 0, 10, 10), func(y, xMin int, coverage []float32) {
		called = true
		if y < 2 || y >= 6 {
			t.Errorf("row %d outside clip", y)
		}
		if xMin < 2 || xMin+len(coverage) > 6 {
			t.Errorf("row %d: columns [%d,%d) outside clip", y, xMin, xMin+len(coverage))
		}
	})
	if !called {
		t.Error("no coverage emitted")
	}
}

func TestCTM(t *testing.T) {
	r := NewRasterizer(rect.Rect{URx: 20, URy: 20})
	r.CTM = matrix.Matrix{4, 0, 0, 4, 0, 0}
	g := newGrid(20, 20)
	r.FillNonZero(box(1, 1, 2, 2), g.emit)

	if got := g.at(5, 5); !near(got, 1) {
		t.Errorf("inside: got %.4f, want 1", got)
	}
	if got := g.at(8, 8); !near(got, 0) {
		t.Errorf("outside: got %.4f, want 0", got)
	}
}

func horizontalLine() *path.Data {
	return (&path.Data{}).MoveTo(pt(4, 10)).LineTo(pt(16, 10))
}

func TestStrokeCaps(t *testing.T) {
	cases := []struct {
		name    string
		style   graphics.LineCapStyle
		corner  float32 // coverage of pixel (3,9), inside the cap region
		outside float32 // coverage of pixel (1,10)
	}{
		{"butt", graphics.LineCapButt, 0, 0},
		{"square", graphics.LineCapSquare, 1, 0},
		{"round", graphics.LineCapRound, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 20, URy: 20})
			r.Width = 4
			r.Cap = tc.style
			g := newGrid(20, 20)
			r.Stroke(horizontalLine(), g.emit)

			for y := 8; y < 12; y++ {
				if got := g.at(10, y); !near(got, 1) {
					t.Errorf("line body (10,%d): got %.4f, want 1", y, got)
				}
			}
			for _, y := range []int{7, 12} {
				if got := g.at(10, y); !near(got, 0) {
					t.Errorf("outside (10,%d): got %.4f, want 0", y, got)
				}
			}
			if got := g.at(3, 9); !near(got, tc.corner) {
				t.Errorf("cap pixel: got %.4f, want %.4f", got, tc.corner)
			}
			if got := g.at(1, 10); !near(got, tc.outside) {
				t.Errorf("beyond cap: got %.4f, want %.4f", got, tc.outside)
			}
		})
	}
}

func TestStrokeJoins(t *testing.T) {
	corner := (&path.Data{}).
		MoveTo(pt(5, 5)).
		LineTo(pt(25, 5)).
		LineTo(pt(25, 25))

	cases := []struct {
		name string
		join graphics.LineJoinStyle
		want float32 // coverage of pixel (26,3), at the outer corner
	}{
		{"miter", graphics.LineJoinMiter, 1},
		{"bevel", graphics.LineJoinBevel, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRasterizer(rect.Rect{URx: 30, URy: 30})
			r.Width = 4
			r.Join = tc.join
			g := newGrid(30, 30)
			r.Stroke(corner, g.emit)

			if got := g.at(26, 3); !near(got, tc.want) {
				t.Errorf("corner pixel: got %.4f, want %.4f", got, tc.want)
			}
			// the inner corner is covered by both segments, but painted once
			if got := g.at(24, 6); !near(got, 1) {
				t.Errorf("inner corner: got %.4f, want 1", got)
			}
		})
	}
}

func TestStrokeMiterLimit(t *testing.T) {
	// a sharp corner whose miter would be far longer than the limit
	spike := (&path.Data{}).
		MoveTo(pt(5, 19)).
		LineTo(pt(25, 18)).
		LineTo(pt(5, 17))

	r := NewRasterizer(rect.Rect{URx: 40, URy: 40})
	r.Width = 2
	g := newGrid(40, 40)
	r.Stroke(spike, g.emit)

	for x := 28; x < 40; x++ {
		if got := g.at(x, 18); got != 0 {
			t.Errorf("miter not limited: pixel (%d,18) has coverage %.4f", x, got)
		}
	}
}

func TestStrokeDash(t *testing.T) {
	line := (&path.Data{}).MoveTo(pt(0, 5)).LineTo(pt(40, 5))

	cases := []struct {
		phase    float64
		on, gaps []int
	}{
		{0, []int{2, 12, 22}, []int{7, 17, 27}},
		{5, []int{7, 17, 27}, []int{2, 12, 22}},
		{-5, []int{7, 17, 27}, []int{2, 12, 22}},
	}
	for _, tc := range cases {
		r := NewRasterizer(rect.Rect{URx: 40, URy: 10})
		r.Width = 2
		r.Dash = []float64{5, 5}
		r.DashPhase = tc.phase
		g := newGrid(40, 10)
		r.Stroke(line, g.emit)

		for _, x := range tc.on {
			if got := g.at(x, 4); !near(got, 1) {
				t.Errorf("phase %g: dash pixel %d: got %.4f, want 1", tc.phase, x, got)
			}
		}
		for _, x := range tc.gaps {
			if got := g.at(x, 4); !near(got, 0) {
				t.Errorf("phase %g: gap pixel %d: got %.4f, want 0", tc.phase, x, got)
			}
		}
	}
}

func TestStrokeZeroLengthDash(t *testing.T) {
	line := (&path.Data{}).MoveTo(pt(5, 10)).LineTo(pt(35, 10))

	r := NewRasterizer(rect.Rect{URx: 40, URy: 20})
	r.Width = 4
	r.Cap = graphics.LineCapRound
	r.Dash = []float64{0, 10}
	g := newGrid(40, 20)
	r.Stroke(line, g.emit)

	for _, x := range []int{5, 15, 25} {
		if got := g.at(x, 10); got < 0.5 {
			t.Errorf("dot at x=%d: coverage %.4f, want > 0.5", x, got)
		}
	}
	if got := g.at(10, 10); !near(got, 0) {
		t.Errorf("between dots: got %.4f, want 0", got)
	}
}

// TestStrokeDashEndsAtCorner strokes a corner where a dash ends exactly
// on the vertex. Both dashes must be painted, with the same total area as
// for slightly shorter or longer dashes.
func TestStrokeDashEndsAtCorner(t *testing.T) {
	corner := (&path.Data{}).
		MoveTo(pt(10, 10)).
		LineTo(pt(50, 10)).
		LineTo(pt(50, 60))

	for _, approach := range approaches {
		for _, dash := range []float64{39.999, 40, 40.001} {
			r := NewRasterizer(rect.Rect{URx: 70, URy: 70})
			r.smallPathThreshold = approach.threshold
			r.Width = 4
			r.Dash = []float64{dash, 10}
			g := newGrid(70, 70)
			r.Stroke(corner, g.emit)

			total := 0.0
			for _, v := range g.pix {
				total += float64(v)
			}
			if total < 315 || total > 330 {
				t.Errorf("%s, dash %g: total coverage %.3f, want about 320", approach.name, dash, total)
			}
			if got := g.at(30, 9); !near(got, 1) {
				t.Errorf("%s, dash %g: first dash: got %.4f, want 1", approach.name, dash, got)
			}
			if got := g.at(49, 40); !near(got, 1) {
				t.Errorf("%s, dash %g: second dash: got %.4f, want 1", approach.name, dash, got)
			}
			if got := g.at(49, 15); !near(got, 0) {
				t.Errorf("%s, dash %g: gap: got %.4f, want 0", approach.name, dash, got)
			}
		}
	}
}

func TestAddEdgeNonFinite(t *testing.T) {
	r := NewRasterizer(rect.Rect{URx: 20, URy: 20})
	r.beginEdges()
	r.addEdge(pt(5, 5), pt(5, 15))
	r.addEdge(pt(math.NaN(), 15), pt(15, 5))
	r.addEdge(pt(15, 15), pt(15, 5))
	if len(r.edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(r.edges))
	}
	if math.IsNaN(r.devXMin) || math.IsNaN(r.devXMax) {
		t.Errorf("bounding box is NaN: [%g, %g]", r.devXMin, r.devXMax)
	}
}

func TestStrokeClosed(t *testing.T) {
	r := NewRasterizer(rect.Rect{URx: 20, URy: 20})
	r.Width = 2
	g := newGrid(20, 20)
	r.Stroke(box(5, 5, 15, 15), g.emit)

	// all four corners are joined, including the closing one
	for _, p := range [][2]int{{4, 4}, {15, 4}, {15, 15}, {4, 15}} {
		if got := g.at(p[0], p[1]); !near(got, 1) {
			t.Errorf("corner %v: got %.4f, want 1", p, got)
		}
	}
	if got := g.at(10, 10); !near(got, 0) {
		t.Errorf("interior: got %.4f, want 0", got)
	}
}

func TestReset(t *testing.T) {
	r := NewRasterizer(rect.Rect{URx: 5, URy: 5})
	r.Width = 7
	r.Dash = []float64{1, 2}
	r.CTM = matrix.Matrix{2, 0, 0, 2, 1, 1}

	clip := rect.Rect{URx: 8, URy: 8}
	r.Reset(clip)
	if r.Width != 1 || r.Dash != nil || r.CTM != matrix.Identity || r.Clip != clip {
		t.Errorf("Reset did not restore defaults: %+v", r)
	}
}
