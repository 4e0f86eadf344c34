package raster

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/vector"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// BenchmarkRasterizerO fills an "O" shape with our rasterizer.
func BenchmarkRasterizerO(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			clip := rect.Rect{URx: float64(size), URy: float64(size)}
			r := NewRasterizer(clip)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))

			c := float64(size) / 2
			p := &path.Data{}
			addCircle(p, c, c, float64(size)*0.45, false)
			addCircle(p, c, c, float64(size)*0.30, true)

			b.ReportAllocs()
			for b.Loop() {
				r.Reset(clip)
				r.FillEvenOdd(p, func(y, xMin int, coverage []float32) {
					row := dst.Pix[y*dst.Stride+xMin:]
					for i, v := range coverage {
						row[i] = uint8(v * 255)
					}
				})
			}
		})
	}
}

// BenchmarkVectorO fills the same shape with golang.org/x/image/vector.
func BenchmarkVectorO(b *testing.B) {
	for _, size := range []int{20, 200, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			z := vector.NewRasterizer(size, size)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			src := image.NewUniform(color.Alpha{255})

			c := float32(size) / 2

			b.ReportAllocs()
			for b.Loop() {
				z.Reset(size, size)
				addCircleToVector(z, c, c, float32(size)*0.45, false)
				addCircleToVector(z, c, c, float32(size)*0.30, true)
				z.Draw(dst, dst.Bounds(), src, image.Point{})
			}
		})
	}
}

// BenchmarkStrokeChartLine strokes a dashed polyline the size of a data
// series in the performance chart.
func BenchmarkStrokeChartLine(b *testing.B) {
	clip := rect.Rect{URx: 2400, URy: 1500}
	r := NewRasterizer(clip)

	p := (&path.Data{}).
		MoveTo(vec.Vec2{X: 200, Y: 1300}).
		LineTo(vec.Vec2{X: 900, Y: 800}).
		LineTo(vec.Vec2{X: 1500, Y: 500}).
		LineTo(vec.Vec2{X: 2200, Y: 200})

	b.ReportAllocs()
	for b.Loop() {
		r.Width = 6
		r.Join = graphics.LineJoinRound
		r.Dash = []float64{22, 10}
		r.Stroke(p, func(y, xMin int, coverage []float32) {})
	}
}

// addCircle appends a circle made of four cubic Bézier arcs. The vertical
// direction is reversed for clockwise circles.
func addCircle(p *path.Data, cx, cy, r float64, clockwise bool) {
	const k = 0.5522847498
	s := 1.0
	if clockwise {
		s = -1
	}
	kr := k * r
	p.MoveTo(vec.Vec2{X: cx + r, Y: cy})
	arcs := [4][3]vec.Vec2{
		{{X: cx + r, Y: cy + s*kr}, {X: cx + kr, Y: cy + s*r}, {X: cx, Y: cy + s*r}},
		{{X: cx - kr, Y: cy + s*r}, {X: cx - r, Y: cy + s*kr}, {X: cx - r, Y: cy}},
		{{X: cx - r, Y: cy - s*kr}, {X: cx - kr, Y: cy - s*r}, {X: cx, Y: cy - s*r}},
		{{X: cx + kr, Y: cy - s*r}, {X: cx + r, Y: cy - s*kr}, {X: cx + r, Y: cy}},
	}
	for _, a := range arcs {
		p.Cmds = append(p.Cmds, path.CmdCubeTo)
		p.Coords = append(p.Coords, a[0], a[1], a[2])
	}
	p.Close()
}

func addCircleToVector(z *vector.Rasterizer, cx, cy, r float32, clockwise bool) {
	const k = float32(0.5522847498)
	s := float32(1)
	if clockwise {
		s = -1
	}
	kr := k * r
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+s*kr, cx+kr, cy+s*r, cx, cy+s*r)
	z.CubeTo(cx-kr, cy+s*r, cx-r, cy+s*kr, cx-r, cy)
	z.CubeTo(cx-r, cy-s*kr, cx-kr, cy-s*r, cx, cy-s*r)
	z.CubeTo(cx+kr, cy-s*r, cx+r, cy-s*kr, cx+r, cy)
	z.ClosePath()
}
