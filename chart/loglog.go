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

package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"slices"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/figures/canvas"
)

// Errors returned by [LogLog.Validate].
var (
	ErrLength      = errors.New("x and y values differ in length")
	ErrNonPositive = errors.New("value not positive on a logarithmic axis")
)

const (
	axisPad         = 0.05 // fraction of the data range added on each side
	minorTickLength = 2
	labelPad        = 4
	exponentScale   = 0.7

	legendInset   = 8
	legendPad     = 5
	legendLineLen = 20
	legendGap     = 6
)

var (
	gridColor   = color.RGBA{0xb0, 0xb0, 0xb0, 0xff}
	legendFrame = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
)

// Series is one data line of a [LogLog] chart.
type Series struct {
	Label string
	X, Y  []float64

	Color color.Color
	Width float64   // line width in points; 1.5 if zero
	Dash  []float64 // dash pattern in points; nil for a solid line
}

// LogLog is a line chart where both axes use a logarithmic scale.
type LogLog struct {
	Title  string
	XLabel string
	YLabel string
	Series []Series

	// Grid enables grid lines at both major and minor ticks.
	Grid bool
}

// Validate checks that every series has matching, non-empty and
// strictly positive coordinates.
func (p *LogLog) Validate() error {
	if len(p.Series) == 0 {
		return ErrNoData
	}
	for _, s := range p.Series {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("series %q: %w (%d vs %d)", s.Label, ErrLength, len(s.X), len(s.Y))
		}
		if len(s.X) == 0 {
			return fmt.Errorf("series %q: %w", s.Label, ErrNoData)
		}
		for i := range s.X {
			x, y := s.X[i], s.Y[i]
			if !(x > 0) || !(y > 0) || math.IsInf(x, 0) || math.IsInf(y, 0) {
				return fmt.Errorf("series %q, point %d: %w", s.Label, i, ErrNonPositive)
			}
		}
	}
	return nil
}

// logAxis maps data values to page coordinates on one axis.
type logAxis struct {
	lo, hi       float64 // log10 of the visible range
	from, to     float64 // page coordinates of lo and hi
	major, minor []float64
}

func newLogAxis(dataMin, dataMax float64) *logAxis {
	lo, hi := math.Log10(dataMin), math.Log10(dataMax)
	if hi <= lo {
		lo -= 0.5
		hi += 0.5
	}
	pad := axisPad * (hi - lo)
	a := &logAxis{lo: lo - pad, hi: hi + pad}
	a.major, a.minor = LogTicks(math.Pow(10, a.lo), math.Pow(10, a.hi))
	return a
}

func (a *logAxis) pos(v float64) float64 {
	return a.from + (math.Log10(v)-a.lo)/(a.hi-a.lo)*(a.to-a.from)
}

// logLayout holds the positions of the chart elements, in points.
type logLayout struct {
	axes   rect.Rect // LLy is the top edge
	x, y   *logAxis
	titleY float64
	xLabel float64 // baseline of the x axis label
	yLabel float64 // x position of the rotated y axis label
}

func (l *logLayout) point(x, y float64) vec.Vec2 {
	return vec.Vec2{X: l.x.pos(x), Y: l.y.pos(y)}
}

func (p *LogLog) layout(c *canvas.Canvas) (*logLayout, error) {
	xMin, xMax := math.Inf(+1), math.Inf(-1)
	yMin, yMax := math.Inf(+1), math.Inf(-1)
	for _, s := range p.Series {
		for i := range s.X {
			xMin, xMax = min(xMin, s.X[i]), max(xMax, s.X[i])
			yMin, yMax = min(yMin, s.Y[i]), max(yMax, s.Y[i])
		}
	}
	l := &logLayout{
		x: newLogAxis(xMin, xMax),
		y: newLogAxis(yMin, yMax),
	}

	title, err := c.MeasureText(p.Title, titleSize)
	if err != nil {
		return nil, err
	}
	label, err := c.MeasureText(p.XLabel+p.YLabel, labelSize)
	if err != nil {
		return nil, err
	}
	yTickW := 0.0
	var tickH float64
	for _, v := range l.y.major {
		pl, err := newPowerLabel(c, v)
		if err != nil {
			return nil, err
		}
		yTickW = max(yTickW, pl.width)
		tickH = max(tickH, pl.height)
	}
	for _, v := range l.x.major {
		pl, err := newPowerLabel(c, v)
		if err != nil {
			return nil, err
		}
		tickH = max(tickH, pl.height)
	}

	pageW, pageH := c.Size()
	top := margin + title.Height() + labelPad
	left := margin + label.Height() + labelPad + yTickW + tickPad + tickLength
	bottom := margin + label.Height() + labelPad + tickH + tickPad + tickLength
	right := float64(margin + 2*labelSize)

	l.axes = rect.Rect{LLx: left, LLy: top, URx: pageW - right, URy: pageH - bottom}
	l.x.from, l.x.to = l.axes.LLx, l.axes.URx
	l.y.from, l.y.to = l.axes.URy, l.axes.LLy
	l.titleY = top - labelPad - title.Descent
	l.xLabel = l.axes.URy + tickLength + tickPad + tickH + labelPad + label.Ascent
	l.yLabel = l.axes.LLx - tickLength - tickPad - yTickW - labelPad
	return l, nil
}

// Draw paints the chart onto the canvas.
func (p *LogLog) Draw(c *canvas.Canvas) error {
	if err := p.Validate(); err != nil {
		return err
	}
	l, err := p.layout(c)
	if err != nil {
		return err
	}
	axes := l.axes

	if p.Grid {
		grid := canvas.Style{Width: lineWidth, Color: gridColor}
		for _, v := range slices.Concat(l.x.minor, l.x.major) {
			x := l.x.pos(v)
			c.Line(x, axes.LLy, x, axes.URy, grid)
		}
		for _, v := range slices.Concat(l.y.minor, l.y.major) {
			y := l.y.pos(v)
			c.Line(axes.LLx, y, axes.URx, y, grid)
		}
	}

	for _, s := range p.Series {
		pts := make([]vec.Vec2, len(s.X))
		for i := range s.X {
			pts[i] = l.point(s.X[i], s.Y[i])
		}
		c.Stroke(canvas.Polyline(pts...), s.style())
	}

	frame := canvas.Style{Width: lineWidth, Color: black}
	c.Stroke(canvas.Rect(axes.LLx, axes.LLy, axes.URx, axes.URy), frame)

	for _, v := range l.x.minor {
		x := l.x.pos(v)
		c.Line(x, axes.URy, x, axes.URy+minorTickLength, frame)
	}
	for _, v := range l.y.minor {
		y := l.y.pos(v)
		c.Line(axes.LLx, y, axes.LLx-minorTickLength, y, frame)
	}
	for _, v := range l.x.major {
		x := l.x.pos(v)
		c.Line(x, axes.URy, x, axes.URy+tickLength, frame)
		pl, err := newPowerLabel(c, v)
		if err != nil {
			return err
		}
		if err := pl.draw(c, x-pl.width/2, axes.URy+tickLength+tickPad+pl.height); err != nil {
			return err
		}
	}
	for _, v := range l.y.major {
		y := l.y.pos(v)
		c.Line(axes.LLx, y, axes.LLx-tickLength, y, frame)
		pl, err := newPowerLabel(c, v)
		if err != nil {
			return err
		}
		if err := pl.draw(c, axes.LLx-tickLength-tickPad-pl.width, y+pl.height/2); err != nil {
			return err
		}
	}

	mid := (axes.LLx + axes.URx) / 2
	if p.XLabel != "" {
		err := c.Text(mid, l.xLabel, p.XLabel, labelSize, black, canvas.Center, canvas.Baseline)
		if err != nil {
			return err
		}
	}
	if p.YLabel != "" {
		midY := (axes.LLy + axes.URy) / 2
		err := c.TextVertical(l.yLabel, midY, p.YLabel, labelSize, black, canvas.Center, canvas.Bottom)
		if err != nil {
			return err
		}
	}
	if p.Title != "" {
		err := c.Text(mid, l.titleY, p.Title, titleSize, black, canvas.Center, canvas.Baseline)
		if err != nil {
			return err
		}
	}

	return p.drawLegend(c, l)
}

func (s *Series) style() canvas.Style {
	width := s.Width
	if width == 0 {
		width = 1.5
	}
	col := s.Color
	if col == nil {
		col = black
	}
	return canvas.Style{
		Width: width,
		Color: col,
		Join:  graphics.LineJoinRound,
		Dash:  s.Dash,
	}
}

// drawLegend places a framed legend in the upper left corner of the axes.
func (p *LogLog) drawLegend(c *canvas.Canvas, l *logLayout) error {
	var labelled []Series
	for _, s := range p.Series {
		if s.Label != "" {
			labelled = append(labelled, s)
		}
	}
	if len(labelled) == 0 {
		return nil
	}

	textW := 0.0
	var ext canvas.TextExtent
	for _, s := range labelled {
		e, err := c.MeasureText(s.Label, labelSize)
		if err != nil {
			return err
		}
		textW = max(textW, e.Width)
		ext = e
	}
	rowH := 1.4 * labelSize
	x0 := l.axes.LLx + legendInset
	y0 := l.axes.LLy + legendInset
	x1 := x0 + 2*legendPad + legendLineLen + legendGap + textW
	y1 := y0 + 2*legendPad + float64(len(labelled))*rowH

	c.FillRect(x0, y0, x1, y1, white)
	c.Stroke(canvas.Rect(x0, y0, x1, y1), canvas.Style{Width: lineWidth, Color: legendFrame})

	for i, s := range labelled {
		y := y0 + legendPad + (float64(i)+0.5)*rowH
		xs := x0 + legendPad
		c.Line(xs, y, xs+legendLineLen, y, s.style())
		err := c.Text(xs+legendLineLen+legendGap, y+ext.CapHeight/2, s.Label, labelSize, black, canvas.Left, canvas.Baseline)
		if err != nil {
			return err
		}
	}
	return nil
}

// powerLabel is a tick label of the form 10ⁿ.
type powerLabel struct {
	base, exp    string
	baseW, width float64
	rise, height float64
}

// newPowerLabel measures the label for the power of ten closest to v.
func newPowerLabel(c *canvas.Canvas, v float64) (*powerLabel, error) {
	e := int(math.Round(math.Log10(v)))
	exp := strings.Replace(strconv.Itoa(e), "-", "−", 1)

	base, err := c.MeasureText("10", tickSize)
	if err != nil {
		return nil, err
	}
	sup, err := c.MeasureText(exp, tickSize*exponentScale)
	if err != nil {
		return nil, err
	}
	rise := 0.6 * base.CapHeight
	return &powerLabel{
		base:   "10",
		exp:    exp,
		baseW:  base.Width,
		width:  base.Width + sup.Width,
		rise:   rise,
		height: max(base.CapHeight, rise+sup.CapHeight),
	}, nil
}

// draw paints the label with the start of its baseline at (x, y).
func (pl *powerLabel) draw(c *canvas.Canvas, x, y float64) error {
	err := c.Text(x, y, pl.base, tickSize, black, canvas.Left, canvas.Baseline)
	if err != nil {
		return err
	}
	return c.Text(x+pl.baseW, y-pl.rise, pl.exp, tickSize*exponentScale, black, canvas.Left, canvas.Baseline)
}
