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
	"strconv"

	"gonum.org/v1/gonum/mat"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/figures/canvas"
)

// Text sizes and distances, in points.
const (
	titleSize = 12
	labelSize = 10
	tickSize  = 10

	margin     = 12
	titlePad   = 20
	tickLength = 3.5
	tickPad    = 3.5
	lineWidth  = 0.8
)

// colorBarSteps is the number of colour bands used to paint the colour bar.
const colorBarSteps = 256

var (
	black = color.RGBA{0, 0, 0, 0xff}
	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// ErrNoData is returned when a chart has nothing to show.
var ErrNoData = errors.New("chart has no data")

// Heatmap shows a matrix as a grid of coloured cells, each annotated with
// its value, next to a colour bar.
type Heatmap struct {
	Title string
	Data  mat.Matrix

	// Format is the fmt verb used for the cell labels.
	// If empty, "%.2f" is used.
	Format string

	// LabelColor is the colour of the cell labels.
	// If nil, white is used.
	LabelColor color.Color
}

// CellLabels returns the annotation text for every cell, indexed by row
// and column.
func (h *Heatmap) CellLabels() [][]string {
	format := h.Format
	if format == "" {
		format = "%.2f"
	}
	rows, cols := h.Data.Dims()
	res := make([][]string, rows)
	for i := range rows {
		res[i] = make([]string, cols)
		for j := range cols {
			res[i][j] = fmt.Sprintf(format, h.Data.At(i, j))
		}
	}
	return res
}

// heatmapLayout holds the positions of the chart elements, in points.
type heatmapLayout struct {
	cells    rect.Rect // the matrix cells, LLy is the top edge
	bar      rect.Rect // the colour bar, LLy is the top edge
	titleY   float64   // baseline of the title
	lo, hi   float64   // data range mapped to the colour map
	barTicks []float64
	barStep  float64
}

func (l *heatmapLayout) cellSize(rows, cols int) (w, h float64) {
	return (l.cells.URx - l.cells.LLx) / float64(cols),
		(l.cells.URy - l.cells.LLy) / float64(rows)
}

// norm maps a data value to the colour map parameter.
func (l *heatmapLayout) norm(v float64) float64 {
	if l.hi <= l.lo {
		return 0
	}
	return (v - l.lo) / (l.hi - l.lo)
}

func (h *Heatmap) layout(c *canvas.Canvas) (*heatmapLayout, error) {
	rows, cols := h.Data.Dims()
	if rows == 0 || cols == 0 {
		return nil, ErrNoData
	}

	l := &heatmapLayout{lo: math.Inf(+1), hi: math.Inf(-1)}
	for i := range rows {
		for j := range cols {
			v := h.Data.At(i, j)
			l.lo = min(l.lo, v)
			l.hi = max(l.hi, v)
		}
	}
	l.barTicks = NiceTicks(l.lo, l.hi, 5)
	if len(l.barTicks) > 1 {
		l.barStep = l.barTicks[1] - l.barTicks[0]
	}

	title, err := c.MeasureText(h.Title, titleSize)
	if err != nil {
		return nil, err
	}
	tick, err := c.MeasureText("0", tickSize)
	if err != nil {
		return nil, err
	}
	rowLabelWidth := 0.0
	for i := range rows {
		e, err := c.MeasureText(strconv.Itoa(i), tickSize)
		if err != nil {
			return nil, err
		}
		rowLabelWidth = max(rowLabelWidth, e.Width)
	}
	barLabelWidth := 0.0
	for _, v := range l.barTicks {
		e, err := c.MeasureText(FormatTick(v, l.barStep), tickSize)
		if err != nil {
			return nil, err
		}
		barLabelWidth = max(barLabelWidth, e.Width)
	}

	pageW, pageH := c.Size()
	top := margin + title.Height() + titlePad + tick.Height() + tickPad + tickLength
	left := margin + rowLabelWidth + tickPad + tickLength
	right := tickLength + tickPad + barLabelWidth + margin
	bottom := float64(margin)

	// the colour bar and the gap before it are each 5% of the axes width
	availW := (pageW - left - right) / 1.1
	availH := pageH - top - bottom
	cell := min(availW/float64(cols), availH/float64(rows))
	w := cell * float64(cols)
	ht := cell * float64(rows)

	x0 := left + (availW*1.1-w*1.1)/2
	y0 := top + (availH-ht)/2
	l.cells = rect.Rect{LLx: x0, LLy: y0, URx: x0 + w, URy: y0 + ht}
	bx := l.cells.URx + 0.05*w
	l.bar = rect.Rect{LLx: bx, LLy: y0, URx: bx + 0.05*w, URy: y0 + ht}
	l.titleY = y0 - tickLength - tickPad - tick.Height() - titlePad - title.Descent
	return l, nil
}

// Draw paints the heatmap onto the canvas.
func (h *Heatmap) Draw(c *canvas.Canvas) error {
	if h.Data == nil {
		return ErrNoData
	}
	l, err := h.layout(c)
	if err != nil {
		return err
	}
	rows, cols := h.Data.Dims()
	cw, ch := l.cellSize(rows, cols)
	cells := l.cells

	// Each cell is filled up to the bottom right corner of the grid and
	// then partly covered by its successors, so that neighbouring cells
	// share no anti-aliased edge.
	for i := range rows {
		for j := range cols {
			x := cells.LLx + float64(j)*cw
			y := cells.LLy + float64(i)*ch
			col := Viridis(l.norm(h.Data.At(i, j)))
			c.FillRect(x, y, cells.URx, cells.URy, col)
		}
	}

	labelColor := h.LabelColor
	if labelColor == nil {
		labelColor = white
	}
	for i, row := range h.CellLabels() {
		for j, s := range row {
			x := cells.LLx + (float64(j)+0.5)*cw
			y := cells.LLy + (float64(i)+0.5)*ch
			err := c.Text(x, y, s, labelSize, labelColor, canvas.Center, canvas.Middle)
			if err != nil {
				return err
			}
		}
	}

	frame := canvas.Style{Width: lineWidth, Color: black}
	c.Stroke(canvas.Rect(cells.LLx, cells.LLy, cells.URx, cells.URy), frame)

	// column ticks above the grid, row ticks to the left
	for j := range cols {
		x := cells.LLx + (float64(j)+0.5)*cw
		c.Line(x, cells.LLy, x, cells.LLy-tickLength, frame)
		err := c.Text(x, cells.LLy-tickLength-tickPad, strconv.Itoa(j), tickSize, black, canvas.Center, canvas.Bottom)
		if err != nil {
			return err
		}
	}
	for i := range rows {
		y := cells.LLy + (float64(i)+0.5)*ch
		c.Line(cells.LLx, y, cells.LLx-tickLength, y, frame)
		err := c.Text(cells.LLx-tickLength-tickPad, y, strconv.Itoa(i), tickSize, black, canvas.Right, canvas.Middle)
		if err != nil {
			return err
		}
	}

	if err := h.drawColorBar(c, l, frame); err != nil {
		return err
	}

	if h.Title != "" {
		mid := (cells.LLx + cells.URx) / 2
		err := c.Text(mid, l.titleY, h.Title, titleSize, black, canvas.Center, canvas.Baseline)
		if err != nil {
			return err
		}
	}
	return nil
}

// drawColorBar paints the colour scale with its ticks. Bands are painted
// from the bottom up, each reaching to the top of the bar.
func (h *Heatmap) drawColorBar(c *canvas.Canvas, l *heatmapLayout, frame canvas.Style) error {
	bar := l.bar
	barH := bar.URy - bar.LLy
	for k := range colorBarSteps {
		t := float64(k) / colorBarSteps
		yBottom := bar.URy - t*barH
		c.FillRect(bar.LLx, bar.LLy, bar.URx, yBottom, Viridis(t+0.5/colorBarSteps))
	}
	c.Stroke(canvas.Rect(bar.LLx, bar.LLy, bar.URx, bar.URy), frame)

	for _, v := range l.barTicks {
		y := bar.URy - l.norm(v)*barH
		if l.hi <= l.lo {
			y = bar.URy
		}
		c.Line(bar.URx, y, bar.URx+tickLength, y, frame)
		label := FormatTick(v, l.barStep)
		err := c.Text(bar.URx+tickLength+tickPad, y, label, tickSize, black, canvas.Left, canvas.Middle)
		if err != nil {
			return err
		}
	}
	return nil
}
