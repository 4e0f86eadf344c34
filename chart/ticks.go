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
	"math"
	"strconv"
)

// niceSteps are the mantissas allowed for linear tick spacing.
var niceSteps = []float64{1, 2, 2.5, 5, 10}

// NiceTicks returns at most about n+1 evenly spaced tick positions inside
// [lo, hi]. The spacing is 1, 2, 2.5 or 5 times a power of ten.
// If the interval is empty, the single value lo is returned.
func NiceTicks(lo, hi float64, n int) []float64 {
	if n < 1 {
		n = 1
	}
	if !(hi > lo) {
		return []float64{lo}
	}

	raw := (hi - lo) / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag * 10
	for _, s := range niceSteps {
		if s*mag >= raw {
			step = s * mag
			break
		}
	}

	const eps = 1e-9
	first := math.Ceil(lo/step - eps)
	last := math.Floor(hi/step + eps)
	var ticks []float64
	for k := first; k <= last; k++ {
		v := k * step
		if math.Abs(v) < step*eps {
			v = 0
		}
		ticks = append(ticks, v)
	}
	return ticks
}

// FormatTick formats a linear tick value with just enough decimals to
// distinguish ticks at the given spacing.
func FormatTick(v, step float64) string {
	digits := 0
	if step > 0 {
		for d := step; digits < 6 && math.Abs(d-math.Round(d)) > 1e-6; d *= 10 {
			digits++
		}
	}
	return strconv.FormatFloat(v, 'f', digits, 64)
}

// LogTicks returns tick positions for a logarithmic axis covering
// [lo, hi]. The major ticks are the powers of ten inside the range, the
// minor ticks are 2..9 times a power of ten. Both lo and hi must be
// positive.
func LogTicks(lo, hi float64) (major, minor []float64) {
	if !(lo > 0) || !(hi >= lo) {
		return nil, nil
	}
	const eps = 1e-9
	e0 := int(math.Floor(math.Log10(lo) + eps))
	e1 := int(math.Ceil(math.Log10(hi) - eps))
	for e := e0; e <= e1; e++ {
		base := math.Pow(10, float64(e))
		if inRange(base, lo, hi) {
			major = append(major, base)
		}
		for m := 2; m <= 9; m++ {
			v := float64(m) * base
			if inRange(v, lo, hi) {
				minor = append(minor, v)
			}
		}
	}
	return major, minor
}

func inRange(v, lo, hi float64) bool {
	const eps = 1e-9
	return v >= lo*(1-eps) && v <= hi*(1+eps)
}
