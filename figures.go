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

// Package figures generates the illustrations for the linear solver notes.
//
// Two PNG images are written into the output directory:
//
//   - multiply.png shows a random 4x4 matrix as an annotated heatmap,
//   - performance.png compares solver timings on log-log axes.
//
// Existing files are overwritten.
package figures

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"seehuhn.de/go/figures/canvas"
	"seehuhn.de/go/figures/chart"
)

// File names of the generated images, relative to [Config.Dir].
const (
	MatrixFile      = "multiply.png"
	PerformanceFile = "performance.png"
)

// MatrixSize is the number of rows and columns of the heatmap sample.
const MatrixSize = 4

// Solver timings in milliseconds for the problem sizes in ProblemSizes.
// These are placeholder values, not measurements.
var (
	ProblemSizes             = []float64{100, 500, 1000, 2000}
	GaussianEliminationTimes = []float64{0.1, 5.2, 42.1, 336.8}
	ConjugateGradientTimes   = []float64{0.05, 1.8, 14.3, 112.5}
)

// Page sizes, in inches.
const (
	matrixWidth       = 6
	matrixHeight      = 6
	performanceWidth  = 8
	performanceHeight = 5
)

// Config controls where and how the figures are written.
type Config struct {
	// Dir is the output directory. It is created if needed.
	Dir string

	// DPI is the output resolution in pixels per inch.
	DPI float64

	// Rand is the source for the matrix sample.
	// If nil, a randomly seeded generator is used.
	Rand *rand.Rand

	// Logger receives a debug record for every file written.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultConfig returns the settings used by the genfigures command.
func DefaultConfig() *Config {
	return &Config{
		Dir: "images",
		DPI: 300,
	}
}

func (cfg *Config) rng() *rand.Rand {
	if cfg.Rand != nil {
		return cfg.Rand
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func (cfg *Config) logger() *slog.Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return slog.Default()
}

// Generate writes both figures into cfg.Dir.
func Generate(cfg *Config) error {
	if err := EnsureDir(cfg.Dir); err != nil {
		return err
	}
	if _, err := WriteMatrixHeatmap(cfg); err != nil {
		return err
	}
	return WritePerformanceChart(cfg)
}

// EnsureDir creates the directory dir, including any parents.
// It is not an error if the directory already exists.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

// RandomMatrix returns an n×n matrix with entries drawn uniformly
// from [0, 1).
func RandomMatrix(rng *rand.Rand, n int) *mat.Dense {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewDense(n, n, data)
}

// WriteMatrixHeatmap draws a random matrix sample and writes it as an
// annotated heatmap to MatrixFile. The sample is returned.
func WriteMatrixHeatmap(cfg *Config) (*mat.Dense, error) {
	if err := EnsureDir(cfg.Dir); err != nil {
		return nil, err
	}

	sample := RandomMatrix(cfg.rng(), MatrixSize)
	h := matrixHeatmap(sample)
	err := writeFigure(cfg, MatrixFile, matrixWidth, matrixHeight, h.Draw)
	if err != nil {
		return nil, err
	}
	return sample, nil
}

// matrixHeatmap describes the figure written by WriteMatrixHeatmap.
func matrixHeatmap(sample mat.Matrix) *chart.Heatmap {
	return &chart.Heatmap{
		Title:  "Matrix Multiplication Example",
		Data:   sample,
		Format: "%.2f",
	}
}

// WritePerformanceChart writes the solver timing comparison to
// PerformanceFile.
func WritePerformanceChart(cfg *Config) error {
	if err := EnsureDir(cfg.Dir); err != nil {
		return err
	}

	p := &chart.LogLog{
		Title:  "Solver Performance Comparison",
		XLabel: "Matrix Size (n x n)",
		YLabel: "Time (ms)",
		Grid:   true,
		Series: []chart.Series{
			{
				Label: "Gaussian Elimination",
				X:     ProblemSizes,
				Y:     GaussianEliminationTimes,
				Color: color.RGBA{0xff, 0, 0, 0xff},
			},
			{
				Label: "Conjugate Gradient",
				X:     ProblemSizes,
				Y:     ConjugateGradientTimes,
				Color: color.RGBA{0, 0, 0xff, 0xff},
				Dash:  []float64{5.55, 2.4},
			},
		},
	}

	return writeFigure(cfg, PerformanceFile, performanceWidth, performanceHeight, p.Draw)
}

// writeFigure renders a page of the given size in inches and saves it
// as a PNG file in the output directory.
func writeFigure(cfg *Config, name string, width, height float64, draw func(*canvas.Canvas) error) error {
	c := canvas.New(width*canvas.PointsPerInch, height*canvas.PointsPerInch, cfg.DPI)
	defer c.Close()

	fname := filepath.Join(cfg.Dir, name)
	if err := draw(c); err != nil {
		return fmt.Errorf("%s: %w", fname, err)
	}
	if err := c.SavePNG(fname); err != nil {
		return fmt.Errorf("%s: %w", fname, err)
	}

	b := c.Image().Bounds()
	cfg.logger().Debug("figure written",
		"file", fname,
		"width", b.Dx(),
		"height", b.Dy(),
		"dpi", cfg.DPI)
	return nil
}
