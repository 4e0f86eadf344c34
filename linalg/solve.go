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

// Package linalg implements the two solvers compared in the performance
// figure: Gaussian elimination with partial pivoting, and the conjugate
// gradient method for symmetric positive definite systems.
package linalg

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrDimension           = errors.New("matrix and vector dimensions do not match")
	ErrSingular            = errors.New("matrix is singular or nearly singular")
	ErrNotSymmetric        = errors.New("matrix is not symmetric")
	ErrNotPositiveDefinite = errors.New("matrix is not positive definite")
	ErrNoConvergence       = errors.New("conjugate gradient method did not converge")
)

const (
	// pivotThreshold is the smallest pivot magnitude accepted by
	// SolveGaussian.
	pivotThreshold = 1e-10

	// symmetryTolerance bounds |a_ij - a_ji| for symmetric input.
	symmetryTolerance = 1e-10

	// residualTolerance is the stopping criterion for the residual norm
	// of the conjugate gradient iteration.
	residualTolerance = 1e-10
)

func checkDims(a mat.Matrix, b mat.Vector) (int, error) {
	r, c := a.Dims()
	if r != c || r != b.Len() || r == 0 {
		return 0, ErrDimension
	}
	return r, nil
}

// SolveGaussian solves a·x = b by Gaussian elimination with partial
// pivoting. The inputs are not modified.
func SolveGaussian(a mat.Matrix, b mat.Vector) (*mat.VecDense, error) {
	n, err := checkDims(a, b)
	if err != nil {
		return nil, err
	}

	m := mat.DenseCopyOf(a)
	rhs := mat.VecDenseCopyOf(b)

	for k := range n {
		pivot := k
		best := math.Abs(m.At(k, k))
		for i := k + 1; i < n; i++ {
			if v := math.Abs(m.At(i, k)); v > best {
				best = v
				pivot = i
			}
		}
		if best < pivotThreshold {
			return nil, ErrSingular
		}

		if pivot != k {
			rk, rp := m.RawRowView(k), m.RawRowView(pivot)
			for j := k; j < n; j++ {
				rk[j], rp[j] = rp[j], rk[j]
			}
			bk, bp := rhs.AtVec(k), rhs.AtVec(pivot)
			rhs.SetVec(k, bp)
			rhs.SetVec(pivot, bk)
		}

		rk := m.RawRowView(k)
		for i := k + 1; i < n; i++ {
			ri := m.RawRowView(i)
			factor := ri[k] / rk[k]
			if factor == 0 {
				continue
			}
			for j := k; j < n; j++ {
				ri[j] -= factor * rk[j]
			}
			rhs.SetVec(i, rhs.AtVec(i)-factor*rhs.AtVec(k))
		}
	}

	x := mat.NewVecDense(n, nil)
	for i := n - 1; i >= 0; i-- {
		ri := m.RawRowView(i)
		sum := 0.0
		for j := i + 1; j < n; j++ {
			sum += ri[j] * x.AtVec(j)
		}
		x.SetVec(i, (rhs.AtVec(i)-sum)/ri[i])
	}
	return x, nil
}

// IsSymmetric reports whether a is square and equal to its transpose,
// up to a small tolerance.
func IsSymmetric(a mat.Matrix) bool {
	r, c := a.Dims()
	if r != c {
		return false
	}
	for i := range r {
		for j := range i {
			if math.Abs(a.At(i, j)-a.At(j, i)) > symmetryTolerance {
				return false
			}
		}
	}
	return true
}

// SolveConjugateGradient solves a·x = b for a symmetric positive definite
// matrix a, starting from x = 0. The iteration stops once the residual
// norm drops below 1e-10 and fails after 2n steps.
func SolveConjugateGradient(a mat.Matrix, b mat.Vector) (*mat.VecDense, error) {
	n, err := checkDims(a, b)
	if err != nil {
		return nil, err
	}
	if !IsSymmetric(a) {
		return nil, ErrNotSymmetric
	}
	sym := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, a.At(i, j))
		}
	}
	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return nil, ErrNotPositiveDefinite
	}

	x := mat.NewVecDense(n, nil)
	r := mat.VecDenseCopyOf(b)
	p := mat.VecDenseCopyOf(r)
	ap := mat.NewVecDense(n, nil)

	rsOld := mat.Dot(r, r)
	if math.Sqrt(rsOld) < residualTolerance {
		return x, nil
	}
	for range 2 * n {
		ap.MulVec(sym, p)
		alpha := rsOld / mat.Dot(p, ap)
		x.AddScaledVec(x, alpha, p)
		r.AddScaledVec(r, -alpha, ap)

		rsNew := mat.Dot(r, r)
		if math.Sqrt(rsNew) < residualTolerance {
			return x, nil
		}
		p.AddScaledVec(r, rsNew/rsOld, p)
		rsOld = rsNew
	}
	return nil, ErrNoConvergence
}

// RandomSPD returns a random, well conditioned, symmetric positive
// definite n×n matrix: MᵀM/n + I for M with entries uniform in [0, 1).
func RandomSPD(rng *rand.Rand, n int) *mat.SymDense {
	data := make([]float64, n*n)
	for i := range data {
		data[i] = rng.Float64()
	}
	m := mat.NewDense(n, n, data)

	a := mat.NewSymDense(n, nil)
	a.SymOuterK(1/float64(n), m.T())
	for i := range n {
		a.SetSym(i, i, a.At(i, i)+1)
	}
	return a
}
