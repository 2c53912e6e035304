// Package reference computes RMS normalization in float64 and measures how far
// a kernel's output drifts from it.
package reference

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/rmsnorm/internal/tensor"
)

// Tolerance is the acceptable drift of one output element versus the float64
// reference: |got - want| <= Abs + Rel*|want|.
type Tolerance struct {
	Abs float64
	Rel float64
}

// Tolerances per storage dtype. The bound covers float32 accumulation plus one
// rounding to the storage precision on store.
var Tolerances = map[tensor.DataType]Tolerance{
	tensor.Float32:  {Abs: 1e-5, Rel: 1e-5},
	tensor.Float16:  {Abs: 1e-3, Rel: 1e-3},
	tensor.BFloat16: {Abs: 1e-2, Rel: 8e-3},
}

// ToleranceFor returns the tolerance for dt.
func ToleranceFor(dt tensor.DataType) (Tolerance, error) {
	t, ok := Tolerances[dt]
	if !ok {
		return Tolerance{}, fmt.Errorf("reference: no tolerance configured for %s", dt)
	}
	return t, nil
}

// Within reports whether got is acceptably close to want.
func (t Tolerance) Within(got, want float64) bool {
	return math.Abs(got-want) <= t.Abs+t.Rel*math.Abs(want)
}

// RMSNorm normalizes every row of n values of x into a new slice.
// len(x) must be a multiple of n.
func RMSNorm(x, weight []float64, n int, eps float64) []float64 {
	out := make([]float64, len(x))
	for base := 0; base+n <= len(x); base += n {
		row := x[base : base+n]
		norm := floats.Norm(row, 2)
		rstd := 1 / math.Sqrt(norm*norm/float64(n)+eps)

		dst := out[base : base+n]
		floats.ScaleTo(dst, rstd, row)
		floats.Mul(dst, weight[:n])
	}
	return out
}

// Widen converts float32 values to float64.
func Widen(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// Report summarizes the drift of a kernel output.
type Report struct {
	MaxAbs     float64 // largest |got - want|
	MaxRel     float64 // largest |got - want| / |want| over nonzero want
	Violations int     // elements outside the tolerance
}

// Compare measures got against want under tol.
func Compare(got, want []float64, tol Tolerance) Report {
	var r Report
	diff := make([]float64, len(got))
	floats.SubTo(diff, got, want)
	for i, d := range diff {
		d = math.Abs(d)
		r.MaxAbs = math.Max(r.MaxAbs, d)
		if want[i] != 0 {
			r.MaxRel = math.Max(r.MaxRel, d/math.Abs(want[i]))
		}
		if !tol.Within(got[i], want[i]) {
			r.Violations++
		}
	}
	return r
}
