// Package variant holds the (BlockSize, Epsilon) pairs the RMS normalization
// kernel is specialized for, and the rules that pick one for a row length.
package variant

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// MaxBlockSize bounds the tile width of a custom variant.
const MaxBlockSize = 1 << 16

var (
	// ErrInvalidVariant is returned for a BlockSize that is not a power of two in
	// [1, MaxBlockSize] or an Epsilon that is not finite and positive.
	ErrInvalidVariant = errors.New("invalid variant")
	// ErrEmptyRow is returned when the row length is zero or negative.
	ErrEmptyRow = errors.New("row length must be positive")
	// ErrRowTooLong is returned when a row does not fit in one tile.
	ErrRowTooLong = errors.New("row length exceeds block size")
	// ErrNoVariant is returned by Select when no table entry fits.
	ErrNoVariant = errors.New("no variant fits")
)

// Variant selects one specialization of the kernel.
type Variant struct {
	BlockSize int     // lanes per tile, an upper bound on the row length
	Epsilon   float32 // added to the mean square before the inverse square root
}

// Table lists the shipped specializations in their canonical order.
var Table = []Variant{
	{BlockSize: 1024, Epsilon: 1e-5},
	{BlockSize: 2048, Epsilon: 1e-5},
	{BlockSize: 4096, Epsilon: 1e-5},
	{BlockSize: 8192, Epsilon: 1e-5},
	{BlockSize: 1024, Epsilon: 1e-6},
	{BlockSize: 2048, Epsilon: 1e-6},
	{BlockSize: 4096, Epsilon: 1e-6},
	{BlockSize: 8192, Epsilon: 1e-6},
}

// New returns a custom variant after validating it.
func New(blockSize int, epsilon float32) (Variant, error) {
	v := Variant{BlockSize: blockSize, Epsilon: epsilon}
	if err := v.Validate(); err != nil {
		return Variant{}, err
	}
	return v, nil
}

// Validate checks the pair itself, independent of any row length.
func (v Variant) Validate() error {
	if v.BlockSize < 1 || v.BlockSize > MaxBlockSize || v.BlockSize&(v.BlockSize-1) != 0 {
		return fmt.Errorf("%w: block size %d must be a power of two in [1, %d]", ErrInvalidVariant, v.BlockSize, MaxBlockSize)
	}
	eps := float64(v.Epsilon)
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps <= 0 {
		return fmt.Errorf("%w: epsilon %g must be finite and positive", ErrInvalidVariant, v.Epsilon)
	}
	return nil
}

// Check reports whether rows of length n can run under v.
func (v Variant) Check(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrEmptyRow, n)
	}
	if n > v.BlockSize {
		return fmt.Errorf("%w: %d > %d", ErrRowTooLong, n, v.BlockSize)
	}
	return nil
}

// Key is a stable identifier, used to name cached specializations.
func (v Variant) Key() string {
	return "bs" + strconv.Itoa(v.BlockSize) + "_eps" + strconv.FormatFloat(float64(v.Epsilon), 'e', -1, 32)
}

// String implements fmt.Stringer.
func (v Variant) String() string {
	return fmt.Sprintf("BLOCK_SIZE=%d EPS=%g", v.BlockSize, v.Epsilon)
}

// Select returns the table entry with the given epsilon and the smallest
// BlockSize that holds a row of length n.
func Select(n int, epsilon float32) (Variant, error) {
	if n <= 0 {
		return Variant{}, fmt.Errorf("%w: got %d", ErrEmptyRow, n)
	}

	best := Variant{}
	found := false
	for _, v := range Table {
		if v.Epsilon != epsilon || v.BlockSize < n {
			continue
		}
		if !found || v.BlockSize < best.BlockSize {
			best, found = v, true
		}
	}
	if !found {
		return Variant{}, fmt.Errorf("%w: row length %d with epsilon %g", ErrNoVariant, n, epsilon)
	}
	return best, nil
}

// Epsilons returns the distinct epsilons of the table in table order.
func Epsilons() []float32 {
	var out []float32
	seen := make(map[float32]bool)
	for _, v := range Table {
		if !seen[v.Epsilon] {
			seen[v.Epsilon] = true
			out = append(out, v.Epsilon)
		}
	}
	return out
}
