// Package dispatch maps a (variant, dtype) pair to a specialized kernel and
// validates every launch once, before any row runs.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
)

var (
	// ErrNilTensor is returned when a launch is missing a buffer.
	ErrNilTensor = errors.New("nil tensor")
	// ErrShapeMismatch is returned when a buffer is too small for the launch grid.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrDTypeMismatch is returned when input, weight and output dtypes differ.
	ErrDTypeMismatch = errors.New("dtype mismatch")
	// ErrAliased is returned when the output shares memory with an input.
	ErrAliased = errors.New("output aliases an input")
)

// Args describes one launch: Rows rows of NElements values each, read from X
// at offset row*NElements and written to Out at the same offset. Weight is
// shared by every row.
type Args struct {
	X         *tensor.RawTensor
	Weight    *tensor.RawTensor
	Out       *tensor.RawTensor
	NElements int

	// Rows is the grid size. Zero derives it from X, which must then hold a
	// whole number of rows.
	Rows int
}

// Kernel is one compiled specialization. Launch trusts its arguments; the
// Dispatcher validates them first.
type Kernel interface {
	Launch(ctx context.Context, args Args) error
}

// Backend builds kernels for a device.
type Backend interface {
	Name() string
	Device() tensor.Device
	Specialize(v variant.Variant, dtype tensor.DataType) (Kernel, error)
}

type kernelKey struct {
	variant variant.Variant
	dtype   tensor.DataType
}

// Dispatcher caches specializations per backend.
type Dispatcher struct {
	backend Backend

	mu      sync.RWMutex
	kernels map[kernelKey]Kernel
}

// New creates a Dispatcher for backend.
func New(backend Backend) *Dispatcher {
	return &Dispatcher{
		backend: backend,
		kernels: make(map[kernelKey]Kernel),
	}
}

// Backend returns the backend kernels are built on.
func (d *Dispatcher) Backend() Backend {
	return d.backend
}

// Kernel returns the specialization for (v, dtype), building it on first use.
func (d *Dispatcher) Kernel(v variant.Variant, dtype tensor.DataType) (Kernel, error) {
	key := kernelKey{variant: v, dtype: dtype}

	d.mu.RLock()
	if k, ok := d.kernels[key]; ok {
		d.mu.RUnlock()
		return k, nil
	}
	d.mu.RUnlock()

	if err := v.Validate(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if k, ok := d.kernels[key]; ok {
		return k, nil
	}

	k, err := d.backend.Specialize(v, dtype)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %s: specialize %s/%s: %w", d.backend.Name(), v.Key(), dtype, err)
	}
	slog.Debug("specialized rms norm kernel", "backend", d.backend.Name(), "variant", v.Key(), "dtype", dtype.String())
	d.kernels[key] = k
	return k, nil
}

// Launch validates args against v and runs the matching specialization.
func (d *Dispatcher) Launch(ctx context.Context, v variant.Variant, args Args) error {
	rows, err := Validate(v, args)
	if err != nil {
		return err
	}
	k, err := d.Kernel(v, args.X.DType())
	if err != nil {
		return err
	}
	args.Rows = rows
	return k.Launch(ctx, args)
}

// LaunchAuto picks the table variant for args.NElements and epsilon, then launches.
func (d *Dispatcher) LaunchAuto(ctx context.Context, epsilon float32, args Args) (variant.Variant, error) {
	v, err := variant.Select(args.NElements, epsilon)
	if err != nil {
		return variant.Variant{}, err
	}
	return v, d.Launch(ctx, v, args)
}

// Validate checks args against v and returns the number of rows to launch.
func Validate(v variant.Variant, args Args) (int, error) {
	if err := v.Validate(); err != nil {
		return 0, err
	}
	if args.X == nil || args.Weight == nil || args.Out == nil {
		return 0, fmt.Errorf("dispatch: %w", ErrNilTensor)
	}
	n := args.NElements
	if err := v.Check(n); err != nil {
		return 0, fmt.Errorf("dispatch: %w", err)
	}

	dtype := args.X.DType()
	if args.Weight.DType() != dtype || args.Out.DType() != dtype {
		return 0, fmt.Errorf("dispatch: %w: x=%s weight=%s out=%s",
			ErrDTypeMismatch, dtype, args.Weight.DType(), args.Out.DType())
	}

	total := args.X.NumElements()
	rows := args.Rows
	switch {
	case rows < 0:
		return 0, fmt.Errorf("dispatch: %w: negative row count %d", ErrShapeMismatch, rows)
	case rows == 0:
		if total%n != 0 {
			return 0, fmt.Errorf("dispatch: %w: %d elements is not a whole number of rows of %d", ErrShapeMismatch, total, n)
		}
		rows = total / n
	case rows*n > total:
		return 0, fmt.Errorf("dispatch: %w: %d rows of %d need %d input elements, have %d", ErrShapeMismatch, rows, n, rows*n, total)
	}
	if args.Out.NumElements() < rows*n {
		return 0, fmt.Errorf("dispatch: %w: output holds %d elements, need %d", ErrShapeMismatch, args.Out.NumElements(), rows*n)
	}
	if args.Weight.NumElements() < n {
		return 0, fmt.Errorf("dispatch: %w: weight holds %d elements, need %d", ErrShapeMismatch, args.Weight.NumElements(), n)
	}

	if tensor.Overlaps(args.Out, args.X) || tensor.Overlaps(args.Out, args.Weight) {
		return 0, fmt.Errorf("dispatch: %w", ErrAliased)
	}
	return rows, nil
}

// Normalize runs v over typed slices. x must hold a whole number of rows of n
// values; dst must be at least as long as x.
func Normalize[T tensor.Element](ctx context.Context, d *Dispatcher, v variant.Variant, dst, x, weight []T, n int) error {
	if len(x) == 0 || len(dst) == 0 || len(weight) == 0 {
		return fmt.Errorf("dispatch: %w: empty buffer", ErrShapeMismatch)
	}
	xt, err := tensor.Wrap(x, tensor.Shape{len(x)})
	if err != nil {
		return err
	}
	wt, err := tensor.Wrap(weight, tensor.Shape{len(weight)})
	if err != nil {
		return err
	}
	ot, err := tensor.Wrap(dst, tensor.Shape{len(dst)})
	if err != nil {
		return err
	}
	return d.Launch(ctx, v, Args{X: xt, Weight: wt, Out: ot, NElements: n})
}
