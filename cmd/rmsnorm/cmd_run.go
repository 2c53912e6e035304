package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/born-ml/rmsnorm/internal/backend/cpu"
	"github.com/born-ml/rmsnorm/internal/backend/webgpu"
	"github.com/born-ml/rmsnorm/internal/dispatch"
	"github.com/born-ml/rmsnorm/internal/envconfig"
	"github.com/born-ml/rmsnorm/internal/parallel"
	"github.com/born-ml/rmsnorm/internal/reference"
	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
)

// errOutOfTolerance is returned by run when the kernel drifts past the
// reference tolerance of the dtype.
var errOutOfTolerance = errors.New("output outside tolerance")

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Normalize random rows and check them against a float64 reference",
		Args:  cobra.ExactArgs(0),
		RunE:  RunHandler,
	}

	runCmd.Flags().Int("rows", 64, "Number of rows")
	runCmd.Flags().Int("n", 4096, "Elements per row")
	runCmd.Flags().String("dtype", "bf16", "Storage type: f32, f16 or bf16")
	runCmd.Flags().Float32("eps", 1e-6, "Epsilon added to the mean square")
	runCmd.Flags().Int("block-size", 0, "Tile width; 0 selects the smallest table variant that fits")
	runCmd.Flags().String("backend", "", "Compute backend: cpu or webgpu (default $RMSNORM_BACKEND)")
	runCmd.Flags().Int64("seed", 1, "Random seed")

	return runCmd
}

// runOptions holds the parsed flags of the run command.
type runOptions struct {
	rows      int
	n         int
	dtype     tensor.DataType
	eps       float32
	blockSize int
	backend   string
	seed      int64
}

func parseRunOptions(cmd *cobra.Command) (runOptions, error) {
	var opts runOptions
	var err error
	flags := cmd.Flags()

	if opts.rows, err = flags.GetInt("rows"); err != nil {
		return opts, err
	}
	if opts.n, err = flags.GetInt("n"); err != nil {
		return opts, err
	}
	dt, err := flags.GetString("dtype")
	if err != nil {
		return opts, err
	}
	if opts.dtype, err = tensor.ParseDataType(dt); err != nil {
		return opts, err
	}
	if opts.eps, err = flags.GetFloat32("eps"); err != nil {
		return opts, err
	}
	if opts.blockSize, err = flags.GetInt("block-size"); err != nil {
		return opts, err
	}
	if opts.backend, err = flags.GetString("backend"); err != nil {
		return opts, err
	}
	if opts.backend == "" {
		opts.backend = envconfig.Backend()
	}
	if opts.seed, err = flags.GetInt64("seed"); err != nil {
		return opts, err
	}
	if opts.rows <= 0 {
		return opts, fmt.Errorf("rows must be positive, got %d", opts.rows)
	}
	return opts, nil
}

// newBackend opens the named backend. The returned func releases it.
func newBackend(name string) (dispatch.Backend, func(), error) {
	switch name {
	case "cpu":
		return cpu.NewWithConfig(parallel.ConfigFromEnv()), func() {}, nil
	case "webgpu":
		gpu, err := webgpu.NewWithConfig(parallel.ConfigFromEnv())
		if err != nil {
			return nil, nil, err
		}
		return gpu, gpu.Release, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", name)
	}
}

func pickVariant(opts runOptions) (variant.Variant, error) {
	if opts.blockSize > 0 {
		return variant.New(opts.blockSize, opts.eps)
	}
	return variant.Select(opts.n, opts.eps)
}

// RunHandler normalizes random rows and reports timing and drift.
func RunHandler(cmd *cobra.Command, args []string) error {
	opts, err := parseRunOptions(cmd)
	if err != nil {
		return err
	}

	v, err := pickVariant(opts)
	if err != nil {
		return err
	}

	backend, release, err := newBackend(opts.backend)
	if err != nil {
		return err
	}
	defer release()

	rng := rand.New(rand.NewSource(opts.seed)) //nolint:gosec // test data
	values := make([]float32, opts.rows*opts.n)
	for i := range values {
		values[i] = float32(rng.NormFloat64())
	}
	weights := make([]float32, opts.n)
	for i := range weights {
		weights[i] = 0.5 + rng.Float32()
	}

	x, err := tensor.FromFloat32(values, tensor.Shape{opts.rows, opts.n}, opts.dtype)
	if err != nil {
		return err
	}
	w, err := tensor.FromFloat32(weights, tensor.Shape{opts.n}, opts.dtype)
	if err != nil {
		return err
	}
	out, err := tensor.NewRaw(x.Shape(), opts.dtype, backend.Device())
	if err != nil {
		return err
	}

	d := dispatch.New(backend)
	start := time.Now()
	err = d.Launch(cmd.Context(), v, dispatch.Args{X: x, Weight: w, Out: out, NElements: opts.n})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	slog.Debug("rms norm launch", "variant", v.Key(), "dtype", opts.dtype.String(), "rows", opts.rows, "elapsed", elapsed)

	tol, err := reference.ToleranceFor(opts.dtype)
	if err != nil {
		return err
	}
	want := reference.RMSNorm(reference.Widen(x.ToFloat32()), reference.Widen(w.ToFloat32()), opts.n, float64(v.Epsilon))
	report := reference.Compare(reference.Widen(out.ToFloat32()), want, tol)

	writeTable(cmd.OutOrStdout(),
		[]string{"BACKEND", "VARIANT", "DTYPE", "ROWS", "N", "TIME", "MAX ABS", "MAX REL", "VIOLATIONS"},
		[][]string{{
			backend.Name(),
			v.Key(),
			opts.dtype.String(),
			strconv.Itoa(opts.rows),
			strconv.Itoa(opts.n),
			elapsed.Round(time.Microsecond).String(),
			strconv.FormatFloat(report.MaxAbs, 'e', 3, 64),
			strconv.FormatFloat(report.MaxRel, 'e', 3, 64),
			strconv.Itoa(report.Violations),
		}},
	)

	if report.Violations > 0 {
		return fmt.Errorf("%w: %d of %d elements", errOutOfTolerance, report.Violations, len(want))
	}
	return nil
}
