package cpu

import (
	"context"
	"math"

	"github.com/born-ml/rmsnorm/internal/dispatch"
	"github.com/born-ml/rmsnorm/internal/parallel"
	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
)

// rmsNormKernel is one (BlockSize, Epsilon, storage type) specialization.
//
// Per row of n values:
//
//	rstd   = 1 / sqrt(sum(x^2) / n + eps)
//	out[i] = x[i] * rstd * weight[i]
//
// Loads are widened to float32 and the result is rounded once on store.
type rmsNormKernel[T tensor.Element] struct {
	blockSize int
	eps       float32
	codec     tensor.Codec[T]
	cfg       parallel.Config
}

func newRMSNormKernel[T tensor.Element](v variant.Variant, cfg parallel.Config) *rmsNormKernel[T] {
	return &rmsNormKernel[T]{
		blockSize: v.BlockSize,
		eps:       v.Epsilon,
		codec:     tensor.CodecFor[T](),
		cfg:       cfg,
	}
}

// Launch runs args.Rows independent rows. Arguments were validated by the dispatcher.
func (k *rmsNormKernel[T]) Launch(ctx context.Context, args dispatch.Args) error {
	x := tensor.View[T](args.X)
	weight := tensor.View[T](args.Weight)
	out := tensor.View[T](args.Out)
	n := args.NElements

	return parallel.ForChunks(ctx, args.Rows, k.cfg, func(ctx context.Context, start, end int) error {
		tile := make([]float32, k.blockSize)
		partial := make([]float32, k.blockSize)
		for row := start; row < end; row++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			base := row * n
			k.row(out[base:base+n], x[base:base+n], weight[:n], tile, partial)
		}
		return nil
	})
}

// row normalizes one row. src, dst and weight hold exactly the n live lanes;
// tile and partial are BlockSize-wide scratch owned by the caller.
func (k *rmsNormKernel[T]) row(dst, src, weight []T, tile, partial []float32) {
	n := len(src)

	// Pass 1: masked load, widen, square, reduce.
	for lane := 0; lane < n; lane++ {
		v := k.codec.Load(src[lane])
		tile[lane] = v
		partial[lane] = v * v
	}
	width := reduceWidth(n)
	clear(partial[n:width])
	sumSquares := treeSum(partial[:width])

	meanSquare := sumSquares / float32(n)
	rstd := 1 / float32(math.Sqrt(float64(meanSquare+k.eps)))

	// Pass 2: reuse the widened tile; masked lanes are never stored.
	for lane := 0; lane < n; lane++ {
		w := k.codec.Load(weight[lane])
		dst[lane] = k.codec.Store(tile[lane] * rstd * w)
	}
}

// reduceWidth is the smallest power of two >= n. The padding lanes past it
// are zero and would add exactly nothing to a BlockSize-wide tree.
func reduceWidth(n int) int {
	w := 1
	for w < n {
		w <<= 1
	}
	return w
}

// treeSum adds buf pairwise in place. len(buf) must be a power of two.
// The order is fixed, so equal inputs give bit-identical sums.
func treeSum(buf []float32) float32 {
	for width := len(buf) / 2; width > 0; width /= 2 {
		for i := 0; i < width; i++ {
			buf[i] += buf[i+width]
		}
	}
	return buf[0]
}
