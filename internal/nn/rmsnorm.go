package nn

import (
	"context"
	"fmt"

	"github.com/born-ml/rmsnorm/internal/dispatch"
	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
)

// RMSNorm applies Root Mean Square Normalization along the last dimension.
//
// Formula: Y = X / sqrt(mean(X^2) + eps) * gamma
//
// The layer is bound to the smallest table variant that fits dModel at
// construction; every Forward launches that specialization.
//
// Example:
//
//	d := dispatch.New(cpu.New())
//	norm, err := nn.NewRMSNorm(768, 1e-5, tensor.BFloat16, d)
//	out, err := norm.Forward(ctx, hidden) // [..., 768] -> [..., 768]
type RMSNorm struct {
	Gamma   *Parameter // scale [d_model], initialized to ones
	Epsilon float32

	variant    variant.Variant
	dispatcher *dispatch.Dispatcher
}

var _ Module = (*RMSNorm)(nil)

// NewRMSNorm creates a new RMSNorm layer storing gamma as dtype.
func NewRMSNorm(dModel int, epsilon float32, dtype tensor.DataType, d *dispatch.Dispatcher) (*RMSNorm, error) {
	v, err := variant.Select(dModel, epsilon)
	if err != nil {
		return nil, fmt.Errorf("nn: rms norm: %w", err)
	}

	ones := make([]float32, dModel)
	for i := range ones {
		ones[i] = 1
	}
	gamma, err := tensor.FromFloat32(ones, tensor.Shape{dModel}, dtype)
	if err != nil {
		return nil, fmt.Errorf("nn: rms norm: %w", err)
	}

	return &RMSNorm{
		Gamma:      NewParameter("gamma", gamma),
		Epsilon:    epsilon,
		variant:    v,
		dispatcher: d,
	}, nil
}

// Variant returns the specialization Forward launches.
func (r *RMSNorm) Variant() variant.Variant {
	return r.variant
}

// Forward normalizes every row of x, whose last dimension must be d_model.
// The result is a new tensor of the same shape and dtype.
func (r *RMSNorm) Forward(ctx context.Context, x *tensor.RawTensor) (*tensor.RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("nn: rms norm: %w", dispatch.ErrNilTensor)
	}
	gamma := r.Gamma.Tensor()
	dModel := gamma.NumElements()
	if x.Shape().LastDim() != dModel {
		return nil, fmt.Errorf("nn: rms norm: %w: last dimension %d, want %d",
			dispatch.ErrShapeMismatch, x.Shape().LastDim(), dModel)
	}

	out, err := tensor.NewRaw(x.Shape(), x.DType(), r.dispatcher.Backend().Device())
	if err != nil {
		return nil, fmt.Errorf("nn: rms norm: %w", err)
	}

	err = r.dispatcher.Launch(ctx, r.variant, dispatch.Args{
		X:         x,
		Weight:    gamma,
		Out:       out,
		NElements: dModel,
	})
	if err != nil {
		return nil, fmt.Errorf("nn: rms norm: %w", err)
	}
	return out, nil
}

// Parameters returns the learnable parameters (gamma).
func (r *RMSNorm) Parameters() []*Parameter {
	return []*Parameter{r.Gamma}
}
