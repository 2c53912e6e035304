// Package nn wraps the normalization kernels as layers that own their
// parameters and a dispatcher.
package nn

import (
	"context"

	"github.com/born-ml/rmsnorm/internal/tensor"
)

// Module is the interface shared by layers.
type Module interface {
	// Forward computes a new output tensor from input. The input is not modified.
	Forward(ctx context.Context, input *tensor.RawTensor) (*tensor.RawTensor, error)

	// Parameters returns the layer's learnable tensors.
	Parameters() []*Parameter
}
