package nn

import (
	"github.com/born-ml/rmsnorm/internal/tensor"
)

// Parameter is a named tensor owned by a layer.
//
// Example:
//
//	gamma := layer.Parameters()[0]
//	gamma.Tensor().SetFloat32(0, scales)
type Parameter struct {
	name   string
	tensor *tensor.RawTensor
}

// NewParameter creates a new parameter.
func NewParameter(name string, t *tensor.RawTensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor. Writes through it update the layer.
func (p *Parameter) Tensor() *tensor.RawTensor {
	return p.tensor
}
