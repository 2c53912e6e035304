// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/rmsnorm/dispatch"
	"github.com/born-ml/rmsnorm/internal/nn"
	"github.com/born-ml/rmsnorm/tensor"
)

// Module interface defines the common interface for all layers.
type Module = nn.Module

// Parameter is a named tensor owned by a layer.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.RawTensor) *Parameter {
	return nn.NewParameter(name, t)
}

// RMSNorm applies Root Mean Square Normalization along the last dimension.
type RMSNorm = nn.RMSNorm

// NewRMSNorm creates an RMSNorm layer over dModel features with gamma set to ones.
//
// Example:
//
//	norm, err := nn.NewRMSNorm(768, 1e-5, tensor.Float32, dispatch.New(cpu.New()))
func NewRMSNorm(dModel int, epsilon float32, dtype tensor.DataType, d *dispatch.Dispatcher) (*RMSNorm, error) {
	return nn.NewRMSNorm(dModel, epsilon, dtype, d)
}
