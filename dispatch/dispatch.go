// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dispatch launches RMS normalization kernels.
//
// A Dispatcher wraps a backend and caches one compiled kernel per
// (variant, dtype). Every launch is validated once before any row runs.
//
// Example:
//
//	d := dispatch.New(cpu.New())
//	err := d.Launch(ctx, variant.Table[0], dispatch.Args{
//	    X:         x,
//	    Weight:    gamma,
//	    Out:       out,
//	    NElements: 1000,
//	})
package dispatch

import (
	"context"

	"github.com/born-ml/rmsnorm/internal/dispatch"
	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
)

// Dispatcher caches specializations per backend.
type Dispatcher = dispatch.Dispatcher

// Backend builds kernels for a device.
type Backend = dispatch.Backend

// Kernel is one compiled specialization.
type Kernel = dispatch.Kernel

// Args describes one launch.
type Args = dispatch.Args

// Errors returned by launch validation.
var (
	ErrNilTensor     = dispatch.ErrNilTensor
	ErrShapeMismatch = dispatch.ErrShapeMismatch
	ErrDTypeMismatch = dispatch.ErrDTypeMismatch
	ErrAliased       = dispatch.ErrAliased
)

// New creates a Dispatcher for backend.
func New(backend Backend) *Dispatcher {
	return dispatch.New(backend)
}

// Normalize runs v over typed slices holding len(x)/n rows of n values.
func Normalize[T tensor.Element](ctx context.Context, d *Dispatcher, v variant.Variant, dst, x, weight []T, n int) error {
	return dispatch.Normalize(ctx, d, v, dst, x, weight, n)
}
