// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the WebGPU backend for the RMS normalization kernels.
//
// Each (variant, dtype) pair compiles to its own WGSL pipeline with the tile
// width and epsilon baked in. One workgroup normalizes one row. The native
// bindings are built on Windows; on other platforms New returns ErrUnavailable.
//
// Example:
//
//	gpu, err := webgpu.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gpu.Release()
//
//	d := dispatch.New(gpu)
package webgpu

import (
	"github.com/born-ml/rmsnorm/dispatch"
	internalwebgpu "github.com/born-ml/rmsnorm/internal/backend/webgpu"
	"github.com/born-ml/rmsnorm/internal/parallel"
)

// Backend represents the WebGPU backend.
type Backend = internalwebgpu.Backend

// Compile-time check that Backend can serve a dispatcher.
var _ dispatch.Backend = (*Backend)(nil)

// ErrUnavailable is returned when no WebGPU adapter can be opened.
var ErrUnavailable = internalwebgpu.ErrUnavailable

// New opens the default adapter. Call Release when done.
func New() (*Backend, error) {
	return internalwebgpu.New()
}

// NewFromEnv opens the default adapter and schedules host-side row work by
// RMSNORM_NUM_WORKERS and RMSNORM_MIN_ROWS.
func NewFromEnv() (*Backend, error) {
	return internalwebgpu.NewWithConfig(parallel.ConfigFromEnv())
}

// IsAvailable checks if WebGPU is available on the current system.
func IsAvailable() bool {
	return internalwebgpu.IsAvailable()
}
