// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"github.com/born-ml/rmsnorm/dispatch"
	internalcpu "github.com/born-ml/rmsnorm/internal/backend/cpu"
	"github.com/born-ml/rmsnorm/internal/parallel"
)

// Backend is the CPU implementation of the RMS normalization kernels.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend can serve a dispatcher.
var _ dispatch.Backend = (*Backend)(nil)

// New creates a new CPU backend using every CPU.
//
// Example:
//
//	d := dispatch.New(cpu.New())
func New() *Backend {
	return internalcpu.New()
}

// NewFromEnv creates a CPU backend sized by RMSNORM_NUM_WORKERS and
// RMSNORM_MIN_ROWS.
func NewFromEnv() *Backend {
	return internalcpu.NewWithConfig(parallel.ConfigFromEnv())
}
