//go:build !windows

// Package webgpu implements the WebGPU backend for the RMS normalization kernels.
// The native bindings are only wired on Windows; elsewhere New reports ErrUnavailable.
package webgpu

import (
	"github.com/born-ml/rmsnorm/internal/dispatch"
	"github.com/born-ml/rmsnorm/internal/parallel"
	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
)

// Backend is unavailable on this platform.
type Backend struct{}

var _ dispatch.Backend = (*Backend)(nil)

// New always fails on this platform.
func New() (*Backend, error) {
	return nil, ErrUnavailable
}

// NewWithConfig always fails on this platform.
func NewWithConfig(parallel.Config) (*Backend, error) {
	return nil, ErrUnavailable
}

// Config returns the zero configuration.
func (b *Backend) Config() parallel.Config { return parallel.Config{} }

// IsAvailable reports false on this platform.
func IsAvailable() bool { return false }

// Release is a no-op.
func (b *Backend) Release() {}

// Name returns the backend name.
func (b *Backend) Name() string { return "WebGPU" }

// Device returns the compute device.
func (b *Backend) Device() tensor.Device { return tensor.WebGPU }

// Specialize always fails on this platform.
func (b *Backend) Specialize(variant.Variant, tensor.DataType) (dispatch.Kernel, error) {
	return nil, ErrUnavailable
}
