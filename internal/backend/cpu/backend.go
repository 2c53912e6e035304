// Package cpu implements the RMS normalization kernels on the CPU, one row per
// execution unit scheduled over a goroutine pool.
package cpu

import (
	"fmt"

	"github.com/born-ml/rmsnorm/internal/dispatch"
	"github.com/born-ml/rmsnorm/internal/parallel"
	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
	"github.com/x448/float16"
)

// CPUBackend builds CPU specializations of the kernel.
type CPUBackend struct {
	device tensor.Device
	cfg    parallel.Config
}

// New creates a new CPU backend with the default worker configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend that schedules rows according to cfg.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		cfg:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Config returns the row scheduling configuration.
func (cpu *CPUBackend) Config() parallel.Config {
	return cpu.cfg
}

// Specialize returns the kernel for v over storage dtype.
func (cpu *CPUBackend) Specialize(v variant.Variant, dtype tensor.DataType) (dispatch.Kernel, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	switch dtype {
	case tensor.Float32:
		return newRMSNormKernel[float32](v, cpu.cfg), nil
	case tensor.Float16:
		return newRMSNormKernel[float16.Float16](v, cpu.cfg), nil
	case tensor.BFloat16:
		return newRMSNormKernel[tensor.BF16](v, cpu.cfg), nil
	default:
		return nil, fmt.Errorf("cpu: unsupported dtype %s", dtype)
	}
}

// Compile-time check that CPUBackend can serve a dispatcher.
var _ dispatch.Backend = (*CPUBackend)(nil)
