//go:build windows

package webgpu

import (
	"context"
	"math/rand"
	"testing"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/rmsnorm/internal/backend/cpu"
	"github.com/born-ml/rmsnorm/internal/dispatch"
	"github.com/born-ml/rmsnorm/internal/parallel"
	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	if !IsAvailable() {
		t.Skip("WebGPU not available")
	}
	backend, err := New()
	if err != nil {
		t.Skipf("WebGPU not available: %v", err)
	}
	t.Cleanup(backend.Release)
	return backend
}

func TestNew(t *testing.T) {
	backend := newTestBackend(t)

	assert.NotEmpty(t, backend.Name())
	assert.Equal(t, tensor.WebGPU, backend.Device())
}

func TestNewWithConfig(t *testing.T) {
	if !IsAvailable() {
		t.Skip("WebGPU not available")
	}
	cfg := parallel.Config{Enabled: true, NumWorkers: 3, MinChunkSize: 2}
	backend, err := NewWithConfig(cfg)
	if err != nil {
		t.Skipf("WebGPU not available: %v", err)
	}
	defer backend.Release()

	assert.Equal(t, cfg, backend.Config())
}

func TestLaunchAfterRelease(t *testing.T) {
	if !IsAvailable() {
		t.Skip("WebGPU not available")
	}
	backend, err := New()
	if err != nil {
		t.Skipf("WebGPU not available: %v", err)
	}

	kernel, err := backend.Specialize(variant.Table[0], tensor.Float32)
	require.NoError(t, err)
	backend.Release()
	backend.Release()

	x, err := tensor.FromFloat32([]float32{3, 4}, tensor.Shape{1, 2}, tensor.Float32)
	require.NoError(t, err)
	w, err := tensor.FromFloat32([]float32{1, 1}, tensor.Shape{2}, tensor.Float32)
	require.NoError(t, err)
	out, err := tensor.NewRaw(tensor.Shape{1, 2}, tensor.Float32, tensor.WebGPU)
	require.NoError(t, err)

	err = kernel.Launch(context.Background(), dispatch.Args{X: x, Weight: w, Out: out, NElements: 2, Rows: 1})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, []float32{0, 0}, out.ToFloat32())

	_, err = backend.Specialize(variant.Table[1], tensor.Float32)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestRMSNormMatchesCPU(t *testing.T) {
	gpu := dispatch.New(newTestBackend(t))
	host := dispatch.New(cpu.New())

	rng := rand.New(rand.NewSource(7))
	const rows, n = 5, 300
	values := make([]float32, rows*n)
	for i := range values {
		values[i] = rng.Float32()*4 - 2
	}
	weights := make([]float32, n)
	for i := range weights {
		weights[i] = rng.Float32() + 0.5
	}

	for _, dt := range []tensor.DataType{tensor.Float32, tensor.Float16, tensor.BFloat16} {
		t.Run(dt.String(), func(t *testing.T) {
			x, err := tensor.FromFloat32(values, tensor.Shape{rows, n}, dt)
			require.NoError(t, err)
			w, err := tensor.FromFloat32(weights, tensor.Shape{n}, dt)
			require.NoError(t, err)

			gotOut, err := tensor.NewRaw(tensor.Shape{rows, n}, dt, tensor.WebGPU)
			require.NoError(t, err)
			wantOut, err := tensor.NewRaw(tensor.Shape{rows, n}, dt, tensor.CPU)
			require.NoError(t, err)

			v := variant.Table[0]
			require.NoError(t, gpu.Launch(context.Background(), v, dispatch.Args{X: x, Weight: w, Out: gotOut, NElements: n}))
			require.NoError(t, host.Launch(context.Background(), v, dispatch.Args{X: x, Weight: w, Out: wantOut, NElements: n}))

			assert.InDeltaSlice(t, wantOut.ToFloat32(), gotOut.ToFloat32(), 1e-2)
		})
	}
}

func TestRMSNormPartialRowLeavesTail(t *testing.T) {
	d := dispatch.New(newTestBackend(t))

	x, err := tensor.FromFloat32([]float32{3, 4, 9, 9}, tensor.Shape{1, 4}, tensor.Float32)
	require.NoError(t, err)
	w, err := tensor.FromFloat32([]float32{1, 1, 1, 1}, tensor.Shape{4}, tensor.Float32)
	require.NoError(t, err)
	out, err := tensor.FromFloat32([]float32{-1, -1, -1, -1}, tensor.Shape{1, 4}, tensor.Float32)
	require.NoError(t, err)

	err = d.Launch(context.Background(), variant.Table[0], dispatch.Args{X: x, Weight: w, Out: out, NElements: 2, Rows: 1})
	require.NoError(t, err)

	got := out.ToFloat32()
	assert.InDelta(t, 0.8485, got[0], 1e-3)
	assert.InDelta(t, 1.1314, got[1], 1e-3)
	assert.Equal(t, []float32{-1, -1}, got[2:])
}

func TestBufferPoolReuse(t *testing.T) {
	backend := newTestBackend(t)
	pool := backend.bufferPool

	usage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc
	buf := pool.Acquire(1024, usage)
	pool.Release(buf, 1024, usage)
	again := pool.Acquire(512, usage)
	pool.Release(again, 1024, usage)

	hits, misses, idle := pool.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 1, idle)
}
