//go:build windows

package webgpu

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/rmsnorm/internal/dispatch"
	"github.com/born-ml/rmsnorm/internal/parallel"
	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
)

// Specialize compiles the RMS norm pipeline for one variant and dtype.
func (b *Backend) Specialize(v variant.Variant, dtype tensor.DataType) (dispatch.Kernel, error) {
	b.mu.RLock()
	gone := b.released()
	b.mu.RUnlock()
	if gone {
		return nil, ErrUnavailable
	}

	code, err := rmsNormShader(v, dtype)
	if err != nil {
		return nil, err
	}
	name := pipelineName(v, dtype)
	shader := b.compileShader(name, code)
	pipeline := b.getOrCreatePipeline(name, shader)
	return &rmsNormKernel{backend: b, pipeline: pipeline}, nil
}

type rmsNormKernel struct {
	backend  *Backend
	pipeline *wgpu.ComputePipeline
}

// Launch uploads the rows as f32, runs one workgroup per row and writes the
// result back into args.Out. Lanes past NElements in Out are left untouched.
func (k *rmsNormKernel) Launch(ctx context.Context, args dispatch.Args) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := k.backend

	// Held for the whole launch so Release cannot free the device under it.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.released() {
		return fmt.Errorf("webgpu: rms norm: %w: backend released", ErrUnavailable)
	}
	n := args.NElements
	rows := args.Rows
	count := rows * n

	x := args.X.ToFloat32()[:count]
	w := args.Weight.ToFloat32()[:n]

	storage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc
	bufferX := b.createBuffer(float32Bytes(x), storage)
	defer bufferX.Release()
	bufferW := b.createBuffer(float32Bytes(w), storage)
	defer bufferW.Release()

	//nolint:gosec // G115: count is a validated element count
	resultSize := uint64(4 * count)
	resultUsage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst
	bufferResult := b.bufferPool.Acquire(resultSize, resultUsage)
	defer b.bufferPool.Release(bufferResult, resultSize, resultUsage)

	gridX, gridY := gridFor(rows)
	params := make([]byte, 12)
	//nolint:gosec // G115: rows and n are validated positive ints
	binary.LittleEndian.PutUint32(params[0:4], uint32(rows))
	//nolint:gosec // G115: n is bounded by variant.MaxBlockSize
	binary.LittleEndian.PutUint32(params[4:8], uint32(n))
	binary.LittleEndian.PutUint32(params[8:12], gridX)
	bufferParams, paramsSize := b.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := k.pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferX, 0, resultSize),
		//nolint:gosec // G115: n is bounded by variant.MaxBlockSize
		wgpu.BufferBindingEntry(1, bufferW, 0, uint64(4*n)),
		wgpu.BufferBindingEntry(2, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, paramsSize),
	})
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(k.pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups(gridX, gridY, 1)
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	data, err := b.readBuffer(bufferResult, resultSize)
	if err != nil {
		return fmt.Errorf("webgpu: rms norm: %w", err)
	}

	out := bytesFloat32(data)
	parallel.For(rows, func(r int) {
		args.Out.SetFloat32(r*n, out[r*n:(r+1)*n])
	}, b.cfg)
	return nil
}
