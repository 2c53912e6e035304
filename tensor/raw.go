// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/rmsnorm/internal/tensor"
)

// RawTensor is a contiguous buffer interpreted through a Shape and a DataType.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float16, tensor.CPU)
//	halves := raw.AsFloat16() // zero-copy view
//	values := raw.ToFloat32() // widened copy
type RawTensor = tensor.RawTensor

// Shape represents the dimensions of a tensor.
type Shape = tensor.Shape

// DataType identifies the storage type of a tensor.
type DataType = tensor.DataType

// Device identifies where a tensor was produced.
type Device = tensor.Device

// BF16 is a single bfloat16 value.
type BF16 = tensor.BF16

// Element is the constraint satisfied by float32, float16.Float16 and BF16.
type Element = tensor.Element

// Supported data types.
const (
	Float32  = tensor.Float32
	Float16  = tensor.Float16
	BFloat16 = tensor.BFloat16
)

// Supported devices.
const (
	CPU    = tensor.CPU
	WebGPU = tensor.WebGPU
)

// NewRaw allocates a zeroed tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromFloat32 creates a tensor of dtype, rounding each value once.
func FromFloat32(values []float32, shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.FromFloat32(values, shape, dtype)
}

// FromSlice copies data into a new tensor whose dtype follows T.
func FromSlice[T Element](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Wrap views data as a tensor without copying.
func Wrap[T Element](data []T, shape Shape) (*RawTensor, error) {
	return tensor.Wrap(data, shape)
}

// View returns the tensor data as a typed slice. T must match the dtype.
func View[T Element](r *RawTensor) []T {
	return tensor.View[T](r)
}

// ParseDataType parses names such as "bf16", "float16" or "f32".
func ParseDataType(s string) (DataType, error) {
	return tensor.ParseDataType(s)
}

// BF16FromFloat32 rounds f to the nearest bfloat16, ties to even.
func BF16FromFloat32(f float32) BF16 {
	return tensor.BF16FromFloat32(f)
}
