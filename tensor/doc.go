// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the host buffers the RMS normalization kernels read
// and write.
//
// # Overview
//
// A RawTensor is a contiguous little-endian byte buffer with a Shape and a
// DataType. Three storage types are supported:
//   - Float32
//   - Float16 (IEEE half, via github.com/x448/float16)
//   - BFloat16 (upper half of an IEEE float32)
//
// Kernels always compute in float32. Narrow types are widened exactly on load
// and rounded once, to nearest even, on store.
//
// # Basic Usage
//
//	x, err := tensor.FromFloat32(values, tensor.Shape{rows, 4096}, tensor.BFloat16)
//	if err != nil {
//	    return err
//	}
//	out, _ := tensor.NewRaw(x.Shape(), x.DType(), tensor.CPU)
//
// Wrap views an existing slice without copying:
//
//	buf := make([]tensor.BF16, rows*4096)
//	t, _ := tensor.Wrap(buf, tensor.Shape{rows, 4096})
package tensor
