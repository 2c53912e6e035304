// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for the RMS normalization kernels.
//
// # Overview
//
// Rows are independent and are scheduled in contiguous chunks over a bounded
// goroutine pool. Each row is normalized in two passes over a scratch tile:
//   - masked load and sum of squares, reduced in a fixed pairwise order
//   - scale by 1/sqrt(mean+eps) and the weight, stored with one rounding
//
// Results are bit-identical regardless of the number of workers.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/rmsnorm/backend/cpu"
//	    "github.com/born-ml/rmsnorm/dispatch"
//	    "github.com/born-ml/rmsnorm/nn"
//	)
//
//	func main() {
//	    d := dispatch.New(cpu.New())
//	    norm, err := nn.NewRMSNorm(4096, 1e-6, tensor.BFloat16, d)
//	    ...
//	}
package cpu
