// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides layers built on the normalization kernels.
//
// # Overview
//
// This package contains:
//   - RMSNorm: root mean square normalization with a learnable scale
//   - Module interface and Parameter
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/rmsnorm/backend/cpu"
//	    "github.com/born-ml/rmsnorm/dispatch"
//	    "github.com/born-ml/rmsnorm/nn"
//	    "github.com/born-ml/rmsnorm/tensor"
//	)
//
//	func main() {
//	    d := dispatch.New(cpu.New())
//	    norm, err := nn.NewRMSNorm(4096, 1e-6, tensor.BFloat16, d)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    out, err := norm.Forward(ctx, hidden)
//	}
package nn
