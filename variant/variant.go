// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package variant lists the specializations of the RMS normalization kernel.
//
// Each Variant pairs a tile width (BlockSize) with an epsilon. The shipped
// Table holds BlockSize 1024, 2048, 4096 and 8192 with epsilon 1e-5 and 1e-6.
// A row of length n runs under any variant with BlockSize >= n; Select picks
// the smallest.
package variant

import (
	"github.com/born-ml/rmsnorm/internal/variant"
)

// Variant selects one specialization of the kernel.
type Variant = variant.Variant

// Table lists the shipped specializations in their canonical order.
var Table = variant.Table

// Errors returned by variant validation and selection.
var (
	ErrInvalidVariant = variant.ErrInvalidVariant
	ErrEmptyRow       = variant.ErrEmptyRow
	ErrRowTooLong     = variant.ErrRowTooLong
	ErrNoVariant      = variant.ErrNoVariant
)

// New returns a validated custom variant.
func New(blockSize int, epsilon float32) (Variant, error) {
	return variant.New(blockSize, epsilon)
}

// Select returns the smallest table entry with epsilon that fits rows of length n.
func Select(n int, epsilon float32) (Variant, error) {
	return variant.Select(n, epsilon)
}
