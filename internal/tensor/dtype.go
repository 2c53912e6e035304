// Package tensor provides the host-side buffers read and written by the normalization kernels.
package tensor

import (
	"fmt"
	"strings"

	"github.com/x448/float16"
)

// Element is a constraint for the storage types a kernel can read and write.
// Arithmetic always happens in float32 regardless of the storage type.
type Element interface {
	float32 | float16.Float16 | BF16
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float16
	BFloat16
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float16, BFloat16:
		return 2
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	default:
		return "unknown"
	}
}

// ParseDataType accepts the long names returned by String as well as the
// usual short forms (f32, f16, bf16).
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float32", "f32", "fp32":
		return Float32, nil
	case "float16", "f16", "fp16", "half":
		return Float16, nil
	case "bfloat16", "bf16":
		return BFloat16, nil
	default:
		return 0, fmt.Errorf("unknown data type %q", s)
	}
}

// DataTypeOf returns the DataType for the storage type T.
func DataTypeOf[T Element]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case float16.Float16:
		return Float16
	case BF16:
		return BFloat16
	default:
		panic("unsupported type")
	}
}
