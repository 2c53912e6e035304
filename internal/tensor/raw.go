package tensor

import (
	"fmt"
	"unsafe"

	"github.com/x448/float16"
)

// Device represents the compute device a tensor was produced on.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the low-level tensor representation: a contiguous little-endian
// byte buffer interpreted through a shape and a data type.
type RawTensor struct {
	data   []byte
	shape  Shape
	dtype  DataType
	device Device
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated and zeroed.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		dtype:  dtype,
		device: device,
	}, nil
}

// FromFloat32 creates a tensor of the given dtype from float32 values.
// Each value is rounded once to the storage precision.
func FromFloat32(values []float32, shape Shape, dtype DataType) (*RawTensor, error) {
	if shape.NumElements() != len(values) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(values))
	}

	raw, err := NewRaw(shape, dtype, CPU)
	if err != nil {
		return nil, err
	}

	raw.SetFloat32(0, values)
	return raw, nil
}

// FromSlice creates a tensor that copies data. The dtype is inferred from T.
func FromSlice[T Element](data []T, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, DataTypeOf[T](), CPU)
	if err != nil {
		return nil, err
	}
	copy(View[T](raw), data)
	return raw, nil
}

// Wrap views data as a tensor without copying. Writes through the tensor are
// visible in data and vice versa.
func Wrap[T Element](data []T, shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	dtype := DataTypeOf[T]()
	//nolint:gosec // unsafe.Slice for zero-copy view, length derived from len(data)
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*dtype.Size())
	return &RawTensor{
		data:   bytes,
		shape:  shape.Clone(),
		dtype:  dtype,
		device: CPU,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat16 interprets the data as []float16.Float16.
// Panics if the tensor's dtype is not Float16.
func (r *RawTensor) AsFloat16() []float16.Float16 {
	if r.dtype != Float16 {
		panic(fmt.Sprintf("tensor dtype is %s, not float16", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float16.Float16)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsBFloat16 interprets the data as []BF16.
// Panics if the tensor's dtype is not BFloat16.
func (r *RawTensor) AsBFloat16() []BF16 {
	if r.dtype != BFloat16 {
		panic(fmt.Sprintf("tensor dtype is %s, not bfloat16", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*BF16)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// View returns the data as a typed slice. T must match the tensor's dtype.
func View[T Element](r *RawTensor) []T {
	want := DataTypeOf[T]()
	if r.dtype != want {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, want))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// ToFloat32 widens every element to float32. The conversion is exact.
func (r *RawTensor) ToFloat32() []float32 {
	switch r.dtype {
	case Float32:
		return append([]float32(nil), r.AsFloat32()...)
	case Float16:
		src := r.AsFloat16()
		out := make([]float32, len(src))
		for i, v := range src {
			out[i] = v.Float32()
		}
		return out
	case BFloat16:
		return DecodeBFloat16(r.data[:r.ByteSize()])
	default:
		panic("unknown data type")
	}
}

// SetFloat32 writes values starting at element start, rounding each once to
// the storage precision.
func (r *RawTensor) SetFloat32(start int, values []float32) {
	switch r.dtype {
	case Float32:
		copy(r.AsFloat32()[start:], values)
	case Float16:
		dst := r.AsFloat16()[start:]
		for i, v := range values {
			dst[i] = float16.Fromfloat32(v)
		}
	case BFloat16:
		dst := r.AsBFloat16()[start:]
		for i, v := range values {
			dst[i] = BF16FromFloat32(v)
		}
	default:
		panic("unknown data type")
	}
}

// WithDevice returns a shallow copy tagged with another device. The buffer is shared.
func (r *RawTensor) WithDevice(device Device) *RawTensor {
	return &RawTensor{
		data:   r.data,
		shape:  r.shape.Clone(),
		dtype:  r.dtype,
		device: device,
	}
}

// Overlaps reports whether a and b share any bytes of memory.
func Overlaps(a, b *RawTensor) bool {
	if a == nil || b == nil || len(a.data) == 0 || len(b.data) == 0 {
		return false
	}
	aStart := uintptr(unsafe.Pointer(&a.data[0]))
	bStart := uintptr(unsafe.Pointer(&b.data[0]))
	aEnd := aStart + uintptr(len(a.data))
	bEnd := bStart + uintptr(len(b.data))
	return aStart < bEnd && bStart < aEnd
}
