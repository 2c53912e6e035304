package tensor

import (
	"math"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// BF16 is a 16-bit brain float: the upper half of an IEEE float32.
type BF16 uint16

// BF16FromFloat32 narrows f with round-to-nearest-even.
// NaN payloads are quieted so the result is still a NaN.
func BF16FromFloat32(f float32) BF16 {
	bits := math.Float32bits(f)
	if bits&0x7fffffff > 0x7f800000 {
		return BF16(bits>>16 | 0x0040)
	}
	rounding := uint32(0x7fff) + (bits>>16)&1
	return BF16((bits + rounding) >> 16)
}

// Float32 widens b exactly.
func (b BF16) Float32() float32 {
	return math.Float32frombits(uint32(b) << 16)
}

// Bits returns the raw encoding.
func (b BF16) Bits() uint16 {
	return uint16(b)
}

// DecodeBFloat16 widens a little-endian bf16 byte buffer to float32.
func DecodeBFloat16(data []byte) []float32 {
	return bfloat16.DecodeFloat32(data)
}

// Codec converts one storage type to and from the float32 working precision.
type Codec[T Element] struct {
	Load  func(T) float32
	Store func(float32) T
}

// CodecFor returns the conversion pair for T. Store rounds to nearest even.
func CodecFor[T Element]() Codec[T] {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(Codec[float32]{
			Load:  func(v float32) float32 { return v },
			Store: func(v float32) float32 { return v },
		}).(Codec[T])
	case float16.Float16:
		return any(Codec[float16.Float16]{
			Load:  float16.Float16.Float32,
			Store: float16.Fromfloat32,
		}).(Codec[T])
	case BF16:
		return any(Codec[BF16]{
			Load:  BF16.Float32,
			Store: BF16FromFloat32,
		}).(Codec[T])
	default:
		panic("unsupported type")
	}
}

// RoundTo rounds v to the precision of dt and returns it widened back to float32.
func RoundTo(dt DataType, v float32) float32 {
	switch dt {
	case Float16:
		return float16.Fromfloat32(v).Float32()
	case BFloat16:
		return BF16FromFloat32(v).Float32()
	default:
		return v
	}
}
