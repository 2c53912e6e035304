package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestRawTensorAsFloat32(t *testing.T) {
	raw, err := NewRaw(Shape{3, 2}, Float32, CPU)
	require.NoError(t, err)
	data := raw.AsFloat32()

	if len(data) != 6 {
		t.Errorf("AsFloat32 length = %d, want 6", len(data))
	}

	// Modify and verify zero-copy
	data[0] = 42
	if raw.AsFloat32()[0] != 42 {
		t.Error("AsFloat32 should return zero-copy slice")
	}
}

func TestRawTensorAsBFloat16(t *testing.T) {
	raw, err := NewRaw(Shape{2, 2}, BFloat16, CPU)
	require.NoError(t, err)
	assert.Equal(t, 8, raw.ByteSize())

	raw.AsBFloat16()[3] = BF16FromFloat32(1.5)
	assert.Equal(t, float32(1.5), raw.ToFloat32()[3])
}

func TestRawTensorWrongViewPanics(t *testing.T) {
	raw, err := NewRaw(Shape{4}, Float16, CPU)
	require.NoError(t, err)

	assert.Panics(t, func() { raw.AsFloat32() })
	assert.Panics(t, func() { View[BF16](raw) })
	assert.NotPanics(t, func() { View[float16.Float16](raw) })
}

func TestNewRawInvalidShape(t *testing.T) {
	_, err := NewRaw(Shape{2, 0}, Float32, CPU)
	require.Error(t, err)
}

func TestFromFloat32RoundTrip(t *testing.T) {
	values := []float32{0, 1, -2.5, 3.140625, 65504}

	for _, dt := range []DataType{Float32, Float16, BFloat16} {
		t.Run(dt.String(), func(t *testing.T) {
			raw, err := FromFloat32(values, Shape{len(values)}, dt)
			require.NoError(t, err)
			assert.Equal(t, dt, raw.DType())

			got := raw.ToFloat32()
			for i, v := range values {
				assert.Equal(t, RoundTo(dt, v), got[i], "element %d", i)
			}
		})
	}
}

func TestFromFloat32LengthMismatch(t *testing.T) {
	_, err := FromFloat32([]float32{1, 2, 3}, Shape{2, 2}, Float32)
	require.Error(t, err)
}

func TestFromSliceInfersDType(t *testing.T) {
	raw, err := FromSlice([]BF16{BF16FromFloat32(2), BF16FromFloat32(-1)}, Shape{2})
	require.NoError(t, err)
	assert.Equal(t, BFloat16, raw.DType())
	assert.Equal(t, []float32{2, -1}, raw.ToFloat32())
}

func TestBF16FromFloat32RoundsToNearestEven(t *testing.T) {
	// 1 + 2^-8 sits exactly between two bf16 values; ties go to the even mantissa.
	tie := math.Float32frombits(0x3f808000)
	assert.Equal(t, uint16(0x3f80), BF16FromFloat32(tie).Bits())

	// One ulp above the tie rounds up.
	above := math.Float32frombits(0x3f808001)
	assert.Equal(t, uint16(0x3f81), BF16FromFloat32(above).Bits())

	// Odd mantissa tie rounds up to even.
	oddTie := math.Float32frombits(0x3f818000)
	assert.Equal(t, uint16(0x3f82), BF16FromFloat32(oddTie).Bits())
}

func TestBF16SpecialValues(t *testing.T) {
	inf := float32(math.Inf(1))
	assert.Equal(t, inf, BF16FromFloat32(inf).Float32())
	assert.True(t, math.IsNaN(float64(BF16FromFloat32(float32(math.NaN())).Float32())))
	assert.Equal(t, float32(0), BF16FromFloat32(0).Float32())
}

func TestDecodeBFloat16(t *testing.T) {
	raw, err := FromFloat32([]float32{1, -2, 0.5}, Shape{3}, BFloat16)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2, 0.5}, DecodeBFloat16(raw.Data()))
}

func TestCodecFor(t *testing.T) {
	bf := CodecFor[BF16]()
	assert.Equal(t, float32(3), bf.Load(bf.Store(3)))

	h := CodecFor[float16.Float16]()
	assert.Equal(t, float32(0.25), h.Load(h.Store(0.25)))

	f := CodecFor[float32]()
	assert.Equal(t, float32(1.0000001), f.Store(1.0000001))
}

func TestParseDataType(t *testing.T) {
	tests := []struct {
		in   string
		want DataType
	}{
		{"bf16", BFloat16},
		{"BFloat16", BFloat16},
		{"f16", Float16},
		{"float32", Float32},
	}
	for _, tt := range tests {
		got, err := ParseDataType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDataType("int8")
	require.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	a, err := NewRaw(Shape{8}, Float32, CPU)
	require.NoError(t, err)
	b, err := NewRaw(Shape{8}, Float32, CPU)
	require.NoError(t, err)

	assert.True(t, Overlaps(a, a))
	assert.True(t, Overlaps(a, a.WithDevice(WebGPU)))
	assert.False(t, Overlaps(a, b))
	assert.False(t, Overlaps(a, nil))
}

func TestShapeValidate(t *testing.T) {
	require.NoError(t, Shape{2, 3}.Validate())
	require.Error(t, Shape{2, -1}.Validate())
	assert.Equal(t, 6, Shape{2, 3}.NumElements())
	assert.Equal(t, 3, Shape{2, 3}.LastDim())
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}.Clone()))
}

func TestWrapSharesMemory(t *testing.T) {
	data := []float32{1, 2, 3, 4}
	raw, err := Wrap(data, Shape{2, 2})
	require.NoError(t, err)

	raw.AsFloat32()[1] = 9
	assert.Equal(t, float32(9), data[1])
	assert.Equal(t, 16, len(raw.Data()))

	other, err := Wrap(data[2:], Shape{2})
	require.NoError(t, err)
	assert.True(t, Overlaps(raw, other))

	_, err = Wrap(data, Shape{3})
	require.Error(t, err)
}

func TestSetFloat32(t *testing.T) {
	for _, dt := range []DataType{Float32, Float16, BFloat16} {
		raw, err := NewRaw(Shape{4}, dt, CPU)
		require.NoError(t, err)

		raw.SetFloat32(1, []float32{0.5, -3})
		assert.Equal(t, []float32{0, 0.5, -3, 0}, raw.ToFloat32(), dt.String())
	}
}
