package nn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/rmsnorm/internal/backend/cpu"
	"github.com/born-ml/rmsnorm/internal/dispatch"
	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
)

func newDispatcher() *dispatch.Dispatcher {
	return dispatch.New(cpu.New())
}

// TestRMSNormForward tests RMSNorm forward pass.
func TestRMSNormForward(t *testing.T) {
	norm, err := NewRMSNorm(3, 1e-5, tensor.Float32, newDispatcher())
	require.NoError(t, err)

	input, err := tensor.FromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.Float32)
	require.NoError(t, err)

	output, err := norm.Forward(context.Background(), input)
	require.NoError(t, err)

	// Row 1: mean([1, 4, 9]) = 14/3, rms = 2.1602.
	// Row 2: mean([16, 25, 36]) = 77/3, rms = 5.0662.
	want := []float32{0.4629, 0.9258, 1.3887, 0.7895, 0.9869, 1.1843}
	assert.InDeltaSlice(t, want, output.ToFloat32(), 1e-3)
	assert.Equal(t, input.Shape(), output.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, input.ToFloat32(), "input must be left untouched")
}

// TestRMSNormGamma tests that gamma scales the output.
func TestRMSNormGamma(t *testing.T) {
	norm, err := NewRMSNorm(2, 1e-5, tensor.Float32, newDispatcher())
	require.NoError(t, err)

	norm.Gamma.Tensor().SetFloat32(0, []float32{2, 3})

	input, err := tensor.FromFloat32([]float32{1, 1}, tensor.Shape{1, 2}, tensor.Float32)
	require.NoError(t, err)

	output, err := norm.Forward(context.Background(), input)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{2, 3}, output.ToFloat32(), 1e-4)
}

func TestRMSNormSelectsVariant(t *testing.T) {
	tests := []struct {
		dModel  int
		epsilon float32
		want    variant.Variant
	}{
		{768, 1e-5, variant.Table[0]},
		{1024, 1e-5, variant.Table[0]},
		{1025, 1e-6, variant.Table[5]},
		{8192, 1e-6, variant.Table[7]},
	}
	for _, tt := range tests {
		norm, err := NewRMSNorm(tt.dModel, tt.epsilon, tensor.BFloat16, newDispatcher())
		require.NoError(t, err)
		assert.Equal(t, tt.want, norm.Variant())
	}
}

func TestRMSNormRejectsUnsupported(t *testing.T) {
	_, err := NewRMSNorm(8193, 1e-5, tensor.Float32, newDispatcher())
	require.ErrorIs(t, err, variant.ErrNoVariant)

	_, err = NewRMSNorm(16, 1e-3, tensor.Float32, newDispatcher())
	require.ErrorIs(t, err, variant.ErrNoVariant)

	_, err = NewRMSNorm(0, 1e-5, tensor.Float32, newDispatcher())
	require.ErrorIs(t, err, variant.ErrEmptyRow)
}

func TestRMSNormForwardErrors(t *testing.T) {
	norm, err := NewRMSNorm(4, 1e-5, tensor.BFloat16, newDispatcher())
	require.NoError(t, err)

	wrongDim, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.BFloat16, tensor.CPU)
	require.NoError(t, err)
	_, err = norm.Forward(context.Background(), wrongDim)
	require.ErrorIs(t, err, dispatch.ErrShapeMismatch)

	_, err = norm.Forward(context.Background(), nil)
	require.ErrorIs(t, err, dispatch.ErrNilTensor)

	wrongType, err := tensor.NewRaw(tensor.Shape{2, 4}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	_, err = norm.Forward(context.Background(), wrongType)
	require.ErrorIs(t, err, dispatch.ErrDTypeMismatch)
}

func TestRMSNormBFloat16(t *testing.T) {
	norm, err := NewRMSNorm(4, 1e-5, tensor.BFloat16, newDispatcher())
	require.NoError(t, err)

	input, err := tensor.FromFloat32([]float32{0, 0, 4, 0}, tensor.Shape{1, 4}, tensor.BFloat16)
	require.NoError(t, err)

	output, err := norm.Forward(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, tensor.BFloat16, output.DType())
	assert.Equal(t, []float32{0, 0, 2, 0}, output.ToFloat32())
	assert.Len(t, norm.Parameters(), 1)
	assert.Equal(t, "gamma", norm.Parameters()[0].Name())
}
