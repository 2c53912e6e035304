package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/rmsnorm/internal/parallel"
	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
)

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	require.NotNil(t, backend)
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
	assert.Equal(t, parallel.DefaultConfig(), backend.Config())
}

func TestCPUBackend_NewWithConfig(t *testing.T) {
	cfg := parallel.Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1}
	assert.Equal(t, cfg, NewWithConfig(cfg).Config())
}

func TestCPUBackend_Specialize(t *testing.T) {
	backend := New()
	for _, dt := range []tensor.DataType{tensor.Float32, tensor.Float16, tensor.BFloat16} {
		for _, v := range variant.Table {
			k, err := backend.Specialize(v, dt)
			require.NoError(t, err, "%s/%s", v.Key(), dt)
			assert.NotNil(t, k)
		}
	}

	_, err := backend.Specialize(variant.Variant{BlockSize: 3, Epsilon: 1e-5}, tensor.Float32)
	require.ErrorIs(t, err, variant.ErrInvalidVariant)
}
