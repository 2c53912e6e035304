package envconfig

import (
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"false": slog.LevelInfo,
		"1":     slog.LevelDebug,
		"true":  slog.LevelDebug,
		"2":     slog.Level(-8),
		"-1":    slog.LevelInfo + 4,
	}
	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("RMSNORM_DEBUG", value)
			assert.Equal(t, want, LogLevel())
		})
	}
}

func TestBackend(t *testing.T) {
	cases := map[string]string{
		"":         "cpu",
		"cpu":      "cpu",
		"WebGPU":   "webgpu",
		"'webgpu'": "webgpu",
		"cuda":     "cpu",
	}
	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("RMSNORM_BACKEND", value)
			assert.Equal(t, want, Backend())
		})
	}
}

func TestUint(t *testing.T) {
	cases := map[string]uint{
		"":       uint(runtime.NumCPU()),
		"3":      3,
		" 8 ":    8,
		"0":      uint(runtime.NumCPU()),
		"-2":     uint(runtime.NumCPU()),
		"lots":   uint(runtime.NumCPU()),
		"\"16\"": 16,
	}
	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("RMSNORM_NUM_WORKERS", value)
			assert.Equal(t, want, NumWorkers())
		})
	}

	t.Setenv("RMSNORM_MIN_ROWS", "")
	assert.Equal(t, uint(4), MinRows())
}

func TestValues(t *testing.T) {
	t.Setenv("RMSNORM_BACKEND", "webgpu")
	t.Setenv("RMSNORM_MIN_ROWS", "9")

	vals := Values()
	assert.Len(t, vals, len(AsMap()))
	assert.Equal(t, "webgpu", vals["RMSNORM_BACKEND"])
	assert.Equal(t, "9", vals["RMSNORM_MIN_ROWS"])
}
