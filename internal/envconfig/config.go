// Package envconfig reads the RMSNORM_* environment variables.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Var returns an environment variable with surrounding spaces and quotes removed.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// LogLevel returns the slog level. RMSNORM_DEBUG=1 enables debug records;
// an integer n selects slog.Level(-4n).
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("RMSNORM_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// Backend returns the compute backend name, cpu or webgpu. Default: cpu.
func Backend() string {
	s := strings.ToLower(Var("RMSNORM_BACKEND"))
	switch s {
	case "":
		return "cpu"
	case "cpu", "webgpu":
		return s
	default:
		slog.Warn("invalid environment variable, using default", "key", "RMSNORM_BACKEND", "value", s, "default", "cpu")
		return "cpu"
	}
}

var (
	// NumWorkers caps the goroutines the CPU backend runs rows on.
	NumWorkers = Uint("RMSNORM_NUM_WORKERS", uint(runtime.NumCPU()))
	// MinRows is the smallest number of rows handed to one worker.
	MinRows = Uint("RMSNORM_MIN_ROWS", 4)
)

// Uint returns a getter for a positive integer with a default.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil || n == 0 {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// EnvVar describes one variable for display.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every recognized variable with its effective value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"RMSNORM_DEBUG":       {"RMSNORM_DEBUG", LogLevel(), "Show additional debug information (e.g. RMSNORM_DEBUG=1)"},
		"RMSNORM_BACKEND":     {"RMSNORM_BACKEND", Backend(), "Compute backend: cpu or webgpu (default: cpu)"},
		"RMSNORM_NUM_WORKERS": {"RMSNORM_NUM_WORKERS", NumWorkers(), "Maximum goroutines normalizing rows (default: number of CPUs)"},
		"RMSNORM_MIN_ROWS":    {"RMSNORM_MIN_ROWS", MinRows(), "Minimum rows per worker chunk (default: 4)"},
	}
}

// Values returns AsMap formatted as strings.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
