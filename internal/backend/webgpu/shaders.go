package webgpu

import (
	"fmt"
	"strings"

	"github.com/born-ml/rmsnorm/internal/tensor"
	"github.com/born-ml/rmsnorm/internal/variant"
)

// workgroupSize is the number of threads cooperating on one row.
const workgroupSize = 256

// maxGridDim is the largest workgroup count WebGPU guarantees per dimension.
const maxGridDim = 65535

// Store modes select the in-shader rounding applied before the f32 store.
const (
	storeF32  = 0
	storeF16  = 1
	storeBF16 = 2
)

func storeMode(dtype tensor.DataType) (int, error) {
	switch dtype {
	case tensor.Float32:
		return storeF32, nil
	case tensor.Float16:
		return storeF16, nil
	case tensor.BFloat16:
		return storeBF16, nil
	default:
		return 0, fmt.Errorf("webgpu: unsupported dtype %s", dtype)
	}
}

// rmsNormShaderTemplate normalizes one row per workgroup.
// Device buffers are f32; the result is rounded to the storage precision in the
// shader so the host-side narrowing is exact.
const rmsNormShaderTemplate = `
const BLOCK_SIZE: u32 = {{BLOCK_SIZE}}u;
const EPS: f32 = {{EPS}};
const STORE_MODE: u32 = {{STORE_MODE}}u;
const WORKGROUP_SIZE: u32 = {{WORKGROUP_SIZE}}u;
const LANES_PER_THREAD: u32 = (BLOCK_SIZE + WORKGROUP_SIZE - 1u) / WORKGROUP_SIZE;

@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read> weight: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    n_elements: u32,
    grid_x: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

var<workgroup> partial: array<f32, {{WORKGROUP_SIZE}}>;

fn round_to_storage(v: f32) -> f32 {
    if (STORE_MODE == 1u) {
        return unpack2x16float(pack2x16float(vec2<f32>(v, 0.0))).x;
    }
    if (STORE_MODE == 2u) {
        let bits = bitcast<u32>(v);
        if ((bits & 0x7fffffffu) > 0x7f800000u) {
            return v;
        }
        let rounded = (bits + 0x7fffu + ((bits >> 16u) & 1u)) & 0xffff0000u;
        return bitcast<f32>(rounded);
    }
    return v;
}

@compute @workgroup_size({{WORKGROUP_SIZE}})
fn main(@builtin(workgroup_id) wid: vec3<u32>, @builtin(local_invocation_index) lid: u32) {
    let row = wid.y * params.grid_x + wid.x;
    if (row >= params.rows) {
        return;
    }
    let n = params.n_elements;
    let row_start = row * n;

    // Pass 1: masked load, padding lanes contribute 0.
    var sum_sq: f32 = 0.0;
    for (var k: u32 = 0u; k < LANES_PER_THREAD; k = k + 1u) {
        let lane = k * WORKGROUP_SIZE + lid;
        var v: f32 = 0.0;
        if (lane < n) {
            v = x[row_start + lane];
        }
        sum_sq = sum_sq + v * v;
    }
    partial[lid] = sum_sq;
    workgroupBarrier();

    for (var stride: u32 = WORKGROUP_SIZE / 2u; stride > 0u; stride = stride / 2u) {
        if (lid < stride) {
            partial[lid] = partial[lid] + partial[lid + stride];
        }
        workgroupBarrier();
    }

    let mean_sq = partial[0] / f32(n);
    let rstd = 1.0 / sqrt(mean_sq + EPS);

    // Pass 2: masked store, lanes past the row are never written.
    for (var k: u32 = 0u; k < LANES_PER_THREAD; k = k + 1u) {
        let lane = k * WORKGROUP_SIZE + lid;
        if (lane < n) {
            result[row_start + lane] = round_to_storage(x[row_start + lane] * rstd * weight[lane]);
        }
    }
}
`

// rmsNormShader renders the WGSL source for one specialization.
func rmsNormShader(v variant.Variant, dtype tensor.DataType) (string, error) {
	mode, err := storeMode(dtype)
	if err != nil {
		return "", err
	}
	if err := v.Validate(); err != nil {
		return "", err
	}
	r := strings.NewReplacer(
		"{{BLOCK_SIZE}}", fmt.Sprint(v.BlockSize),
		"{{EPS}}", fmt.Sprintf("%.9e", v.Epsilon),
		"{{STORE_MODE}}", fmt.Sprint(mode),
		"{{WORKGROUP_SIZE}}", fmt.Sprint(workgroupSize),
	)
	return r.Replace(rmsNormShaderTemplate), nil
}

// pipelineName identifies a compiled specialization in the shader and pipeline caches.
func pipelineName(v variant.Variant, dtype tensor.DataType) string {
	return "rmsnorm_" + v.Key() + "_" + dtype.String()
}

// gridFor folds rows workgroups into a 2D grid within the per-dimension limit.
func gridFor(rows int) (x, y uint32) {
	if rows <= maxGridDim {
		//nolint:gosec // G115: rows is bounded by maxGridDim
		return uint32(rows), 1
	}
	gx := maxGridDim
	gy := (rows + gx - 1) / gx
	//nolint:gosec // G115: gy*gx covers rows, both are positive
	return uint32(gx), uint32(gy)
}
