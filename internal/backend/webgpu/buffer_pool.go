//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// maxPooled caps the number of idle buffers kept per pool.
const maxPooled = 32

type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// BufferPool reuses output buffers across launches. Launches over the same
// row shape request the same size, so a first-fit scan is enough.
type BufferPool struct {
	device *wgpu.Device
	idle   []*pooledBuffer
	mu     sync.Mutex

	hits   uint64
	misses uint64
}

// NewBufferPool creates a new buffer pool for the given device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{
		device: device,
		idle:   make([]*pooledBuffer, 0, maxPooled),
	}
}

// Acquire returns an idle buffer of at least size bytes with the given usage,
// or creates one.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, pb := range p.idle {
		if pb.size >= size && pb.usage&usage == usage {
			p.idle = append(p.idle[:i], p.idle[i+1:]...)
			p.hits++
			return pb.buffer
		}
	}

	p.misses++
	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Release returns a buffer to the pool, or frees it if the pool is full.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.idle) >= maxPooled {
		buffer.Release()
		return
	}
	p.idle = append(p.idle, &pooledBuffer{buffer: buffer, size: size, usage: usage})
}

// Clear releases all pooled buffers.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pb := range p.idle {
		pb.buffer.Release()
	}
	p.idle = p.idle[:0]
}

// Stats returns hit and miss counts and the number of idle buffers.
func (p *BufferPool) Stats() (hits, misses uint64, idle int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits, p.misses, len(p.idle)
}
