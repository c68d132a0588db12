// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package passes

import (
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"
)

// ShaderCache compiles each distinct WGSL source once and shares the
// resulting shader module between passes.
//
// ShaderCache is safe for concurrent use. Modules belong to the cache and
// are released by DestroyAll, not by the passes that use them.
type ShaderCache struct {
	device hal.Device

	mu      sync.RWMutex
	modules map[uint64]hal.ShaderModule

	hits   uint64
	misses uint64
}

// NewShaderCache creates an empty cache for device.
func NewShaderCache(device hal.Device) (*ShaderCache, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	return &ShaderCache{
		device:  device,
		modules: make(map[uint64]hal.ShaderModule),
	}, nil
}

// GetOrCreate returns the module for source, compiling it on first use.
func (c *ShaderCache) GetOrCreate(label, source string) (hal.ShaderModule, error) {
	key := hashSource(source)

	c.mu.RLock()
	if m, ok := c.modules[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return m, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if m, ok := c.modules[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return m, nil
	}

	m, err := createShaderModule(c.device, label, source)
	if err != nil {
		return nil, err
	}
	c.modules[key] = m
	atomic.AddUint64(&c.misses, 1)
	return m, nil
}

// Stats returns the number of cache hits and misses.
func (c *ShaderCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// Len returns the number of cached modules.
func (c *ShaderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.modules)
}

// DestroyAll releases every cached module and empties the cache.
func (c *ShaderCache) DestroyAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, m := range c.modules {
		c.device.DestroyShaderModule(m)
		delete(c.modules, key)
	}
}

func hashSource(source string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(source)) // fnv.Write never returns an error
	return h.Sum64()
}

// createShaderModule compiles WGSL and creates a HAL module from it.
func createShaderModule(device hal.Device, label, source string) (hal.ShaderModule, error) {
	spirv, err := CompileWGSL(source)
	if err != nil {
		return nil, err
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
}
