// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package passes

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/backend/native"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func TestSPIRVWords(t *testing.T) {
	words, err := spirvWords([]byte{0x03, 0x02, 0x23, 0x07, 0x01, 0, 0, 0})
	if err != nil {
		t.Fatalf("spirvWords failed: %v", err)
	}
	if len(words) != 2 || words[0] != 0x07230203 || words[1] != 1 {
		t.Errorf("words = %#x", words)
	}
	if _, err := spirvWords([]byte{1, 2, 3}); !errors.Is(err, ErrBadSPIRV) {
		t.Errorf("short input error = %v, want ErrBadSPIRV", err)
	}
}

func TestCompileWGSL(t *testing.T) {
	words, err := CompileWGSL(fullscreenShaderWGSL)
	if err != nil {
		t.Fatalf("CompileWGSL failed: %v", err)
	}
	if len(words) == 0 || words[0] != 0x07230203 {
		t.Errorf("output does not start with the SPIR-V magic number")
	}

	if _, err := CompileWGSL("fn broken( {"); err == nil {
		t.Error("expected an error for invalid WGSL")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Output: "Sky"}.withDefaults()
	if cfg.Name != "Sky" {
		t.Errorf("Name = %q, want Sky", cfg.Name)
	}
	if cfg.Format != rendergraph.DefaultColorFormat {
		t.Errorf("Format = %v", cfg.Format)
	}
	if cfg.VertexEntry != DefaultVertexEntry || cfg.FragmentEntry != DefaultFragmentEntry {
		t.Errorf("entries = %q/%q", cfg.VertexEntry, cfg.FragmentEntry)
	}
	if cfg.Shader == "" {
		t.Error("built-in shader not selected")
	}
}

func TestNewFullscreenErrors(t *testing.T) {
	if _, err := NewFullscreen(nil, Config{Output: "x"}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device error = %v, want ErrNilDevice", err)
	}
	device, _ := createNoopDevice(t)
	if _, err := NewFullscreen(device, Config{}); !errors.Is(err, ErrNoOutput) {
		t.Errorf("empty output error = %v, want ErrNoOutput", err)
	}
	if _, err := NewFullscreen(device, Config{Output: "x", Shader: "not wgsl"}); err == nil {
		t.Error("expected a shader compile error")
	}
}

func TestFullscreenInGraph(t *testing.T) {
	device, queue := createNoopDevice(t)
	dev, err := native.NewDevice(device, queue)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}

	sky, err := NewFullscreen(device, Config{Output: "Sky", Width: 64, Height: 32})
	if err != nil {
		t.Fatalf("NewFullscreen failed: %v", err)
	}
	defer sky.Destroy()

	g := rendergraph.New(dev)
	defer g.Shutdown()

	out := sky.Add(g)
	if !out.IsValid() {
		t.Fatal("Add returned an invalid handle")
	}
	post, err := NewFullscreen(device, Config{Name: "Post", Output: "Final", Width: 64, Height: 32, Inputs: []rendergraph.TextureHandle{out}})
	if err != nil {
		t.Fatalf("NewFullscreen failed: %v", err)
	}
	defer post.Destroy()
	final := post.Add(g)
	g.SetOutput(final)

	if err := dev.RecordFrame(g); err != nil {
		t.Fatalf("RecordFrame failed: %v", err)
	}
	if sky.Draws() != 1 || post.Draws() != 1 {
		t.Errorf("draws = %d/%d, want 1/1", sky.Draws(), post.Draws())
	}
	if got := g.PhysicalTexture(out).CurrentLayout; got != rendergraph.LayoutShaderReadOnly {
		t.Errorf("Sky layout = %v, want ShaderReadOnly", got)
	}
	if got := g.PhysicalTexture(final).CurrentLayout; got != rendergraph.LayoutPresent {
		t.Errorf("Final layout = %v, want Present", got)
	}
}

type plainRecorder struct{ rendergraph.CommandRecorder }

func TestFullscreenIgnoresForeignRecorder(t *testing.T) {
	device, _ := createNoopDevice(t)
	f, err := NewFullscreen(device, Config{Output: "x", Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("NewFullscreen failed: %v", err)
	}
	defer f.Destroy()

	f.Execute(plainRecorder{})
	f.Execute(native.NewRecorder(nil))
	if f.Draws() != 0 {
		t.Errorf("Draws() = %d, want 0", f.Draws())
	}
	f.Destroy()
}

func TestShaderCacheSharesModules(t *testing.T) {
	device, _ := createNoopDevice(t)
	cache, err := NewShaderCache(device)
	if err != nil {
		t.Fatalf("NewShaderCache failed: %v", err)
	}
	defer cache.DestroyAll()

	a, err := NewFullscreen(device, Config{Output: "A", Width: 8, Height: 8, Shaders: cache})
	if err != nil {
		t.Fatalf("NewFullscreen A failed: %v", err)
	}
	b, err := NewFullscreen(device, Config{Output: "B", Width: 8, Height: 8, Shaders: cache})
	if err != nil {
		t.Fatalf("NewFullscreen B failed: %v", err)
	}
	a.Destroy()
	b.Destroy()

	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
	if hits, misses := cache.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses, want 1/1", hits, misses)
	}

	cache.DestroyAll()
	if cache.Len() != 0 {
		t.Errorf("Len() after DestroyAll = %d", cache.Len())
	}
}

func TestShaderCacheErrors(t *testing.T) {
	if _, err := NewShaderCache(nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("NewShaderCache(nil) error = %v, want ErrNilDevice", err)
	}
	device, _ := createNoopDevice(t)
	cache, _ := NewShaderCache(device)
	if _, err := cache.GetOrCreate("bad", "not wgsl"); err == nil {
		t.Error("expected a compile error")
	}
	if cache.Len() != 0 {
		t.Error("failed compile was cached")
	}
}
