// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package passes provides ready-made render graph passes backed by the
// wgpu HAL.
//
// Passes take their configuration explicitly through Config; there is no
// package-level shader search path.
package passes

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
)

//go:embed shaders/fullscreen.wgsl
var fullscreenShaderWGSL string

// Default shader entry points.
const (
	DefaultVertexEntry   = "vs_main"
	DefaultFragmentEntry = "fs_main"
)

var (
	// ErrNilDevice is returned when a pass is created without a device.
	ErrNilDevice = errors.New("passes: nil device")

	// ErrNoOutput is returned when Config names no output texture.
	ErrNoOutput = errors.New("passes: output texture name is empty")
)

// Config describes a fullscreen pass.
type Config struct {
	// Name is the pass name. Defaults to Output.
	Name string

	// Output is the name of the color attachment the pass creates.
	Output string

	// Width and Height of the output.
	Width, Height uint32

	// Format of the output; zero selects rendergraph.DefaultColorFormat.
	Format gputypes.TextureFormat

	// Inputs are sampled by the fragment stage. They order the pass after
	// their producers.
	Inputs []rendergraph.TextureHandle

	// Shader is WGSL source. Empty selects the built-in gradient shader.
	Shader string

	// VertexEntry and FragmentEntry default to vs_main and fs_main.
	VertexEntry   string
	FragmentEntry string

	// Shaders, when set, supplies the shader module. The pass then does
	// not destroy it.
	Shaders *ShaderCache
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = c.Output
	}
	if c.Format == gputypes.TextureFormatUndefined {
		c.Format = rendergraph.DefaultColorFormat
	}
	if c.Shader == "" {
		c.Shader = fullscreenShaderWGSL
	}
	if c.VertexEntry == "" {
		c.VertexEntry = DefaultVertexEntry
	}
	if c.FragmentEntry == "" {
		c.FragmentEntry = DefaultFragmentEntry
	}
	return c
}

// renderPassSource is implemented by recorders that expose the active HAL
// render pass, such as native.Recorder.
type renderPassSource interface {
	RenderPass() hal.RenderPassEncoder
}

// Fullscreen draws a single triangle covering its output attachment.
type Fullscreen struct {
	cfg    Config
	device hal.Device

	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	output rendergraph.TextureHandle
	draws  int
}

// NewFullscreen compiles the shader and creates the pipeline.
func NewFullscreen(device hal.Device, cfg Config) (*Fullscreen, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if cfg.Output == "" {
		return nil, ErrNoOutput
	}
	f := &Fullscreen{cfg: cfg.withDefaults(), device: device}
	if err := f.init(); err != nil {
		f.Destroy()
		return nil, err
	}
	return f, nil
}

func (f *Fullscreen) init() error {
	var shader hal.ShaderModule
	var err error
	if f.cfg.Shaders != nil {
		shader, err = f.cfg.Shaders.GetOrCreate(f.cfg.Name+"_shader", f.cfg.Shader)
	} else {
		shader, err = createShaderModule(f.device, f.cfg.Name+"_shader", f.cfg.Shader)
	}
	if err != nil {
		return fmt.Errorf("fullscreen %q: %w", f.cfg.Name, err)
	}
	f.shader = shader

	pipeLayout, err := f.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: f.cfg.Name + "_pipe_layout",
	})
	if err != nil {
		return fmt.Errorf("fullscreen %q: create pipeline layout: %w", f.cfg.Name, err)
	}
	f.pipeLayout = pipeLayout

	pipeline, err := f.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  f.cfg.Name + "_pipeline",
		Layout: f.pipeLayout,
		Vertex: hal.VertexState{
			Module:     f.shader,
			EntryPoint: f.cfg.VertexEntry,
		},
		Fragment: &hal.FragmentState{
			Module:     f.shader,
			EntryPoint: f.cfg.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    f.cfg.Format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("fullscreen %q: create pipeline: %w", f.cfg.Name, err)
	}
	f.pipeline = pipeline
	return nil
}

// Add declares the pass on g and returns its output texture.
func (f *Fullscreen) Add(g *rendergraph.RenderGraph) rendergraph.TextureHandle {
	g.AddPass(f.cfg.Name, f.Setup, f.Execute)
	return f.output
}

// Setup declares the output attachment and the sampled inputs.
func (f *Fullscreen) Setup(b *rendergraph.PassBuilder) {
	f.output = b.CreateColorAttachment(f.cfg.Output, f.cfg.Width, f.cfg.Height, f.cfg.Format)
	for _, in := range f.cfg.Inputs {
		b.SampleTexture(in)
	}
}

// Execute draws the triangle. Recorders without a HAL render pass are
// ignored.
func (f *Fullscreen) Execute(cmd rendergraph.CommandRecorder) {
	src, ok := cmd.(renderPassSource)
	if !ok {
		return
	}
	rp := src.RenderPass()
	if rp == nil {
		rendergraph.Logger().Warn("passes: fullscreen executed outside a render pass", "pass", f.cfg.Name)
		return
	}
	rp.SetPipeline(f.pipeline)
	rp.Draw(3, 1, 0, 0)
	f.draws++
}

// Output returns the texture created by the last Setup.
func (f *Fullscreen) Output() rendergraph.TextureHandle { return f.output }

// Draws returns how many times the pass has drawn.
func (f *Fullscreen) Draws() int { return f.draws }

// Destroy releases the pipeline objects. Safe to call more than once.
func (f *Fullscreen) Destroy() {
	if f.device == nil {
		return
	}
	if f.pipeline != nil {
		f.device.DestroyRenderPipeline(f.pipeline)
		f.pipeline = nil
	}
	if f.pipeLayout != nil {
		f.device.DestroyPipelineLayout(f.pipeLayout)
		f.pipeLayout = nil
	}
	if f.shader != nil && f.cfg.Shaders == nil {
		f.device.DestroyShaderModule(f.shader)
	}
	f.shader = nil
}
