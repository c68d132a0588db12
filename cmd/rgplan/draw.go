package main

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
	"github.com/gogpu/rendergraph/passes"
)

// halProvider is implemented by backends that expose their HAL device.
type halProvider interface {
	HAL() hal.Device
}

// fullscreenDraws records a fullscreen triangle in every graphics pass
// that renders to a single color attachment without depth. Other passes
// record nothing.
type fullscreenDraws struct {
	device hal.Device
	cache  *passes.ShaderCache
	byPass map[string]*passes.Fullscreen
}

// newFullscreenDraws returns nil when dev has no HAL device.
func newFullscreenDraws(dev rendergraph.Device) (*fullscreenDraws, error) {
	p, ok := dev.(halProvider)
	if !ok || p.HAL() == nil {
		return nil, nil
	}
	cache, err := passes.NewShaderCache(p.HAL())
	if err != nil {
		return nil, err
	}
	return &fullscreenDraws{
		device: p.HAL(),
		cache:  cache,
		byPass: make(map[string]*passes.Fullscreen),
	}, nil
}

// executeFor is a framefile.ExecuteFor. The callback resolves its pipeline
// when it runs, so prepare may be called after the graph is built.
func (d *fullscreenDraws) executeFor(pass string) rendergraph.ExecuteFunc {
	if d == nil {
		return nil
	}
	return func(cmd rendergraph.CommandRecorder) {
		if f := d.byPass[pass]; f != nil {
			f.Execute(cmd)
		}
	}
}

// prepare creates a pipeline for every eligible pass of g.
func (d *fullscreenDraws) prepare(g *rendergraph.RenderGraph) error {
	if d == nil {
		return nil
	}
	for _, p := range g.Passes() {
		if p.Kind != rendergraph.PassGraphics || len(p.ColorAttachments) != 1 || p.DepthAttachment.IsValid() {
			continue
		}
		if _, ok := d.byPass[p.Name]; ok {
			continue
		}
		desc, ok := g.TextureDesc(p.ColorAttachments[0])
		if !ok {
			continue
		}
		format := desc.Format
		if format == gputypes.TextureFormatUndefined {
			format = rendergraph.DefaultColorFormat
		}
		f, err := passes.NewFullscreen(d.device, passes.Config{
			Name:    p.Name,
			Output:  desc.Name,
			Width:   desc.Width,
			Height:  desc.Height,
			Format:  format,
			Shaders: d.cache,
		})
		if err != nil {
			return err
		}
		d.byPass[p.Name] = f
	}
	return nil
}

// count returns the number of draws recorded so far.
func (d *fullscreenDraws) count() int {
	if d == nil {
		return 0
	}
	n := 0
	for _, f := range d.byPass {
		n += f.Draws()
	}
	return n
}

func (d *fullscreenDraws) destroy() {
	if d == nil {
		return
	}
	for _, f := range d.byPass {
		f.Destroy()
	}
	d.cache.DestroyAll()
}
