package framefile

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rendergraph"
)

// ExecuteFor returns the callback recorded for a pass. It may return nil.
type ExecuteFor func(pass string) rendergraph.ExecuteFunc

// Build declares every pass of f on g in file order. The first error
// stops the build; passes declared before it stay on the graph.
func (f *Frame) Build(g *rendergraph.RenderGraph, execute ExecuteFor) error {
	for _, p := range f.Passes {
		var exec rendergraph.ExecuteFunc
		if execute != nil {
			exec = execute(p.Name)
		}
		kind, err := parseKind(p.Kind)
		if err != nil {
			return fmt.Errorf("pass %q: %w", p.Name, err)
		}

		var setupErr error
		setup := func(b *rendergraph.PassBuilder) { setupErr = p.declare(b) }
		switch kind {
		case rendergraph.PassCompute:
			g.AddComputePass(p.Name, setup, exec)
		case rendergraph.PassTransfer:
			g.AddTransferPass(p.Name, setup, exec)
		default:
			g.AddPass(p.Name, setup, exec)
		}
		if setupErr != nil {
			return fmt.Errorf("pass %q: %w", p.Name, setupErr)
		}
	}

	if f.Output != "" {
		h, ok := g.Texture(f.Output)
		if !ok {
			return fmt.Errorf("output %q: %w", f.Output, ErrUnknownResource)
		}
		g.SetOutput(h)
	}
	return nil
}

func (p *PassBlock) declare(b *rendergraph.PassBuilder) error {
	g := b.Graph()

	for _, t := range p.Colors {
		format, err := parseFormat(t.Format)
		if err != nil {
			return fmt.Errorf("texture %q: %w", t.Name, err)
		}
		switch {
		case t.HDR:
			b.CreateHDRColorAttachment(t.Name, t.Width, t.height())
		default:
			b.CreateColorAttachment(t.Name, t.Width, t.height(), format)
		}
	}
	for _, t := range p.Depths {
		format, err := parseFormat(t.Format)
		if err != nil {
			return fmt.Errorf("texture %q: %w", t.Name, err)
		}
		if t.Shadow {
			b.CreateShadowMap(t.Name, t.Width)
			continue
		}
		b.CreateDepthAttachment(t.Name, t.Width, t.height(), format)
	}
	for _, buf := range p.Buffers {
		usage, err := parseUsage(buf.Usage)
		if err != nil {
			return fmt.Errorf("buffer %q: %w", buf.Name, err)
		}
		b.CreateBuffer(buf.Name, buf.Size, usage)
	}

	texture := func(name string) (rendergraph.TextureHandle, error) {
		h, ok := g.Texture(name)
		if !ok {
			return rendergraph.InvalidTexture, fmt.Errorf("texture %q: %w", name, ErrUnknownResource)
		}
		return h, nil
	}
	buffer := func(name string) (rendergraph.BufferHandle, error) {
		h, ok := g.Buffer(name)
		if !ok {
			return rendergraph.InvalidBuffer, fmt.Errorf("buffer %q: %w", name, ErrUnknownResource)
		}
		return h, nil
	}

	textureLists := []struct {
		names []string
		use   func(rendergraph.TextureHandle)
	}{
		{p.Reads, func(h rendergraph.TextureHandle) { b.ReadTexture(h, 0) }},
		{p.Loads, func(h rendergraph.TextureHandle) { loadAttachment(b, h) }},
		{p.StorageWrite, b.WriteStorageTexture},
		{p.CopyFrom, b.CopyFromTexture},
		{p.CopyTo, b.CopyToTexture},
	}
	for _, list := range textureLists {
		for _, name := range list.names {
			h, err := texture(name)
			if err != nil {
				return err
			}
			list.use(h)
		}
	}

	for _, name := range p.ReadBuffers {
		h, err := buffer(name)
		if err != nil {
			return err
		}
		desc, _ := g.BufferDesc(h)
		b.ReadBuffer(h, readUsage(desc.Usage))
	}
	for _, name := range p.WriteBuffers {
		h, err := buffer(name)
		if err != nil {
			return err
		}
		b.WriteBuffer(h)
	}

	if p.Present != "" {
		h, err := texture(p.Present)
		if err != nil {
			return err
		}
		b.PresentTexture(h)
	}
	return nil
}

func (t *TextureBlock) height() uint32 {
	if t.Height == 0 {
		return t.Width
	}
	return t.Height
}

// loadAttachment continues rendering into an existing attachment.
func loadAttachment(b *rendergraph.PassBuilder, h rendergraph.TextureHandle) {
	desc, _ := b.Graph().TextureDesc(h)
	if rendergraph.IsDepthFormat(desc.Format) {
		b.UseDepthAttachment(h)
		return
	}
	b.UseColorAttachment(h)
}

// readUsage picks the read-only subset of a buffer's declared usage.
// Buffers declared only as storage are read as storage.
func readUsage(u rendergraph.BufferUsage) rendergraph.BufferUsage {
	read := u &^ (rendergraph.BufferUsageStorage | rendergraph.BufferUsageTransferDst | rendergraph.BufferUsageTransferSrc)
	if read == 0 {
		return rendergraph.BufferUsageStorage
	}
	return read
}

func parseKind(s string) (rendergraph.PassKind, error) {
	switch strings.ToLower(s) {
	case "", "graphics":
		return rendergraph.PassGraphics, nil
	case "compute":
		return rendergraph.PassCompute, nil
	case "transfer":
		return rendergraph.PassTransfer, nil
	}
	return rendergraph.PassGraphics, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

var formats = map[string]gputypes.TextureFormat{
	"":                      gputypes.TextureFormatUndefined,
	"rgba8unorm":            gputypes.TextureFormatRGBA8Unorm,
	"rgba8unorm-srgb":       gputypes.TextureFormatRGBA8UnormSrgb,
	"bgra8unorm":            gputypes.TextureFormatBGRA8Unorm,
	"rgba16float":           gputypes.TextureFormatRGBA16Float,
	"depth16unorm":          gputypes.TextureFormatDepth16Unorm,
	"depth24plus":           gputypes.TextureFormatDepth24Plus,
	"depth24plus-stencil8":  gputypes.TextureFormatDepth24PlusStencil8,
	"depth32float":          gputypes.TextureFormatDepth32Float,
	"depth32float-stencil8": gputypes.TextureFormatDepth32FloatStencil8,
}

func parseFormat(s string) (gputypes.TextureFormat, error) {
	f, ok := formats[strings.ToLower(s)]
	if !ok {
		return gputypes.TextureFormatUndefined, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

var bufferUsages = map[string]rendergraph.BufferUsage{
	"vertex":       rendergraph.BufferUsageVertex,
	"index":        rendergraph.BufferUsageIndex,
	"uniform":      rendergraph.BufferUsageUniform,
	"storage":      rendergraph.BufferUsageStorage,
	"indirect":     rendergraph.BufferUsageIndirect,
	"transfer_src": rendergraph.BufferUsageTransferSrc,
	"transfer_dst": rendergraph.BufferUsageTransferDst,
}

func parseUsage(names []string) (rendergraph.BufferUsage, error) {
	var u rendergraph.BufferUsage
	for _, n := range names {
		bit, ok := bufferUsages[strings.ToLower(n)]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownUsage, n)
		}
		u |= bit
	}
	return u, nil
}
