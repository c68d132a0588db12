package rendergraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// allocateResources creates the physical object of every owned
// description that has none, or whose allocation no longer covers the
// description's accumulated usage.
func (g *RenderGraph) allocateResources() error {
	for i := range g.textures {
		desc := &g.textures[i]
		phys := &g.physTextures[i]
		if desc.External {
			continue
		}
		if phys.Allocated() {
			if phys.Usage&desc.Usage == desc.Usage {
				continue
			}
			Logger().Debug("rendergraph: reallocating texture for new usage",
				"name", desc.Name, "allocated", phys.Usage.String(), "required", desc.Usage.String())
			g.device.DestroyTexture(phys)
			*phys = PhysicalTexture{}
		}

		tex, err := g.device.CreateTexture(desc)
		if err != nil {
			if errors.Is(err, ErrNoMemoryType) {
				return fmt.Errorf("allocate texture %q: %w", desc.Name, err)
			}
			Logger().Warn("rendergraph: texture allocation failed",
				"name", desc.Name, "width", desc.Width, "height", desc.Height, "err", err)
			continue
		}
		if tex.Usage == TextureUsageNone {
			tex.Usage = desc.Usage
		}
		if tex.Format == gputypes.TextureFormatUndefined {
			tex.Format = desc.Format
		}
		if tex.Width == 0 && tex.Height == 0 {
			tex.Width, tex.Height = desc.Width, desc.Height
		}
		tex.OwnsMemory = true
		tex.CurrentLayout = LayoutUndefined
		tex.generation = g.nextGeneration()
		*phys = tex
	}

	for i := range g.buffers {
		desc := &g.buffers[i]
		phys := &g.physBuffers[i]
		if desc.External {
			continue
		}
		if phys.Allocated() {
			if phys.Usage&desc.Usage == desc.Usage {
				continue
			}
			Logger().Debug("rendergraph: reallocating buffer for new usage",
				"name", desc.Name, "allocated", phys.Usage.String(), "required", desc.Usage.String())
			g.device.DestroyBuffer(phys)
			*phys = PhysicalBuffer{}
		}

		buf, err := g.device.CreateBuffer(desc)
		if err != nil {
			if errors.Is(err, ErrNoMemoryType) {
				return fmt.Errorf("allocate buffer %q: %w", desc.Name, err)
			}
			Logger().Warn("rendergraph: buffer allocation failed",
				"name", desc.Name, "size", desc.Size, "err", err)
			continue
		}
		if buf.Usage == BufferUsageNone {
			buf.Usage = desc.Usage
		}
		if buf.Size == 0 {
			buf.Size = desc.Size
		}
		buf.OwnsMemory = true
		*phys = buf
	}
	return nil
}

// createBackendObjects creates (or fetches from the cache) the render-pass
// object and framebuffer of every graphics pass with attachments.
func (g *RenderGraph) createBackendObjects() {
	for _, p := range g.passes {
		p.RenderPass = nil
		p.Framebuffer = nil
		if p.Kind != PassGraphics || !p.HasAttachments() {
			continue
		}

		rpDesc := g.renderPassDesc(p)
		rp, err := g.targets.renderPass(g.device, &rpDesc, g.frame)
		if err != nil {
			Logger().Warn("rendergraph: render pass creation failed", "pass", p.Name, "err", err)
			continue
		}
		p.RenderPass = rp

		fbDesc, key, ok := g.framebufferDesc(p, rp, renderPassKey(&rpDesc))
		if !ok {
			Logger().Warn("rendergraph: attachment not allocated, pass has no framebuffer", "pass", p.Name)
			continue
		}
		fb, err := g.targets.framebuffer(g.device, key, &fbDesc, g.frame)
		if err != nil {
			Logger().Warn("rendergraph: framebuffer creation failed", "pass", p.Name, "err", err)
			continue
		}
		p.Framebuffer = fb
	}
}

func (g *RenderGraph) renderPassDesc(p *Pass) RenderPassDesc {
	desc := RenderPassDesc{Label: g.opts.label + "/" + p.Name}
	for _, h := range p.ColorAttachments {
		desc.ColorAttachments = append(desc.ColorAttachments,
			g.attachmentDesc(p, h, LayoutColorAttachment))
	}
	if p.DepthAttachment.IsValid() {
		att := g.attachmentDesc(p, p.DepthAttachment, LayoutDepthStencilAttachment)
		desc.DepthAttachment = &att
	}
	return desc
}

func (g *RenderGraph) attachmentDesc(p *Pass, h TextureHandle, final Layout) AttachmentDesc {
	d := g.textureDesc(h)
	att := AttachmentDesc{
		Format:        d.Format,
		Samples:       d.Samples,
		LoadOp:        gputypes.LoadOpClear,
		StoreOp:       gputypes.StoreOpStore,
		InitialLayout: LayoutUndefined,
		FinalLayout:   final,
	}
	if IsDepthFormat(d.Format) {
		att.FinalLayout = LayoutDepthStencilAttachment
	}
	if p.loaded[h] {
		att.LoadOp = gputypes.LoadOpLoad
		att.InitialLayout = att.FinalLayout
	}
	return att
}

// framebufferDesc resolves the attachment views of p. It reports false
// when an attachment has no allocation.
func (g *RenderGraph) framebufferDesc(p *Pass, rp any, rpKey string) (FramebufferDesc, string, bool) {
	desc := FramebufferDesc{
		Label:      g.opts.label + "/" + p.Name,
		RenderPass: rp,
		Width:      p.ViewportWidth,
		Height:     p.ViewportHeight,
	}
	var key strings.Builder
	key.WriteString(rpKey)
	key.WriteByte('|')

	first := true
	add := func(h TextureHandle) (any, bool) {
		phys := g.PhysicalTexture(h)
		if phys == nil || phys.View == nil {
			return nil, false
		}
		if first && desc.Width == 0 && desc.Height == 0 {
			desc.Width, desc.Height = phys.Width, phys.Height
		}
		first = false
		fmt.Fprintf(&key, "%d@%d,", h.Index(), phys.generation)
		return phys.View, true
	}
	for _, h := range p.ColorAttachments {
		v, ok := add(h)
		if !ok {
			return FramebufferDesc{}, "", false
		}
		desc.ColorViews = append(desc.ColorViews, v)
	}
	if p.DepthAttachment.IsValid() {
		v, ok := add(p.DepthAttachment)
		if !ok {
			return FramebufferDesc{}, "", false
		}
		desc.DepthView = v
	}
	fmt.Fprintf(&key, "%dx%d", desc.Width, desc.Height)
	return desc, key.String(), true
}

// renderPassKey is the attachment signature of a render-pass object.
func renderPassKey(desc *RenderPassDesc) string {
	var b strings.Builder
	for _, a := range desc.ColorAttachments {
		fmt.Fprintf(&b, "c%d/%d/%d/%d/%d/%d;", a.Format, a.Samples, a.LoadOp, a.StoreOp, a.InitialLayout, a.FinalLayout)
	}
	if a := desc.DepthAttachment; a != nil {
		fmt.Fprintf(&b, "d%d/%d/%d/%d/%d/%d;", a.Format, a.Samples, a.LoadOp, a.StoreOp, a.InitialLayout, a.FinalLayout)
	}
	return b.String()
}

// framebufferRetireFrames is the number of frames a cached framebuffer
// may go unused before Reset destroys it.
const framebufferRetireFrames = 8

type cachedObject struct {
	object   any
	lastUsed uint64
}

// targetCache keeps backend render-pass objects and framebuffers across
// frames, keyed by attachment signature.
type targetCache struct {
	renderPasses map[string]*cachedObject
	framebuffers map[string]*cachedObject
}

func newTargetCache() targetCache {
	return targetCache{
		renderPasses: make(map[string]*cachedObject),
		framebuffers: make(map[string]*cachedObject),
	}
}

func (c *targetCache) renderPass(dev Device, desc *RenderPassDesc, frame uint64) (any, error) {
	key := renderPassKey(desc)
	if e, ok := c.renderPasses[key]; ok {
		e.lastUsed = frame
		return e.object, nil
	}
	rp, err := dev.CreateRenderPass(desc)
	if err != nil {
		return nil, err
	}
	c.renderPasses[key] = &cachedObject{object: rp, lastUsed: frame}
	Logger().Info("rendergraph: render pass created", "label", desc.Label,
		"colors", len(desc.ColorAttachments), "depth", desc.DepthAttachment != nil)
	return rp, nil
}

func (c *targetCache) framebuffer(dev Device, key string, desc *FramebufferDesc, frame uint64) (any, error) {
	if e, ok := c.framebuffers[key]; ok {
		e.lastUsed = frame
		return e.object, nil
	}
	fb, err := dev.CreateFramebuffer(desc)
	if err != nil {
		return nil, err
	}
	c.framebuffers[key] = &cachedObject{object: fb, lastUsed: frame}
	Logger().Info("rendergraph: framebuffer created", "label", desc.Label,
		"width", desc.Width, "height", desc.Height)
	return fb, nil
}

// retire destroys framebuffers unused for framebufferRetireFrames frames.
// Render-pass objects are small and live until destroyAll.
func (c *targetCache) retire(dev Device, frame uint64) {
	for key, e := range c.framebuffers {
		if frame-e.lastUsed > framebufferRetireFrames {
			dev.DestroyFramebuffer(e.object)
			delete(c.framebuffers, key)
		}
	}
}

func (c *targetCache) destroyAll(dev Device) {
	for key, e := range c.framebuffers {
		dev.DestroyFramebuffer(e.object)
		delete(c.framebuffers, key)
	}
	for key, e := range c.renderPasses {
		dev.DestroyRenderPass(e.object)
		delete(c.renderPasses, key)
	}
}
