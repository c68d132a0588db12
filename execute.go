package rendergraph

import "github.com/gogpu/gputypes"

// Execute records the compiled frame into cmd. For each pass it issues
// the pass's barriers, begins the backend render pass when there is one,
// runs the pass callback and ends the render pass. The output present
// transition follows the last pass.
//
// Execute returns ErrNotCompiled, and records nothing, unless Compile
// succeeded for the current frame.
func (g *RenderGraph) Execute(cmd CommandRecorder) error {
	if g.shutdown {
		Logger().Error("rendergraph: execute after shutdown", "label", g.opts.label)
		return ErrShutdown
	}
	if g.state != StateCompiled {
		Logger().Error("rendergraph: execute called before compile",
			"label", g.opts.label, "state", g.state.String())
		return ErrNotCompiled
	}

	for i := range g.compiled {
		cp := &g.compiled[i]
		p := g.passes[cp.PassIndex]

		g.issueBarriers(cmd, cp.Barriers)

		inPass := false
		switch {
		case p.RenderPass != nil && p.Framebuffer != nil:
			g.beginRenderPass(cmd, p)
			inPass = true
		case p.Kind == PassGraphics && p.HasAttachments():
			Logger().Warn("rendergraph: pass has no framebuffer, recording without render pass",
				"pass", p.Name)
		}

		if p.execute != nil {
			p.execute(cmd)
		}

		if inPass {
			cmd.EndRenderPass()
		}
	}

	g.issueBarriers(cmd, g.final)
	return nil
}

// issueBarriers resolves barriers to native objects, updates the tracked
// layouts and records them as one pipeline barrier. Barriers on
// unallocated resources are skipped.
func (g *RenderGraph) issueBarriers(cmd CommandRecorder, barriers []ResourceBarrier) {
	if len(barriers) == 0 {
		return
	}
	cmds := make([]BarrierCommand, 0, len(barriers))
	for _, b := range barriers {
		if b.IsTexture() {
			phys := g.PhysicalTexture(b.Texture)
			if phys == nil || !phys.Allocated() {
				continue
			}
			aspect := AspectColor
			if IsDepthFormat(phys.Format) ||
				(phys.Format == gputypes.TextureFormatUndefined && b.NewLayout.IsDepth()) {
				aspect = AspectDepth
			}
			cmds = append(cmds, BarrierCommand{ResourceBarrier: b, Image: phys.Image, Aspect: aspect})
			phys.CurrentLayout = b.NewLayout
			continue
		}
		phys := g.PhysicalBuffer(b.Buffer)
		if phys == nil || !phys.Allocated() {
			continue
		}
		cmds = append(cmds, BarrierCommand{ResourceBarrier: b, NativeBuffer: phys.Buffer})
	}
	if len(cmds) > 0 {
		cmd.PipelineBarrier(cmds)
	}
}

func (g *RenderGraph) beginRenderPass(cmd CommandRecorder, p *Pass) {
	width, height := p.ViewportWidth, p.ViewportHeight
	if width == 0 && height == 0 {
		width, height = g.attachmentExtent(p)
	}

	clears := make([]ClearValue, 0, len(p.ColorAttachments)+1)
	for range p.ColorAttachments {
		clears = append(clears, ClearValue{Color: g.opts.clearColor})
	}
	if p.DepthAttachment.IsValid() {
		clears = append(clears, ClearValue{Depth: g.opts.depthClear, Stencil: g.opts.stencilClear})
	}

	cmd.BeginRenderPass(&RenderPassBegin{
		RenderPass:  p.RenderPass,
		Framebuffer: p.Framebuffer,
		Width:       width,
		Height:      height,
		ClearValues: clears,
	})
	cmd.SetViewport(0, 0, float32(width), float32(height), 0, 1)
	cmd.SetScissor(0, 0, width, height)
}

// attachmentExtent returns the size of the first attachment of p.
func (g *RenderGraph) attachmentExtent(p *Pass) (uint32, uint32) {
	h := p.DepthAttachment
	if len(p.ColorAttachments) > 0 {
		h = p.ColorAttachments[0]
	}
	if phys := g.PhysicalTexture(h); phys != nil {
		return phys.Width, phys.Height
	}
	return 0, 0
}
