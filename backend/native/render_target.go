// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
)

// RenderPass is the attachment layout of a render pass: formats and
// load/store behavior, without any views.
type RenderPass struct {
	Label  string
	Colors []rendergraph.AttachmentDesc
	Depth  *rendergraph.AttachmentDesc
}

func newRenderPass(desc *rendergraph.RenderPassDesc) *RenderPass {
	rp := &RenderPass{
		Label:  desc.Label,
		Colors: append([]rendergraph.AttachmentDesc(nil), desc.ColorAttachments...),
	}
	if desc.DepthAttachment != nil {
		depth := *desc.DepthAttachment
		rp.Depth = &depth
	}
	return rp
}

// Framebuffer binds texture views to a RenderPass.
type Framebuffer struct {
	pass   *RenderPass
	colors []hal.TextureView
	depth  hal.TextureView
	width  uint32
	height uint32
}

func newFramebuffer(desc *rendergraph.FramebufferDesc) (*Framebuffer, error) {
	rp, ok := desc.RenderPass.(*RenderPass)
	if !ok {
		return nil, fmt.Errorf("framebuffer %q: render pass: %w", desc.Label, ErrForeignObject)
	}
	if len(desc.ColorViews) != len(rp.Colors) || (desc.DepthView != nil) != (rp.Depth != nil) {
		return nil, fmt.Errorf("framebuffer %q: attachment count does not match render pass %q",
			desc.Label, rp.Label)
	}

	fb := &Framebuffer{pass: rp, width: desc.Width, height: desc.Height}
	for i, v := range desc.ColorViews {
		view, ok := v.(hal.TextureView)
		if !ok || view == nil {
			return nil, fmt.Errorf("framebuffer %q: color view %d: %w", desc.Label, i, ErrForeignObject)
		}
		fb.colors = append(fb.colors, view)
	}
	if desc.DepthView != nil {
		view, ok := desc.DepthView.(hal.TextureView)
		if !ok || view == nil {
			return nil, fmt.Errorf("framebuffer %q: depth view: %w", desc.Label, ErrForeignObject)
		}
		fb.depth = view
	}
	return fb, nil
}

// Size returns the framebuffer extent.
func (f *Framebuffer) Size() (uint32, uint32) { return f.width, f.height }

// Descriptor builds the HAL render pass descriptor with the given clear
// values: one per color attachment, then one for depth.
func (f *Framebuffer) Descriptor(clears []rendergraph.ClearValue) *hal.RenderPassDescriptor {
	desc := &hal.RenderPassDescriptor{
		Label:            f.pass.Label,
		ColorAttachments: make([]hal.RenderPassColorAttachment, len(f.colors)),
	}
	for i, view := range f.colors {
		att := f.pass.Colors[i]
		var clear gputypes.Color
		if i < len(clears) {
			clear = clears[i].Color
		}
		desc.ColorAttachments[i] = hal.RenderPassColorAttachment{
			View:       view,
			LoadOp:     loadOp(att.LoadOp),
			StoreOp:    storeOp(att.StoreOp),
			ClearValue: clear,
		}
	}
	if f.depth != nil {
		att := f.pass.Depth
		depthClear := rendergraph.ClearValue{Depth: 1.0}
		if n := len(f.colors); n < len(clears) {
			depthClear = clears[n]
		}
		dsa := &hal.RenderPassDepthStencilAttachment{
			View:            f.depth,
			DepthLoadOp:     loadOp(att.LoadOp),
			DepthStoreOp:    storeOp(att.StoreOp),
			DepthClearValue: depthClear.Depth,
		}
		// Stencil ops stay undefined for formats without a stencil aspect.
		if hasStencil(att.Format) {
			dsa.StencilLoadOp = loadOp(att.LoadOp)
			dsa.StencilStoreOp = storeOp(att.StoreOp)
			dsa.StencilClearValue = depthClear.Stencil
		}
		desc.DepthStencilAttachment = dsa
	}
	return desc
}
