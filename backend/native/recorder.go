// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
)

// Recorder records graph commands into a HAL command encoder.
//
// Pass callbacks receive the Recorder as a rendergraph.CommandRecorder and
// type-assert it to reach the active hal.RenderPassEncoder:
//
//	func(cmd rendergraph.CommandRecorder) {
//	    rp := cmd.(*native.Recorder).RenderPass()
//	    rp.SetPipeline(pipeline)
//	    rp.Draw(3, 1, 0, 0)
//	}
type Recorder struct {
	encoder hal.CommandEncoder
	pass    hal.RenderPassEncoder

	textureBarriers []hal.TextureBarrier
	bufferBarriers  []hal.BufferBarrier
}

var _ rendergraph.CommandRecorder = (*Recorder)(nil)

// NewRecorder wraps an encoder that is already encoding.
func NewRecorder(encoder hal.CommandEncoder) *Recorder {
	return &Recorder{encoder: encoder}
}

// Encoder returns the underlying command encoder, for copies and compute
// passes recorded by pass callbacks.
func (r *Recorder) Encoder() hal.CommandEncoder { return r.encoder }

// RenderPass returns the active render pass encoder, or nil outside a
// graphics pass.
func (r *Recorder) RenderPass() hal.RenderPassEncoder { return r.pass }

// PipelineBarrier records texture state transitions and buffer usage
// transitions.
func (r *Recorder) PipelineBarrier(barriers []rendergraph.BarrierCommand) {
	r.textureBarriers = r.textureBarriers[:0]
	r.bufferBarriers = r.bufferBarriers[:0]

	for i := range barriers {
		b := &barriers[i]
		if b.IsTexture() {
			tex, ok := b.Image.(hal.Texture)
			if !ok || tex == nil {
				continue
			}
			r.textureBarriers = append(r.textureBarriers, hal.TextureBarrier{
				Texture: tex,
				Usage: hal.TextureUsageTransition{
					OldUsage: LayoutUsage(b.OldLayout),
					NewUsage: LayoutUsage(b.NewLayout),
				},
			})
			continue
		}
		buf, ok := b.NativeBuffer.(hal.Buffer)
		if !ok || buf == nil {
			continue
		}
		r.bufferBarriers = append(r.bufferBarriers, hal.BufferBarrier{
			Buffer: buf,
			Usage: hal.BufferUsageTransition{
				OldUsage: AccessBufferUsage(b.SrcAccess),
				NewUsage: AccessBufferUsage(b.DstAccess),
			},
		})
	}

	if len(r.textureBarriers) > 0 {
		r.encoder.TransitionTextures(r.textureBarriers)
	}
	if len(r.bufferBarriers) > 0 {
		r.encoder.TransitionBuffers(r.bufferBarriers)
	}
}

// BeginRenderPass begins a HAL render pass on the framebuffer.
func (r *Recorder) BeginRenderPass(begin *rendergraph.RenderPassBegin) {
	fb, ok := begin.Framebuffer.(*Framebuffer)
	if !ok {
		rendergraph.Logger().Warn("native: begin render pass with foreign framebuffer",
			"err", ErrForeignObject)
		return
	}
	r.pass = r.encoder.BeginRenderPass(fb.Descriptor(begin.ClearValues))
}

// SetViewport sets the viewport of the active render pass.
func (r *Recorder) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	if r.pass != nil {
		r.pass.SetViewport(x, y, width, height, minDepth, maxDepth)
	}
}

// SetScissor sets the scissor rectangle of the active render pass.
// Negative offsets are clamped to zero.
func (r *Recorder) SetScissor(x, y int32, width, height uint32) {
	if r.pass != nil {
		r.pass.SetScissorRect(uint32(max(x, 0)), uint32(max(y, 0)), width, height) //nolint:gosec // clamped
	}
}

// EndRenderPass ends the active render pass.
func (r *Recorder) EndRenderPass() {
	if r.pass != nil {
		r.pass.End()
		r.pass = nil
	}
}
