package rendergraph

import "github.com/gogpu/gputypes"

// PassBuilder declares the resource accesses of a single pass. A builder
// is handed to the SetupFunc and is only valid while it runs; calls made
// after setup returns are logged and ignored.
type PassBuilder struct {
	graph  *RenderGraph
	pass   *Pass
	sealed bool
}

func (b *PassBuilder) stale(op string) bool {
	if b.sealed {
		Logger().Warn("rendergraph: builder used after setup", "pass", b.pass.Name, "op", op)
		return true
	}
	return false
}

// Pass returns the pass being declared.
func (b *PassBuilder) Pass() *Pass { return b.pass }

// Graph returns the graph the pass belongs to.
func (b *PassBuilder) Graph() *RenderGraph { return b.graph }

func (b *PassBuilder) readTexture(h TextureHandle, usage TextureUsage, stage Stage, access Access, layout Layout) {
	b.graph.addTextureUsage(h, usage)
	b.pass.Reads = append(b.pass.Reads, ResourceAccess{
		Texture: h, TextureUsage: usage, Stage: stage, Access: access, Layout: layout,
	})
}

func (b *PassBuilder) writeTexture(h TextureHandle, usage TextureUsage, stage Stage, access Access, layout Layout) {
	b.graph.addTextureUsage(h, usage)
	b.pass.Writes = append(b.pass.Writes, ResourceAccess{
		Texture: h, TextureUsage: usage, Stage: stage, Access: access, Layout: layout,
	})
}

func (b *PassBuilder) readBuffer(h BufferHandle, usage BufferUsage, stage Stage, access Access) {
	b.graph.addBufferUsage(h, usage)
	b.pass.Reads = append(b.pass.Reads, ResourceAccess{
		Buffer: h, BufferUsage: usage, Stage: stage, Access: access,
	})
}

func (b *PassBuilder) writeBuffer(h BufferHandle, usage BufferUsage, stage Stage, access Access) {
	b.graph.addBufferUsage(h, usage)
	b.pass.Writes = append(b.pass.Writes, ResourceAccess{
		Buffer: h, BufferUsage: usage, Stage: stage, Access: access,
	})
}

func (b *PassBuilder) setViewportIfUnset(w, h uint32) {
	if b.pass.ViewportWidth == 0 && b.pass.ViewportHeight == 0 {
		b.pass.ViewportWidth = w
		b.pass.ViewportHeight = h
	}
}

func (b *PassBuilder) attachColor(h TextureHandle) {
	if !b.pass.hasColorAttachment(h) {
		b.pass.ColorAttachments = append(b.pass.ColorAttachments, h)
	}
	if d := b.graph.textureDesc(h); d != nil {
		b.setViewportIfUnset(d.Width, d.Height)
	}
}

// CreateColorAttachment creates (or reuses by name) a transient color
// texture and renders to it. An undefined format selects
// DefaultColorFormat.
func (b *PassBuilder) CreateColorAttachment(name string, width, height uint32, format gputypes.TextureFormat) TextureHandle {
	if b.stale("CreateColorAttachment") {
		return InvalidTexture
	}
	desc := ColorTarget(name, width, height, format)
	desc.Transient = true
	return b.renderColor(desc)
}

// CreateHDRColorAttachment creates a transient floating point color
// texture and renders to it.
func (b *PassBuilder) CreateHDRColorAttachment(name string, width, height uint32) TextureHandle {
	if b.stale("CreateHDRColorAttachment") {
		return InvalidTexture
	}
	desc := HDRTarget(name, width, height)
	desc.Transient = true
	return b.renderColor(desc)
}

// CreateGBufferAttachment creates a geometry buffer texture and renders
// to it.
func (b *PassBuilder) CreateGBufferAttachment(name string, width, height uint32, format gputypes.TextureFormat) TextureHandle {
	if b.stale("CreateGBufferAttachment") {
		return InvalidTexture
	}
	desc := GBufferTarget(name, width, height, format)
	desc.Transient = true
	return b.renderColor(desc)
}

func (b *PassBuilder) renderColor(desc TextureDesc) TextureHandle {
	h := b.graph.createTexture(desc)
	if !h.IsValid() {
		return h
	}
	b.writeTexture(h, TextureUsageColorAttachment, StageColorAttachmentOutput, AccessColorAttachmentWrite, LayoutColorAttachment)
	b.attachColor(h)
	return h
}

// CreateDepthAttachment creates (or reuses by name) a transient depth
// texture and makes it the depth attachment of the pass. An undefined
// format selects DefaultDepthFormat.
func (b *PassBuilder) CreateDepthAttachment(name string, width, height uint32, format gputypes.TextureFormat) TextureHandle {
	if b.stale("CreateDepthAttachment") {
		return InvalidTexture
	}
	desc := DepthTarget(name, width, height, format)
	desc.Transient = true
	return b.renderDepth(desc)
}

// CreateShadowMap creates a square depth texture that later passes can
// sample, and makes it the depth attachment of the pass.
func (b *PassBuilder) CreateShadowMap(name string, size uint32) TextureHandle {
	if b.stale("CreateShadowMap") {
		return InvalidTexture
	}
	return b.renderDepth(ShadowMap(name, size))
}

func (b *PassBuilder) renderDepth(desc TextureDesc) TextureHandle {
	h := b.graph.createTexture(desc)
	if !h.IsValid() {
		return h
	}
	b.writeTexture(h, TextureUsageDepthAttachment, StageDepthTests, AccessDepthStencilAttachmentWrite, LayoutDepthStencilAttachment)
	b.pass.DepthAttachment = h
	if d := b.graph.textureDesc(h); d != nil {
		b.setViewportIfUnset(d.Width, d.Height)
	}
	return h
}

// ReadTexture samples h in the given stage. A zero stage means the
// fragment shader.
func (b *PassBuilder) ReadTexture(h TextureHandle, stage Stage) {
	if b.stale("ReadTexture") || !b.graph.validTexture(h, "ReadTexture") {
		return
	}
	if stage == StageNone {
		stage = StageFragmentShader
	}
	b.readTexture(h, TextureUsageShaderRead, stage, AccessShaderRead, LayoutShaderReadOnly)
}

// SampleTexture samples h in the fragment shader.
func (b *PassBuilder) SampleTexture(h TextureHandle) {
	b.ReadTexture(h, StageFragmentShader)
}

// WriteStorageTexture writes h as a storage image from compute.
func (b *PassBuilder) WriteStorageTexture(h TextureHandle) {
	if b.stale("WriteStorageTexture") || !b.graph.validTexture(h, "WriteStorageTexture") {
		return
	}
	b.writeTexture(h, TextureUsageStorage, StageComputeShader, AccessShaderWrite, LayoutGeneral)
}

// UseColorAttachment renders to an existing texture, keeping its contents.
func (b *PassBuilder) UseColorAttachment(h TextureHandle) {
	if b.stale("UseColorAttachment") || !b.graph.validTexture(h, "UseColorAttachment") {
		return
	}
	b.writeTexture(h, TextureUsageColorAttachment, StageColorAttachmentOutput,
		AccessColorAttachmentRead|AccessColorAttachmentWrite, LayoutColorAttachment)
	b.attachColor(h)
	b.markLoaded(h)
}

// UseDepthAttachment makes an existing texture the depth attachment,
// keeping its contents.
func (b *PassBuilder) UseDepthAttachment(h TextureHandle) {
	if b.stale("UseDepthAttachment") || !b.graph.validTexture(h, "UseDepthAttachment") {
		return
	}
	b.writeTexture(h, TextureUsageDepthAttachment, StageDepthTests,
		AccessDepthStencilAttachmentRead|AccessDepthStencilAttachmentWrite, LayoutDepthStencilAttachment)
	b.pass.DepthAttachment = h
	if d := b.graph.textureDesc(h); d != nil {
		b.setViewportIfUnset(d.Width, d.Height)
	}
	b.markLoaded(h)
}

func (b *PassBuilder) markLoaded(h TextureHandle) {
	if b.pass.loaded == nil {
		b.pass.loaded = make(map[TextureHandle]bool)
	}
	b.pass.loaded[h] = true
}

// CopyFromTexture reads h as the source of a transfer.
func (b *PassBuilder) CopyFromTexture(h TextureHandle) {
	if b.stale("CopyFromTexture") || !b.graph.validTexture(h, "CopyFromTexture") {
		return
	}
	b.readTexture(h, TextureUsageTransferSrc, StageTransfer, AccessTransferRead, LayoutTransferSrc)
}

// CopyToTexture writes h as the destination of a transfer.
func (b *PassBuilder) CopyToTexture(h TextureHandle) {
	if b.stale("CopyToTexture") || !b.graph.validTexture(h, "CopyToTexture") {
		return
	}
	b.writeTexture(h, TextureUsageTransferDst, StageTransfer, AccessTransferWrite, LayoutTransferDst)
}

// PresentTexture declares that the pass hands h to the presentation
// engine.
func (b *PassBuilder) PresentTexture(h TextureHandle) {
	if b.stale("PresentTexture") || !b.graph.validTexture(h, "PresentTexture") {
		return
	}
	b.readTexture(h, TextureUsagePresent, StageBottomOfPipe, AccessNone, LayoutPresent)
}

// CreateBuffer creates (or reuses by name) a buffer. No access is
// recorded; use ReadBuffer or WriteBuffer.
func (b *PassBuilder) CreateBuffer(name string, size uint64, usage BufferUsage) BufferHandle {
	if b.stale("CreateBuffer") {
		return InvalidBuffer
	}
	return b.graph.createBuffer(BufferDesc{Name: name, Size: size, Usage: usage, Transient: true})
}

// ReadBuffer reads h with the given usage. The stage and access are
// derived from the usage. A storage usage is recorded as a write since
// shaders may write storage bindings.
func (b *PassBuilder) ReadBuffer(h BufferHandle, usage BufferUsage) {
	if b.stale("ReadBuffer") || !b.graph.validBuffer(h, "ReadBuffer") {
		return
	}
	stage, access := bufferReadScope(usage, b.pass.Kind)
	acc := ResourceAccess{Buffer: h, BufferUsage: usage}
	if acc.IsWrite() {
		b.writeBuffer(h, usage, stage, access|AccessShaderWrite)
		return
	}
	b.readBuffer(h, usage, stage, access)
}

// WriteBuffer writes h as a storage buffer, or as a transfer destination
// from a transfer pass.
func (b *PassBuilder) WriteBuffer(h BufferHandle) {
	if b.stale("WriteBuffer") || !b.graph.validBuffer(h, "WriteBuffer") {
		return
	}
	switch b.pass.Kind {
	case PassTransfer:
		b.writeBuffer(h, BufferUsageTransferDst, StageTransfer, AccessTransferWrite)
	case PassCompute:
		b.writeBuffer(h, BufferUsageStorage, StageComputeShader, AccessShaderWrite)
	default:
		b.writeBuffer(h, BufferUsageStorage, StageFragmentShader, AccessShaderWrite)
	}
}

// CopyFromBuffer reads h as the source of a transfer.
func (b *PassBuilder) CopyFromBuffer(h BufferHandle) {
	if b.stale("CopyFromBuffer") || !b.graph.validBuffer(h, "CopyFromBuffer") {
		return
	}
	b.readBuffer(h, BufferUsageTransferSrc, StageTransfer, AccessTransferRead)
}

// CopyToBuffer writes h as the destination of a transfer.
func (b *PassBuilder) CopyToBuffer(h BufferHandle) {
	if b.stale("CopyToBuffer") || !b.graph.validBuffer(h, "CopyToBuffer") {
		return
	}
	b.writeBuffer(h, BufferUsageTransferDst, StageTransfer, AccessTransferWrite)
}

// SetComputeOnly marks the pass as a compute pass. Compute passes never
// get backend render-pass objects.
func (b *PassBuilder) SetComputeOnly() {
	if b.stale("SetComputeOnly") {
		return
	}
	b.pass.Kind = PassCompute
}

// SetViewport overrides the viewport derived from the attachments.
func (b *PassBuilder) SetViewport(width, height uint32) {
	if b.stale("SetViewport") {
		return
	}
	b.pass.ViewportWidth = width
	b.pass.ViewportHeight = height
}

func bufferReadScope(usage BufferUsage, kind PassKind) (Stage, Access) {
	var stage Stage
	var access Access
	shader := StageVertexShader | StageFragmentShader
	if kind == PassCompute {
		shader = StageComputeShader
	}
	if usage.Has(BufferUsageVertex) {
		stage |= StageVertexInput
		access |= AccessVertexAttributeRead
	}
	if usage.Has(BufferUsageIndex) {
		stage |= StageVertexInput
		access |= AccessIndexRead
	}
	if usage.Has(BufferUsageIndirect) {
		stage |= StageDrawIndirect
		access |= AccessIndirectCommandRead
	}
	if usage.Has(BufferUsageUniform) {
		stage |= shader
		access |= AccessUniformRead
	}
	if usage.Has(BufferUsageStorage) {
		stage |= shader
		access |= AccessShaderRead
	}
	if usage.Has(BufferUsageTransferSrc) {
		stage |= StageTransfer
		access |= AccessTransferRead
	}
	if stage == StageNone {
		stage = shader
	}
	return stage, access
}
