package rendergraph

import "github.com/gogpu/gputypes"

// Device allocates the GPU objects a graph needs. Implementations live in
// backend packages (see backend/native); tests use an in-memory fake.
//
// Native objects are opaque to the graph and passed back to the same
// Device or CommandRecorder unchanged.
type Device interface {
	// CreateTexture allocates an image, its memory and a default view.
	// Returning an error wrapping ErrNoMemoryType aborts compilation;
	// other errors leave the resource unallocated for the frame.
	CreateTexture(desc *TextureDesc) (PhysicalTexture, error)
	DestroyTexture(tex *PhysicalTexture)

	CreateBuffer(desc *BufferDesc) (PhysicalBuffer, error)
	DestroyBuffer(buf *PhysicalBuffer)

	// CreateRenderPass creates a backend render-pass object describing
	// attachment formats and load/store behavior.
	CreateRenderPass(desc *RenderPassDesc) (any, error)
	DestroyRenderPass(renderPass any)

	// CreateFramebuffer binds texture views to a render-pass object.
	CreateFramebuffer(desc *FramebufferDesc) (any, error)
	DestroyFramebuffer(framebuffer any)
}

// CommandRecorder is a live command buffer that the executor records
// into. Pass callbacks receive the same recorder and may type-assert it
// to the backend's concrete type for draw commands.
type CommandRecorder interface {
	PipelineBarrier(barriers []BarrierCommand)
	BeginRenderPass(begin *RenderPassBegin)
	SetViewport(x, y, width, height, minDepth, maxDepth float32)
	SetScissor(x, y int32, width, height uint32)
	EndRenderPass()
}

// SetupFunc declares the resource accesses of a pass. It runs once,
// synchronously, inside AddPass.
type SetupFunc func(b *PassBuilder)

// ExecuteFunc records the commands of a pass.
type ExecuteFunc func(cmd CommandRecorder)

// AttachmentDesc describes one attachment of a render-pass object.
type AttachmentDesc struct {
	Format        gputypes.TextureFormat
	Samples       uint32
	LoadOp        gputypes.LoadOp
	StoreOp       gputypes.StoreOp
	InitialLayout Layout
	FinalLayout   Layout
}

// RenderPassDesc describes a backend render-pass object.
type RenderPassDesc struct {
	Label            string
	ColorAttachments []AttachmentDesc
	DepthAttachment  *AttachmentDesc
}

// FramebufferDesc binds views to a render-pass object.
type FramebufferDesc struct {
	Label      string
	RenderPass any
	ColorViews []any
	DepthView  any
	Width      uint32
	Height     uint32
}

// ImageAspect selects the image aspect a barrier applies to.
type ImageAspect uint8

// Image aspects.
const (
	AspectColor ImageAspect = iota
	AspectDepth
)

// BarrierCommand is a ResourceBarrier resolved to native objects.
type BarrierCommand struct {
	ResourceBarrier

	Image        any // native image, textures only
	NativeBuffer any // native buffer, buffers only
	Aspect       ImageAspect
}

// ClearValue is the clear value of one attachment.
type ClearValue struct {
	Color   gputypes.Color
	Depth   float32
	Stencil uint32
}

// RenderPassBegin carries the arguments of CommandRecorder.BeginRenderPass.
type RenderPassBegin struct {
	RenderPass  any
	Framebuffer any
	Width       uint32
	Height      uint32
	// ClearValues holds one entry per color attachment followed by one
	// entry for the depth attachment, if any.
	ClearValues []ClearValue
}
