package rendergraph

import (
	"reflect"

	"github.com/gogpu/gputypes"
)

// PhysicalTexture is the GPU object backing a logical texture.
type PhysicalTexture struct {
	Image  any
	View   any
	Memory any

	Format gputypes.TextureFormat
	Width  uint32
	Height uint32
	Usage  TextureUsage

	// CurrentLayout tracks the layout recorded so far. The executor
	// updates it as barriers are issued.
	CurrentLayout Layout
	OwnsMemory    bool

	// generation changes whenever the native objects change, so cached
	// framebuffers never bind a stale view.
	generation uint64
}

// Allocated reports whether t has a native image.
func (t *PhysicalTexture) Allocated() bool { return t.Image != nil }

// PhysicalBuffer is the GPU object backing a logical buffer.
type PhysicalBuffer struct {
	Buffer     any
	Memory     any
	Size       uint64
	Mapped     []byte
	Usage      BufferUsage
	OwnsMemory bool
}

// Allocated reports whether b has a native buffer.
func (b *PhysicalBuffer) Allocated() bool { return b.Buffer != nil }

// ExternalTexture describes a texture owned outside the graph, such as a
// swapchain image.
type ExternalTexture struct {
	Image  any
	View   any
	Format gputypes.TextureFormat
	Width  uint32
	Height uint32
	Usage  TextureUsage
	// Layout is the layout the image is in when the frame starts.
	Layout Layout
}

// ExternalBuffer describes a buffer owned outside the graph.
type ExternalBuffer struct {
	Buffer any
	Size   uint64
	Usage  BufferUsage
}

// sameNative reports whether two opaque native objects are identical.
// Non-comparable dynamic types are treated as different.
func sameNative(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
