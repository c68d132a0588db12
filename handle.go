package rendergraph

import "fmt"

// TextureHandle identifies a logical texture declared in a RenderGraph.
//
// A handle is a dense index into the graph's description and physical
// tables. It carries no ownership: the graph owns the backing resource.
// The zero value is invalid, so an unset attachment slot never aliases
// the first texture.
type TextureHandle struct {
	id uint32 // index + 1; 0 is the invalid sentinel
}

// BufferHandle identifies a logical buffer declared in a RenderGraph.
// The zero value is invalid.
type BufferHandle struct {
	id uint32
}

// Invalid handles.
var (
	InvalidTexture = TextureHandle{}
	InvalidBuffer  = BufferHandle{}
)

func textureHandle(index int) TextureHandle { return TextureHandle{id: uint32(index) + 1} } //nolint:gosec // table sizes fit uint32
func bufferHandle(index int) BufferHandle   { return BufferHandle{id: uint32(index) + 1} }  //nolint:gosec // table sizes fit uint32

// IsValid reports whether h refers to a texture.
func (h TextureHandle) IsValid() bool { return h.id != 0 }

// Index returns the table index of h, or -1 for the invalid handle.
func (h TextureHandle) Index() int { return int(h.id) - 1 }

// String returns a debug representation such as "tex#3".
func (h TextureHandle) String() string {
	if !h.IsValid() {
		return "tex#invalid"
	}
	return fmt.Sprintf("tex#%d", h.Index())
}

// IsValid reports whether h refers to a buffer.
func (h BufferHandle) IsValid() bool { return h.id != 0 }

// Index returns the table index of h, or -1 for the invalid handle.
func (h BufferHandle) Index() int { return int(h.id) - 1 }

// String returns a debug representation such as "buf#0".
func (h BufferHandle) String() string {
	if !h.IsValid() {
		return "buf#invalid"
	}
	return fmt.Sprintf("buf#%d", h.Index())
}
