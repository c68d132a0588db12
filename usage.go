package rendergraph

import (
	"strings"

	"github.com/gogpu/gputypes"
)

// TextureUsage is a capability set describing how a texture is used.
// Usages accumulate on a TextureDesc as passes declare accesses.
type TextureUsage uint32

// Texture usages.
const (
	TextureUsageColorAttachment TextureUsage = 1 << iota
	TextureUsageDepthAttachment
	TextureUsageShaderRead
	TextureUsageShaderWrite
	TextureUsageTransferSrc
	TextureUsageTransferDst
	TextureUsagePresent
	TextureUsageStorage

	TextureUsageNone TextureUsage = 0
)

var textureUsageNames = []string{
	"ColorAttachment", "DepthAttachment", "ShaderRead", "ShaderWrite",
	"TransferSrc", "TransferDst", "Present", "Storage",
}

// Has reports whether every bit of flag is set in u.
func (u TextureUsage) Has(flag TextureUsage) bool { return flag != 0 && u&flag == flag }

// String returns the set bits joined with "|".
func (u TextureUsage) String() string { return flagString(uint32(u), textureUsageNames) }

// BufferUsage is a capability set describing how a buffer is used.
type BufferUsage uint32

// Buffer usages.
const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageStorage
	BufferUsageIndirect
	BufferUsageTransferSrc
	BufferUsageTransferDst

	BufferUsageNone BufferUsage = 0
)

var bufferUsageNames = []string{
	"Vertex", "Index", "Uniform", "Storage", "Indirect", "TransferSrc", "TransferDst",
}

// Has reports whether every bit of flag is set in u.
func (u BufferUsage) Has(flag BufferUsage) bool { return flag != 0 && u&flag == flag }

// String returns the set bits joined with "|".
func (u BufferUsage) String() string { return flagString(uint32(u), bufferUsageNames) }

func flagString(v uint32, names []string) string {
	if v == 0 {
		return "None"
	}
	var parts []string
	for i, name := range names {
		if v&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// Native usage conversion. Backends allocate with these flags.

// GPUTextureUsage converts u to WebGPU texture usage flags.
func (u TextureUsage) GPUTextureUsage() gputypes.TextureUsage {
	var out gputypes.TextureUsage
	if u&(TextureUsageColorAttachment|TextureUsageDepthAttachment|TextureUsagePresent) != 0 {
		out |= gputypes.TextureUsageRenderAttachment
	}
	if u.Has(TextureUsageShaderRead) {
		out |= gputypes.TextureUsageTextureBinding
	}
	if u&(TextureUsageShaderWrite|TextureUsageStorage) != 0 {
		out |= gputypes.TextureUsageStorageBinding
	}
	if u.Has(TextureUsageTransferSrc) {
		out |= gputypes.TextureUsageCopySrc
	}
	if u.Has(TextureUsageTransferDst) {
		out |= gputypes.TextureUsageCopyDst
	}
	return out
}

// GPUBufferUsage converts u to WebGPU buffer usage flags.
func (u BufferUsage) GPUBufferUsage() gputypes.BufferUsage {
	var out gputypes.BufferUsage
	if u.Has(BufferUsageVertex) {
		out |= gputypes.BufferUsageVertex
	}
	if u.Has(BufferUsageIndex) {
		out |= gputypes.BufferUsageIndex
	}
	if u.Has(BufferUsageUniform) {
		out |= gputypes.BufferUsageUniform
	}
	if u.Has(BufferUsageStorage) {
		out |= gputypes.BufferUsageStorage
	}
	if u.Has(BufferUsageIndirect) {
		out |= gputypes.BufferUsageIndirect
	}
	if u.Has(BufferUsageTransferSrc) {
		out |= gputypes.BufferUsageCopySrc
	}
	if u.Has(BufferUsageTransferDst) {
		out |= gputypes.BufferUsageCopyDst
	}
	return out
}

// OptimalLayout returns the layout a texture should be in for the
// highest-priority usage in u.
func OptimalLayout(u TextureUsage) Layout {
	switch {
	case u.Has(TextureUsageColorAttachment):
		return LayoutColorAttachment
	case u.Has(TextureUsageDepthAttachment):
		return LayoutDepthStencilAttachment
	case u.Has(TextureUsageShaderRead):
		return LayoutShaderReadOnly
	case u.Has(TextureUsageStorage):
		return LayoutGeneral
	case u.Has(TextureUsagePresent):
		return LayoutPresent
	case u.Has(TextureUsageTransferSrc):
		return LayoutTransferSrc
	case u.Has(TextureUsageTransferDst):
		return LayoutTransferDst
	}
	return LayoutGeneral
}
