package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
)

// LayoutUsage maps a graph layout to the WebGPU usage HAL backends use
// as the texture state. Layouts without a WebGPU equivalent map to zero,
// which lets the HAL pick the undefined/present state.
func LayoutUsage(l rendergraph.Layout) gputypes.TextureUsage {
	switch l {
	case rendergraph.LayoutGeneral:
		return gputypes.TextureUsageStorageBinding
	case rendergraph.LayoutColorAttachment, rendergraph.LayoutDepthStencilAttachment:
		return gputypes.TextureUsageRenderAttachment
	case rendergraph.LayoutShaderReadOnly, rendergraph.LayoutDepthStencilReadOnly:
		return gputypes.TextureUsageTextureBinding
	case rendergraph.LayoutTransferSrc:
		return gputypes.TextureUsageCopySrc
	case rendergraph.LayoutTransferDst:
		return gputypes.TextureUsageCopyDst
	default:
		return 0
	}
}

// AccessBufferUsage maps a memory access mask to WebGPU buffer usage.
func AccessBufferUsage(a rendergraph.Access) gputypes.BufferUsage {
	var u gputypes.BufferUsage
	if a&rendergraph.AccessVertexAttributeRead != 0 {
		u |= gputypes.BufferUsageVertex
	}
	if a&rendergraph.AccessIndexRead != 0 {
		u |= gputypes.BufferUsageIndex
	}
	if a&rendergraph.AccessIndirectCommandRead != 0 {
		u |= gputypes.BufferUsageIndirect
	}
	if a&rendergraph.AccessUniformRead != 0 {
		u |= gputypes.BufferUsageUniform
	}
	if a&(rendergraph.AccessShaderRead|rendergraph.AccessShaderWrite) != 0 {
		u |= gputypes.BufferUsageStorage
	}
	if a&rendergraph.AccessTransferRead != 0 {
		u |= gputypes.BufferUsageCopySrc
	}
	if a&rendergraph.AccessTransferWrite != 0 {
		u |= gputypes.BufferUsageCopyDst
	}
	return u
}

// textureDescriptor converts a graph description to a HAL descriptor.
func textureDescriptor(label string, desc *rendergraph.TextureDesc) *hal.TextureDescriptor {
	dim := gputypes.TextureDimension2D
	depth := desc.ArrayLayers
	if desc.Depth > 1 {
		dim = gputypes.TextureDimension3D
		depth = desc.Depth
	}
	return &hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: max(depth, 1),
		},
		MipLevelCount: max(desc.MipLevels, 1),
		SampleCount:   max(desc.Samples, 1),
		Dimension:     dim,
		Format:        desc.Format,
		Usage:         desc.Usage.GPUTextureUsage(),
	}
}

func hasStencil(f gputypes.TextureFormat) bool {
	return f == gputypes.TextureFormatDepth24PlusStencil8 ||
		f == gputypes.TextureFormatDepth32FloatStencil8
}

// storeOp and loadOp default to Store and Clear when unset.
func loadOp(op gputypes.LoadOp) gputypes.LoadOp {
	if op == gputypes.LoadOp(0) {
		return gputypes.LoadOpClear
	}
	return op
}

func storeOp(op gputypes.StoreOp) gputypes.StoreOp {
	if op == gputypes.StoreOp(0) {
		return gputypes.StoreOpStore
	}
	return op
}
