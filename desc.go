package rendergraph

import "github.com/gogpu/gputypes"

// Default formats applied when a description leaves Format undefined.
const (
	DefaultColorFormat = gputypes.TextureFormatRGBA8UnormSrgb
	DefaultHDRFormat   = gputypes.TextureFormatRGBA16Float
	DefaultDepthFormat = gputypes.TextureFormatDepth32Float
)

// TextureDesc describes a logical texture. Name is the deduplication key
// within a graph: declaring the same name twice yields the same handle.
type TextureDesc struct {
	Name        string
	Width       uint32
	Height      uint32
	Depth       uint32
	MipLevels   uint32
	ArrayLayers uint32
	Format      gputypes.TextureFormat
	Samples     uint32
	Usage       TextureUsage

	// Transient resources live for one frame and may be recycled.
	Transient bool
	// External resources are imported and never allocated or freed by
	// the graph.
	External bool
}

// normalized fills zero-valued shape fields with their defaults.
func (d TextureDesc) normalized() TextureDesc {
	if d.Depth == 0 {
		d.Depth = 1
	}
	if d.MipLevels == 0 {
		d.MipLevels = 1
	}
	if d.ArrayLayers == 0 {
		d.ArrayLayers = 1
	}
	if d.Samples == 0 {
		d.Samples = 1
	}
	return d
}

func (d *TextureDesc) sameShape(o *TextureDesc) bool {
	return d.Width == o.Width && d.Height == o.Height && d.Depth == o.Depth &&
		d.Format == o.Format && d.MipLevels == o.MipLevels &&
		d.ArrayLayers == o.ArrayLayers && d.Samples == o.Samples
}

// IsDepthFormat reports whether f carries a depth aspect.
func IsDepthFormat(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatDepth16Unorm,
		gputypes.TextureFormatDepth24Plus,
		gputypes.TextureFormatDepth24PlusStencil8,
		gputypes.TextureFormatDepth32Float,
		gputypes.TextureFormatDepth32FloatStencil8:
		return true
	}
	return false
}

// ColorTarget describes a transient sampleable color attachment.
func ColorTarget(name string, width, height uint32, format gputypes.TextureFormat) TextureDesc {
	if format == gputypes.TextureFormatUndefined {
		format = DefaultColorFormat
	}
	return TextureDesc{
		Name:   name,
		Width:  width,
		Height: height,
		Format: format,
		Usage:  TextureUsageColorAttachment | TextureUsageShaderRead,
	}.normalized()
}

// HDRTarget describes a floating point color attachment.
func HDRTarget(name string, width, height uint32) TextureDesc {
	return ColorTarget(name, width, height, DefaultHDRFormat)
}

// DepthTarget describes a transient depth attachment.
func DepthTarget(name string, width, height uint32, format gputypes.TextureFormat) TextureDesc {
	if format == gputypes.TextureFormatUndefined {
		format = DefaultDepthFormat
	}
	return TextureDesc{
		Name:   name,
		Width:  width,
		Height: height,
		Format: format,
		Usage:  TextureUsageDepthAttachment,
	}.normalized()
}

// ShadowMap describes a square depth texture that is rendered then sampled.
func ShadowMap(name string, size uint32) TextureDesc {
	d := DepthTarget(name, size, size, DefaultDepthFormat)
	d.Usage |= TextureUsageShaderRead
	return d
}

// GBufferTarget describes a geometry buffer attachment.
func GBufferTarget(name string, width, height uint32, format gputypes.TextureFormat) TextureDesc {
	return ColorTarget(name, width, height, format)
}

// BufferDesc describes a logical buffer.
type BufferDesc struct {
	Name      string
	Size      uint64
	Usage     BufferUsage
	Transient bool
	External  bool
}

// UniformBuffer describes a uniform buffer that is updated by copies.
func UniformBuffer(name string, size uint64) BufferDesc {
	return BufferDesc{Name: name, Size: size, Usage: BufferUsageUniform | BufferUsageTransferDst}
}

// StorageBuffer describes a read-write shader storage buffer.
func StorageBuffer(name string, size uint64) BufferDesc {
	return BufferDesc{Name: name, Size: size, Usage: BufferUsageStorage}
}

// IndirectBuffer describes a buffer of indirect draw arguments written by
// compute.
func IndirectBuffer(name string, size uint64) BufferDesc {
	return BufferDesc{Name: name, Size: size, Usage: BufferUsageIndirect | BufferUsageStorage}
}
