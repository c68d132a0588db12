package rendergraph

// ResourceAccess records one use of a resource by a pass. Exactly one of
// Texture or Buffer is valid.
type ResourceAccess struct {
	Texture      TextureHandle
	Buffer       BufferHandle
	TextureUsage TextureUsage
	BufferUsage  BufferUsage
	Stage        Stage
	Access       Access
	Layout       Layout // textures only
}

const (
	textureReadUsage  = TextureUsageShaderRead | TextureUsageTransferSrc | TextureUsagePresent
	textureWriteUsage = TextureUsageColorAttachment | TextureUsageDepthAttachment |
		TextureUsageShaderWrite | TextureUsageStorage | TextureUsageTransferDst
	bufferReadUsage = BufferUsageVertex | BufferUsageIndex | BufferUsageUniform |
		BufferUsageIndirect | BufferUsageTransferSrc
	bufferWriteUsage = BufferUsageStorage | BufferUsageTransferDst
)

// IsTexture reports whether a refers to a texture.
func (a *ResourceAccess) IsTexture() bool { return a.Texture.IsValid() }

// IsRead reports whether the access reads the resource.
func (a *ResourceAccess) IsRead() bool {
	if a.IsTexture() {
		return a.TextureUsage&textureReadUsage != 0
	}
	return a.BufferUsage&bufferReadUsage != 0
}

// IsWrite reports whether the access writes the resource.
// Attachments and storage bindings count as writes even when the pass
// also reads them.
func (a *ResourceAccess) IsWrite() bool {
	if a.IsTexture() {
		return a.TextureUsage&textureWriteUsage != 0
	}
	return a.BufferUsage&bufferWriteUsage != 0
}

// key identifies the resource regardless of kind.
func (a *ResourceAccess) key() resourceKey {
	if a.IsTexture() {
		return resourceKey{texture: true, index: a.Texture.Index()}
	}
	return resourceKey{index: a.Buffer.Index()}
}

type resourceKey struct {
	texture bool
	index   int
}

// ResourceBarrier is a synchronization point issued before a pass.
type ResourceBarrier struct {
	Texture   TextureHandle
	Buffer    BufferHandle
	SrcStage  Stage
	DstStage  Stage
	SrcAccess Access
	DstAccess Access
	OldLayout Layout
	NewLayout Layout
}

// IsTexture reports whether b synchronizes a texture.
func (b *ResourceBarrier) IsTexture() bool { return b.Texture.IsValid() }

// CompiledPass is a pass in execution order with the barriers issued
// before it.
type CompiledPass struct {
	PassIndex int
	Barriers  []ResourceBarrier
}
