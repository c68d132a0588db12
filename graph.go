package rendergraph

import "fmt"

// CompileState reports how far compilation of the current frame has
// progressed.
type CompileState uint8

// Compile states, in pipeline order.
const (
	StateUncompiled CompileState = iota
	StateResourcesAllocated
	StateOrdered
	StateBarriersComputed
	StateBackendObjectsCreated
	StateCompiled
)

// String returns the state name.
func (s CompileState) String() string {
	switch s {
	case StateUncompiled:
		return "Uncompiled"
	case StateResourcesAllocated:
		return "ResourcesAllocated"
	case StateOrdered:
		return "Ordered"
	case StateBarriersComputed:
		return "BarriersComputed"
	case StateBackendObjectsCreated:
		return "BackendObjectsCreated"
	case StateCompiled:
		return "Compiled"
	}
	return fmt.Sprintf("CompileState(%d)", uint8(s))
}

// RenderGraph is a per-frame compiler of passes and resource accesses
// into an execution order, allocated resources and barriers.
//
// A frame follows AddPass (any number) → Compile → Execute → Reset.
// Resource descriptions and their allocations persist across Reset, so
// steady-state frames allocate nothing. Shutdown releases every owned
// object.
//
// Passes run in declaration order: a pass may only depend on writes made
// by strictly earlier passes.
//
// RenderGraph is not safe for concurrent use.
type RenderGraph struct {
	device Device
	opts   options

	textures     []TextureDesc
	physTextures []PhysicalTexture
	textureNames map[string]int

	buffers     []BufferDesc
	physBuffers []PhysicalBuffer
	bufferNames map[string]int

	passes   []*Pass
	compiled []CompiledPass
	final    []ResourceBarrier
	output   TextureHandle

	texLifetimes []Lifetime
	bufLifetimes []Lifetime

	state      CompileState
	generation uint64
	frame      uint64
	shutdown   bool

	targets targetCache
}

// New creates an empty graph allocating through device.
func New(device Device, opts ...Option) *RenderGraph {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RenderGraph{
		device:       device,
		opts:         o,
		textureNames: make(map[string]int),
		bufferNames:  make(map[string]int),
		targets:      newTargetCache(),
	}
}

// AddPass declares a graphics pass. setup runs immediately to declare
// the pass's accesses; execute runs during Execute. Either may be nil.
func (g *RenderGraph) AddPass(name string, setup SetupFunc, execute ExecuteFunc) *Pass {
	return g.addPass(name, PassGraphics, setup, execute)
}

// AddComputePass declares a compute pass.
func (g *RenderGraph) AddComputePass(name string, setup SetupFunc, execute ExecuteFunc) *Pass {
	return g.addPass(name, PassCompute, setup, execute)
}

// AddTransferPass declares a pass that only records copies.
func (g *RenderGraph) AddTransferPass(name string, setup SetupFunc, execute ExecuteFunc) *Pass {
	return g.addPass(name, PassTransfer, setup, execute)
}

func (g *RenderGraph) addPass(name string, kind PassKind, setup SetupFunc, execute ExecuteFunc) *Pass {
	p := &Pass{
		Name:    name,
		Index:   len(g.passes),
		Kind:    kind,
		execute: execute,
	}
	g.passes = append(g.passes, p)
	g.state = StateUncompiled

	if setup != nil {
		b := &PassBuilder{graph: g, pass: p}
		setup(b)
		b.sealed = true
	}
	return p
}

// ImportTexture registers a texture owned outside the graph. Importing
// the same name again updates the native objects in place and returns
// the same handle, which suits per-frame swapchain images. Importing over
// a name the graph owns is rejected with the invalid handle.
func (g *RenderGraph) ImportTexture(name string, ext ExternalTexture) TextureHandle {
	if idx, ok := g.textureNames[name]; ok {
		desc := &g.textures[idx]
		if !desc.External {
			Logger().Error("rendergraph: import over graph-owned texture rejected", "name", name)
			return InvalidTexture
		}
		desc.Width, desc.Height, desc.Format = ext.Width, ext.Height, ext.Format
		desc.Usage |= ext.Usage
		g.setExternalTexture(idx, ext)
		g.state = StateUncompiled
		return textureHandle(idx)
	}

	desc := TextureDesc{
		Name:   name,
		Width:  ext.Width,
		Height: ext.Height,
		Format: ext.Format,
		Usage:  ext.Usage,

		External: true,
	}.normalized()
	h := g.appendTexture(desc)
	g.setExternalTexture(h.Index(), ext)
	g.state = StateUncompiled
	return h
}

func (g *RenderGraph) setExternalTexture(idx int, ext ExternalTexture) {
	p := &g.physTextures[idx]
	if !sameNative(p.Image, ext.Image) || !sameNative(p.View, ext.View) {
		p.generation = g.nextGeneration()
	}
	p.Image = ext.Image
	p.View = ext.View
	p.Memory = nil
	p.Format = ext.Format
	p.Width = ext.Width
	p.Height = ext.Height
	p.Usage = ext.Usage
	p.CurrentLayout = ext.Layout
	p.OwnsMemory = false
}

// ImportBuffer registers a buffer owned outside the graph.
func (g *RenderGraph) ImportBuffer(name string, ext ExternalBuffer) BufferHandle {
	idx, ok := g.bufferNames[name]
	if ok && !g.buffers[idx].External {
		Logger().Error("rendergraph: import over graph-owned buffer rejected", "name", name)
		return InvalidBuffer
	}
	if !ok {
		idx = g.appendBuffer(BufferDesc{Name: name, External: true}).Index()
	}
	desc := &g.buffers[idx]
	desc.Size = ext.Size
	desc.Usage |= ext.Usage
	g.physBuffers[idx] = PhysicalBuffer{
		Buffer: ext.Buffer,
		Size:   ext.Size,
		Usage:  ext.Usage,
	}
	g.state = StateUncompiled
	return bufferHandle(idx)
}

// createTexture returns the handle of the texture named desc.Name,
// declaring it first if needed.
func (g *RenderGraph) createTexture(desc TextureDesc) TextureHandle {
	if idx, ok := g.textureNames[desc.Name]; ok {
		existing := &g.textures[idx]
		desc = desc.normalized()
		if !existing.External && !existing.sameShape(&desc) {
			Logger().Warn("rendergraph: texture redeclared with a different shape, keeping original",
				"name", desc.Name,
				"width", existing.Width, "height", existing.Height,
				"requested_width", desc.Width, "requested_height", desc.Height)
		}
		existing.Usage |= desc.Usage
		return textureHandle(idx)
	}
	return g.appendTexture(desc.normalized())
}

func (g *RenderGraph) appendTexture(desc TextureDesc) TextureHandle {
	idx := len(g.textures)
	g.textures = append(g.textures, desc)
	g.physTextures = append(g.physTextures, PhysicalTexture{})
	g.texLifetimes = append(g.texLifetimes, unusedLifetime())
	g.textureNames[desc.Name] = idx
	return textureHandle(idx)
}

// createBuffer returns the handle of the buffer named desc.Name,
// declaring it first if needed.
func (g *RenderGraph) createBuffer(desc BufferDesc) BufferHandle {
	if idx, ok := g.bufferNames[desc.Name]; ok {
		existing := &g.buffers[idx]
		if !existing.External && existing.Size != desc.Size {
			Logger().Warn("rendergraph: buffer redeclared with a different size, keeping original",
				"name", desc.Name, "size", existing.Size, "requested_size", desc.Size)
		}
		existing.Usage |= desc.Usage
		return bufferHandle(idx)
	}
	return g.appendBuffer(desc)
}

func (g *RenderGraph) appendBuffer(desc BufferDesc) BufferHandle {
	idx := len(g.buffers)
	g.buffers = append(g.buffers, desc)
	g.physBuffers = append(g.physBuffers, PhysicalBuffer{})
	g.bufLifetimes = append(g.bufLifetimes, unusedLifetime())
	g.bufferNames[desc.Name] = idx
	return bufferHandle(idx)
}

func (g *RenderGraph) addTextureUsage(h TextureHandle, usage TextureUsage) {
	if d := g.textureDesc(h); d != nil {
		d.Usage |= usage
	}
}

func (g *RenderGraph) addBufferUsage(h BufferHandle, usage BufferUsage) {
	if d := g.bufferDesc(h); d != nil {
		d.Usage |= usage
	}
}

func (g *RenderGraph) textureDesc(h TextureHandle) *TextureDesc {
	if !h.IsValid() || h.Index() >= len(g.textures) {
		return nil
	}
	return &g.textures[h.Index()]
}

func (g *RenderGraph) bufferDesc(h BufferHandle) *BufferDesc {
	if !h.IsValid() || h.Index() >= len(g.buffers) {
		return nil
	}
	return &g.buffers[h.Index()]
}

func (g *RenderGraph) validTexture(h TextureHandle, op string) bool {
	if g.textureDesc(h) == nil {
		Logger().Warn("rendergraph: access ignored", "op", op, "handle", h.String(), "err", ErrInvalidHandle)
		return false
	}
	return true
}

func (g *RenderGraph) validBuffer(h BufferHandle, op string) bool {
	if g.bufferDesc(h) == nil {
		Logger().Warn("rendergraph: access ignored", "op", op, "handle", h.String(), "err", ErrInvalidHandle)
		return false
	}
	return true
}

func (g *RenderGraph) nextGeneration() uint64 {
	g.generation++
	return g.generation
}

// Texture returns the handle of the texture with the given name.
func (g *RenderGraph) Texture(name string) (TextureHandle, bool) {
	idx, ok := g.textureNames[name]
	if !ok {
		return InvalidTexture, false
	}
	return textureHandle(idx), true
}

// Buffer returns the handle of the buffer with the given name.
func (g *RenderGraph) Buffer(name string) (BufferHandle, bool) {
	idx, ok := g.bufferNames[name]
	if !ok {
		return InvalidBuffer, false
	}
	return bufferHandle(idx), true
}

// Textures returns every declared texture in declaration order.
func (g *RenderGraph) Textures() []TextureHandle {
	hs := make([]TextureHandle, len(g.textures))
	for i := range hs {
		hs[i] = textureHandle(i)
	}
	return hs
}

// Buffers returns every declared buffer in declaration order.
func (g *RenderGraph) Buffers() []BufferHandle {
	hs := make([]BufferHandle, len(g.buffers))
	for i := range hs {
		hs[i] = bufferHandle(i)
	}
	return hs
}

// TextureDesc returns the description of h.
func (g *RenderGraph) TextureDesc(h TextureHandle) (TextureDesc, bool) {
	d := g.textureDesc(h)
	if d == nil {
		return TextureDesc{}, false
	}
	return *d, true
}

// BufferDesc returns the description of h.
func (g *RenderGraph) BufferDesc(h BufferHandle) (BufferDesc, bool) {
	d := g.bufferDesc(h)
	if d == nil {
		return BufferDesc{}, false
	}
	return *d, true
}

// PhysicalTexture returns the GPU object backing h, or nil for an
// invalid handle. The pointer stays valid until the next declaration.
func (g *RenderGraph) PhysicalTexture(h TextureHandle) *PhysicalTexture {
	if g.textureDesc(h) == nil {
		return nil
	}
	return &g.physTextures[h.Index()]
}

// PhysicalBuffer returns the GPU object backing h, or nil for an invalid
// handle.
func (g *RenderGraph) PhysicalBuffer(h BufferHandle) *PhysicalBuffer {
	if g.bufferDesc(h) == nil {
		return nil
	}
	return &g.physBuffers[h.Index()]
}

// TextureLifetime returns the span of passes accessing h in the last
// compiled frame.
func (g *RenderGraph) TextureLifetime(h TextureHandle) (Lifetime, bool) {
	if g.textureDesc(h) == nil {
		return unusedLifetime(), false
	}
	return g.texLifetimes[h.Index()], true
}

// BufferLifetime returns the span of passes accessing h in the last
// compiled frame.
func (g *RenderGraph) BufferLifetime(h BufferHandle) (Lifetime, bool) {
	if g.bufferDesc(h) == nil {
		return unusedLifetime(), false
	}
	return g.bufLifetimes[h.Index()], true
}

// Passes returns the declared passes in declaration order.
func (g *RenderGraph) Passes() []*Pass { return g.passes }

// Compiled returns the compiled passes in execution order.
func (g *RenderGraph) Compiled() []CompiledPass { return g.compiled }

// FinalBarriers returns the barriers issued after the last pass.
func (g *RenderGraph) FinalBarriers() []ResourceBarrier { return g.final }

// SetOutput marks h as the frame output. After the last pass the output
// is transitioned to the Present layout.
func (g *RenderGraph) SetOutput(h TextureHandle) {
	if !g.validTexture(h, "SetOutput") {
		return
	}
	g.addTextureUsage(h, TextureUsagePresent)
	g.output = h
	g.state = StateUncompiled
}

// Output returns the frame output, or InvalidTexture if none is set.
func (g *RenderGraph) Output() TextureHandle { return g.output }

// State returns the compile state of the current frame.
func (g *RenderGraph) State() CompileState { return g.state }

// IsCompiled reports whether the current frame is ready to execute.
func (g *RenderGraph) IsCompiled() bool { return g.state == StateCompiled }

// Reset prepares the graph for the next frame. Passes, compiled passes
// and the output are cleared; descriptions and allocations are kept, and
// owned textures return to the Undefined layout. Nothing is freed.
func (g *RenderGraph) Reset() {
	g.passes = g.passes[:0]
	g.compiled = g.compiled[:0]
	g.final = g.final[:0]
	g.output = InvalidTexture
	g.state = StateUncompiled

	for i := range g.physTextures {
		if g.physTextures[i].OwnsMemory {
			g.physTextures[i].CurrentLayout = LayoutUndefined
		}
	}
	for i := range g.texLifetimes {
		g.texLifetimes[i] = unusedLifetime()
	}
	for i := range g.bufLifetimes {
		g.bufLifetimes[i] = unusedLifetime()
	}

	g.frame++
	g.targets.retire(g.device, g.frame)
}

// Shutdown frees every owned resource and backend object. External
// resources are left untouched. The graph is unusable afterwards.
func (g *RenderGraph) Shutdown() {
	if g.shutdown {
		return
	}
	g.targets.destroyAll(g.device)

	for i := range g.physTextures {
		p := &g.physTextures[i]
		if p.OwnsMemory && p.Allocated() {
			g.device.DestroyTexture(p)
		}
		*p = PhysicalTexture{}
	}
	for i := range g.physBuffers {
		p := &g.physBuffers[i]
		if p.OwnsMemory && p.Allocated() {
			g.device.DestroyBuffer(p)
		}
		*p = PhysicalBuffer{}
	}

	g.textures = nil
	g.physTextures = nil
	g.buffers = nil
	g.physBuffers = nil
	g.texLifetimes = nil
	g.bufLifetimes = nil
	clear(g.textureNames)
	clear(g.bufferNames)
	g.passes = nil
	g.compiled = nil
	g.final = nil
	g.output = InvalidTexture
	g.state = StateUncompiled
	g.shutdown = true
	Logger().Debug("rendergraph: shut down", "label", g.opts.label)
}

// Stats summarizes the last compilation.
type Stats struct {
	Passes            int
	Textures          int
	Buffers           int
	Barriers          int
	AllocatedTextures int
	AllocatedBuffers  int
	RenderPasses      int
	Framebuffers      int
}

// Stats returns counts describing the current frame.
func (g *RenderGraph) Stats() Stats {
	s := Stats{
		Passes:       len(g.passes),
		Textures:     len(g.textures),
		Buffers:      len(g.buffers),
		Barriers:     len(g.final),
		RenderPasses: len(g.targets.renderPasses),
		Framebuffers: len(g.targets.framebuffers),
	}
	for i := range g.compiled {
		s.Barriers += len(g.compiled[i].Barriers)
	}
	for i := range g.physTextures {
		if g.physTextures[i].OwnsMemory && g.physTextures[i].Allocated() {
			s.AllocatedTextures++
		}
	}
	for i := range g.physBuffers {
		if g.physBuffers[i].OwnsMemory && g.physBuffers[i].Allocated() {
			s.AllocatedBuffers++
		}
	}
	return s
}
