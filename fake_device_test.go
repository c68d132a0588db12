package rendergraph

import (
	"errors"
	"fmt"
)

// fakeObject is an opaque native object handed out by fakeDevice.
type fakeObject struct {
	kind string
	name string
	id   int
}

// fakeDevice records allocations and can be told to fail.
type fakeDevice struct {
	nextID int

	createdTextures   []string
	destroyedTextures []string
	createdBuffers    []string
	destroyedBuffers  []string
	renderPasses      int
	framebuffers      int
	destroyedRP       int
	destroyedFB       int

	failTexture   map[string]error
	failBuffer    map[string]error
	failRP        error
	failFB        error
	lastFramebuff *FramebufferDesc
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		failTexture: make(map[string]error),
		failBuffer:  make(map[string]error),
	}
}

func (d *fakeDevice) object(kind, name string) *fakeObject {
	d.nextID++
	return &fakeObject{kind: kind, name: name, id: d.nextID}
}

func (d *fakeDevice) CreateTexture(desc *TextureDesc) (PhysicalTexture, error) {
	if err := d.failTexture[desc.Name]; err != nil {
		return PhysicalTexture{}, err
	}
	d.createdTextures = append(d.createdTextures, desc.Name)
	return PhysicalTexture{
		Image:  d.object("image", desc.Name),
		View:   d.object("view", desc.Name),
		Memory: d.object("memory", desc.Name),
		Format: desc.Format,
		Width:  desc.Width,
		Height: desc.Height,
		Usage:  desc.Usage,
	}, nil
}

func (d *fakeDevice) DestroyTexture(tex *PhysicalTexture) {
	d.destroyedTextures = append(d.destroyedTextures, tex.Image.(*fakeObject).name)
}

func (d *fakeDevice) CreateBuffer(desc *BufferDesc) (PhysicalBuffer, error) {
	if err := d.failBuffer[desc.Name]; err != nil {
		return PhysicalBuffer{}, err
	}
	d.createdBuffers = append(d.createdBuffers, desc.Name)
	return PhysicalBuffer{
		Buffer: d.object("buffer", desc.Name),
		Memory: d.object("memory", desc.Name),
		Size:   desc.Size,
		Usage:  desc.Usage,
	}, nil
}

func (d *fakeDevice) DestroyBuffer(buf *PhysicalBuffer) {
	d.destroyedBuffers = append(d.destroyedBuffers, buf.Buffer.(*fakeObject).name)
}

func (d *fakeDevice) CreateRenderPass(desc *RenderPassDesc) (any, error) {
	if d.failRP != nil {
		return nil, d.failRP
	}
	d.renderPasses++
	return d.object("renderpass", desc.Label), nil
}

func (d *fakeDevice) DestroyRenderPass(any) { d.destroyedRP++ }

func (d *fakeDevice) CreateFramebuffer(desc *FramebufferDesc) (any, error) {
	if d.failFB != nil {
		return nil, d.failFB
	}
	d.framebuffers++
	d.lastFramebuff = desc
	return d.object("framebuffer", desc.Label), nil
}

func (d *fakeDevice) DestroyFramebuffer(any) { d.destroyedFB++ }

var errFakeOutOfMemory = errors.New("fake: out of device memory")

// fakeRecorder records every command as a string plus the structured
// arguments tests inspect.
type fakeRecorder struct {
	log      []string
	barriers [][]BarrierCommand
	begins   []*RenderPassBegin
	depth    int
}

func (r *fakeRecorder) PipelineBarrier(barriers []BarrierCommand) {
	r.barriers = append(r.barriers, barriers)
	r.log = append(r.log, fmt.Sprintf("barrier(%d)", len(barriers)))
}

func (r *fakeRecorder) BeginRenderPass(begin *RenderPassBegin) {
	r.depth++
	r.begins = append(r.begins, begin)
	r.log = append(r.log, "begin")
}

func (r *fakeRecorder) SetViewport(_, _, w, h, _, _ float32) {
	r.log = append(r.log, fmt.Sprintf("viewport(%gx%g)", w, h))
}

func (r *fakeRecorder) SetScissor(_, _ int32, w, h uint32) {
	r.log = append(r.log, fmt.Sprintf("scissor(%dx%d)", w, h))
}

func (r *fakeRecorder) EndRenderPass() {
	r.depth--
	r.log = append(r.log, "end")
}

func (r *fakeRecorder) mark(name string) ExecuteFunc {
	return func(CommandRecorder) { r.log = append(r.log, "exec:"+name) }
}

// barriersFor returns the barriers of the compiled pass named name.
func barriersFor(g *RenderGraph, name string) []ResourceBarrier {
	for _, cp := range g.Compiled() {
		if g.Passes()[cp.PassIndex].Name == name {
			return cp.Barriers
		}
	}
	return nil
}

// textureBarriers filters barriers down to those on h.
func textureBarriers(barriers []ResourceBarrier, h TextureHandle) []ResourceBarrier {
	var out []ResourceBarrier
	for _, b := range barriers {
		if b.Texture == h {
			out = append(out, b)
		}
	}
	return out
}

func bufferBarriers(barriers []ResourceBarrier, h BufferHandle) []ResourceBarrier {
	var out []ResourceBarrier
	for _, b := range barriers {
		if b.Buffer == h && !b.IsTexture() {
			out = append(out, b)
		}
	}
	return out
}
