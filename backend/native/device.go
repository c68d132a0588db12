// Package native implements the rendergraph Device and CommandRecorder on
// top of the gogpu/wgpu hardware abstraction layer.
//
// Textures, views and buffers are created directly on a hal.Device. HAL
// has no render-pass or framebuffer objects, so RenderPass and Framebuffer
// are templates from which a hal.RenderPassDescriptor is built when the
// pass begins. Barriers map to TransitionTextures / TransitionBuffers.
//
// Example:
//
//	dev, err := native.NewDeviceFromProvider(provider)
//	g := rendergraph.New(dev)
//	// declare passes ...
//	if err := g.Compile(); err != nil { ... }
//	err = dev.RecordFrame(g)
package native

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
)

// Device allocates rendergraph resources on a HAL device.
//
// Device is not safe for concurrent use; it is driven by a single graph.
type Device struct {
	device hal.Device
	queue  hal.Queue
	label  string
}

var _ rendergraph.Device = (*Device)(nil)

// NewDevice wraps an open HAL device and its queue. The queue may be nil
// when the device is only used for allocation.
func NewDevice(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	return &Device{device: device, queue: queue, label: "rendergraph"}, nil
}

// NewDeviceFromProvider shares the device of an application-level
// provider, such as a gogpu window. The provider must expose HalDevice()
// and HalQueue() returning hal.Device and hal.Queue.
func NewDeviceFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNotHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNotHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNotHALProvider)
	}
	return NewDevice(device, queue)
}

// HAL returns the wrapped HAL device.
func (d *Device) HAL() hal.Device { return d.device }

// Queue returns the wrapped HAL queue.
func (d *Device) Queue() hal.Queue { return d.queue }

// CreateTexture creates a texture and its default view. The image and
// view of the returned PhysicalTexture are hal.Texture and
// hal.TextureView.
func (d *Device) CreateTexture(desc *rendergraph.TextureDesc) (rendergraph.PhysicalTexture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return rendergraph.PhysicalTexture{}, fmt.Errorf("texture %q: %w", desc.Name, ErrInvalidDimensions)
	}

	tex, err := d.device.CreateTexture(textureDescriptor(desc.Name, desc))
	if err != nil {
		return rendergraph.PhysicalTexture{}, fmt.Errorf("create texture %q: %w", desc.Name, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: desc.Name + "_view",
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return rendergraph.PhysicalTexture{}, fmt.Errorf("create texture view %q: %w", desc.Name, err)
	}

	rendergraph.Logger().Debug("native: texture created",
		"name", desc.Name, "width", desc.Width, "height", desc.Height, "format", desc.Format)

	return rendergraph.PhysicalTexture{
		Image:  tex,
		View:   view,
		Format: desc.Format,
		Width:  desc.Width,
		Height: desc.Height,
		Usage:  desc.Usage,
	}, nil
}

// DestroyTexture releases a texture created by CreateTexture.
func (d *Device) DestroyTexture(tex *rendergraph.PhysicalTexture) {
	if view, ok := tex.View.(hal.TextureView); ok && view != nil {
		d.device.DestroyTextureView(view)
	}
	if img, ok := tex.Image.(hal.Texture); ok && img != nil {
		d.device.DestroyTexture(img)
	}
}

// CreateBuffer creates a buffer. The native buffer is a hal.Buffer.
func (d *Device) CreateBuffer(desc *rendergraph.BufferDesc) (rendergraph.PhysicalBuffer, error) {
	if desc.Size == 0 {
		return rendergraph.PhysicalBuffer{}, fmt.Errorf("buffer %q: %w", desc.Name, ErrInvalidDimensions)
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Name,
		Size:  desc.Size,
		Usage: desc.Usage.GPUBufferUsage(),
	})
	if err != nil {
		return rendergraph.PhysicalBuffer{}, fmt.Errorf("create buffer %q: %w", desc.Name, err)
	}
	return rendergraph.PhysicalBuffer{
		Buffer: buf,
		Size:   desc.Size,
		Usage:  desc.Usage,
	}, nil
}

// DestroyBuffer releases a buffer created by CreateBuffer.
func (d *Device) DestroyBuffer(buf *rendergraph.PhysicalBuffer) {
	if b, ok := buf.Buffer.(hal.Buffer); ok && b != nil {
		d.device.DestroyBuffer(b)
	}
}

// CreateRenderPass returns a *RenderPass template.
func (d *Device) CreateRenderPass(desc *rendergraph.RenderPassDesc) (any, error) {
	return newRenderPass(desc), nil
}

// DestroyRenderPass is a no-op: render-pass templates own no GPU memory.
func (d *Device) DestroyRenderPass(any) {}

// CreateFramebuffer returns a *Framebuffer binding views to a template.
func (d *Device) CreateFramebuffer(desc *rendergraph.FramebufferDesc) (any, error) {
	return newFramebuffer(desc)
}

// DestroyFramebuffer is a no-op: views are owned by their textures.
func (d *Device) DestroyFramebuffer(any) {}
