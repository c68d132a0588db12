package rendergraph

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.clearColor != (gputypes.Color{R: 0, G: 0, B: 0, A: 1}) {
		t.Errorf("clearColor = %+v, want opaque black", o.clearColor)
	}
	if o.depthClear != 1.0 {
		t.Errorf("depthClear = %v, want 1.0", o.depthClear)
	}
	if o.stencilClear != 0 {
		t.Errorf("stencilClear = %d, want 0", o.stencilClear)
	}
	if !o.orderValidation {
		t.Error("orderValidation should be enabled by default")
	}
}

func TestOptionsApplied(t *testing.T) {
	red := gputypes.Color{R: 1, A: 1}
	g := New(newFakeDevice(),
		WithClearColor(red),
		WithDepthClear(0, 7),
		WithLabel("frame"),
		WithOrderValidation(false),
	)

	if g.opts.clearColor != red {
		t.Errorf("clearColor = %+v, want %+v", g.opts.clearColor, red)
	}
	if g.opts.depthClear != 0 || g.opts.stencilClear != 7 {
		t.Errorf("depth clear = (%v, %d), want (0, 7)", g.opts.depthClear, g.opts.stencilClear)
	}
	if g.opts.label != "frame" {
		t.Errorf("label = %q, want %q", g.opts.label, "frame")
	}
	if g.opts.orderValidation {
		t.Error("orderValidation should be disabled")
	}
}

func TestWithLabelEmptyKeepsDefault(t *testing.T) {
	g := New(newFakeDevice(), WithLabel(""))
	if g.opts.label != "rendergraph" {
		t.Errorf("label = %q, want default", g.opts.label)
	}
}

func TestClearValuesUsedAtExecute(t *testing.T) {
	dev := newFakeDevice()
	g := New(dev, WithClearColor(gputypes.Color{R: 0.5, G: 0.25, B: 0, A: 1}), WithDepthClear(0.5, 3))

	g.AddPass("Main", func(b *PassBuilder) {
		b.CreateColorAttachment("Color", 64, 64, gputypes.TextureFormatUndefined)
		b.CreateDepthAttachment("Depth", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	rec := &fakeRecorder{}
	if err := g.Execute(rec); err != nil {
		t.Fatalf("Execute() = %v", err)
	}

	if len(rec.begins) != 1 {
		t.Fatalf("BeginRenderPass calls = %d, want 1", len(rec.begins))
	}
	cv := rec.begins[0].ClearValues
	if len(cv) != 2 {
		t.Fatalf("clear values = %d, want 2", len(cv))
	}
	if cv[0].Color != (gputypes.Color{R: 0.5, G: 0.25, B: 0, A: 1}) {
		t.Errorf("color clear = %+v", cv[0].Color)
	}
	if cv[1].Depth != 0.5 || cv[1].Stencil != 3 {
		t.Errorf("depth clear = (%v, %d), want (0.5, 3)", cv[1].Depth, cv[1].Stencil)
	}
}
