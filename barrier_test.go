package rendergraph

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestFirstWriteBarrier(t *testing.T) {
	g := New(newFakeDevice())
	var color TextureHandle
	g.AddPass("Main", func(b *PassBuilder) {
		color = b.CreateColorAttachment("Color", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	bs := textureBarriers(barriersFor(g, "Main"), color)
	if len(bs) != 1 {
		t.Fatalf("barriers = %d, want 1", len(bs))
	}
	b := bs[0]
	if b.OldLayout != LayoutUndefined || b.NewLayout != LayoutColorAttachment {
		t.Errorf("layouts = %v -> %v, want Undefined -> ColorAttachment", b.OldLayout, b.NewLayout)
	}
	if b.SrcStage != StageTopOfPipe || b.SrcAccess != AccessNone {
		t.Errorf("src = %v/%v, want TopOfPipe/None", b.SrcStage, b.SrcAccess)
	}
	if b.DstStage != StageColorAttachmentOutput || b.DstAccess != AccessColorAttachmentWrite {
		t.Errorf("dst = %v/%v", b.DstStage, b.DstAccess)
	}
}

func TestReadAfterWriteBarrier(t *testing.T) {
	g := New(newFakeDevice())
	var color TextureHandle
	g.AddPass("Produce", func(b *PassBuilder) {
		color = b.CreateColorAttachment("Color", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	g.AddPass("Consume", func(b *PassBuilder) {
		b.ReadTexture(color, StageFragmentShader)
		b.CreateColorAttachment("Out", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	bs := textureBarriers(barriersFor(g, "Consume"), color)
	if len(bs) != 1 {
		t.Fatalf("barriers on Color = %d, want 1", len(bs))
	}
	want := ResourceBarrier{
		Texture:   color,
		SrcStage:  StageColorAttachmentOutput,
		DstStage:  StageFragmentShader,
		SrcAccess: AccessColorAttachmentWrite,
		DstAccess: AccessShaderRead,
		OldLayout: LayoutColorAttachment,
		NewLayout: LayoutShaderReadOnly,
	}
	if bs[0] != want {
		t.Errorf("barrier = %+v\nwant      %+v", bs[0], want)
	}
}

func TestNoSpuriousBarriers(t *testing.T) {
	g := New(newFakeDevice())
	var color TextureHandle
	g.AddPass("Produce", func(b *PassBuilder) {
		color = b.CreateColorAttachment("Color", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	g.AddPass("ReaderA", func(b *PassBuilder) {
		b.SampleTexture(color)
		b.CreateColorAttachment("A", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	g.AddPass("ReaderB", func(b *PassBuilder) {
		b.SampleTexture(color)
		b.CreateColorAttachment("B", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	if bs := textureBarriers(barriersFor(g, "ReaderB"), color); len(bs) != 0 {
		t.Errorf("second reader got %d barriers on Color, want 0: %+v", len(bs), bs)
	}
}

func TestReaderInNewStageSynchronized(t *testing.T) {
	g := New(newFakeDevice())
	var color TextureHandle
	g.AddPass("Produce", func(b *PassBuilder) {
		color = b.CreateColorAttachment("Color", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	g.AddPass("Fragment", func(b *PassBuilder) {
		b.SampleTexture(color)
		b.CreateColorAttachment("A", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	g.AddComputePass("Compute", func(b *PassBuilder) {
		b.ReadTexture(color, StageComputeShader)
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	bs := textureBarriers(barriersFor(g, "Compute"), color)
	if len(bs) != 1 {
		t.Fatalf("barriers = %d, want 1", len(bs))
	}
	if bs[0].SrcStage != StageColorAttachmentOutput || bs[0].DstStage != StageComputeShader {
		t.Errorf("stages = %v -> %v", bs[0].SrcStage, bs[0].DstStage)
	}
	if bs[0].OldLayout != LayoutShaderReadOnly || bs[0].NewLayout != LayoutShaderReadOnly {
		t.Errorf("layouts = %v -> %v, want unchanged", bs[0].OldLayout, bs[0].NewLayout)
	}
}

func TestWriteAfterWriteSameLayout(t *testing.T) {
	g := New(newFakeDevice())
	var color TextureHandle
	g.AddPass("Clear", func(b *PassBuilder) {
		color = b.CreateColorAttachment("Color", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	overlay := g.AddPass("Overlay", func(b *PassBuilder) {
		b.UseColorAttachment(color)
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	bs := textureBarriers(barriersFor(g, "Overlay"), color)
	if len(bs) != 1 {
		t.Fatalf("barriers = %d, want 1", len(bs))
	}
	if bs[0].OldLayout != LayoutColorAttachment || bs[0].NewLayout != LayoutColorAttachment {
		t.Errorf("layouts = %v -> %v", bs[0].OldLayout, bs[0].NewLayout)
	}
	if bs[0].SrcAccess != AccessColorAttachmentWrite {
		t.Errorf("SrcAccess = %v, want ColorAttachmentWrite", bs[0].SrcAccess)
	}
	if overlay.RenderPass == nil {
		t.Fatal("Overlay has no render pass")
	}
}

func TestWriteAfterReadBarrier(t *testing.T) {
	g := New(newFakeDevice())
	var color TextureHandle
	g.AddPass("Produce", func(b *PassBuilder) {
		color = b.CreateColorAttachment("Color", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	g.AddPass("Read", func(b *PassBuilder) {
		b.SampleTexture(color)
		b.CreateColorAttachment("Out", 64, 64, gputypes.TextureFormatUndefined)
	}, nil)
	g.AddComputePass("Rewrite", func(b *PassBuilder) {
		b.WriteStorageTexture(color)
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	bs := textureBarriers(barriersFor(g, "Rewrite"), color)
	if len(bs) != 1 {
		t.Fatalf("barriers = %d, want 1", len(bs))
	}
	b := bs[0]
	if b.OldLayout != LayoutShaderReadOnly || b.NewLayout != LayoutGeneral {
		t.Errorf("layouts = %v -> %v, want ShaderReadOnly -> General", b.OldLayout, b.NewLayout)
	}
	if b.SrcStage&StageFragmentShader == 0 {
		t.Errorf("SrcStage = %v, must wait for the fragment reader", b.SrcStage)
	}
	if b.DstStage != StageComputeShader || b.DstAccess != AccessShaderWrite {
		t.Errorf("dst = %v/%v", b.DstStage, b.DstAccess)
	}
}

func TestDisjointResourcesIndependent(t *testing.T) {
	g := New(newFakeDevice())
	var a, b2 TextureHandle
	g.AddPass("A", func(b *PassBuilder) {
		a = b.CreateColorAttachment("A", 8, 8, gputypes.TextureFormatUndefined)
	}, nil)
	g.AddPass("B", func(b *PassBuilder) {
		b2 = b.CreateColorAttachment("B", 8, 8, gputypes.TextureFormatUndefined)
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	if bs := textureBarriers(barriersFor(g, "B"), a); len(bs) != 0 {
		t.Errorf("pass B has %d barriers on A", len(bs))
	}
	if bs := barriersFor(g, "B"); len(bs) != 1 || bs[0].Texture != b2 {
		t.Errorf("pass B barriers = %+v, want only first use of B", bs)
	}
}

func TestImportedLayoutRespectedOnFirstRead(t *testing.T) {
	g := New(newFakeDevice())
	sampled := g.ImportTexture("Env", ExternalTexture{
		Image: &fakeObject{}, View: &fakeObject{}, Width: 4, Height: 4,
		Usage: TextureUsageShaderRead, Layout: LayoutShaderReadOnly,
	})
	copied := g.ImportTexture("Upload", ExternalTexture{
		Image: &fakeObject{}, View: &fakeObject{}, Width: 4, Height: 4,
		Usage: TextureUsageShaderRead, Layout: LayoutTransferDst,
	})
	g.AddPass("Main", func(b *PassBuilder) {
		b.SampleTexture(sampled)
		b.SampleTexture(copied)
		b.CreateColorAttachment("Out", 4, 4, gputypes.TextureFormatUndefined)
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	bs := barriersFor(g, "Main")
	if got := textureBarriers(bs, sampled); len(got) != 0 {
		t.Errorf("texture already in ShaderReadOnly got %d barriers", len(got))
	}
	got := textureBarriers(bs, copied)
	if len(got) != 1 || got[0].OldLayout != LayoutTransferDst || got[0].NewLayout != LayoutShaderReadOnly {
		t.Errorf("barriers on Upload = %+v, want TransferDst -> ShaderReadOnly", got)
	}
}

func TestBufferBarriers(t *testing.T) {
	g := New(newFakeDevice())
	var particles BufferHandle
	g.AddComputePass("Simulate", func(b *PassBuilder) {
		particles = b.CreateBuffer("Particles", 4096, BufferUsageStorage)
		b.WriteBuffer(particles)
	}, nil)
	g.AddPass("Draw", func(b *PassBuilder) {
		b.ReadBuffer(particles, BufferUsageVertex)
		b.CreateColorAttachment("Color", 8, 8, gputypes.TextureFormatUndefined)
	}, nil)
	g.AddPass("DrawAgain", func(b *PassBuilder) {
		b.ReadBuffer(particles, BufferUsageVertex)
		b.UseColorAttachment(mustTexture(t, b.Graph(), "Color"))
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	if bs := bufferBarriers(barriersFor(g, "Simulate"), particles); len(bs) != 0 {
		t.Errorf("first buffer write got %d barriers, want 0", len(bs))
	}

	bs := bufferBarriers(barriersFor(g, "Draw"), particles)
	if len(bs) != 1 {
		t.Fatalf("RAW barriers = %d, want 1", len(bs))
	}
	if bs[0].SrcStage != StageComputeShader || bs[0].DstStage != StageVertexInput {
		t.Errorf("stages = %v -> %v", bs[0].SrcStage, bs[0].DstStage)
	}
	if bs[0].SrcAccess != AccessShaderWrite || bs[0].DstAccess != AccessVertexAttributeRead {
		t.Errorf("access = %v -> %v", bs[0].SrcAccess, bs[0].DstAccess)
	}
	if bs[0].OldLayout != LayoutUndefined || bs[0].NewLayout != LayoutUndefined {
		t.Error("buffer barrier carries a layout")
	}

	if bs := bufferBarriers(barriersFor(g, "DrawAgain"), particles); len(bs) != 0 {
		t.Errorf("second vertex read got %d barriers, want 0", len(bs))
	}
}

func TestStorageReadCountsAsWrite(t *testing.T) {
	g := New(newFakeDevice())
	var buf BufferHandle
	p := g.AddComputePass("Cull", func(b *PassBuilder) {
		buf = b.CreateBuffer("Visible", 256, BufferUsageStorage)
		b.ReadBuffer(buf, BufferUsageStorage)
	}, nil)
	if len(p.Reads) != 0 || len(p.Writes) != 1 {
		t.Fatalf("reads=%d writes=%d, want 0/1", len(p.Reads), len(p.Writes))
	}
	g.AddComputePass("Cull2", func(b *PassBuilder) {
		b.ReadBuffer(buf, BufferUsageStorage)
	}, nil)
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	if bs := bufferBarriers(barriersFor(g, "Cull2"), buf); len(bs) != 1 {
		t.Errorf("storage after storage got %d barriers, want 1", len(bs))
	}
}

func TestShadowMainScenario(t *testing.T) {
	dev := newFakeDevice()
	g := New(dev)
	rec := &fakeRecorder{}

	var shadow TextureHandle
	g.AddPass("Shadow", func(b *PassBuilder) {
		shadow = b.CreateShadowMap("ShadowMap", 2048)
	}, rec.mark("Shadow"))
	g.AddPass("Main", func(b *PassBuilder) {
		b.CreateColorAttachment("MainColor", 1920, 1080, gputypes.TextureFormatUndefined)
		b.CreateDepthAttachment("MainDepth", 1920, 1080, gputypes.TextureFormatUndefined)
		b.ReadTexture(shadow, StageFragmentShader)
	}, rec.mark("Main"))

	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	if len(dev.createdTextures) != 3 {
		t.Errorf("allocated %d textures, want 3", len(dev.createdTextures))
	}

	shadowBarriers := textureBarriers(barriersFor(g, "Shadow"), shadow)
	if len(shadowBarriers) != 1 {
		t.Fatalf("Shadow barriers on ShadowMap = %d, want 1", len(shadowBarriers))
	}
	if b := shadowBarriers[0]; b.OldLayout != LayoutUndefined || b.NewLayout != LayoutDepthStencilAttachment {
		t.Errorf("Shadow barrier %v -> %v, want Undefined -> DepthStencilAttachment", b.OldLayout, b.NewLayout)
	}

	mainBarriers := textureBarriers(barriersFor(g, "Main"), shadow)
	if len(mainBarriers) != 1 {
		t.Fatalf("Main barriers on ShadowMap = %d, want 1", len(mainBarriers))
	}
	if b := mainBarriers[0]; b.OldLayout != LayoutDepthStencilAttachment || b.NewLayout != LayoutShaderReadOnly {
		t.Errorf("Main barrier %v -> %v, want DepthStencilAttachment -> ShaderReadOnly", b.OldLayout, b.NewLayout)
	}
	if g.Passes()[1].RefCount != 1 {
		t.Errorf("Main RefCount = %d, want 1", g.Passes()[1].RefCount)
	}

	if err := g.Execute(rec); err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	want := []string{
		"barrier(1)", "begin", "viewport(2048x2048)", "scissor(2048x2048)", "exec:Shadow", "end",
		"barrier(3)", "begin", "viewport(1920x1080)", "scissor(1920x1080)", "exec:Main", "end",
	}
	if len(rec.log) != len(want) {
		t.Fatalf("log = %v\nwant  %v", rec.log, want)
	}
	for i := range want {
		if rec.log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, rec.log[i], want[i])
		}
	}
	if rec.depth != 0 {
		t.Errorf("unbalanced render passes: depth %d", rec.depth)
	}

	if got := g.PhysicalTexture(shadow).CurrentLayout; got != LayoutShaderReadOnly {
		t.Errorf("ShadowMap layout after execute = %v, want ShaderReadOnly", got)
	}
	if rec.barriers[0][0].Aspect != AspectDepth {
		t.Error("depth barrier should address the depth aspect")
	}
}

func TestOutputPresentTransition(t *testing.T) {
	g := New(newFakeDevice())
	rec := &fakeRecorder{}
	var color TextureHandle
	g.AddPass("Main", func(b *PassBuilder) {
		color = b.CreateColorAttachment("Color", 32, 32, gputypes.TextureFormatUndefined)
	}, nil)
	g.SetOutput(color)
	if g.Output() != color {
		t.Fatal("Output() did not return the output texture")
	}
	if err := g.Compile(); err != nil {
		t.Fatalf("Compile() = %v", err)
	}

	final := g.FinalBarriers()
	if len(final) != 1 {
		t.Fatalf("final barriers = %d, want 1", len(final))
	}
	if final[0].OldLayout != LayoutColorAttachment || final[0].NewLayout != LayoutPresent {
		t.Errorf("final barrier %v -> %v", final[0].OldLayout, final[0].NewLayout)
	}

	if err := g.Execute(rec); err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if last := rec.log[len(rec.log)-1]; last != "barrier(1)" {
		t.Errorf("last command = %q, want the present barrier", last)
	}
	if got := g.PhysicalTexture(color).CurrentLayout; got != LayoutPresent {
		t.Errorf("layout after execute = %v, want Present", got)
	}
}

func mustTexture(t *testing.T, g *RenderGraph, name string) TextureHandle {
	t.Helper()
	h, ok := g.Texture(name)
	if !ok {
		t.Fatalf("texture %q not declared", name)
	}
	return h
}
