// Package rendergraph compiles a frame's passes into an execution order,
// GPU resource allocations and the barriers needed between passes.
//
// # Overview
//
// Each frame, passes declare the textures and buffers they read and
// write through a PassBuilder. Compile allocates what is missing, counts
// producer/consumer dependencies, computes the minimal set of barriers and
// creates backend render-pass objects. Execute records everything into a
// CommandRecorder, calling each pass back to record its own draws.
//
// # Quick Start
//
//	g := rendergraph.New(device)
//
//	var shadow rendergraph.TextureHandle
//	g.AddPass("Shadow", func(b *rendergraph.PassBuilder) {
//	    shadow = b.CreateShadowMap("ShadowMap", 2048)
//	}, drawShadowCasters)
//
//	g.AddPass("Main", func(b *rendergraph.PassBuilder) {
//	    b.CreateColorAttachment("MainColor", 1920, 1080, gputypes.TextureFormatUndefined)
//	    b.CreateDepthAttachment("MainDepth", 1920, 1080, gputypes.TextureFormatUndefined)
//	    b.ReadTexture(shadow, rendergraph.StageFragmentShader)
//	}, drawScene)
//
//	if err := g.Compile(); err != nil {
//	    return err
//	}
//	err := g.Execute(recorder)
//	g.Reset()
//
// # Ordering
//
// Passes execute in declaration order, which must already be a valid
// topological order: a pass may only depend on writes made by strictly
// earlier passes. Reads without an earlier producer are logged.
//
// # Resources
//
// Resources are identified by name. Declaring the same name again returns
// the same handle. Descriptions and their allocations survive Reset, so a
// steady-state frame allocates nothing. Imported resources (swapchain
// images, persistent buffers) are never allocated or freed by the graph.
//
// # Backends
//
// The Device and CommandRecorder interfaces isolate the graph from the
// GPU API. backend/native implements them on top of gogpu/wgpu HAL.
package rendergraph

// Version is the module version reported by rgplan -version.
const Version = "0.1.0"
