package rendergraph

import "github.com/gogpu/gputypes"

// Option configures a RenderGraph during creation.
//
// Example:
//
//	g := rendergraph.New(device,
//	    rendergraph.WithClearColor(gputypes.Color{R: 0.1, G: 0.1, B: 0.1, A: 1}),
//	    rendergraph.WithLabel("frame"),
//	)
type Option func(*options)

// options holds optional configuration for RenderGraph creation.
type options struct {
	clearColor      gputypes.Color
	depthClear      float32
	stencilClear    uint32
	label           string
	orderValidation bool
}

// defaultOptions returns the default graph options.
func defaultOptions() options {
	return options{
		clearColor:      gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		depthClear:      1.0,
		stencilClear:    0,
		label:           "rendergraph",
		orderValidation: true,
	}
}

// WithClearColor sets the clear value used for every color attachment.
// The default is opaque black.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithDepthClear sets the depth and stencil clear values.
// The default is depth 1.0, stencil 0.
func WithDepthClear(depth float32, stencil uint32) Option {
	return func(o *options) {
		o.depthClear = depth
		o.stencilClear = stencil
	}
}

// WithLabel sets the prefix of labels given to backend objects.
func WithLabel(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.label = prefix
		}
	}
}

// WithOrderValidation enables or disables the declaration-order warnings
// logged during compilation for reads that no earlier pass produces.
// Enabled by default.
func WithOrderValidation(enabled bool) Option {
	return func(o *options) {
		o.orderValidation = enabled
	}
}
