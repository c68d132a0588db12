// Package framefile loads frame descriptions written in HCL and declares
// them on a render graph.
//
// A frame file lists passes in execution order:
//
//	pass "Shadow" {
//	  depth "ShadowMap" {
//	    width  = 2048
//	    height = 2048
//	    shadow = true
//	  }
//	}
//
//	pass "Main" {
//	  color "MainColor" {
//	    width  = screen.width
//	    height = screen.height
//	  }
//	  reads = ["ShadowMap"]
//	}
//
//	output = "MainColor"
//
// The screen variable carries the width and height given to Load.
package framefile

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/gogpu/rendergraph"
)

var (
	// ErrUnknownResource is returned when a pass refers to a name that no
	// earlier pass created.
	ErrUnknownResource = errors.New("framefile: unknown resource")

	// ErrUnknownKind is returned for a pass kind other than graphics,
	// compute or transfer.
	ErrUnknownKind = errors.New("framefile: unknown pass kind")

	// ErrUnknownFormat is returned for an unrecognized texture format name.
	ErrUnknownFormat = errors.New("framefile: unknown texture format")

	// ErrUnknownUsage is returned for an unrecognized buffer usage name.
	ErrUnknownUsage = errors.New("framefile: unknown buffer usage")
)

// Screen is the size exposed to frame files as screen.width and
// screen.height.
type Screen struct {
	Width, Height uint32
}

// Frame is a decoded frame file.
type Frame struct {
	Filename string
	Passes   []*PassBlock `hcl:"pass,block"`
	Output   string       `hcl:"output,optional"`
}

// PassBlock is one pass "name" { ... } block.
type PassBlock struct {
	Name string `hcl:"name,label"`
	Kind string `hcl:"kind,optional"`

	Colors  []*TextureBlock `hcl:"color,block"`
	Depths  []*TextureBlock `hcl:"depth,block"`
	Buffers []*BufferBlock  `hcl:"buffer,block"`

	Reads        []string `hcl:"reads,optional"`
	Loads        []string `hcl:"loads,optional"`
	StorageWrite []string `hcl:"storage_writes,optional"`
	CopyFrom     []string `hcl:"copy_from,optional"`
	CopyTo       []string `hcl:"copy_to,optional"`
	ReadBuffers  []string `hcl:"read_buffers,optional"`
	WriteBuffers []string `hcl:"write_buffers,optional"`
	Present      string   `hcl:"present,optional"`
}

// TextureBlock declares a color or depth attachment created by the pass.
type TextureBlock struct {
	Name   string `hcl:"name,label"`
	Width  uint32 `hcl:"width"`
	Height uint32 `hcl:"height,optional"`
	Format string `hcl:"format,optional"`
	HDR    bool   `hcl:"hdr,optional"`
	Shadow bool   `hcl:"shadow,optional"`
}

// BufferBlock declares a buffer created by the pass.
type BufferBlock struct {
	Name  string   `hcl:"name,label"`
	Size  uint64   `hcl:"size"`
	Usage []string `hcl:"usage,optional"`
}

// Load reads and decodes a frame file.
func Load(path string, screen Screen) (*Frame, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read frame file: %w", err)
	}
	return Parse(src, path, screen)
}

// Parse decodes frame file source. filename is used in diagnostics.
func Parse(src []byte, filename string, screen Screen) (*Frame, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var frame Frame
	diags = gohcl.DecodeBody(file.Body, evalContext(screen), &frame)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	frame.Filename = filename

	if err := frame.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	rendergraph.Logger().Debug("framefile: loaded", "file", filename, "passes", len(frame.Passes))
	return &frame, nil
}

func evalContext(screen Screen) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"screen": cty.ObjectVal(map[string]cty.Value{
				"width":  cty.NumberUIntVal(uint64(screen.Width)),
				"height": cty.NumberUIntVal(uint64(screen.Height)),
			}),
		},
	}
}

// validate checks the names that can be checked without a graph.
func (f *Frame) validate() error {
	for _, p := range f.Passes {
		if _, err := parseKind(p.Kind); err != nil {
			return fmt.Errorf("pass %q: %w", p.Name, err)
		}
		for _, t := range append(append([]*TextureBlock(nil), p.Colors...), p.Depths...) {
			if _, err := parseFormat(t.Format); err != nil {
				return fmt.Errorf("pass %q: texture %q: %w", p.Name, t.Name, err)
			}
		}
		for _, b := range p.Buffers {
			if _, err := parseUsage(b.Usage); err != nil {
				return fmt.Errorf("pass %q: buffer %q: %w", p.Name, b.Name, err)
			}
		}
	}
	return nil
}
