// Package timeline draws a compiled render graph as an image: one column
// per pass, one row per resource, with lifetime bars and barrier marks.
package timeline

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/rendergraph"
)

// ErrNotCompiled is returned when the graph has not been compiled.
var ErrNotCompiled = errors.New("timeline: graph not compiled")

// Layout constants, in pixels.
const (
	defaultColumnWidth = 120
	defaultRowHeight   = 22
	defaultFontSize    = 12
	labelWidth         = 160
	headerHeight       = 28
	barInset           = 5
	markSize           = 6
)

var (
	background = color.RGBA{R: 0x1e, G: 0x1f, B: 0x24, A: 0xff}
	gridLine   = color.RGBA{R: 0x33, G: 0x35, B: 0x3d, A: 0xff}
	textColor  = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
	textureBar = color.RGBA{R: 0x4a, G: 0x90, B: 0xd9, A: 0xff}
	bufferBar  = color.RGBA{R: 0x5c, G: 0xb8, B: 0x5c, A: 0xff}
	externBar  = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	barrierDot = color.RGBA{R: 0xe0, G: 0x50, B: 0x40, A: 0xff}
)

// Options controls the image layout. Zero fields take defaults.
type Options struct {
	ColumnWidth int
	RowHeight   int
	FontSize    float64
}

func (o Options) withDefaults() Options {
	if o.ColumnWidth <= 0 {
		o.ColumnWidth = defaultColumnWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = defaultRowHeight
	}
	if o.FontSize <= 0 {
		o.FontSize = defaultFontSize
	}
	return o
}

type row struct {
	name     string
	lifetime rendergraph.Lifetime
	bar      color.RGBA
	texture  rendergraph.TextureHandle
	buffer   rendergraph.BufferHandle
}

// Render draws g, which must be compiled.
func Render(g *rendergraph.RenderGraph, opts Options) (*image.RGBA, error) {
	if !g.IsCompiled() {
		return nil, ErrNotCompiled
	}
	opts = opts.withDefaults()

	face, err := newFace(opts.FontSize)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = face.Close()
	}()

	passes := g.Passes()
	rows := collectRows(g)

	width := labelWidth + len(passes)*opts.ColumnWidth
	height := headerHeight + len(rows)*opts.RowHeight
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(textColor), Face: face}
	baseline := func(top, h int) fixed.Int26_6 {
		m := face.Metrics()
		return fixed.I(top+h/2) + (m.Ascent-m.Descent)/2
	}

	for i, p := range passes {
		x := labelWidth + i*opts.ColumnWidth
		fill(img, image.Rect(x, 0, x+1, height), gridLine)
		drawLabel(d, fmt.Sprintf("%d %s", i, p.Name), x+4, baseline(0, headerHeight), opts.ColumnWidth-8)
	}
	fill(img, image.Rect(0, headerHeight-1, width, headerHeight), gridLine)

	col := func(pass int) int { return labelWidth + pass*opts.ColumnWidth }
	for r, rw := range rows {
		top := headerHeight + r*opts.RowHeight
		fill(img, image.Rect(0, top+opts.RowHeight-1, width, top+opts.RowHeight), gridLine)
		drawLabel(d, rw.name, 6, baseline(top, opts.RowHeight), labelWidth-12)

		if rw.lifetime.Used() {
			bar := image.Rect(col(rw.lifetime.First)+barInset, top+barInset,
				col(rw.lifetime.Last+1)-barInset, top+opts.RowHeight-barInset)
			fill(img, bar, rw.bar)
		}
		for i, cp := range g.Compiled() {
			if hasBarrier(cp.Barriers, rw) {
				x := col(i) + barInset
				fill(img, image.Rect(x, top+barInset, x+markSize, top+opts.RowHeight-barInset), barrierDot)
			}
		}
		if len(passes) > 0 && hasBarrier(g.FinalBarriers(), rw) {
			x := col(len(passes)) - barInset - markSize
			fill(img, image.Rect(x, top+barInset, x+markSize, top+opts.RowHeight-barInset), barrierDot)
		}
	}
	return img, nil
}

// WritePNG renders g and encodes it as PNG.
func WritePNG(w io.Writer, g *rendergraph.RenderGraph, opts Options) error {
	img, err := Render(g, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("timeline: encode png: %w", err)
	}
	return nil
}

func newFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("timeline: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("timeline: create face: %w", err)
	}
	return face, nil
}

func collectRows(g *rendergraph.RenderGraph) []row {
	var rows []row
	for _, h := range g.Textures() {
		desc, _ := g.TextureDesc(h)
		lt, _ := g.TextureLifetime(h)
		bar := textureBar
		if desc.External {
			bar = externBar
		}
		rows = append(rows, row{name: desc.Name, lifetime: lt, bar: bar, texture: h})
	}
	for _, h := range g.Buffers() {
		desc, _ := g.BufferDesc(h)
		lt, _ := g.BufferLifetime(h)
		bar := bufferBar
		if desc.External {
			bar = externBar
		}
		rows = append(rows, row{name: desc.Name, lifetime: lt, bar: bar, buffer: h})
	}
	return rows
}

func hasBarrier(barriers []rendergraph.ResourceBarrier, rw row) bool {
	for _, b := range barriers {
		if rw.texture.IsValid() && b.Texture == rw.texture {
			return true
		}
		if rw.buffer.IsValid() && b.Buffer == rw.buffer {
			return true
		}
	}
	return false
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// drawLabel draws s at (x, y), truncated with ".." to fit maxWidth.
func drawLabel(d *font.Drawer, s string, x int, y fixed.Int26_6, maxWidth int) {
	limit := fixed.I(maxWidth)
	if d.MeasureString(s) > limit {
		runes := []rune(s)
		for len(runes) > 0 && d.MeasureString(string(runes)+"..") > limit {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + ".."
	}
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: y}
	d.DrawString(s)
}
