package main

import (
	"fmt"
	"io"

	"github.com/gogpu/rendergraph"
)

// printPlan writes the compiled pass order and barriers of g.
func printPlan(w io.Writer, g *rendergraph.RenderGraph) {
	compiled := g.Compiled()
	for i, p := range g.Passes() {
		fmt.Fprintf(w, "pass %d %s (%s)", i, p.Name, p.Kind)
		if p.ViewportWidth > 0 {
			fmt.Fprintf(w, " %dx%d", p.ViewportWidth, p.ViewportHeight)
		}
		fmt.Fprintln(w)
		if i < len(compiled) {
			printBarriers(w, g, compiled[i].Barriers)
		}
	}
	if final := g.FinalBarriers(); len(final) > 0 {
		fmt.Fprintln(w, "final")
		printBarriers(w, g, final)
	}

	s := g.Stats()
	fmt.Fprintf(w, "%d passes, %d textures, %d buffers, %d barriers, %d render passes\n",
		s.Passes, s.Textures, s.Buffers, s.Barriers, s.RenderPasses)
}

func printBarriers(w io.Writer, g *rendergraph.RenderGraph, barriers []rendergraph.ResourceBarrier) {
	for _, b := range barriers {
		if b.IsTexture() {
			desc, _ := g.TextureDesc(b.Texture)
			fmt.Fprintf(w, "  %-16s %s -> %s [%s -> %s]\n",
				desc.Name, b.OldLayout, b.NewLayout, b.SrcStage, b.DstStage)
			continue
		}
		desc, _ := g.BufferDesc(b.Buffer)
		fmt.Fprintf(w, "  %-16s %s -> %s [%s -> %s]\n",
			desc.Name, b.SrcAccess, b.DstAccess, b.SrcStage, b.DstStage)
	}
}
