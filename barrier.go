package rendergraph

import (
	"context"
	"log/slog"
)

// hazardState tracks the last synchronization scope of one resource
// while barriers are computed.
type hazardState struct {
	touched     bool
	layout      Layout
	written     bool
	writeStage  Stage
	writeAccess Access
	// readStages accumulates the stages that already observed the last
	// write (or transition).
	readStages Stage
	// pass is the index of the pass that made the last access.
	pass int
}

// computeBarriers walks passes in execution order and emits, per pass,
// the barriers its reads and writes need. Reads are processed before
// writes. Disjoint resources never produce barriers for each other.
func (g *RenderGraph) computeBarriers() {
	states := make(map[resourceKey]*hazardState)
	state := func(k resourceKey) *hazardState {
		s, ok := states[k]
		if !ok {
			s = &hazardState{}
			states[k] = s
		}
		return s
	}

	for _, p := range g.passes {
		cp := CompiledPass{PassIndex: p.Index}
		for i := range p.Reads {
			r := &p.Reads[i]
			s := state(r.key())
			if r.IsTexture() {
				cp.Barriers = g.textureRead(cp.Barriers, s, r)
			} else {
				cp.Barriers = bufferRead(cp.Barriers, s, r)
			}
			s.pass = p.Index
		}
		for i := range p.Writes {
			w := &p.Writes[i]
			s := state(w.key())
			if w.IsTexture() {
				cp.Barriers = textureWrite(cp.Barriers, s, w, p.Index)
			} else {
				cp.Barriers = bufferWrite(cp.Barriers, s, w, p.Index)
			}
			s.pass = p.Index
		}
		g.compiled = append(g.compiled, cp)
	}

	if g.output.IsValid() {
		key := resourceKey{texture: true, index: g.output.Index()}
		g.final = g.presentBarrier(g.final, state(key))
	}

	if log := Logger(); log.Enabled(context.Background(), slog.LevelDebug) {
		for _, cp := range g.compiled {
			for _, b := range cp.Barriers {
				log.Debug("rendergraph: barrier", "pass", g.passes[cp.PassIndex].Name,
					"resource", g.barrierName(&b),
					"src_stage", b.SrcStage.String(), "dst_stage", b.DstStage.String(),
					"old_layout", b.OldLayout.String(), "new_layout", b.NewLayout.String())
			}
		}
	}
}

func srcScope(stages Stage) Stage {
	if stages == StageNone {
		return StageTopOfPipe
	}
	return stages
}

func (g *RenderGraph) textureRead(out []ResourceBarrier, s *hazardState, r *ResourceAccess) []ResourceBarrier {
	if !s.touched {
		// First use this frame: transition from whatever layout the
		// image is in, which is Undefined for owned textures.
		current := LayoutUndefined
		if p := g.PhysicalTexture(r.Texture); p != nil {
			current = p.CurrentLayout
		}
		if current != r.Layout {
			out = append(out, ResourceBarrier{
				Texture:   r.Texture,
				SrcStage:  StageTopOfPipe,
				DstStage:  r.Stage,
				DstAccess: r.Access,
				OldLayout: current,
				NewLayout: r.Layout,
			})
		}
		*s = hazardState{touched: true, layout: r.Layout, readStages: r.Stage}
		return out
	}

	layoutChange := s.layout != r.Layout
	unsynced := s.written && s.readStages&r.Stage != r.Stage
	if !layoutChange && !unsynced {
		s.readStages |= r.Stage
		return out
	}

	src := s.writeStage
	if layoutChange {
		// A transition must also wait for readers of the old layout.
		src |= s.readStages
	}
	out = append(out, ResourceBarrier{
		Texture:   r.Texture,
		SrcStage:  srcScope(src),
		DstStage:  r.Stage,
		SrcAccess: s.writeAccess,
		DstAccess: r.Access,
		OldLayout: s.layout,
		NewLayout: r.Layout,
	})

	if layoutChange && !s.written {
		// The transition itself is the last write other stages must
		// wait for.
		s.written = true
		s.writeStage = r.Stage
		s.writeAccess = AccessNone
		s.readStages = r.Stage
	} else if layoutChange {
		s.readStages = r.Stage
	} else {
		s.readStages |= r.Stage
	}
	s.layout = r.Layout
	return out
}

// mergeWrite folds a write into the state of an earlier access made by
// the same pass. Accesses within one pass are never separated by a
// barrier.
func mergeWrite(s *hazardState, w *ResourceAccess) {
	s.written = true
	s.writeStage |= w.Stage
	s.writeAccess |= w.Access
	s.readStages = StageNone
}

func textureWrite(out []ResourceBarrier, s *hazardState, w *ResourceAccess, pass int) []ResourceBarrier {
	if s.touched && s.pass == pass && s.layout == w.Layout {
		mergeWrite(s, w)
		return out
	}
	if !s.touched {
		out = append(out, ResourceBarrier{
			Texture:   w.Texture,
			SrcStage:  StageTopOfPipe,
			DstStage:  w.Stage,
			DstAccess: w.Access,
			OldLayout: LayoutUndefined,
			NewLayout: w.Layout,
		})
	} else {
		// Every earlier access is a hazard for a write: write-after-write
		// needs memory ordering, write-after-read needs execution ordering.
		out = append(out, ResourceBarrier{
			Texture:   w.Texture,
			SrcStage:  srcScope(s.writeStage | s.readStages),
			DstStage:  w.Stage,
			SrcAccess: s.writeAccess,
			DstAccess: w.Access,
			OldLayout: s.layout,
			NewLayout: w.Layout,
		})
	}
	*s = hazardState{
		touched:     true,
		layout:      w.Layout,
		written:     true,
		writeStage:  w.Stage,
		writeAccess: w.Access,
	}
	return out
}

func bufferRead(out []ResourceBarrier, s *hazardState, r *ResourceAccess) []ResourceBarrier {
	if s.written && s.readStages&r.Stage != r.Stage {
		out = append(out, ResourceBarrier{
			Buffer:    r.Buffer,
			SrcStage:  srcScope(s.writeStage),
			DstStage:  r.Stage,
			SrcAccess: s.writeAccess,
			DstAccess: r.Access,
		})
	}
	s.touched = true
	s.readStages |= r.Stage
	return out
}

func bufferWrite(out []ResourceBarrier, s *hazardState, w *ResourceAccess, pass int) []ResourceBarrier {
	if s.touched && s.pass == pass {
		mergeWrite(s, w)
		return out
	}
	if s.touched {
		out = append(out, ResourceBarrier{
			Buffer:    w.Buffer,
			SrcStage:  srcScope(s.writeStage | s.readStages),
			DstStage:  w.Stage,
			SrcAccess: s.writeAccess,
			DstAccess: w.Access,
		})
	}
	*s = hazardState{
		touched:     true,
		written:     true,
		writeStage:  w.Stage,
		writeAccess: w.Access,
	}
	return out
}

// presentBarrier transitions the frame output to Present after the last
// pass.
func (g *RenderGraph) presentBarrier(out []ResourceBarrier, s *hazardState) []ResourceBarrier {
	old := s.layout
	src, srcAccess := srcScope(s.writeStage|s.readStages), s.writeAccess
	if !s.touched {
		old = LayoutUndefined
		if p := g.PhysicalTexture(g.output); p != nil {
			old = p.CurrentLayout
		}
		src, srcAccess = StageTopOfPipe, AccessNone
	}
	if old == LayoutPresent {
		return out
	}
	return append(out, ResourceBarrier{
		Texture:   g.output,
		SrcStage:  src,
		DstStage:  StageBottomOfPipe,
		SrcAccess: srcAccess,
		OldLayout: old,
		NewLayout: LayoutPresent,
	})
}

func (g *RenderGraph) barrierName(b *ResourceBarrier) string {
	if b.IsTexture() {
		if d := g.textureDesc(b.Texture); d != nil {
			return d.Name
		}
		return b.Texture.String()
	}
	if d := g.bufferDesc(b.Buffer); d != nil {
		return d.Name
	}
	return b.Buffer.String()
}
