package rendergraph

import (
	"context"
	"fmt"
	"log/slog"
)

// Compile allocates resources, orders passes and computes barriers for
// the current frame. It is a no-op when the frame is already compiled.
//
// Allocation failures are logged and leave the resource unallocated,
// except ErrNoMemoryType, which aborts compilation. Failures to create
// backend render-pass objects are logged and the pass renders without
// them.
func (g *RenderGraph) Compile() error {
	if g.shutdown {
		Logger().Error("rendergraph: compile after shutdown", "label", g.opts.label)
		return ErrShutdown
	}
	if g.state == StateCompiled {
		return nil
	}
	if len(g.passes) == 0 {
		Logger().Error("rendergraph: compile failed: no passes", "label", g.opts.label)
		return ErrNoPasses
	}

	g.state = StateUncompiled
	g.compiled = g.compiled[:0]
	g.final = g.final[:0]

	if err := g.allocateResources(); err != nil {
		Logger().Error("rendergraph: compile failed", "label", g.opts.label, "err", err)
		return fmt.Errorf("compile: %w", err)
	}
	g.state = StateResourcesAllocated

	g.buildDependencies()
	g.state = StateOrdered

	g.computeBarriers()
	g.state = StateBarriersComputed

	g.createBackendObjects()
	g.state = StateBackendObjectsCreated

	g.state = StateCompiled

	if log := Logger(); log.Enabled(context.Background(), slog.LevelInfo) {
		s := g.Stats()
		log.Info("rendergraph: compiled",
			"label", g.opts.label,
			"passes", s.Passes,
			"textures", s.Textures,
			"buffers", s.Buffers,
			"barriers", s.Barriers)
	}
	return nil
}

// buildDependencies counts, for every read, the matching writes of
// earlier passes, records resource lifetimes and warns about reads that
// nothing earlier produces.
func (g *RenderGraph) buildDependencies() {
	for i := range g.texLifetimes {
		g.texLifetimes[i] = unusedLifetime()
	}
	for i := range g.bufLifetimes {
		g.bufLifetimes[i] = unusedLifetime()
	}

	for _, p := range g.passes {
		p.RefCount = 0
		for i := range p.Reads {
			r := &p.Reads[i]
			g.extendLifetime(r, p.Index)

			producers := g.countWrites(r.key(), 0, p.Index)
			p.RefCount += producers
			if producers == 0 && g.opts.orderValidation && !g.isExternal(r) {
				g.warnUnproduced(p, r)
			}
		}
		for i := range p.Writes {
			g.extendLifetime(&p.Writes[i], p.Index)
		}
	}

	if log := Logger(); log.Enabled(context.Background(), slog.LevelDebug) {
		for _, p := range g.passes {
			log.Debug("rendergraph: pass dependencies",
				"pass", p.Name, "index", p.Index, "kind", p.Kind.String(),
				"reads", len(p.Reads), "writes", len(p.Writes), "refcount", p.RefCount)
		}
	}
}

// countWrites counts writes to key in passes [from, to).
func (g *RenderGraph) countWrites(key resourceKey, from, to int) int {
	n := 0
	for _, p := range g.passes[from:to] {
		for i := range p.Writes {
			if p.Writes[i].key() == key {
				n++
			}
		}
	}
	return n
}

func (g *RenderGraph) warnUnproduced(p *Pass, r *ResourceAccess) {
	name := g.accessName(r)
	if later := g.countWrites(r.key(), p.Index+1, len(g.passes)); later > 0 {
		Logger().Warn("rendergraph: read declared before its producer",
			"pass", p.Name, "resource", name, "later_writes", later)
		return
	}
	Logger().Warn("rendergraph: read of a resource no pass writes",
		"pass", p.Name, "resource", name)
}

func (g *RenderGraph) extendLifetime(a *ResourceAccess, pass int) {
	if a.IsTexture() {
		if idx := a.Texture.Index(); idx < len(g.texLifetimes) {
			g.texLifetimes[idx].extend(pass)
		}
		return
	}
	if idx := a.Buffer.Index(); idx >= 0 && idx < len(g.bufLifetimes) {
		g.bufLifetimes[idx].extend(pass)
	}
}

func (g *RenderGraph) isExternal(a *ResourceAccess) bool {
	if a.IsTexture() {
		d := g.textureDesc(a.Texture)
		return d != nil && d.External
	}
	d := g.bufferDesc(a.Buffer)
	return d != nil && d.External
}

func (g *RenderGraph) accessName(a *ResourceAccess) string {
	if a.IsTexture() {
		if d := g.textureDesc(a.Texture); d != nil {
			return d.Name
		}
		return a.Texture.String()
	}
	if d := g.bufferDesc(a.Buffer); d != nil {
		return d.Name
	}
	return a.Buffer.String()
}
