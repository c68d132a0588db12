// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rendergraph"
)

// fenceTimeout bounds how long RecordFrame waits for the GPU.
const fenceTimeout = 5 * time.Second

// RecordFrame compiles g if needed, records it into a fresh command
// buffer, submits it and waits for completion.
//
// The graph is not reset; callers call g.Reset before declaring the next
// frame.
func (d *Device) RecordFrame(g *rendergraph.RenderGraph) error {
	if d.queue == nil {
		return ErrNilQueue
	}
	if err := g.Compile(); err != nil {
		return err
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: d.label + "_frame",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(d.label + "_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rec := NewRecorder(encoder)
	if err := g.Execute(rec); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("execute graph: %w", err)
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("wait for fence: %w", err)
	}
	if !ok {
		return ErrSubmitTimeout
	}

	rendergraph.Logger().Debug("native: frame submitted", "passes", len(g.Passes()))
	return nil
}
