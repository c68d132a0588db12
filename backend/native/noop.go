// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/rendergraph/backend"
)

// NoopBackend is the registry name of the noop HAL device.
const NoopBackend = "noop"

func init() {
	backend.Register(NoopBackend, func() (backend.Device, func(), error) {
		return OpenNoop()
	})
}

// OpenNoop opens a Device on the noop HAL backend. Every GPU call
// succeeds without doing work, which is enough to plan and validate a
// graph. The returned function releases the device.
func OpenNoop() (*Device, func(), error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, errors.New("native: noop backend has no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("open noop adapter: %w", err)
	}
	release := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	dev, err := NewDevice(openDev.Device, openDev.Queue)
	if err != nil {
		release()
		return nil, nil, err
	}
	return dev, release, nil
}
