package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/rendergraph"
)

// ErrUnknownBackend is returned by Open for a name nothing registered.
var ErrUnknownBackend = errors.New("backend: unknown backend")

// Device is a rendergraph device that can also record and submit a whole
// frame.
type Device interface {
	rendergraph.Device
	RecordFrame(g *rendergraph.RenderGraph) error
}

// Factory opens a device. The returned function releases it.
type Factory func() (Device, func(), error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes factory available under name, replacing any earlier
// registration. Backend packages call it from init, so importing a backend
// for its side effect is enough to make it selectable.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// Unregister forgets name.
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether Open(name) would find a factory.
func IsRegistered(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open runs the factory registered under name. The error for an unknown
// name wraps ErrUnknownBackend and lists what is available.
func Open(name string) (Device, func(), error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownBackend, name, Available())
	}
	return factory()
}
