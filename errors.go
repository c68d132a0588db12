package rendergraph

import "errors"

// Sentinel errors returned by the graph. Backends wrap device failures
// with %w so callers can match them using errors.Is.
var (
	// ErrNoPasses is returned by Compile when no pass has been declared.
	ErrNoPasses = errors.New("rendergraph: no passes declared")

	// ErrNotCompiled is returned by Execute before a successful Compile.
	ErrNotCompiled = errors.New("rendergraph: graph not compiled")

	// ErrNoMemoryType is returned by a Device when no memory type satisfies
	// an allocation. It aborts compilation.
	ErrNoMemoryType = errors.New("rendergraph: no suitable memory type")

	// ErrInvalidHandle is returned when a handle does not refer to a
	// declared resource.
	ErrInvalidHandle = errors.New("rendergraph: invalid handle")

	// ErrShutdown is returned by operations on a graph after Shutdown.
	ErrShutdown = errors.New("rendergraph: graph is shut down")
)
