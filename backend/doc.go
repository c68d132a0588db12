// Package backend keeps a registry of device backends by name.
//
// Backend packages register themselves from init:
//
//	import _ "github.com/gogpu/rendergraph/backend/native"
//
//	dev, release, err := backend.Open("noop")
package backend
