// Package uidraw provides the texture lifecycle and display-list rendering
// layer for immediate-mode GUIs on top of pluggable graphics backends.
//
// # Overview
//
// An immediate-mode GUI library produces, every frame, a display list (draw
// commands plus vertex/index buffers) and a set of texture requests (create,
// update, destroy). uidraw consumes both: it owns the mapping from opaque
// texture identifiers to backend-native GPU resources, lazily materializes
// the backend binding objects (descriptor sets, bind groups) those draw
// commands need, and walks the display list issuing draws.
//
// The GUI layout engine itself and the raw graphics API calls are external
// collaborators. Backends implement the small capability interface in
// backend/; WebGPU, Vulkan, OpenGL, and a pure-Go software device are
// provided.
//
// # Quick Start
//
//	dev := backend.MustDefault()
//	r, err := render.New(dev)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// each frame: hand the GUI library's output to the renderer
//	if err := r.Render(drawData); err != nil {
//	    log.Fatal(err)
//	}
//
// # Architecture
//
// The library is organized into:
//   - Root package: identifiers, texture status protocol, display-list types
//   - registry: id -> resource bookkeeping and the binding cache
//   - backend: capability interface, handle arena conventions, software device
//   - backend/webgpu, backend/vulkan, backend/gl, backend/native: GPU devices
//   - render: the per-frame Uploading/Drawing state machine
//
// # Concurrency
//
// The renderer, registry, and cache are owned by a single goroutine for the
// lifetime of the application. No type in this module is safe for concurrent
// use unless its documentation says otherwise.
package uidraw

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
