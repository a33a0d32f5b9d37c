// Package backend defines the capability interface between the texture
// registry and a concrete graphics API.
//
// A Device hands out opaque uint64 handles for the two object kinds the
// registry tracks: texture resources (image + view) and binding objects
// (descriptor set, bind group, or texture/sampler pair, depending on the
// API). Handles are arena indices, never raw pointers, so stale handles can
// be rejected cheaply without dereferencing anything backend-specific.
//
// Devices register themselves by name via Register, typically from an init
// function, and are selected with Get or Default. Backends that need a
// host-supplied native device (WebGPU, Vulkan, OpenGL contexts) are
// constructed directly by their own packages instead; the name registry then
// only lists the self-initializing ones, such as the software device.
package backend
