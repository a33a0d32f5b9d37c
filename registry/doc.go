// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package registry maps opaque texture identifiers to backend-native GPU
// resources and lazily materializes the binding objects draw commands need.
//
// The Registry is pure id -> resource bookkeeping, written once against the
// backend capability interface; it distinguishes managed textures (the
// registry owns the GPU resource and destroys it on removal) from external
// ones (the host owns the resource, the registry only references it). All
// backend-specific object construction lives in the BindingCache, the only
// component aware of the concrete graphics API's binding layout.
//
// Identifier lookup misses are not errors: textures may legitimately be
// destroyed between frames that are still in flight, so unknown ids are
// no-ops on mutation and surface as ErrUnknownTexture only at binding
// resolution time, where the caller recovers by skipping the draw.
package registry
