// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render drives a backend device through one frame of UI draw
// data.
//
// A Renderer walks the frame in two passes. The upload pass services
// the texture requests carried on the draw data: textures asking to be
// created get a device resource and a registry entry, textures with
// pending dirty rectangles get sub-image updates, and textures asking
// to be destroyed are released once the frontend has stopped using
// them. The draw pass then encodes the draw lists, resolving each
// command's texture id to a binding through the shared cache.
//
// The renderer never trusts a texture id blindly. A command referring
// to an id the registry does not know is skipped rather than drawn
// with a stale binding, and the skip is counted for diagnostics. A
// fallback texture, when configured, stands in for the null id.
package render
