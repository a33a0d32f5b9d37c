// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gl implements the backend device on OpenGL 3.3 core via go-gl.
//
// The host owns the context and the UI shader program; the device owns
// textures and one vertex array shared by all frames. A GL context must be
// current on the calling goroutine for every method. OpenGL has no separate
// sampler or binding objects at this level, so a binding is the texture
// plus the filter mode applied when it is bound.
package gl
