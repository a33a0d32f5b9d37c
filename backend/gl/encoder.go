// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

const vertexSize = int(unsafe.Sizeof(uidraw.DrawVert{}))

// frameEncoder issues draws through the device's shared vertex array.
// SetClip flips Y because GL's scissor origin is the bottom-left corner.
type frameEncoder struct {
	dev      *Device
	fbHeight uint32
	filter   int32
	done     bool
}

// UploadMesh replaces the shared vertex and index buffer contents with one
// draw list's mesh.
func (e *frameEncoder) UploadMesh(vertices []uidraw.DrawVert, indices []uint16) error {
	if e.done {
		return backend.ErrNotInitialized
	}
	if len(vertices) == 0 || len(indices) == 0 {
		return fmt.Errorf("gl: upload mesh: empty mesh (%d vertices, %d indices)", len(vertices), len(indices))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, e.dev.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*vertexSize, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, e.dev.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, gl.Ptr(indices), gl.DYNAMIC_DRAW)
	return nil
}

// SetBinding binds the texture and applies its filter mode. Unknown or nil
// handles leave the previous texture bound.
func (e *frameEncoder) SetBinding(b backend.BindingHandle) {
	bind, ok := e.dev.bindings[b]
	if !ok {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, bind.tex)
	if bind.filter != e.filter {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, bind.filter)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, bind.filter)
		e.filter = bind.filter
	}
}

// SetClip sets the scissor rectangle, converting from top-left to GL's
// bottom-left origin.
func (e *frameEncoder) SetClip(x, y, w, h uint32) {
	glY := int32(e.fbHeight) - int32(y+h)
	gl.Scissor(int32(x), glY, int32(w), int32(h))
}

// Draw issues one indexed draw into the current mesh.
func (e *frameEncoder) Draw(indexCount, indexOffset, vertexOffset uint32) {
	gl.DrawElementsBaseVertex(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_SHORT,
		gl.PtrOffset(int(indexOffset)*2), int32(vertexOffset))
}

// End restores the scissor and vertex array state.
func (e *frameEncoder) End() error {
	if e.done {
		return backend.ErrNotInitialized
	}
	e.done = true
	e.dev.frame = nil
	gl.Disable(gl.SCISSOR_TEST)
	gl.BindVertexArray(0)
	return nil
}
