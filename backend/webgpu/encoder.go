// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

// frameEncoder records UI draw commands into the host's render pass. Mesh
// buffers created during the frame are retired on the next BeginFrame,
// after the host has submitted the pass that reads them.
type frameEncoder struct {
	dev  *Device
	pass *wgpu.RenderPassEncoder
	done bool
}

// UploadMesh stages one draw list's vertices and indices and binds them to
// the pass.
func (e *frameEncoder) UploadMesh(vertices []uidraw.DrawVert, indices []uint16) error {
	if e.done {
		return backend.ErrNotInitialized
	}
	if len(vertices) == 0 || len(indices) == 0 {
		return fmt.Errorf("webgpu: upload mesh: empty mesh (%d vertices, %d indices)", len(vertices), len(indices))
	}
	const vertSize = int(unsafe.Sizeof(uidraw.DrawVert{}))
	vdata := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*vertSize)
	idata := unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*2)

	vbuf, err := e.dev.cfg.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "uidraw vertices",
		Contents: vdata,
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return fmt.Errorf("webgpu: create vertex buffer: %w", err)
	}
	ibuf, err := e.dev.cfg.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "uidraw indices",
		Contents: idata,
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vbuf.Release()
		return fmt.Errorf("webgpu: create index buffer: %w", err)
	}
	e.dev.retired = append(e.dev.retired, vbuf, ibuf)

	e.pass.SetVertexBuffer(0, vbuf, 0, wgpu.WholeSize)
	e.pass.SetIndexBuffer(ibuf, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
	return nil
}

// SetBinding binds the bind group for subsequent draws. Unknown or nil
// handles leave the previous group bound.
func (e *frameEncoder) SetBinding(b backend.BindingHandle) {
	bg, ok := e.dev.bindings[b]
	if !ok {
		return
	}
	e.pass.SetBindGroup(0, bg, nil)
}

// SetClip sets the scissor rectangle in framebuffer pixels.
func (e *frameEncoder) SetClip(x, y, w, h uint32) {
	e.pass.SetScissorRect(x, y, w, h)
}

// Draw issues one indexed draw into the current mesh.
func (e *frameEncoder) Draw(indexCount, indexOffset, vertexOffset uint32) {
	e.pass.DrawIndexed(indexCount, 1, indexOffset, int32(vertexOffset), 0)
}

// End hands the frame back to the host.
func (e *frameEncoder) End() error {
	if e.done {
		return backend.ErrNotInitialized
	}
	e.done = true
	e.dev.frame = nil
	if e.dev.cfg.SubmitFrame != nil {
		if err := e.dev.cfg.SubmitFrame(); err != nil {
			return fmt.Errorf("webgpu: submit frame: %w", err)
		}
	}
	return nil
}
