// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

// frameEncoder records UI draw commands into the host's command buffer.
// Mesh buffers created during the frame stay alive until the next
// BeginFrame, since the GPU consumes them after End returns.
type frameEncoder struct {
	dev    *Device
	cmd    vk.CommandBuffer
	layout vk.PipelineLayout
	meshes []meshBuffer
	done   bool
}

// UploadMesh stages one draw list's vertices and indices in host-visible
// buffers and binds them.
func (e *frameEncoder) UploadMesh(vertices []uidraw.DrawVert, indices []uint16) error {
	if e.done {
		return backend.ErrNotInitialized
	}
	if len(vertices) == 0 || len(indices) == 0 {
		return fmt.Errorf("vulkan: upload mesh: empty mesh (%d vertices, %d indices)", len(vertices), len(indices))
	}
	const vertSize = int(unsafe.Sizeof(uidraw.DrawVert{}))
	vdata := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*vertSize)
	idata := unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*2)

	vbuf, err := e.dev.newHostBuffer(vdata, vk.BufferUsageVertexBufferBit)
	if err != nil {
		return err
	}
	ibuf, err := e.dev.newHostBuffer(idata, vk.BufferUsageIndexBufferBit)
	if err != nil {
		vk.DestroyBuffer(e.dev.cfg.Device, vbuf.buf, nil)
		vk.FreeMemory(e.dev.cfg.Device, vbuf.mem, nil)
		return err
	}
	e.meshes = append(e.meshes, vbuf, ibuf)

	offsets := []vk.DeviceSize{0}
	vk.CmdBindVertexBuffers(e.cmd, 0, 1, []vk.Buffer{vbuf.buf}, offsets)
	vk.CmdBindIndexBuffer(e.cmd, ibuf.buf, 0, vk.IndexTypeUint16)
	return nil
}

// SetBinding binds the descriptor set for subsequent draws. Unknown or nil
// handles leave the previous set bound.
func (e *frameEncoder) SetBinding(b backend.BindingHandle) {
	set, ok := e.dev.bindings[b]
	if !ok {
		return
	}
	vk.CmdBindDescriptorSets(e.cmd, vk.PipelineBindPointGraphics, e.layout, 0, 1,
		[]vk.DescriptorSet{set}, 0, nil)
}

// SetClip sets the scissor rectangle in framebuffer pixels.
func (e *frameEncoder) SetClip(x, y, w, h uint32) {
	vk.CmdSetScissor(e.cmd, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: int32(x), Y: int32(y)},
		Extent: vk.Extent2D{Width: w, Height: h},
	}})
}

// Draw issues one indexed draw into the current mesh.
func (e *frameEncoder) Draw(indexCount, indexOffset, vertexOffset uint32) {
	vk.CmdDrawIndexed(e.cmd, indexCount, 1, indexOffset, int32(vertexOffset), 0)
}

// End hands the frame back to the host and retires this frame's mesh
// buffers.
func (e *frameEncoder) End() error {
	if e.done {
		return backend.ErrNotInitialized
	}
	e.done = true
	e.dev.frame = nil
	e.dev.retired = append(e.dev.retired, e.meshes...)
	e.meshes = nil
	if e.dev.cfg.SubmitFrame != nil {
		if err := e.dev.cfg.SubmitFrame(); err != nil {
			return fmt.Errorf("vulkan: submit frame: %w", err)
		}
	}
	return nil
}
