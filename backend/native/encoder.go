// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gogpu/gpu/types"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

// Mesh is one uploaded vertex/index buffer pair.
type Mesh struct {
	Vertices    types.Buffer
	Indices     types.Buffer
	VertexCount uint32
	IndexCount  uint32
}

// Draw is one recorded draw command. Mesh indexes into Frame.Meshes; Clip
// is x, y, w, h in framebuffer pixels.
type Draw struct {
	Mesh         int
	BindGroup    types.BindGroup
	HasBindGroup bool
	Clip         [4]uint32
	IndexCount   uint32
	IndexOffset  uint32
	VertexOffset uint32
}

// Frame is one recorded frame: the host's Submit callback encodes a render
// pass from it. The mesh buffers stay valid until the device's next
// BeginFrame.
type Frame struct {
	Width  uint32
	Height uint32
	Meshes []Mesh
	Draws  []Draw
}

// frameEncoder records draws into a Frame.
type frameEncoder struct {
	dev   *Device
	rec   *Frame
	clip  [4]uint32
	mesh  int
	group types.BindGroup
	bound bool
	done  bool
}

// UploadMesh writes one draw list's vertices and indices into fresh GPU
// buffers and makes them the current mesh.
func (e *frameEncoder) UploadMesh(vertices []uidraw.DrawVert, indices []uint16) error {
	if e.done {
		return backend.ErrNotInitialized
	}
	if len(vertices) == 0 || len(indices) == 0 {
		return fmt.Errorf("native: upload mesh: empty mesh (%d vertices, %d indices)", len(vertices), len(indices))
	}
	const vertSize = int(unsafe.Sizeof(uidraw.DrawVert{}))
	vdata := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*vertSize)
	idata := unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*2)

	d := e.dev
	vbuf, err := d.cfg.Backend.CreateBuffer(d.cfg.Device, &types.BufferDescriptor{
		Label: "uidraw vertices",
		Size:  uint64(len(vdata)),
		Usage: types.BufferUsageVertex | types.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("native: create vertex buffer: %w", err)
	}
	ibuf, err := d.cfg.Backend.CreateBuffer(d.cfg.Device, &types.BufferDescriptor{
		Label: "uidraw indices",
		Size:  uint64(len(idata)),
		Usage: types.BufferUsageIndex | types.BufferUsageCopyDst,
	})
	if err != nil {
		d.cfg.Backend.ReleaseBuffer(vbuf)
		return fmt.Errorf("native: create index buffer: %w", err)
	}
	d.cfg.Backend.WriteBuffer(d.cfg.Queue, vbuf, 0, vdata)
	d.cfg.Backend.WriteBuffer(d.cfg.Queue, ibuf, 0, idata)
	d.retired = append(d.retired, vbuf, ibuf)

	e.rec.Meshes = append(e.rec.Meshes, Mesh{
		Vertices:    vbuf,
		Indices:     ibuf,
		VertexCount: uint32(len(vertices)),
		IndexCount:  uint32(len(indices)),
	})
	e.mesh = len(e.rec.Meshes) - 1
	return nil
}

// SetBinding selects the bind group for subsequent draws. Unknown or nil
// handles leave the previous group selected.
func (e *frameEncoder) SetBinding(b backend.BindingHandle) {
	bg, ok := e.dev.bindings[b]
	if !ok {
		return
	}
	e.group = bg
	e.bound = true
}

// SetClip sets the scissor rectangle in framebuffer pixels.
func (e *frameEncoder) SetClip(x, y, w, h uint32) {
	e.clip = [4]uint32{x, y, w, h}
}

// Draw records one indexed draw into the current mesh. Draws before any
// mesh upload are dropped.
func (e *frameEncoder) Draw(indexCount, indexOffset, vertexOffset uint32) {
	if e.mesh < 0 {
		return
	}
	e.rec.Draws = append(e.rec.Draws, Draw{
		Mesh:         e.mesh,
		BindGroup:    e.group,
		HasBindGroup: e.bound,
		Clip:         e.clip,
		IndexCount:   indexCount,
		IndexOffset:  indexOffset,
		VertexOffset: vertexOffset,
	})
}

// End hands the recorded frame to the host.
func (e *frameEncoder) End() error {
	if e.done {
		return backend.ErrNotInitialized
	}
	e.done = true
	e.dev.frame = nil
	if e.dev.cfg.Submit == nil {
		return ErrNoSubmit
	}
	if err := e.dev.cfg.Submit(e.rec); err != nil {
		return fmt.Errorf("native: submit frame: %w", err)
	}
	return nil
}
