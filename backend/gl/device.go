// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

func init() {
	backend.Register(backend.NameGL, func() (backend.Device, error) {
		return New()
	})
}

type glTexture struct {
	id     uint32
	width  uint32
	height uint32
}

// glBinding pairs a texture with the filter mode applied when it is bound.
type glBinding struct {
	tex    uint32
	filter int32
}

// Device implements backend.Device on an OpenGL 3.3 core context. The
// context must be current when any method is called.
type Device struct {
	// samplers maps sampler handles to the GL filter constant they select.
	samplers map[backend.SamplerHandle]int32

	resources map[backend.ResourceHandle]*glTexture
	bindings  map[backend.BindingHandle]glBinding
	next      uint64

	vao uint32
	vbo uint32
	ebo uint32

	frame  *frameEncoder
	closed bool
}

// New initializes the GL function pointers and creates a Device. It fails
// when no GL context is current.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl: init: %w", err)
	}
	d := &Device{
		samplers:  make(map[backend.SamplerHandle]int32),
		resources: make(map[backend.ResourceHandle]*glTexture),
		bindings:  make(map[backend.BindingHandle]glBinding),
	}
	gl.GenVertexArrays(1, &d.vao)
	gl.GenBuffers(1, &d.vbo)
	gl.GenBuffers(1, &d.ebo)
	d.setupVertexArray()
	return d, nil
}

// setupVertexArray configures the shared vertex array for the UI vertex
// format: two floats position, two floats UV, four normalized color bytes.
func (d *Device) setupVertexArray() {
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.ebo)
	const stride = int32(vertexSize)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(8))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 4, gl.UNSIGNED_BYTE, true, stride, gl.PtrOffset(16))
	gl.BindVertexArray(0)
}

// Name returns the backend identifier.
func (d *Device) Name() string { return backend.NameGL }

func (d *Device) handle() uint64 {
	d.next++
	return d.next
}

// CreateResource creates an RGBA8 texture and uploads the initial pixels.
func (d *Device) CreateResource(desc backend.TextureDescriptor, pixels []byte) (backend.ResourceHandle, error) {
	if d.closed {
		return backend.NilResource, backend.ErrNotInitialized
	}
	if desc.Width == 0 || desc.Height == 0 {
		return backend.NilResource, fmt.Errorf("gl: create resource: zero size %dx%d", desc.Width, desc.Height)
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	if pixels != nil {
		if len(pixels) < int(desc.Width)*int(desc.Height)*4 {
			gl.DeleteTextures(1, &id)
			return backend.NilResource, fmt.Errorf("gl: create resource: %d pixel bytes for %dx%d", len(pixels), desc.Width, desc.Height)
		}
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(desc.Width), int32(desc.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	} else {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(desc.Width), int32(desc.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	}
	h := backend.ResourceHandle(d.handle())
	d.resources[h] = &glTexture{id: id, width: desc.Width, height: desc.Height}
	return h, nil
}

// UpdateResource uploads one dirty rectangle into the texture.
func (d *Device) UpdateResource(h backend.ResourceHandle, r uidraw.Rect, pixels []byte) error {
	if d.closed {
		return backend.ErrNotInitialized
	}
	t, ok := d.resources[h]
	if !ok {
		return fmt.Errorf("gl: update resource %d: %w", h, backend.ErrUnknownHandle)
	}
	if r.Empty() || r.X < 0 || r.Y < 0 || r.X+r.W > int(t.width) || r.Y+r.H > int(t.height) {
		return fmt.Errorf("gl: update resource %d: rect %+v outside %dx%d", h, r, t.width, t.height)
	}
	if len(pixels) < r.W*r.H*4 {
		return fmt.Errorf("gl: update resource %d: %d pixel bytes for %dx%d rect", h, len(pixels), r.W, r.H)
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(r.X), int32(r.Y), int32(r.W), int32(r.H), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return nil
}

// DestroyResource deletes the texture. Unknown handles are a no-op.
func (d *Device) DestroyResource(h backend.ResourceHandle) {
	t, ok := d.resources[h]
	if !ok {
		return
	}
	delete(d.resources, h)
	gl.DeleteTextures(1, &t.id)
}

// CreateSampler returns a handle selecting the layout's filter mode. GL 2D
// texture sampling state lives on the texture object, so the "sampler" is
// just the filter constant applied at bind time.
func (d *Device) CreateSampler(layout backend.BindingLayout) (backend.SamplerHandle, error) {
	if d.closed {
		return backend.NilSampler, backend.ErrNotInitialized
	}
	h := backend.SamplerHandle(d.handle())
	d.samplers[h] = filterMode(layout.Filtering)
	return h, nil
}

// DestroySampler forgets a sampler handle. NilSampler and unknown handles
// are a no-op.
func (d *Device) DestroySampler(s backend.SamplerHandle) {
	delete(d.samplers, s)
}

// CreateBinding records the texture and filter pair selected by subsequent
// SetBinding calls.
func (d *Device) CreateBinding(h backend.ResourceHandle, s backend.SamplerHandle, layout backend.BindingLayout) (backend.BindingHandle, error) {
	if d.closed {
		return backend.NilBinding, backend.ErrNotInitialized
	}
	t, ok := d.resources[h]
	if !ok {
		return backend.NilBinding, fmt.Errorf("gl: bind resource %d: %w", h, backend.ErrUnknownHandle)
	}
	filter := filterMode(layout.Filtering)
	if s != backend.NilSampler {
		f, ok := d.samplers[s]
		if !ok {
			return backend.NilBinding, fmt.Errorf("gl: sampler %d: %w", s, backend.ErrUnknownHandle)
		}
		filter = f
	}
	b := backend.BindingHandle(d.handle())
	d.bindings[b] = glBinding{tex: t.id, filter: filter}
	return b, nil
}

// DestroyBinding forgets a binding. Unknown handles are a no-op.
func (d *Device) DestroyBinding(b backend.BindingHandle) {
	delete(d.bindings, b)
}

// BeginFrame binds the shared vertex array and enables scissored, blended
// drawing. The host must have its UI program bound and the viewport set.
func (d *Device) BeginFrame(width, height uint32) (backend.DrawEncoder, error) {
	if d.closed {
		return nil, backend.ErrNotInitialized
	}
	if d.frame != nil {
		return nil, backend.ErrFrameActive
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)
	gl.BindVertexArray(d.vao)
	d.frame = &frameEncoder{dev: d, fbHeight: height}
	return d.frame, nil
}

// Close deletes all textures and the shared vertex array. The context must
// still be current.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.frame = nil
	for _, t := range d.resources {
		gl.DeleteTextures(1, &t.id)
	}
	d.resources = map[backend.ResourceHandle]*glTexture{}
	d.samplers = map[backend.SamplerHandle]int32{}
	d.bindings = map[backend.BindingHandle]glBinding{}
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
		d.vbo = 0
	}
	if d.ebo != 0 {
		gl.DeleteBuffers(1, &d.ebo)
		d.ebo = 0
	}
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func filterMode(filtering bool) int32 {
	if filtering {
		return gl.LINEAR
	}
	return gl.NEAREST
}
