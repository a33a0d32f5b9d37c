// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gogpu/gpu"
	"github.com/gogpu/gogpu/gpu/types"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

// ErrNoSubmit is returned by the encoder's End when the Config has no
// Submit callback.
var ErrNoSubmit = errors.New("native: no Submit configured")

// Config carries the host-owned gogpu handles the device works against.
type Config struct {
	// Backend is the gpu.Backend implementation (wgpu-native or pure Go).
	Backend gpu.Backend

	// Device is the logical device all objects are created on.
	Device types.Device

	// Queue receives texture and buffer writes.
	Queue types.Queue

	// Submit receives the recorded frame after End. The host encodes the
	// actual render pass from it. The frame's buffers stay valid until
	// the next BeginFrame.
	Submit func(*Frame) error
}

type nativeTexture struct {
	texture types.Texture
	width   uint32
	height  uint32
}

// Device implements backend.Device on gpu.Backend.
type Device struct {
	cfg Config

	layout    types.BindGroupLayout
	hasLayout bool

	resources map[backend.ResourceHandle]*nativeTexture
	bindings  map[backend.BindingHandle]types.BindGroup
	next      uint64

	frame *frameEncoder
	// retired holds the previous frame's mesh buffers, released on the
	// next BeginFrame once the host has consumed the frame.
	retired []types.Buffer

	closed bool
}

// New creates a Device on the host's gpu.Backend, device, and queue.
func New(cfg Config) (*Device, error) {
	if cfg.Backend == nil {
		return nil, errors.New("native: Config needs a Backend")
	}
	return &Device{
		cfg:       cfg,
		resources: make(map[backend.ResourceHandle]*nativeTexture),
		bindings:  make(map[backend.BindingHandle]types.BindGroup),
	}, nil
}

// Name returns the backend identifier.
func (d *Device) Name() string { return backend.NameNative }

func (d *Device) handle() uint64 {
	d.next++
	return d.next
}

// CreateResource creates an RGBA8 texture and writes the initial pixels.
func (d *Device) CreateResource(desc backend.TextureDescriptor, pixels []byte) (backend.ResourceHandle, error) {
	if d.closed {
		return backend.NilResource, backend.ErrNotInitialized
	}
	if desc.Width == 0 || desc.Height == 0 {
		return backend.NilResource, fmt.Errorf("native: create resource: zero size %dx%d", desc.Width, desc.Height)
	}
	tex, err := d.cfg.Backend.CreateTexture(d.cfg.Device, &types.TextureDescriptor{
		Label: desc.Label,
		Size: types.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     types.TextureDimension2D,
		Format:        types.TextureFormatRGBA8Unorm,
		Usage:         types.TextureUsageTextureBinding | types.TextureUsageCopyDst,
	})
	if err != nil {
		return backend.NilResource, fmt.Errorf("native: create texture: %w", err)
	}
	res := &nativeTexture{texture: tex, width: desc.Width, height: desc.Height}
	if pixels != nil {
		d.write(res, uidraw.Rect{W: int(desc.Width), H: int(desc.Height)}, pixels)
	}
	h := backend.ResourceHandle(d.handle())
	d.resources[h] = res
	return h, nil
}

// UpdateResource writes one dirty rectangle of pixels into the texture.
func (d *Device) UpdateResource(h backend.ResourceHandle, r uidraw.Rect, pixels []byte) error {
	if d.closed {
		return backend.ErrNotInitialized
	}
	res, ok := d.resources[h]
	if !ok {
		return fmt.Errorf("native: update resource %d: %w", h, backend.ErrUnknownHandle)
	}
	if r.Empty() || r.X < 0 || r.Y < 0 || r.X+r.W > int(res.width) || r.Y+r.H > int(res.height) {
		return fmt.Errorf("native: update resource %d: rect %+v outside %dx%d", h, r, res.width, res.height)
	}
	if len(pixels) < r.W*r.H*4 {
		return fmt.Errorf("native: update resource %d: %d pixel bytes for %dx%d rect", h, len(pixels), r.W, r.H)
	}
	d.write(res, r, pixels)
	return nil
}

func (d *Device) write(res *nativeTexture, r uidraw.Rect, pixels []byte) {
	dst := &types.ImageCopyTexture{
		Texture:  res.texture,
		MipLevel: 0,
		Origin:   types.Origin3D{X: uint32(r.X), Y: uint32(r.Y), Z: 0},
		Aspect:   types.TextureAspectAll,
	}
	layout := &types.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  4 * uint32(r.W),
		RowsPerImage: uint32(r.H),
	}
	size := &types.Extent3D{
		Width:              uint32(r.W),
		Height:             uint32(r.H),
		DepthOrArrayLayers: 1,
	}
	d.cfg.Backend.WriteTexture(d.cfg.Queue, dst, pixels[:r.W*r.H*4], layout, size)
}

// DestroyResource releases the texture. Unknown handles are a no-op.
func (d *Device) DestroyResource(h backend.ResourceHandle) {
	res, ok := d.resources[h]
	if !ok {
		return
	}
	delete(d.resources, h)
	d.cfg.Backend.ReleaseTexture(res.texture)
}

// CreateSampler returns NilSampler: gpu.Backend has no sampler objects and
// filtering is fixed by the host's pipeline.
func (d *Device) CreateSampler(layout backend.BindingLayout) (backend.SamplerHandle, error) {
	if d.closed {
		return backend.NilSampler, backend.ErrNotInitialized
	}
	return backend.NilSampler, nil
}

// DestroySampler is a no-op.
func (d *Device) DestroySampler(s backend.SamplerHandle) {}

// CreateBinding builds a bind group with the texture's view at binding 0.
func (d *Device) CreateBinding(h backend.ResourceHandle, s backend.SamplerHandle, layout backend.BindingLayout) (backend.BindingHandle, error) {
	if d.closed {
		return backend.NilBinding, backend.ErrNotInitialized
	}
	res, ok := d.resources[h]
	if !ok {
		return backend.NilBinding, fmt.Errorf("native: bind resource %d: %w", h, backend.ErrUnknownHandle)
	}
	bgl, err := d.bindGroupLayout(layout)
	if err != nil {
		return backend.NilBinding, err
	}
	view := d.cfg.Backend.CreateTextureView(res.texture, nil)
	bg, err := d.cfg.Backend.CreateBindGroup(d.cfg.Device, &types.BindGroupDescriptor{
		Label:  layout.Label,
		Layout: bgl,
		Entries: []types.BindGroupEntry{{
			Binding:     0,
			TextureView: view,
		}},
	})
	if err != nil {
		return backend.NilBinding, fmt.Errorf("native: create bind group: %w", err)
	}
	b := backend.BindingHandle(d.handle())
	d.bindings[b] = bg
	return b, nil
}

// bindGroupLayout creates the shared layout on first use. The entry is
// declared by binding slot only; types.BindGroupLayoutEntry carries no
// texture binding layout yet.
func (d *Device) bindGroupLayout(layout backend.BindingLayout) (types.BindGroupLayout, error) {
	if d.hasLayout {
		return d.layout, nil
	}
	bgl, err := d.cfg.Backend.CreateBindGroupLayout(d.cfg.Device, &types.BindGroupLayoutDescriptor{
		Label: layout.Label,
		Entries: []types.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: types.ShaderStageFragment,
		}},
	})
	if err != nil {
		return bgl, fmt.Errorf("native: create bind group layout: %w", err)
	}
	d.layout = bgl
	d.hasLayout = true
	return bgl, nil
}

// DestroyBinding releases a bind group. Unknown handles are a no-op.
func (d *Device) DestroyBinding(b backend.BindingHandle) {
	bg, ok := d.bindings[b]
	if !ok {
		return
	}
	delete(d.bindings, b)
	d.cfg.Backend.ReleaseBindGroup(bg)
}

// BeginFrame opens an encoder recording into a fresh Frame.
func (d *Device) BeginFrame(width, height uint32) (backend.DrawEncoder, error) {
	if d.closed {
		return nil, backend.ErrNotInitialized
	}
	if d.frame != nil {
		return nil, backend.ErrFrameActive
	}
	d.releaseRetired()
	d.frame = &frameEncoder{
		dev:   d,
		rec:   &Frame{Width: width, Height: height},
		clip:  [4]uint32{0, 0, width, height},
		mesh:  -1,
		group: nil,
	}
	return d.frame, nil
}

func (d *Device) releaseRetired() {
	for _, buf := range d.retired {
		d.cfg.Backend.ReleaseBuffer(buf)
	}
	d.retired = nil
}

// Close releases everything the device created. Host-owned handles from
// the Config are left alone.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.frame = nil
	d.releaseRetired()
	for _, bg := range d.bindings {
		d.cfg.Backend.ReleaseBindGroup(bg)
	}
	d.bindings = map[backend.BindingHandle]types.BindGroup{}
	for _, res := range d.resources {
		d.cfg.Backend.ReleaseTexture(res.texture)
	}
	d.resources = map[backend.ResourceHandle]*nativeTexture{}
	if d.hasLayout {
		d.cfg.Backend.ReleaseBindGroupLayout(d.layout)
		d.hasLayout = false
	}
}
