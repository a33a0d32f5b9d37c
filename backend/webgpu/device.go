// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package webgpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

// ErrNoFrameSource is returned by BeginFrame when the Config has no
// AcquireFrame callback.
var ErrNoFrameSource = errors.New("webgpu: no AcquireFrame configured")

// Config carries the host-owned WebGPU objects the device works against.
type Config struct {
	// Device is the wgpu device all objects are created on.
	Device *wgpu.Device

	// Queue receives texture writes.
	Queue *wgpu.Queue

	// AcquireFrame is called by BeginFrame. It returns a render pass
	// encoder with the UI pipeline already set. Required for drawing;
	// texture upload works without it.
	AcquireFrame func(width, height uint32) (*wgpu.RenderPassEncoder, error)

	// SubmitFrame is called by the encoder's End after recording. May be
	// nil when the host ends the pass and submits itself.
	SubmitFrame func() error
}

type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	width   uint32
	height  uint32
}

// Device implements backend.Device on a host-owned wgpu device.
type Device struct {
	cfg Config

	// layout is the bind group layout all bind groups are created
	// against: sampled texture at binding 0, sampler at binding 1, both
	// fragment-visible. Created on first use.
	layout          *wgpu.BindGroupLayout
	layoutFiltering bool

	// defSampler holds the lazily created default samplers, indexed by
	// filtering mode (0 nearest, 1 linear).
	defSampler [2]*wgpu.Sampler

	resources map[backend.ResourceHandle]*wgpuTexture
	samplers  map[backend.SamplerHandle]*wgpu.Sampler
	bindings  map[backend.BindingHandle]*wgpu.BindGroup
	next      uint64

	frame *frameEncoder
	// retired holds the previous frame's mesh buffers, released on the
	// next BeginFrame once the host has consumed the frame.
	retired []*wgpu.Buffer

	closed bool
}

// New creates a Device on the host's wgpu device and queue.
func New(cfg Config) (*Device, error) {
	if cfg.Device == nil || cfg.Queue == nil {
		return nil, errors.New("webgpu: Config needs a Device and a Queue")
	}
	return &Device{
		cfg:       cfg,
		resources: make(map[backend.ResourceHandle]*wgpuTexture),
		samplers:  make(map[backend.SamplerHandle]*wgpu.Sampler),
		bindings:  make(map[backend.BindingHandle]*wgpu.BindGroup),
	}, nil
}

// Name returns the backend identifier.
func (d *Device) Name() string { return backend.NameWebGPU }

func (d *Device) handle() uint64 {
	d.next++
	return d.next
}

// BindGroupLayout returns the layout bind groups are created against,
// creating it with the given filter mode on first call. Hosts use it to
// build the UI pipeline layout.
func (d *Device) BindGroupLayout(layout backend.BindingLayout) (*wgpu.BindGroupLayout, error) {
	if d.layout != nil {
		return d.layout, nil
	}
	samplerType := wgpu.SamplerBindingTypeNonFiltering
	if layout.Filtering {
		samplerType = wgpu.SamplerBindingTypeFiltering
	}
	bgl, err := d.cfg.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: layout.Label,
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: samplerType},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create bind group layout: %w", err)
	}
	d.layout = bgl
	d.layoutFiltering = layout.Filtering
	return bgl, nil
}

// CreateResource creates an RGBA8 texture and writes the initial pixels.
func (d *Device) CreateResource(desc backend.TextureDescriptor, pixels []byte) (backend.ResourceHandle, error) {
	if d.closed {
		return backend.NilResource, backend.ErrNotInitialized
	}
	if desc.Width == 0 || desc.Height == 0 {
		return backend.NilResource, fmt.Errorf("webgpu: create resource: zero size %dx%d", desc.Width, desc.Height)
	}
	t, err := d.cfg.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return backend.NilResource, fmt.Errorf("webgpu: create texture: %w", err)
	}
	view, err := t.CreateView(nil)
	if err != nil {
		t.Release()
		return backend.NilResource, fmt.Errorf("webgpu: create texture view: %w", err)
	}
	res := &wgpuTexture{texture: t, view: view, width: desc.Width, height: desc.Height}
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
		return fmt.Errorf("webgpu: update resource %d: %w", h, backend.ErrUnknownHandle)
	}
	if r.Empty() || r.X < 0 || r.Y < 0 || r.X+r.W > int(res.width) || r.Y+r.H > int(res.height) {
		return fmt.Errorf("webgpu: update resource %d: rect %+v outside %dx%d", h, r, res.width, res.height)
	}
	if len(pixels) < r.W*r.H*4 {
		return fmt.Errorf("webgpu: update resource %d: %d pixel bytes for %dx%d rect", h, len(pixels), r.W, r.H)
	}
	d.write(res, r, pixels)
	return nil
}

func (d *Device) write(res *wgpuTexture, r uidraw.Rect, pixels []byte) {
	d.cfg.Queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Aspect:   wgpu.TextureAspectAll,
			Texture:  res.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: uint32(r.X), Y: uint32(r.Y)},
		},
		pixels[:r.W*r.H*4],
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  4 * uint32(r.W),
			RowsPerImage: uint32(r.H),
		},
		&wgpu.Extent3D{
			Width:              uint32(r.W),
			Height:             uint32(r.H),
			DepthOrArrayLayers: 1,
		},
	)
}

// DestroyResource releases the texture and its view. Unknown handles are a
// no-op.
func (d *Device) DestroyResource(h backend.ResourceHandle) {
	res, ok := d.resources[h]
	if !ok {
		return
	}
	delete(d.resources, h)
	res.view.Release()
	res.texture.Release()
}

// CreateSampler creates a clamp-to-edge sampler with the layout's filter
// mode.
func (d *Device) CreateSampler(layout backend.BindingLayout) (backend.SamplerHandle, error) {
	if d.closed {
		return backend.NilSampler, backend.ErrNotInitialized
	}
	s, err := d.newSampler(layout)
	if err != nil {
		return backend.NilSampler, err
	}
	h := backend.SamplerHandle(d.handle())
	d.samplers[h] = s
	return h, nil
}

func (d *Device) newSampler(layout backend.BindingLayout) (*wgpu.Sampler, error) {
	filter := wgpu.FilterModeNearest
	if layout.Filtering {
		filter = wgpu.FilterModeLinear
	}
	s, err := d.cfg.Device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:          layout.Label,
		AddressModeU:   wgpu.AddressModeClampToEdge,
		AddressModeV:   wgpu.AddressModeClampToEdge,
		AddressModeW:   wgpu.AddressModeClampToEdge,
		MagFilter:      filter,
		MinFilter:      filter,
		MipmapFilter:   wgpu.MipmapFilterModeNearest,
		MaxAnisotropy:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: create sampler: %w", err)
	}
	return s, nil
}

// DestroySampler releases a sampler. NilSampler and unknown handles are a
// no-op.
func (d *Device) DestroySampler(s backend.SamplerHandle) {
	ws, ok := d.samplers[s]
	if !ok {
		return
	}
	delete(d.samplers, s)
	ws.Release()
}

// CreateBinding builds a bind group referencing the texture view and the
// sampler against the device's layout.
func (d *Device) CreateBinding(h backend.ResourceHandle, s backend.SamplerHandle, layout backend.BindingLayout) (backend.BindingHandle, error) {
	if d.closed {
		return backend.NilBinding, backend.ErrNotInitialized
	}
	res, ok := d.resources[h]
	if !ok {
		return backend.NilBinding, fmt.Errorf("webgpu: bind resource %d: %w", h, backend.ErrUnknownHandle)
	}
	sampler, err := d.resolveSampler(s, layout)
	if err != nil {
		return backend.NilBinding, err
	}
	bgl, err := d.BindGroupLayout(layout)
	if err != nil {
		return backend.NilBinding, err
	}
	bg, err := d.cfg.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  layout.Label,
		Layout: bgl,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding:     0,
				TextureView: res.view,
			},
			{
				Binding: 1,
				Sampler: sampler,
			},
		},
	})
	if err != nil {
		return backend.NilBinding, fmt.Errorf("webgpu: create bind group: %w", err)
	}
	b := backend.BindingHandle(d.handle())
	d.bindings[b] = bg
	return b, nil
}

func (d *Device) resolveSampler(s backend.SamplerHandle, layout backend.BindingLayout) (*wgpu.Sampler, error) {
	if s != backend.NilSampler {
		ws, ok := d.samplers[s]
		if !ok {
			return nil, fmt.Errorf("webgpu: sampler %d: %w", s, backend.ErrUnknownHandle)
		}
		return ws, nil
	}
	idx := 0
	if layout.Filtering {
		idx = 1
	}
	if d.defSampler[idx] == nil {
		ws, err := d.newSampler(layout)
		if err != nil {
			return nil, err
		}
		d.defSampler[idx] = ws
	}
	return d.defSampler[idx], nil
}

// DestroyBinding releases a bind group. Unknown handles are a no-op.
func (d *Device) DestroyBinding(b backend.BindingHandle) {
	bg, ok := d.bindings[b]
	if !ok {
		return
	}
	delete(d.bindings, b)
	bg.Release()
}

// BeginFrame acquires the host's render pass and opens a draw encoder
// recording into it.
func (d *Device) BeginFrame(width, height uint32) (backend.DrawEncoder, error) {
	if d.closed {
		return nil, backend.ErrNotInitialized
	}
	if d.frame != nil {
		return nil, backend.ErrFrameActive
	}
	if d.cfg.AcquireFrame == nil {
		return nil, ErrNoFrameSource
	}
	d.releaseRetired()
	rp, err := d.cfg.AcquireFrame(width, height)
	if err != nil {
		return nil, fmt.Errorf("webgpu: acquire frame: %w", err)
	}
	d.frame = &frameEncoder{dev: d, pass: rp}
	return d.frame, nil
}

func (d *Device) releaseRetired() {
	for _, buf := range d.retired {
		buf.Release()
	}
	d.retired = nil
}

// Close releases everything the device created. The host's Device and
// Queue are left alone.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.frame = nil
	d.releaseRetired()
	for _, bg := range d.bindings {
		bg.Release()
	}
	d.bindings = map[backend.BindingHandle]*wgpu.BindGroup{}
	for _, res := range d.resources {
		res.view.Release()
		res.texture.Release()
	}
	d.resources = map[backend.ResourceHandle]*wgpuTexture{}
	for _, s := range d.samplers {
		s.Release()
	}
	d.samplers = map[backend.SamplerHandle]*wgpu.Sampler{}
	for i, s := range d.defSampler {
		if s != nil {
			s.Release()
			d.defSampler[i] = nil
		}
	}
	if d.layout != nil {
		d.layout.Release()
		d.layout = nil
	}
}
