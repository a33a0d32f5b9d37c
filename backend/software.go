package backend

import (
	"fmt"

	"github.com/gogpu/uidraw"
)

// SoftwareDevice is an in-memory Device. It keeps pixel data on the CPU and
// records every destroy and draw call, which makes it both the headless
// fallback and the instrument the package tests observe backend traffic
// with.
type SoftwareDevice struct {
	nextHandle uint64

	resources map[ResourceHandle]*softResource
	samplers  map[SamplerHandle]BindingLayout
	bindings  map[BindingHandle]softBinding

	// destroyedResources records each DestroyResource call on a live
	// handle, in order.
	destroyedResources []ResourceHandle

	frame  *SoftwareFrame
	closed bool
}

type softResource struct {
	desc   TextureDescriptor
	pixels []byte
}

type softBinding struct {
	resource ResourceHandle
	sampler  SamplerHandle
}

// SoftwareDraw is one recorded draw call.
type SoftwareDraw struct {
	Binding      BindingHandle
	Clip         [4]uint32
	IndexCount   uint32
	IndexOffset  uint32
	VertexOffset uint32
}

// SoftwareFrame records one frame's encoder traffic.
type SoftwareFrame struct {
	Width, Height uint32
	Meshes        int
	Draws         []SoftwareDraw
	Ended         bool

	dev        *SoftwareDevice
	curBinding BindingHandle
	curClip    [4]uint32
}

// init registers the software device on package import.
func init() {
	Register(NameSoftware, func() (Device, error) {
		return NewSoftwareDevice(), nil
	})
}

// NewSoftwareDevice creates an in-memory device.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{
		resources: make(map[ResourceHandle]*softResource),
		samplers:  make(map[SamplerHandle]BindingLayout),
		bindings:  make(map[BindingHandle]softBinding),
	}
}

// Name returns the backend identifier.
func (d *SoftwareDevice) Name() string { return NameSoftware }

func (d *SoftwareDevice) next() uint64 {
	d.nextHandle++
	return d.nextHandle
}

// CreateResource stores the pixels in CPU memory.
func (d *SoftwareDevice) CreateResource(desc TextureDescriptor, pixels []byte) (ResourceHandle, error) {
	if d.closed {
		return NilResource, ErrNotInitialized
	}
	if desc.Width == 0 || desc.Height == 0 {
		return NilResource, fmt.Errorf("backend: texture dimensions must be positive, got %dx%d", desc.Width, desc.Height)
	}
	buf := make([]byte, desc.Width*desc.Height*4)
	copy(buf, pixels)
	h := ResourceHandle(d.next())
	d.resources[h] = &softResource{desc: desc, pixels: buf}
	return h, nil
}

// UpdateResource copies the sub-rectangle into the stored pixels.
func (d *SoftwareDevice) UpdateResource(h ResourceHandle, r uidraw.Rect, pixels []byte) error {
	res, ok := d.resources[h]
	if !ok {
		return ErrUnknownHandle
	}
	w, ht := int(res.desc.Width), int(res.desc.Height)
	if r.Empty() || r.X < 0 || r.Y < 0 || r.X+r.W > w || r.Y+r.H > ht {
		return fmt.Errorf("backend: update rect %+v outside %dx%d texture", r, w, ht)
	}
	for row := 0; row < r.H; row++ {
		src := row * r.W * 4
		dst := ((r.Y+row)*w + r.X) * 4
		copy(res.pixels[dst:dst+r.W*4], pixels[src:src+r.W*4])
	}
	return nil
}

// DestroyResource drops the stored pixels and records the call.
func (d *SoftwareDevice) DestroyResource(h ResourceHandle) {
	if _, ok := d.resources[h]; !ok {
		return
	}
	delete(d.resources, h)
	d.destroyedResources = append(d.destroyedResources, h)
}

// CreateSampler records the layout's filtering mode.
func (d *SoftwareDevice) CreateSampler(layout BindingLayout) (SamplerHandle, error) {
	if d.closed {
		return NilSampler, ErrNotInitialized
	}
	s := SamplerHandle(d.next())
	d.samplers[s] = layout
	return s, nil
}

// DestroySampler drops a sampler record.
func (d *SoftwareDevice) DestroySampler(s SamplerHandle) {
	delete(d.samplers, s)
}

// CreateBinding pairs a live resource with a sampler.
func (d *SoftwareDevice) CreateBinding(h ResourceHandle, s SamplerHandle, layout BindingLayout) (BindingHandle, error) {
	if _, ok := d.resources[h]; !ok {
		return NilBinding, ErrUnknownHandle
	}
	b := BindingHandle(d.next())
	d.bindings[b] = softBinding{resource: h, sampler: s}
	return b, nil
}

// DestroyBinding drops a binding record.
func (d *SoftwareDevice) DestroyBinding(b BindingHandle) {
	delete(d.bindings, b)
}

// BeginFrame opens a recording encoder.
func (d *SoftwareDevice) BeginFrame(width, height uint32) (DrawEncoder, error) {
	if d.closed {
		return nil, ErrNotInitialized
	}
	if d.frame != nil && !d.frame.Ended {
		return nil, ErrFrameActive
	}
	d.frame = &SoftwareFrame{Width: width, Height: height, dev: d}
	return d.frame, nil
}

// Close drops all stored objects.
func (d *SoftwareDevice) Close() {
	d.resources = map[ResourceHandle]*softResource{}
	d.samplers = map[SamplerHandle]BindingLayout{}
	d.bindings = map[BindingHandle]softBinding{}
	d.closed = true
}

// ResourceCount returns the number of live resources.
func (d *SoftwareDevice) ResourceCount() int { return len(d.resources) }

// BindingCount returns the number of live binding objects.
func (d *SoftwareDevice) BindingCount() int { return len(d.bindings) }

// DestroyedResources returns every resource handle destroyed so far, in
// order. A handle appears once per effective destroy.
func (d *SoftwareDevice) DestroyedResources() []ResourceHandle { return d.destroyedResources }

// ResourcePixels returns a live resource's stored RGBA pixels, or nil.
func (d *SoftwareDevice) ResourcePixels(h ResourceHandle) []byte {
	if res, ok := d.resources[h]; ok {
		return res.pixels
	}
	return nil
}

// LastFrame returns the most recent frame recording, or nil.
func (d *SoftwareDevice) LastFrame() *SoftwareFrame { return d.frame }

// UploadMesh counts staged meshes.
func (f *SoftwareFrame) UploadMesh(vertices []uidraw.DrawVert, indices []uint16) error {
	if f.Ended {
		return ErrNotInitialized
	}
	f.Meshes++
	return nil
}

// SetBinding selects the binding for subsequent draws.
func (f *SoftwareFrame) SetBinding(b BindingHandle) { f.curBinding = b }

// SetClip sets the scissor rectangle.
func (f *SoftwareFrame) SetClip(x, y, w, h uint32) { f.curClip = [4]uint32{x, y, w, h} }

// Draw records one draw call.
func (f *SoftwareFrame) Draw(indexCount, indexOffset, vertexOffset uint32) {
	f.Draws = append(f.Draws, SoftwareDraw{
		Binding:      f.curBinding,
		Clip:         f.curClip,
		IndexCount:   indexCount,
		IndexOffset:  indexOffset,
		VertexOffset: vertexOffset,
	})
}

// End closes the frame.
func (f *SoftwareFrame) End() error {
	f.Ended = true
	return nil
}

// Ensure SoftwareDevice implements Device.
var _ Device = (*SoftwareDevice)(nil)
