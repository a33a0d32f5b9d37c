// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vulkan

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

// ErrNoFrameSource is returned by BeginFrame when the Config has no
// AcquireFrame callback.
var ErrNoFrameSource = errors.New("vulkan: no AcquireFrame configured")

const defaultMaxBindings = 256

// Config carries the host-owned Vulkan handles the device works against.
// The host retains ownership of all of them.
type Config struct {
	// PhysicalDevice is used to pick memory types for images and staging
	// buffers.
	PhysicalDevice vk.PhysicalDevice

	// Device is the logical device all objects are created on.
	Device vk.Device

	// Queue receives the one-time upload command buffers. It must support
	// transfer operations.
	Queue vk.Queue

	// QueueIndex is the family index Queue belongs to. The device's
	// command pool is created against it.
	QueueIndex uint32

	// MaxBindings caps the number of live descriptor sets. Zero selects a
	// default of 256.
	MaxBindings uint32

	// AcquireFrame is called by BeginFrame. It returns a command buffer in
	// the recording state, inside the host's render pass with the UI
	// pipeline bound, plus the pipeline layout descriptor sets are bound
	// against. Required for drawing; texture upload works without it.
	AcquireFrame func(width, height uint32) (vk.CommandBuffer, vk.PipelineLayout, error)

	// SubmitFrame is called by the encoder's End after recording. May be
	// nil when the host submits the command buffer itself.
	SubmitFrame func() error
}

// vkImage is one sampled texture: image, its memory, and the view the
// descriptor sets reference.
type vkImage struct {
	image  vk.Image
	memory vk.DeviceMemory
	view   vk.ImageView
	width  uint32
	height uint32
}

// meshBuffer is one host-visible vertex or index buffer uploaded for a
// frame.
type meshBuffer struct {
	buf vk.Buffer
	mem vk.DeviceMemory
}

// Device implements backend.Device on a host-owned Vulkan device.
//
// Descriptor sets are never freed individually: DestroyBinding parks the
// set on a free list and CreateBinding rewrites a parked set before
// allocating a fresh one, so the pool never fragments.
type Device struct {
	cfg  Config
	pool vk.CommandPool

	descLayout vk.DescriptorSetLayout
	descPool   vk.DescriptorPool
	freeSets   []vk.DescriptorSet

	// defSampler holds the lazily created default samplers, indexed by
	// filtering mode (0 nearest, 1 linear).
	defSampler [2]vk.Sampler

	resources map[backend.ResourceHandle]*vkImage
	samplers  map[backend.SamplerHandle]vk.Sampler
	bindings  map[backend.BindingHandle]vk.DescriptorSet
	next      uint64

	frame *frameEncoder
	// retired holds the previous frame's mesh buffers. They are released
	// on the next BeginFrame, by which point the host must have waited
	// for the frame that used them.
	retired []meshBuffer

	closed bool
}

// New creates a Device on the host's Vulkan handles.
func New(cfg Config) (*Device, error) {
	if cfg.MaxBindings == 0 {
		cfg.MaxBindings = defaultMaxBindings
	}
	d := &Device{
		cfg:       cfg,
		resources: make(map[backend.ResourceHandle]*vkImage),
		samplers:  make(map[backend.SamplerHandle]vk.Sampler),
		bindings:  make(map[backend.BindingHandle]vk.DescriptorSet),
	}
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(cfg.Device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: cfg.QueueIndex,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if ret != vk.Success {
		return nil, fmt.Errorf("vulkan: create command pool: %w", vk.Error(ret))
	}
	d.pool = pool
	return d, nil
}

// Name returns the backend identifier.
func (d *Device) Name() string { return backend.NameVulkan }

func (d *Device) handle() uint64 {
	d.next++
	return d.next
}

// CreateResource creates a sampled RGBA8 image, allocates device-local
// memory for it, and uploads the initial pixels through a staging buffer.
func (d *Device) CreateResource(desc backend.TextureDescriptor, pixels []byte) (backend.ResourceHandle, error) {
	if d.closed {
		return backend.NilResource, backend.ErrNotInitialized
	}
	if desc.Width == 0 || desc.Height == 0 {
		return backend.NilResource, fmt.Errorf("vulkan: create resource: zero size %dx%d", desc.Width, desc.Height)
	}

	var img vk.Image
	ret := vk.CreateImage(d.cfg.Device, &vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: vk.ImageType2d,
		Format:    vk.FormatR8g8b8a8Unorm,
		Extent: vk.Extent3D{
			Width:  desc.Width,
			Height: desc.Height,
			Depth:  1,
		},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         vk.ImageUsageFlags(vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit),
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img)
	if ret != vk.Success {
		return backend.NilResource, fmt.Errorf("vulkan: create image: %w", vk.Error(ret))
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.cfg.Device, img, &memReqs)
	memReqs.Deref()

	memType, err := d.findMemoryType(memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		vk.DestroyImage(d.cfg.Device, img, nil)
		return backend.NilResource, err
	}
	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(d.cfg.Device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &mem)
	if ret != vk.Success {
		vk.DestroyImage(d.cfg.Device, img, nil)
		return backend.NilResource, fmt.Errorf("vulkan: allocate image memory: %w", vk.Error(ret))
	}
	vk.BindImageMemory(d.cfg.Device, img, mem, 0)

	var view vk.ImageView
	ret = vk.CreateImageView(d.cfg.Device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: vk.ImageViewType2d,
		Format:   vk.FormatR8g8b8a8Unorm,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	if ret != vk.Success {
		vk.FreeMemory(d.cfg.Device, mem, nil)
		vk.DestroyImage(d.cfg.Device, img, nil)
		return backend.NilResource, fmt.Errorf("vulkan: create image view: %w", vk.Error(ret))
	}

	res := &vkImage{image: img, memory: mem, view: view, width: desc.Width, height: desc.Height}
	if pixels != nil {
		full := uidraw.Rect{W: int(desc.Width), H: int(desc.Height)}
		err = d.upload(res, full, pixels, vk.ImageLayoutUndefined)
	} else {
		// No pixels to write, but the image still has to leave the
		// undefined layout before it can be sampled.
		err = d.withOneTimeCommands(func(cmd vk.CommandBuffer) {
			transitionImage(cmd, img, vk.ImageLayoutUndefined, vk.ImageLayoutShaderReadOnlyOptimal)
		})
	}
	if err != nil {
		vk.DestroyImageView(d.cfg.Device, view, nil)
		vk.FreeMemory(d.cfg.Device, mem, nil)
		vk.DestroyImage(d.cfg.Device, img, nil)
		return backend.NilResource, err
	}

	h := backend.ResourceHandle(d.handle())
	d.resources[h] = res
	return h, nil
}

// UpdateResource uploads one dirty rectangle through a staging buffer. The
// image is moved back from the sampled layout for the copy and restored
// afterwards.
func (d *Device) UpdateResource(h backend.ResourceHandle, r uidraw.Rect, pixels []byte) error {
	if d.closed {
		return backend.ErrNotInitialized
	}
	res, ok := d.resources[h]
	if !ok {
		return fmt.Errorf("vulkan: update resource %d: %w", h, backend.ErrUnknownHandle)
	}
	if r.Empty() || r.X < 0 || r.Y < 0 || r.X+r.W > int(res.width) || r.Y+r.H > int(res.height) {
		return fmt.Errorf("vulkan: update resource %d: rect %+v outside %dx%d", h, r, res.width, res.height)
	}
	return d.upload(res, r, pixels, vk.ImageLayoutShaderReadOnlyOptimal)
}

// DestroyResource releases the image, its view, and its memory. Unknown
// handles are a no-op.
func (d *Device) DestroyResource(h backend.ResourceHandle) {
	res, ok := d.resources[h]
	if !ok {
		return
	}
	delete(d.resources, h)
	vk.DestroyImageView(d.cfg.Device, res.view, nil)
	vk.DestroyImage(d.cfg.Device, res.image, nil)
	vk.FreeMemory(d.cfg.Device, res.memory, nil)
}

// CreateSampler creates a clamp-to-edge sampler with the layout's filter
// mode.
func (d *Device) CreateSampler(layout backend.BindingLayout) (backend.SamplerHandle, error) {
	if d.closed {
		return backend.NilSampler, backend.ErrNotInitialized
	}
	s, err := d.newSampler(layout.Filtering)
	if err != nil {
		return backend.NilSampler, err
	}
	h := backend.SamplerHandle(d.handle())
	d.samplers[h] = s
	return h, nil
}

// DestroySampler releases a sampler. NilSampler and unknown handles are a
// no-op.
func (d *Device) DestroySampler(s backend.SamplerHandle) {
	vs, ok := d.samplers[s]
	if !ok {
		return
	}
	delete(d.samplers, s)
	vk.DestroySampler(d.cfg.Device, vs, nil)
}

// CreateBinding writes a combined-image-sampler descriptor set referencing
// the resource's view. The view and the sampler share binding 0; Vulkan's
// combined descriptor folds the layout's two conceptual slots into one.
func (d *Device) CreateBinding(h backend.ResourceHandle, s backend.SamplerHandle, layout backend.BindingLayout) (backend.BindingHandle, error) {
	if d.closed {
		return backend.NilBinding, backend.ErrNotInitialized
	}
	res, ok := d.resources[h]
	if !ok {
		return backend.NilBinding, fmt.Errorf("vulkan: bind resource %d: %w", h, backend.ErrUnknownHandle)
	}
	sampler, err := d.resolveSampler(s, layout)
	if err != nil {
		return backend.NilBinding, err
	}
	if err := d.ensureDescriptors(); err != nil {
		return backend.NilBinding, err
	}

	var set vk.DescriptorSet
	if n := len(d.freeSets); n > 0 {
		set = d.freeSets[n-1]
		d.freeSets = d.freeSets[:n-1]
	} else {
		ret := vk.AllocateDescriptorSets(d.cfg.Device, &vk.DescriptorSetAllocateInfo{
			SType:              vk.StructureTypeDescriptorSetAllocateInfo,
			DescriptorPool:     d.descPool,
			DescriptorSetCount: 1,
			PSetLayouts:        []vk.DescriptorSetLayout{d.descLayout},
		}, &set)
		if ret != vk.Success {
			return backend.NilBinding, fmt.Errorf("vulkan: allocate descriptor set: %w", vk.Error(ret))
		}
	}

	vk.UpdateDescriptorSets(d.cfg.Device, 1, []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     sampler,
			ImageView:   res.view,
			ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		}},
	}}, 0, nil)

	b := backend.BindingHandle(d.handle())
	d.bindings[b] = set
	return b, nil
}

// DestroyBinding parks the descriptor set for reuse. Unknown handles are a
// no-op.
func (d *Device) DestroyBinding(b backend.BindingHandle) {
	set, ok := d.bindings[b]
	if !ok {
		return
	}
	delete(d.bindings, b)
	d.freeSets = append(d.freeSets, set)
}

// BeginFrame acquires the host's command buffer and opens a draw encoder
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
	cmd, layout, err := d.cfg.AcquireFrame(width, height)
	if err != nil {
		return nil, fmt.Errorf("vulkan: acquire frame: %w", err)
	}
	d.frame = &frameEncoder{dev: d, cmd: cmd, layout: layout}
	return d.frame, nil
}

// Close releases everything the device created. Host-owned handles from the
// Config are left alone.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.frame = nil
	d.releaseRetired()
	for h := range d.resources {
		res := d.resources[h]
		vk.DestroyImageView(d.cfg.Device, res.view, nil)
		vk.DestroyImage(d.cfg.Device, res.image, nil)
		vk.FreeMemory(d.cfg.Device, res.memory, nil)
	}
	d.resources = map[backend.ResourceHandle]*vkImage{}
	for _, s := range d.samplers {
		vk.DestroySampler(d.cfg.Device, s, nil)
	}
	d.samplers = map[backend.SamplerHandle]vk.Sampler{}
	for i, s := range d.defSampler {
		if s != vk.NullSampler {
			vk.DestroySampler(d.cfg.Device, s, nil)
			d.defSampler[i] = vk.NullSampler
		}
	}
	d.bindings = map[backend.BindingHandle]vk.DescriptorSet{}
	d.freeSets = nil
	if d.descPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(d.cfg.Device, d.descPool, nil)
		d.descPool = vk.NullDescriptorPool
	}
	if d.descLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(d.cfg.Device, d.descLayout, nil)
		d.descLayout = vk.NullDescriptorSetLayout
	}
	vk.DestroyCommandPool(d.cfg.Device, d.pool, nil)
}

func (d *Device) newSampler(filtering bool) (vk.Sampler, error) {
	filter := vk.FilterNearest
	if filtering {
		filter = vk.FilterLinear
	}
	var s vk.Sampler
	ret := vk.CreateSampler(d.cfg.Device, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               filter,
		MinFilter:               filter,
		MipmapMode:              vk.SamplerMipmapModeNearest,
		AddressModeU:            vk.SamplerAddressModeClampToEdge,
		AddressModeV:            vk.SamplerAddressModeClampToEdge,
		AddressModeW:            vk.SamplerAddressModeClampToEdge,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
	}, nil, &s)
	if ret != vk.Success {
		return vk.NullSampler, fmt.Errorf("vulkan: create sampler: %w", vk.Error(ret))
	}
	return s, nil
}

// resolveSampler maps NilSampler to the lazily created default sampler for
// the layout's filter mode.
func (d *Device) resolveSampler(s backend.SamplerHandle, layout backend.BindingLayout) (vk.Sampler, error) {
	if s != backend.NilSampler {
		vs, ok := d.samplers[s]
		if !ok {
			return vk.NullSampler, fmt.Errorf("vulkan: sampler %d: %w", s, backend.ErrUnknownHandle)
		}
		return vs, nil
	}
	idx := 0
	if layout.Filtering {
		idx = 1
	}
	if d.defSampler[idx] == vk.NullSampler {
		vs, err := d.newSampler(layout.Filtering)
		if err != nil {
			return vk.NullSampler, err
		}
		d.defSampler[idx] = vs
	}
	return d.defSampler[idx], nil
}

// ensureDescriptors creates the combined-image-sampler set layout and the
// descriptor pool on first use.
func (d *Device) ensureDescriptors() error {
	if d.descPool != vk.NullDescriptorPool {
		return nil
	}
	var layout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(d.cfg.Device, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		}},
	}, nil, &layout)
	if ret != vk.Success {
		return fmt.Errorf("vulkan: create descriptor set layout: %w", vk.Error(ret))
	}
	var pool vk.DescriptorPool
	ret = vk.CreateDescriptorPool(d.cfg.Device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       d.cfg.MaxBindings,
		PoolSizeCount: 1,
		PPoolSizes: []vk.DescriptorPoolSize{{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: d.cfg.MaxBindings,
		}},
	}, nil, &pool)
	if ret != vk.Success {
		vk.DestroyDescriptorSetLayout(d.cfg.Device, layout, nil)
		return fmt.Errorf("vulkan: create descriptor pool: %w", vk.Error(ret))
	}
	d.descLayout = layout
	d.descPool = pool
	return nil
}

func (d *Device) releaseRetired() {
	for _, mb := range d.retired {
		vk.DestroyBuffer(d.cfg.Device, mb.buf, nil)
		vk.FreeMemory(d.cfg.Device, mb.mem, nil)
	}
	d.retired = nil
}

func (d *Device) findMemoryType(typeBits uint32, props vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(d.cfg.PhysicalDevice, &memProps)
	memProps.Deref()
	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		memProps.MemoryTypes[i].Deref()
		if memProps.MemoryTypes[i].PropertyFlags&props == props {
			return i, nil
		}
	}
	return 0, errors.New("vulkan: no suitable memory type")
}

// newHostBuffer creates a host-visible, host-coherent buffer of the given
// size and usage and copies data into it.
func (d *Device) newHostBuffer(data []byte, usage vk.BufferUsageFlagBits) (meshBuffer, error) {
	var buf vk.Buffer
	ret := vk.CreateBuffer(d.cfg.Device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(len(data)),
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf)
	if ret != vk.Success {
		return meshBuffer{}, fmt.Errorf("vulkan: create buffer: %w", vk.Error(ret))
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.cfg.Device, buf, &memReqs)
	memReqs.Deref()
	memType, err := d.findMemoryType(memReqs.MemoryTypeBits,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		vk.DestroyBuffer(d.cfg.Device, buf, nil)
		return meshBuffer{}, err
	}
	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(d.cfg.Device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &mem)
	if ret != vk.Success {
		vk.DestroyBuffer(d.cfg.Device, buf, nil)
		return meshBuffer{}, fmt.Errorf("vulkan: allocate buffer memory: %w", vk.Error(ret))
	}
	vk.BindBufferMemory(d.cfg.Device, buf, mem, 0)

	var ptr unsafe.Pointer
	ret = vk.MapMemory(d.cfg.Device, mem, 0, vk.DeviceSize(len(data)), 0, &ptr)
	if ret != vk.Success {
		vk.DestroyBuffer(d.cfg.Device, buf, nil)
		vk.FreeMemory(d.cfg.Device, mem, nil)
		return meshBuffer{}, fmt.Errorf("vulkan: map buffer memory: %w", vk.Error(ret))
	}
	copy(unsafe.Slice((*byte)(ptr), len(data)), data)
	vk.UnmapMemory(d.cfg.Device, mem)

	return meshBuffer{buf: buf, mem: mem}, nil
}

// upload copies tightly packed pixels into a sub-rectangle of the image via
// a staging buffer. oldLayout names the image's layout going in; the image
// comes out shader-read-only.
func (d *Device) upload(res *vkImage, r uidraw.Rect, pixels []byte, oldLayout vk.ImageLayout) error {
	if len(pixels) < r.W*r.H*4 {
		return fmt.Errorf("vulkan: upload: %d pixel bytes for %dx%d rect", len(pixels), r.W, r.H)
	}
	staging, err := d.newHostBuffer(pixels[:r.W*r.H*4], vk.BufferUsageTransferSrcBit)
	if err != nil {
		return err
	}
	defer func() {
		vk.DestroyBuffer(d.cfg.Device, staging.buf, nil)
		vk.FreeMemory(d.cfg.Device, staging.mem, nil)
	}()

	return d.withOneTimeCommands(func(cmd vk.CommandBuffer) {
		transitionImage(cmd, res.image, oldLayout, vk.ImageLayoutTransferDstOptimal)
		vk.CmdCopyBufferToImage(cmd, staging.buf, res.image, vk.ImageLayoutTransferDstOptimal, 1,
			[]vk.BufferImageCopy{{
				ImageSubresource: vk.ImageSubresourceLayers{
					AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
					LayerCount: 1,
				},
				ImageOffset: vk.Offset3D{X: int32(r.X), Y: int32(r.Y)},
				ImageExtent: vk.Extent3D{Width: uint32(r.W), Height: uint32(r.H), Depth: 1},
			}})
		transitionImage(cmd, res.image, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
}

// withOneTimeCommands records fn into a one-shot command buffer, submits it,
// and waits for the queue to drain.
func (d *Device) withOneTimeCommands(fn func(cmd vk.CommandBuffer)) error {
	cmds := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(d.cfg.Device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        d.pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cmds)
	if ret != vk.Success {
		return fmt.Errorf("vulkan: allocate command buffer: %w", vk.Error(ret))
	}
	cmd := cmds[0]
	defer vk.FreeCommandBuffers(d.cfg.Device, d.pool, 1, []vk.CommandBuffer{cmd})

	ret = vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if ret != vk.Success {
		return fmt.Errorf("vulkan: begin command buffer: %w", vk.Error(ret))
	}
	fn(cmd)
	ret = vk.EndCommandBuffer(cmd)
	if ret != vk.Success {
		return fmt.Errorf("vulkan: end command buffer: %w", vk.Error(ret))
	}

	ret = vk.QueueSubmit(d.cfg.Queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cmd},
	}}, vk.NullFence)
	if ret != vk.Success {
		return fmt.Errorf("vulkan: submit upload: %w", vk.Error(ret))
	}
	vk.QueueWaitIdle(d.cfg.Queue)
	return nil
}

// transitionImage records a pipeline barrier moving the image between the
// three layouts the upload path uses.
func transitionImage(cmd vk.CommandBuffer, img vk.Image, oldLayout, newLayout vk.ImageLayout) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               img,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
	var src, dst vk.PipelineStageFlags
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		src = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dst = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case oldLayout == vk.ImageLayoutShaderReadOnlyOptimal && newLayout == vk.ImageLayoutTransferDstOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		src = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
		dst = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		src = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		dst = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		src = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		dst = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	default:
		src = vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
		dst = vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit)
	}
	vk.CmdPipelineBarrier(cmd, src, dst, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}
