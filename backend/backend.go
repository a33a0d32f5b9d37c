package backend

import (
	"errors"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/uidraw"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")

	// ErrUnknownHandle is returned when a handle does not name a live object.
	ErrUnknownHandle = errors.New("backend: unknown handle")

	// ErrFrameActive is returned when BeginFrame is called while a frame
	// encoder is still open.
	ErrFrameActive = errors.New("backend: frame already active")
)

// ResourceHandle identifies a backend-native texture resource (image plus
// view). Zero is the nil handle.
type ResourceHandle uint64

// NilResource is the zero ResourceHandle.
const NilResource ResourceHandle = 0

// IsNil reports whether h is the nil handle.
func (h ResourceHandle) IsNil() bool { return h == NilResource }

// SamplerHandle identifies a backend-native sampler. Zero means "use the
// device's default sampler".
type SamplerHandle uint64

// NilSampler selects the device's default sampler.
const NilSampler SamplerHandle = 0

// BindingHandle identifies a backend binding object: the descriptor set in
// Vulkan, the bind group in WebGPU, the texture/sampler pair in OpenGL.
// Zero is the nil handle.
type BindingHandle uint64

// NilBinding is the zero BindingHandle.
const NilBinding BindingHandle = 0

// IsNil reports whether b is the nil handle.
func (b BindingHandle) IsNil() bool { return b == NilBinding }

// TextureDescriptor describes parameters for creating a texture resource.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width is the texture width in pixels.
	Width uint32

	// Height is the texture height in pixels.
	Height uint32

	// Format is the texture pixel format. Devices in this module create
	// RGBA8 resources; GUI-side alpha-only data is expanded before upload.
	Format gputypes.TextureFormat
}

// DefaultTextureDescriptor returns a TextureDescriptor for a standard RGBA8
// texture of the given size.
func DefaultTextureDescriptor(width, height uint32) TextureDescriptor {
	return TextureDescriptor{
		Width:  width,
		Height: height,
		Format: gputypes.TextureFormatRGBA8Unorm,
	}
}

// BindingLayout describes the fixed shader-facing layout binding objects are
// built against: a sampled texture view at binding 0 and a sampler at
// binding 1. The renderer owns one layout per device and passes it to the
// binding cache.
type BindingLayout struct {
	// Label is an optional debug label for created binding objects.
	Label string

	// Filtering selects linear (true) or nearest (false) sampling for the
	// default sampler.
	Filtering bool
}

// Device is the capability interface a graphics backend implements for the
// registry, binding cache, and frame renderer. All methods must be called
// from the single goroutine that owns the renderer; no Device in this
// module is safe for concurrent use.
type Device interface {
	// Name returns the backend identifier (e.g. "software", "webgpu").
	Name() string

	// CreateResource creates a texture resource and uploads the given
	// tightly packed RGBA8 pixels. pixels may be nil for an uninitialized
	// resource. Returns NilResource and an error if the backend failed to
	// allocate, which generally indicates an unrecoverable device
	// condition.
	CreateResource(desc TextureDescriptor, pixels []byte) (ResourceHandle, error)

	// UpdateResource uploads a sub-rectangle of tightly packed RGBA8
	// pixels into an existing resource. Returns ErrUnknownHandle if h does
	// not name a live resource.
	UpdateResource(h ResourceHandle, r uidraw.Rect, pixels []byte) error

	// DestroyResource releases a resource. Unknown handles are a no-op:
	// textures may legitimately be removed twice across frame boundaries.
	DestroyResource(h ResourceHandle)

	// CreateSampler creates a sampler from the layout's filtering mode.
	// Devices with no sampler objects may return NilSampler.
	CreateSampler(layout BindingLayout) (SamplerHandle, error)

	// DestroySampler releases a sampler. NilSampler and unknown handles
	// are a no-op.
	DestroySampler(s SamplerHandle)

	// CreateBinding builds the binding object linking the resource (and
	// sampler, NilSampler for the default) to the fixed layout. Returns
	// ErrUnknownHandle if h does not name a live resource.
	CreateBinding(h ResourceHandle, s SamplerHandle, layout BindingLayout) (BindingHandle, error)

	// DestroyBinding releases a binding object. Unknown handles are a
	// no-op.
	DestroyBinding(b BindingHandle)

	// BeginFrame opens a draw encoder targeting a framebuffer of the given
	// pixel size. Only one frame may be open at a time.
	BeginFrame(width, height uint32) (DrawEncoder, error)

	// Close releases everything the device still holds. The device must
	// not be used afterwards.
	Close()
}

// DrawEncoder records one frame's draw commands. Encoders are valid between
// a Device.BeginFrame and the matching End.
type DrawEncoder interface {
	// UploadMesh stages one draw list's vertex and index buffers.
	// Subsequent Draw calls index into the most recently uploaded mesh.
	UploadMesh(vertices []uidraw.DrawVert, indices []uint16) error

	// SetBinding selects the binding object for subsequent draws.
	SetBinding(b BindingHandle)

	// SetClip sets the scissor rectangle in framebuffer pixels.
	SetClip(x, y, w, h uint32)

	// Draw issues one indexed draw call into the current mesh.
	Draw(indexCount, indexOffset, vertexOffset uint32)

	// End submits the frame. The encoder must not be used afterwards.
	End() error
}
