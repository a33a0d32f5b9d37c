package uidraw

import "fmt"

// TextureID is an opaque identifier for a renderer-side texture resource.
// The zero value is reserved as "no texture": draw commands carrying it are
// rendered with the renderer's fallback texture, if any. Identifiers are
// issued by registry.Registry and are never reused within a process.
//
// TextureID is a transparent 64-bit handle and can be passed by value across
// any language boundary (it is wire-compatible with a pointer-sized integer).
type TextureID uint64

// NullTexture is the reserved "no texture" identifier.
const NullTexture TextureID = 0

// IsNull reports whether id is the reserved null identifier.
func (id TextureID) IsNull() bool { return id == NullTexture }

// Format describes the pixel layout of GUI-side texture data.
type Format uint8

const (
	// FormatRGBA8 is 8-bit RGBA, 4 bytes per pixel.
	FormatRGBA8 Format = iota

	// FormatAlpha8 is 8-bit alpha only, 1 byte per pixel. Backends expand
	// it to white RGB plus the original alpha on upload.
	FormatAlpha8
)

// BytesPerPixel returns the storage size of one pixel in this format.
func (f Format) BytesPerPixel() int {
	if f == FormatAlpha8 {
		return 1
	}
	return 4
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatAlpha8:
		return "alpha8"
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// TextureStatus is the GUI library's per-texture request state. The GUI side
// sets the Want* values; the renderer answers by applying an UpdateResult,
// which moves the status back to StatusOK or StatusDestroyed.
type TextureStatus uint8

const (
	// StatusOK means the renderer-side resource is current. No action needed.
	StatusOK TextureStatus = iota

	// StatusWantCreate asks the renderer to create the GPU resource and
	// assign a TextureID.
	StatusWantCreate

	// StatusWantUpdates asks the renderer to re-upload the queued dirty
	// rects (or the full surface when none are queued).
	StatusWantUpdates

	// StatusWantDestroy asks the renderer to release the GPU resource.
	StatusWantDestroy

	// StatusDestroyed means the renderer has released the resource.
	StatusDestroyed
)

// String returns the status name.
func (s TextureStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWantCreate:
		return "want-create"
	case StatusWantUpdates:
		return "want-updates"
	case StatusWantDestroy:
		return "want-destroy"
	case StatusDestroyed:
		return "destroyed"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Rect is an integer pixel rectangle, used for dirty-region updates.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// TextureData is the GUI-side record for one texture: pixel storage plus the
// request/acknowledge status protocol between the GUI library and the
// renderer. The GUI library owns the pixel memory; the renderer only reads
// it during the Uploading phase.
type TextureData struct {
	id      TextureID
	status  TextureStatus
	format  Format
	width   int
	height  int
	pixels  []byte
	updates []Rect

	// unusedFrames counts consecutive frames in which no draw command
	// referenced this texture. The renderer honors StatusWantDestroy only
	// once this is positive, so resources referenced by a display list
	// already handed to the device are not pulled out from under it.
	unusedFrames int

	// wantDestroyNextFrame disambiguates an acknowledged destroy from a
	// "please recreate" signal; see SetStatus.
	wantDestroyNextFrame bool
}

// NewTextureData creates a texture record of the given format and size with
// status StatusWantCreate. Pixel storage is allocated zeroed.
func NewTextureData(format Format, width, height int) *TextureData {
	return &TextureData{
		status: StatusWantCreate,
		format: format,
		width:  width,
		height: height,
		pixels: make([]byte, width*height*format.BytesPerPixel()),
	}
}

// ID returns the renderer-assigned texture identifier, or NullTexture if the
// resource has not been created yet.
func (td *TextureData) ID() TextureID { return td.id }

// SetID records the renderer-assigned identifier. Called by the renderer
// after creating the resource.
func (td *TextureData) SetID(id TextureID) { td.id = id }

// Status returns the current protocol status.
func (td *TextureData) Status() TextureStatus { return td.status }

// SetStatus moves the protocol status. Only the renderer should call this,
// after handling a request.
//
// Marking StatusDestroyed carries the upstream GUI library's special
// semantics: the identifier is cleared, and if destruction was not flagged
// via WantDestroyNextFrame the status becomes StatusWantCreate instead:
// the GUI library treats an unrequested destroy as "please recreate". This
// is a compatibility contract, not a place for redesign; renderers honoring
// a real destroy must call SetWantDestroyNextFrame(true) first.
func (td *TextureData) SetStatus(s TextureStatus) {
	if s == StatusDestroyed {
		td.id = NullTexture
		if !td.wantDestroyNextFrame {
			td.status = StatusWantCreate
			return
		}
	}
	td.status = s
}

// RequestDestroy is the host-side entry point for destroying a texture: it
// sets the destroy-requested flag and then the StatusWantDestroy status, in
// that order, so the renderer's acknowledgement sticks as StatusDestroyed.
func (td *TextureData) RequestDestroy() {
	td.wantDestroyNextFrame = true
	td.status = StatusWantDestroy
}

// WantDestroyNextFrame reports whether destruction has been explicitly
// requested by the host.
func (td *TextureData) WantDestroyNextFrame() bool { return td.wantDestroyNextFrame }

// SetWantDestroyNextFrame sets the destroy-requested flag. Renderers must
// set it before reporting StatusDestroyed for a destroy the host did not
// request (e.g. renderer teardown), or the status flips to StatusWantCreate.
func (td *TextureData) SetWantDestroyNextFrame(v bool) { td.wantDestroyNextFrame = v }

// Format returns the pixel format.
func (td *TextureData) Format() Format { return td.format }

// Width returns the texture width in pixels.
func (td *TextureData) Width() int { return td.width }

// Height returns the texture height in pixels.
func (td *TextureData) Height() int { return td.height }

// Pixels returns the backing pixel slab, or nil if none is attached.
func (td *TextureData) Pixels() []byte { return td.pixels }

// SetPixels replaces the backing pixel slab. The slab length must match
// Width*Height*Format.BytesPerPixel; a mismatched slab is rejected.
func (td *TextureData) SetPixels(p []byte) bool {
	if len(p) != td.width*td.height*td.format.BytesPerPixel() {
		return false
	}
	td.pixels = p
	return true
}

// AddUpdateRect queues a dirty region for the next StatusWantUpdates pass.
// Empty rects are ignored.
func (td *TextureData) AddUpdateRect(r Rect) {
	if r.Empty() {
		return
	}
	td.updates = append(td.updates, r)
	if td.status == StatusOK {
		td.status = StatusWantUpdates
	}
}

// Updates returns the queued dirty regions.
func (td *TextureData) Updates() []Rect { return td.updates }

// ClearUpdates drops the queued dirty regions. Called by the renderer after
// applying them.
func (td *TextureData) ClearUpdates() { td.updates = td.updates[:0] }

// UnusedFrames returns the number of consecutive frames in which no draw
// command referenced this texture.
func (td *TextureData) UnusedFrames() int { return td.unusedFrames }

// SetUnusedFrames records the unused-frame count. Maintained by the GUI
// library between frames.
func (td *TextureData) SetUnusedFrames(n int) { td.unusedFrames = n }

// RectPixelsRGBA extracts the pixels of r as a tightly packed RGBA8 buffer,
// expanding FormatAlpha8 to white RGB plus alpha. The rect is clamped to the
// texture bounds. Returns false when the rect is empty, out of bounds, or no
// pixel data is attached.
func (td *TextureData) RectPixelsRGBA(r Rect) ([]byte, bool) {
	if td.pixels == nil || td.width <= 0 || td.height <= 0 {
		return nil, false
	}
	if r.Empty() || r.X >= td.width || r.Y >= td.height || r.X < 0 || r.Y < 0 {
		return nil, false
	}
	w := min(r.W, td.width-r.X)
	h := min(r.H, td.height-r.Y)

	bpp := td.format.BytesPerPixel()
	out := make([]byte, w*h*4)
	switch td.format {
	case FormatRGBA8:
		for row := 0; row < h; row++ {
			src := ((r.Y+row)*td.width + r.X) * bpp
			dst := row * w * 4
			copy(out[dst:dst+w*4], td.pixels[src:src+w*4])
		}
	case FormatAlpha8:
		for row := 0; row < h; row++ {
			src := ((r.Y+row)*td.width + r.X) * bpp
			dst := row * w * 4
			for i := 0; i < w; i++ {
				a := td.pixels[src+i]
				o := dst + i*4
				out[o], out[o+1], out[o+2], out[o+3] = 255, 255, 255, a
			}
		}
	}
	return out, true
}

// FullRect returns the rect covering the whole texture surface.
func (td *TextureData) FullRect() Rect {
	return Rect{X: 0, Y: 0, W: td.width, H: td.height}
}

// UpdateKind identifies the outcome of one renderer texture operation.
type UpdateKind uint8

const (
	// UpdateNoAction means the texture needed no work this frame.
	UpdateNoAction UpdateKind = iota

	// UpdateCreated means a resource was created and an ID assigned.
	UpdateCreated

	// UpdateUpdated means the existing resource was refreshed in place.
	UpdateUpdated

	// UpdateDestroyed means the resource was released.
	UpdateDestroyed

	// UpdateFailed means resource creation or upload failed.
	UpdateFailed
)

// UpdateResult is the renderer's answer to a texture request. Applying it
// moves the TextureData status machine; see ApplyTo.
type UpdateResult struct {
	Kind UpdateKind

	// ID is the newly assigned identifier for UpdateCreated results.
	ID TextureID
}

// ApplyTo applies the result to the texture record per the status contract:
// Created assigns the ID and marks StatusOK, Updated marks StatusOK,
// Destroyed marks StatusDestroyed, Failed best-effort marks StatusDestroyed
// (which, for a destroy the host never requested, flips to StatusWantCreate
// and so retries next frame), NoAction changes nothing.
func (r UpdateResult) ApplyTo(td *TextureData) {
	switch r.Kind {
	case UpdateCreated:
		td.SetID(r.ID)
		td.SetStatus(StatusOK)
	case UpdateUpdated:
		td.SetStatus(StatusOK)
	case UpdateDestroyed, UpdateFailed:
		td.SetStatus(StatusDestroyed)
	case UpdateNoAction:
	}
}
