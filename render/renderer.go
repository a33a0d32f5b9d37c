// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
	"github.com/gogpu/uidraw/registry"
)

// ErrFrameInProgress is returned by Render when a frame is already being
// rendered. The renderer is single-threaded and does not nest frames.
var ErrFrameInProgress = errors.New("render: frame already in progress")

// Phase is the renderer's position in the frame cycle.
type Phase uint8

const (
	// PhaseIdle means no frame is in flight.
	PhaseIdle Phase = iota

	// PhaseUploading means texture requests are being serviced.
	PhaseUploading

	// PhaseDrawing means draw lists are being encoded.
	PhaseDrawing
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseUploading:
		return "uploading"
	case PhaseDrawing:
		return "drawing"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Renderer owns the texture registry and binding cache for one device and
// renders GUI draw data frame by frame.
//
// Each Render call first services the texture requests attached to the draw
// data (create, update, destroy), then encodes the draw lists. The renderer
// is not safe for concurrent use; all methods must be called from the
// goroutine that owns the device.
type Renderer struct {
	dev   backend.Device
	reg   *registry.Registry
	cache *registry.BindingCache

	phase    Phase
	fallback uidraw.TextureID
	skipped  uint64
}

// New creates a Renderer on the given device. Unless disabled with
// WithoutFallback, a 1x1 white fallback texture is created immediately; it
// backs draw commands that carry the null texture id.
func New(dev backend.Device, opts ...Option) (*Renderer, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	reg := registry.New(dev)
	cache := registry.NewBindingCache(dev, cfg.layout)
	reg.SetInvalidator(cache)

	r := &Renderer{dev: dev, reg: reg, cache: cache}
	if cfg.fallback {
		desc := backend.DefaultTextureDescriptor(1, 1)
		desc.Label = "uidraw fallback"
		h, err := dev.CreateResource(desc, []byte{0xff, 0xff, 0xff, 0xff})
		if err != nil {
			return nil, fmt.Errorf("render: create fallback texture: %w", err)
		}
		r.fallback = reg.Register(h)
	}
	return r, nil
}

// Registry returns the texture registry, for hosts that manage external
// textures directly.
func (r *Renderer) Registry() *registry.Registry { return r.reg }

// Phase returns the renderer's current frame phase.
func (r *Renderer) Phase() Phase { return r.phase }

// SkippedDraws returns the number of draw commands skipped because their
// texture id was unknown to the registry. A nonzero count usually means the
// host destroyed a texture the GUI still references.
func (r *Renderer) SkippedDraws() uint64 { return r.skipped }

// Fallback returns the id of the fallback texture, or the null id when the
// renderer was built without one.
func (r *Renderer) Fallback() uidraw.TextureID { return r.fallback }

// RegisterExternalTexture registers a host-owned resource and returns its
// id. The renderer samples the resource but never destroys it.
func (r *Renderer) RegisterExternalTexture(h backend.ResourceHandle) uidraw.TextureID {
	return r.reg.RegisterExternal(h)
}

// RegisterExternalTextureWithSampler is RegisterExternalTexture with a
// host-owned sampler.
func (r *Renderer) RegisterExternalTextureWithSampler(h backend.ResourceHandle, s backend.SamplerHandle) uidraw.TextureID {
	return r.reg.RegisterExternalWithSampler(h, s)
}

// UpdateExternalView swaps the resource behind an external texture id. The
// id stays stable; any cached binding is invalidated so the next draw
// rebuilds it. Reports false if id is unknown.
func (r *Renderer) UpdateExternalView(id uidraw.TextureID, h backend.ResourceHandle) bool {
	return r.reg.UpdateView(id, h)
}

// UnregisterTexture removes a texture id from the registry. For external
// textures only the bookkeeping is dropped; the host keeps the resource.
func (r *Renderer) UnregisterTexture(id uidraw.TextureID) {
	r.reg.Remove(id)
}

// Render services dd's texture requests and encodes its draw lists into one
// device frame. Texture results are written back to each TextureData record
// through its status. Returns ErrFrameInProgress if called re-entrantly.
func (r *Renderer) Render(dd *uidraw.DrawData) (err error) {
	if r.phase != PhaseIdle {
		return ErrFrameInProgress
	}
	defer func() { r.phase = PhaseIdle }()

	r.phase = PhaseUploading
	r.applyTextureRequests(dd.Textures)

	r.phase = PhaseDrawing
	fbw, fbh := dd.FramebufferSize()
	enc, err := r.dev.BeginFrame(fbw, fbh)
	if err != nil {
		return fmt.Errorf("render: begin frame: %w", err)
	}
	defer func() {
		if eerr := enc.End(); eerr != nil && err == nil {
			err = fmt.Errorf("render: end frame: %w", eerr)
		}
	}()

	sx, sy := dd.FramebufferScale[0], dd.FramebufferScale[1]
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}

	for _, list := range dd.Lists {
		if len(list.Cmds) == 0 {
			continue
		}
		if err := enc.UploadMesh(list.Vertices, list.Indices); err != nil {
			return fmt.Errorf("render: upload mesh: %w", err)
		}
		for _, cmd := range list.Cmds {
			if cmd.ElemCount == 0 {
				continue
			}
			b, berr := r.resolveBinding(cmd.Texture)
			if berr != nil {
				if errors.Is(berr, registry.ErrUnknownTexture) {
					r.skipped++
					uidraw.Logger().Debug("skipping draw for unknown texture",
						"texture", uint64(cmd.Texture), "skipped", r.skipped)
					continue
				}
				return fmt.Errorf("render: bind texture %d: %w", uint64(cmd.Texture), berr)
			}
			cx, cy, cw, ch, ok := clipToFramebuffer(cmd.ClipRect, sx, sy, fbw, fbh)
			if !ok {
				continue
			}
			enc.SetBinding(b)
			enc.SetClip(cx, cy, cw, ch)
			enc.Draw(cmd.ElemCount, cmd.IndexOffset, cmd.VertexOffset)
		}
	}
	return nil
}

// DestroyTextures releases every texture record's resource during teardown
// and marks each record destroyed. Records are flagged first so the
// destroyed status sticks instead of flipping back to a create request.
func (r *Renderer) DestroyTextures(tds []*uidraw.TextureData) {
	for _, td := range tds {
		if td.Status() == uidraw.StatusDestroyed {
			continue
		}
		td.SetWantDestroyNextFrame(true)
		r.reg.Remove(td.ID())
		td.SetStatus(uidraw.StatusDestroyed)
	}
}

// Close releases the binding cache and every managed registry resource. The
// device itself stays with the host.
func (r *Renderer) Close() {
	r.cache.Clear()
	r.reg.Clear()
	r.fallback = uidraw.NullTexture
}

// applyTextureRequests walks the frame's texture records, performs the
// requested work, and writes the outcome back into each record.
func (r *Renderer) applyTextureRequests(tds []*uidraw.TextureData) {
	for _, td := range tds {
		r.serviceTexture(td).ApplyTo(td)
	}
}

func (r *Renderer) serviceTexture(td *uidraw.TextureData) uidraw.UpdateResult {
	switch td.Status() {
	case uidraw.StatusWantCreate:
		return r.createTexture(td)
	case uidraw.StatusWantUpdates:
		return r.updateTexture(td)
	case uidraw.StatusWantDestroy:
		return r.destroyTexture(td)
	default:
		return uidraw.UpdateResult{Kind: uidraw.UpdateNoAction}
	}
}

func (r *Renderer) createTexture(td *uidraw.TextureData) uidraw.UpdateResult {
	pixels, _ := td.RectPixelsRGBA(td.FullRect())
	desc := backend.DefaultTextureDescriptor(uint32(td.Width()), uint32(td.Height()))
	h, err := r.dev.CreateResource(desc, pixels)
	if err != nil {
		uidraw.Logger().Error("texture create failed",
			"width", td.Width(), "height", td.Height(), "err", err)
		return uidraw.UpdateResult{Kind: uidraw.UpdateFailed}
	}
	if old := td.ID(); !old.IsNull() {
		// Recreate: the record already carried an id, drop the stale entry
		// (and its cached binding) before assigning a fresh one.
		r.reg.Remove(old)
	}
	id := r.reg.Register(h)
	td.ClearUpdates()
	return uidraw.UpdateResult{Kind: uidraw.UpdateCreated, ID: id}
}

func (r *Renderer) updateTexture(td *uidraw.TextureData) uidraw.UpdateResult {
	t, ok := r.reg.Get(td.ID())
	if !ok {
		// The record was never created on this renderer (or was removed
		// behind its back). Create it now rather than dropping the data.
		return r.createTexture(td)
	}
	rects := td.Updates()
	if len(rects) == 0 {
		rects = []uidraw.Rect{td.FullRect()}
	}
	for _, rc := range rects {
		pixels, ok := td.RectPixelsRGBA(rc)
		if !ok {
			continue
		}
		if err := r.dev.UpdateResource(t.Resource, rc, pixels); err != nil {
			uidraw.Logger().Error("texture update failed",
				"texture", uint64(td.ID()), "err", err)
			return uidraw.UpdateResult{Kind: uidraw.UpdateFailed}
		}
	}
	td.ClearUpdates()
	return uidraw.UpdateResult{Kind: uidraw.UpdateUpdated, ID: td.ID()}
}

func (r *Renderer) destroyTexture(td *uidraw.TextureData) uidraw.UpdateResult {
	if td.UnusedFrames() <= 0 {
		// The GUI may still reference the texture in this frame's draw
		// lists; honor the request once it has sat unused for a frame.
		return uidraw.UpdateResult{Kind: uidraw.UpdateNoAction}
	}
	td.SetWantDestroyNextFrame(true)
	r.reg.Remove(td.ID())
	return uidraw.UpdateResult{Kind: uidraw.UpdateDestroyed}
}

// resolveBinding maps a draw command's texture id to a device binding. The
// null id resolves to the fallback texture when one exists.
func (r *Renderer) resolveBinding(id uidraw.TextureID) (backend.BindingHandle, error) {
	if id.IsNull() {
		if r.fallback.IsNull() {
			return backend.NilBinding, fmt.Errorf("%w: null id with no fallback texture", registry.ErrUnknownTexture)
		}
		id = r.fallback
	}
	return r.cache.GetOrCreate(id, r.reg)
}

// clipToFramebuffer converts a display-space scissor rect to framebuffer
// pixels, clamped to the target. Reports false for empty results.
func clipToFramebuffer(clip [4]float32, sx, sy float32, fbw, fbh uint32) (x, y, w, h uint32, ok bool) {
	x0 := clip[0] * sx
	y0 := clip[1] * sy
	x1 := clip[2] * sx
	y1 := clip[3] * sy
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > float32(fbw) {
		x1 = float32(fbw)
	}
	if y1 > float32(fbh) {
		y1 = float32(fbh)
	}
	if x1 <= x0 || y1 <= y0 {
		return 0, 0, 0, 0, false
	}
	return uint32(x0), uint32(y0), uint32(x1 - x0), uint32(y1 - y0), true
}
