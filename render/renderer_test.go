// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"testing"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

func newTestRenderer(t *testing.T, opts ...Option) (*backend.SoftwareDevice, *Renderer) {
	t.Helper()
	dev := backend.NewSoftwareDevice()
	t.Cleanup(dev.Close)
	r, err := New(dev, opts...)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(r.Close)
	return dev, r
}

// frameWith wraps commands into minimal single-list draw data.
func frameWith(textures []*uidraw.TextureData, cmds ...uidraw.DrawCmd) *uidraw.DrawData {
	list := &uidraw.DrawList{
		Vertices: make([]uidraw.DrawVert, 4),
		Indices:  []uint16{0, 1, 2, 2, 3, 0},
		Cmds:     cmds,
	}
	return &uidraw.DrawData{
		Lists:            []*uidraw.DrawList{list},
		Textures:         textures,
		DisplaySize:      [2]float32{640, 480},
		FramebufferScale: [2]float32{1, 1},
	}
}

func fullClipCmd(id uidraw.TextureID) uidraw.DrawCmd {
	return uidraw.DrawCmd{
		Texture:   id,
		ClipRect:  [4]float32{0, 0, 640, 480},
		ElemCount: 6,
	}
}

func TestNewCreatesFallback(t *testing.T) {
	dev, r := newTestRenderer(t)
	if r.Fallback().IsNull() {
		t.Fatal("Fallback() is null")
	}
	if dev.ResourceCount() != 1 {
		t.Errorf("ResourceCount = %d, want 1 (fallback)", dev.ResourceCount())
	}
	if got := dev.ResourcePixels(1); !bytes.Equal(got, []byte{0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("fallback pixels = %v, want opaque white", got)
	}
}

func TestWithoutFallback(t *testing.T) {
	dev, r := newTestRenderer(t, WithoutFallback())
	if !r.Fallback().IsNull() {
		t.Fatal("Fallback() is not null")
	}
	if dev.ResourceCount() != 0 {
		t.Errorf("ResourceCount = %d, want 0", dev.ResourceCount())
	}
}

func TestRenderCreatesRequestedTexture(t *testing.T) {
	dev, r := newTestRenderer(t, WithoutFallback())

	td := uidraw.NewTextureData(uidraw.FormatRGBA8, 2, 2)
	td.SetPixels(bytes.Repeat([]byte{5, 6, 7, 8}, 4))

	if err := r.Render(frameWith([]*uidraw.TextureData{td})); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if td.Status() != uidraw.StatusOK {
		t.Errorf("status = %v, want %v", td.Status(), uidraw.StatusOK)
	}
	if td.ID().IsNull() {
		t.Fatal("no id assigned")
	}
	tex, ok := r.Registry().Get(td.ID())
	if !ok {
		t.Fatal("created texture not in registry")
	}
	if got := dev.ResourcePixels(tex.Resource); !bytes.Equal(got, td.Pixels()) {
		t.Errorf("uploaded pixels = %v, want %v", got, td.Pixels())
	}
}

func TestRenderDrawsWithCreatedTexture(t *testing.T) {
	dev, r := newTestRenderer(t, WithoutFallback())

	td := uidraw.NewTextureData(uidraw.FormatRGBA8, 2, 2)
	if err := r.Render(frameWith([]*uidraw.TextureData{td})); err != nil {
		t.Fatalf("Render (create) error: %v", err)
	}

	if err := r.Render(frameWith(nil, fullClipCmd(td.ID()))); err != nil {
		t.Fatalf("Render (draw) error: %v", err)
	}
	frame := dev.LastFrame()
	if !frame.Ended {
		t.Error("frame not ended")
	}
	if len(frame.Draws) != 1 {
		t.Fatalf("recorded draws = %d, want 1", len(frame.Draws))
	}
	if frame.Draws[0].Binding.IsNil() {
		t.Error("draw recorded with nil binding")
	}
}

func TestRenderSkipsUnknownTexture(t *testing.T) {
	dev, r := newTestRenderer(t, WithoutFallback())

	td := uidraw.NewTextureData(uidraw.FormatRGBA8, 2, 2)
	if err := r.Render(frameWith([]*uidraw.TextureData{td})); err != nil {
		t.Fatalf("Render (create) error: %v", err)
	}

	// One known, one unknown. The unknown command is skipped; the frame
	// still completes and draws the known one.
	err := r.Render(frameWith(nil, fullClipCmd(uidraw.TextureID(999)), fullClipCmd(td.ID())))
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if got := r.SkippedDraws(); got != 1 {
		t.Errorf("SkippedDraws = %d, want 1", got)
	}
	frame := dev.LastFrame()
	if !frame.Ended {
		t.Error("frame not ended after skip")
	}
	if len(frame.Draws) != 1 {
		t.Errorf("recorded draws = %d, want 1", len(frame.Draws))
	}
}

func TestRenderNullIDUsesFallback(t *testing.T) {
	dev, r := newTestRenderer(t)

	if err := r.Render(frameWith(nil, fullClipCmd(uidraw.NullTexture))); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	frame := dev.LastFrame()
	if len(frame.Draws) != 1 {
		t.Fatalf("recorded draws = %d, want 1", len(frame.Draws))
	}
	if frame.Draws[0].Binding.IsNil() {
		t.Error("null-id draw has nil binding, want fallback binding")
	}
	if r.SkippedDraws() != 0 {
		t.Errorf("SkippedDraws = %d, want 0", r.SkippedDraws())
	}
}

func TestRenderNullIDSkippedWithoutFallback(t *testing.T) {
	_, r := newTestRenderer(t, WithoutFallback())

	if err := r.Render(frameWith(nil, fullClipCmd(uidraw.NullTexture))); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if r.SkippedDraws() != 1 {
		t.Errorf("SkippedDraws = %d, want 1", r.SkippedDraws())
	}
}

func TestRenderAppliesDirtyRects(t *testing.T) {
	dev, r := newTestRenderer(t, WithoutFallback())

	td := uidraw.NewTextureData(uidraw.FormatRGBA8, 2, 2)
	if err := r.Render(frameWith([]*uidraw.TextureData{td})); err != nil {
		t.Fatalf("Render (create) error: %v", err)
	}
	tex, _ := r.Registry().Get(td.ID())

	// Dirty one pixel and request an update.
	px := td.Pixels()
	copy(px[12:16], []byte{9, 9, 9, 9})
	td.AddUpdateRect(uidraw.Rect{X: 1, Y: 1, W: 1, H: 1})
	if td.Status() != uidraw.StatusWantUpdates {
		t.Fatalf("status = %v, want %v", td.Status(), uidraw.StatusWantUpdates)
	}

	if err := r.Render(frameWith([]*uidraw.TextureData{td})); err != nil {
		t.Fatalf("Render (update) error: %v", err)
	}
	if td.Status() != uidraw.StatusOK {
		t.Errorf("status = %v, want %v", td.Status(), uidraw.StatusOK)
	}
	if len(td.Updates()) != 0 {
		t.Errorf("dirty rects not cleared: %v", td.Updates())
	}
	got := dev.ResourcePixels(tex.Resource)
	if !bytes.Equal(got[12:16], []byte{9, 9, 9, 9}) {
		t.Errorf("updated pixels = %v, want dirty rect applied", got)
	}
	// In-place update: the registered resource is unchanged.
	tex2, _ := r.Registry().Get(td.ID())
	if tex2.Resource != tex.Resource {
		t.Errorf("resource changed across in-place update: %v -> %v", tex.Resource, tex2.Resource)
	}
}

func TestRenderDestroyHonoredAfterUnusedFrame(t *testing.T) {
	dev, r := newTestRenderer(t, WithoutFallback())

	td := uidraw.NewTextureData(uidraw.FormatRGBA8, 2, 2)
	if err := r.Render(frameWith([]*uidraw.TextureData{td})); err != nil {
		t.Fatalf("Render (create) error: %v", err)
	}
	id := td.ID()

	// Destroy requested while the texture may still be referenced: deferred.
	td.RequestDestroy()
	td.SetUnusedFrames(0)
	if err := r.Render(frameWith([]*uidraw.TextureData{td})); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if td.Status() != uidraw.StatusWantDestroy {
		t.Errorf("status = %v, want %v (deferred)", td.Status(), uidraw.StatusWantDestroy)
	}
	if len(dev.DestroyedResources()) != 0 {
		t.Error("resource destroyed while potentially in use")
	}

	// A frame later the texture has sat unused: honored.
	td.SetUnusedFrames(1)
	if err := r.Render(frameWith([]*uidraw.TextureData{td})); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if td.Status() != uidraw.StatusDestroyed {
		t.Errorf("status = %v, want %v", td.Status(), uidraw.StatusDestroyed)
	}
	if !td.ID().IsNull() {
		t.Errorf("id = %d after destroy, want null", td.ID())
	}
	if r.Registry().Contains(id) {
		t.Error("registry still contains destroyed texture")
	}
	if len(dev.DestroyedResources()) != 1 {
		t.Errorf("device destroy calls = %d, want 1", len(dev.DestroyedResources()))
	}
}

func TestRenderFailedCreateRetriesNextFrame(t *testing.T) {
	_, r := newTestRenderer(t, WithoutFallback())

	// Zero-sized textures are rejected by every device.
	td := uidraw.NewTextureData(uidraw.FormatRGBA8, 0, 0)
	if err := r.Render(frameWith([]*uidraw.TextureData{td})); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	// Failed create reports destroyed, which an unrequested destroy turns
	// back into a create request.
	if td.Status() != uidraw.StatusWantCreate {
		t.Errorf("status = %v, want %v", td.Status(), uidraw.StatusWantCreate)
	}
	if !td.ID().IsNull() {
		t.Errorf("id = %d, want null", td.ID())
	}
}

func TestUpdateExternalViewRebindsNextFrame(t *testing.T) {
	dev, r := newTestRenderer(t, WithoutFallback())

	h1, _ := dev.CreateResource(backend.DefaultTextureDescriptor(1, 1), nil)
	h2, _ := dev.CreateResource(backend.DefaultTextureDescriptor(1, 1), nil)
	id := r.RegisterExternalTexture(h1)

	if err := r.Render(frameWith(nil, fullClipCmd(id))); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	b1 := dev.LastFrame().Draws[0].Binding

	if !r.UpdateExternalView(id, h2) {
		t.Fatal("UpdateExternalView reported unknown id")
	}
	if err := r.Render(frameWith(nil, fullClipCmd(id))); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	b2 := dev.LastFrame().Draws[0].Binding
	if b1 == b2 {
		t.Error("binding reused after view replacement")
	}
}

func TestUnregisterExternalLeavesResource(t *testing.T) {
	dev, r := newTestRenderer(t, WithoutFallback())

	h, _ := dev.CreateResource(backend.DefaultTextureDescriptor(1, 1), nil)
	id := r.RegisterExternalTexture(h)
	r.UnregisterTexture(id)

	if len(dev.DestroyedResources()) != 0 {
		t.Error("external resource destroyed by UnregisterTexture")
	}
	// Draws against the dropped id are skipped from now on.
	if err := r.Render(frameWith(nil, fullClipCmd(id))); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if r.SkippedDraws() != 1 {
		t.Errorf("SkippedDraws = %d, want 1", r.SkippedDraws())
	}
}

func TestRenderReentrancy(t *testing.T) {
	_, r := newTestRenderer(t)

	r.phase = PhaseDrawing
	err := r.Render(frameWith(nil))
	if err != ErrFrameInProgress {
		t.Errorf("Render during frame = %v, want ErrFrameInProgress", err)
	}
	r.phase = PhaseIdle
}

func TestDestroyTexturesMarksDestroyed(t *testing.T) {
	dev, r := newTestRenderer(t, WithoutFallback())

	td := uidraw.NewTextureData(uidraw.FormatRGBA8, 2, 2)
	if err := r.Render(frameWith([]*uidraw.TextureData{td})); err != nil {
		t.Fatalf("Render error: %v", err)
	}

	r.DestroyTextures([]*uidraw.TextureData{td})
	// The record is flagged first, so destroyed sticks instead of flipping
	// back to a create request.
	if td.Status() != uidraw.StatusDestroyed {
		t.Errorf("status = %v, want %v", td.Status(), uidraw.StatusDestroyed)
	}
	if len(dev.DestroyedResources()) != 1 {
		t.Errorf("device destroy calls = %d, want 1", len(dev.DestroyedResources()))
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	dev, r := newTestRenderer(t)

	td := uidraw.NewTextureData(uidraw.FormatRGBA8, 2, 2)
	if err := r.Render(frameWith([]*uidraw.TextureData{td}, fullClipCmd(uidraw.NullTexture))); err != nil {
		t.Fatalf("Render error: %v", err)
	}

	r.Close()
	if dev.ResourceCount() != 0 {
		t.Errorf("ResourceCount = %d after Close, want 0", dev.ResourceCount())
	}
	if dev.BindingCount() != 0 {
		t.Errorf("BindingCount = %d after Close, want 0", dev.BindingCount())
	}
}

func TestClipToFramebuffer(t *testing.T) {
	tests := []struct {
		name     string
		clip     [4]float32
		sx, sy   float32
		fbw, fbh uint32
		wantOK   bool
		wantX    uint32
		wantY    uint32
		wantW    uint32
		wantH    uint32
	}{
		{"full", [4]float32{0, 0, 640, 480}, 1, 1, 640, 480, true, 0, 0, 640, 480},
		{"scaled", [4]float32{10, 10, 20, 20}, 2, 2, 1280, 960, true, 20, 20, 20, 20},
		{"clamped", [4]float32{-5, -5, 700, 500}, 1, 1, 640, 480, true, 0, 0, 640, 480},
		{"empty", [4]float32{10, 10, 10, 20}, 1, 1, 640, 480, false, 0, 0, 0, 0},
		{"offscreen", [4]float32{700, 0, 720, 20}, 1, 1, 640, 480, false, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h, ok := clipToFramebuffer(tt.clip, tt.sx, tt.sy, tt.fbw, tt.fbh)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if x != tt.wantX || y != tt.wantY || w != tt.wantW || h != tt.wantH {
				t.Errorf("clip = (%d,%d %dx%d), want (%d,%d %dx%d)",
					x, y, w, h, tt.wantX, tt.wantY, tt.wantW, tt.wantH)
			}
		})
	}
}
