// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package registry

import (
	"errors"
	"testing"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

func newCacheFixture(t *testing.T) (*backend.SoftwareDevice, *Registry, *BindingCache) {
	t.Helper()
	dev := backend.NewSoftwareDevice()
	t.Cleanup(dev.Close)
	reg := New(dev)
	cache := NewBindingCache(dev, backend.BindingLayout{Filtering: true})
	reg.SetInvalidator(cache)
	return dev, reg, cache
}

func TestGetOrCreateCachesBinding(t *testing.T) {
	dev, reg, cache := newCacheFixture(t)

	h, _ := dev.CreateResource(backend.DefaultTextureDescriptor(1, 1), nil)
	id := reg.Register(h)

	b1, err := cache.GetOrCreate(id, reg)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	if b1.IsNil() {
		t.Fatal("GetOrCreate returned nil binding")
	}
	b2, err := cache.GetOrCreate(id, reg)
	if err != nil {
		t.Fatalf("GetOrCreate (cached) error: %v", err)
	}
	if b1 != b2 {
		t.Errorf("repeated GetOrCreate = %v, %v; want identical binding", b1, b2)
	}
	if cache.Len() != 1 {
		t.Errorf("cache Len = %d, want 1", cache.Len())
	}
}

func TestGetOrCreateUnknownID(t *testing.T) {
	_, reg, cache := newCacheFixture(t)

	_, err := cache.GetOrCreate(uidraw.TextureID(999), reg)
	if !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("GetOrCreate(unknown) error = %v, want ErrUnknownTexture", err)
	}
}

func TestUpdateViewRebuildsBinding(t *testing.T) {
	dev, reg, cache := newCacheFixture(t)

	h1, _ := dev.CreateResource(backend.DefaultTextureDescriptor(1, 1), nil)
	h2, _ := dev.CreateResource(backend.DefaultTextureDescriptor(1, 1), nil)
	id := reg.RegisterExternal(h1)

	b1, err := cache.GetOrCreate(id, reg)
	if err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}

	reg.UpdateView(id, h2)

	b2, err := cache.GetOrCreate(id, reg)
	if err != nil {
		t.Fatalf("GetOrCreate after UpdateView error: %v", err)
	}
	if b1 == b2 {
		t.Error("binding reused across view replacement; stale binding must be rebuilt")
	}
	if dev.BindingCount() != 1 {
		t.Errorf("device binding count = %d, want 1 (stale binding destroyed)", dev.BindingCount())
	}
}

func TestUpdateSamplerRebuildsBinding(t *testing.T) {
	dev, reg, cache := newCacheFixture(t)

	h, _ := dev.CreateResource(backend.DefaultTextureDescriptor(1, 1), nil)
	s, _ := dev.CreateSampler(backend.BindingLayout{Filtering: false})
	id := reg.Register(h)

	b1, _ := cache.GetOrCreate(id, reg)
	reg.UpdateSampler(id, s)
	b2, err := cache.GetOrCreate(id, reg)
	if err != nil {
		t.Fatalf("GetOrCreate after UpdateSampler error: %v", err)
	}
	if b1 == b2 {
		t.Error("binding reused across sampler change")
	}
}

func TestRemoveThenGetOrCreateFails(t *testing.T) {
	dev, reg, cache := newCacheFixture(t)

	h, _ := dev.CreateResource(backend.DefaultTextureDescriptor(1, 1), nil)
	id := reg.Register(h)

	if _, err := cache.GetOrCreate(id, reg); err != nil {
		t.Fatalf("GetOrCreate error: %v", err)
	}
	reg.Remove(id)

	if _, err := cache.GetOrCreate(id, reg); !errors.Is(err, ErrUnknownTexture) {
		t.Errorf("GetOrCreate after Remove error = %v, want ErrUnknownTexture", err)
	}
	if cache.Len() != 0 {
		t.Errorf("cache Len = %d after Remove, want 0", cache.Len())
	}
	if dev.BindingCount() != 0 {
		t.Errorf("device binding count = %d, want 0", dev.BindingCount())
	}
}

func TestGetOrCreateDeadResource(t *testing.T) {
	dev, reg, cache := newCacheFixture(t)

	h, _ := dev.CreateResource(backend.DefaultTextureDescriptor(1, 1), nil)
	id := reg.Register(h)
	// Destroy behind the registry's back; binding construction must fail
	// and the error must not be ErrUnknownTexture.
	dev.DestroyResource(h)

	_, err := cache.GetOrCreate(id, reg)
	if err == nil {
		t.Fatal("GetOrCreate succeeded on dead resource")
	}
	if errors.Is(err, ErrUnknownTexture) {
		t.Error("device failure misreported as unknown texture")
	}
	if !errors.Is(err, backend.ErrUnknownHandle) {
		t.Errorf("error = %v, want wrapped ErrUnknownHandle", err)
	}
}

func TestCacheClear(t *testing.T) {
	dev, reg, cache := newCacheFixture(t)

	for i := 0; i < 3; i++ {
		h, _ := dev.CreateResource(backend.DefaultTextureDescriptor(1, 1), nil)
		id := reg.Register(h)
		if _, err := cache.GetOrCreate(id, reg); err != nil {
			t.Fatalf("GetOrCreate error: %v", err)
		}
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("cache Len = %d after Clear, want 0", cache.Len())
	}
	if dev.BindingCount() != 0 {
		t.Errorf("device binding count = %d after Clear, want 0", dev.BindingCount())
	}
}
