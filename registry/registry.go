// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package registry

import (
	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

// Allocator issues texture identifiers: a pure counter increment with no
// failure mode. Identifiers are nonzero and never reused; 64-bit wraparound
// is treated as practically unbounded.
type Allocator struct {
	next uint64
}

// Allocate returns a fresh, never-before-issued nonzero identifier.
func (a *Allocator) Allocate() uidraw.TextureID {
	a.next++
	return uidraw.TextureID(a.next)
}

// Texture is one registered texture: the backend resource it resolves to,
// an optional per-texture sampler, and whether the registry owns the
// resource's lifetime.
type Texture struct {
	// Resource is the backend-native image/view handle.
	Resource backend.ResourceHandle

	// Sampler overrides the renderer's default sampler when nonzero.
	Sampler backend.SamplerHandle

	// External marks a host-owned resource. The registry never destroys
	// external resources; the host remains responsible for their lifetime.
	External bool
}

// Invalidator receives cache-invalidation side effects when a texture's
// view changes identity or the texture is removed. The BindingCache
// implements it.
type Invalidator interface {
	Invalidate(id uidraw.TextureID)
}

// Registry maps texture identifiers to backend resources. It owns the
// lifetime of managed resources and holds non-owning references to external
// ones.
//
// Removed or replaced resources are destroyed immediately from the
// registry's point of view; the host is responsible for not removing a
// texture while a display list already submitted to the device still
// references it (the registry has no visibility into device-side
// completion).
//
// Registry is not safe for concurrent use.
type Registry struct {
	dev      backend.Device
	alloc    Allocator
	textures map[uidraw.TextureID]Texture
	inv      Invalidator
}

// New creates an empty registry over the given device.
func New(dev backend.Device) *Registry {
	return &Registry{
		dev:      dev,
		textures: make(map[uidraw.TextureID]Texture),
	}
}

// SetInvalidator installs the cache to notify on view replacement and
// removal. Pass nil to detach.
func (r *Registry) SetInvalidator(inv Invalidator) { r.inv = inv }

func (r *Registry) invalidate(id uidraw.TextureID) {
	if r.inv != nil {
		r.inv.Invalidate(id)
	}
}

func (r *Registry) insert(t Texture) uidraw.TextureID {
	id := r.alloc.Allocate()
	r.textures[id] = t
	uidraw.Logger().Debug("registry: texture registered",
		"id", uint64(id), "external", t.External)
	return id
}

// Register stores a managed resource and returns its new identifier. The
// registry takes ownership: the resource is destroyed on Remove or Clear.
func (r *Registry) Register(h backend.ResourceHandle) uidraw.TextureID {
	return r.insert(Texture{Resource: h})
}

// RegisterWithSampler is Register with a per-texture sampler override.
// Sampler lifetime stays with whoever created the sampler.
func (r *Registry) RegisterWithSampler(h backend.ResourceHandle, s backend.SamplerHandle) uidraw.TextureID {
	return r.insert(Texture{Resource: h, Sampler: s})
}

// RegisterExternal stores a non-owning reference to a host-owned resource
// (e.g. a game's render target) and returns its new identifier.
func (r *Registry) RegisterExternal(h backend.ResourceHandle) uidraw.TextureID {
	return r.insert(Texture{Resource: h, External: true})
}

// RegisterExternalWithSampler is RegisterExternal with a per-texture
// sampler override.
func (r *Registry) RegisterExternalWithSampler(h backend.ResourceHandle, s backend.SamplerHandle) uidraw.TextureID {
	return r.insert(Texture{Resource: h, Sampler: s, External: true})
}

// UpdateView replaces the stored resource for an existing identifier,
// keeping the identifier stable, and invalidates any cached binding. The
// replaced resource is destroyed if the texture is managed. Returns false
// (no-op) if id is unknown.
func (r *Registry) UpdateView(id uidraw.TextureID, h backend.ResourceHandle) bool {
	t, ok := r.textures[id]
	if !ok {
		return false
	}
	old := t.Resource
	t.Resource = h
	r.textures[id] = t
	r.invalidate(id)
	if !t.External && old != h && !old.IsNil() {
		r.dev.DestroyResource(old)
	}
	return true
}

// UpdateSampler replaces (or sets) the per-texture sampler for an existing
// identifier and invalidates any cached binding so the next resolution
// rebinds with the new sampler. Returns false if id is unknown.
func (r *Registry) UpdateSampler(id uidraw.TextureID, s backend.SamplerHandle) bool {
	t, ok := r.textures[id]
	if !ok {
		return false
	}
	t.Sampler = s
	r.textures[id] = t
	r.invalidate(id)
	return true
}

// Remove deletes an identifier, invalidates any cached binding, and, for
// managed textures, destroys the underlying resource exactly once. External
// resources are left untouched. The removed record is returned so callers
// can defer host-side cleanup. Unknown ids return the zero Texture and
// false.
func (r *Registry) Remove(id uidraw.TextureID) (Texture, bool) {
	t, ok := r.textures[id]
	if !ok {
		return Texture{}, false
	}
	delete(r.textures, id)
	r.invalidate(id)
	if !t.External && !t.Resource.IsNil() {
		r.dev.DestroyResource(t.Resource)
	}
	uidraw.Logger().Debug("registry: texture removed",
		"id", uint64(id), "external", t.External)
	return t, true
}

// Get returns the record for id, for draw-time resolution.
func (r *Registry) Get(id uidraw.TextureID) (Texture, bool) {
	t, ok := r.textures[id]
	return t, ok
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id uidraw.TextureID) bool {
	_, ok := r.textures[id]
	return ok
}

// Len returns the number of registered textures.
func (r *Registry) Len() int { return len(r.textures) }

// Clear removes every texture, destroying managed resources. Used on
// renderer teardown and device-loss recovery.
func (r *Registry) Clear() {
	for id, t := range r.textures {
		r.invalidate(id)
		if !t.External && !t.Resource.IsNil() {
			r.dev.DestroyResource(t.Resource)
		}
	}
	clear(r.textures)
}
