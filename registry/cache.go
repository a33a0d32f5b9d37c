// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package registry

import (
	"errors"
	"fmt"

	"github.com/gogpu/uidraw"
	"github.com/gogpu/uidraw/backend"
)

// ErrUnknownTexture is returned by BindingCache.GetOrCreate when the
// identifier is not present in the registry. Callers on the draw path
// recover by skipping the affected command; the frame always completes.
var ErrUnknownTexture = errors.New("registry: unknown texture id")

// cacheEntry pairs a binding object with the resource and sampler identity
// it was built from. An entry whose identity no longer matches the
// registry's current record is stale and gets rebuilt, never reused.
type cacheEntry struct {
	binding  backend.BindingHandle
	resource backend.ResourceHandle
	sampler  backend.SamplerHandle
}

// BindingCache lazily materializes backend binding objects (descriptor
// sets, bind groups) keyed by texture identifier, against the renderer's
// fixed layout. It is the only component aware of the concrete graphics
// API: the registry stays pure bookkeeping.
//
// BindingCache is not safe for concurrent use.
type BindingCache struct {
	dev     backend.Device
	layout  backend.BindingLayout
	entries map[uidraw.TextureID]cacheEntry
}

// NewBindingCache creates an empty cache building bindings on dev against
// the given layout.
func NewBindingCache(dev backend.Device, layout backend.BindingLayout) *BindingCache {
	return &BindingCache{
		dev:     dev,
		layout:  layout,
		entries: make(map[uidraw.TextureID]cacheEntry),
	}
}

// GetOrCreate returns the binding object for id, constructing it from the
// registry's current record when absent or invalidated.
//
// Returns ErrUnknownTexture when id is not registered. Backend construction
// failures are wrapped and propagated; they generally indicate an
// unrecoverable device condition rather than a per-texture problem.
func (c *BindingCache) GetOrCreate(id uidraw.TextureID, reg *Registry) (backend.BindingHandle, error) {
	t, ok := reg.Get(id)
	if !ok {
		return backend.NilBinding, fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}

	if e, ok := c.entries[id]; ok {
		if e.resource == t.Resource && e.sampler == t.Sampler {
			return e.binding, nil
		}
		// Stale identity: the view or sampler changed under the same id.
		c.dev.DestroyBinding(e.binding)
		delete(c.entries, id)
	}

	b, err := c.dev.CreateBinding(t.Resource, t.Sampler, c.layout)
	if err != nil {
		return backend.NilBinding, fmt.Errorf("registry: create binding for texture %d: %w", id, err)
	}
	c.entries[id] = cacheEntry{binding: b, resource: t.Resource, sampler: t.Sampler}
	uidraw.Logger().Debug("registry: binding built", "id", uint64(id))
	return b, nil
}

// Invalidate drops the cached binding object for id, destroying it on the
// device. Called by the registry on view replacement and removal. Unknown
// ids are a no-op.
func (c *BindingCache) Invalidate(id uidraw.TextureID) {
	e, ok := c.entries[id]
	if !ok {
		return
	}
	c.dev.DestroyBinding(e.binding)
	delete(c.entries, id)
}

// Clear drops all cached bindings. Used on full renderer teardown or
// device-loss recovery.
func (c *BindingCache) Clear() {
	for _, e := range c.entries {
		c.dev.DestroyBinding(e.binding)
	}
	clear(c.entries)
}

// Len returns the number of live cache entries.
func (c *BindingCache) Len() int { return len(c.entries) }

// Ensure BindingCache implements Invalidator.
var _ Invalidator = (*BindingCache)(nil)
