// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/uidraw/backend"

type config struct {
	layout   backend.BindingLayout
	fallback bool
}

func defaultConfig() config {
	return config{
		layout:   backend.BindingLayout{Label: "uidraw", Filtering: true},
		fallback: true,
	}
}

// Option configures a Renderer.
type Option func(*config)

// WithLayout overrides the binding layout used for the binding cache and
// default samplers.
func WithLayout(l backend.BindingLayout) Option {
	return func(c *config) { c.layout = l }
}

// WithNearestSampling selects nearest-neighbor filtering for default
// samplers instead of linear.
func WithNearestSampling() Option {
	return func(c *config) { c.layout.Filtering = false }
}

// WithoutFallback disables creation of the 1x1 white fallback texture. Draw
// commands carrying the null texture id are then skipped.
func WithoutFallback() Option {
	return func(c *config) { c.fallback = false }
}
