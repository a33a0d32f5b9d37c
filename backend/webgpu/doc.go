// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package webgpu implements the backend device on cogentcore/webgpu.
//
// The host owns the wgpu Device and Queue and opens a render pass for each
// frame; this package creates textures, views, samplers, and bind groups,
// and records the UI draw commands into the host's pass. The bind group
// layout the device builds its groups against is exposed through
// Device.BindGroupLayout so the host can construct a matching pipeline.
package webgpu
