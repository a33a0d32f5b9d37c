// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package native implements the backend device on gogpu/gogpu's
// gpu.Backend, which runs on either wgpu-native or the pure Go WebGPU
// implementation.
//
// gpu.Backend exposes resource management (textures, buffers, bind groups)
// but no render pass encoding or sampler objects. The device therefore
// records each frame's meshes and draw commands into a Frame and hands it
// to the host's Submit callback, and CreateSampler reports no sampler
// object: filtering is fixed by the host's pipeline.
package native
