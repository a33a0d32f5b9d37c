// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vulkan implements the backend device on a host-owned Vulkan
// device via goki/vulkan.
//
// The host keeps ownership of the instance, physical and logical device,
// and queue; this package only creates the objects the texture pipeline
// needs: images with device-local memory, image views, samplers, and
// combined-image-sampler descriptor sets. Pixel uploads go through a
// host-visible staging buffer and a one-time command buffer.
//
// Drawing records into a command buffer the host hands over per frame
// (inside its render pass, with the UI pipeline bound), so the device
// composes with whatever pass structure the host uses.
package vulkan
