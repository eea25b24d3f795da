// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package main

// Register the Vulkan HAL backend for -gpu vulkan.
import _ "github.com/gogpu/wgpu/hal/vulkan"
