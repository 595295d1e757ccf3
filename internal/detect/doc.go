// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package detect provides host CPU detection for sortbench.
//
// This package reports the CPU brand string and the cache hierarchy that the
// plot pipeline uses to place its L1/L2 boundary markers.
//
// # Key Types
//
//   - CPUInfo: Brand, vendor, cache sizes, core counts and feature flags
//   - Probe: A named detection source
//   - Detector: Runs probes in order and merges their answers
//
// # Probes
//
//   - cpuid (github.com/klauspost/cpuid/v2), all platforms with CPUID
//   - sysfs (Linux: /sys/devices/system/cpu/cpu0/cache and /proc/cpuinfo)
//   - sysctl (macOS: hw.*cachesize and machdep.cpu.brand_string)
//
// Earlier probes win; later probes only fill fields that are still unknown.
//
// # Usage
//
//	info, err := detect.DetectCPUWithContext(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := info.Validate(); err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("%s: L2 %d KB\n", info.Brand, info.L2KB)
package detect
