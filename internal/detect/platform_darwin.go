// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build darwin

package detect

import (
	"context"

	"golang.org/x/sys/unix"
)

func platformProbe() Probe {
	return Probe{Name: "sysctl", Run: probeSysctl}
}

// probeSysctl reads the hw.* cache keys. Apple Silicon reports per
// performance-level values, so the perflevel0 (performance cores) keys are
// tried when the flat ones are missing.
func probeSysctl(_ context.Context) (*CPUInfo, error) {
	info := &CPUInfo{}

	if brand, err := unix.Sysctl("machdep.cpu.brand_string"); err == nil {
		info.Brand = brand
	}
	if vendor, err := unix.Sysctl("machdep.cpu.vendor"); err == nil {
		info.Vendor = vendor
	}

	info.L1DataKB = sysctlKB("hw.l1dcachesize", "hw.perflevel0.l1dcachesize")
	info.L2KB = sysctlKB("hw.l2cachesize", "hw.perflevel0.l2cachesize")
	info.L3KB = sysctlKB("hw.l3cachesize")

	if line, err := unix.SysctlUint64("hw.cachelinesize"); err == nil {
		info.CacheLineBytes = int(line)
	}
	if n, err := unix.SysctlUint32("hw.physicalcpu"); err == nil {
		info.PhysicalCores = int(n)
	}
	if n, err := unix.SysctlUint32("hw.logicalcpu"); err == nil {
		info.LogicalCores = int(n)
	}

	return info, nil
}

func sysctlKB(names ...string) int {
	for _, name := range names {
		if v, err := unix.SysctlUint64(name); err == nil && v > 0 {
			return int(v / 1024)
		}
	}
	return 0
}
