// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"context"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

func cpuidProbe() Probe {
	return Probe{Name: "cpuid", Run: probeCPUID}
}

// probeCPUID reads the values cpuid decoded at program start. Cache sizes
// are -1 when the CPU does not report them.
func probeCPUID(_ context.Context) (*CPUInfo, error) {
	c := cpuid.CPU
	return &CPUInfo{
		Brand:          strings.TrimSpace(c.BrandName),
		Vendor:         c.VendorString,
		L1DataKB:       bytesToKB(c.Cache.L1D),
		L2KB:           bytesToKB(c.Cache.L2),
		L3KB:           bytesToKB(c.Cache.L3),
		CacheLineBytes: max(c.CacheLine, 0),
		PhysicalCores:  c.PhysicalCores,
		LogicalCores:   c.LogicalCores,
		Features:       c.FeatureSet(),
	}, nil
}

func bytesToKB(n int) int {
	if n <= 0 {
		return 0
	}
	return n / 1024
}
